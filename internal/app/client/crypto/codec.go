package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// Размеры для ChaCha20-Poly1305
	KeySize   = chacha20poly1305.KeySize
	NonceSize = chacha20poly1305.NonceSize

	// Длина hex-дайджеста SHA-256
	DigestLength = 64
)

// Codec шифрует и расшифровывает полезную нагрузку записей под
// 256-битным ключом группы синхронизации. Потокобезопасен.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec создает кодек из 32-байтового ключа
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания AEAD: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// Encrypt шифрует данные со свежим случайным nonce на каждый вызов
// и возвращает дайджест открытого текста
func (c *Codec) Encrypt(plaintext []byte) (ciphertext, nonce []byte, digest string, err error) {
	nonce = make([]byte, NonceSize)
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, Digest(plaintext), nil
}

// Digest возвращает hex-дайджест SHA-256 переданных байт
func Digest(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}

// Decrypt расшифровывает и проверяет подлинность данных. Любой сбой,
// от неверной длины nonce до несовпадения тега, возвращается одной и
// той же непрозрачной ошибкой ErrDecryptionFailed.
func (c *Codec) Decrypt(ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, ErrDecryptionFailed
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// GenerateKey генерирует новый 256-битный ключ группы
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("ошибка генерации ключа: %w", err)
	}
	return key, nil
}
