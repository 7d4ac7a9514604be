package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()

	key, err := GenerateKey()
	require.NoError(t, err)

	codec, err := NewCodec(key)
	require.NoError(t, err)

	return codec
}

func TestNewCodec_KeySize(t *testing.T) {
	tests := []struct {
		name    string
		keyLen  int
		wantErr bool
	}{
		{name: "valid 32 bytes", keyLen: 32, wantErr: false},
		{name: "too short", keyLen: 16, wantErr: true},
		{name: "too long", keyLen: 64, wantErr: true},
		{name: "empty", keyLen: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keyLen)
			_, err := rand.Read(key)
			require.NoError(t, err)

			codec, err := NewCodec(key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKeySize)
				assert.Nil(t, codec)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, codec)
			}
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	large := make([]byte, 4*1024*1024)
	_, err := rand.Read(large)
	require.NoError(t, err)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "regular text", plaintext: []byte("скопированный текст")},
		{name: "empty payload", plaintext: []byte{}},
		{name: "single byte", plaintext: []byte{0x42}},
		{name: "multi-megabyte payload", plaintext: large},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, nonce, digest, err := codec.Encrypt(tt.plaintext)
			require.NoError(t, err)
			require.Len(t, nonce, NonceSize)
			require.Len(t, digest, DigestLength)

			decrypted, err := codec.Decrypt(ciphertext, nonce)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.plaintext, decrypted))
		})
	}
}

func TestCodec_FreshNoncePerCall(t *testing.T) {
	codec := newTestCodec(t)
	plaintext := []byte("одни и те же данные")

	ct1, nonce1, digest1, err := codec.Encrypt(plaintext)
	require.NoError(t, err)

	ct2, nonce2, digest2, err := codec.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, nonce1, nonce2)
	assert.NotEqual(t, ct1, ct2)
	// Дайджест зависит только от открытого текста
	assert.Equal(t, digest1, digest2)
}

func TestCodec_DecryptFailsClosed(t *testing.T) {
	codec := newTestCodec(t)

	ciphertext, nonce, _, err := codec.Encrypt([]byte("важные данные"))
	require.NoError(t, err)

	otherNonce := make([]byte, NonceSize)
	_, err = rand.Read(otherNonce)
	require.NoError(t, err)

	flipped := make([]byte, len(ciphertext))
	copy(flipped, ciphertext)
	flipped[0] ^= 0x01

	truncated := ciphertext[:len(ciphertext)-1]

	tests := []struct {
		name       string
		ciphertext []byte
		nonce      []byte
	}{
		{name: "flipped byte", ciphertext: flipped, nonce: nonce},
		{name: "wrong nonce", ciphertext: ciphertext, nonce: otherNonce},
		{name: "truncated ciphertext", ciphertext: truncated, nonce: nonce},
		{name: "short nonce", ciphertext: ciphertext, nonce: nonce[:8]},
		{name: "empty ciphertext", ciphertext: nil, nonce: nonce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := codec.Decrypt(tt.ciphertext, tt.nonce)
			assert.ErrorIs(t, err, ErrDecryptionFailed)
			assert.Nil(t, plaintext)
		})
	}
}

func TestCodec_DifferentKeysCannotRead(t *testing.T) {
	first := newTestCodec(t)
	second := newTestCodec(t)

	ciphertext, nonce, _, err := first.Encrypt([]byte("чужой ключ не подойдет"))
	require.NoError(t, err)

	_, err = second.Decrypt(ciphertext, nonce)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestCodec_Digest(t *testing.T) {
	codec := newTestCodec(t)
	plaintext := []byte("данные для дайджеста")

	_, _, digest, err := codec.Encrypt(plaintext)
	require.NoError(t, err)

	sum := sha256.Sum256(plaintext)
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)
}

func TestGenerateKey(t *testing.T) {
	first, err := GenerateKey()
	require.NoError(t, err)
	assert.Len(t, first, KeySize)

	second, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
