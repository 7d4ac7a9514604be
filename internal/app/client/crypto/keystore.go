package crypto

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	keyFileVersion     = 1
	keyFilePermissions = 0600
)

// keyContainer формат файла мастер-ключа на диске
type keyContainer struct {
	Version   int       `json:"version"`
	Key       string    `json:"key"` // base64 encoded key
	CreatedAt time.Time `json:"created_at"`
}

// KeyStore хранит мастер-ключ группы в файле с правами 0600.
// Ключ на устройстве один, поэтому хранилище работает с фиксированным путем.
type KeyStore struct {
	path string
	mu   sync.Mutex
}

// NewKeyStore создает хранилище ключа по указанному пути
func NewKeyStore(path string) (*KeyStore, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка определения пути: %w", err)
	}

	return &KeyStore{path: absPath}, nil
}

// Store сохраняет ключ в файл, перезаписывая предыдущий
func (s *KeyStore) Store(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	container := keyContainer{
		Version:   keyFileVersion,
		Key:       base64.StdEncoding.EncodeToString(key),
		CreatedAt: time.Now(),
	}

	data, err := json.MarshalIndent(container, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("ошибка создания каталога: %w", err)
	}

	if err := os.WriteFile(s.path, data, keyFilePermissions); err != nil {
		return fmt.Errorf("ошибка записи файла ключа: %w", err)
	}

	return nil
}

// Load читает ключ из файла и проверяет его длину
func (s *KeyStore) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("ошибка чтения файла ключа: %w", err)
	}

	var container keyContainer
	if err := json.Unmarshal(data, &container); err != nil {
		return nil, fmt.Errorf("ошибка декодирования файла ключа: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(container.Key)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования ключа: %w", err)
	}

	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	return key, nil
}

// Delete удаляет файл ключа. Отсутствие файла не считается ошибкой.
func (s *KeyStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла ключа: %w", err)
	}

	return nil
}

// Exists проверяет, что файл ключа уже существует
func (s *KeyStore) Exists() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(s.path)
	return err == nil
}
