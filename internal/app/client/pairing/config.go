package pairing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"clipsync/internal/app/client/crypto"
)

// CurrentVersion версия формата конфигурации сопряжения
const CurrentVersion = 1

// Config конфигурация сопряжения: всё, что нужно новому устройству,
// чтобы присоединиться к группе синхронизации. Передается один раз
// по внеполосному каналу (QR-код, файл) и после создания не меняется.
// Содержимое чувствительно: внутри мастер-ключ группы.
type Config struct {
	Version     int    `json:"version"`
	SyncGroupID string `json:"sync_group_id"`
	Key         string `json:"key"` // base64 encoded 256-bit master key
	Endpoint    string `json:"endpoint"`
	DeviceID    string `json:"device_id"`
}

// New собирает конфигурацию сопряжения из компонентов и проверяет её
func New(syncGroupID string, key []byte, endpoint, deviceID string) (Config, error) {
	cfg := Config{
		Version:     CurrentVersion,
		SyncGroupID: syncGroupID,
		Key:         base64.StdEncoding.EncodeToString(key),
		Endpoint:    endpoint,
		DeviceID:    deviceID,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Parse разбирает JSON-представление конфигурации и проверяет каждое поле
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Encode сериализует конфигурацию в JSON для передачи другому устройству
func (c Config) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации конфигурации: %w", err)
	}
	return data, nil
}

// MasterKey возвращает декодированный мастер-ключ группы
func (c Config) MasterKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid base64", ErrInvalidConfig)
	}
	if len(key) != crypto.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrInvalidConfig, crypto.KeySize, len(key))
	}
	return key, nil
}

func (c Config) validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, c.Version)
	}

	if _, err := uuid.Parse(c.SyncGroupID); err != nil {
		return fmt.Errorf("%w: sync_group_id is not a valid UUID", ErrInvalidConfig)
	}

	if _, err := uuid.Parse(c.DeviceID); err != nil {
		return fmt.Errorf("%w: device_id is not a valid UUID", ErrInvalidConfig)
	}

	if _, err := c.MasterKey(); err != nil {
		return err
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: endpoint is not a valid URL", ErrInvalidConfig)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint scheme must be http or https", ErrInvalidConfig)
	}

	return nil
}
