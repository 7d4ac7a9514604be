package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultRelayAddress = "http://localhost:8080"
	defaultLogLevel     = "info"
	defaultEnv          = "local"
	defaultDataDir      = ".clipsync"
	defaultDeviceType   = "desktop"
	defaultSyncInterval = 30
)

type Config struct {
	Env          string `mapstructure:"app_env"`
	RelayAddress string `mapstructure:"relay_address"`
	LogLevel     string `mapstructure:"log_level"`
	DataDir      string `mapstructure:"data_dir"`
	DatabasePath string `mapstructure:"database_path"`
	KeyPath      string `mapstructure:"key_path"`
	DeviceName   string `mapstructure:"device_name"`
	DeviceType   string `mapstructure:"device_type"`
	SyncInterval int    `mapstructure:"sync_interval_seconds"`
}

// MustLoad загружает конфигурацию клиента. Каталог данных создается
// с правами 0700: внутри лежат мастер-ключ и база с историей.
func MustLoad() *Config {
	// Определяем путь к .env файлу (относительно места запуска)
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}

	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Ошибка загрузки .env файла: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("RELAY_ADDRESS", defaultRelayAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("DATA_DIR", defaultDataDir)
	viper.SetDefault("DEVICE_TYPE", defaultDeviceType)
	viper.SetDefault("SYNC_INTERVAL_SECONDS", defaultSyncInterval)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	dataDir := viper.GetString("DATA_DIR")
	if dataDir == defaultDataDir {
		dataDir = filepath.Join(homeDir, dataDir)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fmt.Printf("Ошибка создания каталога данных: %v\n", err)
	}

	deviceName := viper.GetString("DEVICE_NAME")
	if deviceName == "" {
		if host, err := os.Hostname(); err == nil {
			deviceName = host
		} else {
			deviceName = "unnamed"
		}
	}

	config := &Config{
		Env:          viper.GetString("APP_ENV"),
		RelayAddress: viper.GetString("RELAY_ADDRESS"),
		LogLevel:     viper.GetString("LOG_LEVEL"),
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "clips.db"),
		KeyPath:      filepath.Join(dataDir, "master.key"),
		DeviceName:   deviceName,
		DeviceType:   viper.GetString("DEVICE_TYPE"),
		SyncInterval: viper.GetInt("SYNC_INTERVAL_SECONDS"),
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("Ошибка конфигурации: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.RelayAddress == "" {
		return fmt.Errorf("relay_address не может быть пустым")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir не может быть пустым")
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync_interval_seconds должен быть положительным")
	}
	return nil
}

// IsProd проверяет, prod ли окружение
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// IsDev проверяет, dev ли окружение
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// IsLocal проверяет, local ли окружение
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == ""
}
