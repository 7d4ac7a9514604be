package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	// Backends лимитера запросов
	LimiterMemory   = "memory"
	LimiterRedis    = "redis"
	LimiterPostgres = "postgres"
)

type Config struct {
	Env    string
	DB     db
	Server server
	Limit  limit
	Token  token
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type limit struct {
	Backend         string `env:"RATE_LIMIT_BACKEND"`
	DevicePerMinute int    `env:"RATE_LIMIT_DEVICE_PER_MINUTE"`
	GroupPerHour    int    `env:"RATE_LIMIT_GROUP_PER_HOUR"`
	RedisAddr       string `env:"REDIS_ADDR"`
}

type token struct {
	TTLHours int `env:"TOKEN_TTL_HOURS"`
}

type defaultConfig struct {
	RunAddress      string
	DatabaseURI     string
	Migrations      string
	Env             string
	LimiterBackend  string
	DevicePerMinute int
	GroupPerHour    int
	RedisAddr       string
	TokenTTLHours   int
}

func MustLoad() *Config {
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Println("failed to load .env, relying on environment variables")
		}
	}

	viper.AutomaticEnv()
	viper.SetDefault("RUN_ADDRESS", "localhost:8080")
	viper.SetDefault("MIGRATIONS_PATH", "migrations")
	viper.SetDefault("APP_ENV", EnvLocal)
	viper.SetDefault("RATE_LIMIT_BACKEND", LimiterMemory)
	viper.SetDefault("RATE_LIMIT_DEVICE_PER_MINUTE", 100)
	viper.SetDefault("RATE_LIMIT_GROUP_PER_HOUR", 1000)
	viper.SetDefault("TOKEN_TTL_HOURS", 720)

	d := defaultConfig{
		RunAddress:      viper.GetString("run_address"),
		DatabaseURI:     viper.GetString("database_uri"),
		Migrations:      viper.GetString("migrations_path"),
		Env:             viper.GetString("app_env"),
		LimiterBackend:  viper.GetString("rate_limit_backend"),
		DevicePerMinute: viper.GetInt("rate_limit_device_per_minute"),
		GroupPerHour:    viper.GetInt("rate_limit_group_per_hour"),
		RedisAddr:       viper.GetString("redis_addr"),
		TokenTTLHours:   viper.GetInt("token_ttl_hours"),
	}

	config := Config{
		Env: d.Env,
		DB: db{
			DatabaseURI: d.DatabaseURI,
			Migrations:  d.Migrations,
		},
		Server: server{RunAddress: d.RunAddress},
		Limit: limit{
			Backend:         d.LimiterBackend,
			DevicePerMinute: d.DevicePerMinute,
			GroupPerHour:    d.GroupPerHour,
			RedisAddr:       d.RedisAddr,
		},
		Token: token{TTLHours: d.TokenTTLHours},
	}

	return &config
}
