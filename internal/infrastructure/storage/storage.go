package storage

import (
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/config"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/group"
	"clipsync/internal/domain/item"
	"clipsync/internal/domain/session"
	"clipsync/internal/infrastructure/storage/memory"
	"clipsync/internal/infrastructure/storage/postgres"
)

// Storage набор репозиториев реле за одним подключением
type Storage interface {
	// Группы и устройства
	Groups() group.Repository
	Devices() device.Repository

	// Токены
	Sessions() session.Repository

	// Зашифрованные записи
	Items() item.Repository

	Close() error
}

// New выбирает backend хранилища по конфигурации. Пустой DATABASE_URI
// означает хранение в памяти: данные не переживают перезапуск реле.
func New(cfg *config.Config, log *slog.Logger) (Storage, error) {
	if cfg.DB.DatabaseURI == "" {
		log.Warn("DATABASE_URI is empty, using in-memory storage")
		return memory.New(), nil
	}

	return postgres.New(cfg, log)
}
