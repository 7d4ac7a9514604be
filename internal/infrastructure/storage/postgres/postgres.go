package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/config"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/group"
	"clipsync/internal/domain/item"
	"clipsync/internal/domain/session"
	"clipsync/internal/infrastructure/migration"
)

type Storage struct {
	pool *pgxpool.Pool

	groups   *GroupRepository
	devices  *DeviceRepository
	sessions *SessionRepository
	items    *ItemRepository
}

func New(cfg *config.Config, log *slog.Logger) (*Storage, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DB.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	mg := migration.NewMigration(cfg, migration.DefaultEngine)
	if err := mg.Up(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Storage{
		pool:     pool,
		groups:   NewGroupRepository(pool, log),
		devices:  NewDeviceRepository(pool, log),
		sessions: NewSessionRepository(pool, log),
		items:    NewItemRepository(pool, log),
	}, nil
}

func (s *Storage) Groups() group.Repository     { return s.groups }
func (s *Storage) Devices() device.Repository   { return s.devices }
func (s *Storage) Sessions() session.Repository { return s.sessions }
func (s *Storage) Items() item.Repository       { return s.items }

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}
