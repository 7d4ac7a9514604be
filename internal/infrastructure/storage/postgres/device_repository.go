package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/device"
)

type DeviceRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewDeviceRepository(pool *pgxpool.Pool, log *slog.Logger) *DeviceRepository {
	return &DeviceRepository{
		pool: pool,
		log:  log.With("component", "device_repository"),
	}
}

func (r *DeviceRepository) Upsert(ctx context.Context, d device.Device) (device.Device, error) {
	const query = `
		INSERT INTO devices (id, sync_group_id, name, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			sync_group_id = EXCLUDED.sync_group_id,
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			last_seen = NOW(),
			active = TRUE
		RETURNING id, sync_group_id, name, type, registered_at, last_seen, active`

	var saved device.Device
	err := r.pool.QueryRow(ctx, query, d.ID, d.SyncGroupID, d.Name, string(d.Type)).Scan(
		&saved.ID, &saved.SyncGroupID, &saved.Name, &saved.Type,
		&saved.RegisteredAt, &saved.LastSeen, &saved.Active,
	)
	if err != nil {
		r.log.Error("failed to upsert device", "device_id", d.ID, "error", err)
		return device.Device{}, fmt.Errorf("upsert device: %w", err)
	}

	return saved, nil
}

func (r *DeviceRepository) Find(ctx context.Context, id string) (device.Device, error) {
	const query = `
		SELECT id, sync_group_id, name, type, registered_at, last_seen, active
		FROM devices WHERE id = $1`

	var d device.Device
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.SyncGroupID, &d.Name, &d.Type,
		&d.RegisteredAt, &d.LastSeen, &d.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return device.Device{}, device.ErrNotFound
		}
		r.log.Error("failed to find device", "device_id", id, "error", err)
		return device.Device{}, fmt.Errorf("find device: %w", err)
	}

	return d, nil
}

func (r *DeviceRepository) IsActive(ctx context.Context, id string) (bool, error) {
	const query = `SELECT active FROM devices WHERE id = $1`

	var active bool
	err := r.pool.QueryRow(ctx, query, id).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.log.Error("failed to check device", "device_id", id, "error", err)
		return false, fmt.Errorf("check device: %w", err)
	}

	return active, nil
}

func (r *DeviceRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE devices SET active = FALSE WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("failed to deactivate device", "device_id", id, "error", err)
		return fmt.Errorf("deactivate device: %w", err)
	}

	if result.RowsAffected() == 0 {
		return device.ErrNotFound
	}

	return nil
}
