package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/group"
	"clipsync/internal/domain/item"
)

type ItemRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewItemRepository(pool *pgxpool.Pool, log *slog.Logger) *ItemRepository {
	return &ItemRepository{
		pool: pool,
		log:  log.With("component", "item_repository"),
	}
}

// Upsert применяет last-write-wins одним оператором: существующая строка
// со строго большим updated_at остается нетронутой, и тогда RowsAffected
// равен нулю. Принятая строка получает новый seq.
func (r *ItemRepository) Upsert(ctx context.Context, it item.Item) (bool, error) {
	const query = `
		INSERT INTO items
			(sync_group_id, id, device_id, ciphertext, nonce, updated_at,
			 deleted, digest, compressed, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sync_group_id, id) DO UPDATE SET
			device_id = EXCLUDED.device_id,
			ciphertext = EXCLUDED.ciphertext,
			nonce = EXCLUDED.nonce,
			updated_at = EXCLUDED.updated_at,
			deleted = EXCLUDED.deleted,
			digest = EXCLUDED.digest,
			compressed = EXCLUDED.compressed,
			size = EXCLUDED.size,
			seq = nextval('items_seq_seq')
		WHERE items.updated_at <= EXCLUDED.updated_at`

	result, err := r.pool.Exec(ctx, query,
		it.SyncGroupID, it.ID, it.DeviceID, it.Ciphertext, it.Nonce,
		it.UpdatedAt, it.Deleted, it.Digest, it.Compressed, it.Size,
	)
	if err != nil {
		r.log.Error("failed to upsert item",
			"item_id", it.ID, "sync_group_id", it.SyncGroupID, "error", err)
		return false, fmt.Errorf("upsert item: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *ItemRepository) ListSince(ctx context.Context, groupID string, since int64, limit int) ([]item.Item, error) {
	const query = `
		SELECT sync_group_id, id, device_id, ciphertext, nonce, created_at,
		       updated_at, deleted, digest, compressed, size, seq
		FROM items
		WHERE sync_group_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC, seq ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, groupID, since, limit)
	if err != nil {
		r.log.Error("failed to list items",
			"sync_group_id", groupID, "since", since, "error", err)
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return r.scanItems(rows)
}

func (r *ItemRepository) SoftDelete(ctx context.Context, groupID string, ids []string, deletedAt int64) (int64, error) {
	const query = `
		UPDATE items
		SET deleted = TRUE, updated_at = $3, seq = nextval('items_seq_seq')
		WHERE sync_group_id = $1 AND id = ANY($2::uuid[]) AND NOT deleted`

	result, err := r.pool.Exec(ctx, query, groupID, ids, deletedAt)
	if err != nil {
		r.log.Error("failed to soft delete items",
			"sync_group_id", groupID, "error", err)
		return 0, fmt.Errorf("soft delete items: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *ItemRepository) CountActive(ctx context.Context, groupID string) (int64, int64, error) {
	const query = `
		SELECT COUNT(*), COALESCE(SUM(size), 0)
		FROM items
		WHERE sync_group_id = $1 AND NOT deleted`

	var count, totalSize int64
	err := r.pool.QueryRow(ctx, query, groupID).Scan(&count, &totalSize)
	if err != nil {
		r.log.Error("failed to count items", "sync_group_id", groupID, "error", err)
		return 0, 0, fmt.Errorf("count items: %w", err)
	}

	return count, totalSize, nil
}

func (r *ItemRepository) ListDevices(ctx context.Context, groupID string) ([]item.DeviceSummary, error) {
	const query = `
		SELECT id, name, type, last_seen, active
		FROM devices
		WHERE sync_group_id = $1
		ORDER BY last_seen DESC`

	rows, err := r.pool.Query(ctx, query, groupID)
	if err != nil {
		r.log.Error("failed to list devices", "sync_group_id", groupID, "error", err)
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []item.DeviceSummary
	for rows.Next() {
		var d item.DeviceSummary
		if err := rows.Scan(&d.ID, &d.Name, &d.Type, &d.LastSeen, &d.Active); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, d)
	}

	return devices, rows.Err()
}

func (r *ItemRepository) GroupActivity(ctx context.Context, groupID string) (time.Time, error) {
	const query = `SELECT last_activity FROM sync_groups WHERE id = $1`

	var activity time.Time
	err := r.pool.QueryRow(ctx, query, groupID).Scan(&activity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, group.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("group activity: %w", err)
	}

	return activity, nil
}

func (r *ItemRepository) TouchDevice(ctx context.Context, deviceID string) error {
	const query = `UPDATE devices SET last_seen = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, deviceID)
	if err != nil {
		return fmt.Errorf("touch device: %w", err)
	}

	return nil
}

func (r *ItemRepository) TouchGroup(ctx context.Context, groupID string) error {
	const query = `UPDATE sync_groups SET last_activity = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, groupID)
	if err != nil {
		return fmt.Errorf("touch group: %w", err)
	}

	return nil
}

// Вспомогательные методы

func (r *ItemRepository) scanItems(rows pgx.Rows) ([]item.Item, error) {
	var items []item.Item

	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}

	return items, rows.Err()
}

func (r *ItemRepository) scanItem(row interface {
	Scan(dest ...interface{}) error
}) (*item.Item, error) {
	var it item.Item

	err := row.Scan(
		&it.SyncGroupID, &it.ID, &it.DeviceID, &it.Ciphertext, &it.Nonce,
		&it.CreatedAt, &it.UpdatedAt, &it.Deleted, &it.Digest,
		&it.Compressed, &it.Size, &it.Seq,
	)
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}

	return &it, nil
}
