package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/group"
)

type GroupRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewGroupRepository(pool *pgxpool.Pool, log *slog.Logger) *GroupRepository {
	return &GroupRepository{
		pool: pool,
		log:  log.With("component", "group_repository"),
	}
}

func (r *GroupRepository) Upsert(ctx context.Context, id string) (group.SyncGroup, error) {
	const query = `
		INSERT INTO sync_groups (id) VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET last_activity = NOW()
		RETURNING id, created_at, last_activity`

	var g group.SyncGroup
	err := r.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.CreatedAt, &g.LastActivity)
	if err != nil {
		r.log.Error("failed to upsert sync group", "sync_group_id", id, "error", err)
		return group.SyncGroup{}, fmt.Errorf("upsert sync group: %w", err)
	}

	return g, nil
}

func (r *GroupRepository) Find(ctx context.Context, id string) (group.SyncGroup, error) {
	const query = `SELECT id, created_at, last_activity FROM sync_groups WHERE id = $1`

	var g group.SyncGroup
	err := r.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.CreatedAt, &g.LastActivity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return group.SyncGroup{}, group.ErrNotFound
		}
		r.log.Error("failed to find sync group", "sync_group_id", id, "error", err)
		return group.SyncGroup{}, fmt.Errorf("find sync group: %w", err)
	}

	return g, nil
}
