package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/session"
)

// SessionRepository хранит токены устройств. В базу попадает только
// sha256-хэш токена, колонка token_hash типа BYTEA.
type SessionRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSessionRepository(pool *pgxpool.Pool, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		pool: pool,
		log:  log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) Create(ctx context.Context, t session.Token) error {
	const query = `
		INSERT INTO tokens (id, sync_group_id, device_id, token_hash, expires_at)
		VALUES ($1, $2, $3, decode($4, 'hex'), $5)`

	_, err := r.pool.Exec(ctx, query, t.ID, t.SyncGroupID, t.DeviceID, t.TokenHash, t.ExpiresAt)
	if err != nil {
		r.log.Error("failed to create token", "device_id", t.DeviceID, "error", err)
		return fmt.Errorf("create token: %w", err)
	}

	return nil
}

func (r *SessionRepository) FindByHash(ctx context.Context, tokenHash string) (session.Token, error) {
	const query = `
		SELECT id, sync_group_id, device_id, encode(token_hash, 'hex'),
		       created_at, expires_at, last_used_at, revoked
		FROM tokens
		WHERE token_hash = decode($1, 'hex')`

	var t session.Token
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.SyncGroupID, &t.DeviceID, &t.TokenHash,
		&t.CreatedAt, &t.ExpiresAt, &t.LastUsedAt, &t.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Token{}, session.ErrTokenNotFound
		}
		r.log.Error("failed to find token", "error", err)
		return session.Token{}, fmt.Errorf("find token: %w", err)
	}

	return t, nil
}

func (r *SessionRepository) RevokeAllForDevice(ctx context.Context, deviceID string) error {
	const query = `UPDATE tokens SET revoked = TRUE WHERE device_id = $1 AND NOT revoked`

	_, err := r.pool.Exec(ctx, query, deviceID)
	if err != nil {
		r.log.Error("failed to revoke tokens", "device_id", deviceID, "error", err)
		return fmt.Errorf("revoke tokens: %w", err)
	}

	return nil
}

func (r *SessionRepository) TouchLastUsed(ctx context.Context, id string) error {
	const query = `UPDATE tokens SET last_used_at = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("touch token: %w", err)
	}

	return nil
}
