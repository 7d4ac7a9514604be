package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/session"
)

// PostgresLimiter хранит счетчики окон в таблице rate_counters. Каждый
// учет выполняется в транзакции с блокировкой строки, поэтому несколько
// экземпляров сервера делят общие лимиты. При ошибке хранилища запрос
// пропускается.
type PostgresLimiter struct {
	pool  *pgxpool.Pool
	rules Rules
	log   *slog.Logger
}

func NewPostgres(pool *pgxpool.Pool, rules Rules, log *slog.Logger) *PostgresLimiter {
	return &PostgresLimiter{
		pool:  pool,
		rules: rules,
		log:   log.With("component", "ratelimit_postgres"),
	}
}

func (l *PostgresLimiter) Allow(ctx context.Context, ident session.Identity) Decision {
	device, err := l.hit(ctx, "device:"+ident.DeviceID, time.Minute, l.rules.DevicePerMinute)
	if err != nil {
		return l.failOpen(err)
	}

	grp, err := l.hit(ctx, "group:"+ident.SyncGroupID, time.Hour, l.rules.GroupPerHour)
	if err != nil {
		return l.failOpen(err)
	}

	return combine(device, grp)
}

func (l *PostgresLimiter) hit(ctx context.Context, key string, dur time.Duration, limit int) (windowState, error) {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return windowState{}, err
	}
	defer tx.Rollback(ctx)

	const selectQuery = `
		SELECT count, window_start
		FROM rate_counters
		WHERE key = $1
		FOR UPDATE
	`

	var count int
	var windowStart time.Time
	err = tx.QueryRow(ctx, selectQuery, key).Scan(&count, &windowStart)

	now := time.Now()
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		count = 1
		windowStart = now
		_, err = tx.Exec(ctx,
			`INSERT INTO rate_counters (key, count, window_start) VALUES ($1, 1, $2)`,
			key, now)
	case err != nil:
		return windowState{}, err
	case now.After(windowStart.Add(dur)):
		count = 1
		windowStart = now
		_, err = tx.Exec(ctx,
			`UPDATE rate_counters SET count = 1, window_start = $2 WHERE key = $1`,
			key, now)
	default:
		count++
		_, err = tx.Exec(ctx,
			`UPDATE rate_counters SET count = count + 1 WHERE key = $1`,
			key)
	}
	if err != nil {
		return windowState{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return windowState{}, err
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return windowState{
		remaining: remaining,
		resetAt:   windowStart.Add(dur),
		allowed:   count <= limit,
	}, nil
}

func (l *PostgresLimiter) failOpen(err error) Decision {
	l.log.Warn("rate counter store unavailable, allowing request", "error", err)
	return Decision{
		Allowed:   true,
		Remaining: l.rules.DevicePerMinute,
		ResetAt:   time.Now().Add(time.Minute),
	}
}
