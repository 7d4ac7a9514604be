package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/session"
)

// RedisLimiter считает окна в redis через INCR с TTL на ключе. Первый
// запрос окна ставит EXPIRE, истечение ключа и есть сброс окна. При
// недоступности redis запрос пропускается.
type RedisLimiter struct {
	client *redis.Client
	rules  Rules
	log    *slog.Logger
}

func NewRedis(client *redis.Client, rules Rules, log *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		rules:  rules,
		log:    log.With("component", "ratelimit_redis"),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, ident session.Identity) Decision {
	device, err := l.hit(ctx, "ratelimit:device:"+ident.DeviceID, time.Minute, l.rules.DevicePerMinute)
	if err != nil {
		return l.failOpen(err)
	}

	grp, err := l.hit(ctx, "ratelimit:group:"+ident.SyncGroupID, time.Hour, l.rules.GroupPerHour)
	if err != nil {
		return l.failOpen(err)
	}

	return combine(device, grp)
}

func (l *RedisLimiter) hit(ctx context.Context, key string, dur time.Duration, limit int) (windowState, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return windowState{}, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, dur).Err(); err != nil {
			return windowState{}, err
		}
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return windowState{}, err
	}
	if ttl < 0 {
		// Ключ без TTL остался от прерванного первого запроса окна
		if err := l.client.Expire(ctx, key, dur).Err(); err != nil {
			return windowState{}, err
		}
		ttl = dur
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return windowState{
		remaining: remaining,
		resetAt:   time.Now().Add(ttl),
		allowed:   int(count) <= limit,
	}, nil
}

func (l *RedisLimiter) failOpen(err error) Decision {
	l.log.Warn("redis unavailable, allowing request", "error", err)
	return Decision{
		Allowed:   true,
		Remaining: l.rules.DevicePerMinute,
		ResetAt:   time.Now().Add(time.Minute),
	}
}
