package ratelimit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/config"
	"clipsync/internal/domain/session"
)

// Limiter ограничивает частоту запросов аутентифицированных устройств.
// Каждый запрос проверяется по двум окнам: минутному окну устройства и
// часовому окну группы. Backend'ы с внешним хранилищем при его отказе
// пропускают запрос, а не блокируют его.
type Limiter interface {
	Allow(ctx context.Context, ident session.Identity) Decision
}

// Decision результат проверки лимитов для одного запроса. Remaining и
// ResetAt описывают более узкое из двух окон, при отказе ResetAt
// указывает на конец нарушенного окна.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Rules пороги обоих окон
type Rules struct {
	DevicePerMinute int
	GroupPerHour    int
}

// New выбирает backend лимитера по конфигурации. Postgres-backend
// требует подключения к базе: без него лимитер работает в памяти.
func New(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) Limiter {
	rules := Rules{
		DevicePerMinute: cfg.Limit.DevicePerMinute,
		GroupPerHour:    cfg.Limit.GroupPerHour,
	}

	switch cfg.Limit.Backend {
	case config.LimiterRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Limit.RedisAddr})
		return NewRedis(client, rules, log)
	case config.LimiterPostgres:
		if pool == nil {
			log.Warn("postgres rate limiter requires a database, using memory backend")
			return NewMemory(rules)
		}
		return NewPostgres(pool, rules, log)
	default:
		return NewMemory(rules)
	}
}

// windowState итог учета запроса в одном окне
type windowState struct {
	remaining int
	resetAt   time.Time
	allowed   bool
}

func combine(device, grp windowState) Decision {
	if !device.allowed || !grp.allowed {
		reset := device.resetAt
		if !grp.allowed && (device.allowed || grp.resetAt.After(reset)) {
			reset = grp.resetAt
		}
		return Decision{Allowed: false, Remaining: 0, ResetAt: reset}
	}

	if grp.remaining < device.remaining {
		return Decision{Allowed: true, Remaining: grp.remaining, ResetAt: grp.resetAt}
	}
	return Decision{Allowed: true, Remaining: device.remaining, ResetAt: device.resetAt}
}
