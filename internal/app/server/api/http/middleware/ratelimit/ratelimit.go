package ratelimit

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/app/server/ratelimit"
)

// RateLimit middleware учитывает запрос в лимитере до вызова хендлера.
// Ставится в цепочку после auth: без Identity в контексте запрос
// пропускается без учета.
type RateLimit struct {
	limiter ratelimit.Limiter
	log     *slog.Logger
}

func New(limiter ratelimit.Limiter, log *slog.Logger) *RateLimit {
	return &RateLimit{
		limiter: limiter,
		log:     log.With("component", "ratelimit_middleware"),
	}
}

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (r *RateLimit) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		ident, ok := auth.GetIdentity(ctx.Context())
		if !ok {
			next(ctx)
			return
		}

		decision := r.limiter.Allow(ctx.Context(), ident)

		// Заголовки выставляются до статуса, после SetStatus они теряются
		ctx.SetHeader("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		ctx.SetHeader("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			r.log.Debug("request rejected by rate limiter",
				"device_id", ident.DeviceID,
				"sync_group_id", ident.SyncGroupID,
				"reset_at", decision.ResetAt)

			ctx.SetHeader("Content-Type", "application/json")
			ctx.SetStatus(http.StatusTooManyRequests)

			w := ctx.BodyWriter()
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Too Many Requests",
				"code":  "rate_limited",
			})
			return
		}

		next(ctx)
	}
}
