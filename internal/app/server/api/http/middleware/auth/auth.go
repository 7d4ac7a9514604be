package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/session"
)

// Коды отказа аутентификации, различимые клиентом
const (
	CodeMissingToken   = "missing_token"
	CodeMalformedToken = "malformed_token"
	CodeUnknownToken   = "unknown_token"
	CodeTokenRevoked   = "token_revoked"
	CodeTokenExpired   = "token_expired"
	CodeDeviceInactive = "device_inactive"
)

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const IdentityKey contextKey = "identity"

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" {
			a.reject(ctx, CodeMissingToken)
			return
		}

		if len(header) < 7 || header[:7] != "Bearer " || header[7:] == "" {
			a.log.Debug("malformed authorization header")
			a.reject(ctx, CodeMalformedToken)
			return
		}

		// Валидируем токен
		ident, err := a.session.Validate(ctx.Context(), header[7:])
		if err != nil {
			switch {
			case errors.Is(err, session.ErrTokenNotFound):
				a.reject(ctx, CodeUnknownToken)
			case errors.Is(err, session.ErrTokenRevoked):
				a.reject(ctx, CodeTokenRevoked)
			case errors.Is(err, session.ErrTokenExpired):
				a.reject(ctx, CodeTokenExpired)
			case errors.Is(err, session.ErrDeviceInactive):
				a.reject(ctx, CodeDeviceInactive)
			default:
				a.log.Error("token validation failed", "error", err)
				writeJSONError(ctx, http.StatusInternalServerError, map[string]string{
					"error": "Internal Server Error",
				})
			}
			return
		}

		newHumaCtx := huma.WithContext(ctx, WithIdentity(ctx.Context(), ident))

		next(newHumaCtx)
	}
}

func (a *Auth) reject(ctx huma.Context, code string) {
	writeJSONError(ctx, http.StatusUnauthorized, map[string]string{
		"error": "Unauthorized",
		"code":  code,
	})
}

// writeJSONError выставляет заголовки до статуса: SetStatus сразу пишет
// заголовок ответа, после него менять заголовки поздно
func writeJSONError(ctx huma.Context, status int, body map[string]string) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(status)

	w := ctx.BodyWriter()
	_ = json.NewEncoder(w).Encode(body)
}

// WithIdentity кладет аутентифицированную пару в контекст запроса
func WithIdentity(ctx context.Context, ident session.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}

// GetIdentity достает аутентифицированную пару группа-устройство из контекста
func GetIdentity(ctx context.Context) (session.Identity, bool) {
	ident, ok := ctx.Value(IdentityKey).(session.Identity)
	return ident, ok
}
