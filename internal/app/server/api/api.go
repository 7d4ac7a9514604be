//регистрация устройств в группах синхронизации;
//прием зашифрованных записей буфера обмена и раздача их устройствам группы;
//разрешение конфликтов по правилу last-write-wins;
//сервер нигде не видит открытый текст записей.

//POST /api/devices/register  # Регистрация устройства (публичный)
//POST /api/items/push        # Загрузка записей (auth)
//POST /api/items/pull        # Получение изменений (auth)
//POST /api/items/delete      # Мягкое удаление записей (auth)
//GET  /api/status            # Сводка по группе (auth)
//GET  /api/health            # Проба живости (публичный)

package api

import (
	"time"

	deviceAPI "clipsync/internal/app/server/api/http/device"
	healthAPI "clipsync/internal/app/server/api/http/health"
	itemAPI "clipsync/internal/app/server/api/http/item"
	"clipsync/internal/app/server/api/http/middleware"
	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/app/server/api/http/middleware/logger"
	ratelimitMW "clipsync/internal/app/server/api/http/middleware/ratelimit"
	statusAPI "clipsync/internal/app/server/api/http/status"
	"clipsync/internal/app/server/config"
	"clipsync/internal/app/server/ratelimit"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/item"
	"clipsync/internal/domain/session"
	"clipsync/internal/infrastructure/storage"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health *healthAPI.Handler
	Device *deviceAPI.Handler
	Item   *itemAPI.Handler
	Status *statusAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(store storage.Storage, limiter ratelimit.Limiter, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	humaConfig := huma.DefaultConfig("Clipsync Relay API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(store, limiter, cfg, log)
	h.Health.SetupRoutes(API)
	h.Device.SetupRoutes(API)
	h.Item.SetupRoutes(API)
	h.Status.SetupRoutes(API)

	return mux
}

func handlers(store storage.Storage, limiter ratelimit.Limiter, cfg *config.Config, log *slog.Logger) *Handlers {
	ttl := time.Duration(cfg.Token.TTLHours) * time.Hour
	sessionService := session.NewService(store.Sessions(), store.Devices(), ttl, log)

	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	limitMW := ratelimitMW.New(limiter, log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	deviceService := device.NewService(store.Devices(), store.Groups(), sessionService, device.NewRegisterValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	deviceHandler := deviceAPI.NewHandler(deviceService, log, middlewares.GetAllAndClear())

	itemService := item.NewService(store.Items(), log, nil)
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	middlewares.Add(limitMW.Middleware())
	itemHandler := itemAPI.NewHandler(itemService, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	middlewares.Add(limitMW.Middleware())
	statusHandler := statusAPI.NewHandler(itemService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health: healthHandler,
		Device: deviceHandler,
		Item:   itemHandler,
		Status: statusHandler,
	}
}
