package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/api"
	"clipsync/internal/app/server/config"
	"clipsync/internal/app/server/ratelimit"
	"clipsync/internal/infrastructure/storage"
	"clipsync/internal/infrastructure/storage/postgres"
	"clipsync/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("relay stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	store, err := storage.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer store.Close()

	// Postgres-backend лимитера делит пул соединений с хранилищем
	var pool *pgxpool.Pool
	if pg, ok := store.(*postgres.Storage); ok {
		pool = pg.Pool()
	}
	limiter := ratelimit.New(cfg, pool, log)

	server := &http.Server{
		Addr:              cfg.Server.RunAddress,
		Handler:           api.New(store, limiter, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("relay listening", slog.String("address", cfg.Server.RunAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("relay stopped")
	return nil
}
