package sync

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

var autoInterval time.Duration

// SyncCmd - родительская команда синхронизации с реле
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Синхронизация с реле",
	Long: `Обмен записями с остальными устройствами группы через реле.

Цикл двухфазный: сначала локальные изменения уходят на реле, затем
принимаются чужие. Реле видит только шифротекст.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Выполнить один цикл синхронизации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}
		return runOnce(cmd.Context(), app)
	},
}

var autoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Синхронизировать по расписанию",
	Long: `Запускает цикл синхронизации с заданным интервалом до сигнала
завершения (Ctrl+C). Интервал берется из конфигурации, флаг --interval
его переопределяет.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}

		interval := app.SyncInterval()
		if autoInterval > 0 {
			interval = autoInterval
		}

		return runAuto(cmd.Context(), app, interval)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Состояние синхронизации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFromContext(cmd)
		if err != nil {
			return err
		}
		return showStatus(cmd.Context(), app)
	},
}

func appFromContext(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

func runOnce(ctx context.Context, app *client.App) error {
	fmt.Println("Синхронизация...")

	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	result, err := app.Sync(runCtx)
	if err != nil {
		return syncError(err)
	}

	color.Green("✅ Синхронизация завершена за %v", result.Duration.Round(time.Millisecond))
	fmt.Printf("Отправлено: %d\n", result.Pushed)
	fmt.Printf("Получено:   %d\n", result.Applied)
	if result.Removed > 0 {
		fmt.Printf("Удалено:    %d\n", result.Removed)
	}
	if result.Skipped > 0 {
		fmt.Printf("Пропущено:  %d\n", result.Skipped)
	}
	if len(result.Conflicts) > 0 {
		fmt.Printf("Проиграли гонку на сервере: %d\n", len(result.Conflicts))
	}

	return nil
}

func runAuto(ctx context.Context, app *client.App, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// События цикла печатаются по мере поступления
	if events := app.SyncEvents(); events != nil {
		go func() {
			for e := range events {
				switch e.State {
				case client.SyncSuccess:
					fmt.Printf("[%s] применено записей: %d\n", e.At.Format("15:04:05"), e.Applied)
				case client.SyncFailed:
					color.Red("[%s] ошибка: %v", e.At.Format("15:04:05"), e.Err)
				}
			}
		}()
	}

	fmt.Printf("Автосинхронизация каждые %v, Ctrl+C для выхода\n", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := app.Sync(ctx); err != nil {
			// Несопряженное устройство и несовпадение ключа интервал не вылечит
			if errors.Is(err, client.ErrNotPaired) || errors.Is(err, client.ErrRePairRequired) {
				return syncError(err)
			}
		}

		select {
		case <-ctx.Done():
			fmt.Println()
			fmt.Println("Завершение автосинхронизации")
			return nil
		case <-ticker.C:
		}
	}
}

func showStatus(ctx context.Context, app *client.App) error {
	info, err := app.SyncStatus(ctx)
	if err != nil {
		return fmt.Errorf("ошибка получения статуса: %w", err)
	}

	fmt.Println("=== Статус синхронизации ===")
	fmt.Println()

	if info.Paired {
		color.Green("Сопряжение: установлено")
	} else {
		color.Yellow("Сопряжение: отсутствует")
	}
	fmt.Printf("Устройство: %s\n", info.DeviceID)
	fmt.Printf("Группа:     %s\n", info.GroupID)
	fmt.Printf("Реле:       %s\n", info.Endpoint)
	fmt.Println()

	fmt.Println("📋 Локальная история:")
	fmt.Printf("  Записей: %d\n", info.ClipCount)
	if info.HighWater > 0 {
		fmt.Printf("  Отметка синхронизации: %s\n",
			time.UnixMilli(info.HighWater).Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("  Отметка синхронизации: нет (полная синхронизация при следующем цикле)")
	}

	if !info.Stats.LastSync.IsZero() {
		fmt.Printf("  Последний успешный цикл: %s\n",
			info.Stats.LastSync.Format("2006-01-02 15:04:05"))
	}
	if info.Stats.LastError != nil {
		color.Red("  Последняя ошибка: %v", info.Stats.LastError)
	}

	if info.Relay != nil {
		fmt.Println()
		fmt.Println("🌐 Группа на реле:")
		fmt.Printf("  Активных устройств: %d\n", info.Relay.ActiveDevices)
		fmt.Printf("  Записей: %d\n", info.Relay.ItemCount)
		fmt.Printf("  Суммарный размер: %d байт\n", info.Relay.TotalSize)
		if !info.Relay.LastActivity.IsZero() {
			fmt.Printf("  Последняя активность: %s\n",
				info.Relay.LastActivity.Format("2006-01-02 15:04:05"))
		}
	} else if info.Paired {
		fmt.Println()
		color.Yellow("⚠️  Реле недоступно")
	}

	return nil
}

func syncError(err error) error {
	switch {
	case errors.Is(err, client.ErrNotPaired):
		return fmt.Errorf("устройство не сопряжено. Выполните: clipsync pair generate")
	case errors.Is(err, client.ErrRePairRequired):
		color.Red("❌ Требуется повторное сопряжение: ключ группы или токен не приняты")
		return err
	case errors.Is(err, client.ErrRateLimited):
		return fmt.Errorf("реле ограничило частоту запросов, повторите позже: %w", err)
	default:
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}
}

func init() {
	SyncCmd.AddCommand(runCmd)
	SyncCmd.AddCommand(autoCmd)
	SyncCmd.AddCommand(statusCmd)

	autoCmd.Flags().DurationVar(&autoInterval, "interval", 0, "интервал между циклами (например 15s)")
}
