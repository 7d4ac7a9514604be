package clip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Удалить запись",
	Long: `Помечает запись удаленной и рассылает удаление на остальные
устройства группы при ближайшей синхронизации.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.DeleteClip(ctx, args[0]); err != nil {
			if errors.Is(err, client.ErrClipNotFound) {
				return fmt.Errorf("запись %s не найдена", args[0])
			}
			return fmt.Errorf("ошибка удаления записи: %w", err)
		}

		color.Green("✅ Запись удалена")

		return nil
	},
}
