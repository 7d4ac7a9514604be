// cmd/client/cmd/clip/show.go
package clip

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
	"clipsync/internal/domain/clip"
)

var markCopied bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Показать запись",
	Long: `Выводит запись целиком: метаданные и содержимое. Текст и ссылки
печатаются как есть, бинарные блоки показываются размером.

Флаг --copy отмечает копирование: счетчик и время копирования растут,
обновление уходит на реле при следующем цикле синхронизации.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		var stored *client.StoredClip
		var err error
		if markCopied {
			stored, err = app.MarkCopied(args[0])
		} else {
			stored, err = app.GetClip(args[0])
		}
		if err != nil {
			return fmt.Errorf("запись не найдена: %w", err)
		}

		c := stored.Clip

		color.Cyan("=== %s ===", c.Title)
		fmt.Printf("ID:           %s\n", c.SyncID)
		fmt.Printf("Устройство:   %s\n", c.DeviceID)
		if c.SourceApp != "" {
			fmt.Printf("Источник:     %s\n", c.SourceApp)
		}
		fmt.Printf("Создано:      %s\n", formatMillis(c.CreatedAt))
		fmt.Printf("Скопировано:  %s (всего %d)\n", formatMillis(c.LastCopiedAt), c.CopyCount)
		if c.Pinned {
			fmt.Println("Закреплено:   да")
		}

		fmt.Println()
		for i, content := range c.Contents {
			switch content.Type {
			case clip.ContentText, clip.ContentLink:
				fmt.Printf("[%d] %s:\n%s\n", i+1, content.Type, string(content.Data))
			default:
				fmt.Printf("[%d] %s: %d байт\n", i+1, content.Type, len(content.Data))
			}
		}

		if markCopied {
			fmt.Println()
			color.Green("✓ Копирование отмечено")
		}

		return nil
	},
}

func init() {
	showCmd.Flags().BoolVarP(&markCopied, "copy", "c", false, "отметить копирование записи")
}
