// cmd/client/cmd/pair/join.go
package pair

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
	"clipsync/internal/app/client/pairing"
)

var joinFile string

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Присоединиться к группе синхронизации",
	Long: `Подключает устройство к существующей группе по конфигурации
сопряжения, полученной от основного устройства.

Конфигурация читается из файла (--file) или вводится интерактивно.
Интерактивный ввод не отображается на экране: внутри мастер-ключ.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		var raw []byte
		var err error

		if joinFile != "" {
			raw, err = os.ReadFile(joinFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
			}
		} else {
			fmt.Print("Вставьте конфигурацию сопряжения: ")
			raw, err = term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return fmt.Errorf("ошибка чтения конфигурации: %w", err)
			}
			fmt.Println()
		}

		pc, err := pairing.Parse(bytes.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("конфигурация сопряжения не принята: %w", err)
		}

		fmt.Println("Подключение к группе...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.JoinPairing(ctx, pc); err != nil {
			return fmt.Errorf("ошибка сопряжения: %w", err)
		}

		fmt.Println()
		color.Green("✅ Устройство подключено к группе!")
		fmt.Println("Запустите синхронизацию: clipsync sync run")

		return nil
	},
}

func init() {
	joinCmd.Flags().StringVarP(&joinFile, "file", "f", "", "файл с конфигурацией сопряжения")
}
