// cmd/client/cmd/pair/generate.go
package pair

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Создать конфигурацию сопряжения",
	Long: `Готовит группу синхронизации на основном устройстве и печатает
конфигурацию сопряжения для передачи другим устройствам.

Конфигурация содержит мастер-ключ группы. Она показывается один раз,
нигде не сохраняется и не должна попадать в логи, историю команд или
переписку. Передайте её на новое устройство по защищенному каналу.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		fmt.Println("=== Создание группы синхронизации ===")
		fmt.Println()

		fmt.Println("Регистрация устройства на реле...")
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		pc, err := app.GeneratePairing(ctx)
		if err != nil {
			return fmt.Errorf("ошибка создания конфигурации сопряжения: %w", err)
		}

		encoded, err := pc.Encode()
		if err != nil {
			return err
		}

		fmt.Println()
		color.Yellow("⚠️  Конфигурация содержит мастер-ключ группы.")
		color.Yellow("   Она показывается один раз и нигде не сохраняется.")
		fmt.Println()
		fmt.Println("На новом устройстве выполните: clipsync pair join")
		fmt.Println("и вставьте строку ниже:")
		fmt.Println()
		fmt.Println(string(encoded))

		return nil
	},
}
