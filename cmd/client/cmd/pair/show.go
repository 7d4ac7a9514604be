package pair

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Показать состояние сопряжения",
	Long: `Выводит группу, идентификатор устройства, адрес реле и отпечаток
мастер-ключа. Сам ключ не показывается: для передачи ключа на новое
устройство используйте pair generate.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		info := app.PairingStatus()

		fmt.Println("=== Состояние сопряжения ===")
		if info.Paired {
			color.Green("Статус: сопряжено")
		} else {
			color.Yellow("Статус: не сопряжено")
		}
		fmt.Printf("Группа:          %s\n", valueOrDash(info.GroupID))
		fmt.Printf("Устройство:      %s\n", valueOrDash(info.DeviceID))
		fmt.Printf("Реле:            %s\n", valueOrDash(info.Endpoint))
		fmt.Printf("Отпечаток ключа: %s\n", valueOrDash(info.KeyFingerprint))

		if !info.HasToken {
			fmt.Println()
			fmt.Println("Токен реле отсутствует.")
			fmt.Println("Выполните clipsync pair generate или clipsync pair join.")
		}

		return nil
	},
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
