package devices

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
)

// DevicesCmd показывает реестр устройств группы синхронизации
var DevicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Устройства группы синхронизации",
	Long: `Запрашивает у реле список устройств группы с временем последней
активности.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		roster, err := app.Devices(cmd.Context())
		if err != nil {
			if errors.Is(err, client.ErrNotPaired) {
				return fmt.Errorf("устройство не сопряжено. Выполните: clipsync pair generate")
			}
			return fmt.Errorf("ошибка получения списка устройств: %w", err)
		}

		if len(roster) == 0 {
			fmt.Println("В группе нет устройств")
			return nil
		}

		active := color.New(color.FgGreen).SprintFunc()
		inactive := color.New(color.FgYellow).SprintFunc()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tНазвание\tТип\tПоследняя активность\tСтатус\t\n")
		fmt.Fprintf(w, "---\t---\t---\t---\t---\t\n")

		for _, d := range roster {
			status := inactive("неактивно")
			if d.Active {
				status = active("активно")
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				d.ID,
				d.Name,
				d.Type,
				d.LastSeen.Format("2006-01-02 15:04"),
				status,
			)
		}

		w.Flush()
		fmt.Printf("\nВсего устройств: %d\n", len(roster))

		return nil
	},
}
