package pair

import (
	"github.com/spf13/cobra"
)

// PairCmd - родительская команда для операций сопряжения устройств
var PairCmd = &cobra.Command{
	Use:   "pair",
	Short: "Сопряжение устройств",
	Long:  `Создание группы синхронизации и подключение к ней новых устройств.`,
}

func init() {
	PairCmd.AddCommand(generateCmd)
	PairCmd.AddCommand(joinCmd)
	PairCmd.AddCommand(showCmd)
}
