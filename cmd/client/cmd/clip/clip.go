package clip

import (
	"github.com/spf13/cobra"
)

// ClipCmd - родительская команда для работы с историей буфера обмена
var ClipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Управление историей буфера обмена",
	Long:  `Добавление, просмотр и удаление записей локальной истории буфера обмена.`,
}

func init() {
	ClipCmd.AddCommand(addCmd)
	ClipCmd.AddCommand(listCmd)
	ClipCmd.AddCommand(showCmd)
	ClipCmd.AddCommand(rmCmd)
}
