// cmd/client/cmd/init.go
package cmd

import (
	"fmt"

	"clipsync/cmd/client/cmd/clip"
	"clipsync/cmd/client/cmd/devices"
	"clipsync/cmd/client/cmd/pair"
	"clipsync/cmd/client/cmd/sync"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать клиент Clipsync",
	Long: `Команда init выполняет первоначальную настройку клиента:
	1. Создает каталог данных и локальную базу истории
	2. Генерирует мастер-ключ шифрования, если его еще нет
	3. Проверяет соединение с реле

Мастер-ключ шифрует все записи перед отправкой на реле. Устройство,
создавшее группу, передает ключ остальным при сопряжении.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Println("=== Инициализация Clipsync ===")
		fmt.Println()

		if err := app.Init(); err != nil {
			return fmt.Errorf("ошибка инициализации: %w", err)
		}

		fmt.Printf("Каталог данных: %s\n", cfg.DataDir)
		fmt.Printf("База истории:   %s\n", cfg.DatabasePath)
		fmt.Printf("Мастер-ключ:    %s\n", cfg.KeyPath)
		fmt.Println()

		// Проверяем соединение с реле
		fmt.Println("Проверка соединения с реле...")
		if err := app.CheckConnection(cmd.Context()); err != nil {
			fmt.Printf("⚠️  Предупреждение: реле недоступно: %v\n", err)
			fmt.Println("Вы можете работать локально, но синхронизация будет недоступна.")
		} else {
			fmt.Println("✓ Соединение с реле установлено")
		}

		fmt.Println()
		fmt.Println("✅ Инициализация успешно завершена!")
		fmt.Println()
		fmt.Println("Что дальше:")
		fmt.Println("1. Создайте группу синхронизации: clipsync pair generate")
		fmt.Println("2. Добавьте первую запись: clipsync clip add \"текст\"")
		fmt.Println("3. Запустите синхронизацию: clipsync sync run")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	// Команды сопряжения
	rootCmd.AddCommand(pair.PairCmd)

	// Команды работы с историей буфера обмена
	rootCmd.AddCommand(clip.ClipCmd)

	// Синхронизация и устройства группы
	rootCmd.AddCommand(sync.SyncCmd)
	rootCmd.AddCommand(devices.DevicesCmd)
}
