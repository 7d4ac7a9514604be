// cmd/client/cmd/clip/add.go
package clip

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
	"clipsync/internal/domain/clip"
)

var (
	addTitle  string
	addSource string
	addFile   string
	addLink   string
)

var addCmd = &cobra.Command{
	Use:   "add [текст]",
	Short: "Добавить запись в историю",
	Long: `Создание новой записи истории буфера обмена.

Запись может содержать несколько блоков содержимого: текст из аргумента,
ссылку (--link) и файл (--file). Без аргументов текст запрашивается
интерактивно.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		text := strings.Join(args, " ")
		if text == "" && addLink == "" && addFile == "" {
			fmt.Print("Текст записи: ")
			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				text = scanner.Text()
			}
		}

		var contents []clip.Content
		if text != "" {
			contents = append(contents, clip.Content{Type: clip.ContentText, Data: []byte(text)})
		}
		if addLink != "" {
			contents = append(contents, clip.Content{Type: clip.ContentLink, Data: []byte(addLink)})
		}
		if addFile != "" {
			data, err := os.ReadFile(addFile)
			if err != nil {
				return fmt.Errorf("ошибка чтения файла: %w", err)
			}
			contents = append(contents, clip.Content{Type: clip.ContentFile, Data: data})
			if addTitle == "" {
				addTitle = filepath.Base(addFile)
			}
		}

		if len(contents) == 0 {
			return fmt.Errorf("запись пуста")
		}

		title := addTitle
		if title == "" {
			title = defaultTitle(text, addLink)
		}

		stored, err := app.AddClip(title, addSource, contents)
		if err != nil {
			return fmt.Errorf("ошибка создания записи: %w", err)
		}

		color.Green("✅ Запись '%s' добавлена", stored.Clip.Title)
		fmt.Printf("ID: %s\n", stored.Clip.SyncID)

		return nil
	},
}

// defaultTitle строит название записи из первого непустого блока
func defaultTitle(text, link string) string {
	title := strings.TrimSpace(text)
	if title == "" {
		title = strings.TrimSpace(link)
	}
	if r := []rune(title); len(r) > 40 {
		title = string(r[:40]) + "..."
	}
	if title == "" {
		title = "Без названия"
	}
	return title
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "название записи")
	addCmd.Flags().StringVarP(&addSource, "source", "s", "", "приложение-источник")
	addCmd.Flags().StringVar(&addFile, "file", "", "путь к файлу с содержимым")
	addCmd.Flags().StringVar(&addLink, "link", "", "ссылка")
}
