// cmd/client/cmd/clip/list.go
package clip

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"clipsync/cmd/client/cmd/types"
	"clipsync/internal/app/client"
	"clipsync/internal/domain/clip"
)

var (
	listFormat string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Список записей истории",
	Long: `Просмотр локальной истории буфера обмена, свежескопированные
записи первыми.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok || app == nil {
			return fmt.Errorf("приложение не инициализировано")
		}

		clips, err := app.ListClips()
		if err != nil {
			return fmt.Errorf("ошибка получения списка записей: %w", err)
		}

		if listLimit > 0 && len(clips) > listLimit {
			clips = clips[:listLimit]
		}

		switch listFormat {
		case "json":
			return printClipsJSON(clips)
		case "table":
			return printClipsTable(clips)
		default:
			return printClipsSimple(clips)
		}
	},
}

func printClipsSimple(clips []*client.StoredClip) error {
	if len(clips) == 0 {
		fmt.Println("История пуста")
		return nil
	}

	fmt.Printf("Записей в истории: %d\n\n", len(clips))

	for i, stored := range clips {
		marker := " "
		if stored.Clip.Pinned {
			marker = "📌"
		}

		fmt.Printf("%d. %s %s\n", i+1, marker, stored.Clip.Title)
		fmt.Printf("   ID: %s | %s | копирований: %d | %s\n",
			shortID(stored.Clip.SyncID),
			contentSummary(stored.Clip.Contents),
			stored.Clip.CopyCount,
			formatMillis(stored.Clip.LastCopiedAt),
		)
		fmt.Println()
	}

	return nil
}

func printClipsTable(clips []*client.StoredClip) error {
	if len(clips) == 0 {
		fmt.Println("История пуста")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tНазвание\tСодержимое\tКопирований\tПоследнее копирование\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t\n")

	for _, stored := range clips {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t\n",
			shortID(stored.Clip.SyncID),
			truncate(stored.Clip.Title, 30),
			contentSummary(stored.Clip.Contents),
			stored.Clip.CopyCount,
			formatMillis(stored.Clip.LastCopiedAt),
		)
	}

	w.Flush()
	fmt.Printf("\nВсего записей: %d\n", len(clips))
	return nil
}

func printClipsJSON(clips []*client.StoredClip) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(clips)
}

// shortID первые восемь символов идентификатора, как в выводе git
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func contentSummary(contents []clip.Content) string {
	parts := make([]string, 0, len(contents))
	for _, c := range contents {
		parts = append(parts, string(c.Type))
	}
	return strings.Join(parts, "+")
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

func truncate(s string, length int) string {
	if r := []rune(s); len(r) > length {
		return string(r[:length-3]) + "..."
	}
	return s
}

func init() {
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "simple", "формат вывода (simple, table, json)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "ограничение количества записей")
}
