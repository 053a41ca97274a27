package minty

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(styles.Muted)
)

// printComics prints comics as a table, or empty when there are none.
func printComics(cmd *cobra.Command, comics []data.Comic, empty string) {
	out := cmd.OutOrStdout()
	if len(comics) == 0 {
		fmt.Fprintln(out, empty)
		return
	}

	var (
		headerStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Align(lipgloss.Center)
		cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Primary)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			default:
				return cellStyle
			}
		}).
		Headers("#", "Title", "Rating", "Genres", "ID")

	for i, comic := range comics {
		t.Row(
			fmt.Sprintf("%d", i+1),
			truncateString(comic.Title, 48),
			comic.RatingLabel(),
			truncateString(comic.GenreLabel(), 30),
			comic.ID.String(),
		)
	}

	fmt.Fprintln(out, t)
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
