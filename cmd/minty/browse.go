package minty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/sources"
	"github.com/spf13/cobra"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the latest comics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		controller := openController(cmd)
		defer controller.Close()

		comics, err := controller.Source().Latest(cmd.Context())
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to load latest comics: %w", err))
		}
		printComics(cmd, comics, "No comics yet.")
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search comics",
	Long: `Search comics by title and genre. Both are optional.

Genres: ` + strings.Join(sources.Genres, ", "),
	Run: func(cmd *cobra.Command, args []string) {
		term := strings.Join(args, " ")
		genre, _ := cmd.Flags().GetString("genre")

		controller := openController(cmd)
		defer controller.Close()

		comics, err := controller.Source().Search(cmd.Context(), term, genre)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("search failed: %w", err))
		}
		printComics(cmd, comics, "No results found.")
	},
}

var comicCmd = &cobra.Command{
	Use:   "comic [comic-id]",
	Short: "Show a comic and its chapters",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := openController(cmd)
		defer controller.Close()

		comic, err := controller.Source().GetComic(cmd.Context(), data.ID(args[0]))
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to load comic: %w", err))
		}
		if comic == nil {
			cobra.CheckErr(fmt.Errorf("comic %s not found", args[0]))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(comic.Title))
		fmt.Fprintln(out, mutedStyle.Render("By "+comic.AuthorLabel()))
		if len(comic.Genres) > 0 {
			fmt.Fprintln(out, strings.Join(comic.Genres, " · "))
		}
		if comic.Synopsis != "" {
			fmt.Fprintf(out, "\n%s\n", lipgloss.NewStyle().Width(80).Render(comic.Synopsis))
		}
		fmt.Fprintln(out)

		if len(comic.Chapters) == 0 {
			fmt.Fprintln(out, "No chapters yet.")
			return
		}
		fmt.Fprintln(out, chapterTable(comic.Chapters).View())
	},
}

var readCmd = &cobra.Command{
	Use:   "read [chapter-id]",
	Short: "List a chapter's pages in reading order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := openController(cmd)
		defer controller.Close()

		chapter, err := controller.Source().GetChapter(cmd.Context(), data.ID(args[0]))
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to load chapter: %w", err))
		}
		if chapter == nil {
			cobra.CheckErr(fmt.Errorf("chapter %s not found", args[0]))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(chapter.Title))
		for i, ref := range chapter.Images {
			fmt.Fprintf(out, "Page %d  %s\n", i+1, ref)
		}
	},
}

// chapterTable renders the chapter list with the bubbles table, unfocused,
// as a static listing.
func chapterTable(chapters []data.ChapterRef) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Chapter", Width: 60},
	}

	rows := make([]table.Row, 0, len(chapters))
	for _, ch := range chapters {
		rows = append(rows, table.Row{ch.ID.String(), truncateString(ch.Label(), 58)})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		// The height includes the header and its border
		table.WithHeight(len(rows)+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.NoColor{}).
		Bold(false)
	t.SetStyles(s)
	return t
}

func init() {
	searchCmd.Flags().StringP("genre", "g", "", "Only show comics of this genre")

	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(comicCmd)
	rootCmd.AddCommand(readCmd)
}
