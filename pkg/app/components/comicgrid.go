package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
)

const cardWidth = 30

// ComicGrid lays comic summaries out as cards, as many per row as the width
// allows. Each card shows the title, the rating label and the genre label.
type ComicGrid struct {
	Items         []data.Comic
	SelectedIndex int
	Width         int
	Height        int
	// EmptyText is shown when there are no items.
	EmptyText string
}

func NewComicGrid(emptyText string) *ComicGrid {
	return &ComicGrid{
		Items:     []data.Comic{},
		Width:     80,
		Height:    20,
		EmptyText: emptyText,
	}
}

func (g *ComicGrid) SetItems(items []data.Comic) {
	g.Items = items
	if g.SelectedIndex >= len(items) && len(items) > 0 {
		g.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		g.SelectedIndex = 0
	}
}

// Columns is the number of cards per row.
func (g *ComicGrid) Columns() int {
	cols := g.Width / (cardWidth + 2)
	if cols < 1 {
		return 1
	}
	return cols
}

func (g *ComicGrid) Next() {
	if len(g.Items) == 0 {
		return
	}
	g.SelectedIndex++
	if g.SelectedIndex >= len(g.Items) {
		g.SelectedIndex = 0
	}
}

func (g *ComicGrid) Prev() {
	if len(g.Items) == 0 {
		return
	}
	g.SelectedIndex--
	if g.SelectedIndex < 0 {
		g.SelectedIndex = len(g.Items) - 1
	}
}

// Down moves one row down, staying put on the last row.
func (g *ComicGrid) Down() {
	if next := g.SelectedIndex + g.Columns(); next < len(g.Items) {
		g.SelectedIndex = next
	}
}

func (g *ComicGrid) Up() {
	if prev := g.SelectedIndex - g.Columns(); prev >= 0 {
		g.SelectedIndex = prev
	}
}

func (g *ComicGrid) Selected() *data.Comic {
	if len(g.Items) == 0 || g.SelectedIndex >= len(g.Items) {
		return nil
	}
	return &g.Items[g.SelectedIndex]
}

func (g *ComicGrid) View() string {
	if len(g.Items) == 0 {
		return styles.MutedStyle.Render(g.EmptyText)
	}

	cols := g.Columns()
	var rows []string
	for start := 0; start < len(g.Items); start += cols {
		end := start + cols
		if end > len(g.Items) {
			end = len(g.Items)
		}

		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, g.renderCard(g.Items[i], i == g.SelectedIndex))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return strings.Join(rows, "\n")
}

func (g *ComicGrid) renderCard(comic data.Comic, selected bool) string {
	cardStyle := styles.CardStyle
	if selected {
		cardStyle = styles.ActiveCardStyle
	}

	title := truncate(comic.Title, cardWidth-4)
	if selected {
		title = styles.SelectedStyle.Render(title)
	} else {
		title = styles.TextStyle.Bold(true).Render(title)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		styles.RatingStyle.Render("★ "+comic.RatingLabel()),
		styles.MutedStyle.Render(truncate(comic.GenreLabel(), cardWidth-4)),
	)

	return cardStyle.Width(cardWidth).Render(content)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
