package screens

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/minty/pkg/api"
	"github.com/kerbaras/minty/pkg/app/loader"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
)

// ComicScreen shows one comic and its chapters. It is reused when the route
// moves to another comic.
type ComicScreen struct {
	ctx      context.Context
	deps     Deps
	id       data.ID
	detail   *loader.Loader[*data.ComicDetail]
	selected int
	width    int
	height   int
}

func NewComicScreen(ctx context.Context, deps Deps, id data.ID) *ComicScreen {
	return &ComicScreen{
		ctx:    ctx,
		deps:   deps,
		id:     id,
		detail: loader.New(loader.Pointer[data.ComicDetail]),
	}
}

func (s *ComicScreen) ID() data.ID { return s.id }

func (s *ComicScreen) Init() tea.Cmd {
	return s.load()
}

// SetID switches to another comic. Anything still loading for the previous
// one is discarded.
func (s *ComicScreen) SetID(id data.ID) tea.Cmd {
	s.id = id
	s.selected = 0
	return s.load()
}

func (s *ComicScreen) load() tea.Cmd {
	id := s.id
	return s.detail.Load(s.ctx, func(ctx context.Context) (*data.ComicDetail, error) {
		comic, err := s.deps.Source.GetComic(ctx, id)
		if api.IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return comic, err
	})
}

func (s *ComicScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case loader.Result[*data.ComicDetail]:
		s.detail.Apply(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *ComicScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace":
		return Back()
	case "r":
		if s.detail.Phase() == loader.Failed {
			return s.load()
		}
	}

	comic := s.detail.Value()
	if comic == nil || len(comic.Chapters) == 0 {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(comic.Chapters)-1 {
			s.selected++
		}
	case "enter":
		return Navigate(fmt.Sprintf("/chapter/%s", comic.Chapters[s.selected].ID))
	}
	return nil
}

func (s *ComicScreen) View() string {
	body := renderPhase(s.detail.Phase(), "Could not load this comic.", s.renderDetail)
	help := styles.HelpStyle.Render("↑/k ↓/j: select chapter • enter: read • esc: back • q: quit")
	return fmt.Sprintf("%s\n\n%s", body, help)
}

func (s *ComicScreen) renderDetail() string {
	comic := s.detail.Value()
	if comic == nil {
		return styles.MutedStyle.Render("Not found")
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(comic.Title))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("By " + comic.AuthorLabel()))
	b.WriteString("\n")

	if len(comic.Genres) > 0 {
		chips := make([]string, 0, len(comic.Genres))
		for _, g := range comic.Genres {
			chips = append(chips, styles.ChipStyle.Render(g))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
		b.WriteString("\n")
	}

	if comic.Synopsis != "" {
		width := s.width - 4
		if width < 20 {
			width = 76
		}
		b.WriteString("\n")
		b.WriteString(styles.TextStyle.Width(width).Render(comic.Synopsis))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Chapters"))
	b.WriteString("\n")
	if len(comic.Chapters) == 0 {
		b.WriteString(styles.MutedStyle.Render("No chapters yet"))
		return b.String()
	}

	// Only the rows that fit around the selection are drawn.
	start, end := visibleRange(s.selected, len(comic.Chapters), s.height-12)
	for i := start; i < end; i++ {
		line := comic.Chapters[i].Label()
		if i == s.selected {
			b.WriteString(styles.SelectedStyle.Render("▶ " + line))
		} else {
			b.WriteString(styles.TextStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// visibleRange returns the window of rows [start, end) that keeps selected
// in view. A non-positive height shows everything.
func visibleRange(selected, total, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > total {
		end = total
		start = end - height
	}
	return start, end
}

func (s *ComicScreen) Stop() {
	s.detail.Stop()
}
