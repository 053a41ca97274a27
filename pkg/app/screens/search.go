package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/minty/pkg/app/components"
	"github.com/kerbaras/minty/pkg/app/loader"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/sources"
)

const allGenres = "All genres"

type SearchScreen struct {
	ctx     context.Context
	deps    Deps
	input   textinput.Model
	genre   int // 0 is all genres, otherwise sources.Genres[genre-1]
	results *loader.Loader[[]data.Comic]
	grid    *components.ComicGrid
	width   int
	height  int
}

func NewSearchScreen(ctx context.Context, deps Deps) *SearchScreen {
	ti := textinput.New()
	ti.Placeholder = "Search comics"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 50

	return &SearchScreen{
		ctx:     ctx,
		deps:    deps,
		input:   ti,
		results: loader.New(loader.Slice[data.Comic]),
		grid:    components.NewComicGrid("No results found"),
	}
}

func (s *SearchScreen) Init() tea.Cmd {
	return textinput.Blink
}

// Typing is true while the search field has focus.
func (s *SearchScreen) Typing() bool {
	return s.input.Focused()
}

// Genre is the selected filter; empty means all genres.
func (s *SearchScreen) Genre() string {
	if s.genre == 0 {
		return ""
	}
	return sources.Genres[s.genre-1]
}

func (s *SearchScreen) genreLabel() string {
	if g := s.Genre(); g != "" {
		return g
	}
	return allGenres
}

func (s *SearchScreen) search() tea.Cmd {
	term := strings.TrimSpace(s.input.Value())
	genre := s.Genre()
	s.deps.Log.WithField("term", term).WithField("genre", genre).Debug("search")
	return s.results.Load(s.ctx, func(ctx context.Context) ([]data.Comic, error) {
		return s.deps.Source.Search(ctx, term, genre)
	})
}

func (s *SearchScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.grid.Width = msg.Width
		s.grid.Height = msg.Height
		return nil

	case loader.Result[[]data.Comic]:
		if s.results.Apply(msg) {
			s.grid.SetItems(s.results.Value())
		}
		return nil

	case tea.KeyMsg:
		if cmd, handled := s.handleKey(msg); handled {
			return cmd
		}
	}

	if s.input.Focused() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	}
	return nil
}

func (s *SearchScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+g":
		s.genre = (s.genre + 1) % (len(sources.Genres) + 1)
		return nil, true

	case "esc":
		if s.input.Focused() {
			s.input.Blur()
			return nil, true
		}
		return s.input.Focus(), true

	case "enter":
		if s.input.Focused() {
			s.input.Blur()
			return s.search(), true
		}
		if comic := s.grid.Selected(); comic != nil {
			return Navigate(fmt.Sprintf("/comic/%s", comic.ID)), true
		}
		return nil, true
	}

	if s.input.Focused() {
		return nil, false
	}

	switch msg.String() {
	case "/":
		return s.input.Focus(), true
	case "r":
		if s.results.Phase() == loader.Failed {
			return s.search(), true
		}
	case "right", "l":
		s.grid.Next()
	case "left", "h":
		s.grid.Prev()
	case "down", "j":
		s.grid.Down()
	case "up", "k":
		s.grid.Up()
	}
	return nil, true
}

func (s *SearchScreen) View() string {
	header := styles.TitleStyle.Render("Search")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())
	genreView := styles.ChipStyle.Render(s.genreLabel())

	var resultsView string
	if s.results.Phase() == loader.Idle {
		resultsView = styles.MutedStyle.Render("Type a term and press enter to search.")
	} else {
		resultsView = renderPhase(s.results.Phase(), "Search failed.", s.grid.View)
	}

	help := styles.HelpStyle.Render(
		"enter: search/open • ctrl+g: genre • esc: switch focus • /: edit search • q: quit",
	)

	return fmt.Sprintf("%s\n\n%s %s\n\n%s\n\n%s", header, inputView, genreView, resultsView, help)
}

func (s *SearchScreen) Stop() {
	s.results.Stop()
}
