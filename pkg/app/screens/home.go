package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/minty/pkg/app/components"
	"github.com/kerbaras/minty/pkg/app/loader"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
)

// HomeScreen shows the latest comics.
type HomeScreen struct {
	ctx    context.Context
	deps   Deps
	latest *loader.Loader[[]data.Comic]
	grid   *components.ComicGrid
	width  int
	height int
}

func NewHomeScreen(ctx context.Context, deps Deps) *HomeScreen {
	return &HomeScreen{
		ctx:    ctx,
		deps:   deps,
		latest: loader.New(loader.Slice[data.Comic]),
		grid:   components.NewComicGrid("No comics yet"),
	}
}

func (s *HomeScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HomeScreen) load() tea.Cmd {
	return s.latest.Load(s.ctx, s.deps.Source.Latest)
}

func (s *HomeScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.grid.Width = msg.Width
		s.grid.Height = msg.Height

	case loader.Result[[]data.Comic]:
		if s.latest.Apply(msg) {
			s.grid.SetItems(s.latest.Value())
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *HomeScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "right", "l":
		s.grid.Next()
	case "left", "h":
		s.grid.Prev()
	case "down", "j":
		s.grid.Down()
	case "up", "k":
		s.grid.Up()
	case "r":
		if s.latest.Phase() == loader.Failed {
			return s.load()
		}
	case "enter":
		if comic := s.grid.Selected(); comic != nil {
			return Navigate(fmt.Sprintf("/comic/%s", comic.ID))
		}
	}
	return nil
}

func (s *HomeScreen) View() string {
	header := styles.TitleStyle.Render("Latest releases")
	body := renderPhase(s.latest.Phase(), "Could not load the latest comics.", s.grid.View)
	help := styles.HelpStyle.Render("←/→/↑/↓: move • enter: open • 1-4/tab: navigate • q: quit")
	return fmt.Sprintf("%s\n%s\n%s", header, body, help)
}

func (s *HomeScreen) Stop() {
	s.latest.Stop()
}
