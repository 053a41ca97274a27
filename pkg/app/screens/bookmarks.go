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

// BookmarksScreen lists the signed in user's bookmarks. Without a token it
// shows the sign in prompt and never touches the network.
type BookmarksScreen struct {
	ctx       context.Context
	deps      Deps
	token     string
	bookmarks *loader.Loader[[]data.Comic]
	grid      *components.ComicGrid
	prompt    components.AuthPrompt
}

func NewBookmarksScreen(ctx context.Context, deps Deps) *BookmarksScreen {
	return &BookmarksScreen{
		ctx:       ctx,
		deps:      deps,
		bookmarks: loader.New(loader.Slice[data.Comic]),
		grid:      components.NewComicGrid("No bookmarks yet"),
	}
}

func (s *BookmarksScreen) Init() tea.Cmd {
	s.token = s.deps.Session.Token()
	return s.load()
}

func (s *BookmarksScreen) load() tea.Cmd {
	if s.token == "" {
		s.bookmarks.Stop()
		return nil
	}
	token := s.token
	return s.bookmarks.Load(s.ctx, func(ctx context.Context) ([]data.Comic, error) {
		return s.deps.Source.Bookmarks(ctx, token)
	})
}

func (s *BookmarksScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.grid.Width = msg.Width
		s.grid.Height = msg.Height

	case SessionChangedMsg:
		if token := s.deps.Session.Token(); token != s.token {
			s.token = token
			return s.load()
		}

	case loader.Result[[]data.Comic]:
		if s.bookmarks.Apply(msg) {
			s.grid.SetItems(s.bookmarks.Value())
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *BookmarksScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if s.token == "" {
		if s.prompt.Activated(key) {
			return Navigate("/auth")
		}
		return nil
	}

	switch key {
	case "right", "l":
		s.grid.Next()
	case "left", "h":
		s.grid.Prev()
	case "down", "j":
		s.grid.Down()
	case "up", "k":
		s.grid.Up()
	case "r":
		if s.bookmarks.Phase() == loader.Failed {
			return s.load()
		}
	case "enter":
		if comic := s.grid.Selected(); comic != nil {
			return Navigate(fmt.Sprintf("/comic/%s", comic.ID))
		}
	}
	return nil
}

func (s *BookmarksScreen) View() string {
	header := styles.TitleStyle.Render("Bookmarks")
	if s.token == "" {
		help := styles.HelpStyle.Render("enter: sign in • 1-4/tab: navigate • q: quit")
		return fmt.Sprintf("%s\n\n%s\n\n%s", header, s.prompt.View(), help)
	}

	body := renderPhase(s.bookmarks.Phase(), "Could not load your bookmarks.", s.grid.View)
	help := styles.HelpStyle.Render("←/→/↑/↓: move • enter: open • q: quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", header, body, help)
}

func (s *BookmarksScreen) Stop() {
	s.bookmarks.Stop()
}
