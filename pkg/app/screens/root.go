package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/logging"
	"github.com/kerbaras/minty/pkg/services"
)

const (
	heroTitle   = "Minty Comics"
	heroTagline = "Read, discover, and bookmark comics in a clean, modern reader."
)

// RootScreen is the navigation shell: it owns the route history, mounts one
// screen at a time and draws the persistent chrome around it.
type RootScreen struct {
	ctx  context.Context
	deps Deps

	route   Route
	current Screen
	history []Route

	width  int
	height int
}

func NewRootScreen(ctx context.Context, deps Deps, startPath string) *RootScreen {
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	r := &RootScreen{ctx: ctx, deps: deps}
	r.route = ParseRoute(startPath)
	r.current = r.build(r.route)
	return r
}

func (r *RootScreen) Route() Route { return r.route }

func (r *RootScreen) Current() Screen { return r.current }

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(
		r.current.Init(),
		r.listenForSession,
		r.listenForProgress,
	)
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		return r, r.current.Update(r.contentSize())

	case tea.KeyMsg:
		if cmd, handled := r.handleKey(msg); handled {
			return r, cmd
		}

	case NavigateMsg:
		return r, r.navigate(ParseRoute(msg.Path), true)

	case BackMsg:
		prev := Route{Kind: HomeRoute}
		if n := len(r.history); n > 0 {
			prev = r.history[n-1]
			r.history = r.history[:n-1]
		}
		return r, r.navigate(prev, false)

	case SessionChangedMsg:
		return r, tea.Batch(r.current.Update(msg), r.listenForSession)

	case services.ExportProgress:
		return r, tea.Batch(r.current.Update(msg), r.listenForProgress)
	}

	return r, r.current.Update(msg)
}

func (r *RootScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit, true
	}
	if t, ok := r.current.(typingScreen); ok && t.Typing() {
		return nil, false
	}

	switch key {
	case "q":
		return tea.Quit, true
	case "1", "2", "3", "4":
		item := navItems[key[0]-'1']
		return r.navigate(Route{Kind: item.route}, true), true
	case "tab":
		next := (navIndex(r.route.Kind) + 1) % len(navItems)
		return r.navigate(Route{Kind: navItems[next].route}, true), true
	}
	return nil, false
}

// navigate shows route. Moving between two routes of the same parameterized
// kind keeps the screen and swaps its id; anything else unmounts the current
// screen and mounts a fresh one.
func (r *RootScreen) navigate(route Route, push bool) tea.Cmd {
	if route == r.route {
		return nil
	}
	if push {
		r.history = append(r.history, r.route)
	}

	r.deps.Log.WithField("path", route.Path()).Debug("navigate")

	if route.parameterized() && route.Kind == r.route.Kind {
		if ps, ok := r.current.(paramScreen); ok {
			r.route = route
			return ps.SetID(route.ID)
		}
	}

	r.current.Stop()
	r.route = route
	r.current = r.build(route)

	var sizeCmd tea.Cmd
	if r.width > 0 {
		sizeCmd = r.current.Update(r.contentSize())
	}
	return tea.Batch(r.current.Init(), sizeCmd)
}

func (r *RootScreen) build(route Route) Screen {
	switch route.Kind {
	case SearchRoute:
		return NewSearchScreen(r.ctx, r.deps)
	case BookmarksRoute:
		return NewBookmarksScreen(r.ctx, r.deps)
	case ProfileRoute:
		return NewProfileScreen(r.ctx, r.deps)
	case ComicRoute:
		return NewComicScreen(r.ctx, r.deps, route.ID)
	case ChapterRoute:
		return NewReaderScreen(r.ctx, r.deps, route.ID)
	case AuthRoute:
		return NewAuthScreen(r.ctx, r.deps)
	default:
		return NewHomeScreen(r.ctx, r.deps)
	}
}

func (r *RootScreen) listenForSession() tea.Msg {
	if r.deps.Session == nil {
		return nil
	}
	<-r.deps.Session.Changes()
	return SessionChangedMsg{}
}

func (r *RootScreen) listenForProgress() tea.Msg {
	if r.deps.Exporter == nil {
		return nil
	}
	return <-r.deps.Exporter.GetProgressChannel()
}

// contentSize is the space left for the screen once the chrome is drawn.
func (r *RootScreen) contentSize() tea.WindowSizeMsg {
	chrome := lipgloss.Height(r.renderNav()) + 1
	if r.route.Kind == HomeRoute {
		chrome += lipgloss.Height(r.renderHero())
	}
	h := r.height - chrome
	if h < 1 {
		h = 1
	}
	return tea.WindowSizeMsg{Width: r.width, Height: h}
}

func (r *RootScreen) View() string {
	var sections []string
	if r.route.Kind == HomeRoute {
		sections = append(sections, r.renderHero())
	}
	sections = append(sections, r.current.View(), r.renderNav())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (r *RootScreen) renderHero() string {
	width := r.width
	if width <= 0 {
		width = 60
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.HeroStyle.Width(width).Render(heroTitle),
		styles.TaglineStyle.Width(width).Render(heroTagline),
	)
}

func (r *RootScreen) renderNav() string {
	active := navIndex(r.route.Kind)
	tabs := make([]string, 0, len(navItems))
	for i, item := range navItems {
		label := fmt.Sprintf("%d %s", i+1, item.label)
		if i == active {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	return "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
