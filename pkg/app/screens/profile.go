package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/minty/pkg/app/components"
	"github.com/kerbaras/minty/pkg/app/styles"
)

const identityHint = "We could not verify your session. Press r to try again or l to sign out."

// ProfileScreen needs a resolved user. A token whose identity is unknown is
// treated as signed out here.
type ProfileScreen struct {
	ctx   context.Context
	deps  Deps
	err   error
	width int
}

func NewProfileScreen(ctx context.Context, deps Deps) *ProfileScreen {
	return &ProfileScreen{ctx: ctx, deps: deps}
}

func (s *ProfileScreen) Init() tea.Cmd {
	return nil
}

func (s *ProfileScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *ProfileScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	session := s.deps.Session
	key := msg.String()

	switch {
	case key == "l" && session.Authenticated():
		if err := session.Logout(s.ctx); err != nil {
			// The session is already cleared in memory.
			s.deps.Log.WithError(err).Warn("logout did not remove the stored token")
		}
		return Navigate("/")

	case key == "r" && session.User() == nil && session.Authenticated() && !session.Resolving():
		session.Refresh()
		return nil

	case session.User() == nil && !session.Resolving():
		if (components.AuthPrompt{}).Activated(key) {
			return Navigate("/auth")
		}
	}
	return nil
}

func (s *ProfileScreen) View() string {
	header := styles.TitleStyle.Render("Profile")
	session := s.deps.Session
	user := session.User()

	if user == nil {
		if session.Authenticated() && session.Resolving() {
			return fmt.Sprintf("%s\n\n%s", header, styles.StatusDownloading.Render("Verifying your session..."))
		}

		prompt := components.AuthPrompt{}
		help := "enter: sign in • q: quit"
		if session.Authenticated() && session.IdentityErr() != nil {
			prompt.Hint = identityHint
			help = "enter: sign in • r: retry • l: sign out • q: quit"
		}
		return fmt.Sprintf("%s\n\n%s\n\n%s", header, prompt.View(), styles.HelpStyle.Render(help))
	}

	identity := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.SubtitleStyle.Render(user.Name),
		styles.MutedStyle.Render(user.Email),
	)

	history := styles.CardStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		styles.TextStyle.Bold(true).Render("Reading history"),
		styles.MutedStyle.Render("Coming soon"),
	))
	settings := styles.CardStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		styles.TextStyle.Bold(true).Render("Settings"),
		styles.MutedStyle.Render("Light, minimalist UI with mint accents."),
	))

	help := styles.HelpStyle.Render("l: sign out • 1-4/tab: navigate • q: quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s",
		header,
		identity,
		lipgloss.JoinHorizontal(lipgloss.Top, history, settings),
		help,
	)
}

func (s *ProfileScreen) Stop() {}
