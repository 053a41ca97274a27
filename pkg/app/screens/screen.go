package screens

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/minty/pkg/app/loader"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/services"
	"github.com/kerbaras/minty/pkg/session"
	"github.com/kerbaras/minty/pkg/sources"
	"github.com/sirupsen/logrus"
)

// Screen is one routed view. Stop is called when the screen is unmounted;
// any result arriving afterwards must be ignored.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	Stop()
}

// paramScreen is a screen that can switch to another id in place.
type paramScreen interface {
	Screen
	SetID(id data.ID) tea.Cmd
}

// typingScreen reports whether keystrokes belong to a focused text field.
type typingScreen interface {
	Typing() bool
}

// Exporter is the part of the chapter exporter the reader uses.
type Exporter interface {
	ExportChapter(ctx context.Context, chapter *data.Chapter) (string, error)
	GetProgressChannel() <-chan services.ExportProgress
}

// Deps are shared by every screen.
type Deps struct {
	Source   sources.Source
	Session  *session.Store
	Exporter Exporter
	Log      logrus.FieldLogger
}

// NavigateMsg asks the shell to show Path.
type NavigateMsg struct {
	Path string
}

// BackMsg asks the shell to return to the previous route.
type BackMsg struct{}

// SessionChangedMsg is delivered to the active screen after the session
// store changes.
type SessionChangedMsg struct{}

type exportFinishedMsg struct {
	progress services.ExportProgress
}

func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

// renderPhase renders the parts every loading screen shares. populated is
// called for both the populated and the empty phase, so the caller decides
// how an empty result reads.
func renderPhase(phase loader.Phase, failure string, populated func() string) string {
	switch phase {
	case loader.Idle, loader.Loading:
		return styles.StatusDownloading.Render("Loading...")
	case loader.Failed:
		return styles.MutedStyle.Render(failure) + "\n" +
			styles.HelpStyle.Render("r: retry")
	default:
		return populated()
	}
}
