package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/minty/pkg/app/styles"
)

const AuthPromptText = "Please sign in to view this section."

// AuthPrompt stands in for a section that needs a signed-in user.
type AuthPrompt struct {
	// Hint is an optional second line, e.g. why the session is not usable.
	Hint string
}

// Activated reports whether key should take the user to the sign in screen.
func (p AuthPrompt) Activated(key string) bool {
	return key == "enter"
}

func (p AuthPrompt) View() string {
	lines := []string{styles.TextStyle.Render(AuthPromptText)}
	if p.Hint != "" {
		lines = append(lines, styles.StatusError.Render(p.Hint))
	}
	lines = append(lines, "", styles.SelectedStyle.Render("[ Sign in ]"))
	return styles.CardStyle.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
