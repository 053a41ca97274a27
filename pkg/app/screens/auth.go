package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/minty/pkg/app/styles"
)

type authMode int

const (
	loginMode authMode = iota
	registerMode
)

const (
	nameField = iota
	emailField
	passwordField
)

var fieldLabels = map[int]string{nameField: "Name", emailField: "Email", passwordField: "Password"}

// authResultMsg is addressed to the screen that submitted, so a late result
// never reaches a newer form.
type authResultMsg struct {
	owner *AuthScreen
	err   error
}

// AuthScreen signs in or registers through the session store and returns to
// the previous route on success.
type AuthScreen struct {
	ctx        context.Context
	deps       Deps
	mode       authMode
	inputs     []textinput.Model
	focus      int
	submitting bool
	err        error
}

func NewAuthScreen(ctx context.Context, deps Deps) *AuthScreen {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	s := &AuthScreen{
		ctx:    ctx,
		deps:   deps,
		inputs: []textinput.Model{name, email, password},
	}
	s.focusField(0)
	return s
}

func (s *AuthScreen) Init() tea.Cmd {
	return textinput.Blink
}

// Typing is always true: every key belongs to the form.
func (s *AuthScreen) Typing() bool { return true }

// fields are the inputs shown in the current mode, in focus order.
func (s *AuthScreen) fields() []int {
	if s.mode == registerMode {
		return []int{nameField, emailField, passwordField}
	}
	return []int{emailField, passwordField}
}

func (s *AuthScreen) focusField(i int) tea.Cmd {
	fields := s.fields()
	s.focus = (i + len(fields)) % len(fields)
	var cmd tea.Cmd
	for n, field := range fields {
		if n == s.focus {
			cmd = s.inputs[field].Focus()
		} else {
			s.inputs[field].Blur()
		}
	}
	// The name field is hidden in login mode
	if s.mode == loginMode {
		s.inputs[nameField].Blur()
	}
	return cmd
}

func (s *AuthScreen) value(field int) string {
	return s.inputs[field].Value()
}

func (s *AuthScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case authResultMsg:
		if msg.owner != s {
			return nil
		}
		s.submitting = false
		if msg.err != nil {
			s.err = msg.err
			return nil
		}
		return Back()

	case tea.KeyMsg:
		if cmd, handled := s.handleKey(msg); handled {
			return cmd
		}
	}

	field := s.fields()[s.focus]
	var cmd tea.Cmd
	s.inputs[field], cmd = s.inputs[field].Update(msg)
	return cmd
}

func (s *AuthScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		return Back(), true
	case "ctrl+t":
		if s.mode == loginMode {
			s.mode = registerMode
		} else {
			s.mode = loginMode
		}
		s.err = nil
		return s.focusField(0), true
	case "up", "shift+tab":
		return s.focusField(s.focus - 1), true
	case "down", "tab":
		return s.focusField(s.focus + 1), true
	case "enter":
		if s.focus < len(s.fields())-1 {
			return s.focusField(s.focus + 1), true
		}
		return s.submit(), true
	}
	return nil, false
}

func (s *AuthScreen) submit() tea.Cmd {
	if s.submitting {
		return nil
	}

	name := strings.TrimSpace(s.value(nameField))
	email := strings.TrimSpace(s.value(emailField))
	password := s.value(passwordField)
	for n, field := range s.fields() {
		if strings.TrimSpace(s.value(field)) == "" {
			s.err = fmt.Errorf("%s is required", fieldLabels[field])
			return s.focusField(n)
		}
	}

	s.submitting = true
	s.err = nil

	owner := s
	session := s.deps.Session
	ctx := s.ctx
	mode := s.mode

	return func() tea.Msg {
		var err error
		if mode == registerMode {
			err = session.Register(ctx, name, email, password)
		} else {
			err = session.Login(ctx, email, password)
		}
		return authResultMsg{owner: owner, err: err}
	}
}

func (s *AuthScreen) View() string {
	title := "Welcome back"
	submit := "Sign in"
	toggle := "No account? ctrl+t to create one"
	if s.mode == registerMode {
		title = "Create account"
		submit = "Create account"
		toggle = "Have an account? ctrl+t to sign in"
	}

	lines := []string{
		styles.TitleStyle.Render(title),
		styles.MutedStyle.Render("Use your email and password to continue."),
		"",
	}

	for n, field := range s.fields() {
		style := styles.InputStyle
		if n == s.focus {
			style = styles.FocusedInputStyle
		}
		lines = append(lines,
			styles.TextStyle.Render(fieldLabels[field]),
			style.Render(s.inputs[field].View()),
		)
	}

	if s.err != nil {
		lines = append(lines, styles.StatusError.Render(s.err.Error()))
	}

	if s.submitting {
		lines = append(lines, "", styles.StatusDownloading.Render("Please wait..."))
	} else {
		lines = append(lines, "", styles.SelectedStyle.Render("[ "+submit+" ]"))
	}
	lines = append(lines,
		styles.MutedStyle.Render(toggle),
		"",
		styles.HelpStyle.Render("tab/↑/↓: move • enter: next/submit • esc: back • ctrl+c: quit"),
	)

	return styles.CardStyle.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *AuthScreen) Stop() {}
