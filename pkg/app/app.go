package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/minty/pkg/app/screens"
	"github.com/kerbaras/minty/pkg/services"
)

type App struct {
	controller *services.Controller
	startPath  string
}

func NewApp(controller *services.Controller) *App {
	return &App{controller: controller, startPath: "/"}
}

// WithStartPath opens the TUI on path instead of the home screen.
func (a *App) WithStartPath(path string) *App {
	a.startPath = path
	return a
}

func (a *App) Run(ctx context.Context) error {
	deps := screens.Deps{
		Source:   a.controller.Source(),
		Session:  a.controller.Session(),
		Exporter: a.controller.Exporter(),
		Log:      a.controller.Logger().WithField("component", "tui"),
	}
	model := screens.NewRootScreen(ctx, deps, a.startPath)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
