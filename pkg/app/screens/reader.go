package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/minty/pkg/app/components"
	"github.com/kerbaras/minty/pkg/app/loader"
	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/services"
)

// ReaderScreen lists a chapter's pages in reading order and can export the
// chapter to EPUB.
type ReaderScreen struct {
	ctx      context.Context
	deps     Deps
	id       data.ID
	chapter  *loader.Loader[*data.Chapter]
	pages    viewport.Model
	progress *components.ProgressTracker
	width    int
	height   int
}

func NewReaderScreen(ctx context.Context, deps Deps, id data.ID) *ReaderScreen {
	return &ReaderScreen{
		ctx:      ctx,
		deps:     deps,
		id:       id,
		chapter:  loader.New(loader.Pointer[data.Chapter]),
		pages:    viewport.New(80, 20),
		progress: components.NewProgressTracker(80),
	}
}

func (s *ReaderScreen) ID() data.ID { return s.id }

func (s *ReaderScreen) Init() tea.Cmd {
	return s.load()
}

func (s *ReaderScreen) SetID(id data.ID) tea.Cmd {
	s.id = id
	s.pages.SetContent("")
	s.pages.GotoTop()
	return s.load()
}

func (s *ReaderScreen) load() tea.Cmd {
	id := s.id
	return s.chapter.Load(s.ctx, func(ctx context.Context) (*data.Chapter, error) {
		return s.deps.Source.GetChapter(ctx, id)
	})
}

func (s *ReaderScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.progress.SetWidth(msg.Width)
		s.resize()
		return nil

	case loader.Result[*data.Chapter]:
		if s.chapter.Apply(msg) {
			s.pages.SetContent(s.renderPages())
			s.pages.GotoTop()
		}
		return nil

	case services.ExportProgress:
		// Channel events can trail the finished message; a finished export
		// only changes again when a new one is started.
		if p := s.progress.Get(msg.ChapterID); p != nil && finished(p.Status) && !finished(msg.Status) {
			return nil
		}
		s.progress.Update(msg)
		s.resize()
		return nil

	case exportFinishedMsg:
		s.progress.Update(msg.progress)
		s.resize()
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return Back()
		case "e":
			return s.export()
		case "r":
			if s.chapter.Phase() == loader.Failed {
				return s.load()
			}
			return nil
		}
	}

	var cmd tea.Cmd
	s.pages, cmd = s.pages.Update(msg)
	return cmd
}

// export starts an EPUB export of the loaded chapter unless one is already
// running for it.
func (s *ReaderScreen) export() tea.Cmd {
	chapter := s.chapter.Value()
	if chapter == nil || s.deps.Exporter == nil {
		return nil
	}
	if p := s.progress.Get(chapter.ID); p != nil && !finished(p.Status) {
		return nil
	}

	s.progress.Update(services.ExportProgress{
		ChapterID:  chapter.ID,
		Title:      chapter.Title,
		TotalPages: len(chapter.Images),
		Status:     services.StatusDownloading,
	})
	s.resize()

	exporter := s.deps.Exporter
	log := s.deps.Log
	ctx := s.ctx
	return func() tea.Msg {
		path, err := exporter.ExportChapter(ctx, chapter)
		final := services.ExportProgress{
			ChapterID:   chapter.ID,
			Title:       chapter.Title,
			CurrentPage: len(chapter.Images),
			TotalPages:  len(chapter.Images),
			Status:      services.StatusComplete,
			Path:        path,
		}
		if err != nil {
			log.WithError(err).WithField("chapter", chapter.ID).Error("export failed")
			final.CurrentPage = 0
			final.Status = services.StatusError
			final.Error = err
			final.Path = ""
		}
		return exportFinishedMsg{progress: final}
	}
}

func finished(status string) bool {
	return status == services.StatusComplete || status == services.StatusError
}

func (s *ReaderScreen) resize() {
	width := s.width
	if width <= 0 {
		width = 80
	}
	height := s.height - 6
	if p := s.progress.View(); p != "" {
		height -= strings.Count(p, "\n") + 2
	}
	if height < 3 {
		height = 3
	}
	s.pages.Width = width
	s.pages.Height = height
}

func (s *ReaderScreen) renderPages() string {
	chapter := s.chapter.Value()
	if chapter == nil {
		return ""
	}
	if len(chapter.Images) == 0 {
		return styles.MutedStyle.Render("This chapter has no pages.")
	}
	lines := make([]string, 0, len(chapter.Images))
	for i, ref := range chapter.Images {
		lines = append(lines, fmt.Sprintf("%s  %s",
			styles.SubtitleStyle.Render(fmt.Sprintf("Page %d", i+1)),
			styles.TextStyle.Render(ref)))
	}
	return strings.Join(lines, "\n")
}

func (s *ReaderScreen) View() string {
	body := renderPhase(s.chapter.Phase(), "Could not load this chapter.", func() string {
		chapter := s.chapter.Value()
		if chapter == nil {
			return styles.MutedStyle.Render("Not found")
		}
		return styles.TitleStyle.Render(chapter.Title) + "\n\n" + s.pages.View()
	})

	sections := []string{body}
	if p := s.progress.View(); p != "" {
		sections = append(sections, p)
	}
	sections = append(sections, styles.HelpStyle.Render("↑/↓: scroll • e: export EPUB • esc: back • q: quit"))
	return strings.Join(sections, "\n\n")
}

func (s *ReaderScreen) Stop() {
	s.chapter.Stop()
}
