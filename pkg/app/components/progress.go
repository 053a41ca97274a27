package components

import (
	"fmt"
	"strings"

	"github.com/kerbaras/minty/pkg/app/styles"
	"github.com/kerbaras/minty/pkg/data"
	"github.com/kerbaras/minty/pkg/services"
)

// ProgressTracker renders the latest export event per chapter, in the order
// the exports started.
type ProgressTracker struct {
	exports map[data.ID]*services.ExportProgress
	order   []data.ID
	width   int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		exports: make(map[data.ID]*services.ExportProgress),
		width:   width,
	}
}

func (p *ProgressTracker) SetWidth(width int) {
	p.width = width
}

func (p *ProgressTracker) Update(progress services.ExportProgress) {
	if _, ok := p.exports[progress.ChapterID]; !ok {
		p.order = append(p.order, progress.ChapterID)
	}
	prog := progress // Copy
	p.exports[progress.ChapterID] = &prog
}

// Get returns the latest event for a chapter, or nil.
func (p *ProgressTracker) Get(id data.ID) *services.ExportProgress {
	return p.exports[id]
}

func (p *ProgressTracker) Clear() {
	p.exports = make(map[data.ID]*services.ExportProgress)
	p.order = nil
}

// HasActive reports whether any export is still running.
func (p *ProgressTracker) HasActive() bool {
	for _, progress := range p.exports {
		if progress.Status == services.StatusDownloading || progress.Status == services.StatusProcessing {
			return true
		}
	}
	return false
}

func (p *ProgressTracker) View() string {
	if len(p.exports) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Exports"))
	b.WriteString("\n")

	for _, id := range p.order {
		progress := p.exports[id]

		title := progress.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %s", progress.ChapterID)
		}
		b.WriteString(styles.TextStyle.Render(title))
		b.WriteString("\n")

		statusText := progress.Status
		if progress.TotalPages > 0 && progress.Status != services.StatusError {
			percentage := float64(progress.CurrentPage) / float64(progress.TotalPages) * 100
			statusText = fmt.Sprintf("%s (%d/%d pages - %.0f%%)",
				progress.Status, progress.CurrentPage, progress.TotalPages, percentage)

			b.WriteString(renderProgressBar(progress.CurrentPage, progress.TotalPages, p.width-4))
			b.WriteString("\n")
		}

		b.WriteString(styles.StatusStyle(progress.Status).Render(statusText))
		b.WriteString("\n")

		if progress.Path != "" {
			b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("Saved to %s", progress.Path)))
			b.WriteString("\n")
		}
		if progress.Error != nil {
			b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", progress.Error)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}

	bar := styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
	return bar
}

// SimpleProgress renders a bare progress bar, as the CLI export prints it
func SimpleProgress(current, total, width int) string {
	return renderProgressBar(current, total, width)
}
