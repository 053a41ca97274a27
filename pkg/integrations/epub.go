package integrations

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/minty/pkg/data"
)

type EPubBuilder struct {
	outputDir string
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{outputDir: outputDir}
}

func (b *EPubBuilder) OutputDir() string {
	return b.outputDir
}

// Publish writes the chapter as <output dir>/<title>.epub with one image per
// page, in the order given.
func (b *EPubBuilder) Publish(chapter *data.Chapter, pages []Page) (string, error) {
	if chapter == nil {
		return "", fmt.Errorf("no chapter to publish")
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("chapter %s has no pages", chapter.ID)
	}

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	// go-epub reads images from disk, so pages are staged in a scratch dir
	staging, err := os.MkdirTemp("", "minty-epub-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	title := chapterTitle(chapter)

	e, err := epub.NewEpub(title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	e.SetAuthor("Minty Comics")
	e.SetLang("en")

	var body strings.Builder
	body.WriteString(fmt.Sprintf("<h1>%s</h1>\n", html.EscapeString(title)))

	for i, page := range pages {
		name := fmt.Sprintf("%04d%s", i+1, page.Ext)
		path := filepath.Join(staging, name)
		if err := os.WriteFile(path, page.Data, 0644); err != nil {
			return "", fmt.Errorf("failed to stage page %d: %w", i+1, err)
		}

		internalPath, err := e.AddImage(path, name)
		if err != nil {
			return "", fmt.Errorf("failed to add page %d: %w", i+1, err)
		}

		body.WriteString(fmt.Sprintf(
			`<div class="page"><img src="%s" alt="Page %d" style="width:100%%;height:auto;"/></div>%s`,
			html.EscapeString(internalPath), i+1, "\n",
		))
	}

	if _, err := e.AddSection(body.String(), title, "", ""); err != nil {
		return "", fmt.Errorf("failed to add section: %w", err)
	}

	filename := sanitizeFilename(title)
	if filename == "" {
		filename = "chapter-" + chapter.ID.String()
	}
	outputPath := filepath.Join(b.outputDir, filename+".epub")

	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

func chapterTitle(chapter *data.Chapter) string {
	switch {
	case chapter.Number != "" && chapter.Title != "":
		return fmt.Sprintf("Chapter %s: %s", chapter.Number, chapter.Title)
	case chapter.Title != "":
		return chapter.Title
	case chapter.Number != "":
		return fmt.Sprintf("Chapter %s", chapter.Number)
	default:
		return fmt.Sprintf("Chapter %s", chapter.ID)
	}
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	return result
}
