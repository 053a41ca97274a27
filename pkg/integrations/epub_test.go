package integrations

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/kerbaras/minty/pkg/data"
)

func testPage(t *testing.T) Page {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return Page{Data: buf.Bytes(), Ext: ".png"}
}

func TestPublish(t *testing.T) {
	outputDir := t.TempDir()
	builder := NewEPubBuilder(outputDir)

	chapter := &data.Chapter{ID: "7", Number: "1", Title: "Departure"}
	epubPath, err := builder.Publish(chapter, []Page{testPage(t), testPage(t)})
	if err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	if filepath.Dir(epubPath) != outputDir {
		t.Errorf("Expected EPub in %s, got %s", outputDir, filepath.Dir(epubPath))
	}

	expectedName := "Chapter 1_ Departure.epub"
	if filepath.Base(epubPath) != expectedName {
		t.Errorf("Expected filename '%s', got '%s'", expectedName, filepath.Base(epubPath))
	}

	r, err := zip.OpenReader(epubPath)
	if err != nil {
		t.Fatalf("EPub is not a valid archive: %v", err)
	}
	defer r.Close()

	var images []string
	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".png") {
			images = append(images, filepath.Base(f.Name))
		}
	}
	sort.Strings(images)
	if len(images) != 2 {
		t.Fatalf("Expected 2 images in EPub, got %v", images)
	}
	if images[0] != "0001.png" || images[1] != "0002.png" {
		t.Errorf("Expected pages in order, got %v", images)
	}
}

func TestPublishEscapesTitle(t *testing.T) {
	builder := NewEPubBuilder(t.TempDir())

	chapter := &data.Chapter{ID: "3", Title: "Tom & Jerry <3"}
	epubPath, err := builder.Publish(chapter, []Page{testPage(t)})
	if err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}

	r, err := zip.OpenReader(epubPath)
	if err != nil {
		t.Fatalf("EPub is not a valid archive: %v", err)
	}
	defer r.Close()

	var section string
	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, ".xhtml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Failed to open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Failed to read %s: %v", f.Name, err)
		}
		if strings.Contains(string(content), "<h1>") {
			section = string(content)
		}
	}
	if section == "" {
		t.Fatal("Expected a section with the chapter heading")
	}

	if !strings.Contains(section, "<h1>Tom &amp; Jerry &lt;3</h1>") {
		t.Errorf("Expected escaped heading, got:\n%s", section)
	}

	dec := xml.NewDecoder(strings.NewReader(section))
	for {
		if _, err := dec.Token(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Section is not well-formed XHTML: %v", err)
		}
	}
}

func TestPublishCreatesOutputDirectory(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "exports", "minty")
	builder := NewEPubBuilder(outputDir)

	epubPath, err := builder.Publish(&data.Chapter{ID: "9", Title: "Solo"}, []Page{testPage(t)})
	if err != nil {
		t.Fatalf("Failed to publish: %v", err)
	}
	if _, err := os.Stat(epubPath); os.IsNotExist(err) {
		t.Errorf("EPub file was not created at %s", epubPath)
	}
	if filepath.Base(epubPath) != "Solo.epub" {
		t.Errorf("Expected 'Solo.epub', got '%s'", filepath.Base(epubPath))
	}
}

func TestPublishNoPages(t *testing.T) {
	builder := NewEPubBuilder(t.TempDir())

	if _, err := builder.Publish(&data.Chapter{ID: "1"}, nil); err == nil {
		t.Error("Expected error when publishing a chapter with no pages")
	}
	if _, err := builder.Publish(nil, []Page{testPage(t)}); err == nil {
		t.Error("Expected error when publishing without a chapter")
	}
}

func TestChapterTitle(t *testing.T) {
	tests := []struct {
		chapter  data.Chapter
		expected string
	}{
		{data.Chapter{ID: "1", Number: "3", Title: "Storm"}, "Chapter 3: Storm"},
		{data.Chapter{ID: "1", Title: "Prologue"}, "Prologue"},
		{data.Chapter{ID: "1", Number: "4"}, "Chapter 4"},
		{data.Chapter{ID: "12"}, "Chapter 12"},
	}

	for _, tt := range tests {
		if result := chapterTitle(&tt.chapter); result != tt.expected {
			t.Errorf("chapterTitle(%+v) = %q, expected %q", tt.chapter, result, tt.expected)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Normal Title", "Normal Title"},
		{"Title/With/Slashes", "Title_With_Slashes"},
		{"Title\\With\\Backslashes", "Title_With_Backslashes"},
		{"Title:With:Colons", "Title_With_Colons"},
		{"Title*With?Special<Chars>", "Title_With_Special_Chars_"},
		{"  Spaces Around  ", "Spaces Around"},
		{".Hidden File.", "Hidden File"},
	}

	for _, tt := range tests {
		result := sanitizeFilename(tt.input)
		if result != tt.expected {
			t.Errorf("sanitizeFilename(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}
