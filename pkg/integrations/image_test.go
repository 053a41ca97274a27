package integrations

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestPageProcessor_CalculateDimensions(t *testing.T) {
	p := NewPageProcessor(800)

	tests := []struct {
		name          string
		width, height int
		wantW, wantH  int
	}{
		{"fits", 600, 900, 600, 900},
		{"exact", 800, 1200, 800, 1200},
		{"too wide", 1600, 2400, 800, 1200},
		{"very flat", 8000, 2, 800, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := p.calculateDimensions(tt.width, tt.height)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("calculateDimensions(%d, %d) = (%d, %d), want (%d, %d)",
					tt.width, tt.height, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPageProcessor_DownscalesWidePages(t *testing.T) {
	p := NewPageProcessor(100)

	page, err := p.Process(encodePNG(t, 200, 300))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if page.Ext != ".png" {
		t.Errorf("Ext = %q, want .png", page.Ext)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(page.Data))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 150 {
		t.Errorf("Output size = %dx%d, want 100x150", cfg.Width, cfg.Height)
	}
}

func TestPageProcessor_KeepsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}

	page, err := NewPageProcessor(0).Process(buf.Bytes())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if page.Ext != ".jpg" {
		t.Errorf("Ext = %q, want .jpg", page.Ext)
	}
	if _, err := jpeg.Decode(bytes.NewReader(page.Data)); err != nil {
		t.Errorf("Output is not a JPEG: %v", err)
	}
}

func TestPageProcessor_ConvertsGIF(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), []color.Color{color.Black, color.White})
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode GIF: %v", err)
	}

	page, err := NewPageProcessor(0).Process(buf.Bytes())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if page.Ext != ".png" {
		t.Errorf("Ext = %q, want .png", page.Ext)
	}
}

func TestPageProcessor_RejectsGarbage(t *testing.T) {
	if _, err := NewPageProcessor(0).Process([]byte("not an image")); err == nil {
		t.Error("Expected error for undecodable input")
	}
}

func TestNewPageProcessorDefaults(t *testing.T) {
	p := NewPageProcessor(-1)
	if p.MaxWidth != DefaultMaxWidth {
		t.Errorf("MaxWidth = %d, want %d", p.MaxWidth, DefaultMaxWidth)
	}
	if p.Quality != DefaultQuality {
		t.Errorf("Quality = %d, want %d", p.Quality, DefaultQuality)
	}
}
