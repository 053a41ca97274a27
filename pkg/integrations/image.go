package integrations

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth = 1200
	DefaultQuality  = 85
)

// PageProcessor normalizes downloaded page images before they go into an
// EPUB: pages wider than MaxWidth are scaled down and everything is
// re-encoded as JPEG or PNG, which every reader understands.
type PageProcessor struct {
	MaxWidth int
	Quality  int
}

func NewPageProcessor(maxWidth int) *PageProcessor {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	return &PageProcessor{
		MaxWidth: maxWidth,
		Quality:  DefaultQuality,
	}
}

func (p *PageProcessor) Process(raw []byte) (Page, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Page{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := p.calculateDimensions(bounds.Dx(), bounds.Dy())
	if width != bounds.Dx() || height != bounds.Dy() {
		img = p.resize(img, width, height)
	}

	// JPEG sources stay JPEG; gif, webp and png are written as PNG
	if format == "jpeg" {
		return p.encode(img, ".jpg")
	}
	return p.encode(img, ".png")
}

// calculateDimensions keeps the aspect ratio while fitting MaxWidth.
func (p *PageProcessor) calculateDimensions(width, height int) (int, int) {
	if width <= p.MaxWidth || width == 0 {
		return width, height
	}

	scale := float64(p.MaxWidth) / float64(width)
	newHeight := int(float64(height) * scale)
	if newHeight < 1 {
		newHeight = 1
	}
	return p.MaxWidth, newHeight
}

func (p *PageProcessor) resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	// CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	return dst
}

func (p *PageProcessor) encode(img image.Image, ext string) (Page, error) {
	var buf bytes.Buffer

	switch ext {
	case ".jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
			return Page{}, fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return Page{}, fmt.Errorf("failed to encode PNG: %w", err)
		}
	}

	return Page{Data: buf.Bytes(), Ext: ext}, nil
}
