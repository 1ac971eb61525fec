package capture

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// Card defaults.
const (
	DefaultBackground = "#f4efe6"
	DefaultForeground = "#2b2b2b"
	DefaultAccent     = "#c0392b"
)

// CardRenderer draws a Descriptor as a page card: background, accent rule,
// title, wrapped body text and a centered footer.
type CardRenderer struct {
	Width  int
	Height int

	// Text shaping state is shared by every face of the source, so draws
	// are serialized.
	mu     sync.Mutex
	source *text.FontSource
}

// NewCardRenderer loads the Go Regular font and returns a renderer for
// w×h cards.
func NewCardRenderer(w, h int) (*CardRenderer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("capture: invalid card size %dx%d", w, h)
	}
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("capture: load font: %w", err)
	}
	return &CardRenderer{Width: w, Height: h, source: source}, nil
}

// Close releases the font source.
func (r *CardRenderer) Close() error {
	return r.source.Close()
}

// Capture renders d. It fails on malformed colors or a done context.
func (r *CardRenderer) Capture(ctx context.Context, d Descriptor) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bg, err := parseColor(d.Background, DefaultBackground)
	if err != nil {
		return nil, err
	}
	fg, err := parseColor(d.Foreground, DefaultForeground)
	if err != nil {
		return nil, err
	}
	accent, err := parseColor(d.Accent, DefaultAccent)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := float64(r.Width), float64(r.Height)
	margin := w * 0.08
	inner := w - 2*margin

	dc := gg.NewContext(r.Width, r.Height)
	defer dc.Close()
	dc.ClearWithColor(bg)

	dc.SetColor(accent.Color())
	dc.DrawRoundedRectangle(margin, margin, inner*0.25, h*0.012, h*0.006)
	if err := dc.Fill(); err != nil {
		return nil, fmt.Errorf("capture: fill accent: %w", err)
	}

	dc.SetColor(fg.Color())
	if d.Title != "" {
		dc.SetFont(r.source.Face(h * 0.045))
		dc.DrawStringWrapped(d.Title, margin, margin+h*0.04, 0, 0, inner, 1.2, gg.AlignLeft)
	}
	if d.Body != "" {
		dc.SetFont(r.source.Face(h * 0.024))
		dc.DrawStringWrapped(d.Body, margin, h*0.24, 0, 0, inner, 1.5, gg.AlignLeft)
	}
	if d.Footer != "" {
		dc.SetFont(r.source.Face(h * 0.02))
		dc.DrawStringAnchored(d.Footer, w/2, h-margin, 0.5, 0.5)
	}

	return dc.Image(), nil
}

func parseColor(hex, def string) (gg.RGBA, error) {
	if hex == "" {
		hex = def
	}
	c, err := gg.ParseHex(hex)
	if err != nil {
		return gg.RGBA{}, fmt.Errorf("capture: color %q: %w", hex, err)
	}
	return c, nil
}
