// Package capture renders dynamic page content to bitmaps on demand.
package capture

import (
	"context"
	"image"
)

// Descriptor references the content of a dynamic page. Colors are hex
// strings ("#rgb", "#rrggbb", "#rrggbbaa"); empty fields use the card
// defaults.
type Descriptor struct {
	Title      string
	Body       string
	Footer     string
	Background string
	Foreground string
	Accent     string
}

// Func adapts a plain function to the capture contract.
type Func func(ctx context.Context, d Descriptor) (image.Image, error)

// Capture calls f.
func (f Func) Capture(ctx context.Context, d Descriptor) (image.Image, error) {
	return f(ctx, d)
}
