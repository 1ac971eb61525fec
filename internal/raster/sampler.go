package raster

import (
	"image"

	"github.com/chewxy/math32"

	"page-curl-renderer/internal/curl"
	"page-curl-renderer/internal/mathutil"
)

// ImageSampler performs bilinear filtering over a premultiplied RGBA bitmap
// with clamp-to-edge addressing. Accesses img.Pix directly for performance.
type ImageSampler struct {
	img *image.RGBA
	w   float32
	h   float32
}

// NewImageSampler returns a sampler for img, or Blank when img is nil.
func NewImageSampler(img *image.RGBA) curl.Sampler {
	if img == nil || img.Rect.Empty() {
		return Blank
	}
	return &ImageSampler{
		img: img,
		w:   float32(img.Rect.Dx()),
		h:   float32(img.Rect.Dy()),
	}
}

// Sample implements curl.Sampler. Texel centers sit at half-integer
// coordinates, matching how shader image lookups address pixels.
func (s *ImageSampler) Sample(uv mathutil.Vec2) curl.Color {
	fx := clampf(uv[0]*s.w-0.5, 0, s.w-1)
	fy := clampf(uv[1]*s.h-0.5, 0, s.h-1)

	x0 := int(fx)
	y0 := int(fy)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > int(s.w)-1 {
		x1 = x0
	}
	if y1 > int(s.h)-1 {
		y1 = y0
	}
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	img := s.img
	stride := img.Stride
	pix := img.Pix

	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var c curl.Color
	for k := 0; k < 4; k++ {
		v := float32(pix[i00+k])*w00 + float32(pix[i10+k])*w10 + float32(pix[i01+k])*w01 + float32(pix[i11+k])*w11
		c[k] = v / 255
	}
	return c
}

type blankSampler struct{}

func (blankSampler) Sample(mathutil.Vec2) curl.Color { return curl.Transparent }

// Blank samples as fully transparent. Pages that are not ready yet render
// through it.
var Blank curl.Sampler = blankSampler{}

// clampf clamps v to [lo, hi]; NaN maps to lo.
func clampf(v, lo, hi float32) float32 {
	if math32.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
