package postprocess

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
)

// Cover scales img, preserving aspect ratio, until it covers w×h and then
// crops the centered w×h window. The result is a premultiplied RGBA bitmap
// with its origin at (0, 0).
func Cover(img image.Image, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return normalize(img)
	}
	if b.Empty() || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}

	scale := math.Max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	sw := max(w, int(math.Ceil(float64(b.Dx())*scale)))
	sh := max(h, int(math.Ceil(float64(b.Dy())*scale)))
	scaled := transform.Resize(img, sw, sh, transform.Linear)

	off := image.Pt((sw-w)/2, (sh-h)/2)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), scaled, scaled.Bounds().Min.Add(off), draw.Src)
	return dst
}

func normalize(img image.Image) *image.RGBA {
	rgba := clone.AsShallowRGBA(img)
	if rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, rgba.Rect.Dx(), rgba.Rect.Dy()))
	draw.Draw(dst, dst.Bounds(), rgba, rgba.Rect.Min, draw.Src)
	return dst
}
