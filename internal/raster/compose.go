package raster

import (
	"sync"

	"page-curl-renderer/internal/curl"
	"page-curl-renderer/internal/mathutil"
)

// Compose evaluates the curl for every pixel of fb. Rows are split into
// contiguous bands, one goroutine per band; workers <= 1 renders inline.
//
// This is the HOT PATH: no allocation per pixel.
func Compose(fb *FrameBuffer, prm *curl.Params, edge curl.Edge, from, to curl.Sampler, workers int) {
	if fb.Width == 0 || fb.Height == 0 {
		return
	}
	if workers > fb.Height {
		workers = fb.Height
	}
	if workers <= 1 {
		composeRows(fb, prm, edge, from, to, 0, fb.Height)
		return
	}

	band := (fb.Height + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < fb.Height; y0 += band {
		y1 := min(y0+band, fb.Height)
		wg.Add(1)
		go func() {
			defer wg.Done()
			composeRows(fb, prm, edge, from, to, y0, y1)
		}()
	}
	wg.Wait()
}

func composeRows(fb *FrameBuffer, prm *curl.Params, edge curl.Edge, from, to curl.Sampler, y0, y1 int) {
	invW := 1 / float32(fb.Width)
	invH := 1 / float32(fb.Height)
	for sy := y0; sy < y1; sy++ {
		v := (float32(sy) + 0.5) * invH
		rowOff := sy * fb.Width * 4
		for sx := 0; sx < fb.Width; sx++ {
			uv := mathutil.Vec2{(float32(sx) + 0.5) * invW, v}
			c := curl.Evaluate(uv, edge, prm, from, to)

			i := rowOff + sx*4
			a := clamp01(c[3])
			// keep premultiplied invariant: color never exceeds alpha
			fb.Color[i] = clamp255(min(clamp01(c[0]), a) * 255)
			fb.Color[i+1] = clamp255(min(clamp01(c[1]), a) * 255)
			fb.Color[i+2] = clamp255(min(clamp01(c[2]), a) * 255)
			fb.Color[i+3] = clamp255(a * 255)
		}
	}
}

func clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp255(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
