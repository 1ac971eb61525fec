package curl

import (
	"github.com/chewxy/math32"

	"page-curl-renderer/internal/mathutil"
)

// Color is a premultiplied RGBA color with components nominally in [0,1].
// Intermediate values may leave that range; writers clamp.
type Color [4]float32

// Transparent is the zero color.
var Transparent = Color{}

func (c Color) Add(o Color) Color {
	return Color{c[0] + o[0], c[1] + o[1], c[2] + o[2], c[3] + o[3]}
}

func (c Color) Sub(o Color) Color {
	return Color{c[0] - o[0], c[1] - o[1], c[2] - o[2], c[3] - o[3]}
}

func (c Color) Scale(s float32) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s, c[3] * s}
}

// Darken subtracts v from the color channels, leaving alpha.
func (c Color) Darken(v float32) Color {
	return Color{c[0] - v, c[1] - v, c[2] - v, c[3]}
}

// Sampler reads a page bitmap at normalized coordinates (u, v) ∈ [0,1]²,
// origin top-left.
type Sampler interface {
	Sample(uv mathutil.Vec2) Color
}

// antiAlias blends c1 toward c2 over a short band: beyond 2 scaled units
// from the edge the result is c1, on the far side of the edge it is c2.
func (g *Geometry) antiAlias(c1, c2 Color, dist float32) Color {
	dist *= g.AAScale
	if dist < 0 {
		return c2
	}
	if dist > 2 {
		return c1
	}
	dd := math32.Pow(1-dist/2, g.Sharpness)
	return c2.Sub(c1).Scale(dd).Add(c1)
}

// distanceToEdge is the distance from pt to the boundary of the unit square,
// measured from outside when pt lies outside it.
func distanceToEdge(pt mathutil.Vec3) float32 {
	x, y := pt[0], pt[1]
	dx := x
	if x > 0.5 {
		dx = 1 - x
	}
	dx = math32.Abs(dx)
	dy := y
	if y > 0.5 {
		dy = 1 - y
	}
	dy = math32.Abs(dy)

	outX := x < 0 || x > 1
	outY := y < 0 || y > 1
	if x < 0 {
		dx = -x
	}
	if x > 1 {
		dx = x - 1
	}
	if y < 0 {
		dy = -y
	}
	if y > 1 {
		dy = y - 1
	}
	if outX && outY {
		return math32.Sqrt(dx*dx + dy*dy)
	}
	return math32.Min(dx, dy)
}
