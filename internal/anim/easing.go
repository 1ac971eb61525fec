package anim

import (
	"honnef.co/go/curve"
)

// Easing maps normalized time in [0, 1] to normalized progress.
// Implementations return exactly 0 at 0 and 1 at 1.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return clamp01(t) }

// EaseInOutQuad is the default timing curve: quadratic ease in for the
// first half, mirrored ease out for the second.
func EaseInOutQuad(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 2 * t * t
	}
	u := 1 - t
	return 1 - 2*u*u
}

// CubicBezier returns a CSS-style timing function with control points
// (x1, y1) and (x2, y2); x1 and x2 are clamped to [0, 1] so the curve is a
// function of time.
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	c := curve.CubicBez{
		P0: curve.Pt(0, 0),
		P1: curve.Pt(clamp01(x1), y1),
		P2: curve.Pt(clamp01(x2), y2),
		P3: curve.Pt(1, 1),
	}
	return func(t float64) float64 {
		switch {
		case t <= 0:
			return 0
		case t >= 1:
			return 1
		}
		return c.Eval(solveX(c, t)).Y
	}
}

// solveX finds the curve parameter whose x equals x. With both control x
// values in [0, 1] x(s) is monotonic, so bisection converges.
func solveX(c curve.CubicBez, x float64) float64 {
	lo, hi := 0.0, 1.0
	s := x
	for range 48 {
		px := c.Eval(s).X
		if d := px - x; d < 1e-9 && d > -1e-9 {
			return s
		} else if d < 0 {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
