package anim

import (
	"math"
	"time"
)

// Spring configures a damped harmonic oscillator pulling the value toward
// its target.
type Spring struct {
	Stiffness float64 `json:"stiffness" toml:"stiffness" yaml:"stiffness"`
	Damping   float64 `json:"damping" toml:"damping" yaml:"damping"`
	Mass      float64 `json:"mass" toml:"mass" yaml:"mass"`
	// The animation is at rest once both thresholds hold; it then snaps to
	// the target. Both are in value units, so for progress they must be
	// small against the 0..1 range or the spring snaps before overshooting.
	RestDisplacement float64 `json:"rest_displacement" toml:"rest_displacement" yaml:"rest_displacement"`
	RestSpeed        float64 `json:"rest_speed" toml:"rest_speed" yaml:"rest_speed"`
}

// DefaultSpring is underdamped, so released drags overshoot and settle.
func DefaultSpring() Spring {
	return Spring{Stiffness: 100, Damping: 10, Mass: 1, RestDisplacement: 0.001, RestSpeed: 0.01}
}

// Valid reports whether the parameters describe a physical spring.
func (s Spring) Valid() bool {
	return s.Stiffness > 0 && s.Damping >= 0 && s.Mass > 0 && s.RestDisplacement > 0 && s.RestSpeed > 0
}

// maxSpringTime bounds a spring that would otherwise never come to rest
// (zero damping).
const maxSpringTime = 30 * time.Second

// springAnim evaluates the closed-form solution of
// m·x'' + c·x' + k·x = 0 with x = value - target.
type springAnim struct {
	spring  Spring
	to      float64
	x0, v0  float64
	omega0  float64
	zeta    float64
	elapsed time.Duration
}

func newSpringAnim(from, to, velocity float64, s Spring) *springAnim {
	return &springAnim{
		spring: s,
		to:     to,
		x0:     from - to,
		v0:     velocity,
		omega0: math.Sqrt(s.Stiffness / s.Mass),
		zeta:   s.Damping / (2 * math.Sqrt(s.Stiffness*s.Mass)),
	}
}

// displacement returns x(t) and x'(t).
func (a *springAnim) displacement(t float64) (x, v float64) {
	w0, z, x0, v0 := a.omega0, a.zeta, a.x0, a.v0
	switch {
	case z < 1:
		wd := w0 * math.Sqrt(1-z*z)
		decay := math.Exp(-z * w0 * t)
		b := (v0 + z*w0*x0) / wd
		cos, sin := math.Cos(wd*t), math.Sin(wd*t)
		x = decay * (x0*cos + b*sin)
		v = decay * ((b*wd-z*w0*x0)*cos - (x0*wd+z*w0*b)*sin)
	case z == 1:
		decay := math.Exp(-w0 * t)
		b := v0 + w0*x0
		x = decay * (x0 + b*t)
		v = decay * (b - w0*(x0+b*t))
	default:
		root := w0 * math.Sqrt(z*z-1)
		r1, r2 := -z*w0+root, -z*w0-root
		A := (v0 - r2*x0) / (r1 - r2)
		B := x0 - A
		e1, e2 := math.Exp(r1*t), math.Exp(r2*t)
		x = A*e1 + B*e2
		v = A*r1*e1 + B*r2*e2
	}
	return x, v
}

func (a *springAnim) step(dt time.Duration) (float64, bool) {
	a.elapsed += dt
	x, v := a.displacement(a.elapsed.Seconds())
	if (math.Abs(x) < a.spring.RestDisplacement && math.Abs(v) < a.spring.RestSpeed) || a.elapsed >= maxSpringTime {
		return a.to, true
	}
	return a.to + x, false
}
