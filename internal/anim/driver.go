// Package anim advances the shared progress value over time. A Driver holds
// the value and at most one in-flight animation; ownership of the value is
// tracked with generation tokens so a stale writer can never clobber a
// newer one.
package anim

import (
	"time"
)

// Token identifies one ownership generation of a Driver's value.
type Token uint64

type animation interface {
	step(dt time.Duration) (value float64, done bool)
}

type timingAnim struct {
	from, to float64
	duration time.Duration
	easing   Easing
	elapsed  time.Duration
}

func (a *timingAnim) step(dt time.Duration) (float64, bool) {
	a.elapsed += dt
	if a.elapsed >= a.duration {
		return a.to, true
	}
	t := float64(a.elapsed) / float64(a.duration)
	return a.from + (a.to-a.from)*a.easing(t), false
}

// Driver is not safe for concurrent use; the owner serializes access.
// Completion callbacks run synchronously inside Tick.
type Driver struct {
	value float64
	gen   Token

	anim   animation
	onDone func()
}

// NewDriver returns a driver resting at v.
func NewDriver(v float64) *Driver {
	return &Driver{value: v}
}

// Value returns the current value.
func (d *Driver) Value() float64 { return d.value }

// Active reports whether an animation is in flight.
func (d *Driver) Active() bool { return d.anim != nil }

// Acquire takes ownership of the value for direct writes. Any in-flight
// animation is dropped without running its completion.
func (d *Driver) Acquire() Token {
	d.gen++
	d.anim = nil
	d.onDone = nil
	return d.gen
}

// Write sets the value if tok still owns it.
func (d *Driver) Write(tok Token, v float64) bool {
	if tok != d.gen {
		return false
	}
	d.value = v
	return true
}

// Spring starts a spring animation toward to with the given initial
// velocity (units per second). done runs once when the spring comes to rest.
func (d *Driver) Spring(to, velocity float64, s Spring, done func()) Token {
	tok := d.Acquire()
	d.anim = newSpringAnim(d.value, to, velocity, s)
	d.onDone = done
	return tok
}

// Timing starts a fixed-duration eased animation toward to. A nil easing
// means EaseInOutQuad.
func (d *Driver) Timing(to float64, duration time.Duration, easing Easing, done func()) Token {
	if easing == nil {
		easing = EaseInOutQuad
	}
	tok := d.Acquire()
	d.anim = &timingAnim{from: d.value, to: to, duration: duration, easing: easing}
	d.onDone = done
	return tok
}

// Tick advances the in-flight animation by dt. When it finishes, the value
// is set exactly to the target and the completion runs; the completion may
// start a new animation.
func (d *Driver) Tick(dt time.Duration) {
	if d.anim == nil {
		return
	}
	v, finished := d.anim.step(dt)
	d.value = v
	if !finished {
		return
	}

	done := d.onDone
	d.anim = nil
	d.onDone = nil
	if done != nil {
		done()
	}
}
