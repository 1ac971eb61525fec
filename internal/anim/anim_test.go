package anim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

func run(d *Driver, limit time.Duration) (peak float64, ticks int) {
	peak = d.Value()
	for elapsed := time.Duration(0); d.Active() && elapsed < limit; elapsed += frame {
		d.Tick(frame)
		peak = math.Max(peak, d.Value())
		ticks++
	}
	return peak, ticks
}

func TestEasing(t *testing.T) {
	for name, e := range map[string]Easing{"linear": Linear, "quad": EaseInOutQuad} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 0.0, e(0))
			assert.Equal(t, 1.0, e(1))
			assert.Equal(t, 0.0, e(-3))
			assert.Equal(t, 1.0, e(7))
			prev := 0.0
			for i := 1; i <= 100; i++ {
				v := e(float64(i) / 100)
				assert.GreaterOrEqual(t, v, prev-1e-9)
				prev = v
			}
		})
	}
	assert.Equal(t, 0.5, EaseInOutQuad(0.5))
	assert.InDelta(t, 0.08, EaseInOutQuad(0.2), 1e-12)
	assert.InDelta(t, 0.92, EaseInOutQuad(0.8), 1e-12)
	for i := 0; i <= 20; i++ {
		x := float64(i) / 20
		assert.InDelta(t, 1, EaseInOutQuad(x)+EaseInOutQuad(1-x), 1e-12, "t=%v", x)
	}
	assert.Less(t, EaseInOutQuad(0.2), 0.2)
	assert.Greater(t, EaseInOutQuad(0.8), 0.8)

	ease := CubicBezier(0.25, 0.1, 0.25, 1)
	assert.InDelta(t, 0.8024, ease(0.5), 0.002)
}

func TestTimingCompletesOnceAtTarget(t *testing.T) {
	d := NewDriver(0)
	calls := 0
	d.Timing(1, 800*time.Millisecond, nil, func() { calls++ })
	assert.True(t, d.Active())

	peak, ticks := run(d, 2*time.Second)
	assert.False(t, d.Active())
	assert.Equal(t, 1.0, d.Value())
	assert.LessOrEqual(t, peak, 1.0)
	assert.InDelta(t, 48, ticks, 1)
	assert.Equal(t, 1, calls)

	d.Tick(frame)
	assert.Equal(t, 1, calls)
}

func TestTimingIsMonotonic(t *testing.T) {
	d := NewDriver(1)
	d.Timing(0, 300*time.Millisecond, EaseInOutQuad, nil)
	prev := d.Value()
	for d.Active() {
		d.Tick(frame)
		assert.LessOrEqual(t, d.Value(), prev)
		prev = d.Value()
	}
	assert.Equal(t, 0.0, d.Value())
}

func TestZeroDurationFinishesOnNextTick(t *testing.T) {
	d := NewDriver(0.3)
	done := false
	d.Timing(1, 0, Linear, func() { done = true })
	d.Tick(0)
	assert.True(t, done)
	assert.Equal(t, 1.0, d.Value())
}

func TestSpringOvershootsAndSnaps(t *testing.T) {
	d := NewDriver(0.6)
	calls := 0
	d.Spring(1, 0, DefaultSpring(), func() { calls++ })

	peak, _ := run(d, 10*time.Second)
	require.False(t, d.Active())
	assert.Greater(t, peak, 1.0)
	assert.Equal(t, 1.0, d.Value())
	assert.Equal(t, 1, calls)
}

func TestSpringOvershootsFromAnyRelease(t *testing.T) {
	for _, from := range []float64{0, 0.51, 0.6, 0.75, 0.9, 0.99} {
		d := NewDriver(from)
		d.Spring(1, 0, DefaultSpring(), nil)
		peak, ticks := run(d, 10*time.Second)
		require.False(t, d.Active(), "from %v", from)
		assert.Greater(t, peak, 1.0, "from %v", from)
		assert.Less(t, ticks, 120, "from %v", from)
		assert.Equal(t, 1.0, d.Value())
	}
}

func TestSpringDampingRegimes(t *testing.T) {
	for name, damping := range map[string]float64{"critical": 20, "over": 40} {
		t.Run(name, func(t *testing.T) {
			s := DefaultSpring()
			s.Damping = damping
			d := NewDriver(0)
			d.Spring(1, 0, s, nil)
			peak, _ := run(d, 10*time.Second)
			require.False(t, d.Active())
			assert.LessOrEqual(t, peak, 1.0)
			assert.Equal(t, 1.0, d.Value())
		})
	}
}

func TestSpringVelocityMatchesDerivative(t *testing.T) {
	for _, damping := range []float64{5, 20, 40} {
		s := DefaultSpring()
		s.Damping = damping
		a := newSpringAnim(0.2, 1, 3, s)
		const h = 1e-6
		for _, tt := range []float64{0, 0.05, 0.3} {
			x0, v := a.displacement(tt)
			x1, _ := a.displacement(tt + h)
			assert.InDelta(t, (x1-x0)/h, v, 1e-3, "damping %v t %v", damping, tt)
		}
	}
}

func TestUndampedSpringStillFinishes(t *testing.T) {
	s := DefaultSpring()
	s.Damping = 0
	d := NewDriver(0)
	d.Spring(1, 0, s, nil)
	run(d, time.Minute)
	assert.False(t, d.Active())
	assert.Equal(t, 1.0, d.Value())
}

func TestSupersededAnimationDoesNotComplete(t *testing.T) {
	d := NewDriver(0)
	first, second := 0, 0
	old := d.Timing(1, time.Second, nil, func() { first++ })
	d.Tick(frame)

	tok := d.Timing(0, 100*time.Millisecond, nil, func() { second++ })
	assert.NotEqual(t, old, tok)
	run(d, time.Second)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0.0, d.Value())
}

func TestOwnershipTokens(t *testing.T) {
	d := NewDriver(0)
	tok := d.Acquire()
	assert.True(t, d.Write(tok, 0.4))
	assert.Equal(t, 0.4, d.Value())

	anim := d.Timing(1, time.Second, nil, nil)
	assert.False(t, d.Write(tok, 0.9), "stale token must not write")
	assert.NotEqual(t, tok, anim)

	fresh := d.Acquire()
	assert.False(t, d.Active(), "acquire preempts the animation")
	assert.True(t, d.Write(fresh, 0.1))
	assert.False(t, d.Write(anim, 0.2))
	assert.Equal(t, 0.1, d.Value())
}

func TestCompletionMayStartNewAnimation(t *testing.T) {
	d := NewDriver(0)
	chained := false
	d.Timing(1, frame, Linear, func() {
		tok := d.Acquire()
		d.Write(tok, 0)
		d.Timing(0.5, frame, Linear, func() { chained = true })
	})
	d.Tick(frame)
	assert.True(t, d.Active())
	assert.Equal(t, 0.0, d.Value())
	d.Tick(frame)
	assert.True(t, chained)
	assert.Equal(t, 0.5, d.Value())
}

func TestAcquireFreezesValue(t *testing.T) {
	d := NewDriver(0)
	called := false
	d.Timing(1, time.Second, nil, func() { called = true })
	d.Tick(100 * time.Millisecond)
	v := d.Value()
	d.Acquire()
	d.Tick(time.Second)
	assert.False(t, called)
	assert.Equal(t, v, d.Value())
}

func TestSpringValid(t *testing.T) {
	assert.True(t, DefaultSpring().Valid())
	assert.False(t, Spring{}.Valid())
}
