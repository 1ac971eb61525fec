// Package nav is the gesture and navigation state machine. It turns pointer
// drags and Next/Prev calls into a progress value and the pair of pages the
// compositor blends, and commits or cancels transitions when the progress
// animation settles.
package nav

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"page-curl-renderer/internal/anim"
	"page-curl-renderer/internal/curl"
)

// ErrInvalid reports unusable navigator options.
var ErrInvalid = errors.New("nav: invalid options")

// Defaults.
const (
	DefaultDuration       = 800 * time.Millisecond
	DefaultCancelDuration = 300 * time.Millisecond
)

// Options configures a Navigator. Zero values take the defaults.
type Options struct {
	// Width and Height are the surface size in the pointer's units.
	Width  float64
	Height float64
	// Threshold is the horizontal drag distance a release must exceed to
	// commit. Zero means Width/2.
	Threshold      float64
	GestureEnabled bool
	// Duration is the length of programmatic Next/Prev transitions.
	Duration time.Duration
	// CancelDuration is the length of the ease back after a short drag.
	CancelDuration time.Duration
	Spring         anim.Spring
	Easing         anim.Easing
}

func (o *Options) normalize() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: surface %gx%g", ErrInvalid, o.Width, o.Height)
	}
	if o.Threshold < 0 || math.IsNaN(o.Threshold) {
		return fmt.Errorf("%w: threshold %g", ErrInvalid, o.Threshold)
	}
	if o.Duration < 0 || o.CancelDuration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}
	if o.Threshold == 0 {
		o.Threshold = o.Width / 2
	}
	if o.Duration == 0 {
		o.Duration = DefaultDuration
	}
	if o.CancelDuration == 0 {
		o.CancelDuration = DefaultCancelDuration
	}
	if o.Spring == (anim.Spring{}) {
		o.Spring = anim.DefaultSpring()
	}
	if !o.Spring.Valid() {
		return fmt.Errorf("%w: spring %+v", ErrInvalid, o.Spring)
	}
	if o.Easing == nil {
		o.Easing = anim.EaseInOutQuad
	}
	return nil
}

// gesture tracks one pointer from down to up.
type gesture struct {
	down   bool
	failed bool
	active bool
	startX float64
	startY float64
	dx     float64
	token  anim.Token
}

// Navigator is safe for concurrent use. Animation completions run inside
// Tick while the lock is held.
type Navigator struct {
	mu    sync.Mutex
	opts  Options
	pages int

	committed int
	preload   int
	direction Direction
	edge      curl.Edge
	phase     Phase

	progress *anim.Driver
	gesture  gesture
	// lowered is set while a backward drag holds preload one below committed.
	lowered bool
}

// New returns a navigator resting on page 0 of a deck of pages.
func New(pages int, opts Options) (*Navigator, error) {
	if pages < 1 {
		return nil, fmt.Errorf("%w: %d pages", ErrInvalid, pages)
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	return &Navigator{
		opts:     opts,
		pages:    pages,
		progress: anim.NewDriver(0),
	}, nil
}

// Options returns the effective options.
func (n *Navigator) Options() Options {
	return n.opts
}

// State returns a snapshot of the navigation state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshot()
}

func (n *Navigator) snapshot() State {
	return State{
		Committed:     n.committed,
		Preload:       n.preload,
		Progress:      n.progress.Value(),
		Direction:     n.direction,
		Edge:          n.edge,
		Phase:         n.phase,
		GestureActive: n.gesture.active,
		PageCount:     n.pages,
	}
}

// Tick advances the progress animation by dt.
func (n *Navigator) Tick(dt time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress.Tick(dt)
}

// Next animates to the following page. It reports false, changing nothing,
// on the last page or while a transition is in progress.
func (n *Navigator) Next() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.phase != Idle || n.committed == n.pages-1 {
		return false
	}
	n.direction = Next
	n.phase = Settling
	n.progress.Timing(1, n.opts.Duration, n.opts.Easing, n.commit)
	return true
}

// Prev animates to the previous page. It reports false, changing nothing,
// on the first page or while a transition is in progress.
func (n *Navigator) Prev() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.phase != Idle || n.committed == 0 {
		return false
	}
	n.direction = Prev
	n.phase = Settling
	if n.committed != n.pages-1 {
		// Bring the previous page into the blend pair, fully curled away.
		n.progress.Write(n.progress.Acquire(), 1)
		n.preload--
	}
	n.progress.Timing(0, n.opts.Duration, n.opts.Easing, n.commit)
	return true
}

// PointerDown starts tracking a pointer at (x, y).
func (n *Navigator) PointerDown(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.opts.GestureEnabled || n.gesture.down {
		return
	}
	n.gesture = gesture{down: true, startX: x, startY: y}
}

// PointerMove updates the tracked pointer. The first move with horizontal
// displacement decides whether the gesture activates.
func (n *Navigator) PointerMove(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.move(x)
}

// PointerUp ends the gesture, committing it if the drag passed the
// threshold and cancelling it otherwise.
func (n *Navigator) PointerUp(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.gesture.down {
		return
	}
	n.move(x)
	if n.gesture.active {
		n.release()
	}
	n.gesture = gesture{}
}

func (n *Navigator) move(x float64) {
	g := &n.gesture
	if !g.down || g.failed {
		return
	}
	g.dx = x - g.startX

	if !g.active {
		if g.dx == 0 {
			return
		}
		if !n.canActivate(g.dx) {
			g.failed = true
			return
		}
		n.activate()
	}

	p := g.dx / n.opts.Width
	if n.direction == Prev {
		p = 1 - p
	}
	n.progress.Write(g.token, math.Abs(p))
}

// canActivate applies the boundary rule: no backward drag on the first
// page, no forward drag on the last, and no new drag while settling.
func (n *Navigator) canActivate(dx float64) bool {
	if n.phase != Idle {
		return false
	}
	if dx > 0 && n.committed == 0 {
		return false
	}
	if dx < 0 && n.committed == n.pages-1 {
		return false
	}
	return true
}

func (n *Navigator) activate() {
	g := &n.gesture
	g.active = true
	g.token = n.progress.Acquire()

	n.phase = Dragging
	n.edge = curl.EdgeBottom
	if g.startY < n.opts.Height/2 {
		n.edge = curl.EdgeTop
	}
	n.direction = Next
	if g.dx > 0 {
		n.direction = Prev
		if n.committed != 0 && n.committed != n.pages-1 {
			n.preload--
			n.lowered = true
		}
	}
}

func (n *Navigator) release() {
	n.phase = Settling
	if math.Abs(n.gesture.dx) > n.opts.Threshold {
		target := 0.0
		if n.direction == Next {
			target = 1
		}
		n.progress.Spring(target, 0, n.opts.Spring, n.commit)
		return
	}

	target := 0.0
	if n.direction == Prev {
		target = 1
	}
	n.progress.Timing(target, n.opts.CancelDuration, n.opts.Easing, n.cancel)
}

// commit runs when a committing animation settles.
func (n *Navigator) commit() {
	n.lowered = false
	n.phase = Idle
	if n.direction == Prev {
		n.committed--
		return
	}

	n.committed++
	if n.preload+1 != n.pages-1 {
		// Pipeline the next pair so the following transition starts flat.
		n.preload++
		n.progress.Write(n.progress.Acquire(), 0)
	}
}

// cancel runs when a cancelled drag has eased back.
func (n *Navigator) cancel() {
	n.phase = Idle
	if n.lowered {
		n.lowered = false
		n.preload++
		n.progress.Write(n.progress.Acquire(), 0)
	}
}
