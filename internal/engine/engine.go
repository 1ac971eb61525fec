// Package engine ties the page resolver, the navigation state machine and
// the curl compositor into one stateful object: feed it pointer events and
// Next/Prev calls, advance it with Tick, and render frames from its state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"time"

	"page-curl-renderer/internal/anim"
	"page-curl-renderer/internal/curl"
	"page-curl-renderer/internal/deck"
	"page-curl-renderer/internal/logx"
	"page-curl-renderer/internal/nav"
	"page-curl-renderer/internal/postprocess"
	"page-curl-renderer/internal/raster"
)

// ErrConfigurationInvalid is returned by New for unusable configuration.
var ErrConfigurationInvalid = errors.New("engine: configuration invalid")

// Options configures an Engine.
type Options struct {
	// Width and Height are the output surface in pixels. Pointer
	// coordinates use the same space.
	Width  int
	Height int
	// Supersample renders each frame at this multiple of the surface and
	// filters it down. 0 and 1 disable supersampling.
	Supersample int
	// Workers is the number of goroutines composing one frame. 0 means
	// runtime.NumCPU().
	Workers int

	GestureEnabled bool
	Threshold      float64
	Duration       time.Duration
	CancelDuration time.Duration
	Spring         anim.Spring
	Easing         anim.Easing

	// Geometry overrides the curl constants; nil uses curl.DefaultGeometry.
	Geometry *curl.Geometry

	Capturer  deck.Capturer
	OnFailure func(index int, err error)
	Logger    *slog.Logger
}

// Engine is safe for concurrent use: input and Tick serialize on the
// navigator, Render only reads a state snapshot and immutable bitmaps.
type Engine struct {
	width, height int
	supersample   int
	workers       int
	geometry      curl.Geometry

	nav   *nav.Navigator
	pages *deck.Resolver
	log   *slog.Logger
}

// New builds an engine over sources, resting on page 0.
func New(sources []deck.Source, opts Options) (*Engine, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: surface %dx%d", ErrConfigurationInvalid, opts.Width, opts.Height)
	}
	if opts.Supersample < 0 || opts.Supersample > 8 {
		return nil, fmt.Errorf("%w: supersample %d", ErrConfigurationInvalid, opts.Supersample)
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: workers %d", ErrConfigurationInvalid, opts.Workers)
	}

	log := logx.Or(opts.Logger)
	navigator, err := nav.New(len(sources), nav.Options{
		Width:          float64(opts.Width),
		Height:         float64(opts.Height),
		Threshold:      opts.Threshold,
		GestureEnabled: opts.GestureEnabled,
		Duration:       opts.Duration,
		CancelDuration: opts.CancelDuration,
		Spring:         opts.Spring,
		Easing:         opts.Easing,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigurationInvalid, err)
	}

	pages, err := deck.NewResolver(sources, deck.Options{
		Width:     opts.Width,
		Height:    opts.Height,
		Capturer:  opts.Capturer,
		Logger:    log,
		OnFailure: opts.OnFailure,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigurationInvalid, err)
	}

	e := &Engine{
		width:       opts.Width,
		height:      opts.Height,
		supersample: max(opts.Supersample, 1),
		workers:     opts.Workers,
		geometry:    curl.DefaultGeometry(),
		nav:         navigator,
		pages:       pages,
		log:         log,
	}
	if opts.Geometry != nil {
		e.geometry = *opts.Geometry
	}
	if e.workers == 0 {
		e.workers = runtime.NumCPU()
	}

	log.Info("engine: ready", "pages", len(sources), "width", e.width, "height", e.height,
		"supersample", e.supersample)
	return e, nil
}

// Close stops in-flight captures.
func (e *Engine) Close() {
	e.pages.Close()
}

// Size returns the output surface size.
func (e *Engine) Size() (w, h int) { return e.width, e.height }

// Pages exposes the page resolver.
func (e *Engine) Pages() *deck.Resolver { return e.pages }

// Failures lists pages whose capture failed.
func (e *Engine) Failures() []int { return e.pages.Failures() }

// State returns a snapshot of the navigation state.
func (e *Engine) State() nav.State { return e.nav.State() }

// Next turns to the following page. It does nothing on the last page or
// while a transition is running.
func (e *Engine) Next() {
	if !e.nav.Next() {
		e.log.Debug("engine: next refused", "state", e.nav.State())
	}
}

// Prev turns to the previous page. It does nothing on the first page or
// while a transition is running.
func (e *Engine) Prev() {
	if !e.nav.Prev() {
		e.log.Debug("engine: prev refused", "state", e.nav.State())
	}
}

func (e *Engine) PointerDown(x, y float64) { e.nav.PointerDown(x, y) }
func (e *Engine) PointerMove(x, y float64) { e.nav.PointerMove(x, y) }
func (e *Engine) PointerUp(x, y float64)   { e.nav.PointerUp(x, y) }

// Tick advances animations by dt and logs committed page changes.
func (e *Engine) Tick(dt time.Duration) {
	before := e.nav.State()
	e.nav.Tick(dt)
	if after := e.nav.State(); after.Committed != before.Committed {
		e.log.Debug("engine: page committed", "from", before.Committed, "to", after.Committed)
	}
}

// Frame renders the current state.
func (e *Engine) Frame(ctx context.Context) (*image.RGBA, error) {
	return e.Render(ctx, e.nav.State())
}

// Render composes the frame for s. Pages that are still being captured,
// or whose capture failed, render transparent. The returned image is
// premultiplied, w×h, and owned by the caller.
func (e *Engine) Render(ctx context.Context, s nav.State) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fromIdx, toIdx := s.Pair()
	from := e.sampler(fromIdx)
	to := e.sampler(toIdx)
	prm := e.geometry.Params(s.Progress)

	fb := raster.NewFrameBuffer(e.width*e.supersample, e.height*e.supersample)
	raster.Compose(fb, &prm, s.Edge, from, to, e.workers)
	return postprocess.Downsample(fb.Image(), e.width, e.height), nil
}

func (e *Engine) sampler(i int) curl.Sampler {
	if i >= e.pages.Len() {
		// Single-page deck: there is no incoming page.
		return raster.Blank
	}
	img, err := e.pages.Resolve(i)
	if err != nil {
		if !errors.Is(err, deck.ErrCapturePending) {
			e.log.Debug("engine: page unavailable", "page", i, "err", err)
		}
		return raster.Blank
	}
	return raster.NewImageSampler(img)
}
