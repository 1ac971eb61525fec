// Package deck resolves page indices to render-ready bitmaps. Static pages
// are fitted once at construction; captured pages are rendered lazily, at
// most once, on a background goroutine.
package deck

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"page-curl-renderer/internal/capture"
	"page-curl-renderer/internal/logx"
	"page-curl-renderer/internal/postprocess"
)

// Capturer renders a content descriptor to a bitmap.
type Capturer interface {
	Capture(ctx context.Context, d capture.Descriptor) (image.Image, error)
}

// Status is the resolution state of one page.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Options configures a Resolver.
type Options struct {
	// Width and Height are the render surface size every bitmap is fitted to.
	Width  int
	Height int
	// Capturer renders captured pages. Required when any page is captured.
	Capturer Capturer
	Logger   *slog.Logger
	// OnFailure is called once per failed capture, from the capture goroutine.
	OnFailure func(index int, err error)
}

// Resolver owns the page cache of a deck. It is safe for concurrent use.
type Resolver struct {
	width     int
	height    int
	capturer  Capturer
	log       *slog.Logger
	onFailure func(int, error)

	entries []*entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type entry struct {
	src Source

	started atomic.Bool
	ready   atomic.Bool
	failed  atomic.Bool

	// img and err are written once, before ready or failed is set.
	img  *image.RGBA
	err  error
	done chan struct{}
}

// NewResolver builds a resolver over sources. The deck must be non-empty,
// the surface positive, and every static page must carry an image.
func NewResolver(sources []Source, opts Options) (*Resolver, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no pages", ErrInvalid)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: surface %dx%d", ErrInvalid, opts.Width, opts.Height)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Resolver{
		width:     opts.Width,
		height:    opts.Height,
		capturer:  opts.Capturer,
		log:       logx.Or(opts.Logger),
		onFailure: opts.OnFailure,
		entries:   make([]*entry, len(sources)),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i, src := range sources {
		e := &entry{src: src, done: make(chan struct{})}
		switch {
		case src.IsCaptured():
			if r.capturer == nil {
				cancel()
				return nil, fmt.Errorf("%w: page %d (%s) needs a capturer", ErrInvalid, i, src.Name)
			}
		case src.Image == nil:
			cancel()
			return nil, fmt.Errorf("%w: page %d (%s) has no image", ErrInvalid, i, src.Name)
		default:
			e.img = postprocess.Cover(src.Image, r.width, r.height)
			e.started.Store(true)
			e.ready.Store(true)
			close(e.done)
		}
		r.entries[i] = e
	}

	r.log.Debug("deck: resolver ready", "pages", len(sources), "width", r.width, "height", r.height)
	return r, nil
}

// Len returns the number of pages.
func (r *Resolver) Len() int {
	return len(r.entries)
}

// Source returns the page source at index i.
func (r *Resolver) Source(i int) (Source, error) {
	e, err := r.entry(i)
	if err != nil {
		return Source{}, err
	}
	return e.src, nil
}

// Resolve returns the bitmap for page i. The first call on a captured page
// starts its capture and returns ErrCapturePending, as does every call
// until the capture finishes. A failed capture returns ErrCaptureFailed.
func (r *Resolver) Resolve(i int) (*image.RGBA, error) {
	e, err := r.entry(i)
	if err != nil {
		return nil, err
	}

	// Fast path: written once, then immutable.
	if e.ready.Load() {
		return e.img, nil
	}
	if e.failed.Load() {
		return nil, fmt.Errorf("deck: page %d: %w: %v", i, ErrCaptureFailed, e.err)
	}

	r.start(i, e)
	return nil, ErrCapturePending
}

// Status reports the state of page i without triggering a capture.
func (r *Resolver) Status(i int) (Status, error) {
	e, err := r.entry(i)
	if err != nil {
		return StatusPending, err
	}
	switch {
	case e.ready.Load():
		return StatusReady, nil
	case e.failed.Load():
		return StatusFailed, nil
	default:
		return StatusPending, nil
	}
}

// Failures returns the indices whose capture failed, in order.
func (r *Resolver) Failures() []int {
	var out []int
	for i, e := range r.entries {
		if e.failed.Load() {
			out = append(out, i)
		}
	}
	return out
}

// Prefetch starts the capture of every captured page not yet started.
func (r *Resolver) Prefetch() {
	for i, e := range r.entries {
		r.start(i, e)
	}
}

// Wait blocks until page i is no longer in flight, starting its capture if
// needed. It returns nil when the page is ready, ErrCaptureFailed when the
// capture failed, or the context error.
func (r *Resolver) Wait(ctx context.Context, i int) error {
	e, err := r.entry(i)
	if err != nil {
		return err
	}
	r.start(i, e)

	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if e.failed.Load() {
		return fmt.Errorf("deck: page %d: %w: %v", i, ErrCaptureFailed, e.err)
	}
	return nil
}

// WaitAll prefetches and waits for every page. Failed pages do not stop the
// wait; their errors are joined in the result.
func (r *Resolver) WaitAll(ctx context.Context) error {
	r.Prefetch()
	var errs []error
	for i := range r.entries {
		if err := r.Wait(ctx, i); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close cancels in-flight captures and waits for their goroutines.
func (r *Resolver) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *Resolver) entry(i int) (*entry, error) {
	if i < 0 || i >= len(r.entries) {
		return nil, fmt.Errorf("deck: page %d of %d: %w", i, len(r.entries), ErrIndexOutOfRange)
	}
	return r.entries[i], nil
}

// start launches the capture of page i unless it already ran. The
// CompareAndSwap is the per-page "captured" flag: only one caller wins.
func (r *Resolver) start(i int, e *entry) {
	if !e.started.CompareAndSwap(false, true) {
		return
	}
	r.wg.Add(1)
	go r.run(i, e)
}

func (r *Resolver) run(i int, e *entry) {
	defer r.wg.Done()
	defer close(e.done)

	r.log.Debug("deck: capture start", "page", i, "name", e.src.Name)
	img, err := r.capture(e.src)
	if err != nil {
		e.err = err
		e.failed.Store(true)
		r.log.Warn("deck: capture failed", "page", i, "name", e.src.Name, "err", err)
		if r.onFailure != nil {
			r.onFailure(i, err)
		}
		return
	}

	e.img = postprocess.Cover(img, r.width, r.height)
	e.ready.Store(true)
	r.log.Debug("deck: capture done", "page", i, "name", e.src.Name)
}

func (r *Resolver) capture(src Source) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("capture panicked: %v", p)
		}
	}()

	img, err = r.capturer.Capture(r.ctx, *src.Content)
	if err == nil && (img == nil || img.Bounds().Empty()) {
		err = errors.New("capture returned no bitmap")
	}
	return img, err
}
