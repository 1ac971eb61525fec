package engine

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"page-curl-renderer/internal/capture"
	"page-curl-renderer/internal/deck"
	"page-curl-renderer/internal/nav"
)

const frame = time.Second / 60

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func staticDeck(colors ...color.RGBA) []deck.Source {
	out := make([]deck.Source, len(colors))
	for i, c := range colors {
		out[i] = deck.Static("", solid(8, 12, c))
	}
	return out
}

func newEngine(t *testing.T, sources []deck.Source, opts Options) *Engine {
	t.Helper()
	if opts.Width == 0 {
		opts.Width, opts.Height = 40, 60
	}
	e, err := New(sources, opts)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func settle(t *testing.T, e *Engine) {
	t.Helper()
	for i := 0; i < 1000 && e.State().Phase != nav.Idle; i++ {
		e.Tick(frame)
	}
	require.Equal(t, nav.Idle, e.State().Phase)
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	cases := map[string]struct {
		sources []deck.Source
		opts    Options
	}{
		"no pages":    {nil, Options{Width: 10, Height: 10}},
		"zero width":  {staticDeck(red), Options{Width: 0, Height: 10}},
		"supersample": {staticDeck(red), Options{Width: 10, Height: 10, Supersample: 9}},
		"workers":     {staticDeck(red), Options{Width: 10, Height: 10, Workers: -1}},
		"threshold":   {staticDeck(red), Options{Width: 10, Height: 10, Threshold: -5}},
		"no capturer": {[]deck.Source{deck.Captured("x", capture.Descriptor{})}, Options{Width: 10, Height: 10}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(tc.sources, tc.opts)
			assert.ErrorIs(t, err, ErrConfigurationInvalid)
		})
	}
}

func TestRenderEndpoints(t *testing.T) {
	e := newEngine(t, staticDeck(red, blue), Options{})
	ctx := context.Background()

	img, err := e.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 60), img.Bounds())
	assert.Equal(t, red, img.RGBAAt(20, 30))

	e.Next()
	settle(t, e)
	s := e.State()
	assert.Equal(t, 1, s.Committed)
	assert.Equal(t, 1.0, s.Progress)

	img, err = e.Frame(ctx)
	require.NoError(t, err)
	assert.Equal(t, blue, img.RGBAAt(20, 30))
}

func TestRenderMidTransitionBlendsBothPages(t *testing.T) {
	e := newEngine(t, staticDeck(red, blue), Options{})
	img, err := e.Render(context.Background(), nav.State{Progress: 0.5, PageCount: 2})
	require.NoError(t, err)

	var reds, blues int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			switch {
			case c == red:
				reds++
			case c.R < 10 && c.G < 10 && c.B > 128:
				blues++
			}
		}
	}
	assert.Positive(t, reds)
	assert.Positive(t, blues)
}

func TestSupersampledFrameKeepsSize(t *testing.T) {
	e := newEngine(t, staticDeck(green, blue), Options{Supersample: 2, Workers: 3})
	img, err := e.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 60), img.Bounds())

	c := img.RGBAAt(20, 30)
	assert.InDelta(t, 0, int(c.R), 1)
	assert.InDelta(t, 255, int(c.G), 1)
	assert.InDelta(t, 255, int(c.A), 1)
}

func TestPendingCaptureRendersTransparent(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	capturer := capture.Func(func(ctx context.Context, d capture.Descriptor) (image.Image, error) {
		calls++
		<-release
		return solid(4, 4, blue), nil
	})
	e := newEngine(t, []deck.Source{
		deck.Static("cover", solid(4, 4, red)),
		deck.Captured("dyn", capture.Descriptor{Title: "late"}),
	}, Options{Capturer: capturer})

	end := nav.State{Progress: 1, PageCount: 2}
	img, err := e.Render(context.Background(), end)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(20, 30))

	img, err = e.Render(context.Background(), end)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(20, 30))

	close(release)
	require.NoError(t, e.Pages().Wait(context.Background(), 1))
	img, err = e.Render(context.Background(), end)
	require.NoError(t, err)
	assert.Equal(t, blue, img.RGBAAt(20, 30))
	assert.Equal(t, 1, calls)
}

func TestFailedCaptureIsReported(t *testing.T) {
	var reported []int
	capturer := capture.Func(func(context.Context, capture.Descriptor) (image.Image, error) {
		return nil, nil
	})
	e := newEngine(t, []deck.Source{
		deck.Static("cover", solid(4, 4, red)),
		deck.Captured("dyn", capture.Descriptor{}),
	}, Options{Capturer: capturer, OnFailure: func(i int, err error) { reported = append(reported, i) }})

	assert.ErrorIs(t, e.Pages().Wait(context.Background(), 1), deck.ErrCaptureFailed)
	assert.Equal(t, []int{1}, e.Failures())
	assert.Equal(t, []int{1}, reported)

	img, err := e.Render(context.Background(), nav.State{Progress: 1, PageCount: 2})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{}, img.RGBAAt(20, 30))
}

func TestSinglePageDeck(t *testing.T) {
	e := newEngine(t, staticDeck(green), Options{})
	e.Next()
	e.Prev()
	assert.Equal(t, nav.Idle, e.State().Phase)

	img, err := e.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, green, img.RGBAAt(5, 5))
}

func TestRenderHonorsContext(t *testing.T) {
	e := newEngine(t, staticDeck(red, blue), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Frame(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPointerDragCommits(t *testing.T) {
	e := newEngine(t, staticDeck(red, green, blue, red), Options{GestureEnabled: true})

	e.PointerDown(35, 50)
	e.PointerMove(20, 50)
	e.PointerMove(11, 50)
	assert.Equal(t, nav.Dragging, e.State().Phase)
	e.PointerUp(11, 50)
	settle(t, e)

	s := e.State()
	assert.Equal(t, 1, s.Committed)
	assert.Equal(t, 1, s.Preload)
	assert.Equal(t, 0.0, s.Progress)

	img, err := e.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, green, img.RGBAAt(20, 30))
}

func TestPrevAtFirstPageIsNoOp(t *testing.T) {
	e := newEngine(t, staticDeck(red, green, blue, red), Options{})
	before := e.State()
	e.Prev()
	e.Tick(frame)
	assert.Equal(t, before, e.State())
}
