package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"page-curl-renderer/internal/nav"
	"page-curl-renderer/internal/postprocess"
	"page-curl-renderer/internal/session"

	"github.com/HugoSmits86/nativewebp"
)

// Renderer turns a navigation state into a frame. *engine.Engine satisfies it.
type Renderer interface {
	Render(ctx context.Context, s nav.State) (*image.RGBA, error)
}

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Renderer  Renderer
	Workers   int
	// WriteFrames saves every frame as frames/NNNNN.webp.
	WriteFrames bool
	// Quiet disables the progress reporter.
	Quiet bool
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Frame   int
	Success bool
	Error   string
	// Path is the frame file relative to OutputDir, when frames are written.
	Path  string
	Image *image.NRGBA
}

// Run renders all frames using a worker pool. Results are in frame order.
func Run(ctx context.Context, cfg Config, frames []session.Frame) []Result {
	total := len(frames)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := max(cfg.Workers, 1)
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if !cfg.Quiet {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						elapsed := time.Since(start).Seconds()
						rate := float64(p) / elapsed
						fmt.Printf("  [%d/%d] %.1f frames/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	frameChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range frameChan {
				results[idx] = renderFrame(ctx, cfg, frames[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range frames {
		frameChan <- i
	}
	close(frameChan)

	wg.Wait()
	close(done)

	return results
}

func renderFrame(ctx context.Context, cfg Config, f session.Frame) Result {
	res := Result{Frame: f.Index}

	img, err := cfg.Renderer.Render(ctx, f.State)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Image = postprocess.ToNRGBA(img)

	if cfg.WriteFrames {
		rel := FramePath(f.Index)
		if err := writeWebP(filepath.Join(cfg.OutputDir, rel), res.Image); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Path = rel
	}

	res.Success = true
	return res
}

// FramePath is the output path of frame i, relative to the output directory.
func FramePath(i int) string {
	return filepath.ToSlash(filepath.Join("frames", fmt.Sprintf("%05d.webp", i)))
}

func writeWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}

// WriteAnimation encodes the successful frames as one animated WebP, each
// shown for interval. loopCount 0 loops forever.
func WriteAnimation(path string, results []Result, interval time.Duration, loopCount int) error {
	ani := &nativewebp.Animation{LoopCount: uint16(loopCount)}
	ms := uint(max(interval.Milliseconds(), 1))
	for _, r := range results {
		if !r.Success || r.Image == nil {
			continue
		}
		ani.Images = append(ani.Images, r.Image)
		ani.Durations = append(ani.Durations, ms)
		ani.Disposals = append(ani.Disposals, 0)
	}
	if len(ani.Images) == 0 {
		return fmt.Errorf("batch: no frames to encode into %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := nativewebp.EncodeAll(f, ani, nil); err != nil {
		return fmt.Errorf("batch: encode animation %s: %w", path, err)
	}
	return f.Close()
}
