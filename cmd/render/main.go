package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"page-curl-renderer/internal/batch"
	"page-curl-renderer/internal/capture"
	"page-curl-renderer/internal/config"
	"page-curl-renderer/internal/engine"
	"page-curl-renderer/internal/logx"
	"page-curl-renderer/internal/pagelist"
	"page-curl-renderer/internal/session"
	"page-curl-renderer/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .toml, .yaml)")
	deckXML := flag.String("deck", "", "Deck manifest XML")
	pagesDir := flag.String("pages", "", "Directory of page images (alternative to -deck)")
	sessionFile := flag.String("session", "", "Input script (.json, .yaml); default: demo drag-through")
	outputDir := flag.String("output", "", "Output directory (default: <base>/curl-renders)")
	width := flag.Int("width", 0, "Surface width in pixels (default: 800)")
	height := flag.Int("height", 0, "Surface height in pixels (default: 1200)")
	fps := flag.Int("fps", 0, "Session frame rate (default: 30)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	frames := flag.Bool("frames", false, "Also write every frame as WebP")
	watchMode := flag.Bool("watch", false, "Re-render when the deck, pages or script change")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	flags := config.Flags{
		DeckXML:   *deckXML,
		PagesDir:  *pagesDir,
		Session:   *sessionFile,
		OutputDir: *outputDir,
		Width:     *width,
		Height:    *height,
		FPS:       *fps,
		Workers:   *workers,
		Frames:    *frames,
	}
	cfg, err := loadConfig(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log := logx.Stderr(*verbose)

	failed, err := render(ctx, &cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	if !*watchMode {
		if err != nil || failed > 0 {
			os.Exit(1)
		}
		return
	}

	paths := append(watchPaths(&cfg), *configFile)
	w, err := watch.New(paths, watch.DefaultDebounce, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	fmt.Println("Watching for changes (Ctrl+C to stop)...")
	err = w.Run(ctx, func(ctx context.Context) error {
		fmt.Println()
		// The config file is watched too, so reload it on every pass.
		cfg, err := loadConfig(*configFile, flags)
		if err != nil {
			return err
		}
		_, err = render(ctx, &cfg, log)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file and applies flags over it.
func loadConfig(path string, flags config.Flags) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}

	// CLI flags override config file
	cfg.Resolve(flags)
	return cfg, cfg.Validate()
}

// render runs one full pass: load the deck, play the session, render and
// encode every frame. It returns the number of frames that failed.
func render(ctx context.Context, cfg *config.Config, log *slog.Logger) (int, error) {
	// Load page list
	var pages []pagelist.PageDef
	var err error
	if cfg.DeckXML != "" {
		pages, err = pagelist.Parse(cfg.DeckXML)
	} else {
		pages, err = pagelist.ScanDir(cfg.PagesDir)
	}
	if err != nil {
		return 0, err
	}
	if len(pages) == 0 {
		return 0, errors.New("deck has no pages")
	}

	sources, err := pagelist.Sources(pages)
	if err != nil {
		return 0, err
	}

	cards, err := capture.NewCardRenderer(cfg.Width, cfg.Height)
	if err != nil {
		return 0, err
	}
	defer cards.Close()

	eng, err := engine.New(sources, engine.Options{
		Width:          cfg.Width,
		Height:         cfg.Height,
		Supersample:    cfg.Supersample,
		// Frames are spread over the batch workers; each composes alone.
		Workers:        1,
		GestureEnabled: cfg.Gestures(),
		Threshold:      cfg.Threshold,
		Duration:       cfg.Duration(),
		CancelDuration: cfg.CancelDuration(),
		Spring:         cfg.Spring,
		Capturer:       cards,
		Logger:         log,
		OnFailure: func(index int, err error) {
			fmt.Fprintf(os.Stderr, "Warning: page %d capture failed: %v\n", index, err)
		},
	})
	if err != nil {
		return 0, err
	}
	defer eng.Close()

	// Captures must land before frames are rendered; failed pages stay
	// transparent and are listed in the manifest.
	if err := eng.Pages().WaitAll(ctx); err != nil && ctx.Err() != nil {
		return 0, err
	}

	// Load session
	script := session.Demo(len(pages), float64(cfg.Width), float64(cfg.Height))
	if cfg.Session != "" {
		script, err = session.Load(cfg.Session)
		if err != nil {
			return 0, err
		}
	}

	player := session.Player{Interval: cfg.FrameInterval(), Logger: log}
	frames, err := player.Play(ctx, eng, script)
	if err != nil {
		return 0, err
	}

	// Print summary
	fmt.Printf("Page Curl Renderer -> WebP (%s)\n", script.Name)
	fmt.Printf("Pages: %d, Frames: %d @ %d fps, Surface: %dx%d x%d\n",
		len(pages), len(frames), cfg.FPS, cfg.Width, cfg.Height, cfg.Supersample)
	fmt.Printf("Workers: %d\n", cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Renderer:    eng,
		Workers:     cfg.Workers,
		WriteFrames: cfg.WriteFrames,
	}

	results := batch.Run(ctx, batchCfg, frames)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errs []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(frames))

	if len(errs) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errs), 20)
		for _, e := range errs[:limit] {
			fmt.Printf("  frame %d: %s\n", e.Frame, e.Error)
		}
	}

	os.MkdirAll(cfg.OutputDir, 0755)

	// Write animation
	animPath := filepath.Join(cfg.OutputDir, script.Name+".webp")
	animRel := ""
	if err := batch.WriteAnimation(animPath, results, cfg.FrameInterval(), cfg.LoopCount); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: animation write failed: %v\n", err)
	} else {
		animRel = filepath.Base(animPath)
		fmt.Printf("Animation: %s\n", animPath)
	}

	// Write manifest
	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = p.Name
	}
	manifest := batch.Manifest{
		Session:   script.Name,
		Width:     cfg.Width,
		Height:    cfg.Height,
		FPS:       cfg.FPS,
		Pages:     names,
		Failed:    eng.Failures(),
		Animation: animRel,
		Frames:    batch.Entries(frames, results),
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	return failed, nil
}

// watchPaths lists the inputs of a render pass.
func watchPaths(cfg *config.Config) []string {
	paths := []string{cfg.Session}
	if cfg.PagesDir != "" {
		return append(paths, cfg.PagesDir)
	}
	paths = append(paths, cfg.DeckXML)
	if pages, err := pagelist.Parse(cfg.DeckXML); err == nil {
		paths = append(paths, pagelist.Paths(pages)...)
	}
	return paths
}
