package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"

	"page-curl-renderer/internal/capture"
	"page-curl-renderer/internal/config"
	"page-curl-renderer/internal/curl"
	"page-curl-renderer/internal/engine"
	"page-curl-renderer/internal/logx"
	"page-curl-renderer/internal/nav"
	"page-curl-renderer/internal/pagelist"
	"page-curl-renderer/internal/postprocess"
)

// frame renders a single still of the curl between page N and N+1.
func main() {
	configFile := flag.String("config", "", "Path to config file")
	deckXML := flag.String("deck", "", "Deck manifest XML")
	pagesDir := flag.String("pages", "", "Directory of page images")
	fromImage := flag.String("from", "", "Outgoing page image (with -to, instead of a deck)")
	toImage := flag.String("to", "", "Incoming page image")
	page := flag.Int("page", 0, "Outgoing page; the incoming page is page+1")
	progress := flag.Float64("progress", 0.5, "Transition progress in [0, 1]")
	edgeName := flag.String("edge", "bottom", "Fold edge: bottom or top")
	supersample := flag.Int("supersample", 0, "Supersampling factor (default: from config)")
	out := flag.String("out", "frame.webp", "Output file (.webp or .png)")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	edge, err := curl.ParseEdge(*edgeName)
	if err != nil {
		fatal(err)
	}
	if *progress < 0 || *progress > 1 {
		fatal(fmt.Errorf("progress %g not in [0, 1]", *progress))
	}

	var cfg config.Config
	if *configFile != "" {
		if cfg, err = config.Load(*configFile); err != nil {
			fatal(err)
		}
	}
	cfg.Resolve(config.Flags{DeckXML: *deckXML, PagesDir: *pagesDir})
	if *supersample > 0 {
		cfg.Supersample = *supersample
	}
	pair := *fromImage != "" || *toImage != ""
	if pair {
		if *fromImage == "" || *toImage == "" {
			fatal(fmt.Errorf("-from and -to go together"))
		}
		// The two images stand in for the deck source.
		cfg.DeckXML, cfg.PagesDir = "", filepath.Dir(*fromImage)
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	var pages []pagelist.PageDef
	switch {
	case pair:
		pages = []pagelist.PageDef{
			{Index: 0, Name: "from", Image: *fromImage},
			{Index: 1, Name: "to", Image: *toImage},
		}
		*page = 0
	case cfg.DeckXML != "":
		pages, err = pagelist.Parse(cfg.DeckXML)
	default:
		pages, err = pagelist.ScanDir(cfg.PagesDir)
	}
	if err != nil {
		fatal(err)
	}
	if *page < 0 || *page >= len(pages) {
		fatal(fmt.Errorf("page %d out of range (deck has %d pages)", *page, len(pages)))
	}
	sources, err := pagelist.Sources(pages)
	if err != nil {
		fatal(err)
	}

	cards, err := capture.NewCardRenderer(cfg.Width, cfg.Height)
	if err != nil {
		fatal(err)
	}
	defer cards.Close()

	eng, err := engine.New(sources, engine.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Capturer:    cards,
		Logger:      logx.Stderr(*verbose),
	})
	if err != nil {
		fatal(err)
	}
	defer eng.Close()

	ctx := context.Background()
	for _, i := range []int{*page, *page + 1} {
		if i < len(pages) {
			if err := eng.Pages().Wait(ctx, i); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}
	}

	img, err := eng.Render(ctx, nav.State{
		Committed: *page,
		Preload:   *page,
		Progress:  *progress,
		Edge:      edge,
		PageCount: len(pages),
	})
	if err != nil {
		fatal(err)
	}

	if err := save(*out, img); err != nil {
		fatal(err)
	}
	fmt.Printf("Page %d -> %d, progress %.3f, %s edge: %s\n", *page, *page+1, *progress, edge, *out)
}

func save(path string, img *image.RGBA) error {
	encode := map[string]func(*os.File, image.Image) error{
		".png":  func(f *os.File, m image.Image) error { return png.Encode(f, m) },
		".webp": func(f *os.File, m image.Image) error { return nativewebp.Encode(f, m, nil) },
	}[strings.ToLower(filepath.Ext(path))]
	if encode == nil {
		return fmt.Errorf("unsupported output format: %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := encode(f, postprocess.ToNRGBA(img)); err != nil {
		return err
	}
	return f.Close()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
