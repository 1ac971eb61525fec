package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"page-curl-renderer/internal/anim"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths. Relative paths resolve against BaseDir, which itself defaults
	// to the directory of the config file.
	BaseDir   string `json:"base_dir" toml:"base_dir" yaml:"base_dir"`
	DeckXML   string `json:"deck_xml" toml:"deck_xml" yaml:"deck_xml"`
	PagesDir  string `json:"pages_dir" toml:"pages_dir" yaml:"pages_dir"`
	Session   string `json:"session" toml:"session" yaml:"session"`
	OutputDir string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`

	// Render settings
	Width       int  `json:"width" toml:"width" yaml:"width"`
	Height      int  `json:"height" toml:"height" yaml:"height"`
	Supersample int  `json:"supersample" toml:"supersample" yaml:"supersample"`
	FPS         int  `json:"fps" toml:"fps" yaml:"fps"`
	Workers     int  `json:"workers" toml:"workers" yaml:"workers"`
	WriteFrames bool `json:"write_frames" toml:"write_frames" yaml:"write_frames"`
	// LoopCount of the animated output; 0 loops forever.
	LoopCount   int  `json:"loop_count" toml:"loop_count" yaml:"loop_count"`

	// Engine settings
	GestureEnabled   *bool       `json:"gesture_enabled" toml:"gesture_enabled" yaml:"gesture_enabled"`
	Threshold        float64     `json:"threshold" toml:"threshold" yaml:"threshold"`
	DurationMS       int         `json:"duration_ms" toml:"duration_ms" yaml:"duration_ms"`
	CancelDurationMS int         `json:"cancel_duration_ms" toml:"cancel_duration_ms" yaml:"cancel_duration_ms"`
	Spring           anim.Spring `json:"spring" toml:"spring" yaml:"spring"`
}

// Load reads a config file. The format follows the extension: .json,
// .toml, .yaml or .yml. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: unknown format %q: %s", ext, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if cfg.BaseDir == "" {
		cfg.BaseDir = dir
	} else if !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(dir, cfg.BaseDir)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Flag paths are relative to the working directory.
type Flags struct {
	DeckXML   string
	PagesDir  string
	Session   string
	OutputDir string
	Width     int
	Height    int
	FPS       int
	Workers   int
	Frames    bool
}

// Resolve applies flags, resolves paths and fills defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// A deck source given on the command line replaces both file sources.
	if flags.DeckXML != "" {
		c.DeckXML, c.PagesDir = absPath(flags.DeckXML), ""
	}
	if flags.PagesDir != "" {
		c.PagesDir, c.DeckXML = absPath(flags.PagesDir), ""
	}
	if flags.Session != "" {
		c.Session = absPath(flags.Session)
	}
	if flags.OutputDir != "" {
		c.OutputDir = absPath(flags.OutputDir)
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.FPS > 0 {
		c.FPS = flags.FPS
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames {
		c.WriteFrames = true
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}
	c.DeckXML = c.resolvePath(c.DeckXML)
	c.PagesDir = c.resolvePath(c.PagesDir)
	c.Session = c.resolvePath(c.Session)
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "curl-renders")
	} else {
		c.OutputDir = c.resolvePath(c.OutputDir)
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 800
	}
	if c.Height <= 0 {
		c.Height = 1200
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.GestureEnabled == nil {
		enabled := true
		c.GestureEnabled = &enabled
	}
	if c.Threshold == 0 {
		c.Threshold = float64(c.Width) / 2
	}
	if c.DurationMS == 0 {
		c.DurationMS = 800
	}
	if c.CancelDurationMS == 0 {
		c.CancelDurationMS = 300
	}
	if c.Spring == (anim.Spring{}) {
		c.Spring = anim.DefaultSpring()
	}
}

// Validate checks a resolved config.
func (c *Config) Validate() error {
	switch {
	case c.DeckXML == "" && c.PagesDir == "":
		return fmt.Errorf("%w: one of deck_xml or pages_dir is required", ErrInvalid)
	case c.DeckXML != "" && c.PagesDir != "":
		return fmt.Errorf("%w: deck_xml and pages_dir are exclusive", ErrInvalid)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: surface %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Supersample < 1 || c.Supersample > 8:
		return fmt.Errorf("%w: supersample %d not in 1..8", ErrInvalid, c.Supersample)
	case c.FPS < 1 || c.FPS > 240:
		return fmt.Errorf("%w: fps %d not in 1..240", ErrInvalid, c.FPS)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	case c.LoopCount < 0 || c.LoopCount > 0xffff:
		return fmt.Errorf("%w: loop_count %d", ErrInvalid, c.LoopCount)
	case c.Threshold < 0:
		return fmt.Errorf("%w: threshold %g", ErrInvalid, c.Threshold)
	case c.DurationMS < 0 || c.CancelDurationMS < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	case !c.Spring.Valid():
		return fmt.Errorf("%w: spring %+v", ErrInvalid, c.Spring)
	}
	return nil
}

// Gestures reports whether pointer input is enabled.
func (c *Config) Gestures() bool {
	return c.GestureEnabled == nil || *c.GestureEnabled
}

// Duration is the programmatic transition length.
func (c *Config) Duration() time.Duration {
	return time.Duration(c.DurationMS) * time.Millisecond
}

// CancelDuration is the length of the ease back after a short drag.
func (c *Config) CancelDuration() time.Duration {
	return time.Duration(c.CancelDurationMS) * time.Millisecond
}

// FrameInterval is the session clock step.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

func (c *Config) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
