// Package session describes scripted input for the engine and replays it
// on a fixed-rate clock, recording the navigation state of every frame.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid reports a malformed script.
var ErrInvalid = errors.New("session: invalid script")

// Op is the kind of a scripted event.
type Op string

const (
	OpWait   Op = "wait"   // advance the clock by MS
	OpDrag   Op = "drag"   // press at From, move to To over MS, release
	OpNext   Op = "next"   // programmatic next page
	OpPrev   Op = "prev"   // programmatic previous page
	OpSettle Op = "settle" // advance until no transition is running
)

// Event is one scripted step. Drag coordinates are surface pixels.
type Event struct {
	Op   Op         `json:"op" yaml:"op"`
	MS   int        `json:"ms,omitempty" yaml:"ms,omitempty"`
	From [2]float64 `json:"from,omitempty" yaml:"from,omitempty"`
	To   [2]float64 `json:"to,omitempty" yaml:"to,omitempty"`
}

// Script is an ordered list of events. The player settles after the last
// event, then holds the final frame for TailMS.
type Script struct {
	Name   string  `json:"name" yaml:"name"`
	TailMS int     `json:"tail_ms" yaml:"tail_ms"`
	Events []Event `json:"events" yaml:"events"`
}

// Load reads a script from a .json, .yaml or .yml file.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("session: read %s: %w", path, err)
	}

	var s Script
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return Script{}, fmt.Errorf("session: unknown format %q: %s", ext, path)
	}
	if err != nil {
		return Script{}, fmt.Errorf("session: parse %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return Script{}, fmt.Errorf("session: %s: %w", path, err)
	}
	return s, nil
}

// Validate checks every event.
func (s Script) Validate() error {
	if s.TailMS < 0 {
		return fmt.Errorf("%w: tail_ms %d", ErrInvalid, s.TailMS)
	}
	for i, ev := range s.Events {
		switch ev.Op {
		case OpWait, OpDrag:
			if ev.MS < 0 {
				return fmt.Errorf("%w: event %d: negative ms", ErrInvalid, i)
			}
		case OpNext, OpPrev, OpSettle:
		default:
			return fmt.Errorf("%w: event %d: unknown op %q", ErrInvalid, i, ev.Op)
		}
	}
	return nil
}

// Demo returns a script that drags forward through every page, alternating
// bottom and top edges, and then steps back to the start with Prev.
func Demo(pages int, width, height float64) Script {
	s := Script{Name: "demo", TailMS: 500}
	s.Events = append(s.Events, Event{Op: OpWait, MS: 300})
	for i := 0; i < pages-1; i++ {
		y := height * 0.85
		if i%2 == 1 {
			y = height * 0.15
		}
		s.Events = append(s.Events,
			Event{Op: OpDrag, From: [2]float64{width * 0.95, y}, To: [2]float64{width * 0.2, y}, MS: 450},
			Event{Op: OpSettle},
			Event{Op: OpWait, MS: 200},
		)
	}
	for i := 0; i < pages-1; i++ {
		s.Events = append(s.Events, Event{Op: OpPrev}, Event{Op: OpSettle})
	}
	return s
}
