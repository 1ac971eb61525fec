package nav

import (
	"fmt"

	"page-curl-renderer/internal/curl"
)

// Direction is the way a transition moves through the deck.
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Phase is the state machine's position.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Settling
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State is a snapshot of the navigation state. The compositor blends page
// Preload (outgoing) with page Preload+1 (incoming) at Progress.
type State struct {
	Committed     int       `json:"committed"`
	Preload       int       `json:"preload"`
	Progress      float64   `json:"progress"`
	Direction     Direction `json:"direction"`
	Edge          curl.Edge `json:"edge"`
	Phase         Phase     `json:"phase"`
	GestureActive bool      `json:"gesture_active"`
	PageCount     int       `json:"page_count"`
}

// Pair returns the indices of the outgoing and incoming pages. The incoming
// index equals PageCount when the deck has a single page.
func (s State) Pair() (from, to int) {
	return s.Preload, s.Preload + 1
}

func (s State) String() string {
	return fmt.Sprintf("%s committed=%d preload=%d progress=%.3f dir=%s edge=%s",
		s.Phase, s.Committed, s.Preload, s.Progress, s.Direction, s.Edge)
}
