package batch

import (
	"encoding/json"
	"os"

	"page-curl-renderer/internal/session"
)

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Frame     int     `json:"frame"`
	TimeMS    int64   `json:"time_ms"`
	Committed int     `json:"committed"`
	Preload   int     `json:"preload"`
	Progress  float64 `json:"progress"`
	Direction string  `json:"direction"`
	Edge      string  `json:"edge"`
	Phase     string  `json:"phase"`
	Image     string  `json:"image,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Manifest describes a rendered session.
type Manifest struct {
	Session   string          `json:"session"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	FPS       int             `json:"fps"`
	Pages     []string        `json:"pages"`
	Failed    []int           `json:"failed_pages,omitempty"`
	Animation string          `json:"animation,omitempty"`
	Frames    []ManifestEntry `json:"frames"`
}

// Entries pairs recorded frames with their render results.
func Entries(frames []session.Frame, results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, len(frames))
	for i, f := range frames {
		s := f.State
		entries[i] = ManifestEntry{
			Frame:     f.Index,
			TimeMS:    f.Time.Milliseconds(),
			Committed: s.Committed,
			Preload:   s.Preload,
			Progress:  s.Progress,
			Direction: s.Direction.String(),
			Edge:      s.Edge.String(),
			Phase:     s.Phase.String(),
		}
		if i < len(results) {
			entries[i].Image = results[i].Path
			entries[i].Error = results[i].Error
		}
	}
	return entries
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
