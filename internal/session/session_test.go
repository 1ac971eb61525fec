package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"page-curl-renderer/internal/nav"
)

const interval = 25 * time.Millisecond

func newTarget(t *testing.T, pages int) *nav.Navigator {
	t.Helper()
	n, err := nav.New(pages, nav.Options{Width: 300, Height: 400, GestureEnabled: true})
	require.NoError(t, err)
	return n
}

// navTarget adapts a Navigator, whose Next/Prev report success.
type navTarget struct{ *nav.Navigator }

func (n navTarget) Next() { n.Navigator.Next() }
func (n navTarget) Prev() { n.Navigator.Prev() }

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "turn.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"tail_ms": 100, "events": [
		{"op": "wait", "ms": 50},
		{"op": "drag", "from": [280, 350], "to": [40, 350], "ms": 300},
		{"op": "settle"},
		{"op": "prev"}
	]}`), 0o644))
	yamlPath := filepath.Join(dir, "turn.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`name: custom
tail_ms: 100
events:
  - op: wait
    ms: 50
  - op: drag
    from: [280, 350]
    to: [40, 350]
    ms: 300
  - op: settle
  - op: prev
`), 0o644))

	js, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "turn", js.Name)
	ys, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "custom", ys.Name)

	ys.Name = js.Name
	assert.Equal(t, js, ys)
	assert.Equal(t, Event{Op: OpDrag, From: [2]float64{280, 350}, To: [2]float64{40, 350}, MS: 300}, js.Events[1])
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"events": [{"op": "jump"}]}`), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrInvalid)

	txt := filepath.Join(dir, "s.txt")
	require.NoError(t, os.WriteFile(txt, []byte(`{}`), 0o644))
	_, err = Load(txt)
	assert.Error(t, err)
}

func TestPlayRecordsEveryFrame(t *testing.T) {
	target := navTarget{newTarget(t, 3)}
	s := Script{Events: []Event{
		{Op: OpWait, MS: 100},
		{Op: OpNext},
		{Op: OpSettle},
	}, TailMS: 100}

	frames, err := Player{Interval: interval}.Play(context.Background(), target, s)
	require.NoError(t, err)

	assert.Equal(t, nav.State{PageCount: 3}, frames[0].State)
	for i, f := range frames {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, time.Duration(i)*interval, f.Time)
	}
	// 4 wait frames, 32 for the 800ms transition, 4 tail frames.
	assert.Len(t, frames, 1+4+32+4)

	last := frames[len(frames)-1].State
	assert.Equal(t, nav.Idle, last.Phase)
	assert.Equal(t, 1, last.Committed)

	sawSettling := false
	for _, f := range frames {
		sawSettling = sawSettling || f.State.Phase == nav.Settling
	}
	assert.True(t, sawSettling)
}

func TestPlayDragCommits(t *testing.T) {
	target := navTarget{newTarget(t, 3)}
	s := Script{Events: []Event{
		{Op: OpDrag, From: [2]float64{290, 350}, To: [2]float64{60, 350}, MS: 200},
	}}

	frames, err := Player{Interval: interval}.Play(context.Background(), target, s)
	require.NoError(t, err)

	// Drag frames report the gesture in progress with growing progress.
	drag := frames[1:9]
	for i, f := range drag {
		assert.Equal(t, nav.Dragging, f.State.Phase, "frame %d", i)
		if i > 0 {
			assert.Greater(t, f.State.Progress, drag[i-1].State.Progress)
		}
	}
	last := frames[len(frames)-1].State
	assert.Equal(t, 1, last.Committed)
	assert.Equal(t, 1, last.Preload)
	assert.Equal(t, 0.0, last.Progress)
}

func TestPlayDemo(t *testing.T) {
	target := navTarget{newTarget(t, 4)}
	frames, err := Player{Interval: interval}.Play(context.Background(), target, Demo(4, 300, 400))
	require.NoError(t, err)

	maxCommitted := 0
	edges := map[string]bool{}
	for _, f := range frames {
		maxCommitted = max(maxCommitted, f.State.Committed)
		if f.State.Phase == nav.Dragging {
			edges[f.State.Edge.String()] = true
		}
	}
	assert.Equal(t, 3, maxCommitted)
	assert.True(t, edges["top"])
	assert.True(t, edges["bottom"])
	assert.Equal(t, 0, frames[len(frames)-1].State.Committed)
}

func TestPlayHonorsContext(t *testing.T) {
	target := navTarget{newTarget(t, 3)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Player{Interval: interval}.Play(ctx, target, Script{Events: []Event{{Op: OpWait, MS: 1000}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlayRejectsBadInput(t *testing.T) {
	target := navTarget{newTarget(t, 3)}
	_, err := Player{}.Play(context.Background(), target, Script{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Player{Interval: interval}.Play(context.Background(), target, Script{Events: []Event{{Op: OpWait, MS: -1}}})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFramesRoundsUp(t *testing.T) {
	p := Player{Interval: interval}
	assert.Equal(t, 0, p.frames(0))
	assert.Equal(t, 1, p.frames(1))
	assert.Equal(t, 4, p.frames(100))
	assert.Equal(t, 40, p.frames(1000))
}
