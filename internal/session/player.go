package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"page-curl-renderer/internal/logx"
	"page-curl-renderer/internal/nav"
)

// Target receives scripted input. *engine.Engine satisfies it.
type Target interface {
	Next()
	Prev()
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	Tick(dt time.Duration)
	State() nav.State
}

// Frame is the recorded state of one display frame.
type Frame struct {
	Index int           `json:"index"`
	Time  time.Duration `json:"time"`
	State nav.State     `json:"state"`
}

// Player replays scripts at a fixed frame interval.
type Player struct {
	Interval time.Duration
	// MaxSettle bounds every settle step. Zero means 30s.
	MaxSettle time.Duration
	Logger    *slog.Logger
}

type recorder struct {
	ctx      context.Context
	target   Target
	interval time.Duration
	frames   []Frame
}

func (r *recorder) record() {
	r.frames = append(r.frames, Frame{
		Index: len(r.frames),
		Time:  time.Duration(len(r.frames)) * r.interval,
		State: r.target.State(),
	})
}

// step advances one frame and records it.
func (r *recorder) step() error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.target.Tick(r.interval)
	r.record()
	return nil
}

func (r *recorder) run(n int) error {
	for range n {
		if err := r.step(); err != nil {
			return err
		}
	}
	return nil
}

func (r *recorder) settle(limit time.Duration) error {
	for steps := 0; r.target.State().Phase != nav.Idle; steps++ {
		if time.Duration(steps)*r.interval >= limit {
			return fmt.Errorf("session: transition did not settle within %s", limit)
		}
		if err := r.step(); err != nil {
			return err
		}
	}
	return nil
}

// Play feeds s to t and returns one Frame per display frame, starting with
// the state before the first event. The run always ends settled.
func (p Player) Play(ctx context.Context, t Target, s Script) ([]Frame, error) {
	if p.Interval <= 0 {
		return nil, fmt.Errorf("%w: frame interval %s", ErrInvalid, p.Interval)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	limit := p.MaxSettle
	if limit <= 0 {
		limit = 30 * time.Second
	}
	log := logx.Or(p.Logger)

	r := &recorder{ctx: ctx, target: t, interval: p.Interval}
	r.record()

	for i, ev := range s.Events {
		var err error
		switch ev.Op {
		case OpWait:
			err = r.run(p.frames(ev.MS))
		case OpNext:
			t.Next()
		case OpPrev:
			t.Prev()
		case OpSettle:
			err = r.settle(limit)
		case OpDrag:
			err = p.drag(r, ev)
		}
		if err != nil {
			return r.frames, fmt.Errorf("session: event %d (%s): %w", i, ev.Op, err)
		}
		log.Debug("session: event", "index", i, "op", ev.Op, "frames", len(r.frames), "state", t.State())
	}

	if err := r.settle(limit); err != nil {
		return r.frames, err
	}
	if err := r.run(p.frames(s.TailMS)); err != nil {
		return r.frames, err
	}
	return r.frames, nil
}

// drag presses at From, moves in a straight line to To with one move per
// frame, and releases at To.
func (p Player) drag(r *recorder, ev Event) error {
	n := max(p.frames(ev.MS), 1)
	r.target.PointerDown(ev.From[0], ev.From[1])
	for k := 1; k <= n; k++ {
		f := float64(k) / float64(n)
		x := ev.From[0] + (ev.To[0]-ev.From[0])*f
		y := ev.From[1] + (ev.To[1]-ev.From[1])*f
		r.target.PointerMove(x, y)
		if err := r.step(); err != nil {
			return err
		}
	}
	r.target.PointerUp(ev.To[0], ev.To[1])
	return nil
}

// frames converts milliseconds to a whole number of frames, rounding up.
func (p Player) frames(ms int) int {
	d := time.Duration(ms) * time.Millisecond
	return int((d + p.Interval - 1) / p.Interval)
}
