package vmcore

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Transition drives a fade across a queued room change, grounded on the
// teacher's camera scroll-tween pattern (one gween.Tween driving a single
// scalar over a fixed duration, advanced once per frame). frames is
// expressed in logical frames rather than seconds since the core has no
// wall-clock notion of its own (spec.md §5).
type Transition struct {
	tween *gween.Tween
	alpha float32
	done  bool
}

// NewTransition starts a fade-to-opaque tween lasting frames logical
// frames. A non-positive duration completes immediately.
func NewTransition(frames int32) *Transition {
	if frames <= 0 {
		return &Transition{done: true, alpha: 1}
	}
	return &Transition{tween: gween.New(0, 1, float32(frames), ease.Linear)}
}

// Advance steps the transition by one logical frame.
func (t *Transition) Advance() {
	if t.done || t.tween == nil {
		return
	}
	var finished bool
	t.alpha, finished = t.tween.Update(1)
	if finished {
		t.done = true
	}
}

// Done reports whether the fade has completed.
func (t *Transition) Done() bool { return t.done }

// Alpha returns the current fade coverage in [0, 1], for a renderer to
// draw as a full-screen overlay while the transition plays.
func (t *Transition) Alpha() float32 { return t.alpha }
