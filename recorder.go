package vmcore

import (
	"golang.org/x/time/rate"

	"github.com/northlake/vmcore/render"
)

// RecorderConfig bounds how fast replay entries accumulate. A long-running
// session polling input every frame would otherwise grow Replay.Frames
// without limit; recordsPerSecond throttles capture the same way the
// teacher's event log throttles its own per-player event stream.
type RecorderConfig struct {
	RecordsPerSecond rate.Limit
	Burst            int
}

// DefaultRecorderConfig allows up to 120 recorded frame-entries per second
// with a burst of one second's worth, comfortably above any real frame
// rate this core targets.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{RecordsPerSecond: 120, Burst: 120}
}

// Recorder wraps an Engine with a live Replay, appending one entry per
// Tick (subject to the configured rate limit) before stepping the frame,
// per spec.md §4.8's replay record.
type Recorder struct {
	engine  *Engine
	replay  *Replay
	limiter *rate.Limiter
}

// NewRecorder starts recording a fresh Replay rooted at the engine's
// current seed and spoofed time.
func NewRecorder(e *Engine, cfg RecorderConfig, startup []render.WindowEvent) *Recorder {
	r := &Recorder{
		engine:  e,
		replay:  NewReplay(e.rng.Seed(), e.spoofedTimeNanos, startup),
		limiter: rate.NewLimiter(cfg.RecordsPerSecond, cfg.Burst),
	}
	e.recorder = r
	return r
}

// Replay returns the record accumulated so far.
func (r *Recorder) Replay() *Replay { return r.replay }

// Tick folds one frame's window events into the engine's input state,
// records a replay entry if the capture rate limiter allows it, then runs
// exactly one Frame.
func (r *Recorder) Tick(events []render.WindowEvent, mouseX, mouseY int32) error {
	r.engine.input.Apply(events)
	if r.limiter.Allow() {
		r.replay.Append(r.engine.frameIndex+1, ReplayFrame{
			MouseX: mouseX,
			MouseY: mouseY,
			Inputs: append([]render.WindowEvent(nil), events...),
		})
	}
	return r.engine.Frame()
}

// ReplayPlayer drives an Engine from a previously recorded Replay instead
// of live input, for deterministic playback/verification.
type ReplayPlayer struct {
	engine *Engine
	replay *Replay
	cursor int64
}

// NewReplayPlayer attaches replay to e for step-by-step playback.
func NewReplayPlayer(e *Engine, replay *Replay) *ReplayPlayer {
	return &ReplayPlayer{engine: e, replay: replay}
}

// Step applies the next recorded frame entry (if any) and advances the
// engine by exactly one Frame.
func (p *ReplayPlayer) Step() error {
	p.cursor++
	if entry, ok := p.replay.At(p.cursor); ok {
		if entry.NewSeed != nil {
			p.engine.rng.SetSeed(*entry.NewSeed)
		}
		if entry.NewSpoofedTime != nil {
			p.engine.spoofedTimeNanos = *entry.NewSpoofedTime
		}
		p.engine.input.Apply(entry.Inputs)
	}
	return p.engine.Frame()
}
