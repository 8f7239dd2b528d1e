package vmcore

import "github.com/northlake/vmcore/render"

// ReplayFrame is one sparse per-frame entry in a Replay. A frame index with
// no entry defaults to "no inputs, same seed" per spec.md §4.8.
type ReplayFrame struct {
	MouseX, MouseY int32
	NewSeed        *uint32
	NewSpoofedTime *int64
	Inputs         []render.WindowEvent
	RuntimeEvents  []render.WindowEvent
}

// Replay is a deterministic record of one session's inputs: the seed and
// spoofed time it began from, the startup event queue fed to the engine
// before the first Frame call, and a sparse map of per-frame entries keyed
// by frame index. Replaying it from the same starting SaveState reproduces
// byte-identical engine states at every frame boundary (spec.md §4.8,
// §9's replay-determinism invariant).
type Replay struct {
	StartSeed      uint32
	StartTimeNanos int64
	StartupEvents  []render.WindowEvent
	Frames         map[int64]ReplayFrame
}

// NewReplay starts an empty replay record rooted at the given seed and
// spoofed start time.
func NewReplay(seed uint32, startTimeNanos int64, startup []render.WindowEvent) *Replay {
	return &Replay{
		StartSeed:      seed,
		StartTimeNanos: startTimeNanos,
		StartupEvents:  append([]render.WindowEvent(nil), startup...),
		Frames:         make(map[int64]ReplayFrame),
	}
}

// Append records one frame's entry. An entry with nothing noteworthy
// (no inputs, no seed/time override, no runtime events) is omitted
// entirely, keeping the map sparse.
func (r *Replay) Append(frameIndex int64, entry ReplayFrame) {
	if len(entry.Inputs) == 0 && len(entry.RuntimeEvents) == 0 && entry.NewSeed == nil && entry.NewSpoofedTime == nil {
		return
	}
	r.Frames[frameIndex] = entry
}

// At returns the recorded entry for frameIndex, or the zero ReplayFrame
// and false if no entry was recorded for that frame.
func (r *Replay) At(frameIndex int64) (ReplayFrame, bool) {
	f, ok := r.Frames[frameIndex]
	return f, ok
}
