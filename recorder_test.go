package vmcore

import (
	"testing"

	"github.com/northlake/vmcore/render"
)

// TestRecorderAppendsReplayEntryBeforeFrame matches spec.md §4.8: Tick
// folds the window events into input state and records them against the
// frame about to run (frameIndex+1) before advancing.
func TestRecorderAppendsReplayEntryBeforeFrame(t *testing.T) {
	a := minimalRoomAssets(320, 240)
	e := newTestEngine(t, a, newCountingInterpreter())

	rec := NewRecorder(e, RecorderConfig{RecordsPerSecond: 1000, Burst: 1000}, nil)
	events := []render.WindowEvent{{Type: render.EventKeyboardDown, Key: 1}}

	if err := rec.Tick(events, 10, 20); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	entry, ok := rec.Replay().At(1)
	if !ok {
		t.Fatal("expected a replay entry recorded for frame 1")
	}
	if entry.MouseX != 10 || entry.MouseY != 20 {
		t.Fatalf("recorded mouse = (%d, %d), want (10, 20)", entry.MouseX, entry.MouseY)
	}
	if len(entry.Inputs) != 1 || entry.Inputs[0].Key != 1 {
		t.Fatalf("recorded inputs = %v, want one keydown for key 1", entry.Inputs)
	}
}

// TestRecorderRateLimitDropsExcessEntries matches SPEC_FULL.md's
// recorder rate-limiting feature grounded on golang.org/x/time/rate:
// ticks beyond the configured burst do not grow the replay record.
func TestRecorderRateLimitDropsExcessEntries(t *testing.T) {
	a := minimalRoomAssets(320, 240)
	e := newTestEngine(t, a, newCountingInterpreter())

	rec := NewRecorder(e, RecorderConfig{RecordsPerSecond: 0, Burst: 1}, nil)
	events := []render.WindowEvent{{Type: render.EventKeyboardDown, Key: 1}}

	if err := rec.Tick(events, 0, 0); err != nil {
		t.Fatalf("Tick 1: %v", err)
	}
	if err := rec.Tick(events, 0, 0); err != nil {
		t.Fatalf("Tick 2: %v", err)
	}

	if _, ok := rec.Replay().At(1); !ok {
		t.Fatal("expected the first tick (within burst) to be recorded")
	}
	if _, ok := rec.Replay().At(2); ok {
		t.Fatal("expected the second tick to be dropped once the burst is exhausted")
	}
}

// TestReplayAppendOmitsEmptyEntries matches spec.md §4.8: a frame with no
// inputs, seed override, time override, or runtime events is never stored,
// keeping the map sparse so an unset frame index defaults correctly.
func TestReplayAppendOmitsEmptyEntries(t *testing.T) {
	r := NewReplay(1, 0, nil)
	r.Append(5, ReplayFrame{})
	if _, ok := r.At(5); ok {
		t.Fatal("expected an all-empty entry to be omitted")
	}
}

// TestReplayPlayerAppliesSeedOverride matches spec.md §4.8: a recorded
// NewSeed entry re-seeds the engine's RNG before that frame runs.
func TestReplayPlayerAppliesSeedOverride(t *testing.T) {
	a := minimalRoomAssets(320, 240)
	e := newTestEngine(t, a, newCountingInterpreter())

	newSeed := uint32(777)
	replay := NewReplay(e.rng.Seed(), 0, nil)
	replay.Append(1, ReplayFrame{NewSeed: &newSeed})

	player := NewReplayPlayer(e, replay)
	if err := player.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if e.rng.Seed() != 777 {
		t.Fatalf("engine seed after replay step = %d, want 777", e.rng.Seed())
	}
}

// TestReplayPlayerAppliesRecordedInputs matches spec.md §4.8: inputs
// recorded for a frame are fed into the engine's input state before that
// frame runs, so held-key state observed during the frame matches what
// was originally recorded.
func TestReplayPlayerAppliesRecordedInputs(t *testing.T) {
	a := minimalRoomAssets(320, 240)
	e := newTestEngine(t, a, newCountingInterpreter())

	replay := NewReplay(e.rng.Seed(), 0, nil)
	replay.Append(1, ReplayFrame{Inputs: []render.WindowEvent{{Type: render.EventKeyboardDown, Key: 5}}})

	player := NewReplayPlayer(e, replay)
	if err := player.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	held := false
	for _, k := range e.input.HeldKeys() {
		if k == 5 {
			held = true
		}
	}
	if !held {
		t.Fatal("expected key 5 to be held after replaying its recorded keydown")
	}
}
