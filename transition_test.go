package vmcore

import "testing"

// TestTransitionCompletesAfterConfiguredFrames matches spec.md §5: a
// transition lasting N frames finishes after exactly N Advance calls, and
// its alpha reaches full coverage.
func TestTransitionCompletesAfterConfiguredFrames(t *testing.T) {
	tr := NewTransition(4)
	for i := 0; i < 4; i++ {
		if tr.Done() {
			t.Fatalf("transition reported done after %d advances, want 4", i)
		}
		tr.Advance()
	}
	if !tr.Done() {
		t.Fatal("expected transition done after 4 advances")
	}
	if tr.Alpha() != 1 {
		t.Fatalf("alpha at completion = %v, want 1", tr.Alpha())
	}
}

// TestTransitionNonPositiveFramesCompletesImmediately matches spec.md §5's
// zero-duration edge case: a non-positive frame count finishes with full
// coverage before the first Advance.
func TestTransitionNonPositiveFramesCompletesImmediately(t *testing.T) {
	tr := NewTransition(0)
	if !tr.Done() {
		t.Fatal("expected a zero-frame transition to be immediately done")
	}
	if tr.Alpha() != 1 {
		t.Fatalf("alpha = %v, want 1", tr.Alpha())
	}
}

// TestTransitionAdvanceAfterDoneIsNoOp guards against the tween being
// driven past completion, which would desync the alpha from its resting
// value.
func TestTransitionAdvanceAfterDoneIsNoOp(t *testing.T) {
	tr := NewTransition(1)
	tr.Advance()
	if !tr.Done() {
		t.Fatal("expected single-frame transition to finish after one advance")
	}
	alphaAtDone := tr.Alpha()
	tr.Advance()
	if tr.Alpha() != alphaAtDone {
		t.Fatalf("alpha changed after transition was already done: %v -> %v", alphaAtDone, tr.Alpha())
	}
}
