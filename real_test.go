package vmcore

import "testing"

// TestRealRoundUsesBankersRounding matches spec.md §4.1: Round resolves
// exact .5 ties to the nearest even integer rather than always rounding up.
func TestRealRoundUsesBankersRounding(t *testing.T) {
	cases := []struct {
		in   Real
		want int32
	}{
		{0.5, 0},
		{1.5, 2},
		{2.5, 2},
		{-0.5, 0},
		{-1.5, -2},
	}
	for _, c := range cases {
		if got := c.in.Round(); got != c.want {
			t.Errorf("Round(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

// TestRealFloorTruncTowardNegativeInfinity and trunc-toward-zero must
// disagree on negative non-integers, per spec.md §4.1's distinct rounding
// modes for array indexing vs. sub-pixel sampling.
func TestRealFloorTruncTowardNegativeInfinity(t *testing.T) {
	r := Real(-1.5)
	if got := r.Floor(); got != -2 {
		t.Errorf("Floor(-1.5) = %d, want -2", got)
	}
	if got := r.Trunc(); got != -1 {
		t.Errorf("Trunc(-1.5) = %d, want -1", got)
	}
	if got := r.ToI32(); got != -1 {
		t.Errorf("ToI32(-1.5) = %d, want -1 (Trunc alias)", got)
	}
}

// TestArctan2QuadrantConvention matches spec.md §4.1's screen-space degrees
// convention (counterclockwise as seen with y pointing down) rather than
// math.Atan2's radians convention.
func TestArctan2QuadrantConvention(t *testing.T) {
	cases := []struct {
		y, x Real
		want Real
	}{
		{0, 1, 0},     // pointing right: 0 degrees
		{1, 0, 270},   // pointing down in screen space (y increases downward): 270 degrees
		{0, -1, 180},  // pointing left: 180 degrees
		{-1, 0, 90},   // pointing up in screen space: 90 degrees
	}
	for _, c := range cases {
		got := Arctan2(c.y, c.x)
		if diff := got - c.want; diff > 0.001 || diff < -0.001 {
			t.Errorf("Arctan2(%v, %v) = %v, want %v", c.y, c.x, got, c.want)
		}
	}
}

// TestClampRestrictsToRange and TestLerpInterpolatesLinearly cover the
// two small numeric helpers real.go exports alongside Real's methods.
func TestClampRestrictsToRange(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Errorf("Clamp(5, 0, 10) = %v, want 5", got)
	}
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Errorf("Clamp(-1, 0, 10) = %v, want 0", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15, 0, 10) = %v, want 10", got)
	}
}

func TestLerpInterpolatesLinearly(t *testing.T) {
	if got := Lerp(0, 10, 0.5); got != 5 {
		t.Errorf("Lerp(0, 10, 0.5) = %v, want 5", got)
	}
	if got := Lerp(0, 10, 0); got != 0 {
		t.Errorf("Lerp(0, 10, 0) = %v, want 0", got)
	}
	if got := Lerp(0, 10, 1); got != 10 {
		t.Errorf("Lerp(0, 10, 1) = %v, want 10", got)
	}
}
