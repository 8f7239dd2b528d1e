package vmcore

import "testing"

func TestRandomDeterministicSequence(t *testing.T) {
	r1 := NewRandom(1)
	r2 := NewRandom(1)

	var seq1, seq2 []float64
	for i := 0; i < 10; i++ {
		seq1 = append(seq1, r1.Next(100))
	}
	for i := 0; i < 10; i++ {
		seq2 = append(seq2, r2.Next(100))
	}

	for i := range seq1 {
		if seq1[i] != seq2[i] {
			t.Fatalf("sequence diverged at index %d: %v != %v", i, seq1[i], seq2[i])
		}
	}
}

func TestRandomSetSeedReplays(t *testing.T) {
	r := NewRandom(7)
	var first []float64
	for i := 0; i < 20; i++ {
		first = append(first, r.Next(50))
	}

	r.SetSeed(7)
	for i := 0; i < 20; i++ {
		if got := r.Next(50); got != first[i] {
			t.Fatalf("replay mismatch at %d: got %v want %v", i, got, first[i])
		}
	}
}

func TestRandomNextIntClampsToMax(t *testing.T) {
	r := NewRandom(42)
	for i := 0; i < 1000; i++ {
		v := r.NextInt(5)
		if v > 5 {
			t.Fatalf("NextInt(5) returned %d, out of range", v)
		}
	}
}

func TestRandomNextRangeWithinBounds(t *testing.T) {
	r := NewRandom(99)
	for i := 0; i < 1000; i++ {
		v := r.NextRange(-3, 3)
		if v < -3 || v >= 3 {
			t.Fatalf("NextRange(-3,3) returned %v, out of range", v)
		}
	}
}

func TestRandomDifferentSeedsDiverge(t *testing.T) {
	a := NewRandom(1)
	b := NewRandom(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Next(1000) != b.Next(1000) {
			same = false
		}
	}
	if same {
		t.Fatalf("expected sequences from different seeds to diverge")
	}
}
