package vmcore

import "testing"

// TestParticleEmitterProducesDeterministicCount covers spec.md §8 scenario
// 4: one rectangle emitter, 10x10 at the origin, linear distribution,
// number=5, updated once with seed=42 produces exactly 5 particles with
// positions deterministic given the seed.
func TestParticleEmitterProducesDeterministicCount(t *testing.T) {
	run := func() []Particle {
		m := NewParticleManager()
		typ := m.CreateType()
		pt := m.Type(typ)
		pt.LifeMin, pt.LifeMax = 100, 100
		pt.SizeRange = RangeF{Min: 1, Max: 1}

		sys := m.CreateSystem()
		s := m.System(sys)
		s.Emitters = append(s.Emitters, &Emitter{
			Shape:        ShapeRectangle,
			Distribution: DistLinear,
			Region:       Rect{X: 0, Y: 0, Width: 10, Height: 10},
			Type:         typ,
			Number:       5,
		})

		rng := NewRandom(42)
		m.UpdateSystem(sys, rng)
		return append([]Particle{}, s.Particles...)
	}

	first := run()
	if len(first) != 5 {
		t.Fatalf("expected 5 particles, got %d", len(first))
	}
	for _, p := range first {
		if p.X < 0 || p.X > 10 || p.Y < 0 || p.Y > 10 {
			t.Fatalf("expected particle within emitter rectangle, got (%v, %v)", p.X, p.Y)
		}
	}

	second := run()
	if len(second) != len(first) {
		t.Fatalf("expected same count across runs with the same seed, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].X != second[i].X || first[i].Y != second[i].Y {
			t.Fatalf("expected identical positions at seed 42, index %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestParticleLifetimeExpiry(t *testing.T) {
	m := NewParticleManager()
	typ := m.CreateType()
	pt := m.Type(typ)
	pt.LifeMin, pt.LifeMax = 2, 2

	sys := m.CreateSystem()
	rng := NewRandom(1)
	m.SpawnParticles(sys, 0, 0, typ, nil, 1, rng)
	s := m.System(sys)
	if len(s.Particles) != 1 {
		t.Fatalf("expected 1 particle after spawn, got %d", len(s.Particles))
	}

	m.UpdateSystem(sys, rng)
	if len(s.Particles) != 1 {
		t.Fatalf("expected particle to survive one tick of a 2-frame life, got %d", len(s.Particles))
	}
	m.UpdateSystem(sys, rng)
	if len(s.Particles) != 0 {
		t.Fatalf("expected particle to expire at timer==life, got %d remaining", len(s.Particles))
	}
}

func TestParticleDeflectorReflects(t *testing.T) {
	m := NewParticleManager()
	typ := m.CreateType()
	pt := m.Type(typ)
	pt.LifeMin, pt.LifeMax = 1000, 1000
	pt.SpeedRange = RangeF{Min: 5, Max: 5}
	pt.DirRange = RangeF{Min: 0, Max: 0} // moving in +x

	sys := m.CreateSystem()
	s := m.System(sys)
	s.Deflectors = append(s.Deflectors, &Deflector{
		Region:   Rect{X: -1, Y: -1, Width: 10, Height: 2},
		Vertical: false,
		Friction: 0,
	})

	rng := NewRandom(7)
	m.SpawnParticles(sys, 0, 0, typ, nil, 1, rng)
	before := s.Particles[0].Direction
	m.UpdateSystem(sys, rng)
	after := s.Particles[0].Direction
	if before == after {
		t.Fatal("expected deflector to change direction of a particle inside its region")
	}
}

func TestCreateEffectSpawnsAndClears(t *testing.T) {
	m := NewParticleManager()
	rng := NewRandom(5)
	m.CreateEffect(EffectRing, 100, 100, EffectSmall, 0xFF0000, false, rng)

	s := m.System(m.effects.systemAbove)
	if len(s.Particles) != int(effectTable[EffectRing][EffectSmall].Number) {
		t.Fatalf("expected %d particles, got %d", effectTable[EffectRing][EffectSmall].Number, len(s.Particles))
	}

	m.ClearEffects()
	if len(s.Particles) != 0 {
		t.Fatalf("expected ClearEffects to empty the system, got %d remaining", len(s.Particles))
	}
}
