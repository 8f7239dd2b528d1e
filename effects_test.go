package vmcore

import "testing"

// TestCreateEffectLazilyInitializesFacade matches spec.md §4.7: the effect
// facade's systems/types are created on first CreateEffect call, and a
// spawned effect adds particles to the below/above system it selected.
func TestCreateEffectLazilyInitializesFacade(t *testing.T) {
	m := NewParticleManager()
	rng := NewRandom(1)

	m.CreateEffect(EffectExplosion, 10, 10, EffectSmall, 0xFF0000, false, rng)

	if m.effects == nil {
		t.Fatal("expected the effect facade to be initialized after the first CreateEffect call")
	}
	above := m.System(m.effects.systemAbove)
	if above == nil || len(above.Particles) == 0 {
		t.Fatal("expected the above-system to receive the spawned particles when below=false")
	}
}

// TestCreateEffectBelowUsesBelowSystem verifies the below flag routes the
// spawn to the below-depth system instead of the above one.
func TestCreateEffectBelowUsesBelowSystem(t *testing.T) {
	m := NewParticleManager()
	rng := NewRandom(1)

	m.CreateEffect(EffectExplosion, 10, 10, EffectSmall, 0xFF0000, true, rng)

	below := m.System(m.effects.systemBelow)
	if below == nil || len(below.Particles) == 0 {
		t.Fatal("expected the below-system to receive the spawned particles when below=true")
	}
	above := m.System(m.effects.systemAbove)
	if above != nil && len(above.Particles) != 0 {
		t.Fatal("expected the above-system to remain empty when below=true")
	}
}

// TestClearEffectsEmptiesBothSystemsWithoutDisturbingTypes matches
// effect_clear(): particles are removed but the facade's systems/types
// survive for reuse by a later CreateEffect call.
func TestClearEffectsEmptiesBothSystemsWithoutDisturbingTypes(t *testing.T) {
	m := NewParticleManager()
	rng := NewRandom(1)
	m.CreateEffect(EffectExplosion, 0, 0, EffectSmall, 0, false, rng)
	m.CreateEffect(EffectExplosion, 0, 0, EffectSmall, 0, true, rng)

	m.ClearEffects()

	if s := m.System(m.effects.systemAbove); len(s.Particles) != 0 {
		t.Fatalf("above-system has %d particles after ClearEffects, want 0", len(s.Particles))
	}
	if s := m.System(m.effects.systemBelow); len(s.Particles) != 0 {
		t.Fatalf("below-system has %d particles after ClearEffects, want 0", len(s.Particles))
	}

	typesBefore := m.effects.types
	m.CreateEffect(EffectExplosion, 0, 0, EffectSmall, 0, false, rng)
	if m.effects.types != typesBefore {
		t.Fatal("expected CreateEffect after ClearEffects to reuse the existing facade types, not rebuild them")
	}
}

// TestClearEffectsBeforeAnyCreateIsNoOp guards the lazy-init guard: calling
// ClearEffects before the facade exists must not panic.
func TestClearEffectsBeforeAnyCreateIsNoOp(t *testing.T) {
	m := NewParticleManager()
	m.ClearEffects() // must not panic
}
