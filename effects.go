package vmcore

// effectManagerState is the lazily-created pair of systems (and one
// pre-parameterized type per (kind, size) row) backing the legacy
// create_effect() facade, grounded on
// original_source/gm8emulator/src/game/particle.rs's EffectManager: one
// system drawn below the room's normal depth range, one above, plus a
// dense [13][3] array of particle types reused across calls instead of
// allocating a fresh type per effect.
type effectManagerState struct {
	systemBelow SystemID
	systemAbove SystemID
	types       [effectKindCount][effectSizeCount]TypeID
}

// CreateEffect lazily initializes the effect facade on first use, then
// spawns one effect instance at (x, y), per spec.md §4.7 "Effects
// facade". col is an RGB tint (0xRRGGBB); below selects whether the
// effect draws under or over the room's normal instances.
func (m *ParticleManager) CreateEffect(kind effectKind, x, y Real, size effectSize, col uint32, below bool, rng *Random) {
	if m.effects == nil {
		m.initEffects()
	}
	sysID := m.effects.systemAbove
	if below {
		sysID = m.effects.systemBelow
	}
	typ := m.effects.types[kind][size]
	params := effectTable[kind][size]
	m.SpawnParticles(sysID, x, y, typ, &col, params.Number, rng)
}

// ClearEffects removes every live effect particle without disturbing the
// facade's systems or types, matching effect_clear() in particle.rs.
func (m *ParticleManager) ClearEffects() {
	if m.effects == nil {
		return
	}
	if s := m.System(m.effects.systemBelow); s != nil {
		s.Particles = s.Particles[:0]
	}
	if s := m.System(m.effects.systemAbove); s != nil {
		s.Particles = s.Particles[:0]
	}
}

func (m *ParticleManager) initEffects() {
	state := &effectManagerState{
		systemBelow: m.CreateSystem(),
		systemAbove: m.CreateSystem(),
	}
	if s := m.System(state.systemBelow); s != nil {
		s.Depth = 100000
	}
	if s := m.System(state.systemAbove); s != nil {
		s.Depth = -100000
	}
	for k := effectKind(0); k < effectKindCount; k++ {
		for s := effectSize(0); s < effectSizeCount; s++ {
			state.types[k][s] = m.newEffectParticleType(effectTable[k][s])
		}
	}
	m.effects = state
}

// newEffectParticleType builds a ParticleType from one effectParams row.
// Angle/direction spread (0-360, no drift) is applied uniformly across
// every facade type rather than varying per row, since create_effect()
// in the original sets the same ang_min/max/dir_min/max defaults for
// nearly every kind.
func (m *ParticleManager) newEffectParticleType(p effectParams) TypeID {
	id := m.CreateType()
	pt := m.Type(id)
	pt.Graphic = ParticleGraphic{Kind: GraphicShape, Shape: p.Graphic}
	pt.SizeRange = RangeF{Min: p.SizeMin, Max: p.SizeMin}
	pt.SpeedRange = RangeF{Min: p.SpeedMax, Max: p.SpeedMax}
	pt.DirRange = RangeF{Min: 0, Max: 360}
	pt.AngRange = RangeF{Min: 0, Max: 360}
	pt.LifeMin = p.Life.Min.Floor()
	pt.LifeMax = p.Life.Max.Floor()
	pt.Alpha1 = p.Alpha1
	pt.Alpha2 = p.Alpha2
	pt.Alpha3 = p.Alpha3
	pt.ColorMode = ColorFixed
	return id
}
