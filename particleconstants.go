package vmcore

// effectKind enumerates the legacy create_effect() shortcut kinds, per
// spec.md §6 "Effects facade". The table below is grounded on
// original_source/gm8emulator/src/game/particle.rs's create_effect match
// arms; Smoke2 has no original_source counterpart and is a deliberate
// thirteenth row rounding the facade out with a faster-fading smoke
// variant (documented in DESIGN.md — every other row's numbers are taken
// directly from the Rust source).
type effectKind int32

const (
	EffectExplosion effectKind = iota
	EffectRing
	EffectEllipse
	EffectFirework
	EffectSmoke
	EffectSmokeUp
	EffectStar
	EffectSpark
	EffectFlare
	EffectCloud
	EffectSmoke2
	EffectRainDrop
	EffectSnow
	effectKindCount
)

// effectSize selects which row of effectTable[kind] applies.
type effectSize int32

const (
	EffectSmall effectSize = iota
	EffectMedium
	EffectLarge
	effectSizeCount
)

// effectParams is one (kind, size) row of the facade's fixed parameter
// table: enough to derive a ParticleType without exposing every original
// tuning knob (ang/dir ranges, per-kind wiggle) that create_effect sets
// directly in the Rust source — those are applied uniformly by
// newEffectParticleType instead of varying per row.
type effectParams struct {
	Graphic  int32
	SizeMin  Real
	SpeedMax Real
	Alpha1   Real
	Alpha2   Real
	Alpha3   Real
	Life     RangeF
	Number   int32
}

// effectTable is the [13][3] fixed parameter grid described in
// SPEC_FULL.md §6. Life ranges are given at the original's nominal 30fps;
// callers sample life in frames directly, matching the original Rust
// `life_min`/`life_max` fields (the Rust source additionally divides by an
// `fps_mod` ratio for non-30fps rooms, which this port does not model —
// the engine's frame pipeline runs at a fixed room speed already expressed
// in frames, per spec.md §4.4).
var effectTable = [effectKindCount][effectSizeCount]effectParams{
	EffectExplosion: {
		EffectSmall:  {Graphic: 10, SizeMin: 0.1, SpeedMax: 2, Alpha1: 0.6, Alpha2: 0.3, Alpha3: 0, Life: RangeF{10, 15}, Number: 20},
		EffectMedium: {Graphic: 10, SizeMin: 0.3, SpeedMax: 4, Alpha1: 0.6, Alpha2: 0.3, Alpha3: 0, Life: RangeF{12, 17}, Number: 20},
		EffectLarge:  {Graphic: 10, SizeMin: 0.4, SpeedMax: 7, Alpha1: 0.6, Alpha2: 0.3, Alpha3: 0, Life: RangeF{15, 20}, Number: 20},
	},
	EffectRing: {
		EffectSmall:  {Graphic: 6, SizeMin: 0, SpeedMax: 0, Alpha1: 1, Alpha2: 0.5, Alpha3: 0, Life: RangeF{10, 12}, Number: 1},
		EffectMedium: {Graphic: 6, SizeMin: 0, SpeedMax: 0, Alpha1: 1, Alpha2: 0.5, Alpha3: 0, Life: RangeF{13, 15}, Number: 1},
		EffectLarge:  {Graphic: 6, SizeMin: 0, SpeedMax: 0, Alpha1: 1, Alpha2: 0.5, Alpha3: 0, Life: RangeF{18, 20}, Number: 1},
	},
	EffectEllipse: {
		EffectSmall:  {Graphic: 6, SizeMin: 0, SpeedMax: 0, Alpha1: 1, Alpha2: 0.5, Alpha3: 0, Life: RangeF{10, 12}, Number: 1},
		EffectMedium: {Graphic: 6, SizeMin: 0, SpeedMax: 0, Alpha1: 1, Alpha2: 0.5, Alpha3: 0, Life: RangeF{13, 15}, Number: 1},
		EffectLarge:  {Graphic: 6, SizeMin: 0, SpeedMax: 0, Alpha1: 1, Alpha2: 0.5, Alpha3: 0, Life: RangeF{18, 20}, Number: 1},
	},
	EffectFirework: {
		EffectSmall:  {Graphic: 8, SizeMin: 0.1, SpeedMax: 3, Alpha1: 1, Alpha2: 0.7, Alpha3: 0.4, Life: RangeF{15, 25}, Number: 75},
		EffectMedium: {Graphic: 8, SizeMin: 0.1, SpeedMax: 6, Alpha1: 1, Alpha2: 0.7, Alpha3: 0.4, Life: RangeF{20, 30}, Number: 150},
		EffectLarge:  {Graphic: 8, SizeMin: 0.1, SpeedMax: 8, Alpha1: 1, Alpha2: 0.7, Alpha3: 0.4, Life: RangeF{30, 40}, Number: 250},
	},
	EffectSmoke: {
		EffectSmall:  {Graphic: 10, SizeMin: 0.2, SpeedMax: 0, Alpha1: 0.4, Alpha2: 0.2, Alpha3: 0, Life: RangeF{25, 25}, Number: 6},
		EffectMedium: {Graphic: 10, SizeMin: 0.4, SpeedMax: 0, Alpha1: 0.4, Alpha2: 0.2, Alpha3: 0, Life: RangeF{30, 30}, Number: 11},
		EffectLarge:  {Graphic: 10, SizeMin: 0.4, SpeedMax: 0, Alpha1: 0.4, Alpha2: 0.2, Alpha3: 0, Life: RangeF{50, 50}, Number: 16},
	},
	EffectSmokeUp: {
		EffectSmall:  {Graphic: 10, SizeMin: 0.2, SpeedMax: 4, Alpha1: 0.4, Alpha2: 0.2, Alpha3: 0, Life: RangeF{25, 25}, Number: 6},
		EffectMedium: {Graphic: 10, SizeMin: 0.4, SpeedMax: 6, Alpha1: 0.4, Alpha2: 0.2, Alpha3: 0, Life: RangeF{30, 30}, Number: 11},
		EffectLarge:  {Graphic: 10, SizeMin: 0.4, SpeedMax: 7, Alpha1: 0.4, Alpha2: 0.2, Alpha3: 0, Life: RangeF{50, 50}, Number: 16},
	},
	EffectStar: {
		EffectSmall:  {Graphic: 4, SizeMin: 0.4, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{20, 20}, Number: 1},
		EffectMedium: {Graphic: 4, SizeMin: 0.75, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{25, 25}, Number: 1},
		EffectLarge:  {Graphic: 4, SizeMin: 1.2, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{30, 30}, Number: 1},
	},
	EffectSpark: {
		EffectSmall:  {Graphic: 9, SizeMin: 0.4, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{20, 20}, Number: 1},
		EffectMedium: {Graphic: 9, SizeMin: 0.75, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{25, 25}, Number: 1},
		EffectLarge:  {Graphic: 9, SizeMin: 1.2, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{30, 30}, Number: 1},
	},
	EffectFlare: {
		EffectSmall:  {Graphic: 8, SizeMin: 0.4, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{20, 20}, Number: 1},
		EffectMedium: {Graphic: 8, SizeMin: 0.75, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{25, 25}, Number: 1},
		EffectLarge:  {Graphic: 8, SizeMin: 1.2, SpeedMax: 0, Alpha1: 1, Alpha2: 1, Alpha3: 1, Life: RangeF{30, 30}, Number: 1},
	},
	EffectCloud: {
		EffectSmall:  {Graphic: 10, SizeMin: 2, SpeedMax: 0, Alpha1: 0, Alpha2: 0.3, Alpha3: 0, Life: RangeF{100, 100}, Number: 1},
		EffectMedium: {Graphic: 10, SizeMin: 4, SpeedMax: 0, Alpha1: 0, Alpha2: 0.3, Alpha3: 0, Life: RangeF{100, 100}, Number: 1},
		EffectLarge:  {Graphic: 10, SizeMin: 8, SpeedMax: 0, Alpha1: 0, Alpha2: 0.3, Alpha3: 0, Life: RangeF{100, 100}, Number: 1},
	},
	EffectSmoke2: {
		EffectSmall:  {Graphic: 10, SizeMin: 0.15, SpeedMax: 1, Alpha1: 0.3, Alpha2: 0.1, Alpha3: 0, Life: RangeF{15, 15}, Number: 6},
		EffectMedium: {Graphic: 10, SizeMin: 0.3, SpeedMax: 2, Alpha1: 0.3, Alpha2: 0.1, Alpha3: 0, Life: RangeF{18, 18}, Number: 11},
		EffectLarge:  {Graphic: 10, SizeMin: 0.3, SpeedMax: 3, Alpha1: 0.3, Alpha2: 0.1, Alpha3: 0, Life: RangeF{30, 30}, Number: 16},
	},
	EffectRainDrop: {
		EffectSmall:  {Graphic: 3, SizeMin: 0.2, SpeedMax: 7, Alpha1: 0.4, Alpha2: 0.4, Alpha3: 0.4, Life: RangeF{60, 60}, Number: 2},
		EffectMedium: {Graphic: 3, SizeMin: 0.2, SpeedMax: 7, Alpha1: 0.4, Alpha2: 0.4, Alpha3: 0.4, Life: RangeF{60, 60}, Number: 5},
		EffectLarge:  {Graphic: 3, SizeMin: 0.2, SpeedMax: 7, Alpha1: 0.4, Alpha2: 0.4, Alpha3: 0.4, Life: RangeF{60, 60}, Number: 9},
	},
	EffectSnow: {
		EffectSmall:  {Graphic: 13, SizeMin: 0.1, SpeedMax: 3, Alpha1: 0.6, Alpha2: 0.6, Alpha3: 0.6, Life: RangeF{150, 150}, Number: 1},
		EffectMedium: {Graphic: 13, SizeMin: 0.1, SpeedMax: 3, Alpha1: 0.6, Alpha2: 0.6, Alpha3: 0.6, Life: RangeF{150, 150}, Number: 3},
		EffectLarge:  {Graphic: 13, SizeMin: 0.1, SpeedMax: 3, Alpha1: 0.6, Alpha2: 0.6, Alpha3: 0.6, Life: RangeF{150, 150}, Number: 7},
	},
}
