package vmcore

import "math"

// TypeID and SystemID index into a ParticleManager's dense type/system
// vectors, mirroring the asset ID types in assets.go.
type TypeID int32
type SystemID int32

// ShapeKind selects the region an emitter, destroyer, or changer samples
// or tests against, per spec.md §4.7 "Shape sampling".
type ShapeKind uint8

const (
	ShapeRectangle ShapeKind = iota
	ShapeEllipse
	ShapeDiamond
	ShapeLine
)

// DistributionKind selects how a point is drawn within a shape's extent.
type DistributionKind uint8

const (
	DistLinear DistributionKind = iota
	DistGaussian
	DistInverseGaussian
)

// ColorMode selects how a particle's tint is derived over its lifetime,
// per spec.md §4.7's "color" appearance field.
type ColorMode uint8

const (
	ColorFixed ColorMode = iota
	ColorTwoPointLerp
	ColorThreePointLerp
	ColorRGBRangeAtSpawn
	ColorHSVRangeAtSpawn
	ColorTwoPointRandomLerpAtSpawn
)

// GraphicKind selects whether a particle type draws a built-in shape index
// or a sprite asset.
type GraphicKind uint8

const (
	GraphicShape GraphicKind = iota
	GraphicSprite
)

// ParticleGraphic is a particle type's appearance source.
type ParticleGraphic struct {
	Kind    GraphicKind
	Shape   int32
	Sprite  SpriteID
	Animate bool
}

// ParticleType holds spawn distributions and appearance for one kind of
// particle, per spec.md §4.7 "Types".
type ParticleType struct {
	Graphic ParticleGraphic

	SizeRange   RangeF
	SizeIncr    Real
	SizeWiggle  Real
	XScale      Real
	YScale      Real

	LifeMin, LifeMax int32

	SpeedRange  RangeF
	SpeedIncr   Real
	SpeedWiggle Real

	DirRange  RangeF
	DirIncr   Real
	DirWiggle Real

	AngRange     RangeF
	AngIncr      Real
	AngWiggle    Real
	AngRelative  bool

	ColorMode   ColorMode
	Color1      uint32
	Color2      uint32
	Color3      uint32
	ColorLoLo   [3]Real // RGB/HSV range-at-spawn low channel bounds
	ColorLoHi   [3]Real

	Alpha1, Alpha2, Alpha3 Real

	GravAmount Real
	GravDir    Real

	Additive bool

	StepType   TypeID
	StepNumber int32
	DeathType   TypeID
	DeathNumber int32
}

// Particle is one live simulated particle. TypeID is copied per-particle
// (rather than referencing a pointer) so a Changer can reassign it without
// disturbing the owning ParticleType.
type Particle struct {
	Type TypeID

	X, Y      Real
	Speed     Real
	Direction Real
	Size      Real
	Angle     Real

	Color uint32
	Alpha Real

	Timer int32 // frames alive
	Life  int32 // sampled total lifetime

	randomStart int32 // per-particle wiggle phase offset
}

// halflifeElapsed reports whether the particle has crossed its midpoint,
// used by the three-point alpha/color interpolation.
func (p *Particle) halflifeElapsed() bool {
	return p.Timer*2 >= p.Life
}

func (p *Particle) lifeFrac() Real {
	if p.Life <= 0 {
		return 1
	}
	return Real(p.Timer) / Real(p.Life)
}

// Emitter streams new particles of a given type into a system each update.
type Emitter struct {
	Shape        ShapeKind
	Distribution DistributionKind
	Region       Rect
	Type         TypeID
	Number       int32 // negative: spawn one with probability 1/|n|
}

// Attractor pulls (or pushes, with negative Force) particles within Dist
// toward (X, Y), scaled by a linear falloff of 1 - distance/Dist. A
// non-positive Dist applies the full Force at any distance.
type Attractor struct {
	X, Y  Real
	Force Real
	Dist  Real // falloff distance
}

// Deflector reflects particle motion across a shape's boundary and bleeds
// off a Friction fraction of speed on bounce.
type Deflector struct {
	Region   Rect
	Vertical bool // true: reflect vspeed, false: reflect hspeed
	Friction Real
}

// Changer converts particles of TypeFrom into TypeTo when they enter
// Region, per spec.md §4.7 "changers".
type Changer struct {
	Region   Rect
	Shape    ShapeKind
	TypeFrom TypeID
	TypeTo   TypeID
	Motion     bool // apply TypeTo's motion params
	Appearance bool // apply TypeTo's appearance params
}

// Destroyer removes particles that enter Region.
type Destroyer struct {
	Region Rect
	Shape  ShapeKind
}

// ParticleSystem owns one dense particle vector plus sparse auxiliary
// vectors, per spec.md §4.7 "Systems". Order within Particles matters for
// drawing and must never be reordered by the update step (a swap-remove
// would silently reorder the draw list).
type ParticleSystem struct {
	Particles  []Particle
	Emitters   []*Emitter
	Attractors []*Attractor
	Deflectors []*Deflector
	Changers   []*Changer
	Destroyers []*Destroyer
	Depth      Real

	// AutoUpdate gates whether the frame pipeline's automatic particle
	// step (spec.md §4.4 step 14) advances this system; systems a script
	// steps manually via an explicit update call leave this false.
	AutoUpdate bool
}

// ParticleManager owns every ParticleType and ParticleSystem in the game,
// plus the lazily-created effect facade.
type ParticleManager struct {
	Types   store[ParticleType]
	Systems store[ParticleSystem]

	effects *effectManagerState
}

// NewParticleManager allocates empty dense type/system vectors.
func NewParticleManager() *ParticleManager {
	return &ParticleManager{
		Types:   newStore[ParticleType](0),
		Systems: newStore[ParticleSystem](0),
	}
}

// CreateType appends a new zero-valued ParticleType and returns its ID.
func (m *ParticleManager) CreateType() TypeID {
	id := TypeID(m.Types.Len())
	m.Types.Set(int32(id), &ParticleType{})
	return id
}

// CreateSystem appends a new empty ParticleSystem and returns its ID.
func (m *ParticleManager) CreateSystem() SystemID {
	id := SystemID(m.Systems.Len())
	m.Systems.Set(int32(id), &ParticleSystem{AutoUpdate: true})
	return id
}

// Type returns the ParticleType for id, or nil if absent.
func (m *ParticleManager) Type(id TypeID) *ParticleType {
	t, _ := m.Types.Get(int32(id))
	return t
}

// System returns the ParticleSystem for id, or nil if absent.
func (m *ParticleManager) System(id SystemID) *ParticleSystem {
	s, _ := m.Systems.Get(int32(id))
	return s
}

// SpawnParticles creates number new particles of typ at (x, y) in sys,
// sampling every distribution from rng. A negative number spawns exactly
// one particle with probability 1/|number|, per spec.md §4.7.
func (m *ParticleManager) SpawnParticles(sysID SystemID, x, y Real, typ TypeID, color *uint32, number int32, rng *Random) {
	sys := m.System(sysID)
	pt := m.Type(typ)
	if sys == nil || pt == nil {
		return
	}
	if number < 0 {
		if rng.NextInt(uint32(-number)-1) != 0 {
			return
		}
		number = 1
	}
	for i := int32(0); i < number; i++ {
		sys.Particles = append(sys.Particles, newParticle(pt, typ, x, y, color, rng))
	}
}

func newParticle(pt *ParticleType, typ TypeID, x, y Real, color *uint32, rng *Random) Particle {
	life := pt.LifeMax
	if pt.LifeMax > pt.LifeMin {
		life = pt.LifeMin + int32(rng.NextRange(0, float64(pt.LifeMax-pt.LifeMin)))
	} else {
		life = pt.LifeMin
	}
	p := Particle{
		Type:        typ,
		X:           x,
		Y:           y,
		Size:        pt.SizeRange.Sample(rng),
		Speed:       pt.SpeedRange.Sample(rng),
		Direction:   pt.DirRange.Sample(rng),
		Angle:       pt.AngRange.Sample(rng),
		Life:        life,
		randomStart: int32(rng.NextInt(1000)),
	}
	if color != nil {
		p.Color = *color
	} else {
		p.Color = spawnColor(pt, rng)
	}
	p.Alpha = pt.Alpha1
	return p
}

func spawnColor(pt *ParticleType, rng *Random) uint32 {
	switch pt.ColorMode {
	case ColorRGBRangeAtSpawn:
		r := uint32(Clamp(Real(rng.NextRange(pt.ColorLoLo[0].Float64(), pt.ColorLoHi[0].Float64())), 0, 255))
		g := uint32(Clamp(Real(rng.NextRange(pt.ColorLoLo[1].Float64(), pt.ColorLoHi[1].Float64())), 0, 255))
		b := uint32(Clamp(Real(rng.NextRange(pt.ColorLoLo[2].Float64(), pt.ColorLoHi[2].Float64())), 0, 255))
		return r<<16 | g<<8 | b
	case ColorHSVRangeAtSpawn:
		h := rng.NextRange(pt.ColorLoLo[0].Float64(), pt.ColorLoHi[0].Float64())
		s := rng.NextRange(pt.ColorLoLo[1].Float64(), pt.ColorLoHi[1].Float64())
		v := rng.NextRange(pt.ColorLoLo[2].Float64(), pt.ColorLoHi[2].Float64())
		return hsvToRGB(h, s, v)
	case ColorTwoPointRandomLerpAtSpawn:
		t := rng.Next(1)
		return lerpColor(pt.Color1, pt.Color2, Real(t))
	default:
		return pt.Color1
	}
}

func hsvToRGB(h, s, v float64) uint32 {
	c := v * s
	hp := h / 60
	x := c * (1 - abs64(modF(hp, 2)-1))
	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	m := v - c
	R := uint32(Clamp(Real((r+m)*255), 0, 255))
	G := uint32(Clamp(Real((g+m)*255), 0, 255))
	B := uint32(Clamp(Real((b+m)*255), 0, 255))
	return R<<16 | G<<8 | B
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func modF(v, m float64) float64 {
	for v >= m {
		v -= m
	}
	for v < 0 {
		v += m
	}
	return v
}

func lerpColor(a, b uint32, t Real) uint32 {
	ar, ag, ab := channels(a)
	br, bg, bb := channels(b)
	r := Lerp(Real(ar), Real(br), t).Round()
	g := Lerp(Real(ag), Real(bg), t).Round()
	bl := Lerp(Real(ab), Real(bb), t).Round()
	return uint32(r)<<16 | uint32(g)<<8 | uint32(bl)
}

func channels(c uint32) (r, g, b uint32) {
	return (c >> 16) & 0xFF, (c >> 8) & 0xFF, c & 0xFF
}

// UpdateAuto advances every system with AutoUpdate set, per spec.md §4.4
// step 14. Systems without AutoUpdate are left untouched; a script-driven
// caller steps them explicitly via UpdateSystem.
func (m *ParticleManager) UpdateAuto(rng *Random) {
	for i := 0; i < m.Systems.Len(); i++ {
		sys, ok := m.Systems.Get(int32(i))
		if !ok || !sys.AutoUpdate {
			continue
		}
		m.UpdateSystem(SystemID(i), rng)
	}
}

// UpdateSystem advances one system by one frame in the documented order:
// lifetime, physics, graphics, deflectors, changers, destroyers, emitters.
// See spec.md §4.7 "Per-system update".
func (m *ParticleManager) UpdateSystem(sysID SystemID, rng *Random) {
	sys := m.System(sysID)
	if sys == nil {
		return
	}
	m.tickLifetime(sysID, sys, rng)
	m.tickPhysics(sys)
	m.tickGraphics(sys)
	m.applyDeflectors(sys)
	m.applyChangers(sys)
	m.applyDestroyers(sys)
	m.applyEmitters(sysID, sys, rng)
}

// cascadeSpawn is a deferred step/death emission, queued during the
// lifetime pass rather than spawned immediately: tickLifetime compacts
// sys.Particles in place (alive := sys.Particles[:0]), so appending new
// particles to the same slice mid-loop would silently overwrite
// not-yet-visited entries sharing its backing array.
type cascadeSpawn struct {
	x, y Real
	typ  TypeID
	n    int32
}

func (m *ParticleManager) tickLifetime(sysID SystemID, sys *ParticleSystem, rng *Random) {
	var cascades []cascadeSpawn
	alive := sys.Particles[:0]
	for i := range sys.Particles {
		p := sys.Particles[i]
		p.Timer++
		pt := m.Type(p.Type)
		if pt != nil && pt.StepNumber != 0 {
			cascades = append(cascades, cascadeSpawn{p.X, p.Y, pt.StepType, pt.StepNumber})
		}
		if p.Timer >= p.Life {
			if pt != nil && pt.DeathNumber != 0 {
				cascades = append(cascades, cascadeSpawn{p.X, p.Y, pt.DeathType, pt.DeathNumber})
			}
			continue // drop: not carried into `alive`
		}
		alive = append(alive, p)
	}
	sys.Particles = alive
	for _, c := range cascades {
		m.SpawnParticles(sysID, c.x, c.y, c.typ, nil, c.n, rng)
	}
}

func (m *ParticleManager) tickPhysics(sys *ParticleSystem) {
	for i := range sys.Particles {
		p := &sys.Particles[i]
		pt := m.Type(p.Type)
		if pt == nil {
			continue
		}
		p.Speed = max(p.Speed+pt.SpeedIncr, 0)
		p.Direction += pt.DirIncr
		p.Angle += pt.AngIncr

		if pt.GravAmount != 0 || len(sys.Attractors) > 0 {
			vx := p.Speed * DegToRad(p.Direction).Cos()
			vy := -p.Speed * DegToRad(p.Direction).Sin()
			vx += pt.GravAmount * DegToRad(pt.GravDir).Cos()
			vy -= pt.GravAmount * DegToRad(pt.GravDir).Sin()
			for _, at := range sys.Attractors {
				if at == nil {
					continue
				}
				dx := at.X - p.X
				dy := at.Y - p.Y
				dist := (dx*dx + dy*dy).Sqrt()
				if dist <= 0 || (at.Dist > 0 && dist > at.Dist) {
					continue
				}
				falloff := Real(1)
				if at.Dist > 0 {
					falloff = 1 - dist/at.Dist
				}
				vx += at.Force * (dx / dist) * falloff
				vy += at.Force * (dy / dist) * falloff
			}
			p.Speed = (vx*vx + vy*vy).Sqrt()
			p.Direction = Arctan2(-vy, vx)
		}

		if pt.SpeedWiggle != 0 {
			p.Speed += wiggle(p, pt.SpeedWiggle)
		}
		if pt.DirWiggle != 0 {
			p.Direction += wiggle(p, pt.DirWiggle)
		}
		if pt.AngWiggle != 0 {
			p.Angle += wiggle(p, pt.AngWiggle)
		}
		if pt.AngRelative {
			p.Angle = p.Direction
		}

		angle := DegToRad(p.Direction)
		p.X += p.Speed * angle.Cos()
		p.Y -= p.Speed * angle.Sin()
	}
}

// wiggle computes the per-tick oscillation term (timer + randomStart) mod W,
// matching spec.md §4.7's wiggle description.
func wiggle(p *Particle, w Real) Real {
	if w <= 0 {
		return 0
	}
	period := w.Trunc()
	if period <= 0 {
		return 0
	}
	phase := (p.Timer + p.randomStart) % period
	return (Real(phase)/w - 0.5) * w * 0.1
}

func (m *ParticleManager) tickGraphics(sys *ParticleSystem) {
	for i := range sys.Particles {
		p := &sys.Particles[i]
		pt := m.Type(p.Type)
		if pt == nil {
			continue
		}
		p.Size = max(p.Size+pt.SizeIncr, 0)
		if pt.SizeWiggle != 0 {
			p.Size = max(p.Size+wiggle(p, pt.SizeWiggle), 0)
		}

		switch pt.ColorMode {
		case ColorTwoPointLerp:
			p.Color = lerpColor(pt.Color1, pt.Color2, p.lifeFrac())
		case ColorThreePointLerp:
			if p.halflifeElapsed() {
				t := Real(0)
				if p.Life > 0 {
					t = Real(2*p.Timer-p.Life) / Real(p.Life)
				}
				p.Color = lerpColor(pt.Color2, pt.Color3, t)
			} else {
				t := Real(0)
				if p.Life > 0 {
					t = Real(2*p.Timer) / Real(p.Life)
				}
				p.Color = lerpColor(pt.Color1, pt.Color2, t)
			}
		}

		if p.halflifeElapsed() {
			half := Real(0)
			if p.Life > 0 {
				half = Real(2*p.Timer-p.Life) / Real(p.Life)
			}
			p.Alpha = Lerp(pt.Alpha2, pt.Alpha3, half)
		} else {
			half := Real(0)
			if p.Life > 0 {
				half = Real(2*p.Timer) / Real(p.Life)
			}
			p.Alpha = Lerp(pt.Alpha1, pt.Alpha2, half)
		}
	}
}

func (m *ParticleManager) applyDeflectors(sys *ParticleSystem) {
	if len(sys.Deflectors) == 0 {
		return
	}
	for i := range sys.Particles {
		p := &sys.Particles[i]
		for _, d := range sys.Deflectors {
			if d == nil || !d.Region.Contains(p.X, p.Y) {
				continue
			}
			angle := DegToRad(p.Direction)
			vx := p.Speed * angle.Cos()
			vy := -p.Speed * angle.Sin()
			if d.Vertical {
				vy = -vy
			} else {
				vx = -vx
			}
			p.Speed = max((vx*vx+vy*vy).Sqrt()*(1-d.Friction), 0)
			p.Direction = Arctan2(-vy, vx)
		}
	}
}

func (m *ParticleManager) applyChangers(sys *ParticleSystem) {
	if len(sys.Changers) == 0 {
		return
	}
	for i := range sys.Particles {
		p := &sys.Particles[i]
		// First-matching changer in insertion order wins, per
		// spec.md §9's open-question resolution.
		for _, c := range sys.Changers {
			if c == nil || c.TypeFrom != p.Type || !shapeContains(c.Shape, c.Region, p.X, p.Y) {
				continue
			}
			if c.Motion {
				if to := m.Type(c.TypeTo); to != nil {
					p.Speed = to.SpeedRange.Min
					p.Direction = to.DirRange.Min
				}
			}
			if c.Appearance {
				if to := m.Type(c.TypeTo); to != nil {
					p.Size = to.SizeRange.Min
					p.Color = to.Color1
				}
			}
			p.Type = c.TypeTo
			break
		}
	}
}

func (m *ParticleManager) applyDestroyers(sys *ParticleSystem) {
	if len(sys.Destroyers) == 0 {
		return
	}
	alive := sys.Particles[:0]
	for i := range sys.Particles {
		p := sys.Particles[i]
		destroyed := false
		for _, d := range sys.Destroyers {
			if d != nil && shapeContains(d.Shape, d.Region, p.X, p.Y) {
				destroyed = true
				break
			}
		}
		if !destroyed {
			alive = append(alive, p)
		}
	}
	sys.Particles = alive
}

func (m *ParticleManager) applyEmitters(sysID SystemID, sys *ParticleSystem, rng *Random) {
	for _, e := range sys.Emitters {
		if e == nil {
			continue
		}
		x, y := sampleShape(e.Shape, e.Distribution, e.Region, rng)
		m.SpawnParticles(sysID, x, y, e.Type, nil, e.Number, rng)
	}
}

func shapeContains(shape ShapeKind, r Rect, x, y Real) bool {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	rx := r.Width / 2
	ry := r.Height / 2
	switch shape {
	case ShapeRectangle:
		return r.Contains(x, y)
	case ShapeEllipse:
		if rx == 0 || ry == 0 {
			return x == cx && y == cy
		}
		nx := (x - cx) / rx
		ny := (y - cy) / ry
		return (nx*nx + ny*ny).Sqrt() <= 1
	case ShapeDiamond:
		if rx == 0 || ry == 0 {
			return x == cx && y == cy
		}
		return (x-cx).Abs()/rx+(y-cy).Abs()/ry <= 1
	case ShapeLine:
		return r.Contains(x, y)
	default:
		return false
	}
}

// sampleShape draws one point from shape's extent using distribution dist,
// per spec.md §4.7 "Shape sampling".
func sampleShape(shape ShapeKind, dist DistributionKind, r Rect, rng *Random) (Real, Real) {
	switch shape {
	case ShapeLine:
		t := sampleUnit(dist, rng)
		return Lerp(r.X, r.X+r.Width, t), Lerp(r.Y, r.Y+r.Height, t)
	case ShapeEllipse:
		cx := r.X + r.Width/2
		cy := r.Y + r.Height/2
		rad := sampleUnit(dist, rng)
		theta := Real(rng.Next(360))
		return cx + rad*(r.Width/2)*DegToRad(theta).Cos(), cy + rad*(r.Height/2)*DegToRad(theta).Sin()
	case ShapeDiamond:
		cx := r.X + r.Width/2
		cy := r.Y + r.Height/2
		u := sampleUnit(dist, rng)*2 - 1
		v := sampleUnit(dist, rng)*2 - 1
		return cx + u*(r.Width/2), cy + v*(r.Height/2)
	default: // ShapeRectangle
		return r.X + sampleUnit(dist, rng)*r.Width, r.Y + sampleUnit(dist, rng)*r.Height
	}
}

// sampleUnit draws a value in [0, 1] under the given distribution.
func sampleUnit(dist DistributionKind, rng *Random) Real {
	switch dist {
	case DistGaussian:
		return gaussianUnit(rng, false)
	case DistInverseGaussian:
		return gaussianUnit(rng, true)
	default:
		return Real(rng.Next(1))
	}
}

// gaussianUnit rejection-samples x in [-3, 3] against exp(-x^2/2) and maps
// to [0, 1]; invert folds the left half onto the right, per spec.md §4.7.
func gaussianUnit(rng *Random, invert bool) Real {
	for {
		x := rng.NextRange(-3, 3)
		y := rng.Next(1)
		if y <= gaussianDensity(x) {
			v := Real((x + 3) / 6)
			if invert && v < 0.5 {
				v = 1 - v
			}
			return v
		}
	}
}

func gaussianDensity(x float64) float64 {
	return math.Exp(-x * x / 2)
}
