package vmcore

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/northlake/vmcore/render"
	"github.com/northlake/vmcore/scripting"
)

func init() {
	gob.Register(InstanceSnapshot{})
	gob.Register(TileSnapshot{})
}

// ValueSnapshot mirrors scripting.Value for serialization. The Ref field of
// a live Value is an opaque handle into the external interpreter's own
// heap (spec.md §1's scripting contract) and cannot be round-tripped by
// this package; a KindRef value snapshots as its zero value and is a known
// limitation of snapshotting state that crosses the scripting boundary.
type ValueSnapshot struct {
	Kind scripting.ValueKind
	Num  float64
	Str  string
}

func snapshotValue(v scripting.Value) ValueSnapshot {
	if v.Kind == scripting.KindRef {
		return ValueSnapshot{Kind: scripting.KindReal}
	}
	return ValueSnapshot{Kind: v.Kind, Num: v.Num, Str: v.Str}
}

func (s ValueSnapshot) restore() scripting.Value {
	return scripting.Value{Kind: s.Kind, Num: s.Num, Str: s.Str}
}

// FieldSnapshot mirrors Field's scalar slot plus packed array slots.
type FieldSnapshot struct {
	Scalar ValueSnapshot
	Array  map[int64]ValueSnapshot
}

func snapshotFields(fields map[string]*Field) map[string]FieldSnapshot {
	if fields == nil {
		return nil
	}
	out := make(map[string]FieldSnapshot, len(fields))
	for name, f := range fields {
		fs := FieldSnapshot{Scalar: snapshotValue(f.Scalar)}
		if len(f.array) > 0 {
			fs.Array = make(map[int64]ValueSnapshot, len(f.array))
			for k, v := range f.array {
				fs.Array[k] = snapshotValue(v)
			}
		}
		out[name] = fs
	}
	return out
}

func restoreFields(snaps map[string]FieldSnapshot) map[string]*Field {
	if snaps == nil {
		return nil
	}
	out := make(map[string]*Field, len(snaps))
	for name, fs := range snaps {
		f := &Field{Scalar: fs.Scalar.restore()}
		if len(fs.Array) > 0 {
			f.array = make(map[int64]scripting.Value, len(fs.Array))
			for k, v := range fs.Array {
				f.array[k] = v.restore()
			}
		}
		out[name] = f
	}
	return out
}

// InstanceSnapshot is the fully-exported mirror of Instance used for
// gob encoding — Instance itself carries unexported identity fields
// (id, handle, seq, bbox cache) that a generic encoder would silently drop.
type InstanceSnapshot struct {
	ID     InstanceID
	Object ObjectID

	X, Y                 Real
	XPrevious, YPrevious Real
	Speed, Direction     Real
	HSpeed, VSpeed       Real
	Gravity, GravityDir  Real
	Friction             Real

	SpriteIndex SpriteID
	MaskIndex   SpriteID
	ImageIndex  Real
	ImageSpeed  Real
	ImageXScale Real
	ImageYScale Real
	ImageAngle  Real
	ImageBlend  uint32
	ImageAlpha  Real

	Solid      bool
	Visible    bool
	Persistent bool
	Activity   ActivityState

	TimelineIndex    TimelineID
	TimelinePosition Real
	TimelineSpeed    Real
	TimelineLoop     bool
	TimelineRunning  bool

	PathIndex        PathID
	PathPosition     Real
	PathPositionPrev Real
	PathSpeed        Real
	PathOrientation  Real
	PathScale        Real
	PathEndAction    PathEndAction

	Alarms [12]int32
	Depth  int32
	Fields map[string]FieldSnapshot
	Seq    int64
}

func snapshotInstance(inst *Instance) InstanceSnapshot {
	return InstanceSnapshot{
		ID: inst.id, Object: inst.Object,
		X: inst.X, Y: inst.Y, XPrevious: inst.XPrevious, YPrevious: inst.YPrevious,
		Speed: inst.Speed, Direction: inst.Direction, HSpeed: inst.HSpeed, VSpeed: inst.VSpeed,
		Gravity: inst.Gravity, GravityDir: inst.GravityDir, Friction: inst.Friction,
		SpriteIndex: inst.SpriteIndex, MaskIndex: inst.MaskIndex, ImageIndex: inst.ImageIndex, ImageSpeed: inst.ImageSpeed,
		ImageXScale: inst.ImageXScale, ImageYScale: inst.ImageYScale, ImageAngle: inst.ImageAngle,
		ImageBlend: inst.ImageBlend, ImageAlpha: inst.ImageAlpha,
		Solid: inst.Solid, Visible: inst.Visible, Persistent: inst.Persistent, Activity: inst.Activity,
		TimelineIndex: inst.TimelineIndex, TimelinePosition: inst.TimelinePosition,
		TimelineSpeed: inst.TimelineSpeed, TimelineLoop: inst.TimelineLoop, TimelineRunning: inst.TimelineRunning,
		PathIndex: inst.PathIndex, PathPosition: inst.PathPosition, PathPositionPrev: inst.PathPositionPrev,
		PathSpeed: inst.PathSpeed, PathOrientation: inst.PathOrientation, PathScale: inst.PathScale,
		PathEndAction: inst.PathEndAction,
		Alarms:        inst.Alarms, Depth: inst.Depth,
		Fields: snapshotFields(inst.Fields), Seq: inst.seq,
	}
}

func (s InstanceSnapshot) restore() *Instance {
	return &Instance{
		id: s.ID, Object: s.Object,
		X: s.X, Y: s.Y, XPrevious: s.XPrevious, YPrevious: s.YPrevious,
		Speed: s.Speed, Direction: s.Direction, HSpeed: s.HSpeed, VSpeed: s.VSpeed,
		Gravity: s.Gravity, GravityDir: s.GravityDir, Friction: s.Friction,
		SpriteIndex: s.SpriteIndex, MaskIndex: s.MaskIndex, ImageIndex: s.ImageIndex, ImageSpeed: s.ImageSpeed,
		ImageXScale: s.ImageXScale, ImageYScale: s.ImageYScale, ImageAngle: s.ImageAngle,
		ImageBlend: s.ImageBlend, ImageAlpha: s.ImageAlpha,
		Solid: s.Solid, Visible: s.Visible, Persistent: s.Persistent, Activity: s.Activity,
		TimelineIndex: s.TimelineIndex, TimelinePosition: s.TimelinePosition,
		TimelineSpeed: s.TimelineSpeed, TimelineLoop: s.TimelineLoop, TimelineRunning: s.TimelineRunning,
		PathIndex: s.PathIndex, PathPosition: s.PathPosition, PathPositionPrev: s.PathPositionPrev,
		PathSpeed: s.PathSpeed, PathOrientation: s.PathOrientation, PathScale: s.PathScale,
		PathEndAction: s.PathEndAction,
		Alarms:        s.Alarms, Depth: s.Depth,
		Fields: restoreFields(s.Fields), seq: s.Seq,
	}
}

// TileSnapshot is the fully-exported mirror of Tile.
type TileSnapshot struct {
	ID             TileID
	X, Y           Real
	Background     BackgroundID
	SrcX, SrcY     int32
	SrcW, SrcH     int32
	ScaleX, ScaleY Real
	Blend          uint32
	Alpha          Real
	Visible        bool
	Depth          int32
	Seq            int64
}

func snapshotTile(t *Tile) TileSnapshot {
	return TileSnapshot{
		ID: t.id, X: t.X, Y: t.Y, Background: t.Background,
		SrcX: t.SrcX, SrcY: t.SrcY, SrcW: t.SrcW, SrcH: t.SrcH,
		ScaleX: t.ScaleX, ScaleY: t.ScaleY, Blend: t.Blend, Alpha: t.Alpha,
		Visible: t.Visible, Depth: t.Depth, Seq: t.seq,
	}
}

func (s TileSnapshot) restore() *Tile {
	return &Tile{
		id: s.ID, X: s.X, Y: s.Y, Background: s.Background,
		SrcX: s.SrcX, SrcY: s.SrcY, SrcW: s.SrcW, SrcH: s.SrcH,
		ScaleX: s.ScaleX, ScaleY: s.ScaleY, Blend: s.Blend, Alpha: s.Alpha,
		Visible: s.Visible, Depth: s.Depth, seq: s.Seq,
	}
}

// particleSystemSnapshot mirrors one ParticleSystem's live particle vector and
// auxiliary objects (emitters/attractors/deflectors/changers/destroyers
// already consist entirely of exported fields, so they gob-encode as-is).
type particleSystemSnapshot struct {
	Particles  []Particle
	Emitters   []*Emitter
	Attractors []*Attractor
	Deflectors []*Deflector
	Changers   []*Changer
	Destroyers []*Destroyer
	Depth      Real
	AutoUpdate bool
}

func snapshotParticleManager(m *ParticleManager) (types []ParticleType, systems []particleSystemSnapshot) {
	for i := 0; i < m.Types.Len(); i++ {
		t, ok := m.Types.Get(int32(i))
		if !ok {
			types = append(types, ParticleType{})
			continue
		}
		types = append(types, *t)
	}
	for i := 0; i < m.Systems.Len(); i++ {
		sys, ok := m.Systems.Get(int32(i))
		if !ok {
			systems = append(systems, particleSystemSnapshot{})
			continue
		}
		systems = append(systems, particleSystemSnapshot{
			Particles: sys.Particles, Emitters: sys.Emitters, Attractors: sys.Attractors,
			Deflectors: sys.Deflectors, Changers: sys.Changers, Destroyers: sys.Destroyers,
			Depth: sys.Depth, AutoUpdate: sys.AutoUpdate,
		})
	}
	return types, systems
}

func restoreParticleManager(types []ParticleType, systems []particleSystemSnapshot) *ParticleManager {
	m := NewParticleManager()
	for i, t := range types {
		tt := t
		m.Types.Set(int32(i), &tt)
	}
	for i, s := range systems {
		m.Systems.Set(int32(i), &ParticleSystem{
			Particles: s.Particles, Emitters: s.Emitters, Attractors: s.Attractors,
			Deflectors: s.Deflectors, Changers: s.Changers, Destroyers: s.Destroyers,
			Depth: s.Depth, AutoUpdate: s.AutoUpdate,
		})
	}
	return m
}

// drawStateSnapshot mirrors drawState (already fully exported, kept as a
// distinct name for clarity in the encoded stream).
type drawStateSnapshot = drawState

// SaveState is a bit-exact serialization of the whole engine, per
// spec.md §4.8. Event holder tables are intentionally not serialized: they
// are a pure, idempotent function of the asset bundle's current object
// graph (eventholder.go's Rebuild), so re-deriving them after Load produces
// byte-identical tables to the ones the saving session had, at no risk of
// drift and no serialization cost.
type SaveState struct {
	Instances        []InstanceSnapshot
	NextInstanceID   InstanceID
	Tiles            []TileSnapshot
	NextTileID       TileID
	RNGSeed          uint32
	SpoofedTimeNanos int64
	FrameIndex       int64

	Room        RoomID
	RoomWidth   int32
	RoomHeight  int32
	RoomSpeed   int32
	ClearColor  uint32
	Views       []RoomView
	ViewsOn     bool
	Backgrounds []RoomBackgroundLayer
	RoomOrderIdx int

	Globals    map[string]ValueSnapshot
	GlobalVars map[string]bool
	Constants  []float64

	ParticleTypes   []ParticleType
	ParticleSystems []particleSystemSnapshot

	AutoDraw bool
	Draw     drawStateSnapshot
	Surfaces map[int64]render.AtlasRef

	Replay *Replay
}

// Save captures the engine's complete live state into a SaveState,
// per spec.md §4.8.
func (e *Engine) Save() *SaveState {
	s := &SaveState{
		NextInstanceID:   e.instances.NextInstanceID(),
		NextTileID:       e.tiles.NextTileID(),
		RNGSeed:          e.rng.Seed(),
		SpoofedTimeNanos: e.spoofedTimeNanos,
		FrameIndex:       e.frameIndex,
		Room:             e.room,
		RoomWidth:        e.roomWidth,
		RoomHeight:       e.roomHeight,
		RoomSpeed:        e.roomSpeed,
		ClearColor:       e.clearColor,
		Views:            append([]RoomView(nil), e.views...),
		ViewsOn:          e.viewsOn,
		Backgrounds:      append([]RoomBackgroundLayer(nil), e.backgrounds...),
		RoomOrderIdx:     e.roomOrderIdx,
		GlobalVars:       make(map[string]bool, len(e.globalVars)),
		Constants:        append([]float64(nil), e.constants...),
		AutoDraw:         e.autoDraw,
		Draw:             e.draw,
		Surfaces:         make(map[int64]render.AtlasRef, len(e.surfaces)),
	}
	for _, h := range e.instances.All() {
		s.Instances = append(s.Instances, snapshotInstance(e.instances.Get(h)))
	}
	for _, h := range e.tiles.All() {
		s.Tiles = append(s.Tiles, snapshotTile(e.tiles.Get(h)))
	}
	s.Globals = make(map[string]ValueSnapshot, len(e.globals))
	for k, v := range e.globals {
		s.Globals[k] = snapshotValue(v)
	}
	for k, v := range e.globalVars {
		s.GlobalVars[k] = v
	}
	for k, v := range e.surfaces {
		s.Surfaces[k] = v
	}
	s.ParticleTypes, s.ParticleSystems = snapshotParticleManager(e.particles)
	if e.recorder != nil {
		s.Replay = e.recorder.replay
	}
	return s
}

// Load atomically replaces the engine's live state with s, per spec.md
// §4.8's load_into semantics: on decode success every field below is
// replaced as a unit; a failed Marshal/Unmarshal upstream of Load leaves
// the engine untouched (LoadState never calls Load on bad data). Returns
// the embedded replay record, or nil if none was captured.
func (e *Engine) Load(s *SaveState) *Replay {
	var instSeq, tileSeq int64
	for _, is := range s.Instances {
		if is.Seq > instSeq {
			instSeq = is.Seq
		}
	}
	for _, ts := range s.Tiles {
		if ts.Seq > tileSeq {
			tileSeq = ts.Seq
		}
	}
	e.instances.Restore(func(h instanceHandle) *Instance {
		return s.Instances[h].restore()
	}, len(s.Instances), s.NextInstanceID, instSeq)
	e.tiles.Restore(func(h tileHandle) *Tile {
		return s.Tiles[h].restore()
	}, len(s.Tiles), s.NextTileID, tileSeq)

	e.rng.SetSeed(s.RNGSeed)
	e.spoofedTimeNanos = s.SpoofedTimeNanos
	e.frameIndex = s.FrameIndex
	e.room = s.Room
	e.roomWidth = s.RoomWidth
	e.roomHeight = s.RoomHeight
	e.roomSpeed = s.RoomSpeed
	e.clearColor = s.ClearColor
	e.views = append([]RoomView(nil), s.Views...)
	e.viewsOn = s.ViewsOn
	e.backgrounds = append([]RoomBackgroundLayer(nil), s.Backgrounds...)
	e.roomOrderIdx = s.RoomOrderIdx

	e.globals = make(map[string]scripting.Value, len(s.Globals))
	for k, v := range s.Globals {
		e.globals[k] = v.restore()
	}
	e.globalVars = make(map[string]bool, len(s.GlobalVars))
	for k, v := range s.GlobalVars {
		e.globalVars[k] = v
	}
	e.constants = append([]float64(nil), s.Constants...)
	e.particles = restoreParticleManager(s.ParticleTypes, s.ParticleSystems)
	e.autoDraw = s.AutoDraw
	e.draw = s.Draw
	e.surfaces = make(map[int64]render.AtlasRef, len(s.Surfaces))
	for k, v := range s.Surfaces {
		e.surfaces[k] = v
	}
	e.holder.Rebuild(e.assets)
	e.sceneChange = nil
	e.transition = nil
	return s.Replay
}

// Marshal gob-encodes s.
func (s *SaveState) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, &SnapshotError{Op: "save", Message: err.Error()}
	}
	return buf.Bytes(), nil
}

// LoadState decodes a SaveState previously produced by Marshal. A decode
// failure leaves the caller free to discard data and keep running its
// current engine, per spec.md §7's snapshot-error recovery rule.
func LoadState(data []byte) (*SaveState, error) {
	var s SaveState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, &SnapshotError{Op: "load", Message: err.Error()}
	}
	return &s, nil
}

// WriteFile atomically writes s to path: encode to a temp file in the same
// directory, then rename over the destination, so a crash mid-write never
// leaves a corrupt save (spec.md §7 "save is atomic: write-to-temp,
// rename").
func (s *SaveState) WriteFile(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".savestate-*.tmp")
	if err != nil {
		return &SnapshotError{Op: "save", Message: err.Error()}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &SnapshotError{Op: "save", Message: err.Error()}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &SnapshotError{Op: "save", Message: err.Error()}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &SnapshotError{Op: "save", Message: err.Error()}
	}
	return nil
}
