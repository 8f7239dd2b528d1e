package vmcore

import (
	"github.com/northlake/vmcore/render"
	"github.com/northlake/vmcore/scripting"
)

// ObjectID, and the other *ID types below, are dense indices into their
// respective asset vectors. A negative value means "no asset" (e.g. an
// object with no parent, an instance with no mask override).
type (
	ObjectID     int32
	SpriteID     int32
	BackgroundID int32
	PathID       int32
	FontID       int32
	RoomID       int32
	TimelineID   int32
	TriggerID    int32
	SoundID      int32
)

// store is a dense, append-only collection indexed by a non-negative ID;
// a nil slot means the ID is absent. It backs every asset vector in
// GameAssets.
type store[T any] struct {
	items []*T
}

func newStore[T any](n int) store[T] {
	return store[T]{items: make([]*T, n)}
}

// Get returns the asset at id, or (nil, false) if id is out of range or
// the slot is empty.
func (s store[T]) Get(id int32) (*T, bool) {
	if id < 0 || int(id) >= len(s.items) {
		return nil, false
	}
	v := s.items[id]
	return v, v != nil
}

// Set stores v at id, growing the backing slice if necessary.
func (s *store[T]) Set(id int32, v *T) {
	for int(id) >= len(s.items) {
		s.items = append(s.items, nil)
	}
	s.items[id] = v
}

// Len returns the size of the dense index space (including empty slots).
func (s store[T]) Len() int {
	return len(s.items)
}

// Collider is a boolean pixel mask plus bounding box used for precise
// collision.
type Collider struct {
	Width, Height int32
	Left, Top     int32
	Right, Bottom int32
	// Mask is a row-major packed boolean pixel map, Width*Height entries.
	Mask []bool
}

// At reports whether the mask bit at local pixel (x, y) is set. Out of
// range coordinates are treated as unset.
func (c *Collider) At(x, y int32) bool {
	if c == nil || x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return false
	}
	return c.Mask[int(y)*int(c.Width)+int(x)]
}

// Sprite owns per-frame atlas references and colliders.
type Sprite struct {
	Width, Height     int32
	OriginX, OriginY  int32
	FrameCount        int32
	Frames            []render.AtlasRef
	// PerFrameColliders selects Colliders[floor(image_index) mod len] when
	// true; otherwise Colliders[0] is used for every frame.
	PerFrameColliders bool
	Colliders         []*Collider
}

// ColliderFor returns the collider applicable for the given (possibly
// fractional, possibly negative) image_index, per spec.md §4.6.
func (s *Sprite) ColliderFor(imageIndex Real) *Collider {
	if len(s.Colliders) == 0 {
		return nil
	}
	if !s.PerFrameColliders {
		return s.Colliders[0]
	}
	n := int32(len(s.Colliders))
	idx := imageIndex.Trunc() % n
	if idx < 0 {
		idx += n
	}
	return s.Colliders[idx]
}

// Background owns one atlas reference plus tiling metadata.
type Background struct {
	Ref            render.AtlasRef
	Width, Height  int32
	Tileable       bool
	HSep, VSep     int32
}

// Glyph describes one dense character-table entry.
type Glyph struct {
	OffsetX, OffsetY int32
	Advance          int32
	Region           render.AtlasRef
	SrcX, SrcY       int32
	SrcW, SrcH       int32
}

// Font owns a dense character table from First to Last inclusive.
type Font struct {
	First, Last rune
	Glyphs      map[rune]Glyph
}

// PathPoint is one control point of a Path asset.
type PathPoint struct {
	X, Y, Speed Real
}

// Path owns control points, a curve/closed flag, a precision level, and a
// precomputed polyline.
type Path struct {
	Points    []PathPoint
	Curve     bool
	Closed    bool
	Precision int32
	Polyline  []Vec2 // precomputed, arc-length-ish samples along the path
}

// Length returns the total polyline length.
func (p *Path) Length() Real {
	var total Real
	for i := 1; i < len(p.Polyline); i++ {
		dx := p.Polyline[i].X - p.Polyline[i-1].X
		dy := p.Polyline[i].Y - p.Polyline[i-1].Y
		total += (dx*dx + dy*dy).Sqrt()
	}
	return total
}

// PointAt returns the position at normalized position t in [0, 1] along
// the polyline, clamping out-of-range t.
func (p *Path) PointAt(t Real) Vec2 {
	if len(p.Polyline) == 0 {
		return Vec2{}
	}
	if t <= 0 {
		return p.Polyline[0]
	}
	if t >= 1 {
		return p.Polyline[len(p.Polyline)-1]
	}
	total := p.Length()
	if total == 0 {
		return p.Polyline[0]
	}
	target := total * t
	var acc Real
	for i := 1; i < len(p.Polyline); i++ {
		a, b := p.Polyline[i-1], p.Polyline[i]
		dx := b.X - a.X
		dy := b.Y - a.Y
		segLen := (dx*dx + dy*dy).Sqrt()
		if acc+segLen >= target {
			frac := Real(0)
			if segLen > 0 {
				frac = (target - acc) / segLen
			}
			return Vec2{X: Lerp(a.X, b.X, frac), Y: Lerp(a.Y, b.Y, frac)}
		}
		acc += segLen
	}
	return p.Polyline[len(p.Polyline)-1]
}

// RoomView is one of a room's view configurations (spec.md §3 "view
// configurations").
type RoomView struct {
	Enabled                    bool
	ViewX, ViewY               int32
	ViewW, ViewH               int32
	PortX, PortY               int32
	PortW, PortH               int32
	FollowObject               ObjectID
	BorderX, BorderY           int32
	SpeedX, SpeedY             int32
}

// RoomBackgroundLayer is one background layer configuration within a room.
type RoomBackgroundLayer struct {
	Background   BackgroundID
	Visible      bool
	Foreground   bool
	X, Y         int32
	TileH, TileV bool
	HSpeed, VSpeed int32
	Stretch      bool
}

// RoomInstance is one spawn-list entry for a room.
type RoomInstance struct {
	Object       ObjectID
	X, Y         Real
	CreationCode scripting.Program
}

// RoomTile is one tile-list entry for a room.
type RoomTile struct {
	Background BackgroundID
	X, Y       Real
	SrcX, SrcY int32
	SrcW, SrcH int32
	Depth      int32
}

// Room owns spawn lists, tile lists, view configurations, background layer
// configurations, creation code, and a clear color.
type Room struct {
	Width, Height int32
	Speed         int32
	ClearColor    uint32 // 0xAARRGGBB
	Spawns        []RoomInstance
	Tiles         []RoomTile
	Views         []RoomView
	ViewsEnabled  bool
	Backgrounds   []RoomBackgroundLayer
	CreationCode  scripting.Program
}

// HandlerMap maps an event sub-code to its compiled action tree.
type HandlerMap map[int32]scripting.Program

// Object is an immutable asset: defaults for new instances plus the
// twelve event-category handler maps.
type Object struct {
	ID          ObjectID
	Sprite      SpriteID
	Mask        SpriteID // -1 to use Sprite
	Solid       bool
	Visible     bool
	Persistent  bool
	Depth       int32
	Parent      ObjectID // -1 for none
	Events      [eventCategoryCount]HandlerMap

	// identitySet caches {self} ∪ descendants, computed once after load
	// and recomputed by GameAssets.RebuildIdentitySets when the object
	// graph changes.
	identitySet map[ObjectID]bool
}

// TimelineMoment is one compiled action at a given timeline position.
type TimelineMoment struct {
	Position int32
	Action   scripting.Program
}

// Timeline owns an ordered list of moments.
type Timeline struct {
	Moments []TimelineMoment // sorted ascending by Position
	Length  int32
}

// Trigger is a user-defined boolean expression polled at a given moment.
type Trigger struct {
	Condition scripting.Expr
	Moment    TriggerMoment
	Name      string
}

// GameAssets is the fully decoded asset bundle the engine is constructed
// from. Binary decoding/decryption is out of scope (spec.md §1); this type
// is simply the contract the external loader must produce.
type GameAssets struct {
	Sprites     store[Sprite]
	Backgrounds store[Background]
	Paths       store[Path]
	Fonts       store[Font]
	Objects     store[Object]
	Rooms       store[Room]
	Timelines   store[Timeline]
	Triggers    store[Trigger]

	RoomOrder       []RoomID
	InitialSeed     uint32
	LastInstanceID  int64
	LastTileID      int64
	PackageVersion  int32
}

// NewGameAssets allocates a GameAssets with dense vectors of the given
// sizes. Callers (the loader) populate slots with Set-style helpers; the
// engine treats any nil slot as absent per spec.md §3 invariants.
func NewGameAssets(sprites, backgrounds, paths, fonts, objects, rooms, timelines, triggers int) *GameAssets {
	return &GameAssets{
		Sprites:     newStore[Sprite](sprites),
		Backgrounds: newStore[Background](backgrounds),
		Paths:       newStore[Path](paths),
		Fonts:       newStore[Font](fonts),
		Objects:     newStore[Object](objects),
		Rooms:       newStore[Room](rooms),
		Timelines:   newStore[Timeline](timelines),
		Triggers:    newStore[Trigger](triggers),
	}
}

// SetObject installs obj at its own ID; it does not touch any identity-set
// cache, so callers must follow a batch of SetObject calls with
// RebuildIdentitySets before the object store is used.
func (a *GameAssets) SetObject(obj *Object) {
	a.Objects.Set(int32(obj.ID), obj)
}

// RebuildIdentitySets recomputes every object's identity set — {self} union
// the transitive closure of the child relation — per spec.md §3's
// invariant that the identity set is precomputed and O(1) to query.
func (a *GameAssets) RebuildIdentitySets() {
	n := a.Objects.Len()
	children := make(map[ObjectID][]ObjectID, n)
	for i := 0; i < n; i++ {
		obj, ok := a.Objects.Get(int32(i))
		if !ok {
			continue
		}
		if obj.Parent >= 0 {
			children[obj.Parent] = append(children[obj.Parent], obj.ID)
		}
	}
	for i := 0; i < n; i++ {
		obj, ok := a.Objects.Get(int32(i))
		if !ok {
			continue
		}
		set := map[ObjectID]bool{obj.ID: true}
		var walk func(ObjectID)
		walk = func(id ObjectID) {
			for _, c := range children[id] {
				if !set[c] {
					set[c] = true
					walk(c)
				}
			}
		}
		walk(obj.ID)
		obj.identitySet = set
	}
}

// IdentitySet returns the precomputed {self} ∪ descendants set for obj.
func (obj *Object) IdentitySet() map[ObjectID]bool {
	return obj.identitySet
}

// IsOrDescendsFrom reports whether obj's identity set contains target —
// i.e. an instance of obj answers true to "is this an instance of target".
func (obj *Object) IsOrDescendsFrom(target ObjectID) bool {
	return obj.identitySet[target]
}

// HandlerFor walks obj's parent chain looking for a compiled handler for
// (cat, sub), per spec.md §4.5 ("resolved by walking the parent chain at
// dispatch time, not at load time").
func (a *GameAssets) HandlerFor(obj *Object, cat EventCategory, sub int32) (scripting.Program, bool) {
	for o := obj; o != nil; {
		if h, ok := o.Events[cat][sub]; ok {
			return h, true
		}
		if o.Parent < 0 {
			return nil, false
		}
		next, ok := a.Objects.Get(int32(o.Parent))
		if !ok {
			return nil, false
		}
		o = next
	}
	return nil, false
}
