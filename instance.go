package vmcore

import "github.com/northlake/vmcore/scripting"

// InstanceID is a monotonically increasing identifier exposed to scripts;
// unlike a handle, it is never reused.
type InstanceID int64

// instanceHandle is the engine-internal, possibly-reused identifier used to
// address slots in InstanceList. Scripts never see it directly.
type instanceHandle int32

// Field is the dynamic, string-keyed user variable holder attached to every
// instance. It supports both a scalar slot and packed 2-D array slots under
// one name, matching the original runtime's var[i, j] addressing without a
// nested map allocation per access (see SPEC_FULL.md §3).
type Field struct {
	Scalar scripting.Value
	array  map[int64]scripting.Value
}

// packIndex folds a 2-D (i, j) array subscript into one key. j is limited
// to 2^20 entries per row, comfortably above any real GML array use.
func packIndex(i, j int32) int64 {
	return int64(i)<<20 | int64(uint32(j)&0xFFFFF)
}

// ArrayGet returns the value at array[i, j], or the zero Value if unset.
func (f *Field) ArrayGet(i, j int32) scripting.Value {
	if f.array == nil {
		return scripting.Value{}
	}
	return f.array[packIndex(i, j)]
}

// ArraySet stores value at array[i, j].
func (f *Field) ArraySet(i, j int32, value scripting.Value) {
	if f.array == nil {
		f.array = make(map[int64]scripting.Value)
	}
	f.array[packIndex(i, j)] = value
}

// Instance is a live runtime entity based on an Object template. Its state
// is a flat struct — every transform/appearance/motion field directly
// addressable — mirroring the teacher's Node layout rather than a
// map-of-maps, since every instance needs the same fixed fields.
type Instance struct {
	id       InstanceID
	handle   instanceHandle
	Object   ObjectID

	// Position
	X, Y                 Real
	XPrevious, YPrevious Real

	// Motion
	Speed, Direction     Real
	HSpeed, VSpeed       Real
	Gravity, GravityDir  Real
	Friction             Real

	// Appearance
	SpriteIndex  SpriteID
	MaskIndex    SpriteID // -1 to use SpriteIndex
	ImageIndex   Real
	ImageSpeed   Real
	ImageXScale  Real
	ImageYScale  Real
	ImageAngle   Real
	ImageBlend   uint32
	ImageAlpha   Real

	// Flags
	Solid      bool
	Visible    bool
	Persistent bool
	Activity   ActivityState

	// Timeline state
	TimelineIndex    TimelineID
	TimelinePosition Real
	TimelineSpeed    Real
	TimelineLoop     bool
	TimelineRunning  bool

	// Path state
	PathIndex           PathID
	PathPosition        Real
	PathPositionPrev    Real
	PathSpeed           Real
	PathOrientation     Real
	PathScale           Real
	PathEndAction       PathEndAction

	// Alarms
	Alarms [12]int32

	// Depth (defaults from Object, may be overridden at runtime)
	Depth int32

	// bboxValid/bbox cache per spec.md §3's invariant: valid only within
	// the frame step that produced it.
	bboxValid bool
	bbox      Rect

	Fields map[string]*Field

	// seq is the insertion sequence number, used only to break depth-order
	// ties (spec.md §4.2: "ties broken by insertion order").
	seq int64
}

// PathEndAction selects what happens when an instance reaches path_position
// 1.0 while following a path.
type PathEndAction uint8

const (
	PathActionStop PathEndAction = iota
	PathActionContinue
	PathActionReverse
	PathActionRestart
)

// ID returns the instance's stable, never-reused script-visible ID.
func (inst *Instance) ID() InstanceID { return inst.id }

// Field returns the named field holder, creating it on first access.
func (inst *Instance) Field(name string) *Field {
	if inst.Fields == nil {
		inst.Fields = make(map[string]*Field)
	}
	f, ok := inst.Fields[name]
	if !ok {
		f = &Field{}
		inst.Fields[name] = f
	}
	return f
}

// newInstance constructs an Instance with the spec's documented defaults:
// PathEndAction defaults to Stop, ImageXScale/YScale/Alpha default to 1,
// MaskIndex is copied from the object's Mask (-1 means use SpriteIndex).
func newInstance(id InstanceID, handle instanceHandle, obj *Object, x, y Real) *Instance {
	return &Instance{
		id:          id,
		handle:      handle,
		Object:      obj.ID,
		X:           x,
		Y:           y,
		XPrevious:   x,
		YPrevious:   y,
		SpriteIndex: obj.Sprite,
		MaskIndex:   obj.Mask,
		ImageXScale: 1,
		ImageYScale: 1,
		ImageAlpha:  1,
		ImageBlend:  0xFFFFFF,
		Solid:       obj.Solid,
		Visible:     obj.Visible,
		Persistent:  obj.Persistent,
		Depth:       obj.Depth,
		Activity:    Active,
	}
}

// RefreshBoundingBox recomputes the cached AABB from the mask sprite per
// spec.md §4.6 step 2: scale, rotate about the instance position, translate
// by position, then take the axis-aligned envelope. Callers of any precise-collision path must
// call this before reading Instance.BoundingBox.
func (inst *Instance) RefreshBoundingBox(assets *GameAssets) {
	col := inst.maskCollider(assets)
	if col == nil {
		inst.bbox = Rect{X: inst.X, Y: inst.Y}
		inst.bboxValid = true
		return
	}
	inst.bbox = transformedBBox(inst, col)
	inst.bboxValid = true
}

// BoundingBox returns the cached AABB. Panics in debug mode if the cache
// has never been refreshed; a cache refreshed in an earlier frame step is
// returned as is.
func (inst *Instance) BoundingBox() Rect {
	if !inst.bboxValid && Debug() {
		panic("vmcore debug: BoundingBox read before RefreshBoundingBox")
	}
	return inst.bbox
}

func (inst *Instance) maskCollider(assets *GameAssets) *Collider {
	maskSprite := inst.MaskIndex
	if maskSprite < 0 {
		maskSprite = inst.SpriteIndex
	}
	if maskSprite < 0 {
		return nil
	}
	spr, ok := assets.Sprites.Get(int32(maskSprite))
	if !ok {
		return nil
	}
	return spr.ColliderFor(inst.ImageIndex)
}

// transformedBBox computes the axis-aligned envelope of col's bounding box
// after scaling by image_xscale/yscale, rotating by image_angle about the
// origin, and translating by position (spec.md §4.6 step 2).
func transformedBBox(inst *Instance, col *Collider) Rect {
	corners := [4]Vec2{
		{X: Real(col.Left), Y: Real(col.Top)},
		{X: Real(col.Right), Y: Real(col.Top)},
		{X: Real(col.Left), Y: Real(col.Bottom)},
		{X: Real(col.Right), Y: Real(col.Bottom)},
	}
	angle := DegToRad(inst.ImageAngle)
	cosA, sinA := angle.Cos(), angle.Sin()

	var minX, minY, maxX, maxY Real
	for i, c := range corners {
		sx := c.X * inst.ImageXScale
		sy := c.Y * inst.ImageYScale
		rx := sx*cosA - sy*sinA
		ry := sx*sinA + sy*cosA
		wx := inst.X + rx
		wy := inst.Y + ry
		if i == 0 || wx < minX {
			minX = wx
		}
		if i == 0 || wy < minY {
			minY = wy
		}
		if i == 0 || wx > maxX {
			maxX = wx
		}
		if i == 0 || wy > maxY {
			maxY = wy
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
