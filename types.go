package vmcore

// Vec2 is a 2D vector used for positions, offsets, and directions.
type Vec2 struct {
	X, Y Real
}

// Rect is an axis-aligned rectangle with origin at the top-left and Y
// increasing downward, matching the original runtime's room coordinate
// system.
type Rect struct {
	X, Y, Width, Height Real
}

// Contains reports whether the point (x, y) lies inside the rectangle,
// inclusive of the edges.
func (r Rect) Contains(x, y Real) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap, including shared edges.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.X+r.Width, other.X+other.Width)
	y1 := max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func min(a, b Real) Real {
	if a < b {
		return a
	}
	return b
}

func max(a, b Real) Real {
	if a > b {
		return a
	}
	return b
}

// RangeF is a general-purpose min/max pair used throughout particle
// spawn distributions and collision geometry.
type RangeF struct {
	Min, Max Real
}

// Sample draws a linearly-distributed value from the range using rng.
func (r RangeF) Sample(rng *Random) Real {
	if r.Max <= r.Min {
		return r.Min
	}
	return Real(rng.NextRange(r.Min.Float64(), r.Max.Float64()))
}

// ActivityState is the lifecycle state of an Instance.
type ActivityState uint8

const (
	Active ActivityState = iota
	Inactive
	Deleted
)

// EventCategory identifies one of the twelve ordered event categories.
type EventCategory uint8

const (
	EvCreate EventCategory = iota
	EvDestroy
	EvAlarm
	EvStep
	EvCollision
	EvKeyboard
	EvMouse
	EvOther
	EvDraw
	EvKeyPress
	EvKeyRelease
	EvTrigger
	eventCategoryCount
)

// StepMoment distinguishes the three Step sub-phases dispatched during the
// frame pipeline.
type StepMoment int32

const (
	StepBegin StepMoment = iota
	StepMiddle
	StepEnd
)

// OtherSubCode enumerates the "other" event category sub-codes this core
// dispatches on its own (outside_room, animation_end, ...). Scripted
// sub-codes outside this list are still valid event-holder keys; this is
// not an exhaustive enum, only the ones the frame pipeline fires itself.
type OtherSubCode int32

const (
	OtherOutsideRoom   OtherSubCode = 0
	OtherAnimationEnd  OtherSubCode = 7
)

// TriggerMoment identifies when a trigger's boolean expression is polled.
type TriggerMoment uint8

const (
	TriggerBeginStep TriggerMoment = iota
	TriggerStep
	TriggerEndStep
)
