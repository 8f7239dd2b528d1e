package vmcore

import (
	"errors"
	"sort"

	"github.com/northlake/vmcore/render"
	"github.com/northlake/vmcore/scripting"
)

// EngineConfig holds every engine tunable as a typed struct literal,
// mirroring the teacher's New*(cfg Config) constructor convention rather
// than reading configuration from a file (SPEC_FULL.md §2 ambient stack).
type EngineConfig struct {
	RoomOrder   []RoomID
	InitialSeed uint32
	TargetFPS   int
	AlwaysAbort bool
	// TransitionFrames is the duration of the fade/wipe played across a
	// room change (spec.md §4.4's "transition playback"); zero disables
	// transitions entirely and room changes take effect immediately.
	TransitionFrames int32
}

// EngineDeps bundles the external collaborators the core consumes but
// never implements: the scripting interpreter, the renderer, and the
// window/input source (spec.md §1, §6).
type EngineDeps struct {
	Interpreter scripting.Interpreter
	Renderer    render.Renderer
	Window      render.Window
}

// sceneChangeKind discriminates a queued scene change (spec.md §5).
type sceneChangeKind uint8

const (
	sceneNone sceneChangeKind = iota
	sceneRoomChange
	sceneRestart
	sceneEnd
)

type sceneChangeRequest struct {
	kind sceneChangeKind
	room RoomID
}

// drawState holds the current text/draw defaults a script can mutate
// (color, alpha, alignment, font), snapshotted whole by SaveState per
// spec.md §4.8.
type drawState struct {
	Color  uint32
	Alpha  Real
	HAlign int32
	VAlign int32
	Font   FontID
}

// Engine owns every piece of live runtime state: the asset bundle, the
// instance/tile lists, the event holder, the particle manager, the RNG,
// input bookkeeping, and room/view/transition state. It is single-threaded
// cooperative (spec.md §5) — never safe for concurrent use.
type Engine struct {
	assets *GameAssets
	cfg    EngineConfig
	deps   EngineDeps

	instances *InstanceList
	tiles     *TileList
	holder    *EventHolder
	particles *ParticleManager
	rng       *Random
	input     *InputState

	room        RoomID
	roomWidth   int32
	roomHeight  int32
	roomSpeed   int32
	clearColor  uint32
	views       []RoomView
	viewsOn     bool
	backgrounds []RoomBackgroundLayer

	roomOrderIdx int

	sceneChange *sceneChangeRequest
	transition  *Transition

	errorOccurred bool
	errorLast     string
	fatalErr      error

	globals    map[string]scripting.Value
	globalVars map[string]bool
	constants  []float64

	autoDraw  bool
	draw      drawState
	surfaces  map[int64]render.AtlasRef

	spoofedTimeNanos int64
	frameIndex       int64

	recorder *Recorder

	owner uint64
	stats FrameStats
}

// ErrGameEnded is returned from Frame() once a scene-end change has been
// processed; callers should stop calling Frame() after seeing it.
var ErrGameEnded = errors.New("vmcore: game end requested")

// NewEngine constructs an Engine from a fully decoded asset bundle,
// configuration, and external collaborators, then loads the first room
// in cfg.RoomOrder (or assets.RoomOrder if cfg.RoomOrder is empty).
func NewEngine(assets *GameAssets, cfg EngineConfig, deps EngineDeps) (*Engine, error) {
	order := cfg.RoomOrder
	if len(order) == 0 {
		order = assets.RoomOrder
	}
	if len(order) == 0 {
		return nil, &LoadError{Message: "no rooms in room order"}
	}
	assets.RebuildIdentitySets()
	holder := NewEventHolder()
	holder.Rebuild(assets)

	seed := cfg.InitialSeed
	if seed == 0 {
		seed = assets.InitialSeed
	}

	e := &Engine{
		assets:       assets,
		cfg:          cfg,
		deps:         deps,
		instances:    NewInstanceList(InstanceID(assets.LastInstanceID)),
		tiles:        NewTileList(),
		holder:       holder,
		particles:    NewParticleManager(),
		rng:          NewRandom(seed),
		input:        NewInputState(),
		roomOrderIdx: -1,
		globals:      make(map[string]scripting.Value),
		globalVars:   make(map[string]bool),
		surfaces:     make(map[int64]render.AtlasRef),
		draw:         drawState{Alpha: 1, Color: 0xFFFFFF},
		autoDraw:     true,
	}
	if err := e.loadRoomByIndex(order, 0); err != nil {
		return nil, err
	}
	if Debug() {
		e.owner = currentGoroutineID()
	}
	return e, nil
}

// QueueSceneChange requests a room transition to take effect at the next
// scene-change checkpoint (spec.md §5). If cfg.TransitionFrames > 0 the
// outgoing transition begins immediately; the room swap itself happens
// once the transition completes (see transition.go).
func (e *Engine) QueueSceneChange(room RoomID) {
	e.sceneChange = &sceneChangeRequest{kind: sceneRoomChange, room: room}
	if e.cfg.TransitionFrames > 0 {
		e.transition = NewTransition(e.cfg.TransitionFrames)
	}
}

// QueueRestart requests the game restart at the first room in the order.
func (e *Engine) QueueRestart() {
	e.sceneChange = &sceneChangeRequest{kind: sceneRestart}
}

// QueueEnd requests the game end; the next Frame() call returns
// ErrGameEnded once the change is processed.
func (e *Engine) QueueEnd() {
	e.sceneChange = &sceneChangeRequest{kind: sceneEnd}
}

// ErrorOccurred and ErrorLast expose the recoverable-error diagnostic
// fields a script can read after a ScriptError (spec.md §7).
func (e *Engine) ErrorOccurred() bool   { return e.errorOccurred }
func (e *Engine) ErrorLast() string     { return e.errorLast }
func (e *Engine) ClearError()           { e.errorOccurred = false; e.errorLast = "" }
func (e *Engine) RNG() *Random          { return e.rng }
func (e *Engine) Instances() *InstanceList { return e.instances }
func (e *Engine) Tiles() *TileList       { return e.tiles }
func (e *Engine) Particles() *ParticleManager { return e.particles }
func (e *Engine) Assets() *GameAssets    { return e.assets }
func (e *Engine) Room() RoomID           { return e.room }
func (e *Engine) RoomSize() (int32, int32) { return e.roomWidth, e.roomHeight }
func (e *Engine) Input() *InputState     { return e.input }
func (e *Engine) ClearColor() uint32     { return e.clearColor }

// aborted reports whether a scene change is pending or a fatal error has
// been recorded this frame — checked between every top-level pipeline step
// (spec.md §4.4, §5, §9 "Iterator cancellation").
func (e *Engine) aborted() bool { return e.sceneChange != nil || e.fatalErr != nil }

// Frame executes exactly one logical frame of spec.md §4.4's 19-step
// pipeline, aborting early at any step boundary if a scene change is
// queued or a fatal error was recorded. It returns ErrGameEnded after processing a queued game end, or
// a *FatalError if a resource/snapshot failure or an always-abort script
// error occurred.
func (e *Engine) Frame() error {
	if Debug() {
		debugAssertOwnerGoroutine(e.owner, currentGoroutineID(), "Frame")
	}
	e.fatalErr = nil
	e.frameIndex++
	e.stats = FrameStats{InstanceCount: e.instances.Count(), TileCount: e.tiles.Count()}

	if e.sceneChange != nil {
		if err := e.processSceneChange(); err != nil {
			return err
		}
		if e.sceneChange == nil && e.fatalErr == nil {
			// a room change just took effect; the rest of this frame's
			// pipeline still runs against the new room, matching the
			// original runtime's "load, then continue the frame" model.
		}
	}

	// Step 1: snapshot xprevious/yprevious/path_positionprevious.
	e.snapshotPrevious()
	if e.aborted() {
		return e.endFrame()
	}

	// Steps 2-3: Begin-Step triggers, then step/begin dispatch.
	e.runTriggers(TriggerBeginStep)
	e.dispatch(EvStep, int32(StepBegin))
	if e.aborted() {
		return e.endFrame()
	}

	// Step 4: timeline advance.
	e.advanceTimelines()
	if e.aborted() {
		return e.endFrame()
	}

	// Step 5: alarms.
	e.dispatchAlarms()
	if e.aborted() {
		return e.endFrame()
	}

	// Step 6: keyboard (held keys).
	for _, k := range e.input.HeldKeys() {
		e.dispatch(EvKeyboard, int32(k))
	}
	if e.aborted() {
		return e.endFrame()
	}

	// Step 7: mouse (held buttons).
	for _, b := range e.input.HeldButtons() {
		e.dispatch(EvMouse, int32(b))
	}
	if e.aborted() {
		return e.endFrame()
	}

	// Step 8: key-press (newly pressed this frame).
	for _, k := range e.input.PressedKeys() {
		e.dispatch(EvKeyPress, int32(k))
	}
	if e.aborted() {
		return e.endFrame()
	}

	// Step 9: key-release.
	for _, k := range e.input.ReleasedKeys() {
		e.dispatch(EvKeyRelease, int32(k))
	}
	if e.aborted() {
		return e.endFrame()
	}

	// Step 10: Step triggers, then step/middle dispatch.
	e.runTriggers(TriggerStep)
	e.dispatch(EvStep, int32(StepMiddle))
	if e.aborted() {
		return e.endFrame()
	}

	// Step 11: movement integration.
	e.integrateMovement()
	if e.aborted() {
		return e.endFrame()
	}

	// Step 12: collision dispatch.
	e.dispatchCollisions()
	if e.aborted() {
		return e.endFrame()
	}

	// Step 13: End-Step triggers, then step/end dispatch.
	e.runTriggers(TriggerEndStep)
	e.dispatch(EvStep, int32(StepEnd))
	if e.aborted() {
		return e.endFrame()
	}

	// Step 14: advance auto-updating particle systems.
	e.particles.UpdateAuto(e.rng)

	// Step 15: remove Deleted instances.
	e.instances.RemoveWith(func(inst *Instance) bool { return inst.Activity == Deleted })

	// Step 16: draw pipeline.
	if e.autoDraw {
		e.drawPipeline()
	}

	// Step 17: scroll background layers and follow-views.
	e.scrollBackgrounds()
	e.updateViews()

	// Step 18: advance image_index, fire animation_end on wrap.
	e.advanceAnimations()

	// Step 19: clear per-frame input buffers.
	e.input.ClearFrameEdges()

	e.stats.log()

	if e.fatalErr != nil {
		return &FatalError{Cause: e.fatalErr}
	}
	return nil
}

// endFrame is reached when a scene change or a fatal error aborted the
// pipeline mid-frame; it performs no further steps this frame (a scene
// change is processed at the top of the next Frame() call, per spec.md §5).
func (e *Engine) endFrame() error {
	if e.fatalErr != nil {
		return &FatalError{Cause: e.fatalErr}
	}
	return nil
}

func (e *Engine) snapshotPrevious() {
	cur := e.instances.IterByInsertion()
	for {
		h, ok := cur.Next(e.instances)
		if !ok {
			break
		}
		inst := e.instances.Get(h)
		inst.XPrevious = inst.X
		inst.YPrevious = inst.Y
		inst.PathPositionPrev = inst.PathPosition
	}
}

// runTriggers evaluates every Trigger asset registered at moment and
// dispatches EvTrigger for any whose condition currently evaluates true.
func (e *Engine) runTriggers(moment TriggerMoment) {
	for i := 0; i < e.assets.Triggers.Len(); i++ {
		tr, ok := e.assets.Triggers.Get(int32(i))
		if !ok || tr.Moment != moment || tr.Condition == nil {
			continue
		}
		dummy := e.instances.InsertDummy(&Object{ID: -1})
		ctx := scripting.NewContext(-1, -1, int32(EvTrigger), int32(i))
		v, err := e.deps.Interpreter.Eval(tr.Condition, ctx)
		e.instances.RemoveDummy(dummy)
		if err != nil {
			e.recordScriptError(EvTrigger, int32(i), -1, err)
			continue
		}
		if v.Num != 0 {
			e.dispatch(EvTrigger, int32(i))
		}
	}
}

// dispatch runs category/sub against every subscriber object's live
// instances, per spec.md §4.5. The subscriber list is snapshotted at
// entry (its own slice header) so subscribers added mid-dispatch by a
// runtime object mutation become visible only on the next call, matching
// eventholder.go's documented interior-mutability contract.
func (e *Engine) dispatch(cat EventCategory, sub int32) {
	subs := e.holder.Subscribers(cat, sub)
	for _, objID := range subs {
		obj, ok := e.assets.Objects.Get(int32(objID))
		if !ok {
			continue
		}
		cur := e.instances.IterByIdentity(obj.IdentitySet())
		for {
			h, ok := cur.Next(e.instances)
			if !ok {
				break
			}
			inst := e.instances.Get(h)
			if inst == nil || inst.Activity == Deleted {
				continue
			}
			if !e.runHandler(inst, inst, cat, sub) {
				// spec.md §7: a script error skips remaining same-category
				// handlers for this dispatch; other pipeline steps still run.
				return
			}
		}
	}
}

// runHandler resolves self's handler for (cat, sub) by walking the parent
// chain and executes it with self/other bound per spec.md §4.5. Returns
// false if a (non-fatal) script error occurred, signaling dispatch to
// stop processing the remaining subscribers for this category.
func (e *Engine) runHandler(self, other *Instance, cat EventCategory, sub int32) bool {
	obj, ok := e.assets.Objects.Get(int32(self.Object))
	if !ok {
		return true
	}
	prog, ok := e.assets.HandlerFor(obj, cat, sub)
	if !ok {
		return true
	}
	ctx := scripting.NewContext(int64(self.handle), int64(other.handle), int32(cat), sub)
	if err := e.deps.Interpreter.Execute(prog, ctx); err != nil {
		e.recordScriptError(cat, sub, self.id, err)
		return false
	}
	e.stats.DispatchedCount++
	return true
}

func (e *Engine) recordScriptError(cat EventCategory, sub int32, instID InstanceID, err error) {
	e.errorOccurred = true
	e.errorLast = err.Error()
	if e.cfg.AlwaysAbort {
		e.fatalErr = &ScriptError{Category: cat, Sub: sub, Instance: instID, Message: err.Error()}
	}
}

// advanceTimelines steps timeline_position for every running instance and
// fires every moment crossed, per spec.md §4.4 step 4.
func (e *Engine) advanceTimelines() {
	cur := e.instances.IterByInsertion()
	for {
		h, ok := cur.Next(e.instances)
		if !ok {
			break
		}
		inst := e.instances.Get(h)
		if !inst.TimelineRunning || inst.TimelineIndex < 0 {
			continue
		}
		tl, ok := e.assets.Timelines.Get(int32(inst.TimelineIndex))
		if !ok {
			continue
		}
		old := inst.TimelinePosition
		next := old + inst.TimelineSpeed
		reverse := inst.TimelineSpeed < 0

		for _, m := range tl.Moments {
			pos := Real(m.Position)
			crossed := false
			if !reverse {
				crossed = pos >= old && pos < next
			} else {
				crossed = pos <= old && pos > next
			}
			if crossed {
				ctx := scripting.NewContext(int64(inst.handle), int64(inst.handle), int32(EvStep), m.Position)
				if err := e.deps.Interpreter.Execute(m.Action, ctx); err != nil {
					e.recordScriptError(EvStep, m.Position, inst.id, err)
				}
			}
		}

		if !reverse {
			if inst.TimelineLoop && next >= Real(tl.Length) {
				next -= Real(tl.Length)
			}
		} else {
			if inst.TimelineLoop && next < 0 {
				next += Real(tl.Length)
			} else if !inst.TimelineLoop && next < 0 {
				next = 0
			}
		}
		inst.TimelinePosition = next
	}
}

// dispatchAlarms decrements every positive alarm and fires the alarm
// event when one reaches zero, per spec.md §4.4 step 5.
func (e *Engine) dispatchAlarms() {
	cur := e.instances.IterByInsertion()
	var due []struct {
		h   instanceHandle
		sub int32
	}
	for {
		h, ok := cur.Next(e.instances)
		if !ok {
			break
		}
		inst := e.instances.Get(h)
		for i := range inst.Alarms {
			if inst.Alarms[i] > 0 {
				inst.Alarms[i]--
				if inst.Alarms[i] == 0 {
					inst.Alarms[i] = -1
					due = append(due, struct {
						h   instanceHandle
						sub int32
					}{h, int32(i)})
				}
			}
		}
	}
	for _, d := range due {
		inst := e.instances.Get(d.h)
		if inst == nil || inst.Activity == Deleted {
			continue
		}
		e.runHandler(inst, inst, EvAlarm, d.sub)
	}
}

// integrateMovement applies friction, gravity, then translation, and
// fires other/outside_room for instances that leave the room bounds, per
// spec.md §4.4 step 11.
func (e *Engine) integrateMovement() {
	cur := e.instances.IterByInsertion()
	for {
		h, ok := cur.Next(e.instances)
		if !ok {
			break
		}
		inst := e.instances.Get(h)

		if inst.Friction != 0 {
			mag := inst.Speed.Abs() - inst.Friction
			if mag < 0 {
				mag = 0
			}
			if inst.Speed < 0 {
				inst.Speed = -mag
			} else {
				inst.Speed = mag
			}
			hx := DegToRad(inst.Direction).Cos() * inst.Speed
			hy := -DegToRad(inst.Direction).Sin() * inst.Speed
			inst.HSpeed = hx
			inst.VSpeed = hy
		}

		if inst.Gravity != 0 {
			gx := DegToRad(inst.GravityDir).Cos() * inst.Gravity
			gy := -DegToRad(inst.GravityDir).Sin() * inst.Gravity
			inst.HSpeed += gx
			inst.VSpeed -= gy
		}

		inst.X += inst.HSpeed
		inst.Y += inst.VSpeed

		outside := inst.X < 0 || inst.Y < 0 || inst.X > Real(e.roomWidth) || inst.Y > Real(e.roomHeight)
		if outside {
			obj, ok := e.assets.Objects.Get(int32(inst.Object))
			if ok {
				if _, has := e.assets.HandlerFor(obj, EvOther, int32(OtherOutsideRoom)); has {
					e.runHandler(inst, inst, EvOther, int32(OtherOutsideRoom))
				}
			}
		}
	}
}

// dispatchCollisions walks the collision table's ordered object pairs
// (A <= B) and every live instance pair within them, invoking both sides'
// handlers on a hit, per spec.md §4.4 step 12. A SpatialGrid broad phase
// (SPEC_FULL.md §4.6) is rebuilt once per call from every live instance's
// refreshed bounding box so each pair's narrow-phase walk only visits
// candidates sharing or neighboring a grid cell, instead of the full
// identity-set cross product.
func (e *Engine) dispatchCollisions() {
	subCodes := e.holder.SubCodes(EvCollision)
	if len(subCodes) == 0 {
		return
	}
	grid := e.buildCollisionGrid()
	for _, subA := range subCodes {
		subsB := e.holder.Subscribers(EvCollision, subA)
		objA, okA := e.assets.Objects.Get(subA)
		if !okA {
			continue
		}
		for _, bID := range subsB {
			objB, okB := e.assets.Objects.Get(int32(bID))
			if !okB {
				continue
			}
			e.dispatchCollisionPair(grid, objA, objB)
		}
	}
}

// buildCollisionGrid populates a SpatialGrid from every live instance's
// current bounding box, covering the room bounds with a fixed cell size.
func (e *Engine) buildCollisionGrid() *SpatialGrid {
	grid := NewSpatialGrid(0, 0, Real(e.roomWidth), Real(e.roomHeight), 128)
	cur := e.instances.IterByInsertion()
	for {
		h, ok := cur.Next(e.instances)
		if !ok {
			break
		}
		inst := e.instances.Get(h)
		inst.RefreshBoundingBox(e.assets)
		grid.Insert(h, inst.BoundingBox())
	}
	return grid
}

func (e *Engine) dispatchCollisionPair(grid *SpatialGrid, objA, objB *Object) {
	idB := objB.IdentitySet()
	curA := e.instances.IterByIdentity(objA.IdentitySet())
	for {
		ha, ok := curA.Next(e.instances)
		if !ok {
			break
		}
		instA := e.instances.Get(ha)
		if instA == nil || instA.Activity == Deleted {
			continue
		}
		for _, hb := range e.collisionCandidates(grid, instA, ha, idB) {
			instB := e.instances.Get(hb)
			if instB == nil || instB.Activity == Deleted {
				continue
			}
			if !CheckCollision(instA, instB, e.assets, true) {
				continue
			}
			e.runHandler(instA, instB, EvCollision, int32(instB.Object))
			// either side may have been deleted by the first handler;
			// the pair-walk still runs both sides once started, per
			// spec.md §9 — skip a side that vanished mid-pair.
			if e.instances.Get(ha) == nil || instA.Activity == Deleted {
				continue
			}
			if e.instances.Get(hb) == nil || instB.Activity == Deleted {
				continue
			}
			e.runHandler(instB, instA, EvCollision, int32(instA.Object))
		}
	}
}

// collisionCandidates queries the broad-phase grid around instA, filters
// to handles whose object is a member of idB, dedups, and sorts by
// insertion order — restoring the deterministic insertion-order walk that
// a plain IterByIdentity(idB) scan would have produced, since Query's
// cell-bucket order is not itself meaningful.
func (e *Engine) collisionCandidates(grid *SpatialGrid, instA *Instance, ha instanceHandle, idB map[ObjectID]bool) []instanceHandle {
	var out []instanceHandle
	seen := make(map[instanceHandle]bool)
	for _, hb := range grid.Query(instA.BoundingBox()) {
		if hb == ha || seen[hb] {
			continue
		}
		instB := e.instances.Get(hb)
		if instB == nil || instB.Activity == Deleted || !idB[instB.Object] {
			continue
		}
		seen[hb] = true
		out = append(out, hb)
	}
	sort.Slice(out, func(i, j int) bool {
		return e.instances.Get(out[i]).seq < e.instances.Get(out[j]).seq
	})
	return out
}

// scrollBackgrounds advances each room background layer by its
// configured scroll speed, per spec.md §4.4 step 17.
func (e *Engine) scrollBackgrounds() {
	for i := range e.backgrounds {
		bg := &e.backgrounds[i]
		bg.X += bg.HSpeed
		bg.Y += bg.VSpeed
	}
}

// advanceAnimations advances image_index by image_speed and fires
// other/animation_end on wrap, per spec.md §4.4 step 18.
func (e *Engine) advanceAnimations() {
	cur := e.instances.IterByInsertion()
	for {
		h, ok := cur.Next(e.instances)
		if !ok {
			break
		}
		inst := e.instances.Get(h)
		spr, ok := e.assets.Sprites.Get(int32(inst.SpriteIndex))
		if !ok || spr.FrameCount <= 0 || inst.ImageSpeed == 0 {
			continue
		}
		n := Real(spr.FrameCount)
		next := inst.ImageIndex + inst.ImageSpeed
		wrapped := next >= n || next < 0
		if next >= n {
			next -= n
		} else if next < 0 {
			next += n
		}
		inst.ImageIndex = next
		if wrapped {
			obj, ok := e.assets.Objects.Get(int32(inst.Object))
			if ok {
				if _, has := e.assets.HandlerFor(obj, EvOther, int32(OtherAnimationEnd)); has {
					e.runHandler(inst, inst, EvOther, int32(OtherAnimationEnd))
				}
			}
		}
	}
}
