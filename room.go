package vmcore

import (
	"sort"

	"github.com/northlake/vmcore/render"
	"github.com/northlake/vmcore/scripting"
)

// loadRoomByIndex loads order[idx] as the current room. Used both for the
// engine's initial room (idx 0) and for QueueRestart.
func (e *Engine) loadRoomByIndex(order []RoomID, idx int) error {
	if idx < 0 || idx >= len(order) {
		return &LoadError{Message: "room order index out of range"}
	}
	e.roomOrderIdx = idx
	return e.enterRoom(order[idx])
}

// enterRoom carries persistent instances across a transition into room id,
// per spec.md §3's persistence invariant and §8 scenario 6: persistent
// instances survive with full state and are re-prepended to the new
// instance list in original insertion order; non-persistent instances and
// all tiles are discarded; the new room's spawn list follows.
func (e *Engine) enterRoom(id RoomID) error {
	room, ok := e.assets.Rooms.Get(int32(id))
	if !ok {
		return &LoadError{Message: "room not found"}
	}

	var persistent []instanceHandle
	for _, h := range e.instances.All() {
		inst := e.instances.Get(h)
		if inst != nil && inst.Persistent {
			persistent = append(persistent, h)
		}
	}
	e.instances.RemoveWith(func(inst *Instance) bool { return !inst.Persistent })

	e.tiles.Clear()

	e.room = id
	e.roomWidth = room.Width
	e.roomHeight = room.Height
	e.roomSpeed = room.Speed
	e.clearColor = room.ClearColor
	e.views = append([]RoomView(nil), room.Views...)
	e.viewsOn = room.ViewsEnabled
	e.backgrounds = append([]RoomBackgroundLayer(nil), room.Backgrounds...)

	for _, rt := range room.Tiles {
		e.tiles.Insert(rt)
	}

	for _, spawn := range room.Spawns {
		e.spawnInstance(spawn)
	}

	if len(persistent) > 0 {
		e.instances.PrependPersistent(persistent)
	}

	if room.CreationCode != nil {
		dummy := e.instances.InsertDummy(&Object{ID: -1})
		ctx := scripting.NewContext(-1, -1, int32(EvCreate), 0)
		if err := e.deps.Interpreter.Execute(room.CreationCode, ctx); err != nil {
			e.recordScriptError(EvCreate, 0, -1, err)
		}
		e.instances.RemoveDummy(dummy)
	}
	return nil
}

// spawnInstance inserts one room spawn-list entry, runs its creation-code
// (if any), then dispatches the Create event, per the instance lifecycle
// in spec.md §3.
func (e *Engine) spawnInstance(rs RoomInstance) instanceHandle {
	obj, ok := e.assets.Objects.Get(int32(rs.Object))
	if !ok {
		return 0
	}
	h := e.instances.Insert(obj, rs.X, rs.Y)
	inst := e.instances.Get(h)
	if rs.CreationCode != nil {
		ctx := scripting.NewContext(int64(h), int64(h), int32(EvCreate), 0)
		if err := e.deps.Interpreter.Execute(rs.CreationCode, ctx); err != nil {
			e.recordScriptError(EvCreate, 0, inst.id, err)
		}
	}
	e.runHandler(inst, inst, EvCreate, 0)
	return h
}

// Spawn creates a new instance of obj at (x, y) outside of room load —
// the script-triggered spawn path named in spec.md §3's instance
// lifecycle. Returns the new instance's script-visible ID.
func (e *Engine) Spawn(objID ObjectID, x, y Real) (InstanceID, error) {
	obj, ok := e.assets.Objects.Get(int32(objID))
	if !ok {
		return 0, &AssetReferenceError{Kind: "object", ID: int32(objID)}
	}
	h := e.instances.Insert(obj, x, y)
	inst := e.instances.Get(h)
	e.runHandler(inst, inst, EvCreate, 0)
	return inst.id, nil
}

// Destroy marks the instance Deleted (physically removed at end of frame,
// per spec.md §3) and dispatches its Destroy event first.
func (e *Engine) Destroy(id InstanceID) {
	h, ok := e.instances.GetByInstID(id)
	if !ok {
		return
	}
	inst := e.instances.Get(h)
	if inst == nil || inst.Activity == Deleted {
		return
	}
	e.runHandler(inst, inst, EvDestroy, 0)
	inst.Activity = Deleted
}

// processSceneChange applies a pending scene change at a pipeline
// checkpoint (spec.md §5). A queued room change runs the transition to
// completion first if one is playing; the room swap itself is immediate
// once the transition (if any) finishes.
func (e *Engine) processSceneChange() error {
	req := e.sceneChange
	if e.transition != nil && !e.transition.Done() {
		e.transition.Advance()
		if !e.transition.Done() {
			return nil // still fading; keep the change pending
		}
	}
	e.sceneChange = nil
	e.transition = nil

	switch req.kind {
	case sceneRoomChange:
		return e.enterRoom(req.room)
	case sceneRestart:
		order := e.cfg.RoomOrder
		if len(order) == 0 {
			order = e.assets.RoomOrder
		}
		e.instances.RemoveWith(func(*Instance) bool { return true })
		e.rng.SetSeed(e.cfg.InitialSeed)
		return e.loadRoomByIndex(order, 0)
	case sceneEnd:
		return ErrGameEnded
	}
	return nil
}

// drawRecord is one depth-sorted entry in the merged tile+instance draw
// list, per spec.md §4.4 step 16 ("tiles + instances interleaved by
// depth").
type drawRecord struct {
	depth int32
	seq   int64
	inst  *Instance
	tile  *Tile
}

// drawPipeline issues one frame's draw calls: room backgrounds, then
// tiles and instances interleaved by depth, then foreground layers, per
// spec.md §4.4 step 16. UI elements are a renderer-side concern this core
// does not model.
func (e *Engine) drawPipeline() {
	r := e.deps.Renderer
	if r == nil {
		return
	}

	for _, bg := range e.backgrounds {
		if !bg.Visible || bg.Foreground {
			continue
		}
		e.drawBackgroundLayer(bg)
	}

	var records []drawRecord
	for _, h := range e.instances.All() {
		inst := e.instances.Get(h)
		if inst == nil || !inst.Visible || inst.Activity == Deleted {
			continue
		}
		records = append(records, drawRecord{depth: inst.Depth, seq: inst.seq, inst: inst})
	}
	for _, h := range e.tiles.All() {
		t := e.tiles.Get(h)
		if t == nil || !t.Visible {
			continue
		}
		records = append(records, drawRecord{depth: t.Depth, seq: t.seq, tile: t})
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].depth != records[j].depth {
			return records[i].depth > records[j].depth
		}
		return records[i].seq < records[j].seq
	})
	for _, rec := range records {
		if rec.inst != nil {
			e.drawInstance(rec.inst)
		} else {
			e.drawTile(rec.tile)
		}
	}

	for _, bg := range e.backgrounds {
		if !bg.Visible || !bg.Foreground {
			continue
		}
		e.drawBackgroundLayer(bg)
	}
}

func (e *Engine) drawBackgroundLayer(bg RoomBackgroundLayer) {
	back, ok := e.assets.Backgrounds.Get(int32(bg.Background))
	if !ok {
		return
	}
	var w, h *int
	if bg.Stretch {
		rw, rh := int(e.roomWidth), int(e.roomHeight)
		w, h = &rw, &rh
	}
	e.deps.Renderer.DrawSpriteTiled(back.Ref, float64(bg.X), float64(bg.Y), 1, 1, render.BlendNormal, 1, w, h)
}

func (e *Engine) drawInstance(inst *Instance) {
	spr, ok := e.assets.Sprites.Get(int32(inst.SpriteIndex))
	if !ok || len(spr.Frames) == 0 {
		return
	}
	idx := inst.ImageIndex.Floor() % int32(len(spr.Frames))
	if idx < 0 {
		idx += int32(len(spr.Frames))
	}
	alpha := inst.ImageAlpha.Float64()
	angle := DegToRad(inst.ImageAngle).Float64()
	blend := render.BlendNormal
	e.deps.Renderer.DrawSprite(spr.Frames[idx], inst.X.Float64(), inst.Y.Float64(),
		inst.ImageXScale.Float64(), inst.ImageYScale.Float64(), angle, blend, alpha)
}

func (e *Engine) drawTile(t *Tile) {
	back, ok := e.assets.Backgrounds.Get(int32(t.Background))
	if !ok {
		return
	}
	e.deps.Renderer.DrawSprite(back.Ref, t.X.Float64(), t.Y.Float64(),
		t.ScaleX.Float64(), t.ScaleY.Float64(), 0, render.BlendNormal, t.Alpha.Float64())
}
