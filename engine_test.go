package vmcore

import (
	"testing"

	"github.com/northlake/vmcore/render"
	"github.com/northlake/vmcore/scripting"
)

// testProgram is a minimal scripting.Program that records how many times it
// ran via a shared counter map, keyed by an arbitrary label.
type testProgram struct {
	id  int32
	tag string
}

func (p *testProgram) ProgramID() int32 { return p.id }

// countingInterpreter executes every program by bumping its tag's counter;
// it never errors. Grounded on the no-op fixture interpreter pattern
// cmd/vmplay/main.go uses to drive the engine without a real script VM.
type countingInterpreter struct {
	counts map[string]int
}

func newCountingInterpreter() *countingInterpreter {
	return &countingInterpreter{counts: map[string]int{}}
}

func (c *countingInterpreter) Execute(p scripting.Program, ctx *scripting.Context) error {
	if tp, ok := p.(*testProgram); ok {
		c.counts[tp.tag]++
	}
	return nil
}

func (c *countingInterpreter) Eval(e scripting.Expr, ctx *scripting.Context) (scripting.Value, error) {
	return scripting.Value{}, nil
}

// minimalRoomAssets builds a one-room, one-object GameAssets fixture with no
// sprite (so collision/drawing are trivially skipped) for frame-pipeline
// tests that don't need visuals.
func minimalRoomAssets(roomW, roomH int32) *GameAssets {
	a := NewGameAssets(1, 0, 0, 0, 1, 1, 0, 0)
	obj := &Object{ID: 0, Sprite: -1, Mask: -1, Parent: -1}
	for c := range obj.Events {
		obj.Events[c] = HandlerMap{}
	}
	a.SetObject(obj)
	a.RebuildIdentitySets()
	a.Rooms.Set(0, &Room{Width: roomW, Height: roomH, Speed: 30})
	a.RoomOrder = []RoomID{0}
	a.InitialSeed = 1
	return a
}

func newTestEngine(t *testing.T, a *GameAssets, interp scripting.Interpreter) *Engine {
	t.Helper()
	e, err := NewEngine(a, EngineConfig{InitialSeed: 1}, EngineDeps{Interpreter: interp})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// TestFrameAnimationWrapFiresOnce matches spec.md §8 scenario 3: a 3-frame
// sprite with image_speed=1 starting at image_index=2.4 wraps to 0.4 on the
// next frame and fires other/animation_end exactly once.
func TestFrameAnimationWrapFiresOnce(t *testing.T) {
	a := minimalRoomAssets(320, 240)
	obj, _ := a.Objects.Get(0)
	obj.Sprite = 0
	a.Sprites.Set(0, &Sprite{FrameCount: 3, Frames: []render.AtlasRef{0, 1, 2}})
	interp := newCountingInterpreter()
	obj.Events[EvOther][int32(OtherAnimationEnd)] = &testProgram{tag: "anim_end"}
	a.RebuildIdentitySets()

	e := newTestEngine(t, a, interp)
	id, err := e.Spawn(0, 10, 10)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	setImageIndex(e, id, 2.4, 1)

	if err := e.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if got := imageIndexOf(e, id); got.Float64() < 0.39 || got.Float64() > 0.41 {
		t.Fatalf("image_index after wrap = %v, want ~0.4", got)
	}
	if interp.counts["anim_end"] != 1 {
		t.Fatalf("animation_end fired %d times, want 1", interp.counts["anim_end"])
	}
}

func setImageIndex(e *Engine, id InstanceID, idx, speed Real) {
	h, _ := e.instances.GetByInstID(id)
	inst := e.instances.Get(h)
	inst.ImageIndex = idx
	inst.ImageSpeed = speed
}

func imageIndexOf(e *Engine, id InstanceID) Real {
	h, _ := e.instances.GetByInstID(id)
	return e.instances.Get(h).ImageIndex
}

// TestFrameAlarmFiresOnceAtZero matches spec.md §8's "alarm set to 0" boundary
// behavior: setting alarm[0]=0 fires it once on the next tick and transitions
// it to -1 so it does not fire again.
func TestFrameAlarmFiresOnceAtZero(t *testing.T) {
	a := minimalRoomAssets(320, 240)
	obj, _ := a.Objects.Get(0)
	interp := newCountingInterpreter()
	obj.Events[EvAlarm][0] = &testProgram{tag: "alarm0"}
	a.RebuildIdentitySets()

	e := newTestEngine(t, a, interp)
	id, err := e.Spawn(0, 0, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	h, _ := e.instances.GetByInstID(id)
	e.instances.Get(h).Alarms[0] = 0

	if err := e.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if interp.counts["alarm0"] != 1 {
		t.Fatalf("alarm fired %d times, want 1", interp.counts["alarm0"])
	}
	if got := e.instances.Get(h).Alarms[0]; got != -1 {
		t.Fatalf("alarm[0] = %d after firing, want -1", got)
	}
	if err := e.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if interp.counts["alarm0"] != 1 {
		t.Fatalf("alarm fired again after reaching -1: count = %d", interp.counts["alarm0"])
	}
}

// TestRoomTransitionCarriesPersistentInstances matches spec.md §8 scenario
// 6: persistent instances survive a room change with full state and are
// re-prepended in original insertion order; non-persistent instances are
// dropped.
func TestRoomTransitionCarriesPersistentInstances(t *testing.T) {
	a := NewGameAssets(0, 0, 0, 0, 2, 2, 0, 0)
	persistObj := &Object{ID: 0, Sprite: -1, Mask: -1, Parent: -1, Persistent: true}
	plainObj := &Object{ID: 1, Sprite: -1, Mask: -1, Parent: -1}
	for c := range persistObj.Events {
		persistObj.Events[c] = HandlerMap{}
	}
	for c := range plainObj.Events {
		plainObj.Events[c] = HandlerMap{}
	}
	a.SetObject(persistObj)
	a.SetObject(plainObj)
	a.RebuildIdentitySets()
	a.Rooms.Set(0, &Room{Width: 320, Height: 240, Speed: 30})
	a.Rooms.Set(1, &Room{Width: 320, Height: 240, Speed: 30, Spawns: []RoomInstance{{Object: 1, X: 5, Y: 5}}})
	a.RoomOrder = []RoomID{0, 1}
	a.InitialSeed = 1

	interp := newCountingInterpreter()
	e := newTestEngine(t, a, interp)

	persistID, err := e.Spawn(0, 1, 1)
	if err != nil {
		t.Fatalf("spawn persistent: %v", err)
	}
	nonPersistID, err := e.Spawn(1, 2, 2)
	if err != nil {
		t.Fatalf("spawn non-persistent: %v", err)
	}

	e.QueueSceneChange(1)
	if err := e.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	if _, ok := e.instances.GetByInstID(persistID); !ok {
		t.Fatal("persistent instance did not survive the room transition")
	}
	if _, ok := e.instances.GetByInstID(nonPersistID); ok {
		t.Fatal("non-persistent instance survived the room transition")
	}

	all := e.instances.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 instances after transition (1 persistent + 1 spawn), got %d", len(all))
	}
	first := e.instances.Get(all[0])
	if first.ID() != persistID {
		t.Fatalf("persistent instance not prepended first: got id %d, want %d", first.ID(), persistID)
	}
}

// TestFrameAbortsOnQueuedSceneChange verifies the §5/§9 "iterator
// cancellation" contract: once a scene change is queued mid-frame, the
// remaining pipeline steps for that frame do not run.
func TestFrameAbortsOnQueuedSceneChange(t *testing.T) {
	a := minimalRoomAssets(320, 240)
	obj, _ := a.Objects.Get(0)
	interp := newCountingInterpreter()
	// step/middle (dispatched later in the same frame than step/begin)
	// should never fire once step/begin queues the scene change.
	obj.Events[EvStep][int32(StepBegin)] = &sceneQueueingProgram{}
	obj.Events[EvStep][int32(StepMiddle)] = &testProgram{tag: "step_middle"}
	a.RebuildIdentitySets()
	a.Rooms.Set(0, &Room{Width: 320, Height: 240, Speed: 30})

	e := newTestEngine(t, a, &sceneQueueingInterpreter{engine: nil, counting: interp})
	e.deps.Interpreter.(*sceneQueueingInterpreter).engine = e

	if _, err := e.Spawn(0, 0, 0); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := e.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if interp.counts["step_middle"] != 0 {
		t.Fatal("step/middle dispatched after a scene change was queued mid-frame")
	}
	if e.sceneChange == nil {
		t.Fatal("expected scene change still pending for next Frame() to process")
	}
}

// sceneQueueingProgram is a sentinel testProgram whose handler is
// recognized by sceneQueueingInterpreter to trigger QueueSceneChange.
type sceneQueueingProgram struct{}

func (p *sceneQueueingProgram) ProgramID() int32 { return -1 }

type sceneQueueingInterpreter struct {
	engine   *Engine
	counting *countingInterpreter
}

func (s *sceneQueueingInterpreter) Execute(p scripting.Program, ctx *scripting.Context) error {
	if _, ok := p.(*sceneQueueingProgram); ok {
		s.engine.QueueSceneChange(0)
		return nil
	}
	return s.counting.Execute(p, ctx)
}

func (s *sceneQueueingInterpreter) Eval(e scripting.Expr, ctx *scripting.Context) (scripting.Value, error) {
	return scripting.Value{}, nil
}
