package vmcore

import "testing"

func simpleAssets() *GameAssets {
	a := NewGameAssets(0, 0, 0, 0, 4, 0, 0, 0)
	objs := []*Object{
		{ID: 0, Parent: -1, Mask: -1},
		{ID: 1, Parent: 0, Mask: -1}, // child of 0
		{ID: 2, Parent: -1, Mask: -1},
		{ID: 3, Parent: -1, Mask: -1},
	}
	for _, o := range objs {
		for c := range o.Events {
			o.Events[c] = HandlerMap{}
		}
		a.SetObject(o)
	}
	a.RebuildIdentitySets()
	return a
}

type stubProgram struct{ id int32 }

func (s stubProgram) ProgramID() int32 { return s.id }

func TestEventHolderGenericCategoryFlattensIdentity(t *testing.T) {
	a := simpleAssets()
	obj0, _ := a.Objects.Get(0)
	obj0.Events[EvAlarm][3] = stubProgram{1}

	h := NewEventHolder()
	h.Rebuild(a)

	subs := h.Subscribers(EvAlarm, 3)
	if len(subs) != 2 {
		t.Fatalf("expected object 0 and its child 1 to subscribe, got %v", subs)
	}
	if subs[0] != 0 || subs[1] != 1 {
		t.Fatalf("expected sorted [0 1], got %v", subs)
	}
}

func TestEventHolderSortedNoDuplicates(t *testing.T) {
	a := simpleAssets()
	obj2, _ := a.Objects.Get(2)
	obj3, _ := a.Objects.Get(3)
	obj2.Events[EvStep][0] = stubProgram{1}
	obj3.Events[EvStep][0] = stubProgram{1}

	h := NewEventHolder()
	h.Rebuild(a)
	subs := h.Subscribers(EvStep, 0)
	if len(subs) != 2 || subs[0] != 2 || subs[1] != 3 {
		t.Fatalf("expected [2 3], got %v", subs)
	}
	seen := map[ObjectID]bool{}
	for _, id := range subs {
		if seen[id] {
			t.Fatalf("duplicate subscriber %d", id)
		}
		seen[id] = true
	}
}

func TestEventHolderCollisionSymmetricExpansion(t *testing.T) {
	a := simpleAssets()
	obj2, _ := a.Objects.Get(2)
	obj2.Events[EvCollision][3] = stubProgram{1} // object 2 reacts to colliding with 3

	h := NewEventHolder()
	h.Rebuild(a)

	// Canonical key is the smaller ID (2), subscriber is the larger (3).
	subs := h.Subscribers(EvCollision, 2)
	if len(subs) != 1 || subs[0] != 3 {
		t.Fatalf("expected collision pair (2,3) keyed at 2, got %v", subs)
	}
	if got := h.Subscribers(EvCollision, 3); got != nil {
		t.Fatalf("expected no entry at key 3 (would double-count), got %v", got)
	}
}

func TestEventHolderCollisionIdentityFlattening(t *testing.T) {
	a := simpleAssets()
	obj2, _ := a.Objects.Get(2)
	// object 2 collides with object 0; object 0's child (1) must also be
	// paired with 2 via identity flattening.
	obj2.Events[EvCollision][0] = stubProgram{1}

	h := NewEventHolder()
	h.Rebuild(a)

	subs := h.Subscribers(EvCollision, 0)
	if len(subs) != 1 || subs[0] != 2 {
		t.Fatalf("expected pair (0,2), got %v", subs)
	}
	subs1 := h.Subscribers(EvCollision, 1)
	if len(subs1) != 1 || subs1[0] != 2 {
		t.Fatalf("expected child object 1 also paired with 2, got %v", subs1)
	}
}

func TestEventHolderRebuildIdempotent(t *testing.T) {
	a := simpleAssets()
	obj0, _ := a.Objects.Get(0)
	obj0.Events[EvCreate][0] = stubProgram{1}

	h := NewEventHolder()
	h.Rebuild(a)
	first := h.Subscribers(EvCreate, 0)

	h.Rebuild(a)
	second := h.Subscribers(EvCreate, 0)

	if len(first) != len(second) {
		t.Fatalf("rebuild not idempotent: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("rebuild not idempotent at %d: %v vs %v", i, first, second)
		}
	}
}
