package vmcore

import "testing"

func identityInstanceAssets() (*GameAssets, *Object) {
	a := NewGameAssets(0, 0, 0, 0, 1, 0, 0, 0)
	obj := &Object{ID: 0, Sprite: -1, Mask: -1, Parent: -1}
	for c := range obj.Events {
		obj.Events[c] = HandlerMap{}
	}
	a.SetObject(obj)
	a.RebuildIdentitySets()
	return a, obj
}

// TestCursorSeesInsertionsOnlyAfterPosition matches spec.md §4.2: cursors
// must tolerate concurrent insertions, where a newly inserted instance
// becomes visible iff inserted after the cursor's current position.
func TestCursorSeesInsertionsOnlyAfterPosition(t *testing.T) {
	_, obj := identityInstanceAssets()
	l := NewInstanceList(0)
	h1 := l.Insert(obj, 0, 0)

	cur := l.IterByInsertion()
	got1, ok := cur.Next(l)
	if !ok || got1 != h1 {
		t.Fatalf("expected first yielded handle to be h1")
	}

	// cursor is now exhausted against the length at this point; inserting
	// here must still be visible since it happens before the next Next call
	// advances past the new tail.
	h2 := l.Insert(obj, 1, 1)
	got2, ok := cur.Next(l)
	if !ok || got2 != h2 {
		t.Fatalf("expected a mid-iteration insertion to become visible to the cursor")
	}
	if _, ok := cur.Next(l); ok {
		t.Fatal("expected cursor exhausted after both handles yielded")
	}
}

// TestCursorSkipsDeletedWithoutInvalidatingPriorYields matches spec.md
// §4.2: a handle observed then deleted must not be yielded again, and
// deletions never invalidate previously yielded handles.
func TestCursorSkipsDeletedWithoutInvalidatingPriorYields(t *testing.T) {
	_, obj := identityInstanceAssets()
	l := NewInstanceList(0)
	h1 := l.Insert(obj, 0, 0)
	h2 := l.Insert(obj, 1, 1)
	h3 := l.Insert(obj, 2, 2)

	cur := l.IterByInsertion()
	got1, _ := cur.Next(l)
	if got1 != h1 {
		t.Fatalf("expected h1 first")
	}

	// delete h2 before the cursor reaches it.
	l.Get(h2).Activity = Deleted
	l.RemoveWith(func(inst *Instance) bool { return inst.Activity == Deleted })

	got3, ok := cur.Next(l)
	if !ok || got3 != h3 {
		t.Fatalf("expected deleted h2 skipped, landing on h3; got %v ok=%v", got3, ok)
	}
	if _, ok := cur.Next(l); ok {
		t.Fatal("expected cursor exhausted")
	}
}

// TestIdentityIterationFiltersByObjectSet verifies IterByIdentity only
// yields instances whose object is a member of the given identity set.
func TestIdentityIterationFiltersByObjectSet(t *testing.T) {
	a := NewGameAssets(0, 0, 0, 0, 2, 0, 0, 0)
	parent := &Object{ID: 0, Sprite: -1, Mask: -1, Parent: -1}
	child := &Object{ID: 1, Sprite: -1, Mask: -1, Parent: 0}
	for c := range parent.Events {
		parent.Events[c] = HandlerMap{}
	}
	for c := range child.Events {
		child.Events[c] = HandlerMap{}
	}
	a.SetObject(parent)
	a.SetObject(child)
	a.RebuildIdentitySets()

	l := NewInstanceList(0)
	hParent := l.Insert(parent, 0, 0)
	hChild := l.Insert(child, 1, 1)

	cur := l.IterByIdentity(parent.IdentitySet())
	var got []instanceHandle
	for {
		h, ok := cur.Next(l)
		if !ok {
			break
		}
		got = append(got, h)
	}
	if len(got) != 2 || got[0] != hParent || got[1] != hChild {
		t.Fatalf("expected parent's identity set to include both parent and child instances, got %v", got)
	}
}

// TestDepthOrderTiesBreakByInsertion matches spec.md §4.2: ties in depth
// are broken by insertion order, and higher depth is visited first
// ("lower depth drawn later").
func TestDepthOrderTiesBreakByInsertion(t *testing.T) {
	_, obj := identityInstanceAssets()
	l := NewInstanceList(0)
	hLow := l.Insert(obj, 0, 0)
	hHigh := l.Insert(obj, 0, 0)
	hTieFirst := l.Insert(obj, 0, 0)
	hTieSecond := l.Insert(obj, 0, 0)

	l.Get(hLow).Depth = 0
	l.Get(hHigh).Depth = 10
	l.Get(hTieFirst).Depth = 5
	l.Get(hTieSecond).Depth = 5

	cur := l.IterByDrawing()
	var order []instanceHandle
	for {
		h, ok := cur.Next(l)
		if !ok {
			break
		}
		order = append(order, h)
	}
	want := []instanceHandle{hHigh, hTieFirst, hTieSecond, hLow}
	if len(order) != len(want) {
		t.Fatalf("depth order length = %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("depth order[%d] = %v, want %v (full: %v)", i, order[i], want[i], order)
		}
	}
}
