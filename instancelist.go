package vmcore

import "sort"

// InstanceList is the live-entity container described in spec.md §4.2: two
// parallel index structures (insertion order, depth order) over one set of
// slots, plus a side channel for dummy instances.
type InstanceList struct {
	slots []*Instance // index = handle; nil means removed
	free  []instanceHandle

	insertionOrder []instanceHandle // append-only; dead handles filtered at read time
	depthOrder     []instanceHandle // resorted lazily at the next depth-iteration boundary

	byInstID map[InstanceID]instanceHandle

	dummies []*Instance

	nextInstanceID InstanceID
	nextSeq        int64
}

// NewInstanceList creates an empty list. startID should be the last-used
// instance ID from the loaded package (spec.md §3: IDs strictly increase
// across the session, including across save/load).
func NewInstanceList(startID InstanceID) *InstanceList {
	return &InstanceList{byInstID: make(map[InstanceID]instanceHandle), nextInstanceID: startID}
}

func (l *InstanceList) allocHandle() instanceHandle {
	if n := len(l.free); n > 0 {
		h := l.free[n-1]
		l.free = l.free[:n-1]
		return h
	}
	h := instanceHandle(len(l.slots))
	l.slots = append(l.slots, nil)
	return h
}

// Insert appends a new instance built from obj's defaults at (x, y) and
// returns its handle.
func (l *InstanceList) Insert(obj *Object, x, y Real) instanceHandle {
	l.nextInstanceID++
	h := l.allocHandle()
	inst := newInstance(l.nextInstanceID, h, obj, x, y)
	l.nextSeq++
	inst.seq = l.nextSeq
	l.slots[h] = inst
	l.insertionOrder = append(l.insertionOrder, h)
	l.byInstID[inst.id] = h
	return h
}

// InsertDummy creates a non-iterable synthetic instance for script contexts
// with no natural self (room creation code, constant evaluation). Dummies
// live in their own storage area, never visited by any cursor.
func (l *InstanceList) InsertDummy(obj *Object) *Instance {
	l.nextInstanceID++
	inst := newInstance(l.nextInstanceID, -1, obj, 0, 0)
	l.dummies = append(l.dummies, inst)
	return inst
}

// RemoveDummy drops a dummy instance immediately after its evaluation
// completes.
func (l *InstanceList) RemoveDummy(inst *Instance) {
	for i, d := range l.dummies {
		if d == inst {
			l.dummies = append(l.dummies[:i], l.dummies[i+1:]...)
			return
		}
	}
}

// Get returns the instance at handle, or nil if it has been removed.
func (l *InstanceList) Get(h instanceHandle) *Instance {
	if h < 0 || int(h) >= len(l.slots) {
		return nil
	}
	return l.slots[h]
}

// GetByInstID resolves a script-visible instance ID to its current handle.
func (l *InstanceList) GetByInstID(id InstanceID) (instanceHandle, bool) {
	h, ok := l.byInstID[id]
	return h, ok
}

// RemoveWith physically removes every instance for which predicate holds,
// compacting the insertion/depth order slices. Stable: relative order of
// surviving instances is preserved.
func (l *InstanceList) RemoveWith(predicate func(*Instance) bool) {
	removed := false
	for h, inst := range l.slots {
		if inst == nil || !predicate(inst) {
			continue
		}
		delete(l.byInstID, inst.id)
		l.slots[h] = nil
		l.free = append(l.free, instanceHandle(h))
		removed = true
	}
	if !removed {
		return
	}
	l.insertionOrder = compactHandles(l.insertionOrder, l.slots)
	l.depthOrder = compactHandles(l.depthOrder, l.slots)
}

func compactHandles(order []instanceHandle, slots []*Instance) []instanceHandle {
	out := order[:0]
	for _, h := range order {
		if int(h) < len(slots) && slots[h] != nil {
			out = append(out, h)
		}
	}
	return out
}

// PrependPersistent re-inserts persistent instances carried over a room
// transition at the head of the insertion order, in their original
// insertion order, per spec.md §3's persistence invariant. Used by the room
// transition logic; handles passed in must already exist in l.slots.
func (l *InstanceList) PrependPersistent(handles []instanceHandle) {
	rest := make([]instanceHandle, 0, len(l.insertionOrder))
	carried := make(map[instanceHandle]bool, len(handles))
	for _, h := range handles {
		carried[h] = true
	}
	for _, h := range l.insertionOrder {
		if !carried[h] {
			rest = append(rest, h)
		}
	}
	l.insertionOrder = append(append([]instanceHandle{}, handles...), rest...)
	l.depthOrder = nil // force a full resort on next depth iteration
}

// cursorMode selects which order an InstanceCursor walks.
type cursorMode uint8

const (
	cursorInsertion cursorMode = iota
	cursorDepth
	cursorIdentity
)

// InstanceCursor iterates a snapshot-free view over InstanceList: appended
// instances become visible iff inserted after the cursor's current
// position, and a handle observed then deleted is simply skipped on later
// calls without ever invalidating handles already yielded.
type InstanceCursor struct {
	mode     cursorMode
	idx      int
	identity map[ObjectID]bool
}

// IterByInsertion walks instances in insertion order.
func (l *InstanceList) IterByInsertion() *InstanceCursor {
	return &InstanceCursor{mode: cursorInsertion}
}

// IterByDrawing walks instances in depth order: lower Depth drawn later
// (so higher Depth is visited first), ties broken by insertion order.
func (l *InstanceList) IterByDrawing() *InstanceCursor {
	l.ensureDepthOrder()
	return &InstanceCursor{mode: cursorDepth}
}

// IterByIdentity walks live instances whose Object is a member of ids, in
// insertion order.
func (l *InstanceList) IterByIdentity(ids map[ObjectID]bool) *InstanceCursor {
	return &InstanceCursor{mode: cursorIdentity, identity: ids}
}

func (l *InstanceList) ensureDepthOrder() {
	order := append([]instanceHandle{}, l.insertionOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := l.slots[order[i]], l.slots[order[j]]
		if a == nil || b == nil {
			return false
		}
		if a.Depth != b.Depth {
			return a.Depth > b.Depth // higher depth first ("lower depth drawn later")
		}
		return a.seq < b.seq
	})
	l.depthOrder = order
}

// Next advances the cursor and returns the next matching handle, or
// (0, false) when exhausted.
func (c *InstanceCursor) Next(l *InstanceList) (instanceHandle, bool) {
	for {
		var order []instanceHandle
		switch c.mode {
		case cursorDepth:
			order = l.depthOrder
		default:
			order = l.insertionOrder
		}
		if c.idx >= len(order) {
			return 0, false
		}
		h := order[c.idx]
		c.idx++
		inst := l.Get(h)
		if inst == nil || inst.Activity == Deleted {
			continue
		}
		if c.mode == cursorIdentity && !c.identity[inst.Object] {
			continue
		}
		return h, true
	}
}

// Count returns the number of live (non-removed, non-Deleted) instances.
func (l *InstanceList) Count() int {
	n := 0
	for _, inst := range l.slots {
		if inst != nil && inst.Activity != Deleted {
			n++
		}
	}
	return n
}

// All returns every live handle in insertion order. Convenience for
// snapshotting; not used on the hot path.
func (l *InstanceList) All() []instanceHandle {
	var out []instanceHandle
	for _, h := range l.insertionOrder {
		if l.Get(h) != nil {
			out = append(out, h)
		}
	}
	return out
}

// NextInstanceID returns the most recently assigned instance ID (live or
// dummy); the next insert is assigned this value plus one. Used by SaveState to preserve strict ID
// monotonicity across a save/load boundary.
func (l *InstanceList) NextInstanceID() InstanceID { return l.nextInstanceID }

// Restore replaces the list's contents with freshly allocated handles for
// each snapshot entry, in the given insertion order, then fast-forwards the
// ID/sequence counters so future inserts continue exactly where the saved
// session left off. Handle numbers are not preserved across a restore —
// they are never script-visible, only instance IDs and insertion order are
// (spec.md §4.8's round-trip invariant concerns observable state only).
func (l *InstanceList) Restore(build func(h instanceHandle) *Instance, count int, nextID InstanceID, nextSeq int64) {
	l.slots = make([]*Instance, 0, count)
	l.free = nil
	l.insertionOrder = make([]instanceHandle, 0, count)
	l.byInstID = make(map[InstanceID]instanceHandle, count)
	l.depthOrder = nil
	l.dummies = nil

	for i := 0; i < count; i++ {
		h := instanceHandle(i)
		inst := build(h)
		inst.handle = h
		l.slots = append(l.slots, inst)
		l.insertionOrder = append(l.insertionOrder, h)
		l.byInstID[inst.id] = h
	}
	l.nextInstanceID = nextID
	l.nextSeq = nextSeq
}
