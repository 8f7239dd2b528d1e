package vmcore

import "sort"

// TileList is the depth-sorted, no-behavior counterpart to InstanceList.
// Tiles are simpler: there is no identity-set iteration (tiles have no
// Object), but the same insertion/depth-order split and lazy resort apply.
type TileList struct {
	slots []*Tile
	free  []tileHandle

	insertionOrder []tileHandle
	depthOrder     []tileHandle

	byTileID map[TileID]tileHandle

	nextTileID TileID
	nextSeq    int64
}

// NewTileList creates an empty tile list.
func NewTileList() *TileList {
	return &TileList{byTileID: make(map[TileID]tileHandle)}
}

func (l *TileList) allocHandle() tileHandle {
	if n := len(l.free); n > 0 {
		h := l.free[n-1]
		l.free = l.free[:n-1]
		return h
	}
	h := tileHandle(len(l.slots))
	l.slots = append(l.slots, nil)
	return h
}

// Insert appends a new tile built from rt and returns its handle.
func (l *TileList) Insert(rt RoomTile) tileHandle {
	l.nextTileID++
	h := l.allocHandle()
	t := newTile(l.nextTileID, h, rt)
	l.nextSeq++
	t.seq = l.nextSeq
	l.slots[h] = t
	l.insertionOrder = append(l.insertionOrder, h)
	l.byTileID[t.id] = h
	return h
}

// Get returns the tile at handle, or nil if removed.
func (l *TileList) Get(h tileHandle) *Tile {
	if h < 0 || int(h) >= len(l.slots) {
		return nil
	}
	return l.slots[h]
}

// GetByTileID resolves a script-visible tile ID to its current handle.
func (l *TileList) GetByTileID(id TileID) (tileHandle, bool) {
	h, ok := l.byTileID[id]
	return h, ok
}

// RemoveWith physically removes every tile for which predicate holds.
func (l *TileList) RemoveWith(predicate func(*Tile) bool) {
	removed := false
	for h, t := range l.slots {
		if t == nil || !predicate(t) {
			continue
		}
		delete(l.byTileID, t.id)
		l.slots[h] = nil
		l.free = append(l.free, tileHandle(h))
		removed = true
	}
	if !removed {
		return
	}
	l.insertionOrder = compactTileHandles(l.insertionOrder, l.slots)
	l.depthOrder = compactTileHandles(l.depthOrder, l.slots)
}

func compactTileHandles(order []tileHandle, slots []*Tile) []tileHandle {
	out := order[:0]
	for _, h := range order {
		if int(h) < len(slots) && slots[h] != nil {
			out = append(out, h)
		}
	}
	return out
}

// Clear removes every tile (used on non-persistent room transitions; tiles
// have no persistence flag, they belong entirely to the room).
func (l *TileList) Clear() {
	l.slots = nil
	l.free = nil
	l.insertionOrder = nil
	l.depthOrder = nil
	l.byTileID = make(map[TileID]tileHandle)
}

// NextTileID returns the most recently assigned tile ID; the next insert
// is assigned this value plus one. Used for SaveState round-tripping.
func (l *TileList) NextTileID() TileID { return l.nextTileID }

// Restore replaces the list's contents with freshly allocated handles for
// each snapshot entry, then fast-forwards the ID/sequence counters. See
// InstanceList.Restore for the same rationale regarding handle numbers.
func (l *TileList) Restore(build func(h tileHandle) *Tile, count int, nextID TileID, nextSeq int64) {
	l.slots = make([]*Tile, 0, count)
	l.free = nil
	l.insertionOrder = make([]tileHandle, 0, count)
	l.byTileID = make(map[TileID]tileHandle, count)
	l.depthOrder = nil

	for i := 0; i < count; i++ {
		h := tileHandle(i)
		t := build(h)
		t.handle = h
		l.slots = append(l.slots, t)
		l.insertionOrder = append(l.insertionOrder, h)
		l.byTileID[t.id] = h
	}
	l.nextTileID = nextID
	l.nextSeq = nextSeq
}

// Count returns the number of live (non-removed) tiles.
func (l *TileList) Count() int {
	n := 0
	for _, t := range l.slots {
		if t != nil {
			n++
		}
	}
	return n
}

// All returns every live handle in insertion order.
func (l *TileList) All() []tileHandle {
	var out []tileHandle
	for _, h := range l.insertionOrder {
		if l.Get(h) != nil {
			out = append(out, h)
		}
	}
	return out
}

// TileCursor walks a TileList in insertion or depth order.
type TileCursor struct {
	depth bool
	idx   int
}

// IterByInsertion walks tiles in insertion order.
func (l *TileList) IterByInsertion() *TileCursor { return &TileCursor{} }

// IterByDrawing walks tiles in depth order (higher Depth first), ties
// broken by insertion order.
func (l *TileList) IterByDrawing() *TileCursor {
	l.ensureDepthOrder()
	return &TileCursor{depth: true}
}

func (l *TileList) ensureDepthOrder() {
	order := append([]tileHandle{}, l.insertionOrder...)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := l.slots[order[i]], l.slots[order[j]]
		if a == nil || b == nil {
			return false
		}
		if a.Depth != b.Depth {
			return a.Depth > b.Depth
		}
		return a.seq < b.seq
	})
	l.depthOrder = order
}

// Next advances the cursor and returns the next matching handle.
func (c *TileCursor) Next(l *TileList) (tileHandle, bool) {
	for {
		order := l.insertionOrder
		if c.depth {
			order = l.depthOrder
		}
		if c.idx >= len(order) {
			return 0, false
		}
		h := order[c.idx]
		c.idx++
		if l.Get(h) == nil {
			continue
		}
		return h, true
	}
}
