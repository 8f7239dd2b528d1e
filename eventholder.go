package vmcore

import "sort"

// subList is one (category, sub-code) slot's subscriber list: the object
// IDs that respond to it, sorted ascending with no duplicates per
// spec.md §8 invariant 2.
type subList []ObjectID

// EventHolder is the twelve ordered mappings from event sub-code to
// subscriber object IDs described in spec.md §4.3. It is rebuilt whenever
// the object set changes (create/destroy object at runtime, parent-link
// change, inherited-event resolution) and is otherwise read-only within a
// frame.
type EventHolder struct {
	tables [eventCategoryCount]map[int32]subList
}

// NewEventHolder creates an empty holder; call Rebuild before use.
func NewEventHolder() *EventHolder {
	h := &EventHolder{}
	for i := range h.tables {
		h.tables[i] = make(map[int32]subList)
	}
	return h
}

// Subscribers returns the sorted subscriber list for (cat, sub), or nil if
// none. Rebuild always installs a brand-new map+slices rather than mutating
// in place, so a range loop holding a reference to an old subList from
// before a mid-frame Rebuild keeps iterating its original snapshot; the
// appended subscribers only become visible the next time a caller fetches
// Subscribers afresh.
func (h *EventHolder) Subscribers(cat EventCategory, sub int32) subList {
	return h.tables[cat][sub]
}

// SubCodes returns every sub-code registered under cat, sorted ascending.
func (h *EventHolder) SubCodes(cat EventCategory) []int32 {
	keys := make([]int32, 0, len(h.tables[cat]))
	for k := range h.tables[cat] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Rebuild recomputes all twelve category tables from assets' current
// object set, per spec.md §4.3. Rebuilding is idempotent: calling it twice
// in a row with no intervening asset change produces byte-identical
// tables.
func (h *EventHolder) Rebuild(assets *GameAssets) {
	var out [eventCategoryCount]map[int32]subList
	n := assets.Objects.Len()

	for cat := EventCategory(0); cat < eventCategoryCount; cat++ {
		if cat == EvCollision {
			continue
		}
		table := make(map[int32]map[ObjectID]bool)
		for i := 0; i < n; i++ {
			obj, ok := assets.Objects.Get(int32(i))
			if !ok {
				continue
			}
			for sub := range obj.Events[cat] {
				addTo(table, sub, obj.identitySet)
			}
		}
		out[cat] = freeze(table)
	}

	// Collision sub-codes are object IDs, not event sub-codes: an entry
	// Events[collision][B] on object A means "A responds when colliding
	// with B". For every raw (A, B) pair, every identity-flattened member
	// of A can collide with every identity-flattened member of B (in
	// either direction — collision dispatch is symmetric per
	// spec.md §4.4 step 12). Each unordered {a, b} pair is stored exactly
	// once, keyed by the smaller object ID, which both implements the
	// spec's "retain subscribers with ID >= source_sub" filter and avoids
	// emitting the same pair twice under two different keys.
	pairs := make(map[int32]map[ObjectID]bool)
	for i := 0; i < n; i++ {
		obj, ok := assets.Objects.Get(int32(i))
		if !ok {
			continue
		}
		for targetID := range obj.Events[EvCollision] {
			target, ok := assets.Objects.Get(targetID)
			if !ok {
				continue
			}
			for a := range obj.identitySet {
				for b := range target.identitySet {
					lo, hi := a, b
					if lo > hi {
						lo, hi = hi, lo
					}
					addTo(pairs, int32(lo), map[ObjectID]bool{hi: true})
				}
			}
		}
	}
	out[EvCollision] = freeze(pairs)

	h.tables = out
}

func addTo(table map[int32]map[ObjectID]bool, sub int32, ids map[ObjectID]bool) {
	set, ok := table[sub]
	if !ok {
		set = make(map[ObjectID]bool)
		table[sub] = set
	}
	for id := range ids {
		set[id] = true
	}
}

func freeze(table map[int32]map[ObjectID]bool) map[int32]subList {
	out := make(map[int32]subList, len(table))
	for sub, set := range table {
		if len(set) == 0 {
			continue
		}
		out[sub] = sortedIDs(set)
	}
	return out
}

func sortedIDs(set map[ObjectID]bool) subList {
	out := make(subList, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
