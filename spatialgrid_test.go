package vmcore

import "testing"

// TestSpatialGridQueryFindsInsertedHandle is the basic insert/query
// round-trip: a handle inserted at a bbox is found by a query overlapping
// the same region.
func TestSpatialGridQueryFindsInsertedHandle(t *testing.T) {
	g := NewSpatialGrid(0, 0, 256, 256, 32)
	g.Insert(1, Rect{X: 10, Y: 10, Width: 4, Height: 4})

	found := false
	for _, h := range g.Query(Rect{X: 8, Y: 8, Width: 8, Height: 8}) {
		if h == 1 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected query overlapping the inserted bbox to find it")
	}
}

// TestSpatialGridQueryExcludesDistantHandle matches the grid's role as a
// broad-phase filter: a handle far outside the query region is never
// returned.
func TestSpatialGridQueryExcludesDistantHandle(t *testing.T) {
	g := NewSpatialGrid(0, 0, 256, 256, 32)
	g.Insert(1, Rect{X: 200, Y: 200, Width: 4, Height: 4})

	for _, h := range g.Query(Rect{X: 0, Y: 0, Width: 8, Height: 8}) {
		if h == 1 {
			t.Fatal("expected distant handle to be excluded from the query")
		}
	}
}

// TestSpatialGridInsertSpansMultipleCells verifies a bbox straddling a
// cell boundary is discoverable from a query touching either cell.
func TestSpatialGridInsertSpansMultipleCells(t *testing.T) {
	g := NewSpatialGrid(0, 0, 256, 256, 32)
	// bbox straddles the boundary between cell column 0 and column 1.
	g.Insert(1, Rect{X: 30, Y: 30, Width: 8, Height: 8})

	leftCell := false
	for _, h := range g.Query(Rect{X: 0, Y: 0, Width: 4, Height: 4}) {
		if h == 1 {
			leftCell = true
		}
	}
	rightCell := false
	for _, h := range g.Query(Rect{X: 40, Y: 40, Width: 4, Height: 4}) {
		if h == 1 {
			rightCell = true
		}
	}
	if !leftCell || !rightCell {
		t.Fatalf("expected a boundary-straddling insert visible from both neighboring cells, left=%v right=%v", leftCell, rightCell)
	}
}

// TestSpatialGridClearEmptiesCells matches Clear's per-frame-rebuild
// contract: after Clear, no previously inserted handle is found.
func TestSpatialGridClearEmptiesCells(t *testing.T) {
	g := NewSpatialGrid(0, 0, 256, 256, 32)
	g.Insert(1, Rect{X: 10, Y: 10, Width: 4, Height: 4})
	g.Clear()

	if got := g.Query(Rect{X: 0, Y: 0, Width: 256, Height: 256}); len(got) != 0 {
		t.Fatalf("expected no handles after Clear, got %v", got)
	}
}

// TestSpatialGridQueryBeyondBoundsClampsToEdgeCell matches cellCoord's
// out-of-range clamping: a query far outside the grid's covered area still
// resolves to the nearest edge cell rather than panicking.
func TestSpatialGridQueryBeyondBoundsClampsToEdgeCell(t *testing.T) {
	g := NewSpatialGrid(0, 0, 64, 64, 32)
	g.Insert(1, Rect{X: 60, Y: 60, Width: 2, Height: 2})

	found := false
	for _, h := range g.Query(Rect{X: 1000, Y: 1000, Width: 4, Height: 4}) {
		if h == 1 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an out-of-bounds query to clamp to the grid's edge cell and still find the handle there")
	}
}
