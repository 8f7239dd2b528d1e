package vmcore

// SpatialGrid is a broad-phase acceleration structure ahead of the
// pixel-exact collision narrow phase: fixed-size cells hold the handles of
// instances overlapping them, adapted from the retrieval pack's spatial
// grid idiom (dense index slices rather than pointers, for cache locality
// and low GC pressure). It exists purely as a performance optimization —
// collision.go's brute-force path and the grid-accelerated path must agree
// on every pair (see collision_test.go).
type SpatialGrid struct {
	cellSize    Real
	cols, rows  int
	originX     Real
	originY     Real
	cells       [][]instanceHandle
	scratch     []instanceHandle
}

// NewSpatialGrid builds a grid covering [originX, originX+width) x
// [originY, originY+height) with square cells of the given size.
func NewSpatialGrid(originX, originY, width, height, cellSize Real) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := int(Real(width).Div(cellSize).Ceil())
	rows := int(Real(height).Div(cellSize).Ceil())
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		originX:  originX,
		originY:  originY,
		cells:    make([][]instanceHandle, cols*rows),
	}
}

func (g *SpatialGrid) cellCoord(x, y Real) (int, int) {
	cx := int(((x - g.originX) / g.cellSize).Floor())
	cy := int(((y - g.originY) / g.cellSize).Floor())
	if cx < 0 {
		cx = 0
	}
	if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 {
		cy = 0
	}
	if cy >= g.rows {
		cy = g.rows - 1
	}
	return cx, cy
}

// Clear empties every cell without releasing the backing slices, so the
// grid can be rebuilt once per frame step with minimal allocation.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds handle at the cells its AABB overlaps.
func (g *SpatialGrid) Insert(handle instanceHandle, bbox Rect) {
	minX, minY := g.cellCoord(bbox.X, bbox.Y)
	maxX, maxY := g.cellCoord(bbox.X+bbox.Width, bbox.Y+bbox.Height)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			idx := cy*g.cols + cx
			g.cells[idx] = append(g.cells[idx], handle)
		}
	}
}

// Query returns every handle whose cell overlaps bbox. The result may
// contain duplicates (a handle spanning multiple cells that all overlap
// the query) and is reused across calls — copy it before the next Query if
// the caller retains it.
func (g *SpatialGrid) Query(bbox Rect) []instanceHandle {
	g.scratch = g.scratch[:0]
	minX, minY := g.cellCoord(bbox.X, bbox.Y)
	maxX, maxY := g.cellCoord(bbox.X+bbox.Width, bbox.Y+bbox.Height)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			idx := cy*g.cols + cx
			g.scratch = append(g.scratch, g.cells[idx]...)
		}
	}
	return g.scratch
}
