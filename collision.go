package vmcore

// maskInfo bundles the collider and the sprite origin it was packed
// relative to.
type maskInfo struct {
	collider *Collider
	originX  Real
	originY  Real
}

func instanceMaskInfo(inst *Instance, assets *GameAssets) (maskInfo, bool) {
	col := inst.maskCollider(assets)
	if col == nil {
		return maskInfo{}, false
	}
	maskSprite := inst.MaskIndex
	if maskSprite < 0 {
		maskSprite = inst.SpriteIndex
	}
	spr, ok := assets.Sprites.Get(int32(maskSprite))
	if !ok {
		return maskInfo{}, false
	}
	return maskInfo{collider: col, originX: Real(spr.OriginX), originY: Real(spr.OriginY)}, true
}

// worldToLocalPixel inverse-transforms a world coordinate into the mask's
// local pixel space per spec.md §4.6 step 4: subtract position, rotate by
// -image_angle, scale by 1/xscale, 1/yscale, add the sprite origin, then
// floor to integers (truncation toward zero at sub-pixel sampling, per
// spec.md §4.1 — floor is used here to match the "floor (not round)"
// instruction in step 4; see SPEC_FULL.md open-question note on the exact
// mask-lookup rounding rule).
func worldToLocalPixel(inst *Instance, mi maskInfo, wx, wy Real) (int32, int32) {
	dx := wx - inst.X
	dy := wy - inst.Y
	angle := DegToRad(-inst.ImageAngle)
	cosA, sinA := angle.Cos(), angle.Sin()
	rx := dx*cosA - dy*sinA
	ry := dx*sinA + dy*cosA
	if inst.ImageXScale != 0 {
		rx /= inst.ImageXScale
	}
	if inst.ImageYScale != 0 {
		ry /= inst.ImageYScale
	}
	lx := rx + mi.originX
	ly := ry + mi.originY
	return lx.Floor(), ly.Floor()
}

func maskHit(inst *Instance, mi maskInfo, wx, wy Real) bool {
	px, py := worldToLocalPixel(inst, mi, wx, wy)
	return mi.collider.At(px, py)
}

// CheckCollision is the instance-vs-instance predicate. It is symmetric:
// CheckCollision(a, b, ...) == CheckCollision(b, a, ...) for all valid
// a != b, as required by spec.md §8 invariant 5.
func CheckCollision(a, b *Instance, assets *GameAssets, precise bool) bool {
	a.RefreshBoundingBox(assets)
	b.RefreshBoundingBox(assets)
	if !a.BoundingBox().Intersects(b.BoundingBox()) {
		return false
	}
	if !precise {
		return true
	}
	miA, okA := instanceMaskInfo(a, assets)
	miB, okB := instanceMaskInfo(b, assets)
	if !okA || !okB {
		return false
	}
	inter := intersectRect(a.BoundingBox(), b.BoundingBox())
	return scanRect(inter, func(wx, wy Real) bool {
		return maskHit(a, miA, wx, wy) && maskHit(b, miB, wx, wy)
	})
}

// CheckCollisionPoint is the instance-vs-point predicate.
func CheckCollisionPoint(a *Instance, px, py Real, assets *GameAssets, precise bool) bool {
	a.RefreshBoundingBox(assets)
	if !a.BoundingBox().Contains(px, py) {
		return false
	}
	if !precise {
		return true
	}
	mi, ok := instanceMaskInfo(a, assets)
	if !ok {
		return false
	}
	return maskHit(a, mi, px, py)
}

// CheckCollisionRect is the instance-vs-rectangle predicate.
func CheckCollisionRect(a *Instance, rect Rect, assets *GameAssets, precise bool) bool {
	a.RefreshBoundingBox(assets)
	if !a.BoundingBox().Intersects(rect) {
		return false
	}
	if !precise {
		return true
	}
	mi, ok := instanceMaskInfo(a, assets)
	if !ok {
		return false
	}
	inter := intersectRect(a.BoundingBox(), rect)
	return scanRect(inter, func(wx, wy Real) bool {
		return maskHit(a, mi, wx, wy)
	})
}

// CheckCollisionEllipse is the instance-vs-ellipse predicate. The ellipse
// is axis-aligned with center (cx, cy) and radii (rx, ry).
func CheckCollisionEllipse(a *Instance, cx, cy, rx, ry Real, assets *GameAssets, precise bool) bool {
	a.RefreshBoundingBox(assets)
	ellipseBBox := Rect{X: cx - rx, Y: cy - ry, Width: rx * 2, Height: ry * 2}
	if !a.BoundingBox().Intersects(ellipseBBox) {
		return false
	}
	if !precise {
		return true
	}
	mi, ok := instanceMaskInfo(a, assets)
	if !ok {
		return false
	}
	inter := intersectRect(a.BoundingBox(), ellipseBBox)
	return scanRect(inter, func(wx, wy Real) bool {
		nx := (wx - cx) / rx
		ny := (wy - cy) / ry
		if nx*nx+ny*ny > 1 {
			return false
		}
		return maskHit(a, mi, wx, wy)
	})
}

// CheckCollisionLine is the instance-vs-line-segment predicate. Points are
// sampled one per unit along the dominant axis instead of scanning the
// whole AABB, per spec.md §4.6 step 4.
func CheckCollisionLine(a *Instance, x1, y1, x2, y2 Real, assets *GameAssets, precise bool) bool {
	a.RefreshBoundingBox(assets)
	lineBBox := Rect{
		X:      min(x1, x2),
		Y:      min(y1, y2),
		Width:  (max(x1, x2) - min(x1, x2)),
		Height: (max(y1, y2) - min(y1, y2)),
	}
	if !a.BoundingBox().Intersects(lineBBox) {
		return false
	}
	if !precise {
		return true
	}
	mi, ok := instanceMaskInfo(a, assets)
	if !ok {
		return false
	}
	dx := x2 - x1
	dy := y2 - y1
	steps := dx.Abs()
	if dy.Abs() > steps {
		steps = dy.Abs()
	}
	n := steps.Ceil()
	if n < 1 {
		n = 1
	}
	for i := int32(0); i <= n; i++ {
		t := Real(i) / Real(n)
		wx := Lerp(x1, x2, t)
		wy := Lerp(y1, y2, t)
		if maskHit(a, mi, wx, wy) {
			return true
		}
	}
	return false
}

func intersectRect(a, b Rect) Rect {
	x0 := max(a.X, b.X)
	y0 := max(a.Y, b.Y)
	x1 := min(a.X+a.Width, b.X+b.Width)
	y1 := min(a.Y+a.Height, b.Y+b.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// scanRect iterates every integer coordinate in r, calling fn(x, y) until
// it returns true (hit) or the rectangle is exhausted (miss), per
// spec.md §4.6 step 4.
func scanRect(r Rect, fn func(x, y Real) bool) bool {
	x0 := r.X.Floor()
	y0 := r.Y.Floor()
	x1 := (r.X + r.Width).Ceil()
	y1 := (r.Y + r.Height).Ceil()
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if fn(Real(x), Real(y)) {
				return true
			}
		}
	}
	return false
}

// CollisionBroadphase runs the spatial-grid pre-filter ahead of the
// pairwise narrow phase described in spec.md §4.6 (see SPEC_FULL.md §4.6).
// It returns candidate handle pairs that might collide, each ordered lower
// handle first and reported once (callers still run CheckCollision); the
// narrow phase remains the single source of truth for whether a pair
// actually collides.
func CollisionBroadphase(grid *SpatialGrid, list *InstanceList, assets *GameAssets, handles []instanceHandle) [][2]instanceHandle {
	grid.Clear()
	for _, h := range handles {
		inst := list.Get(h)
		if inst == nil {
			continue
		}
		inst.RefreshBoundingBox(assets)
		grid.Insert(h, inst.BoundingBox())
	}

	seen := make(map[[2]instanceHandle]bool)
	var out [][2]instanceHandle
	for _, h := range handles {
		inst := list.Get(h)
		if inst == nil {
			continue
		}
		for _, other := range grid.Query(inst.BoundingBox()) {
			if other == h {
				continue
			}
			lo, hi := h, other
			if lo > hi {
				lo, hi = hi, lo
			}
			key := [2]instanceHandle{lo, hi}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}
