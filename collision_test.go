package vmcore

import (
	"testing"

	"github.com/northlake/vmcore/render"
)

// solidCollider builds a collider where every pixel in [0,w)x[0,h) is set.
func solidCollider(w, h int32) *Collider {
	mask := make([]bool, w*h)
	for i := range mask {
		mask[i] = true
	}
	return &Collider{Width: w, Height: h, Left: 0, Top: 0, Right: w - 1, Bottom: h - 1, Mask: mask}
}

func spriteAssets(w, h int32) *GameAssets {
	a := NewGameAssets(1, 0, 0, 0, 1, 0, 0, 0)
	a.Sprites.Set(0, &Sprite{
		Width: w, Height: h,
		Frames:    []render.AtlasRef{0},
		Colliders: []*Collider{solidCollider(w, h)},
	})
	obj := &Object{ID: 0, Sprite: 0, Mask: -1, Parent: -1}
	for c := range obj.Events {
		obj.Events[c] = HandlerMap{}
	}
	a.SetObject(obj)
	a.RebuildIdentitySets()
	return a
}

func newTestInstance(x, y Real) *Instance {
	return &Instance{
		X: x, Y: y,
		SpriteIndex: 0, MaskIndex: -1,
		ImageXScale: 1, ImageYScale: 1,
	}
}

func TestCheckCollisionOverlapping(t *testing.T) {
	a := spriteAssets(16, 16)
	i1 := newTestInstance(0, 0)
	i2 := newTestInstance(8, 8)
	if !CheckCollision(i1, i2, a, true) {
		t.Fatal("expected overlapping instances to collide")
	}
	if !CheckCollision(i2, i1, a, true) {
		t.Fatal("expected collision to be symmetric")
	}
}

func TestCheckCollisionNonOverlapping(t *testing.T) {
	a := spriteAssets(16, 16)
	i1 := newTestInstance(0, 0)
	i2 := newTestInstance(100, 100)
	if CheckCollision(i1, i2, a, true) {
		t.Fatal("expected distant instances not to collide")
	}
	if CheckCollision(i1, i2, a, false) {
		t.Fatal("expected AABB-only check to agree for distant instances")
	}
}

func TestCheckCollisionNonPreciseUsesAABBOnly(t *testing.T) {
	a := spriteAssets(16, 16)
	i1 := newTestInstance(0, 0)
	i2 := newTestInstance(15, 15)
	if !CheckCollision(i1, i2, a, false) {
		t.Fatal("expected AABB overlap to report a hit without precise masks")
	}
}

func TestCheckCollisionPoint(t *testing.T) {
	a := spriteAssets(16, 16)
	inst := newTestInstance(0, 0)
	if !CheckCollisionPoint(inst, 8, 8, a, true) {
		t.Fatal("expected point inside mask to hit")
	}
	if CheckCollisionPoint(inst, 100, 100, a, true) {
		t.Fatal("expected far point to miss")
	}
}

func TestCheckCollisionRect(t *testing.T) {
	a := spriteAssets(16, 16)
	inst := newTestInstance(0, 0)
	if !CheckCollisionRect(inst, Rect{X: 10, Y: 10, Width: 4, Height: 4}, a, true) {
		t.Fatal("expected overlapping rect to hit")
	}
	if CheckCollisionRect(inst, Rect{X: 100, Y: 100, Width: 4, Height: 4}, a, true) {
		t.Fatal("expected distant rect to miss")
	}
}

func TestCheckCollisionEllipse(t *testing.T) {
	a := spriteAssets(16, 16)
	inst := newTestInstance(0, 0)
	if !CheckCollisionEllipse(inst, 8, 8, 4, 4, a, true) {
		t.Fatal("expected ellipse centered on mask to hit")
	}
	if CheckCollisionEllipse(inst, 200, 200, 4, 4, a, true) {
		t.Fatal("expected distant ellipse to miss")
	}
}

func TestCheckCollisionLine(t *testing.T) {
	a := spriteAssets(16, 16)
	inst := newTestInstance(0, 0)
	if !CheckCollisionLine(inst, -10, 8, 10, 8, a, true) {
		t.Fatal("expected line through mask to hit")
	}
	if CheckCollisionLine(inst, -10, 200, 10, 200, a, true) {
		t.Fatal("expected line far from mask to miss")
	}
}

func TestCheckCollisionNoMaskReturnsFalseWhenPrecise(t *testing.T) {
	a := NewGameAssets(0, 0, 0, 0, 1, 0, 0, 0)
	obj := &Object{ID: 0, Sprite: -1, Mask: -1, Parent: -1}
	for c := range obj.Events {
		obj.Events[c] = HandlerMap{}
	}
	a.SetObject(obj)
	a.RebuildIdentitySets()

	inst := newTestInstance(0, 0)
	inst.SpriteIndex = -1
	other := newTestInstance(0, 0)
	other.SpriteIndex = -1
	if CheckCollision(inst, other, a, true) {
		t.Fatal("expected maskless instances to report no precise collision")
	}
}

// TestSpatialGridAgreesWithBruteForce cross-checks the broad-phase grid
// against a direct O(n^2) AABB scan: the grid must never drop a pair that
// the brute-force scan reports, per SPEC_FULL.md §4.6.
func TestSpatialGridAgreesWithBruteForce(t *testing.T) {
	a := spriteAssets(16, 16)
	list := NewInstanceList(0)
	obj, _ := a.Objects.Get(0)
	positions := []Vec2{
		{X: 0, Y: 0}, {X: 8, Y: 8}, {X: 100, Y: 100},
		{X: 200, Y: 0}, {X: 204, Y: 4}, {X: 500, Y: 500},
	}
	var handles []instanceHandle
	for _, p := range positions {
		h := list.Insert(obj, p.X, p.Y)
		handles = append(handles, h)
	}

	brute := make(map[[2]instanceHandle]bool)
	for i := 0; i < len(handles); i++ {
		for j := i + 1; j < len(handles); j++ {
			ii := list.Get(handles[i])
			jj := list.Get(handles[j])
			ii.RefreshBoundingBox(a)
			jj.RefreshBoundingBox(a)
			if ii.BoundingBox().Intersects(jj.BoundingBox()) {
				lo, hi := handles[i], handles[j]
				if lo > hi {
					lo, hi = hi, lo
				}
				brute[[2]instanceHandle{lo, hi}] = true
			}
		}
	}

	grid := NewSpatialGrid(0, 0, 600, 600, 32)
	candidates := CollisionBroadphase(grid, list, a, handles)
	candidateSet := make(map[[2]instanceHandle]bool, len(candidates))
	for _, c := range candidates {
		candidateSet[c] = true
	}

	for pair := range brute {
		if !candidateSet[pair] {
			t.Fatalf("grid missed true-colliding pair %v present in brute force", pair)
		}
	}
}
