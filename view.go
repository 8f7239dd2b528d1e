package vmcore

// updateViews moves each enabled, following view toward its target object,
// clamped to at most SpeedX/SpeedY pixels per frame (a negative speed
// snaps immediately), keeping the target within the view's border box.
// Grounded on the teacher's Camera.Follow/clampToBounds pattern, adapted
// from a lerp-based world camera to the original runtime's border-and-speed
// view model (spec.md §3 "view configurations").
func (e *Engine) updateViews() {
	if !e.viewsOn {
		return
	}
	for i := range e.views {
		v := &e.views[i]
		if !v.Enabled || v.FollowObject < 0 {
			continue
		}
		obj, ok := e.assets.Objects.Get(int32(v.FollowObject))
		if !ok {
			continue
		}
		cur := e.instances.IterByIdentity(obj.IdentitySet())
		h, ok := cur.Next(e.instances)
		if !ok {
			continue
		}
		inst := e.instances.Get(h)
		targetX := inst.X.ToI32()
		targetY := inst.Y.ToI32()

		moveAxis(&v.ViewX, targetX, v.BorderX, v.SpeedX, v.ViewW)
		moveAxis(&v.ViewY, targetY, v.BorderY, v.SpeedY, v.ViewH)

		if v.ViewX < 0 {
			v.ViewX = 0
		}
		if v.ViewY < 0 {
			v.ViewY = 0
		}
		if maxX := e.roomWidth - v.ViewW; maxX >= 0 && v.ViewX > maxX {
			v.ViewX = maxX
		}
		if maxY := e.roomHeight - v.ViewH; maxY >= 0 && v.ViewY > maxY {
			v.ViewY = maxY
		}
	}
}

// moveAxis shifts pos toward target by at most speed, keeping target
// within [pos+border, pos+size-border]. A negative speed snaps instantly.
func moveAxis(pos *int32, target, border, speed, size int32) {
	left := *pos + border
	right := *pos + size - border
	var delta int32
	if target < left {
		delta = target - left
	} else if target > right {
		delta = target - right
	} else {
		return
	}
	if speed < 0 {
		*pos += delta
		return
	}
	if delta > speed {
		delta = speed
	} else if delta < -speed {
		delta = -speed
	}
	*pos += delta
}

// CurrentView returns the live scroll state of view index, for a renderer
// to use as its draw-time camera offset.
func (e *Engine) CurrentView(index int) (RoomView, bool) {
	if index < 0 || index >= len(e.views) {
		return RoomView{}, false
	}
	return e.views[index], true
}
