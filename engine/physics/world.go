package physics

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

// World holds the bodies of a scene and runs a simple step: gravity,
// integration, then AABB penetration resolution. Bodies may be added from
// loader goroutines, stepping happens on the simulation goroutine.
type World struct {
	mu      sync.Mutex
	gravity math.Vec3
	bodies  []*Body
	ids     *core.IdentifierPool
}

// NewWorld creates an empty world. capacity is a hint for the body count.
func NewWorld(gravity math.Vec3, capacity int) *World {
	return &World{
		gravity: gravity,
		ids:     core.NewIdentifierPool(capacity),
	}
}

func (w *World) Gravity() math.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gravity
}

func (w *World) SetGravity(g math.Vec3) {
	w.mu.Lock()
	w.gravity = g
	w.mu.Unlock()
}

// AddBody assigns b an id and adds it to the world.
func (w *World) AddBody(b *Body) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b.ID = w.ids.Acquire(b.Owner)
	w.bodies = append(w.bodies, b)
}

func (w *World) RemoveBody(b *Body) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			if err := w.ids.Release(b.ID); err != nil {
				core.LogWarn("releasing body %d: %s", b.ID, err)
			}
			b.ID = core.InvalidID
			return true
		}
	}
	return false
}

func (w *World) BodyCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.bodies)
}

// Bodies returns a snapshot of the body list.
func (w *World) Bodies() []*Body {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, b := range w.bodies {
		if !b.Dynamic() {
			continue
		}
		b.Velocity = b.Velocity.Add(w.gravity.MulScalar(dt))
		b.Position = b.Position.Add(b.Velocity.MulScalar(dt))
	}

	for i := 0; i < len(w.bodies); i++ {
		for j := i + 1; j < len(w.bodies); j++ {
			resolve(w.bodies[i], w.bodies[j])
		}
	}
}

// resolve pushes two overlapping bodies apart along the axis of least
// penetration. Bodies that are not dynamic do not move.
func resolve(a, b *Body) {
	if !a.Dynamic() && !b.Dynamic() {
		return
	}
	ea, eb := a.Extents(), b.Extents()
	if !ea.Overlaps(eb) {
		return
	}

	overlap := [3]float32{
		math32.Min(ea.Max.X, eb.Max.X) - math32.Max(ea.Min.X, eb.Min.X),
		math32.Min(ea.Max.Y, eb.Max.Y) - math32.Max(ea.Min.Y, eb.Min.Y),
		math32.Min(ea.Max.Z, eb.Max.Z) - math32.Max(ea.Min.Z, eb.Min.Z),
	}
	axis := 0
	for k := 1; k < 3; k++ {
		if overlap[k] < overlap[axis] {
			axis = k
		}
	}
	depth := overlap[axis]

	// push a away from b along the separating direction
	dir := float32(1)
	if component(a.Position, axis) < component(b.Position, axis) {
		dir = -1
	}

	var moveA, moveB float32
	switch {
	case !a.Dynamic():
		moveB = -dir * depth
	case !b.Dynamic():
		moveA = dir * depth
	default:
		total := a.Mass + b.Mass
		if total <= 0 {
			total = 2
		}
		moveA = dir * depth * (b.Mass / total)
		moveB = -dir * depth * (a.Mass / total)
	}

	setComponent(&a.Position, axis, component(a.Position, axis)+moveA)
	setComponent(&b.Position, axis, component(b.Position, axis)+moveB)
	if a.Dynamic() {
		setComponent(&a.Velocity, axis, 0)
	}
	if b.Dynamic() {
		setComponent(&b.Velocity, axis, 0)
	}
}

func component(v math.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setComponent(v *math.Vec3, axis int, value float32) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}
