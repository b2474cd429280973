package physics

import (
	"github.com/spaghettifunk/dream/engine/math"
)

// Body is an axis aligned rigid body. Static and kinematic bodies are not
// integrated; kinematic bodies follow their owner's transform instead.
type Body struct {
	ID          uint32
	Owner       string
	Shape       string
	Position    math.Vec3
	Orientation math.Quaternion
	Velocity    math.Vec3
	HalfExtents math.Vec3
	Mass        float32
	Static      bool
	Kinematic   bool
	// Controllable bodies take their velocity from input.
	Controllable bool
}

// NewBody returns a body at position. A non positive mass makes the body static.
func NewBody(owner, shape string, position, halfExtents math.Vec3, mass float32) *Body {
	b := &Body{
		Owner:       owner,
		Shape:       shape,
		Position:    position,
		Orientation: math.NewQuatIdentity(),
		HalfExtents: halfExtents,
		Mass:        mass,
	}
	if mass <= 0 {
		b.Static = true
		b.Mass = 0
	}
	return b
}

// Dynamic reports whether the world integrates this body.
func (b *Body) Dynamic() bool {
	return !b.Static && !b.Kinematic
}

func (b *Body) Extents() math.Extents3D {
	half := b.HalfExtents
	if half.X == 0 && half.Y == 0 && half.Z == 0 {
		half = math.NewVec3(0.5, 0.5, 0.5)
	}
	return math.Extents3D{
		Min: b.Position.Sub(half),
		Max: b.Position.Add(half),
	}
}

func (b *Body) ApplyImpulse(impulse math.Vec3) {
	if !b.Dynamic() || b.Mass == 0 {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.MulScalar(1 / b.Mass))
}
