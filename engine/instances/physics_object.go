package instances

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/physics"
)

// planeHalfExtent is used for the unbounded axes of a static plane.
const planeHalfExtent = 1000

/**
 * @brief Places a rigid body for its scene object in the physics world. The
 * body is created on load and removed from the world on destroy.
 */
type PhysicsObjectInstance struct {
	instanceBase
	world *physics.World

	shape        string
	mass         float32
	margin       float32
	kinematic    bool
	controllable bool
	halfExtents  math.Vec3
	children     []definition.CompoundChild

	body *physics.Body
}

func NewPhysicsObjectInstance(def *definition.AssetDefinition, transform *math.Transform, world *physics.World) *PhysicsObjectInstance {
	p := &PhysicsObjectInstance{
		instanceBase: newInstanceBase(def, transform),
		world:        world,
	}
	p.loadExtraAttributes()
	return p
}

func (p *PhysicsObjectInstance) loadExtraAttributes() {
	p.shape = p.def.Format()
	attrs := p.def.PhysicsObject()
	if attrs == nil {
		return
	}
	p.mass = attrs.Mass
	p.margin = attrs.Margin
	p.kinematic = attrs.Kinematic
	p.controllable = attrs.Controllable
	p.children = attrs.CompoundChildList()
	p.halfExtents = halfExtentsForShape(p.shape, attrs)
}

// halfExtentsForShape approximates each collision shape with a box.
func halfExtentsForShape(shape string, attrs *definition.PhysicsObjectAttributes) math.Vec3 {
	switch shape {
	case definition.FormatCollisionSphere, definition.FormatCollisionMultiSphere:
		return math.NewVec3(attrs.Radius, attrs.Radius, attrs.Radius)
	case definition.FormatCollisionCapsule, definition.FormatCollisionCylinder, definition.FormatCollisionCone:
		return math.NewVec3(attrs.Radius, attrs.Height/2, attrs.Radius)
	case definition.FormatCollisionStaticPlane:
		return math.NewVec3(planeHalfExtent, attrs.Margin, planeHalfExtent)
	}
	return attrs.HalfExtents
}

func (p *PhysicsObjectInstance) Load(projectDir string) bool {
	if p.world == nil {
		core.LogError("physics object %s has no physics world", p.name)
		return false
	}
	if p.Destroyed() {
		return false
	}

	mass := p.mass
	if p.shape == definition.FormatCollisionStaticPlane {
		mass = 0
	}
	body := physics.NewBody(p.uuid, p.shape, p.transform.Translation, p.halfExtents, mass)
	body.Orientation = p.transform.Orientation
	body.Kinematic = p.kinematic
	body.Controllable = p.controllable
	p.world.AddBody(body)

	if !p.publish(func() { p.body = body }) {
		p.world.RemoveBody(body)
		return false
	}
	return true
}

// Body is nil until the instance has loaded.
func (p *PhysicsObjectInstance) Body() *physics.Body {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.body
}

func (p *PhysicsObjectInstance) Shape() string          { return p.shape }
func (p *PhysicsObjectInstance) Mass() float32          { return p.mass }
func (p *PhysicsObjectInstance) Margin() float32        { return p.margin }
func (p *PhysicsObjectInstance) Kinematic() bool        { return p.kinematic }
func (p *PhysicsObjectInstance) Controllable() bool     { return p.controllable }
func (p *PhysicsObjectInstance) HalfExtents() math.Vec3 { return p.halfExtents }

func (p *PhysicsObjectInstance) CompoundChildren() []definition.CompoundChild {
	return p.children
}

// SyncTransform copies state between the body and the owner transform.
// Dynamic bodies drive the transform, kinematic and static ones follow it.
func (p *PhysicsObjectInstance) SyncTransform() {
	p.mu.RLock()
	body := p.body
	p.mu.RUnlock()
	if body == nil {
		return
	}
	if body.Dynamic() {
		p.transform.SetTranslation(body.Position)
		p.transform.SetOrientation(body.Orientation)
		return
	}
	body.Position = p.transform.Translation
	body.Orientation = p.transform.Orientation
}

// ApplyImpulse pushes a dynamic body.
func (p *PhysicsObjectInstance) ApplyImpulse(impulse math.Vec3) {
	if body := p.Body(); body != nil {
		body.ApplyImpulse(impulse)
	}
}

func (p *PhysicsObjectInstance) Destroy() {
	p.mu.Lock()
	body := p.body
	p.body = nil
	p.markDestroyed()
	p.mu.Unlock()
	if body != nil && p.world != nil {
		p.world.RemoveBody(body)
	}
}
