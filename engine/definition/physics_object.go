package definition

import (
	"encoding/json"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

// CompoundChild places another physics object definition inside a compound shape.
type CompoundChild struct {
	UUID      string
	Transform math.Transform
}

type PhysicsObjectAttributes struct {
	Mass         float32
	Margin       float32
	Radius       float32
	Height       float32
	Normal       math.Vec3
	Constant     float32
	HalfExtents  math.Vec3
	Kinematic    bool
	Controllable bool
	// CollisionModel is the uuid of the model used by mesh shapes.
	CollisionModel   string
	CompoundChildren []CompoundChild
}

func newPhysicsObjectAttributes() *PhysicsObjectAttributes {
	return &PhysicsObjectAttributes{
		Mass:        1,
		Margin:      0.04,
		Radius:      0.5,
		Height:      1,
		Normal:      math.NewVec3Up(),
		HalfExtents: math.NewVec3(0.5, 0.5, 0.5),
	}
}

// AddCompoundChild appends child. A child with the same uuid is replaced.
func (a *PhysicsObjectAttributes) AddCompoundChild(child CompoundChild) {
	for i := range a.CompoundChildren {
		if a.CompoundChildren[i].UUID == child.UUID {
			a.CompoundChildren[i] = child
			return
		}
	}
	a.CompoundChildren = append(a.CompoundChildren, child)
}

func (a *PhysicsObjectAttributes) RemoveCompoundChild(uuid string) bool {
	for i := range a.CompoundChildren {
		if a.CompoundChildren[i].UUID == uuid {
			a.CompoundChildren = append(a.CompoundChildren[:i], a.CompoundChildren[i+1:]...)
			return true
		}
	}
	return false
}

func (a *PhysicsObjectAttributes) CompoundChildList() []CompoundChild {
	out := make([]CompoundChild, len(a.CompoundChildren))
	copy(out, a.CompoundChildren)
	return out
}

func (a *PhysicsObjectAttributes) decode(f core.JSONFields) {
	a.Mass = f.Float32("mass", a.Mass)
	a.Margin = f.Float32("margin", a.Margin)
	a.Radius = f.Float32("radius", a.Radius)
	a.Height = f.Float32("height", a.Height)
	a.Normal = math.Vec3Field(f, "normal", a.Normal)
	a.Constant = f.Float32("constant", a.Constant)
	a.HalfExtents = math.Vec3Field(f, "size", a.HalfExtents)
	a.Kinematic = f.Bool("kinematic", a.Kinematic)
	a.Controllable = f.Bool("controllable", a.Controllable)
	a.CollisionModel = f.String("collisionModel", a.CollisionModel)

	a.CompoundChildren = nil
	for _, raw := range f.Array("compoundChildren") {
		child, ok := core.ParseJSONFields(raw)
		if !ok || !child.Has("uuid") {
			core.LogDebug("skipping malformed compound child")
			continue
		}
		cc := CompoundChild{UUID: child.String("uuid", ""), Transform: math.TransformCreate()}
		if rawTransform, ok := child.Raw("transform"); ok {
			cc.Transform = math.TransformFromJSON(rawTransform)
		}
		a.CompoundChildren = append(a.CompoundChildren, cc)
	}
}

func (a *PhysicsObjectAttributes) encode(out map[string]interface{}) {
	out["mass"] = a.Mass
	out["margin"] = a.Margin
	out["radius"] = a.Radius
	out["height"] = a.Height
	out["normal"] = a.Normal
	out["constant"] = a.Constant
	out["size"] = a.HalfExtents
	out["kinematic"] = a.Kinematic
	out["controllable"] = a.Controllable
	out["collisionModel"] = a.CollisionModel

	children := make([]json.RawMessage, 0, len(a.CompoundChildren))
	for _, cc := range a.CompoundChildren {
		data, err := json.Marshal(map[string]interface{}{"uuid": cc.UUID, "transform": cc.Transform})
		if err != nil {
			core.LogError("could not encode compound child %s: %s", cc.UUID, err)
			continue
		}
		children = append(children, data)
	}
	out["compoundChildren"] = children
}

func (a *PhysicsObjectAttributes) clone() attributes {
	return cloneAttributes(a)
}
