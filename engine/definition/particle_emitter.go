package definition

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

type ParticleEmitterAttributes struct {
	// Lifetime of a single particle in seconds.
	Lifetime  float32
	PerSecond float32
	Gravity   float32
	Velocity  float32
	Size      math.Vec2
	Area      math.Vec3
	// Texture is the uuid of the particle texture definition.
	Texture string
}

func newParticleEmitterAttributes() *ParticleEmitterAttributes {
	return &ParticleEmitterAttributes{
		Lifetime:  1,
		PerSecond: 1,
		Gravity:   1,
		Velocity:  1,
		Size:      math.NewVec2(1, 1),
		Area:      math.NewVec3(1, 1, 1),
	}
}

func (a *ParticleEmitterAttributes) decode(f core.JSONFields) {
	a.Lifetime = f.Float32("lifetime", a.Lifetime)
	a.PerSecond = f.Float32("perSecond", a.PerSecond)
	a.Gravity = f.Float32("gravity", a.Gravity)
	a.Velocity = f.Float32("velocity", a.Velocity)
	a.Size = math.Vec2Field(f, "size", a.Size)
	a.Area = math.Vec3Field(f, "area", a.Area)
	a.Texture = f.String("texture", a.Texture)
}

func (a *ParticleEmitterAttributes) encode(out map[string]interface{}) {
	out["lifetime"] = a.Lifetime
	out["perSecond"] = a.PerSecond
	out["gravity"] = a.Gravity
	out["velocity"] = a.Velocity
	out["size"] = a.Size
	out["area"] = a.Area
	out["texture"] = a.Texture
}

func (a *ParticleEmitterAttributes) clone() attributes {
	return cloneAttributes(a)
}
