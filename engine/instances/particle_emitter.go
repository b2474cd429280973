package instances

import (
	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

type Particle struct {
	Position math.Vec3
	Velocity math.Vec3
	Age      float32
}

// ParticleEmitterInstance spawns particles inside an area around its owner.
type ParticleEmitterInstance struct {
	instanceBase
	lifetime  float32
	perSecond float32
	gravity   float32
	velocity  float32
	size      math.Vec2
	area      math.Vec3
	texture   string

	rng       *rand.Rand
	particles []Particle
	toSpawn   float32
}

func NewParticleEmitterInstance(def *definition.AssetDefinition, transform *math.Transform) *ParticleEmitterInstance {
	p := &ParticleEmitterInstance{
		instanceBase: newInstanceBase(def, transform),
		rng:          rand.New(rand.NewSource(1)),
	}
	if attrs := def.ParticleEmitter(); attrs != nil {
		p.lifetime = attrs.Lifetime
		p.perSecond = attrs.PerSecond
		p.gravity = attrs.Gravity
		p.velocity = attrs.Velocity
		p.size = attrs.Size
		p.area = attrs.Area
		p.texture = attrs.Texture
	}
	return p
}

func (p *ParticleEmitterInstance) Load(projectDir string) bool {
	return p.publish(nil)
}

// Texture is the uuid of the particle texture definition.
func (p *ParticleEmitterInstance) Texture() string { return p.texture }
func (p *ParticleEmitterInstance) Size() math.Vec2 { return p.size }

// Update ages live particles, drops expired ones and spawns new ones at the
// emitter's rate.
func (p *ParticleEmitterInstance) Update(delta float32) {
	if delta <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	alive := p.particles[:0]
	for _, pt := range p.particles {
		pt.Age += delta
		if pt.Age >= p.lifetime {
			continue
		}
		pt.Velocity.Y -= p.gravity * delta
		pt.Position = pt.Position.Add(pt.Velocity.MulScalar(delta))
		alive = append(alive, pt)
	}
	p.particles = alive

	p.toSpawn += p.perSecond * delta
	origin := p.transform.Translation
	for ; p.toSpawn >= 1; p.toSpawn-- {
		offset := math.NewVec3(
			(p.rng.Float32()-0.5)*p.area.X,
			(p.rng.Float32()-0.5)*p.area.Y,
			(p.rng.Float32()-0.5)*p.area.Z,
		)
		p.particles = append(p.particles, Particle{
			Position: origin.Add(offset),
			Velocity: math.NewVec3Up().MulScalar(p.velocity),
		})
	}
}

func (p *ParticleEmitterInstance) Particles() []Particle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Particle, len(p.particles))
	copy(out, p.particles)
	return out
}

func (p *ParticleEmitterInstance) ParticleCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.particles)
}

func (p *ParticleEmitterInstance) Destroy() {
	p.mu.Lock()
	p.particles = nil
	p.toSpawn = 0
	p.markDestroyed()
	p.mu.Unlock()
}
