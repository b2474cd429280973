package systems

import (
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/scene"
)

// ParticleSystem ages, spawns and moves particles.
type ParticleSystem struct {
	live int
}

func NewParticleSystem() *ParticleSystem {
	return &ParticleSystem{}
}

func (ps *ParticleSystem) Name() string { return "particle" }

func (ps *ParticleSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	ps.live = 0
	eachInstance(rt, func(_ *scene.SceneObjectRuntime, emitter *instances.ParticleEmitterInstance) {
		emitter.Update(delta)
		ps.live += emitter.ParticleCount()
	})
}

// LiveParticles counts particles across all emitters after the last update.
func (ps *ParticleSystem) LiveParticles() int { return ps.live }

func (ps *ParticleSystem) Shutdown() error { return nil }
