package systems

import (
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/scene"
)

type PhysicsSystemConfig struct {
	// SubSteps splits every frame into this many world steps.
	SubSteps int
}

// PhysicsSystem steps the scene's world and keeps bodies and transforms in sync.
type PhysicsSystem struct {
	config PhysicsSystemConfig
	steps  uint64
}

func NewPhysicsSystem(config PhysicsSystemConfig) *PhysicsSystem {
	config.SubSteps = max(config.SubSteps, 1)
	return &PhysicsSystem{config: config}
}

func (ps *PhysicsSystem) Name() string { return "physics" }

func (ps *PhysicsSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	if rt == nil || delta <= 0 {
		return
	}
	world := rt.PhysicsWorld()
	var objects []*instances.PhysicsObjectInstance
	eachInstance(rt, func(_ *scene.SceneObjectRuntime, inst *instances.PhysicsObjectInstance) {
		objects = append(objects, inst)
	})

	// static and kinematic bodies follow their objects
	for _, obj := range objects {
		if b := obj.Body(); b != nil && !b.Dynamic() {
			obj.SyncTransform()
		}
	}
	step := delta / float32(ps.config.SubSteps)
	for i := 0; i < ps.config.SubSteps; i++ {
		world.Step(step)
		ps.steps++
	}
	for _, obj := range objects {
		if b := obj.Body(); b != nil && b.Dynamic() {
			obj.SyncTransform()
		}
	}
}

// Steps counts the world steps taken so far.
func (ps *PhysicsSystem) Steps() uint64 { return ps.steps }

func (ps *PhysicsSystem) Shutdown() error { return nil }
