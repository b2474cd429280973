package systems

import (
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/scene"
)

// AnimationSystem advances every running keyframe animation.
type AnimationSystem struct {
	updated int
}

func NewAnimationSystem() *AnimationSystem {
	return &AnimationSystem{}
}

func (as *AnimationSystem) Name() string { return "animation" }

func (as *AnimationSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	as.updated = 0
	eachInstance(rt, func(_ *scene.SceneObjectRuntime, anim *instances.AnimationInstance) {
		if !anim.Running() {
			return
		}
		anim.Update(delta)
		as.updated++
	})
}

// Updated counts the animations advanced by the last update.
func (as *AnimationSystem) Updated() int { return as.updated }

func (as *AnimationSystem) Shutdown() error { return nil }
