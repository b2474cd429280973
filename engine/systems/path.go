package systems

import (
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/scene"
)

// PathEndEvent is sent to an object once its non wrapping path is exhausted.
const PathEndEvent = "path.end"

// PathSystem moves objects along their spline paths.
type PathSystem struct {
	ended map[*instances.PathInstance]struct{}
}

func NewPathSystem() *PathSystem {
	return &PathSystem{ended: make(map[*instances.PathInstance]struct{})}
}

func (ps *PathSystem) Name() string { return "path" }

func (ps *PathSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	eachInstance(rt, func(obj *scene.SceneObjectRuntime, path *instances.PathInstance) {
		if _, done := ps.ended[path]; done {
			return
		}
		path.StepAlongPath(delta)
		if !path.Wrap() && path.CurrentIndex() == len(path.SplinePoints())-1 {
			ps.ended[path] = struct{}{}
			obj.AddEvent(scene.Event{Sender: path.UUID(), Name: PathEndEvent})
		}
	})
}

func (ps *PathSystem) Shutdown() error {
	clear(ps.ended)
	return nil
}
