package systems

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/scene"
)

// Component is a per frame system driven by the project runtime.
type Component interface {
	Name() string
	UpdateComponent(rt *scene.SceneRuntime, delta float32)
	Shutdown() error
}

/**
 * @brief The window the engine draws into. Implementations own the graphics
 * context, so every method is called from the simulation goroutine.
 */
type WindowComponent interface {
	Init() error
	SwapBuffers()
	BindFrameBuffer()
	FrameBuffer() uint32
	DepthBuffer() uint32
	// UpdateWindow pumps window events and applies scene settings like the
	// clear colour.
	UpdateWindow(rt *scene.SceneRuntime)
	ShouldClose() bool
	Width() int
	Height() int
	KeyboardState() core.KeyboardState
	Close()
}

// ScriptPrintListener receives every line a script prints.
type ScriptPrintListener interface {
	OnPrint(line string)
}

// ScriptPrintFunc adapts a function to ScriptPrintListener.
type ScriptPrintFunc func(line string)

func (f ScriptPrintFunc) OnPrint(line string) { f(line) }

// eachInstance calls fn for every loaded instance of type T in the scene.
func eachInstance[T instances.AssetInstance](rt *scene.SceneRuntime, fn func(obj *scene.SceneObjectRuntime, inst T)) {
	if rt == nil {
		return
	}
	rt.Walk(func(obj *scene.SceneObjectRuntime) bool {
		for _, inst := range obj.Instances() {
			if typed, ok := inst.(T); ok && inst.Loaded() {
				fn(obj, typed)
			}
		}
		return true
	})
}
