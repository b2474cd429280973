package platform

import (
	"runtime"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/scene"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type WindowConfig struct {
	Title        string
	X            int
	Y            int
	Width        int
	Height       int
	CaptureMouse bool
	Joystick     bool
}

// Window is a GLFW window. It creates no client API context, presenting
// frames is left to whoever owns the renderer.
type Window struct {
	config WindowConfig
	input  *core.InputState
	bus    *core.EventBus
	window *glfw.Window

	mu          sync.Mutex
	keyboard    core.KeyboardState
	width       int
	height      int
	clearColour math.Colour
	frames      uint64
}

// New returns an unopened window. Mouse and joystick state go to input, window
// events to bus. Both may be nil.
func New(config WindowConfig, input *core.InputState, bus *core.EventBus) *Window {
	return &Window{
		config: config,
		input:  input,
		bus:    bus,
		width:  config.Width,
		height: config.Height,
	}
}

func (w *Window) Init() error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(w.config.Width, w.config.Height, w.config.Title, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	w.window = window

	w.window.SetKeyCallback(w.keyCallback)
	w.window.SetMouseButtonCallback(w.mouseButtonCallback)
	w.window.SetCursorPosCallback(w.cursorPosCallback)
	w.window.SetScrollCallback(w.scrollCallback)
	w.window.SetFramebufferSizeCallback(w.framebufferSizeCallback)
	if w.config.CaptureMouse {
		w.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	}
	w.window.SetPos(w.config.X, w.config.Y)
	w.window.Show()

	core.LogInfo("opened %dx%d window %q", w.config.Width, w.config.Height, w.config.Title)
	return nil
}

func (w *Window) BindFrameBuffer()    {}
func (w *Window) FrameBuffer() uint32 { return 0 }
func (w *Window) DepthBuffer() uint32 { return 0 }

func (w *Window) SwapBuffers() {
	w.mu.Lock()
	w.frames++
	w.mu.Unlock()
}

func (w *Window) UpdateWindow(rt *scene.SceneRuntime) {
	if w.window == nil {
		return
	}
	glfw.PollEvents()
	if w.config.Joystick {
		w.pollJoystick()
	}
	if rt != nil {
		w.mu.Lock()
		w.clearColour = rt.ClearColour()
		w.mu.Unlock()
	}
}

func (w *Window) ShouldClose() bool {
	return w.window == nil || w.window.ShouldClose()
}

func (w *Window) Close() {
	if w.window == nil {
		return
	}
	w.window.Destroy()
	w.window = nil
	glfw.Terminate()
}

func (w *Window) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *Window) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *Window) KeyboardState() core.KeyboardState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.keyboard
}

func (w *Window) ClearColour() math.Colour {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clearColour
}

func (w *Window) Frames() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

func (w *Window) pollJoystick() {
	if w.input == nil {
		return
	}
	js := &w.input.Joystick
	js.Present = glfw.Joystick1.Present()
	if !js.Present {
		return
	}
	js.Name = glfw.Joystick1.GetName()
	for i, v := range glfw.Joystick1.GetAxes() {
		js.SetAxis(i, v)
	}
	for i, a := range glfw.Joystick1.GetButtons() {
		js.SetButton(i, a == glfw.Press)
	}
}

func (w *Window) keyCallback(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key == glfw.KeyUnknown || action == glfw.Repeat {
		return
	}
	w.mu.Lock()
	w.keyboard.SetKeyPressed(int(key), action == glfw.Press)
	w.mu.Unlock()
}

func (w *Window) mouseButtonCallback(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if w.input == nil {
		return
	}
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	w.input.ProcessButton(b, action == glfw.Press)
}

func (w *Window) cursorPosCallback(_ *glfw.Window, xpos, ypos float64) {
	if w.input == nil {
		return
	}
	w.input.ProcessMouseMove(clampCoordinate(xpos), clampCoordinate(ypos))
}

func (w *Window) scrollCallback(_ *glfw.Window, _, yoff float64) {
	if w.input == nil {
		return
	}
	w.input.ProcessMouseWheel(int8(math.Clamp(yoff, -128, 127)))
}

func (w *Window) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	w.mu.Lock()
	w.width = width
	w.height = height
	w.mu.Unlock()

	if w.bus == nil {
		return
	}
	w.bus.Fire(w, core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: uint32(width), WindowHeight: uint32(height)},
	})
}

func clampCoordinate(v float64) uint16 {
	return uint16(math.Clamp(v, 0, 65535))
}
