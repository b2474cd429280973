package systems

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/scene"
)

type InputSystemConfig struct {
	// FlyCamera enables the WASD camera controls.
	FlyCamera bool
	// LookSpeed is how fast the arrow keys turn the camera, in radians per second.
	LookSpeed float32
	// MouseSensitivity is radians of turn per pixel while the right button is held.
	MouseSensitivity float32
	// QuitOnEscape fires the application quit event when escape is pressed.
	QuitOnEscape bool
}

// InputSystem feeds the window keyboard into the input state and flies the
// scene camera.
type InputSystem struct {
	config InputSystemConfig
	input  *core.InputState
	window WindowComponent
	bus    *core.EventBus
	polled core.KeyboardState
}

func NewInputSystem(config InputSystemConfig, input *core.InputState, window WindowComponent, bus *core.EventBus) *InputSystem {
	if config.LookSpeed == 0 {
		config.LookSpeed = 1.5
	}
	if config.MouseSensitivity == 0 {
		config.MouseSensitivity = 0.005
	}
	return &InputSystem{
		config: config,
		input:  input,
		window: window,
		bus:    bus,
	}
}

func (is *InputSystem) Name() string { return "input" }

func (is *InputSystem) Input() *core.InputState { return is.input }

func (is *InputSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	is.pollWindow()

	if is.config.QuitOnEscape && is.input.IsKeyDown(core.KEY_ESCAPE) && !is.input.WasKeyDown(core.KEY_ESCAPE) && is.bus != nil {
		core.LogInfo("escape pressed, quitting")
		is.bus.Fire(is, core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}

	if is.config.FlyCamera && rt != nil {
		is.flyCamera(rt.Camera(), delta)
	}
}

// pollWindow forwards keys whose state changed since the last poll.
func (is *InputSystem) pollWindow() {
	if is.window == nil {
		return
	}
	kb := is.window.KeyboardState()
	for k := 0; k < core.KeysMax; k++ {
		pressed := kb.IsKeyPressed(k)
		if pressed != is.polled.IsKeyPressed(k) {
			is.input.ProcessKey(core.KeyCode(k), pressed)
		}
	}
	is.polled = kb
}

func (is *InputSystem) flyCamera(cam *scene.Camera, delta float32) {
	move := cam.MovementSpeed * delta
	if is.input.IsKeyDown(core.KEY_W) {
		cam.MoveForward(move)
	}
	if is.input.IsKeyDown(core.KEY_S) {
		cam.MoveBackward(move)
	}
	if is.input.IsKeyDown(core.KEY_A) {
		cam.MoveLeft(move)
	}
	if is.input.IsKeyDown(core.KEY_D) {
		cam.MoveRight(move)
	}
	if is.input.IsKeyDown(core.KEY_E) || is.input.IsKeyDown(core.KEY_SPACE) {
		cam.MoveUp(move)
	}
	if is.input.IsKeyDown(core.KEY_Q) || is.input.IsKeyDown(core.KEY_LEFT_SHIFT) {
		cam.MoveDown(move)
	}

	look := is.config.LookSpeed * delta
	if is.input.IsKeyDown(core.KEY_LEFT) {
		cam.AddYaw(look)
	}
	if is.input.IsKeyDown(core.KEY_RIGHT) {
		cam.AddYaw(-look)
	}
	if is.input.IsKeyDown(core.KEY_UP) {
		cam.AddPitch(look)
	}
	if is.input.IsKeyDown(core.KEY_DOWN) {
		cam.AddPitch(-look)
	}

	if is.input.IsButtonDown(core.BUTTON_RIGHT) {
		dx, dy := is.input.MouseDelta()
		cam.AddYaw(-float32(dx) * is.config.MouseSensitivity)
		cam.AddPitch(-float32(dy) * is.config.MouseSensitivity)
	}

	if js := is.input.Joystick; js.Present {
		cam.MoveRight(js.Axis(0) * move)
		cam.MoveForward(-js.Axis(1) * move)
		cam.AddYaw(-js.Axis(2) * look)
		cam.AddPitch(-js.Axis(3) * look)
	}
}

// EndFrame rolls the current input state into the previous one.
func (is *InputSystem) EndFrame() {
	is.input.Update()
}

func (is *InputSystem) Shutdown() error { return nil }
