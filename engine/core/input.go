package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions. Values follow the GLFW key numbering so window
// callbacks can be forwarded without a lookup table.
type KeyCode uint16

const (
	KEY_SPACE         KeyCode = 32
	KEY_APOSTROPHE    KeyCode = 39
	KEY_COMMA         KeyCode = 44
	KEY_MINUS         KeyCode = 45
	KEY_PERIOD        KeyCode = 46
	KEY_SLASH         KeyCode = 47
	KEY_0             KeyCode = 48
	KEY_1             KeyCode = 49
	KEY_2             KeyCode = 50
	KEY_3             KeyCode = 51
	KEY_4             KeyCode = 52
	KEY_5             KeyCode = 53
	KEY_6             KeyCode = 54
	KEY_7             KeyCode = 55
	KEY_8             KeyCode = 56
	KEY_9             KeyCode = 57
	KEY_SEMICOLON     KeyCode = 59
	KEY_EQUAL         KeyCode = 61
	KEY_A             KeyCode = 65
	KEY_B             KeyCode = 66
	KEY_C             KeyCode = 67
	KEY_D             KeyCode = 68
	KEY_E             KeyCode = 69
	KEY_F             KeyCode = 70
	KEY_G             KeyCode = 71
	KEY_H             KeyCode = 72
	KEY_I             KeyCode = 73
	KEY_J             KeyCode = 74
	KEY_K             KeyCode = 75
	KEY_L             KeyCode = 76
	KEY_M             KeyCode = 77
	KEY_N             KeyCode = 78
	KEY_O             KeyCode = 79
	KEY_P             KeyCode = 80
	KEY_Q             KeyCode = 81
	KEY_R             KeyCode = 82
	KEY_S             KeyCode = 83
	KEY_T             KeyCode = 84
	KEY_U             KeyCode = 85
	KEY_V             KeyCode = 86
	KEY_W             KeyCode = 87
	KEY_X             KeyCode = 88
	KEY_Y             KeyCode = 89
	KEY_Z             KeyCode = 90
	KEY_LEFT_BRACKET  KeyCode = 91
	KEY_BACKSLASH     KeyCode = 92
	KEY_RIGHT_BRACKET KeyCode = 93
	KEY_GRAVE_ACCENT  KeyCode = 96
	KEY_ESCAPE        KeyCode = 256
	KEY_ENTER         KeyCode = 257
	KEY_TAB           KeyCode = 258
	KEY_BACKSPACE     KeyCode = 259
	KEY_INSERT        KeyCode = 260
	KEY_DELETE        KeyCode = 261
	KEY_RIGHT         KeyCode = 262
	KEY_LEFT          KeyCode = 263
	KEY_DOWN          KeyCode = 264
	KEY_UP            KeyCode = 265
	KEY_PAGE_UP       KeyCode = 266
	KEY_PAGE_DOWN     KeyCode = 267
	KEY_HOME          KeyCode = 268
	KEY_END           KeyCode = 269
	KEY_CAPS_LOCK     KeyCode = 280
	KEY_PAUSE         KeyCode = 284
	KEY_F1            KeyCode = 290
	KEY_F2            KeyCode = 291
	KEY_F3            KeyCode = 292
	KEY_F4            KeyCode = 293
	KEY_F5            KeyCode = 294
	KEY_F6            KeyCode = 295
	KEY_F7            KeyCode = 296
	KEY_F8            KeyCode = 297
	KEY_F9            KeyCode = 298
	KEY_F10           KeyCode = 299
	KEY_F11           KeyCode = 300
	KEY_F12           KeyCode = 301
	KEY_LEFT_SHIFT    KeyCode = 340
	KEY_LEFT_CONTROL  KeyCode = 341
	KEY_LEFT_ALT      KeyCode = 342
	KEY_LEFT_SUPER    KeyCode = 343
	KEY_RIGHT_SHIFT   KeyCode = 344
	KEY_RIGHT_CONTROL KeyCode = 345
	KEY_RIGHT_ALT     KeyCode = 346
	KEY_RIGHT_SUPER   KeyCode = 347
	KEY_MENU          KeyCode = 348
)

// KeysMax is the size of the keyboard state table.
const KeysMax = 512

// KeyboardState holds which keys are down.
type KeyboardState struct {
	keys [KeysMax]bool
}

// IsKeyPressed reports the last value set for k. Codes outside the table
// are never pressed.
func (ks *KeyboardState) IsKeyPressed(k int) bool {
	if k < 0 || k >= KeysMax {
		return false
	}
	return ks.keys[k]
}

func (ks *KeyboardState) SetKeyPressed(k int, pressed bool) {
	if k < 0 || k >= KeysMax {
		return
	}
	ks.keys[k] = pressed
}

// SetKeysPressed overwrites the table from keys. Entries past KeysMax are
// ignored, missing entries are released.
func (ks *KeyboardState) SetKeysPressed(keys []bool) {
	n := copy(ks.keys[:], keys)
	for i := n; i < KeysMax; i++ {
		ks.keys[i] = false
	}
}

// Keys returns a copy of the table.
func (ks *KeyboardState) Keys() []bool {
	out := make([]bool, KeysMax)
	copy(out, ks.keys[:])
	return out
}

// Mouse state structure
type MouseState struct {
	X       uint16
	Y       uint16
	ScrollX float64
	ScrollY float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

const JoystickMaxAxes = 8
const JoystickMaxButtons = 32

// JoystickState mirrors one controller. Axis values inside the dead zone read as zero.
type JoystickState struct {
	Present  bool
	Name     string
	DeadZone float32
	axes     [JoystickMaxAxes]float32
	buttons  [JoystickMaxButtons]bool
}

func (js *JoystickState) SetAxis(i int, v float32) {
	if i < 0 || i >= JoystickMaxAxes {
		return
	}
	js.axes[i] = v
}

func (js *JoystickState) Axis(i int) float32 {
	if i < 0 || i >= JoystickMaxAxes {
		return 0
	}
	v := js.axes[i]
	if v < js.DeadZone && v > -js.DeadZone {
		return 0
	}
	return v
}

func (js *JoystickState) SetButton(i int, pressed bool) {
	if i < 0 || i >= JoystickMaxButtons {
		return
	}
	js.buttons[i] = pressed
}

func (js *JoystickState) Button(i int) bool {
	if i < 0 || i >= JoystickMaxButtons {
		return false
	}
	return js.buttons[i]
}

// Input state structure that holds current and previous states for keyboard and mouse
type InputState struct {
	mu               sync.RWMutex
	bus              *EventBus
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
	Joystick         JoystickState
}

// NewInputState creates the input state. bus may be nil, in which case no
// events are fired.
func NewInputState(bus *EventBus) *InputState {
	return &InputState{
		bus:      bus,
		Joystick: JoystickState{DeadZone: 0.15},
	}
}

// Update copies current states to previous states. Called once at the end of a frame.
func (s *InputState) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.KeyboardPrevious = s.KeyboardCurrent
	s.MousePrevious = s.MouseCurrent
}

func (s *InputState) IsKeyDown(key KeyCode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.KeyboardCurrent.IsKeyPressed(int(key))
}

func (s *InputState) IsKeyUp(key KeyCode) bool {
	return !s.IsKeyDown(key)
}

func (s *InputState) WasKeyDown(key KeyCode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.KeyboardPrevious.IsKeyPressed(int(key))
}

// Keyboard returns a snapshot of the current keyboard state.
func (s *InputState) Keyboard() KeyboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.KeyboardCurrent
}

func (s *InputState) ProcessKey(key KeyCode, pressed bool) {
	s.mu.Lock()
	changed := s.KeyboardCurrent.IsKeyPressed(int(key)) != pressed
	// Only handle this if the state actually changed.
	if changed {
		s.KeyboardCurrent.SetKeyPressed(int(key), pressed)
	}
	s.mu.Unlock()

	if !changed || s.bus == nil {
		return
	}
	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	s.bus.Fire(s, EventContext{Type: code, Data: &KeyEvent{KeyCode: key}})
}

func (s *InputState) IsButtonDown(button Button) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MouseCurrent.Buttons[button]
}

func (s *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	s.mu.Lock()
	changed := s.MouseCurrent.Buttons[button] != pressed
	s.MouseCurrent.Buttons[button] = pressed
	s.mu.Unlock()

	if !changed || s.bus == nil {
		return
	}
	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	s.bus.Fire(s, EventContext{Type: code, Data: &MouseEvent{Button: button}})
}

func (s *InputState) MousePosition() (int32, int32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int32(s.MouseCurrent.X), int32(s.MouseCurrent.Y)
}

// MouseDelta is how far the cursor travelled since the last Update.
func (s *InputState) MouseDelta() (int32, int32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int32(s.MouseCurrent.X) - int32(s.MousePrevious.X), int32(s.MouseCurrent.Y) - int32(s.MousePrevious.Y)
}

func (s *InputState) ProcessMouseMove(x uint16, y uint16) {
	s.mu.Lock()
	changed := s.MouseCurrent.X != x || s.MouseCurrent.Y != y
	s.MouseCurrent.X = x
	s.MouseCurrent.Y = y
	s.mu.Unlock()

	if !changed || s.bus == nil {
		return
	}
	s.bus.Fire(s, EventContext{Type: EVENT_CODE_MOUSE_MOVED, Data: &MouseEvent{PosX: x, PosY: y}})
}

func (s *InputState) ProcessMouseWheel(zDelta int8) {
	s.mu.Lock()
	s.MouseCurrent.ScrollY += float64(zDelta)
	s.mu.Unlock()

	if s.bus == nil {
		return
	}
	s.bus.Fire(s, EventContext{Type: EVENT_CODE_MOUSE_WHEEL, Data: &MouseEvent{Scroll: zDelta}})
}
