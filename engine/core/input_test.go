package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyboardStateBounds(t *testing.T) {
	var ks KeyboardState

	for _, k := range []int{-1, KeysMax, KeysMax + 1, 4096} {
		assert.False(t, ks.IsKeyPressed(k), "key %d", k)
		ks.SetKeyPressed(k, true)
		assert.False(t, ks.IsKeyPressed(k), "key %d", k)
	}
}

func TestKeyboardStateSetKeysPressed(t *testing.T) {
	var ks KeyboardState

	keys := make([]bool, KeysMax+10)
	keys[int(KEY_W)] = true
	keys[KeysMax-1] = true
	keys[KeysMax+5] = true
	ks.SetKeysPressed(keys)

	assert.True(t, ks.IsKeyPressed(int(KEY_W)))
	assert.True(t, ks.IsKeyPressed(KeysMax-1))
	assert.False(t, ks.IsKeyPressed(int(KEY_S)))
	assert.False(t, ks.IsKeyPressed(KeysMax+5))

	// a shorter slice releases the rest
	ks.SetKeysPressed([]bool{false, true})
	assert.True(t, ks.IsKeyPressed(1))
	assert.False(t, ks.IsKeyPressed(int(KEY_W)))
	assert.False(t, ks.IsKeyPressed(KeysMax-1))
}

func TestInputStateFiresKeyEvents(t *testing.T) {
	bus := NewEventBus()
	input := NewInputState(bus)

	var pressed, released []KeyCode
	bus.Register(EVENT_CODE_KEY_PRESSED, "test", func(sender interface{}, ctx EventContext) bool {
		pressed = append(pressed, ctx.Data.(*KeyEvent).KeyCode)
		return true
	})
	bus.Register(EVENT_CODE_KEY_RELEASED, "test", func(sender interface{}, ctx EventContext) bool {
		released = append(released, ctx.Data.(*KeyEvent).KeyCode)
		return true
	})

	input.ProcessKey(KEY_A, true)
	// no change, no event
	input.ProcessKey(KEY_A, true)
	assert.True(t, input.IsKeyDown(KEY_A))
	assert.False(t, input.WasKeyDown(KEY_A))

	input.Update()
	assert.True(t, input.WasKeyDown(KEY_A))

	input.ProcessKey(KEY_A, false)
	assert.True(t, input.IsKeyUp(KEY_A))

	assert.Equal(t, []KeyCode{KEY_A}, pressed)
	assert.Equal(t, []KeyCode{KEY_A}, released)
}

func TestJoystickDeadZone(t *testing.T) {
	js := JoystickState{DeadZone: 0.2}
	js.SetAxis(0, 0.1)
	js.SetAxis(1, -0.5)
	js.SetAxis(JoystickMaxAxes, 1)

	assert.Equal(t, float32(0), js.Axis(0))
	assert.Equal(t, float32(-0.5), js.Axis(1))
	assert.Equal(t, float32(0), js.Axis(JoystickMaxAxes))
}
