package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/dream/engine/math"
)

func TestCameraMovesAlongItsAxes(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.Forward().Compare(math.NewVec3(0, 0, -1), 1e-6))
	assert.True(t, c.Right().Compare(math.NewVec3(1, 0, 0), 1e-6))

	c.MoveForward(2)
	c.MoveRight(1)
	c.MoveUp(3)
	assert.True(t, c.Translation.Compare(math.NewVec3(1, 3, -2), 1e-6))

	c.MoveBackward(2)
	c.MoveLeft(1)
	c.MoveDown(3)
	assert.True(t, c.Translation.Compare(math.NewVec3(0, 0, 0), 1e-6))

	c.AddYaw(math32.Pi / 2)
	assert.True(t, c.Forward().Compare(math.NewVec3(-1, 0, 0), 1e-5))
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera()
	c.AddPitch(10)
	assert.Equal(t, pitchLimit, c.Pitch)
	c.SetPitch(-10)
	assert.Equal(t, -pitchLimit, c.Pitch)
}

func TestCameraCanSee(t *testing.T) {
	c := NewCamera()
	assert.True(t, c.CanSee(math.NewVec3(0, 0, -5), 10))
	assert.False(t, c.CanSee(math.NewVec3(0, 0, -50), 10))
	assert.True(t, c.CanSee(math.NewVec3(0, 0, -50), 0))
}
