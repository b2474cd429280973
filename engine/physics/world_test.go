package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/dream/engine/math"
)

func TestGravityIntegration(t *testing.T) {
	w := NewWorld(math.NewVec3(0, -10, 0), 4)
	b := NewBody("ball", "btShpereShape", math.NewVec3(0, 100, 0), math.NewVec3(0.5, 0.5, 0.5), 1)
	w.AddBody(b)

	w.Step(0.5)
	assert.InDelta(t, -5, b.Velocity.Y, 1e-5)
	assert.InDelta(t, 97.5, b.Position.Y, 1e-5)

	w.Step(0)
	assert.InDelta(t, 97.5, b.Position.Y, 1e-5)
}

func TestStaticAndKinematicBodiesDoNotMove(t *testing.T) {
	w := NewWorld(math.NewVec3(0, -10, 0), 4)
	ground := NewBody("ground", "btBoxShape", math.NewVec3Zero(), math.NewVec3(10, 0.5, 10), 0)
	mover := NewBody("mover", "btBoxShape", math.NewVec3(5, 5, 5), math.NewVec3(1, 1, 1), 1)
	mover.Kinematic = true
	w.AddBody(ground)
	w.AddBody(mover)

	w.Step(1)
	assert.True(t, ground.Static)
	assert.Equal(t, math.NewVec3Zero(), ground.Position)
	assert.Equal(t, math.NewVec3(5, 5, 5), mover.Position)
}

func TestBodyRestsOnStaticGround(t *testing.T) {
	w := NewWorld(math.NewVec3(0, -10, 0), 4)
	ground := NewBody("ground", "btBoxShape", math.NewVec3Zero(), math.NewVec3(10, 0.5, 10), 0)
	box := NewBody("box", "btBoxShape", math.NewVec3(0, 1.2, 0), math.NewVec3(0.5, 0.5, 0.5), 1)
	w.AddBody(ground)
	w.AddBody(box)

	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60)
	}
	// resting on top: ground top at 0.5, box half height 0.5
	assert.InDelta(t, 1.0, box.Position.Y, 0.01)
	assert.Equal(t, math.NewVec3Zero(), ground.Position)
}

func TestDynamicBodiesSeparate(t *testing.T) {
	w := NewWorld(math.NewVec3Zero(), 4)
	a := NewBody("a", "btBoxShape", math.NewVec3(0, 0, 0), math.NewVec3(1, 1, 1), 1)
	b := NewBody("b", "btBoxShape", math.NewVec3(1.5, 0, 0), math.NewVec3(1, 1, 1), 1)
	w.AddBody(a)
	w.AddBody(b)

	w.Step(1.0 / 60)
	assert.InDelta(t, -0.25, a.Position.X, 1e-5)
	assert.InDelta(t, 1.75, b.Position.X, 1e-5)
	assert.False(t, a.Extents().Overlaps(b.Extents()))
}

func TestAddAndRemoveBodies(t *testing.T) {
	w := NewWorld(math.NewVec3Zero(), 2)
	a := NewBody("a", "btBoxShape", math.NewVec3Zero(), math.NewVec3One(), 1)
	b := NewBody("b", "btBoxShape", math.NewVec3Zero(), math.NewVec3One(), 1)
	w.AddBody(a)
	w.AddBody(b)
	require.Equal(t, 2, w.BodyCount())
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotZero(t, a.ID)

	require.True(t, w.RemoveBody(a))
	assert.False(t, w.RemoveBody(a))
	assert.Zero(t, a.ID)
	assert.Equal(t, []*Body{b}, w.Bodies())
}

func TestApplyImpulse(t *testing.T) {
	b := NewBody("b", "btBoxShape", math.NewVec3Zero(), math.NewVec3One(), 2)
	b.ApplyImpulse(math.NewVec3(4, 0, 0))
	assert.Equal(t, math.NewVec3(2, 0, 0), b.Velocity)

	s := NewBody("s", "btBoxShape", math.NewVec3Zero(), math.NewVec3One(), 0)
	s.ApplyImpulse(math.NewVec3(4, 0, 0))
	assert.Equal(t, math.NewVec3Zero(), s.Velocity)
}
