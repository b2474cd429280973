package core

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierPoolReusesSlots(t *testing.T) {
	p := NewIdentifierPool(4)

	a := p.Acquire("a")
	b := p.Acquire("b")
	assert.NotEqual(t, InvalidID, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, p.InUse())

	require.NoError(t, p.Release(a))
	assert.Error(t, p.Release(a))
	assert.Error(t, p.Release(InvalidID))
	assert.Nil(t, p.Owner(a))

	c := p.Acquire("c")
	assert.Equal(t, a, c)
	assert.Equal(t, "c", p.Owner(c))
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	handler := func(sender interface{}, ctx EventContext) bool {
		calls++
		return false
	}

	assert.True(t, bus.Register(EVENT_CODE_RESIZED, "first", handler))
	assert.False(t, bus.Register(EVENT_CODE_RESIZED, "first", handler))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, "second", func(sender interface{}, ctx EventContext) bool {
		calls++
		return true
	}))
	assert.True(t, bus.Register(EVENT_CODE_RESIZED, "third", handler))

	// "second" handles the event so "third" never runs
	assert.True(t, bus.Fire(nil, EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, 2, calls)

	assert.True(t, bus.Unregister(EVENT_CODE_RESIZED, "second"))
	assert.False(t, bus.Unregister(EVENT_CODE_RESIZED, "second"))
	assert.False(t, bus.Fire(nil, EventContext{Type: EVENT_CODE_RESIZED}))
	assert.Equal(t, 4, calls)
}

func TestJSONFieldsDefaults(t *testing.T) {
	fields, ok := ParseJSONFields([]byte(`{
		"name": "light",
		"mass": "2.5",
		"static": 1,
		"bad": {"x": 1},
		"list": ["a", 2, "b"],
		"nothing": null
	}`))
	require.True(t, ok)

	assert.Equal(t, "light", fields.String("name", ""))
	assert.Equal(t, "fallback", fields.String("bad", "fallback"))
	assert.Equal(t, 2.5, fields.Float64("mass", 0))
	assert.Equal(t, float32(7), fields.Float32("name", 7))
	assert.True(t, fields.Bool("static", false))
	assert.True(t, fields.Bool("missing", true))
	assert.Equal(t, 1.0, fields.Object("bad").Float64("x", 0))
	assert.Empty(t, fields.Object("name"))
	assert.Equal(t, []string{"a", "b"}, fields.Strings("list"))
	assert.False(t, fields.Has("nothing"))

	_, ok = ParseJSONFields([]byte(`[1, 2]`))
	assert.False(t, ok)
	_, ok = ParseJSONFields([]byte(`not json`))
	assert.False(t, ok)
}

func TestClockDelta(t *testing.T) {
	now := time.Unix(100, 0)
	c := &Clock{now: func() time.Time { return now }}

	c.Update()
	assert.Zero(t, c.Elapsed())

	c.Start()
	now = now.Add(250 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 0.25, c.Delta(), 1e-9)
	now = now.Add(500 * time.Millisecond)
	c.Update()
	assert.InDelta(t, 0.5, c.Delta(), 1e-9)
	assert.InDelta(t, 0.75, c.Elapsed(), 1e-9)

	c.Stop()
	now = now.Add(time.Second)
	c.Update()
	assert.InDelta(t, 0.75, c.Elapsed(), 1e-9)
}

func TestEnvironmentExpandPath(t *testing.T) {
	env := NewEnvironmentWithHome("/home/dream")

	assert.Equal(t, "/home/dream", env.ExpandPath("~"))
	assert.Equal(t, filepath.Join("/home/dream", "projects"), env.ExpandPath("~/projects"))
	assert.Equal(t, "/abs/path", env.ExpandPath("/abs/path"))
	assert.Equal(t, filepath.Join("/home/dream", ".dream", "projects"), env.DefaultProjectsDirectory())
}

func TestFrameMetricsFPS(t *testing.T) {
	m := NewFrameMetrics()
	for i := 0; i < 70; i++ {
		m.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 1000.0/60.0, m.FrameTime(), 0.01)
	assert.InDelta(t, 60, m.FPS(), 1)
}
