package instances

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

func linePath(t *testing.T, kind definition.SplineType, wrap bool) (*definition.AssetDefinition, *math.Transform) {
	t.Helper()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypePath)
	attrs := def.Path()
	attrs.SplineType = kind
	attrs.Wrap = wrap
	for i := 0; i < 4; i++ {
		cp := attrs.AddControlPoint()
		cp.Position = math.NewVec3(float32(i), 0, 0)
		attrs.SetControlPoint(cp)
	}
	tr := math.TransformCreate()
	return def, &tr
}

func TestSplineEndpoints(t *testing.T) {
	controls := []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(1, 2, 0),
		math.NewVec3(3, 2, 1),
		math.NewVec3(4, 0, 0),
		math.NewVec3(6, 1, 2),
	}
	for _, kind := range []definition.SplineType{definition.SplineTypeClamped, definition.SplineTypeBezier} {
		t.Run(string(kind), func(t *testing.T) {
			points := generateSpline(kind, controls, 2)
			require.Len(t, points, 11)
			assert.True(t, points[0].Compare(controls[0], 1e-5), "first %v", points[0])
			assert.True(t, points[len(points)-1].Compare(controls[4], 1e-5), "last %v", points[len(points)-1])
		})
	}
}

func TestOpenSplineStaysInsideHull(t *testing.T) {
	controls := []math.Vec3{
		math.NewVec3(0, 0, 0),
		math.NewVec3(1, 1, 0),
		math.NewVec3(2, 0, 0),
		math.NewVec3(3, 1, 0),
		math.NewVec3(4, 0, 0),
	}
	points := generateSpline(definition.SplineTypeOpen, controls, 1)
	require.NotEmpty(t, points)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.X, float32(0))
		assert.LessOrEqual(t, p.X, float32(4))
		assert.GreaterOrEqual(t, p.Y, float32(0))
		assert.LessOrEqual(t, p.Y, float32(1))
	}
	// an open spline does not reach its end control points
	assert.False(t, points[0].Compare(controls[0], 1e-3))
}

func TestSplineNeedsTwoControlPoints(t *testing.T) {
	assert.Empty(t, generateSpline(definition.SplineTypeClamped, nil, 1))
	assert.Empty(t, generateSpline(definition.SplineTypeClamped, []math.Vec3{math.NewVec3Zero()}, 1))
	assert.Len(t, generateSpline(definition.SplineTypeClamped, []math.Vec3{math.NewVec3Zero(), math.NewVec3One()}, 0), 3)
}

func TestPathInstanceSamplesStraightLine(t *testing.T) {
	def, tr := linePath(t, definition.SplineTypeClamped, false)
	path := NewPathInstance(def, tr)
	require.True(t, path.Load(""))

	points := path.SplinePoints()
	require.Len(t, points, 5)
	for i, want := range []float32{0, 0.75, 1.5, 2.25, 3} {
		assert.InDelta(t, want, points[i].X, 1e-5)
	}
	for _, tangent := range path.Tangents() {
		assert.True(t, tangent.Compare(math.NewVec3(1, 0, 0), 1e-5))
	}
}

func TestPathInstanceStepsAlongPath(t *testing.T) {
	def, tr := linePath(t, definition.SplineTypeClamped, false)
	path := NewPathInstance(def, tr)
	require.True(t, path.Load(""))

	path.StepAlongPath(1)
	assert.InDelta(t, 1, tr.Translation.X, 1e-5)
	assert.Equal(t, 1, path.CurrentIndex())

	path.SetVelocity(2)
	path.StepAlongPath(10)
	assert.InDelta(t, 3, tr.Translation.X, 1e-5)
	assert.Equal(t, 4, path.CurrentIndex())
}

func TestPathInstanceWraps(t *testing.T) {
	def, tr := linePath(t, definition.SplineTypeClamped, true)
	path := NewPathInstance(def, tr)
	require.True(t, path.Load(""))
	assert.True(t, path.Wrap())

	path.StepAlongPath(3)
	assert.InDelta(t, 3, tr.Translation.X, 1e-5)

	path.StepAlongPath(0.5)
	assert.InDelta(t, 0.5, tr.Translation.X, 1e-5)
}
