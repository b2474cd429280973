package definition

import (
	"sort"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

type SplineType string

const (
	SplineTypeOpen    SplineType = "open"
	SplineTypeClamped SplineType = "clamped"
	SplineTypeBezier  SplineType = "bezier"
)

func parseSplineType(s string) SplineType {
	switch SplineType(s) {
	case SplineTypeOpen, SplineTypeClamped, SplineTypeBezier:
		return SplineType(s)
	}
	core.LogDebug("unknown spline type %q, using clamped", s)
	return SplineTypeClamped
}

type ControlPoint struct {
	Index    int
	Position math.Vec3
}

type PathAttributes struct {
	Wrap          bool
	SplineType    SplineType
	StepScalar    float32
	ControlPoints []ControlPoint
}

func newPathAttributes() *PathAttributes {
	return &PathAttributes{
		SplineType: SplineTypeClamped,
		StepScalar: 1,
	}
}

// AddControlPoint appends a point at the origin with the next free index.
func (a *PathAttributes) AddControlPoint() ControlPoint {
	next := 0
	for _, cp := range a.ControlPoints {
		if cp.Index >= next {
			next = cp.Index + 1
		}
	}
	cp := ControlPoint{Index: next}
	a.ControlPoints = append(a.ControlPoints, cp)
	return cp
}

func (a *PathAttributes) DeleteControlPoint(index int) bool {
	for i, cp := range a.ControlPoints {
		if cp.Index == index {
			a.ControlPoints = append(a.ControlPoints[:i], a.ControlPoints[i+1:]...)
			return true
		}
	}
	return false
}

func (a *PathAttributes) ControlPoint(index int) (ControlPoint, bool) {
	for _, cp := range a.ControlPoints {
		if cp.Index == index {
			return cp, true
		}
	}
	return ControlPoint{}, false
}

func (a *PathAttributes) SetControlPoint(cp ControlPoint) {
	for i := range a.ControlPoints {
		if a.ControlPoints[i].Index == cp.Index {
			a.ControlPoints[i] = cp
			return
		}
	}
	a.ControlPoints = append(a.ControlPoints, cp)
}

// OrderedControlPoints returns the points sorted by index.
func (a *PathAttributes) OrderedControlPoints() []ControlPoint {
	out := make([]ControlPoint, len(a.ControlPoints))
	copy(out, a.ControlPoints)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (a *PathAttributes) decode(f core.JSONFields) {
	a.Wrap = f.Bool("wrap", a.Wrap)
	a.SplineType = parseSplineType(f.String("splineType", string(a.SplineType)))
	a.StepScalar = f.Float32("stepScalar", a.StepScalar)

	a.ControlPoints = nil
	for i, raw := range f.Array("controlPoints") {
		p, ok := core.ParseJSONFields(raw)
		if !ok {
			core.LogDebug("skipping malformed control point %d", i)
			continue
		}
		a.ControlPoints = append(a.ControlPoints, ControlPoint{
			Index:    p.Int("index", i),
			Position: math.NewVec3(p.Float32("x", 0), p.Float32("y", 0), p.Float32("z", 0)),
		})
	}
}

func (a *PathAttributes) encode(out map[string]interface{}) {
	out["wrap"] = a.Wrap
	out["splineType"] = string(a.SplineType)
	out["stepScalar"] = a.StepScalar

	points := make([]map[string]interface{}, 0, len(a.ControlPoints))
	for _, cp := range a.ControlPoints {
		points = append(points, map[string]interface{}{
			"index": cp.Index,
			"x":     cp.Position.X,
			"y":     cp.Position.Y,
			"z":     cp.Position.Z,
		})
	}
	out["controlPoints"] = points
}

func (a *PathAttributes) clone() attributes {
	return cloneAttributes(a)
}
