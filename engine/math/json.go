package math

import (
	"encoding/json"

	"github.com/spaghettifunk/dream/engine/core"
)

// The decoders in this file never fail: anything that is not the expected
// object shape decodes to the zero or default value and logs at debug level.

type vec2JSON struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type vec3JSON struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type quatJSON struct {
	W float32 `json:"w"`
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type colourJSON struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

func (v Vec2) MarshalJSON() ([]byte, error) {
	return json.Marshal(vec2JSON{v.X, v.Y})
}

func (v *Vec2) UnmarshalJSON(data []byte) error {
	*v = Vec2FromJSON(data, Vec2{})
	return nil
}

func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal(vec3JSON{v.X, v.Y, v.Z})
}

func (v *Vec3) UnmarshalJSON(data []byte) error {
	*v = Vec3FromJSON(data, Vec3{})
	return nil
}

func (q Quaternion) MarshalJSON() ([]byte, error) {
	return json.Marshal(quatJSON{q.W, q.X, q.Y, q.Z})
}

func (q *Quaternion) UnmarshalJSON(data []byte) error {
	*q = QuaternionFromJSON(data, NewQuatIdentity())
	return nil
}

func (c Colour) MarshalJSON() ([]byte, error) {
	return json.Marshal(colourJSON{c.R, c.G, c.B, c.A})
}

func (c *Colour) UnmarshalJSON(data []byte) error {
	*c = ColourFromJSON(data, Colour{A: 1})
	return nil
}

func Vec2FromJSON(data []byte, def Vec2) Vec2 {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		var arr []float32
		if json.Unmarshal(data, &arr) == nil && len(arr) >= 2 {
			return Vec2{arr[0], arr[1]}
		}
		core.LogDebug("malformed vec2 %q, using default", string(data))
		return def
	}
	return Vec2{f.Float32("x", def.X), f.Float32("y", def.Y)}
}

func Vec3FromJSON(data []byte, def Vec3) Vec3 {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		var arr []float32
		if json.Unmarshal(data, &arr) == nil && len(arr) >= 3 {
			return Vec3{arr[0], arr[1], arr[2]}
		}
		core.LogDebug("malformed vec3 %q, using default", string(data))
		return def
	}
	return Vec3{f.Float32("x", def.X), f.Float32("y", def.Y), f.Float32("z", def.Z)}
}

// QuaternionFromJSON reads {w,x,y,z}. The result is normalized.
func QuaternionFromJSON(data []byte, def Quaternion) Quaternion {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		core.LogDebug("malformed quaternion %q, using default", string(data))
		return def
	}
	q := Quaternion{
		X: f.Float32("x", def.X),
		Y: f.Float32("y", def.Y),
		Z: f.Float32("z", def.Z),
		W: f.Float32("w", def.W),
	}
	return q.Normalize()
}

// ColourFromJSON reads {r,g,b[,a]}; a missing alpha takes def.A.
func ColourFromJSON(data []byte, def Colour) Colour {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		var arr []float32
		if json.Unmarshal(data, &arr) == nil && len(arr) >= 3 {
			c := Colour{arr[0], arr[1], arr[2], def.A}
			if len(arr) >= 4 {
				c.A = arr[3]
			}
			return c
		}
		core.LogDebug("malformed colour %q, using default", string(data))
		return def
	}
	return Colour{f.Float32("r", def.R), f.Float32("g", def.G), f.Float32("b", def.B), f.Float32("a", def.A)}
}

// Field helpers used by the definition decoders.

func Vec2Field(f core.JSONFields, key string, def Vec2) Vec2 {
	raw, ok := f.Raw(key)
	if !ok {
		return def
	}
	return Vec2FromJSON(raw, def)
}

func Vec3Field(f core.JSONFields, key string, def Vec3) Vec3 {
	raw, ok := f.Raw(key)
	if !ok {
		return def
	}
	return Vec3FromJSON(raw, def)
}

func QuaternionField(f core.JSONFields, key string, def Quaternion) Quaternion {
	raw, ok := f.Raw(key)
	if !ok {
		return def
	}
	return QuaternionFromJSON(raw, def)
}

func ColourField(f core.JSONFields, key string, def Colour) Colour {
	raw, ok := f.Raw(key)
	if !ok {
		return def
	}
	return ColourFromJSON(raw, def)
}

const (
	transformTypeAbsoluteName = "absolute"
	transformTypeOffsetName   = "offset"
)

func (tt TransformType) String() string {
	if tt == TransformTypeOffset {
		return transformTypeOffsetName
	}
	return transformTypeAbsoluteName
}

// ParseTransformType defaults to absolute for anything it does not recognise.
func ParseTransformType(s string) TransformType {
	if s == transformTypeOffsetName {
		return TransformTypeOffset
	}
	return TransformTypeAbsolute
}

type transformJSON struct {
	Translation   Vec3       `json:"translation"`
	Orientation   Quaternion `json:"orientation"`
	Scale         Vec3       `json:"scale"`
	TransformType string     `json:"transformType"`
}

func (t Transform) MarshalJSON() ([]byte, error) {
	return json.Marshal(transformJSON{
		Translation:   t.Translation,
		Orientation:   t.Orientation,
		Scale:         t.Scale,
		TransformType: t.Type.String(),
	})
}

func (t *Transform) UnmarshalJSON(data []byte) error {
	*t = TransformFromJSON(data)
	return nil
}

// TransformFromJSON accepts the orientation quaternion or, for older files,
// a "rotation" object holding Euler angles in degrees.
func TransformFromJSON(data []byte) Transform {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		core.LogDebug("malformed transform, using identity")
		return TransformCreate()
	}

	orientation := NewQuatIdentity()
	if f.Has("orientation") {
		orientation = QuaternionField(f, "orientation", orientation)
	} else if f.Has("rotation") {
		deg := Vec3Field(f, "rotation", Vec3{})
		orientation = NewQuatFromEuler(DegToRad(deg.X), DegToRad(deg.Y), DegToRad(deg.Z))
	}

	t := TransformFromPositionRotationScale(
		Vec3Field(f, "translation", NewVec3Zero()),
		orientation,
		Vec3Field(f, "scale", NewVec3One()),
	)
	t.Type = ParseTransformType(f.String("transformType", transformTypeAbsoluteName))
	return t
}
