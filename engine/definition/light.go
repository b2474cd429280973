package definition

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

type LightType uint8

const (
	LightTypePoint LightType = iota
	LightTypeDirectional
	LightTypeSpotlight
)

// LightTypeFromFormat maps a light format to its type. Unknown formats are points.
func LightTypeFromFormat(format string) LightType {
	switch format {
	case FormatLightDirectional:
		return LightTypeDirectional
	case FormatLightSpotlight:
		return LightTypeSpotlight
	}
	return LightTypePoint
}

// Attenuation holds the constant, linear and quadratic falloff terms.
type Attenuation struct {
	Distance  float32
	Constant  float32
	Linear    float32
	Quadratic float32
}

// attenuationTable maps light range to falloff terms, ordered by distance.
var attenuationTable = []Attenuation{
	{7, 1.0, 0.7, 1.8},
	{13, 1.0, 0.35, 0.44},
	{20, 1.0, 0.22, 0.20},
	{32, 1.0, 0.14, 0.07},
	{50, 1.0, 0.09, 0.032},
	{65, 1.0, 0.07, 0.017},
	{100, 1.0, 0.045, 0.0075},
	{160, 1.0, 0.027, 0.0028},
	{200, 1.0, 0.022, 0.0019},
	{325, 1.0, 0.014, 0.0007},
	{600, 1.0, 0.007, 0.0002},
	{3250, 1.0, 0.0014, 0.000007},
}

// AttenuationForDistance returns the first table entry covering distance.
// Anything past the last entry uses the last entry.
func AttenuationForDistance(distance float32) Attenuation {
	for _, a := range attenuationTable {
		if distance <= a.Distance {
			return a
		}
	}
	return attenuationTable[len(attenuationTable)-1]
}

type LightAttributes struct {
	Ambient     math.Colour
	Diffuse     math.Colour
	Specular    math.Colour
	Intensity   float32
	Direction   math.Vec3
	Constant    float32
	Linear      float32
	Quadratic   float32
	CutOff      float32
	OuterCutOff float32
}

func newLightAttributes() *LightAttributes {
	att := AttenuationForDistance(50)
	return &LightAttributes{
		Ambient:     math.NewColourRGB(0, 0, 0),
		Diffuse:     math.NewColourRGB(1, 1, 1),
		Specular:    math.NewColourRGB(1, 1, 1),
		Intensity:   1,
		Direction:   math.NewVec3(0, -1, 0),
		Constant:    att.Constant,
		Linear:      att.Linear,
		Quadratic:   att.Quadratic,
		CutOff:      12.5,
		OuterCutOff: 17.5,
	}
}

// SetAttenuationForDistance copies the table terms for distance into the light.
func (a *LightAttributes) SetAttenuationForDistance(distance float32) {
	att := AttenuationForDistance(distance)
	a.Constant = att.Constant
	a.Linear = att.Linear
	a.Quadratic = att.Quadratic
}

func (a *LightAttributes) decode(f core.JSONFields) {
	a.Ambient = math.ColourField(f, "ambient", a.Ambient)
	a.Diffuse = math.ColourField(f, "diffuse", a.Diffuse)
	a.Specular = math.ColourField(f, "specular", a.Specular)
	a.Intensity = f.Float32("intensity", a.Intensity)
	a.Direction = math.Vec3Field(f, "direction", a.Direction)
	a.Constant = f.Float32("constant", a.Constant)
	a.Linear = f.Float32("linear", a.Linear)
	a.Quadratic = f.Float32("quadratic", a.Quadratic)
	a.CutOff = f.Float32("cutOff", a.CutOff)
	a.OuterCutOff = f.Float32("outerCutOff", a.OuterCutOff)
}

func (a *LightAttributes) encode(out map[string]interface{}) {
	out["ambient"] = a.Ambient
	out["diffuse"] = a.Diffuse
	out["specular"] = a.Specular
	out["intensity"] = a.Intensity
	out["direction"] = a.Direction
	out["constant"] = a.Constant
	out["linear"] = a.Linear
	out["quadratic"] = a.Quadratic
	out["cutOff"] = a.CutOff
	out["outerCutOff"] = a.OuterCutOff
}

func (a *LightAttributes) clone() attributes {
	return cloneAttributes(a)
}
