package instances

import (
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

type LightInstance struct {
	instanceBase
	lightType   definition.LightType
	ambient     math.Colour
	diffuse     math.Colour
	specular    math.Colour
	intensity   float32
	direction   math.Vec3
	constant    float32
	linear      float32
	quadratic   float32
	cutOff      float32
	outerCutOff float32
}

func NewLightInstance(def *definition.AssetDefinition, transform *math.Transform) *LightInstance {
	l := &LightInstance{instanceBase: newInstanceBase(def, transform)}
	l.loadExtraAttributes()
	return l
}

func (l *LightInstance) loadExtraAttributes() {
	l.lightType = definition.LightTypeFromFormat(l.def.Format())
	attrs := l.def.Light()
	if attrs == nil {
		return
	}
	l.ambient = attrs.Ambient
	l.diffuse = attrs.Diffuse
	l.specular = attrs.Specular
	l.intensity = attrs.Intensity
	l.direction = attrs.Direction
	l.constant = attrs.Constant
	l.linear = attrs.Linear
	l.quadratic = attrs.Quadratic
	l.cutOff = attrs.CutOff
	l.outerCutOff = attrs.OuterCutOff
}

// Load has nothing to read, lights live entirely in their definition.
func (l *LightInstance) Load(projectDir string) bool {
	return l.publish(nil)
}

func (l *LightInstance) LightType() definition.LightType { return l.lightType }

// Color is the ambient colour of the light.
func (l *LightInstance) Color() math.Vec3 { return l.ambient.RGB() }

func (l *LightInstance) Ambient() math.Colour  { return l.ambient }
func (l *LightInstance) Diffuse() math.Colour  { return l.diffuse }
func (l *LightInstance) Specular() math.Colour { return l.specular }
func (l *LightInstance) Intensity() float32    { return l.intensity }

// Direction is only meaningful for directional lights and spotlights.
func (l *LightInstance) Direction() math.Vec3 {
	return l.transform.Orientation.RotateVec3(l.direction).Normalized()
}

func (l *LightInstance) Position() math.Vec3 {
	return l.transform.Translation
}

func (l *LightInstance) Attenuation() (constant, linear, quadratic float32) {
	return l.constant, l.linear, l.quadratic
}

// CutOffs returns the inner and outer spotlight angles in degrees.
func (l *LightInstance) CutOffs() (inner, outer float32) {
	return l.cutOff, l.outerCutOff
}

// AttenuationAt returns the light falloff factor at distance.
func (l *LightInstance) AttenuationAt(distance float32) float32 {
	if l.lightType == definition.LightTypeDirectional {
		return 1
	}
	denom := l.constant + l.linear*distance + l.quadratic*distance*distance
	if denom <= 0 {
		return 1
	}
	return 1 / denom
}
