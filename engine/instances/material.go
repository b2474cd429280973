package instances

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

// Texture slots of a material.
const (
	SlotAlbedo    = "albedo"
	SlotNormal    = "normal"
	SlotMetallic  = "metallic"
	SlotRoughness = "roughness"
	SlotAO        = "ao"
)

// MaterialInstance resolves the shader and textures a material refers to.
type MaterialInstance struct {
	instanceBase
	project *definition.ProjectDefinition

	shader         *definition.AssetDefinition
	textures       map[string]*definition.AssetDefinition
	colourDiffuse  math.Colour
	colourSpecular math.Colour
	shininess      float32
}

func NewMaterialInstance(def *definition.AssetDefinition, transform *math.Transform, project *definition.ProjectDefinition) *MaterialInstance {
	m := &MaterialInstance{
		instanceBase: newInstanceBase(def, transform),
		project:      project,
		textures:     make(map[string]*definition.AssetDefinition),
	}
	if attrs := def.Material(); attrs != nil {
		m.colourDiffuse = attrs.ColourDiffuse
		m.colourSpecular = attrs.ColourSpecular
		m.shininess = attrs.Shininess
	}
	return m
}

// Load resolves references. A missing texture is skipped, a missing shader
// fails the load.
func (m *MaterialInstance) Load(projectDir string) bool {
	attrs := m.def.Material()
	if attrs == nil || m.project == nil {
		core.LogError("material %s has no project to resolve against", m.name)
		return false
	}

	var shader *definition.AssetDefinition
	if attrs.Shader != "" {
		shader = m.project.AssetDefinitionByUUID(attrs.Shader)
		if shader == nil || !shader.IsTypeShader() {
			core.LogError("material %s references missing shader %s", m.name, attrs.Shader)
			return false
		}
	}

	slots := map[string]string{
		SlotAlbedo:    attrs.Albedo,
		SlotNormal:    attrs.Normal,
		SlotMetallic:  attrs.Metallic,
		SlotRoughness: attrs.Roughness,
		SlotAO:        attrs.AO,
	}
	textures := make(map[string]*definition.AssetDefinition)
	for slot, uuid := range slots {
		if uuid == "" {
			continue
		}
		tex := m.project.AssetDefinitionByUUID(uuid)
		if tex == nil || !tex.IsTypeTexture() {
			core.LogWarn("material %s: %s texture %s not found", m.name, slot, uuid)
			continue
		}
		textures[slot] = tex
	}

	return m.publish(func() {
		m.shader = shader
		m.textures = textures
	})
}

func (m *MaterialInstance) Shader() *definition.AssetDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shader
}

// Texture returns the texture definition bound to slot, or nil.
func (m *MaterialInstance) Texture(slot string) *definition.AssetDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.textures[slot]
}

func (m *MaterialInstance) ColourDiffuse() math.Colour  { return m.colourDiffuse }
func (m *MaterialInstance) ColourSpecular() math.Colour { return m.colourSpecular }
func (m *MaterialInstance) Shininess() float32          { return m.shininess }
