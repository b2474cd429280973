package definition

import (
	"encoding/json"
	"path/filepath"

	"github.com/jinzhu/copier"

	"github.com/spaghettifunk/dream/engine/core"
)

const (
	DefaultAssetDefinitionName = "New Asset Definition"
	// AssetsDirectoryName is the directory under the project root holding asset data.
	AssetsDirectoryName = "assets"
)

// attributes is the variant payload selected by the asset type.
type attributes interface {
	decode(f core.JSONFields)
	encode(out map[string]interface{})
	clone() attributes
}

/**
 * @brief AssetDefinition is the declarative description of a reusable asset.
 * The common fields are shared by every type; type specific attributes live
 * in exactly one variant payload reached through the typed accessors.
 */
type AssetDefinition struct {
	uuid    string
	name    string
	group   string
	typ     AssetType
	format  string
	attrs   attributes
	project *ProjectDefinition
}

// NewAssetDefinition creates a definition of type t owned by project, with
// the type's default format and default attributes.
func NewAssetDefinition(project *ProjectDefinition, t AssetType) *AssetDefinition {
	return &AssetDefinition{
		uuid:    core.NewUUID(),
		name:    DefaultAssetDefinitionName,
		typ:     t,
		format:  t.DefaultFormat(),
		attrs:   newAttributes(t),
		project: project,
	}
}

func newAttributes(t AssetType) attributes {
	switch t {
	case AssetTypeAnimation:
		return newAnimationAttributes()
	case AssetTypeAudio:
		return newAudioAttributes()
	case AssetTypeFont:
		return newFontAttributes()
	case AssetTypeLight:
		return newLightAttributes()
	case AssetTypeMaterial:
		return newMaterialAttributes()
	case AssetTypeModel:
		return newModelAttributes()
	case AssetTypeParticleEmitter:
		return newParticleEmitterAttributes()
	case AssetTypePath:
		return newPathAttributes()
	case AssetTypePhysicsObject:
		return newPhysicsObjectAttributes()
	case AssetTypeSprite:
		return newSpriteAttributes()
	case AssetTypeTexture:
		return newTextureAttributes()
	}
	return &noAttributes{}
}

func (d *AssetDefinition) UUID() string {
	return d.uuid
}

func (d *AssetDefinition) Name() string {
	return d.name
}

func (d *AssetDefinition) SetName(name string) {
	d.name = name
	d.changed()
}

func (d *AssetDefinition) Group() string {
	return d.group
}

func (d *AssetDefinition) SetGroup(group string) {
	d.group = group
	d.changed()
}

func (d *AssetDefinition) Type() AssetType {
	return d.typ
}

// SetType switches the variant. The payload is reset to the new type's
// defaults and the format to its default format.
func (d *AssetDefinition) SetType(t AssetType) {
	if t == d.typ {
		return
	}
	d.typ = t
	d.format = t.DefaultFormat()
	d.attrs = newAttributes(t)
	d.changed()
}

func (d *AssetDefinition) Format() string {
	return d.format
}

func (d *AssetDefinition) SetFormat(format string) {
	if !d.typ.SupportsFormat(format) {
		core.LogWarn("format %q is not valid for %s assets", format, d.typ)
	}
	d.format = format
	d.changed()
}

func (d *AssetDefinition) Project() *ProjectDefinition {
	return d.project
}

// AssetPath is the data location relative to the assets directory.
func (d *AssetDefinition) AssetPath() string {
	return filepath.Join(d.typ.String(), d.uuid, d.format)
}

// AssetDirectory is the directory holding the data for this asset under projectDir.
func (d *AssetDefinition) AssetDirectory(projectDir string) string {
	return filepath.Join(projectDir, AssetsDirectoryName, d.typ.String(), d.uuid)
}

// DataPath is the absolute location of the asset data file under projectDir.
func (d *AssetDefinition) DataPath(projectDir string) string {
	return filepath.Join(projectDir, AssetsDirectoryName, d.AssetPath())
}

// Duplicate deep copies the definition with a fresh uuid. The copy is not
// added to the project.
func (d *AssetDefinition) Duplicate() *AssetDefinition {
	dup := &AssetDefinition{
		uuid:    core.NewUUID(),
		name:    d.name,
		group:   d.group,
		typ:     d.typ,
		format:  d.format,
		attrs:   d.payload().clone(),
		project: d.project,
	}
	return dup
}

func (d *AssetDefinition) changed() {
	if d.project != nil {
		d.project.notifyChanged(d.uuid)
	}
}

// payload makes sure a definition is never without a variant.
func (d *AssetDefinition) payload() attributes {
	if d.attrs == nil {
		d.attrs = newAttributes(d.typ)
	}
	return d.attrs
}

func (d *AssetDefinition) IsTypeAnimation() bool       { return d.typ == AssetTypeAnimation }
func (d *AssetDefinition) IsTypeAudio() bool           { return d.typ == AssetTypeAudio }
func (d *AssetDefinition) IsTypeFont() bool            { return d.typ == AssetTypeFont }
func (d *AssetDefinition) IsTypeLight() bool           { return d.typ == AssetTypeLight }
func (d *AssetDefinition) IsTypeMaterial() bool        { return d.typ == AssetTypeMaterial }
func (d *AssetDefinition) IsTypeModel() bool           { return d.typ == AssetTypeModel }
func (d *AssetDefinition) IsTypeParticleEmitter() bool { return d.typ == AssetTypeParticleEmitter }
func (d *AssetDefinition) IsTypePath() bool            { return d.typ == AssetTypePath }
func (d *AssetDefinition) IsTypePhysicsObject() bool   { return d.typ == AssetTypePhysicsObject }
func (d *AssetDefinition) IsTypeScript() bool          { return d.typ == AssetTypeScript }
func (d *AssetDefinition) IsTypeShader() bool          { return d.typ == AssetTypeShader }
func (d *AssetDefinition) IsTypeSprite() bool          { return d.typ == AssetTypeSprite }
func (d *AssetDefinition) IsTypeTexture() bool         { return d.typ == AssetTypeTexture }

// The typed accessors return nil when the definition is of another type.

func (d *AssetDefinition) Animation() *AnimationAttributes {
	a, _ := d.payload().(*AnimationAttributes)
	return a
}

func (d *AssetDefinition) Audio() *AudioAttributes {
	a, _ := d.payload().(*AudioAttributes)
	return a
}

func (d *AssetDefinition) Font() *FontAttributes {
	a, _ := d.payload().(*FontAttributes)
	return a
}

func (d *AssetDefinition) Light() *LightAttributes {
	a, _ := d.payload().(*LightAttributes)
	return a
}

func (d *AssetDefinition) Material() *MaterialAttributes {
	a, _ := d.payload().(*MaterialAttributes)
	return a
}

func (d *AssetDefinition) Model() *ModelAttributes {
	a, _ := d.payload().(*ModelAttributes)
	return a
}

func (d *AssetDefinition) ParticleEmitter() *ParticleEmitterAttributes {
	a, _ := d.payload().(*ParticleEmitterAttributes)
	return a
}

func (d *AssetDefinition) Path() *PathAttributes {
	a, _ := d.payload().(*PathAttributes)
	return a
}

func (d *AssetDefinition) PhysicsObject() *PhysicsObjectAttributes {
	a, _ := d.payload().(*PhysicsObjectAttributes)
	return a
}

func (d *AssetDefinition) Sprite() *SpriteAttributes {
	a, _ := d.payload().(*SpriteAttributes)
	return a
}

func (d *AssetDefinition) Texture() *TextureAttributes {
	a, _ := d.payload().(*TextureAttributes)
	return a
}

func (d *AssetDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.toMap())
}

func (d *AssetDefinition) toMap() map[string]interface{} {
	out := map[string]interface{}{
		"uuid":   d.uuid,
		"name":   d.name,
		"type":   d.typ.String(),
		"format": d.format,
	}
	if d.group != "" {
		out["group"] = d.group
	}
	d.payload().encode(out)
	return out
}

// UnmarshalJSON never fails. Unknown types and malformed attributes are
// logged and replaced with defaults.
func (d *AssetDefinition) UnmarshalJSON(data []byte) error {
	d.decode(data, AssetTypeNone)
	return nil
}

// decode reads data. fallback is the type used when the entry has no "type"
// key, such as an entry found inside a type partition.
func (d *AssetDefinition) decode(data []byte, fallback AssetType) {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		core.LogWarn("asset definition is not a JSON object, using defaults")
	}

	d.uuid = f.String("uuid", "")
	if d.uuid == "" {
		d.uuid = core.NewUUID()
		core.LogDebug("asset definition without uuid, generated %s", d.uuid)
	}
	d.name = f.String("name", DefaultAssetDefinitionName)
	d.group = f.String("group", "")

	typeName := f.String("type", fallback.String())
	d.typ = ParseAssetType(typeName)
	if d.typ == AssetTypeNone {
		core.LogWarn("asset definition %s has unknown type %q", d.uuid, typeName)
	}

	d.format = f.String("format", d.typ.DefaultFormat())
	if d.typ.Valid() && !d.typ.SupportsFormat(d.format) {
		core.LogDebug("asset definition %s has unsupported format %q", d.uuid, d.format)
	}

	d.attrs = newAttributes(d.typ)
	d.attrs.decode(f)
}

// cloneAttributes deep copies a variant payload.
func cloneAttributes[T any](src *T) *T {
	dst := new(T)
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		core.LogError("could not copy asset attributes: %s", err)
	}
	return dst
}

// noAttributes is the payload of types that carry nothing beyond their format.
type noAttributes struct{}

func (a *noAttributes) decode(core.JSONFields)        {}
func (a *noAttributes) encode(map[string]interface{}) {}
func (a *noAttributes) clone() attributes             { return &noAttributes{} }
