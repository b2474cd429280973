package definition

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

// Font

type FontAttributes struct {
	Size   float32
	Colour math.Colour
}

func newFontAttributes() *FontAttributes {
	return &FontAttributes{Size: 24, Colour: math.NewColour(1, 1, 1, 1)}
}

func (a *FontAttributes) decode(f core.JSONFields) {
	a.Size = f.Float32("size", a.Size)
	a.Colour = math.ColourField(f, "colour", a.Colour)
}

func (a *FontAttributes) encode(out map[string]interface{}) {
	out["size"] = a.Size
	out["colour"] = a.Colour
}

func (a *FontAttributes) clone() attributes {
	return cloneAttributes(a)
}

// Material

type MaterialAttributes struct {
	// Shader is the uuid of the shader definition.
	Shader string
	// Texture definition uuids.
	Albedo    string
	Normal    string
	Metallic  string
	Roughness string
	AO        string

	ColourDiffuse  math.Colour
	ColourSpecular math.Colour
	Shininess      float32
}

func newMaterialAttributes() *MaterialAttributes {
	return &MaterialAttributes{
		ColourDiffuse:  math.NewColour(1, 1, 1, 1),
		ColourSpecular: math.NewColour(1, 1, 1, 1),
		Shininess:      32,
	}
}

// TextureUUIDs lists the non empty texture references.
func (a *MaterialAttributes) TextureUUIDs() []string {
	var out []string
	for _, id := range []string{a.Albedo, a.Normal, a.Metallic, a.Roughness, a.AO} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (a *MaterialAttributes) decode(f core.JSONFields) {
	a.Shader = f.String("shader", a.Shader)
	a.Albedo = f.String("albedo", a.Albedo)
	a.Normal = f.String("normal", a.Normal)
	a.Metallic = f.String("metallic", a.Metallic)
	a.Roughness = f.String("roughness", a.Roughness)
	a.AO = f.String("ao", a.AO)
	a.ColourDiffuse = math.ColourField(f, "colourDiffuse", a.ColourDiffuse)
	a.ColourSpecular = math.ColourField(f, "colourSpecular", a.ColourSpecular)
	a.Shininess = f.Float32("shininess", a.Shininess)
}

func (a *MaterialAttributes) encode(out map[string]interface{}) {
	out["shader"] = a.Shader
	out["albedo"] = a.Albedo
	out["normal"] = a.Normal
	out["metallic"] = a.Metallic
	out["roughness"] = a.Roughness
	out["ao"] = a.AO
	out["colourDiffuse"] = a.ColourDiffuse
	out["colourSpecular"] = a.ColourSpecular
	out["shininess"] = a.Shininess
}

func (a *MaterialAttributes) clone() attributes {
	return cloneAttributes(a)
}

// Model

// ModelMaterial maps a material named inside a model file onto a material definition.
type ModelMaterial struct {
	ModelMaterial string
	DreamMaterial string
}

type ModelAttributes struct {
	MaterialList []ModelMaterial
}

func newModelAttributes() *ModelAttributes {
	return &ModelAttributes{}
}

// AddModelMaterial maps modelMaterial to dreamMaterial, replacing any previous mapping.
func (a *ModelAttributes) AddModelMaterial(modelMaterial, dreamMaterial string) {
	for i := range a.MaterialList {
		if a.MaterialList[i].ModelMaterial == modelMaterial {
			a.MaterialList[i].DreamMaterial = dreamMaterial
			return
		}
	}
	a.MaterialList = append(a.MaterialList, ModelMaterial{ModelMaterial: modelMaterial, DreamMaterial: dreamMaterial})
}

func (a *ModelAttributes) RemoveModelMaterial(modelMaterial string) bool {
	for i := range a.MaterialList {
		if a.MaterialList[i].ModelMaterial == modelMaterial {
			a.MaterialList = append(a.MaterialList[:i], a.MaterialList[i+1:]...)
			return true
		}
	}
	return false
}

func (a *ModelAttributes) ClearModelMaterialList() {
	a.MaterialList = nil
}

func (a *ModelAttributes) DreamMaterialForModelMaterial(modelMaterial string) (string, bool) {
	for _, m := range a.MaterialList {
		if m.ModelMaterial == modelMaterial {
			return m.DreamMaterial, true
		}
	}
	return "", false
}

func (a *ModelAttributes) decode(f core.JSONFields) {
	a.MaterialList = nil
	for _, raw := range f.Array("materialList") {
		m, ok := core.ParseJSONFields(raw)
		if !ok {
			core.LogDebug("skipping malformed model material mapping")
			continue
		}
		a.MaterialList = append(a.MaterialList, ModelMaterial{
			ModelMaterial: m.String("modelMaterial", ""),
			DreamMaterial: m.String("dreamMaterial", ""),
		})
	}
}

func (a *ModelAttributes) encode(out map[string]interface{}) {
	list := make([]map[string]string, 0, len(a.MaterialList))
	for _, m := range a.MaterialList {
		list = append(list, map[string]string{
			"modelMaterial": m.ModelMaterial,
			"dreamMaterial": m.DreamMaterial,
		})
	}
	out["materialList"] = list
}

func (a *ModelAttributes) clone() attributes {
	return cloneAttributes(a)
}

// Sprite

type SpriteAttributes struct {
	TileWidth  int
	TileHeight int
}

func newSpriteAttributes() *SpriteAttributes {
	return &SpriteAttributes{}
}

func (a *SpriteAttributes) decode(f core.JSONFields) {
	tile := f.Object("tileSize")
	a.TileWidth = tile.Int("width", a.TileWidth)
	a.TileHeight = tile.Int("height", a.TileHeight)
}

func (a *SpriteAttributes) encode(out map[string]interface{}) {
	out["tileSize"] = map[string]int{"width": a.TileWidth, "height": a.TileHeight}
}

func (a *SpriteAttributes) clone() attributes {
	return cloneAttributes(a)
}

// Texture

type TextureAttributes struct {
	FlipVertical  bool
	IsEnvironment bool
}

func newTextureAttributes() *TextureAttributes {
	return &TextureAttributes{}
}

func (a *TextureAttributes) decode(f core.JSONFields) {
	a.FlipVertical = f.Bool("flipVertical", a.FlipVertical)
	a.IsEnvironment = f.Bool("isEnvironment", a.IsEnvironment)
}

func (a *TextureAttributes) encode(out map[string]interface{}) {
	out["flipVertical"] = a.FlipVertical
	out["isEnvironment"] = a.IsEnvironment
}

func (a *TextureAttributes) clone() attributes {
	return cloneAttributes(a)
}
