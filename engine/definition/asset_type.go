package definition

import "strings"

type AssetType uint8

const (
	AssetTypeNone AssetType = iota
	AssetTypeAnimation
	AssetTypeAudio
	AssetTypeFont
	AssetTypeLight
	AssetTypeMaterial
	AssetTypeModel
	AssetTypeParticleEmitter
	AssetTypePath
	AssetTypePhysicsObject
	AssetTypeScript
	AssetTypeShader
	AssetTypeSprite
	AssetTypeTexture
)

type assetTypeInfo struct {
	name     string
	readable string
	formats  []string
}

// Formats. The first format of a type is its default.
const (
	FormatAnimationDream = "dream"

	FormatAudioWav = "wav"
	FormatAudioOgg = "ogg"

	FormatFontTTF = "ttf"
	FormatFontFNT = "fnt"

	FormatLightPoint       = "point"
	FormatLightDirectional = "directional"
	FormatLightSpotlight   = "spotlight"

	FormatMaterialDefault        = "default"
	FormatModelAssimp            = "assimp"
	FormatParticleEmitterDefault = "default"
	FormatPathDefault            = "default"

	FormatCollisionSphere             = "btShpereShape"
	FormatCollisionBox                = "btBoxShape"
	FormatCollisionCylinder           = "btCylinderShape"
	FormatCollisionCapsule            = "btCapsuleShape"
	FormatCollisionCone               = "btConeShape"
	FormatCollisionMultiSphere        = "btMultiSphereShape"
	FormatCollisionConvexHull         = "btConvexHullShape"
	FormatCollisionConvexTriangleMesh = "btConvexTriangleMeshShape"
	FormatCollisionBvhTriangleMesh    = "btBvhTriangleMeshShape"
	FormatCollisionHeightfieldTerrain = "btHeightfieldTerrainShape"
	FormatCollisionStaticPlane        = "btStaticPlaneShape"
	FormatCollisionCompound           = "btCompoundShape"

	FormatScriptGo     = "go"
	FormatShaderGLSL   = "glsl"
	FormatSpriteImage  = "image"
	FormatTextureImage = "image"
)

var assetTypes = map[AssetType]assetTypeInfo{
	AssetTypeAnimation:       {"animation", "Animation", []string{FormatAnimationDream}},
	AssetTypeAudio:           {"audio", "Audio", []string{FormatAudioWav, FormatAudioOgg}},
	AssetTypeFont:            {"font", "Font", []string{FormatFontTTF, FormatFontFNT}},
	AssetTypeLight:           {"light", "Light", []string{FormatLightPoint, FormatLightDirectional, FormatLightSpotlight}},
	AssetTypeMaterial:        {"material", "Material", []string{FormatMaterialDefault}},
	AssetTypeModel:           {"model", "Model", []string{FormatModelAssimp}},
	AssetTypeParticleEmitter: {"particleEmitter", "Particle Emitter", []string{FormatParticleEmitterDefault}},
	AssetTypePath:            {"path", "Path", []string{FormatPathDefault}},
	AssetTypePhysicsObject: {"physicsObject", "Physics Object", []string{
		FormatCollisionBox,
		FormatCollisionSphere,
		FormatCollisionCylinder,
		FormatCollisionCapsule,
		FormatCollisionCone,
		FormatCollisionMultiSphere,
		FormatCollisionConvexHull,
		FormatCollisionConvexTriangleMesh,
		FormatCollisionBvhTriangleMesh,
		FormatCollisionHeightfieldTerrain,
		FormatCollisionStaticPlane,
		FormatCollisionCompound,
	}},
	AssetTypeScript:  {"script", "Script", []string{FormatScriptGo}},
	AssetTypeShader:  {"shader", "Shader", []string{FormatShaderGLSL}},
	AssetTypeSprite:  {"sprite", "Sprite", []string{FormatSpriteImage}},
	AssetTypeTexture: {"texture", "Texture", []string{FormatTextureImage}},
}

// AllAssetTypes lists every concrete type in declaration order.
func AllAssetTypes() []AssetType {
	out := make([]AssetType, 0, len(assetTypes))
	for t := AssetTypeAnimation; t <= AssetTypeTexture; t++ {
		out = append(out, t)
	}
	return out
}

// String returns the name used in project files and as the asset directory name.
func (t AssetType) String() string {
	if info, ok := assetTypes[t]; ok {
		return info.name
	}
	return "none"
}

func (t AssetType) ReadableName() string {
	if info, ok := assetTypes[t]; ok {
		return info.readable
	}
	return "None"
}

func (t AssetType) Valid() bool {
	_, ok := assetTypes[t]
	return ok
}

// Formats lists the formats a type can take.
func (t AssetType) Formats() []string {
	info, ok := assetTypes[t]
	if !ok {
		return nil
	}
	out := make([]string, len(info.formats))
	copy(out, info.formats)
	return out
}

func (t AssetType) DefaultFormat() string {
	info, ok := assetTypes[t]
	if !ok || len(info.formats) == 0 {
		return ""
	}
	return info.formats[0]
}

func (t AssetType) SupportsFormat(format string) bool {
	for _, f := range assetTypes[t].formats {
		if f == format {
			return true
		}
	}
	return false
}

// ParseAssetType accepts the file name ("physicsObject") or the readable
// name ("Physics Object"). Unknown strings give AssetTypeNone.
func ParseAssetType(s string) AssetType {
	for t, info := range assetTypes {
		if s == info.name || s == info.readable || strings.EqualFold(s, info.name) {
			return t
		}
	}
	return AssetTypeNone
}
