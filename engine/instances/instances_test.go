package instances

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/physics"
)

type fakeUploader struct {
	next     uint32
	uploaded map[uint32]*image.RGBA
	released []uint32
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: make(map[uint32]*image.RGBA)}
}

func (f *fakeUploader) UploadTexture(owner string, img *image.RGBA) uint32 {
	f.next++
	f.uploaded[f.next] = img
	return f.next
}

func (f *fakeUploader) ReleaseTexture(id uint32) {
	f.released = append(f.released, id)
}

func writeAsset(t *testing.T, projectDir string, def *definition.AssetDefinition, data []byte) {
	t.Helper()
	path := def.DataPath(projectDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTransform() *math.Transform {
	tr := math.TransformCreate()
	return &tr
}

func TestNewInstanceDispatchesOnType(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	for _, typ := range definition.AllAssetTypes() {
		def := project.CreateNewAssetDefinition(typ)
		inst, err := NewInstance(def, newTransform(), Dependencies{Project: project})
		require.NoError(t, err, typ.String())
		assert.Equal(t, typ, inst.Type())
		assert.Equal(t, def.UUID(), inst.UUID())
		assert.Same(t, def, inst.Definition())
		assert.False(t, inst.Loaded())
	}

	_, err := NewInstance(definition.NewAssetDefinition(project, definition.AssetTypeNone), newTransform(), Dependencies{})
	assert.ErrorIs(t, err, core.ErrUnknownAssetType)

	_, err = NewInstance(nil, newTransform(), Dependencies{})
	assert.ErrorIs(t, err, core.ErrAssetDefinitionNotFound)
}

func TestLightInstanceReadsAttributes(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeLight)
	def.SetFormat(definition.FormatLightSpotlight)
	def.Light().Ambient = math.NewColourRGB(0.1, 0.2, 0.3)
	def.Light().Intensity = 1

	light := NewLightInstance(def, newTransform())
	assert.True(t, light.Load(t.TempDir()))
	assert.True(t, light.Loaded())

	c := light.Color()
	assert.InDelta(t, 0.1, c.X, 1e-6)
	assert.InDelta(t, 0.2, c.Y, 1e-6)
	assert.InDelta(t, 0.3, c.Z, 1e-6)
	assert.Equal(t, float32(1), light.Intensity())
	assert.Equal(t, definition.LightTypeSpotlight, light.LightType())

	inner, outer := light.CutOffs()
	assert.Equal(t, float32(12.5), inner)
	assert.Equal(t, float32(17.5), outer)
	assert.InDelta(t, 1.0, light.AttenuationAt(0), 1e-6)
	assert.Less(t, light.AttenuationAt(10), float32(1))
}

func TestSpriteWithMissingFileStaysInert(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeSprite)

	sprite := NewSpriteInstance(def, newTransform())
	assert.False(t, sprite.Load(t.TempDir()))
	assert.False(t, sprite.Loaded())
	assert.Zero(t, sprite.Texture())
	assert.Zero(t, sprite.Width())
	assert.Zero(t, sprite.Height())
	assert.False(t, sprite.NeedsUpload())
}

func TestSpriteRejectsNonImageData(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeSprite)
	writeAsset(t, dir, def, []byte("definitely not pixels"))

	sprite := NewSpriteInstance(def, newTransform())
	assert.False(t, sprite.Load(dir))
	assert.Zero(t, sprite.Texture())
}

func TestSpriteDecodesThenUploads(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeSprite)
	def.Sprite().TileWidth = 2
	def.Sprite().TileHeight = 2
	writeAsset(t, dir, def, pngBytes(t, image.NewRGBA(image.Rect(0, 0, 4, 2))))

	sprite := NewSpriteInstance(def, newTransform())
	require.True(t, sprite.Load(dir))
	assert.True(t, sprite.NeedsUpload())
	assert.Zero(t, sprite.Texture())

	up := newFakeUploader()
	sprite.Upload(up)
	assert.False(t, sprite.NeedsUpload())
	assert.Equal(t, uint32(1), sprite.Texture())
	assert.Equal(t, 4, sprite.Width())
	assert.Equal(t, 2, sprite.Height())
	assert.Equal(t, 2, sprite.TileCount())

	sprite.SetTile(3)
	assert.Equal(t, 1, sprite.Tile())

	sprite.Destroy()
	assert.Equal(t, []uint32{1}, up.released)
	assert.Zero(t, sprite.Texture())
	assert.False(t, sprite.Loaded())
}

func TestTextureFlipsVertically(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeTexture)
	def.Texture().FlipVertical = true

	src := image.NewRGBA(image.Rect(0, 0, 1, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(0, 1, color.RGBA{B: 255, A: 255})
	writeAsset(t, dir, def, pngBytes(t, src))

	tex := NewTextureInstance(def, newTransform())
	require.True(t, tex.Load(dir))
	up := newFakeUploader()
	tex.Upload(up)

	uploaded := up.uploaded[tex.Texture()]
	require.NotNil(t, uploaded)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, uploaded.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, uploaded.RGBAAt(0, 1))
}

func TestFontInstanceLoadsTrueType(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeFont)
	def.Font().Size = 16
	writeAsset(t, dir, def, goregular.TTF)

	f := NewFontInstance(def, newTransform())
	require.True(t, f.Load(dir))
	assert.Equal(t, "Go", f.Face())
	assert.Equal(t, float32(16), f.Size())
	assert.Positive(t, f.LineHeight())
	assert.Positive(t, f.Baseline())
	assert.Positive(t, f.GlyphCount())
}

func TestFontInstanceMissingFile(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeFont)
	f := NewFontInstance(def, newTransform())
	assert.False(t, f.Load(t.TempDir()))
	assert.Empty(t, f.Face())
}

func TestAudioInstancePlayback(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeAudio)
	def.Audio().AddMarker("middle", 30000)

	path := def.DataPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	out, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(out, beep.Silence(44100), format))
	require.NoError(t, out.Close())

	audio := NewAudioInstance(def, newTransform())
	require.True(t, audio.Load(dir))
	assert.Equal(t, 44100, audio.SampleRate())
	assert.Equal(t, 2, audio.Channels())
	assert.Equal(t, 44100, audio.Samples())
	assert.Equal(t, time.Second, audio.Duration())

	assert.Nil(t, audio.Advance(time.Second))
	audio.Play()
	assert.Equal(t, AudioStatusPlaying, audio.Status())
	assert.Empty(t, audio.Advance(500*time.Millisecond))
	assert.Equal(t, 22050, audio.Position())

	crossed := audio.Advance(600 * time.Millisecond)
	require.Len(t, crossed, 1)
	assert.Equal(t, "middle", crossed[0].Name)
	assert.Equal(t, AudioStatusStopped, audio.Status())
	assert.Zero(t, audio.Position())
}

func TestAudioInstanceRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeAudio)
	writeAsset(t, dir, def, []byte("RIFF but not really"))

	audio := NewAudioInstance(def, newTransform())
	assert.False(t, audio.Load(dir))
	audio.Play()
	assert.Equal(t, AudioStatusStopped, audio.Status())
}

const testScript = `package main

import "fmt"

var updates int

func OnInit(id string) {
	fmt.Println("init", id)
}

func OnUpdate(id string, delta float64) {
	updates++
	fmt.Printf("update %d\n", updates)
}
`

func TestScriptInstanceCallbacks(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeScript)
	writeAsset(t, dir, def, []byte(testScript))

	var console bytes.Buffer
	script := NewScriptInstance(def, newTransform(), &console)
	require.True(t, script.Load(dir))
	assert.True(t, script.HasInit())
	assert.True(t, script.HasUpdate())
	assert.False(t, script.HasEvent())

	assert.False(t, script.Update("obj", 0.016), "update before init")
	assert.True(t, script.Init("obj"))
	assert.False(t, script.Init("obj"))
	assert.True(t, script.Update("obj", 0.016))
	assert.False(t, script.Event("obj", "hit"))

	assert.Equal(t, "init obj\nupdate 1\n", console.String())
}

func TestScriptInstanceLoadFailures(t *testing.T) {
	tests := map[string]string{
		"syntax error":    "package main\nfunc OnInit(id string) {",
		"wrong signature": "package main\nfunc OnInit(n int) {}\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			project := definition.NewProjectDefinition("test")
			def := project.CreateNewAssetDefinition(definition.AssetTypeScript)
			writeAsset(t, dir, def, []byte(src))

			script := NewScriptInstance(def, newTransform(), nil)
			assert.False(t, script.Load(dir))
			assert.False(t, script.Init("obj"))
		})
	}
}

func TestShaderInstanceReadsStages(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeShader)

	assetDir := def.AssetDirectory(dir)
	require.NoError(t, os.MkdirAll(assetDir, 0o755))
	vertex := "#version 330 core\nuniform mat4 model;\nuniform mat4 projection;\nvoid main() {}\n"
	fragment := "#version 330 core\nuniform sampler2D diffuse;\nuniform mat4 model;\nuniform vec3 lights[4];\nvoid main() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, VertexShaderFile), []byte(vertex), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, FragmentShaderFile), []byte(fragment), 0o644))

	shader := NewShaderInstance(def, newTransform())
	require.True(t, shader.Load(dir))
	assert.Equal(t, vertex, shader.VertexSource())
	assert.Equal(t, fragment, shader.FragmentSource())
	assert.Equal(t, []string{"diffuse", "lights", "model", "projection"}, shader.Uniforms())
	assert.True(t, shader.HasUniform("model"))
	assert.False(t, shader.HasUniform("view"))
}

func TestShaderInstanceNeedsBothStages(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeShader)
	assetDir := def.AssetDirectory(dir)
	require.NoError(t, os.MkdirAll(assetDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, VertexShaderFile), []byte("void main() {}"), 0o644))

	assert.False(t, NewShaderInstance(def, newTransform()).Load(dir))
}

func TestModelInstanceScansOBJ(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeModel)
	def.Model().AddModelMaterial("Wood", "material-uuid")
	obj := `# cube corner
v -1 0 0
v 1 2 0
v 0 0 3
usemtl Wood
f 1 2 3
usemtl Metal
f 3 2 1
usemtl Wood
`
	writeAsset(t, dir, def, []byte(obj))

	model := NewModelInstance(def, newTransform())
	require.True(t, model.Load(dir))
	assert.Equal(t, 3, model.VertexCount())
	assert.Equal(t, 2, model.FaceCount())
	assert.Equal(t, []string{"Wood", "Metal"}, model.ModelMaterials())
	bounds := model.BoundingBox()
	assert.Equal(t, math.NewVec3(-1, 0, 0), bounds.Min)
	assert.Equal(t, math.NewVec3(1, 2, 3), bounds.Max)

	uuid, ok := model.MaterialFor("Wood")
	assert.True(t, ok)
	assert.Equal(t, "material-uuid", uuid)
	_, ok = model.MaterialFor("Metal")
	assert.False(t, ok)
}

func TestModelInstanceRejectsBadVertices(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeModel)
	writeAsset(t, dir, def, []byte("v 1 two 3\n"))
	assert.False(t, NewModelInstance(def, newTransform()).Load(dir))
}

func TestMaterialInstanceResolvesReferences(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	shader := project.CreateNewAssetDefinition(definition.AssetTypeShader)
	albedo := project.CreateNewAssetDefinition(definition.AssetTypeTexture)
	def := project.CreateNewAssetDefinition(definition.AssetTypeMaterial)
	def.Material().Shader = shader.UUID()
	def.Material().Albedo = albedo.UUID()
	def.Material().Normal = "missing"

	mat := NewMaterialInstance(def, newTransform(), project)
	require.True(t, mat.Load(t.TempDir()))
	assert.Same(t, shader, mat.Shader())
	assert.Same(t, albedo, mat.Texture(SlotAlbedo))
	assert.Nil(t, mat.Texture(SlotNormal))
	assert.Equal(t, float32(32), mat.Shininess())

	def.Material().Shader = albedo.UUID()
	assert.False(t, NewMaterialInstance(def, newTransform(), project).Load(t.TempDir()))
}

func TestParticleEmitterSpawnsAtRate(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeParticleEmitter)
	def.ParticleEmitter().PerSecond = 10
	def.ParticleEmitter().Lifetime = 10
	def.ParticleEmitter().Gravity = 0

	emitter := NewParticleEmitterInstance(def, newTransform())
	require.True(t, emitter.Load(""))
	emitter.Update(1)
	assert.Equal(t, 10, emitter.ParticleCount())
	emitter.Update(0.5)
	assert.Equal(t, 15, emitter.ParticleCount())
	emitter.Update(0)
	assert.Equal(t, 15, emitter.ParticleCount())

	for _, p := range emitter.Particles() {
		assert.InDelta(t, 0, p.Position.X, 0.5)
		assert.InDelta(t, 0, p.Position.Z, 0.5)
		assert.Equal(t, float32(1), p.Velocity.Y)
	}
}

func TestParticleEmitterExpiresParticles(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeParticleEmitter)
	def.ParticleEmitter().PerSecond = 4
	def.ParticleEmitter().Lifetime = 1

	emitter := NewParticleEmitterInstance(def, newTransform())
	emitter.Update(0.5)
	require.Equal(t, 2, emitter.ParticleCount())
	emitter.Update(1)
	assert.Equal(t, 4, emitter.ParticleCount())
	for _, p := range emitter.Particles() {
		assert.Zero(t, p.Age)
	}

	emitter.Destroy()
	assert.Zero(t, emitter.ParticleCount())
}

func TestPhysicsObjectInstanceOwnsBody(t *testing.T) {
	world := physics.NewWorld(math.NewVec3(0, -10, 0), 4)
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypePhysicsObject)

	tr := math.TransformFromPosition(math.NewVec3(0, 10, 0))
	obj := NewPhysicsObjectInstance(def, &tr, world)
	assert.Nil(t, obj.Body())
	require.True(t, obj.Load(""))
	require.Equal(t, 1, world.BodyCount())
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0.5), obj.Body().HalfExtents)

	world.Step(0.1)
	obj.SyncTransform()
	assert.Less(t, tr.Translation.Y, float32(10))

	obj.Destroy()
	assert.Zero(t, world.BodyCount())
	assert.Nil(t, obj.Body())
	assert.False(t, obj.Loaded())
}

func TestLoadAfterDestroyLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	world := physics.NewWorld(math.NewVec3(0, -10, 0), 4)
	project := definition.NewProjectDefinition("test")

	physicsDef := project.CreateNewAssetDefinition(definition.AssetTypePhysicsObject)
	obj := NewPhysicsObjectInstance(physicsDef, newTransform(), world)
	obj.Destroy()
	assert.False(t, obj.Load(dir))
	assert.False(t, obj.Loaded())
	assert.Nil(t, obj.Body())
	assert.Empty(t, world.Bodies())

	spriteDef := project.CreateNewAssetDefinition(definition.AssetTypeSprite)
	writeAsset(t, dir, spriteDef, pngBytes(t, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	sprite := NewSpriteInstance(spriteDef, newTransform())
	sprite.Destroy()
	assert.False(t, sprite.Load(dir))
	assert.False(t, sprite.Loaded())
	assert.False(t, sprite.NeedsUpload())

	tests := []struct {
		name string
		typ  definition.AssetType
	}{
		{"light", definition.AssetTypeLight},
		{"path", definition.AssetTypePath},
		{"animation", definition.AssetTypeAnimation},
		{"particle emitter", definition.AssetTypeParticleEmitter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := project.CreateNewAssetDefinition(tt.typ)
			inst, err := NewInstance(def, newTransform(), Dependencies{Project: project})
			require.NoError(t, err)
			inst.Destroy()
			assert.False(t, inst.Load(dir))
			assert.False(t, inst.Loaded())
		})
	}
}

func TestScriptDestroyedBeforeLoadKeepsNoHooks(t *testing.T) {
	dir := t.TempDir()
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeScript)
	writeAsset(t, dir, def, []byte("package main\n\nfunc OnInit(id string) {}\n"))

	script := NewScriptInstance(def, newTransform(), nil)
	script.Destroy()
	assert.False(t, script.Load(dir))
	assert.False(t, script.HasInit())
	assert.False(t, script.Init("owner"))
}

func TestPhysicsObjectShapes(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypePhysicsObject)
	def.PhysicsObject().Radius = 2
	def.PhysicsObject().Height = 6

	def.SetFormat(definition.FormatCollisionSphere)
	assert.Equal(t, math.NewVec3(2, 2, 2), NewPhysicsObjectInstance(def, newTransform(), nil).HalfExtents())

	def.SetFormat(definition.FormatCollisionCapsule)
	assert.Equal(t, math.NewVec3(2, 3, 2), NewPhysicsObjectInstance(def, newTransform(), nil).HalfExtents())

	def.SetFormat(definition.FormatCollisionStaticPlane)
	plane := NewPhysicsObjectInstance(def, newTransform(), physics.NewWorld(math.NewVec3Zero(), 1))
	require.True(t, plane.Load(""))
	assert.True(t, plane.Body().Static)

	assert.False(t, NewPhysicsObjectInstance(def, newTransform(), nil).Load(""))
}

func TestAnimationInstanceInterpolates(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeAnimation)
	def.Animation().AddKeyframe(0)
	end := def.Animation().AddKeyframe(2)
	end.Translation = math.NewVec3(2, 0, 0)
	def.Animation().SetKeyframe(end)

	tr := math.TransformCreate()
	anim := NewAnimationInstance(def, &tr)
	require.True(t, anim.Load(""))
	assert.True(t, anim.Running())
	assert.Equal(t, float32(2), anim.Duration())

	anim.Update(1)
	assert.InDelta(t, 1, tr.Translation.X, 1e-5)

	anim.Update(5)
	assert.InDelta(t, 2, tr.Translation.X, 1e-5)
	assert.False(t, anim.Running())
}

func TestAnimationInstanceLoopsAndRelative(t *testing.T) {
	project := definition.NewProjectDefinition("test")
	def := project.CreateNewAssetDefinition(definition.AssetTypeAnimation)
	def.Animation().Loop = true
	def.Animation().Relative = true
	def.Animation().AddKeyframe(0)
	end := def.Animation().AddKeyframe(1)
	end.Translation = math.NewVec3(0, 4, 0)
	def.Animation().SetKeyframe(end)

	tr := math.TransformFromPosition(math.NewVec3(10, 0, 0))
	anim := NewAnimationInstance(def, &tr)
	require.True(t, anim.Load(""))

	anim.Update(1.25)
	assert.True(t, anim.Running())
	assert.InDelta(t, 0.25, anim.Time(), 1e-5)
	assert.InDelta(t, 10, tr.Translation.X, 1e-5)
	assert.InDelta(t, 1, tr.Translation.Y, 1e-5)
}

func TestEasing(t *testing.T) {
	assert.Equal(t, float32(0.5), ease(definition.EasingLinear, 0.5))
	assert.Equal(t, float32(0.25), ease(definition.EasingEaseIn, 0.5))
	assert.Equal(t, float32(0.75), ease(definition.EasingEaseOut, 0.5))
	assert.Equal(t, float32(0.5), ease(definition.EasingEaseInOut, 0.5))
}
