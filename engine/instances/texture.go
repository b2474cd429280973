package instances

import (
	"github.com/anthonynsimon/bild/transform"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

type TextureInstance struct {
	instanceBase
	img           imageTexture
	flipVertical  bool
	isEnvironment bool
}

func NewTextureInstance(def *definition.AssetDefinition, owner *math.Transform) *TextureInstance {
	t := &TextureInstance{instanceBase: newInstanceBase(def, owner)}
	if attrs := def.Texture(); attrs != nil {
		t.flipVertical = attrs.FlipVertical
		t.isEnvironment = attrs.IsEnvironment
	}
	return t
}

func (t *TextureInstance) Load(projectDir string) bool {
	rgba, err := decodeImage(t.def.DataPath(projectDir))
	if err != nil {
		core.LogError("could not load texture %s: %s", t.name, err)
		return false
	}
	if t.flipVertical {
		rgba = transform.FlipV(rgba)
	}

	return t.publish(func() { t.img.pending = rgba })
}

func (t *TextureInstance) NeedsUpload() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.img.pending != nil
}

func (t *TextureInstance) Upload(up TextureUploader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.img.upload(t.uuid, up)
}

func (t *TextureInstance) Texture() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.img.texture
}

func (t *TextureInstance) Width() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.img.width
}

func (t *TextureInstance) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.img.height
}

func (t *TextureInstance) FlipVertical() bool  { return t.flipVertical }
func (t *TextureInstance) IsEnvironment() bool { return t.isEnvironment }

func (t *TextureInstance) Destroy() {
	t.mu.Lock()
	t.img.release()
	t.markDestroyed()
	t.mu.Unlock()
}
