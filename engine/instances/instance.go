package instances

import (
	"fmt"
	"image"
	"io"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/physics"
)

/**
 * @brief The live, per placement counterpart of an AssetDefinition. An instance
 * holds a non owning handle to the transform of the scene object it belongs to.
 * Load performs the I/O. When it returns false the instance stays usable but
 * inert, callers check Loaded before reading instance data.
 */
type AssetInstance interface {
	// UUID is the uuid of the definition the instance was created from.
	UUID() string
	Name() string
	Type() definition.AssetType
	Definition() *definition.AssetDefinition
	Transform() *math.Transform
	Load(projectDir string) bool
	Loaded() bool
	Destroy()
}

// TextureUploader creates and releases textures on the goroutine owning the
// graphics context.
type TextureUploader interface {
	UploadTexture(owner string, img *image.RGBA) uint32
	ReleaseTexture(id uint32)
}

// Uploadable is implemented by instances whose Load leaves decoded data behind
// that still has to be pushed to the graphics context.
type Uploadable interface {
	NeedsUpload() bool
	Upload(up TextureUploader)
}

// Dependencies are the collaborators instances may need while loading.
// Any of them can be nil, instances that need a missing one fail to load.
type Dependencies struct {
	Project      *definition.ProjectDefinition
	PhysicsWorld *physics.World
	// ScriptOutput receives everything scripts print.
	ScriptOutput io.Writer
}

// NewInstance builds the instance matching the type of def.
func NewInstance(def *definition.AssetDefinition, transform *math.Transform, deps Dependencies) (AssetInstance, error) {
	if def == nil {
		return nil, fmt.Errorf("cannot create instance: %w", core.ErrAssetDefinitionNotFound)
	}
	switch def.Type() {
	case definition.AssetTypeAnimation:
		return NewAnimationInstance(def, transform), nil
	case definition.AssetTypeAudio:
		return NewAudioInstance(def, transform), nil
	case definition.AssetTypeFont:
		return NewFontInstance(def, transform), nil
	case definition.AssetTypeLight:
		return NewLightInstance(def, transform), nil
	case definition.AssetTypeMaterial:
		return NewMaterialInstance(def, transform, deps.Project), nil
	case definition.AssetTypeModel:
		return NewModelInstance(def, transform), nil
	case definition.AssetTypeParticleEmitter:
		return NewParticleEmitterInstance(def, transform), nil
	case definition.AssetTypePath:
		return NewPathInstance(def, transform), nil
	case definition.AssetTypePhysicsObject:
		return NewPhysicsObjectInstance(def, transform, deps.PhysicsWorld), nil
	case definition.AssetTypeScript:
		return NewScriptInstance(def, transform, deps.ScriptOutput), nil
	case definition.AssetTypeShader:
		return NewShaderInstance(def, transform), nil
	case definition.AssetTypeSprite:
		return NewSpriteInstance(def, transform), nil
	case definition.AssetTypeTexture:
		return NewTextureInstance(def, transform), nil
	}
	return nil, fmt.Errorf("cannot create instance of %s (%s): %w", def.Name(), def.Type(), core.ErrUnknownAssetType)
}

// instanceBase carries the state every instance shares. The loaded flag is
// published last so readers that see it also see the loaded data.
type instanceBase struct {
	mu        sync.RWMutex
	def       *definition.AssetDefinition
	transform *math.Transform
	uuid      string
	name      string
	typ       definition.AssetType
	loaded    atomic.Bool
	// destroyed is guarded by mu and never cleared.
	destroyed bool
}

func newInstanceBase(def *definition.AssetDefinition, transform *math.Transform) instanceBase {
	return instanceBase{
		def:       def,
		transform: transform,
		uuid:      def.UUID(),
		name:      def.Name(),
		typ:       def.Type(),
	}
}

func (b *instanceBase) UUID() string                            { return b.uuid }
func (b *instanceBase) Name() string                            { return b.name }
func (b *instanceBase) Type() definition.AssetType              { return b.typ }
func (b *instanceBase) Definition() *definition.AssetDefinition { return b.def }
func (b *instanceBase) Transform() *math.Transform              { return b.transform }
func (b *instanceBase) Loaded() bool                            { return b.loaded.Load() }

// publish runs store under mu and marks the instance loaded. It reports false
// without calling store when the instance was destroyed while loading, so a
// late load leaves nothing behind.
func (b *instanceBase) publish(store func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		core.LogDebug("%s was destroyed while loading", b)
		return false
	}
	if store != nil {
		store()
	}
	b.loaded.Store(true)
	return true
}

// markDestroyed must be called with mu held.
func (b *instanceBase) markDestroyed() {
	b.destroyed = true
	b.loaded.Store(false)
}

func (b *instanceBase) Destroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}

func (b *instanceBase) Destroy() {
	b.mu.Lock()
	b.markDestroyed()
	b.mu.Unlock()
}

func (b *instanceBase) String() string {
	return fmt.Sprintf("%s instance %s (%s)", b.typ.ReadableName(), b.name, b.uuid)
}
