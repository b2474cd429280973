package systems

import (
	"cmp"
	"fmt"
	"image"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/scene"
	"github.com/spaghettifunk/dream/engine/tasks"
)

type GraphicsSystemConfig struct {
	/** @brief The maximum number of textures that can be live at once. */
	MaxTextureCount int
}

type DrawKind int

const (
	DrawSprite DrawKind = iota
	DrawModel
	DrawFont
	DrawParticles
)

// DrawItem is one entry of the per frame draw list.
type DrawItem struct {
	Kind     DrawKind
	Object   *scene.SceneObjectRuntime
	Instance instances.AssetInstance
	Position math.Vec3
	Distance float32
}

type textureRecord struct {
	owner  string
	width  int
	height int
}

/**
 * @brief Owns texture handles and builds the draw list. Loader goroutines
 * queue uploads on Uploads(); they are drained here, on the goroutine that
 * owns the graphics context.
 */
type GraphicsSystem struct {
	config   GraphicsSystemConfig
	window   WindowComponent
	uploads  *tasks.GraphicsQueue
	ids      *core.IdentifierPool
	mu       sync.Mutex
	textures map[uint32]textureRecord
	drawList []DrawItem
	lights   []*instances.LightInstance
	culled   int
}

func NewGraphicsSystem(config GraphicsSystemConfig, window WindowComponent) (*GraphicsSystem, error) {
	if config.MaxTextureCount <= 0 {
		err := fmt.Errorf("func NewGraphicsSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &GraphicsSystem{
		config:   config,
		window:   window,
		uploads:  tasks.NewGraphicsQueue(),
		ids:      core.NewIdentifierPool(config.MaxTextureCount),
		textures: make(map[uint32]textureRecord, config.MaxTextureCount),
	}, nil
}

func (gs *GraphicsSystem) Name() string { return "graphics" }

// Uploads is the queue loaders push texture uploads onto.
func (gs *GraphicsSystem) Uploads() *tasks.GraphicsQueue { return gs.uploads }

// UploadTexture registers img and returns its handle, or core.InvalidID when
// the texture budget is spent.
func (gs *GraphicsSystem) UploadTexture(owner string, img *image.RGBA) uint32 {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if len(gs.textures) >= gs.config.MaxTextureCount {
		core.LogError("cannot upload texture for %s, %d textures already live", owner, len(gs.textures))
		return core.InvalidID
	}
	id := gs.ids.Acquire(owner)
	b := img.Bounds()
	gs.textures[id] = textureRecord{owner: owner, width: b.Dx(), height: b.Dy()}
	core.LogDebug("uploaded texture %d (%dx%d) for %s", id, b.Dx(), b.Dy(), owner)
	return id
}

func (gs *GraphicsSystem) ReleaseTexture(id uint32) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if _, ok := gs.textures[id]; !ok {
		return
	}
	delete(gs.textures, id)
	if err := gs.ids.Release(id); err != nil {
		core.LogWarn("releasing texture %d: %s", id, err)
	}
}

func (gs *GraphicsSystem) TextureCount() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.textures)
}

// TextureSize returns the dimensions of a live texture.
func (gs *GraphicsSystem) TextureSize(id uint32) (width, height int, ok bool) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	rec, ok := gs.textures[id]
	return rec.width, rec.height, ok
}

func (gs *GraphicsSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	if n := gs.uploads.Drain(); n > 0 {
		core.LogDebug("graphics: ran %d queued uploads", n)
	}
	gs.buildDrawList(rt)
	if gs.window != nil {
		gs.window.BindFrameBuffer()
		gs.window.SwapBuffers()
	}
}

func drawKind(t definition.AssetType) (DrawKind, bool) {
	switch t {
	case definition.AssetTypeSprite:
		return DrawSprite, true
	case definition.AssetTypeModel:
		return DrawModel, true
	case definition.AssetTypeFont:
		return DrawFont, true
	case definition.AssetTypeParticleEmitter:
		return DrawParticles, true
	}
	return 0, false
}

// buildDrawList collects drawable instances nearest first. Objects beyond the
// cull or max draw distance are dropped unless they are marked always draw.
func (gs *GraphicsSystem) buildDrawList(rt *scene.SceneRuntime) {
	gs.drawList = gs.drawList[:0]
	gs.lights = gs.lights[:0]
	gs.culled = 0
	if rt == nil || rt.State() != scene.SceneRuntimeStateActive {
		return
	}

	camera := rt.Camera()
	cull := rt.MeshCullDistance()
	maxDraw := rt.MaxDrawDistance()
	rt.Walk(func(obj *scene.SceneObjectRuntime) bool {
		var position math.Vec3
		resolved := false
		for _, inst := range obj.Instances() {
			if !inst.Loaded() {
				continue
			}
			if light, ok := inst.(*instances.LightInstance); ok {
				gs.lights = append(gs.lights, light)
				continue
			}
			kind, ok := drawKind(inst.Type())
			if !ok {
				continue
			}
			if !resolved {
				position = obj.ResolvedTransform().Translation
				resolved = true
			}
			distance := camera.Translation.Distance(position)
			if !obj.AlwaysDraw() && (!camera.CanSee(position, cull) || !camera.CanSee(position, maxDraw)) {
				gs.culled++
				continue
			}
			gs.drawList = append(gs.drawList, DrawItem{
				Kind:     kind,
				Object:   obj,
				Instance: inst,
				Position: position,
				Distance: distance,
			})
		}
		return true
	})
	slices.SortStableFunc(gs.drawList, func(a, b DrawItem) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
}

// DrawList is the list built by the last update. It is reused between frames.
func (gs *GraphicsSystem) DrawList() []DrawItem { return gs.drawList }

// Lights are the loaded lights seen by the last update.
func (gs *GraphicsSystem) Lights() []*instances.LightInstance { return gs.lights }

// Culled counts the drawables dropped by distance in the last update.
func (gs *GraphicsSystem) Culled() int { return gs.culled }

func (gs *GraphicsSystem) Shutdown() error {
	gs.uploads.Drain()
	gs.mu.Lock()
	defer gs.mu.Unlock()
	for id := range gs.textures {
		if err := gs.ids.Release(id); err != nil {
			return err
		}
	}
	clear(gs.textures)
	gs.drawList = nil
	gs.lights = nil
	return nil
}
