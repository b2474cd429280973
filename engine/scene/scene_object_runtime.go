package scene

import (
	"sync"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/math"
)

// Event is a message delivered to a scene object, scripts receive it through OnEvent.
type Event struct {
	Sender string
	Name   string
}

/**
 * @brief The live mirror of a SceneObjectDefinition. It owns its instances
 * and children; the definition is only referenced by uuid.
 */
type SceneObjectRuntime struct {
	mu sync.RWMutex

	uuid           string
	name           string
	definitionUUID string
	transform      math.Transform

	hasFocus      bool
	followsCamera bool
	alwaysDraw    bool
	static        bool
	deleteFlag    bool

	instances []instances.AssetInstance
	children  []*SceneObjectRuntime
	parent    *SceneObjectRuntime
	scene     *SceneRuntime
	events    []Event
}

func NewSceneObjectRuntime(scene *SceneRuntime) *SceneObjectRuntime {
	return &SceneObjectRuntime{
		uuid:      core.NewUUID(),
		name:      definition.DefaultSceneObjectName,
		transform: math.TransformCreate(),
		scene:     scene,
	}
}

// UseDefinition copies the definition's state. The runtime takes the
// definition's uuid so the two can be matched up.
func (r *SceneObjectRuntime) UseDefinition(def *definition.SceneObjectDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uuid = def.UUID()
	r.definitionUUID = def.UUID()
	r.name = def.Name()
	r.transform = def.Transform()
	r.hasFocus = def.HasFocus()
	r.followsCamera = def.FollowsCamera()
	r.alwaysDraw = def.AlwaysDraw()
	r.static = def.Static()
}

func (r *SceneObjectRuntime) UUID() string { return r.uuid }
func (r *SceneObjectRuntime) Name() string { return r.name }

// DefinitionUUID is the uuid of the definition this runtime was built from.
func (r *SceneObjectRuntime) DefinitionUUID() string { return r.definitionUUID }

func (r *SceneObjectRuntime) Scene() *SceneRuntime { return r.scene }

// Transform is the object's own transform. Instances hold this pointer.
func (r *SceneObjectRuntime) Transform() *math.Transform { return &r.transform }

// ResolvedTransform applies offset transforms along the parent chain.
func (r *SceneObjectRuntime) ResolvedTransform() math.Transform {
	if r.parent == nil {
		return r.transform.Resolve(nil)
	}
	parent := r.parent.ResolvedTransform()
	return r.transform.Resolve(&parent)
}

func (r *SceneObjectRuntime) HasFocus() bool      { return r.hasFocus }
func (r *SceneObjectRuntime) FollowsCamera() bool { return r.followsCamera }
func (r *SceneObjectRuntime) AlwaysDraw() bool    { return r.alwaysDraw }
func (r *SceneObjectRuntime) Static() bool        { return r.static }

func (r *SceneObjectRuntime) SetDeleteFlag(v bool) {
	r.mu.Lock()
	r.deleteFlag = v
	r.mu.Unlock()
}

func (r *SceneObjectRuntime) DeleteFlag() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deleteFlag
}

// LoadAssetInstances creates an instance for every uuid in the definition's
// load queue. Uuids that do not resolve are skipped. Duplicates create one
// instance each.
func (r *SceneObjectRuntime) LoadAssetInstances(project *definition.ProjectDefinition, def *definition.SceneObjectDefinition, deps instances.Dependencies) []instances.AssetInstance {
	var created []instances.AssetInstance
	for _, uuid := range def.LoadQueue() {
		assetDef := project.AssetDefinitionByUUID(uuid)
		if assetDef == nil {
			core.LogWarn("scene object %s references missing asset definition %s, skipping", r.name, uuid)
			continue
		}
		inst := r.CreateAssetInstance(assetDef, deps)
		if inst != nil {
			created = append(created, inst)
		}
	}
	return created
}

// CreateAssetInstance builds and attaches an instance of assetDef. It is not loaded.
func (r *SceneObjectRuntime) CreateAssetInstance(assetDef *definition.AssetDefinition, deps instances.Dependencies) instances.AssetInstance {
	inst, err := instances.NewInstance(assetDef, &r.transform, deps)
	if err != nil {
		core.LogError("scene object %s: %s", r.name, err)
		return nil
	}
	r.mu.Lock()
	r.instances = append(r.instances, inst)
	r.mu.Unlock()
	return inst
}

func (r *SceneObjectRuntime) Instances() []instances.AssetInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]instances.AssetInstance, len(r.instances))
	copy(out, r.instances)
	return out
}

// InstanceByType returns the first instance of type t, or nil.
func (r *SceneObjectRuntime) InstanceByType(t definition.AssetType) instances.AssetInstance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inst := range r.instances {
		if inst.Type() == t {
			return inst
		}
	}
	return nil
}

func (r *SceneObjectRuntime) InstanceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// AllInstancesLoaded reports whether every instance finished loading successfully.
func (r *SceneObjectRuntime) AllInstancesLoaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inst := range r.instances {
		if !inst.Loaded() {
			return false
		}
	}
	return true
}

func (r *SceneObjectRuntime) Parent() *SceneObjectRuntime { return r.parent }

func (r *SceneObjectRuntime) Children() []*SceneObjectRuntime {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SceneObjectRuntime, len(r.children))
	copy(out, r.children)
	return out
}

func (r *SceneObjectRuntime) AddChild(child *SceneObjectRuntime) {
	child.parent = r
	r.mu.Lock()
	r.children = append(r.children, child)
	r.mu.Unlock()
}

// RemoveChild detaches child without destroying it.
func (r *SceneObjectRuntime) RemoveChild(child *SceneObjectRuntime) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.children {
		if c == child {
			r.children = append(r.children[:i], r.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Walk visits r and its descendants depth first. Returning false from fn
// stops the walk.
func (r *SceneObjectRuntime) Walk(fn func(*SceneObjectRuntime) bool) bool {
	if !fn(r) {
		return false
	}
	for _, c := range r.Children() {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

func (r *SceneObjectRuntime) AddEvent(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// DrainEvents returns and clears the pending events.
func (r *SceneObjectRuntime) DrainEvents() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// Destroy releases every instance of r and its descendants, children first.
func (r *SceneObjectRuntime) Destroy() {
	for _, c := range r.Children() {
		c.Destroy()
	}
	r.mu.Lock()
	insts := r.instances
	r.instances = nil
	r.children = nil
	r.events = nil
	r.mu.Unlock()

	for _, inst := range insts {
		inst.Destroy()
	}
	core.LogDebug("destroyed scene object runtime %s (%d instances)", r.name, len(insts))
}
