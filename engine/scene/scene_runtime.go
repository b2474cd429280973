package scene

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/physics"
	"github.com/spaghettifunk/dream/engine/tasks"
)

type SceneRuntimeState int32

const (
	SceneRuntimeStateConstructed SceneRuntimeState = iota
	SceneRuntimeStateLoading
	SceneRuntimeStateActive
	SceneRuntimeStateStopped
)

func (s SceneRuntimeState) String() string {
	switch s {
	case SceneRuntimeStateConstructed:
		return "constructed"
	case SceneRuntimeStateLoading:
		return "loading"
	case SceneRuntimeStateActive:
		return "active"
	case SceneRuntimeStateStopped:
		return "stopped"
	}
	return fmt.Sprintf("SceneRuntimeState(%d)", int32(s))
}

func validSceneTransition(from, to SceneRuntimeState) bool {
	switch from {
	case SceneRuntimeStateConstructed:
		return to == SceneRuntimeStateLoading
	case SceneRuntimeStateLoading:
		return to == SceneRuntimeStateActive || to == SceneRuntimeStateStopped
	case SceneRuntimeStateActive:
		return to == SceneRuntimeStateStopped
	}
	return false
}

// Options wire a scene runtime to the engine.
type Options struct {
	ProjectDir string
	// Jobs runs instance loads. Without it loads run on the calling goroutine.
	Jobs *tasks.JobSystem
	// Uploads and Uploader move decoded textures onto the graphics goroutine.
	Uploads      *tasks.GraphicsQueue
	Uploader     instances.TextureUploader
	ScriptOutput io.Writer
	// MaxBodies is a capacity hint for the physics world.
	MaxBodies int
}

/**
 * @brief The live mirror of a SceneDefinition. The runtime moves through
 * Constructed, Loading, Active and Stopped; any other transition is rejected.
 */
type SceneRuntime struct {
	mu sync.RWMutex

	project        *definition.ProjectDefinition
	uuid           string
	name           string
	definitionUUID string
	state          atomic.Int32
	opts           Options

	clearColour      math.Colour
	ambientColour    math.Colour
	physicsDebug     bool
	meshCullDistance float32
	minDrawDistance  float32
	maxDrawDistance  float32

	camera    *Camera
	world     *physics.World
	root      *SceneObjectRuntime
	loadTasks []*tasks.Task
}

func NewSceneRuntime(project *definition.ProjectDefinition, opts Options) *SceneRuntime {
	return &SceneRuntime{
		project: project,
		uuid:    core.NewUUID(),
		name:    definition.DefaultSceneName,
		opts:    opts,
		camera:  NewCamera(),
		world:   physics.NewWorld(math.NewVec3(0, -9.81, 0), opts.MaxBodies),
	}
}

func (s *SceneRuntime) State() SceneRuntimeState {
	return SceneRuntimeState(s.state.Load())
}

func (s *SceneRuntime) setState(to SceneRuntimeState) error {
	for {
		from := s.State()
		if !validSceneTransition(from, to) {
			return fmt.Errorf("scene %s %s -> %s: %w", s.name, from, to, core.ErrInvalidTransition)
		}
		if s.state.CompareAndSwap(int32(from), int32(to)) {
			core.LogDebug("scene %s: %s -> %s", s.name, from, to)
			return nil
		}
	}
}

func (s *SceneRuntime) UUID() string                           { return s.uuid }
func (s *SceneRuntime) Name() string                           { return s.name }
func (s *SceneRuntime) DefinitionUUID() string                 { return s.definitionUUID }
func (s *SceneRuntime) Project() *definition.ProjectDefinition { return s.project }
func (s *SceneRuntime) Camera() *Camera                        { return s.camera }
func (s *SceneRuntime) PhysicsWorld() *physics.World           { return s.world }
func (s *SceneRuntime) ClearColour() math.Colour               { return s.clearColour }
func (s *SceneRuntime) AmbientColour() math.Colour             { return s.ambientColour }
func (s *SceneRuntime) PhysicsDebug() bool                     { return s.physicsDebug }
func (s *SceneRuntime) MeshCullDistance() float32              { return s.meshCullDistance }
func (s *SceneRuntime) MinDrawDistance() float32               { return s.minDrawDistance }
func (s *SceneRuntime) MaxDrawDistance() float32               { return s.maxDrawDistance }

func (s *SceneRuntime) Root() *SceneObjectRuntime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// UseDefinition copies the scene wide settings of def.
func (s *SceneRuntime) UseDefinition(def *definition.SceneDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitionUUID = def.UUID()
	s.uuid = def.UUID()
	s.name = def.Name()
	s.clearColour = def.ClearColour()
	s.ambientColour = def.AmbientColour()
	s.physicsDebug = def.PhysicsDebug()
	s.meshCullDistance = def.MeshCullDistance()
	s.minDrawDistance = def.MinDrawDistance()
	s.maxDrawDistance = def.MaxDrawDistance()
	s.world.SetGravity(def.Gravity())
	s.camera.UseDefinition(def)
}

/**
 * @brief Builds the runtime tree from def and queues a load task for every
 * instance. The runtime is Loading until every task is terminal, see
 * PollLoading.
 */
func (s *SceneRuntime) StartSceneRuntimeFromDefinition(def *definition.SceneDefinition) error {
	if def == nil {
		return core.ErrSceneDefinitionNotFound
	}
	if s.State() != SceneRuntimeStateConstructed {
		return fmt.Errorf("scene %s is %s: %w", s.name, s.State(), core.ErrSceneRuntimeAlreadyStarted)
	}
	s.UseDefinition(def)
	if err := s.setState(SceneRuntimeStateLoading); err != nil {
		return err
	}

	deps := instances.Dependencies{
		Project:      s.project,
		PhysicsWorld: s.world,
		ScriptOutput: s.opts.ScriptOutput,
	}
	var created []instances.AssetInstance
	root := s.build(def.RootSceneObjectDefinition(), deps, &created)

	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	core.LogInfo("starting scene %s: %d objects, %d instances", s.name, s.CountRuntimes(), len(created))

	for _, inst := range created {
		s.queueLoad(inst)
	}
	s.PollLoading()
	return nil
}

// build creates the runtime for def and its descendants depth first.
func (s *SceneRuntime) build(def *definition.SceneObjectDefinition, deps instances.Dependencies, created *[]instances.AssetInstance) *SceneObjectRuntime {
	r := NewSceneObjectRuntime(s)
	r.UseDefinition(def)
	*created = append(*created, r.LoadAssetInstances(s.project, def, deps)...)
	for _, childDef := range def.Children() {
		r.AddChild(s.build(childDef, deps, created))
	}
	return r
}

func (s *SceneRuntime) queueLoad(inst instances.AssetInstance) {
	dir := s.opts.ProjectDir
	task := tasks.NewTask("load "+inst.Name(), func() bool {
		return inst.Load(dir)
	})
	task.OnComplete(func(t *tasks.Task) {
		if t.State() != tasks.TaskStateCompleted {
			core.LogError("failed to load %s %s (%s)", inst.Type().ReadableName(), inst.Name(), inst.UUID())
			return
		}
		up, ok := inst.(instances.Uploadable)
		if !ok || s.opts.Uploads == nil || s.opts.Uploader == nil {
			return
		}
		uploader := s.opts.Uploader
		s.opts.Uploads.Push(func() { up.Upload(uploader) })
	})

	s.mu.Lock()
	s.loadTasks = append(s.loadTasks, task)
	s.mu.Unlock()

	if s.opts.Jobs == nil {
		task.Execute()
		return
	}
	if err := s.opts.Jobs.Submit(task); err != nil {
		core.LogError("could not queue load of %s: %s", inst.Name(), err)
	}
}

// PollLoading moves a loading runtime to Active once every load task is
// terminal. It reports whether the runtime is active.
func (s *SceneRuntime) PollLoading() bool {
	if s.State() != SceneRuntimeStateLoading {
		return s.State() == SceneRuntimeStateActive
	}
	if s.PendingLoads() > 0 {
		return false
	}
	if err := s.setState(SceneRuntimeStateActive); err != nil {
		// stopped concurrently
		return false
	}
	s.mu.Lock()
	s.loadTasks = nil
	s.mu.Unlock()
	core.LogInfo("scene %s is active", s.name)
	return true
}

// PendingLoads counts load tasks that have not reached a terminal state.
func (s *SceneRuntime) PendingLoads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.loadTasks {
		if !t.IsTerminal() {
			n++
		}
	}
	return n
}

/**
 * @brief Stops the runtime. In flight load tasks are abandoned so their
 * completion callbacks do nothing, then the tree is destroyed.
 */
func (s *SceneRuntime) Stop() error {
	if err := s.setState(SceneRuntimeStateStopped); err != nil {
		return err
	}
	s.mu.Lock()
	pending := s.loadTasks
	s.loadTasks = nil
	root := s.root
	s.root = nil
	s.mu.Unlock()

	for _, t := range pending {
		if !t.IsTerminal() {
			t.Abandon()
		}
	}
	if root != nil {
		root.Destroy()
	}
	core.LogInfo("stopped scene %s", s.name)
	return nil
}

// Walk visits every scene object runtime depth first.
func (s *SceneRuntime) Walk(fn func(*SceneObjectRuntime) bool) bool {
	root := s.Root()
	if root == nil {
		return true
	}
	return root.Walk(fn)
}

func (s *SceneRuntime) SceneObjectRuntimeByUUID(uuid string) *SceneObjectRuntime {
	var found *SceneObjectRuntime
	s.Walk(func(r *SceneObjectRuntime) bool {
		if r.UUID() == uuid {
			found = r
			return false
		}
		return true
	})
	return found
}

func (s *SceneRuntime) SceneObjectRuntimeByName(name string) *SceneObjectRuntime {
	var found *SceneObjectRuntime
	s.Walk(func(r *SceneObjectRuntime) bool {
		if r.Name() == name {
			found = r
			return false
		}
		return true
	})
	return found
}

func (s *SceneRuntime) CountRuntimes() int {
	n := 0
	s.Walk(func(*SceneObjectRuntime) bool {
		n++
		return true
	})
	return n
}

func (s *SceneRuntime) CountInstances() int {
	n := 0
	s.Walk(func(r *SceneObjectRuntime) bool {
		n += r.InstanceCount()
		return true
	})
	return n
}

// Instances returns every instance in the tree, depth first.
func (s *SceneRuntime) Instances() []instances.AssetInstance {
	var out []instances.AssetInstance
	s.Walk(func(r *SceneObjectRuntime) bool {
		out = append(out, r.Instances()...)
		return true
	})
	return out
}

/**
 * @brief Removes and destroys every object flagged for deletion, together with
 * its descendants. Runs in the cleanup phase, after all systems are done with
 * the frame. The root is never collected.
 */
func (s *SceneRuntime) CollectGarbage() int {
	var doomed []*SceneObjectRuntime
	s.Walk(func(r *SceneObjectRuntime) bool {
		for _, c := range r.Children() {
			if c.DeleteFlag() {
				doomed = append(doomed, c)
			}
		}
		return true
	})

	collected := 0
	for _, r := range doomed {
		parent := r.Parent()
		if parent == nil || !parent.RemoveChild(r) {
			// an ancestor was collected first
			continue
		}
		collected++
		r.Destroy()
	}
	return collected
}

// CaptureCameraIntoDefinition writes the live camera back into def. It is
// never called automatically.
func (s *SceneRuntime) CaptureCameraIntoDefinition(def *definition.SceneDefinition) {
	def.SetCamera(s.camera.Transform())
	def.SetCameraMovementSpeed(s.camera.MovementSpeed)
}
