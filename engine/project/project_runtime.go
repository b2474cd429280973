package project

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/scene"
	"github.com/spaghettifunk/dream/engine/systems"
	"github.com/spaghettifunk/dream/engine/tasks"
)

type Options struct {
	Systems systems.SystemManagerConfig
	// Window may be nil, nothing is presented then.
	Window systems.WindowComponent
	Bus    *core.EventBus
	Input  *core.InputState
	// Jobs loads scene assets. Nil loads them on the calling goroutine.
	Jobs      *tasks.JobSystem
	MaxBodies int
}

/**
 * @brief Runs a project: owns the component systems and at most one active
 * scene runtime, and drives them one frame at a time through UpdateAll.
 */
type ProjectRuntime struct {
	definition *definition.ProjectDefinition
	projectDir string
	opts       Options
	systems    *systems.SystemManager

	active           *scene.SceneRuntime
	activeDefinition *definition.SceneDefinition
	frames           uint64
	shutdown         bool
}

func New(def *definition.ProjectDefinition, projectDir string, opts Options) (*ProjectRuntime, error) {
	if def == nil {
		return nil, core.ErrProjectDefinitionMissing
	}
	if opts.Bus == nil {
		opts.Bus = core.NewEventBus()
	}
	if opts.Input == nil {
		opts.Input = core.NewInputState(opts.Bus)
	}
	pr := &ProjectRuntime{
		definition: def,
		projectDir: projectDir,
		opts:       opts,
	}
	if err := pr.initComponents(); err != nil {
		return nil, err
	}
	core.LogInfo("project runtime for %q ready", def.Name())
	return pr, nil
}

func (pr *ProjectRuntime) initComponents() error {
	if pr.opts.Window != nil {
		if err := pr.opts.Window.Init(); err != nil {
			return fmt.Errorf("could not initialise window: %w", err)
		}
	}
	sm, err := systems.NewSystemManager(pr.opts.Systems, pr.opts.Window, pr.opts.Input, pr.opts.Bus)
	if err != nil {
		return err
	}
	pr.systems = sm
	return nil
}

func (pr *ProjectRuntime) Definition() *definition.ProjectDefinition { return pr.definition }
func (pr *ProjectRuntime) ProjectDir() string                        { return pr.projectDir }
func (pr *ProjectRuntime) Systems() *systems.SystemManager           { return pr.systems }
func (pr *ProjectRuntime) Bus() *core.EventBus                       { return pr.opts.Bus }
func (pr *ProjectRuntime) Frames() uint64                            { return pr.frames }

// ActiveSceneRuntime is nil when no scene is running.
func (pr *ProjectRuntime) ActiveSceneRuntime() *scene.SceneRuntime { return pr.active }

func (pr *ProjectRuntime) ActiveSceneDefinition() *definition.SceneDefinition {
	return pr.activeDefinition
}

// ConstructActiveSceneRuntime replaces the active scene with a new runtime
// for the scene definition sceneUUID.
func (pr *ProjectRuntime) ConstructActiveSceneRuntime(sceneUUID string) error {
	if pr.shutdown {
		return core.ErrRuntimeShutdown
	}
	def := pr.definition.SceneDefinitionByUUID(sceneUUID)
	if def == nil {
		return fmt.Errorf("scene %s: %w", sceneUUID, core.ErrSceneDefinitionNotFound)
	}
	if pr.active != nil {
		if err := pr.StopActiveSceneRuntime(); err != nil {
			return err
		}
	}

	rt := scene.NewSceneRuntime(pr.definition, pr.systems.SceneOptions(scene.Options{
		ProjectDir: pr.projectDir,
		Jobs:       pr.opts.Jobs,
		MaxBodies:  pr.opts.MaxBodies,
	}))
	if err := rt.StartSceneRuntimeFromDefinition(def); err != nil {
		return err
	}
	pr.active = rt
	pr.activeDefinition = def
	return nil
}

func (pr *ProjectRuntime) StartStartupScene() error {
	def := pr.definition.StartupSceneDefinition()
	if def == nil {
		return fmt.Errorf("project %q has no startup scene: %w", pr.definition.Name(), core.ErrSceneDefinitionNotFound)
	}
	return pr.ConstructActiveSceneRuntime(def.UUID())
}

func (pr *ProjectRuntime) StopActiveSceneRuntime() error {
	if pr.active == nil {
		return core.ErrSceneRuntimeNotActive
	}
	rt := pr.active
	pr.active = nil
	pr.activeDefinition = nil
	return rt.Stop()
}

// ResetActiveSceneRuntime restarts the active scene from its definition.
func (pr *ProjectRuntime) ResetActiveSceneRuntime() error {
	if pr.activeDefinition == nil {
		return core.ErrSceneRuntimeNotActive
	}
	return pr.ConstructActiveSceneRuntime(pr.activeDefinition.UUID())
}

/**
 * @brief Runs one frame: time, then logic, physics, graphics and cleanup.
 * Logic and physics only run once the active scene has finished loading.
 * Returns false once the window asks to close.
 */
func (pr *ProjectRuntime) UpdateAll() bool {
	if pr.shutdown {
		return false
	}
	sm := pr.systems
	delta := sm.Time().Tick()
	rt := pr.active

	if rt != nil {
		rt.PollLoading()
	}
	if pr.opts.Window != nil {
		pr.opts.Window.UpdateWindow(rt)
	}

	if rt != nil && rt.State() == scene.SceneRuntimeStateActive {
		for _, c := range sm.Logic() {
			c.UpdateComponent(rt, delta)
		}
		sm.Physics().UpdateComponent(rt, delta)
	}

	// uploads are drained even while loading
	sm.Graphics().UpdateComponent(rt, delta)
	sm.Input().EndFrame()

	if rt != nil && rt.State() == scene.SceneRuntimeStateActive {
		if n := rt.CollectGarbage(); n > 0 {
			core.LogDebug("collected %d scene objects", n)
		}
	}
	pr.frames++

	return pr.opts.Window == nil || !pr.opts.Window.ShouldClose()
}

// CaptureCamera writes the live camera back into the active scene definition.
func (pr *ProjectRuntime) CaptureCamera() error {
	if pr.active == nil || pr.activeDefinition == nil {
		return core.ErrSceneRuntimeNotActive
	}
	pr.active.CaptureCameraIntoDefinition(pr.activeDefinition)
	return nil
}

// Shutdown stops the active scene and the systems. It is safe to call twice.
func (pr *ProjectRuntime) Shutdown() error {
	if pr.shutdown {
		return nil
	}
	pr.shutdown = true

	var errs []error
	if pr.active != nil {
		if err := pr.StopActiveSceneRuntime(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := pr.systems.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if pr.opts.Window != nil {
		pr.opts.Window.Close()
	}
	core.LogInfo("project runtime for %q shut down after %d frames", pr.definition.Name(), pr.frames)
	return errors.Join(errs...)
}
