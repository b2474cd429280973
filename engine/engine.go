package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/dream/engine/assets"
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/platform"
	"github.com/spaghettifunk/dream/engine/project"
	"github.com/spaghettifunk/dream/engine/systems"
	"github.com/spaghettifunk/dream/engine/tasks"
)

type Stage uint32

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageBooting:
		return "booting"
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	}
	return fmt.Sprintf("Stage(%d)", uint32(s))
}

type Engine struct {
	currentStage atomic.Uint32
	isRunning    atomic.Bool
	config       *ApplicationConfig
	window       systems.WindowComponent
	environment  *core.Environment
	bus          *core.EventBus
	input        *core.InputState
	jobs         *tasks.JobSystem
	directory    *assets.ProjectDirectory
	templates    *assets.TemplatesModel
	runtime      *project.ProjectRuntime
	width        int
	height       int
}

// New prepares an engine for cfg. When window is nil one is created during
// Initialize, a GLFW window or a headless one depending on cfg.Headless.
func New(cfg *ApplicationConfig, window systems.WindowComponent) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bus := core.NewEventBus()
	return &Engine{
		config:      cfg,
		window:      window,
		environment: core.NewEnvironment(),
		bus:         bus,
		input:       core.NewInputState(bus),
		width:       cfg.StartWidth,
		height:      cfg.StartHeight,
	}, nil
}

func (e *Engine) Stage() Stage                               { return Stage(e.currentStage.Load()) }
func (e *Engine) Config() *ApplicationConfig                 { return e.config }
func (e *Engine) Bus() *core.EventBus                        { return e.bus }
func (e *Engine) Input() *core.InputState                    { return e.input }
func (e *Engine) Environment() *core.Environment             { return e.environment }
func (e *Engine) Runtime() *project.ProjectRuntime           { return e.runtime }
func (e *Engine) ProjectDirectory() *assets.ProjectDirectory { return e.directory }
func (e *Engine) Templates() *assets.TemplatesModel          { return e.templates }

// GetFramebufferSize returns the width and height (in this order) of the window.
func (e *Engine) GetFramebufferSize() (int, int) {
	return e.width, e.height
}

func (e *Engine) setStage(from, to Stage) error {
	if !e.currentStage.CompareAndSwap(uint32(from), uint32(to)) {
		return fmt.Errorf("engine cannot move to %s while %s", to, e.Stage())
	}
	core.LogDebug("engine stage %s -> %s", from, to)
	return nil
}

/**
 * @brief Loads the project, opens the window and starts the startup scene.
 * A project without scenes is not an error, the engine then runs empty.
 */
func (e *Engine) Initialize() error {
	if err := e.setStage(EngineStageUninitialized, EngineStageBooting); err != nil {
		return err
	}
	core.SetLogLevel(core.ParseLogLevel(e.config.LogLevel))

	projectDir := e.config.ProjectDir
	if projectDir == "" {
		e.currentStage.Store(uint32(EngineStageUninitialized))
		return errors.New("no project directory configured")
	}
	projectDir = e.environment.ExpandPath(projectDir)
	directory, err := assets.OpenProjectDirectory(projectDir)
	if err != nil {
		e.currentStage.Store(uint32(EngineStageUninitialized))
		return err
	}
	e.directory = directory
	e.templates = assets.NewTemplatesModel(e.environment.ExpandPath(e.config.TemplatesDir))

	if err := e.setStage(EngineStageBooting, EngineStageInitializing); err != nil {
		return err
	}
	if err := e.initialize(directory); err != nil {
		e.release()
		e.currentStage.Store(uint32(EngineStageUninitialized))
		return err
	}
	return e.setStage(EngineStageInitializing, EngineStageInitialized)
}

func (e *Engine) initialize(directory *assets.ProjectDirectory) error {
	def := directory.Project()
	if e.width == 0 || e.height == 0 {
		e.width, e.height = def.WindowWidth(), def.WindowHeight()
	}
	name := e.config.Name
	if name == "" {
		name = def.Name()
	}
	if e.window == nil {
		if e.config.Headless {
			e.window = systems.NewHeadlessWindow(e.width, e.height, e.config.MaxFrames)
		} else {
			e.window = platform.New(platform.WindowConfig{
				Title:        name,
				X:            e.config.StartPosX,
				Y:            e.config.StartPosY,
				Width:        e.width,
				Height:       e.height,
				CaptureMouse: def.CaptureMouse(),
				Joystick:     def.CaptureJoystick(),
			}, e.input, e.bus)
		}
	}

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	jobs, err := tasks.NewJobSystem(e.config.Workers, e.config.JobQueueSize)
	if err != nil {
		return err
	}
	e.jobs = jobs

	rt, err := project.New(def, directory.Root(), project.Options{
		Systems:   systems.DefaultSystemManagerConfig(),
		Window:    e.window,
		Bus:       e.bus,
		Input:     e.input,
		Jobs:      jobs,
		MaxBodies: e.config.MaxBodies,
	})
	if err != nil {
		return err
	}
	e.runtime = rt

	if err := rt.StartStartupScene(); err != nil {
		if !errors.Is(err, core.ErrSceneDefinitionNotFound) {
			return err
		}
		core.LogWarn("%s", err)
	}
	core.LogInfo("engine initialized with project %q", def.Name())
	return nil
}

/**
 * @brief Runs frames until the window closes, a quit event arrives or ctx is
 * done. Frames are paced to the configured target frame rate.
 */
func (e *Engine) Run(ctx context.Context) error {
	if err := e.setStage(EngineStageInitialized, EngineStageRunning); err != nil {
		return err
	}
	e.isRunning.Store(true)
	defer e.isRunning.Store(false)

	if e.config.WatchAssets {
		events, err := e.directory.Watch(ctx)
		if err != nil {
			core.LogWarn("not watching assets: %s", err)
		} else {
			go func() {
				for ev := range events {
					core.LogDebug("asset %s %s", ev.Info.Path, ev.Op)
				}
			}()
		}
	}

	var targetFrameTime time.Duration
	if e.config.TargetFrameRate > 0 {
		targetFrameTime = time.Second / time.Duration(e.config.TargetFrameRate)
	}

	for e.isRunning.Load() {
		select {
		case <-ctx.Done():
			core.LogInfo("engine context done, stopping")
			return nil
		default:
		}

		frameStart := time.Now()
		if !e.runtime.UpdateAll() {
			core.LogInfo("window closed, stopping")
			break
		}

		// If there is time left, give it back to the OS.
		if remaining := targetFrameTime - time.Since(frameStart); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
			}
		}
	}
	return nil
}

// Stop asks a running engine to leave its frame loop.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown releases the project runtime and the loaders. The engine can be
// initialized again afterwards.
func (e *Engine) Shutdown() error {
	stage := e.Stage()
	if stage == EngineStageUninitialized || stage == EngineStageShuttingDown {
		return nil
	}
	e.Stop()
	e.currentStage.Store(uint32(EngineStageShuttingDown))
	err := e.release()
	e.currentStage.Store(uint32(EngineStageUninitialized))
	core.LogInfo("engine shut down")
	return err
}

func (e *Engine) release() error {
	var errs []error
	if e.runtime != nil {
		errs = append(errs, e.runtime.Shutdown())
		e.runtime = nil
	} else if e.window != nil {
		e.window.Close()
	}
	if e.jobs != nil {
		errs = append(errs, e.jobs.Shutdown())
		e.jobs = nil
	}
	e.bus.Unregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	e.bus.Unregister(core.EVENT_CODE_RESIZED, e)
	return errors.Join(errs...)
}

func (e *Engine) onEvent(_ interface{}, context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Stop()
		return true
	}
	return false
}

func (e *Engine) onResized(_ interface{}, context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := int(se.WindowWidth), int(se.WindowHeight)
	if width != e.width || height != e.height {
		e.width = width
		e.height = height
		core.LogDebug("window resized to %dx%d", width, height)
	}
	// other listeners may care as well
	return false
}
