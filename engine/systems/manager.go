package systems

import (
	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/scene"
)

type SystemManagerConfig struct {
	Graphics GraphicsSystemConfig
	Time     TimeSystemConfig
	Physics  PhysicsSystemConfig
	Audio    AudioSystemConfig
	Script   ScriptSystemConfig
	Input    InputSystemConfig
}

// DefaultSystemManagerConfig is what the engine runs with unless configured otherwise.
func DefaultSystemManagerConfig() SystemManagerConfig {
	return SystemManagerConfig{
		Graphics: GraphicsSystemConfig{MaxTextureCount: 1024},
		Time:     TimeSystemConfig{MaxDelta: 0.25},
		Physics:  PhysicsSystemConfig{SubSteps: 1},
		Audio:    AudioSystemConfig{AutoPlay: true},
		Script:   ScriptSystemConfig{ConsoleSize: 256},
		Input:    InputSystemConfig{FlyCamera: true, QuitOnEscape: true},
	}
}

type SystemManager struct {
	timeSystem      *TimeSystem
	inputSystem     *InputSystem
	scriptSystem    *ScriptSystem
	pathSystem      *PathSystem
	animationSystem *AnimationSystem
	particleSystem  *ParticleSystem
	audioSystem     *AudioSystem
	physicsSystem   *PhysicsSystem
	graphicsSystem  *GraphicsSystem
}

func NewSystemManager(config SystemManagerConfig, window WindowComponent, input *core.InputState, bus *core.EventBus) (*SystemManager, error) {
	gs, err := NewGraphicsSystem(config.Graphics, window)
	if err != nil {
		return nil, err
	}
	ss, err := NewScriptSystem(config.Script, bus)
	if err != nil {
		return nil, err
	}
	if input == nil {
		input = core.NewInputState(bus)
	}
	return &SystemManager{
		timeSystem:      NewTimeSystem(config.Time),
		inputSystem:     NewInputSystem(config.Input, input, window, bus),
		scriptSystem:    ss,
		pathSystem:      NewPathSystem(),
		animationSystem: NewAnimationSystem(),
		particleSystem:  NewParticleSystem(),
		audioSystem:     NewAudioSystem(config.Audio),
		physicsSystem:   NewPhysicsSystem(config.Physics),
		graphicsSystem:  gs,
	}, nil
}

func (sm *SystemManager) Time() *TimeSystem           { return sm.timeSystem }
func (sm *SystemManager) Input() *InputSystem         { return sm.inputSystem }
func (sm *SystemManager) Script() *ScriptSystem       { return sm.scriptSystem }
func (sm *SystemManager) Path() *PathSystem           { return sm.pathSystem }
func (sm *SystemManager) Animation() *AnimationSystem { return sm.animationSystem }
func (sm *SystemManager) Particle() *ParticleSystem   { return sm.particleSystem }
func (sm *SystemManager) Audio() *AudioSystem         { return sm.audioSystem }
func (sm *SystemManager) Physics() *PhysicsSystem     { return sm.physicsSystem }
func (sm *SystemManager) Graphics() *GraphicsSystem   { return sm.graphicsSystem }

// Logic returns the systems of the logic phase in update order.
func (sm *SystemManager) Logic() []Component {
	return []Component{
		sm.scriptSystem,
		sm.pathSystem,
		sm.animationSystem,
		sm.particleSystem,
		sm.audioSystem,
		sm.inputSystem,
	}
}

// SceneOptions wires a new scene runtime to these systems.
func (sm *SystemManager) SceneOptions(opts scene.Options) scene.Options {
	opts.Uploads = sm.graphicsSystem.Uploads()
	opts.Uploader = sm.graphicsSystem
	opts.ScriptOutput = sm.scriptSystem.Output()
	return opts
}

// Shutdown stops the systems in reverse creation order.
func (sm *SystemManager) Shutdown() error {
	if err := sm.graphicsSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.physicsSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.audioSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.particleSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.animationSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.pathSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.scriptSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.inputSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.timeSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
