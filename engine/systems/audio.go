package systems

import (
	"time"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/scene"
)

const (
	// AudioMarkerEventPrefix prefixes the name of the marker that was crossed.
	AudioMarkerEventPrefix = "audio.marker."
	AudioFinishedEvent     = "audio.finished"
)

type AudioSystemConfig struct {
	// AutoPlay starts every clip as soon as it has loaded.
	AutoPlay bool
}

/**
 * @brief Advances playing clips. Crossed markers and finished clips are
 * delivered to the owning scene object as events.
 */
type AudioSystem struct {
	config   AudioSystemConfig
	playing  map[*instances.AudioInstance]struct{}
	seen     map[*instances.AudioInstance]struct{}
	finished uint64
}

func NewAudioSystem(config AudioSystemConfig) *AudioSystem {
	return &AudioSystem{
		config:  config,
		playing: make(map[*instances.AudioInstance]struct{}),
		seen:    make(map[*instances.AudioInstance]struct{}),
	}
}

func (as *AudioSystem) Name() string { return "audio" }

func (as *AudioSystem) UpdateComponent(rt *scene.SceneRuntime, delta float32) {
	live := make(map[*instances.AudioInstance]struct{}, len(as.seen))
	step := time.Duration(float64(delta) * float64(time.Second))

	eachInstance(rt, func(obj *scene.SceneObjectRuntime, clip *instances.AudioInstance) {
		live[clip] = struct{}{}
		if _, ok := as.seen[clip]; !ok {
			as.seen[clip] = struct{}{}
			if as.config.AutoPlay {
				clip.Play()
			}
		}
		if clip.Status() != instances.AudioStatusPlaying {
			return
		}
		as.playing[clip] = struct{}{}

		for _, m := range clip.Advance(step) {
			obj.AddEvent(scene.Event{Sender: clip.UUID(), Name: AudioMarkerEventPrefix + m.Name})
		}
		if clip.Status() == instances.AudioStatusStopped {
			delete(as.playing, clip)
			as.finished++
			obj.AddEvent(scene.Event{Sender: clip.UUID(), Name: AudioFinishedEvent})
			core.LogDebug("audio %s finished", clip.Name())
		}
	})

	// forget clips whose objects were destroyed
	for clip := range as.seen {
		if _, ok := live[clip]; !ok {
			delete(as.seen, clip)
			delete(as.playing, clip)
		}
	}
	for clip := range as.playing {
		if clip.Status() != instances.AudioStatusPlaying {
			delete(as.playing, clip)
		}
	}
}

// Playing counts the clips currently playing.
func (as *AudioSystem) Playing() int { return len(as.playing) }

// Finished counts the clips that played to the end.
func (as *AudioSystem) Finished() uint64 { return as.finished }

func (as *AudioSystem) Shutdown() error {
	for clip := range as.playing {
		clip.Stop()
	}
	clear(as.playing)
	clear(as.seen)
	return nil
}
