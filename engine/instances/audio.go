package instances

import (
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

type AudioStatus int

const (
	AudioStatusStopped AudioStatus = iota
	AudioStatusPlaying
	AudioStatusPaused
)

func (s AudioStatus) String() string {
	switch s {
	case AudioStatusPlaying:
		return "playing"
	case AudioStatusPaused:
		return "paused"
	}
	return "stopped"
}

/**
 * @brief A decoded audio clip. Playback is tracked as a sample position that
 * the audio system advances every frame.
 */
type AudioInstance struct {
	instanceBase
	loop    bool
	markers []definition.AudioMarker

	format   beep.Format
	samples  int
	status   AudioStatus
	position int
}

func NewAudioInstance(def *definition.AssetDefinition, transform *math.Transform) *AudioInstance {
	a := &AudioInstance{instanceBase: newInstanceBase(def, transform)}
	if attrs := def.Audio(); attrs != nil {
		a.loop = attrs.Loop
		a.markers = attrs.SortedMarkers()
	}
	return a
}

func (a *AudioInstance) Load(projectDir string) bool {
	path := a.def.DataPath(projectDir)
	f, err := os.Open(path)
	if err != nil {
		core.LogError("could not open audio %s: %s", a.name, err)
		return false
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch a.def.Format() {
	case definition.FormatAudioOgg:
		streamer, format, err = vorbis.Decode(f)
	default:
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		f.Close()
		core.LogError("could not decode audio %s: %s", a.name, err)
		return false
	}
	samples := streamer.Len()
	if err := streamer.Close(); err != nil {
		core.LogWarn("closing audio stream %s: %s", a.name, err)
	}

	ok := a.publish(func() {
		a.format = format
		a.samples = samples
		a.position = 0
	})
	if !ok {
		return false
	}
	core.LogDebug("decoded audio %s: %d samples at %d Hz", a.name, samples, format.SampleRate)
	return true
}

func (a *AudioInstance) SampleRate() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return int(a.format.SampleRate)
}

func (a *AudioInstance) Channels() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.format.NumChannels
}

func (a *AudioInstance) Samples() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.samples
}

func (a *AudioInstance) Duration() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.format.SampleRate == 0 {
		return 0
	}
	return a.format.SampleRate.D(a.samples)
}

func (a *AudioInstance) Looping() bool { return a.loop }

func (a *AudioInstance) Markers() []definition.AudioMarker {
	out := make([]definition.AudioMarker, len(a.markers))
	copy(out, a.markers)
	return out
}

func (a *AudioInstance) Status() AudioStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Position is the current playback position in samples.
func (a *AudioInstance) Position() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.position
}

func (a *AudioInstance) Play() {
	if !a.Loaded() {
		return
	}
	a.mu.Lock()
	a.status = AudioStatusPlaying
	a.mu.Unlock()
}

func (a *AudioInstance) Pause() {
	a.mu.Lock()
	if a.status == AudioStatusPlaying {
		a.status = AudioStatusPaused
	}
	a.mu.Unlock()
}

func (a *AudioInstance) Stop() {
	a.mu.Lock()
	a.status = AudioStatusStopped
	a.position = 0
	a.mu.Unlock()
}

// Advance moves a playing clip forward by d and returns the markers crossed.
// A clip that reaches the end stops, unless it loops.
func (a *AudioInstance) Advance(d time.Duration) []definition.AudioMarker {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != AudioStatusPlaying || a.samples == 0 {
		return nil
	}

	from := a.position
	to := from + a.format.SampleRate.N(d)
	var crossed []definition.AudioMarker
	for _, m := range a.markers {
		if m.Position > from && m.Position <= to {
			crossed = append(crossed, m)
		}
	}

	switch {
	case to < a.samples:
		a.position = to
	case a.loop:
		a.position = to % a.samples
		for _, m := range a.markers {
			if m.Position <= a.position {
				crossed = append(crossed, m)
			}
		}
	default:
		a.position = 0
		a.status = AudioStatusStopped
	}
	return crossed
}

func (a *AudioInstance) Destroy() {
	a.mu.Lock()
	a.status = AudioStatusStopped
	a.position = 0
	a.markDestroyed()
	a.mu.Unlock()
}
