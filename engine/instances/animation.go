package instances

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

// AnimationInstance interpolates between keyframes and writes the result into
// the owner transform.
type AnimationInstance struct {
	instanceBase
	loop      bool
	relative  bool
	keyframes []definition.Keyframe
	duration  float32

	origin  math.Transform
	time    float32
	running bool
}

func NewAnimationInstance(def *definition.AssetDefinition, transform *math.Transform) *AnimationInstance {
	a := &AnimationInstance{instanceBase: newInstanceBase(def, transform)}
	if attrs := def.Animation(); attrs != nil {
		a.loop = attrs.Loop
		a.relative = attrs.Relative
		a.keyframes = attrs.SortedKeyframes()
		a.duration = attrs.Duration()
	}
	return a
}

// Load captures the owner transform relative keyframes are applied to and
// starts playback.
func (a *AnimationInstance) Load(projectDir string) bool {
	return a.publish(func() {
		if a.transform != nil {
			a.origin = *a.transform
		}
		a.time = 0
		a.running = len(a.keyframes) > 0
	})
}

func (a *AnimationInstance) Duration() float32 { return a.duration }
func (a *AnimationInstance) Looping() bool     { return a.loop }

func (a *AnimationInstance) Time() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.time
}

func (a *AnimationInstance) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

func (a *AnimationInstance) Play() {
	a.mu.Lock()
	a.running = len(a.keyframes) > 0
	a.mu.Unlock()
}

func (a *AnimationInstance) Pause() {
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
}

func (a *AnimationInstance) Stop() {
	a.mu.Lock()
	a.running = false
	a.time = 0
	a.mu.Unlock()
}

// Update advances the animation by delta seconds. A non looping animation
// stops on its last keyframe.
func (a *AnimationInstance) Update(delta float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running || len(a.keyframes) == 0 {
		return
	}

	a.time += delta
	if a.time >= a.duration {
		if a.loop && a.duration > 0 {
			a.time = math32.Mod(a.time, a.duration)
		} else {
			a.time = a.duration
			a.running = false
		}
	}
	a.apply(a.sample(a.time))
}

// Sample returns the interpolated keyframe at time t.
func (a *AnimationInstance) Sample(t float32) definition.Keyframe {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sample(t)
}

func (a *AnimationInstance) sample(t float32) definition.Keyframe {
	first, last := a.keyframes[0], a.keyframes[len(a.keyframes)-1]
	if t <= first.Time {
		return first
	}
	if t >= last.Time {
		return last
	}
	for i := 1; i < len(a.keyframes); i++ {
		to := a.keyframes[i]
		if t > to.Time {
			continue
		}
		from := a.keyframes[i-1]
		span := to.Time - from.Time
		if span <= 0 {
			return to
		}
		f := ease(from.Easing, (t-from.Time)/span)
		return definition.Keyframe{
			Index:       from.Index,
			Time:        t,
			Translation: from.Translation.Lerp(to.Translation, f),
			Orientation: from.Orientation.Slerp(to.Orientation, f),
			Scale:       from.Scale.Lerp(to.Scale, f),
			Easing:      from.Easing,
		}
	}
	return last
}

func (a *AnimationInstance) apply(kf definition.Keyframe) {
	if a.transform == nil {
		return
	}
	if !a.relative {
		a.transform.SetTranslation(kf.Translation)
		a.transform.SetOrientation(kf.Orientation)
		a.transform.SetScale(kf.Scale)
		return
	}
	a.transform.SetTranslation(a.origin.Translation.Add(kf.Translation))
	a.transform.SetOrientation(a.origin.Orientation.Mul(kf.Orientation))
	a.transform.SetScale(a.origin.Scale.Mul(kf.Scale))
}

func ease(e definition.Easing, t float32) float32 {
	switch e {
	case definition.EasingEaseIn:
		return t * t
	case definition.EasingEaseOut:
		return t * (2 - t)
	case definition.EasingEaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	}
	return t
}
