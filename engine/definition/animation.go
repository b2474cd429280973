package definition

import (
	"sort"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

// Easing names the interpolation used when leaving a keyframe.
type Easing string

const (
	EasingLinear    Easing = "linear"
	EasingEaseIn    Easing = "easeIn"
	EasingEaseOut   Easing = "easeOut"
	EasingEaseInOut Easing = "easeInOut"
)

func parseEasing(s string) Easing {
	switch Easing(s) {
	case EasingLinear, EasingEaseIn, EasingEaseOut, EasingEaseInOut:
		return Easing(s)
	}
	return EasingLinear
}

// Keyframe is a transform sample at Time seconds.
type Keyframe struct {
	Index       int
	Time        float32
	Translation math.Vec3
	Orientation math.Quaternion
	Scale       math.Vec3
	Easing      Easing
}

type AnimationAttributes struct {
	Loop bool
	// Relative keyframes are applied on top of the owner's initial transform.
	Relative  bool
	Keyframes []Keyframe
}

func newAnimationAttributes() *AnimationAttributes {
	return &AnimationAttributes{}
}

// AddKeyframe appends an identity keyframe at time with the next free index.
func (a *AnimationAttributes) AddKeyframe(time float32) Keyframe {
	next := 0
	for _, kf := range a.Keyframes {
		if kf.Index >= next {
			next = kf.Index + 1
		}
	}
	kf := Keyframe{
		Index:       next,
		Time:        time,
		Orientation: math.NewQuatIdentity(),
		Scale:       math.NewVec3One(),
		Easing:      EasingLinear,
	}
	a.Keyframes = append(a.Keyframes, kf)
	return kf
}

func (a *AnimationAttributes) SetKeyframe(kf Keyframe) {
	for i := range a.Keyframes {
		if a.Keyframes[i].Index == kf.Index {
			a.Keyframes[i] = kf
			return
		}
	}
	a.Keyframes = append(a.Keyframes, kf)
}

func (a *AnimationAttributes) RemoveKeyframe(index int) bool {
	for i, kf := range a.Keyframes {
		if kf.Index == index {
			a.Keyframes = append(a.Keyframes[:i], a.Keyframes[i+1:]...)
			return true
		}
	}
	return false
}

// SortedKeyframes returns the keyframes ordered by time.
func (a *AnimationAttributes) SortedKeyframes() []Keyframe {
	out := make([]Keyframe, len(a.Keyframes))
	copy(out, a.Keyframes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Duration is the time of the last keyframe.
func (a *AnimationAttributes) Duration() float32 {
	var d float32
	for _, kf := range a.Keyframes {
		if kf.Time > d {
			d = kf.Time
		}
	}
	return d
}

func (a *AnimationAttributes) decode(f core.JSONFields) {
	a.Loop = f.Bool("loop", a.Loop)
	a.Relative = f.Bool("relative", a.Relative)

	a.Keyframes = nil
	for i, raw := range f.Array("keyframes") {
		k, ok := core.ParseJSONFields(raw)
		if !ok {
			core.LogDebug("skipping malformed keyframe %d", i)
			continue
		}
		a.Keyframes = append(a.Keyframes, Keyframe{
			Index:       k.Int("index", i),
			Time:        k.Float32("time", 0),
			Translation: math.Vec3Field(k, "translation", math.NewVec3Zero()),
			Orientation: math.QuaternionField(k, "orientation", math.NewQuatIdentity()),
			Scale:       math.Vec3Field(k, "scale", math.NewVec3One()),
			Easing:      parseEasing(k.String("easing", string(EasingLinear))),
		})
	}
}

func (a *AnimationAttributes) encode(out map[string]interface{}) {
	out["loop"] = a.Loop
	out["relative"] = a.Relative
	keyframes := make([]map[string]interface{}, 0, len(a.Keyframes))
	for _, kf := range a.Keyframes {
		keyframes = append(keyframes, map[string]interface{}{
			"index":       kf.Index,
			"time":        kf.Time,
			"translation": kf.Translation,
			"orientation": kf.Orientation,
			"scale":       kf.Scale,
			"easing":      string(kf.Easing),
		})
	}
	out["keyframes"] = keyframes
}

func (a *AnimationAttributes) clone() attributes {
	return cloneAttributes(a)
}
