package definition

import (
	"sort"

	"github.com/spaghettifunk/dream/engine/core"
)

// AudioMarker names a sample position inside an audio clip.
type AudioMarker struct {
	Index    int
	Name     string
	Position int
}

type AudioAttributes struct {
	Loop             bool
	SpectrumAnalyser bool
	Markers          []AudioMarker
}

func newAudioAttributes() *AudioAttributes {
	return &AudioAttributes{}
}

func (a *AudioAttributes) AddMarker(name string, position int) AudioMarker {
	next := 0
	for _, m := range a.Markers {
		if m.Index >= next {
			next = m.Index + 1
		}
	}
	m := AudioMarker{Index: next, Name: name, Position: position}
	a.Markers = append(a.Markers, m)
	return m
}

func (a *AudioAttributes) RemoveMarker(index int) bool {
	for i, m := range a.Markers {
		if m.Index == index {
			a.Markers = append(a.Markers[:i], a.Markers[i+1:]...)
			return true
		}
	}
	return false
}

// SortedMarkers returns the markers ordered by sample position.
func (a *AudioAttributes) SortedMarkers() []AudioMarker {
	out := make([]AudioMarker, len(a.Markers))
	copy(out, a.Markers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (a *AudioAttributes) decode(f core.JSONFields) {
	a.Loop = f.Bool("loop", a.Loop)
	a.SpectrumAnalyser = f.Bool("spectrumAnalyser", a.SpectrumAnalyser)

	a.Markers = nil
	for i, raw := range f.Array("markers") {
		m, ok := core.ParseJSONFields(raw)
		if !ok {
			core.LogDebug("skipping malformed audio marker %d", i)
			continue
		}
		a.Markers = append(a.Markers, AudioMarker{
			Index:    m.Int("index", i),
			Name:     m.String("name", ""),
			Position: m.Int("position", 0),
		})
	}
}

func (a *AudioAttributes) encode(out map[string]interface{}) {
	out["loop"] = a.Loop
	out["spectrumAnalyser"] = a.SpectrumAnalyser
	markers := make([]map[string]interface{}, 0, len(a.Markers))
	for _, m := range a.Markers {
		markers = append(markers, map[string]interface{}{
			"index":    m.Index,
			"name":     m.Name,
			"position": m.Position,
		})
	}
	out["markers"] = markers
}

func (a *AudioAttributes) clone() attributes {
	return cloneAttributes(a)
}
