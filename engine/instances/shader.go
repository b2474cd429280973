package instances

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

const (
	VertexShaderFile   = "vertex.glsl"
	FragmentShaderFile = "fragment.glsl"
)

var uniformPattern = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*(?:\[[^\]]*\])?\s*;`)

type ShaderInstance struct {
	instanceBase
	vertexSource   string
	fragmentSource string
	uniforms       []string
}

func NewShaderInstance(def *definition.AssetDefinition, transform *math.Transform) *ShaderInstance {
	return &ShaderInstance{instanceBase: newInstanceBase(def, transform)}
}

// Load reads the vertex and fragment stages from the asset directory.
func (s *ShaderInstance) Load(projectDir string) bool {
	dir := s.def.AssetDirectory(projectDir)
	vertex, err := os.ReadFile(filepath.Join(dir, VertexShaderFile))
	if err != nil {
		core.LogError("could not read vertex shader for %s: %s", s.name, err)
		return false
	}
	fragment, err := os.ReadFile(filepath.Join(dir, FragmentShaderFile))
	if err != nil {
		core.LogError("could not read fragment shader for %s: %s", s.name, err)
		return false
	}

	uniforms := scanUniforms(string(vertex), string(fragment))
	return s.publish(func() {
		s.vertexSource = string(vertex)
		s.fragmentSource = string(fragment)
		s.uniforms = uniforms
	})
}

// scanUniforms returns the sorted, de-duplicated uniform names of the sources.
func scanUniforms(sources ...string) []string {
	seen := make(map[string]struct{})
	for _, src := range sources {
		for _, m := range uniformPattern.FindAllStringSubmatch(src, -1) {
			seen[m[1]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *ShaderInstance) VertexSource() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vertexSource
}

func (s *ShaderInstance) FragmentSource() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragmentSource
}

func (s *ShaderInstance) Uniforms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.uniforms))
	copy(out, s.uniforms)
	return out
}

func (s *ShaderInstance) HasUniform(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := sort.SearchStrings(s.uniforms, name)
	return i < len(s.uniforms) && s.uniforms[i] == name
}
