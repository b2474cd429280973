package instances

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

/**
 * @brief A model read from the asset's data file. Only the Wavefront OBJ
 * statements needed for culling and material binding are interpreted:
 * vertices, faces and usemtl.
 */
type ModelInstance struct {
	instanceBase
	materialList []definition.ModelMaterial

	bounds    math.Extents3D
	vertices  int
	faces     int
	materials []string
}

func NewModelInstance(def *definition.AssetDefinition, transform *math.Transform) *ModelInstance {
	m := &ModelInstance{instanceBase: newInstanceBase(def, transform)}
	if attrs := def.Model(); attrs != nil {
		m.materialList = append(m.materialList, attrs.MaterialList...)
	}
	return m
}

func (m *ModelInstance) Load(projectDir string) bool {
	data, err := os.ReadFile(m.def.DataPath(projectDir))
	if err != nil {
		core.LogError("could not read model %s: %s", m.name, err)
		return false
	}
	points, faces, materials, err := scanOBJ(data)
	if err != nil {
		core.LogError("could not parse model %s: %s", m.name, err)
		return false
	}
	if len(points) == 0 {
		core.LogError("model %s has no vertices", m.name)
		return false
	}

	return m.publish(func() {
		m.bounds = math.ExtentsFromPoints(points)
		m.vertices = len(points)
		m.faces = faces
		m.materials = materials
	})
}

func scanOBJ(data []byte) (points []math.Vec3, faces int, materials []string, err error) {
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, 0, nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var p [3]float32
			for i := 0; i < 3; i++ {
				f, perr := strconv.ParseFloat(fields[i+1], 32)
				if perr != nil {
					return nil, 0, nil, fmt.Errorf("line %d: %w", line, perr)
				}
				p[i] = float32(f)
			}
			points = append(points, math.NewVec3(p[0], p[1], p[2]))
		case "f":
			faces++
		case "usemtl":
			if len(fields) > 1 && !seen[fields[1]] {
				seen[fields[1]] = true
				materials = append(materials, fields[1])
			}
		}
	}
	return points, faces, materials, scanner.Err()
}

func (m *ModelInstance) BoundingBox() math.Extents3D {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bounds
}

func (m *ModelInstance) VertexCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vertices
}

func (m *ModelInstance) FaceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.faces
}

// ModelMaterials lists the material names the model file uses, in first use order.
func (m *ModelInstance) ModelMaterials() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.materials))
	copy(out, m.materials)
	return out
}

// MaterialFor returns the uuid of the material definition bound to a model material.
func (m *ModelInstance) MaterialFor(modelMaterial string) (string, bool) {
	for _, mm := range m.materialList {
		if mm.ModelMaterial == modelMaterial {
			return mm.DreamMaterial, true
		}
	}
	return "", false
}
