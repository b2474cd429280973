package definition

import (
	"encoding/json"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

const (
	DefaultSceneName           = "Untitled Scene"
	DefaultCameraMovementSpeed = 10
)

// CameraTransform is the stored camera pose. Pitch and yaw are radians.
type CameraTransform struct {
	Translation math.Vec3
	Pitch       float32
	Yaw         float32
}

type SceneDefinition struct {
	uuid                string
	name                string
	notes               string
	camera              CameraTransform
	cameraMovementSpeed float32
	clearColour         math.Colour
	ambientColour       math.Colour
	gravity             math.Vec3
	physicsDebug        bool
	meshCullDistance    float32
	minDrawDistance     float32
	maxDrawDistance     float32
	root                *SceneObjectDefinition

	project *ProjectDefinition
}

// NewSceneDefinition creates a scene with a root object named "Root".
func NewSceneDefinition(project *ProjectDefinition) *SceneDefinition {
	s := &SceneDefinition{
		uuid:    core.NewUUID(),
		name:    DefaultSceneName,
		project: project,
	}
	s.applyDefaults()
	s.setRoot(NewSceneObjectDefinition(DefaultRootName))
	return s
}

func (s *SceneDefinition) applyDefaults() {
	s.camera = CameraTransform{}
	s.cameraMovementSpeed = DefaultCameraMovementSpeed
	s.clearColour = math.NewColourRGB(0, 0, 0)
	s.ambientColour = math.NewColour(0, 0, 0, 1)
	s.gravity = math.NewVec3(0, -9.81, 0)
	s.meshCullDistance = 1000
	s.minDrawDistance = 0.1
	s.maxDrawDistance = 1000
}

func (s *SceneDefinition) setRoot(root *SceneObjectDefinition) {
	root.parent = nil
	root.setScene(s)
	s.root = root
}

func (s *SceneDefinition) UUID() string                                      { return s.uuid }
func (s *SceneDefinition) Name() string                                      { return s.name }
func (s *SceneDefinition) Notes() string                                     { return s.notes }
func (s *SceneDefinition) Camera() CameraTransform                           { return s.camera }
func (s *SceneDefinition) CameraMovementSpeed() float32                      { return s.cameraMovementSpeed }
func (s *SceneDefinition) ClearColour() math.Colour                          { return s.clearColour }
func (s *SceneDefinition) AmbientColour() math.Colour                        { return s.ambientColour }
func (s *SceneDefinition) Gravity() math.Vec3                                { return s.gravity }
func (s *SceneDefinition) PhysicsDebug() bool                                { return s.physicsDebug }
func (s *SceneDefinition) MeshCullDistance() float32                         { return s.meshCullDistance }
func (s *SceneDefinition) MinDrawDistance() float32                          { return s.minDrawDistance }
func (s *SceneDefinition) MaxDrawDistance() float32                          { return s.maxDrawDistance }
func (s *SceneDefinition) RootSceneObjectDefinition() *SceneObjectDefinition { return s.root }
func (s *SceneDefinition) Project() *ProjectDefinition                       { return s.project }

func (s *SceneDefinition) SetName(name string) {
	s.name = name
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetNotes(notes string) {
	s.notes = notes
	s.notifyChanged(s.uuid)
}

// SetCamera stores a camera pose. Runtimes only write here on an explicit capture.
func (s *SceneDefinition) SetCamera(c CameraTransform) {
	s.camera = c
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetCameraMovementSpeed(speed float32) {
	s.cameraMovementSpeed = speed
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetClearColour(c math.Colour) {
	s.clearColour = c
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetAmbientColour(c math.Colour) {
	s.ambientColour = c
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetGravity(g math.Vec3) {
	s.gravity = g
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetPhysicsDebug(v bool) {
	s.physicsDebug = v
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetMeshCullDistance(d float32) {
	s.meshCullDistance = d
	s.notifyChanged(s.uuid)
}

func (s *SceneDefinition) SetDrawDistances(min, max float32) {
	s.minDrawDistance = min
	s.maxDrawDistance = max
	s.notifyChanged(s.uuid)
}

// SceneObjectDefinitionByUUID searches the whole tree.
func (s *SceneDefinition) SceneObjectDefinitionByUUID(uuid string) *SceneObjectDefinition {
	if s.root == nil {
		return nil
	}
	return s.root.FindByUUID(uuid)
}

func (s *SceneDefinition) SceneObjectDefinitionByName(name string) *SceneObjectDefinition {
	if s.root == nil {
		return nil
	}
	return s.root.FindByName(name)
}

func (s *SceneDefinition) notifyChanged(uuid string) {
	if s.project != nil {
		s.project.notifyChanged(uuid)
	}
}

type cameraJSON struct {
	Translation math.Vec3 `json:"translation"`
	Pitch       float32   `json:"pitch"`
	Yaw         float32   `json:"yaw"`
}

type sceneJSON struct {
	UUID                string                 `json:"uuid"`
	Name                string                 `json:"name"`
	Notes               string                 `json:"notes"`
	CameraTransform     cameraJSON             `json:"cameraTransform"`
	CameraMovementSpeed float32                `json:"cameraMovementSpeed"`
	ClearColour         math.Colour            `json:"clearColour"`
	AmbientLight        math.Colour            `json:"ambientLight"`
	Gravity             math.Vec3              `json:"gravity"`
	PhysicsDebug        bool                   `json:"physicsDebug"`
	MeshCullDistance    float32                `json:"meshCullDistance"`
	MinDrawDistance     float32                `json:"minDrawDistance"`
	MaxDrawDistance     float32                `json:"maxDrawDistance"`
	Root                *SceneObjectDefinition `json:"root"`
}

func (s *SceneDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal(sceneJSON{
		UUID:  s.uuid,
		Name:  s.name,
		Notes: s.notes,
		CameraTransform: cameraJSON{
			Translation: s.camera.Translation,
			Pitch:       s.camera.Pitch,
			Yaw:         s.camera.Yaw,
		},
		CameraMovementSpeed: s.cameraMovementSpeed,
		ClearColour:         s.clearColour,
		AmbientLight:        s.ambientColour,
		Gravity:             s.gravity,
		PhysicsDebug:        s.physicsDebug,
		MeshCullDistance:    s.meshCullDistance,
		MinDrawDistance:     s.minDrawDistance,
		MaxDrawDistance:     s.maxDrawDistance,
		Root:                s.root,
	})
}

// UnmarshalJSON never fails; a missing root becomes an empty "Root" object.
func (s *SceneDefinition) UnmarshalJSON(data []byte) error {
	s.decode(data)
	return nil
}

func (s *SceneDefinition) decode(data []byte) {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		core.LogWarn("scene definition is not a JSON object, using defaults")
	}
	s.applyDefaults()

	s.uuid = f.String("uuid", "")
	if s.uuid == "" {
		s.uuid = core.NewUUID()
	}
	s.name = f.String("name", DefaultSceneName)
	s.notes = f.String("notes", "")

	cam := f.Object("cameraTransform")
	s.camera = CameraTransform{
		Translation: math.Vec3Field(cam, "translation", math.NewVec3Zero()),
		Pitch:       cam.Float32("pitch", 0),
		Yaw:         cam.Float32("yaw", 0),
	}
	s.cameraMovementSpeed = f.Float32("cameraMovementSpeed", s.cameraMovementSpeed)
	s.clearColour = math.ColourField(f, "clearColour", s.clearColour)
	s.ambientColour = math.ColourField(f, "ambientLight", s.ambientColour)
	s.gravity = math.Vec3Field(f, "gravity", s.gravity)
	s.physicsDebug = f.Bool("physicsDebug", false)
	s.meshCullDistance = f.Float32("meshCullDistance", s.meshCullDistance)
	s.minDrawDistance = f.Float32("minDrawDistance", s.minDrawDistance)
	s.maxDrawDistance = f.Float32("maxDrawDistance", s.maxDrawDistance)

	root := NewSceneObjectDefinition(DefaultRootName)
	if raw, ok := f.Raw("root"); ok {
		root.decode(raw)
	} else {
		core.LogDebug("scene %s has no root, creating one", s.uuid)
	}
	s.setRoot(root)
}
