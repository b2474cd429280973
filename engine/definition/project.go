package definition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spaghettifunk/dream/engine/core"
)

const (
	DefaultProjectName  = "Untitled Project"
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
	// ProjectFileName is the project document inside a project directory.
	ProjectFileName = "project.json"
)

// ChangeListener receives the uuid of a definition that was edited.
type ChangeListener func(uuid string)

/**
 * @brief ProjectDefinition is the root of persistence. It owns every asset
 * definition, keyed by uuid, and the ordered list of scene definitions.
 */
type ProjectDefinition struct {
	uuid             string
	name             string
	author           string
	description      string
	windowWidth      int
	windowHeight     int
	startupSceneUUID string
	captureKeyboard  bool
	captureMouse     bool
	captureJoystick  bool

	assetDefinitions map[string]*AssetDefinition
	sceneDefinitions []*SceneDefinition

	mu           sync.Mutex
	listeners    map[int]ChangeListener
	nextListener int
}

func NewProjectDefinition(name string) *ProjectDefinition {
	if name == "" {
		name = DefaultProjectName
	}
	return &ProjectDefinition{
		uuid:             core.NewUUID(),
		name:             name,
		windowWidth:      DefaultWindowWidth,
		windowHeight:     DefaultWindowHeight,
		assetDefinitions: map[string]*AssetDefinition{},
		listeners:        map[int]ChangeListener{},
	}
}

func (p *ProjectDefinition) UUID() string             { return p.uuid }
func (p *ProjectDefinition) Name() string             { return p.name }
func (p *ProjectDefinition) Author() string           { return p.author }
func (p *ProjectDefinition) Description() string      { return p.description }
func (p *ProjectDefinition) WindowWidth() int         { return p.windowWidth }
func (p *ProjectDefinition) WindowHeight() int        { return p.windowHeight }
func (p *ProjectDefinition) StartupSceneUUID() string { return p.startupSceneUUID }
func (p *ProjectDefinition) CaptureKeyboard() bool    { return p.captureKeyboard }
func (p *ProjectDefinition) CaptureMouse() bool       { return p.captureMouse }
func (p *ProjectDefinition) CaptureJoystick() bool    { return p.captureJoystick }

func (p *ProjectDefinition) SetName(name string) {
	p.name = name
	p.notifyChanged(p.uuid)
}

func (p *ProjectDefinition) SetAuthor(author string) {
	p.author = author
	p.notifyChanged(p.uuid)
}

func (p *ProjectDefinition) SetDescription(description string) {
	p.description = description
	p.notifyChanged(p.uuid)
}

func (p *ProjectDefinition) SetWindowSize(width, height int) {
	p.windowWidth = width
	p.windowHeight = height
	p.notifyChanged(p.uuid)
}

func (p *ProjectDefinition) SetStartupSceneUUID(uuid string) {
	p.startupSceneUUID = uuid
	p.notifyChanged(p.uuid)
}

func (p *ProjectDefinition) SetCapture(keyboard, mouse, joystick bool) {
	p.captureKeyboard = keyboard
	p.captureMouse = mouse
	p.captureJoystick = joystick
	p.notifyChanged(p.uuid)
}

// OnChanged registers fn for every definition edit in the project. The
// returned id removes it again.
func (p *ProjectDefinition) OnChanged(fn ChangeListener) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listeners == nil {
		p.listeners = map[int]ChangeListener{}
	}
	p.nextListener++
	p.listeners[p.nextListener] = fn
	return p.nextListener
}

func (p *ProjectDefinition) RemoveChangeListener(id int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.listeners[id]; !ok {
		return false
	}
	delete(p.listeners, id)
	return true
}

func (p *ProjectDefinition) notifyChanged(uuid string) {
	p.mu.Lock()
	ids := make([]int, 0, len(p.listeners))
	for id := range p.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]ChangeListener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, p.listeners[id])
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(uuid)
	}
}

// Assets

// CreateNewAssetDefinition adds a new definition of type t to the project.
func (p *ProjectDefinition) CreateNewAssetDefinition(t AssetType) *AssetDefinition {
	def := NewAssetDefinition(p, t)
	p.assetDefinitions[def.uuid] = def
	p.notifyChanged(def.uuid)
	return def
}

// AddAssetDefinition takes ownership of def. An existing definition with the
// same uuid is replaced.
func (p *ProjectDefinition) AddAssetDefinition(def *AssetDefinition) {
	def.project = p
	p.assetDefinitions[def.uuid] = def
	p.notifyChanged(def.uuid)
}

// RemoveAssetDefinition drops the definition and strips its uuid from every
// scene object load queue.
func (p *ProjectDefinition) RemoveAssetDefinition(uuid string) bool {
	def, ok := p.assetDefinitions[uuid]
	if !ok {
		return false
	}
	delete(p.assetDefinitions, uuid)
	def.project = nil

	for _, s := range p.sceneDefinitions {
		if s.root == nil {
			continue
		}
		if n := s.root.removeAllFromLoadQueue(uuid); n > 0 {
			core.LogDebug("removed %d references to asset %s from scene %s", n, uuid, s.uuid)
		}
	}
	p.notifyChanged(uuid)
	return true
}

func (p *ProjectDefinition) AssetDefinitionByUUID(uuid string) *AssetDefinition {
	return p.assetDefinitions[uuid]
}

func (p *ProjectDefinition) AssetDefinitionByName(name string) *AssetDefinition {
	for _, def := range p.AssetDefinitions() {
		if def.name == name {
			return def
		}
	}
	return nil
}

// AssetDefinitions returns every definition ordered by name then uuid.
func (p *ProjectDefinition) AssetDefinitions() []*AssetDefinition {
	out := make([]*AssetDefinition, 0, len(p.assetDefinitions))
	for _, def := range p.assetDefinitions {
		out = append(out, def)
	}
	sortAssetDefinitions(out)
	return out
}

func (p *ProjectDefinition) AssetDefinitionsByType(t AssetType) []*AssetDefinition {
	var out []*AssetDefinition
	for _, def := range p.assetDefinitions {
		if def.typ == t {
			out = append(out, def)
		}
	}
	sortAssetDefinitions(out)
	return out
}

func (p *ProjectDefinition) AssetDefinitionCount() int {
	return len(p.assetDefinitions)
}

func sortAssetDefinitions(defs []*AssetDefinition) {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].name != defs[j].name {
			return defs[i].name < defs[j].name
		}
		return defs[i].uuid < defs[j].uuid
	})
}

// Scenes

// CreateNewSceneDefinition appends a scene. The first scene becomes the
// startup scene.
func (p *ProjectDefinition) CreateNewSceneDefinition() *SceneDefinition {
	s := NewSceneDefinition(p)
	p.sceneDefinitions = append(p.sceneDefinitions, s)
	if p.startupSceneUUID == "" {
		p.startupSceneUUID = s.uuid
	}
	p.notifyChanged(s.uuid)
	return s
}

func (p *ProjectDefinition) RemoveSceneDefinition(scene *SceneDefinition) bool {
	for i, s := range p.sceneDefinitions {
		if s == scene {
			p.sceneDefinitions = append(p.sceneDefinitions[:i], p.sceneDefinitions[i+1:]...)
			if p.startupSceneUUID == s.uuid {
				p.startupSceneUUID = ""
			}
			s.project = nil
			p.notifyChanged(s.uuid)
			return true
		}
	}
	return false
}

func (p *ProjectDefinition) SceneDefinitions() []*SceneDefinition {
	out := make([]*SceneDefinition, len(p.sceneDefinitions))
	copy(out, p.sceneDefinitions)
	return out
}

func (p *ProjectDefinition) SceneDefinitionCount() int {
	return len(p.sceneDefinitions)
}

func (p *ProjectDefinition) SceneDefinitionByUUID(uuid string) *SceneDefinition {
	for _, s := range p.sceneDefinitions {
		if s.uuid == uuid {
			return s
		}
	}
	return nil
}

func (p *ProjectDefinition) SceneDefinitionByName(name string) *SceneDefinition {
	for _, s := range p.sceneDefinitions {
		if s.name == name {
			return s
		}
	}
	return nil
}

// StartupSceneDefinition falls back to the first scene when no startup
// scene is set or it no longer exists.
func (p *ProjectDefinition) StartupSceneDefinition() *SceneDefinition {
	if s := p.SceneDefinitionByUUID(p.startupSceneUUID); s != nil {
		return s
	}
	if len(p.sceneDefinitions) > 0 {
		return p.sceneDefinitions[0]
	}
	return nil
}

// Persistence

type windowSizeJSON struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type projectJSON struct {
	UUID            string                              `json:"uuid"`
	Name            string                              `json:"name"`
	Author          string                              `json:"author"`
	Description     string                              `json:"description"`
	StartupScene    string                              `json:"startupScene"`
	WindowSize      windowSizeJSON                      `json:"windowSize"`
	CaptureKeyboard bool                                `json:"captureKeyboard"`
	CaptureMouse    bool                                `json:"captureMouse"`
	CaptureJoystick bool                                `json:"captureJoystick"`
	Assets          map[string][]map[string]interface{} `json:"assets"`
	Scenes          []*SceneDefinition                  `json:"scenes"`
}

// MarshalJSON writes asset definitions partitioned by type name.
func (p *ProjectDefinition) MarshalJSON() ([]byte, error) {
	assets := map[string][]map[string]interface{}{}
	for _, def := range p.AssetDefinitions() {
		key := def.typ.String()
		assets[key] = append(assets[key], def.toMap())
	}
	scenes := p.sceneDefinitions
	if scenes == nil {
		scenes = []*SceneDefinition{}
	}
	return json.Marshal(projectJSON{
		UUID:            p.uuid,
		Name:            p.name,
		Author:          p.author,
		Description:     p.description,
		StartupScene:    p.startupSceneUUID,
		WindowSize:      windowSizeJSON{Width: p.windowWidth, Height: p.windowHeight},
		CaptureKeyboard: p.captureKeyboard,
		CaptureMouse:    p.captureMouse,
		CaptureJoystick: p.captureJoystick,
		Assets:          assets,
		Scenes:          scenes,
	})
}

// UnmarshalJSON never fails. Assets may be partitioned by type or stored as a
// flat list.
func (p *ProjectDefinition) UnmarshalJSON(data []byte) error {
	p.decode(data)
	return nil
}

func (p *ProjectDefinition) decode(data []byte) {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		core.LogWarn("project definition is not a JSON object, using defaults")
	}

	p.uuid = f.String("uuid", "")
	if p.uuid == "" {
		p.uuid = core.NewUUID()
	}
	p.name = f.String("name", DefaultProjectName)
	p.author = f.String("author", "")
	p.description = f.String("description", "")
	p.startupSceneUUID = f.String("startupScene", "")
	window := f.Object("windowSize")
	p.windowWidth = window.Int("width", DefaultWindowWidth)
	p.windowHeight = window.Int("height", DefaultWindowHeight)
	p.captureKeyboard = f.Bool("captureKeyboard", false)
	p.captureMouse = f.Bool("captureMouse", false)
	p.captureJoystick = f.Bool("captureJoystick", false)

	p.assetDefinitions = map[string]*AssetDefinition{}
	if raw, ok := f.Raw("assets"); ok {
		if partitions, ok := core.ParseJSONFields(raw); ok {
			for typeName := range partitions {
				partitionType := ParseAssetType(typeName)
				if partitionType == AssetTypeNone {
					core.LogWarn("unknown asset partition %q", typeName)
				}
				for _, item := range partitions.Array(typeName) {
					p.decodeAsset(item, partitionType)
				}
			}
		} else {
			for _, item := range f.Array("assets") {
				p.decodeAsset(item, AssetTypeNone)
			}
		}
	}

	p.sceneDefinitions = nil
	for _, raw := range f.Array("scenes") {
		s := &SceneDefinition{project: p}
		s.decode(raw)
		p.sceneDefinitions = append(p.sceneDefinitions, s)
	}
	if p.listeners == nil {
		p.listeners = map[int]ChangeListener{}
	}
}

func (p *ProjectDefinition) decodeAsset(raw json.RawMessage, fallback AssetType) {
	def := &AssetDefinition{project: p}
	def.decode(raw, fallback)
	if _, dup := p.assetDefinitions[def.uuid]; dup {
		core.LogWarn("duplicate asset definition %s, keeping the last one", def.uuid)
	}
	p.assetDefinitions[def.uuid] = def
}

// LoadProjectDefinition reads the project document from projectDir.
func LoadProjectDefinition(projectDir string) (*ProjectDefinition, error) {
	path := filepath.Join(projectDir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read project %s: %w", path, err)
	}
	p := &ProjectDefinition{}
	p.decode(data)
	core.LogInfo("loaded project %q with %d assets and %d scenes", p.name, len(p.assetDefinitions), len(p.sceneDefinitions))
	return p, nil
}

// SaveProjectDefinition writes the project document into projectDir.
func SaveProjectDefinition(projectDir string, p *ProjectDefinition) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode project %s: %w", p.uuid, err)
	}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("could not create project directory %s: %w", projectDir, err)
	}
	path := filepath.Join(projectDir, ProjectFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write project %s: %w", path, err)
	}
	return nil
}
