package definition

import (
	"encoding/json"
	"fmt"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/math"
)

const (
	DefaultSceneObjectName = "New Scene Object"
	DefaultRootName        = "Root"
)

/**
 * @brief A node in the declarative scene tree. A node is owned by its parent,
 * or by the scene for the root. Every mutation notifies the owning project.
 */
type SceneObjectDefinition struct {
	uuid          string
	name          string
	transform     math.Transform
	hasFocus      bool
	alwaysDraw    bool
	static        bool
	followsCamera bool
	// asset definition uuids, in instantiation order. Duplicates are allowed.
	loadQueue []string
	children  []*SceneObjectDefinition

	parent *SceneObjectDefinition
	scene  *SceneDefinition
}

func NewSceneObjectDefinition(name string) *SceneObjectDefinition {
	return &SceneObjectDefinition{
		uuid:      core.NewUUID(),
		name:      name,
		transform: math.TransformCreate(),
	}
}

func (d *SceneObjectDefinition) UUID() string {
	return d.uuid
}

func (d *SceneObjectDefinition) Name() string {
	return d.name
}

func (d *SceneObjectDefinition) SetName(name string) {
	d.name = name
	d.changed()
}

// Transform returns a copy of the stored transform.
func (d *SceneObjectDefinition) Transform() math.Transform {
	return d.transform
}

func (d *SceneObjectDefinition) SetTransform(t math.Transform) {
	d.transform = t
	d.changed()
}

func (d *SceneObjectDefinition) HasFocus() bool {
	return d.hasFocus
}

func (d *SceneObjectDefinition) SetHasFocus(v bool) {
	d.hasFocus = v
	d.changed()
}

func (d *SceneObjectDefinition) AlwaysDraw() bool {
	return d.alwaysDraw
}

func (d *SceneObjectDefinition) SetAlwaysDraw(v bool) {
	d.alwaysDraw = v
	d.changed()
}

func (d *SceneObjectDefinition) Static() bool {
	return d.static
}

func (d *SceneObjectDefinition) SetStatic(v bool) {
	d.static = v
	d.changed()
}

func (d *SceneObjectDefinition) FollowsCamera() bool {
	return d.followsCamera
}

func (d *SceneObjectDefinition) SetFollowsCamera(v bool) {
	d.followsCamera = v
	d.changed()
}

func (d *SceneObjectDefinition) Parent() *SceneObjectDefinition {
	return d.parent
}

func (d *SceneObjectDefinition) Scene() *SceneDefinition {
	return d.scene
}

func (d *SceneObjectDefinition) IsRoot() bool {
	return d.parent == nil
}

// Children returns a copy of the child list.
func (d *SceneObjectDefinition) Children() []*SceneObjectDefinition {
	out := make([]*SceneObjectDefinition, len(d.children))
	copy(out, d.children)
	return out
}

func (d *SceneObjectDefinition) ChildCount() int {
	return len(d.children)
}

// CreateNewChildSceneObjectDefinition appends a child with a new uuid and an
// identity absolute transform.
func (d *SceneObjectDefinition) CreateNewChildSceneObjectDefinition() *SceneObjectDefinition {
	child := NewSceneObjectDefinition(DefaultSceneObjectName)
	d.adopt(child)
	d.changed()
	return child
}

// AddChildSceneObjectDefinition moves child under d. A node cannot become a
// child of itself or of one of its descendants.
func (d *SceneObjectDefinition) AddChildSceneObjectDefinition(child *SceneObjectDefinition) error {
	if child == nil {
		return fmt.Errorf("add child to %s: %w", d.uuid, core.ErrUnknown)
	}
	for n := d; n != nil; n = n.parent {
		if n == child {
			return fmt.Errorf("add %s under %s: %w", child.uuid, d.uuid, core.ErrCyclicSceneObject)
		}
	}
	if child.parent != nil {
		child.parent.detach(child)
	}
	d.adopt(child)
	d.changed()
	return nil
}

// RemoveChildSceneObjectDefinition removes child by identity. The removed
// subtree is detached from the scene.
func (d *SceneObjectDefinition) RemoveChildSceneObjectDefinition(child *SceneObjectDefinition) bool {
	if !d.detach(child) {
		return false
	}
	d.changed()
	return true
}

// DuplicateSceneObjectDefinition copies the subtree rooted at d with fresh
// uuids and appends the copy to d's parent. The root cannot be duplicated.
func (d *SceneObjectDefinition) DuplicateSceneObjectDefinition() *SceneObjectDefinition {
	if d.parent == nil {
		core.LogWarn("cannot duplicate root scene object %s", d.uuid)
		return nil
	}
	dup := d.deepCopy()
	d.parent.adopt(dup)
	d.parent.changed()
	return dup
}

func (d *SceneObjectDefinition) deepCopy() *SceneObjectDefinition {
	dup := &SceneObjectDefinition{
		uuid:          core.NewUUID(),
		name:          d.name,
		transform:     d.transform,
		hasFocus:      d.hasFocus,
		alwaysDraw:    d.alwaysDraw,
		static:        d.static,
		followsCamera: d.followsCamera,
		loadQueue:     append([]string(nil), d.loadQueue...),
	}
	for _, c := range d.children {
		cc := c.deepCopy()
		cc.parent = dup
		dup.children = append(dup.children, cc)
	}
	return dup
}

// LoadQueue returns a copy of the queued asset definition uuids.
func (d *SceneObjectDefinition) LoadQueue() []string {
	return append([]string(nil), d.loadQueue...)
}

// AddAssetDefinitionUuidToLoadQueue appends uuid. Duplicates are kept and
// instantiate once per entry.
func (d *SceneObjectDefinition) AddAssetDefinitionUuidToLoadQueue(uuid string) {
	d.loadQueue = append(d.loadQueue, uuid)
	d.changed()
}

// RemoveAssetDefinitionFromLoadQueue removes the first entry equal to uuid.
func (d *SceneObjectDefinition) RemoveAssetDefinitionFromLoadQueue(uuid string) bool {
	for i, id := range d.loadQueue {
		if id == uuid {
			d.loadQueue = append(d.loadQueue[:i], d.loadQueue[i+1:]...)
			d.changed()
			return true
		}
	}
	return false
}

// removeAllFromLoadQueue strips every entry for uuid in the subtree and
// reports how many were removed.
func (d *SceneObjectDefinition) removeAllFromLoadQueue(uuid string) int {
	removed := 0
	d.Walk(func(n *SceneObjectDefinition) bool {
		kept := n.loadQueue[:0]
		for _, id := range n.loadQueue {
			if id == uuid {
				removed++
				continue
			}
			kept = append(kept, id)
		}
		n.loadQueue = kept
		return true
	})
	return removed
}

// Walk visits the subtree depth first, parents before children. Returning
// false from fn stops the walk.
func (d *SceneObjectDefinition) Walk(fn func(*SceneObjectDefinition) bool) bool {
	if !fn(d) {
		return false
	}
	for _, c := range d.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

func (d *SceneObjectDefinition) FindByUUID(uuid string) *SceneObjectDefinition {
	var found *SceneObjectDefinition
	d.Walk(func(n *SceneObjectDefinition) bool {
		if n.uuid == uuid {
			found = n
			return false
		}
		return true
	})
	return found
}

func (d *SceneObjectDefinition) FindByName(name string) *SceneObjectDefinition {
	var found *SceneObjectDefinition
	d.Walk(func(n *SceneObjectDefinition) bool {
		if n.name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the subtree including d.
func (d *SceneObjectDefinition) Count() int {
	n := 0
	d.Walk(func(*SceneObjectDefinition) bool {
		n++
		return true
	})
	return n
}

func (d *SceneObjectDefinition) adopt(child *SceneObjectDefinition) {
	child.parent = d
	child.setScene(d.scene)
	d.children = append(d.children, child)
}

func (d *SceneObjectDefinition) detach(child *SceneObjectDefinition) bool {
	for i, c := range d.children {
		if c == child {
			d.children = append(d.children[:i], d.children[i+1:]...)
			child.parent = nil
			child.setScene(nil)
			return true
		}
	}
	return false
}

func (d *SceneObjectDefinition) setScene(scene *SceneDefinition) {
	d.Walk(func(n *SceneObjectDefinition) bool {
		n.scene = scene
		return true
	})
}

func (d *SceneObjectDefinition) changed() {
	if d.scene != nil {
		d.scene.notifyChanged(d.uuid)
	}
}

type sceneObjectJSON struct {
	UUID           string                   `json:"uuid"`
	Name           string                   `json:"name"`
	Transform      math.Transform           `json:"transform"`
	HasFocus       bool                     `json:"hasFocus"`
	AlwaysDraw     bool                     `json:"alwaysDraw"`
	Static         bool                     `json:"static"`
	FollowsCamera  bool                     `json:"followsCamera"`
	AssetInstances []string                 `json:"assetInstances"`
	Children       []*SceneObjectDefinition `json:"children"`
}

func (d *SceneObjectDefinition) MarshalJSON() ([]byte, error) {
	queue := d.loadQueue
	if queue == nil {
		queue = []string{}
	}
	children := d.children
	if children == nil {
		children = []*SceneObjectDefinition{}
	}
	return json.Marshal(sceneObjectJSON{
		UUID:           d.uuid,
		Name:           d.name,
		Transform:      d.transform,
		HasFocus:       d.hasFocus,
		AlwaysDraw:     d.alwaysDraw,
		Static:         d.static,
		FollowsCamera:  d.followsCamera,
		AssetInstances: queue,
		Children:       children,
	})
}

// UnmarshalJSON never fails; missing or malformed fields take defaults.
func (d *SceneObjectDefinition) UnmarshalJSON(data []byte) error {
	d.decode(data)
	return nil
}

func (d *SceneObjectDefinition) decode(data []byte) {
	f, ok := core.ParseJSONFields(data)
	if !ok {
		core.LogWarn("scene object definition is not a JSON object, using defaults")
	}

	d.uuid = f.String("uuid", "")
	if d.uuid == "" {
		d.uuid = core.NewUUID()
	}
	d.name = f.String("name", DefaultSceneObjectName)
	d.transform = math.TransformCreate()
	if raw, ok := f.Raw("transform"); ok {
		d.transform = math.TransformFromJSON(raw)
	}
	d.hasFocus = f.Bool("hasFocus", false)
	d.alwaysDraw = f.Bool("alwaysDraw", false)
	d.static = f.Bool("static", false)
	d.followsCamera = f.Bool("followsCamera", false)
	d.loadQueue = f.Strings("assetInstances")

	d.children = nil
	for _, raw := range f.Array("children") {
		child := &SceneObjectDefinition{}
		child.decode(raw)
		child.parent = d
		child.setScene(d.scene)
		d.children = append(d.children, child)
	}
}
