package scene

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/tasks"
)

type fakeUploader struct {
	mu       sync.Mutex
	next     uint32
	released []uint32
}

func (f *fakeUploader) UploadTexture(owner string, img *image.RGBA) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next
}

func (f *fakeUploader) ReleaseTexture(id uint32) {
	f.mu.Lock()
	f.released = append(f.released, id)
	f.mu.Unlock()
}

// lightScene builds a project whose startup scene has one child object
// holding a single light.
func lightScene(t *testing.T) (*definition.ProjectDefinition, *definition.SceneDefinition, *definition.SceneObjectDefinition) {
	t.Helper()
	project := definition.NewProjectDefinition("test")
	light := project.CreateNewAssetDefinition(definition.AssetTypeLight)
	light.SetName("sun")
	light.Light().Ambient = math.NewColourRGB(0.1, 0.2, 0.3)
	light.Light().Intensity = 1

	sceneDef := project.CreateNewSceneDefinition()
	obj := sceneDef.RootSceneObjectDefinition().CreateNewChildSceneObjectDefinition()
	obj.SetName("lamp")
	obj.AddAssetDefinitionUuidToLoadQueue(light.UUID())
	return project, sceneDef, obj
}

func TestStartSceneRuntimeWithLight(t *testing.T) {
	project, sceneDef, obj := lightScene(t)
	rt := NewSceneRuntime(project, Options{ProjectDir: t.TempDir()})
	assert.Equal(t, SceneRuntimeStateConstructed, rt.State())

	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))
	assert.Equal(t, SceneRuntimeStateActive, rt.State())
	assert.Equal(t, sceneDef.UUID(), rt.DefinitionUUID())

	lamp := rt.SceneObjectRuntimeByUUID(obj.UUID())
	require.NotNil(t, lamp)
	assert.Equal(t, "lamp", lamp.Name())
	assert.Same(t, rt, lamp.Scene())
	require.Equal(t, 1, lamp.InstanceCount())
	assert.Equal(t, 1, rt.CountInstances())

	light, ok := lamp.InstanceByType(definition.AssetTypeLight).(*instances.LightInstance)
	require.True(t, ok)
	assert.True(t, light.Loaded())
	assert.True(t, light.Color().Compare(math.NewVec3(0.1, 0.2, 0.3), 1e-6))
	assert.Equal(t, float32(1), light.Intensity())
	assert.Same(t, lamp.Transform(), light.Transform())

	require.NoError(t, rt.Stop())
	assert.Equal(t, SceneRuntimeStateStopped, rt.State())
	assert.Equal(t, 0, rt.CountInstances())
	assert.Equal(t, 0, rt.CountRuntimes())
	assert.False(t, light.Loaded())
}

func TestSceneRuntimeTransitions(t *testing.T) {
	project, sceneDef, _ := lightScene(t)
	rt := NewSceneRuntime(project, Options{})

	assert.ErrorIs(t, rt.Stop(), core.ErrInvalidTransition)
	assert.ErrorIs(t, rt.StartSceneRuntimeFromDefinition(nil), core.ErrSceneDefinitionNotFound)

	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))
	assert.ErrorIs(t, rt.StartSceneRuntimeFromDefinition(sceneDef), core.ErrSceneRuntimeAlreadyStarted)

	require.NoError(t, rt.Stop())
	assert.ErrorIs(t, rt.Stop(), core.ErrInvalidTransition)
	assert.ErrorIs(t, rt.StartSceneRuntimeFromDefinition(sceneDef), core.ErrSceneRuntimeAlreadyStarted)
	assert.Equal(t, SceneRuntimeStateStopped, rt.State())
}

func TestSceneRuntimeStateStrings(t *testing.T) {
	assert.Equal(t, "loading", SceneRuntimeStateLoading.String())
	assert.Equal(t, "SceneRuntimeState(9)", SceneRuntimeState(9).String())
}

func TestMissingAssetIsSkippedAndDuplicatesKept(t *testing.T) {
	project, sceneDef, obj := lightScene(t)
	light := obj.LoadQueue()[0]
	obj.AddAssetDefinitionUuidToLoadQueue("does-not-exist")
	obj.AddAssetDefinitionUuidToLoadQueue(light)

	rt := NewSceneRuntime(project, Options{})
	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))

	lamp := rt.SceneObjectRuntimeByName("lamp")
	require.NotNil(t, lamp)
	insts := lamp.Instances()
	require.Len(t, insts, 2)
	assert.NotSame(t, insts[0], insts[1])
	assert.True(t, lamp.AllInstancesLoaded())
}

func TestSceneRuntimeCopiesSceneSettings(t *testing.T) {
	project, sceneDef, _ := lightScene(t)
	sceneDef.SetGravity(math.NewVec3(0, -3, 0))
	sceneDef.SetClearColour(math.NewColourRGB(1, 0, 0))
	sceneDef.SetMeshCullDistance(50)
	sceneDef.SetDrawDistances(0.5, 500)
	sceneDef.SetPhysicsDebug(true)
	sceneDef.SetCamera(definition.CameraTransform{Translation: math.NewVec3(1, 2, 3), Yaw: 0.5})
	sceneDef.SetCameraMovementSpeed(4)

	rt := NewSceneRuntime(project, Options{})
	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))

	assert.Equal(t, math.NewVec3(0, -3, 0), rt.PhysicsWorld().Gravity())
	assert.Equal(t, math.NewColourRGB(1, 0, 0), rt.ClearColour())
	assert.Equal(t, float32(50), rt.MeshCullDistance())
	assert.Equal(t, float32(0.5), rt.MinDrawDistance())
	assert.Equal(t, float32(500), rt.MaxDrawDistance())
	assert.True(t, rt.PhysicsDebug())
	assert.Equal(t, math.NewVec3(1, 2, 3), rt.Camera().Translation)
	assert.Equal(t, float32(4), rt.Camera().MovementSpeed)
}

func TestCaptureCameraIntoDefinition(t *testing.T) {
	project, sceneDef, _ := lightScene(t)
	rt := NewSceneRuntime(project, Options{})
	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))

	rt.Camera().MoveUp(2)
	rt.Camera().AddYaw(1)
	rt.Camera().MovementSpeed = 7

	// not written back until asked
	assert.Equal(t, float32(0), sceneDef.Camera().Yaw)

	rt.CaptureCameraIntoDefinition(sceneDef)
	assert.Equal(t, float32(1), sceneDef.Camera().Yaw)
	assert.Equal(t, float32(2), sceneDef.Camera().Translation.Y)
	assert.Equal(t, float32(7), sceneDef.CameraMovementSpeed())
}

func TestCollectGarbage(t *testing.T) {
	project, sceneDef, obj := lightScene(t)
	child := obj.CreateNewChildSceneObjectDefinition()
	child.SetName("child")
	child.AddAssetDefinitionUuidToLoadQueue(obj.LoadQueue()[0])
	other := sceneDef.RootSceneObjectDefinition().CreateNewChildSceneObjectDefinition()
	other.SetName("other")

	rt := NewSceneRuntime(project, Options{})
	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))
	assert.Equal(t, 4, rt.CountRuntimes())
	assert.Equal(t, 2, rt.CountInstances())

	assert.Equal(t, 0, rt.CollectGarbage())

	rt.SceneObjectRuntimeByName("lamp").SetDeleteFlag(true)
	rt.SceneObjectRuntimeByName("child").SetDeleteFlag(true)
	rt.Root().SetDeleteFlag(true)

	assert.Equal(t, 1, rt.CollectGarbage())
	assert.Equal(t, 2, rt.CountRuntimes())
	assert.Equal(t, 0, rt.CountInstances())
	assert.Nil(t, rt.SceneObjectRuntimeByName("child"))
	assert.NotNil(t, rt.SceneObjectRuntimeByName("other"))
}

func TestResolvedTransformFollowsParents(t *testing.T) {
	project, sceneDef, obj := lightScene(t)
	tr := math.TransformFromPosition(math.NewVec3(1, 0, 0))
	tr.Type = math.TransformTypeOffset
	obj.SetTransform(tr)

	parentTr := math.TransformFromPosition(math.NewVec3(0, 5, 0))
	sceneDef.RootSceneObjectDefinition().SetTransform(parentTr)

	rt := NewSceneRuntime(project, Options{})
	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))

	resolved := rt.SceneObjectRuntimeByName("lamp").ResolvedTransform()
	assert.True(t, resolved.Translation.Compare(math.NewVec3(1, 5, 0), 1e-5))
}

func TestObjectEvents(t *testing.T) {
	r := NewSceneObjectRuntime(nil)
	r.AddEvent(Event{Sender: "a", Name: "hit"})
	r.AddEvent(Event{Sender: "b", Name: "hit"})
	assert.Len(t, r.DrainEvents(), 2)
	assert.Empty(t, r.DrainEvents())
}

func pngFile(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestLoadsOnJobSystemAndUploadOnGraphicsQueue(t *testing.T) {
	dir := t.TempDir()
	project, sceneDef, obj := lightScene(t)
	sprite := project.CreateNewAssetDefinition(definition.AssetTypeSprite)
	pngFile(t, sprite.DataPath(dir))
	obj.AddAssetDefinitionUuidToLoadQueue(sprite.UUID())

	broken := project.CreateNewAssetDefinition(definition.AssetTypeSprite)
	obj.AddAssetDefinitionUuidToLoadQueue(broken.UUID())

	jobs, err := tasks.NewJobSystem(2, 8)
	require.NoError(t, err)
	defer jobs.Shutdown()

	queue := tasks.NewGraphicsQueue()
	uploader := &fakeUploader{}
	rt := NewSceneRuntime(project, Options{
		ProjectDir: dir,
		Jobs:       jobs,
		Uploads:    queue,
		Uploader:   uploader,
	})
	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))
	require.Eventually(t, rt.PollLoading, 5*time.Second, time.Millisecond)
	assert.Equal(t, 0, rt.PendingLoads())

	lamp := rt.SceneObjectRuntimeByName("lamp")
	insts := lamp.Instances()
	require.Len(t, insts, 3)
	assert.False(t, lamp.AllInstancesLoaded())

	spriteInst := insts[1].(*instances.SpriteInstance)
	assert.True(t, spriteInst.Loaded())
	assert.True(t, spriteInst.NeedsUpload())
	assert.False(t, insts[2].Loaded())

	// the failed sprite queues nothing
	assert.Equal(t, 1, queue.Drain())
	assert.False(t, spriteInst.NeedsUpload())
	assert.Equal(t, uint32(1), spriteInst.Texture())

	require.NoError(t, rt.Stop())
	assert.Equal(t, []uint32{1}, uploader.released)
}

func TestStopWhileLoadingAbandonsTasks(t *testing.T) {
	project, sceneDef, _ := lightScene(t)
	jobs, err := tasks.NewJobSystem(1, 8)
	require.NoError(t, err)

	// occupy the only worker so the light load stays queued
	release := make(chan struct{})
	blocker := tasks.NewTask("blocker", func() bool {
		<-release
		return true
	})
	require.NoError(t, jobs.Submit(blocker))

	rt := NewSceneRuntime(project, Options{Jobs: jobs})
	require.NoError(t, rt.StartSceneRuntimeFromDefinition(sceneDef))
	assert.Equal(t, SceneRuntimeStateLoading, rt.State())
	assert.Equal(t, 1, rt.PendingLoads())
	assert.False(t, rt.PollLoading())

	require.NoError(t, rt.Stop())
	close(release)
	require.NoError(t, jobs.Shutdown())

	assert.Equal(t, SceneRuntimeStateStopped, rt.State())
	assert.False(t, rt.PollLoading())
	assert.Equal(t, 0, rt.CountInstances())
}
