package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/instances"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/scene"
	"github.com/spaghettifunk/dream/engine/systems"
	"github.com/spaghettifunk/dream/engine/tasks"
)

func testProject(t *testing.T) *definition.ProjectDefinition {
	t.Helper()
	project := definition.NewProjectDefinition("runtime")
	light := project.CreateNewAssetDefinition(definition.AssetTypeLight)
	light.Light().Ambient = math.NewColourRGB(0.1, 0.2, 0.3)
	light.Light().Intensity = 1

	startup := project.CreateNewSceneDefinition()
	startup.SetName("startup")
	lamp := startup.RootSceneObjectDefinition().CreateNewChildSceneObjectDefinition()
	lamp.SetName("lamp")
	lamp.AddAssetDefinitionUuidToLoadQueue(light.UUID())

	other := project.CreateNewSceneDefinition()
	other.SetName("other")
	return project
}

func testOptions(window systems.WindowComponent) Options {
	cfg := systems.DefaultSystemManagerConfig()
	cfg.Time = systems.TimeSystemConfig{FixedStep: 1.0 / 60}
	return Options{Systems: cfg, Window: window}
}

func TestNewRequiresDefinition(t *testing.T) {
	_, err := New(nil, t.TempDir(), Options{})
	assert.ErrorIs(t, err, core.ErrProjectDefinitionMissing)

	cfg := systems.DefaultSystemManagerConfig()
	cfg.Graphics.MaxTextureCount = 0
	_, err = New(testProject(t), t.TempDir(), Options{Systems: cfg})
	assert.Error(t, err)
}

func TestUpdateAllRunsUntilWindowCloses(t *testing.T) {
	window := systems.NewHeadlessWindow(320, 200, 3)
	pr, err := New(testProject(t), t.TempDir(), testOptions(window))
	require.NoError(t, err)
	require.NoError(t, pr.StartStartupScene())

	rt := pr.ActiveSceneRuntime()
	require.NotNil(t, rt)
	assert.Equal(t, "startup", pr.ActiveSceneDefinition().Name())
	assert.Equal(t, scene.SceneRuntimeStateActive, rt.State())

	assert.True(t, pr.UpdateAll())
	assert.True(t, pr.UpdateAll())
	assert.False(t, pr.UpdateAll())
	assert.Equal(t, uint64(3), pr.Frames())
	assert.Equal(t, 3, window.Frames())
	assert.InDelta(t, 3.0/60, pr.Systems().Time().Elapsed(), 1e-9)

	lamp := rt.SceneObjectRuntimeByName("lamp")
	require.NotNil(t, lamp)
	light := lamp.InstanceByType(definition.AssetTypeLight).(*instances.LightInstance)
	assert.True(t, light.Color().Compare(math.NewVec3(0.1, 0.2, 0.3), 1e-6))
	require.Len(t, pr.Systems().Graphics().Lights(), 1)

	require.NoError(t, pr.Shutdown())
	assert.Equal(t, scene.SceneRuntimeStateStopped, rt.State())
	assert.Equal(t, 0, rt.CountInstances())
}

func TestSceneSwitching(t *testing.T) {
	project := testProject(t)
	pr, err := New(project, t.TempDir(), testOptions(nil))
	require.NoError(t, err)
	defer pr.Shutdown()

	assert.ErrorIs(t, pr.ConstructActiveSceneRuntime("missing"), core.ErrSceneDefinitionNotFound)
	assert.ErrorIs(t, pr.StopActiveSceneRuntime(), core.ErrSceneRuntimeNotActive)
	assert.ErrorIs(t, pr.ResetActiveSceneRuntime(), core.ErrSceneRuntimeNotActive)
	assert.ErrorIs(t, pr.CaptureCamera(), core.ErrSceneRuntimeNotActive)

	require.NoError(t, pr.StartStartupScene())
	first := pr.ActiveSceneRuntime()

	other := project.SceneDefinitionByName("other")
	require.NoError(t, pr.ConstructActiveSceneRuntime(other.UUID()))
	assert.Equal(t, scene.SceneRuntimeStateStopped, first.State())
	assert.Equal(t, other.UUID(), pr.ActiveSceneRuntime().DefinitionUUID())

	second := pr.ActiveSceneRuntime()
	require.NoError(t, pr.ResetActiveSceneRuntime())
	assert.NotSame(t, second, pr.ActiveSceneRuntime())
	assert.Equal(t, scene.SceneRuntimeStateStopped, second.State())
	assert.Equal(t, other.UUID(), pr.ActiveSceneDefinition().UUID())

	require.NoError(t, pr.StopActiveSceneRuntime())
	assert.Nil(t, pr.ActiveSceneRuntime())
	assert.True(t, pr.UpdateAll())
}

func TestCaptureCamera(t *testing.T) {
	project := testProject(t)
	pr, err := New(project, t.TempDir(), testOptions(nil))
	require.NoError(t, err)
	defer pr.Shutdown()
	require.NoError(t, pr.StartStartupScene())

	pr.ActiveSceneRuntime().Camera().MoveRight(3)
	pr.UpdateAll()
	assert.Equal(t, float32(0), pr.ActiveSceneDefinition().Camera().Translation.X)

	require.NoError(t, pr.CaptureCamera())
	assert.InDelta(t, 3, pr.ActiveSceneDefinition().Camera().Translation.X, 1e-5)
}

func TestUpdateAllCollectsGarbage(t *testing.T) {
	pr, err := New(testProject(t), t.TempDir(), testOptions(nil))
	require.NoError(t, err)
	defer pr.Shutdown()
	require.NoError(t, pr.StartStartupScene())

	rt := pr.ActiveSceneRuntime()
	rt.SceneObjectRuntimeByName("lamp").SetDeleteFlag(true)
	pr.UpdateAll()
	assert.Nil(t, rt.SceneObjectRuntimeByName("lamp"))
	assert.Equal(t, 1, rt.CountRuntimes())
}

func TestLoadingOnJobSystem(t *testing.T) {
	jobs, err := tasks.NewJobSystem(2, 16)
	require.NoError(t, err)
	defer jobs.Shutdown()

	opts := testOptions(nil)
	opts.Jobs = jobs
	pr, err := New(testProject(t), t.TempDir(), opts)
	require.NoError(t, err)
	require.NoError(t, pr.StartStartupScene())

	rt := pr.ActiveSceneRuntime()
	require.Eventually(t, func() bool {
		pr.UpdateAll()
		return rt.State() == scene.SceneRuntimeStateActive
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, 1, rt.CountInstances())
	require.NoError(t, pr.Shutdown())
}

func TestShutdownIsFinal(t *testing.T) {
	window := systems.NewHeadlessWindow(320, 200, 0)
	pr, err := New(testProject(t), t.TempDir(), testOptions(window))
	require.NoError(t, err)
	require.NoError(t, pr.StartStartupScene())

	require.NoError(t, pr.Shutdown())
	require.NoError(t, pr.Shutdown())
	assert.True(t, window.ShouldClose())
	assert.False(t, pr.UpdateAll())
	assert.ErrorIs(t, pr.StartStartupScene(), core.ErrRuntimeShutdown)
}
