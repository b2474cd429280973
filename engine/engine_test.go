package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
	"github.com/spaghettifunk/dream/engine/systems"
)

func writeProject(t *testing.T, withScene bool) string {
	t.Helper()
	dir := t.TempDir()
	project := definition.NewProjectDefinition("engine")
	project.SetWindowSize(640, 480)
	light := project.CreateNewAssetDefinition(definition.AssetTypeLight)
	light.Light().Ambient = math.NewColourRGB(1, 1, 1)
	if withScene {
		sc := project.CreateNewSceneDefinition()
		sc.SetName("main")
		lamp := sc.RootSceneObjectDefinition().CreateNewChildSceneObjectDefinition()
		lamp.AddAssetDefinitionUuidToLoadQueue(light.UUID())
		project.SetStartupSceneUUID(sc.UUID())
	}
	require.NoError(t, definition.SaveProjectDefinition(dir, project))
	return dir
}

func headlessConfig(projectDir string, frames int) *ApplicationConfig {
	cfg := DefaultConfig()
	cfg.ProjectDir = projectDir
	cfg.Headless = true
	cfg.MaxFrames = frames
	cfg.TargetFrameRate = 0
	cfg.Workers = 2
	cfg.LogLevel = "error"
	return cfg
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "running", EngineStageRunning.String())
	assert.Equal(t, "Stage(42)", Stage(42).String())
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, core.ErrNoWorkers)

	e, err := New(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	assert.Error(t, e.Initialize(), "no project directory")
	assert.Equal(t, EngineStageUninitialized, e.Stage())
}

func TestEngineRunsHeadless(t *testing.T) {
	e, err := New(headlessConfig(writeProject(t, true), 5), nil)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())

	w, h := e.GetFramebufferSize()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	require.NotNil(t, e.Runtime().ActiveSceneRuntime())
	assert.Equal(t, "main", e.Runtime().ActiveSceneDefinition().Name())

	assert.Error(t, e.Initialize(), "already initialized")

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(5), e.Runtime().Frames())

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	require.NoError(t, e.Shutdown())
}

func TestEngineWithoutScenes(t *testing.T) {
	e, err := New(headlessConfig(writeProject(t, false), 2), nil)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Nil(t, e.Runtime().ActiveSceneRuntime())
	require.NoError(t, e.Run(context.Background()))
	require.NoError(t, e.Shutdown())
}

func TestEngineStopsOnContext(t *testing.T) {
	cfg := headlessConfig(writeProject(t, true), 0)
	cfg.TargetFrameRate = 120
	e, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.Greater(t, e.Runtime().Frames(), uint64(0))
	require.NoError(t, e.Shutdown())
}

func TestEngineQuitsOnEscape(t *testing.T) {
	window := systems.NewHeadlessWindow(320, 200, 0)
	window.SetKeyPressed(core.KEY_ESCAPE, true)

	e, err := New(headlessConfig(writeProject(t, true), 0), window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.NoError(t, ctx.Err(), "the quit event should stop the loop")
	require.NoError(t, e.Shutdown())
}

func TestInitializeFailsOnMissingProject(t *testing.T) {
	e, err := New(headlessConfig(filepath.Join(t.TempDir(), "nowhere"), 1), nil)
	require.NoError(t, err)
	assert.Error(t, e.Initialize())
	assert.Equal(t, EngineStageUninitialized, e.Stage())
}

func TestConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"dream.toml", "dream.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			cfg := DefaultConfig()
			cfg.Name = "roundtrip"
			cfg.Workers = 8
			cfg.Headless = true
			require.NoError(t, SaveConfig(path, cfg))

			loaded, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	partial := filepath.Join(dir, "partial.toml")
	require.NoError(t, os.WriteFile(partial, []byte("workers = 2\nproject_dir = \"~/game\"\n"), 0o644))
	cfg, err = LoadConfig(partial)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "~/game", cfg.ProjectDir)
	assert.Equal(t, 60, cfg.TargetFrameRate)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("workers: [1, 2"), 0o644))
	_, err = LoadConfig(broken)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "config.ini"))
	assert.Error(t, err)
}
