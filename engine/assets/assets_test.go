package assets

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func newProject(t *testing.T) (*ProjectDirectory, *definition.AssetDefinition) {
	t.Helper()
	project := definition.NewProjectDefinition("assets")
	sprite := project.CreateNewAssetDefinition(definition.AssetTypeSprite)
	pd := NewProjectDirectory(t.TempDir(), project)
	require.NoError(t, pd.CreateBaseDirectory())
	return pd, sprite
}

func TestProjectDirectoryLayout(t *testing.T) {
	pd, sprite := newProject(t)

	assert.Equal(t, filepath.Join(pd.Root(), "project.json"), pd.ProjectFilePath())
	assert.Equal(t, filepath.Join(pd.Root(), "assets", "sprite", sprite.UUID(), sprite.Format()), pd.AssetDataPath(sprite))
	for _, typ := range definition.AllAssetTypes() {
		assert.DirExists(t, pd.AssetTypeDirectory(typ))
	}

	require.NoError(t, pd.Save())
	assert.True(t, DirectoryContainsProject(pd.Root()))
	assert.False(t, DirectoryContainsProject(t.TempDir()))

	opened, err := OpenProjectDirectory(pd.Root())
	require.NoError(t, err)
	assert.NotNil(t, opened.Project().AssetDefinitionByUUID(sprite.UUID()))
}

func TestImportAndRemoveAssetData(t *testing.T) {
	pd, sprite := newProject(t)

	src := filepath.Join(t.TempDir(), "player.png")
	require.NoError(t, os.WriteFile(src, pngBytes(t), 0o644))
	require.NoError(t, pd.ImportAssetData(sprite, src))

	data, err := pd.ReadAssetData(sprite)
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), data)

	info, ok := pd.Lookup(filepath.ToSlash(sprite.AssetPath()))
	require.True(t, ok)
	assert.Equal(t, definition.AssetTypeSprite, info.Type)
	assert.Equal(t, sprite.UUID(), info.UUID)
	assert.Equal(t, "image/png", info.MIME)

	require.NoError(t, pd.RemoveAssetData(sprite))
	assert.NoDirExists(t, pd.AssetDirectory(sprite))
	assert.Empty(t, pd.EntriesFor(sprite.UUID()))
	// removing again is fine
	require.NoError(t, pd.RemoveAssetData(sprite))

	assert.Error(t, pd.ImportAssetData(sprite, filepath.Join(t.TempDir(), "missing.png")))
}

func TestCleanupUnusedAssetData(t *testing.T) {
	pd, sprite := newProject(t)
	require.NoError(t, pd.WriteAssetData(sprite, pngBytes(t)))

	orphan := filepath.Join(pd.AssetTypeDirectory(definition.AssetTypeAudio), "orphan")
	require.NoError(t, os.MkdirAll(orphan, 0o755))
	// the uuid exists but under the wrong type
	misplaced := filepath.Join(pd.AssetTypeDirectory(definition.AssetTypeModel), sprite.UUID())
	require.NoError(t, os.MkdirAll(misplaced, 0o755))

	removed, err := pd.CleanupUnusedAssetData()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{orphan, misplaced}, removed)
	assert.DirExists(t, pd.AssetDirectory(sprite))

	noProject := NewProjectDirectory(t.TempDir(), nil)
	_, err = noProject.CleanupUnusedAssetData()
	assert.ErrorIs(t, err, core.ErrProjectDefinitionMissing)
}

func TestRescanIgnoresStrayFiles(t *testing.T) {
	pd, sprite := newProject(t)
	require.NoError(t, pd.WriteAssetData(sprite, pngBytes(t)))
	require.NoError(t, os.WriteFile(filepath.Join(pd.AssetsPath(), "README"), []byte("hi"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(pd.AssetsPath(), "unknown", "x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pd.AssetsPath(), "unknown", "x", "data"), []byte("hi"), 0o644))

	require.NoError(t, pd.Rescan())
	entries := pd.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, sprite.UUID(), entries[0].UUID)
}

func TestWatchTracksChanges(t *testing.T) {
	pd, sprite := newProject(t)
	require.NoError(t, pd.CreateAssetDirectory(sprite))

	ctx, cancel := context.WithCancel(context.Background())
	events, err := pd.Watch(ctx)
	require.NoError(t, err)

	go func() {
		for range events {
		}
	}()

	path := pd.AssetDataPath(sprite)
	require.NoError(t, os.WriteFile(path, pngBytes(t), 0o644))
	require.Eventually(t, func() bool {
		_, ok := pd.Lookup(filepath.ToSlash(sprite.AssetPath()))
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, ok := pd.Lookup(filepath.ToSlash(sprite.AssetPath()))
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
}

func TestTemplates(t *testing.T) {
	root := t.TempDir()
	scripts := filepath.Join(root, "script")
	require.NoError(t, os.MkdirAll(filepath.Join(scripts, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "rotate.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "empty.go"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "empty.txt"), nil, 0o644))

	tm := NewTemplatesModel(root)
	assert.Equal(t, []string{"empty", "rotate"}, tm.TemplateNames(definition.AssetTypeScript))
	assert.Empty(t, tm.TemplateNames(definition.AssetTypeShader))

	text, err := tm.Template(definition.AssetTypeScript, "rotate", ".go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", text)

	text, err = tm.Template(definition.AssetTypeScript, "rotate", "go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", text)

	_, err = tm.Template(definition.AssetTypeScript, "missing", ".go")
	assert.ErrorIs(t, err, core.ErrTemplateNotFound)

	assert.Equal(t, DefaultTemplatesDirectory, NewTemplatesModel("").Root())
}
