package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
)

/**
 * @brief The on disk layout of a project:
 *
 *   <root>/project.json
 *   <root>/assets/<type>/<uuid>/<format>
 *
 * ProjectDirectory owns the asset data files. The definitions they belong
 * to stay in the ProjectDefinition.
 */
type ProjectDirectory struct {
	*assetIndex
	root    string
	project *definition.ProjectDefinition
}

// NewProjectDirectory wraps root for project. Nothing is touched on disk.
func NewProjectDirectory(root string, project *definition.ProjectDefinition) *ProjectDirectory {
	return &ProjectDirectory{
		assetIndex: newAssetIndex(filepath.Join(root, definition.AssetsDirectoryName)),
		root:       root,
		project:    project,
	}
}

// OpenProjectDirectory loads the project document found in root and indexes
// its asset data.
func OpenProjectDirectory(root string) (*ProjectDirectory, error) {
	project, err := definition.LoadProjectDefinition(root)
	if err != nil {
		return nil, err
	}
	pd := NewProjectDirectory(root, project)
	if err := pd.Rescan(); err != nil {
		return nil, fmt.Errorf("could not index assets of %s: %w", root, err)
	}
	return pd, nil
}

// DirectoryContainsProject reports whether dir holds a project document.
func DirectoryContainsProject(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, definition.ProjectFileName))
	return err == nil && !fi.IsDir()
}

func (pd *ProjectDirectory) Root() string                           { return pd.root }
func (pd *ProjectDirectory) Project() *definition.ProjectDefinition { return pd.project }
func (pd *ProjectDirectory) AssetsPath() string                     { return pd.assetIndex.dir }

func (pd *ProjectDirectory) ProjectFilePath() string {
	return filepath.Join(pd.root, definition.ProjectFileName)
}

// CreateBaseDirectory creates the project root and one directory per asset type.
func (pd *ProjectDirectory) CreateBaseDirectory() error {
	for _, t := range definition.AllAssetTypes() {
		if err := os.MkdirAll(pd.AssetTypeDirectory(t), 0o755); err != nil {
			return fmt.Errorf("could not create %s directory: %w", t, err)
		}
	}
	return nil
}

func (pd *ProjectDirectory) AssetTypeDirectory(t definition.AssetType) string {
	return filepath.Join(pd.AssetsPath(), t.String())
}

// AssetDataPath is where the data file of def lives.
func (pd *ProjectDirectory) AssetDataPath(def *definition.AssetDefinition) string {
	return def.DataPath(pd.root)
}

func (pd *ProjectDirectory) AssetDirectory(def *definition.AssetDefinition) string {
	return def.AssetDirectory(pd.root)
}

func (pd *ProjectDirectory) CreateAssetDirectory(def *definition.AssetDefinition) error {
	if def == nil {
		return core.ErrAssetDefinitionNotFound
	}
	dir := pd.AssetDirectory(def)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create asset directory %s: %w", dir, err)
	}
	return nil
}

// ImportAssetData copies the file at src into the data location of def,
// replacing whatever was there.
func (pd *ProjectDirectory) ImportAssetData(def *definition.AssetDefinition, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open %s for import: %w", src, err)
	}
	defer in.Close()
	return pd.writeAssetData(def, in)
}

// WriteAssetData stores data as the data file of def.
func (pd *ProjectDirectory) WriteAssetData(def *definition.AssetDefinition, data []byte) error {
	return pd.writeAssetFile(def, def.Format(), data)
}

// WriteAssetFile stores an extra file next to the data file of def, shaders
// keep their stages this way.
func (pd *ProjectDirectory) WriteAssetFile(def *definition.AssetDefinition, name string, data []byte) error {
	return pd.writeAssetFile(def, name, data)
}

func (pd *ProjectDirectory) writeAssetFile(def *definition.AssetDefinition, name string, data []byte) error {
	if err := pd.CreateAssetDirectory(def); err != nil {
		return err
	}
	path := filepath.Join(pd.AssetDirectory(def), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write asset data %s: %w", path, err)
	}
	pd.handleFileEvent(path)
	return nil
}

func (pd *ProjectDirectory) writeAssetData(def *definition.AssetDefinition, r io.Reader) error {
	if err := pd.CreateAssetDirectory(def); err != nil {
		return err
	}
	path := pd.AssetDataPath(def)
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create asset data %s: %w", path, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("could not write asset data %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	pd.handleFileEvent(path)
	core.LogDebug("imported data for %s into %s", def.Name(), path)
	return nil
}

func (pd *ProjectDirectory) ReadAssetData(def *definition.AssetDefinition) ([]byte, error) {
	return os.ReadFile(pd.AssetDataPath(def))
}

// RemoveAssetData deletes the asset directory of def. A missing directory
// is not an error.
func (pd *ProjectDirectory) RemoveAssetData(def *definition.AssetDefinition) error {
	dir := pd.AssetDirectory(def)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("could not remove asset directory %s: %w", dir, err)
	}
	pd.removeAsset(dir)
	return nil
}

// CleanupUnusedAssetData removes every asset directory that no definition of
// the right type refers to and returns the removed paths.
func (pd *ProjectDirectory) CleanupUnusedAssetData() ([]string, error) {
	if pd.project == nil {
		return nil, core.ErrProjectDefinitionMissing
	}
	var removed []string
	for _, t := range definition.AllAssetTypes() {
		typeDir := pd.AssetTypeDirectory(t)
		entries, err := os.ReadDir(typeDir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			def := pd.project.AssetDefinitionByUUID(entry.Name())
			if def != nil && def.Type() == t {
				continue
			}
			dir := filepath.Join(typeDir, entry.Name())
			if err := os.RemoveAll(dir); err != nil {
				return removed, fmt.Errorf("could not remove %s: %w", dir, err)
			}
			pd.removeAsset(dir)
			removed = append(removed, dir)
		}
	}
	core.LogInfo("removed %d unused asset directories from %s", len(removed), pd.root)
	return removed, nil
}

// Save writes the project document.
func (pd *ProjectDirectory) Save() error {
	if pd.project == nil {
		return core.ErrProjectDefinitionMissing
	}
	return definition.SaveProjectDefinition(pd.root, pd.project)
}

// Watch keeps the asset index current until ctx is done.
func (pd *ProjectDirectory) Watch(ctx context.Context) (<-chan AssetEvent, error) {
	return pd.assetIndex.Watch(ctx)
}
