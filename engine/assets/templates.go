package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
)

// DefaultTemplatesDirectory is looked up relative to the working directory.
const DefaultTemplatesDirectory = "templates"

// TemplatesModel reads starter content for new assets from flat files laid
// out as <root>/<type>/<name><format>.
type TemplatesModel struct {
	root string
}

func NewTemplatesModel(root string) *TemplatesModel {
	if root == "" {
		root = DefaultTemplatesDirectory
	}
	return &TemplatesModel{root: root}
}

func (tm *TemplatesModel) Root() string { return tm.root }

// TemplateNames lists the template names available for t, sorted. Files that
// only differ by extension share one name.
func (tm *TemplatesModel) TemplateNames(t definition.AssetType) []string {
	entries, err := os.ReadDir(filepath.Join(tm.root, t.String()))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			core.LogWarn("could not list %s templates: %s", t, err)
		}
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns the text of template name for t. format is the file
// extension, with or without the leading dot.
func (tm *TemplatesModel) Template(t definition.AssetType, name, format string) (string, error) {
	if format != "" && !strings.HasPrefix(format, ".") {
		format = "." + format
	}
	path := filepath.Join(tm.root, t.String(), name+format)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s template %q: %w", t, name+format, core.ErrTemplateNotFound)
		}
		return "", err
	}
	core.LogDebug("read template %s", path)
	return string(data), nil
}
