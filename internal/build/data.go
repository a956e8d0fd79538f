package build

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/observability"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
)

// loadData reads `_data/` into site.data. Each file becomes a key named after
// its base name; subdirectories become nested maps. JSON is parsed by the
// YAML decoder, which accepts it as a subset.
func (r *run) loadData() error {
	root := filepath.Join(r.source, scan.DataDir)
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" && ext != ".json" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read data file").
				WithPath(rel).Build()
		}
		var value any
		if err := yaml.Unmarshal(raw, &value); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryParse, "invalid data file").
				WithPath(filepath.ToSlash(filepath.Join(scan.DataDir, rel))).Fatal().Build()
		}

		keys := strings.Split(filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))), "/")
		setNested(r.site.Data, keys, value)
		observability.DebugContext(r.ctx, "Loaded data file", logfields.Path(rel))
		return nil
	})
}

func setNested(m map[string]any, keys []string, value any) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}
