package doctor

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
	"git.home.luguber.info/inful/pressbuilder/internal/layout"
	"git.home.luguber.info/inful/pressbuilder/internal/scan"
)

// ConfigFileRule requires a readable, parsable _config.yml.
type ConfigFileRule struct{}

func (r ConfigFileRule) Name() string { return "config_file" }

func (r ConfigFileRule) Run(_ context.Context, dctx Context) []Finding {
	data, err := os.ReadFile(filepath.Join(dctx.Source, config.FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return []Finding{Critical("missing " + config.FileName)}
		}
		return []Finding{Critical("cannot read " + config.FileName + ": " + err.Error())}
	}
	if _, err := config.Parse(data); err != nil {
		return []Finding{Critical(config.FileName + " does not parse: " + err.Error())}
	}
	return []Finding{OK("found " + config.FileName)}
}

// LayoutsDirRule wants a _layouts directory holding the default layout.
type LayoutsDirRule struct{}

func (r LayoutsDirRule) Name() string { return "layouts_dir" }

func (r LayoutsDirRule) Run(_ context.Context, dctx Context) []Finding {
	dir := filepath.Join(dctx.Source, scan.LayoutsDir)
	if !isDir(dir) {
		return []Finding{Warning("missing " + scan.LayoutsDir + " directory")}
	}
	out := []Finding{OK("found " + scan.LayoutsDir + " directory")}
	if !isFile(filepath.Join(dir, layout.DefaultName+".html")) {
		out = append(out, Warning("no "+layout.DefaultName+".html layout found"))
	}
	return out
}

// PostsDirRule wants a _posts directory.
type PostsDirRule struct{}

func (r PostsDirRule) Name() string { return "posts_dir" }

func (r PostsDirRule) Run(_ context.Context, dctx Context) []Finding {
	if !isDir(filepath.Join(dctx.Source, scan.PostsDir)) {
		return []Finding{Warning("missing " + scan.PostsDir + " directory")}
	}
	return []Finding{OK("found " + scan.PostsDir + " directory")}
}

// indexFiles are the names accepted as the site home page.
var indexFiles = []string{"index.md", "index.markdown", "index.html", "index.htm"}

// IndexFileRule requires a home page at the source root.
type IndexFileRule struct{}

func (r IndexFileRule) Name() string { return "index_file" }

func (r IndexFileRule) Run(_ context.Context, dctx Context) []Finding {
	for _, name := range indexFiles {
		if isFile(filepath.Join(dctx.Source, name)) {
			return []Finding{OK("found " + name)}
		}
	}
	return []Finding{Critical("no index file found (index.md, index.html, ...)")}
}

// AssetsDirRule wants an assets directory.
type AssetsDirRule struct{}

func (r AssetsDirRule) Name() string { return "assets_dir" }

func (r AssetsDirRule) Run(_ context.Context, dctx Context) []Finding {
	if !isDir(filepath.Join(dctx.Source, scan.AssetsDir)) {
		return []Finding{Warning("no " + scan.AssetsDir + " directory found")}
	}
	return []Finding{OK("found " + scan.AssetsDir + " directory")}
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}
