// Package config loads the site-wide settings from `_config.yml`.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// FileName is the configuration file looked up in the source root.
const FileName = "_config.yml"

// Config holds the site-wide settings for one build. It is read once per build
// and never mutated by the pipeline.
type Config struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	URL          string   `yaml:"url"`
	BaseURL      string   `yaml:"baseurl"`
	Markdown     string   `yaml:"markdown"`
	Permalink    string   `yaml:"permalink"`
	Paginate     int      `yaml:"paginate"`
	PaginatePath string   `yaml:"paginate_path"`
	Exclude      []string `yaml:"exclude"`
	Include      []string `yaml:"include"`
	Plugins      []string `yaml:"plugins"`

	// Custom keeps every key not listed above for template access.
	Custom map[string]any `yaml:",inline"`
}

// Load reads `<source>/_config.yml`.
//
// `<source>/.env` is applied to the process environment first and `${VAR}`
// references in the file are expanded. A missing file yields defaults and a
// warning; a file that exists but cannot be read or parsed is a config error.
func Load(source string) (*Config, error) {
	if err := loadEnvFile(source); err != nil {
		slog.Warn("Ignoring unreadable .env file", logfields.Path(filepath.Join(source, ".env")), logfields.Error(err))
	}

	path := filepath.Join(source, FileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("No configuration file found, using defaults", logfields.Path(path))
		cfg := Default()
		return &cfg, nil
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			Fatal().
			WithPath(path).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config file").
			Fatal().
			WithPath(path).
			Build()
	}
	return cfg, nil
}

// Parse decodes configuration bytes on top of the defaults and normalizes the
// result. `${NAME}` references are expanded before decoding.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(expandEnv(data), &cfg); err != nil {
		return nil, err
	}
	if cfg.Custom == nil {
		cfg.Custom = map[string]any{}
	}

	res := Normalize(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("Config normalized", slog.String("detail", w))
	}
	return &cfg, nil
}

// Vars returns the configuration as the `site` template variable. Known keys
// take precedence over custom keys of the same name.
func (c *Config) Vars() map[string]any {
	vars := make(map[string]any, len(c.Custom)+11)
	for k, v := range c.Custom {
		vars[k] = v
	}
	vars["title"] = c.Title
	vars["description"] = c.Description
	vars["url"] = c.URL
	vars["baseurl"] = c.BaseURL
	vars["markdown"] = c.Markdown
	vars["permalink"] = c.Permalink
	vars["paginate"] = c.Paginate
	vars["paginate_path"] = c.PaginatePath
	vars["exclude"] = c.Exclude
	vars["include"] = c.Include
	vars["plugins"] = c.Plugins
	return vars
}

// HasPlugin reports whether name is listed under plugins. Entries may carry a
// gem-style prefix, so "jekyll-paginate" matches "paginate".
func (c *Config) HasPlugin(name string) bool {
	for _, p := range c.Plugins {
		if p == name || p == "jekyll-"+name {
			return true
		}
	}
	return false
}
