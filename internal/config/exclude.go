package config

import (
	"path/filepath"
	"strings"
)

// IsExcluded reports whether a source-relative path is excluded from the
// build. Patterns match as substrings; a matching include pattern wins over
// any exclude pattern.
func (c *Config) IsExcluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	if c.IsIncluded(rel) {
		return false
	}
	for _, pattern := range c.Exclude {
		if pattern != "" && strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}

// IsIncluded reports whether rel matches an include pattern.
func (c *Config) IsIncluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Include {
		if pattern != "" && strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}
