package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pressbuilder/internal/config"
)

// Service runs site builds.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains the inputs of one build.
type Request struct {
	// Source is the site root.
	Source string

	// Destination is the output directory. Empty means `<source>/_site`.
	Destination string

	// IncludeDrafts adds `_drafts/` to the posts.
	IncludeDrafts bool

	// Config overrides loading `<source>/_config.yml`. Leave nil to load it
	// fresh, which is what rebuilds rely on to pick up config edits.
	Config *config.Config
}

// Status represents the outcome of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Result describes a finished build.
type Result struct {
	BuildID     string
	Status      Status
	Destination string
	Posts       int
	Pages       int
	StaticFiles int
	Written     int
	StartTime   time.Time
	Duration    time.Duration
}
