// Package responses defines JSON response types used by the dev server.
package responses

import "time"

// BuildStatusResponse represents the dev server's `/__status__` response.
type BuildStatusResponse struct {
	Status       string            `json:"status"`
	HasGoodBuild bool              `json:"has_good_build"`
	Error        string            `json:"error,omitempty"`
	LastBuild    *BuildSummary     `json:"last_build,omitempty"`
	Watcher      WatcherStatusInfo `json:"watcher"`
	Timestamp    time.Time         `json:"timestamp"`
}

// BuildSummary summarizes the most recent build attempt.
type BuildSummary struct {
	BuildID     string    `json:"build_id"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	DurationMS  int64     `json:"duration_ms"`
	Posts       int       `json:"posts"`
	Pages       int       `json:"pages"`
	StaticFiles int       `json:"static_files"`
	Written     int       `json:"written"`
}

// WatcherStatusInfo reports the state of the rebuild loop.
type WatcherStatusInfo struct {
	State    string `json:"state"`
	Rebuilds int    `json:"rebuilds"`
}
