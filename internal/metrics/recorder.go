package metrics

import "time"

// BuildOutcome labels the final status of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds and the dev server.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	SetSiteItems(kind string, n int)
	IncRebuildTrigger(op string)
	IncReloadDelivered()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) SetSiteItems(string, int)                   {}
func (NoopRecorder) IncRebuildTrigger(string)                   {}
func (NoopRecorder) IncReloadDelivered()                        {}
