package devserver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/pressbuilder/internal/build"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/metrics"
)

// DefaultQuietWindow is how long the loop waits without new events before
// rebuilding.
const DefaultQuietWindow = 300 * time.Millisecond

// State is a rebuild loop state.
type State int

const (
	StateIdle State = iota
	StatePendingChange
	StateDebouncing
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePendingChange:
		return "pending_change"
	case StateDebouncing:
		return "debouncing"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}

// RebuildFunc performs one full build.
type RebuildFunc func(ctx context.Context) (*build.Result, error)

// BuildStatus tracks the outcome of the most recent build.
type BuildStatus struct {
	mu           sync.RWMutex
	last         *build.Result
	lastErr      error
	hasGoodBuild bool
	rebuilds     int
}

// Record stores the outcome of a build.
func (s *BuildStatus) Record(res *build.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res != nil {
		s.last = res
	}
	s.lastErr = err
	if err == nil {
		s.hasGoodBuild = true
	}
}

// Snapshot returns the last result, the last error and whether any build
// has succeeded.
func (s *BuildStatus) Snapshot() (last *build.Result, err error, hasGoodBuild bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.lastErr, s.hasGoodBuild
}

// Rebuilds returns the number of rebuilds run by the loop.
func (s *BuildStatus) Rebuilds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rebuilds
}

func (s *BuildStatus) countRebuild() {
	s.mu.Lock()
	s.rebuilds++
	s.mu.Unlock()
}

// LoopOptions configures a Loop.
type LoopOptions struct {
	QuietWindow time.Duration
	Rebuild     RebuildFunc
	Flag        *ReloadFlag
	Status      *BuildStatus
	Recorder    metrics.Recorder
}

// Loop is the debounce state machine. Run is its only goroutine; a rebuild
// blocks it, so rebuilds never overlap and events arriving meanwhile are
// coalesced into the next quiet window.
type Loop struct {
	events <-chan Event
	opts   LoopOptions

	mu    sync.RWMutex
	state State
}

// NewLoop returns a loop consuming events.
func NewLoop(events <-chan Event, opts LoopOptions) *Loop {
	if opts.QuietWindow <= 0 {
		opts.QuietWindow = DefaultQuietWindow
	}
	if opts.Flag == nil {
		opts.Flag = &ReloadFlag{}
	}
	if opts.Status == nil {
		opts.Status = &BuildStatus{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Loop{events: events, opts: opts}
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	prev := l.state
	l.state = s
	l.mu.Unlock()
	if prev != s {
		slog.Debug("Rebuild loop transition", slog.String("from", prev.String()), logfields.State(s.String()))
	}
}

// Run consumes events until ctx is done or the event channel is closed.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	var quietC <-chan time.Time

	resetTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(l.opts.QuietWindow)
		quietC = timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-l.events:
			if !ok {
				return nil
			}
			l.opts.Recorder.IncRebuildTrigger(ev.Op.String())
			if l.State() == StateIdle {
				l.setState(StatePendingChange)
			}
			l.setState(StateDebouncing)
			resetTimer()

		case <-quietC:
			quietC = nil
			l.opts.Flag.Set()
			l.setState(StateRebuilding)
			l.rebuild(ctx)
			l.setState(StateIdle)
		}
	}
}

// rebuild runs one build. Failures are logged and recorded; the previous
// output stays in place.
func (l *Loop) rebuild(ctx context.Context) {
	l.opts.Status.countRebuild()
	if l.opts.Rebuild == nil {
		return
	}
	slog.Info("Change detected; rebuilding site")
	res, err := l.opts.Rebuild(ctx)
	l.opts.Status.Record(res, err)
	if err != nil {
		slog.Warn("Rebuild failed; serving previous output", logfields.Error(err))
	}
}
