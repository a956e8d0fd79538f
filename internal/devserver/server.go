package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pressbuilder/internal/build"
	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/metrics"
	"git.home.luguber.info/inful/pressbuilder/internal/server/middleware"
)

// Options configures a Server.
type Options struct {
	Source        string
	Destination   string // empty means <source>/_site
	Host          string
	Port          int
	IncludeDrafts bool
	QuietWindow   time.Duration

	// Metrics exposes Prometheus metrics at MetricsPath.
	Metrics bool

	// Builder defaults to build.New().
	Builder build.Service

	// OnReady is called with the base URL once the listener is bound.
	OnReady func(url string)
}

// Server builds the site, serves it and rebuilds on change.
type Server struct {
	opts     Options
	source   string
	dest     string
	builder  build.Service
	recorder metrics.Recorder
	registry *prometheus.Registry
	flag     *ReloadFlag
	status   *BuildStatus

	mu   sync.Mutex
	addr string
}

// New validates opts and returns a Server.
func New(opts Options) (*Server, error) {
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid source path").Build()
	}
	dest := opts.Destination
	if dest == "" {
		dest = filepath.Join(source, "_site")
	}
	if dest, err = filepath.Abs(dest); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid destination path").Build()
	}
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, ferrors.ValidationError("port out of range").WithContext("port", opts.Port).Build()
	}

	s := &Server{
		opts:     opts,
		source:   source,
		dest:     dest,
		recorder: metrics.NoopRecorder{},
		flag:     &ReloadFlag{},
		status:   &BuildStatus{},
	}
	if opts.Metrics {
		s.registry = prometheus.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.registry)
	}
	s.builder = opts.Builder
	if s.builder == nil {
		s.builder = build.New().WithRecorder(s.recorder)
	}
	return s, nil
}

// Addr returns the bound listen address once Run has started listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Status returns the shared build status.
func (s *Server) Status() *BuildStatus {
	return s.status
}

func (s *Server) rebuild(ctx context.Context) (*build.Result, error) {
	// Config is reloaded from disk on every build.
	return s.builder.Run(ctx, build.Request{
		Source:        s.source,
		Destination:   s.dest,
		IncludeDrafts: s.opts.IncludeDrafts,
	})
}

// Run performs the initial build and serves until ctx is canceled. A failed
// initial build is reported but does not stop the server.
func (s *Server) Run(ctx context.Context) error {
	res, err := s.rebuild(ctx)
	s.status.Record(res, err)
	if err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	watcher, err := NewWatcher(s.source, s.dest)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to start file watcher").Build()
	}
	loop := NewLoop(watcher.Events(), LoopOptions{
		QuietWindow: s.opts.QuietWindow,
		Rebuild:     s.rebuild,
		Flag:        s.flag,
		Status:      s.status,
		Recorder:    s.recorder,
	})

	hopts := HandlerOptions{
		Root:     s.dest,
		Flag:     s.flag,
		Status:   s.status,
		Loop:     loop,
		Recorder: s.recorder,
	}
	if s.registry != nil {
		hopts.Metrics = metrics.HTTPHandler(s.registry)
	}
	handler := middleware.Chain(slog.Default(), nil)(NewHandler(hopts))

	ln, err := net.Listen("tcp", net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port)))
	if err != nil {
		_ = watcher.Close()
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to listen").
			WithContext("host", s.opts.Host).
			WithContext("port", s.opts.Port).Build()
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	srv := &http.Server{Handler: handler, ReadTimeout: 30 * time.Second, WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		_ = watcher.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		_ = loop.Run(runCtx)
	}()

	url := fmt.Sprintf("http://%s/", s.addr)
	slog.Info("Preview server listening", logfields.Addr(s.addr), logfields.URL(url))
	if s.opts.OnReady != nil {
		s.opts.OnReady(url)
	}

	<-runCtx.Done()
	slog.Info("Shutting down preview server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	wg.Wait()

	select {
	case err := <-serveErr:
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "http server failed").Build()
	default:
		return nil
	}
}
