package devserver

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
	"git.home.luguber.info/inful/pressbuilder/internal/metrics"
	"git.home.luguber.info/inful/pressbuilder/internal/server/responses"
)

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Root is the built site directory.
	Root     string
	Flag     *ReloadFlag
	Status   *BuildStatus
	Loop     *Loop
	Recorder metrics.Recorder
	// Metrics, when set, is served at MetricsPath.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Handler serves the dev server's HTTP surface.
type Handler struct {
	root     string
	flag     *ReloadFlag
	status   *BuildStatus
	loop     *Loop
	recorder metrics.Recorder
	errs     *ferrors.HTTPErrorAdapter
	mux      *http.ServeMux
}

// NewHandler builds the dev server routes.
func NewHandler(opts HandlerOptions) *Handler {
	h := &Handler{
		root:     opts.Root,
		flag:     opts.Flag,
		status:   opts.Status,
		loop:     opts.Loop,
		recorder: opts.Recorder,
		errs:     ferrors.NewHTTPErrorAdapter(opts.Logger),
		mux:      http.NewServeMux(),
	}
	if h.flag == nil {
		h.flag = &ReloadFlag{}
	}
	if h.status == nil {
		h.status = &BuildStatus{}
	}
	if h.recorder == nil {
		h.recorder = metrics.NoopRecorder{}
	}

	h.mux.HandleFunc("GET "+ReloadPath, h.handleReload)
	h.mux.HandleFunc("GET "+StatusPath, h.handleStatus)
	if opts.Metrics != nil {
		h.mux.Handle("GET "+MetricsPath, opts.Metrics)
	}
	h.mux.HandleFunc("GET /", h.handleFile)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleReload(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if h.flag.TakeAndClear() {
		h.recorder.IncReloadDelivered()
		_, _ = w.Write([]byte("reload"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	last, lastErr, good := h.status.Snapshot()
	resp := responses.BuildStatusResponse{
		Status:       "ok",
		HasGoodBuild: good,
		Watcher:      responses.WatcherStatusInfo{State: StateIdle.String(), Rebuilds: h.status.Rebuilds()},
		Timestamp:    time.Now().UTC(),
	}
	if h.loop != nil {
		resp.Watcher.State = h.loop.State().String()
	}
	if lastErr != nil {
		resp.Status = "error"
		resp.Error = lastErr.Error()
	}
	if last != nil {
		resp.LastBuild = &responses.BuildSummary{
			BuildID:     last.BuildID,
			Status:      string(last.Status),
			StartTime:   last.StartTime,
			DurationMS:  last.Duration.Milliseconds(),
			Posts:       last.Posts,
			Pages:       last.Pages,
			StaticFiles: last.StaticFiles,
			Written:     last.Written,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Debug("Status encode failed", logfields.Path(r.URL.Path), logfields.Error(err))
	}
}

// handleFile serves the destination tree. Directories map to their
// index.html; HTML gets the reload script.
func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	target := filepath.Join(h.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		target = filepath.Join(target, "index.html")
		info, err = os.Stat(target)
	}
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		h.errs.WriteError(w, r, ferrors.NotFoundError("file not found").WithPath(clean).Build())
		return
	}
	if err != nil {
		h.errs.WriteError(w, r, ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat failed").Build())
		return
	}

	body, err := os.ReadFile(target)
	if err != nil {
		h.errs.WriteError(w, r, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read failed").
			WithPath(clean).Build())
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(target))
	if ctype == "" {
		ctype = http.DetectContentType(body)
	}
	if strings.HasPrefix(ctype, "text/html") {
		body = []byte(InjectReloadScript(string(body)))
	}

	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}
