package errors

import (
	"fmt"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// HTTPErrorAdapter maps classified errors to dev-server responses.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter creates a new HTTP error adapter. A nil logger uses slog.Default.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// StatusCodeFor determines the HTTP status code for err. Unknown errors map to 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	c, ok := AsClassified(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch c.Category() {
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryRuntime:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a plain text response. A 404 names the requested URL so a
// broken link is easy to spot in the preview; other bodies carry only the
// status text and the details go to the log.
func (a *HTTPErrorAdapter) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := a.StatusCodeFor(err)
	if err == nil {
		w.WriteHeader(status)
		return
	}

	body := http.StatusText(status)
	if status == http.StatusNotFound {
		body = fmt.Sprintf("%s: %s", body, r.URL.Path)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = fmt.Fprintln(w, body)

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelDebug
	}
	a.logger.LogAttrs(r.Context(), level, "HTTP error response",
		logfields.URL(r.URL.Path),
		logfields.Status(status),
		logfields.Error(err))
}
