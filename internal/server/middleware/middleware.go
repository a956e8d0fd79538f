// Package middleware wraps the dev server handler with request logging, panic
// recovery and cache suppression.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/pressbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pressbuilder/internal/logfields"
)

// Chain returns a wrapper applying, outermost first: logging, panic recovery
// and no-store caching. Nil arguments fall back to slog.Default and a default
// adapter.
func Chain(logger *slog.Logger, adapter *ferrors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if adapter == nil {
		adapter = ferrors.NewHTTPErrorAdapter(logger)
	}
	return func(next http.Handler) http.Handler {
		return logging(logger, recovery(logger, adapter, noStore(next)))
	}
}

// logging records each request at debug level; the reload poll alone produces
// one request per second per open tab.
func logging(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("HTTP request",
			logfields.Method(r.Method),
			logfields.URL(r.URL.Path),
			logfields.Status(rec.status),
			slog.Int64("bytes", rec.bytes),
			logfields.Since(start),
			logfields.UserAgent(r.UserAgent()),
			logfields.RemoteAddr(r.RemoteAddr))
	})
}

// recovery turns a handler panic into a 500 written through adapter.
func recovery(logger *slog.Logger, adapter *ferrors.HTTPErrorAdapter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			logger.Error("HTTP handler panic",
				slog.Any("panic", v),
				logfields.Method(r.Method),
				logfields.URL(r.URL.Path))
			adapter.WriteError(w, r, ferrors.InternalError("handler panicked").
				WithCause(fmt.Errorf("panic: %v", v)).
				WithContext("url", r.URL.Path).
				Build())
		}()
		next.ServeHTTP(w, r)
	})
}

// noStore stops browsers from serving a stale page or stylesheet after a
// rebuild-triggered reload.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// recorder captures the status and body size for the request log.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rw *recorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += int64(n)
	return n, err
}
