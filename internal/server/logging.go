package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type responseTracker struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (t *responseTracker) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTracker) Write(b []byte) (int, error) {
	n, err := t.ResponseWriter.Write(b)
	t.bytes += n
	return n, err
}

func (t *responseTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}

// requestLogger logs API requests with status and response size. Health probes
// and video streaming are skipped; both fire constantly and say nothing.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" || strings.HasPrefix(r.URL.Path, "/videos/") {
			next.ServeHTTP(w, r)
			return
		}

		tracker := &responseTracker{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(tracker, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", tracker.status,
			"bytes", tracker.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}
