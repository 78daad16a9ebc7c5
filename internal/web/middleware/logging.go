// Package middleware provides HTTP middleware for the table browser.
package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/drilltable/internal/logging"
)

// Logger logs one line per request with the chi request ID attached.
//
// Log fields:
//   - method, path: the request line
//   - status: response status code
//   - duration_ms: time spent in the handler chain
//   - ip: client address after TrustedRealIP
//   - htmx: whether the request came from an hx-get link
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		level := logging.FromContext(r.Context()).Info
		if ww.status >= http.StatusInternalServerError {
			level = logging.FromContext(r.Context()).Warn
		}
		level("request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", ClientIP(r),
			"htmx", r.Header.Get("HX-Request") == "true",
		)
	})
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
