package middlewares

import (
	"net/http"
	"time"
)

// timedResponseWriter stamps X-Response-Time when headers go out and keeps
// the status code for later middlewares.
type timedResponseWriter struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
}

func (t *timedResponseWriter) WriteHeader(statusCode int) {
	if !t.wroteHeader {
		elapsed := time.Since(t.start)
		t.ResponseWriter.Header().Set("X-Response-Time", elapsed.String())
		t.status = statusCode
		t.wroteHeader = true
	}
	t.ResponseWriter.WriteHeader(statusCode)
}

func (t *timedResponseWriter) Write(b []byte) (int, error) {
	if !t.wroteHeader {
		t.WriteHeader(http.StatusOK)
	}
	return t.ResponseWriter.Write(b)
}

func (t *timedResponseWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}

func (t *timedResponseWriter) statusCode() int {
	if t.status == 0 {
		return http.StatusOK
	}
	return t.status
}

func newTimedResponseWriter(w http.ResponseWriter) *timedResponseWriter {
	if tw, ok := w.(*timedResponseWriter); ok {
		return tw
	}
	return &timedResponseWriter{ResponseWriter: w, start: time.Now()}
}

func ResponseTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(newTimedResponseWriter(w), r)
	})
}
