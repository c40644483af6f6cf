package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Glitch-Aswin/DevArticles/metrics"
)

// MetricsMiddleware counts requests and observes their latency per route
// template.
func MetricsMiddleware(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			tw := newTimedResponseWriter(w)
			next.ServeHTTP(tw, r)

			route := routeTemplate(r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(tw.statusCode())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
