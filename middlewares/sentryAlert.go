package middlewares

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
)

// SentryScopeMiddleware tags the request's Sentry hub with the matched route
// and article id so captured errors can be grouped.
func SentryScopeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("route", routeTemplate(r))
				if id := r.URL.Query().Get("article_id"); id != "" {
					scope.SetTag("article_id", id)
				}
			})
		}
		next.ServeHTTP(w, r)
	})
}

// CaptureError reports err to the request's Sentry hub, or the global hub
// when the request carries none, and writes it to the error log.
func CaptureError(r *http.Request, err error) {
	if err == nil {
		return
	}
	ErrorLogger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
