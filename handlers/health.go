package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Glitch-Aswin/DevArticles/analytics"
	"github.com/Glitch-Aswin/DevArticles/models"
)

// Pinger is satisfied by the view store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service and its optional database mirror
// are usable.
type HealthHandler struct {
	aggregator *analytics.ViewAggregator
	db         Pinger
}

// NewHealthHandler builds a HealthHandler; db may be nil when persistence is
// disabled.
func NewHealthHandler(aggregator *analytics.ViewAggregator, db Pinger) *HealthHandler {
	return &HealthHandler{aggregator: aggregator, db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
				Status:   "unhealthy",
				Message:  "Database connectivity failed",
				Articles: h.aggregator.Len(),
				Error:    err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:   "healthy",
		Message:  "Analytics service is up and running",
		Articles: h.aggregator.Len(),
	})
}
