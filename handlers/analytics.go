package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Glitch-Aswin/DevArticles/analytics"
	"github.com/Glitch-Aswin/DevArticles/cache"
	"github.com/Glitch-Aswin/DevArticles/metrics"
	"github.com/Glitch-Aswin/DevArticles/middlewares"
	"github.com/Glitch-Aswin/DevArticles/models"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTopLimit = 10
	MaxTopLimit     = 100
)

// ViewListener is told about every view recorded over HTTP, after the
// aggregator has applied it.
type ViewListener func(articleID string, at time.Time)

// Options configures an AnalyticsHandler. Zero values disable the optional
// collaborators.
type Options struct {
	Cache        cache.TopArticlesCache
	Metrics      *metrics.Metrics
	Listeners    []ViewListener
	DefaultLimit int
	MaxLimit     int
	// Instance scopes cache keys to this process. A random id is used when
	// empty.
	Instance string
}

// AnalyticsHandler serves the /analytics routes from a ViewAggregator.
type AnalyticsHandler struct {
	aggregator   *analytics.ViewAggregator
	cache        cache.TopArticlesCache
	metrics      *metrics.Metrics
	listeners    []ViewListener
	defaultLimit int
	maxLimit     int
	instance     string
	group        singleflight.Group
}

func NewAnalyticsHandler(aggregator *analytics.ViewAggregator, opts Options) *AnalyticsHandler {
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = DefaultTopLimit
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = max(MaxTopLimit, opts.DefaultLimit)
	}
	if opts.Instance == "" {
		opts.Instance = uuid.NewString()
	}
	return &AnalyticsHandler{
		aggregator:   aggregator,
		cache:        opts.Cache,
		metrics:      opts.Metrics,
		listeners:    opts.Listeners,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
		instance:     opts.Instance,
	}
}

// GetViews handles GET /analytics/views?article_id=...
func (h *AnalyticsHandler) GetViews(w http.ResponseWriter, r *http.Request) {
	articleID := r.URL.Query().Get("article_id")
	if articleID == "" {
		writeError(w, http.StatusBadRequest, "article_id is required")
		return
	}

	writeJSON(w, http.StatusOK, models.ArticleViews{
		ArticleID: articleID,
		Views:     h.aggregator.GetViews(articleID),
	})
}

// RecordView handles POST /analytics/views. The article id comes from a JSON
// body {"article_id": "..."} or, when the body is empty, the query string.
func (h *AnalyticsHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ArticleID string `json:"article_id"`
	}

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if request.ArticleID == "" {
		request.ArticleID = r.URL.Query().Get("article_id")
	}
	if request.ArticleID == "" {
		writeError(w, http.StatusBadRequest, "article_id is required")
		return
	}

	now := time.Now()
	h.aggregator.RecordView(request.ArticleID)
	if h.metrics != nil {
		h.metrics.ViewsRecorded.WithLabelValues("http").Inc()
	}
	for _, l := range h.listeners {
		l(request.ArticleID, now)
	}

	writeJSON(w, http.StatusOK, models.ArticleViews{
		ArticleID: request.ArticleID,
		Views:     h.aggregator.GetViews(request.ArticleID),
	})
}

// TopArticles handles GET /analytics/top-articles?limit=N. A missing,
// non-numeric or non-positive limit falls back to the default; limits above
// the maximum are clamped to it.
func (h *AnalyticsHandler) TopArticles(w http.ResponseWriter, r *http.Request) {
	limit := h.parseLimit(r.URL.Query().Get("limit"))

	if h.cache == nil {
		writeJSON(w, http.StatusOK, h.aggregator.TopArticles(limit))
		return
	}

	// The version is read before ranking, so a cached entry never predates
	// the version in its key.
	key := cache.TopArticlesKey(h.instance, h.aggregator.Version(), limit)
	if top, err := h.cache.Get(key); err == nil {
		h.countLookup("hit")
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, top)
		return
	}

	h.countLookup("miss")
	v, _, _ := h.group.Do(key, func() (interface{}, error) {
		top := h.aggregator.TopArticles(limit)
		if err := h.cache.Set(key, top); err != nil {
			middlewares.CaptureError(r, err)
		}
		return top, nil
	})

	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, v.([]models.ArticleViews))
}

func (h *AnalyticsHandler) parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return h.defaultLimit
	}
	if limit > h.maxLimit {
		return h.maxLimit
	}
	return limit
}

func (h *AnalyticsHandler) countLookup(result string) {
	if h.metrics != nil {
		h.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
