package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Glitch-Aswin/DevArticles/analytics"
	"github.com/Glitch-Aswin/DevArticles/batcher"
	"github.com/Glitch-Aswin/DevArticles/cache"
	"github.com/Glitch-Aswin/DevArticles/config"
	"github.com/Glitch-Aswin/DevArticles/handlers"
	"github.com/Glitch-Aswin/DevArticles/metrics"
	middleware "github.com/Glitch-Aswin/DevArticles/middlewares"
	"github.com/Glitch-Aswin/DevArticles/models"
	"github.com/Glitch-Aswin/DevArticles/pubsub"
	"github.com/Glitch-Aswin/DevArticles/queue"
	"github.com/Glitch-Aswin/DevArticles/store"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const persistTimeout = 10 * time.Second

// app owns every long-lived dependency of the server.
type app struct {
	cfg        config.Config
	aggregator *analytics.ViewAggregator
	metrics    *metrics.Metrics

	store     *store.ViewStore
	redis     *cache.RedisStore
	topCache  cache.TopArticlesCache
	batcher   *batcher.TimeBatcher
	pubsub    *pubsub.PubSub
	publisher *queue.Worker

	blocklist *middleware.Blocklist

	analytics *handlers.AnalyticsHandler
	health    *handlers.HealthHandler

	ctx    context.Context
	cancel context.CancelFunc
}

func newApp(cfg config.Config) (*app, error) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &app{
		cfg:        cfg,
		aggregator: analytics.NewViewAggregator(),
		ctx:        ctx,
		cancel:     cancel,
	}
	built := false
	defer func() {
		if !built {
			a.Close()
		}
	}()

	var err error

	a.metrics = metrics.New(func() float64 { return float64(a.aggregator.Len()) })

	if cfg.DatabaseEnabled() {
		db, err := config.OpenDB(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize the database: %w", err)
		}
		a.store = store.NewViewStore(db)

		if cfg.RestoreOnStart {
			counts, err := a.store.LoadAll(ctx)
			if err != nil {
				return nil, err
			}
			a.aggregator.RecordViews(counts)
			middleware.DebugLogger.Printf("Restored %d articles from %s", len(counts), cfg.DatabasePath)
		}
	}

	if cfg.RedisURL != "" {
		a.redis, err = cache.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
	}

	if cfg.BlocklistPath != "" {
		if a.blocklist, err = middleware.LoadBlocklist(cfg.BlocklistPath); err != nil {
			return nil, fmt.Errorf("failed to load blocklist: %w", err)
		}
	}

	switch cfg.CacheBackend {
	case config.CacheBigCache:
		if a.topCache, err = cache.NewBigCacheStore(cfg.CacheTTL); err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
	case config.CacheRedis:
		a.topCache = a.redis
	}

	var listeners []handlers.ViewListener
	instance := uuid.NewString()

	if cfg.PersistViews {
		a.batcher = batcher.NewTimeBatcher(cfg.FlushInterval, a.persist)
		a.batcher.Start()
		listeners = append(listeners, func(articleID string, at time.Time) {
			a.batcher.Enqueue(batcher.ViewEvent{ArticleID: articleID, Timestamp: at})
		})
	}

	if cfg.PublishEvents {
		a.pubsub = pubsub.NewPubSub(a.redis)
		instance = a.pubsub.Origin().String()
		a.publisher = queue.NewWorker(1024)
		a.publisher.Start(2)
		listeners = append(listeners, a.publish)

		if err := a.pubsub.Subscribe(ctx, false, a.applyRemote); err != nil {
			return nil, err
		}
	}

	a.analytics = handlers.NewAnalyticsHandler(a.aggregator, handlers.Options{
		Cache:        a.topCache,
		Metrics:      a.metrics,
		Listeners:    listeners,
		DefaultLimit: cfg.DefaultTopLimit,
		MaxLimit:     cfg.MaxTopLimit,
		Instance:     instance,
	})

	var pinger handlers.Pinger
	if a.store != nil {
		pinger = a.store
	}
	a.health = handlers.NewHealthHandler(a.aggregator, pinger)

	built = true
	return a, nil
}

// persist writes one batch of view deltas to the store.
func (a *app) persist(deltas batcher.AggregatedCount) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := a.store.AddViews(ctx, deltas); err != nil {
		a.metrics.PersistFlushes.WithLabelValues("error").Inc()
		middleware.ErrorLogger.Printf("Error persisting %d articles: %v", len(deltas), err)
		sentry.CaptureException(err)
		return
	}
	a.metrics.PersistFlushes.WithLabelValues("ok").Inc()
}

func (a *app) publish(articleID string, at time.Time) {
	evt := a.pubsub.NewEvent(articleID, at)
	ok := a.publisher.Enqueue(func() {
		ctx, cancel := context.WithTimeout(a.ctx, 2*time.Second)
		defer cancel()
		if err := a.pubsub.Publish(ctx, evt); err != nil {
			middleware.ErrorLogger.Printf("Failed to publish view of %s: %v", evt.ArticleID, err)
		}
	})
	if !ok {
		middleware.ErrorLogger.Printf("Publish queue full, dropped view of %s", articleID)
	}
}

// applyRemote records a view that another instance received over HTTP.
func (a *app) applyRemote(evt models.ViewEvent) {
	a.aggregator.RecordView(evt.ArticleID)
	a.metrics.ViewsRecorded.WithLabelValues("pubsub").Inc()
}

// Router builds the HTTP handler tree.
func (a *app) Router() http.Handler {
	sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(sentryHandler.Handle)
	r.Use(middleware.SentryScopeMiddleware)
	r.Use(middleware.MetricsMiddleware(a.metrics))
	r.Use(middleware.ResponseTimeMiddleware)

	var recordView http.Handler = http.HandlerFunc(a.analytics.RecordView)
	recordView = middleware.RateLimitMiddleware(a.redis, a.cfg.RateLimitStrategy, a.cfg.RateLimitPerMinute)(recordView)
	recordView = middleware.BlocklistMiddleware(a.blocklist)(recordView)

	r.HandleFunc("/analytics/views", a.analytics.GetViews).Methods("GET")
	r.Handle("/analytics/views", recordView).Methods("POST")
	r.HandleFunc("/analytics/top-articles", a.analytics.TopArticles).Methods("GET")
	r.HandleFunc("/health", a.health.Check).Methods("GET")
	r.Handle("/metrics", a.metrics.Handler()).Methods("GET")

	// CORS wraps the router so preflight requests are answered before
	// method matching rejects them.
	return middleware.CORSMiddleware(a.cfg.AllowedOrigins)(r)
}

// Close stops background work, flushes pending views and releases
// connections. It is safe to call on a partially built app.
func (a *app) Close() error {
	a.cancel()

	if a.publisher != nil {
		a.publisher.Stop()
	}
	if a.batcher != nil {
		a.batcher.Stop()
	}

	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.topCache != nil && a.topCache != cache.TopArticlesCache(a.redis) {
		errs = append(errs, a.topCache.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
