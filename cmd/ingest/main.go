// Command ingest persists view events published on Redis into SQLite without
// serving HTTP.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Glitch-Aswin/DevArticles/batcher"
	"github.com/Glitch-Aswin/DevArticles/cache"
	"github.com/Glitch-Aswin/DevArticles/config"
	middleware "github.com/Glitch-Aswin/DevArticles/middlewares"
	"github.com/Glitch-Aswin/DevArticles/models"
	"github.com/Glitch-Aswin/DevArticles/pubsub"
	"github.com/Glitch-Aswin/DevArticles/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is not set")
	}
	if err := middleware.InitLoggers(cfg.LogDir); err != nil {
		log.Fatalf("Could not create log directory %s: %v", cfg.LogDir, err)
	}

	db, err := config.OpenDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize the database: %v", err)
	}
	viewStore := store.NewViewStore(db)
	defer viewStore.Close()

	redisStore, err := cache.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, 0)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisStore.Close()

	persist := func(deltas batcher.AggregatedCount) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := viewStore.AddViews(ctx, deltas); err != nil {
			middleware.ErrorLogger.Printf("Error persisting %d articles: %v", len(deltas), err)
		}
	}

	// Flush on size, and on a timer so quiet periods are not held back.
	b := batcher.NewCountBatcher(cfg.BatchSize, persist)
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = config.Default().FlushInterval
	}
	ticker := time.NewTicker(cfg.FlushInterval)
	defer ticker.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ps := pubsub.NewPubSub(redisStore)
	err = ps.Subscribe(ctx, true, func(evt models.ViewEvent) {
		b.Enqueue(batcher.ViewEvent{ArticleID: evt.ArticleID, Timestamp: evt.Timestamp})
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	log.Printf("Ingesting %s into %s", pubsub.Channel, cfg.DatabasePath)

	for {
		select {
		case <-ticker.C:
			b.Flush()
		case <-ctx.Done():
			b.Flush()
			log.Println("Ingest stopped")
			return
		}
	}
}
