package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/Glitch-Aswin/DevArticles/cache"
	"github.com/Glitch-Aswin/DevArticles/config"
	"github.com/Glitch-Aswin/DevArticles/pubsub"
)

func main() {
	articleID := flag.String("article", "", "article id to publish views for")
	count := flag.Int("count", 1, "number of view events to publish")
	interval := flag.Duration("interval", 0, "pause between events")
	flag.Parse()

	if *articleID == "" {
		log.Fatal("-article is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is not set")
	}

	redisStore, err := cache.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, 0)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer redisStore.Close()

	ps := pubsub.NewPubSub(redisStore)
	ctx := context.Background()

	published := 0
	for i := 0; i < *count; i++ {
		if err := ps.Publish(ctx, ps.NewEvent(*articleID, time.Now())); err != nil {
			log.Printf("Failed to publish: %v", err)
			continue
		}
		published++
		if *interval > 0 {
			time.Sleep(*interval)
		}
	}
	log.Printf("Published %d/%d view events for %s", published, *count, *articleID)
}
