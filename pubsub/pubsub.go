package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Glitch-Aswin/DevArticles/cache"
	"github.com/Glitch-Aswin/DevArticles/models"

	"github.com/google/uuid"
)

// Channel is the Redis channel carrying article view events.
const Channel = "article_views"

// HandlerFunc receives one decoded view event.
type HandlerFunc func(evt models.ViewEvent)

// PubSub publishes and receives view events over Redis. Every instance gets
// its own origin id so it can recognise its own messages.
type PubSub struct {
	redisStore *cache.RedisStore
	origin     uuid.UUID
}

func NewPubSub(redisStore *cache.RedisStore) *PubSub {
	return &PubSub{redisStore: redisStore, origin: uuid.New()}
}

// Origin identifies this instance in published events.
func (ps *PubSub) Origin() uuid.UUID {
	return ps.origin
}

// NewEvent builds an event for articleID stamped with this instance's origin.
func (ps *PubSub) NewEvent(articleID string, at time.Time) models.ViewEvent {
	return models.ViewEvent{
		ID:        uuid.New(),
		Origin:    ps.origin,
		ArticleID: articleID,
		Timestamp: at.UTC(),
	}
}

// Publish an event
func (ps *PubSub) Publish(ctx context.Context, evt models.ViewEvent) error {
	if evt.ArticleID == "" {
		return errors.New("view event without article id")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return ps.redisStore.Client.Publish(ctx, Channel, data).Err()
}

func decodeEvent(payload string) (models.ViewEvent, error) {
	var evt models.ViewEvent
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return evt, err
	}
	if evt.ArticleID == "" {
		return evt, errors.New("view event without article id")
	}
	return evt, nil
}
