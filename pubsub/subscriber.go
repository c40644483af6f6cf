package pubsub

import (
	"context"
	"fmt"

	"github.com/Glitch-Aswin/DevArticles/middlewares"
	"github.com/Glitch-Aswin/DevArticles/models"
)

// Subscribe listens on Channel until ctx ends and calls handler for each
// valid event. Events published by this instance are skipped unless
// includeOwn is set. It returns once the subscription is confirmed.
func (ps *PubSub) Subscribe(ctx context.Context, includeOwn bool, handler HandlerFunc) error {
	sub := ps.redisStore.Client.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe to %s: %w", Channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				evt, err := decodeEvent(msg.Payload)
				if err != nil {
					middlewares.ErrorLogger.Printf("Error decoding view event: %v", err)
					continue
				}
				if ps.accept(evt, includeOwn) {
					handler(evt)
				}
			}
		}
	}()
	return nil
}

func (ps *PubSub) accept(evt models.ViewEvent, includeOwn bool) bool {
	return includeOwn || evt.Origin != ps.origin
}
