package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"lyricdeck/internal/slide"
)

// Channel is the Redis channel slide payloads are published on.
const Channel = "lyricdeck:slides"

// RedisBroker publishes slides through Redis and relays everything published
// on the channel, by any instance, into the local hub.
type RedisBroker struct {
	rdb   *redis.Client
	hub   *Hub
	ready chan struct{}
	once  sync.Once
}

func NewRedisBroker(rdb *redis.Client, hub *Hub) *RedisBroker {
	return &RedisBroker{rdb: rdb, hub: hub, ready: make(chan struct{})}
}

// Publish sends content to every instance subscribed to the channel.
func (b *RedisBroker) Publish(ctx context.Context, content slide.Content) error {
	payload, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode slide: %w", err)
	}
	if err := b.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish slide: %w", err)
	}
	return nil
}

// Ready is closed once Listen holds an active subscription.
func (b *RedisBroker) Ready() <-chan struct{} {
	return b.ready
}

// Listen relays channel messages into the hub until ctx is cancelled.
func (b *RedisBroker) Listen(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	b.once.Do(func() { close(b.ready) })

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := b.hub.Broadcast(ctx, []byte(msg.Payload)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("relay slide: %w", err)
			}
		}
	}
}
