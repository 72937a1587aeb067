// Package events fans booking changes out over Redis Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/example/artist-booking/internal/application"
)

// DefaultChannel is the Pub/Sub channel used when none is configured.
const DefaultChannel = "artistbook:booking_events"

// Observer is notified of every publish attempt.
type Observer interface {
	RecordEventPublished(eventType string, err error)
}

// RedisPublisher publishes application events as JSON on one channel.
// It is safe for concurrent use.
type RedisPublisher struct {
	rdb      *redis.Client
	channel  string
	observer Observer
}

var _ application.EventPublisher = (*RedisPublisher)(nil)

// NewRedisPublisher connects to Redis with opts. An empty channel selects
// DefaultChannel.
func NewRedisPublisher(opts *redis.Options, channel string, observer Observer) (*RedisPublisher, error) {
	if opts == nil || opts.Addr == "" {
		return nil, fmt.Errorf("events: redis address cannot be empty")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		rdb:      redis.NewClient(opts),
		channel:  channel,
		observer: observer,
	}, nil
}

// Channel returns the channel events are published on.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Ping verifies Redis connectivity.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Publish sends event to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, event application.Event) (err error) {
	if p.observer != nil {
		defer func() { p.observer.RecordEventPublished(event.Type, err) }()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

// Subscription delivers events received on the channel. Call Close when done.
type Subscription struct {
	events <-chan application.Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of decoded events.
func (s *Subscription) Events() <-chan application.Event {
	return s.events
}

// Errors returns decode failures. Messages that fail to decode are skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe listens on the publisher's channel. It returns once Redis has
// confirmed the subscription, so events published afterwards are delivered.
// Delivery is at most once: a slow consumer can miss events.
func (p *RedisPublisher) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", p.channel, err)
	}

	eventsChan := make(chan application.Event, 16)
	errorsChan := make(chan error, 16)
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event application.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to decode event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{events: eventsChan, errors: errorsChan, cancel: cancel}, nil
}
