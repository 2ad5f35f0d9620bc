// Package events publishes storefront change notifications. Delivery to
// browsers and the admin console happens elsewhere; this package only
// emits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Type names an event.
type Type string

const (
	CartUpdated        Type = "cart.updated"
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
	OrderMessageAdded  Type = "order.message_added"
)

// Event is the envelope written to the channel.
type Event struct {
	Type       Type           `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data"`
}

// New builds an event stamped with the current time.
func New(t Type, data map[string]any) Event {
	return Event{Type: t, OccurredAt: time.Now().UTC(), Data: data}
}

// Publisher emits events. Implementations must not block for long; callers
// never fail an operation because publishing failed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type redisPublisher struct {
	client  redis.UniversalClient
	channel string
	logger  zerolog.Logger
}

// NewRedisPublisher publishes JSON-encoded events on channel.
func NewRedisPublisher(client redis.UniversalClient, channel string, logger zerolog.Logger) Publisher {
	return &redisPublisher{
		client:  client,
		channel: channel,
		logger:  logger.With().Str("component", "event-publisher").Logger(),
	}
}

func (p *redisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Error().Err(err).Str("event", string(event.Type)).Msg("failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().Str("event", string(event.Type)).Str("channel", p.channel).Msg("event published")
	return nil
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
