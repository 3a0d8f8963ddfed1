package messaging

import (
	"context"
	"log/slog"
)

// Publisher publishes domain events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event. Used when no
// brokers are configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishEvent(ctx context.Context, topic string, key string, _ any) error {
	slog.DebugContext(ctx, "Dropping event, no broker configured", slog.String("topic", topic), slog.String("key", key))
	return nil
}

func (nopPublisher) Close() error { return nil }
