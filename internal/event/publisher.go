// Package event provides event publishing abstractions.
//
// Only the logging publisher is implemented today. When Kafka, NATS, or
// another broker is needed: create a new file implementing the Publisher
// interface, add its configuration, and wire it up in main.go.
package event

import (
	"context"
	"log/slog"

	json "github.com/goccy/go-json"

	"github.com/mvaleed/registry/internal/domain"
)

// Publisher is the interface for publishing registry events.
// Implementations can be swapped without changing business logic.
type Publisher interface {
	// Publish sends an event to the message broker.
	// Implementations should handle retries and error logging internally.
	Publish(ctx context.Context, event domain.Event) error

	// PublishBatch sends multiple events. Some brokers optimize for batching.
	PublishBatch(ctx context.Context, events []domain.Event) error

	// Close cleanly shuts down the publisher.
	Close() error
}

// LoggingPublisher implements Publisher by logging events.
// Use this for development/testing or when you don't need a real broker yet.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, event domain.Event) error {
	data, _ := json.Marshal(event.Data)
	p.logger.Info("event published",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("actor_id", event.ActorID.String()),
		slog.String("data", string(data)),
	)
	return nil
}

func (p *LoggingPublisher) PublishBatch(ctx context.Context, events []domain.Event) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (p *LoggingPublisher) Close() error {
	return nil
}
