package events

import (
	"context"

	"go.uber.org/zap"
)

// NoopPublisher logs events instead of delivering them.
// Use in development or when no broker is configured.
type NoopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher creates a NoopPublisher backed by the given logger.
func NewNoopPublisher(logger *zap.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger}
}

// Publish logs the event and returns nil.
func (n *NoopPublisher) Publish(_ context.Context, ev Event) error {
	n.logger.Debug("event (noop, not published)",
		zap.String("type", ev.Type),
		zap.String("subject", ev.Subject),
		zap.String("actor", ev.Actor),
	)
	return nil
}
