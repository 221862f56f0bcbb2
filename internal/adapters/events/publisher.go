package events

import (
	"context"
	"log/slog"
)

// LoggingPublisher writes audit events to the structured log. It is the
// default sink; a broker-backed publisher can replace it without touching
// the worker.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.logger.InfoContext(ctx, "audit event published", "event_type", eventType, "payload", string(payload))
	return nil
}
