package ports

import "context"

// EventPublisher delivers audit events claimed from the outbox. The
// application layer only enqueues; delivery details stay in adapters.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}
