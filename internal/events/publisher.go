package events

import "context"

// Publisher publishes ledger events for the external messaging system.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, event *LedgerEvent) error
}

// NoopPublisher discards events (broker disabled or tests).
type NoopPublisher struct{}

// PublishLedgerEvent does nothing
func (NoopPublisher) PublishLedgerEvent(ctx context.Context, event *LedgerEvent) error {
	return nil
}
