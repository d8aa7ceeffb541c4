package services

import (
	"context"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
)

// EventSink consumes the structured audit events emitted after every state
// transition. Implementations must not fail the business operation; the core
// emits synchronously and moves on.
type EventSink interface {
	Publish(ctx context.Context, event domain.ChangeEvent)
}

// Notifier signals entry review outcomes to the creator. Delivery is the
// collaborator's concern.
type Notifier interface {
	EntryApproved(ctx context.Context, entry *domain.JournalEntry)
	EntryRejected(ctx context.Context, entry *domain.JournalEntry, reason string)
}
