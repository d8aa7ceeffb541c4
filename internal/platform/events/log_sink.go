// Package events holds the default implementations of the audit and
// notification collaborator ports. Both write structured log records; real
// deployments can swap in queue- or webhook-backed implementations without
// touching the core.
package events

import (
	"context"
	"log/slog"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
)

// SlogEventSink publishes change events as structured log records.
type SlogEventSink struct {
	logger *slog.Logger
}

// NewSlogEventSink creates an EventSink over the given logger.
func NewSlogEventSink(logger *slog.Logger) *SlogEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEventSink{logger: logger}
}

var _ portssvc.EventSink = (*SlogEventSink)(nil)

// Publish records the event. Never fails the business operation.
func (s *SlogEventSink) Publish(ctx context.Context, event domain.ChangeEvent) {
	attrs := []any{
		slog.String("entity_type", event.EntityType),
		slog.String("entity_id", event.EntityID),
		slog.String("action", string(event.Action)),
		slog.String("actor_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt),
	}
	for _, change := range event.Changes {
		attrs = append(attrs, slog.Group(change.Field,
			slog.String("before", change.Before),
			slog.String("after", change.After),
		))
	}
	s.logger.InfoContext(ctx, "audit event", attrs...)
}

// SlogNotifier signals review outcomes as structured log records.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a Notifier over the given logger.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

var _ portssvc.Notifier = (*SlogNotifier)(nil)

func (n *SlogNotifier) EntryApproved(ctx context.Context, entry *domain.JournalEntry) {
	n.logger.InfoContext(ctx, "entry approved notification",
		slog.String("entry_id", entry.EntryID),
		slog.String("creator_id", entry.CreatedBy),
		slog.String("reviewer_id", entry.ReviewedBy),
	)
}

func (n *SlogNotifier) EntryRejected(ctx context.Context, entry *domain.JournalEntry, reason string) {
	n.logger.InfoContext(ctx, "entry rejected notification",
		slog.String("entry_id", entry.EntryID),
		slog.String("creator_id", entry.CreatedBy),
		slog.String("reviewer_id", entry.ReviewedBy),
		slog.String("reason", reason),
	)
}
