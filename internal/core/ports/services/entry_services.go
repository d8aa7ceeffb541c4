package services

import (
	"context"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/openbooks/bookkeeping_app/internal/dto"
)

// EntrySvcFacade defines the journal entry lifecycle: creation with
// validation, PENDING-only edits, and the terminal approve/reject transitions
// that drive the posting engine.
type EntrySvcFacade interface {
	// CreateEntry validates the line set and persists the entry. Entries from
	// actors the approval policy auto-approves are approved and posted
	// immediately; all others start PENDING.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string, role domain.Role) (*domain.JournalEntry, error)

	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// UpdateEntry replaces the line set of a PENDING entry after full
	// revalidation. Never posts.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a PENDING entry.
	DeleteEntry(ctx context.Context, entryID string, userID string) error

	// ApproveEntry transitions PENDING -> APPROVED and posts every line to
	// its account in one atomic unit.
	ApproveEntry(ctx context.Context, entryID string, approverUserID string, role domain.Role) (*domain.JournalEntry, error)

	// RejectEntry transitions PENDING -> REJECTED with a mandatory reason.
	// Never touches account balances.
	RejectEntry(ctx context.Context, entryID string, approverUserID string, role domain.Role, reason string) (*domain.JournalEntry, error)

	// ListLinesByAccount returns the approved ledger lines for one account.
	ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}
