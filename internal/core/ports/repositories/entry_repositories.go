package repositories

import (
	"context"
	"time"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/openbooks/bookkeeping_app/internal/utils/accounting"
)

// EntryReader defines read operations for journal entry data
type EntryReader interface {
	// FindEntryByID retrieves a specific entry by its unique identifier,
	// without lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves all lines of an entry in display order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by
	// entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error)

	// ListEntries retrieves a paginated list of entries using token-based
	// pagination, optionally filtered by status. Returns the entries and a
	// token for the next page.
	ListEntries(ctx context.Context, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// ListLinesByAccountID retrieves a paginated ledger view of the approved
	// lines affecting one account.
	ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error)

	// FindApprovedLinesByAccountID retrieves every approved line for an
	// account, for balance reconciliation.
	FindApprovedLinesByAccountID(ctx context.Context, accountID string) ([]domain.JournalEntryLine, error)
}

// EntryWriter defines the state-changing operations of the entry lifecycle.
// The PENDING-only guards are enforced inside the repository transaction so
// that two concurrent transitions cannot both succeed.
type EntryWriter interface {
	// SaveEntry persists a new entry with its lines. When the entry is
	// already APPROVED (auto-approval), deltas must be supplied and are
	// applied to the affected accounts in the same transaction.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, deltas map[string]accounting.BalanceDelta) error

	// ReplaceEntryLines swaps the line set of a PENDING entry and updates its
	// date/description. Fails with ErrNotPending otherwise.
	ReplaceEntryLines(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error

	// DeleteEntry removes a PENDING entry and its lines. Fails with
	// ErrNotPending otherwise.
	DeleteEntry(ctx context.Context, entryID string) error

	// ApproveEntry flips a PENDING entry to APPROVED and applies the deltas
	// to the affected accounts as one atomic unit: either all balances
	// reflect the entry or none do. Fails with ErrNotPending if the entry is
	// no longer PENDING.
	ApproveEntry(ctx context.Context, entryID string, reviewerID string, reviewedAt time.Time, deltas map[string]accounting.BalanceDelta) error

	// RejectEntry flips a PENDING entry to REJECTED with the given reason.
	// Never touches account balances. Fails with ErrNotPending if the entry
	// is no longer PENDING.
	RejectEntry(ctx context.Context, entryID string, reviewerID string, reviewedAt time.Time, reason string) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}

// EntryRepositoryWithTx extends EntryRepositoryFacade with transaction capabilities
type EntryRepositoryWithTx interface {
	EntryRepositoryFacade
	TransactionManager
}
