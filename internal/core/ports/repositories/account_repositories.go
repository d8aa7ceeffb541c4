package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/openbooks/bookkeeping_app/internal/utils/accounting"
)

// AccountReader defines read operations for chart-of-accounts data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its account number.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts ordered by display order and account
	// number. When activeOnly is true, inactive accounts are omitted.
	ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data.
// Financial fields (debit, credit, balance) are never written here; they
// belong to the posting engine and the recovery tooling.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an account's descriptive fields.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// SetAccountActivation flips is_active and replaces the deactivation
	// window (nil clears it).
	SetAccountActivation(ctx context.Context, accountID string, active bool, from, to *time.Time, userID string, now time.Time) error
}

// AccountPostingSupport defines the operations the posting engine needs
// within a database transaction.
type AccountPostingSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks their rows for
	// update within the transaction. Accounts are locked in account_id order
	// to avoid deadlocks between concurrent approvals.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceDeltasInTx adds each delta to its account's running totals
	// within the given transaction.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]accounting.BalanceDelta, userID string, now time.Time) error
}

// AccountRecovery defines the out-of-band reconciliation operations.
type AccountRecovery interface {
	// RecalculateBalances resets every account to its initial balance and
	// replays all approved lines, in one transaction. Returns the number of
	// accounts recalculated.
	RecalculateBalances(ctx context.Context, userID string, now time.Time) (int, error)

	// ImportAccount full-replaces an account row including its financial
	// fields. Seed/import tooling only; bypasses the posting engine.
	ImportAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountPostingSupport
	AccountRecovery
}
