package services

import (
	"context"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/openbooks/bookkeeping_app/internal/dto"
)

// AccountReaderSvc defines read-only account operations.
type AccountReaderSvc interface {
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error)
}

// AccountAdminSvc defines the administrative account operations. None of these
// touch the financial fields; those belong to the posting engine.
type AccountAdminSvc interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount deactivates a zero-balance account, either
	// unconditionally or within the supplied date window.
	DeactivateAccount(ctx context.Context, accountID string, req dto.DeactivateAccountRequest, userID string) (*domain.Account, error)

	// ActivateAccount clears any deactivation window and reactivates the
	// account unconditionally.
	ActivateAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error)
}

// AccountRecoverySvc defines the out-of-band reconciliation tooling.
type AccountRecoverySvc interface {
	// RecalculateBalances replays all approved lines over initial balances.
	// With dryRun it only reports how many accounts have drifted from their
	// replayed totals, writing nothing.
	RecalculateBalances(ctx context.Context, userID string, dryRun bool) (int, error)

	// ImportAccounts full-replaces account rows, financial fields included.
	ImportAccounts(ctx context.Context, req dto.ImportAccountsRequest, userID string) (int, error)
}

// AccountSvcFacade combines all account service interfaces.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountAdminSvc
	AccountRecoverySvc
}
