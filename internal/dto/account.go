package dto

import (
	"time"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	AccountNumber  string                 `json:"accountNumber" binding:"required,acctnumber"`
	AccountName    string                 `json:"accountName" binding:"required"`
	Description    string                 `json:"description"` // Optional
	Comment        string                 `json:"comment"`     // Optional administrative note
	Category       domain.AccountCategory `json:"category" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subcategory    string                 `json:"subcategory"`
	NormalSide     domain.NormalSide      `json:"normalSide" binding:"required,oneof=DEBIT CREDIT"`
	Statement      domain.StatementType   `json:"statement" binding:"required,oneof=IS BS RE"`
	InitialBalance decimal.Decimal        `json:"initialBalance"`
	DisplayOrder   int                    `json:"displayOrder"`
}

// UpdateAccountRequest defines the descriptive fields allowed to change after
// creation. Financial fields are never updatable through this path.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	AccountName  *string `json:"accountName"`
	Description  *string `json:"description"`
	Comment      *string `json:"comment"`
	Subcategory  *string `json:"subcategory"`
	DisplayOrder *int    `json:"displayOrder"`
}

// DeactivateAccountRequest optionally carries a deactivation window. With both
// dates present the account is considered inactive only while "today" falls
// inside the window (inclusive); without them deactivation is unconditional.
type DeactivateAccountRequest struct {
	From *time.Time `json:"from" time_format:"2006-01-02"`
	To   *time.Time `json:"to" time_format:"2006-01-02"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID      string                 `json:"accountID"`
	AccountNumber  string                 `json:"accountNumber"`
	AccountName    string                 `json:"accountName"`
	Description    string                 `json:"description"`
	Comment        string                 `json:"comment"`
	Category       domain.AccountCategory `json:"category"`
	Subcategory    string                 `json:"subcategory"`
	NormalSide     domain.NormalSide      `json:"normalSide"`
	Statement      domain.StatementType   `json:"statement"`
	InitialBalance decimal.Decimal        `json:"initialBalance"`
	Debit          decimal.Decimal        `json:"debit"`
	Credit         decimal.Decimal        `json:"credit"`
	Balance        decimal.Decimal        `json:"balance"`
	IsActive       bool                   `json:"isActive"`
	DeactivateFrom *time.Time             `json:"deactivateFrom,omitempty"`
	DeactivateTo   *time.Time             `json:"deactivateTo,omitempty"`
	DisplayOrder   int                    `json:"displayOrder"`
	CreatedAt      time.Time              `json:"createdAt"`
	CreatedBy      string                 `json:"createdBy"`
	LastUpdatedAt  time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy  string                 `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		AccountNumber:  acc.AccountNumber,
		AccountName:    acc.AccountName,
		Description:    acc.Description,
		Comment:        acc.Comment,
		Category:       acc.Category,
		Subcategory:    acc.Subcategory,
		NormalSide:     acc.NormalSide,
		Statement:      acc.Statement,
		InitialBalance: acc.InitialBalance,
		Debit:          acc.Debit,
		Credit:         acc.Credit,
		Balance:        acc.Balance,
		IsActive:       acc.IsActive,
		DeactivateFrom: acc.DeactivateFrom,
		DeactivateTo:   acc.DeactivateTo,
		DisplayOrder:   acc.DisplayOrder,
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
		LastUpdatedAt:  acc.LastUpdatedAt,
		LastUpdatedBy:  acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	ActiveOnly bool `form:"activeOnly,default=false"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ImportAccountRow is one full account row in an import payload. Unlike
// CreateAccountRequest it carries the financial fields verbatim; import is an
// admin-only seeding path that bypasses the posting engine.
type ImportAccountRow struct {
	AccountNumber  string                 `json:"accountNumber" binding:"required,acctnumber"`
	AccountName    string                 `json:"accountName" binding:"required"`
	Description    string                 `json:"description"`
	Comment        string                 `json:"comment"`
	Category       domain.AccountCategory `json:"category" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subcategory    string                 `json:"subcategory"`
	NormalSide     domain.NormalSide      `json:"normalSide" binding:"required,oneof=DEBIT CREDIT"`
	Statement      domain.StatementType   `json:"statement" binding:"required,oneof=IS BS RE"`
	InitialBalance decimal.Decimal        `json:"initialBalance"`
	Debit          decimal.Decimal        `json:"debit"`
	Credit         decimal.Decimal        `json:"credit"`
	Balance        decimal.Decimal        `json:"balance"`
	IsActive       *bool                  `json:"isActive"`
	DisplayOrder   int                    `json:"displayOrder"`
}

// ImportAccountsRequest wraps the import payload.
type ImportAccountsRequest struct {
	Accounts []ImportAccountRow `json:"accounts" binding:"required,min=1,dive"`
}

// ImportAccountsResponse reports how many rows were written.
type ImportAccountsResponse struct {
	Imported int `json:"imported"`
}

// RecalculateParams are the query parameters of the recalculation endpoint.
type RecalculateParams struct {
	// DryRun only counts accounts whose totals drifted, writing nothing.
	DryRun bool `form:"dryRun"`
}

// RecalculateResponse reports how many accounts were recomputed, or in a dry
// run how many would be.
type RecalculateResponse struct {
	AccountsUpdated int  `json:"accountsUpdated"`
	DryRun          bool `json:"dryRun"`
}
