package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory defines the fundamental accounting classification of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// NormalSide is the side whose increase corresponds to an increase in the
// account's balance.
type NormalSide string

const (
	DebitSide  NormalSide = "DEBIT"
	CreditSide NormalSide = "CREDIT"
)

// StatementType places an account on a financial statement.
type StatementType string

const (
	IncomeStatement  StatementType = "IS"
	BalanceSheet     StatementType = "BS"
	RetainedEarnings StatementType = "RE"
)

// Account represents a row in the Chart of Accounts.
// This is the primary representation used by services.
//
// The financial fields (Debit, Credit, Balance) are running totals maintained
// exclusively by the posting engine; the source of truth is the set of
// approved journal entry lines, from which they can be recomputed.
type Account struct {
	AccountID      string          `json:"accountID"`      // Primary Key (UUID)
	AccountNumber  string          `json:"accountNumber"`  // Unique, digits only
	AccountName    string          `json:"accountName"`    // Unique
	Description    string          `json:"description"`    // Nullable user description
	Comment        string          `json:"comment"`        // Administrative note
	Category       AccountCategory `json:"category"`       // ASSET, LIABILITY, etc.
	Subcategory    string          `json:"subcategory"`    // e.g. "Current Assets"
	NormalSide     NormalSide      `json:"normalSide"`     // Side that increases the balance
	Statement      StatementType   `json:"statement"`      // IS, BS or RE
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Debit          decimal.Decimal `json:"debit"`   // Cumulative posted debits
	Credit         decimal.Decimal `json:"credit"`  // Cumulative posted credits
	Balance        decimal.Decimal `json:"balance"` // Current running balance
	IsActive       bool            `json:"isActive"`
	DeactivateFrom *time.Time      `json:"deactivateFrom,omitempty"` // Optional window start (inclusive)
	DeactivateTo   *time.Time      `json:"deactivateTo,omitempty"`   // Optional window end (inclusive)
	DisplayOrder   int             `json:"displayOrder"`             // Ordering key for listing
	AuditFields
}

// CanDeactivate reports whether the account may be deactivated.
// Only zero-balance accounts can be taken out of the chart.
func (a *Account) CanDeactivate() bool {
	return a.Balance.IsZero()
}

// ActiveOn reports whether the account is usable on the given day, taking the
// optional deactivation window into account. The window overrides the explicit
// flag while the day falls inside it (inclusive).
func (a *Account) ActiveOn(today time.Time) bool {
	if a.DeactivateFrom != nil && a.DeactivateTo != nil {
		day := today.Truncate(24 * time.Hour)
		if !day.Before(a.DeactivateFrom.Truncate(24*time.Hour)) && !day.After(a.DeactivateTo.Truncate(24*time.Hour)) {
			return false
		}
	}
	return a.IsActive
}
