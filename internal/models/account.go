package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory mirrors domain.AccountCategory at the persistence layer.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// Account represents a row of the accounts table.
// Accounts are never deleted; referential integrity with journal entry lines
// is enforced with ON DELETE RESTRICT.
type Account struct {
	AccountID      string          `db:"account_id"`
	AccountNumber  string          `db:"account_number"` // Unique, digits only
	AccountName    string          `db:"account_name"`   // Unique
	Description    string          `db:"description"`
	Comment        string          `db:"comment"`
	Category       AccountCategory `db:"category"`
	Subcategory    string          `db:"subcategory"`
	NormalSide     string          `db:"normal_side"` // DEBIT or CREDIT
	Statement      string          `db:"statement"`   // IS, BS or RE
	InitialBalance decimal.Decimal `db:"initial_balance"`
	Debit          decimal.Decimal `db:"debit"`
	Credit         decimal.Decimal `db:"credit"`
	Balance        decimal.Decimal `db:"balance"`
	IsActive       bool            `db:"is_active"`
	DeactivateFrom *time.Time      `db:"deactivate_from"` // Nullable window start
	DeactivateTo   *time.Time      `db:"deactivate_to"`   // Nullable window end
	DisplayOrder   int             `db:"display_order"`
	AuditFields
}
