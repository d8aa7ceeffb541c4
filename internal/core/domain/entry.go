package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
// PENDING entries may be edited, deleted, approved or rejected; APPROVED and
// REJECTED are terminal.
type EntryStatus string

const (
	Pending  EntryStatus = "PENDING"
	Approved EntryStatus = "APPROVED"
	Rejected EntryStatus = "REJECTED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s EntryStatus) IsTerminal() bool {
	return s == Approved || s == Rejected
}

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. Balances are only affected when the entry is approved.
type JournalEntry struct {
	EntryID         string             `json:"entryID"` // Primary Key (UUID)
	EntryDate       time.Time          `json:"entryDate"`
	Description     string             `json:"description"`
	Status          EntryStatus        `json:"status"`
	ReviewedBy      string             `json:"reviewedBy,omitempty"` // UserID of the approver/rejector
	ReviewedAt      *time.Time         `json:"reviewedAt,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"` // Required when REJECTED
	Lines           []JournalEntryLine `json:"lines,omitempty"`           // Often loaded separately
	AuditFields
}

// JournalEntryLine is a single debit or credit against one account.
// Exactly one of Debit and Credit is positive; the other is zero.
type JournalEntryLine struct {
	LineID       string          `json:"lineID"`  // Primary Key (UUID)
	EntryID      string          `json:"entryID"` // FK -> JournalEntry (Not Null)
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	DisplayOrder int             `json:"displayOrder"` // Insertion order, display only
	AuditFields
}
