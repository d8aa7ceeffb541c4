package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the review state of a journal entry.
type EntryStatus string

const (
	Pending  EntryStatus = "PENDING"
	Approved EntryStatus = "APPROVED"
	Rejected EntryStatus = "REJECTED"
)

// JournalEntry represents a row of the journal_entries table.
type JournalEntry struct {
	EntryID         string      `db:"entry_id"`
	EntryDate       time.Time   `db:"entry_date"`
	Description     string      `db:"description"`
	Status          EntryStatus `db:"status"`
	ReviewedBy      *string     `db:"reviewed_by"` // Nullable until reviewed
	ReviewedAt      *time.Time  `db:"reviewed_at"`
	RejectionReason *string     `db:"rejection_reason"` // Set iff REJECTED
	AuditFields
}

// JournalEntryLine represents a row of the journal_entry_lines table.
// Exactly one of debit/credit is positive; both are >= 0 (CHECK constraint).
type JournalEntryLine struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	AccountID    string          `db:"account_id"`
	Description  string          `db:"description"`
	Debit        decimal.Decimal `db:"debit"`
	Credit       decimal.Decimal `db:"credit"`
	DisplayOrder int             `db:"display_order"`
	AuditFields
}
