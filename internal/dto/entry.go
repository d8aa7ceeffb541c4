package dto

import (
	"time"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryLineRequest defines one line of a journal entry. Exactly one of
// debit/credit must be positive; full validation happens in the service so
// the caller gets the precise error kind back.
type CreateEntryLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// CreateEntryRequest defines the data needed to create a journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time                `json:"entryDate" binding:"required" time_format:"2006-01-02"`
	Description string                   `json:"description"`
	Lines       []CreateEntryLineRequest `json:"lines" binding:"required"`
}

// UpdateEntryRequest defines the data allowed when editing a PENDING entry.
// A non-nil Lines slice fully replaces the existing line set.
type UpdateEntryRequest struct {
	EntryDate   *time.Time               `json:"entryDate" time_format:"2006-01-02"`
	Description *string                  `json:"description"`
	Lines       []CreateEntryLineRequest `json:"lines"`
}

// RejectEntryRequest carries the mandatory rejection reason.
type RejectEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// EntryLineResponse defines the data returned for a journal entry line.
type EntryLineResponse struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	Description  string          `json:"description"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	DisplayOrder int             `json:"displayOrder"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID         string              `json:"entryID"`
	EntryDate       time.Time           `json:"entryDate"`
	Description     string              `json:"description"`
	Status          domain.EntryStatus  `json:"status"`
	ReviewedBy      string              `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewedAt,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	CreatedBy       string              `json:"createdBy"`
	Lines           []EntryLineResponse `json:"lines,omitempty"`
}

// ToEntryLineResponse converts a domain.JournalEntryLine to EntryLineResponse DTO.
func ToEntryLineResponse(line *domain.JournalEntryLine) EntryLineResponse {
	return EntryLineResponse{
		LineID:       line.LineID,
		EntryID:      line.EntryID,
		AccountID:    line.AccountID,
		Description:  line.Description,
		Debit:        line.Debit,
		Credit:       line.Credit,
		DisplayOrder: line.DisplayOrder,
	}
}

// ToEntryLineResponses converts a slice of domain.JournalEntryLine to []EntryLineResponse.
func ToEntryLineResponses(lines []domain.JournalEntryLine) []EntryLineResponse {
	responses := make([]EntryLineResponse, len(lines))
	for i, line := range lines {
		responses[i] = ToEntryLineResponse(&line)
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:         e.EntryID,
		EntryDate:       e.EntryDate,
		Description:     e.Description,
		Status:          e.Status,
		ReviewedBy:      e.ReviewedBy,
		ReviewedAt:      e.ReviewedAt,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt,
		CreatedBy:       e.CreatedBy,
		Lines:           ToEntryLineResponses(e.Lines),
	}
}

// ListEntriesParams defines query parameters for listing journal entries.
type ListEntriesParams struct {
	Status    *domain.EntryStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Limit     int                 `form:"limit,default=20"`
	NextToken string              `form:"nextToken"`
}

// ListEntriesResponse wraps a page of journal entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken string          `json:"nextToken,omitempty"`
}

// ListLinesParams defines query parameters for an account's ledger view.
type ListLinesParams struct {
	Limit     int    `form:"limit,default=50"`
	NextToken string `form:"nextToken"`
}

// ListLinesResponse wraps a page of ledger lines for one account.
type ListLinesResponse struct {
	AccountID string              `json:"accountID"`
	Lines     []EntryLineResponse `json:"lines"`
	NextToken string              `json:"nextToken,omitempty"`
}
