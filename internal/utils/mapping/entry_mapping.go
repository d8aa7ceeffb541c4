package mapping

import (
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/openbooks/bookkeeping_app/internal/models"
)

// ToModelEntry converts a domain JournalEntry to a model JournalEntry.
// Lines travel separately; the model mirrors the table row only.
func ToModelEntry(d domain.JournalEntry) models.JournalEntry {
	m := models.JournalEntry{
		EntryID:     d.EntryID,
		EntryDate:   d.EntryDate,
		Description: d.Description,
		Status:      models.EntryStatus(d.Status),
		ReviewedAt:  d.ReviewedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.ReviewedBy != "" {
		m.ReviewedBy = &d.ReviewedBy
	}
	if d.RejectionReason != "" {
		m.RejectionReason = &d.RejectionReason
	}
	return m
}

// ToDomainEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	d := domain.JournalEntry{
		EntryID:     m.EntryID,
		EntryDate:   m.EntryDate,
		Description: m.Description,
		Status:      domain.EntryStatus(m.Status),
		ReviewedAt:  m.ReviewedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.ReviewedBy != nil {
		d.ReviewedBy = *m.ReviewedBy
	}
	if m.RejectionReason != nil {
		d.RejectionReason = *m.RejectionReason
	}
	return d
}

// ToDomainEntrySlice converts a slice of model JournalEntries to domain JournalEntries
func ToDomainEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntry(m)
	}
	return ds
}

// ToModelEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:       d.LineID,
		EntryID:      d.EntryID,
		AccountID:    d.AccountID,
		Description:  d.Description,
		Debit:        d.Debit,
		Credit:       d.Credit,
		DisplayOrder: d.DisplayOrder,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntryLine converts a model JournalEntryLine to a domain JournalEntryLine
func ToDomainEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		AccountID:    m.AccountID,
		Description:  m.Description,
		Debit:        m.Debit,
		Credit:       m.Credit,
		DisplayOrder: m.DisplayOrder,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEntryLineSlice converts domain lines to model lines
func ToModelEntryLineSlice(ds []domain.JournalEntryLine) []models.JournalEntryLine {
	ms := make([]models.JournalEntryLine, len(ds))
	for i, d := range ds {
		ms[i] = ToModelEntryLine(d)
	}
	return ms
}

// ToDomainEntryLineSlice converts model lines to domain lines
func ToDomainEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntryLine(m)
	}
	return ds
}
