package mapping

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/openbooks/bookkeeping_app/internal/models"
)

func TestToDomainEntrySlice(t *testing.T) {
	reviewer := "reviewer-1"
	reviewedAt := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	ms := []models.JournalEntry{
		{EntryID: "e1", Description: "first", Status: models.Pending},
		{EntryID: "e2", Description: "second", Status: models.Approved, ReviewedBy: &reviewer, ReviewedAt: &reviewedAt},
	}

	ds := ToDomainEntrySlice(ms)

	require.Len(t, ds, 2)
	assert.Equal(t, "e1", ds[0].EntryID)
	assert.Empty(t, ds[0].ReviewedBy)
	assert.Equal(t, "e2", ds[1].EntryID)
	assert.Equal(t, reviewer, ds[1].ReviewedBy)
	assert.Equal(t, domain.Approved, ds[1].Status)
}

func TestEntryLineSlicesRoundTrip(t *testing.T) {
	ds := []domain.JournalEntryLine{
		{LineID: "l1", EntryID: "e1", AccountID: "a1", Debit: decimal.NewFromInt(100), Credit: decimal.Zero, DisplayOrder: 1},
		{LineID: "l2", EntryID: "e1", AccountID: "a2", Debit: decimal.Zero, Credit: decimal.NewFromInt(100), DisplayOrder: 2},
	}

	ms := ToModelEntryLineSlice(ds)
	require.Len(t, ms, 2)
	assert.Equal(t, "l1", ms[0].LineID)
	assert.True(t, decimal.NewFromInt(100).Equal(ms[0].Debit))

	back := ToDomainEntryLineSlice(ms)
	require.Len(t, back, 2)
	assert.Equal(t, ds[0].LineID, back[0].LineID)
	assert.Equal(t, ds[1].AccountID, back[1].AccountID)
	assert.True(t, ds[1].Credit.Equal(back[1].Credit))
}

func TestToDomainAccountSlice(t *testing.T) {
	ms := []models.Account{
		{AccountID: "a1", AccountNumber: "1000", NormalSide: "DEBIT", Statement: "BS", Balance: decimal.NewFromInt(50)},
		{AccountID: "a2", AccountNumber: "4000", NormalSide: "CREDIT", Statement: "IS"},
	}

	ds := ToDomainAccountSlice(ms)

	require.Len(t, ds, 2)
	assert.Equal(t, domain.DebitSide, ds[0].NormalSide)
	assert.Equal(t, domain.BalanceSheet, ds[0].Statement)
	assert.True(t, decimal.NewFromInt(50).Equal(ds[0].Balance))
	assert.Equal(t, domain.CreditSide, ds[1].NormalSide)
	assert.Equal(t, domain.IncomeStatement, ds[1].Statement)
}
