package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAccountCanDeactivate(t *testing.T) {
	zero := Account{Balance: decimal.Zero}
	assert.True(t, zero.CanDeactivate())

	carrying := Account{Balance: decimal.NewFromInt(10)}
	assert.False(t, carrying.CanDeactivate())

	negative := Account{Balance: decimal.NewFromInt(-10)}
	assert.False(t, negative.CanDeactivate())
}

func TestAccountActiveOn(t *testing.T) {
	from := day(2024, 6, 1)
	to := day(2024, 6, 30)

	windowed := Account{IsActive: true, DeactivateFrom: &from, DeactivateTo: &to}

	assert.True(t, windowed.ActiveOn(day(2024, 5, 31)), "before the window")
	assert.False(t, windowed.ActiveOn(day(2024, 6, 1)), "window start is inclusive")
	assert.False(t, windowed.ActiveOn(day(2024, 6, 15)))
	assert.False(t, windowed.ActiveOn(day(2024, 6, 30)), "window end is inclusive")
	assert.True(t, windowed.ActiveOn(day(2024, 7, 1)), "after the window")

	flaggedOff := Account{IsActive: false}
	assert.False(t, flaggedOff.ActiveOn(day(2024, 6, 15)))

	plain := Account{IsActive: true}
	assert.True(t, plain.ActiveOn(day(2024, 6, 15)))
}

func TestEntryStatusIsTerminal(t *testing.T) {
	assert.False(t, Pending.IsTerminal())
	assert.True(t, Approved.IsTerminal())
	assert.True(t, Rejected.IsTerminal())
}

func TestDiffFields(t *testing.T) {
	before := map[string]string{"name": "Cash", "comment": "old", "gone": "x"}
	after := map[string]string{"name": "Cash on hand", "comment": "old", "added": "y"}

	changes := DiffFields(before, after)

	assert.Equal(t, []FieldChange{
		{Field: "added", Before: "", After: "y"},
		{Field: "gone", Before: "x", After: ""},
		{Field: "name", Before: "Cash", After: "Cash on hand"},
	}, changes)
}

func TestDiffFieldsNilSnapshots(t *testing.T) {
	assert.Empty(t, DiffFields(nil, nil))

	created := DiffFields(nil, map[string]string{"name": "Cash"})
	assert.Equal(t, []FieldChange{{Field: "name", After: "Cash"}}, created)
}
