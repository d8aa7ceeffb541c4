// Package accounting holds the pure arithmetic of the posting engine: the
// debit/credit validation rules for journal entry line sets and the balance
// deltas an approved entry applies to its accounts. Services and repositories
// both use it so the accounting logic stays in one place.
package accounting

import (
	"github.com/shopspring/decimal"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
)

// BalanceTolerance absorbs rounding when comparing debit and credit totals.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// BalanceDelta is the net effect of one or more lines on a single account's
// running totals.
type BalanceDelta struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// Add merges another delta into this one. Deltas are commutative per account,
// so merge order does not matter.
func (d BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Debit:   d.Debit.Add(other.Debit),
		Credit:  d.Credit.Add(other.Credit),
		Balance: d.Balance.Add(other.Balance),
	}
}

// IsZero reports whether the delta changes nothing.
func (d BalanceDelta) IsZero() bool {
	return d.Debit.IsZero() && d.Credit.IsZero() && d.Balance.IsZero()
}

// LineDelta computes the effect of a single line on an account with the given
// normal side:
//
//	debit  > 0: debit  += d; balance += d if normal side is DEBIT,  else -= d
//	credit > 0: credit += c; balance += c if normal side is CREDIT, else -= c
func LineDelta(line domain.JournalEntryLine, side domain.NormalSide) BalanceDelta {
	var delta BalanceDelta
	if line.Debit.IsPositive() {
		delta.Debit = line.Debit
		if side == domain.DebitSide {
			delta.Balance = delta.Balance.Add(line.Debit)
		} else {
			delta.Balance = delta.Balance.Sub(line.Debit)
		}
	}
	if line.Credit.IsPositive() {
		delta.Credit = line.Credit
		if side == domain.CreditSide {
			delta.Balance = delta.Balance.Add(line.Credit)
		} else {
			delta.Balance = delta.Balance.Sub(line.Credit)
		}
	}
	return delta
}

// EntryDeltas merges the per-line effects of an entry into one delta per
// account. sides must contain the normal side of every referenced account.
func EntryDeltas(lines []domain.JournalEntryLine, sides map[string]domain.NormalSide) map[string]BalanceDelta {
	deltas := make(map[string]BalanceDelta, len(lines))
	for _, line := range lines {
		deltas[line.AccountID] = deltas[line.AccountID].Add(LineDelta(line, sides[line.AccountID]))
	}
	return deltas
}

// Apply mutates the account's running totals with the delta. Only the posting
// engine calls this; administrative edits never touch financial fields.
func Apply(account *domain.Account, delta BalanceDelta) {
	account.Debit = account.Debit.Add(delta.Debit)
	account.Credit = account.Credit.Add(delta.Credit)
	account.Balance = account.Balance.Add(delta.Balance)
}

// Replay recomputes an account's running totals from scratch: the initial
// balance plus every approved line, in any order. Used by the reconciliation
// operation; the running totals are an optimization, the approved lines are
// the source of truth.
func Replay(initialBalance decimal.Decimal, side domain.NormalSide, approvedLines []domain.JournalEntryLine) (debit, credit, balance decimal.Decimal) {
	debit, credit, balance = decimal.Zero, decimal.Zero, initialBalance
	for _, line := range approvedLines {
		d := LineDelta(line, side)
		debit = debit.Add(d.Debit)
		credit = credit.Add(d.Credit)
		balance = balance.Add(d.Balance)
	}
	return debit, credit, balance
}

// ValidateLines enforces the entry invariants before a PENDING row may exist:
// at least two lines, at least one debit and one credit line, per-line amount
// shape, every account known, and debit/credit totals equal to the cent.
// knownAccounts may be nil to skip the reference check (used when the caller
// verifies accounts separately).
func ValidateLines(lines []domain.JournalEntryLine, knownAccounts map[string]domain.Account) error {
	if len(lines) == 0 {
		return apperrors.ErrNoLines
	}
	if len(lines) < 2 {
		return apperrors.ErrTooFewLines
	}

	debits := decimal.Zero
	credits := decimal.Zero
	hasDebit := false
	hasCredit := false

	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return apperrors.ErrNegativeAmount
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return apperrors.ErrBothAmountsSet
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return apperrors.ErrNoAmountSet
		}
		if knownAccounts != nil {
			if _, ok := knownAccounts[line.AccountID]; !ok {
				return apperrors.ErrMissingAccount
			}
		}
		if line.Debit.IsPositive() {
			hasDebit = true
			debits = debits.Add(line.Debit)
		} else {
			hasCredit = true
			credits = credits.Add(line.Credit)
		}
	}

	if !hasDebit {
		return apperrors.ErrNoDebit
	}
	if !hasCredit {
		return apperrors.ErrNoCredit
	}
	if debits.Sub(credits).Abs().GreaterThan(BalanceTolerance) {
		return &apperrors.OutOfBalanceError{Debits: debits, Credits: credits}
	}
	return nil
}
