package services

import (
	"context"
	"time"

	"github.com/openbooks/bookkeeping_app/internal/core/domain"
)

// StatementSvcFacade derives financial statements from current account state.
// All operations are read-only projections and safe to run concurrently with
// anything else.
type StatementSvcFacade interface {
	// TrialBalance produces a post-closing trial balance: REVENUE and EXPENSE
	// accounts contribute zero.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)

	// IncomeStatement requires both dates.
	IncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatementReport, error)

	// BalanceSheet requires the as-of date.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)

	// RetainedEarnings requires both dates.
	RetainedEarnings(ctx context.Context, start, end time.Time) (*domain.RetainedEarningsReport, error)
}
