package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/openbooks/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
	"github.com/openbooks/bookkeeping_app/internal/utils/accounting"
)

// statementService derives financial statements from current account state.
// Pure projections over the chart of accounts; nothing here writes.
type statementService struct {
	BaseService
	accountRepo portsrepo.AccountReader
}

// NewStatementService creates a new StatementSvcFacade implementation.
func NewStatementService(accountRepo portsrepo.AccountReader) portssvc.StatementSvcFacade {
	return &statementService{accountRepo: accountRepo}
}

var _ portssvc.StatementSvcFacade = (*statementService)(nil)

// naturalSide is the conventional normal side for a category. An account whose
// normal side differs from its category's natural side is a contra account and
// reports with inverted sign.
func naturalSide(category domain.AccountCategory) domain.NormalSide {
	switch category {
	case domain.Asset, domain.Expense:
		return domain.DebitSide
	default:
		return domain.CreditSide
	}
}

// reportedAmount is the balance as it appears on a statement: positive when
// the account carries value on its category's natural side, negative for
// contra accounts.
func reportedAmount(account domain.Account) decimal.Decimal {
	if account.NormalSide == naturalSide(account.Category) {
		return account.Balance
	}
	return account.Balance.Neg()
}

func statementLine(account domain.Account, amount decimal.Decimal) domain.StatementLine {
	return domain.StatementLine{
		AccountID:     account.AccountID,
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		Amount:        amount,
	}
}

// TrialBalance produces a post-closing trial balance: REVENUE and EXPENSE
// accounts contribute zero because their balances are treated as already
// closed to retained earnings.
func (s *statementService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	if asOf.IsZero() {
		return nil, apperrors.ErrMissingAsOfDate
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		s.LogError(ctx, err, "failed to load accounts for trial balance")
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        []domain.TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, account := range accounts {
		balance := account.Balance
		if account.Category == domain.Revenue || account.Category == domain.Expense {
			balance = decimal.Zero
		}
		if balance.IsZero() {
			continue
		}

		row := domain.TrialBalanceRow{
			AccountID:     account.AccountID,
			AccountNumber: account.AccountNumber,
			AccountName:   account.AccountName,
			Category:      account.Category,
		}

		// A positive balance sits in the account's normal column; a negative
		// one flips to the opposite column with its sign dropped.
		side := account.NormalSide
		if balance.IsNegative() {
			balance = balance.Abs()
			if side == domain.DebitSide {
				side = domain.CreditSide
			} else {
				side = domain.DebitSide
			}
		}
		if side == domain.DebitSide {
			row.Debit = balance
			report.TotalDebit = report.TotalDebit.Add(balance)
		} else {
			row.Credit = balance
			report.TotalCredit = report.TotalCredit.Add(balance)
		}
		report.Rows = append(report.Rows, row)
	}

	return report, nil
}

// netIncome sums revenue minus expenses from current account state.
func netIncome(accounts []domain.Account) (revenue, expenses decimal.Decimal) {
	revenue, expenses = decimal.Zero, decimal.Zero
	for _, account := range accounts {
		switch account.Category {
		case domain.Revenue:
			revenue = revenue.Add(reportedAmount(account))
		case domain.Expense:
			expenses = expenses.Add(reportedAmount(account))
		}
	}
	return revenue, expenses
}

// IncomeStatement totals revenue and expense balances for the period.
func (s *statementService) IncomeStatement(ctx context.Context, start, end time.Time) (*domain.IncomeStatementReport, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.ErrMissingDateRange
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		s.LogError(ctx, err, "failed to load accounts for income statement")
		return nil, err
	}

	report := &domain.IncomeStatementReport{
		StartDate:     start,
		EndDate:       end,
		Revenue:       []domain.StatementLine{},
		Expenses:      []domain.StatementLine{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	for _, account := range accounts {
		amount := reportedAmount(account)
		switch account.Category {
		case domain.Revenue:
			report.TotalRevenue = report.TotalRevenue.Add(amount)
			if !amount.IsZero() {
				report.Revenue = append(report.Revenue, statementLine(account, amount))
			}
		case domain.Expense:
			report.TotalExpenses = report.TotalExpenses.Add(amount)
			if !amount.IsZero() {
				report.Expenses = append(report.Expenses, statementLine(account, amount))
			}
		}
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)

	return report, nil
}

// BalanceSheet reports assets, liabilities and equity. Contra-asset accounts
// subtract from total assets. Unclosed net income is shown as a synthetic
// equity line so the sheet balances mid-period.
func (s *statementService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	if asOf.IsZero() {
		return nil, apperrors.ErrMissingAsOfDate
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		s.LogError(ctx, err, "failed to load accounts for balance sheet")
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           []domain.StatementLine{},
		Liabilities:      []domain.StatementLine{},
		Equity:           []domain.StatementLine{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	for _, account := range accounts {
		amount := reportedAmount(account)
		switch account.Category {
		case domain.Asset:
			report.TotalAssets = report.TotalAssets.Add(amount)
			if !amount.IsZero() {
				report.Assets = append(report.Assets, statementLine(account, amount))
			}
		case domain.Liability:
			report.TotalLiabilities = report.TotalLiabilities.Add(amount)
			if !amount.IsZero() {
				report.Liabilities = append(report.Liabilities, statementLine(account, amount))
			}
		case domain.Equity:
			report.TotalEquity = report.TotalEquity.Add(amount)
			if !amount.IsZero() {
				report.Equity = append(report.Equity, statementLine(account, amount))
			}
		}
	}

	revenue, expenses := netIncome(accounts)
	net := revenue.Sub(expenses)
	if !net.IsZero() {
		report.Equity = append(report.Equity, domain.StatementLine{
			AccountName: "Net income",
			Amount:      net,
		})
		report.TotalEquity = report.TotalEquity.Add(net)
	}

	report.IsBalanced = report.TotalAssets.
		Sub(report.TotalLiabilities.Add(report.TotalEquity)).
		Abs().
		LessThanOrEqual(accounting.BalanceTolerance)

	return report, nil
}

// RetainedEarnings derives the ending retained earnings: the balances of the
// accounts assigned to the retained earnings statement plus the period's net
// income.
func (s *statementService) RetainedEarnings(ctx context.Context, start, end time.Time) (*domain.RetainedEarningsReport, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.ErrMissingDateRange
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, true)
	if err != nil {
		s.LogError(ctx, err, "failed to load accounts for retained earnings")
		return nil, err
	}

	beginning := decimal.Zero
	for _, account := range accounts {
		if account.Statement == domain.RetainedEarnings {
			beginning = beginning.Add(reportedAmount(account))
		}
	}
	revenue, expenses := netIncome(accounts)
	net := revenue.Sub(expenses)

	return &domain.RetainedEarningsReport{
		StartDate:          start,
		EndDate:            end,
		BeginningBalance:   beginning,
		NetIncomeForPeriod: net,
		EndingBalance:      beginning.Add(net),
	}, nil
}
