package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
	"github.com/openbooks/bookkeeping_app/internal/core/services"
)

type StatementServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.StatementSvcFacade
	asOf     time.Time
	start    time.Time
	end      time.Time
}

func (suite *StatementServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewStatementService(suite.mockRepo)
	suite.asOf = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = suite.asOf
}

func account(number, name string, category domain.AccountCategory, side domain.NormalSide, statement domain.StatementType, balance int64) domain.Account {
	return domain.Account{
		AccountID:     number,
		AccountNumber: number,
		AccountName:   name,
		Category:      category,
		NormalSide:    side,
		Statement:     statement,
		Balance:       decimal.NewFromInt(balance),
		IsActive:      true,
	}
}

// midPeriodChart is a consistent ledger with unclosed revenue and expenses:
// stock issue 1000, loan 300, equipment 500 bought cash, 100 depreciation,
// revenue 600, other expenses 400.
func midPeriodChart() []domain.Account {
	return []domain.Account{
		account("1000", "Cash", domain.Asset, domain.DebitSide, domain.BalanceSheet, 1000),
		account("1500", "Equipment", domain.Asset, domain.DebitSide, domain.BalanceSheet, 500),
		account("1510", "Accumulated depreciation", domain.Asset, domain.CreditSide, domain.BalanceSheet, 100),
		account("2000", "Bank loan", domain.Liability, domain.CreditSide, domain.BalanceSheet, 300),
		account("3000", "Common stock", domain.Equity, domain.CreditSide, domain.BalanceSheet, 1000),
		account("3900", "Retained earnings", domain.Equity, domain.CreditSide, domain.RetainedEarnings, 0),
		account("4000", "Sales revenue", domain.Revenue, domain.CreditSide, domain.IncomeStatement, 600),
		account("5000", "Operating expenses", domain.Expense, domain.DebitSide, domain.IncomeStatement, 400),
		account("5100", "Depreciation expense", domain.Expense, domain.DebitSide, domain.IncomeStatement, 100),
	}
}

// closedChart is the same ledger after closing: income moved into retained
// earnings, revenue and expense accounts at zero.
func closedChart() []domain.Account {
	return []domain.Account{
		account("1000", "Cash", domain.Asset, domain.DebitSide, domain.BalanceSheet, 1000),
		account("1500", "Equipment", domain.Asset, domain.DebitSide, domain.BalanceSheet, 500),
		account("1510", "Accumulated depreciation", domain.Asset, domain.CreditSide, domain.BalanceSheet, 100),
		account("2000", "Bank loan", domain.Liability, domain.CreditSide, domain.BalanceSheet, 300),
		account("3000", "Common stock", domain.Equity, domain.CreditSide, domain.BalanceSheet, 1000),
		account("3900", "Retained earnings", domain.Equity, domain.CreditSide, domain.RetainedEarnings, 100),
		account("4000", "Sales revenue", domain.Revenue, domain.CreditSide, domain.IncomeStatement, 0),
		account("5000", "Operating expenses", domain.Expense, domain.DebitSide, domain.IncomeStatement, 0),
	}
}

// --- Trial balance ---

func (suite *StatementServiceTestSuite) TestTrialBalance_PostClosing() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(closedChart(), nil).Once()

	report, err := suite.service.TrialBalance(ctx, suite.asOf)

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(1500).Equal(report.TotalDebit), "total debit: %s", report.TotalDebit)
	suite.True(decimal.NewFromInt(1500).Equal(report.TotalCredit), "total credit: %s", report.TotalCredit)
	// Zero-balance accounts never show up as rows.
	suite.Len(report.Rows, 6)
	for _, row := range report.Rows {
		suite.NotEqual(domain.Revenue, row.Category)
		suite.NotEqual(domain.Expense, row.Category)
	}
}

func (suite *StatementServiceTestSuite) TestTrialBalance_RevenueAndExpenseTreatedAsClosed() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(midPeriodChart(), nil).Once()

	report, err := suite.service.TrialBalance(ctx, suite.asOf)

	suite.Require().NoError(err)
	for _, row := range report.Rows {
		suite.NotEqual("4000", row.AccountNumber, "revenue must contribute zero")
		suite.NotEqual("5000", row.AccountNumber, "expenses must contribute zero")
	}
}

func (suite *StatementServiceTestSuite) TestTrialBalance_NegativeBalanceFlipsColumn() {
	ctx := context.Background()
	overdrawn := account("1000", "Cash", domain.Asset, domain.DebitSide, domain.BalanceSheet, -200)
	suite.mockRepo.On("ListAccounts", ctx, true).Return([]domain.Account{overdrawn}, nil).Once()

	report, err := suite.service.TrialBalance(ctx, suite.asOf)

	suite.Require().NoError(err)
	suite.Require().Len(report.Rows, 1)
	suite.True(report.Rows[0].Debit.IsZero())
	suite.True(decimal.NewFromInt(200).Equal(report.Rows[0].Credit), "an overdrawn debit-normal account reports in the credit column")
}

func (suite *StatementServiceTestSuite) TestTrialBalance_RequiresAsOfDate() {
	_, err := suite.service.TrialBalance(context.Background(), time.Time{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrMissingAsOfDate)
}

// --- Income statement ---

func (suite *StatementServiceTestSuite) TestIncomeStatement() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(midPeriodChart(), nil).Once()

	report, err := suite.service.IncomeStatement(ctx, suite.start, suite.end)

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(600).Equal(report.TotalRevenue))
	suite.True(decimal.NewFromInt(500).Equal(report.TotalExpenses))
	suite.True(decimal.NewFromInt(100).Equal(report.NetIncome))
	suite.Len(report.Revenue, 1)
	suite.Len(report.Expenses, 2)
}

func (suite *StatementServiceTestSuite) TestIncomeStatement_RequiresBothDates() {
	_, err := suite.service.IncomeStatement(context.Background(), suite.start, time.Time{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrMissingDateRange)
}

// --- Balance sheet ---

func (suite *StatementServiceTestSuite) TestBalanceSheet_MidPeriodBalancesViaNetIncome() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(midPeriodChart(), nil).Once()

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(1400).Equal(report.TotalAssets), "contra depreciation subtracts: %s", report.TotalAssets)
	suite.True(decimal.NewFromInt(300).Equal(report.TotalLiabilities))
	suite.True(decimal.NewFromInt(1100).Equal(report.TotalEquity))
	suite.True(report.IsBalanced)

	// The unclosed income shows as a synthetic equity line.
	last := report.Equity[len(report.Equity)-1]
	suite.Equal("Net income", last.AccountName)
	suite.True(decimal.NewFromInt(100).Equal(last.Amount))
}

func (suite *StatementServiceTestSuite) TestBalanceSheet_ClosedBooksHaveNoSyntheticLine() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(closedChart(), nil).Once()

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)

	suite.Require().NoError(err)
	suite.True(report.IsBalanced)
	for _, line := range report.Equity {
		suite.NotEqual("Net income", line.AccountName)
	}
}

func (suite *StatementServiceTestSuite) TestBalanceSheet_ContraAssetReportsNegative() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(midPeriodChart(), nil).Once()

	report, err := suite.service.BalanceSheet(ctx, suite.asOf)

	suite.Require().NoError(err)
	var contra *domain.StatementLine
	for i := range report.Assets {
		if report.Assets[i].AccountNumber == "1510" {
			contra = &report.Assets[i]
		}
	}
	suite.Require().NotNil(contra)
	suite.True(decimal.NewFromInt(-100).Equal(contra.Amount))
}

func (suite *StatementServiceTestSuite) TestBalanceSheet_RequiresAsOfDate() {
	_, err := suite.service.BalanceSheet(context.Background(), time.Time{})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrMissingAsOfDate)
}

// --- Retained earnings ---

func (suite *StatementServiceTestSuite) TestRetainedEarnings_MidPeriod() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(midPeriodChart(), nil).Once()

	report, err := suite.service.RetainedEarnings(ctx, suite.start, suite.end)

	suite.Require().NoError(err)
	suite.True(report.BeginningBalance.IsZero())
	suite.True(decimal.NewFromInt(100).Equal(report.NetIncomeForPeriod))
	suite.True(decimal.NewFromInt(100).Equal(report.EndingBalance))
}

func (suite *StatementServiceTestSuite) TestRetainedEarnings_AfterClosing() {
	ctx := context.Background()
	suite.mockRepo.On("ListAccounts", ctx, true).Return(closedChart(), nil).Once()

	report, err := suite.service.RetainedEarnings(ctx, suite.start, suite.end)

	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(100).Equal(report.BeginningBalance))
	suite.True(report.NetIncomeForPeriod.IsZero())
	suite.True(decimal.NewFromInt(100).Equal(report.EndingBalance))
}

func (suite *StatementServiceTestSuite) TestRetainedEarnings_RequiresBothDates() {
	_, err := suite.service.RetainedEarnings(context.Background(), time.Time{}, suite.end)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrMissingDateRange)
}

func TestStatementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatementServiceTestSuite))
}
