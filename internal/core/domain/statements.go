package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is a single account's contribution to the trial balance,
// split into debit/credit columns by normal side and balance sign.
type TrialBalanceRow struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	Category      AccountCategory `json:"category"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// TrialBalanceReport is a post-closing trial balance: REVENUE and EXPENSE
// accounts are reported as already closed to retained earnings.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// StatementLine is an account with its reported amount on a statement.
type StatementLine struct {
	AccountID     string          `json:"accountID"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	Amount        decimal.Decimal `json:"amount"`
}

// IncomeStatementReport summarises revenue and expenses for a period.
type IncomeStatementReport struct {
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Revenue       []StatementLine `json:"revenue"`
	Expenses      []StatementLine `json:"expenses"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport summarises assets, liabilities and equity as of a date.
// Contra-asset accounts (ASSET category, CREDIT normal side) subtract from
// total assets.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []StatementLine `json:"assets"`
	Liabilities      []StatementLine `json:"liabilities"`
	Equity           []StatementLine `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	IsBalanced       bool            `json:"isBalanced"`
}

// RetainedEarningsReport derives the ending retained earnings for a period.
type RetainedEarningsReport struct {
	StartDate          time.Time       `json:"startDate"`
	EndDate            time.Time       `json:"endDate"`
	BeginningBalance   decimal.Decimal `json:"beginningBalance"`
	NetIncomeForPeriod decimal.Decimal `json:"netIncomeForPeriod"`
	EndingBalance      decimal.Decimal `json:"endingBalance"`
}
