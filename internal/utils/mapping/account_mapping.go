package mapping

import (
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	"github.com/openbooks/bookkeeping_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		AccountNumber:  d.AccountNumber,
		AccountName:    d.AccountName,
		Description:    d.Description,
		Comment:        d.Comment,
		Category:       models.AccountCategory(d.Category),
		Subcategory:    d.Subcategory,
		NormalSide:     string(d.NormalSide),
		Statement:      string(d.Statement),
		InitialBalance: d.InitialBalance,
		Debit:          d.Debit,
		Credit:         d.Credit,
		Balance:        d.Balance,
		IsActive:       d.IsActive,
		DeactivateFrom: d.DeactivateFrom,
		DeactivateTo:   d.DeactivateTo,
		DisplayOrder:   d.DisplayOrder,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		AccountNumber:  m.AccountNumber,
		AccountName:    m.AccountName,
		Description:    m.Description,
		Comment:        m.Comment,
		Category:       domain.AccountCategory(m.Category),
		Subcategory:    m.Subcategory,
		NormalSide:     domain.NormalSide(m.NormalSide),
		Statement:      domain.StatementType(m.Statement),
		InitialBalance: m.InitialBalance,
		Debit:          m.Debit,
		Credit:         m.Credit,
		Balance:        m.Balance,
		IsActive:       m.IsActive,
		DeactivateFrom: m.DeactivateFrom,
		DeactivateTo:   m.DeactivateTo,
		DisplayOrder:   m.DisplayOrder,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
