package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/openbooks/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
	"github.com/openbooks/bookkeeping_app/internal/dto"
	"github.com/openbooks/bookkeeping_app/internal/utils/accounting"
)

// accountService provides chart-of-accounts operations.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	entryRepo   portsrepo.EntryReader
	events      portssvc.EventSink
	now         func() time.Time
}

// AccountServiceOption configures the account service.
type AccountServiceOption func(*accountService)

// WithAccountClock overrides the time source, for tests.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) { s.now = now }
}

// NewAccountService creates a new AccountSvcFacade implementation. The entry
// reader feeds the dry-run reconciliation check.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, entryRepo portsrepo.EntryReader, events portssvc.EventSink, opts ...AccountServiceOption) portssvc.AccountSvcFacade {
	s := &accountService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		events:      events,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// isDigits reports whether the string is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// accountSnapshot flattens the audit-relevant fields of an account for
// change-event diffing.
func accountSnapshot(a *domain.Account) map[string]string {
	if a == nil {
		return nil
	}
	snap := map[string]string{
		"accountNumber": a.AccountNumber,
		"accountName":   a.AccountName,
		"description":   a.Description,
		"comment":       a.Comment,
		"category":      string(a.Category),
		"subcategory":   a.Subcategory,
		"normalSide":    string(a.NormalSide),
		"statement":     string(a.Statement),
		"displayOrder":  strconv.Itoa(a.DisplayOrder),
		"isActive":      strconv.FormatBool(a.IsActive),
	}
	if a.DeactivateFrom != nil {
		snap["deactivateFrom"] = a.DeactivateFrom.Format("2006-01-02")
	}
	if a.DeactivateTo != nil {
		snap["deactivateTo"] = a.DeactivateTo.Format("2006-01-02")
	}
	return snap
}

func (s *accountService) publish(ctx context.Context, accountID string, action domain.ChangeAction, actorID string, before, after *domain.Account) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, domain.ChangeEvent{
		EntityType: "account",
		EntityID:   accountID,
		Action:     action,
		ActorID:    actorID,
		OccurredAt: s.now(),
		Changes:    domain.DiffFields(accountSnapshot(before), accountSnapshot(after)),
	})
}

// CreateAccount validates and persists a new chart-of-accounts row.
// The running balance starts at the initial balance.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !isDigits(req.AccountNumber) {
		return nil, apperrors.ErrInvalidAccountNumber
	}

	now := s.now()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		AccountNumber:  req.AccountNumber,
		AccountName:    req.AccountName,
		Description:    req.Description,
		Comment:        req.Comment,
		Category:       req.Category,
		Subcategory:    req.Subcategory,
		NormalSide:     req.NormalSide,
		Statement:      req.Statement,
		InitialBalance: req.InitialBalance,
		Balance:        req.InitialBalance,
		IsActive:       true,
		DisplayOrder:   req.DisplayOrder,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "failed to save account", slog.String("account_number", req.AccountNumber))
		return nil, err
	}

	s.publish(ctx, account.AccountID, domain.ActionCreated, userID, nil, &account)
	s.LogInfo(ctx, "account created", slog.String("account_id", account.AccountID), slog.String("account_number", account.AccountNumber))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "failed to find account by number", slog.String("account_number", accountNumber))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

func (s *accountService) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

// UpdateAccount changes descriptive fields only. The financial fields and the
// classification (category, normal side, statement) are immutable after
// creation; posted history must stay interpretable.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	before := *account

	if req.AccountName != nil {
		account.AccountName = *req.AccountName
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.Comment != nil {
		account.Comment = *req.Comment
	}
	if req.Subcategory != nil {
		account.Subcategory = *req.Subcategory
	}
	if req.DisplayOrder != nil {
		account.DisplayOrder = *req.DisplayOrder
	}
	account.LastUpdatedAt = s.now()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.publish(ctx, accountID, domain.ActionUpdated, userID, &before, account)
	return account, nil
}

// DeactivateAccount takes a zero-balance account out of the active chart,
// either unconditionally or for the supplied window.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, req dto.DeactivateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.CanDeactivate() {
		return nil, fmt.Errorf("account %s has balance %s: %w", account.AccountNumber, account.Balance.StringFixed(2), apperrors.ErrNonZeroBalance)
	}
	if (req.From == nil) != (req.To == nil) {
		return nil, fmt.Errorf("%w: a deactivation window needs both dates", apperrors.ErrValidation)
	}

	before := *account
	now := s.now()

	// With a window the flag tracks whether today falls inside it; the window
	// itself stays on the row so the flag can be re-derived on any later day.
	active := false
	if req.From != nil && req.To != nil {
		if req.To.Before(*req.From) {
			return nil, fmt.Errorf("%w: deactivation window end precedes start", apperrors.ErrValidation)
		}
		probe := domain.Account{IsActive: true, DeactivateFrom: req.From, DeactivateTo: req.To}
		active = probe.ActiveOn(now)
	}

	if err := s.accountRepo.SetAccountActivation(ctx, accountID, active, req.From, req.To, userID, now); err != nil {
		s.LogError(ctx, err, "failed to deactivate account", slog.String("account_id", accountID))
		return nil, err
	}

	account.IsActive = active
	account.DeactivateFrom = req.From
	account.DeactivateTo = req.To
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	s.publish(ctx, accountID, domain.ActionDeactivated, userID, &before, account)
	s.LogInfo(ctx, "account deactivated", slog.String("account_id", accountID), slog.Bool("windowed", req.From != nil))
	return account, nil
}

// ActivateAccount clears any deactivation window and reactivates the account.
func (s *accountService) ActivateAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	before := *account
	now := s.now()

	if err := s.accountRepo.SetAccountActivation(ctx, accountID, true, nil, nil, userID, now); err != nil {
		s.LogError(ctx, err, "failed to activate account", slog.String("account_id", accountID))
		return nil, err
	}

	account.IsActive = true
	account.DeactivateFrom = nil
	account.DeactivateTo = nil
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	s.publish(ctx, accountID, domain.ActionActivated, userID, &before, account)
	return account, nil
}

// RecalculateBalances rebuilds every account's running totals from its initial
// balance and the approved lines. Recovery tooling; the posting engine keeps
// the totals correct in normal operation. A dry run replays the approved
// lines in memory and returns the number of drifted accounts without writing.
func (s *accountService) RecalculateBalances(ctx context.Context, userID string, dryRun bool) (int, error) {
	if dryRun {
		return s.countDriftedAccounts(ctx)
	}
	count, err := s.accountRepo.RecalculateBalances(ctx, userID, s.now())
	if err != nil {
		s.LogError(ctx, err, "balance recalculation failed")
		return 0, err
	}
	s.LogInfo(ctx, "balances recalculated", slog.Int("accounts", count))
	return count, nil
}

// countDriftedAccounts compares each account's stored running totals against
// a replay of its approved lines.
func (s *accountService) countDriftedAccounts(ctx context.Context) (int, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, false)
	if err != nil {
		s.LogError(ctx, err, "drift check failed to list accounts")
		return 0, err
	}

	drifted := 0
	for _, account := range accounts {
		lines, err := s.entryRepo.FindApprovedLinesByAccountID(ctx, account.AccountID)
		if err != nil {
			s.LogError(ctx, err, "drift check failed to load lines", slog.String("account_id", account.AccountID))
			return 0, err
		}
		debit, credit, balance := accounting.Replay(account.InitialBalance, account.NormalSide, lines)
		if !debit.Equal(account.Debit) || !credit.Equal(account.Credit) || !balance.Equal(account.Balance) {
			s.LogInfo(ctx, "account totals drifted",
				slog.String("account_id", account.AccountID),
				slog.String("stored_balance", account.Balance.String()),
				slog.String("replayed_balance", balance.String()),
			)
			drifted++
		}
	}
	return drifted, nil
}

// ImportAccounts writes full account rows, financial fields included. This is
// the documented bypass of the no-direct-balance-edits rule, for seeding and
// migration only.
func (s *accountService) ImportAccounts(ctx context.Context, req dto.ImportAccountsRequest, userID string) (int, error) {
	now := s.now()
	for _, row := range req.Accounts {
		if !isDigits(row.AccountNumber) {
			return 0, fmt.Errorf("account %q: %w", row.AccountNumber, apperrors.ErrInvalidAccountNumber)
		}
	}

	imported := 0
	for _, row := range req.Accounts {
		active := true
		if row.IsActive != nil {
			active = *row.IsActive
		}
		account := domain.Account{
			AccountID:      uuid.NewString(),
			AccountNumber:  row.AccountNumber,
			AccountName:    row.AccountName,
			Description:    row.Description,
			Comment:        row.Comment,
			Category:       row.Category,
			Subcategory:    row.Subcategory,
			NormalSide:     row.NormalSide,
			Statement:      row.Statement,
			InitialBalance: row.InitialBalance,
			Debit:          row.Debit,
			Credit:         row.Credit,
			Balance:        row.Balance,
			IsActive:       active,
			DisplayOrder:   row.DisplayOrder,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.accountRepo.ImportAccount(ctx, account); err != nil {
			s.LogError(ctx, err, "account import failed", slog.String("account_number", row.AccountNumber), slog.Int("imported_so_far", imported))
			return imported, err
		}
		imported++
	}

	s.LogInfo(ctx, "accounts imported", slog.Int("count", imported))
	return imported, nil
}
