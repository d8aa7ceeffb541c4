package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/openbooks/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
	"github.com/openbooks/bookkeeping_app/internal/dto"
	"github.com/openbooks/bookkeeping_app/internal/utils/accounting"
)

// entryService drives the journal entry state machine and orchestrates the
// posting engine on approval.
type entryService struct {
	BaseService
	entryRepo   portsrepo.EntryRepositoryFacade
	accountRepo portsrepo.AccountReader
	policy      domain.ApprovalPolicy
	events      portssvc.EventSink
	notifier    portssvc.Notifier
	now         func() time.Time
}

// EntryServiceOption configures the entry service.
type EntryServiceOption func(*entryService)

// WithEntryClock overrides the time source, for tests.
func WithEntryClock(now func() time.Time) EntryServiceOption {
	return func(s *entryService) { s.now = now }
}

// WithApprovalPolicy swaps the approval policy. Defaults to the role-based
// policy: managers and administrators approve, and auto-approve their own
// entries.
func WithApprovalPolicy(policy domain.ApprovalPolicy) EntryServiceOption {
	return func(s *entryService) { s.policy = policy }
}

// NewEntryService creates a new EntrySvcFacade implementation.
func NewEntryService(entryRepo portsrepo.EntryRepositoryFacade, accountRepo portsrepo.AccountReader, events portssvc.EventSink, notifier portssvc.Notifier, opts ...EntryServiceOption) portssvc.EntrySvcFacade {
	s := &entryService{
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		policy:      domain.RolePolicy{},
		events:      events,
		notifier:    notifier,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

func (s *entryService) publish(ctx context.Context, entryID string, action domain.ChangeAction, actorID string, changes []domain.FieldChange) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, domain.ChangeEvent{
		EntityType: "journal_entry",
		EntityID:   entryID,
		Action:     action,
		ActorID:    actorID,
		OccurredAt: s.now(),
		Changes:    changes,
	})
}

// buildLines materialises request lines into domain lines with fresh IDs and
// insertion-order display ordering.
func (s *entryService) buildLines(reqLines []dto.CreateEntryLineRequest, entryID, userID string, now time.Time) []domain.JournalEntryLine {
	lines := make([]domain.JournalEntryLine, len(reqLines))
	for i, rl := range reqLines {
		lines[i] = domain.JournalEntryLine{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountID:    rl.AccountID,
			Description:  rl.Description,
			Debit:        rl.Debit,
			Credit:       rl.Credit,
			DisplayOrder: i,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	return lines
}

// resolveAccounts loads and checks the accounts referenced by a line set:
// every account must exist and be active on the given day.
func (s *entryService) resolveAccounts(ctx context.Context, lines []domain.JournalEntryLine, today time.Time) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; !ok {
			seen[line.AccountID] = struct{}{}
			ids = append(ids, line.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for entry: %w", err)
	}
	for _, id := range ids {
		account, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrMissingAccount)
		}
		if !account.ActiveOn(today) {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, account.AccountNumber)
		}
	}
	return accounts, nil
}

func normalSides(accounts map[string]domain.Account) map[string]domain.NormalSide {
	sides := make(map[string]domain.NormalSide, len(accounts))
	for id, account := range accounts {
		sides[id] = account.NormalSide
	}
	return sides
}

// CreateEntry validates the line set and persists the entry. When the approval
// policy auto-approves the creator, the entry is persisted APPROVED and its
// lines are posted in the same transaction.
func (s *entryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string, role domain.Role) (*domain.JournalEntry, error) {
	now := s.now()
	entryID := uuid.NewString()
	lines := s.buildLines(req.Lines, entryID, creatorUserID, now)

	accounts, err := s.resolveAccounts(ctx, lines, now)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateLines(lines, accounts); err != nil {
		return nil, err
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Status:      domain.Pending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	var deltas map[string]accounting.BalanceDelta
	if s.policy.AutoApproves(role) {
		entry.Status = domain.Approved
		entry.ReviewedBy = creatorUserID
		entry.ReviewedAt = &now
		deltas = accounting.EntryDeltas(lines, normalSides(accounts))
	}

	if err := s.entryRepo.SaveEntry(ctx, entry, lines, deltas); err != nil {
		s.LogError(ctx, err, "failed to save entry", slog.String("entry_id", entryID))
		if deltas != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrPostingFailed, err)
		}
		return nil, err
	}

	s.publish(ctx, entryID, domain.ActionCreated, creatorUserID, []domain.FieldChange{
		{Field: "status", After: string(entry.Status)},
		{Field: "lineCount", After: strconv.Itoa(len(lines))},
	})
	if entry.Status == domain.Approved {
		s.publish(ctx, entryID, domain.ActionApproved, creatorUserID, []domain.FieldChange{
			{Field: "status", Before: string(domain.Pending), After: string(domain.Approved)},
		})
		if s.notifier != nil {
			s.notifier.EntryApproved(ctx, &entry)
		}
	}

	s.LogInfo(ctx, "entry created", slog.String("entry_id", entryID), slog.String("status", string(entry.Status)))
	entry.Lines = lines
	return &entry, nil
}

func (s *entryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "failed to load entry lines", slog.String("entry_id", entryID))
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

func (s *entryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	var token *string
	if params.NextToken != "" {
		token = &params.NextToken
	}
	entries, nextToken, err := s.entryRepo.ListEntries(ctx, params.Status, params.Limit, token)
	if err != nil {
		s.LogError(ctx, err, "failed to list entries")
		return nil, err
	}

	entryIDs := make([]string, len(entries))
	for i, e := range entries {
		entryIDs[i] = e.EntryID
	}
	linesByEntry, err := s.entryRepo.FindLinesByEntryIDs(ctx, entryIDs)
	if err != nil {
		s.LogError(ctx, err, "failed to load lines for entry page")
		return nil, err
	}

	resp := &dto.ListEntriesResponse{Entries: make([]dto.EntryResponse, len(entries))}
	for i, e := range entries {
		e.Lines = linesByEntry[e.EntryID]
		resp.Entries[i] = dto.ToEntryResponse(&e)
	}
	if nextToken != nil {
		resp.NextToken = *nextToken
	}
	return resp, nil
}

// UpdateEntry replaces the line set of a PENDING entry after full
// revalidation. Approved and rejected entries are immutable.
func (s *entryService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Pending {
		return nil, fmt.Errorf("entry %s is %s: %w", entryID, entry.Status, apperrors.ErrNotPending)
	}

	now := s.now()
	if req.EntryDate != nil {
		entry.EntryDate = *req.EntryDate
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID

	var lines []domain.JournalEntryLine
	if req.Lines != nil {
		lines = s.buildLines(req.Lines, entryID, userID, now)
	} else {
		lines, err = s.entryRepo.FindLinesByEntryID(ctx, entryID)
		if err != nil {
			return nil, err
		}
	}

	accounts, err := s.resolveAccounts(ctx, lines, now)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateLines(lines, accounts); err != nil {
		return nil, err
	}

	if err := s.entryRepo.ReplaceEntryLines(ctx, *entry, lines); err != nil {
		s.LogError(ctx, err, "failed to update entry", slog.String("entry_id", entryID))
		return nil, err
	}

	s.publish(ctx, entryID, domain.ActionUpdated, userID, []domain.FieldChange{
		{Field: "lineCount", After: strconv.Itoa(len(lines))},
	})
	entry.Lines = lines
	return entry, nil
}

// DeleteEntry removes a PENDING entry and its lines.
func (s *entryService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Status != domain.Pending {
		return fmt.Errorf("entry %s is %s: %w", entryID, entry.Status, apperrors.ErrNotPending)
	}

	if err := s.entryRepo.DeleteEntry(ctx, entryID); err != nil {
		s.LogError(ctx, err, "failed to delete entry", slog.String("entry_id", entryID))
		return err
	}

	s.publish(ctx, entryID, domain.ActionDeleted, userID, nil)
	s.LogInfo(ctx, "entry deleted", slog.String("entry_id", entryID))
	return nil
}

// ApproveEntry transitions PENDING -> APPROVED and posts every line to its
// account. The status flip and all balance updates are one atomic unit; the
// repository locks the account rows so concurrent approvals serialize.
func (s *entryService) ApproveEntry(ctx context.Context, entryID string, approverUserID string, role domain.Role) (*domain.JournalEntry, error) {
	if !s.policy.CanApprove(role) {
		return nil, apperrors.ErrForbidden
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Pending {
		return nil, fmt.Errorf("entry %s is %s: %w", entryID, entry.Status, apperrors.ErrNotPending)
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	accounts, err := s.resolveAccounts(ctx, lines, now)
	if err != nil {
		return nil, err
	}
	deltas := accounting.EntryDeltas(lines, normalSides(accounts))

	if err := s.entryRepo.ApproveEntry(ctx, entryID, approverUserID, now, deltas); err != nil {
		if errors.Is(err, apperrors.ErrNotPending) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "posting failed, approval rolled back", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPostingFailed, err)
	}

	entry.Status = domain.Approved
	entry.ReviewedBy = approverUserID
	entry.ReviewedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = approverUserID
	entry.Lines = lines

	s.publish(ctx, entryID, domain.ActionApproved, approverUserID, []domain.FieldChange{
		{Field: "status", Before: string(domain.Pending), After: string(domain.Approved)},
	})
	if s.notifier != nil {
		s.notifier.EntryApproved(ctx, entry)
	}

	s.LogInfo(ctx, "entry approved", slog.String("entry_id", entryID), slog.Int("accounts_posted", len(deltas)))
	return entry, nil
}

// RejectEntry transitions PENDING -> REJECTED with a mandatory reason. Account
// balances are never touched.
func (s *entryService) RejectEntry(ctx context.Context, entryID string, approverUserID string, role domain.Role, reason string) (*domain.JournalEntry, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.ErrMissingReason
	}
	if !s.policy.CanApprove(role) {
		return nil, apperrors.ErrForbidden
	}

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Pending {
		return nil, fmt.Errorf("entry %s is %s: %w", entryID, entry.Status, apperrors.ErrNotPending)
	}

	now := s.now()
	if err := s.entryRepo.RejectEntry(ctx, entryID, approverUserID, now, reason); err != nil {
		if errors.Is(err, apperrors.ErrNotPending) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "failed to reject entry", slog.String("entry_id", entryID))
		return nil, err
	}

	entry.Status = domain.Rejected
	entry.ReviewedBy = approverUserID
	entry.ReviewedAt = &now
	entry.RejectionReason = reason
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = approverUserID

	s.publish(ctx, entryID, domain.ActionRejected, approverUserID, []domain.FieldChange{
		{Field: "status", Before: string(domain.Pending), After: string(domain.Rejected)},
		{Field: "rejectionReason", After: reason},
	})
	if s.notifier != nil {
		s.notifier.EntryRejected(ctx, entry, reason)
	}

	s.LogInfo(ctx, "entry rejected", slog.String("entry_id", entryID))
	return entry, nil
}

// ListLinesByAccount returns the approved ledger lines touching one account.
func (s *entryService) ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	var token *string
	if params.NextToken != "" {
		token = &params.NextToken
	}
	lines, nextToken, err := s.entryRepo.ListLinesByAccountID(ctx, accountID, params.Limit, token)
	if err != nil {
		s.LogError(ctx, err, "failed to list ledger lines", slog.String("account_id", accountID))
		return nil, err
	}

	resp := &dto.ListLinesResponse{
		AccountID: accountID,
		Lines:     dto.ToEntryLineResponses(lines),
	}
	if nextToken != nil {
		resp.NextToken = *nextToken
	}
	return resp, nil
}
