package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/openbooks/bookkeeping_app/internal/core/ports/repositories"
	"github.com/openbooks/bookkeeping_app/internal/models"
	"github.com/openbooks/bookkeeping_app/internal/utils/accounting"
	"github.com/openbooks/bookkeeping_app/internal/utils/mapping"
	"github.com/openbooks/bookkeeping_app/internal/utils/pagination"
)

const entryColumns = `entry_id, entry_date, description, status, reviewed_by, reviewed_at, rejection_reason, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, description, debit, credit, display_order, created_at, created_by, last_updated_at, last_updated_by`

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxEntryRepository creates a new repository for journal entry data. The
// account repository supplies row locking and balance updates for posting.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryDate,
		&m.Description,
		&m.Status,
		&m.ReviewedBy,
		&m.ReviewedAt,
		&m.RejectionReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanLine(row pgx.Row) (models.JournalEntryLine, error) {
	var m models.JournalEntryLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.Description,
		&m.Debit,
		&m.Credit,
		&m.DisplayOrder,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// insertLinesTx batch-inserts lines within a transaction.
func (r *PgxEntryRepository) insertLinesTx(ctx context.Context, tx pgx.Tx, lines []domain.JournalEntryLine) error {
	query := `
		INSERT INTO journal_entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	batch := &pgx.Batch{}
	for _, m := range mapping.ToModelEntryLineSlice(lines) {
		batch.Queue(query,
			m.LineID,
			m.EntryID,
			m.AccountID,
			m.Description,
			m.Debit,
			m.Credit,
			m.DisplayOrder,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert entry lines: %w", err)
	}
	return nil
}

// postDeltasTx locks the affected accounts and applies the balance deltas,
// within the given transaction.
func (r *PgxEntryRepository) postDeltasTx(ctx context.Context, tx pgx.Tx, deltas map[string]accounting.BalanceDelta, userID string, now time.Time) error {
	accountIDs := make([]string, 0, len(deltas))
	for accountID := range deltas {
		accountIDs = append(accountIDs, accountID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return fmt.Errorf("failed to lock accounts for posting: %w", err)
	}
	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, userID, now); err != nil {
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	return nil
}

// SaveEntry persists a new entry with its lines. An already-APPROVED entry
// (auto-approval) also posts its deltas; everything commits or rolls back as
// one unit.
func (r *PgxEntryRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine, deltas map[string]accounting.BalanceDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, entryQuery,
		m.EntryID,
		m.EntryDate,
		m.Description,
		m.Status,
		m.ReviewedBy,
		m.ReviewedAt,
		m.RejectionReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", m.EntryID, err)
	}

	if err := r.insertLinesTx(ctx, tx, lines); err != nil {
		return err
	}

	if deltas != nil {
		if err := r.postDeltasTx(ctx, tx, deltas, entry.CreatedBy, entry.CreatedAt); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry by its ID, without lines.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`

	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}

	d := mapping.ToDomainEntry(m)
	return &d, nil
}

// FindLinesByEntryID retrieves all lines of an entry in display order.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY display_order;`

	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	ms := []models.JournalEntryLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return mapping.ToDomainEntryLineSlice(ms), nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
func (r *PgxEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalEntryLine{}, nil
	}

	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = ANY($1) ORDER BY entry_id, display_order;`

	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entries: %w", err)
	}
	defer rows.Close()

	linesByEntry := make(map[string][]domain.JournalEntryLine)
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row during batch fetch: %w", err)
		}
		linesByEntry[m.EntryID] = append(linesByEntry[m.EntryID], mapping.ToDomainEntryLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows during batch fetch: %w", err)
	}
	return linesByEntry, nil
}

// ListEntries retrieves a page of entries in reverse chronological order
// using keyset pagination on (entry_date, created_at).
func (r *PgxEntryRepository) ListEntries(ctx context.Context, status *domain.EntryStatus, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	args := []any{}
	conditions := []string{}

	if status != nil {
		args = append(args, string(*status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if nextToken != nil && *nextToken != "" {
		entryDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		args = append(args, entryDate, createdAt)
		conditions = append(conditions, fmt.Sprintf("(entry_date, created_at) < ($%d, $%d)", len(args)-1, len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY entry_date DESC, created_at DESC LIMIT $%d;", len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	ms := []models.JournalEntry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	entries := mapping.ToDomainEntrySlice(ms)

	var token *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		t := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		token = &t
	}
	return entries, token, nil
}

// ListLinesByAccountID retrieves a page of the approved lines affecting one
// account, newest first, keyset-paginated on (created_at, line_id).
func (r *PgxEntryRepository) ListLinesByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT jel.line_id, jel.entry_id, jel.account_id, jel.description, jel.debit, jel.credit, jel.display_order, jel.created_at, jel.created_by, jel.last_updated_at, jel.last_updated_by
		FROM journal_entry_lines jel
		JOIN journal_entries je ON je.entry_id = jel.entry_id
		WHERE jel.account_id = $1 AND je.status = 'APPROVED'
	`
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil || len(fields) != 2 {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		args = append(args, createdAt, fields[1])
		query += fmt.Sprintf(" AND (jel.created_at, jel.line_id) < ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY jel.created_at DESC, jel.line_id DESC LIMIT $%d;", len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ledger lines for account %s: %w", accountID, err)
	}
	defer rows.Close()

	ms := []models.JournalEntryLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger line row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating ledger line rows: %w", err)
	}
	lines := mapping.ToDomainEntryLineSlice(ms)

	var token *string
	if len(lines) > limit {
		lines = lines[:limit]
		last := lines[limit-1]
		t := pagination.EncodeMultiFieldToken(last.CreatedAt.Format(time.RFC3339Nano), last.LineID)
		token = &t
	}
	return lines, token, nil
}

// FindApprovedLinesByAccountID retrieves every approved line for an account.
func (r *PgxEntryRepository) FindApprovedLinesByAccountID(ctx context.Context, accountID string) ([]domain.JournalEntryLine, error) {
	query := `
		SELECT jel.line_id, jel.entry_id, jel.account_id, jel.description, jel.debit, jel.credit, jel.display_order, jel.created_at, jel.created_by, jel.last_updated_at, jel.last_updated_by
		FROM journal_entry_lines jel
		JOIN journal_entries je ON je.entry_id = jel.entry_id
		WHERE jel.account_id = $1 AND je.status = 'APPROVED'
		ORDER BY jel.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved lines for account %s: %w", accountID, err)
	}
	defer rows.Close()

	ms := []models.JournalEntryLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approved line row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approved line rows: %w", err)
	}
	return mapping.ToDomainEntryLineSlice(ms), nil
}

// guardNotPending distinguishes "entry missing" from "entry no longer
// PENDING" after a guarded UPDATE or DELETE affected zero rows.
func (r *PgxEntryRepository) guardNotPending(ctx context.Context, tx pgx.Tx, entryID string) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM journal_entries WHERE entry_id = $1;`, entryID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check entry %s status: %w", entryID, err)
	}
	return fmt.Errorf("entry %s is %s: %w", entryID, status, apperrors.ErrNotPending)
}

// ReplaceEntryLines swaps the line set of a PENDING entry and updates its
// date and description. The status guard sits inside the same transaction so
// a concurrent approval cannot slip between check and write.
func (r *PgxEntryRepository) ReplaceEntryLines(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelEntry(entry)
	updateQuery := `
		UPDATE journal_entries
		SET entry_date = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1 AND status = 'PENDING';
	`
	cmdTag, err := tx.Exec(ctx, updateQuery, m.EntryID, m.EntryDate, m.Description, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", m.EntryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.guardNotPending(ctx, tx, m.EntryID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, m.EntryID); err != nil {
		return fmt.Errorf("failed to delete old lines for entry %s: %w", m.EntryID, err)
	}
	if err := r.insertLinesTx(ctx, tx, lines); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteEntry removes a PENDING entry and its lines.
func (r *PgxEntryRepository) DeleteEntry(ctx context.Context, entryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entryID); err != nil {
		return fmt.Errorf("failed to delete lines for entry %s: %w", entryID, err)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1 AND status = 'PENDING';`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Rolls back the line deletion above.
		return r.guardNotPending(ctx, tx, entryID)
	}

	return r.Commit(ctx, tx)
}

// ApproveEntry flips a PENDING entry to APPROVED and applies the deltas to
// the affected accounts as one atomic unit. The guarded UPDATE serializes
// concurrent reviews of the same entry; the row locks serialize concurrent
// approvals touching the same accounts.
func (r *PgxEntryRepository) ApproveEntry(ctx context.Context, entryID string, reviewerID string, reviewedAt time.Time, deltas map[string]accounting.BalanceDelta) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	approveQuery := `
		UPDATE journal_entries
		SET status = 'APPROVED', reviewed_by = $2, reviewed_at = $3, last_updated_at = $3, last_updated_by = $2
		WHERE entry_id = $1 AND status = 'PENDING';
	`
	cmdTag, err := tx.Exec(ctx, approveQuery, entryID, reviewerID, reviewedAt)
	if err != nil {
		return fmt.Errorf("failed to approve entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.guardNotPending(ctx, tx, entryID)
	}

	if err := r.postDeltasTx(ctx, tx, deltas, reviewerID, reviewedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// RejectEntry flips a PENDING entry to REJECTED with the given reason. Never
// touches account balances.
func (r *PgxEntryRepository) RejectEntry(ctx context.Context, entryID string, reviewerID string, reviewedAt time.Time, reason string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	rejectQuery := `
		UPDATE journal_entries
		SET status = 'REJECTED', reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, last_updated_at = $3, last_updated_by = $2
		WHERE entry_id = $1 AND status = 'PENDING';
	`
	cmdTag, err := tx.Exec(ctx, rejectQuery, entryID, reviewerID, reviewedAt, reason)
	if err != nil {
		return fmt.Errorf("failed to reject entry %s: %w", entryID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.guardNotPending(ctx, tx, entryID)
	}

	return r.Commit(ctx, tx)
}
