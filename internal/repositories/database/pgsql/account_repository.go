package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/openbooks/bookkeeping_app/internal/core/ports/repositories"
	"github.com/openbooks/bookkeeping_app/internal/models"
	"github.com/openbooks/bookkeeping_app/internal/utils/accounting"
	"github.com/openbooks/bookkeeping_app/internal/utils/mapping"
)

// Unique constraint names from the migrations; a 23505 on either maps to the
// matching duplicate error.
const (
	accountNumberConstraint = "accounts_account_number_key"
	accountNameConstraint   = "accounts_account_name_key"
)

const accountColumns = `account_id, account_number, account_name, description, comment, category, subcategory, normal_side, statement, initial_balance, debit, credit, balance, is_active, deactivate_from, deactivate_to, display_order, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// scanAccount reads one account row in accountColumns order.
func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.AccountNumber,
		&m.AccountName,
		&m.Description,
		&m.Comment,
		&m.Category,
		&m.Subcategory,
		&m.NormalSide,
		&m.Statement,
		&m.InitialBalance,
		&m.Debit,
		&m.Credit,
		&m.Balance,
		&m.IsActive,
		&m.DeactivateFrom,
		&m.DeactivateTo,
		&m.DisplayOrder,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// mapUniqueViolation maps a unique-constraint violation to the precise
// duplicate error.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case accountNumberConstraint:
			return apperrors.ErrDuplicateAccountNumber
		case accountNameConstraint:
			return apperrors.ErrDuplicateAccountName
		default:
			return apperrors.ErrDuplicate
		}
	}
	return nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.AccountNumber,
		m.AccountName,
		m.Description,
		m.Comment,
		m.Category,
		m.Subcategory,
		m.NormalSide,
		m.Statement,
		m.InitialBalance,
		m.Debit,
		m.Credit,
		m.Balance,
		m.IsActive,
		m.DeactivateFrom,
		m.DeactivateTo,
		m.DisplayOrder,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return fmt.Errorf("account %s: %w", m.AccountNumber, dupErr)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	d := mapping.ToDomainAccount(m)
	return &d, nil
}

// FindAccountByNumber retrieves an account by its unique account number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1;`

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by number %s: %w", accountNumber, err)
	}

	d := mapping.ToDomainAccount(m)
	return &d, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing IDs are
// simply absent from the map; the caller checks completeness.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	return accountsMap, nil
}

// ListAccounts retrieves the chart of accounts ordered by display order then
// account number.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_order, account_number;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	ms := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return mapping.ToDomainAccountSlice(ms), nil
}

// UpdateAccount updates an account's descriptive fields. Classification and
// financial columns are deliberately absent from the SET list.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		UPDATE accounts
		SET account_name = $2, description = $3, comment = $4, subcategory = $5, display_order = $6, last_updated_at = $7, last_updated_by = $8
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.AccountName,
		m.Description,
		m.Comment,
		m.Subcategory,
		m.DisplayOrder,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return fmt.Errorf("account %s: %w", m.AccountID, dupErr)
		}
		return fmt.Errorf("failed to execute update account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetAccountActivation flips is_active and replaces the deactivation window.
func (r *PgxAccountRepository) SetAccountActivation(ctx context.Context, accountID string, active bool, from, to *time.Time, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = $2, deactivate_from = $3, deactivate_to = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, active, from, to, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set activation for account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the
// rows for update. Must be called within a transaction. Rows are locked in
// account_id order so concurrent approvals cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// ApplyBalanceDeltasInTx adds each delta to its account's running totals
// within the given transaction. The account rows must already be locked.
func (r *PgxAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]accounting.BalanceDelta, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET debit = debit + $2, credit = credit + $3, balance = balance + $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`

	// Deterministic order keeps batch failures attributable.
	accountIDs := make([]string, 0, len(deltas))
	for accountID := range deltas {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)

	batch := &pgx.Batch{}
	queued := make([]string, 0, len(accountIDs))
	for _, accountID := range accountIDs {
		delta := deltas[accountID]
		if delta.IsZero() {
			continue
		}
		batch.Queue(query, accountID, delta.Debit, delta.Credit, delta.Balance, now, userID)
		queued = append(queued, accountID)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to apply balance delta for account %s: %w", queued[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, queued[i])
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}

// RecalculateBalances resets every account to its initial balance and replays
// all approved lines, in one transaction. The running totals are a cache; the
// approved lines are the source of truth this rebuild restores.
func (r *PgxAccountRepository) RecalculateBalances(ctx context.Context, userID string, now time.Time) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	// Lock every account so approvals cannot interleave with the rebuild.
	if _, err := tx.Exec(ctx, `SELECT account_id FROM accounts ORDER BY account_id FOR UPDATE;`); err != nil {
		return 0, fmt.Errorf("failed to lock accounts for recalculation: %w", err)
	}

	resetQuery := `
		UPDATE accounts
		SET debit = 0, credit = 0, balance = initial_balance, last_updated_at = $1, last_updated_by = $2;
	`
	cmdTag, err := tx.Exec(ctx, resetQuery, now, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset account balances: %w", err)
	}
	total := int(cmdTag.RowsAffected())

	replayQuery := `
		UPDATE accounts a
		SET debit = l.debits,
		    credit = l.credits,
		    balance = a.initial_balance + CASE
		        WHEN a.normal_side = 'DEBIT' THEN l.debits - l.credits
		        ELSE l.credits - l.debits
		    END
		FROM (
			SELECT jel.account_id, COALESCE(SUM(jel.debit), 0) AS debits, COALESCE(SUM(jel.credit), 0) AS credits
			FROM journal_entry_lines jel
			JOIN journal_entries je ON je.entry_id = jel.entry_id
			WHERE je.status = 'APPROVED'
			GROUP BY jel.account_id
		) l
		WHERE l.account_id = a.account_id;
	`
	if _, err := tx.Exec(ctx, replayQuery); err != nil {
		return 0, fmt.Errorf("failed to replay approved lines: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return total, nil
}

// ImportAccount full-replaces an account row keyed by account number,
// financial fields included. Seed/import tooling only.
func (r *PgxAccountRepository) ImportAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (account_number) DO UPDATE SET
			account_name = EXCLUDED.account_name,
			description = EXCLUDED.description,
			comment = EXCLUDED.comment,
			category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory,
			normal_side = EXCLUDED.normal_side,
			statement = EXCLUDED.statement,
			initial_balance = EXCLUDED.initial_balance,
			debit = EXCLUDED.debit,
			credit = EXCLUDED.credit,
			balance = EXCLUDED.balance,
			is_active = EXCLUDED.is_active,
			display_order = EXCLUDED.display_order,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.AccountNumber,
		m.AccountName,
		m.Description,
		m.Comment,
		m.Category,
		m.Subcategory,
		m.NormalSide,
		m.Statement,
		m.InitialBalance,
		m.Debit,
		m.Credit,
		m.Balance,
		m.IsActive,
		m.DeactivateFrom,
		m.DeactivateTo,
		m.DisplayOrder,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return fmt.Errorf("account %s: %w", m.AccountNumber, dupErr)
		}
		return fmt.Errorf("failed to import account %s: %w", m.AccountNumber, err)
	}
	return nil
}
