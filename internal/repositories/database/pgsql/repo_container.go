package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/openbooks/bookkeeping_app/internal/core/ports/repositories"
)

// NewRepositoryProvider creates all pgx-backed repositories over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	return &portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		EntryRepo:   newPgxEntryRepository(pool, accountRepo),
	}
}
