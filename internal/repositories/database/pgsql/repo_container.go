package pgsql

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pgsql repositories onto a shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo: newPgxAccountRepository(dbPool),
		LedgerRepo:  newPgxLedgerRepository(dbPool, lockTimeout),
		UserRepo:    newPgxUserRepository(dbPool),
		AuditRepo:   newPgxAuditRepository(dbPool),
	}
}
