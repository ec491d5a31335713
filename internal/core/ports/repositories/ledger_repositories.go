package repositories

import (
	"context"

	"github.com/knbsoft/knb_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerTx is the transactional view handed to the ledger engine while it
// holds exclusive locks on a set of accounts. Everything done through it
// commits or rolls back as one unit.
type LedgerTx interface {
	// Accounts returns the locked account snapshots keyed by account number.
	// The snapshots are consistent with the lock: no other operation can
	// commit a balance change on these accounts until this tx finishes.
	Accounts() map[int64]domain.Account

	// ApplyBalanceChanges adds each delta to the matching account balance.
	ApplyBalanceChanges(ctx context.Context, changes map[int64]decimal.Decimal) error

	// AppendEntries appends transaction log entries and returns them with
	// store-assigned entry IDs, in input order.
	AppendEntries(ctx context.Context, entries []domain.TransactionEntry) ([]domain.TransactionEntry, error)
}

// LedgerRepository is the atomic mutation primitive of the account store.
type LedgerRepository interface {
	// WithAccountsLocked acquires exclusive locks on the given accounts in
	// ascending account-number order (a fixed total order, so two concurrent
	// transfers between the same pair can never deadlock), runs fn, and
	// commits. Any error from fn rolls back every effect. Lock acquisition is
	// bounded; contention past the bound fails with apperrors.ErrBusy.
	// Accounts that do not exist are simply absent from LedgerTx.Accounts().
	WithAccountsLocked(ctx context.Context, accountNumbers []int64, fn func(ctx context.Context, tx LedgerTx) error) error

	// FindEntriesByAccount lists transaction log entries for an account,
	// most recent first, using token pagination.
	FindEntriesByAccount(ctx context.Context, accountNumber int64, limit int, nextToken *string) ([]domain.TransactionEntry, *string, error)
}
