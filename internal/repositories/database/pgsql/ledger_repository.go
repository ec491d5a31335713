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
	"github.com/shopspring/decimal"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	"github.com/knbsoft/knb_backend/internal/models"
	"github.com/knbsoft/knb_backend/internal/utils/pagination"
)

// pgLockNotAvailable is the SQLSTATE raised when lock_timeout expires.
const pgLockNotAvailable = "55P03"

type PgxLedgerRepository struct {
	BaseRepository
	lockTimeout time.Duration
}

// newPgxLedgerRepository creates the repository backing the ledger engine.
func newPgxLedgerRepository(pool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		lockTimeout:    lockTimeout,
	}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

func toModelEntry(d domain.TransactionEntry) models.TransactionEntry {
	return models.TransactionEntry{
		EntryID:             d.EntryID,
		AccountNumber:       d.AccountNumber,
		EntryType:           string(d.Type),
		Amount:              d.Amount,
		CounterpartyAccount: d.CounterpartyAccount,
		TransferID:          d.TransferID,
		Status:              string(d.Status),
		Remarks:             d.Remarks,
		CreatedAt:           d.CreatedAt,
	}
}

func toDomainEntry(m models.TransactionEntry) domain.TransactionEntry {
	return domain.TransactionEntry{
		EntryID:             m.EntryID,
		AccountNumber:       m.AccountNumber,
		Type:                domain.EntryType(m.EntryType),
		Amount:              m.Amount,
		CounterpartyAccount: m.CounterpartyAccount,
		TransferID:          m.TransferID,
		Status:              domain.EntryStatus(m.Status),
		Remarks:             m.Remarks,
		CreatedAt:           m.CreatedAt,
	}
}

// pgxLedgerTx is the transactional view handed to the ledger engine while the
// row locks are held.
type pgxLedgerTx struct {
	tx       pgx.Tx
	accounts map[int64]domain.Account
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func (t *pgxLedgerTx) Accounts() map[int64]domain.Account {
	return t.accounts
}

func (t *pgxLedgerTx) ApplyBalanceChanges(ctx context.Context, changes map[int64]decimal.Decimal) error {
	if len(changes) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3
		WHERE acno = $1;
	`
	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for acno, delta := range changes {
		batch.Queue(query, acno, delta, now)
	}

	br := t.tx.SendBatch(ctx, batch)
	defer br.Close()

	for range changes {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("%w: failed to apply balance change: %v", apperrors.ErrStorage, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("%w: balance change affected %d rows", apperrors.ErrStorage, tag.RowsAffected())
		}
	}
	return nil
}

func (t *pgxLedgerTx) AppendEntries(ctx context.Context, entries []domain.TransactionEntry) ([]domain.TransactionEntry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	query := `
		INSERT INTO transaction_entries (acno, entry_type, amount, counterparty_acno, transfer_id, status, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING entry_id;
	`
	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for _, e := range entries {
		m := toModelEntry(e)
		batch.Queue(query, m.AccountNumber, m.EntryType, m.Amount, m.CounterpartyAccount, m.TransferID, m.Status, m.Remarks, now)
	}

	br := t.tx.SendBatch(ctx, batch)
	defer br.Close()

	saved := make([]domain.TransactionEntry, len(entries))
	for i, e := range entries {
		var entryID int64
		if err := br.QueryRow().Scan(&entryID); err != nil {
			return nil, fmt.Errorf("%w: failed to append entry: %v", apperrors.ErrStorage, err)
		}
		e.EntryID = entryID
		e.CreatedAt = now
		saved[i] = e
	}
	return saved, nil
}

// WithAccountsLocked acquires FOR UPDATE row locks on the requested accounts
// in ascending account-number order, runs fn inside the transaction and
// commits. Lock waits are bounded by lock_timeout; hitting the bound maps to
// apperrors.ErrBusy so callers can retry.
func (r *PgxLedgerRepository) WithAccountsLocked(ctx context.Context, accountNumbers []int64, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	acnos := dedupeSorted(accountNumbers)

	tx, err := r.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	// lock_timeout only accepts a literal, not a bind parameter.
	timeoutStmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, timeoutStmt); err != nil {
		return fmt.Errorf("%w: failed to set lock timeout: %v", apperrors.ErrStorage, err)
	}

	accounts, err := lockAccounts(ctx, tx, acnos)
	if err != nil {
		return err
	}

	ledgerTx := &pgxLedgerTx{tx: tx, accounts: accounts}
	if err := fn(ctx, ledgerTx); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorage, err)
	}
	return nil
}

func lockAccounts(ctx context.Context, tx pgx.Tx, acnos []int64) (map[int64]domain.Account, error) {
	query := `
		SELECT acno, user_id, name, mobile_number, account_type, status, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE acno = ANY($1)
		ORDER BY acno
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, acnos)
	if err != nil {
		return nil, mapLockError(err)
	}
	defer rows.Close()

	accounts := make(map[int64]domain.Account, len(acnos))
	for rows.Next() {
		var m models.Account
		err := rows.Scan(&m.AccountNumber, &m.UserID, &m.Name, &m.MobileNumber, &m.AccountType, &m.Status, &m.Balance, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan locked account: %v", apperrors.ErrStorage, err)
		}
		acc := toDomainAccount(m)
		accounts[acc.AccountNumber] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, mapLockError(err)
	}
	return accounts, nil
}

func mapLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return fmt.Errorf("%w: %v", apperrors.ErrBusy, err)
	}
	return fmt.Errorf("%w: failed to lock accounts: %v", apperrors.ErrStorage, err)
}

func dedupeSorted(acnos []int64) []int64 {
	out := make([]int64, 0, len(acnos))
	seen := make(map[int64]struct{}, len(acnos))
	for _, a := range acnos {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FindEntriesByAccount lists the transaction log for one account, newest
// first, using opaque token pagination.
func (r *PgxLedgerRepository) FindEntriesByAccount(ctx context.Context, accountNumber int64, limit int, nextToken *string) ([]domain.TransactionEntry, *string, error) {
	offset, err := pagination.DecodeToken(nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	query := `
		SELECT entry_id, acno, entry_type, amount, counterparty_acno, transfer_id, status, remarks, created_at
		FROM transaction_entries
		WHERE acno = $1
		ORDER BY entry_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountNumber, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to list entries for account %d: %v", apperrors.ErrStorage, accountNumber, err)
	}
	defer rows.Close()

	entries := make([]domain.TransactionEntry, 0, limit)
	for rows.Next() {
		var m models.TransactionEntry
		err := rows.Scan(&m.EntryID, &m.AccountNumber, &m.EntryType, &m.Amount, &m.CounterpartyAccount, &m.TransferID, &m.Status, &m.Remarks, &m.CreatedAt)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to scan entry: %v", apperrors.ErrStorage, err)
		}
		entries = append(entries, toDomainEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to list entries for account %d: %v", apperrors.ErrStorage, accountNumber, err)
	}

	return entries, pagination.NextToken(offset, limit, len(entries)), nil
}
