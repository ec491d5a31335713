package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	"github.com/knbsoft/knb_backend/internal/models"
)

// pgUniqueViolation is the SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{pool: pool}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

func toModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountNumber: d.AccountNumber,
		UserID:        d.UserID,
		Name:          d.Name,
		MobileNumber:  d.MobileNumber,
		AccountType:   string(d.AccountType),
		Status:        string(d.Status),
		Balance:       d.Balance,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountNumber: m.AccountNumber,
		UserID:        m.UserID,
		Name:          m.Name,
		MobileNumber:  m.MobileNumber,
		AccountType:   domain.AccountType(m.AccountType),
		Status:        domain.AccountStatus(m.Status),
		Balance:       m.Balance,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const accountColumns = `acno, user_id, name, mobile_number, account_type, status, balance, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(&m.AccountNumber, &m.UserID, &m.Name, &m.MobileNumber, &m.AccountType, &m.Status, &m.Balance, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to scan account: %v", apperrors.ErrStorage, err)
	}
	acc := toDomainAccount(m)
	return &acc, nil
}

// SaveAccount inserts a new account. The account number comes from the acno
// sequence; the unique index on user_id enforces one account per user.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	m := toModelAccount(account)

	query := `
		INSERT INTO accounts (user_id, name, mobile_number, account_type, status, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING acno;
	`
	var acno int64
	err := r.pool.QueryRow(ctx, query,
		m.UserID,
		m.Name,
		m.MobileNumber,
		m.AccountType,
		m.Status,
		m.Balance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	).Scan(&acno)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("%w: user %s", apperrors.ErrDuplicateOwner, m.UserID)
		}
		return nil, fmt.Errorf("%w: failed to save account for user %s: %v", apperrors.ErrStorage, m.UserID, err)
	}

	account.AccountNumber = acno
	return &account, nil
}

func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE acno = $1;`
	return scanAccount(r.pool.QueryRow(ctx, query, accountNumber))
}

func (r *PgxAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1;`
	return scanAccount(r.pool.QueryRow(ctx, query, userID))
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY acno LIMIT $1 OFFSET $2;`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list accounts: %v", apperrors.ErrStorage, err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		var m models.Account
		err := rows.Scan(&m.AccountNumber, &m.UserID, &m.Name, &m.MobileNumber, &m.AccountType, &m.Status, &m.Balance, &m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan account: %v", apperrors.ErrStorage, err)
		}
		accounts = append(accounts, toDomainAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list accounts: %v", apperrors.ErrStorage, err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) UpdateAccountStatus(ctx context.Context, accountNumber int64, status domain.AccountStatus, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE acno = $1;
	`
	tag, err := r.pool.Exec(ctx, query, accountNumber, string(status), now, userID)
	if err != nil {
		return fmt.Errorf("%w: failed to update status of account %d: %v", apperrors.ErrStorage, accountNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", apperrors.ErrNotFound, accountNumber)
	}
	return nil
}

func (r *PgxAccountRepository) UpdateContactInfo(ctx context.Context, accountNumber int64, mobile string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET mobile_number = $2, last_updated_at = $3, last_updated_by = $4
		WHERE acno = $1;
	`
	tag, err := r.pool.Exec(ctx, query, accountNumber, mobile, now, userID)
	if err != nil {
		return fmt.Errorf("%w: failed to update contact info of account %d: %v", apperrors.ErrStorage, accountNumber, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %d", apperrors.ErrNotFound, accountNumber)
	}
	return nil
}
