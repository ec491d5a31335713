package repositories

import (
	"context"
	"time"

	"github.com/knbsoft/knb_backend/internal/core/domain"
)

// AccountRepository persists account records. Implementations must never
// write Account.Balance through these methods; balance mutation goes through
// LedgerRepository.WithAccountsLocked exclusively.
type AccountRepository interface {
	// SaveAccount inserts a new account and returns it with the assigned
	// account number. Fails with apperrors.ErrDuplicateOwner when the owner
	// already has an account.
	SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error)

	// FindAccountByNumber returns apperrors.ErrNotFound when absent.
	FindAccountByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error)

	// FindAccountByUserID resolves the directory mapping from a user to their
	// account. Returns apperrors.ErrNotFound when the user has none.
	FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)

	// ListAccounts returns accounts ordered by account number.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// UpdateAccountStatus transitions the lifecycle status (non-balance field).
	UpdateAccountStatus(ctx context.Context, accountNumber int64, status domain.AccountStatus, userID string, now time.Time) error

	// UpdateContactInfo updates the mobile number (non-balance field).
	UpdateContactInfo(ctx context.Context, accountNumber int64, mobile string, userID string, now time.Time) error
}
