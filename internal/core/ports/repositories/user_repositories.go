package repositories

import (
	"context"
	"time"

	"github.com/knbsoft/knb_backend/internal/core/domain"
)

// UserRepository persists user records.
type UserRepository interface {
	// SaveUser inserts a new user. Fails with apperrors.ErrDuplicate when the
	// username is taken.
	SaveUser(ctx context.Context, user domain.User) error

	// FindUserByID returns apperrors.ErrNotFound when absent.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername returns apperrors.ErrNotFound when absent.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsersByStatus returns users in the given lifecycle state, oldest first.
	ListUsersByStatus(ctx context.Context, status domain.UserStatus, limit int) ([]domain.User, error)

	// UpdateUser updates profile fields (name, email, mobile).
	UpdateUser(ctx context.Context, user domain.User) error

	// UpdateUserStatus transitions a user between PENDING/ACTIVE/DISABLED.
	UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus, updatedBy string, now time.Time) error
}
