package services

import (
	"context"

	"github.com/knbsoft/knb_backend/internal/core/domain"
	"github.com/knbsoft/knb_backend/internal/dto"
)

// UserSvcFacade manages user records and credential checks.
type UserSvcFacade interface {
	// Register creates a PENDING client user awaiting manager approval.
	Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// Authenticate verifies credentials and returns the user when the
	// password matches and the user is ACTIVE.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	ListPendingUsers(ctx context.Context, limit int) ([]domain.User, error)
	ApproveUser(ctx context.Context, userID string, approverUserID string) error
	DisableUser(ctx context.Context, userID string, requestingUserID string) error
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)
}
