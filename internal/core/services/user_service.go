package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/middleware"
	"github.com/knbsoft/knb_backend/internal/utils"
)

// ErrInvalidCredentials is returned on a failed login. It deliberately does
// not distinguish unknown user from wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

type userService struct {
	userRepo portsrepo.UserRepository
	auditSvc portssvc.AuditSvcFacade
}

// NewUserService creates a new user service. auditSvc may be nil.
func NewUserService(userRepo portsrepo.UserRepository, auditSvc portssvc.AuditSvcFacade) portssvc.UserSvcFacade {
	return &userService{
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// Register creates a PENDING client user. A manager approval activates it.
func (s *userService) Register(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Role:         domain.RoleClient,
		Status:       domain.UserPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "", // Self-registration
			LastUpdatedAt: now,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Registration rejected, username taken", slog.String("username", req.Username))
			return nil, err
		}
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User registered", slog.String("user_id", user.UserID), slog.String("username", user.Username))
	return &user, nil
}

// Authenticate verifies credentials and returns the user when the password
// matches and the user is ACTIVE.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		logger.Error("Failed to look up user for login", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("Login failed, bad password", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if user.Status != domain.UserActive {
		logger.Warn("Login rejected, user not active", slog.String("username", username), slog.String("status", string(user.Status)))
		return nil, fmt.Errorf("%w: user status is %s", apperrors.ErrForbidden, user.Status)
	}

	return user, nil
}

// GetUserByID retrieves one user record.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find user", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return user, nil
}

// ListPendingUsers returns registrations awaiting approval, oldest first.
func (s *userService) ListPendingUsers(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	users, err := s.userRepo.ListUsersByStatus(ctx, domain.UserPending, limit)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list pending users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	return users, nil
}

// ApproveUser activates a PENDING user.
func (s *userService) ApproveUser(ctx context.Context, userID string, approverUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status != domain.UserPending {
		return fmt.Errorf("%w: user status is %s, expected PENDING", apperrors.ErrValidation, user.Status)
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateUserStatus(ctx, userID, domain.UserActive, approverUserID, now); err != nil {
		logger.Error("Failed to approve user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to approve user: %w", err)
	}

	logger.Info("User approved", slog.String("user_id", userID), slog.String("approver", approverUserID))
	s.recordAudit(ctx, approverUserID, "USER_APPROVED", fmt.Sprintf("Approved user %s (%s)", user.Username, userID))
	return nil
}

// DisableUser moves a user to DISABLED.
func (s *userService) DisableUser(ctx context.Context, userID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status == domain.UserDisabled {
		return nil
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateUserStatus(ctx, userID, domain.UserDisabled, requestingUserID, now); err != nil {
		logger.Error("Failed to disable user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to disable user: %w", err)
	}

	logger.Info("User disabled", slog.String("user_id", userID))
	s.recordAudit(ctx, requestingUserID, "USER_DISABLED", fmt.Sprintf("Disabled user %s (%s)", user.Username, userID))
	return nil
}

// UpdateUser updates profile fields.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		user.Name = *req.Name
		updated = true
	}
	if req.Email != nil {
		user.Email = *req.Email
		updated = true
	}
	if req.Mobile != nil {
		user.Mobile = *req.Mobile
		updated = true
	}
	if !updated {
		return user, nil
	}

	now := time.Now().UTC()
	user.LastUpdatedAt = now
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) recordAudit(ctx context.Context, userID, action, details string) {
	if s.auditSvc == nil {
		return
	}
	s.auditSvc.Record(ctx, userID, action, details)
}
