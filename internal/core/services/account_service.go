package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portsrepo "github.com/knbsoft/knb_backend/internal/core/ports/repositories"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// Status transitions the account service will perform. CLOSED is terminal;
// accounts with recorded history are never deleted.
var allowedStatusTransitions = map[domain.AccountStatus][]domain.AccountStatus{
	domain.AccountActive: {domain.AccountFrozen, domain.AccountClosed},
	domain.AccountFrozen: {domain.AccountActive, domain.AccountClosed},
}

// accountService implements the account directory: creation, lookup and
// non-balance mutation. It never writes balances; the ledger engine is the
// sole writer of those.
type accountService struct {
	accountRepo portsrepo.AccountRepository
	auditSvc    portssvc.AuditSvcFacade
}

// NewAccountService creates a new account service. auditSvc may be nil.
func NewAccountService(accountRepo portsrepo.AccountRepository, auditSvc portssvc.AuditSvcFacade) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		auditSvc:    auditSvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount opens a new ACTIVE account with a zero balance. One account
// per user: a second create for the same owner fails with ErrDuplicateOwner.
// An opening deposit, when requested, is booked by the caller through the
// ledger engine so the transaction log stays complete.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningDeposit.IsNegative() {
		return nil, fmt.Errorf("%w: opening deposit cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	account := domain.Account{
		UserID:       req.UserID,
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		AccountType:  req.AccountType,
		Status:       domain.AccountActive,
		Balance:      decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	created, err := s.accountRepo.SaveAccount(ctx, account)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateOwner) {
			logger.Warn("Account creation rejected, owner already has one", slog.String("user_id", req.UserID))
			return nil, err
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.Int64("account_number", created.AccountNumber), slog.String("user_id", created.UserID))
	s.recordAudit(ctx, creatorUserID, "ACCOUNT_CREATED", fmt.Sprintf("Opened account %d for user %s", created.AccountNumber, created.UserID))
	return created, nil
}

// GetAccountByNumber retrieves one account.
func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find account", slog.Int64("account_number", accountNumber), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByUserID resolves the directory mapping from user to account.
func (s *accountService) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find account by owner", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts returns accounts ordered by account number.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccountStatus transitions the lifecycle status of an account.
func (s *accountService) UpdateAccountStatus(ctx context.Context, accountNumber int64, status domain.AccountStatus, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if account.Status == status {
		return account, nil
	}
	if !transitionAllowed(account.Status, status) {
		return nil, fmt.Errorf("%w: cannot move account from %s to %s", apperrors.ErrValidation, account.Status, status)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateAccountStatus(ctx, accountNumber, status, requestingUserID, now); err != nil {
		logger.Error("Failed to update account status", slog.Int64("account_number", accountNumber), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update account status: %w", err)
	}

	account.Status = status
	account.LastUpdatedAt = now
	account.LastUpdatedBy = requestingUserID

	logger.Info("Account status updated", slog.Int64("account_number", accountNumber), slog.String("status", string(status)))
	s.recordAudit(ctx, requestingUserID, "ACCOUNT_STATUS_CHANGED", fmt.Sprintf("Account %d moved to %s", accountNumber, status))
	return account, nil
}

// UpdateContactInfo updates the account's mobile number.
func (s *accountService) UpdateContactInfo(ctx context.Context, accountNumber int64, mobile string, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateContactInfo(ctx, accountNumber, mobile, requestingUserID, now); err != nil {
		logger.Error("Failed to update contact info", slog.Int64("account_number", accountNumber), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update contact info: %w", err)
	}

	account.MobileNumber = mobile
	account.LastUpdatedAt = now
	account.LastUpdatedBy = requestingUserID
	return account, nil
}

func (s *accountService) recordAudit(ctx context.Context, userID, action, details string) {
	if s.auditSvc == nil {
		return
	}
	s.auditSvc.Record(ctx, userID, action, details)
}

func transitionAllowed(from, to domain.AccountStatus) bool {
	for _, allowed := range allowedStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
