package services

import (
	"context"

	"github.com/knbsoft/knb_backend/internal/core/domain"
	"github.com/knbsoft/knb_backend/internal/dto"
)

// AccountSvcFacade is the account directory: creation, lookup and non-balance
// mutation of account records. Balance changes are out of its reach.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error)
	GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
	UpdateAccountStatus(ctx context.Context, accountNumber int64, status domain.AccountStatus, requestingUserID string) (*domain.Account, error)
	UpdateContactInfo(ctx context.Context, accountNumber int64, mobile string, requestingUserID string) (*domain.Account, error)
}
