package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
)

// MockAccountRepository is a testify mock for the account repository port.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	args := m.Called(ctx, account)
	if acc, ok := args.Get(0).(*domain.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if acc, ok := args.Get(0).(*domain.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if acc, ok := args.Get(0).(*domain.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if accs, ok := args.Get(0).([]domain.Account); ok {
		return accs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountStatus(ctx context.Context, accountNumber int64, status domain.AccountStatus, userID string, now time.Time) error {
	args := m.Called(ctx, accountNumber, status, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateContactInfo(ctx context.Context, accountNumber int64, mobile string, userID string, now time.Time) error {
	args := m.Called(ctx, accountNumber, mobile, userID, now)
	return args.Error(0)
}

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	svc      portssvc.AccountSvcFacade
	ctx      context.Context
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockAccountRepository)
	s.svc = NewAccountService(s.mockRepo, nil)
	s.ctx = context.Background()
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) TestCreateAccount() {
	req := dto.CreateAccountRequest{
		UserID:       "user-1",
		Name:         "Asha Rao",
		MobileNumber: "555-0101",
		AccountType:  domain.Savings,
	}

	s.mockRepo.On("SaveAccount", s.ctx, mock.MatchedBy(func(acc domain.Account) bool {
		return acc.UserID == "user-1" &&
			acc.Status == domain.AccountActive &&
			acc.Balance.IsZero() &&
			acc.CreatedBy == "manager-1"
	})).Return(&domain.Account{
		AccountNumber: 100001,
		UserID:        "user-1",
		Name:          "Asha Rao",
		AccountType:   domain.Savings,
		Status:        domain.AccountActive,
		Balance:       decimal.Zero,
	}, nil).Once()

	created, err := s.svc.CreateAccount(s.ctx, req, "manager-1")
	s.Require().NoError(err)
	s.Equal(int64(100001), created.AccountNumber)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestCreateAccountDuplicateOwner() {
	req := dto.CreateAccountRequest{
		UserID:       "user-1",
		Name:         "Asha Rao",
		MobileNumber: "555-0101",
		AccountType:  domain.Savings,
	}

	s.mockRepo.On("SaveAccount", s.ctx, mock.Anything).Return(nil, apperrors.ErrDuplicateOwner).Once()

	_, err := s.svc.CreateAccount(s.ctx, req, "manager-1")
	s.ErrorIs(err, apperrors.ErrDuplicateOwner)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestCreateAccountNegativeOpeningDeposit() {
	req := dto.CreateAccountRequest{
		UserID:         "user-1",
		Name:           "Asha Rao",
		MobileNumber:   "555-0101",
		AccountType:    domain.Savings,
		OpeningDeposit: decimal.RequireFromString("-10"),
	}

	_, err := s.svc.CreateAccount(s.ctx, req, "manager-1")
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveAccount")
}

func (s *AccountServiceTestSuite) TestUpdateAccountStatusFreeze() {
	s.mockRepo.On("FindAccountByNumber", s.ctx, int64(100001)).Return(&domain.Account{
		AccountNumber: 100001,
		Status:        domain.AccountActive,
	}, nil).Once()
	s.mockRepo.On("UpdateAccountStatus", s.ctx, int64(100001), domain.AccountFrozen, "manager-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	acc, err := s.svc.UpdateAccountStatus(s.ctx, 100001, domain.AccountFrozen, "manager-1")
	s.Require().NoError(err)
	s.Equal(domain.AccountFrozen, acc.Status)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestUpdateAccountStatusClosedIsTerminal() {
	s.mockRepo.On("FindAccountByNumber", s.ctx, int64(100001)).Return(&domain.Account{
		AccountNumber: 100001,
		Status:        domain.AccountClosed,
	}, nil).Once()

	_, err := s.svc.UpdateAccountStatus(s.ctx, 100001, domain.AccountActive, "manager-1")
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateAccountStatus")
}

func (s *AccountServiceTestSuite) TestUpdateAccountStatusNoOp() {
	s.mockRepo.On("FindAccountByNumber", s.ctx, int64(100001)).Return(&domain.Account{
		AccountNumber: 100001,
		Status:        domain.AccountActive,
	}, nil).Once()

	acc, err := s.svc.UpdateAccountStatus(s.ctx, 100001, domain.AccountActive, "manager-1")
	s.Require().NoError(err)
	s.Equal(domain.AccountActive, acc.Status)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateAccountStatus")
}

func (s *AccountServiceTestSuite) TestUpdateContactInfo() {
	s.mockRepo.On("FindAccountByNumber", s.ctx, int64(100001)).Return(&domain.Account{
		AccountNumber: 100001,
		Status:        domain.AccountActive,
		MobileNumber:  "555-0101",
	}, nil).Once()
	s.mockRepo.On("UpdateContactInfo", s.ctx, int64(100001), "555-0202", "manager-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	acc, err := s.svc.UpdateContactInfo(s.ctx, 100001, "555-0202", "manager-1")
	s.Require().NoError(err)
	s.Equal("555-0202", acc.MobileNumber)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *AccountServiceTestSuite) TestListAccountsDefaultsLimit() {
	s.mockRepo.On("ListAccounts", s.ctx, 20, 0).Return([]domain.Account{}, nil).Once()

	_, err := s.svc.ListAccounts(s.ctx, 0, -3)
	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}
