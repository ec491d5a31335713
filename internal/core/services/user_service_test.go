package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/knbsoft/knb_backend/internal/apperrors"
	"github.com/knbsoft/knb_backend/internal/core/domain"
	portssvc "github.com/knbsoft/knb_backend/internal/core/ports/services"
	"github.com/knbsoft/knb_backend/internal/dto"
	"github.com/knbsoft/knb_backend/internal/utils"
)

// MockUserRepository is a testify mock for the user repository port.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*domain.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ListUsersByStatus(ctx context.Context, status domain.UserStatus, limit int) ([]domain.User, error) {
	args := m.Called(ctx, status, limit)
	if us, ok := args.Get(0).([]domain.User); ok {
		return us, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus, updatedBy string, now time.Time) error {
	args := m.Called(ctx, userID, status, updatedBy, now)
	return args.Error(0)
}

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	svc      portssvc.UserSvcFacade
	ctx      context.Context
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockUserRepository)
	s.svc = NewUserService(s.mockRepo, nil)
	s.ctx = context.Background()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestRegisterCreatesPendingClient() {
	req := dto.RegisterUserRequest{
		Username: "asha",
		Password: "s3cret-pass",
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Mobile:   "555-0101",
	}

	var saved domain.User
	s.mockRepo.On("SaveUser", s.ctx, mock.MatchedBy(func(u domain.User) bool {
		saved = u
		return u.Username == "asha" && u.Role == domain.RoleClient && u.Status == domain.UserPending
	})).Return(nil).Once()

	user, err := s.svc.Register(s.ctx, req)
	s.Require().NoError(err)
	s.NotEmpty(user.UserID)
	s.True(utils.CheckPasswordHash("s3cret-pass", saved.PasswordHash))
	s.NotEqual("s3cret-pass", saved.PasswordHash)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestRegisterDuplicateUsername() {
	s.mockRepo.On("SaveUser", s.ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := s.svc.Register(s.ctx, dto.RegisterUserRequest{
		Username: "asha", Password: "s3cret-pass", Name: "Asha", Email: "a@example.com", Mobile: "555",
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *UserServiceTestSuite) TestAuthenticate() {
	hash, err := utils.HashPassword("s3cret-pass")
	s.Require().NoError(err)

	s.mockRepo.On("FindUserByUsername", s.ctx, "asha").Return(&domain.User{
		UserID:       "user-1",
		Username:     "asha",
		PasswordHash: hash,
		Status:       domain.UserActive,
		Role:         domain.RoleClient,
	}, nil).Once()

	user, err := s.svc.Authenticate(s.ctx, "asha", "s3cret-pass")
	s.Require().NoError(err)
	s.Equal("user-1", user.UserID)
}

func (s *UserServiceTestSuite) TestAuthenticateWrongPassword() {
	hash, err := utils.HashPassword("s3cret-pass")
	s.Require().NoError(err)

	s.mockRepo.On("FindUserByUsername", s.ctx, "asha").Return(&domain.User{
		Username:     "asha",
		PasswordHash: hash,
		Status:       domain.UserActive,
	}, nil).Once()

	_, err = s.svc.Authenticate(s.ctx, "asha", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *UserServiceTestSuite) TestAuthenticateUnknownUser() {
	s.mockRepo.On("FindUserByUsername", s.ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.svc.Authenticate(s.ctx, "ghost", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *UserServiceTestSuite) TestAuthenticatePendingUserRejected() {
	hash, err := utils.HashPassword("s3cret-pass")
	s.Require().NoError(err)

	s.mockRepo.On("FindUserByUsername", s.ctx, "asha").Return(&domain.User{
		Username:     "asha",
		PasswordHash: hash,
		Status:       domain.UserPending,
	}, nil).Once()

	_, err = s.svc.Authenticate(s.ctx, "asha", "s3cret-pass")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *UserServiceTestSuite) TestApproveUser() {
	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(&domain.User{
		UserID: "user-1", Username: "asha", Status: domain.UserPending,
	}, nil).Once()
	s.mockRepo.On("UpdateUserStatus", s.ctx, "user-1", domain.UserActive, "manager-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := s.svc.ApproveUser(s.ctx, "user-1", "manager-1")
	s.Require().NoError(err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestApproveUserNotPending() {
	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(&domain.User{
		UserID: "user-1", Status: domain.UserActive,
	}, nil).Once()

	err := s.svc.ApproveUser(s.ctx, "user-1", "manager-1")
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateUserStatus")
}

func (s *UserServiceTestSuite) TestDisableUserIdempotent() {
	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(&domain.User{
		UserID: "user-1", Status: domain.UserDisabled,
	}, nil).Once()

	err := s.svc.DisableUser(s.ctx, "user-1", "manager-1")
	s.Require().NoError(err)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateUserStatus")
}

func (s *UserServiceTestSuite) TestUpdateUserPartialFields() {
	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(&domain.User{
		UserID: "user-1", Name: "Asha", Email: "old@example.com", Mobile: "555-0101",
	}, nil).Once()

	newEmail := "new@example.com"
	s.mockRepo.On("UpdateUser", s.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == newEmail && u.Name == "Asha" && u.Mobile == "555-0101"
	})).Return(nil).Once()

	user, err := s.svc.UpdateUser(s.ctx, "user-1", dto.UpdateUserRequest{Email: &newEmail}, "user-1")
	s.Require().NoError(err)
	s.Equal(newEmail, user.Email)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *UserServiceTestSuite) TestUpdateUserNoFieldsIsNoOp() {
	s.mockRepo.On("FindUserByID", s.ctx, "user-1").Return(&domain.User{
		UserID: "user-1", Name: "Asha",
	}, nil).Once()

	user, err := s.svc.UpdateUser(s.ctx, "user-1", dto.UpdateUserRequest{}, "user-1")
	s.Require().NoError(err)
	s.Equal("Asha", user.Name)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateUser")
}
