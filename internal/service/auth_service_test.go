package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gatepass/internal/auth"
	"gatepass/internal/errors"
	"gatepass/internal/logging"
	"gatepass/internal/model"
	"gatepass/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestAuthService_Login(t *testing.T) {
	hash := mustHash(t, "password123")

	tests := []struct {
		name          string
		username      string
		password      string
		setupMock     func(*MockUserRepository)
		expectedRole  string
		expectedError error
	}{
		{
			name:     "successful login",
			username: "juan",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "juan").Return(&model.User{
					ID: 7, Username: "juan", PasswordHash: hash, Role: "admin",
				}, nil)
			},
			expectedRole: "admin",
		},
		{
			name:     "legacy role normalized",
			username: "old",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "old").Return(&model.User{
					ID: 8, Username: "old", PasswordHash: hash, Role: "gatepass_only",
				}, nil)
			},
			expectedRole: "encoding",
		},
		{
			name:     "wrong password",
			username: "juan",
			password: "nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "juan").Return(&model.User{
					ID: 7, Username: "juan", PasswordHash: hash, Role: "admin",
				}, nil)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			username: "ghost",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, jwtService, new(MockTokenStore), logging.Discard())

			token, user, err := service.Login(context.Background(), tt.username, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.expectedRole, user.Role)

				claims, err := jwtService.ValidateToken(token)
				require.NoError(t, err)
				assert.Equal(t, strconv.FormatUint(uint64(user.ID), 10), claims.Subject)
				assert.Equal(t, tt.expectedRole, claims.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginStorageFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUsername", mock.Anything, "juan").Return(nil, gorm.ErrInvalidDB)

	service := NewAuthService(mockRepo, auth.NewJWTService("test-secret"), new(MockTokenStore), logging.Discard())
	_, _, err := service.Login(context.Background(), "juan", "x")

	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestAuthService_Verify(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	token, issued, err := jwtService.IssueToken(3, "ana", auth.RoleEncoding)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("IsTokenRevoked", mock.Anything, issued.ID).Return(false, nil)
		service := NewAuthService(new(MockUserRepository), jwtService, store, logging.Discard())

		claims, err := service.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "3", claims.Subject)
		assert.Equal(t, "ana", claims.Username)
		store.AssertExpectations(t)
	})

	t.Run("revoked token", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("IsTokenRevoked", mock.Anything, issued.ID).Return(true, nil)
		service := NewAuthService(new(MockUserRepository), jwtService, store, logging.Discard())

		claims, err := service.Verify(context.Background(), token)
		assert.Equal(t, errors.ErrUnauthorized, err)
		assert.Nil(t, claims)
	})

	t.Run("foreign signature", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), auth.NewJWTService("other"), new(MockTokenStore), logging.Discard())

		claims, err := service.Verify(context.Background(), token)
		assert.Equal(t, errors.ErrUnauthorized, err)
		assert.Nil(t, claims)
	})

	t.Run("garbage", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), jwtService, new(MockTokenStore), logging.Discard())

		_, err := service.Verify(context.Background(), "not-a-token")
		assert.Equal(t, errors.ErrUnauthorized, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	_, claims, err := jwtService.IssueToken(3, "ana", auth.RoleEncoding)
	require.NoError(t, err)

	store := new(MockTokenStore)
	store.On("RevokeToken", mock.Anything, claims.ID, mock.AnythingOfType("time.Duration")).Return(nil)

	service := NewAuthService(new(MockUserRepository), jwtService, store, logging.Discard())
	require.NoError(t, service.Logout(context.Background(), claims))
	store.AssertExpectations(t)

	assert.Equal(t, errors.ErrUnauthorized, service.Logout(context.Background(), nil))
}
