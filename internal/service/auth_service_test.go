package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/auth"
	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/mq"
)

func newTestAuthService(repo *MockUserRepository, publisher mq.Publisher) AuthService {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	return NewAuthService(repo, auth.NewBcryptHasher(bcrypt.MinCost), tokens, publisher, nil)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		displayName   string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:        "successful registration",
			email:       "test@example.com",
			password:    "password123",
			displayName: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:        "user already exists",
			email:       "existing@example.com",
			password:    "password123",
			displayName: "Existing User",
			setupMock: func(m *MockUserRepository) {
				m.On("ExistsByEmail", mock.Anything, "existing@example.com").Return(true, nil)
			},
			expectedError: ErrUserAlreadyExists,
		},
		{
			name:        "lost race on unique email",
			email:       "racer@example.com",
			password:    "password123",
			displayName: "Racer",
			setupMock: func(m *MockUserRepository) {
				m.On("ExistsByEmail", mock.Anything, "racer@example.com").Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(apperrors.ErrConflict)
			},
			expectedError: ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			publisher := &recordingPublisher{}

			service := newTestAuthService(mockRepo, publisher)
			token, user, err := service.Register(context.Background(), tt.email, tt.password, tt.displayName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
				assert.Empty(t, publisher.published())
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.displayName, user.DisplayName)
				assert.Equal(t, model.RoleUser, user.Role)
				assert.True(t, user.Enabled)
				assert.NotEqual(t, tt.password, user.PasswordHash)
				assert.Equal(t, []string{mq.UserRegistered}, publisher.published())
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					Role:         model.RoleUser,
					Enabled:      true,
				}, nil)
			},
		},
		{
			name:     "invalid credentials - user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, apperrors.ErrNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "wrong",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					Enabled:      true,
				}, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "disabled account",
			email:    "off@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "off@example.com").Return(&model.User{
					Email:        "off@example.com",
					PasswordHash: string(hashedPassword),
					Enabled:      false,
				}, nil)
			},
			expectedError: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := newTestAuthService(mockRepo, nil)
			token, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.ErrorIs(t, err, apperrors.ErrAuthentication)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.email, user.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginTokenCarriesEmailSubject(t *testing.T) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(&model.User{
		Email:        "alice@example.com",
		PasswordHash: string(hashedPassword),
		Enabled:      true,
	}, nil)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	service := NewAuthService(mockRepo, auth.NewBcryptHasher(bcrypt.MinCost), tokens, nil, nil)

	token, _, err := service.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}
