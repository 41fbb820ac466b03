package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tasktracker/internal/auth"
	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/mq"
	"tasktracker/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperrors.ErrAuthentication)
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = fmt.Errorf("%w: email is already registered", apperrors.ErrConflict)
	// ErrAccountDisabled is returned when a disabled account tries to log in.
	ErrAccountDisabled = fmt.Errorf("%w: account is disabled", apperrors.ErrAuthentication)
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (accessToken string, user *model.User, err error)
	Login(ctx context.Context, email, password string) (accessToken string, user *model.User, err error)
}

type authService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens *auth.TokenService
	events eventSink
	logger *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenService,
	publisher mq.Publisher,
	logger *zap.Logger,
) AuthService {
	logger = orNop(logger)
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: newEventSink(publisher, logger),
		logger: logger,
	}
}

// Register creates a USER account and returns a token for it.
func (s *authService) Register(ctx context.Context, email, password, displayName string) (string, *model.User, error) {
	s.logger.Info("Registering user", zap.String("email", email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return "", nil, ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         model.RoleUser,
		Enabled:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, apperrors.ErrConflict) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.IssueDefault(user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	s.events.emit(ctx, mq.UserRegistered, mq.UserRegisteredPayload{UserID: user.ID, Email: user.Email})
	return token, user, nil
}

// Login verifies credentials and returns a token with the default TTL.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.tokens.IssueDefault(user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return token, user, nil
}
