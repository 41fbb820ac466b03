package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tasktracker/internal/cache"
	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const principalCacheTTL = time.Minute

// PrincipalResolver maps a verified token subject (the account email) to its user.
// Disabled users are resolved; enforcing the enabled flag is left to callers.
type PrincipalResolver struct {
	users repository.UserRepository
	cache *cache.Client
}

// NewPrincipalResolver creates a resolver. cache may be nil.
func NewPrincipalResolver(users repository.UserRepository, cache *cache.Client) *PrincipalResolver {
	return &PrincipalResolver{users: users, cache: cache}
}

func (r *PrincipalResolver) cacheKey(subject string) string {
	return fmt.Sprintf("principal:%s", subject)
}

// Resolve returns the user named by subject or fails with ErrAuthentication.
func (r *PrincipalResolver) Resolve(ctx context.Context, subject string) (*model.User, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", apperrors.ErrAuthentication)
	}

	var cached model.User
	if r.cache.GetJSON(ctx, r.cacheKey(subject), &cached) && cached.Email == subject {
		return &cached, nil
	}

	user, err := r.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown principal", apperrors.ErrAuthentication)
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	_ = r.cache.SetJSON(ctx, r.cacheKey(subject), user, principalCacheTTL)
	return user, nil
}
