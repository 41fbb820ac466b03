package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "tasktracker/internal/errors"
)

// translate maps gorm sentinels onto the domain taxonomy so callers never
// depend on the persistence engine. Other errors pass through with context.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, apperrors.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
