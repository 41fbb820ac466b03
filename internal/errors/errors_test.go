package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"expired token", fmt.Errorf("verify: %w", ErrTokenExpired), http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"invalid token", fmt.Errorf("%w: bad signature", ErrInvalidToken), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"authentication", ErrAuthentication, http.StatusUnauthorized, "AUTHENTICATION_FAILED"},
		{"authorization", fmt.Errorf("%w: project 1", ErrAuthorization), http.StatusForbidden, "ACCESS_DENIED"},
		{"not found", fmt.Errorf("%w: task 9", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"validation", ErrValidation, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"conflict", fmt.Errorf("%w: email taken", ErrConflict), http.StatusConflict, "CONFLICT"},
		{"unexpected", errors.New("connection reset by peer"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	assert.Equal(t, "internal server error", httpErr.ToErrorResponse().Error)
}

func TestMapErrorToHTTP_AuthorizationDoesNotLeakTarget(t *testing.T) {
	httpErr := MapErrorToHTTP(fmt.Errorf("%w: project 4f1c is not accessible", ErrAuthorization))
	assert.Equal(t, "access denied", httpErr.Message)
}
