package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrAuthentication is returned when credentials are invalid or the token subject is unknown.
	ErrAuthentication = errors.New("authentication failed")
	// ErrInvalidToken is returned when a bearer token is malformed or its signature does not match.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a correctly signed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrAuthorization is returned when the principal does not own the targeted resource.
	ErrAuthorization = errors.New("access denied")
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for structurally malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a write collides with existing state, e.g. a duplicate email.
	ErrConflict = errors.New("conflict")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are classified
// with errors.Is; anything unclassified becomes an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenExpired.Error(), "TOKEN_EXPIRED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrAuthentication):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "AUTHENTICATION_FAILED")
	case errors.Is(err, ErrAuthorization):
		return NewHTTPError(http.StatusForbidden, ErrAuthorization.Error(), "ACCESS_DENIED")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "CONFLICT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
