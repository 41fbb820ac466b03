package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tasktracker/internal/errors"
	"tasktracker/internal/model"
)

// PrincipalContextKey is where the authentication middleware stores the resolved *model.User.
const PrincipalContextKey = "principal"

// DateLayout is the wire format of task due dates.
const DateLayout = "2006-01-02"

// CurrentUser returns the principal resolved for this request.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(PrincipalContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("%w: no principal on request", errors.ErrAuthentication)
	}
	return user, nil
}

// respondError maps a domain error onto the standard error body.
func respondError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  "VALIDATION_FAILED",
	})
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(err.Error())
	}
	return nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid " + name,
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, *value)
	if err != nil {
		return nil, badRequest("dueDate must be formatted as YYYY-MM-DD")
	}
	return &d, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
