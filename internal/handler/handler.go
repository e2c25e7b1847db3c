package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"domainsale/internal/errors"
	"domainsale/internal/model"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "sid"

// PrincipalContextKey is where the auth middleware stores the *Principal.
const PrincipalContextKey = "principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	User  *model.User
	Token string
}

// PrincipalFrom returns the caller resolved by the auth middleware, if any.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(PrincipalContextKey).(*Principal)
	return p, ok && p != nil
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondError turns a service error into the HTTP error echo writes out.
// Internal failures are logged here and reach the caller only as a generic 500.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	if httpErr.RetryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(httpErr.RetryAfter))
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  "INVALID_REQUEST",
	})
}

func unauthenticated() error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: errors.ErrUnauthenticated.Error(),
		Code:  "UNAUTHENTICATED",
	})
}
