package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"domainsale/internal/errors"
)

// Middleware rejects requests once the client behind c.RealIP() exhausted its window.
// Limiter failures let the request through.
func Middleware(limiter Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				c.Logger().Errorf("rate limiter unavailable: %v", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(int(math.Ceil(decision.ResetIn.Seconds()))))

			if !decision.Allowed {
				rateErr := &errors.RateLimitError{RetryAfter: decision.RetryAfter}
				h.Set("Retry-After", strconv.Itoa(rateErr.RetryAfterSeconds()))
				httpErr := errors.MapErrorToHTTP(rateErr)
				return c.JSON(http.StatusTooManyRequests, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}
