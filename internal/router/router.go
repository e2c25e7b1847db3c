package router

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	errs "domainsale/internal/errors"
	"domainsale/internal/handler"
	"domainsale/internal/ratelimit"
	"domainsale/internal/service"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth       *handler.AuthHandler
	Contact    *handler.ContactHandler
	SiteConfig *handler.SiteConfigHandler
	User       *handler.UserHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	authService service.AuthService,
	contactLimiter ratelimit.Limiter,
	h Handlers,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))

	e.Validator = &CustomValidator{}

	// forwarding headers are only believed when main installed a proxy-aware extractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	requireAuth := SessionAuth(authService, false)
	optionalAuth := SessionAuth(authService, true)

	// Public routes
	api.POST("/contact", h.Contact.Submit, ratelimit.Middleware(contactLimiter))
	api.GET("/site-config", h.SiteConfig.Get, optionalAuth)
	api.POST("/login", h.Auth.Login)
	api.POST("/logout", h.Auth.Logout)

	// Admin routes
	secured := api.Group("", requireAuth)
	secured.PUT("/site-config", h.SiteConfig.Update)
	secured.POST("/change-password", h.Auth.ChangePassword)
	secured.GET("/user", h.Auth.Me)
	secured.GET("/users", h.User.ListUsers)
	secured.POST("/users", h.User.CreateUser)
	secured.GET("/contact-submissions", h.Contact.List)
}

// IPExtractor trusts X-Forwarded-For only when the peer is inside one of trustedProxies.
// With no proxies the socket address is used as is.
func IPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...), nil
}

// SessionAuth resolves the session cookie into a *handler.Principal.
// With optional set, requests without a valid session continue anonymously.
func SessionAuth(authService service.AuthService, optional bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + handler.SessionCookieName,
		ContextKey:  handler.PrincipalContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			user, err := authService.CurrentUser(c.Request().Context(), token)
			if err != nil {
				return nil, err
			}
			return &handler.Principal{User: user, Token: token}, nil
		},
		ContinueOnIgnoredError: optional,
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			anonymous := errors.Is(err, errs.ErrUnauthenticated) || errors.As(err, &extractErr)
			if !anonymous {
				c.Logger().Errorf("resolve session: %v", err)
			}
			if optional {
				return nil
			}
			if anonymous {
				return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrorResponse{
					Error: errs.ErrUnauthenticated.Error(),
					Code:  "UNAUTHENTICATED",
				})
			}
			httpErr := errs.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// CustomValidator adapts struct tag validation to echo.Validator.
type CustomValidator struct{}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return service.Validate(i)
}
