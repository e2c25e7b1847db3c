package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"domainsale/internal/service"
)

// SiteConfigHandler serves the landing page configuration.
type SiteConfigHandler struct {
	svc service.SiteConfigService
}

// NewSiteConfigHandler creates a new site config handler.
func NewSiteConfigHandler(svc service.SiteConfigService) *SiteConfigHandler {
	return &SiteConfigHandler{svc: svc}
}

// Get godoc
// @Summary Get site configuration
// @Description The resendApiKey field is only present for a logged in admin.
// @Tags site-config
// @Produce json
// @Success 200 {object} model.SiteConfig
// @Failure 500 {object} errors.ErrorResponse
// @Router /site-config [get]
func (h *SiteConfigHandler) Get(c echo.Context) error {
	_, authenticated := PrincipalFrom(c)
	config, err := h.svc.Get(c.Request().Context(), authenticated)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, config)
}

// Update godoc
// @Summary Replace site configuration
// @Description Fields left out of the body are cleared.
// @Tags site-config
// @Accept json
// @Produce json
// @Param request body service.SiteConfigInput true "New configuration"
// @Success 200 {object} model.SiteConfig
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /site-config [put]
func (h *SiteConfigHandler) Update(c echo.Context) error {
	_, authenticated := PrincipalFrom(c)

	var input service.SiteConfigInput
	if err := c.Bind(&input); err != nil {
		return badRequest("invalid request body")
	}

	config, err := h.svc.Update(c.Request().Context(), input, authenticated)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, config)
}
