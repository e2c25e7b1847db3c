package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"domainsale/internal/errors"
	"domainsale/internal/service"
)

// ContactHandler handles the public offer form.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ContactRequest represents an offer submitted from the landing page.
// Website is a honeypot and must stay empty.
type ContactRequest struct {
	FullName    string          `json:"fullName"`
	Email       string          `json:"email"`
	OfferAmount json.RawMessage `json:"offerAmount" swaggertype:"integer"`
	Message     *string         `json:"message"`
	Website     string          `json:"website"`
}

// ContactResponse represents an accepted offer.
type ContactResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

// Submit godoc
// @Summary Submit an offer for the domain
// @Tags contact
// @Accept json
// @Produce json
// @Param request body ContactRequest true "Offer"
// @Success 201 {object} ContactResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /contact [post]
func (h *ContactHandler) Submit(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		// a filled honeypot wins over a malformed body
		if honeypotFilled(body) {
			return respondError(c, errors.ErrInvalidSubmission)
		}
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "validation failed",
			Code:  "VALIDATION_ERROR",
			Details: []errors.FieldError{
				{Field: "body", Message: "must be a JSON object with text fields"},
			},
		})
	}

	submission, err := h.contactService.Submit(c.Request().Context(), service.ContactInput{
		FullName:    req.FullName,
		Email:       req.Email,
		OfferAmount: req.OfferAmount,
		Message:     req.Message,
		Website:     req.Website,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, ContactResponse{
		Success: true,
		Message: "Thank you for your offer! We'll be in touch soon.",
		ID:      submission.ID,
	})
}

// honeypotFilled reports whether body carries a non-empty website field of any JSON type.
func honeypotFilled(body []byte) bool {
	var fields struct {
		Website json.RawMessage `json:"website"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	raw := bytes.TrimSpace(fields.Website)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text) != ""
	}
	return true
}

// List godoc
// @Summary List received offers
// @Tags contact
// @Produce json
// @Success 200 {array} model.ContactSubmission
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /contact-submissions [get]
func (h *ContactHandler) List(c echo.Context) error {
	submissions, err := h.contactService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, submissions)
}
