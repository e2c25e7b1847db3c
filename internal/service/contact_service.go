package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"domainsale/internal/email"
	errs "domainsale/internal/errors"
	"domainsale/internal/model"
	"domainsale/internal/repository"
)

// ContactInput is an offer as submitted by the public form.
// Website is the honeypot field; people never see it, bots fill it in.
type ContactInput struct {
	FullName    string
	Email       string
	OfferAmount json.RawMessage
	Message     *string
	Website     string
}

// EmailSettings are the addresses used for offer emails.
type EmailSettings struct {
	From       string
	OwnerEmail string
}

// ContactService handles the contact/offer form.
type ContactService interface {
	Submit(ctx context.Context, input ContactInput) (*model.ContactSubmission, error)
	List(ctx context.Context) ([]model.ContactSubmission, error)
}

type contactService struct {
	repo       repository.SubmissionRepository
	siteConfig SiteConfigService
	mailer     email.Mailer
	settings   EmailSettings
	now        func() time.Time
}

// NewContactService creates a new contact service.
func NewContactService(
	repo repository.SubmissionRepository,
	siteConfig SiteConfigService,
	mailer email.Mailer,
	settings EmailSettings,
) ContactService {
	return &contactService{
		repo:       repo,
		siteConfig: siteConfig,
		mailer:     mailer,
		settings:   settings,
		now:        time.Now,
	}
}

type contactFields struct {
	FullName string `json:"fullName" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// ValidateContact checks an offer and returns the submission it describes.
// It does not look at the honeypot.
func ValidateContact(input ContactInput) (*model.ContactSubmission, error) {
	fields := contactFields{
		FullName: strings.TrimSpace(input.FullName),
		Email:    strings.TrimSpace(input.Email),
	}
	problems := validateStruct(fields)

	amount, amountErr := parseOfferAmount(input.OfferAmount)
	if amountErr != nil {
		problems = append(problems, *amountErr)
	}
	if err := validationError(problems); err != nil {
		return nil, err
	}

	submission := &model.ContactSubmission{
		FullName:    fields.FullName,
		Email:       fields.Email,
		OfferAmount: amount,
	}
	if input.Message != nil {
		if msg := strings.TrimSpace(*input.Message); msg != "" {
			submission.Message = &msg
		}
	}
	return submission, nil
}

// parseOfferAmount accepts a JSON number, or a string holding one, with an integral value.
// 750, 750.0, "750" and 7.5e2 are all 750; the upper bound is the platform int.
func parseOfferAmount(raw json.RawMessage) (int, *errs.FieldError) {
	field := "offerAmount"
	literal := strings.TrimSpace(string(raw))
	if strings.HasPrefix(literal, `"`) {
		var text string
		if err := json.Unmarshal([]byte(literal), &text); err != nil {
			return 0, &errs.FieldError{Field: field, Message: "must be a number"}
		}
		literal = strings.TrimSpace(text)
	}
	if literal == "" || literal == "null" {
		return 0, &errs.FieldError{Field: field, Message: "is required"}
	}

	var number json.Number
	if err := json.Unmarshal([]byte(literal), &number); err != nil {
		return 0, &errs.FieldError{Field: field, Message: "must be a number"}
	}

	// huge exponents would make the exact comparison allocate without bound
	approx, err := strconv.ParseFloat(number.String(), 64)
	switch {
	case err != nil && math.IsInf(approx, 0):
		if approx < 0 {
			return 0, &errs.FieldError{Field: field, Message: fmt.Sprintf("must be at least %d", model.MinOfferAmount)}
		}
		return 0, &errs.FieldError{Field: field, Message: "is too large"}
	case err != nil:
		return 0, &errs.FieldError{Field: field, Message: "must be a whole number"}
	case approx < model.MinOfferAmount:
		return 0, &errs.FieldError{Field: field, Message: fmt.Sprintf("must be at least %d", model.MinOfferAmount)}
	case approx > 2*float64(math.MaxInt):
		return 0, &errs.FieldError{Field: field, Message: "is too large"}
	}

	exact, err := decimal.NewFromString(number.String())
	if err != nil {
		return 0, &errs.FieldError{Field: field, Message: "must be a number"}
	}
	if !exact.IsInteger() {
		return 0, &errs.FieldError{Field: field, Message: "must be a whole number"}
	}
	if exact.GreaterThan(decimal.NewFromInt(math.MaxInt)) {
		return 0, &errs.FieldError{Field: field, Message: "is too large"}
	}
	amount := int(exact.IntPart())
	if amount < model.MinOfferAmount {
		return 0, &errs.FieldError{Field: field, Message: fmt.Sprintf("must be at least %d", model.MinOfferAmount)}
	}
	return amount, nil
}

// Submit runs the offer pipeline: honeypot, validation, persistence, then both emails.
// A stored submission is kept even when an email cannot be delivered.
func (s *contactService) Submit(ctx context.Context, input ContactInput) (*model.ContactSubmission, error) {
	if strings.TrimSpace(input.Website) != "" {
		return nil, errs.ErrInvalidSubmission
	}

	submission, err := ValidateContact(input)
	if err != nil {
		return nil, err
	}

	submission.ID = uuid.New()
	submission.SubmittedAt = s.now().UTC()
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}

	ownerMsg, submitterMsg, err := s.composeEmails(ctx, submission)
	if err != nil {
		return submission, err
	}

	if err := s.mailer.Send(ctx, ownerMsg); err != nil {
		return submission, fmt.Errorf("send owner notification for %s: %w: %w", submission.ID, errs.ErrEmailDelivery, err)
	}
	if err := s.mailer.Send(ctx, submitterMsg); err != nil {
		return submission, fmt.Errorf("send thank-you for %s: %w: %w", submission.ID, errs.ErrEmailDelivery, err)
	}
	return submission, nil
}

func (s *contactService) composeEmails(ctx context.Context, submission *model.ContactSubmission) (email.Message, email.Message, error) {
	config, err := s.siteConfig.Get(ctx, false)
	if err != nil {
		return email.Message{}, email.Message{}, fmt.Errorf("load site config: %w", err)
	}

	props := email.OfferEmailProps{
		DomainName:  config.DomainName,
		FullName:    submission.FullName,
		Email:       submission.Email,
		OfferAmount: submission.OfferAmount,
		SubmittedAt: submission.SubmittedAt,
	}
	if submission.Message != nil {
		props.Message = *submission.Message
	}

	ownerHTML, err := email.RenderOwnerNotification(props)
	if err != nil {
		return email.Message{}, email.Message{}, err
	}
	submitterHTML, err := email.RenderSubmitterThankYou(props)
	if err != nil {
		return email.Message{}, email.Message{}, err
	}

	owner := email.Message{
		From:    s.settings.From,
		To:      s.settings.OwnerEmail,
		ReplyTo: submission.Email,
		Subject: email.OfferSubject,
		HTML:    ownerHTML,
	}
	submitter := email.Message{
		From:    s.settings.From,
		To:      submission.Email,
		ReplyTo: s.settings.OwnerEmail,
		Subject: email.SubmitterSubject(config.DomainName),
		HTML:    submitterHTML,
	}
	return owner, submitter, nil
}

// List returns every stored submission, newest first.
func (s *contactService) List(ctx context.Context) ([]model.ContactSubmission, error) {
	return s.repo.List(ctx)
}
