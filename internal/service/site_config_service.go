package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	errs "domainsale/internal/errors"
	"domainsale/internal/model"
	"domainsale/internal/repository"
)

// SiteConfigInput is a complete replacement for the site configuration.
type SiteConfigInput struct {
	DomainName      string  `json:"domainName" validate:"required,max=253"`
	BackgroundColor string  `json:"backgroundColor" validate:"required,iscolor"`
	AccentColor     string  `json:"accentColor" validate:"required,iscolor"`
	FontColor       string  `json:"fontColor" validate:"required,iscolor"`
	ResendAPIKey    *string `json:"resendApiKey,omitempty" validate:"omitempty,max=255"`
}

// SiteConfigService reads and replaces the singleton site configuration.
type SiteConfigService interface {
	Get(ctx context.Context, authenticated bool) (*model.SiteConfig, error)
	Update(ctx context.Context, input SiteConfigInput, authenticated bool) (*model.SiteConfig, error)
	EnsureDefault(ctx context.Context) (*model.SiteConfig, error)
	ResendAPIKey(ctx context.Context) (string, error)
}

type siteConfigService struct {
	repo repository.SiteConfigRepository
	// serialises lazy creation so two first readers cannot both seed the default
	initMu sync.Mutex
}

// NewSiteConfigService creates a new site configuration service.
func NewSiteConfigService(repo repository.SiteConfigRepository) SiteConfigService {
	return &siteConfigService{repo: repo}
}

// Get returns the configuration; the provider key is only kept for authenticated callers.
func (s *siteConfigService) Get(ctx context.Context, authenticated bool) (*model.SiteConfig, error) {
	config, err := s.EnsureDefault(ctx)
	if err != nil {
		return nil, err
	}
	if !authenticated {
		redacted := config.Redacted()
		return &redacted, nil
	}
	return config, nil
}

// Update replaces the whole record. Fields left out of input are cleared.
func (s *siteConfigService) Update(ctx context.Context, input SiteConfigInput, authenticated bool) (*model.SiteConfig, error) {
	if !authenticated {
		return nil, errs.ErrUnauthorized
	}

	input.DomainName = strings.TrimSpace(input.DomainName)
	input.BackgroundColor = strings.TrimSpace(input.BackgroundColor)
	input.AccentColor = strings.TrimSpace(input.AccentColor)
	input.FontColor = strings.TrimSpace(input.FontColor)
	if input.ResendAPIKey != nil {
		key := strings.TrimSpace(*input.ResendAPIKey)
		input.ResendAPIKey = nil
		if key != "" {
			input.ResendAPIKey = &key
		}
	}

	if err := validationError(validateStruct(input)); err != nil {
		return nil, err
	}

	config := &model.SiteConfig{
		DomainName:      input.DomainName,
		BackgroundColor: input.BackgroundColor,
		AccentColor:     input.AccentColor,
		FontColor:       input.FontColor,
		ResendAPIKey:    input.ResendAPIKey,
	}
	if err := s.repo.Replace(ctx, config); err != nil {
		return nil, fmt.Errorf("replace site config: %w", err)
	}

	redacted := config.Redacted()
	return &redacted, nil
}

// EnsureDefault returns the stored configuration, creating the default one first if none exists.
func (s *siteConfigService) EnsureDefault(ctx context.Context) (*model.SiteConfig, error) {
	config, err := s.repo.Get(ctx)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load site config: %w", err)
	}

	s.initMu.Lock()
	defer s.initMu.Unlock()

	if config, err := s.repo.Get(ctx); err == nil {
		return config, nil
	}
	def := model.DefaultSiteConfig()
	if err := s.repo.Replace(ctx, &def); err != nil {
		return nil, fmt.Errorf("create default site config: %w", err)
	}
	return &def, nil
}

// ResendAPIKey returns the stored provider key or "".
func (s *siteConfigService) ResendAPIKey(ctx context.Context) (string, error) {
	config, err := s.EnsureDefault(ctx)
	if err != nil {
		return "", err
	}
	if config.ResendAPIKey == nil {
		return "", nil
	}
	return *config.ResendAPIKey, nil
}
