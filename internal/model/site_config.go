package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteConfig holds the branding of the landing page. At most one row exists.
type SiteConfig struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	DomainName      string    `json:"domainName" gorm:"size:253;not null"`
	BackgroundColor string    `json:"backgroundColor" gorm:"size:64;not null"`
	AccentColor     string    `json:"accentColor" gorm:"size:64;not null"`
	FontColor       string    `json:"fontColor" gorm:"size:64;not null"`
	ResendAPIKey    *string   `json:"resendApiKey,omitempty" gorm:"size:255"`
}

// DefaultSiteConfig returns the branding used until an admin saves their own.
func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		DomainName:      "YourDomain.com",
		BackgroundColor: "#FFFFFF",
		AccentColor:     "#000000",
		FontColor:       "#000000",
	}
}

// Redacted returns a copy without the email provider key.
func (c SiteConfig) Redacted() SiteConfig {
	c.ResendAPIKey = nil
	return c
}

// BeforeCreate sets UUID before creating the record.
func (c *SiteConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
