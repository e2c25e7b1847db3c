package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MinOfferAmount is the lowest offer the contact form accepts.
const MinOfferAmount = 500

// ContactSubmission is an offer sent through the public contact form.
// Submissions are never updated or deleted.
type ContactSubmission struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	FullName    string    `json:"fullName" gorm:"size:255;not null"`
	Email       string    `json:"email" gorm:"size:255;not null;index"`
	OfferAmount int       `json:"offerAmount" gorm:"not null"`
	Message     *string   `json:"message" gorm:"type:text"`
	SubmittedAt time.Time `json:"submittedAt" gorm:"not null;index"`
}

// BeforeCreate sets UUID before creating the record.
func (s *ContactSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
