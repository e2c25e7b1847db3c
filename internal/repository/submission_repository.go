package repository

import (
	"context"

	"gorm.io/gorm"

	"domainsale/internal/model"
)

// SubmissionRepository stores contact form submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.ContactSubmission) error
	List(ctx context.Context) ([]model.ContactSubmission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create inserts a submission.
func (r *submissionRepository) Create(ctx context.Context, submission *model.ContactSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// List returns all submissions, newest first.
func (r *submissionRepository) List(ctx context.Context) ([]model.ContactSubmission, error) {
	var submissions []model.ContactSubmission
	if err := r.db.WithContext(ctx).Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
