package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"domainsale/internal/model"
)

// SiteConfigRepository stores the singleton site configuration.
type SiteConfigRepository interface {
	Get(ctx context.Context) (*model.SiteConfig, error)
	// Replace overwrites the whole record, keeping the existing id.
	Replace(ctx context.Context, config *model.SiteConfig) error
}

type siteConfigRepository struct {
	db *gorm.DB
}

// NewSiteConfigRepository creates a new site config repository.
func NewSiteConfigRepository(db *gorm.DB) SiteConfigRepository {
	return &siteConfigRepository{db: db}
}

// Get returns the stored configuration or ErrNotFound.
func (r *siteConfigRepository) Get(ctx context.Context) (*model.SiteConfig, error) {
	var config model.SiteConfig
	if err := r.db.WithContext(ctx).Order("id").First(&config).Error; err != nil {
		return nil, translate(err)
	}
	return &config, nil
}

// Replace swaps the singleton inside a transaction so no second row appears.
func (r *siteConfigRepository) Replace(ctx context.Context, config *model.SiteConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.SiteConfig
		err := tx.Order("id").First(&existing).Error
		switch {
		case err == nil:
			config.ID = existing.ID
			// Select("*") writes zero values too, so a cleared key is persisted.
			return tx.Model(&existing).Select("*").Updates(config).Error
		case translate(err) == ErrNotFound:
			if config.ID == uuid.Nil {
				config.ID = uuid.New()
			}
			return tx.Create(config).Error
		default:
			return err
		}
	})
}
