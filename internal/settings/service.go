// Package settings manages the singleton restaurant profile record.
package settings

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
)

// UpdateInput carries a full replacement of the editable settings fields.
type UpdateInput struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Tagline      *string `json:"tagline" validate:"omitempty,max=200"`
	Phone        string  `json:"phone" validate:"omitempty,max=32"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Address      string  `json:"address" validate:"omitempty,max=500"`
	Currency     string  `json:"currency" validate:"required,len=3"`
	OpeningHours *string `json:"opening_hours" validate:"omitempty,max=200"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
}

// Repository reads and writes the settings row.
type Repository interface {
	Get(ctx context.Context) (*models.RestaurantSettings, error)
	Save(ctx context.Context, settings *models.RestaurantSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Get returns the first (only) row.
func (r *repository) Get(ctx context.Context) (*models.RestaurantSettings, error) {
	var settings models.RestaurantSettings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Save(ctx context.Context, settings *models.RestaurantSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// Service exposes the settings read and replace operations.
type Service interface {
	Get(ctx context.Context) (*models.RestaurantSettings, error)
	Update(ctx context.Context, input UpdateInput) (*models.RestaurantSettings, error)
}

type service struct {
	repo Repository
}

// NewService builds a settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context) (*models.RestaurantSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant settings not seeded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	return settings, nil
}

// Update replaces the editable fields on the singleton row. There is no
// create path; the row is seeded by migration.
func (s *service) Update(ctx context.Context, input UpdateInput) (*models.RestaurantSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.Name = input.Name
	settings.Tagline = input.Tagline
	settings.Phone = input.Phone
	settings.Email = input.Email
	settings.Address = input.Address
	settings.Currency = input.Currency
	settings.OpeningHours = input.OpeningHours
	settings.LogoURL = input.LogoURL

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return settings, nil
}
