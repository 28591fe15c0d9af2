package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dinesync/backend/pkg/db/models"
	pkgerrors "github.com/dinesync/backend/pkg/errors"
)

type stubSettingsRepo struct {
	row *models.RestaurantSettings
}

func (s *stubSettingsRepo) Get(ctx context.Context) (*models.RestaurantSettings, error) {
	if s.row == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *s.row
	return &cloned, nil
}

func (s *stubSettingsRepo) Save(ctx context.Context, settings *models.RestaurantSettings) error {
	cloned := *settings
	s.row = &cloned
	return nil
}

func TestGetWithoutSeedFails(t *testing.T) {
	svc, err := NewService(&stubSettingsRepo{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateReplacesEditableFields(t *testing.T) {
	repo := &stubSettingsRepo{row: &models.RestaurantSettings{
		Name:     "Old Name",
		Currency: "INR",
	}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	tagline := "Fresh daily"
	updated, err := svc.Update(context.Background(), UpdateInput{
		Name:     "Spice Route",
		Tagline:  &tagline,
		Phone:    "+91 98765 43210",
		Currency: "INR",
	})
	require.NoError(t, err)

	assert.Equal(t, "Spice Route", updated.Name)
	require.NotNil(t, updated.Tagline)
	assert.Equal(t, "Fresh daily", *updated.Tagline)

	// Update clears fields omitted from the replacement.
	again, err := svc.Update(context.Background(), UpdateInput{Name: "Spice Route", Currency: "INR"})
	require.NoError(t, err)
	assert.Nil(t, again.Tagline)
	assert.Empty(t, again.Phone)
}
