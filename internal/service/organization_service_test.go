package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type mockSettingsRepo struct {
	settings *models.OrganizationSettings
	updates  int
}

func (m *mockSettingsRepo) GetSettings(ctx context.Context) (*models.OrganizationSettings, error) {
	if m.settings == nil {
		return nil, sql.ErrNoRows
	}
	out := *m.settings
	return &out, nil
}

func (m *mockSettingsRepo) UpdateSettings(ctx context.Context, settings *models.OrganizationSettings) error {
	m.updates++
	copied := *settings
	m.settings = &copied
	return nil
}

func newOrganizationFixture() (*OrganizationService, *mockSettingsRepo) {
	repo := &mockSettingsRepo{settings: &models.OrganizationSettings{
		ID: "org", Name: "Fieldcrew", Rate100: 30, Rate125: 37.5, Rate150: 45,
	}}
	return NewOrganizationService(repo, nil, zap.NewNop()), repo
}

func TestUpdateSettingsPersistsPolicy(t *testing.T) {
	svc, repo := newOrganizationFixture()

	updated, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		IsBonusPaid: true, Rate100: 32, Rate125: 40, Rate150: 48,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)
	assert.True(t, updated.IsBonusPaid)
	assert.Equal(t, 32.0, updated.Rate100)
	assert.Equal(t, 48.0, repo.settings.Rate150)
	// Identity fields survive a policy update.
	assert.Equal(t, "org", updated.ID)
	assert.Equal(t, "Fieldcrew", updated.Name)
}

func TestUpdateSettingsRejectsDecreasingRates(t *testing.T) {
	svc, repo := newOrganizationFixture()

	_, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		Rate100: 40, Rate125: 35, Rate150: 45,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.updates)
}

func TestUpdateSettingsRequiresPositiveRates(t *testing.T) {
	svc, repo := newOrganizationFixture()

	_, err := svc.UpdateSettings(context.Background(), UpdateSettingsRequest{
		Rate100: 30, Rate125: 0, Rate150: 45,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.updates)
}

func TestGetSettingsNotConfigured(t *testing.T) {
	svc := NewOrganizationService(&mockSettingsRepo{}, nil, zap.NewNop())

	_, err := svc.GetSettings(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
