package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

// OrganizationRepository reads the single-row organization settings used as
// the OrganizationSettingsProvider.
type OrganizationRepository struct {
	db *sqlx.DB
}

// NewOrganizationRepository constructs the repository.
func NewOrganizationRepository(db *sqlx.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// GetSettings returns the organization settings row, or sql.ErrNoRows.
func (r *OrganizationRepository) GetSettings(ctx context.Context) (*models.OrganizationSettings, error) {
	query := `SELECT id, name, is_bonus_paid, rate_100, rate_125, rate_150 FROM organization_settings LIMIT 1`
	var settings models.OrganizationSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings replaces the mutable pay-policy fields.
func (r *OrganizationRepository) UpdateSettings(ctx context.Context, settings *models.OrganizationSettings) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE organization_settings
SET is_bonus_paid = $2, rate_100 = $3, rate_125 = $4, rate_150 = $5, updated_at = $6
WHERE id = $1`,
		settings.ID, settings.IsBonusPaid, settings.Rate100, settings.Rate125, settings.Rate150, time.Now().UTC()); err != nil {
		return fmt.Errorf("update organization settings: %w", err)
	}
	return nil
}
