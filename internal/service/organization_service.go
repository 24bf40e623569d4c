package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type organizationSettingsRepository interface {
	GetSettings(ctx context.Context) (*models.OrganizationSettings, error)
	UpdateSettings(ctx context.Context, settings *models.OrganizationSettings) error
}

// OrganizationService reads and updates the single-row pay policy.
type OrganizationService struct {
	settings  organizationSettingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOrganizationService constructs the organization service.
func NewOrganizationService(settings organizationSettingsRepository, validate *validator.Validate, logger *zap.Logger) *OrganizationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrganizationService{settings: settings, validator: validate, logger: logger}
}

// GetSettings returns the current organization settings.
func (s *OrganizationService) GetSettings(ctx context.Context) (*models.OrganizationSettings, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "organization settings not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return settings, nil
}

// UpdateSettingsRequest carries the mutable pay-policy fields. Rates must
// be non-decreasing across the overtime windows.
type UpdateSettingsRequest struct {
	IsBonusPaid bool    `json:"is_bonus_paid"`
	Rate100     float64 `json:"rate_100" validate:"required,gt=0"`
	Rate125     float64 `json:"rate_125" validate:"required,gt=0"`
	Rate150     float64 `json:"rate_150" validate:"required,gt=0"`
}

// UpdateSettings replaces the pay policy and returns the stored row.
func (s *OrganizationService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.OrganizationSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.Rate125 < req.Rate100 || req.Rate150 < req.Rate125 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "overtime rates must not decrease across windows")
	}

	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings.IsBonusPaid = req.IsBonusPaid
	settings.Rate100 = req.Rate100
	settings.Rate125 = req.Rate125
	settings.Rate150 = req.Rate150

	if err := s.settings.UpdateSettings(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to update organization settings")
	}
	s.logger.Sugar().Infow("organization pay policy updated",
		"is_bonus_paid", settings.IsBonusPaid,
		"rate_100", settings.Rate100, "rate_125", settings.Rate125, "rate_150", settings.Rate150)
	return settings, nil
}
