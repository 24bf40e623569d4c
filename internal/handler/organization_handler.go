package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	"github.com/fieldcrew/fieldpay-api/internal/service"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
	"github.com/fieldcrew/fieldpay-api/pkg/response"
)

type organizationService interface {
	GetSettings(ctx context.Context) (*models.OrganizationSettings, error)
	UpdateSettings(ctx context.Context, req service.UpdateSettingsRequest) (*models.OrganizationSettings, error)
}

// OrganizationHandler exposes the organization pay-policy endpoints.
type OrganizationHandler struct {
	service organizationService
}

// NewOrganizationHandler builds a new handler.
func NewOrganizationHandler(service organizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// GetSettings godoc
// @Summary Get the organization pay policy
// @Tags Organization
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /organization/settings [get]
func (h *OrganizationHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateSettings godoc
// @Summary Update the organization pay policy
// @Tags Organization
// @Accept json
// @Produce json
// @Param payload body service.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /organization/settings [put]
func (h *OrganizationHandler) UpdateSettings(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	settings, err := h.service.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
