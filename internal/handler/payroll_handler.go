package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
	"github.com/fieldcrew/fieldpay-api/pkg/response"
)

type payrollService interface {
	SubmitBatch(ctx context.Context, items []models.PayrollBatchItem) (*models.PayrollBatchStatus, error)
	GetBatchStatus(ctx context.Context, batchID string) (*models.PayrollBatchStatus, error)
	BuildDocument(ctx context.Context, workerID string, month, year int) (*models.PayrollDocument, error)
}

// PayrollHandler exposes payroll submission endpoints.
type PayrollHandler struct {
	service payrollService
}

// NewPayrollHandler builds a new handler.
func NewPayrollHandler(service payrollService) *PayrollHandler {
	return &PayrollHandler{service: service}
}

type submitBatchRequest struct {
	Items []models.PayrollBatchItem `json:"items" binding:"required"`
}

// Submit godoc
// @Summary Submit a batch of monthly documents to the payroll system
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payload body submitBatchRequest true "Batch items"
// @Success 202 {object} response.Envelope
// @Router /payroll/submit [post]
func (h *PayrollHandler) Submit(c *gin.Context) {
	var req submitBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	status, err := h.service.SubmitBatch(c.Request.Context(), req.Items)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, status, nil)
}

// BatchStatus godoc
// @Summary Get the progress of a payroll batch
// @Tags Payroll
// @Produce json
// @Param id path string true "Batch id"
// @Success 200 {object} response.Envelope
// @Router /payroll/batches/{id} [get]
func (h *PayrollHandler) BatchStatus(c *gin.Context) {
	status, err := h.service.GetBatchStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Preview godoc
// @Summary Build the payroll document for one worker-month without sending it
// @Tags Payroll
// @Produce json
// @Param workerId path string true "Worker id"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Router /payroll/preview/{workerId} [get]
func (h *PayrollHandler) Preview(c *gin.Context) {
	month, year, err := monthYearQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.service.BuildDocument(c.Request.Context(), c.Param("workerId"), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}
