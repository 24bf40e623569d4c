package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
	"github.com/fieldcrew/fieldpay-api/pkg/export"
	"github.com/fieldcrew/fieldpay-api/pkg/response"
)

type monthlyService interface {
	Aggregate(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error)
	Get(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error)
	DailyBreakdown(ctx context.Context, workerID string, month, year int) ([]models.DailyWorkCalculation, error)
	List(ctx context.Context, filter models.MonthlySubmissionFilter) ([]models.MonthlyWorkingHoursSubmission, *models.Pagination, error)
}

// MonthlyHandler exposes monthly aggregation endpoints.
type MonthlyHandler struct {
	service monthlyService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewMonthlyHandler builds a new handler.
func NewMonthlyHandler(service monthlyService, csv *export.CSVExporter, pdf *export.PDFExporter) *MonthlyHandler {
	return &MonthlyHandler{service: service, csv: csv, pdf: pdf}
}

type aggregateRequest struct {
	WorkerID string `json:"worker_id" binding:"required"`
	Month    int    `json:"month" binding:"required,min=1,max=12"`
	Year     int    `json:"year" binding:"required,min=2000"`
}

// Aggregate godoc
// @Summary Recompute the monthly submission for one worker
// @Tags Monthly
// @Accept json
// @Produce json
// @Param payload body aggregateRequest true "Aggregation target"
// @Success 200 {object} response.Envelope
// @Router /monthly/aggregate [post]
func (h *MonthlyHandler) Aggregate(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid aggregation payload"))
		return
	}
	sub, err := h.service.Aggregate(c.Request.Context(), req.WorkerID, req.Month, req.Year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Get godoc
// @Summary Get the monthly submission for one worker
// @Tags Monthly
// @Produce json
// @Param workerId path string true "Worker id"
// @Param month query int true "Month (1-12)"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Router /monthly/{workerId} [get]
func (h *MonthlyHandler) Get(c *gin.Context) {
	month, year, err := monthYearQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.service.Get(c.Request.Context(), c.Param("workerId"), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Days godoc
// @Summary List the per-day calculations behind a monthly submission
// @Tags Monthly
// @Produce json
// @Param workerId path string true "Worker id"
// @Param month query int true "Month"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Router /monthly/{workerId}/days [get]
func (h *MonthlyHandler) Days(c *gin.Context) {
	month, year, err := monthYearQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	calcs, err := h.service.DailyBreakdown(c.Request.Context(), c.Param("workerId"), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calcs, nil)
}

// List godoc
// @Summary List monthly submissions
// @Tags Monthly
// @Produce json
// @Param month query int false "Month filter"
// @Param year query int false "Year filter"
// @Param sent query bool false "Sent-to-payroll filter"
// @Success 200 {object} response.Envelope
// @Router /monthly [get]
func (h *MonthlyHandler) List(c *gin.Context) {
	filter, err := submissionFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	subs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, pagination)
}

// Export godoc
// @Summary Export monthly submissions as CSV or PDF
// @Tags Monthly
// @Produce octet-stream
// @Param month query int true "Month"
// @Param year query int true "Year"
// @Param format query string false "csv or pdf (default csv)"
// @Success 200 {file} binary
// @Router /monthly/export [get]
func (h *MonthlyHandler) Export(c *gin.Context) {
	filter, err := submissionFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if filter.Month == 0 || filter.Year == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month and year are required for export"))
		return
	}
	filter.PageSize = 10000

	subs, _, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	dataset := submissionDataset(subs)
	filename := fmt.Sprintf("monthly_%04d_%02d", filter.Year, filter.Month)

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "csv export failed"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(dataset, fmt.Sprintf("Monthly hours %02d/%04d", filter.Month, filter.Year))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "pdf export failed"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

func submissionDataset(subs []models.MonthlyWorkingHoursSubmission) export.Dataset {
	headers := []string{"Worker", "Month", "Year", "Hours", "Hours 100", "Hours 125", "Hours 150", "Containers", "Salary", "Working Days", "Attendance %", "Sent"}
	rows := make([]map[string]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, map[string]string{
			"Worker":       sub.WorkerID,
			"Month":        strconv.Itoa(sub.Month),
			"Year":         strconv.Itoa(sub.Year),
			"Hours":        formatFloat(sub.TotalMonthlyHours),
			"Hours 100":    formatFloat(sub.TotalHours100),
			"Hours 125":    formatFloat(sub.TotalHours125),
			"Hours 150":    formatFloat(sub.TotalHours150),
			"Containers":   formatFloat(sub.TotalContainersFilled),
			"Salary":       formatFloat(sub.TotalSalary),
			"Working Days": strconv.Itoa(sub.WorkingDays),
			"Attendance %": formatFloat(sub.AttendancePercentage),
			"Sent":         strconv.FormatBool(sub.SentToPayroll),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func monthYearQuery(c *gin.Context) (int, int, error) {
	month := queryInt(c, "month", 0)
	year := queryInt(c, "year", 0)
	if month < 1 || month > 12 {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	if year < 2000 {
		return 0, 0, appErrors.Clone(appErrors.ErrValidation, "year is out of range")
	}
	return month, year, nil
}

func submissionFilterFromQuery(c *gin.Context) (models.MonthlySubmissionFilter, error) {
	filter := models.MonthlySubmissionFilter{
		WorkerID: c.Query("worker_id"),
		Month:    queryInt(c, "month", 0),
		Year:     queryInt(c, "year", 0),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	if raw := c.Query("sent"); raw != "" {
		sent, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "sent must be true or false")
		}
		filter.Sent = &sent
	}
	return filter, nil
}
