package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fieldcrew/fieldpay-api/internal/middleware"
	"github.com/fieldcrew/fieldpay-api/internal/models"
	"github.com/fieldcrew/fieldpay-api/internal/service"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
	"github.com/fieldcrew/fieldpay-api/pkg/response"
)

type attendanceService interface {
	Reconcile(ctx context.Context, req service.ReconcileAttendanceRequest) (*models.AttendanceRecord, error)
	Approve(ctx context.Context, workerID, date string) (*models.AttendanceRecord, error)
	Reject(ctx context.Context, workerID, date, reason string) (*models.AttendanceRecord, error)
	GetDay(ctx context.Context, workerID, date string) (*models.AttendanceRecord, bool, error)
	List(ctx context.Context, req service.AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error)
}

// AttendanceHandler exposes daily attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
	metrics *service.MetricsService
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(svc attendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, metrics: metrics}
}

// Reconcile godoc
// @Summary Create or edit the attendance record for one worker-day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.ReconcileAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/reconcile [post]
func (h *AttendanceHandler) Reconcile(c *gin.Context) {
	var req service.ReconcileAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	req.Actor = claimsFromContext(c)
	record, err := h.service.Reconcile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveReconcile("reconcile")
	response.JSON(c, http.StatusOK, record, nil)
}

// Approve godoc
// @Summary Approve the attendance record for one worker-day
// @Tags Attendance
// @Produce json
// @Param workerId path string true "Worker id"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{workerId}/{date}/approve [post]
func (h *AttendanceHandler) Approve(c *gin.Context) {
	record, err := h.service.Approve(c.Request.Context(), c.Param("workerId"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveReconcile("approve")
	response.JSON(c, http.StatusOK, record, nil)
}

// GetDay godoc
// @Summary Get the attendance record for one worker-day
// @Tags Attendance
// @Produce json
// @Param workerId path string true "Worker id"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/{workerId}/{date} [get]
func (h *AttendanceHandler) GetDay(c *gin.Context) {
	record, weekend, err := h.service.GetDay(c.Request.Context(), c.Param("workerId"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	meta["weekend_calendar_day"] = weekend
	response.JSON(c, http.StatusOK, record, nil, meta)
}

type rejectAttendanceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject godoc
// @Summary Reject the attendance record for one worker-day
// @Tags Attendance
// @Accept json
// @Produce json
// @Param workerId path string true "Worker id"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body rejectAttendanceRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{workerId}/{date}/reject [post]
func (h *AttendanceHandler) Reject(c *gin.Context) {
	var req rejectAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required"))
		return
	}
	record, err := h.service.Reject(c.Request.Context(), c.Param("workerId"), c.Param("date"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveReconcile("reject")
	response.JSON(c, http.StatusOK, record, nil)
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param worker_id query string false "Worker filter"
// @Param group_id query string false "Group filter"
// @Param status query string false "Day status filter"
// @Param approval query string false "Approval filter"
// @Param date_from query string false "Range start (YYYY-MM-DD)"
// @Param date_to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	req := service.AttendanceListRequest{
		WorkerID:  c.Query("worker_id"),
		GroupID:   c.Query("group_id"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 50),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" {
		req.Status = &status
	}
	if approval := c.Query("approval"); approval != "" {
		req.Approval = &approval
	}
	var err error
	if req.DateFrom, err = queryDate(c, "date_from"); err != nil {
		response.Error(c, err)
		return
	}
	if req.DateTo, err = queryDate(c, "date_to"); err != nil {
		response.Error(c, err)
		return
	}

	records, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be YYYY-MM-DD")
	}
	return &parsed, nil
}
