package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldcrew/fieldpay-api/internal/middleware"
	"github.com/fieldcrew/fieldpay-api/internal/models"
	"github.com/fieldcrew/fieldpay-api/internal/service"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
	"github.com/fieldcrew/fieldpay-api/pkg/response"
)

type scheduleService interface {
	Resolve(ctx context.Context, workerID string) (*models.WorkingScheduleRule, error)
	CreateRule(ctx context.Context, req service.CreateScheduleRuleRequest) (*models.WorkingScheduleRule, error)
	ListRules(ctx context.Context, filter models.ScheduleRuleFilter) ([]models.WorkingScheduleRule, *models.Pagination, error)
}

// ScheduleHandler exposes working-schedule rule endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler builds a new handler.
func NewScheduleHandler(service scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// Create godoc
// @Summary Create a working-schedule rule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleRuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateScheduleRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rule payload"))
		return
	}
	rule, err := h.service.CreateRule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rule)
}

// List godoc
// @Summary List working-schedule rules
// @Tags Schedules
// @Produce json
// @Param scope query string false "Scope filter"
// @Param scope_id query string false "Scope id filter"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleRuleFilter{
		Scope:    models.ScheduleScope(c.Query("scope")),
		ScopeID:  c.Query("scope_id"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}
	rules, pagination, err := h.service.ListRules(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, pagination)
}

// Resolve godoc
// @Summary Resolve the effective schedule rule for a worker
// @Tags Schedules
// @Produce json
// @Param workerId query string true "Worker id"
// @Success 200 {object} response.Envelope
// @Router /schedules/resolve [get]
func (h *ScheduleHandler) Resolve(c *gin.Context) {
	workerID := c.Query("workerId")
	if workerID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "workerId is required"))
		return
	}
	rule, err := h.service.Resolve(c.Request.Context(), workerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	meta["resolved_scope"] = rule.Scope
	response.JSON(c, http.StatusOK, rule, nil, meta)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
