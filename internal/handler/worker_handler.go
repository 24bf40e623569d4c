package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	"github.com/fieldcrew/fieldpay-api/pkg/response"
)

type workerService interface {
	Get(ctx context.Context, id string) (*models.Worker, error)
	List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, *models.Pagination, error)
}

// WorkerHandler exposes worker reference-data endpoints.
type WorkerHandler struct {
	service workerService
}

// NewWorkerHandler builds a new handler.
func NewWorkerHandler(service workerService) *WorkerHandler {
	return &WorkerHandler{service: service}
}

// Get godoc
// @Summary Get one worker
// @Tags Workers
// @Produce json
// @Param id path string true "Worker id"
// @Success 200 {object} response.Envelope
// @Router /workers/{id} [get]
func (h *WorkerHandler) Get(c *gin.Context) {
	worker, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, worker, nil)
}

// List godoc
// @Summary List workers
// @Tags Workers
// @Produce json
// @Param search query string false "Name or passport search"
// @Param group_id query string false "Group filter"
// @Param client_id query string false "Client filter"
// @Param active query bool false "Active filter"
// @Success 200 {object} response.Envelope
// @Router /workers [get]
func (h *WorkerHandler) List(c *gin.Context) {
	filter := models.WorkerFilter{
		Search:    c.Query("search"),
		GroupID:   c.Query("group_id"),
		ClientID:  c.Query("client_id"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 50),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}

	workers, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workers, pagination)
}
