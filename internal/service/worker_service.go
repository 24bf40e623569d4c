package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type workerListRepository interface {
	FindByID(ctx context.Context, id string) (*models.Worker, error)
	List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, int, error)
}

// WorkerService exposes the worker reference data behind the attendance
// and payroll flows.
type WorkerService struct {
	workers workerListRepository
	logger  *zap.Logger
}

// NewWorkerService constructs the worker service.
func NewWorkerService(workers workerListRepository, logger *zap.Logger) *WorkerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerService{workers: workers, logger: logger}
}

// Get returns one worker by id.
func (s *WorkerService) Get(ctx context.Context, id string) (*models.Worker, error) {
	worker, err := s.workers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return worker, nil
}

// List returns paginated workers matching the filter.
func (s *WorkerService) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}

	rows, total, err := s.workers.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list workers")
	}
	return rows, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}
