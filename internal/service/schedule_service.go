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

type scheduleRuleRepository interface {
	Create(ctx context.Context, rule *models.WorkingScheduleRule) error
	FindLatest(ctx context.Context, scope models.ScheduleScope, scopeID string) (*models.WorkingScheduleRule, error)
	List(ctx context.Context, filter models.ScheduleRuleFilter) ([]models.WorkingScheduleRule, int, error)
}

type workerReferenceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Worker, error)
	FindGroup(ctx context.Context, id string) (*models.WorkerGroup, error)
}

// ScheduleService resolves the applicable working-schedule rule for a
// worker and manages rule definitions.
type ScheduleService struct {
	rules     scheduleRuleRepository
	workers   workerReferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(rules scheduleRuleRepository, workers workerReferenceRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ScheduleService{rules: rules, workers: workers, validator: validate, logger: logger}
	svc.validator.RegisterValidation("schedule_scope", func(fl validator.FieldLevel) bool {
		return models.ScheduleScope(fl.Field().String()).Valid()
	})
	return svc
}

// scopeLookup is one step of the resolution chain, evaluated lazily.
type scopeLookup struct {
	scope   models.ScheduleScope
	scopeID func(ctx context.Context) (string, bool, error)
}

// Resolve returns the single applicable rule for a worker by priority
// fallback: worker, group, field, client, organization. Read-only; nothing
// is cached across calls. Exhausting all scopes is a terminal
// NO_SCHEDULE_FOUND error, never a silent default.
func (s *ScheduleService) Resolve(ctx context.Context, workerID string) (*models.WorkingScheduleRule, error) {
	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	// The group row is loaded at most once, and only when a group-level
	// or field-level lookup actually runs.
	var group *models.WorkerGroup
	loadGroup := func(ctx context.Context) (*models.WorkerGroup, error) {
		if group != nil || worker.GroupID == nil {
			return group, nil
		}
		g, err := s.workers.FindGroup(ctx, *worker.GroupID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		group = g
		return group, nil
	}

	lookups := map[models.ScheduleScope]scopeLookup{
		models.ScheduleScopeWorker: {models.ScheduleScopeWorker, func(context.Context) (string, bool, error) {
			return worker.ID, true, nil
		}},
		models.ScheduleScopeGroup: {models.ScheduleScopeGroup, func(context.Context) (string, bool, error) {
			if worker.GroupID == nil {
				return "", false, nil
			}
			return *worker.GroupID, true, nil
		}},
		models.ScheduleScopeField: {models.ScheduleScopeField, func(ctx context.Context) (string, bool, error) {
			g, err := loadGroup(ctx)
			if err != nil {
				return "", false, err
			}
			if g == nil || g.FieldID == nil {
				return "", false, nil
			}
			return *g.FieldID, true, nil
		}},
		models.ScheduleScopeClient: {models.ScheduleScopeClient, func(context.Context) (string, bool, error) {
			if worker.ClientID == nil {
				return "", false, nil
			}
			return *worker.ClientID, true, nil
		}},
		models.ScheduleScopeOrganization: {models.ScheduleScopeOrganization, func(context.Context) (string, bool, error) {
			return "", true, nil
		}},
	}

	for _, scope := range models.ResolutionOrder {
		step := lookups[scope]
		scopeID, ok, err := step.scopeID(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
		}
		if !ok {
			continue
		}
		rule, err := s.rules.FindLatest(ctx, step.scope, scopeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
		}
		return rule, nil
	}

	return nil, appErrors.ErrNoScheduleFound
}

// CreateScheduleRuleRequest describes a new rule definition.
type CreateScheduleRuleRequest struct {
	Scope          string  `json:"scope" validate:"required,schedule_scope"`
	ScopeID        string  `json:"scope_id"`
	HoursPerDay    float64 `json:"hours_per_day" validate:"required,gt=0,lte=24"`
	DaysPerWeek    int     `json:"days_per_week" validate:"required,min=1,max=7"`
	StartMinutes   int     `json:"start_minutes" validate:"min=0,max=1439"`
	BreakMinutes   int     `json:"break_minutes" validate:"min=0,max=480"`
	BreakPaid      bool    `json:"break_paid"`
	BonusPaid      bool    `json:"bonus_paid"`
	DailyBudget100 float64 `json:"daily_budget_100" validate:"min=0"`
	DailyBudget125 float64 `json:"daily_budget_125" validate:"min=0"`
	DailyBudget150 float64 `json:"daily_budget_150" validate:"min=0"`
}

// CreateRule stores a new working-schedule rule.
func (s *ScheduleService) CreateRule(ctx context.Context, req CreateScheduleRuleRequest) (*models.WorkingScheduleRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	scope := models.ScheduleScope(req.Scope)
	if scope != models.ScheduleScopeOrganization && req.ScopeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scope_id is required for non-organization scopes")
	}

	rule := &models.WorkingScheduleRule{
		Scope:          scope,
		ScopeID:        req.ScopeID,
		HoursPerDay:    req.HoursPerDay,
		DaysPerWeek:    req.DaysPerWeek,
		StartMinutes:   req.StartMinutes,
		BreakMinutes:   req.BreakMinutes,
		BreakPaid:      req.BreakPaid,
		BonusPaid:      req.BonusPaid,
		DailyBudget100: req.DailyBudget100,
		DailyBudget125: req.DailyBudget125,
		DailyBudget150: req.DailyBudget150,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to create schedule rule")
	}
	return rule, nil
}

// ListRules returns paginated rules.
func (s *ScheduleService) ListRules(ctx context.Context, filter models.ScheduleRuleFilter) ([]models.WorkingScheduleRule, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	filter.Page = page
	filter.PageSize = size

	rows, total, err := s.rules.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list schedule rules")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
