package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	ListApprovedRange(ctx context.Context, workerID string, from, to time.Time) ([]models.AttendanceRecord, error)
	ReconcileDay(ctx context.Context, workerID string, date time.Time, mutate func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error)) (*models.AttendanceRecord, error)
	FindByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*models.AttendanceRecord, error)
}

type pricingRepository interface {
	FindByID(ctx context.Context, id string) (*models.PricingCombination, error)
}

type scheduleResolver interface {
	Resolve(ctx context.Context, workerID string) (*models.WorkingScheduleRule, error)
}

// AttendanceService reconciles attendance edits into the single
// authoritative record per (worker, date).
type AttendanceService struct {
	attendance attendanceRepository
	pricing    pricingRepository
	schedules  scheduleResolver
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(attendance attendanceRepository, pricing pricingRepository, schedules scheduleResolver, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{attendance: attendance, pricing: pricing, schedules: schedules, validator: validate, logger: logger}
	svc.validator.RegisterValidation("day_status", func(fl validator.FieldLevel) bool {
		return models.DayStatus(fl.Field().String()).Valid()
	})
	return svc
}

// ReconcileAttendanceRequest is one attendance edit. Omitted fields keep
// their stored values. Containers take priority over explicit start/end
// times when both changed in one request.
type ReconcileAttendanceRequest struct {
	WorkerID             string   `json:"worker_id" validate:"required"`
	Date                 string   `json:"date" validate:"required"`
	GroupID              *string  `json:"group_id"`
	Status               *string  `json:"status" validate:"omitempty,day_status"`
	StartMinutes         *int     `json:"start_minutes" validate:"omitempty,min=0,max=1439"`
	EndMinutes           *int     `json:"end_minutes" validate:"omitempty,min=1,max=1679"`
	BreakMinutes         *int     `json:"break_minutes" validate:"omitempty,min=0,max=480"`
	BreakPaid            *bool    `json:"break_paid"`
	ContainersFilled     *float64 `json:"containers_filled" validate:"omitempty,min=0"`
	PricingCombinationID *string  `json:"pricing_combination_id"`
	TotalWage            *float64 `json:"total_wage" validate:"omitempty,min=0"`

	Actor *models.JWTClaims `json:"-"`
}

// Reconcile merges an edit with whatever exists for the (worker, date):
// a REJECTED record is purged, a PENDING record is mutated in place, else
// the APPROVED record is edited, else a new record is created. The whole
// sequence runs in one transaction so the at-most-one-APPROVED invariant
// holds under concurrent edits.
func (s *AttendanceService) Reconcile(ctx context.Context, req ReconcileAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}

	record, err := s.attendance.ReconcileDay(ctx, req.WorkerID, date, func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error) {
		if existing == nil {
			return s.buildNewRecord(ctx, req, date)
		}
		return s.applyEdit(ctx, req, existing)
	})
	if err != nil {
		var typed *appErrors.Error
		if errors.As(err, &typed) {
			return nil, typed
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return record, nil
}

func (s *AttendanceService) buildNewRecord(ctx context.Context, req ReconcileAttendanceRequest, date time.Time) (*models.AttendanceRecord, error) {
	status := models.DayStatusWorking
	if req.Status != nil {
		status = models.DayStatus(*req.Status)
	}

	hasContainers := req.ContainersFilled != nil
	hasPricing := req.PricingCombinationID != nil
	if hasContainers != hasPricing {
		return nil, appErrors.ErrIncompleteNewRecord
	}

	record := &models.AttendanceRecord{
		WorkerID: req.WorkerID,
		GroupID:  req.GroupID,
		Date:     date,
		Status:   status,
		Approval: models.ApprovalPending,
	}
	if req.Actor.IsAdmin() {
		now := time.Now().UTC()
		record.Approval = models.ApprovalApproved
		record.ApprovedAt = &now
	}
	if req.BreakMinutes != nil {
		record.BreakMinutes = *req.BreakMinutes
	}
	if req.BreakPaid != nil {
		record.BreakPaid = *req.BreakPaid
	}

	if !hasContainers {
		if req.StartMinutes != nil || req.EndMinutes != nil {
			// Times alone cannot be priced or converted to containers.
			return nil, appErrors.ErrMissingPricingOrContainers
		}
		if req.TotalWage != nil {
			record.TotalWage = *req.TotalWage
		}
		return record, nil
	}

	pricing, err := s.loadPricing(ctx, *req.PricingCombinationID)
	if err != nil {
		return nil, err
	}
	start, err := s.defaultStart(ctx, req)
	if err != nil {
		return nil, err
	}

	comp, err := FromContainers(*req.ContainersFilled, pricing.ContainerNorm, start)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "")
	}
	applyComputation(record, comp)
	record.PricingCombinationID = req.PricingCombinationID
	record.TotalWage = ComputeContainerWage(comp.ContainersFilled, *pricing)
	if req.TotalWage != nil {
		record.TotalWage = *req.TotalWage
	}
	return record, nil
}

func (s *AttendanceService) applyEdit(ctx context.Context, req ReconcileAttendanceRequest, existing *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	record := *existing

	statusChanged := req.Status != nil && models.DayStatus(*req.Status) != existing.Status
	if existing.Status != models.DayStatusWorking && !statusChanged {
		return nil, appErrors.ErrImmutableNonWorkingRecord
	}
	if req.Status != nil {
		record.Status = models.DayStatus(*req.Status)
	}
	if req.GroupID != nil {
		record.GroupID = req.GroupID
	}
	if req.BreakMinutes != nil {
		record.BreakMinutes = *req.BreakMinutes
	}
	if req.BreakPaid != nil {
		record.BreakPaid = *req.BreakPaid
	}

	containersChanged := req.ContainersFilled != nil &&
		(existing.ContainersFilled == nil || *req.ContainersFilled != *existing.ContainersFilled)
	startChanged := req.StartMinutes != nil &&
		(existing.StartMinutes == nil || *req.StartMinutes != *existing.StartMinutes)
	endChanged := req.EndMinutes != nil &&
		(existing.EndMinutes == nil || *req.EndMinutes != *existing.EndMinutes)
	pricingChanged := req.PricingCombinationID != nil &&
		(existing.PricingCombinationID == nil || *req.PricingCombinationID != *existing.PricingCombinationID)

	timeFieldsTouched := req.ContainersFilled != nil || req.StartMinutes != nil || req.EndMinutes != nil

	if timeFieldsTouched {
		pricingID := req.PricingCombinationID
		if pricingID == nil {
			pricingID = existing.PricingCombinationID
		}
		containers := req.ContainersFilled
		if containers == nil {
			containers = existing.ContainersFilled
		}
		if pricingID == nil || containers == nil {
			return nil, appErrors.ErrMissingPricingOrContainers
		}
	}

	// Unrelated edits (break time, wage override) never trigger recomputation.
	if containersChanged || startChanged || endChanged || pricingChanged {
		pricingID := req.PricingCombinationID
		if pricingID == nil {
			pricingID = existing.PricingCombinationID
		}
		if pricingID == nil {
			return nil, appErrors.ErrMissingPricingOrContainers
		}
		pricing, err := s.loadPricing(ctx, *pricingID)
		if err != nil {
			return nil, err
		}
		record.PricingCombinationID = pricingID

		start := existing.StartMinutes
		if req.StartMinutes != nil {
			start = req.StartMinutes
		}
		end := existing.EndMinutes
		if req.EndMinutes != nil {
			end = req.EndMinutes
		}

		var comp DayComputation
		if containersChanged || ((startChanged || endChanged || pricingChanged) && req.ContainersFilled != nil) {
			containers := existing.ContainersFilled
			if req.ContainersFilled != nil {
				containers = req.ContainersFilled
			}
			startMinutes, err := s.resolveStart(ctx, req.WorkerID, start)
			if err != nil {
				return nil, err
			}
			comp, err = FromContainers(*containers, pricing.ContainerNorm, startMinutes)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrInvalidInput, "")
			}
		} else if startChanged || endChanged {
			if start == nil || end == nil {
				return nil, appErrors.Clone(appErrors.ErrInvalidInput, "both start and end time are required")
			}
			comp, err = FromTimes(*start, *end, pricing.ContainerNorm)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrInvalidInput, "")
			}
		} else {
			// Pricing changed alone: reprice the stored containers.
			containers := existing.ContainersFilled
			if containers == nil {
				return nil, appErrors.ErrMissingPricingOrContainers
			}
			startMinutes, err := s.resolveStart(ctx, req.WorkerID, start)
			if err != nil {
				return nil, err
			}
			comp, err = FromContainers(*containers, pricing.ContainerNorm, startMinutes)
			if err != nil {
				return nil, appErrors.Clone(appErrors.ErrInvalidInput, "")
			}
		}
		applyComputation(&record, comp)
		record.TotalWage = ComputeContainerWage(comp.ContainersFilled, *pricing)
	}

	if req.TotalWage != nil {
		record.TotalWage = *req.TotalWage
	}

	if req.Actor.IsAdmin() {
		now := time.Now().UTC()
		record.Approval = models.ApprovalApproved
		record.ApprovedAt = &now
		record.RejectionReason = nil
	}
	return &record, nil
}

func applyComputation(record *models.AttendanceRecord, comp DayComputation) {
	start := comp.StartMinutes
	end := comp.EndMinutes
	containers := comp.ContainersFilled
	record.StartMinutes = &start
	record.EndMinutes = &end
	record.ContainersFilled = &containers
	record.TotalHours = comp.TotalHours
	record.Hours100 = comp.Hours100
	record.Hours125 = comp.Hours125
	record.Hours150 = comp.Hours150
}

func (s *AttendanceService) loadPricing(ctx context.Context, id string) (*models.PricingCombination, error) {
	pricing, err := s.pricing.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pricing combination not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return pricing, nil
}

// defaultStart picks the request start time or falls back to the resolved
// schedule's configured day start.
func (s *AttendanceService) defaultStart(ctx context.Context, req ReconcileAttendanceRequest) (int, error) {
	if req.StartMinutes != nil {
		return *req.StartMinutes, nil
	}
	rule, err := s.schedules.Resolve(ctx, req.WorkerID)
	if err != nil {
		return 0, err
	}
	return rule.StartMinutes, nil
}

func (s *AttendanceService) resolveStart(ctx context.Context, workerID string, start *int) (int, error) {
	if start != nil {
		return *start, nil
	}
	rule, err := s.schedules.Resolve(ctx, workerID)
	if err != nil {
		return 0, err
	}
	return rule.StartMinutes, nil
}

// Reject marks the day's record REJECTED with a reason. The record stays
// until the next write for that day purges it.
func (s *AttendanceService) Reject(ctx context.Context, workerID, dateRaw, reason string) (*models.AttendanceRecord, error) {
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	record, err := s.attendance.ReconcileDay(ctx, workerID, date, func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error) {
		if existing == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance record for this day")
		}
		record := *existing
		record.Approval = models.ApprovalRejected
		record.RejectionReason = &reason
		record.ApprovedAt = nil
		return &record, nil
	})
	if err != nil {
		var typed *appErrors.Error
		if errors.As(err, &typed) {
			return nil, typed
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return record, nil
}

// Approve promotes the day's PENDING record to APPROVED.
func (s *AttendanceService) Approve(ctx context.Context, workerID, dateRaw string) (*models.AttendanceRecord, error) {
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	record, err := s.attendance.ReconcileDay(ctx, workerID, date, func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error) {
		if existing == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance record for this day")
		}
		record := *existing
		now := time.Now().UTC()
		record.Approval = models.ApprovalApproved
		record.ApprovedAt = &now
		record.RejectionReason = nil
		return &record, nil
	})
	if err != nil {
		var typed *appErrors.Error
		if errors.As(err, &typed) {
			return nil, typed
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return record, nil
}

// GetDay returns the day's authoritative record together with whether the
// date is a weekend calendar day under the worker's resolved schedule. The
// weekend flag is derived per request and never stored on the record.
func (s *AttendanceService) GetDay(ctx context.Context, workerID, dateRaw string) (*models.AttendanceRecord, bool, error) {
	date, err := time.Parse("2006-01-02", dateRaw)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	record, err := s.attendance.FindByWorkerAndDate(ctx, workerID, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no attendance record for this day")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}

	weekend := false
	if rule, err := s.schedules.Resolve(ctx, workerID); err == nil {
		weekend = rule.IsWeekendCalendarDay(date.Weekday())
	}
	return record, weekend, nil
}

// AttendanceListRequest filters attendance listings.
type AttendanceListRequest struct {
	WorkerID  string     `json:"worker_id"`
	GroupID   string     `json:"group_id"`
	Status    *string    `json:"status" validate:"omitempty,day_status"`
	Approval  *string    `json:"approval"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// List returns paginated attendance records.
func (s *AttendanceService) List(ctx context.Context, req AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	var status *models.DayStatus
	if req.Status != nil {
		st := models.DayStatus(*req.Status)
		status = &st
	}
	var approval *models.ApprovalStatus
	if req.Approval != nil {
		ap := models.ApprovalStatus(*req.Approval)
		if !ap.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid approval status")
		}
		approval = &ap
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = 50
	}
	filter := models.AttendanceFilter{
		WorkerID:  req.WorkerID,
		GroupID:   req.GroupID,
		Status:    status,
		Approval:  approval,
		DateFrom:  req.DateFrom,
		DateTo:    req.DateTo,
		Page:      page,
		PageSize:  size,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	rows, total, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list attendance")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
