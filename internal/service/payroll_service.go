package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
	"github.com/fieldcrew/fieldpay-api/pkg/jobs"
)

type monthlySubmissionStore interface {
	Find(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error)
	MarkSent(ctx context.Context, workerID string, month, year int, sentAt time.Time) error
	MarkRejected(ctx context.Context, workerID string, month, year int, reason string) error
}

type payrollSubmitter interface {
	Submit(ctx context.Context, doc *models.PayrollDocument) error
}

type batchStatusStore interface {
	Save(ctx context.Context, status *models.PayrollBatchStatus) error
	Get(ctx context.Context, batchID string) (*models.PayrollBatchStatus, error)
}

type payrollJobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type documentArchiver interface {
	Save(filename string, data []byte) (string, error)
}

// PayrollServiceConfig governs batch execution.
type PayrollServiceConfig struct {
	// BatchBudget bounds how long a whole batch may keep submitting; items
	// reached after the deadline are failed, not silently dropped.
	BatchBudget time.Duration
}

// PayrollService builds payroll documents from monthly submissions and
// drives batch submission to the external payroll system.
type PayrollService struct {
	monthly    monthlySubmissionStore
	workers    workerReferenceRepository
	schedules  scheduleResolver
	attendance attendanceRepository
	settings   organizationSettingsProvider
	submitter  payrollSubmitter
	statuses   batchStatusStore
	queue      payrollJobDispatcher
	archive    documentArchiver
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        PayrollServiceConfig

	mu      sync.Mutex
	batches map[string]*batchTracker
}

type batchTracker struct {
	status   models.PayrollBatchStatus
	deadline time.Time
}

// payrollJobPayload travels on the queue, one per (worker, month) item.
type payrollJobPayload struct {
	BatchID string                  `json:"batch_id"`
	Item    models.PayrollBatchItem `json:"item"`
}

// NewPayrollService constructs the payroll service.
func NewPayrollService(monthly monthlySubmissionStore, workers workerReferenceRepository, schedules scheduleResolver, attendance attendanceRepository, settings organizationSettingsProvider, submitter payrollSubmitter, statuses batchStatusStore, validate *validator.Validate, logger *zap.Logger, cfg PayrollServiceConfig) *PayrollService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchBudget <= 0 {
		cfg.BatchBudget = 5 * time.Minute
	}
	return &PayrollService{
		monthly:    monthly,
		workers:    workers,
		schedules:  schedules,
		attendance: attendance,
		settings:   settings,
		submitter:  submitter,
		statuses:   statuses,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		batches:    make(map[string]*batchTracker),
	}
}

// SetQueue wires the job dispatcher. Called once at startup, after the
// queue has been built with this service's Handle as its handler.
func (s *PayrollService) SetQueue(queue payrollJobDispatcher) {
	s.queue = queue
}

// SetArchive wires an on-disk archive; every document is written there
// before submission so operators can inspect exactly what was sent.
func (s *PayrollService) SetArchive(archive documentArchiver) {
	s.archive = archive
}

// SubmitBatch enqueues one job per item and returns the batch id. Items are
// isolated: one worker's failure never aborts the rest of the batch.
func (s *PayrollService) SubmitBatch(ctx context.Context, items []models.PayrollBatchItem) (*models.PayrollBatchStatus, error) {
	if len(items) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "batch must contain at least one item")
	}
	for i, item := range items {
		if err := s.validator.Struct(item); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("item %d: %v", i, err))
		}
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "payroll queue not configured")
	}

	batchID := uuid.NewString()
	now := time.Now().UTC()
	tracker := &batchTracker{
		status: models.PayrollBatchStatus{
			BatchID:   batchID,
			Total:     len(items),
			Results:   make([]models.PayrollItemResult, 0, len(items)),
			StartedAt: now,
		},
		deadline: now.Add(s.cfg.BatchBudget),
	}
	s.mu.Lock()
	s.batches[batchID] = tracker
	snapshot := tracker.snapshot()
	s.mu.Unlock()
	s.persistStatus(ctx, snapshot)

	for _, item := range items {
		payload, _ := json.Marshal(payrollJobPayload{BatchID: batchID, Item: item})
		job := jobs.Job{
			ID:      fmt.Sprintf("%s/%s/%d-%d", batchID, item.WorkerID, item.Month, item.Year),
			Type:    "payroll_submit",
			Payload: payload,
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.recordResult(context.WithoutCancel(ctx), batchID, models.PayrollItemResult{
				WorkerID: item.WorkerID, Month: item.Month, Year: item.Year,
				Error: "failed to enqueue: " + err.Error(),
			})
		}
	}

	s.mu.Lock()
	snapshot = tracker.snapshot()
	s.mu.Unlock()
	return &snapshot, nil
}

// Handle processes one queued batch item.
func (s *PayrollService) Handle(ctx context.Context, job jobs.Job) error {
	raw, ok := job.Payload.([]byte)
	if !ok {
		s.logger.Sugar().Errorw("payroll job carries no payload", "job_id", job.ID)
		return nil
	}
	var payload payrollJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.logger.Sugar().Errorw("payroll job payload unreadable", "job_id", job.ID, "error", err)
		return nil
	}
	item := payload.Item

	result := models.PayrollItemResult{WorkerID: item.WorkerID, Month: item.Month, Year: item.Year}

	if s.batchExpired(payload.BatchID) {
		result.Error = "batch time budget exceeded"
		s.markFailure(ctx, item, result.Error)
		s.recordResult(ctx, payload.BatchID, result)
		return nil
	}

	if err := s.submitOne(ctx, item); err != nil {
		result.Error = err.Error()
		s.markFailure(ctx, item, result.Error)
	} else {
		result.Sent = true
	}
	s.recordResult(ctx, payload.BatchID, result)

	// Item outcomes are recorded durably per item; the queue never retries
	// a payroll submission, the caller resubmits failed items explicitly.
	return nil
}

func (s *PayrollService) submitOne(ctx context.Context, item models.PayrollBatchItem) error {
	doc, err := s.BuildDocument(ctx, item.WorkerID, item.Month, item.Year)
	if err != nil {
		return err
	}
	s.archiveDocument(doc)
	if err := s.submitter.Submit(ctx, doc); err != nil {
		return appErrors.Wrap(err, appErrors.ErrExternalSystem.Code, appErrors.ErrExternalSystem.Status, appErrors.ErrExternalSystem.Message)
	}
	// Mark sent only after the payroll system confirmed receipt.
	if err := s.monthly.MarkSent(ctx, item.WorkerID, item.Month, item.Year, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "submitted but failed to mark sent")
	}
	return nil
}

func (s *PayrollService) archiveDocument(doc *models.PayrollDocument) {
	if s.archive == nil {
		return
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return
	}
	name := fmt.Sprintf("%d/%02d/%s.json", doc.Year, doc.Month, doc.PassportNumber)
	if _, err := s.archive.Save(name, data); err != nil {
		s.logger.Sugar().Warnw("failed to archive payroll document",
			"passport_number", doc.PassportNumber, "month", doc.Month, "year", doc.Year, "error", err)
	}
}

func (s *PayrollService) markFailure(ctx context.Context, item models.PayrollBatchItem, reason string) {
	if err := s.monthly.MarkRejected(ctx, item.WorkerID, item.Month, item.Year, reason); err != nil {
		s.logger.Sugar().Warnw("failed to record payroll rejection",
			"worker_id", item.WorkerID, "month", item.Month, "year", item.Year, "error", err)
	}
}

func (s *PayrollService) batchExpired(batchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracker, ok := s.batches[batchID]
	if !ok {
		return false
	}
	return time.Now().UTC().After(tracker.deadline)
}

func (s *PayrollService) recordResult(ctx context.Context, batchID string, result models.PayrollItemResult) {
	s.mu.Lock()
	tracker, ok := s.batches[batchID]
	if !ok {
		s.mu.Unlock()
		return
	}
	tracker.status.Results = append(tracker.status.Results, result)
	if result.Sent {
		tracker.status.Succeeded++
	} else {
		tracker.status.Failed++
	}
	if tracker.status.Succeeded+tracker.status.Failed >= tracker.status.Total {
		tracker.status.Done = true
		now := time.Now().UTC()
		tracker.status.FinishedAt = &now
	}
	done := tracker.status.Done
	snapshot := tracker.snapshot()
	s.mu.Unlock()

	s.persistStatus(ctx, snapshot)
	if done {
		s.mu.Lock()
		delete(s.batches, batchID)
		s.mu.Unlock()
	}
}

func (s *PayrollService) persistStatus(ctx context.Context, snapshot models.PayrollBatchStatus) {
	if err := s.statuses.Save(ctx, &snapshot); err != nil {
		s.logger.Sugar().Warnw("failed to persist batch status", "batch_id", snapshot.BatchID, "error", err)
	}
}

// snapshot copies the tracked status. Callers must hold the service mutex.
func (t *batchTracker) snapshot() models.PayrollBatchStatus {
	copied := t.status
	copied.Results = append([]models.PayrollItemResult(nil), t.status.Results...)
	return copied
}

// GetBatchStatus returns the latest snapshot for a batch.
func (s *PayrollService) GetBatchStatus(ctx context.Context, batchID string) (*models.PayrollBatchStatus, error) {
	s.mu.Lock()
	tracker, ok := s.batches[batchID]
	if ok {
		snapshot := tracker.snapshot()
		s.mu.Unlock()
		return &snapshot, nil
	}
	s.mu.Unlock()

	status, err := s.statuses.Get(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown batch id")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load batch status")
	}
	return status, nil
}

// BuildDocument assembles the full payroll document for one (worker, month)
// from the stored monthly submission, the resolved schedule rule and the
// month's approved day statuses.
func (s *PayrollService) BuildDocument(ctx context.Context, workerID string, month, year int) (*models.PayrollDocument, error) {
	sub, err := s.monthly.Find(ctx, workerID, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no monthly submission for worker %s %d/%d", workerID, month, year))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load monthly submission")
	}

	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "worker not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load worker")
	}

	rule, err := s.schedules.Resolve(ctx, workerID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load organization settings")
	}
	policy := settings.Policy()

	doc := &models.PayrollDocument{
		PassportNumber: worker.PassportNumber,
		FirstName:      worker.FirstName,
		LastName:       worker.LastName,
		Month:          month,
		Year:           year,
		Misra:          buildMisra(sub, rule, policy),
		Avoda:          buildAvoda(worker),
		Tashlumim:      buildPayLines(sub, policy),
	}

	doc.Chufsha, doc.Machala, err = s.buildDaySpans(ctx, workerID, month, year)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// buildMisra derives hour and day norms from the schedule rule. Weekly
// norms extrapolate the daily figure; monthly norms annualise the weekly
// one over 52 weeks.
func buildMisra(sub *models.MonthlyWorkingHoursSubmission, rule *models.WorkingScheduleRule, policy models.OrganizationPolicy) models.PayrollMisra {
	daily := decimal.NewFromFloat(rule.HoursPerDay)
	weekly := daily.Mul(decimal.NewFromInt(int64(rule.DaysPerWeek)))
	monthly := weekly.Mul(decimal.NewFromInt(52)).Div(decimal.NewFromInt(12))
	monthlyDays := decimal.NewFromInt(int64(rule.DaysPerWeek)).Mul(decimal.NewFromInt(52)).Div(decimal.NewFromInt(12))

	return models.PayrollMisra{
		HourlyRate:       policy.Rate100,
		TotalHoursWorked: sub.TotalMonthlyHours,
		WorkedDays:       sub.WorkingDays,
		MonthlyHourNorm:  toFloat2(monthly),
		DailyHourNorm:    rule.HoursPerDay,
		WeeklyHourNorm:   toFloat2(weekly),
		MonthlyDayNorm:   int(monthlyDays.Round(0).IntPart()),
		WeeklyDayNorm:    rule.DaysPerWeek,
	}
}

func buildAvoda(worker *models.Worker) models.PayrollAvoda {
	avoda := models.PayrollAvoda{EmploymentStartDate: worker.EmploymentStartDate}
	switch {
	case worker.GroupID != nil && *worker.GroupID != "":
		avoda.PrimaryAssignment = *worker.GroupID
	case worker.ClientID != nil && *worker.ClientID != "":
		avoda.PrimaryAssignment = *worker.ClientID
	}
	if avoda.PrimaryAssignment != "" {
		avoda.PrimaryPercentage = 100
	}
	return avoda
}

// buildPayLines flattens the monthly totals into tashlumim lines. Under a
// bonus policy all overtime collapses into a single BONUS line priced at
// the 125% rate; otherwise each overtime window gets its own line.
func buildPayLines(sub *models.MonthlyWorkingHoursSubmission, policy models.OrganizationPolicy) []models.PayrollPayLine {
	lines := []models.PayrollPayLine{{
		Name:   "REGULAR_HOURS",
		Hours:  sub.TotalHours100,
		Rate:   policy.Rate100,
		Amount: sub.TotalBaseSalary,
	}}

	overtime := round2(sub.TotalHours125 + sub.TotalHours150)
	if policy.IsBonusPaid {
		if overtime > 0 {
			lines = append(lines, models.PayrollPayLine{
				Name:   "BONUS",
				Hours:  overtime,
				Rate:   policy.Rate125,
				Amount: sub.TotalBonus,
			})
		}
		return lines
	}

	if sub.TotalHours125 > 0 {
		lines = append(lines, models.PayrollPayLine{
			Name:   "OVERTIME_125",
			Hours:  sub.TotalHours125,
			Rate:   policy.Rate125,
			Amount: sub.TotalSalary125,
		})
	}
	if sub.TotalHours150 > 0 {
		lines = append(lines, models.PayrollPayLine{
			Name:   "OVERTIME_150",
			Hours:  sub.TotalHours150,
			Rate:   policy.Rate150,
			Amount: sub.TotalSalary150,
		})
	}
	return lines
}

var (
	chufshaStatuses = map[models.DayStatus]bool{
		models.DayStatusDayOff:         true,
		models.DayStatusDayOffPersonal: true,
		models.DayStatusInterVisa:      true,
		models.DayStatusHoliday:        true,
	}
	machalaStatuses = map[models.DayStatus]bool{
		models.DayStatusSickLeave: true,
		models.DayStatusAccident:  true,
	}
)

func (s *PayrollService) buildDaySpans(ctx context.Context, workerID string, month, year int) (chufsha, machala []models.PayrollDaySpan, err error) {
	first, last, _ := MonthBounds(month, year)
	records, err := s.attendance.ListApprovedRange(ctx, workerID, first, last)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load daily records")
	}

	var leave, sick []StatusDay
	for _, record := range records {
		day := StatusDay{Date: record.Date, Status: record.Status}
		switch {
		case chufshaStatuses[record.Status]:
			leave = append(leave, day)
		case machalaStatuses[record.Status]:
			sick = append(sick, day)
		}
	}
	return toDaySpans(CompressStatusRuns(leave)), toDaySpans(CompressStatusRuns(sick)), nil
}

func toDaySpans(ranges []models.DayStatusRange) []models.PayrollDaySpan {
	spans := make([]models.PayrollDaySpan, 0, len(ranges))
	for _, r := range ranges {
		spans = append(spans, models.PayrollDaySpan{
			StartDate: r.StartDate.Format("2006-01-02"),
			EndDate:   r.EndDate.Format("2006-01-02"),
			Days:      int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1,
		})
	}
	return spans
}
