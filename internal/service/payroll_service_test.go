package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
	"github.com/fieldcrew/fieldpay-api/pkg/jobs"
)

// The payroll mocks carry mutexes because Handle runs on concurrent queue
// workers in production, and the tests mirror that.
type mockPayrollSubStore struct {
	mu       sync.Mutex
	subs     map[string]models.MonthlyWorkingHoursSubmission
	sent     []string
	rejected map[string]string
}

func (m *mockPayrollSubStore) Find(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[subKey(workerID, month, year)]; ok {
		out := sub
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPayrollSubStore) MarkSent(ctx context.Context, workerID string, month, year int, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, subKey(workerID, month, year))
	return nil
}

func (m *mockPayrollSubStore) MarkRejected(ctx context.Context, workerID string, month, year int, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = make(map[string]string)
	}
	m.rejected[subKey(workerID, month, year)] = reason
	return nil
}

type mockSubmitter struct {
	mu   sync.Mutex
	docs []*models.PayrollDocument
	err  error
}

func (m *mockSubmitter) Submit(ctx context.Context, doc *models.PayrollDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.docs = append(m.docs, doc)
	return nil
}

type mockBatchStore struct {
	mu       sync.Mutex
	statuses map[string]models.PayrollBatchStatus
}

func (m *mockBatchStore) Save(ctx context.Context, status *models.PayrollBatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statuses == nil {
		m.statuses = make(map[string]models.PayrollBatchStatus)
	}
	m.statuses[status.BatchID] = *status
	return nil
}

func (m *mockBatchStore) Get(ctx context.Context, batchID string) (*models.PayrollBatchStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status, ok := m.statuses[batchID]; ok {
		out := status
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

type mockDispatcher struct {
	jobs []jobs.Job
	err  error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type payrollFixture struct {
	svc        *PayrollService
	subs       *mockPayrollSubStore
	submitter  *mockSubmitter
	statuses   *mockBatchStore
	dispatcher *mockDispatcher
	attendance *mockAttendanceRepo
}

func marchSubmission() models.MonthlyWorkingHoursSubmission {
	return models.MonthlyWorkingHoursSubmission{
		ID: "sub-1", WorkerID: "w1", Month: 3, Year: 2025,
		TotalMonthlyHours: 15, TotalHours100: 12, TotalHours125: 2, TotalHours150: 1,
		TotalBaseSalary: 360, TotalSalary125: 75, TotalSalary150: 45,
		TotalBonus: 0, TotalSalary: 480,
		WorkingDays: 2,
	}
}

func newPayrollFixture(settings models.OrganizationSettings, cfg PayrollServiceConfig) *payrollFixture {
	started := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	workers := &mockWorkerRepo{workers: map[string]*models.Worker{
		"w1": {
			ID: "w1", PassportNumber: "P1234567", FirstName: "Ion", LastName: "Popescu",
			GroupID: strPtr("g1"), EmploymentStartDate: &started,
		},
	}}
	f := &payrollFixture{
		subs:       &mockPayrollSubStore{subs: map[string]models.MonthlyWorkingHoursSubmission{subKey("w1", 3, 2025): marchSubmission()}},
		submitter:  &mockSubmitter{},
		statuses:   &mockBatchStore{},
		dispatcher: &mockDispatcher{},
		attendance: &mockAttendanceRepo{records: map[string][]models.AttendanceRecord{}},
	}
	resolver := &stubRuleResolver{rule: &models.WorkingScheduleRule{StartMinutes: 480, HoursPerDay: 8, DaysPerWeek: 5}}
	provider := &mockSettingsProvider{settings: settings}
	f.svc = NewPayrollService(f.subs, workers, resolver, f.attendance, provider, f.submitter, f.statuses, nil, zap.NewNop(), cfg)
	f.svc.SetQueue(f.dispatcher)
	return f
}

func statutorySettings() models.OrganizationSettings {
	return models.OrganizationSettings{ID: "org", Rate100: 30, Rate125: 37.5, Rate150: 45}
}

func TestBuildDocumentMisraNorms(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	doc, err := f.svc.BuildDocument(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	assert.Equal(t, "P1234567", doc.PassportNumber)
	assert.Equal(t, "Ion", doc.FirstName)
	assert.Equal(t, "Popescu", doc.LastName)

	assert.Equal(t, 30.0, doc.Misra.HourlyRate)
	assert.Equal(t, 15.0, doc.Misra.TotalHoursWorked)
	assert.Equal(t, 2, doc.Misra.WorkedDays)
	assert.Equal(t, 8.0, doc.Misra.DailyHourNorm)
	assert.Equal(t, 40.0, doc.Misra.WeeklyHourNorm)
	// 40 hours over 52 weeks spread across 12 months.
	assert.Equal(t, 173.33, doc.Misra.MonthlyHourNorm)
	assert.Equal(t, 5, doc.Misra.WeeklyDayNorm)
	assert.Equal(t, 22, doc.Misra.MonthlyDayNorm)
}

func TestBuildDocumentAvoda(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	doc, err := f.svc.BuildDocument(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)
	assert.Equal(t, "g1", doc.Avoda.PrimaryAssignment)
	assert.Equal(t, 100.0, doc.Avoda.PrimaryPercentage)
	require.NotNil(t, doc.Avoda.EmploymentStartDate)

	unassigned := buildAvoda(&models.Worker{ID: "w2"})
	assert.Empty(t, unassigned.PrimaryAssignment)
	assert.Zero(t, unassigned.PrimaryPercentage)

	client := buildAvoda(&models.Worker{ID: "w3", ClientID: strPtr("c9")})
	assert.Equal(t, "c9", client.PrimaryAssignment)
	assert.Equal(t, 100.0, client.PrimaryPercentage)
}

func TestBuildDocumentPayLinesStatutory(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	doc, err := f.svc.BuildDocument(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	require.Len(t, doc.Tashlumim, 3)
	assert.Equal(t, models.PayrollPayLine{Name: "REGULAR_HOURS", Hours: 12, Rate: 30, Amount: 360}, doc.Tashlumim[0])
	assert.Equal(t, models.PayrollPayLine{Name: "OVERTIME_125", Hours: 2, Rate: 37.5, Amount: 75}, doc.Tashlumim[1])
	assert.Equal(t, models.PayrollPayLine{Name: "OVERTIME_150", Hours: 1, Rate: 45, Amount: 45}, doc.Tashlumim[2])
}

func TestBuildDocumentPayLinesBonusPolicy(t *testing.T) {
	settings := statutorySettings()
	settings.IsBonusPaid = true
	f := newPayrollFixture(settings, PayrollServiceConfig{})
	sub := marchSubmission()
	sub.TotalBonus = 112.5
	sub.TotalSalary125 = 0
	sub.TotalSalary150 = 0
	f.subs.subs[subKey("w1", 3, 2025)] = sub

	doc, err := f.svc.BuildDocument(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	require.Len(t, doc.Tashlumim, 2)
	assert.Equal(t, models.PayrollPayLine{Name: "BONUS", Hours: 3, Rate: 37.5, Amount: 112.5}, doc.Tashlumim[1])
}

func TestBuildDocumentDaySpans(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})
	statusDay := func(d int, status models.DayStatus) models.AttendanceRecord {
		return models.AttendanceRecord{
			WorkerID: "w1", Date: day(2025, time.March, d),
			Status: status, Approval: models.ApprovalApproved,
		}
	}
	for _, r := range []models.AttendanceRecord{
		statusDay(10, models.DayStatusDayOff),
		statusDay(11, models.DayStatusDayOff),
		statusDay(13, models.DayStatusHoliday),
		statusDay(20, models.DayStatusSickLeave),
		statusDay(21, models.DayStatusSickLeave),
	} {
		f.attendance.records[dayKey("w1", r.Date)] = []models.AttendanceRecord{r}
	}

	doc, err := f.svc.BuildDocument(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	require.Len(t, doc.Chufsha, 2)
	assert.Equal(t, "2025-03-10", doc.Chufsha[0].StartDate)
	assert.Equal(t, "2025-03-11", doc.Chufsha[0].EndDate)
	assert.Equal(t, 2, doc.Chufsha[0].Days)
	assert.Equal(t, "2025-03-13", doc.Chufsha[1].StartDate)
	assert.Equal(t, 1, doc.Chufsha[1].Days)

	require.Len(t, doc.Machala, 1)
	assert.Equal(t, "2025-03-20", doc.Machala[0].StartDate)
	assert.Equal(t, "2025-03-21", doc.Machala[0].EndDate)
	assert.Equal(t, 2, doc.Machala[0].Days)
}

func TestBuildDocumentMissingSubmission(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	_, err := f.svc.BuildDocument(context.Background(), "w1", 4, 2025)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmitBatchEnqueuesPerItem(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	status, err := f.svc.SubmitBatch(context.Background(), []models.PayrollBatchItem{
		{WorkerID: "w1", Month: 3, Year: 2025},
		{WorkerID: "w2", Month: 3, Year: 2025},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, status.BatchID)
	assert.Equal(t, 2, status.Total)
	assert.False(t, status.Done)

	require.Len(t, f.dispatcher.jobs, 2)
	for _, job := range f.dispatcher.jobs {
		assert.Equal(t, "payroll_submit", job.Type)
	}
	assert.Equal(t, fmt.Sprintf("%s/w1/3-2025", status.BatchID), f.dispatcher.jobs[0].ID)
}

func TestSubmitBatchValidatesItems(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	_, err := f.svc.SubmitBatch(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = f.svc.SubmitBatch(context.Background(), []models.PayrollBatchItem{{WorkerID: "w1", Month: 13, Year: 2025}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestHandleMarksSentOnSuccess(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	status, err := f.svc.SubmitBatch(context.Background(), []models.PayrollBatchItem{{WorkerID: "w1", Month: 3, Year: 2025}})
	require.NoError(t, err)
	require.Len(t, f.dispatcher.jobs, 1)

	require.NoError(t, f.svc.Handle(context.Background(), f.dispatcher.jobs[0]))

	assert.Equal(t, []string{subKey("w1", 3, 2025)}, f.subs.sent)
	require.Len(t, f.submitter.docs, 1)

	// The finished batch survives in the status store after the in-memory
	// tracker is released.
	final, err := f.svc.GetBatchStatus(context.Background(), status.BatchID)
	require.NoError(t, err)
	assert.True(t, final.Done)
	assert.Equal(t, 1, final.Succeeded)
	assert.Zero(t, final.Failed)
	require.Len(t, final.Results, 1)
	assert.True(t, final.Results[0].Sent)
	assert.NotNil(t, final.FinishedAt)
}

func TestHandleConcurrentItemsKeepBatchStatusConsistent(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	items := make([]models.PayrollBatchItem, 0, 12)
	for month := 1; month <= 12; month++ {
		sub := marchSubmission()
		sub.Month = month
		f.subs.subs[subKey("w1", month, 2025)] = sub
		items = append(items, models.PayrollBatchItem{WorkerID: "w1", Month: month, Year: 2025})
	}

	status, err := f.svc.SubmitBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, f.dispatcher.jobs, 12)

	var wg sync.WaitGroup
	for _, job := range f.dispatcher.jobs {
		wg.Add(1)
		go func(j jobs.Job) {
			defer wg.Done()
			assert.NoError(t, f.svc.Handle(context.Background(), j))
		}(job)
	}
	wg.Wait()

	final, err := f.svc.GetBatchStatus(context.Background(), status.BatchID)
	require.NoError(t, err)
	assert.True(t, final.Done)
	assert.Equal(t, 12, final.Total)
	assert.Equal(t, 12, final.Succeeded)
	assert.Zero(t, final.Failed)
	require.Len(t, final.Results, 12)
	assert.Len(t, f.subs.sent, 12)
	assert.Len(t, f.submitter.docs, 12)
}

func TestHandleMarksRejectedOnSubmitFailure(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})
	f.submitter.err = errors.New("payroll system unavailable")

	status, err := f.svc.SubmitBatch(context.Background(), []models.PayrollBatchItem{{WorkerID: "w1", Month: 3, Year: 2025}})
	require.NoError(t, err)

	require.NoError(t, f.svc.Handle(context.Background(), f.dispatcher.jobs[0]))

	assert.Empty(t, f.subs.sent)
	assert.Contains(t, f.subs.rejected[subKey("w1", 3, 2025)], "payroll system unavailable")

	final, err := f.svc.GetBatchStatus(context.Background(), status.BatchID)
	require.NoError(t, err)
	assert.True(t, final.Done)
	assert.Equal(t, 1, final.Failed)
	assert.Zero(t, final.Succeeded)
}

func TestHandleFailsItemsPastBatchDeadline(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{BatchBudget: time.Nanosecond})

	status, err := f.svc.SubmitBatch(context.Background(), []models.PayrollBatchItem{{WorkerID: "w1", Month: 3, Year: 2025}})
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	require.NoError(t, f.svc.Handle(context.Background(), f.dispatcher.jobs[0]))

	assert.Empty(t, f.submitter.docs)
	assert.Equal(t, "batch time budget exceeded", f.subs.rejected[subKey("w1", 3, 2025)])

	final, err := f.svc.GetBatchStatus(context.Background(), status.BatchID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.Failed)
}

func TestGetBatchStatusUnknown(t *testing.T) {
	f := newPayrollFixture(statutorySettings(), PayrollServiceConfig{})

	_, err := f.svc.GetBatchStatus(context.Background(), "no-such-batch")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
