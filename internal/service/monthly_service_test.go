package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type mockDailyCalcRepo struct {
	calcs map[string]models.DailyWorkCalculation
}

func (m *mockDailyCalcRepo) Upsert(ctx context.Context, calc *models.DailyWorkCalculation) (*models.DailyWorkCalculation, error) {
	if m.calcs == nil {
		m.calcs = make(map[string]models.DailyWorkCalculation)
	}
	key := calc.WorkerID + "|" + calc.Date.Format("2006-01-02")
	m.calcs[key] = *calc
	stored := *calc
	return &stored, nil
}

func (m *mockDailyCalcRepo) ListRange(ctx context.Context, workerID string, from, to time.Time) ([]models.DailyWorkCalculation, error) {
	var out []models.DailyWorkCalculation
	for _, c := range m.calcs {
		if c.WorkerID == workerID && !c.Date.Before(from) && !c.Date.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockMonthlySubRepo struct {
	subs map[string]models.MonthlyWorkingHoursSubmission
}

func subKey(workerID string, month, year int) string {
	return fmt.Sprintf("%s|%d|%d", workerID, month, year)
}

func (m *mockMonthlySubRepo) UpsertTotals(ctx context.Context, sub *models.MonthlyWorkingHoursSubmission) (*models.MonthlyWorkingHoursSubmission, error) {
	if m.subs == nil {
		m.subs = make(map[string]models.MonthlyWorkingHoursSubmission)
	}
	key := subKey(sub.WorkerID, sub.Month, sub.Year)
	stored := *sub
	if existing, ok := m.subs[key]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = fmt.Sprintf("sub-%d", len(m.subs)+1)
	}
	m.subs[key] = stored
	out := stored
	return &out, nil
}

func (m *mockMonthlySubRepo) Find(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error) {
	if sub, ok := m.subs[subKey(workerID, month, year)]; ok {
		out := sub
		return &out, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMonthlySubRepo) List(ctx context.Context, filter models.MonthlySubmissionFilter) ([]models.MonthlyWorkingHoursSubmission, int, error) {
	var out []models.MonthlyWorkingHoursSubmission
	for _, sub := range m.subs {
		out = append(out, sub)
	}
	return out, len(out), nil
}

type mockSettingsProvider struct {
	settings models.OrganizationSettings
	err      error
}

func (m *mockSettingsProvider) GetSettings(ctx context.Context) (*models.OrganizationSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := m.settings
	return &out, nil
}

func approvedWorkDay(workerID string, date time.Time, containers, total, h100, h125, h150 float64) models.AttendanceRecord {
	return models.AttendanceRecord{
		WorkerID:         workerID,
		Date:             date,
		Status:           models.DayStatusWorking,
		Approval:         models.ApprovalApproved,
		ContainersFilled: &containers,
		TotalHours:       total,
		Hours100:         h100,
		Hours125:         h125,
		Hours150:         h150,
	}
}

func newMonthlyFixture() (*MonthlyService, *mockAttendanceRepo, *mockDailyCalcRepo, *mockMonthlySubRepo) {
	attendance := &mockAttendanceRepo{records: map[string][]models.AttendanceRecord{}}
	daily := &mockDailyCalcRepo{}
	monthly := &mockMonthlySubRepo{}
	settings := &mockSettingsProvider{settings: models.OrganizationSettings{
		ID: "org", Name: "Fieldcrew", Rate100: 30, Rate125: 37.5, Rate150: 45,
	}}
	svc := NewMonthlyService(attendance, daily, monthly, settings, nil, zap.NewNop())
	return svc, attendance, daily, monthly
}

func seedMarch(attendance *mockAttendanceRepo) {
	overtime := approvedWorkDay("w1", day(2025, time.March, 3), 5.5, 11, 8, 2, 1)
	regular := approvedWorkDay("w1", day(2025, time.March, 4), 2, 4, 4, 0, 0)
	sick := models.AttendanceRecord{
		WorkerID: "w1", Date: day(2025, time.March, 5),
		Status: models.DayStatusSickLeave, Approval: models.ApprovalApproved,
	}
	holiday := models.AttendanceRecord{
		WorkerID: "w1", Date: day(2025, time.March, 6),
		Status: models.DayStatusHoliday, Approval: models.ApprovalApproved,
	}
	pending := approvedWorkDay("w1", day(2025, time.March, 7), 4, 8, 8, 0, 0)
	pending.Approval = models.ApprovalPending

	for _, r := range []models.AttendanceRecord{overtime, regular, sick, holiday, pending} {
		attendance.records[dayKey(r.WorkerID, r.Date)] = []models.AttendanceRecord{r}
	}
}

func TestAggregateSumsApprovedDays(t *testing.T) {
	svc, attendance, daily, _ := newMonthlyFixture()
	seedMarch(attendance)

	sub, err := svc.Aggregate(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	assert.Equal(t, 15.0, sub.TotalMonthlyHours)
	assert.Equal(t, 12.0, sub.TotalHours100)
	assert.Equal(t, 2.0, sub.TotalHours125)
	assert.Equal(t, 1.0, sub.TotalHours150)

	// The overtime day's 5.5 containers split 4/1/0.5 across windows.
	assert.Equal(t, 7.5, sub.TotalContainersFilled)
	assert.Equal(t, 6.0, sub.TotalContainers100)
	assert.Equal(t, 1.0, sub.TotalContainers125)
	assert.Equal(t, 0.5, sub.TotalContainers150)

	assert.Equal(t, 360.0, sub.TotalBaseSalary)
	assert.Equal(t, 0.0, sub.TotalBonus)
	assert.Equal(t, 480.0, sub.TotalSalary)
	assert.Equal(t, 360.0, sub.TotalSalary100)
	assert.Equal(t, 75.0, sub.TotalSalary125)
	assert.Equal(t, 45.0, sub.TotalSalary150)

	assert.Equal(t, 2, sub.WorkingDays)
	assert.Equal(t, 1, sub.SickLeaveDays)
	assert.Equal(t, 1, sub.HolidayDays)
	// 2 working days out of 31 calendar days.
	assert.Equal(t, 6.45, sub.AttendancePercentage)

	// The pending day never contributes a daily calculation.
	assert.Len(t, daily.calcs, 4)
}

func TestAggregateBonusPolicyBlendsOvertimePay(t *testing.T) {
	svc, attendance, _, _ := newMonthlyFixture()
	seedMarch(attendance)
	svc.settings = &mockSettingsProvider{settings: models.OrganizationSettings{
		ID: "org", IsBonusPaid: true, Rate100: 30, Rate125: 37.5, Rate150: 45,
	}}

	sub, err := svc.Aggregate(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	assert.Equal(t, 360.0, sub.TotalBaseSalary)
	assert.Equal(t, 112.5, sub.TotalBonus)
	assert.Equal(t, 472.5, sub.TotalSalary)
	assert.Equal(t, 0.0, sub.TotalSalary125)
	assert.Equal(t, 0.0, sub.TotalSalary150)
}

func TestAggregateIsIdempotent(t *testing.T) {
	svc, attendance, daily, monthly := newMonthlyFixture()
	seedMarch(attendance)

	first, err := svc.Aggregate(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)
	second, err := svc.Aggregate(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, daily.calcs, 4)
	assert.Len(t, monthly.subs, 1)
}

func TestAggregateEmptyMonth(t *testing.T) {
	svc, _, daily, _ := newMonthlyFixture()

	sub, err := svc.Aggregate(context.Background(), "w1", 2, 2025)
	require.NoError(t, err)
	assert.Zero(t, sub.TotalMonthlyHours)
	assert.Zero(t, sub.WorkingDays)
	assert.Zero(t, sub.AttendancePercentage)
	assert.Empty(t, daily.calcs)
}

func TestAggregateValidatesInput(t *testing.T) {
	svc, _, _, _ := newMonthlyFixture()

	_, err := svc.Aggregate(context.Background(), "", 3, 2025)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Aggregate(context.Background(), "w1", 13, 2025)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Aggregate(context.Background(), "w1", 3, 1999)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetMissingSubmission(t *testing.T) {
	svc, _, _, _ := newMonthlyFixture()

	_, err := svc.Get(context.Background(), "w1", 3, 2025)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDailyBreakdownReturnsStoredCalculations(t *testing.T) {
	svc, attendance, _, _ := newMonthlyFixture()
	seedMarch(attendance)

	_, err := svc.Aggregate(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)

	calcs, err := svc.DailyBreakdown(context.Background(), "w1", 3, 2025)
	require.NoError(t, err)
	assert.Len(t, calcs, 4)
	for _, calc := range calcs {
		assert.Equal(t, "w1", calc.WorkerID)
		assert.Equal(t, time.March, calc.Date.Month())
	}
}

func TestDailyBreakdownValidatesInput(t *testing.T) {
	svc, _, _, _ := newMonthlyFixture()

	_, err := svc.DailyBreakdown(context.Background(), "", 3, 2025)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.DailyBreakdown(context.Background(), "w1", 13, 2025)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAddStatusDayExcludesNoSchedule(t *testing.T) {
	var sub models.MonthlyWorkingHoursSubmission
	sub.AddStatusDay(models.DayStatusWorking)
	sub.AddStatusDay(models.DayStatusNoSchedule)

	assert.Equal(t, 1, sub.WorkingDays)
	assert.Equal(t, models.MonthlyWorkingHoursSubmission{WorkingDays: 1}, sub)
}

func TestMonthBounds(t *testing.T) {
	first, last, days := MonthBounds(2, 2024)
	assert.Equal(t, day(2024, time.February, 1), first)
	assert.Equal(t, day(2024, time.February, 29), last)
	assert.Equal(t, 29, days)

	_, _, days = MonthBounds(2, 2025)
	assert.Equal(t, 28, days)
}
