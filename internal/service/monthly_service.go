package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type dailyCalculationRepository interface {
	Upsert(ctx context.Context, calc *models.DailyWorkCalculation) (*models.DailyWorkCalculation, error)
	ListRange(ctx context.Context, workerID string, from, to time.Time) ([]models.DailyWorkCalculation, error)
}

type monthlySubmissionRepository interface {
	UpsertTotals(ctx context.Context, sub *models.MonthlyWorkingHoursSubmission) (*models.MonthlyWorkingHoursSubmission, error)
	Find(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error)
	List(ctx context.Context, filter models.MonthlySubmissionFilter) ([]models.MonthlyWorkingHoursSubmission, int, error)
}

type organizationSettingsProvider interface {
	GetSettings(ctx context.Context) (*models.OrganizationSettings, error)
}

// MonthlyService folds a worker's daily calculations into the monthly
// working-hours submission.
type MonthlyService struct {
	attendance attendanceRepository
	daily      dailyCalculationRepository
	monthly    monthlySubmissionRepository
	settings   organizationSettingsProvider
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewMonthlyService constructs the monthly aggregation service.
func NewMonthlyService(attendance attendanceRepository, daily dailyCalculationRepository, monthly monthlySubmissionRepository, settings organizationSettingsProvider, validate *validator.Validate, logger *zap.Logger) *MonthlyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthlyService{attendance: attendance, daily: daily, monthly: monthly, settings: settings, validator: validate, logger: logger}
}

// MonthBounds returns the first and last day of a calendar month using the
// month's own day count.
func MonthBounds(month, year int) (first, last time.Time, days int) {
	first = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 1, -1)
	return first, last, last.Day()
}

// Aggregate recomputes the submission for one (worker, month, year) from
// the month's APPROVED daily records. Each day's calculation is re-derived
// and upserted keyed by (worker, date), so re-running on unchanged inputs
// is idempotent and the totals are deterministic.
func (s *MonthlyService) Aggregate(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error) {
	if workerID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "worker_id is required")
	}
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	if year < 2000 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year is out of range")
	}

	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load organization settings")
	}
	policy := settings.Policy()

	first, last, daysInMonth := MonthBounds(month, year)
	records, err := s.attendance.ListApprovedRange(ctx, workerID, first, last)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load daily records")
	}

	sub := &models.MonthlyWorkingHoursSubmission{WorkerID: workerID, Month: month, Year: year}

	var hoursTotal, hours100, hours125, hours150 decimal.Decimal
	var containers, containers100, containers125, containers150 decimal.Decimal
	var base, bonus, salary, salary100, salary125, salary150 decimal.Decimal

	for i := range records {
		record := &records[i]
		calc := buildDailyCalculation(record, policy)
		if _, err := s.daily.Upsert(ctx, calc); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store daily calculation")
		}

		hoursTotal = hoursTotal.Add(decimal.NewFromFloat(calc.TotalHours))
		hours100 = hours100.Add(decimal.NewFromFloat(calc.Hours100))
		hours125 = hours125.Add(decimal.NewFromFloat(calc.Hours125))
		hours150 = hours150.Add(decimal.NewFromFloat(calc.Hours150))

		containers = containers.Add(decimal.NewFromFloat(calc.Containers))
		containers100 = containers100.Add(decimal.NewFromFloat(calc.Containers100))
		containers125 = containers125.Add(decimal.NewFromFloat(calc.Containers125))
		containers150 = containers150.Add(decimal.NewFromFloat(calc.Containers150))

		base = base.Add(decimal.NewFromFloat(calc.BaseSalary))
		bonus = bonus.Add(decimal.NewFromFloat(calc.Bonus))
		salary = salary.Add(decimal.NewFromFloat(calc.TotalSalary))
		salary100 = salary100.Add(decimal.NewFromFloat(calc.Salary100))
		salary125 = salary125.Add(decimal.NewFromFloat(calc.Salary125))
		salary150 = salary150.Add(decimal.NewFromFloat(calc.Salary150))

		sub.AddStatusDay(record.Status)
	}

	sub.TotalMonthlyHours = toFloat2(hoursTotal)
	sub.TotalHours100 = toFloat2(hours100)
	sub.TotalHours125 = toFloat2(hours125)
	sub.TotalHours150 = toFloat2(hours150)
	sub.TotalContainersFilled = toFloat2(containers)
	sub.TotalContainers100 = toFloat2(containers100)
	sub.TotalContainers125 = toFloat2(containers125)
	sub.TotalContainers150 = toFloat2(containers150)
	sub.TotalBaseSalary = toFloat2(base)
	sub.TotalBonus = toFloat2(bonus)
	sub.TotalSalary = toFloat2(salary)
	sub.TotalSalary100 = toFloat2(salary100)
	sub.TotalSalary125 = toFloat2(salary125)
	sub.TotalSalary150 = toFloat2(salary150)

	// The denominator deliberately counts every calendar day, matching the
	// product's definition of attendance. See DESIGN.md before changing.
	sub.AttendancePercentage = toFloat2(
		decimal.NewFromInt(int64(sub.WorkingDays)).
			Div(decimal.NewFromInt(int64(daysInMonth))).
			Mul(decimal.NewFromInt(100)))

	stored, err := s.monthly.UpsertTotals(ctx, sub)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to store monthly submission")
	}
	return stored, nil
}

// buildDailyCalculation derives the priced daily figure from an approved
// attendance record. Containers are attributed to windows in proportion to
// the window hours.
func buildDailyCalculation(record *models.AttendanceRecord, policy models.OrganizationPolicy) *models.DailyWorkCalculation {
	calc := &models.DailyWorkCalculation{
		WorkerID:   record.WorkerID,
		Date:       record.Date,
		Status:     record.Status,
		TotalHours: record.TotalHours,
		Hours100:   record.Hours100,
		Hours125:   record.Hours125,
		Hours150:   record.Hours150,
	}
	if record.ContainersFilled != nil {
		calc.Containers = *record.ContainersFilled
		calc.Containers100, calc.Containers125, calc.Containers150 = SplitProportional(
			calc.Containers, record.TotalHours, record.Hours100, record.Hours125, record.Hours150)
	}

	breakdown := ComputeSalary(record.Hours100, record.Hours125, record.Hours150, policy)
	calc.BaseSalary = breakdown.BaseSalary
	calc.Bonus = breakdown.Bonus
	calc.TotalSalary = breakdown.TotalSalary
	calc.Salary100 = breakdown.Salary100
	calc.Salary125 = breakdown.Salary125
	calc.Salary150 = breakdown.Salary150
	return calc
}

// Get returns the stored submission for one (worker, month, year).
func (s *MonthlyService) Get(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error) {
	sub, err := s.monthly.Find(ctx, workerID, month, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no submission for %d/%d", month, year))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return sub, nil
}

// DailyBreakdown returns the stored per-day calculations behind a month's
// submission, ordered as the repository returns them.
func (s *MonthlyService) DailyBreakdown(ctx context.Context, workerID string, month, year int) ([]models.DailyWorkCalculation, error) {
	if workerID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "worker_id is required")
	}
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
	}
	first, last, _ := MonthBounds(month, year)
	calcs, err := s.daily.ListRange(ctx, workerID, first, last)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to load daily calculations")
	}
	return calcs, nil
}

// List returns paginated submissions.
func (s *MonthlyService) List(ctx context.Context, filter models.MonthlySubmissionFilter) ([]models.MonthlyWorkingHoursSubmission, *models.Pagination, error) {
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

	rows, total, err := s.monthly.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to list submissions")
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func toFloat2(d decimal.Decimal) float64 {
	out, _ := d.Round(2).Float64()
	return out
}
