package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

const monthlyColumns = `id, worker_id, month, year,
total_monthly_hours, total_hours_100, total_hours_125, total_hours_150,
total_containers_filled, total_containers_100, total_containers_125, total_containers_150,
total_base_salary, total_bonus, total_salary, total_salary_100, total_salary_125, total_salary_150,
working_days, sick_leave_days, day_off_days, holiday_days, inter_visa_days, absent_days,
personal_day_off_days, weekend_days, accident_days, paid_not_working_days, attendance_percentage,
sent_to_payroll, sent_at, approval, failure_reason, created_at, updated_at`

// MonthlySubmissionRepository persists monthly working-hours submissions
// keyed by (worker, month, year).
type MonthlySubmissionRepository struct {
	db *sqlx.DB
}

// NewMonthlySubmissionRepository constructs the repository.
func NewMonthlySubmissionRepository(db *sqlx.DB) *MonthlySubmissionRepository {
	return &MonthlySubmissionRepository{db: db}
}

// UpsertTotals writes the recomputed aggregate for a (worker, month, year).
// Send-state fields (sent flag, sent_at, approval, failure reason) are left
// untouched on recompute so a stale sent submission stays visibly sent.
func (r *MonthlySubmissionRepository) UpsertTotals(ctx context.Context, sub *models.MonthlyWorkingHoursSubmission) (*models.MonthlyWorkingHoursSubmission, error) {
	now := time.Now().UTC()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	if sub.Approval == "" {
		sub.Approval = models.ApprovalPending
	}

	query := fmt.Sprintf(`INSERT INTO monthly_submissions (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35)
ON CONFLICT (worker_id, month, year)
DO UPDATE SET
total_monthly_hours = EXCLUDED.total_monthly_hours, total_hours_100 = EXCLUDED.total_hours_100,
total_hours_125 = EXCLUDED.total_hours_125, total_hours_150 = EXCLUDED.total_hours_150,
total_containers_filled = EXCLUDED.total_containers_filled, total_containers_100 = EXCLUDED.total_containers_100,
total_containers_125 = EXCLUDED.total_containers_125, total_containers_150 = EXCLUDED.total_containers_150,
total_base_salary = EXCLUDED.total_base_salary, total_bonus = EXCLUDED.total_bonus,
total_salary = EXCLUDED.total_salary, total_salary_100 = EXCLUDED.total_salary_100,
total_salary_125 = EXCLUDED.total_salary_125, total_salary_150 = EXCLUDED.total_salary_150,
working_days = EXCLUDED.working_days, sick_leave_days = EXCLUDED.sick_leave_days,
day_off_days = EXCLUDED.day_off_days, holiday_days = EXCLUDED.holiday_days,
inter_visa_days = EXCLUDED.inter_visa_days, absent_days = EXCLUDED.absent_days,
personal_day_off_days = EXCLUDED.personal_day_off_days, weekend_days = EXCLUDED.weekend_days,
accident_days = EXCLUDED.accident_days, paid_not_working_days = EXCLUDED.paid_not_working_days,
attendance_percentage = EXCLUDED.attendance_percentage, updated_at = EXCLUDED.updated_at
RETURNING %s`, monthlyColumns, monthlyColumns)

	var stored models.MonthlyWorkingHoursSubmission
	if err := r.db.GetContext(ctx, &stored, query,
		sub.ID, sub.WorkerID, sub.Month, sub.Year,
		sub.TotalMonthlyHours, sub.TotalHours100, sub.TotalHours125, sub.TotalHours150,
		sub.TotalContainersFilled, sub.TotalContainers100, sub.TotalContainers125, sub.TotalContainers150,
		sub.TotalBaseSalary, sub.TotalBonus, sub.TotalSalary, sub.TotalSalary100, sub.TotalSalary125, sub.TotalSalary150,
		sub.WorkingDays, sub.SickLeaveDays, sub.DayOffDays, sub.HolidayDays, sub.InterVisaDays, sub.AbsentDays,
		sub.PersonalDayOffDays, sub.WeekendDays, sub.AccidentDays, sub.PaidNotWorkingDays, sub.AttendancePercentage,
		sub.SentToPayroll, sub.SentAt, sub.Approval, sub.FailureReason, sub.CreatedAt, sub.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert monthly submission: %w", err)
	}
	return &stored, nil
}

// Find returns the submission for one (worker, month, year), or sql.ErrNoRows.
func (r *MonthlySubmissionRepository) Find(ctx context.Context, workerID string, month, year int) (*models.MonthlyWorkingHoursSubmission, error) {
	query := fmt.Sprintf(`SELECT %s FROM monthly_submissions WHERE worker_id = $1 AND month = $2 AND year = $3`, monthlyColumns)
	var sub models.MonthlyWorkingHoursSubmission
	if err := r.db.GetContext(ctx, &sub, query, workerID, month, year); err != nil {
		return nil, err
	}
	return &sub, nil
}

// List returns submissions matching the provided filter.
func (r *MonthlySubmissionRepository) List(ctx context.Context, filter models.MonthlySubmissionFilter) ([]models.MonthlyWorkingHoursSubmission, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.WorkerID != "" {
		where = append(where, fmt.Sprintf("worker_id = $%d", len(args)+1))
		args = append(args, filter.WorkerID)
	}
	if filter.Month > 0 {
		where = append(where, fmt.Sprintf("month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Year > 0 {
		where = append(where, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Sent != nil {
		where = append(where, fmt.Sprintf("sent_to_payroll = $%d", len(args)+1))
		args = append(args, *filter.Sent)
	}
	whereClause := strings.Join(where, " AND ")

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM monthly_submissions WHERE %s ORDER BY year %s, month %s LIMIT %d OFFSET %d`,
		monthlyColumns, whereClause, order, order, size, offset)

	var rows []models.MonthlyWorkingHoursSubmission
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list monthly submissions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM monthly_submissions WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count monthly submissions: %w", err)
	}
	return rows, total, nil
}

// MarkSent flags a submission as transmitted after a confirmed success
// response. The flag never turns true on an ambiguous outcome.
func (r *MonthlySubmissionRepository) MarkSent(ctx context.Context, workerID string, month, year int, sentAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE monthly_submissions
SET sent_to_payroll = TRUE, sent_at = $4, approval = $5, failure_reason = NULL, updated_at = $4
WHERE worker_id = $1 AND month = $2 AND year = $3`,
		workerID, month, year, sentAt, models.ApprovalApproved); err != nil {
		return fmt.Errorf("mark submission sent: %w", err)
	}
	return nil
}

// MarkRejected records a failed or timed-out send with its reason.
func (r *MonthlySubmissionRepository) MarkRejected(ctx context.Context, workerID string, month, year int, reason string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE monthly_submissions
SET sent_to_payroll = FALSE, approval = $4, failure_reason = $5, updated_at = $6
WHERE worker_id = $1 AND month = $2 AND year = $3`,
		workerID, month, year, models.ApprovalRejected, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark submission rejected: %w", err)
	}
	return nil
}
