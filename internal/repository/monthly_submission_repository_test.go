package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

var monthlyRowColumns = []string{
	"id", "worker_id", "month", "year",
	"total_monthly_hours", "total_hours_100", "total_hours_125", "total_hours_150",
	"total_containers_filled", "total_containers_100", "total_containers_125", "total_containers_150",
	"total_base_salary", "total_bonus", "total_salary", "total_salary_100", "total_salary_125", "total_salary_150",
	"working_days", "sick_leave_days", "day_off_days", "holiday_days", "inter_visa_days", "absent_days",
	"personal_day_off_days", "weekend_days", "accident_days", "paid_not_working_days", "attendance_percentage",
	"sent_to_payroll", "sent_at", "approval", "failure_reason", "created_at", "updated_at",
}

func monthlyRow(id string) []driverValue {
	now := time.Now()
	return []driverValue{
		id, "w1", 3, 2025,
		15.0, 12.0, 2.0, 1.0,
		7.5, 6.0, 1.0, 0.5,
		360.0, 0.0, 480.0, 360.0, 75.0, 45.0,
		2, 1, 0, 1, 0, 0,
		0, 0, 0, 0, 6.45,
		false, nil, "PENDING", nil, now, now,
	}
}

func newMonthlyRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMonthlySubmissionRepositoryUpsertTotals(t *testing.T) {
	db, mock, cleanup := newMonthlyRepoMock(t)
	defer cleanup()

	repo := NewMonthlySubmissionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO monthly_submissions")).
		WillReturnRows(sqlmock.NewRows(monthlyRowColumns).AddRow(monthlyRow("sub-1")...))

	sub := &models.MonthlyWorkingHoursSubmission{
		WorkerID: "w1", Month: 3, Year: 2025,
		TotalMonthlyHours: 15, WorkingDays: 2,
	}
	stored, err := repo.UpsertTotals(context.Background(), sub)
	require.NoError(t, err)
	require.Equal(t, "sub-1", stored.ID)
	require.Equal(t, 15.0, stored.TotalMonthlyHours)
	// Defaults filled in before the write.
	require.NotEmpty(t, sub.ID)
	require.Equal(t, models.ApprovalPending, sub.Approval)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlySubmissionRepositoryFindMissing(t *testing.T) {
	db, mock, cleanup := newMonthlyRepoMock(t)
	defer cleanup()

	repo := NewMonthlySubmissionRepository(db)
	mock.ExpectQuery("FROM monthly_submissions WHERE worker_id = \\$1 AND month = \\$2 AND year = \\$3").
		WithArgs("w1", 4, 2025).
		WillReturnRows(sqlmock.NewRows(monthlyRowColumns))

	_, err := repo.Find(context.Background(), "w1", 4, 2025)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlySubmissionRepositoryMarkSent(t *testing.T) {
	db, mock, cleanup := newMonthlyRepoMock(t)
	defer cleanup()

	repo := NewMonthlySubmissionRepository(db)
	sentAt := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE monthly_submissions").
		WithArgs("w1", 3, 2025, sentAt, models.ApprovalApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkSent(context.Background(), "w1", 3, 2025, sentAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlySubmissionRepositoryMarkRejected(t *testing.T) {
	db, mock, cleanup := newMonthlyRepoMock(t)
	defer cleanup()

	repo := NewMonthlySubmissionRepository(db)
	mock.ExpectExec("UPDATE monthly_submissions").
		WithArgs("w1", 3, 2025, models.ApprovalRejected, "payroll system returned 500", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRejected(context.Background(), "w1", 3, 2025, "payroll system returned 500"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthlySubmissionRepositoryListBySentFlag(t *testing.T) {
	db, mock, cleanup := newMonthlyRepoMock(t)
	defer cleanup()

	repo := NewMonthlySubmissionRepository(db)
	sent := false
	mock.ExpectQuery("FROM monthly_submissions WHERE 1=1 AND year = \\$1 AND sent_to_payroll = \\$2").
		WithArgs(2025, sent).
		WillReturnRows(sqlmock.NewRows(monthlyRowColumns).AddRow(monthlyRow("sub-1")...))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM monthly_submissions")).
		WithArgs(2025, sent).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows, total, err := repo.List(context.Background(), models.MonthlySubmissionFilter{Year: 2025, Sent: &sent})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
