package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

var attendanceRowColumns = []string{
	"id", "worker_id", "group_id", "date", "status", "start_minutes", "end_minutes",
	"break_minutes", "break_paid", "total_hours", "hours_100", "hours_125", "hours_150",
	"containers_filled", "pricing_combination_id", "total_wage", "approval",
	"rejection_reason", "approved_at", "created_at", "updated_at",
}

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func attendanceRow(id string, approval models.ApprovalStatus, date time.Time) []driverValue {
	now := time.Now()
	return []driverValue{
		id, "w1", nil, date, "WORKING", 480, 720, 0, false,
		4.0, 4.0, 0.0, 0.0, 2.0, "pc1", 100.0, string(approval),
		nil, nil, now, now,
	}
}

type driverValue = driver.Value

func addAttendanceRows(rows *sqlmock.Rows, records ...[]driverValue) *sqlmock.Rows {
	for _, r := range records {
		rows.AddRow(r...)
	}
	return rows
}

func TestAttendanceRepositoryReconcileDayInsertsNewRecord(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_records WHERE worker_id = $1 AND date = $2 AND approval = $3")).
		WithArgs("w1", date, models.ApprovalRejected).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM attendance_records WHERE worker_id = \\$1 AND date = \\$2 FOR UPDATE").
		WithArgs("w1", date).
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnRows(addAttendanceRows(sqlmock.NewRows(attendanceRowColumns), attendanceRow("new-id", models.ApprovalPending, date)))
	mock.ExpectCommit()

	record, err := repo.ReconcileDay(context.Background(), "w1", date, func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error) {
		require.Nil(t, existing)
		return &models.AttendanceRecord{
			WorkerID: "w1", Date: date,
			Status: models.DayStatusWorking, Approval: models.ApprovalPending,
		}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "new-id", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReconcileDayUpdatesPendingRecord(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_records")).
		WithArgs("w1", date, models.ApprovalRejected).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("w1", date).
		WillReturnRows(addAttendanceRows(sqlmock.NewRows(attendanceRowColumns),
			attendanceRow("approved-id", models.ApprovalApproved, date),
			attendanceRow("pending-id", models.ApprovalPending, date)))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE attendance_records SET")).
		WillReturnRows(addAttendanceRows(sqlmock.NewRows(attendanceRowColumns), attendanceRow("pending-id", models.ApprovalPending, date)))
	mock.ExpectCommit()

	record, err := repo.ReconcileDay(context.Background(), "w1", date, func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error) {
		// The PENDING row wins over the APPROVED one as the edit target.
		require.NotNil(t, existing)
		require.Equal(t, "pending-id", existing.ID)
		updated := *existing
		return &updated, nil
	})
	require.NoError(t, err)
	require.Equal(t, "pending-id", record.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryReconcileDayRollsBackOnMutateError(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM attendance_records")).
		WithArgs("w1", date, models.ApprovalRejected).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("w1", date).
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns))
	mock.ExpectRollback()

	wantErr := errors.New("record is immutable")
	_, err := repo.ReconcileDay(context.Background(), "w1", date, func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListApprovedRange(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("WHERE worker_id = \\$1 AND approval = \\$2 AND date >= \\$3 AND date <= \\$4").
		WithArgs("w1", models.ApprovalApproved, from, to).
		WillReturnRows(addAttendanceRows(sqlmock.NewRows(attendanceRowColumns),
			attendanceRow("a1", models.ApprovalApproved, from.AddDate(0, 0, 2))))

	records, err := repo.ListApprovedRange(context.Background(), "w1", from, to)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "a1", records[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindByWorkerAndDateMissing(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("WHERE worker_id = \\$1 AND date = \\$2 AND approval != \\$3").
		WithArgs("w1", date, models.ApprovalRejected).
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns))

	_, err := repo.FindByWorkerAndDate(context.Background(), "w1", date)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	status := models.DayStatusWorking

	mock.ExpectQuery("FROM attendance_records WHERE 1=1 AND worker_id = \\$1 AND status = \\$2 ORDER BY date DESC").
		WithArgs("w1", status).
		WillReturnRows(addAttendanceRows(sqlmock.NewRows(attendanceRowColumns),
			attendanceRow("a1", models.ApprovalApproved, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC))))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance_records WHERE 1=1 AND worker_id = $1 AND status = $2")).
		WithArgs("w1", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{WorkerID: "w1", Status: &status})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
