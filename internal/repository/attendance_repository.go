package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

const attendanceColumns = `id, worker_id, group_id, date, status, start_minutes, end_minutes, break_minutes, break_paid,
total_hours, hours_100, hours_125, hours_150, containers_filled, pricing_combination_id, total_wage,
approval, rejection_reason, approved_at, created_at, updated_at`

// AttendanceRepository handles persistence for per-day attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.WorkerID != "" {
		where = append(where, fmt.Sprintf("worker_id = $%d", len(args)+1))
		args = append(args, filter.WorkerID)
	}
	if filter.GroupID != "" {
		where = append(where, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Approval != nil && filter.Approval.Valid() {
		where = append(where, fmt.Sprintf("approval = $%d", len(args)+1))
		args = append(args, *filter.Approval)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"date":       "date",
		"status":     "status",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "date"
	}
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

	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		attendanceColumns, whereClause, sortColumn, order, size, offset)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance_records WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// ListApprovedRange returns a worker's APPROVED records within [from, to],
// ordered by date ascending.
func (r *AttendanceRepository) ListApprovedRange(ctx context.Context, workerID string, from, to time.Time) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE worker_id = $1 AND approval = $2 AND date >= $3 AND date <= $4
ORDER BY date ASC`, attendanceColumns)

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, workerID, models.ApprovalApproved, from, to); err != nil {
		return nil, fmt.Errorf("list approved attendance: %w", err)
	}
	return rows, nil
}

// ReconcileDay runs the read-merge-write sequence for one (worker, date)
// inside a single transaction holding row locks on that day's records, so
// concurrent edits to the same day serialize. Any REJECTED record for the
// day is purged first. The mutate callback receives the record to edit
// (PENDING preferred over APPROVED, nil when the day is empty) and returns
// the record to persist.
func (r *AttendanceRepository) ReconcileDay(ctx context.Context, workerID string, date time.Time, mutate func(existing *models.AttendanceRecord) (*models.AttendanceRecord, error)) (*models.AttendanceRecord, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reconcile: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE worker_id = $1 AND date = $2 AND approval = $3`,
		workerID, date, models.ApprovalRejected); err != nil {
		return nil, fmt.Errorf("purge rejected record: %w", err)
	}

	lockQuery := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE worker_id = $1 AND date = $2 FOR UPDATE`, attendanceColumns)
	var candidates []models.AttendanceRecord
	if err := tx.SelectContext(ctx, &candidates, lockQuery, workerID, date); err != nil {
		return nil, fmt.Errorf("lock day records: %w", err)
	}

	var existing *models.AttendanceRecord
	for i := range candidates {
		switch candidates[i].Approval {
		case models.ApprovalPending:
			existing = &candidates[i]
		case models.ApprovalApproved:
			if existing == nil {
				existing = &candidates[i]
			}
		}
	}

	record, err := mutate(existing)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record.UpdatedAt = now
	if record.ID == "" {
		record.ID = uuid.NewString()
		record.CreatedAt = now
		insert := fmt.Sprintf(`INSERT INTO attendance_records (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
RETURNING %s`, attendanceColumns, attendanceColumns)
		var stored models.AttendanceRecord
		if err := tx.GetContext(ctx, &stored, insert,
			record.ID, record.WorkerID, record.GroupID, record.Date, record.Status,
			record.StartMinutes, record.EndMinutes, record.BreakMinutes, record.BreakPaid,
			record.TotalHours, record.Hours100, record.Hours125, record.Hours150,
			record.ContainersFilled, record.PricingCombinationID, record.TotalWage,
			record.Approval, record.RejectionReason, record.ApprovedAt, record.CreatedAt, record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("insert attendance record: %w", err)
		}
		record = &stored
	} else {
		update := fmt.Sprintf(`UPDATE attendance_records SET
group_id = $2, status = $3, start_minutes = $4, end_minutes = $5, break_minutes = $6, break_paid = $7,
total_hours = $8, hours_100 = $9, hours_125 = $10, hours_150 = $11, containers_filled = $12,
pricing_combination_id = $13, total_wage = $14, approval = $15, rejection_reason = $16, approved_at = $17, updated_at = $18
WHERE id = $1
RETURNING %s`, attendanceColumns)
		var stored models.AttendanceRecord
		if err := tx.GetContext(ctx, &stored, update,
			record.ID, record.GroupID, record.Status, record.StartMinutes, record.EndMinutes,
			record.BreakMinutes, record.BreakPaid, record.TotalHours, record.Hours100, record.Hours125,
			record.Hours150, record.ContainersFilled, record.PricingCombinationID, record.TotalWage,
			record.Approval, record.RejectionReason, record.ApprovedAt, record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("update attendance record: %w", err)
		}
		record = &stored
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reconcile: %w", err)
	}
	committed = true
	return record, nil
}

// FindByWorkerAndDate returns the day's record preferring PENDING over
// APPROVED, or sql.ErrNoRows when the day is empty.
func (r *AttendanceRepository) FindByWorkerAndDate(ctx context.Context, workerID string, date time.Time) (*models.AttendanceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE worker_id = $1 AND date = $2 AND approval != $3
ORDER BY CASE approval WHEN 'PENDING' THEN 0 ELSE 1 END
LIMIT 1`, attendanceColumns)

	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, workerID, date, models.ApprovalRejected); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return &record, nil
}
