package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

const dailyCalcColumns = `id, worker_id, date, status, total_hours, hours_100, hours_125, hours_150,
containers, containers_100, containers_125, containers_150,
base_salary, bonus, total_salary, salary_100, salary_125, salary_150, created_at, updated_at`

// DailyCalculationRepository persists priced daily figures keyed by
// (worker, date).
type DailyCalculationRepository struct {
	db *sqlx.DB
}

// NewDailyCalculationRepository constructs the repository.
func NewDailyCalculationRepository(db *sqlx.DB) *DailyCalculationRepository {
	return &DailyCalculationRepository{db: db}
}

// Upsert inserts or replaces the calculation for one (worker, date). Re-runs
// on unchanged inputs rewrite identical values, keeping aggregation
// idempotent.
func (r *DailyCalculationRepository) Upsert(ctx context.Context, calc *models.DailyWorkCalculation) (*models.DailyWorkCalculation, error) {
	now := time.Now().UTC()
	if calc.ID == "" {
		calc.ID = uuid.NewString()
	}
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = now
	}
	calc.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO daily_work_calculations (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
ON CONFLICT (worker_id, date)
DO UPDATE SET status = EXCLUDED.status, total_hours = EXCLUDED.total_hours,
hours_100 = EXCLUDED.hours_100, hours_125 = EXCLUDED.hours_125, hours_150 = EXCLUDED.hours_150,
containers = EXCLUDED.containers, containers_100 = EXCLUDED.containers_100,
containers_125 = EXCLUDED.containers_125, containers_150 = EXCLUDED.containers_150,
base_salary = EXCLUDED.base_salary, bonus = EXCLUDED.bonus, total_salary = EXCLUDED.total_salary,
salary_100 = EXCLUDED.salary_100, salary_125 = EXCLUDED.salary_125, salary_150 = EXCLUDED.salary_150,
updated_at = EXCLUDED.updated_at
RETURNING %s`, dailyCalcColumns, dailyCalcColumns)

	var stored models.DailyWorkCalculation
	if err := r.db.GetContext(ctx, &stored, query,
		calc.ID, calc.WorkerID, calc.Date, calc.Status, calc.TotalHours,
		calc.Hours100, calc.Hours125, calc.Hours150,
		calc.Containers, calc.Containers100, calc.Containers125, calc.Containers150,
		calc.BaseSalary, calc.Bonus, calc.TotalSalary,
		calc.Salary100, calc.Salary125, calc.Salary150, calc.CreatedAt, calc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert daily calculation: %w", err)
	}
	return &stored, nil
}

// ListRange returns a worker's calculations within [from, to], ordered by
// date ascending.
func (r *DailyCalculationRepository) ListRange(ctx context.Context, workerID string, from, to time.Time) ([]models.DailyWorkCalculation, error) {
	query := fmt.Sprintf(`SELECT %s FROM daily_work_calculations
WHERE worker_id = $1 AND date >= $2 AND date <= $3
ORDER BY date ASC`, dailyCalcColumns)

	var rows []models.DailyWorkCalculation
	if err := r.db.SelectContext(ctx, &rows, query, workerID, from, to); err != nil {
		return nil, fmt.Errorf("list daily calculations: %w", err)
	}
	return rows, nil
}
