package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fieldcrew/fieldpay-api/internal/models"
)

const workerColumns = `id, passport_number, first_name, last_name, phone, group_id, client_id,
employment_start_date, active, created_at, updated_at`

// WorkerRepository reads worker and group reference data.
type WorkerRepository struct {
	db *sqlx.DB
}

// NewWorkerRepository constructs the repository.
func NewWorkerRepository(db *sqlx.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// FindByID returns one worker, or sql.ErrNoRows.
func (r *WorkerRepository) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	query := fmt.Sprintf(`SELECT %s FROM workers WHERE id = $1`, workerColumns)
	var worker models.Worker
	if err := r.db.GetContext(ctx, &worker, query, id); err != nil {
		return nil, err
	}
	return &worker, nil
}

// FindGroup returns one worker group, or sql.ErrNoRows.
func (r *WorkerRepository) FindGroup(ctx context.Context, id string) (*models.WorkerGroup, error) {
	query := `SELECT id, name, field_id, client_id, leader_id, created_at FROM worker_groups WHERE id = $1`
	var group models.WorkerGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns workers matching the provided filter.
func (r *WorkerRepository) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR passport_number ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.GroupID != "" {
		where = append(where, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.ClientID != "" {
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"last_name":  "last_name",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT %s FROM workers WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		workerColumns, whereClause, sortColumn, order, size, offset)

	var rows []models.Worker
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM workers WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count workers: %w", err)
	}
	return rows, total, nil
}
