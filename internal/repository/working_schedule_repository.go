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

const scheduleColumns = `id, scope, scope_id, hours_per_day, days_per_week, start_minutes, break_minutes, break_paid,
bonus_paid, daily_budget_100, daily_budget_125, daily_budget_150, created_at`

// WorkingScheduleRepository handles persistence for working-schedule rules.
type WorkingScheduleRepository struct {
	db *sqlx.DB
}

// NewWorkingScheduleRepository constructs the repository.
func NewWorkingScheduleRepository(db *sqlx.DB) *WorkingScheduleRepository {
	return &WorkingScheduleRepository{db: db}
}

// Create stores a new rule. Rules are immutable; a new rule supersedes
// older ones in the same scope by creation time.
func (r *WorkingScheduleRepository) Create(ctx context.Context, rule *models.WorkingScheduleRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	query := fmt.Sprintf(`INSERT INTO working_schedule_rules (%s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, scheduleColumns)
	if _, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.Scope, rule.ScopeID, rule.HoursPerDay, rule.DaysPerWeek, rule.StartMinutes,
		rule.BreakMinutes, rule.BreakPaid, rule.BonusPaid,
		rule.DailyBudget100, rule.DailyBudget125, rule.DailyBudget150, rule.CreatedAt); err != nil {
		return fmt.Errorf("create schedule rule: %w", err)
	}
	return nil
}

// FindLatest returns the most recently created rule for a scope, or
// sql.ErrNoRows. An empty scopeID matches any row at that scope, which is
// how the single organization-level rule is looked up.
func (r *WorkingScheduleRepository) FindLatest(ctx context.Context, scope models.ScheduleScope, scopeID string) (*models.WorkingScheduleRule, error) {
	query := fmt.Sprintf(`SELECT %s FROM working_schedule_rules
WHERE scope = $1 AND ($2 = '' OR scope_id = $2)
ORDER BY created_at DESC
LIMIT 1`, scheduleColumns)

	var rule models.WorkingScheduleRule
	if err := r.db.GetContext(ctx, &rule, query, scope, scopeID); err != nil {
		return nil, err
	}
	return &rule, nil
}

// List returns rules matching the provided filter.
func (r *WorkingScheduleRepository) List(ctx context.Context, filter models.ScheduleRuleFilter) ([]models.WorkingScheduleRule, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Scope != "" && filter.Scope.Valid() {
		where = append(where, fmt.Sprintf("scope = $%d", len(args)+1))
		args = append(args, filter.Scope)
	}
	if filter.ScopeID != "" {
		where = append(where, fmt.Sprintf("scope_id = $%d", len(args)+1))
		args = append(args, filter.ScopeID)
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

	query := fmt.Sprintf(`SELECT %s FROM working_schedule_rules WHERE %s ORDER BY created_at %s LIMIT %d OFFSET %d`,
		scheduleColumns, whereClause, order, size, offset)

	var rows []models.WorkingScheduleRule
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule rules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM working_schedule_rules WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule rules: %w", err)
	}
	return rows, total, nil
}
