package models

import "time"

// ScheduleScope identifies the entity a working-schedule rule is attached to.
type ScheduleScope string

const (
	ScheduleScopeWorker       ScheduleScope = "WORKER"
	ScheduleScopeGroup        ScheduleScope = "GROUP"
	ScheduleScopeField        ScheduleScope = "FIELD"
	ScheduleScopeClient       ScheduleScope = "CLIENT"
	ScheduleScopeOrganization ScheduleScope = "ORGANIZATION"
)

// Valid returns true when the scope is a supported value.
func (s ScheduleScope) Valid() bool {
	switch s {
	case ScheduleScopeWorker, ScheduleScopeGroup, ScheduleScopeField, ScheduleScopeClient, ScheduleScopeOrganization:
		return true
	default:
		return false
	}
}

// ResolutionOrder lists scopes from most to least specific. The resolver
// walks this order and returns the first rule found.
var ResolutionOrder = []ScheduleScope{
	ScheduleScopeWorker,
	ScheduleScopeGroup,
	ScheduleScopeField,
	ScheduleScopeClient,
	ScheduleScopeOrganization,
}

// WorkingScheduleRule defines the default day template for a scope.
// Within one scope the most recently created rule wins.
type WorkingScheduleRule struct {
	ID             string        `db:"id" json:"id"`
	Scope          ScheduleScope `db:"scope" json:"scope"`
	ScopeID        string        `db:"scope_id" json:"scope_id"`
	HoursPerDay    float64       `db:"hours_per_day" json:"hours_per_day"`
	DaysPerWeek    int           `db:"days_per_week" json:"days_per_week"`
	StartMinutes   int           `db:"start_minutes" json:"start_minutes"`
	BreakMinutes   int           `db:"break_minutes" json:"break_minutes"`
	BreakPaid      bool          `db:"break_paid" json:"break_paid"`
	BonusPaid      bool          `db:"bonus_paid" json:"bonus_paid"`
	DailyBudget100 float64       `db:"daily_budget_100" json:"daily_budget_100"`
	DailyBudget125 float64       `db:"daily_budget_125" json:"daily_budget_125"`
	DailyBudget150 float64       `db:"daily_budget_150" json:"daily_budget_150"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// IsWeekendCalendarDay reports whether the given weekday falls outside the
// rule's configured working days. Derived from days-per-week and kept
// independent of the WEEKEND attendance status.
func (r WorkingScheduleRule) IsWeekendCalendarDay(day time.Weekday) bool {
	if r.DaysPerWeek <= 0 || r.DaysPerWeek >= 7 {
		return false
	}
	// The working week starts on Sunday by local convention.
	return int(day) >= r.DaysPerWeek
}

// ScheduleRuleFilter scopes rule listing queries.
type ScheduleRuleFilter struct {
	Scope     ScheduleScope
	ScopeID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
