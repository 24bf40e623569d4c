package models

import "time"

// MonthlyWorkingHoursSubmission aggregates one worker's daily calculations
// for a calendar month. Created lazily on first aggregation and recomputed
// in place whenever the month's daily records change.
type MonthlyWorkingHoursSubmission struct {
	ID       string `db:"id" json:"id"`
	WorkerID string `db:"worker_id" json:"worker_id"`
	Month    int    `db:"month" json:"month"`
	Year     int    `db:"year" json:"year"`

	TotalMonthlyHours float64 `db:"total_monthly_hours" json:"total_monthly_hours"`
	TotalHours100     float64 `db:"total_hours_100" json:"total_hours_100"`
	TotalHours125     float64 `db:"total_hours_125" json:"total_hours_125"`
	TotalHours150     float64 `db:"total_hours_150" json:"total_hours_150"`

	TotalContainersFilled float64 `db:"total_containers_filled" json:"total_containers_filled"`
	TotalContainers100    float64 `db:"total_containers_100" json:"total_containers_100"`
	TotalContainers125    float64 `db:"total_containers_125" json:"total_containers_125"`
	TotalContainers150    float64 `db:"total_containers_150" json:"total_containers_150"`

	TotalBaseSalary float64 `db:"total_base_salary" json:"total_base_salary"`
	TotalBonus      float64 `db:"total_bonus" json:"total_bonus"`
	TotalSalary     float64 `db:"total_salary" json:"total_salary"`
	TotalSalary100  float64 `db:"total_salary_100" json:"total_salary_100"`
	TotalSalary125  float64 `db:"total_salary_125" json:"total_salary_125"`
	TotalSalary150  float64 `db:"total_salary_150" json:"total_salary_150"`

	WorkingDays          int     `db:"working_days" json:"working_days"`
	SickLeaveDays        int     `db:"sick_leave_days" json:"sick_leave_days"`
	DayOffDays           int     `db:"day_off_days" json:"day_off_days"`
	HolidayDays          int     `db:"holiday_days" json:"holiday_days"`
	InterVisaDays        int     `db:"inter_visa_days" json:"inter_visa_days"`
	AbsentDays           int     `db:"absent_days" json:"absent_days"`
	PersonalDayOffDays   int     `db:"personal_day_off_days" json:"personal_day_off_days"`
	WeekendDays          int     `db:"weekend_days" json:"weekend_days"`
	AccidentDays         int     `db:"accident_days" json:"accident_days"`
	PaidNotWorkingDays   int     `db:"paid_not_working_days" json:"paid_not_working_days"`
	AttendancePercentage float64 `db:"attendance_percentage" json:"attendance_percentage"`

	SentToPayroll bool           `db:"sent_to_payroll" json:"sent_to_payroll"`
	SentAt        *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	Approval      ApprovalStatus `db:"approval" json:"approval"`
	FailureReason *string        `db:"failure_reason" json:"failure_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AddStatusDay tallies one day's status into the per-status counters.
// NO_SCHEDULE is deliberately not counted: it marks a configuration gap, not
// an attendance outcome, and such days never reach an approved submission.
func (m *MonthlyWorkingHoursSubmission) AddStatusDay(status DayStatus) {
	switch status {
	case DayStatusWorking:
		m.WorkingDays++
	case DayStatusSickLeave:
		m.SickLeaveDays++
	case DayStatusDayOff:
		m.DayOffDays++
	case DayStatusHoliday:
		m.HolidayDays++
	case DayStatusInterVisa:
		m.InterVisaDays++
	case DayStatusAbsent:
		m.AbsentDays++
	case DayStatusDayOffPersonal:
		m.PersonalDayOffDays++
	case DayStatusWeekend:
		m.WeekendDays++
	case DayStatusAccident:
		m.AccidentDays++
	case DayStatusNotWorkingButPaid:
		m.PaidNotWorkingDays++
	}
}

// MonthlySubmissionFilter scopes submission listing queries.
type MonthlySubmissionFilter struct {
	WorkerID  string
	Month     int
	Year      int
	Sent      *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
