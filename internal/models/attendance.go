package models

import "time"

// DayStatus classifies what a worker's calendar day was.
type DayStatus string

const (
	DayStatusWorking             DayStatus = "WORKING"
	DayStatusSickLeave           DayStatus = "SICK_LEAVE"
	DayStatusDayOff              DayStatus = "DAY_OFF"
	DayStatusHoliday             DayStatus = "HOLIDAY"
	DayStatusInterVisa           DayStatus = "INTER_VISA"
	DayStatusAbsent              DayStatus = "ABSENT"
	DayStatusDayOffPersonal      DayStatus = "DAY_OFF_PERSONAL_REASON"
	DayStatusWeekend             DayStatus = "WEEKEND"
	DayStatusAccident            DayStatus = "ACCIDENT"
	DayStatusNotWorkingButPaid   DayStatus = "NOT_WORKING_BUT_PAID"
	DayStatusNoSchedule          DayStatus = "NO_SCHEDULE"
)

// Valid returns true when the status is a supported value.
func (s DayStatus) Valid() bool {
	switch s {
	case DayStatusWorking, DayStatusSickLeave, DayStatusDayOff, DayStatusHoliday,
		DayStatusInterVisa, DayStatusAbsent, DayStatusDayOffPersonal, DayStatusWeekend,
		DayStatusAccident, DayStatusNotWorkingButPaid, DayStatusNoSchedule:
		return true
	default:
		return false
	}
}

// ApprovalStatus tracks the review lifecycle of an attendance record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Valid returns true when the approval status is a supported value.
func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one worker's authoritative record for one calendar day.
// At most one APPROVED record may exist per (worker, date).
type AttendanceRecord struct {
	ID                   string         `db:"id" json:"id"`
	WorkerID             string         `db:"worker_id" json:"worker_id"`
	GroupID              *string        `db:"group_id" json:"group_id,omitempty"`
	Date                 time.Time      `db:"date" json:"date"`
	Status               DayStatus      `db:"status" json:"status"`
	StartMinutes         *int           `db:"start_minutes" json:"start_minutes,omitempty"`
	EndMinutes           *int           `db:"end_minutes" json:"end_minutes,omitempty"`
	BreakMinutes         int            `db:"break_minutes" json:"break_minutes"`
	BreakPaid            bool           `db:"break_paid" json:"break_paid"`
	TotalHours           float64        `db:"total_hours" json:"total_hours"`
	Hours100             float64        `db:"hours_100" json:"hours_100"`
	Hours125             float64        `db:"hours_125" json:"hours_125"`
	Hours150             float64        `db:"hours_150" json:"hours_150"`
	ContainersFilled     *float64       `db:"containers_filled" json:"containers_filled,omitempty"`
	PricingCombinationID *string        `db:"pricing_combination_id" json:"pricing_combination_id,omitempty"`
	TotalWage            float64        `db:"total_wage" json:"total_wage"`
	Approval             ApprovalStatus `db:"approval" json:"approval"`
	RejectionReason      *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ApprovedAt           *time.Time     `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	WorkerID  string
	GroupID   string
	Status    *DayStatus
	Approval  *ApprovalStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// DailyWorkCalculation is the priced daily figure derived from an approved
// attendance record. Rows are keyed by (worker, date) and re-deriving them
// for the same inputs overwrites in place.
type DailyWorkCalculation struct {
	ID            string    `db:"id" json:"id"`
	WorkerID      string    `db:"worker_id" json:"worker_id"`
	Date          time.Time `db:"date" json:"date"`
	Status        DayStatus `db:"status" json:"status"`
	TotalHours    float64   `db:"total_hours" json:"total_hours"`
	Hours100      float64   `db:"hours_100" json:"hours_100"`
	Hours125      float64   `db:"hours_125" json:"hours_125"`
	Hours150      float64   `db:"hours_150" json:"hours_150"`
	Containers    float64   `db:"containers" json:"containers"`
	Containers100 float64   `db:"containers_100" json:"containers_100"`
	Containers125 float64   `db:"containers_125" json:"containers_125"`
	Containers150 float64   `db:"containers_150" json:"containers_150"`
	BaseSalary    float64   `db:"base_salary" json:"base_salary"`
	Bonus         float64   `db:"bonus" json:"bonus"`
	TotalSalary   float64   `db:"total_salary" json:"total_salary"`
	Salary100     float64   `db:"salary_100" json:"salary_100"`
	Salary125     float64   `db:"salary_125" json:"salary_125"`
	Salary150     float64   `db:"salary_150" json:"salary_150"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DayStatusRange is a run of consecutive calendar days sharing one status.
type DayStatusRange struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    DayStatus `json:"status"`
}
