package models

import "time"

// PayrollDocument is the JSON contract sent to the external payroll system,
// one document per (worker, month). Field names follow the receiving
// system's schema and must not be renamed.
type PayrollDocument struct {
	PassportNumber string `json:"passportNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`

	Misra     PayrollMisra     `json:"misra"`
	Avoda     PayrollAvoda     `json:"avoda"`
	Tashlumim []PayrollPayLine `json:"tashlumim"`
	Chufsha   []PayrollDaySpan `json:"chufsha"`
	Machala   []PayrollDaySpan `json:"machala"`
}

// PayrollMisra describes the position block: rate, worked totals and the
// standard working norms the receiver prorates against.
type PayrollMisra struct {
	HourlyRate       float64 `json:"hourlyRate"`
	TotalHoursWorked float64 `json:"totalHoursWorked"`
	WorkedDays       int     `json:"workedDays"`
	MonthlyHourNorm  float64 `json:"monthlyHourNorm"`
	DailyHourNorm    float64 `json:"dailyHourNorm"`
	WeeklyHourNorm   float64 `json:"weeklyHourNorm"`
	MonthlyDayNorm   int     `json:"monthlyDayNorm"`
	WeeklyDayNorm    int     `json:"weeklyDayNorm"`
}

// PayrollAvoda describes the assignment block: where the worker was placed
// and how their time was distributed across assignments.
type PayrollAvoda struct {
	PrimaryAssignment   string     `json:"primaryAssignment"`
	SecondaryAssignment string     `json:"secondaryAssignment,omitempty"`
	PrimaryPercentage   float64    `json:"primaryPercentage"`
	SecondaryPercentage float64    `json:"secondaryPercentage"`
	EmploymentStartDate *time.Time `json:"employmentStartDate,omitempty"`
}

// PayrollPayLine is one named pay item in the tashlumim array.
type PayrollPayLine struct {
	Name   string  `json:"name"`
	Hours  float64 `json:"hours"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// PayrollDaySpan is a compressed leave/sick/accident range. Entitlement
// fields are sent as zero; the receiver computes them.
type PayrollDaySpan struct {
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Days            int     `json:"days"`
	EntitlementDays float64 `json:"entitlementDays"`
	EntitlementPay  float64 `json:"entitlementPay"`
}

// PayrollBatchItem identifies one (worker, month) to submit.
type PayrollBatchItem struct {
	WorkerID string `json:"worker_id" validate:"required"`
	Month    int    `json:"month" validate:"required,min=1,max=12"`
	Year     int    `json:"year" validate:"required,min=2000"`
}

// PayrollItemResult reports one item's submission outcome.
type PayrollItemResult struct {
	WorkerID string `json:"worker_id"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Sent     bool   `json:"sent"`
	Error    string `json:"error,omitempty"`
}

// PayrollBatchStatus is the progress snapshot stored while a batch runs.
type PayrollBatchStatus struct {
	BatchID    string              `json:"batch_id"`
	Total      int                 `json:"total"`
	Succeeded  int                 `json:"succeeded"`
	Failed     int                 `json:"failed"`
	Done       bool                `json:"done"`
	Results    []PayrollItemResult `json:"results"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}
