package models

import "time"

// SystemMetrics is a lightweight aggregate exposed on the admin API, a
// convenience view over the Prometheus registry.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	PayrollSubmissionsSent   uint64    `json:"payroll_submissions_sent"`
	PayrollSubmissionsFailed uint64    `json:"payroll_submissions_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
