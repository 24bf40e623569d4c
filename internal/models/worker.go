package models

import "time"

// Worker represents a registered field worker.
type Worker struct {
	ID                  string     `db:"id" json:"id"`
	PassportNumber      string     `db:"passport_number" json:"passport_number"`
	FirstName           string     `db:"first_name" json:"first_name"`
	LastName            string     `db:"last_name" json:"last_name"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	GroupID             *string    `db:"group_id" json:"group_id,omitempty"`
	ClientID            *string    `db:"client_id" json:"client_id,omitempty"`
	EmploymentStartDate *time.Time `db:"employment_start_date" json:"employment_start_date,omitempty"`
	Active              bool       `db:"active" json:"active"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// WorkerGroup is the group a worker is assigned to; groups belong to a field.
type WorkerGroup struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	FieldID   *string   `db:"field_id" json:"field_id,omitempty"`
	ClientID  string    `db:"client_id" json:"client_id"`
	LeaderID  *string   `db:"leader_id" json:"leader_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WorkerFilter scopes worker listing queries.
type WorkerFilter struct {
	Search    string
	GroupID   string
	ClientID  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
