package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FieldPay API",
        "description": "Workforce attendance and salary computation API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedules", "description": "Working-schedule rules and resolution"},
        {"name": "Attendance", "description": "Daily attendance reconciliation"},
        {"name": "Monthly", "description": "Monthly aggregation and exports"},
        {"name": "Payroll", "description": "Payroll document submission"},
        {"name": "Workers", "description": "Worker directory"},
        {"name": "Organization", "description": "Organization-wide settings"}
    ],
    "paths": {
        "/schedules/resolve": {
            "get": {
                "tags": ["Schedules"],
                "summary": "Resolve the effective schedule rule for a worker",
                "parameters": [
                    {"name": "workerId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No schedule configured at any scope"}
                }
            }
        },
        "/schedules": {
            "get": {
                "tags": ["Schedules"],
                "summary": "List working-schedule rules",
                "parameters": [
                    {"name": "scope", "in": "query", "type": "string"},
                    {"name": "scope_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedules"],
                "summary": "Create a working-schedule rule",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduleRuleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List attendance records",
                "parameters": [
                    {"name": "worker_id", "in": "query", "type": "string"},
                    {"name": "group_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "approval", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/reconcile": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Create or edit the attendance record for one worker-day",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReconcileAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Only a status change is allowed on a non-working day"},
                    "422": {"description": "Incomplete pricing or container input"}
                }
            }
        },
        "/attendance/{workerId}/{date}/approve": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Approve the attendance record for one worker-day",
                "parameters": [
                    {"name": "workerId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{workerId}/{date}/reject": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Reject the attendance record for one worker-day",
                "parameters": [
                    {"name": "workerId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{workerId}/{date}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get the attendance record for one worker-day",
                "parameters": [
                    {"name": "workerId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No attendance record for this day"}
                }
            }
        },
        "/workers": {
            "get": {
                "tags": ["Workers"],
                "summary": "List workers",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "group_id", "in": "query", "type": "string"},
                    {"name": "client_id", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workers/{id}": {
            "get": {
                "tags": ["Workers"],
                "summary": "Get one worker",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Worker not found"}
                }
            }
        },
        "/organization/settings": {
            "get": {
                "tags": ["Organization"],
                "summary": "Get the organization pay policy",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Organization"],
                "summary": "Update the organization pay policy",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/monthly": {
            "get": {
                "tags": ["Monthly"],
                "summary": "List monthly submissions",
                "parameters": [
                    {"name": "worker_id", "in": "query", "type": "string"},
                    {"name": "month", "in": "query", "type": "integer"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "sent", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/monthly/aggregate": {
            "post": {
                "tags": ["Monthly"],
                "summary": "Recompute the monthly submission for one worker",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AggregateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/monthly/{workerId}": {
            "get": {
                "tags": ["Monthly"],
                "summary": "Get the monthly submission for one worker",
                "parameters": [
                    {"name": "workerId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "integer"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/monthly/{workerId}/days": {
            "get": {
                "tags": ["Monthly"],
                "summary": "List the per-day calculations behind a monthly submission",
                "parameters": [
                    {"name": "workerId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "integer"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/monthly/export": {
            "get": {
                "tags": ["Monthly"],
                "summary": "Export monthly submissions as CSV or PDF",
                "parameters": [
                    {"name": "month", "in": "query", "required": true, "type": "integer"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/payroll/submit": {
            "post": {
                "tags": ["Payroll"],
                "summary": "Submit a batch of monthly documents to the payroll system",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitBatchRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payroll/batches/{id}": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Get the progress of a payroll batch",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown batch id"}
                }
            }
        },
        "/payroll/preview/{workerId}": {
            "get": {
                "tags": ["Payroll"],
                "summary": "Build the payroll document for one worker-month without sending it",
                "parameters": [
                    {"name": "workerId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "integer"},
                    {"name": "year", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateScheduleRuleRequest": {
            "type": "object",
            "properties": {
                "scope": {"type": "string", "enum": ["WORKER", "GROUP", "FIELD", "CLIENT", "ORGANIZATION"]},
                "scope_id": {"type": "string"},
                "hours_per_day": {"type": "number"},
                "days_per_week": {"type": "integer"},
                "start_minutes": {"type": "integer"},
                "break_minutes": {"type": "integer"},
                "break_paid": {"type": "boolean"},
                "bonus_paid": {"type": "boolean"},
                "daily_budget_100": {"type": "number"},
                "daily_budget_125": {"type": "number"},
                "daily_budget_150": {"type": "number"}
            },
            "required": ["scope", "hours_per_day", "days_per_week"]
        },
        "ReconcileAttendanceRequest": {
            "type": "object",
            "properties": {
                "worker_id": {"type": "string"},
                "date": {"type": "string"},
                "group_id": {"type": "string"},
                "status": {"type": "string"},
                "start_minutes": {"type": "integer"},
                "end_minutes": {"type": "integer"},
                "break_minutes": {"type": "integer"},
                "break_paid": {"type": "boolean"},
                "containers_filled": {"type": "number"},
                "pricing_combination_id": {"type": "string"},
                "total_wage": {"type": "number"}
            },
            "required": ["worker_id", "date"]
        },
        "RejectAttendanceRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "AggregateRequest": {
            "type": "object",
            "properties": {
                "worker_id": {"type": "string"},
                "month": {"type": "integer"},
                "year": {"type": "integer"}
            },
            "required": ["worker_id", "month", "year"]
        },
        "SubmitBatchRequest": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PayrollBatchItem"}
                }
            },
            "required": ["items"]
        },
        "PayrollBatchItem": {
            "type": "object",
            "properties": {
                "worker_id": {"type": "string"},
                "month": {"type": "integer"},
                "year": {"type": "integer"}
            },
            "required": ["worker_id", "month", "year"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "is_bonus_paid": {"type": "boolean"},
                "rate_100": {"type": "number"},
                "rate_125": {"type": "number"},
                "rate_150": {"type": "number"}
            },
            "required": ["rate_100", "rate_125", "rate_150"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
