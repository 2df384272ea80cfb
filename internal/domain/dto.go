package domain

import (
	"time"

	"github.com/google/uuid"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ImportResult is the outcome of one import invocation.
// Success is false whenever the run rolled back; Error then describes why.
type ImportResult struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	RunID    *uuid.UUID    `json:"runId,omitempty"`
	Counts   []EntityCount `json:"counts,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Duration string        `json:"duration,omitempty"`
}

// ImportRunDTO is the API view of an ImportRun
type ImportRunDTO struct {
	ID           uuid.UUID       `json:"id"`
	Status       ImportRunStatus `json:"status"`
	Source       string          `json:"source"`
	TriggeredBy  string          `json:"triggeredBy"`
	StartedAt    string          `json:"startedAt"`
	FinishedAt   *string         `json:"finishedAt,omitempty"`
	HeartbeatAt  *string         `json:"heartbeatAt,omitempty"`
	Error        *string         `json:"error,omitempty"`
	Counts       []EntityCount   `json:"counts,omitempty"`
	WarningCount int             `json:"warningCount"`
}

// SummaryDTO holds per-entity row counts and aggregate amounts of the store
type SummaryDTO struct {
	Counts            []EntityCount `json:"counts"`
	ProjectTotalValue float64       `json:"projectTotalValue"`
	OrderTotalAmount  float64       `json:"orderTotalAmount"`
	ExpenseTotal      float64       `json:"expenseTotal"`
	SoftDeletedTasks  int64         `json:"softDeletedTasks"`
	LastImport        *ImportRunDTO `json:"lastImport,omitempty"`
	GeneratedAt       string        `json:"generatedAt"`
}

// BackupDTO describes a stored snapshot backup
type BackupDTO struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Records   int    `json:"records,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// RestoreBackupRequest asks for a stored backup to be imported
type RestoreBackupRequest struct {
	Path string `json:"path" validate:"required,max=500"`
}

// FormatTime renders a timestamp the way DTOs expose it
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
