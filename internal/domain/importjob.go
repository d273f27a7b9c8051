package domain

import "time"

type SourceType string

const (
	SourceCSV   SourceType = "CSV"
	SourceExcel SourceType = "Excel"
)

type JobStatus string

const (
	JobDryRun  JobStatus = "DRY_RUN"
	JobFailed  JobStatus = "FAILED"
	JobSuccess JobStatus = "SUCCESS"
	JobPartial JobStatus = "PARTIAL"
)

// ImportSummary holds the derived counters of one import run.
type ImportSummary struct {
	TotalRows           int `json:"totalRows"`
	SuccessfulRows      int `json:"successfulRows"`
	FailedRows          int `json:"failedRows"`
	TasksCreated        int `json:"tasksCreated"`
	TasksUpdated        int `json:"tasksUpdated"`
	DependenciesCreated int `json:"dependenciesCreated"`
}

// ImportJob is the append-only audit entry written once per run.
type ImportJob struct {
	ID              string
	ProjectID       string
	SourceType      SourceType
	Status          JobStatus
	ExecutedAt      time.Time
	Summary         ImportSummary
	Errors          []RowError
	ErrorReportPath string
}

// HasErrors reports whether the run recorded any row error.
func (j *ImportJob) HasErrors() bool {
	return len(j.Errors) > 0
}
