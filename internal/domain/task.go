package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTaskNameLen = 255
	MaxTaskCodeLen = 64
	MaxAssigneeLen = 120
)

type Task struct {
	ID           string
	ProjectID    string
	TaskCode     string // empty means the task has no upsert key
	Name         string
	Assignee     string
	StartDate    time.Time
	EndDate      time.Time
	Progress     int
	Status       TaskStatus
	ParentTaskID *string
	IsMilestone  bool
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate checks the persisted-form invariants of a task.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task name is required")
	}
	if utf8.RuneCountInString(t.Name) > MaxTaskNameLen {
		return fmt.Errorf("task name must not exceed %d characters", MaxTaskNameLen)
	}
	if utf8.RuneCountInString(t.TaskCode) > MaxTaskCodeLen {
		return fmt.Errorf("task code must not exceed %d characters", MaxTaskCodeLen)
	}
	if utf8.RuneCountInString(t.Assignee) > MaxAssigneeLen {
		return fmt.Errorf("assignee must not exceed %d characters", MaxAssigneeLen)
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("start date is required")
	}
	if t.EndDate.IsZero() {
		return fmt.Errorf("end date is required")
	}
	if t.StartDate.After(t.EndDate) {
		return fmt.Errorf("start date must not be after end date")
	}
	if t.Progress < 0 || t.Progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100")
	}
	if !ValidTaskStatuses[string(t.Status)] {
		return fmt.Errorf("invalid task status: %q", t.Status)
	}
	if t.ParentTaskID != nil && t.ID != "" && *t.ParentTaskID == t.ID {
		return fmt.Errorf("task cannot be its own parent")
	}
	return nil
}

// DisplayCode returns the task code, or a truncated ID for unkeyed tasks.
func (t *Task) DisplayCode() string {
	if t.TaskCode != "" {
		return t.TaskCode
	}
	if len(t.ID) >= 8 {
		return t.ID[:8]
	}
	return t.ID
}
