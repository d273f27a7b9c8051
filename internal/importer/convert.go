package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskport/internal/domain"
)

// DateLayouts are the accepted date formats, tried in order.
var DateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", "02/01/2006"}

// ParseDate tries each of DateLayouts and returns the first match.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TaskFields is a validated row converted to typed values. Pointer fields
// are nil when the row left the column blank.
type TaskFields struct {
	LineNumber     int
	TaskCode       string
	Name           string
	Assignee       string
	Notes          string
	StartDate      time.Time
	EndDate        time.Time
	Progress       *int
	Status         *domain.TaskStatus
	IsMilestone    *bool
	ParentTaskCode string
	Predecessors   []string
	DependencyType domain.DependencyType
}

// Convert types a row. It fails only on values a validated row cannot carry.
func Convert(row Row) (TaskFields, error) {
	tf := TaskFields{
		LineNumber:     row.LineNumber,
		TaskCode:       row.TaskCode,
		Name:           row.Name,
		Assignee:       row.Assignee,
		Notes:          row.Notes,
		ParentTaskCode: row.ParentTaskCode,
		Predecessors:   row.Predecessors(),
	}

	var ok bool
	if tf.StartDate, ok = ParseDate(row.StartDate); !ok {
		return tf, fmt.Errorf("start_date: invalid date %q", row.StartDate)
	}
	if tf.EndDate, ok = ParseDate(row.EndDate); !ok {
		return tf, fmt.Errorf("end_date: invalid date %q", row.EndDate)
	}
	if row.Progress != "" {
		p, err := strconv.Atoi(row.Progress)
		if err != nil {
			return tf, fmt.Errorf("progress: %w", err)
		}
		tf.Progress = &p
	}
	if row.Status != "" {
		s, ok := domain.ParseTaskStatus(row.Status)
		if !ok {
			return tf, fmt.Errorf("status: invalid value %q", row.Status)
		}
		tf.Status = &s
	}
	if row.IsMilestone != "" {
		b, ok := domain.ParseBoolToken(row.IsMilestone)
		if !ok {
			return tf, fmt.Errorf("is_milestone: invalid value %q", row.IsMilestone)
		}
		tf.IsMilestone = &b
	}
	dt, ok := domain.ParseDependencyType(row.DependencyType)
	if !ok {
		return tf, fmt.Errorf("dependency_type: invalid value %q", strings.ToUpper(row.DependencyType))
	}
	tf.DependencyType = dt
	return tf, nil
}
