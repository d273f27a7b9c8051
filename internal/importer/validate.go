package importer

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/alexanderramin/taskport/internal/graph"
)

const (
	msgNameRequired     = "Task name is required"
	msgNameTooLong      = "Task name must not exceed 255 characters"
	msgStartRequired    = "Start date is required"
	msgEndRequired      = "End date is required"
	msgDateFormat       = "Date must be in format yyyy-MM-dd, yyyy/MM/dd, MM/dd/yyyy, or dd/MM/yyyy"
	msgDateRange        = "Start date must not be after end date"
	msgProgressFormat   = "Progress must be a valid number"
	msgProgressRange    = "Progress must be between 0 and 100"
	msgStatusValue      = "Status must be one of: planned, in_progress, done, blocked, on_hold"
	msgMilestoneFormat  = "is_milestone must be true/false or 1/0"
	msgCodeTooLong      = "Task code must not exceed 64 characters"
	msgAssigneeTooLong  = "Assignee must not exceed 120 characters"
	msgParentMissing    = "Parent task code not found in file or database"
	msgPredMissing      = "Predecessor task code not found in file or database"
	msgDependencyType   = "Dependency type must be one of: FS, SS, FF, SF"
	msgCircularTemplate = "Adding dependency from %s to %s would create a circular reference"
)

// Snapshot is the persisted state of a project that rows are checked
// against. Dependencies is optional; when set its edges join the cycle graph.
type Snapshot struct {
	Tasks        []*domain.Task
	Dependencies []domain.Dependency
}

// Validate checks every row and returns all problems found, ordered by row
// and then by check. An empty result means the rows can be committed.
func Validate(rows []Row, snap Snapshot) []domain.RowError {
	known := make(map[string]bool, len(rows)+len(snap.Tasks))
	for _, r := range rows {
		if r.TaskCode != "" {
			known[r.TaskCode] = true
		}
	}
	for _, t := range snap.Tasks {
		if t.TaskCode != "" {
			known[t.TaskCode] = true
		}
	}

	var errs []domain.RowError
	for _, r := range rows {
		errs = append(errs, validateRow(r, known)...)
	}
	return append(errs, validateCycles(rows, snap)...)
}

func validateRow(r Row, known map[string]bool) []domain.RowError {
	var errs []domain.RowError
	add := func(field, value string, code domain.ErrorCode, msg string) {
		errs = append(errs, domain.RowError{
			LineNumber: r.LineNumber, Field: field, Value: value, Code: code, Message: msg,
		})
	}

	if r.Name == "" {
		add(ColName, r.Name, domain.CodeRequiredField, msgNameRequired)
	} else if utf8.RuneCountInString(r.Name) > domain.MaxTaskNameLen {
		add(ColName, r.Name, domain.CodeFieldTooLong, msgNameTooLong)
	}

	if r.StartDate == "" {
		add(ColStartDate, r.StartDate, domain.CodeRequiredField, msgStartRequired)
	}
	if r.EndDate == "" {
		add(ColEndDate, r.EndDate, domain.CodeRequiredField, msgEndRequired)
	}
	start, startOK := checkDate(r.StartDate)
	if !startOK {
		add(ColStartDate, r.StartDate, domain.CodeInvalidFormat, msgDateFormat)
	}
	end, endOK := checkDate(r.EndDate)
	if !endOK {
		add(ColEndDate, r.EndDate, domain.CodeInvalidFormat, msgDateFormat)
	}
	if r.StartDate != "" && r.EndDate != "" && startOK && endOK && start.After(end) {
		add(ColStartDate, r.StartDate, domain.CodeInvalidDateRange, msgDateRange)
	}

	if r.Progress != "" {
		p, err := strconv.Atoi(r.Progress)
		switch {
		case err != nil:
			add(ColProgress, r.Progress, domain.CodeInvalidFormat, msgProgressFormat)
		case p < 0 || p > 100:
			add(ColProgress, r.Progress, domain.CodeInvalidRange, msgProgressRange)
		}
	}

	if r.Status != "" {
		if _, ok := domain.ParseTaskStatus(r.Status); !ok {
			add(ColStatus, r.Status, domain.CodeInvalidValue, msgStatusValue)
		}
	}

	if r.IsMilestone != "" {
		if _, ok := domain.ParseBoolToken(r.IsMilestone); !ok {
			add(ColIsMilestone, r.IsMilestone, domain.CodeInvalidFormat, msgMilestoneFormat)
		}
	}

	if utf8.RuneCountInString(r.TaskCode) > domain.MaxTaskCodeLen {
		add(ColTaskCode, r.TaskCode, domain.CodeFieldTooLong, msgCodeTooLong)
	}
	if utf8.RuneCountInString(r.Assignee) > domain.MaxAssigneeLen {
		add(ColAssignee, r.Assignee, domain.CodeFieldTooLong, msgAssigneeTooLong)
	}

	if r.ParentTaskCode != "" && !known[r.ParentTaskCode] {
		add(ColParentTaskCode, r.ParentTaskCode, domain.CodeReferenceNotFound, msgParentMissing)
	}
	for _, p := range r.Predecessors() {
		if !known[p] {
			add(ColPredecessorTaskCodes, p, domain.CodeReferenceNotFound, msgPredMissing)
		}
	}

	if r.DependencyType != "" {
		if _, ok := domain.ParseDependencyType(r.DependencyType); !ok {
			add(ColDependencyType, r.DependencyType, domain.CodeInvalidValue, msgDependencyType)
		}
	}
	return errs
}

// checkDate parses s, treating a blank value as fine so the required-field
// check alone reports it.
func checkDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	return ParseDate(s)
}

// validateCycles builds the combined graph of declared and persisted edges
// and flags every declared edge that closes a loop. Nodes are task ids so
// stored edges through tasks without a code still count; codes first seen
// in the file get a placeholder node.
func validateCycles(rows []Row, snap Snapshot) []domain.RowError {
	idByCode := make(map[string]string, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if t.TaskCode != "" {
			idByCode[t.TaskCode] = t.ID
		}
	}
	node := func(code string) string {
		if id, ok := idByCode[code]; ok {
			return id
		}
		return "new:" + code
	}

	g := graph.New()
	for _, d := range snap.Dependencies {
		_ = g.AddEdge(d.PredecessorTaskID, d.TaskID)
	}
	for _, r := range rows {
		if r.TaskCode == "" {
			continue
		}
		for _, p := range r.Predecessors() {
			_ = g.AddEdge(node(p), node(r.TaskCode))
		}
	}

	var errs []domain.RowError
	for _, r := range rows {
		if r.TaskCode == "" {
			continue
		}
		for _, p := range r.Predecessors() {
			cyclic, err := g.WouldCreateCycle(node(r.TaskCode), node(p))
			if err != nil || !cyclic {
				continue
			}
			errs = append(errs, domain.RowError{
				LineNumber: r.LineNumber,
				Field:      ColPredecessorTaskCodes,
				Value:      p,
				Code:       domain.CodeCircularDependency,
				Message:    fmt.Sprintf(msgCircularTemplate, r.TaskCode, p),
			})
		}
	}
	return errs
}
