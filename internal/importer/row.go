package importer

import "strings"

// Recognized column headers. Matching is case-insensitive and order-independent.
const (
	ColTaskCode             = "task_code"
	ColName                 = "name"
	ColAssignee             = "assignee"
	ColStartDate            = "start_date"
	ColEndDate              = "end_date"
	ColProgress             = "progress"
	ColStatus               = "status"
	ColParentTaskCode       = "parent_task_code"
	ColIsMilestone          = "is_milestone"
	ColPredecessorTaskCodes = "predecessor_task_codes"
	ColDependencyType       = "dependency_type"
	ColNotes                = "notes"
)

// Columns lists the recognized headers in canonical order.
var Columns = []string{
	ColTaskCode, ColName, ColAssignee, ColStartDate, ColEndDate, ColProgress,
	ColStatus, ColParentTaskCode, ColIsMilestone, ColPredecessorTaskCodes,
	ColDependencyType, ColNotes,
}

// Row is one parsed input record. Every value is trimmed and "" means the
// cell was absent or blank. LineNumber counts the header as line 1.
type Row struct {
	LineNumber           int
	TaskCode             string
	Name                 string
	Assignee             string
	StartDate            string
	EndDate              string
	Progress             string
	Status               string
	ParentTaskCode       string
	IsMilestone          string
	PredecessorTaskCodes string
	DependencyType       string
	Notes                string
}

func (r *Row) field(col string) *string {
	switch col {
	case ColTaskCode:
		return &r.TaskCode
	case ColName:
		return &r.Name
	case ColAssignee:
		return &r.Assignee
	case ColStartDate:
		return &r.StartDate
	case ColEndDate:
		return &r.EndDate
	case ColProgress:
		return &r.Progress
	case ColStatus:
		return &r.Status
	case ColParentTaskCode:
		return &r.ParentTaskCode
	case ColIsMilestone:
		return &r.IsMilestone
	case ColPredecessorTaskCodes:
		return &r.PredecessorTaskCodes
	case ColDependencyType:
		return &r.DependencyType
	case ColNotes:
		return &r.Notes
	}
	return nil
}

// Predecessors splits PredecessorTaskCodes on commas, trimming entries and
// dropping blanks.
func (r Row) Predecessors() []string {
	if r.PredecessorTaskCodes == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(r.PredecessorTaskCodes, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// header maps lowercased recognized column names to their cell index.
type header map[string]int

func newHeader(cells []string) header {
	h := make(header)
	for i, c := range cells {
		name := strings.ToLower(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		if _, seen := h[name]; !seen {
			h[name] = i
		}
	}
	return h
}

// build assembles a Row from cells. ok is false when every recognized
// column is blank, which means the row is skipped.
func (h header) build(line int, cell func(idx int) string) (row Row, ok bool) {
	row.LineNumber = line
	for _, col := range Columns {
		idx, present := h[col]
		if !present {
			continue
		}
		v := strings.TrimSpace(cell(idx))
		if v == "" {
			continue
		}
		*row.field(col) = v
		ok = true
	}
	return row, ok
}
