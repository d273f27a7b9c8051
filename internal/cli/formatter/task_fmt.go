package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskport/internal/domain"
)

// FormatTaskList renders a project's tasks. preds maps a task id to the
// display codes of its predecessors.
func FormatTaskList(project *domain.Project, tasks []*domain.Task, preds map[string][]string) string {
	codeByID := make(map[string]string, len(tasks))
	for _, t := range tasks {
		codeByID[t.ID] = t.DisplayCode()
	}

	headers := []string{"CODE", "NAME", "START", "END", "PROGRESS", "STATUS", "ASSIGNEE", "PARENT", "AFTER"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		name := t.Name
		if t.IsMilestone {
			name = "◆ " + name
		}
		parent := ""
		if t.ParentTaskID != nil {
			parent = codeByID[*t.ParentTaskID]
		}
		rows = append(rows, []string{
			t.DisplayCode(),
			Bold(name),
			Date(t.StartDate),
			Date(t.EndDate),
			strconv.Itoa(t.Progress) + "%",
			TaskStatusPill(t.Status),
			OrDash(t.Assignee),
			OrDash(parent),
			OrDash(strings.Join(preds[t.ID], ", ")),
		})
	}

	return RenderBox("Tasks "+project.DisplayID(), RenderTable(headers, rows))
}

// FormatDependencyList renders the predecessors of one task.
func FormatDependencyList(task *domain.Task, deps []domain.Dependency, codeByID map[string]string) string {
	if len(deps) == 0 {
		return fmt.Sprintf("%s has no predecessors.", task.DisplayCode())
	}
	headers := []string{"PREDECESSOR", "TYPE", "CREATED"}
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		code := codeByID[d.PredecessorTaskID]
		if code == "" {
			code = TruncID(d.PredecessorTaskID)
		}
		rows = append(rows, []string{code, string(d.Type), Date(d.CreatedAt)})
	}
	return Header("Predecessors of "+task.DisplayCode()) + "\n" + RenderTable(headers, rows)
}

// FormatDependentList renders the tasks that wait on task.
func FormatDependentList(task *domain.Task, deps []domain.Dependency, codeByID map[string]string) string {
	if len(deps) == 0 {
		return fmt.Sprintf("No tasks wait on %s.", task.DisplayCode())
	}
	headers := []string{"SUCCESSOR", "TYPE", "CREATED"}
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		code := codeByID[d.TaskID]
		if code == "" {
			code = TruncID(d.TaskID)
		}
		rows = append(rows, []string{code, string(d.Type), Date(d.CreatedAt)})
	}
	return Header("Waiting on "+task.DisplayCode()) + "\n" + RenderTable(headers, rows)
}

// FormatCycleReport lists the tasks found on dependency cycles.
func FormatCycleReport(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return render(StyleGreen, "No dependency cycles found.")
	}
	var b strings.Builder
	b.WriteString(render(StyleRed, fmt.Sprintf("%d task(s) sit on a dependency cycle:", len(tasks))))
	b.WriteString("\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "  %s  %s\n", t.DisplayCode(), t.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}
