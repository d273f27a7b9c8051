package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskport/internal/domain"
)

// FormatImportJob renders a run summary followed by its row errors.
func FormatImportJob(job *domain.ImportJob) string {
	s := job.Summary
	lines := []string{
		fmt.Sprintf("Job       %s", job.ID),
		fmt.Sprintf("Source    %s", job.SourceType),
		fmt.Sprintf("Status    %s", JobStatusPill(job.Status)),
		fmt.Sprintf("Executed  %s", job.ExecutedAt.Format("2006-01-02 15:04:05Z07:00")),
		"",
		fmt.Sprintf("Rows      %d total, %d ok, %d failed", s.TotalRows, s.SuccessfulRows, s.FailedRows),
		fmt.Sprintf("Tasks     %d created, %d updated", s.TasksCreated, s.TasksUpdated),
		fmt.Sprintf("Edges     %d created", s.DependenciesCreated),
	}
	if job.ErrorReportPath != "" {
		lines = append(lines, fmt.Sprintf("Report    %s", job.ErrorReportPath))
	}

	out := RenderBox("Import", strings.Join(lines, "\n"))
	if job.HasErrors() {
		out += "\n" + FormatRowErrors(job.Errors)
	}
	return out
}

// FormatRowErrors renders row errors with the report's column order.
func FormatRowErrors(errs []domain.RowError) string {
	headers := []string{"LINE", "FIELD", "VALUE", "CODE", "MESSAGE"}
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, []string{
			strconv.Itoa(e.LineNumber),
			e.Field,
			OrDash(e.Value),
			render(StyleRed, string(e.Code)),
			e.Message,
		})
	}
	return Header(fmt.Sprintf("%d error(s)", len(errs))) + "\n" + RenderTable(headers, rows)
}

// FormatJobList renders the audit log of a project, newest first.
func FormatJobList(jobs []*domain.ImportJob) string {
	headers := []string{"JOB", "EXECUTED", "SOURCE", "STATUS", "ROWS", "ERRORS"}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			TruncID(j.ID),
			j.ExecutedAt.Format("2006-01-02 15:04"),
			string(j.SourceType),
			JobStatusPill(j.Status),
			strconv.Itoa(j.Summary.TotalRows),
			strconv.Itoa(len(j.Errors)),
		})
	}
	return RenderBox("Import jobs", RenderTable(headers, rows))
}
