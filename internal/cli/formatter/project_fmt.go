package formatter

import "github.com/alexanderramin/taskport/internal/domain"

// FormatProjectList renders projects inside a titled box.
func FormatProjectList(projects []*domain.Project) string {
	headers := []string{"CODE", "NAME", "STATUS", "START", "END"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.DisplayID(),
			Bold(p.Name),
			ProjectStatusPill(p.Status),
			Date(p.StartDate),
			DatePtr(p.EndDate),
		})
	}
	return RenderBox("Projects", RenderTable(headers, rows))
}
