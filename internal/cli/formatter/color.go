package formatter

import (
	"sync/atomic"

	"github.com/alexanderramin/taskport/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

var plain atomic.Bool

// SetPlain switches every renderer to unstyled ASCII output, used when
// stdout is not a terminal.
func SetPlain(on bool) { plain.Store(on) }

// Plain reports whether unstyled output is active.
func Plain() bool { return plain.Load() }

func render(style lipgloss.Style, text string) string {
	if plain.Load() {
		return text
	}
	return style.Render(text)
}

// TaskStatusPill returns a colored indicator for a task status.
func TaskStatusPill(status domain.TaskStatus) string {
	switch status {
	case domain.TaskPlanned:
		return render(StyleBlue, "○ planned")
	case domain.TaskInProgress:
		return render(StyleGreen, "● in_progress")
	case domain.TaskDone:
		return render(StyleDim, "✔ done")
	case domain.TaskBlocked:
		return render(StyleRed, "■ blocked")
	case domain.TaskOnHold:
		return render(StyleYellow, "◌ on_hold")
	default:
		return render(StyleDim, string(status))
	}
}

// ProjectStatusPill returns a colored indicator for a project status.
func ProjectStatusPill(status domain.ProjectStatus) string {
	switch status {
	case domain.ProjectActive:
		return render(StyleGreen, "● active")
	case domain.ProjectOnHold:
		return render(StyleYellow, "○ on_hold")
	case domain.ProjectDone:
		return render(StyleDim, "✔ done")
	case domain.ProjectArchived:
		return render(StyleDim, "✖ archived")
	default:
		return render(StyleDim, string(status))
	}
}

// JobStatusPill colors an import job status by outcome.
func JobStatusPill(status domain.JobStatus) string {
	switch status {
	case domain.JobSuccess:
		return render(StyleGreen, string(status))
	case domain.JobPartial:
		return render(StyleYellow, string(status))
	case domain.JobFailed:
		return render(StyleRed, string(status))
	default:
		return render(StylePurple, string(status))
	}
}
