package formatter

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const dateLayout = "2006-01-02"

// RenderBox wraps content in a rounded-border box with an optional title.
// Plain mode drops the border and keeps the title as a header line.
func RenderBox(title, content string) string {
	if Plain() {
		if title == "" {
			return content
		}
		return Header(title) + "\n" + content
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)
	if title != "" {
		content = StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content
	}
	return box.Render(content)
}

// Header renders an upper-cased section title with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	rule := "─"
	if Plain() {
		rule = "-"
	}
	return render(StyleHeader, upper) + "\n" + render(StyleDim, strings.Repeat(rule, len(upper)))
}

func Dim(text string) string  { return render(StyleDim, text) }
func Bold(text string) string { return render(StyleBold, text) }

// Date renders a calendar date, or a dimmed placeholder for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return Dim("--")
	}
	return t.Format(dateLayout)
}

// DatePtr is Date for optional dates.
func DatePtr(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return Date(*t)
}

// TruncID returns the first 8 characters of an ID.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

// OrDash returns s, or a dimmed dash when s is empty.
func OrDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return s
}
