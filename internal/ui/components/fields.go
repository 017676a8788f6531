package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizmind/internal/ui/theme"
)

// Field is one labelled value in a report.
type Field struct {
	Label string
	Value string
}

// Fields renders label/value rows with the labels padded to a common
// width.
func Fields(fields ...Field) string {
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f.Label))
	}
	rows := make([]string, len(fields))
	for i, f := range fields {
		rows[i] = theme.Label.Width(width+2).Render(f.Label) + theme.Body.Render(f.Value)
	}
	return strings.Join(rows, "\n")
}

// Section renders a titled block.
func Section(title, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left, theme.Section.Render(title), body)
}
