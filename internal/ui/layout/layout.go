package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/birdquiz/birdquiz/internal/ui/theme"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 60

// KeyHint represents an input hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// RenderHeader renders the quiz header: app name, position and elapsed time.
func RenderHeader(title, elapsed string, width int) string {
	left := theme.Title.Render("BirdQuiz")
	center := theme.Body.Render(title)
	right := theme.Warning.Render(elapsed)

	innerWidth := max(width-4, 0)
	leftLen := lipgloss.Width(left)
	centerLen := lipgloss.Width(center)
	rightLen := lipgloss.Width(right)

	leftGap := max((innerWidth-centerLen)/2-leftLen, 1)
	rightGap := max(innerWidth-leftLen-leftGap-centerLen-rightLen, 1)

	content := left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
	return theme.Card.Width(width).Render(content)
}

// RenderFooter renders input hints on one line.
func RenderFooter(hints []KeyHint) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, theme.Value.Render(h.Key)+" "+theme.Hint.Render(h.Description))
	}
	return "  " + strings.Join(parts, "   ")
}

// RenderRow renders one "label  value" line of a summary table.
func RenderRow(label string, value any) string {
	return theme.Label.Render(label) + theme.Value.Render(fmt.Sprint(value))
}
