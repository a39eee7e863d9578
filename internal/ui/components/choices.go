package components

import (
	"fmt"
	"strings"

	"github.com/birdquiz/birdquiz/internal/ui/theme"
)

// Choices renders a question's numbered options. Before an answer is
// revealed every option is plain; afterwards the correct option is green
// and a wrong pick is red.
type Choices struct {
	Prompt   string
	Options  []string
	Revealed bool
	Correct  string
	Chosen   string
}

// View renders the option list.
func (c Choices) View() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(c.Prompt))
	b.WriteString("\n\n")

	for i, opt := range c.Options {
		line := fmt.Sprintf("  %d)  %s", i+1, opt)
		switch {
		case !c.Revealed:
			line = theme.Body.Render(line)
		case opt == c.Correct:
			line = theme.Correct.Render(line)
		case opt == c.Chosen:
			line = theme.Incorrect.Render(line)
		default:
			line = theme.Subtitle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
