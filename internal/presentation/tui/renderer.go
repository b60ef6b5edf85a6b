package tui

import (
	"github.com/charmbracelet/glamour"
)

// DefaultReportWidth is the wrap width of rendered run reports.
const DefaultReportWidth = 100

// NewRenderer returns a function that renders a markdown run report with
// glamour, wrapped at width columns. The style follows the terminal
// background. If the renderer cannot be built, the markdown is returned
// unchanged along with the error.
func NewRenderer(width int) func(string) (string, error) {
	if width <= 0 {
		width = DefaultReportWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}
