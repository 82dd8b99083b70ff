package log

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// warningBadge styles the [WARNING] prefix of user-facing warnings.
// User warnings go to stderr and must be visually distinct from both
// structured log lines and scraped item output.
var warningBadge = lipgloss.NewStyle().
	Background(lipgloss.Color("#F59E0B")).
	Foreground(lipgloss.Color("#000000")).
	Bold(true)

var warningOut io.Writer = os.Stderr

// SetWarningOutput redirects user warning banners to w and returns a
// function restoring the previous destination. Tests use it to capture
// the warnings a command emits.
func SetWarningOutput(w io.Writer) (restore func()) {
	prev := warningOut
	warningOut = w
	return func() { warningOut = prev }
}

// UserWarning prints a user-facing warning banner to stderr.
func UserWarning(message string) {
	fmt.Fprintf(warningOut, "%s %s\n", warningBadge.Render(" [WARNING] "), message)
}
