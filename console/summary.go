package console

import (
	"fmt"

	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/writer"
)

// PrintSummary writes the outcome of a graph run as a tree, one line per
// unit, followed by the overall status.
func PrintSummary(w writer.Writer, title string, s *execution.Summary) {
	w.WriteLine("")
	w.WriteLine(fmt.Sprintf("📋 %s (%d)", title, len(s.Results)))
	for i, r := range s.Results {
		prefix := "├──"
		if i == len(s.Results)-1 {
			prefix = "└──"
		}
		line := fmt.Sprintf("   %s %s %s (%s", prefix, statusIcon(r.Status), r.ID, r.Status)
		if d := r.Duration(); d > 0 {
			line += ", " + FormatDuration(d)
		}
		line += ")"
		if r.Err != nil && r.Status == execution.StatusFailure {
			line += ": " + r.Err.Error()
		}
		w.WriteLine(line)
	}
	if len(s.Results) == 0 {
		w.WriteLine("   └── nothing ran")
	}
	w.WriteLine("")

	switch {
	case s.Succeeded():
		w.WriteLine(fmt.Sprintf("%s %s succeeded", statusIcon(s.Status), title))
	case s.Err != nil:
		w.WriteLine(fmt.Sprintf("%s %s %s: %v", statusIcon(s.Status), title, s.Status, s.Err))
	default:
		w.WriteLine(fmt.Sprintf("%s %s %s", statusIcon(s.Status), title, s.Status))
	}
}

func statusIcon(status execution.Status) string {
	switch status {
	case execution.StatusSuccess:
		return "✅"
	case execution.StatusFailure:
		return "❌"
	case execution.StatusCancelled:
		return "⛔"
	case execution.StatusSkipped:
		return "⏭️"
	default:
		return "❓"
	}
}
