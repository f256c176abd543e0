package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	passedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderSummary renders the per-case results and totals for the console.
func RenderSummary(index *Index) string {
	header := titleStyle.Render(fmt.Sprintf("%s on %s", index.Suite, index.Platform))
	run := dimStyle.Render("run " + index.RunID)

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Left, header, "  ", run), ""}
	if index.Error != nil {
		rows = append(rows, failedStyle.Render(index.Error.Type+" error: "+index.Error.Message), "")
	}
	for _, c := range index.Cases {
		rows = append(rows, renderCase(c))
	}

	s := index.Summary
	totals := fmt.Sprintf("%d cases: %s, %s, %s",
		s.Total,
		passedStyle.Render(fmt.Sprintf("%d passed", s.Passed)),
		failedStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
		skippedStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)),
	)
	if index.EndTime != nil {
		totals += dimStyle.Render(" in " + index.EndTime.Sub(index.StartTime).Round(time.Millisecond).String())
	}
	rows = append(rows, "", totals)

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderCase(c CaseEntry) string {
	var b strings.Builder
	switch c.Status {
	case StatusPassed:
		b.WriteString(passedStyle.Render("✓ " + c.Name))
	case StatusFailed:
		b.WriteString(failedStyle.Render("✗ " + c.Name))
	case StatusSkipped:
		b.WriteString(skippedStyle.Render("- " + c.Name))
	default:
		b.WriteString(dimStyle.Render("· " + c.Name))
	}
	if c.Duration != nil {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%dms)", *c.Duration)))
	}
	if c.Error != nil {
		b.WriteString("\n    ")
		b.WriteString(dimStyle.Render(c.Error.Message))
	}
	if c.Artifacts.Screenshot != "" {
		b.WriteString("\n    ")
		b.WriteString(dimStyle.Render("screenshot: " + c.Artifacts.Screenshot))
	}
	return b.String()
}

// PrintSummary writes RenderSummary(index) followed by a newline.
func PrintSummary(w io.Writer, index *Index) {
	fmt.Fprintln(w, RenderSummary(index))
}
