package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatRecords(r))
	w.WriteString(f.formatFooter(r))
	return nil
}

// formatHeader builds the header box with run metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	sourceLabel := LabelStyle.Render("Source:")
	sourceValue := ValueStyle.Render(strings.Join(r.Sources, ", "))
	lines = append(lines, fmt.Sprintf("%s %s", sourceLabel, sourceValue))

	modeLabel := LabelStyle.Render("Mode:")
	modeValue := ValueStyle.Render("apply")
	if r.Preview {
		modeValue = WarningStyle.Render("preview (no files touched)")
	}
	lines = append(lines, fmt.Sprintf("%s %s", modeLabel, modeValue))

	if r.Interrupted {
		lines = append(lines, WarningStyle.Bold(true).Render("Run interrupted by user"))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatRecords builds the per-file table.
func (f *PrettyFormatter) formatRecords(r *Result) string {
	if len(r.Records) == 0 {
		return MutedStyle.Render("  No files found\n")
	}

	var sb strings.Builder

	maxStatusWidth := len("organized")
	for _, rec := range r.Records {
		if len(rec.Status) > maxStatusWidth {
			maxStatusWidth = len(rec.Status)
		}
	}

	for _, rec := range r.Records {
		status := statusStyle(rec.Status).Render(padRight(rec.Status, maxStatusWidth))
		line := fmt.Sprintf("  %s  %s", status, PathStyle.Render(rec.Source))
		if rec.Destination != "" {
			line += MutedStyle.Render(" -> ") + PathStyle.Render(rec.Destination)
		}
		if rec.Conflict != "" && rec.Conflict != "none" {
			line += "  " + WarningStyle.Render("["+rec.Conflict+"]")
		}
		sb.WriteString(line)
		sb.WriteString("\n")

		for _, warning := range rec.Warnings {
			sb.WriteString("  " + WarningStyle.Render("warning: "+warning) + "\n")
		}
		if rec.Error != "" {
			sb.WriteString("  " + ErrorStyle.Render("error: "+rec.Error) + "\n")
		}
	}

	return sb.String()
}

// formatFooter builds the footer box with summary information.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	filesLabel := LabelStyle.Render("Files:")
	filesValue := ValueStyle.Render(fmt.Sprintf("%d", r.Stats.FilesSeen))
	parts = append(parts, fmt.Sprintf("%s %s", filesLabel, filesValue))

	organizedLabel := LabelStyle.Render("Organized:")
	organizedValue := SuccessStyle.Render(fmt.Sprintf("%d", r.Stats.Organized))
	parts = append(parts, fmt.Sprintf("%s %s", organizedLabel, organizedValue))

	if r.Stats.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Skipped:"), MutedStyle.Render(fmt.Sprintf("%d", r.Stats.Skipped))))
	}
	if r.Stats.Unmatched > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Unmatched:"), WarningStyle.Render(fmt.Sprintf("%d", r.Stats.Unmatched))))
	}
	if r.Stats.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Failed:"), ErrorStyle.Render(fmt.Sprintf("%d", r.Stats.Failed))))
	}

	totalLabel := LabelStyle.Render("Total:")
	totalValue := ValueStyle.Render(humanize.IBytes(uint64(r.TotalSize())))
	parts = append(parts, fmt.Sprintf("%s %s", totalLabel, totalValue))

	if r.Stats.Duration > 0 {
		parts = append(parts, fmt.Sprintf("%s %s",
			LabelStyle.Render("Duration:"), MutedStyle.Render(r.Stats.Duration.String())))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

// padRight pads a string with spaces on the right to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
