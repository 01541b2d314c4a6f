package diag

import (
	"fmt"
	"strings"
)

// FormatDiagnostics renders diagnostics into a stable single-line-per-entry
// representation suitable for golden comparisons and short CLI output. The
// input order is preserved; callers wanting deterministic output sort the Bag
// first.
func FormatDiagnostics(diags []Diagnostic) string {
	var b strings.Builder
	for i, d := range diags {
		b.WriteString(strings.ToLower(d.Severity.String()))
		b.WriteByte(' ')
		b.WriteString(Detail(d))
		if i < len(diags)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Detail renders everything after the severity label: code, subject, message
// and indented notes. Split out so a caller can colorize the label without
// reimplementing the rest of the line.
func Detail(d Diagnostic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", d.Code.String(), d.Subject, sanitizeMessage(d.Message))
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s", sanitizeMessage(note))
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
