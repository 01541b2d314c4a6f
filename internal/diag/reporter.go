package diag

// Reporter is the minimal contract stages use to emit diagnostics.
// Implementations: BagReporter (collects into a Bag), NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, subject, msg string, notes ...string)
}

// BagReporter writes every report into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, subject, msg string, notes ...string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Subject: subject, Message: msg, Notes: notes,
	})
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, string, string, ...string) {}

// Warn is a shortcut for SevWarning reports.
func Warn(r Reporter, code Code, subject, msg string, notes ...string) {
	if r == nil {
		return
	}
	r.Report(code, SevWarning, subject, msg, notes...)
}

// Error is a shortcut for SevError reports.
func Error(r Reporter, code Code, subject, msg string, notes ...string) {
	if r == nil {
		return
	}
	r.Report(code, SevError, subject, msg, notes...)
}
