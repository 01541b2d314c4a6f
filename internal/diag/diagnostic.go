package diag

// Diagnostic is one finding produced by an export stage. Subject names the
// entity it is about (a function, type or global symbol); it doubles as part
// of the deduplication key.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Subject  string
	Message  string
	Notes    []string
}
