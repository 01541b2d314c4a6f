package closure

import (
	"fmt"

	"cslice/internal/ctype"
	"cslice/internal/decomp"
	"cslice/internal/diag"
)

// SymbolSet accumulates the external symbols the selected bodies reference.
// Duplicates collapse; on a genuine conflict (same name, different shape) the
// first-seen entry wins and the conflict is reported. Strict mode escalates
// those reports to errors so the run fails instead of emitting a guess.
type SymbolSet struct {
	rep    diag.Reporter
	strict bool

	globals     map[string]decomp.GlobalRef
	globalOrder []string

	protos     map[string]decomp.Callee
	protoOrder []string
}

func NewSymbolSet(strict bool, rep diag.Reporter) *SymbolSet {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &SymbolSet{
		rep:     rep,
		strict:  strict,
		globals: make(map[string]decomp.GlobalRef),
		protos:  make(map[string]decomp.Callee),
	}
}

func (s *SymbolSet) conflictSev() diag.Severity {
	if s.strict {
		return diag.SevError
	}
	return diag.SevWarning
}

// AddGlobal records a referenced global. Re-adding the same name with the same
// type is a no-op; a different type reports a conflict and keeps the first.
func (s *SymbolSet) AddGlobal(g decomp.GlobalRef) {
	prev, ok := s.globals[g.Name]
	if !ok {
		s.globals[g.Name] = g
		s.globalOrder = append(s.globalOrder, g.Name)
		return
	}
	if prev.Type != g.Type || prev.IsFunction != g.IsFunction {
		s.rep.Report(diag.ClosGlobalConflict, s.conflictSev(), g.Name,
			"global referenced with conflicting types; keeping the first one seen")
	}
}

// AddCallee records a called function that needs a declaration. Callees whose
// ID is in selected are skipped: their implementation is part of the output,
// so a separate prototype would be redundant.
func (s *SymbolSet) AddCallee(c decomp.Callee, selected map[decomp.FuncID]bool) {
	if selected[c.ID] {
		return
	}
	if c.Prototype == "" && c.Type == ctype.NoTypeID {
		diag.Warn(s.rep, diag.ClosMissingSignature, c.Name,
			fmt.Sprintf("callee %s has no recovered signature; no declaration emitted", c.ID.Addr()))
		return
	}
	prev, ok := s.protos[c.Name]
	if !ok {
		s.protos[c.Name] = c
		s.protoOrder = append(s.protoOrder, c.Name)
		return
	}
	if prev.Prototype != c.Prototype {
		s.rep.Report(diag.ClosProtoConflict, s.conflictSev(), c.Name,
			"callee referenced with conflicting prototypes; keeping the first one seen")
	}
}

// Globals returns the referenced globals in first-seen order.
func (s *SymbolSet) Globals() []decomp.GlobalRef {
	out := make([]decomp.GlobalRef, 0, len(s.globalOrder))
	for _, name := range s.globalOrder {
		out = append(out, s.globals[name])
	}
	return out
}

// Callees returns the functions needing a prototype in first-seen order.
func (s *SymbolSet) Callees() []decomp.Callee {
	out := make([]decomp.Callee, 0, len(s.protoOrder))
	for _, name := range s.protoOrder {
		out = append(out, s.protos[name])
	}
	return out
}
