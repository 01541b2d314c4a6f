// Package aggregate folds per-function decompilation results into one document
// model: the functions in selection order, the closed set of type
// declarations, the deduplicated globals and prototypes, and the program's
// equates. The model is what every output format renders from.
package aggregate

import (
	"cslice/internal/closure"
	"cslice/internal/ctype"
	"cslice/internal/decomp"
	"cslice/internal/diag"
)

// Decompiled pairs one selected function with its decompilation outcome.
// Err is the per-function failure, if any; it never aborts aggregation.
type Decompiled struct {
	Info decomp.FunctionInfo
	Rec  *decomp.Record
	Err  error
}

// FuncEntry is one function slot of the model, in selection order. Failed
// entries keep their place so the output can carry a stub explaining the gap.
type FuncEntry struct {
	Info      decomp.FunctionInfo
	Signature string
	Body      string
	Failed    bool
	Reason    string
}

// Model is the aggregated document.
type Model struct {
	Program    string
	Types      *ctype.Interner
	Decls      *closure.DeclSet
	Globals    []decomp.GlobalRef
	Prototypes []decomp.Callee
	Equates    []decomp.Equate
	Functions  []FuncEntry
}

// Decompiled reports how many functions made it past the decompiler.
func (m *Model) Decompiled() int {
	n := 0
	for _, f := range m.Functions {
		if !f.Failed {
			n++
		}
	}
	return n
}

// Options tunes aggregation behavior.
type Options struct {
	// StrictConflicts turns symbol conflicts into errors instead of
	// first-seen-wins warnings.
	StrictConflicts bool
}

// Build aggregates results (already in selection order) into a Model.
func Build(program string, in *ctype.Interner, results []Decompiled, equates []decomp.Equate, opts Options, rep diag.Reporter) *Model {
	if rep == nil {
		rep = diag.NopReporter{}
	}

	selected := make(map[decomp.FuncID]bool, len(results))
	for _, r := range results {
		selected[r.Info.ID] = true
	}

	decls := closure.NewDeclSet()
	closer := closure.NewCloser(in, rep)
	symbols := closure.NewSymbolSet(opts.StrictConflicts, rep)

	m := &Model{
		Program: program,
		Types:   in,
		Decls:   decls,
		Equates: equates,
	}
	for _, r := range results {
		if r.Err != nil {
			m.Functions = append(m.Functions, FuncEntry{
				Info:   r.Info,
				Failed: true,
				Reason: r.Err.Error(),
			})
			continue
		}
		rec := r.Rec
		closer.Close(decls, rec.TypeRefs...)
		for _, g := range rec.Globals {
			closer.Close(decls, g.Type)
			symbols.AddGlobal(g)
		}
		for _, c := range rec.Callees {
			closer.Close(decls, c.Type)
			symbols.AddCallee(c, selected)
		}
		m.Functions = append(m.Functions, FuncEntry{
			Info:      r.Info,
			Signature: rec.Signature,
			Body:      rec.Body,
		})
	}

	m.Globals = symbols.Globals()
	m.Prototypes = symbols.Callees()
	return m
}
