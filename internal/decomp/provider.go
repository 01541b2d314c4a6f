package decomp

import (
	"context"
	"fmt"

	"cslice/internal/ctype"
)

// Provider supplies decompilation results for one program. Implementations:
// Snapshot (reads a program dump from disk) and Static (in-memory, used by
// tests and embedders that already hold records).
type Provider interface {
	ProgramName() string
	// Types returns the shared type graph all records reference into.
	Types() *ctype.Interner
	// ListFunctions returns the program's function universe in discovery order.
	ListFunctions(ctx context.Context) ([]FunctionInfo, error)
	// Decompile returns the record for one function. A *DecompileError means
	// the decompiler failed on this function only.
	Decompile(ctx context.Context, id FuncID) (*Record, error)
	// Equates returns named constants recovered from the program.
	Equates(ctx context.Context) ([]Equate, error)
}

// Static is an in-memory Provider.
type Static struct {
	Name       string
	Interner   *ctype.Interner
	Funcs      []FunctionInfo
	Records    map[FuncID]*Record
	Failures   map[FuncID]string
	EquateList []Equate
}

func (s *Static) ProgramName() string { return s.Name }

func (s *Static) Types() *ctype.Interner { return s.Interner }

func (s *Static) ListFunctions(ctx context.Context) ([]FunctionInfo, error) {
	return s.Funcs, nil
}

func (s *Static) Decompile(ctx context.Context, id FuncID) (*Record, error) {
	if reason, failed := s.Failures[id]; failed {
		return nil, &DecompileError{Func: s.funcInfo(id), Reason: reason}
	}
	rec, ok := s.Records[id]
	if !ok {
		return nil, fmt.Errorf("no record for function %s", id.Addr())
	}
	return rec, nil
}

func (s *Static) Equates(ctx context.Context) ([]Equate, error) {
	return s.EquateList, nil
}

func (s *Static) funcInfo(id FuncID) FunctionInfo {
	for _, f := range s.Funcs {
		if f.ID == id {
			return f
		}
	}
	return FunctionInfo{ID: id, Name: id.Addr()}
}
