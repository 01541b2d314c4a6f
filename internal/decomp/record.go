// Package decomp defines the boundary to the external decompiler: the
// per-function Decompilation Record and the Provider interface that supplies
// records, plus a snapshot-backed Provider reading program dumps produced by
// the decompiler side.
package decomp

import (
	"fmt"

	"cslice/internal/ctype"
)

// FuncID identifies a function by its entry address.
type FuncID uint64

// Addr renders the identifier the way it appears in artifacts: lowercase hex
// with a 0x prefix.
func (id FuncID) Addr() string {
	return fmt.Sprintf("0x%x", uint64(id))
}

// FunctionInfo describes one entry of the program's function universe.
type FunctionInfo struct {
	ID   FuncID
	Name string
	Tags []string
}

// GlobalRef is a global variable referenced by a decompiled body.
type GlobalRef struct {
	Name       string
	Type       ctype.TypeID
	Qualifiers string // storage/cv qualifiers as rendered by the decompiler
	// IsFunction marks symbols the decompiler classified as functions even
	// though they surfaced through the global map; these become prototypes,
	// not variable declarations.
	IsFunction bool
}

// Callee is a function called directly by a decompiled body. Thunks are
// already resolved to their target by the provider.
type Callee struct {
	ID        FuncID
	Name      string
	Prototype string       // rendered declaration, ";"-terminated
	Type      ctype.TypeID // signature node for type closure
	External  bool
}

// Record is the decompiler's structured output for one function.
// Immutable once produced.
type Record struct {
	Func      FunctionInfo
	Signature string
	Body      string
	// TypeRefs lists every type reference encountered while rendering, in
	// order, including types that appear only in cast expressions.
	TypeRefs []ctype.TypeID
	Globals  []GlobalRef
	Callees  []Callee
}

// Equate is a named constant recovered from the program.
type Equate struct {
	Name  string
	Value string // display form, emitted verbatim after #define
}

// DecompileError reports that the decompiler gave up on one function.
// It is a per-function condition, never fatal for the whole run.
type DecompileError struct {
	Func   FunctionInfo
	Reason string
}

func (e *DecompileError) Error() string {
	return fmt.Sprintf("decompile %s (%s): %s", e.Func.Name, e.Func.ID.Addr(), e.Reason)
}
