package closure

import (
	"testing"

	"cslice/internal/ctype"
	"cslice/internal/decomp"
	"cslice/internal/diag"
)

func TestSymbolSetGlobalsFirstSeenWins(t *testing.T) {
	in := ctype.NewInterner()
	b := in.Builtins()
	bag := diag.NewBag(8)
	set := NewSymbolSet(false, diag.BagReporter{Bag: bag})

	set.AddGlobal(decomp.GlobalRef{Name: "g_state", Type: b.Int})
	set.AddGlobal(decomp.GlobalRef{Name: "g_state", Type: b.Int})
	set.AddGlobal(decomp.GlobalRef{Name: "g_state", Type: b.Char})

	globals := set.Globals()
	if len(globals) != 1 || globals[0].Type != b.Int {
		t.Fatalf("first-seen type must win, got %+v", globals)
	}
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Fatalf("conflict should warn, not error, bag: %v", bag.Items())
	}
	if bag.Len() != 1 {
		t.Fatalf("exact duplicate must not report, got %d diagnostics", bag.Len())
	}
}

func TestSymbolSetStrictConflictIsError(t *testing.T) {
	in := ctype.NewInterner()
	b := in.Builtins()
	bag := diag.NewBag(8)
	set := NewSymbolSet(true, diag.BagReporter{Bag: bag})

	set.AddGlobal(decomp.GlobalRef{Name: "g", Type: b.Int})
	set.AddGlobal(decomp.GlobalRef{Name: "g", Type: b.Double})
	if !bag.HasErrors() {
		t.Fatalf("strict mode must escalate conflicts to errors")
	}
}

func TestSymbolSetCalleesSkipSelected(t *testing.T) {
	set := NewSymbolSet(false, nil)
	selected := map[decomp.FuncID]bool{0x401200: true}

	set.AddCallee(decomp.Callee{ID: 0x401200, Name: "walk", Prototype: "int walk(void);"}, selected)
	set.AddCallee(decomp.Callee{ID: 0x409000, Name: "memcpy", Prototype: "void *memcpy(void *d, void *s, size_t n);", External: true}, selected)

	callees := set.Callees()
	if len(callees) != 1 || callees[0].Name != "memcpy" {
		t.Fatalf("selected callee must not get a prototype, got %+v", callees)
	}
}

func TestSymbolSetProtoConflict(t *testing.T) {
	bag := diag.NewBag(8)
	set := NewSymbolSet(false, diag.BagReporter{Bag: bag})

	set.AddCallee(decomp.Callee{ID: 1, Name: "f", Prototype: "int f(int);"}, nil)
	set.AddCallee(decomp.Callee{ID: 1, Name: "f", Prototype: "long f(long);"}, nil)

	callees := set.Callees()
	if len(callees) != 1 || callees[0].Prototype != "int f(int);" {
		t.Fatalf("first prototype must win, got %+v", callees)
	}
	if !bag.HasWarnings() {
		t.Fatalf("expected a prototype conflict warning")
	}
}

func TestSymbolSetMissingSignature(t *testing.T) {
	bag := diag.NewBag(8)
	set := NewSymbolSet(false, diag.BagReporter{Bag: bag})

	set.AddCallee(decomp.Callee{ID: 0xdead, Name: "mystery"}, nil)
	if len(set.Callees()) != 0 {
		t.Fatalf("callee with no signature at all should be dropped")
	}
	if !bag.HasWarnings() {
		t.Fatalf("dropping a callee must be reported")
	}
}

func TestSymbolSetOrderIsFirstSeen(t *testing.T) {
	in := ctype.NewInterner()
	b := in.Builtins()
	set := NewSymbolSet(false, nil)

	set.AddGlobal(decomp.GlobalRef{Name: "z", Type: b.Int})
	set.AddGlobal(decomp.GlobalRef{Name: "a", Type: b.Int})
	set.AddGlobal(decomp.GlobalRef{Name: "m", Type: b.Int})

	globals := set.Globals()
	if globals[0].Name != "z" || globals[1].Name != "a" || globals[2].Name != "m" {
		t.Fatalf("globals must keep first-seen order, got %+v", globals)
	}
}
