package decomp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cslice/internal/ctype"
)

func buildFixtureProvider() *Static {
	in := ctype.NewInterner()
	b := in.Builtins()

	node := in.RegisterStruct("node")
	in.SetFields(node, []ctype.Field{
		{Name: "value", Type: b.Int},
		{Name: "next", Type: in.PointerTo(node)},
	})
	size := in.RegisterTypedef("size_t")
	in.SetTypedefTarget(size, in.Primitive("unsigned long"))
	color := in.RegisterEnum("color")
	in.SetEnumMembers(color, []ctype.EnumMember{{Name: "RED"}, {Name: "BLUE", Value: 4}})
	cmp := in.FuncOf(b.Int, []ctype.TypeID{in.PointerTo(node), in.PointerTo(node)}, false)
	buf := in.ArrayOf(b.Char, 32)

	main := FunctionInfo{ID: 0x401000, Name: "main"}
	helper := FunctionInfo{ID: 0x401200, Name: "walk", Tags: []string{"CORE"}}
	broken := FunctionInfo{ID: 0x401400, Name: "bad"}

	return &Static{
		Name:     "demo.bin",
		Interner: in,
		Funcs:    []FunctionInfo{main, helper, broken},
		Records: map[FuncID]*Record{
			main.ID: {
				Func:      main,
				Signature: "int main(void)",
				Body:      "int main(void)\n{\n  return walk(&root);\n}\n",
				TypeRefs:  []ctype.TypeID{node, buf},
				Globals: []GlobalRef{
					{Name: "root", Type: node},
					{Name: "on_visit", Type: in.PointerTo(cmp)},
				},
				Callees: []Callee{
					{ID: helper.ID, Name: "walk", Prototype: "int walk(node *n);", Type: cmp},
				},
			},
			helper.ID: {
				Func:      helper,
				Signature: "int walk(node *n)",
				Body:      "int walk(node *n)\n{\n  return n->value;\n}\n",
				TypeRefs:  []ctype.TypeID{node, size, color},
			},
		},
		Failures:   map[FuncID]string{broken.ID: "no valid prototype"},
		EquateList: []Equate{{Name: "MAX_DEPTH", Value: "64"}},
	}
}

func TestSnapshotRoundtrip(t *testing.T) {
	ctx := context.Background()
	src := buildFixtureProvider()

	var buf bytes.Buffer
	if err := Encode(ctx, &buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if got.ProgramName() != "demo.bin" {
		t.Fatalf("program name lost: %q", got.ProgramName())
	}
	funcs, err := got.ListFunctions(ctx)
	if err != nil || len(funcs) != 3 {
		t.Fatalf("expected 3 functions, got %d (%v)", len(funcs), err)
	}
	if funcs[1].Name != "walk" || len(funcs[1].Tags) != 1 || funcs[1].Tags[0] != "CORE" {
		t.Fatalf("function order or tags lost: %+v", funcs[1])
	}

	rec, err := got.Decompile(ctx, 0x401000)
	if err != nil {
		t.Fatalf("decompile main: %v", err)
	}
	if rec.Signature != "int main(void)" || len(rec.Callees) != 1 {
		t.Fatalf("main record mangled: %+v", rec)
	}
	if rec.Callees[0].ID != 0x401200 || rec.Callees[0].Prototype != "int walk(node *n);" {
		t.Fatalf("callee lost: %+v", rec.Callees[0])
	}

	eqs, err := got.Equates(ctx)
	if err != nil || len(eqs) != 1 || eqs[0].Name != "MAX_DEPTH" {
		t.Fatalf("equates lost: %v %v", eqs, err)
	}
}

func TestSnapshotRoundtripCyclicTypes(t *testing.T) {
	ctx := context.Background()
	src := buildFixtureProvider()

	var buf bytes.Buffer
	if err := Encode(ctx, &buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	in := got.Types()
	rec, err := got.Decompile(ctx, 0x401000)
	if err != nil {
		t.Fatalf("decompile: %v", err)
	}

	node := rec.TypeRefs[0]
	nt := in.MustLookup(node)
	if nt.Kind != ctype.KindStruct || nt.Name != "node" {
		t.Fatalf("expected struct node, got %v %q", nt.Kind, nt.Name)
	}
	info, ok := in.Composite(node)
	if !ok || !info.Finalized || len(info.Fields) != 2 {
		t.Fatalf("struct fields not restored: %+v", info)
	}
	next := in.MustLookup(info.Fields[1].Type)
	if next.Kind != ctype.KindPointer || next.Elem != node {
		t.Fatalf("self-reference broken after reload")
	}

	fnPtr := in.MustLookup(rec.Globals[1].Type)
	if fnPtr.Kind != ctype.KindPointer {
		t.Fatalf("function pointer global lost its pointer node")
	}
	sig, ok := in.Func(fnPtr.Elem)
	if !ok || len(sig.Params) != 2 || sig.Variadic {
		t.Fatalf("signature not restored: %+v", sig)
	}
	for _, p := range sig.Params {
		pt := in.MustLookup(p)
		if pt.Kind != ctype.KindPointer || pt.Elem != node {
			t.Fatalf("signature params should point at the reloaded struct")
		}
	}
}

func TestSnapshotKeepsUnfinalizedComposite(t *testing.T) {
	ctx := context.Background()
	in := ctype.NewInterner()
	b := in.Builtins()

	// Registered but never given a field list: the decompiler only ever saw
	// pointers to it.
	ghost := in.RegisterStruct("ghost")
	fn := FunctionInfo{ID: 0x402000, Name: "peek"}
	src := &Static{
		Name:     "ghost.bin",
		Interner: in,
		Funcs:    []FunctionInfo{fn},
		Records: map[FuncID]*Record{
			fn.ID: {
				Func:      fn,
				Signature: "int peek(ghost *g)",
				Body:      "int peek(ghost *g)\n{\n  return 0;\n}\n",
				TypeRefs:  []ctype.TypeID{in.PointerTo(ghost), b.Int},
			},
		},
	}

	var buf bytes.Buffer
	if err := Encode(ctx, &buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	reloaded := got.Types().RegisterStruct("ghost")
	info, ok := got.Types().Composite(reloaded)
	if !ok {
		t.Fatalf("struct ghost lost in roundtrip")
	}
	if info.Finalized {
		t.Fatalf("unfinalized struct must stay unfinalized after reload, got %+v", info)
	}
	if len(info.Fields) != 0 {
		t.Fatalf("unfinalized struct grew fields: %+v", info.Fields)
	}
}

func TestSnapshotPreservesFailures(t *testing.T) {
	ctx := context.Background()
	src := buildFixtureProvider()

	var buf bytes.Buffer
	if err := Encode(ctx, &buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = got.Decompile(ctx, 0x401400)
	var dErr *DecompileError
	if !errors.As(err, &dErr) {
		t.Fatalf("expected DecompileError, got %v", err)
	}
	if dErr.Func.Name != "bad" {
		t.Fatalf("failure attributed to wrong function: %+v", dErr.Func)
	}
}

func TestSnapshotRejectsCorruptStream(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(context.Background(), &buf, buildFixtureProvider()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data := buf.Bytes()
	if _, err := Open(bytes.NewReader(data[:len(data)/2])); err == nil {
		t.Fatalf("truncated snapshot must not load")
	}
}
