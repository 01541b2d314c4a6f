package closure

import (
	"testing"

	"cslice/internal/ctype"
	"cslice/internal/diag"
)

func TestCloseCollectsFieldDependencies(t *testing.T) {
	in := ctype.NewInterner()
	b := in.Builtins()

	point := in.RegisterStruct("point")
	in.SetFields(point, []ctype.Field{
		{Name: "x", Type: b.Int},
		{Name: "y", Type: b.Int},
	})
	rect := in.RegisterStruct("rect")
	in.SetFields(rect, []ctype.Field{
		{Name: "min", Type: point},
		{Name: "max", Type: point},
	})

	set := NewDeclSet()
	NewCloser(in, nil).Close(set, rect)

	got := set.Types()
	if len(got) != 2 || got[0] != rect || got[1] != point {
		t.Fatalf("expected [rect point] in discovery order, got %v", got)
	}
}

func TestCloseSelfReferentialStructTerminates(t *testing.T) {
	in := ctype.NewInterner()
	node := in.RegisterStruct("node")
	in.SetFields(node, []ctype.Field{
		{Name: "value", Type: in.Builtins().Int},
		{Name: "next", Type: in.PointerTo(node)},
	})

	set := NewDeclSet()
	NewCloser(in, nil).Close(set, node)
	if set.Len() != 1 || !set.Has(node) {
		t.Fatalf("self-referential struct should yield exactly itself, got %v", set.Types())
	}
}

func TestCloseMutualCycleTerminates(t *testing.T) {
	in := ctype.NewInterner()
	a := in.RegisterStruct("a")
	bb := in.RegisterStruct("b")
	in.SetFields(a, []ctype.Field{{Name: "other", Type: in.PointerTo(bb)}})
	in.SetFields(bb, []ctype.Field{{Name: "other", Type: in.PointerTo(a)}})

	set := NewDeclSet()
	NewCloser(in, nil).Close(set, a)
	got := set.Types()
	if len(got) != 2 || got[0] != a || got[1] != bb {
		t.Fatalf("mutual cycle should yield both structs once, got %v", got)
	}
}

func TestCloseTypedefChainAndEnum(t *testing.T) {
	in := ctype.NewInterner()
	color := in.RegisterEnum("color")
	in.SetEnumMembers(color, []ctype.EnumMember{{Name: "RED"}})
	alias := in.RegisterTypedef("color_t")
	in.SetTypedefTarget(alias, color)

	set := NewDeclSet()
	NewCloser(in, nil).Close(set, in.PointerTo(alias))
	got := set.Types()
	if len(got) != 2 || got[0] != alias || got[1] != color {
		t.Fatalf("expected typedef then enum, got %v", got)
	}
}

func TestCloseFuncSignatureDependencies(t *testing.T) {
	in := ctype.NewInterner()
	node := in.RegisterStruct("node")
	in.SetFields(node, nil)
	sig := in.FuncOf(in.Builtins().Void, []ctype.TypeID{in.PointerTo(node)}, false)

	set := NewDeclSet()
	NewCloser(in, nil).Close(set, in.PointerTo(sig))
	if !set.Has(node) {
		t.Fatalf("function pointer parameters must pull in their types")
	}
}

func TestCloseUnfinalizedCompositeWarns(t *testing.T) {
	in := ctype.NewInterner()
	ghost := in.RegisterStruct("ghost")

	bag := diag.NewBag(8)
	set := NewDeclSet()
	NewCloser(in, diag.BagReporter{Bag: bag}).Close(set, ghost)

	if !set.Has(ghost) {
		t.Fatalf("unfinalized struct still needs a forward declaration")
	}
	if !bag.HasWarnings() {
		t.Fatalf("expected a warning about the missing field list")
	}
}

func TestCloseRepeatedRootsKeepFirstDiscoveryOrder(t *testing.T) {
	in := ctype.NewInterner()
	a := in.RegisterStruct("a")
	in.SetFields(a, nil)
	bb := in.RegisterStruct("b")
	in.SetFields(bb, nil)

	set := NewDeclSet()
	c := NewCloser(in, nil)
	c.Close(set, a)
	c.Close(set, bb, a)
	got := set.Types()
	if len(got) != 2 || got[0] != a || got[1] != bb {
		t.Fatalf("re-closing must not duplicate or reorder, got %v", got)
	}
}
