// Package closure computes the dependency closures an exported slice needs to
// stand alone: the set of type declarations reachable from the selected
// functions, and the set of external symbols (globals and called functions)
// their bodies reference.
package closure

import (
	"cslice/internal/ctype"
	"cslice/internal/diag"
)

// DeclSet is an ordered set of types that need a declaration in the output.
// Order is first discovery; membership doubles as the recursion mark, which is
// what keeps traversal of cyclic type graphs finite.
type DeclSet struct {
	order []ctype.TypeID
	seen  map[ctype.TypeID]bool
}

func NewDeclSet() *DeclSet {
	return &DeclSet{seen: make(map[ctype.TypeID]bool)}
}

func (s *DeclSet) Has(id ctype.TypeID) bool { return s.seen[id] }

func (s *DeclSet) add(id ctype.TypeID) {
	if s.seen[id] {
		return
	}
	s.seen[id] = true
	s.order = append(s.order, id)
}

// Types returns the set in first-discovery order. The returned slice aliases
// internal storage.
func (s *DeclSet) Types() []ctype.TypeID { return s.order }

func (s *DeclSet) Len() int { return len(s.order) }

// Closer walks type graphs and accumulates declaration dependencies.
type Closer struct {
	in  *ctype.Interner
	rep diag.Reporter
}

func NewCloser(in *ctype.Interner, rep diag.Reporter) *Closer {
	if rep == nil {
		rep = diag.NopReporter{}
	}
	return &Closer{in: in, rep: rep}
}

// Close adds every declaration the roots depend on to set. Already-present
// members are never revisited, so calling Close repeatedly with overlapping
// roots is cheap and keeps the original discovery order.
func (c *Closer) Close(set *DeclSet, roots ...ctype.TypeID) {
	for _, id := range roots {
		c.visit(set, id)
	}
}

func (c *Closer) visit(set *DeclSet, id ctype.TypeID) {
	if id == ctype.NoTypeID {
		return
	}
	t, ok := c.in.Lookup(id)
	if !ok {
		return
	}
	switch t.Kind {
	case ctype.KindPrimitive:
		// Spelled inline, nothing to declare.
	case ctype.KindPointer, ctype.KindArray:
		c.visit(set, t.Elem)
	case ctype.KindFunc:
		if info, ok := c.in.Func(id); ok {
			c.visit(set, info.Ret)
			for _, p := range info.Params {
				c.visit(set, p)
			}
		}
	case ctype.KindTypedef:
		if set.Has(id) {
			return
		}
		// Mark before recursing: the target may lead back here.
		set.add(id)
		if info, ok := c.in.Typedef(id); ok {
			if info.Target == ctype.NoTypeID {
				diag.Warn(c.rep, diag.ClosOpaqueType, t.Name,
					"typedef has no recovered target; emitting as undefined")
				return
			}
			c.visit(set, info.Target)
		}
	case ctype.KindStruct, ctype.KindUnion:
		if set.Has(id) {
			return
		}
		set.add(id)
		info, ok := c.in.Composite(id)
		if !ok || !info.Finalized {
			diag.Warn(c.rep, diag.ClosOpaqueField, t.Kind.String()+" "+t.Name,
				"no recovered field list; only a forward declaration will be emitted")
			return
		}
		for _, f := range info.Fields {
			c.visit(set, f.Type)
		}
	case ctype.KindEnum:
		set.add(id)
	case ctype.KindOpaque:
		if set.Has(id) {
			return
		}
		set.add(id)
		diag.Warn(c.rep, diag.ClosOpaqueType, t.Name,
			"type is opaque; emitting a placeholder declaration")
	}
}
