package render

import (
	"fmt"
	"strings"

	"cslice/internal/ctype"
)

// Spell returns the C spelling of a type in expression position, e.g.
// "node *" collapses to "node *" without a declarator name.
func Spell(in *ctype.Interner, id ctype.TypeID) string {
	return Declarator(in, id, "")
}

// Declarator renders "type name" the way a C declaration spells it: array
// dimensions after the name, no space after '*', function pointers as
// "ret (*name)(params)".
func Declarator(in *ctype.Interner, id ctype.TypeID, name string) string {
	return declare(in, id, name)
}

func declare(in *ctype.Interner, id ctype.TypeID, inner string) string {
	t, ok := in.Lookup(id)
	if id == ctype.NoTypeID || !ok {
		return joinSpelling("undefined", inner)
	}
	switch t.Kind {
	case ctype.KindPointer:
		inner = "*" + inner
		if et, ok := in.Lookup(t.Elem); ok && (et.Kind == ctype.KindFunc || et.Kind == ctype.KindArray) {
			inner = "(" + inner + ")"
		}
		return declare(in, t.Elem, inner)
	case ctype.KindArray:
		dim := "[]"
		if t.Count != ctype.ArrayUnknownLength {
			dim = fmt.Sprintf("[%d]", t.Count)
		}
		return declare(in, t.Elem, inner+dim)
	case ctype.KindFunc:
		info, ok := in.Func(id)
		if !ok {
			return joinSpelling("undefined", inner)
		}
		return declare(in, info.Ret, inner+"("+paramList(in, info)+")")
	default:
		base := t.Name
		if base == "" {
			base = "undefined"
		}
		return joinSpelling(base, inner)
	}
}

func joinSpelling(base, inner string) string {
	if inner == "" {
		return base
	}
	return base + " " + inner
}

func paramList(in *ctype.Interner, info *ctype.FuncInfo) string {
	if len(info.Params) == 0 {
		if info.Variadic {
			return "..."
		}
		return "void"
	}
	parts := make([]string, 0, len(info.Params)+1)
	for _, p := range info.Params {
		parts = append(parts, Spell(in, p))
	}
	if info.Variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// ForwardDecl returns the typedef forward declaration for a composite, or ""
// for kinds that need none. Emitting these before any full body is what lets
// mutually-pointing structs compile.
func ForwardDecl(in *ctype.Interner, id ctype.TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return ""
	}
	switch t.Kind {
	case ctype.KindStruct:
		return fmt.Sprintf("typedef struct %s %s;", t.Name, t.Name)
	case ctype.KindUnion:
		return fmt.Sprintf("typedef union %s %s;", t.Name, t.Name)
	default:
		return ""
	}
}

// Definition renders the full declaration body for one collected type. Types
// that only ever need their forward declaration (unfinalized composites) and
// kinds with no body return "".
func Definition(in *ctype.Interner, id ctype.TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return ""
	}
	switch t.Kind {
	case ctype.KindStruct, ctype.KindUnion:
		info, ok := in.Composite(id)
		if !ok || !info.Finalized {
			return ""
		}
		kw := "struct"
		if t.Kind == ctype.KindUnion {
			kw = "union"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s {\n", kw, t.Name)
		for _, f := range info.Fields {
			fmt.Fprintf(&b, "    %s;\n", Declarator(in, f.Type, f.Name))
		}
		b.WriteString("};")
		return b.String()
	case ctype.KindEnum:
		info, ok := in.Enum(id)
		if !ok {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "typedef enum %s {\n", t.Name)
		for i, m := range info.Members {
			sep := ","
			if i == len(info.Members)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "    %s=%d%s\n", m.Name, m.Value, sep)
		}
		fmt.Fprintf(&b, "} %s;", t.Name)
		return b.String()
	case ctype.KindTypedef:
		info, ok := in.Typedef(id)
		if !ok {
			return ""
		}
		return fmt.Sprintf("typedef %s;", Declarator(in, info.Target, t.Name))
	case ctype.KindOpaque:
		return fmt.Sprintf("typedef void %s;", t.Name)
	default:
		return ""
	}
}
