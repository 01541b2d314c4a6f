package render

import (
	"fmt"
	"strings"

	"cslice/internal/aggregate"
	"cslice/internal/ctype"
)

// banner renders the fixed section header block: a 78-column box with title
// and description, in C or C++ comment style. Cosmetic only.
func banner(title, description string, cpp bool) string {
	open, close := "/*", " */"
	if cpp {
		open, close = "//", ""
	}
	eq := strings.Repeat("=", 78)
	return fmt.Sprintf("\n%s%s%s\n%s %-74s%s\n%s %-74s%s\n%s%s%s\n",
		open, eq, close,
		open, title, close,
		open, description, close,
		open, eq, close)
}

func comment(text string, cpp bool) string {
	if cpp {
		return "// " + text
	}
	return "/* " + text + " */"
}

// typesSection emits the builtin prelude, one forward declaration per
// composite, then full bodies in first-discovery order.
func typesSection(m *aggregate.Model, cpp bool) string {
	var b strings.Builder
	b.WriteString(banner("DATA TYPES",
		"These types were decompiled from the binary and may not match original source", cpp))
	b.WriteString("\n")
	b.WriteString(builtinPrelude(cpp))
	b.WriteString("\n")

	forwards := false
	for _, id := range m.Decls.Types() {
		if fd := ForwardDecl(m.Types, id); fd != "" {
			b.WriteString(fd)
			b.WriteString("\n")
			forwards = true
		}
	}
	if forwards {
		b.WriteString("\n")
	}
	for _, id := range m.Decls.Types() {
		if def := Definition(m.Types, id); def != "" {
			b.WriteString(def)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func equatesSection(m *aggregate.Model, cpp bool) string {
	if len(m.Equates) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(banner("EQUATES / DEFINES",
		"Constants and named values extracted from the binary", cpp))
	b.WriteString("\n")
	for _, eq := range m.Equates {
		fmt.Fprintf(&b, "#define %s %s\n", eq.Name, eq.Value)
	}
	return b.String()
}

// declarationsSection lists prototypes: the selected functions' own
// signatures, every external callee, and globals that are really function
// symbols. Functions the decompiler failed on leave a comment in their place.
func declarationsSection(m *aggregate.Model, cpp bool) string {
	var b strings.Builder
	b.WriteString(banner("FUNCTION DECLARATIONS",
		"These function prototypes were extracted from binary analysis", cpp))
	b.WriteString("\n")
	for _, fn := range m.Functions {
		if fn.Failed {
			b.WriteString(comment(fmt.Sprintf("WARNING: Could not decompile function %s", fn.Info.Name), cpp))
			b.WriteString("\n")
			continue
		}
		sig := strings.TrimSpace(fn.Signature)
		if sig == "" {
			continue
		}
		if !strings.HasSuffix(sig, ";") {
			sig += ";"
		}
		b.WriteString(sig)
		b.WriteString("\n")
	}
	for _, c := range m.Prototypes {
		proto := strings.TrimSpace(c.Prototype)
		if proto == "" && c.Type != ctype.NoTypeID {
			proto = signatureFromType(m.Types, c.Type, c.Name)
		}
		if proto == "" {
			continue
		}
		if !strings.HasSuffix(proto, ";") {
			proto += ";"
		}
		b.WriteString(proto)
		b.WriteString("\n")
	}
	for _, g := range m.Globals {
		if !g.IsFunction {
			continue
		}
		b.WriteString(signatureFromType(m.Types, g.Type, g.Name))
		b.WriteString("\n")
	}
	return b.String()
}

// signatureFromType spells a prototype from a signature node, unwrapping one
// pointer level since function symbols often surface as pointers to their
// signature.
func signatureFromType(in *ctype.Interner, id ctype.TypeID, name string) string {
	if t, ok := in.Lookup(id); ok && t.Kind == ctype.KindPointer {
		if et, ok := in.Lookup(t.Elem); ok && et.Kind == ctype.KindFunc {
			id = t.Elem
		}
	}
	return Declarator(in, id, name) + ";"
}

func globalsSection(m *aggregate.Model, cpp bool) string {
	var b strings.Builder
	wrote := false
	for _, g := range m.Globals {
		if g.IsFunction {
			continue
		}
		if !wrote {
			b.WriteString(banner("GLOBAL VARIABLES",
				"These global variables were referenced in the decompiled functions", cpp))
			b.WriteString("\n")
			wrote = true
		}
		decl := Declarator(m.Types, g.Type, g.Name)
		if g.Qualifiers != "" {
			decl = g.Qualifiers + " " + decl
		}
		fmt.Fprintf(&b, "extern %s;\n", decl)
	}
	return b.String()
}

func implementationsSection(m *aggregate.Model, cpp bool) string {
	var b strings.Builder
	b.WriteString(banner("FUNCTION IMPLEMENTATIONS",
		"Decompiled code from the binary", cpp))
	b.WriteString("\n")
	for _, fn := range m.Functions {
		if fn.Failed {
			b.WriteString(comment(fmt.Sprintf("WARNING: Could not decompile function %s: %s",
				fn.Info.Name, fn.Reason), cpp))
			b.WriteString("\n\n")
			continue
		}
		body := strings.TrimRight(fn.Body, "\n")
		if body == "" {
			continue
		}
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	return b.String()
}
