package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"cslice/internal/aggregate"
	"cslice/internal/ctype"
	"cslice/internal/decomp"
)

func fixtureModel(t *testing.T) *aggregate.Model {
	t.Helper()
	in := ctype.NewInterner()
	b := in.Builtins()

	a := in.RegisterStruct("alpha")
	z := in.RegisterStruct("zeta")
	in.SetFields(a, []ctype.Field{{Name: "other", Type: in.PointerTo(z)}})
	in.SetFields(z, []ctype.Field{{Name: "other", Type: in.PointerTo(a)}})
	sig := in.FuncOf(b.Int, []ctype.TypeID{in.PointerTo(a)}, false)

	main := decomp.FunctionInfo{ID: 0x401000, Name: "main"}
	bad := decomp.FunctionInfo{ID: 0x401400, Name: "bad"}
	results := []aggregate.Decompiled{
		{
			Info: main,
			Rec: &decomp.Record{
				Func:      main,
				Signature: "int main(void)",
				Body:      "int main(void)\n{\n  return visit(&root);\n}\n",
				TypeRefs:  []ctype.TypeID{a},
				Globals: []decomp.GlobalRef{
					{Name: "root", Type: a},
					{Name: "scratch", Type: in.ArrayOf(b.Char, 32)},
					{Name: "on_visit", Type: in.PointerTo(sig)},
					{Name: "visit", Type: sig, IsFunction: true},
				},
			},
		},
		{Info: bad, Err: errors.New("stack depth exceeded")},
	}
	eqs := []decomp.Equate{{Name: "MAX_DEPTH", Value: "64"}}
	return aggregate.Build("demo.bin", in, results, eqs, aggregate.Options{}, nil)
}

func allOpts() Options {
	return Options{
		CFile:            true,
		HeaderName:       "demo.h",
		CppComments:      true,
		EmitTypes:        true,
		EmitGlobals:      true,
		EmitDeclarations: true,
	}
}

func TestRenderSingleArtifactSectionOrder(t *testing.T) {
	out, err := Render(fixtureModel(t), allOpts())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out.Primary)
	order := []string{
		"DATA TYPES", "EQUATES / DEFINES", "FUNCTION DECLARATIONS",
		"GLOBAL VARIABLES", "FUNCTION IMPLEMENTATIONS",
	}
	last := -1
	for _, title := range order {
		idx := strings.Index(text, title)
		if idx < 0 {
			t.Fatalf("section %q missing", title)
		}
		if idx < last {
			t.Fatalf("section %q out of order", title)
		}
		last = idx
	}
	if out.Header != nil {
		t.Fatalf("no header requested")
	}
}

func TestRenderForwardDeclsPrecedeBodies(t *testing.T) {
	out, err := Render(fixtureModel(t), allOpts())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out.Primary)
	fwdAlpha := strings.Index(text, "typedef struct alpha alpha;")
	fwdZeta := strings.Index(text, "typedef struct zeta zeta;")
	bodyAlpha := strings.Index(text, "struct alpha {")
	bodyZeta := strings.Index(text, "struct zeta {")
	if fwdAlpha < 0 || fwdZeta < 0 || bodyAlpha < 0 || bodyZeta < 0 {
		t.Fatalf("mutually-pointing structs need forwards and bodies:\n%s", text)
	}
	if fwdAlpha > bodyAlpha || fwdZeta > bodyAlpha || fwdAlpha > bodyZeta {
		t.Fatalf("every forward declaration must precede every body")
	}
	if !strings.Contains(text, "zeta *other;") {
		t.Fatalf("pointer field spelling wrong:\n%s", text)
	}
}

func TestRenderDeclaratorShapes(t *testing.T) {
	out, err := Render(fixtureModel(t), allOpts())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out.Primary)
	if !strings.Contains(text, "extern char scratch[32];") {
		t.Fatalf("array dims must follow the name:\n%s", text)
	}
	if !strings.Contains(text, "extern int (*on_visit)(alpha *);") {
		t.Fatalf("function pointer global wrong:\n%s", text)
	}
	if !strings.Contains(text, "int visit(alpha *);") {
		t.Fatalf("function-symbol global must render as a prototype:\n%s", text)
	}
	if strings.Contains(text, "extern int visit") {
		t.Fatalf("function-symbol global must not render as a variable")
	}
	if !strings.Contains(text, "#define MAX_DEPTH 64") {
		t.Fatalf("equate missing:\n%s", text)
	}
}

func TestRenderFailureStubs(t *testing.T) {
	out, err := Render(fixtureModel(t), allOpts())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out.Primary)
	if !strings.Contains(text, "// WARNING: Could not decompile function bad: stack depth exceeded") {
		t.Fatalf("implementation stub missing:\n%s", text)
	}
	if !strings.Contains(text, "// WARNING: Could not decompile function bad") {
		t.Fatalf("declaration stub missing")
	}
}

func TestRenderCommentStyle(t *testing.T) {
	opts := allOpts()
	opts.CppComments = false
	out, err := Render(fixtureModel(t), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out.Primary)
	if strings.Contains(text, "//") {
		t.Fatalf("C comment style must not emit // anywhere:\n%s", text)
	}
	if !strings.Contains(text, "/* WARNING: Could not decompile function bad") {
		t.Fatalf("stub should use block comments")
	}
}

func TestRenderHeaderRouting(t *testing.T) {
	opts := allOpts()
	opts.Header = true
	out, err := Render(fixtureModel(t), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	hdr, pri := string(out.Header), string(out.Primary)
	if !strings.HasPrefix(pri, "#include \"demo.h\"\n") {
		t.Fatalf("primary must include the header:\n%s", pri)
	}
	for _, title := range []string{"DATA TYPES", "FUNCTION DECLARATIONS", "GLOBAL VARIABLES"} {
		if !strings.Contains(hdr, title) {
			t.Fatalf("header missing %q", title)
		}
		if strings.Contains(pri, title) {
			t.Fatalf("primary must not repeat %q", title)
		}
	}
	if strings.Contains(hdr, "FUNCTION IMPLEMENTATIONS") {
		t.Fatalf("implementations never move to the header")
	}
}

func TestRenderSectionToggles(t *testing.T) {
	opts := allOpts()
	opts.EmitTypes = false
	opts.EmitGlobals = false
	out, err := Render(fixtureModel(t), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out.Primary)
	if strings.Contains(text, "DATA TYPES") || strings.Contains(text, "GLOBAL VARIABLES") {
		t.Fatalf("disabled sections must vanish:\n%s", text)
	}
	if !strings.Contains(text, "FUNCTION DECLARATIONS") {
		t.Fatalf("enabled section missing")
	}
}

func TestRenderDeterministic(t *testing.T) {
	m := fixtureModel(t)
	first, err := Render(m, allOpts())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := Render(m, allOpts())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(first.Primary, second.Primary) {
		t.Fatalf("rendering must be byte deterministic")
	}
}

func TestRenderRequiresAnArtifact(t *testing.T) {
	if _, err := Render(fixtureModel(t), Options{}); err == nil {
		t.Fatalf("no artifact selected must be an error")
	}
}

func TestBuildDocument(t *testing.T) {
	m := fixtureModel(t)
	doc := BuildDocument(m, allOpts())

	entry, ok := doc.Functions["0x401000"]
	if !ok || entry.Name != "main" || entry.Signature != "int main(void)" {
		t.Fatalf("entry keyed by hex address missing or wrong: %+v", doc.Functions)
	}
	failed, ok := doc.Functions["0x401400"]
	if !ok || failed.Error != "stack depth exceeded" || failed.Body != "" {
		t.Fatalf("failed entry should carry the error only: %+v", failed)
	}
	if !strings.Contains(doc.Header, "DATA TYPES") {
		t.Fatalf("shared header field must carry the non-implementation sections")
	}

	raw, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("document must be valid JSON: %v", err)
	}
	raw2, _ := doc.Encode()
	if !bytes.Equal(raw, raw2) {
		t.Fatalf("document encoding must be deterministic")
	}
}
