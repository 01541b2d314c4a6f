// Package render turns an aggregated model into output artifacts: a C source
// file, an optional companion header, or a structured JSON document. Rendering
// is pure text assembly; the same model always yields the same bytes.
package render

import (
	"errors"
	"strings"

	"cslice/internal/aggregate"
)

// Options selects artifacts and sections.
type Options struct {
	// CFile and Header choose the text artifacts. With both set the header
	// receives every non-implementation section and the C file includes it.
	CFile  bool
	Header bool
	// HeaderName is the file name the C artifact includes when Header is set.
	HeaderName string
	// CppComments switches banners and stub comments to // style.
	CppComments bool

	EmitTypes        bool
	EmitGlobals      bool
	EmitDeclarations bool
}

// Artifacts holds the rendered text outputs.
type Artifacts struct {
	Primary []byte
	Header  []byte
}

var errNoArtifact = errors.New("no output artifact requested")

// Render produces the requested artifacts from m.
func Render(m *aggregate.Model, opts Options) (Artifacts, error) {
	if !opts.CFile && !opts.Header {
		return Artifacts{}, errNoArtifact
	}

	shared := sharedSections(m, opts)
	impls := implementationsSection(m, opts.CppComments)

	var out Artifacts
	if opts.Header {
		out.Header = []byte(strings.TrimLeft(shared, "\n"))
		if opts.CFile {
			var b strings.Builder
			b.WriteString("#include \"" + opts.HeaderName + "\"\n")
			b.WriteString(impls)
			out.Primary = []byte(b.String())
		}
		return out, nil
	}

	var b strings.Builder
	b.WriteString(shared)
	b.WriteString(impls)
	out.Primary = []byte(strings.TrimLeft(b.String(), "\n"))
	return out, nil
}

// sharedSections concatenates every non-implementation section in fixed
// order: types, equates, declarations, globals.
func sharedSections(m *aggregate.Model, opts Options) string {
	var b strings.Builder
	if opts.EmitTypes {
		b.WriteString(typesSection(m, opts.CppComments))
		b.WriteString(equatesSection(m, opts.CppComments))
	}
	if opts.EmitDeclarations {
		b.WriteString(declarationsSection(m, opts.CppComments))
	}
	if opts.EmitGlobals {
		b.WriteString(globalsSection(m, opts.CppComments))
	}
	return b.String()
}
