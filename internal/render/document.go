package render

import (
	"encoding/json"
	"strings"

	"cslice/internal/aggregate"
)

// Document is the structured output: one entry per selected function keyed by
// entry address, plus the concatenated non-implementation sections once.
type Document struct {
	Program   string                   `json:"program"`
	Header    string                   `json:"header"`
	Functions map[string]DocumentEntry `json:"functions"`
}

type DocumentEntry struct {
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
	Body      string `json:"body,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BuildDocument assembles the structured form of m. Section toggles apply to
// the shared header field the same way they apply to text artifacts.
func BuildDocument(m *aggregate.Model, opts Options) *Document {
	doc := &Document{
		Program:   m.Program,
		Header:    strings.TrimLeft(sharedSections(m, opts), "\n"),
		Functions: make(map[string]DocumentEntry, len(m.Functions)),
	}
	for _, fn := range m.Functions {
		entry := DocumentEntry{Name: fn.Info.Name}
		if fn.Failed {
			entry.Error = fn.Reason
		} else {
			entry.Signature = fn.Signature
			entry.Body = fn.Body
		}
		doc.Functions[fn.Info.ID.Addr()] = entry
	}
	return doc
}

// Encode renders the document as indented JSON. Map keys marshal in sorted
// order, so output is deterministic.
func (d *Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
