// Package diag defines the diagnostic model shared by all export stages.
//
// Decompiler output is inherently approximate, so most findings here are
// warnings that must never abort a run: conflicting redeclarations, opaque
// types, functions the decompiler gave up on. Stages emit diagnostics through
// a Reporter and the pipeline collects them into a Bag, which supports
// merging, sorting and deduplication so the final warning list is
// deterministic regardless of how the per-function work was scheduled.
//
// The package performs no formatting or IO; rendering of diagnostics for the
// CLI lives in cmd/cslice.
package diag
