// Package diag implements the diagnostic session shared by all pipeline
// phases: accumulation, deduplication, delayed bugs and emission.
//
// # Purpose
//
//   - Provide the Diagnostic data model (levels, codes, multi-span locations,
//     child notes, structured suggestions) used by lexer / parser / semantic
//     passes.
//   - Own session-wide accounting in Handler: error counters, structural
//     dedup, the teach-once set, delayed bugs, abort policy.
//   - Enforce through Builder that no staged diagnostic is ever silently
//     dropped.
//
// # Scope
//
// Package diag performs no formatting and no IO. Rendering lives behind the
// Emitter interface (internal/diagfmt implements the human and JSON forms);
// applying suggestions to files lives in internal/fix; orchestration lives in
// the driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Level – Bug, Fatal, Error, Warning, Note, Help, Cancelled, FailureNote.
//   - Code – compact numeric identifier (see codes.go) with stable string
//     form and an optional long explanation (see explain.go).
//   - Message – human oriented text; keep it short and actionable.
//   - Span – MultiSpan: primary spans plus labeled secondary spans.
//   - Children – note/help/warning sub-messages attached to the parent.
//   - Suggestions – structured edits with applicability and display style.
//
// # Session lifecycle
//
// A Handler is constructed once per compilation with Flags and an Emitter.
// Phases stage diagnostics through Builder (Struct* constructors) and resolve
// each builder with exactly one of Emit, Cancel, Buffer or DelayAsBug. The
// Handler dedups structurally identical diagnostics, counts errors (raw and
// deduplicated), and at the end of the session PrintErrorCount emits the
// summary plus `volt explain` hints. Close runs final integrity checks:
// delayed bugs with a clean error count, and builders left unresolved, both
// escalate to an internal error.
//
// # Concurrency
//
// Handler methods are safe for concurrent use; the emit pipeline is atomic,
// so identical diagnostics from parallel workers dedup to one rendered copy.
// Builders and Bags are single-owner values and must stay on one goroutine.
package diag
