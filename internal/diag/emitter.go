package diag

// Emitter renders diagnostics that survive deduplication. Implementations
// decide presentation only; counting, dedup and abort policy live in the
// Handler. Emit receives a diagnostic the Handler may still own, so an
// emitter that stores diagnostics must Clone them.
type Emitter interface {
	Emit(*Diagnostic)

	// ShouldShowExplain reports whether the end-of-session summary may
	// append `volt explain` hints. Machine-readable emitters return false.
	ShouldShowExplain() bool
}
