package diag

// FatalError is the panic payload used to unwind a compilation pass once the
// driver decides errors must stop it. The diagnostics were already printed
// by the time it is raised; drivers recover it at the top and exit quietly
// with a failure code.
type FatalError struct{}

func (FatalError) Error() string { return "fatal error" }

// Raise unwinds the current pass with the fatal marker.
func (e FatalError) Raise() {
	panic(e)
}

// ExplicitBug is the panic payload for internal consistency violations. The
// Bug diagnostic explaining it is emitted before the panic; drivers recover
// the marker and exit with the internal-error code.
type ExplicitBug struct{}

func (ExplicitBug) Error() string { return "internal compiler error" }
