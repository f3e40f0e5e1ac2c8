package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"volt/internal/diag"
)

// exitError проносит конкретный код выхода через RunE до main.
// Пустой текст плюс SilenceErrors не дают cobra напечатать лишнего.
type exitError struct{ code int }

func (e exitError) Error() string { return "" }

// recoverICE converts the diagnostic panic payloads into process exit codes.
// FatalError means the failure was already printed, so the process leaves
// quietly with code 1. ExplicitBug is a compiler defect: report it as an
// internal compiler error and exit with 101.
func recoverICE(cmd *cobra.Command, errp *error) {
	switch r := recover().(type) {
	case nil:
	case diag.FatalError:
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		*errp = exitError{code: 1}
	case diag.ExplicitBug:
		fmt.Fprintln(os.Stderr, "error: internal compiler error: unexpected panic")
		fmt.Fprintln(os.Stderr, "note: the checker unexpectedly panicked. this is a bug.")
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		*errp = exitError{code: 101}
	default:
		panic(r)
	}
}
