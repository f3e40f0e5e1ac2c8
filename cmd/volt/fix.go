package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"volt/internal/diag"
	"volt/internal/driver"
	"volt/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.vt|directory>",
	Short: "Apply machine-applicable fix suggestions",
	Long:  "Run the checker, collect its fix suggestions, and rewrite the source files they apply to.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer recoverICE(cmd, &err)
		return runFix(cmd, args)
	},
}

func init() {
	fixCmd.Flags().Bool("dry-run", false, "print unified diffs without modifying files")
	fixCmd.Flags().Bool("maybe-incorrect", false, "also apply suggestions graded maybe-incorrect")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	maybeIncorrect, err := cmd.Flags().GetBool("maybe-incorrect")
	if err != nil {
		return fmt.Errorf("failed to get maybe-incorrect flag: %w", err)
	}

	// Предупреждения несут часть подсказок, поэтому проверяем с ними.
	result, err := driver.Check(cmd.Context(), targetPath, driver.Options{Flags: diag.DefaultFlags()})
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	res, applyErr := fix.Apply(result.FileSet, result.Bag, fix.ApplyOptions{
		DryRun:              dryRun,
		ApplyMaybeIncorrect: maybeIncorrect,
	})
	return handleApplyResult(res, applyErr, dryRun)
}

func handleApplyResult(res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		fmt.Fprintf(os.Stdout, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			code := ""
			if item.Code != diag.NoCode {
				code = fmt.Sprintf(" [%s]", item.Code.ID())
			}
			fmt.Fprintf(os.Stdout, "  %s%s: %s (%d edits, %s)\n",
				item.Path, code, item.Suggestion, item.EditCount, item.Applicability.String())
		}
	}

	if dryRun {
		for _, change := range res.FileChanges {
			if change.Diff != "" {
				fmt.Fprint(os.Stdout, change.Diff)
			}
		}
	} else if len(res.FileChanges) > 0 {
		fmt.Fprintln(os.Stdout, "Updated files:")
		for _, change := range res.FileChanges {
			fmt.Fprintf(os.Stdout, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(os.Stdout, "Skipped fixes:")
		for _, skip := range res.Skipped {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", skip.Message, skip.Reason)
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(os.Stdout, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		fmt.Fprintln(os.Stdout, "No fixes applied.")
	}
	return nil
}
