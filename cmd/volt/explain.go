package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"volt/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Show the long-form explanation for a diagnostic code",
	Long:  "Print the extended description behind an error code, for example `volt explain TYP3308`. Bare numbers are accepted too.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().Bool("list", false, "list every code with a registered explanation")
}

func runExplain(cmd *cobra.Command, args []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("failed to get list flag: %w", err)
	}
	if list {
		for _, c := range diag.ExplainableCodes() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", c.ID(), c.Title())
		}
		return nil
	}
	if len(args) != 1 {
		return fmt.Errorf("expected a diagnostic code, for example `volt explain TYP3308`")
	}

	code, ok := diag.ParseCode(args[0])
	if !ok {
		return fmt.Errorf("%q is not a known diagnostic code", args[0])
	}
	text, ok := diag.Explain(code)
	if !ok {
		return fmt.Errorf("%s has no detailed explanation yet", code.ID())
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
