package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adebola-io/whirl/internal/standpoint"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <path>",
	Short: "Re-analyze one module's source text and print its diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	sp := standpoint.New(true, "")
	sp.AddModule(path, string(data))
	sp.RefreshModuleWithText(path, string(data))

	diags := sp.Diagnostics(path)
	if len(diags) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no diagnostics\n", path)
		return nil
	}
	for _, e := range diags {
		if d, ok := asDiagnostic(e); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s: %s: %s\n", path, d.Span.Start, d.Code, d.Message)
		}
	}
	return nil
}
