// Command whirl is the thin CLI collaborator spec.md §1 treats as external
// to the semantic core: it builds a standpoint.Standpoint over a directory
// of .wrl files and prints diagnostics, or drops into an interactive
// query session.
//
// Grounded on the teacher's cmd/ailang main (global flags, versioned root
// command) generalized to a cobra.Command tree the way the pack's
// go-dws/cmd/dwscript/cmd root+subcommand split does, since the teacher's
// own CLI is flag-based rather than cobra-based.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "whirl",
	Short:   "Whirlwind semantic core driver",
	Version: version,
	Long: `whirl parses, binds and typechecks Whirlwind (.wrl) source and reports
diagnostics from the parse, import, binding and type error families; lexer
errors are not reported.`,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("whirl version %s (built %s)\n", version, buildTime))
	rootCmd.PersistentFlags().String("workspace", "whirlwind.yaml", "path to the workspace manifest")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored diagnostic output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
