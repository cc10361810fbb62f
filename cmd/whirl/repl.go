package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adebola-io/whirl/internal/repl"
	"github.com/adebola-io/whirl/internal/standpoint"
)

func init() {
	rootCmd.AddCommand(replCmd)
}

var replCmd = &cobra.Command{
	Use:   "repl [dir]",
	Short: "Load a directory of .wrl modules and query symbols interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	sp := standpoint.New(true, "")

	if len(args) == 1 {
		dir := args[0]
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || filepath.Ext(path) != ".wrl" {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			sp.AddModule(path, string(data))
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk %s: %w", dir, err)
		}
	}

	repl.New(sp).Start(cmd.OutOrStdout())
	return nil
}
