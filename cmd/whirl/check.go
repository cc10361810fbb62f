package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/adebola-io/whirl/internal/config"
	"github.com/adebola-io/whirl/internal/diag"
	"github.com/adebola-io/whirl/internal/standpoint"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <dir>",
	Short: "Typecheck every .wrl file under a directory and print diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := args[0]
	workspacePath, _ := cmd.Flags().GetString("workspace")
	noColor, _ := cmd.Flags().GetBool("no-color")

	ws := config.Default()
	if manifest, err := config.Load(workspacePath); err == nil {
		ws = manifest
	}

	sp := standpoint.New(ws.ShouldResolveImports, ws.ResolveCorelibPath(filepath.Dir(workspacePath)))

	started := time.Now()

	var totalBytes int64
	moduleCount := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".wrl" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		totalBytes += int64(len(data))
		moduleCount++
		sp.AddModule(path, string(data))
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	renderer := diag.NewRenderer(cmd.OutOrStdout())
	if noColor {
		renderer.UseColor = false
	}

	errCount := 0
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".wrl" {
			return nil
		}
		diags := sp.Diagnostics(path)
		if len(diags) == 0 {
			return nil
		}
		src, _ := sp.Source(path)
		for _, e := range diags {
			if d, ok := asDiagnostic(e); ok {
				renderer.Render(path, src, d)
				errCount++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(started)
	fmt.Fprintf(cmd.OutOrStdout(), "\nchecked %d module(s), %s, in %s (%d diagnostic(s))\n",
		moduleCount, humanize.Bytes(uint64(totalBytes)), elapsed.Round(time.Millisecond), errCount)

	if errCount > 0 {
		os.Exit(1)
	}
	return nil
}
