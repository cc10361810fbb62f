// Package diag renders Diagnostic values for a terminal: colored severity
// labels, a caret under the offending column, and an optional "did you
// mean" fix line (spec.md §4.6 Access "did you mean" suggestions).
// Grounded on the teacher's internal/repl color-function pattern
// (package-level color.New(...).SprintFunc() vars rather than formatting
// ad hoc at each call site).
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/width"

	"github.com/adebola-io/whirl/internal/errors"
)

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// phaseOf reports the severity label for a diagnostic code by its prefix.
// Every family the core emits (PAR/IMP/BND/TYP) is rendered as an error;
// there are no warning-level diagnostics in spec.md's error taxonomy.
func phaseOf(code string) string {
	switch {
	case strings.HasPrefix(code, "PAR"):
		return "parse error"
	case strings.HasPrefix(code, "IMP"):
		return "import error"
	case strings.HasPrefix(code, "BND"):
		return "binding error"
	case strings.HasPrefix(code, "TYP"):
		return "type error"
	default:
		return "error"
	}
}

// Renderer prints diagnostics against the source text they were raised
// from. useColor mirrors how the teacher's REPL decides whether to emit
// ANSI escapes: respect an explicit override, else ask the terminal.
type Renderer struct {
	Out      io.Writer
	UseColor bool
}

// NewRenderer builds a Renderer that auto-detects color support the way
// `whirl check` would when writing to a real terminal versus a pipe.
func NewRenderer(out io.Writer) *Renderer {
	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{Out: out, UseColor: useColor}
}

// Render prints one diagnostic: "path:line:col: <phase> CODE: message",
// the offending source line, and a caret under the column, accounting for
// double-width runes so the caret lands under the right glyph even when
// the line contains multi-byte identifiers.
func (r *Renderer) Render(path string, src string, d *errors.Diagnostic) {
	label := phaseOf(d.Code)
	header := fmt.Sprintf("%s:%s: %s %s: %s", path, d.Span.Start, label, d.Code, d.Message)
	if r.UseColor {
		header = fmt.Sprintf("%s:%s: %s %s: %s", bold(path), d.Span.Start, red(label), red(d.Code), d.Message)
	}
	fmt.Fprintln(r.Out, header)

	line := sourceLine(src, d.Span.Start.Line)
	if line == "" {
		return
	}
	fmt.Fprintln(r.Out, line)
	fmt.Fprintln(r.Out, caretLine(line, d.Span.Start.Column, r.UseColor))

	if d.Fix != "" {
		hint := fmt.Sprintf("  did you mean %q?", d.Fix)
		if r.UseColor {
			hint = fmt.Sprintf("  %s %s?", cyan("did you mean"), yellow(fmt.Sprintf("%q", d.Fix)))
		}
		fmt.Fprintln(r.Out, hint)
	}
}

// RenderAll renders every diagnostic in order, each preceded by a blank
// line so multi-diagnostic runs stay visually separated.
func (r *Renderer) RenderAll(path string, src string, diags []*errors.Diagnostic) {
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(r.Out)
		}
		r.Render(path, src, d)
	}
}

func sourceLine(src string, lineNo int) string {
	lines := strings.Split(src, "\n")
	if lineNo < 1 || lineNo > len(lines) {
		return ""
	}
	return lines[lineNo-1]
}

// caretLine builds the "^" marker line under column col (1-based),
// widening the indent by 2 columns for every East-Asian-wide rune that
// precedes it so the caret still lines up under narrow terminals.
func caretLine(line string, col int, useColor bool) string {
	var b strings.Builder
	runes := []rune(line)
	target := col - 1
	for i := 0; i < target && i < len(runes); i++ {
		w := 1
		if width.LookupRune(runes[i]).Kind() == width.EastAsianWide {
			w = 2
		}
		if runes[i] == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteString(strings.Repeat(" ", w))
		}
	}
	caret := "^"
	if useColor {
		caret = dim(caret)
	}
	return b.String() + caret
}
