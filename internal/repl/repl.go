// Package repl is a small interactive driver over a live standpoint.Standpoint:
// load a module, then ask for a symbol's inferred type, its declaration
// site, or every place it's referenced — standing in for the language-
// server transport spec.md explicitly excludes, while still exercising
// get_declaration_of / find_all_references (spec.md §6).
//
// Grounded on the teacher's internal/repl: a liner-backed prompt loop with
// colon-commands and color.New(...).SprintFunc() output helpers, adapted
// from expression evaluation to type/definition queries.
package repl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/adebola-io/whirl/internal/standpoint"
	"github.com/adebola-io/whirl/internal/symboltab"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL drives queries against one standpoint.Standpoint.
type REPL struct {
	sp *standpoint.Standpoint
}

// New wraps an already-populated standpoint for interactive querying.
func New(sp *standpoint.Standpoint) *REPL { return &REPL{sp: sp} }

// Start runs the read-eval-print loop until EOF or :quit.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	fmt.Fprintf(out, "%s\n", bold("whirl repl"))
	fmt.Fprintln(out, dim("Commands: :type <symbolIndex>  :decl <symbolIndex>  :refs <symbolIndex>  :modules  :quit"))

	line.SetCompleter(func(in string) (c []string) {
		for _, cmd := range []string{":type", ":decl", ":refs", ":modules", ":quit", ":help"} {
			if strings.HasPrefix(cmd, in) {
				c = append(c, cmd)
			}
		}
		return
	})

	for {
		input, err := line.Prompt("whirl> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("goodbye"))
			return
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		r.dispatch(out, input)
	}
}

func (r *REPL) dispatch(out io.Writer, input string) {
	fields := strings.Fields(input)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case ":quit", ":q":
		os.Exit(0)
	case ":help":
		fmt.Fprintln(out, "commands: :type <idx>  :decl <idx>  :refs <idx>  :modules  :quit")
	case ":modules":
		r.listModules(out)
	case ":type":
		r.showType(out, args)
	case ":decl":
		r.showDecl(out, args)
	case ":refs":
		r.showRefs(out, args)
	default:
		fmt.Fprintf(out, "%s: unknown command %q (try :help)\n", yellow("warn"), cmd)
	}
}

func parseSymbolIndex(args []string) (symboltab.SymbolIndex, error) {
	if len(args) != 1 {
		return symboltab.Invalid, fmt.Errorf("expected exactly one symbol index")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return symboltab.Invalid, fmt.Errorf("not a symbol index: %s", args[0])
	}
	return symboltab.SymbolIndex(n), nil
}

func (r *REPL) showType(out io.Writer, args []string) {
	idx, err := parseSymbolIndex(args)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return
	}
	sym, ok := r.sp.Table().Get(idx)
	if !ok {
		fmt.Fprintf(out, "%s: no such symbol %d\n", red("error"), idx)
		return
	}
	if t, ok := sym.InferredType.(fmt.Stringer); ok {
		fmt.Fprintf(out, "%s : %s\n", cyan(sym.Name), t.String())
		return
	}
	fmt.Fprintf(out, "%s : %s\n", cyan(sym.Name), dim("(no inferred type yet)"))
}

func (r *REPL) showDecl(out io.Writer, args []string) {
	idx, err := parseSymbolIndex(args)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return
	}
	decl, ok := r.sp.GetDeclarationOf(idx)
	if !ok {
		fmt.Fprintf(out, "%s: no declaration found for symbol %d\n", red("error"), idx)
		return
	}
	fmt.Fprintf(out, "%s:%s\n", decl.Path, decl.Span.Start)
}

func (r *REPL) showRefs(out io.Writer, args []string) {
	idx, err := parseSymbolIndex(args)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("error"), err)
		return
	}
	refs := r.sp.FindAllReferences(idx)
	if len(refs) == 0 {
		fmt.Fprintln(out, dim("no references found"))
		return
	}
	for _, ref := range refs {
		fmt.Fprintf(out, "  %s:%s\n", ref.Path, ref.Position)
	}
}

func (r *REPL) listModules(out io.Writer) {
	// Standpoint doesn't expose a direct path lister beyond the graph it
	// owns, and the REPL has no command that loads modules (the host adds
	// them before Start), so this command is a placeholder reminder rather
	// than a graph walk.
	fmt.Fprintln(out, dim("use `whirl check <path>` to see diagnostics for a module, then query it here by symbol index"))
}
