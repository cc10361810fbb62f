package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/token"
)

func TestRenderIncludesCodeAndMessage(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, UseColor: false}

	d := errors.New(errors.TYP005, token.Span{
		Start: token.Position{Line: 2, Column: 5},
		End:   token.Position{Line: 2, Column: 10},
	}, "no such property %q", "Balance")

	r.Render("Account.wrl", "model Account {\n  account.Balance;\n}\n", d)

	out := buf.String()
	if !strings.Contains(out, "TYP005") {
		t.Fatalf("expected rendered output to contain the error code, got %q", out)
	}
	if !strings.Contains(out, "no such property") {
		t.Fatalf("expected rendered output to contain the message, got %q", out)
	}
}

func TestRenderIncludesFixSuggestion(t *testing.T) {
	var buf bytes.Buffer
	r := &Renderer{Out: &buf, UseColor: false}

	d := errors.New(errors.TYP022, token.Span{Start: token.Position{Line: 1, Column: 1}}, "misspelled name").WithFix("balance")

	r.Render("Account.wrl", "account.Balance;\n", d)

	if !strings.Contains(buf.String(), "balance") {
		t.Fatalf("expected the fix suggestion to appear in rendered output, got %q", buf.String())
	}
}

func TestCaretLineAlignsUnderAsciiColumn(t *testing.T) {
	line := caretLine("abcdef", 3, false)
	if !strings.HasPrefix(line, "  ^") {
		t.Fatalf("expected caret at column 3 to have two leading spaces, got %q", line)
	}
}
