package errors

import (
	"fmt"

	"github.com/adebola-io/whirl/internal/token"
)

// Diagnostic is the structured shape every phase past the parser reports
// through (import resolution, binding, type checking). The parser keeps
// its own ParseError for historical reasons, but all three share the same
// Code/Message/Span/Fix fields so diag rendering doesn't special-case the
// phase that produced one.
type Diagnostic struct {
	Code    string
	Message string
	Span    token.Span
	Fix     string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s at %s: %s", d.Code, d.Span, d.Message)
}

// New builds a Diagnostic, formatting Message the way fmt.Sprintf would.
func New(code string, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

// WithFix attaches a suggested fix string and returns the same diagnostic
// for chaining at the call site.
func (d *Diagnostic) WithFix(fix string) *Diagnostic {
	d.Fix = fix
	return d
}
