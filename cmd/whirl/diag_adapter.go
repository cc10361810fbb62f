package main

import (
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/parser"
)

// asDiagnostic normalizes the two structurally-identical-but-distinct error
// shapes the pipeline can hand back (errors.Diagnostic from every phase
// past the parser, parser.ParseError from the parser itself) into one type
// for rendering.
func asDiagnostic(e error) (*errors.Diagnostic, bool) {
	switch v := e.(type) {
	case *errors.Diagnostic:
		return v, true
	case *parser.ParseError:
		return &errors.Diagnostic{Code: v.Code, Message: v.Message, Span: v.Span, Fix: v.Fix}, true
	default:
		return nil, false
	}
}
