package parser

import (
	"fmt"

	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/token"
)

// ParseError is one structured parse diagnostic (spec.md §7.2). Parsing
// never throws: every ParseError is appended to a Partial's error list and
// parsing continues (spec.md §4.1 "Error recovery").
type ParseError struct {
	Code    string
	Message string
	Span    token.Span
	Fix     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Span, e.Message)
}

func newParseError(code string, span token.Span, format string, args ...interface{}) *ParseError {
	return &ParseError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}

func (p *Parser) errorf(code string, span token.Span, format string, args ...interface{}) {
	p.errs = append(p.errs, newParseError(code, span, format, args...))
}

func (p *Parser) expectedToken(kind token.Kind) {
	p.errorf(errors.PAR001, p.cur.Span, "expected %v, got %v (%q)", kind, p.cur.Kind, p.cur.Literal)
}

func (p *Parser) identifierExpected() {
	p.errorf(errors.PAR002, p.cur.Span, "expected an identifier, got %q", p.cur.Literal)
}

// recover clears the precedence stack and skips tokens until a closing
// bracket, semicolon, `>` or `>>` is reached, guaranteeing forward
// progress after a statement-level parse failure (spec.md §4.1
// "Error recovery").
func (p *Parser) recover() {
	p.precStack = p.precStack[:0]
	p.shrLatch = false
	for {
		switch p.cur.Kind {
		case token.EOF, token.Semicolon, token.RParen, token.RBracket, token.RBrace,
			token.Gt, token.Shr:
			return
		}
		p.advance()
	}
}
