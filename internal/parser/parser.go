// Package parser implements the Whirlwind recursive-descent parser
// (spec.md §4.1): it turns a token iterator into an untyped AST, never
// throwing — every declaration produces a Partial{Value, Errors} so
// analysis can continue past a syntax error.
package parser

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/token"
)

// TokenSource is the external lexer collaborator (spec.md §6 "Lexer
// interface"): anything that can hand the parser one token at a time.
type TokenSource interface {
	NextToken() token.Token
}

// Partial is a value/error pair, not a sum type: parsing always returns
// both a (possibly nil) value and whatever errors were raised producing
// it (spec.md §9 "Parser's Partial<T,E>").
type Partial struct {
	Value  ast.Statement
	Errors []error
}

// Precedence levels from spec.md §4.1, lowest number binds tightest.
const (
	PrecAccess     = 1
	PrecIndex      = 2
	PrecCall       = 3
	PrecNew        = 4
	PrecNegation   = 5
	PrecUnary      = 6
	PrecRange      = 7
	PrecPowerOf    = 8
	PrecMul        = 9
	PrecAdd        = 10
	PrecBitShift   = 11
	PrecOrdering   = 12
	PrecEquality   = 13
	PrecIs         = 14
	PrecBitLogic   = 15
	PrecLogic      = 16
	PrecAssignment = 17
	PrecTypeUnion  = 18
	PrecPseudo     = 99 // sentinel: reset ceiling when entering call/index arguments
)

// Parser holds a three-token lookahead window (previous/current/peek), a
// doc-comment side buffer, and the ambience built alongside the AST.
type Parser struct {
	lex TokenSource

	prev token.Token
	cur  token.Token
	peek token.Token

	pendingDoc string // buffered `///` comments awaiting the next declaration

	precStack []int // cleared on error recovery (spec.md §4.1)
	shrLatch  bool  // nested-generics `>>` ambiguity latch (spec.md §4.1)

	amb      *ast.Ambience
	moduleID int

	errs []error
}

// New creates a Parser over lex, tagged with moduleID for ScopeAddresses.
func New(lex TokenSource, moduleID int) *Parser {
	p := &Parser{lex: lex, moduleID: moduleID, amb: ast.NewAmbience(moduleID)}
	p.advance()
	p.advance()
	return p
}

// Ambience returns the scope tree built during parsing.
func (p *Parser) Ambience() *ast.Ambience { return p.amb }

func (p *Parser) advance() {
	p.prev = p.cur
	p.cur = p.peek
	for {
		p.peek = p.lex.NextToken()
		if p.peek.Kind == token.Comment {
			continue
		}
		if p.peek.Kind == token.DocComment {
			if p.pendingDoc != "" {
				p.pendingDoc += "\n"
			}
			p.pendingDoc += p.peek.Literal
			continue
		}
		break
	}
}

func (p *Parser) takeDoc() string {
	d := p.pendingDoc
	p.pendingDoc = ""
	return d
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

// expect advances past the current token if it matches k, else records a
// PAR001 and leaves the cursor in place so recovery can take over.
func (p *Parser) expect(k token.Kind) bool {
	if p.curIs(k) {
		p.advance()
		return true
	}
	p.expectedToken(k)
	return false
}

func (p *Parser) atEOF() bool { return p.cur.Kind == token.EOF }

// pushCeiling/popCeiling implement the precedence stack spec.md §4.1
// describes; entering call/index argument parsing pushes PrecPseudo so a
// looser enclosing operator cannot "reach into" an argument.
func (p *Parser) pushCeiling(c int) { p.precStack = append(p.precStack, c) }
func (p *Parser) popCeiling() {
	if len(p.precStack) > 0 {
		p.precStack = p.precStack[:len(p.precStack)-1]
	}
}

// Next parses one top-level statement, returning (Partial, true), or
// (Partial{}, false) once EOF is reached. Parsing is total: every call
// either advances the cursor or returns false, so the iterator always
// terminates (spec.md §8 "Parsing is total").
func (p *Parser) Next() (Partial, bool) {
	for p.curIs(token.Semicolon) {
		p.advance()
	}
	if p.atEOF() {
		return Partial{}, false
	}
	before := len(p.errs)
	stmt := p.parseStatement(true)
	part := Partial{Value: stmt, Errors: append([]error(nil), p.errs[before:]...)}
	return part, true
}

// ParseModule drains the whole token stream into a Module AST plus the
// accumulated parse errors, deriving the expected module name from path.
func ParseModule(lex TokenSource, moduleID int, path string) (*ast.Module, []error) {
	mod, _, errs := ParseModuleWithAmbience(lex, moduleID, path)
	return mod, errs
}

// ParseModuleWithAmbience is ParseModule plus the scope tree the parser
// built alongside the AST; the binder needs this to rebuild its own scope
// chain without re-walking the tree (spec.md §4.2 "Scope chain").
func ParseModuleWithAmbience(lex TokenSource, moduleID int, path string) (*ast.Module, *ast.Ambience, []error) {
	p := New(lex, moduleID)
	mod := &ast.Module{Path: path}
	start := p.cur.Span
	for {
		part, ok := p.Next()
		if !ok {
			break
		}
		if part.Value == nil {
			continue
		}
		if md, isMod := part.Value.(*ast.ModuleDecl); isMod {
			mod.ModuleDecl = md
			continue
		}
		mod.Statements = append(mod.Statements, part.Value)
	}
	mod.Sp = token.Span{Start: start.Start, End: p.cur.Span.End}
	return mod, p.amb, p.errs
}
