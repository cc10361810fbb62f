package parser

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/token"
)

// consumeGT closes a generic argument list's `>`. When two `<...<...>>`
// levels close back to back the lexer hands back a single Shr token; the
// first (inner) call latches shrLatch instead of advancing, and the second
// (outer) call consumes the Shr and clears the latch (spec.md §4.1
// "Nested generics").
func (p *Parser) consumeGT() {
	if p.shrLatch {
		p.shrLatch = false
		p.advance()
		return
	}
	if p.curIs(token.Shr) {
		p.shrLatch = true
		return
	}
	p.expect(token.Gt)
}

// parseTypeExpr parses a type expression at the top level: a union of one
// or more non-union members (spec.md §4.1 "Type expressions").
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	first := p.parseTypeExprNonUnion()
	if !p.curIs(token.Pipe) {
		return first
	}
	start := first.Span()
	members := []ast.TypeExpr{first}
	for p.curIs(token.Pipe) {
		p.advance()
		members = append(members, p.parseTypeExprNonUnion())
	}
	return &ast.UnionTypeExpr{Members: members, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
}

func (p *Parser) parseTypeExprNonUnion() ast.TypeExpr {
	base := p.parseTypeExprPrimary()
	for p.curIs(token.Dot) {
		p.advance()
		name := p.cur.Literal
		propSpan := p.cur.Span
		if !p.curIs(token.Ident) {
			p.identifierExpected()
		} else {
			p.advance()
		}
		base = &ast.MemberTypeExpr{Namespace: base, Property: name, Sp: token.Span{Start: base.Span().Start, End: propSpan.End}}
	}
	return base
}

func (p *Parser) parseTypeExprPrimary() ast.TypeExpr {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.KwThis:
		p.advance()
		return &ast.ThisTypeExpr{Sp: start}
	case token.KwFn:
		return p.parseFunctionalTypeExpr()
	case token.Ident:
		name := p.cur.Literal
		p.advance()
		var args []ast.TypeExpr
		if p.curIs(token.Lt) {
			p.advance()
			for !p.curIs(token.Gt) && !p.curIs(token.Shr) && !p.atEOF() {
				args = append(args, p.parseTypeExpr())
				if p.curIs(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			p.consumeGT()
		}
		return &ast.DiscreteTypeExpr{Name: name, Args: args, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
	default:
		msg := "expected a type expression, got " + p.cur.Kind.String()
		p.errorf(errors.PAR001, p.cur.Span, "%s", msg)
		sp := p.cur.Span
		if !p.atEOF() {
			p.advance()
		}
		return &ast.InvalidTypeExpr{Msg: msg, Sp: sp}
	}
}

func (p *Parser) parseFunctionalTypeExpr() ast.TypeExpr {
	start := p.cur.Span
	p.advance() // `fn`
	p.expect(token.LParen)
	var params []ast.TypeExpr
	for !p.curIs(token.RParen) && !p.atEOF() {
		params = append(params, p.parseTypeExpr())
		if p.curIs(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)
	var ret ast.TypeExpr
	if p.curIs(token.Arrow) {
		p.advance()
		ret = p.parseTypeExpr()
	} else {
		ret = &ast.InvalidTypeExpr{Msg: "functional type missing return type", Sp: p.cur.Span}
		p.errorf(errors.PAR001, p.cur.Span, "expected -> after fn(...) parameter list")
	}
	return &ast.FunctionalTypeExpr{Params: params, Return: ret, Sp: token.Span{Start: start.Start, End: ret.Span().End}}
}
