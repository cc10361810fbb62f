package parser

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/token"
)

// opInfo reports the binding level of an infix/postfix operator token and
// whether it is right-associative. ok is false for tokens that never
// continue an expression (spec.md §4.1 precedence table).
func opInfo(k token.Kind) (level int, rightAssoc bool, ok bool) {
	switch k {
	case token.Dot:
		return PrecAccess, false, true
	case token.LBracket:
		return PrecIndex, false, true
	case token.LParen:
		return PrecCall, false, true
	case token.DotDot:
		return PrecRange, false, true
	case token.StarStar:
		return PrecPowerOf, true, true
	case token.Asterisk, token.Slash, token.Percent:
		return PrecMul, false, true
	case token.Plus, token.Minus:
		return PrecAdd, false, true
	case token.Shl, token.Shr:
		return PrecBitShift, false, true
	case token.Lt, token.Gt, token.Lte, token.Gte:
		return PrecOrdering, false, true
	case token.Eq, token.Neq:
		return PrecEquality, false, true
	case token.KwIs:
		return PrecIs, false, true
	case token.Ampersand, token.Pipe:
		return PrecBitLogic, false, true
	case token.AmpAmp, token.PipePipe, token.KwAnd, token.KwOr:
		return PrecLogic, false, true
	case token.Assign, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq:
		return PrecAssignment, true, true
	case token.Question, token.Bang:
		return PrecUnary, false, true
	}
	return 0, false, false
}

// parseExpression climbs the precedence table: spec.md §4.1 defines lowest
// number as tightest-binding, so the loop keeps consuming operators whose
// level is strictly below ceiling. Left-associative operators recurse with
// rhsCeiling = level (blocking same-level re-binding on the right); right-
// associative operators recurse with rhsCeiling = level + 1.
func (p *Parser) parseExpression(ceiling int) ast.Expr {
	left := p.parsePrefix()
	for {
		level, rightAssoc, ok := opInfo(p.cur.Kind)
		if !ok || level >= ceiling {
			break
		}
		left = p.parseInfix(left, level, rightAssoc)
	}
	return left
}

func (p *Parser) parseInfix(left ast.Expr, level int, rightAssoc bool) ast.Expr {
	switch p.cur.Kind {
	case token.Dot:
		return p.parseAccess(left)
	case token.LBracket:
		return p.parseIndex(left)
	case token.LParen:
		return p.parseCall(left, nil)
	case token.Question, token.Bang:
		op := p.cur.Literal
		if op == "" {
			op = p.cur.Kind.String()
		}
		sp := p.cur.Span
		p.advance()
		return &ast.UpdateExpr{Op: op, Operand: left, Sp: token.Span{Start: left.Span().Start, End: sp.End}}
	case token.KwIs:
		p.advance()
		typ := p.parseTypeExpr()
		return &ast.TypeTestExpr{Operand: left, Type: typ, Sp: token.Span{Start: left.Span().Start, End: p.prev.Span.End}}
	}

	opTok := p.cur
	opStr := opSymbol(opTok)
	rhsCeiling := level
	if rightAssoc {
		rhsCeiling = level + 1
	}
	p.advance()
	right := p.parseExpression(rhsCeiling)
	sp := token.Span{Start: left.Span().Start, End: right.Span().End}

	switch opTok.Kind {
	case token.AmpAmp, token.PipePipe, token.KwAnd, token.KwOr:
		return &ast.LogicExpr{Left: left, Op: opStr, Right: right, Sp: sp}
	case token.Assign, token.PlusEq, token.MinusEq, token.StarEq, token.SlashEq:
		return &ast.AssignmentExpr{Target: left, Op: opStr, Value: right, Sp: sp}
	default:
		return &ast.BinaryExpr{Left: left, Op: opStr, Right: right, Sp: sp}
	}
}

// opSymbol renders a token as the operator text an AST node should carry;
// keyword operators (and/or/is) don't appear in token.Kind's String table.
func opSymbol(t token.Token) string {
	switch t.Kind {
	case token.KwAnd:
		return "and"
	case token.KwOr:
		return "or"
	case token.KwIs:
		return "is"
	default:
		return t.Kind.String()
	}
}

func (p *Parser) parseAccess(left ast.Expr) ast.Expr {
	start := p.cur.Span
	p.advance() // `.`
	name := p.cur.Literal
	propSpan := p.cur.Span
	if !p.curIs(token.Ident) {
		p.identifierExpected()
	} else {
		p.advance()
	}
	_ = start
	return &ast.AccessExpr{Object: left, Property: name, PropSpan: propSpan, Sp: token.Span{Start: left.Span().Start, End: p.prev.Span.End}}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	p.advance() // `[`
	p.pushCeiling(PrecPseudo)
	idx := p.parseExpression(PrecPseudo)
	p.popCeiling()
	p.expect(token.RBracket)
	return &ast.IndexExpr{Object: left, Index: idx, Sp: token.Span{Start: left.Span().Start, End: p.prev.Span.End}}
}

func (p *Parser) parseCall(left ast.Expr, generics []ast.TypeExpr) ast.Expr {
	p.advance() // `(`
	p.pushCeiling(PrecPseudo)
	var args []ast.Expr
	for !p.curIs(token.RParen) && !p.atEOF() {
		args = append(args, p.parseExpression(PrecPseudo))
		if p.curIs(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.popCeiling()
	p.expect(token.RParen)
	return &ast.CallExpr{Func: left, GenericArgs: generics, Args: args, Sp: token.Span{Start: left.Span().Start, End: p.prev.Span.End}}
}

// parsePrefix parses a primary expression together with any prefix
// operators, then lets parseExpression's loop attach postfix/infix chains.
func (p *Parser) parsePrefix() ast.Expr {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.Ident:
		name := p.cur.Literal
		p.advance()
		return &ast.Identifier{Name: name, Sp: start}
	case token.StringLit:
		v := p.cur.Literal
		p.advance()
		return &ast.StringLiteral{Value: v, Sp: start}
	case token.NumberLit:
		v := p.cur.Literal
		p.advance()
		return &ast.NumberLiteral{Raw: v, Sp: start}
	case token.KwTrue:
		p.advance()
		return &ast.BoolLiteral{Value: true, Sp: start}
	case token.KwFalse:
		p.advance()
		return &ast.BoolLiteral{Value: false, Sp: start}
	case token.KwThis:
		p.advance()
		return &ast.ThisExpr{Sp: start}
	case token.KwNew:
		return p.parseNewExpr()
	case token.LParen:
		p.advance()
		p.pushCeiling(PrecPseudo)
		inner := p.parseExpression(PrecPseudo)
		p.popCeiling()
		p.expect(token.RParen)
		return inner
	case token.LBracket:
		return p.parseArrayExpr()
	case token.KwIf:
		return p.parseIfExpr()
	case token.KwFn, token.KwAsync:
		return p.parseFunctionExpr()
	case token.LBrace:
		return p.parseBlockExpr()
	case token.Bang, token.KwNot:
		op := p.cur.Kind.String()
		if p.cur.Kind == token.KwNot {
			op = "not"
		}
		p.advance()
		operand := p.parseExpression(PrecUnary)
		return &ast.UnaryExpr{Op: op, Operand: operand, Sp: token.Span{Start: start.Start, End: operand.Span().End}}
	case token.Minus:
		p.advance()
		operand := p.parseExpression(PrecNegation)
		return &ast.UnaryExpr{Op: "-", Operand: operand, Sp: token.Span{Start: start.Start, End: operand.Span().End}}
	case token.Ampersand, token.Asterisk:
		op := p.cur.Kind.String()
		p.advance()
		operand := p.parseExpression(PrecUnary)
		return &ast.UnaryExpr{Op: op, Operand: operand, Sp: token.Span{Start: start.Start, End: operand.Span().End}}
	default:
		msg := "unexpected token in expression: " + p.cur.Kind.String()
		p.errorf(errors.PAR001, p.cur.Span, "%s", msg)
		errExpr := &ast.ErrorExpr{Msg: msg, Sp: p.cur.Span}
		if !p.atEOF() {
			p.advance()
		}
		return errExpr
	}
}

// parseNewExpr requires the callee be a parenthesised call (spec.md §4.6
// "New"); `new Ident` without args is rewritten to an invalid node with a
// fix suggestion rather than aborting the parse.
func (p *Parser) parseNewExpr() ast.Expr {
	start := p.cur.Span
	p.advance() // `new`
	target := p.parseExpression(PrecNew)
	call, ok := target.(*ast.CallExpr)
	if !ok {
		p.errorf(errors.PAR001, target.Span(), "expected a constructor call after `new`")
		return &ast.NewExpr{Call: &ast.CallExpr{Func: target, Sp: target.Span()}, Invalid: true, Sp: token.Span{Start: start.Start, End: target.Span().End}}
	}
	return &ast.NewExpr{Call: call, Sp: token.Span{Start: start.Start, End: call.Sp.End}}
}

func (p *Parser) parseArrayExpr() ast.Expr {
	start := p.cur.Span
	p.advance() // `[`
	p.pushCeiling(PrecPseudo)
	var elems []ast.Expr
	for !p.curIs(token.RBracket) && !p.atEOF() {
		elems = append(elems, p.parseExpression(PrecPseudo))
		if p.curIs(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.popCeiling()
	p.expect(token.RBracket)
	return &ast.ArrayExpr{Elements: elems, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur.Span
	p.advance() // `if`
	p.pushCeiling(PrecPseudo)
	cond := p.parseExpression(PrecPseudo)
	p.popCeiling()
	then := p.parseBlockExpr()
	ifExpr := &ast.IfExpr{Condition: cond, Then: then, Sp: token.Span{Start: start.Start, End: then.Sp.End}}
	if p.curIs(token.KwElse) {
		p.advance()
		if p.curIs(token.KwIf) {
			elseIf := p.parseIfExpr()
			ifExpr.Else = elseIf
			ifExpr.Sp.End = elseIf.Span().End
		} else {
			elseBlock := p.parseBlockExpr()
			ifExpr.Else = elseBlock
			ifExpr.Sp.End = elseBlock.Sp.End
		}
	}
	return ifExpr
}

func (p *Parser) parseFunctionExpr() ast.Expr {
	start := p.cur.Span
	isAsync := false
	if p.curIs(token.KwAsync) {
		isAsync = true
		p.advance()
	}
	p.expect(token.KwFn)
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.curIs(token.Arrow) {
		p.advance()
		ret = p.parseTypeExpr()
	}
	var body ast.Expr
	if p.curIs(token.LBrace) {
		body = p.parseBlockExpr()
	} else {
		body = p.parseExpression(PrecAssignment)
	}
	return &ast.FunctionExpr{IsAsync: isAsync, Params: params, ReturnType: ret, Body: body, Sp: token.Span{Start: start.Start, End: body.Span().End}}
}
