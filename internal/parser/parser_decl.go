package parser

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/token"
)

// parseStatement dispatches on the current token. isGlobal tells
// declarations that are only legal at module scope (public, use, test)
// whether to emit a scope-violation diagnostic; model/trait/enum
// declarations get no such diagnostic at any scope. Parsing
// continues regardless so downstream diagnostics still surface (spec.md
// §4.1, §7.2 PAR005-PAR008).
func (p *Parser) parseStatement(isGlobal bool) ast.Statement {
	switch p.cur.Kind {
	case token.KwModule:
		return p.parseModuleDecl()
	case token.KwUse:
		if !isGlobal {
			p.errorf(errors.PAR008, p.cur.Span, "use is only allowed at module scope")
		}
		return p.parseUseDecl()
	case token.KwPublic:
		if !isGlobal {
			p.errorf(errors.PAR005, p.cur.Span, "public is only allowed at module scope")
		}
		start := p.cur.Span
		p.advance()
		return p.withPublic(start, p.parseStatement(isGlobal))
	case token.KwAsync, token.KwFunction:
		return p.parseFunctionDecl(false)
	case token.KwType:
		return p.parseTypeAliasDecl(false)
	case token.KwModel:
		return p.parseModelDecl(false)
	case token.KwTrait:
		return p.parseTraitDecl(false)
	case token.KwEnum:
		return p.parseEnumDecl(false)
	case token.KwVar, token.KwConst:
		return p.parseVarDecl(false)
	case token.KwTest:
		if !isGlobal {
			p.errorf(errors.PAR006, p.cur.Span, "test is only allowed at module scope")
		}
		return p.parseTestDecl()
	case token.KwWhile:
		return p.parseWhileStatement()
	case token.KwReturn:
		if isGlobal {
			p.errorf(errors.PAR007, p.cur.Span, "return is only allowed inside a function")
		}
		return p.parseReturnStatement()
	default:
		return p.parseExpressionOrShorthandStatement()
	}
}

// withPublic forwards the `public` flag onto the declaration rule it
// prefixes (spec.md §4.1 "public ... forwards to the underlying rule").
func (p *Parser) withPublic(start token.Span, stmt ast.Statement) ast.Statement {
	switch d := stmt.(type) {
	case *ast.FunctionDecl:
		d.IsPublic = true
		d.Sp = token.Span{Start: start.Start, End: d.Sp.End}
	case *ast.TypeAliasDecl:
		d.IsPublic = true
	case *ast.ModelDecl:
		d.IsPublic = true
	case *ast.TraitDecl:
		d.IsPublic = true
	case *ast.EnumDecl:
		d.IsPublic = true
	case *ast.VarDecl:
		d.IsPublic = true
	}
	return stmt
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	start := p.cur.Span
	p.advance() // `module`
	name := p.cur.Literal
	if !p.curIs(token.Ident) {
		p.identifierExpected()
	} else {
		p.advance()
	}
	end := p.cur.Span
	if p.curIs(token.Semicolon) {
		p.advance()
	}
	return &ast.ModuleDecl{Name: name, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseUsePath parses `Name(.Name)*` with an optional `.{a, b.c}` tail,
// scattering the list into one UseTarget per leaf (spec.md §4.3 step 4).
func (p *Parser) parseUsePath() []*ast.UseTarget {
	start := p.cur.Span
	var segments []string
	for {
		if !p.curIs(token.Ident) {
			p.identifierExpected()
			break
		}
		segments = append(segments, p.cur.Literal)
		p.advance()
		if p.curIs(token.Dot) {
			p.advance()
			if p.curIs(token.LBrace) {
				return p.parseUseListTail(segments, start)
			}
			continue
		}
		break
	}
	if len(segments) == 0 {
		return nil
	}
	leaf := segments[len(segments)-1]
	base := segments[:len(segments)-1]
	alias := leaf
	if p.curIs(token.KwAs) {
		p.advance()
		if p.curIs(token.Ident) {
			alias = p.cur.Literal
			p.advance()
		} else {
			p.identifierExpected()
		}
	}
	return []*ast.UseTarget{{Segments: base, Leaf: leaf, Alias: alias, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}}
}

func (p *Parser) parseUseListTail(base []string, start token.Span) []*ast.UseTarget {
	p.advance() // `{`
	var out []*ast.UseTarget
	for !p.curIs(token.RBrace) && !p.atEOF() {
		sub := p.parseUsePath()
		for _, t := range sub {
			t.Segments = append(append([]string{}, base...), t.Segments...)
			out = append(out, t)
		}
		if p.curIs(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBrace)
	for _, t := range out {
		t.Sp = token.Span{Start: start.Start, End: p.prev.Span.End}
	}
	return out
}

func (p *Parser) parseUseDecl() *ast.UseDecl {
	start := p.cur.Span
	p.advance() // `use`
	var targets []*ast.UseTarget
	targets = append(targets, p.parseUsePath()...)
	end := p.cur.Span
	if p.curIs(token.Semicolon) {
		p.advance()
	}
	return &ast.UseDecl{Targets: targets, Sp: token.Span{Start: start.Start, End: end.End}}
}

func (p *Parser) parseParamList() []*ast.Param {
	p.expect(token.LParen)
	var params []*ast.Param
	for !p.curIs(token.RParen) && !p.atEOF() {
		start := p.cur.Span
		name := p.cur.Literal
		if !p.curIs(token.Ident) {
			p.identifierExpected()
		} else {
			p.advance()
		}
		optional := false
		if p.curIs(token.Question) {
			optional = true
			p.advance()
		}
		var typ ast.TypeExpr
		if p.curIs(token.Colon) {
			p.advance()
			typ = p.parseTypeExpr()
		}
		var def ast.Expr
		if p.curIs(token.Assign) {
			p.advance()
			def = p.parseExpression(PrecPseudo)
		}
		params = append(params, &ast.Param{Name: name, Type: typ, Optional: optional, Default: def, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}})
		if p.curIs(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseGenericParams() []string {
	if !p.curIs(token.Lt) {
		return nil
	}
	p.advance()
	var names []string
	for !p.curIs(token.Gt) && !p.curIs(token.Shr) && !p.atEOF() {
		if p.curIs(token.Ident) {
			names = append(names, p.cur.Literal)
			p.advance()
		} else {
			p.identifierExpected()
			break
		}
		if p.curIs(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.consumeGT()
	return names
}

func (p *Parser) parseFunctionDecl(anonymousOK bool) *ast.FunctionDecl {
	start := p.cur.Span
	doc := p.takeDoc()
	isAsync := false
	if p.curIs(token.KwAsync) {
		isAsync = true
		p.advance()
	}
	p.expect(token.KwFunction)
	name := p.cur.Literal
	if !p.curIs(token.Ident) {
		if !anonymousOK {
			p.identifierExpected()
		}
	} else {
		p.advance()
	}
	generics := p.parseGenericParams()
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.curIs(token.Arrow) {
		p.advance()
		ret = p.parseTypeExpr()
	}
	body := p.parseBlockExpr()
	fn := &ast.FunctionDecl{
		Name: name, IsAsync: isAsync, Generics: generics, Params: params,
		ReturnType: ret, Body: body, DocInfo: doc,
		Sp: token.Span{Start: start.Start, End: p.prev.Span.End},
	}
	fn.Address = p.amb.Register(&ast.Signature{Name: name, Decl: fn})
	return fn
}

func (p *Parser) parseTypeAliasDecl(isPublic bool) *ast.TypeAliasDecl {
	start := p.cur.Span
	p.advance() // `type`
	name := p.cur.Literal
	if !p.curIs(token.Ident) {
		p.identifierExpected()
	} else {
		p.advance()
	}
	generics := p.parseGenericParams()
	p.expect(token.Assign)
	val := p.parseTypeExpr()
	end := p.cur.Span
	if p.curIs(token.Semicolon) {
		p.advance()
	}
	decl := &ast.TypeAliasDecl{Name: name, IsPublic: isPublic, Generics: generics, Value: val, Sp: token.Span{Start: start.Start, End: end.End}}
	p.amb.Register(&ast.Signature{Name: name, IsPublic: isPublic, Decl: decl})
	return decl
}

func (p *Parser) parseEnumDecl(isPublic bool) *ast.EnumDecl {
	start := p.cur.Span
	p.advance() // `enum`
	name := p.cur.Literal
	if !p.curIs(token.Ident) {
		p.identifierExpected()
	} else {
		p.advance()
	}
	generics := p.parseGenericParams()
	p.expect(token.LBrace)
	var variants []*ast.EnumVariant
	for !p.curIs(token.RBrace) && !p.atEOF() {
		vStart := p.cur.Span
		vName := p.cur.Literal
		if vName == "" {
			p.errorf(errors.PAR003, p.cur.Span, "empty enum tag")
		}
		if !p.curIs(token.Ident) {
			p.identifierExpected()
		} else {
			p.advance()
		}
		var fields []ast.TypeExpr
		if p.curIs(token.LParen) {
			p.advance()
			for !p.curIs(token.RParen) && !p.atEOF() {
				fields = append(fields, p.parseTypeExpr())
				if p.curIs(token.Comma) {
					p.advance()
					continue
				}
				break
			}
			p.expect(token.RParen)
		}
		variants = append(variants, &ast.EnumVariant{Name: vName, Fields: fields, Sp: token.Span{Start: vStart.Start, End: p.prev.Span.End}})
		if p.curIs(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBrace)
	decl := &ast.EnumDecl{Name: name, IsPublic: isPublic, Generics: generics, Variants: variants, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
	p.amb.Register(&ast.Signature{Name: name, IsPublic: isPublic, Decl: decl})
	return decl
}

// parseTraitImplList parses `implements Trait1 + Trait2.Sub`; union,
// functional, `this` and invalid type expressions are rejected in this
// position (spec.md §4.1 "Trait implementations").
func (p *Parser) parseTraitImplList() []ast.TypeExpr {
	if !p.curIs(token.KwImplements) {
		return nil
	}
	p.advance()
	var out []ast.TypeExpr
	for {
		te := p.parseTypeExpr()
		switch te.(type) {
		case *ast.UnionTypeExpr, *ast.FunctionalTypeExpr, *ast.ThisTypeExpr, *ast.InvalidTypeExpr:
			p.errorf(errors.PAR009, te.Span(), "invalid trait implementation type expression")
		default:
			out = append(out, te)
		}
		if p.curIs(token.Plus) {
			p.advance()
			continue
		}
		break
	}
	return out
}

func (p *Parser) parseModelDecl(isPublic bool) *ast.ModelDecl {
	start := p.cur.Span
	p.advance() // `model`
	name := p.cur.Literal
	if !p.curIs(token.Ident) {
		p.identifierExpected()
	} else {
		p.advance()
	}
	generics := p.parseGenericParams()
	implements := p.parseTraitImplList()
	p.expect(token.LBrace)

	model := &ast.ModelDecl{Name: name, IsPublic: isPublic, Generics: generics, Implements: implements}
	p.amb.Enter(ast.ModelScope)
	for !p.curIs(token.RBrace) && !p.atEOF() {
		switch {
		case p.curIs(token.KwNew):
			ctorStart := p.cur.Span
			p.advance()
			params := p.parseParamList()
			body := p.parseBlockExpr()
			ctor := &ast.FunctionDecl{Name: "new", Params: params, Body: body, Sp: token.Span{Start: ctorStart.Start, End: p.prev.Span.End}}
			if model.New != nil {
				p.errorf(errors.PAR004, ctorStart, "duplicate constructor")
			}
			model.New = ctor
		case p.curIs(token.KwVar):
			p.advance()
			attrPublic := false
			if p.curIs(token.KwPublic) {
				attrPublic = true
				p.advance()
			}
			attrStart := p.cur.Span
			attrName := p.cur.Literal
			if !p.curIs(token.Ident) {
				p.identifierExpected()
			} else {
				p.advance()
			}
			var typ ast.TypeExpr
			if p.curIs(token.Colon) {
				p.advance()
				typ = p.parseTypeExpr()
			}
			if p.curIs(token.Semicolon) {
				p.advance()
			}
			model.Attributes = append(model.Attributes, &ast.ModelAttribute{Name: attrName, Type: typ, IsPublic: attrPublic, Sp: token.Span{Start: attrStart.Start, End: p.prev.Span.End}})
		case p.curIs(token.KwPublic), p.curIs(token.KwStatic), p.curIs(token.KwAsync), p.curIs(token.KwFunction):
			model.Methods = append(model.Methods, p.parseModelMethod())
		default:
			p.errorf(errors.PAR001, p.cur.Span, "unexpected token in model body: %v", p.cur.Kind)
			p.recover()
			if p.curIs(token.Semicolon) {
				p.advance()
			}
		}
	}
	p.amb.Leave()
	p.expect(token.RBrace)
	model.Sp = token.Span{Start: start.Start, End: p.prev.Span.End}
	p.amb.Register(&ast.Signature{Name: name, IsPublic: isPublic, Decl: model})
	return model
}

func (p *Parser) parseModelMethod() *ast.ModelMethod {
	isPublic, isStatic := false, false
	for {
		switch p.cur.Kind {
		case token.KwPublic:
			isPublic = true
			p.advance()
			continue
		case token.KwStatic:
			isStatic = true
			p.advance()
			continue
		}
		break
	}
	var traitPath []string
	isAsync := false
	start := p.cur.Span
	if p.curIs(token.KwAsync) {
		isAsync = true
		p.advance()
	}
	p.expect(token.KwFunction)
	if p.curIs(token.LBracket) {
		p.advance()
		for !p.curIs(token.RBracket) && !p.atEOF() {
			if p.curIs(token.Ident) {
				traitPath = append(traitPath, p.cur.Literal)
				p.advance()
			}
			if p.curIs(token.Dot) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBracket)
	}
	name := p.cur.Literal
	if !p.curIs(token.Ident) {
		p.identifierExpected()
	} else {
		p.advance()
	}
	generics := p.parseGenericParams()
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.curIs(token.Arrow) {
		p.advance()
		ret = p.parseTypeExpr()
	}
	body := p.parseBlockExpr()
	fn := &ast.FunctionDecl{
		Name: name, IsAsync: isAsync, IsPublic: isPublic, Generics: generics,
		Params: params, ReturnType: ret, Body: body,
		Sp: token.Span{Start: start.Start, End: p.prev.Span.End},
	}
	return &ast.ModelMethod{Function: fn, IsStatic: isStatic, TraitPath: traitPath}
}

func (p *Parser) parseTraitDecl(isPublic bool) *ast.TraitDecl {
	start := p.cur.Span
	p.advance() // `trait`
	name := p.cur.Literal
	if !p.curIs(token.Ident) {
		p.identifierExpected()
	} else {
		p.advance()
	}
	generics := p.parseGenericParams()
	p.expect(token.LBrace)
	p.amb.Enter(ast.TraitScope)
	var methods []*ast.TraitMethod
	for !p.curIs(token.RBrace) && !p.atEOF() {
		if p.curIs(token.KwPublic) {
			p.advance()
		}
		fStart := p.cur.Span
		isAsync := false
		if p.curIs(token.KwAsync) {
			isAsync = true
			p.advance()
		}
		p.expect(token.KwFunction)
		mName := p.cur.Literal
		if !p.curIs(token.Ident) {
			p.identifierExpected()
		} else {
			p.advance()
		}
		mGenerics := p.parseGenericParams()
		params := p.parseParamList()
		var ret ast.TypeExpr
		if p.curIs(token.Arrow) {
			p.advance()
			ret = p.parseTypeExpr()
		}
		var body *ast.BlockExpr
		if p.curIs(token.LBrace) {
			body = p.parseBlockExpr()
		} else if p.curIs(token.Semicolon) {
			p.advance()
		}
		sig := &ast.FunctionDecl{Name: mName, IsAsync: isAsync, Generics: mGenerics, Params: params, ReturnType: ret, Body: body, Sp: token.Span{Start: fStart.Start, End: p.prev.Span.End}}
		methods = append(methods, &ast.TraitMethod{Signature: sig, Body: body})
	}
	p.amb.Leave()
	p.expect(token.RBrace)
	decl := &ast.TraitDecl{Name: name, IsPublic: isPublic, Generics: generics, Methods: methods, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
	p.amb.Register(&ast.Signature{Name: name, IsPublic: isPublic, Decl: decl})
	return decl
}

// parsePattern parses a single destructuring pattern: an
// identifier, `{a, b as c}`, or `[a, b]` (spec.md §4.1 "Destructuring").
func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur.Span
	switch {
	case p.curIs(token.LBrace):
		p.advance()
		var fields []*ast.ObjectPatternField
		for !p.curIs(token.RBrace) && !p.atEOF() {
			fStart := p.cur.Span
			fName := p.cur.Literal
			if !p.curIs(token.Ident) {
				p.identifierExpected()
			} else {
				p.advance()
			}
			alias := fName
			if p.curIs(token.KwAs) {
				p.advance()
				if p.curIs(token.Ident) {
					alias = p.cur.Literal
					p.advance()
				}
			}
			fields = append(fields, &ast.ObjectPatternField{Name: fName, Alias: alias, Sp: token.Span{Start: fStart.Start, End: p.prev.Span.End}})
			if p.curIs(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBrace)
		return &ast.ObjectPattern{Fields: fields, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
	case p.curIs(token.LBracket):
		p.advance()
		var elems []ast.Pattern
		for !p.curIs(token.RBracket) && !p.atEOF() {
			elems = append(elems, p.parsePattern())
			if p.curIs(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RBracket)
		return &ast.ArrayPattern{Elements: elems, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
	default:
		name := p.cur.Literal
		if !p.curIs(token.Ident) {
			p.identifierExpected()
		} else {
			p.advance()
		}
		return &ast.IdentifierPattern{Name: name, Sp: start}
	}
}

func (p *Parser) parseVarDecl(isPublic bool) *ast.VarDecl {
	start := p.cur.Span
	isConst := p.curIs(token.KwConst)
	p.advance() // `var` / `const`

	var patterns []*ast.VarPattern
	patStart := p.cur.Span
	pat := p.parsePattern()
	patterns = append(patterns, &ast.VarPattern{Pattern: pat, Sp: token.Span{Start: patStart.Start, End: p.prev.Span.End}})

	var typ ast.TypeExpr
	if p.curIs(token.Colon) {
		p.advance()
		typ = p.parseTypeExpr()
	}
	var value ast.Expr
	if p.curIs(token.Assign) {
		p.advance()
		value = p.parseExpression(PrecPseudo)
	}
	end := p.cur.Span
	if p.curIs(token.Semicolon) {
		p.advance()
	}
	decl := &ast.VarDecl{IsConst: isConst, IsPublic: isPublic, Patterns: patterns, Type: typ, Value: value, Sp: token.Span{Start: start.Start, End: end.End}}
	for _, vp := range patterns {
		if ip, ok := vp.Pattern.(*ast.IdentifierPattern); ok {
			p.amb.Register(&ast.Signature{Name: ip.Name, IsPublic: isPublic, Decl: decl})
		}
	}
	return decl
}

func (p *Parser) parseTestDecl() *ast.TestDecl {
	start := p.cur.Span
	p.advance() // `test`
	name := p.cur.Literal
	if !p.curIs(token.StringLit) {
		p.errorf(errors.PAR001, p.cur.Span, "expected a string literal naming the test")
	} else {
		p.advance()
	}
	body := p.parseBlockExpr()
	return &ast.TestDecl{Name: name, Body: body, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	start := p.cur.Span
	p.advance() // `while`
	cond := p.parseExpression(PrecPseudo)
	body := p.parseBlockExpr()
	return &ast.WhileStatement{Condition: cond, Body: body, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	start := p.cur.Span
	p.advance() // `return`
	var val ast.Expr
	if !p.curIs(token.Semicolon) && !p.curIs(token.RBrace) && !p.atEOF() {
		val = p.parseExpression(PrecPseudo)
	}
	end := p.cur.Span
	if p.curIs(token.Semicolon) {
		p.advance()
	}
	return &ast.ReturnStatement{Value: val, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseExpressionOrShorthandStatement handles `name := expr;` and plain
// expression statements, distinguishing a trailing free expression (whose
// value becomes the block's value) from a semicolon-terminated one
// (spec.md §4.6 "Block").
func (p *Parser) parseExpressionOrShorthandStatement() ast.Statement {
	start := p.cur.Span
	if p.curIs(token.Ident) && p.peekIs(token.ColonAssign) {
		name := p.cur.Literal
		p.advance()
		p.advance() // `:=`
		val := p.parseExpression(PrecPseudo)
		end := p.cur.Span
		if p.curIs(token.Semicolon) {
			p.advance()
		}
		decl := &ast.ShorthandVarDecl{Name: name, Value: val, Sp: token.Span{Start: start.Start, End: end.End}}
		p.amb.Register(&ast.Signature{Name: name, Decl: decl})
		return decl
	}
	expr := p.parseExpression(PrecPseudo)
	if p.curIs(token.Semicolon) {
		p.advance()
		return &ast.ExpressionStatement{Value: expr, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
	}
	return &ast.FreeExpressionStatement{Value: expr, Sp: token.Span{Start: start.Start, End: expr.Span().End}}
}

func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start := p.cur.Span
	p.expect(token.LBrace)
	p.amb.Enter(ast.BlockScope)
	var stmts []ast.Statement
	for !p.curIs(token.RBrace) && !p.atEOF() {
		before := len(p.errs)
		stmt := p.parseStatement(false)
		if stmt == nil && len(p.errs) == before {
			p.recover()
			continue
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if len(p.errs) > before {
			p.recover()
		}
	}
	p.amb.Leave()
	p.expect(token.RBrace)
	return &ast.BlockExpr{Statements: stmts, Sp: token.Span{Start: start.Start, End: p.prev.Span.End}}
}
