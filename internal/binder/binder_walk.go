package binder

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/symboltab"
)

// walkStatement resolves identifier uses inside one statement and, for
// local declarations, records a fresh symbol so later statements in the
// same scope can see it (spec.md §4.2 "local scope chain").
func (b *binder) walkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionDecl:
		b.walkFunction(s, nil)
	case *ast.ModelDecl:
		b.walkModel(s)
	case *ast.TraitDecl:
		for _, m := range s.Methods {
			if m.Body != nil {
				b.walkFunction(m.Signature, nil)
			}
		}
	case *ast.EnumDecl, *ast.TypeAliasDecl, *ast.UseDecl:
		// nothing to resolve inside these; the checker lowers their type
		// expressions to IntermediateType when it evaluates them (see
		// check.evalType).
	case *ast.VarDecl:
		if s.Value != nil {
			b.walkExpr(s.Value)
		}
		for _, vp := range s.Patterns {
			for name, span := range patternLeaves(vp.Pattern) {
				idx, ok := b.resolve(name)
				if !ok {
					kind := symboltab.KindVariable
					if s.IsConst {
						kind = symboltab.KindConstant
					}
					idx = b.add(&symboltab.SemanticSymbol{Name: name, Kind: kind, OriginSpan: span, Decl: s})
				}
				b.declare(name, idx)
			}
		}
	case *ast.ShorthandVarDecl:
		b.walkExpr(s.Value)
		idx, ok := b.resolve(s.Name)
		if !ok {
			idx = b.add(&symboltab.SemanticSymbol{Name: s.Name, Kind: symboltab.KindVariable, OriginSpan: s.Sp, Decl: s})
		}
		b.declare(s.Name, idx)
	case *ast.TestDecl:
		b.pushScope()
		b.walkBlockBody(s.Body)
		b.popScope()
	case *ast.WhileStatement:
		b.walkExpr(s.Condition)
		b.pushScope()
		b.walkBlockBody(s.Body)
		b.popScope()
	case *ast.ReturnStatement:
		if s.Value != nil {
			b.walkExpr(s.Value)
		}
	case *ast.ExpressionStatement:
		b.walkExpr(s.Value)
	case *ast.FreeExpressionStatement:
		b.walkExpr(s.Value)
	}
}

// walkFunction pushes one scope for params plus the body; receiver is
// non-nil for a model method so `this` resolves inside it.
func (b *binder) walkFunction(fn *ast.FunctionDecl, receiver *thisFrame) {
	if fn == nil || fn.Body == nil {
		return
	}
	b.pushScope()
	if receiver != nil {
		b.thisStack = append(b.thisStack, *receiver)
	}
	for _, p := range fn.Params {
		idx := b.add(&symboltab.SemanticSymbol{Name: p.Name, Kind: symboltab.KindParameter, OriginSpan: p.Sp, Decl: fn})
		b.declare(p.Name, idx)
		if p.Default != nil {
			b.walkExpr(p.Default)
		}
	}
	b.walkBlockBody(fn.Body)
	if receiver != nil {
		b.thisStack = b.thisStack[:len(b.thisStack)-1]
	}
	b.popScope()
}

func (b *binder) walkModel(d *ast.ModelDecl) {
	frame := thisFrame{name: d.Name, symbol: symboltab.Invalid}
	if idx, ok := b.resolve(d.Name); ok {
		frame.symbol = idx
	}
	if d.New != nil {
		b.walkFunction(d.New, &frame)
	}
	for _, m := range d.Methods {
		b.walkFunction(m.Function, &frame)
	}
}

// walkBlockBody walks a block's statements without pushing its own scope;
// callers that need an extra scope layer (function body, loop body) push
// one first so parameters/loop state live one level out from locals
// declared inside the block.
func (b *binder) walkBlockBody(block *ast.BlockExpr) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		b.walkStatement(stmt)
	}
}

func (b *binder) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BoolLiteral, *ast.ErrorExpr:
		return
	case *ast.Identifier:
		idx, ok := b.resolve(x.Name)
		if !ok {
			b.errorf(errors.BND001, x.Sp, "unresolved identifier %q", x.Name)
			return
		}
		b.tab.AddReference(idx, b.path, x.Sp.Start)
	case *ast.ThisExpr:
		return
	case *ast.NewExpr:
		b.walkExpr(x.Call)
	case *ast.CallExpr:
		b.walkExpr(x.Func)
		for _, a := range x.Args {
			b.walkExpr(a)
		}
	case *ast.FunctionExpr:
		b.pushScope()
		for _, p := range x.Params {
			idx := b.add(&symboltab.SemanticSymbol{Name: p.Name, Kind: symboltab.KindParameter, OriginSpan: p.Sp})
			b.declare(p.Name, idx)
		}
		switch body := x.Body.(type) {
		case *ast.BlockExpr:
			b.walkBlockBody(body)
		default:
			b.walkExpr(body)
		}
		b.popScope()
	case *ast.IfExpr:
		b.walkExpr(x.Condition)
		b.pushScope()
		b.walkBlockBody(x.Then)
		b.popScope()
		switch els := x.Else.(type) {
		case *ast.BlockExpr:
			b.pushScope()
			b.walkBlockBody(els)
			b.popScope()
		case *ast.IfExpr:
			b.walkExpr(els)
		}
	case *ast.ArrayExpr:
		for _, el := range x.Elements {
			b.walkExpr(el)
		}
	case *ast.AccessExpr:
		b.walkExpr(x.Object)
	case *ast.IndexExpr:
		b.walkExpr(x.Object)
		b.walkExpr(x.Index)
	case *ast.BinaryExpr:
		b.walkExpr(x.Left)
		b.walkExpr(x.Right)
	case *ast.LogicExpr:
		b.walkExpr(x.Left)
		b.walkExpr(x.Right)
	case *ast.AssignmentExpr:
		b.walkExpr(x.Target)
		b.walkExpr(x.Value)
	case *ast.UnaryExpr:
		b.walkExpr(x.Operand)
	case *ast.UpdateExpr:
		b.walkExpr(x.Operand)
	case *ast.TypeTestExpr:
		b.walkExpr(x.Operand)
	case *ast.BlockExpr:
		b.pushScope()
		b.walkBlockBody(x)
		b.popScope()
	}
}
