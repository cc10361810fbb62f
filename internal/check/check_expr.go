package check

import (
	"strings"

	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/token"
	"github.com/adebola-io/whirl/internal/typeeval"
	"github.com/adebola-io/whirl/internal/unify"
)

// checkBlock typechecks every statement in block in order and returns the
// block's value: the type of its last free expression or return statement,
// or Void if it ends on anything else (spec.md §4.6 "Block").
func (c *Checker) checkBlock(block *ast.BlockExpr) typeeval.EvaluatedType {
	if block == nil {
		return typeeval.Void{}
	}
	var last typeeval.EvaluatedType = typeeval.Void{}
	for _, stmt := range block.Statements {
		if t, ok := c.checkBlockStatement(stmt); ok {
			last = t
		}
	}
	return last
}

// checkBlockStatement typechecks one statement and, for a
// FreeExpressionStatement or ReturnStatement, reports the value it
// contributes to the enclosing block.
func (c *Checker) checkBlockStatement(stmt ast.Statement) (typeeval.EvaluatedType, bool) {
	switch s := stmt.(type) {
	case *ast.FunctionDecl:
		c.checkFunction(s, nil)
	case *ast.ModelDecl:
		c.checkModel(s)
	case *ast.TraitDecl, *ast.EnumDecl, *ast.TypeAliasDecl, *ast.UseDecl:
		// nested type declarations carry no block value.
	case *ast.VarDecl:
		c.checkVarDecl(s)
	case *ast.ShorthandVarDecl:
		c.checkShorthandVarDecl(s)
	case *ast.TestDecl:
		c.checkTopLevel(s)
	case *ast.WhileStatement:
		cond := c.checkExpr(s.Condition)
		c.expectBool(s.Condition.Span(), cond, "while condition")
		c.pushValueScope()
		c.checkBlock(s.Body)
		c.popValueScope()
	case *ast.ReturnStatement:
		var t typeeval.EvaluatedType = typeeval.Void{}
		if s.Value != nil {
			t = c.checkExpr(s.Value)
		}
		if fc, ok := c.currentFunc(); ok {
			if _, errs := unify.Unify(fc.ReturnType, t, c.Tab, unify.Return, nil); len(errs) > 0 {
				c.errorf(errors.TYP001, s.Sp, "return value of type %s does not match declared return type %s", t, fc.ReturnType)
			}
		}
		return t, true
	case *ast.ExpressionStatement:
		c.checkExpr(s.Value)
	case *ast.FreeExpressionStatement:
		return c.checkExpr(s.Value), true
	}
	return nil, false
}

func (c *Checker) expectBool(sp token.Span, t typeeval.EvaluatedType, where string) {
	b, ok := c.Intrinsics.get("Bool")
	if !ok {
		c.errorf(errors.TYP020, sp, "missing intrinsic Bool in corelib")
		return
	}
	if _, errs := unify.Unify(b, t, c.Tab, unify.None, nil); len(errs) > 0 {
		c.errorf(errors.TYP002, sp, "%s must be Bool, got %s", where, t)
	}
}

// checkExpr typechecks e and returns its EvaluatedType, never failing: an
// unrecognized or erroring expression degrades to Unknown (spec.md §4.6).
func (c *Checker) checkExpr(e ast.Expr) typeeval.EvaluatedType {
	if e == nil {
		return typeeval.Void{}
	}
	switch x := e.(type) {
	case *ast.StringLiteral:
		return c.intrinsic(x.Sp, "String")
	case *ast.NumberLiteral:
		if strings.Contains(x.Raw, ".") {
			return c.intrinsic(x.Sp, "Float")
		}
		return c.intrinsic(x.Sp, "Int")
	case *ast.BoolLiteral:
		return c.intrinsic(x.Sp, "Bool")
	case *ast.ErrorExpr:
		return typeeval.Unknown{}
	case *ast.Identifier:
		idx, ok := c.resolveValue(x.Name)
		if !ok {
			return typeeval.Unknown{}
		}
		return c.identifierType(idx)
	case *ast.ThisExpr:
		if t, ok := c.currentThis(); ok {
			return t
		}
		return typeeval.Unknown{}
	case *ast.ArrayExpr:
		return c.checkArray(x)
	case *ast.NewExpr:
		return c.checkNew(x)
	case *ast.CallExpr:
		return c.checkCall(x)
	case *ast.FunctionExpr:
		return c.checkFunctionExpr(x)
	case *ast.IfExpr:
		return c.checkIf(x)
	case *ast.AccessExpr:
		return c.checkAccess(x)
	case *ast.IndexExpr:
		return c.checkIndex(x)
	case *ast.BinaryExpr:
		return c.checkBinary(x)
	case *ast.LogicExpr:
		l := c.checkExpr(x.Left)
		r := c.checkExpr(x.Right)
		c.expectBool(x.Left.Span(), l, "left operand of "+x.Op)
		c.expectBool(x.Right.Span(), r, "right operand of "+x.Op)
		return c.intrinsic(x.Sp, "Bool")
	case *ast.AssignmentExpr:
		return c.checkAssignment(x)
	case *ast.UnaryExpr:
		return c.checkUnary(x)
	case *ast.UpdateExpr:
		return c.checkUpdate(x)
	case *ast.TypeTestExpr:
		c.checkExpr(x.Operand)
		return c.intrinsic(x.Sp, "Bool")
	case *ast.BlockExpr:
		c.pushValueScope()
		defer c.popValueScope()
		return c.checkBlock(x)
	default:
		return typeeval.Unknown{}
	}
}

// intrinsic resolves a corelib name through Intrinsics, degrading to
// Unknown plus TYP020 when the corelib doesn't define it (spec.md §7
// "a missing corelib degrades intrinsics to Unknown").
func (c *Checker) intrinsic(sp token.Span, name string) typeeval.EvaluatedType {
	t, ok := c.Intrinsics.get(name)
	if !ok {
		c.errorf(errors.TYP020, sp, "missing intrinsic %s in corelib", name)
		return typeeval.Unknown{}
	}
	return t
}

func (c *Checker) checkArray(x *ast.ArrayExpr) typeeval.EvaluatedType {
	elems := make([]typeeval.EvaluatedType, len(x.Elements))
	for i, el := range x.Elements {
		elems[i] = c.checkExpr(el)
	}
	array, ok := c.Intrinsics.get("Array")
	if !ok {
		c.errorf(errors.TYP020, x.Sp, "missing intrinsic Array in corelib")
		return typeeval.Unknown{}
	}
	var elemType typeeval.EvaluatedType = typeeval.Unknown{}
	if len(elems) > 0 {
		elemType = elems[0]
		for i := 1; i < len(elems); i++ {
			if _, errs := unify.Unify(elemType, elems[i], c.Tab, unify.AnyNever, nil); len(errs) > 0 {
				c.errorf(errors.TYP006, x.Elements[i].Span(), "array elements must share one type, found %s and %s", elemType, elems[i])
			}
		}
	}
	if mi, ok := array.(typeeval.ModelInstance); ok {
		return typeeval.ModelInstance{Model: mi.Model, ModelName: mi.ModelName, Args: []typeeval.GenericArg{{Type: elemType}}}
	}
	return array
}

func (c *Checker) checkIf(x *ast.IfExpr) typeeval.EvaluatedType {
	cond := c.checkExpr(x.Condition)
	c.expectBool(x.Condition.Span(), cond, "if condition")
	c.pushValueScope()
	thenType := c.checkBlock(x.Then)
	c.popValueScope()
	if x.Else == nil {
		return typeeval.Partial{Branches: []typeeval.EvaluatedType{thenType, typeeval.Void{}}}
	}
	var elseType typeeval.EvaluatedType
	switch els := x.Else.(type) {
	case *ast.BlockExpr:
		c.pushValueScope()
		elseType = c.checkBlock(els)
		c.popValueScope()
	case *ast.IfExpr:
		elseType = c.checkIf(els)
	default:
		elseType = typeeval.Unknown{}
	}
	unified, errs := unify.Unify(thenType, elseType, c.Tab, unify.AnyNever, nil)
	if len(errs) > 0 {
		return typeeval.Partial{Branches: []typeeval.EvaluatedType{thenType, elseType}}
	}
	return unified
}

// checkBinary typechecks an arithmetic/comparison operator. Whirlwind has
// no operator-overload trait in this corelib surface, so both operands
// must already agree; the left operand's type is the result (spec.md §4.6
// lists only Logic's Bool-both-sides rule explicitly, not Binary, so
// arithmetic falls back to plain unification of the two operand types).
func (c *Checker) checkBinary(x *ast.BinaryExpr) typeeval.EvaluatedType {
	l := c.checkExpr(x.Left)
	r := c.checkExpr(x.Right)
	if _, errs := unify.Unify(l, r, c.Tab, unify.AnyNever, nil); len(errs) > 0 {
		c.errorf(errors.TYP001, x.Sp, "mismatched operand types %s and %s for %q", l, r, x.Op)
	}
	switch x.Op {
	case "==", "!=", "<", ">", "<=", ">=":
		return c.intrinsic(x.Sp, "Bool")
	default:
		return l
	}
}

func (c *Checker) checkIndex(x *ast.IndexExpr) typeeval.EvaluatedType {
	obj := c.checkExpr(x.Object)
	c.checkExpr(x.Index)
	mi, ok := obj.(typeeval.ModelInstance)
	array, hasArray := c.Intrinsics.get("Array")
	arrayModel, _ := array.(typeeval.ModelInstance)
	if !ok || !hasArray || mi.Model != arrayModel.Model {
		c.errorf(errors.TYP003, x.Sp, "cannot index into %s, expected an Array", obj)
		return typeeval.Unknown{}
	}
	if len(mi.Args) > 0 {
		return mi.Args[0].Type
	}
	return typeeval.Unknown{}
}

func (c *Checker) checkAssignment(x *ast.AssignmentExpr) typeeval.EvaluatedType {
	switch x.Target.(type) {
	case *ast.Identifier, *ast.AccessExpr, *ast.IndexExpr:
	default:
		c.errorf(errors.TYP004, x.Sp, "invalid assignment target %s", x.Target)
		return typeeval.Void{}
	}
	targetType := c.checkExpr(x.Target)
	valueType := c.checkExpr(x.Value)
	if _, ok := targetType.(typeeval.Borrowed); ok {
		c.errorf(errors.TYP019, x.Sp, "cannot assign through a borrowed reference")
	}
	if _, errs := unify.Unify(targetType, valueType, c.Tab, unify.Conform, nil); len(errs) > 0 {
		c.errorf(errors.TYP001, x.Sp, "cannot assign value of type %s to target of type %s", valueType, targetType)
	}
	if id, ok := x.Target.(*ast.Identifier); ok {
		if idx, found := c.resolveValue(id.Name); found {
			c.setType(idx, valueType)
		}
	}
	return typeeval.Void{}
}

func (c *Checker) checkUnary(x *ast.UnaryExpr) typeeval.EvaluatedType {
	operand := c.checkExpr(x.Operand)
	switch x.Op {
	case "!", "not":
		c.expectBool(x.Sp, operand, "operand of "+x.Op)
		return c.intrinsic(x.Sp, "Bool")
	case "&":
		return typeeval.Borrowed{Base: operand}
	case "*":
		if b, ok := operand.(typeeval.Borrowed); ok {
			return b.Base
		}
		return operand
	case "-":
		return operand
	default:
		return typeeval.Unknown{}
	}
}

func (c *Checker) checkUpdate(x *ast.UpdateExpr) typeeval.EvaluatedType {
	operand := c.checkExpr(x.Operand)
	switch x.Op {
	case "?":
		trait, ok := operand.(typeeval.TraitInstance)
		if !ok || trait.TraitName != "Try" || len(trait.Args) == 0 {
			c.errorf(errors.TYP010, x.Sp, "`?` requires a Try value, found %s", operand)
			return typeeval.Unknown{}
		}
		return trait.Args[0].Type
	case "!":
		trait, ok := operand.(typeeval.TraitInstance)
		if !ok || trait.TraitName != "Guaranteed" || len(trait.Args) == 0 {
			c.errorf(errors.TYP009, x.Sp, "`!` requires a Guaranteed value, found %s", operand)
			return typeeval.Unknown{}
		}
		return trait.Args[0].Type
	default:
		return typeeval.Unknown{}
	}
}

func (c *Checker) checkFunctionExpr(x *ast.FunctionExpr) typeeval.EvaluatedType {
	generics := c.genericSymbols(x, nil)
	params := make([]typeeval.EvaluatedType, len(x.Params))
	c.pushValueScope()
	for i, p := range x.Params {
		pt := c.evalType(p.Type, generics, nil)
		idx := c.Tab.Add(&symboltab.SemanticSymbol{Name: p.Name, Kind: symboltab.KindParameter, OriginSpan: p.Sp})
		c.setType(idx, pt)
		c.declareValue(p.Name, idx)
		params[i] = pt
	}
	hasDeclaredReturn := x.ReturnType != nil
	declaredReturn := c.evalType(x.ReturnType, generics, nil)
	c.pushFunc(FunctionContext{IsNamed: false, ReturnType: declaredReturn})
	var bodyType typeeval.EvaluatedType
	switch body := x.Body.(type) {
	case *ast.BlockExpr:
		bodyType = c.checkBlock(body)
	default:
		bodyType = c.checkExpr(body)
	}
	ret := bodyType
	if hasDeclaredReturn {
		ret = declaredReturn
		if _, errs := unify.Unify(declaredReturn, bodyType, c.Tab, unify.Return, nil); len(errs) > 0 {
			c.errorf(errors.TYP001, x.Sp, "function expression returns %s but body evaluates to %s", declaredReturn, bodyType)
		}
	}
	c.popFunc()
	c.popValueScope()
	return typeeval.FunctionExpressionInstance{FunctionInstance: typeeval.FunctionInstance{Params: params, Return: ret}}
}
