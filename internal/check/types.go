package check

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/typeeval"
)

// evalType lowers a signature TypeExpr into an EvaluatedType, resolving
// bare names first against locals (e.g. the enclosing function's generic
// parameters), then the module's own declarations (spec.md §4.2, §4.4).
func (c *Checker) evalType(te ast.TypeExpr, locals map[string]symboltab.SymbolIndex, solved map[symboltab.SymbolIndex]typeeval.EvaluatedType) typeeval.EvaluatedType {
	if te == nil {
		return typeeval.Void{}
	}
	resolveName := func(name string) (symboltab.SymbolIndex, bool) {
		if locals != nil {
			if idx, ok := locals[name]; ok {
				return idx, true
			}
		}
		return c.resolve(name)
	}
	it := typeeval.FromTypeExpr(te, resolveName)
	sink := func(code, msg string) { c.errorf(code, te.Span(), "%s", msg) }
	return typeeval.Evaluate(it, c.Tab, solved, c.thisContext(), sink, 0)
}

// thisContext rebuilds a typeeval.ThisContext from whatever the checker
// currently has on its `this` stack, letting nested type evaluation
// resolve a bare `This` type expression (spec.md §4.4 "This").
func (c *Checker) thisContext() *typeeval.ThisContext {
	t, ok := c.currentThis()
	if !ok {
		return nil
	}
	switch v := t.(type) {
	case typeeval.ModelInstance:
		return &typeeval.ThisContext{Symbol: v.Model, Name: v.ModelName}
	case typeeval.EnumInstance:
		return &typeeval.ThisContext{Symbol: v.Enum, Name: v.EnumName, IsEnum: true}
	default:
		return nil
	}
}
