package typeeval

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/symboltab"
)

// Resolve looks up a bare type name in the caller's scope (the checker
// passes its own resolver), returning its SymbolIndex if declared.
type Resolve func(name string) (symboltab.SymbolIndex, bool)

// FromTypeExpr lowers an ast.TypeExpr into an IntermediateType, resolving
// every bare name through resolve (spec.md §4.2 step 3 "identifiers are
// resolved now; fully evaluated types come later").
func FromTypeExpr(te ast.TypeExpr, resolve Resolve) IntermediateType {
	if te == nil {
		return Placeholder{}
	}
	switch t := te.(type) {
	case *ast.DiscreteTypeExpr:
		if t.Name == "This" {
			return ThisType{}
		}
		args := make([]IntermediateType, len(t.Args))
		for i, a := range t.Args {
			args[i] = FromTypeExpr(a, resolve)
		}
		idx, ok := resolve(t.Name)
		if !ok {
			idx = symboltab.Invalid
		}
		return SimpleType{Symbol: idx, Name: t.Name, Args: args}
	case *ast.MemberTypeExpr:
		return MemberType{Namespace: FromTypeExpr(t.Namespace, resolve), Property: t.Property}
	case *ast.UnionTypeExpr:
		members := make([]IntermediateType, len(t.Members))
		for i, m := range t.Members {
			members[i] = FromTypeExpr(m, resolve)
		}
		return UnionType{Members: members}
	case *ast.FunctionalTypeExpr:
		params := make([]IntermediateType, len(t.Params))
		for i, p := range t.Params {
			params[i] = FromTypeExpr(p, resolve)
		}
		return FunctionType{Params: params, Return: FromTypeExpr(t.Return, resolve)}
	case *ast.ThisTypeExpr:
		return ThisType{}
	case *ast.InvalidTypeExpr:
		return Placeholder{}
	default:
		return Placeholder{}
	}
}
