package typeeval

import (
	"fmt"

	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/symboltab"
)

// maxDepth bounds recursion so a cyclic type alias fails fast instead of
// looping forever (spec.md §4.4 "Recursion is bounded by a depth counter").
const maxDepth = 64

// ThisContext tells Evaluate what `This` resolves to inside the method
// currently being evaluated (spec.md §4.4 "This").
type ThisContext struct {
	Symbol symboltab.SymbolIndex
	Name   string
	IsEnum bool
}

// ErrorSink receives a diagnostic message without aborting evaluation.
type ErrorSink func(code, message string)

// Evaluate turns an IntermediateType into an EvaluatedType (spec.md §4.4).
// solved is consulted for GenericParameterType before falling back to an
// unresolved Generic; this is nil-safe.
func Evaluate(it IntermediateType, tab *symboltab.Table, solved map[symboltab.SymbolIndex]EvaluatedType, this *ThisContext, sink ErrorSink, depth int) EvaluatedType {
	if depth > maxDepth {
		if sink != nil {
			sink("TYP017", "cyclic type alias exceeded max evaluation depth")
		}
		return Unknown{}
	}
	switch t := it.(type) {
	case nil:
		return Unknown{}
	case SimpleType:
		return evalSimple(t, tab, solved, this, sink, depth)
	case FunctionType:
		params := make([]EvaluatedType, len(t.Params))
		for i, p := range t.Params {
			params[i] = Evaluate(p, tab, solved, this, sink, depth+1)
		}
		return FunctionExpressionInstance{FunctionInstance{Params: params, Return: Evaluate(t.Return, tab, solved, this, sink, depth+1)}}
	case MemberType:
		ns := Evaluate(t.Namespace, tab, solved, this, sink, depth+1)
		mod, ok := ns.(Module)
		if !ok {
			if sink != nil {
				sink("IMP003", fmt.Sprintf("%s is not a module", ns.String()))
			}
			return Unknown{}
		}
		sym, ok := tab.Get(mod.Symbol)
		if !ok {
			return Unknown{}
		}
		for _, child := range symbolExports(sym) {
			if child.name == t.Property {
				return symbolToEvaluatedType(child.idx, tab, solved, sink, depth)
			}
		}
		if sink != nil {
			sink("IMP004", fmt.Sprintf("no such symbol %q in module %s", t.Property, mod.Name))
		}
		return Unknown{}
	case UnionType:
		members := make([]EvaluatedType, len(t.Members))
		for i, m := range t.Members {
			members[i] = Evaluate(m, tab, solved, this, sink, depth+1)
		}
		return OpaqueTypeInstance{Members: members}
	case ThisType:
		if this != nil {
			if this.IsEnum {
				return EnumInstance{Enum: this.Symbol, EnumName: this.Name}
			}
			return ModelInstance{Model: this.Symbol, ModelName: this.Name}
		}
		return Unknown{}
	case BorrowedType:
		return Borrowed{Base: Evaluate(t.Base, tab, solved, this, sink, depth+1)}
	case GenericParameterType:
		if solved != nil {
			if v, ok := solved[t.Symbol]; ok {
				return v
			}
		}
		return Generic{Base: t.Symbol, Name: t.Name}
	case Placeholder:
		return Unknown{}
	default:
		return Unknown{}
	}
}

func evalSimple(t SimpleType, tab *symboltab.Table, solved map[symboltab.SymbolIndex]EvaluatedType, this *ThisContext, sink ErrorSink, depth int) EvaluatedType {
	if t.Symbol == symboltab.Invalid {
		if sink != nil {
			sink("BND001", fmt.Sprintf("unresolved type name %q", t.Name))
		}
		return Unknown{}
	}
	sym, ok := tab.Get(t.Symbol)
	if !ok {
		return Unknown{}
	}
	args := make([]GenericArg, 0, len(t.Args))
	switch sym.Kind {
	case symboltab.KindModel:
		for _, a := range t.Args {
			args = append(args, GenericArg{Type: Evaluate(a, tab, solved, this, sink, depth+1)})
		}
		return ModelInstance{Model: t.Symbol, ModelName: sym.Name, Args: args}
	case symboltab.KindEnum:
		for _, a := range t.Args {
			args = append(args, GenericArg{Type: Evaluate(a, tab, solved, this, sink, depth+1)})
		}
		return EnumInstance{Enum: t.Symbol, EnumName: sym.Name, Args: args}
	case symboltab.KindTrait:
		for _, a := range t.Args {
			args = append(args, GenericArg{Type: Evaluate(a, tab, solved, this, sink, depth+1)})
		}
		return TraitInstance{Trait: t.Symbol, TraitName: sym.Name, Args: args}
	case symboltab.KindTypeName:
		alias, _ := sym.Decl.(*ast.TypeAliasDecl)
		if alias == nil {
			return Unknown{}
		}
		// The alias's value is not evaluated: evaluateTypeExprFallback has
		// no scope to resolve its names in, so every alias evaluates to
		// Unknown.
		return evaluateTypeExprFallback(alias.Value, tab, solved, this, sink, depth+1)
	case symboltab.KindGenericParameter:
		if solved != nil {
			if v, ok := solved[t.Symbol]; ok {
				return v
			}
		}
		return Generic{Base: t.Symbol, Name: sym.Name}
	default:
		return Unknown{}
	}
}

// evaluateTypeExprFallback is the evaluation of an alias body. It returns
// Unknown for every te: with no scope to look identifiers up in, it does not
// lower te to an IntermediateType.
func evaluateTypeExprFallback(te ast.TypeExpr, tab *symboltab.Table, solved map[symboltab.SymbolIndex]EvaluatedType, this *ThisContext, sink ErrorSink, depth int) EvaluatedType {
	_ = te
	_ = tab
	_ = solved
	_ = this
	_ = sink
	_ = depth
	return Unknown{} // unresolved without a scope to look identifiers up in
}

type exportedSymbol struct {
	name string
	idx  symboltab.SymbolIndex
}

// symbolExports lists the child declarations a Module symbol exposes.
// Populated by the binder on ModuleDecl-kind symbols via Decl holding the
// bound module's exported-name table (see binder.ModuleExports).
func symbolExports(sym *symboltab.SemanticSymbol) []exportedSymbol {
	exports, ok := sym.Decl.(ModuleExportsCarrier)
	if !ok {
		return nil
	}
	var out []exportedSymbol
	for name, idx := range exports.Exports() {
		out = append(out, exportedSymbol{name: name, idx: idx})
	}
	return out
}

// ModuleExportsCarrier is implemented by whatever the binder attaches as
// Decl on a Module-kind symbol so the evaluator can resolve `Namespace.X`
// without importing the binder package (which itself depends on
// typeeval, so the dependency would otherwise cycle).
type ModuleExportsCarrier interface {
	ast.Node
	Exports() map[string]symboltab.SymbolIndex
}

func symbolToEvaluatedType(idx symboltab.SymbolIndex, tab *symboltab.Table, solved map[symboltab.SymbolIndex]EvaluatedType, sink ErrorSink, depth int) EvaluatedType {
	sym, ok := tab.Get(idx)
	if !ok {
		return Unknown{}
	}
	switch sym.Kind {
	case symboltab.KindModel:
		return Model{Symbol: idx, Name: sym.Name}
	case symboltab.KindTrait:
		return Trait{Symbol: idx, Name: sym.Name}
	case symboltab.KindEnum:
		return Enum{Symbol: idx, Name: sym.Name}
	case symboltab.KindModule:
		return Module{Symbol: idx, Name: sym.Name}
	default:
		return Evaluate(SimpleType{Symbol: idx, Name: sym.Name}, tab, solved, nil, sink, depth+1)
	}
}
