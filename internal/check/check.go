package check

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/token"
	"github.com/adebola-io/whirl/internal/typeeval"
	"github.com/adebola-io/whirl/internal/unify"
)

// CheckModule typechecks every top-level declaration in mod (spec.md §4.6).
// It never aborts: a declaration that fails to typecheck degrades to
// Unknown and the walk continues so one bad function doesn't hide
// diagnostics in its siblings.
func (c *Checker) CheckModule(mod *ast.Module) {
	for _, stmt := range mod.Statements {
		c.checkTopLevel(stmt)
	}
}

func (c *Checker) checkTopLevel(stmt ast.Statement) {
	switch d := stmt.(type) {
	case *ast.FunctionDecl:
		c.checkFunction(d, nil)
	case *ast.ModelDecl:
		c.checkModel(d)
	case *ast.TraitDecl:
		var receiver typeeval.EvaluatedType = typeeval.Unknown{}
		if self, ok := c.resolve(d.Name); ok {
			receiver = typeeval.TraitInstance{Trait: self, TraitName: d.Name}
		}
		for _, m := range d.Methods {
			if m.Body != nil {
				fn := &ast.FunctionDecl{Name: m.Signature.Name, Generics: m.Signature.Generics, Params: m.Signature.Params, ReturnType: m.Signature.ReturnType, Body: m.Body, Sp: m.Signature.Sp}
				c.checkFunction(fn, receiver)
			}
		}
	case *ast.EnumDecl, *ast.TypeAliasDecl, *ast.UseDecl:
		// nothing to typecheck; these carry no executable body.
	case *ast.VarDecl:
		c.checkVarDecl(d)
	case *ast.TestDecl:
		c.pushFunc(FunctionContext{IsNamed: true, ReturnType: typeeval.Void{}})
		c.pushValueScope()
		c.checkBlock(d.Body)
		c.popValueScope()
		c.popFunc()
	}
}

// --- value scopes -----------------------------------------------------

func (c *Checker) pushValueScope() { c.valueScopes = append(c.valueScopes, map[string]symboltab.SymbolIndex{}) }
func (c *Checker) popValueScope()  { c.valueScopes = c.valueScopes[:len(c.valueScopes)-1] }

func (c *Checker) declareValue(name string, idx symboltab.SymbolIndex) {
	if name == "" || len(c.valueScopes) == 0 {
		return
	}
	c.valueScopes[len(c.valueScopes)-1][name] = idx
}

func (c *Checker) resolveValue(name string) (symboltab.SymbolIndex, bool) {
	for i := len(c.valueScopes) - 1; i >= 0; i-- {
		if idx, ok := c.valueScopes[i][name]; ok {
			return idx, true
		}
	}
	return c.resolve(name)
}

// identifierType is what a bare identifier evaluates to: its own inferred
// type if the checker already wrote one (locals, params), else a type
// derived from its declaration kind (a bare function/model/trait/enum/
// module name used as a value, spec.md §4.6 "Identifier").
func (c *Checker) identifierType(idx symboltab.SymbolIndex) typeeval.EvaluatedType {
	sym, ok := c.Tab.Get(idx)
	if !ok {
		return typeeval.Unknown{}
	}
	if t, ok := sym.InferredType.(typeeval.EvaluatedType); ok {
		return t
	}
	switch sym.Kind {
	case symboltab.KindFunction:
		if fn, ok := sym.Decl.(*ast.FunctionDecl); ok {
			return c.functionType(fn)
		}
	case symboltab.KindModel:
		return typeeval.Model{Symbol: idx, Name: sym.Name}
	case symboltab.KindTrait:
		return typeeval.Trait{Symbol: idx, Name: sym.Name}
	case symboltab.KindEnum:
		return typeeval.Enum{Symbol: idx, Name: sym.Name}
	case symboltab.KindModule:
		return typeeval.Module{Symbol: idx, Name: sym.Name}
	case symboltab.KindImport:
		if sym.Import != nil && sym.Import.Source != symboltab.Invalid {
			return c.identifierType(sym.Import.Source)
		}
	}
	return typeeval.Unknown{}
}

// functionType computes the FunctionInstance a free function's own
// signature evaluates to, independent of any receiver (spec.md §4.4).
func (c *Checker) functionType(fn *ast.FunctionDecl) typeeval.FunctionInstance {
	generics := c.genericSymbols(fn, fn.Generics)
	params := make([]typeeval.EvaluatedType, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = hardenGenerics(c.evalType(p.Type, generics, nil), generics)
	}
	ret := c.evalType(fn.ReturnType, generics, nil)
	return typeeval.FunctionInstance{Params: params, Return: ret, IsAsync: fn.IsAsync}
}

func (c *Checker) setType(idx symboltab.SymbolIndex, t typeeval.EvaluatedType) {
	sym, ok := c.Tab.Get(idx)
	if !ok {
		return
	}
	sym.InferredType = t
}

// --- model/function declarations ---------------------------------------

func (c *Checker) checkModel(d *ast.ModelDecl) {
	self, ok := c.resolve(d.Name)
	var receiver typeeval.EvaluatedType = typeeval.Unknown{}
	if ok {
		receiver = typeeval.ModelInstance{Model: self, ModelName: d.Name}
	}
	if d.New != nil {
		c.checkFunction(d.New, receiver)
	}
	for _, m := range d.Methods {
		c.checkFunction(m.Function, receiver)
	}
}

// checkFunction typechecks one function's body against its declared return
// type, binding params and (if receiver is non-nil) `this` for the
// duration (spec.md §4.6 "Function").
func (c *Checker) checkFunction(fn *ast.FunctionDecl, receiver typeeval.EvaluatedType) {
	if fn == nil || fn.Body == nil {
		return
	}
	generics := c.genericSymbols(fn, fn.Generics)

	c.pushValueScope()
	if receiver != nil {
		c.pushThis(receiver)
	}
	for _, p := range fn.Params {
		pt := c.evalType(p.Type, generics, nil)
		pt = hardenGenerics(pt, generics)
		idx, found := c.resolveValue(p.Name)
		if !found {
			idx = c.Tab.Add(&symboltab.SemanticSymbol{Name: p.Name, Kind: symboltab.KindParameter, OriginSpan: p.Sp})
		}
		c.setType(idx, pt)
		c.declareValue(p.Name, idx)
		if p.Default != nil {
			c.checkExpr(p.Default)
		}
	}
	declaredReturn := c.evalType(fn.ReturnType, generics, nil)
	c.pushFunc(FunctionContext{IsNamed: fn.Name != "", ReturnType: declaredReturn})

	bodyType := c.checkBlock(fn.Body)
	if _, errs := unify.Unify(declaredReturn, bodyType, c.Tab, unify.Return, nil); len(errs) > 0 {
		c.errorf(errors.TYP001, fn.Sp, "function %q returns %s but body evaluates to %s", fn.Name, declaredReturn, bodyType)
	}

	c.popFunc()
	if receiver != nil {
		c.popThis()
	}
	c.popValueScope()
}

// hardenGenerics rewrites every Generic this type contains, at the top
// level, into a HardGeneric when it names one of decl's own generic
// parameters (spec.md §4.6 "parameters bind HardGeneric, not Generic").
func hardenGenerics(t typeeval.EvaluatedType, generics map[string]symboltab.SymbolIndex) typeeval.EvaluatedType {
	g, ok := t.(typeeval.Generic)
	if !ok {
		return t
	}
	for _, idx := range generics {
		if idx == g.Base {
			return typeeval.HardGeneric{Base: g.Base, Name: g.Name}
		}
	}
	return t
}

func (c *Checker) checkVarDecl(d *ast.VarDecl) {
	var declared typeeval.EvaluatedType
	if d.Type != nil {
		declared = c.evalType(d.Type, nil, nil)
	}
	var valueType typeeval.EvaluatedType = typeeval.Unknown{}
	if d.Value != nil {
		valueType = c.checkExpr(d.Value)
	}
	final := valueType
	if declared != nil {
		if _, errs := unify.Unify(declared, valueType, c.Tab, unify.Conform, nil); len(errs) > 0 {
			c.errorf(errors.TYP001, d.Sp, "declared type %s does not accept assigned value of type %s", declared, valueType)
		}
		final = declared
	}
	c.rejectUntypeable(d.Sp, final)
	for _, vp := range d.Patterns {
		for name, span := range patternLeaves(vp.Pattern) {
			idx, ok := c.resolveValue(name)
			if !ok {
				idx = c.Tab.Add(&symboltab.SemanticSymbol{Name: name, Kind: symboltab.KindVariable, OriginSpan: span})
			}
			c.setType(idx, final)
			c.declareValue(name, idx)
		}
	}
}

func (c *Checker) checkShorthandVarDecl(s *ast.ShorthandVarDecl) {
	t := c.checkExpr(s.Value)
	c.rejectUntypeable(s.Sp, t)
	idx, ok := c.resolveValue(s.Name)
	if !ok {
		idx = c.Tab.Add(&symboltab.SemanticSymbol{Name: s.Name, Kind: symboltab.KindVariable, OriginSpan: s.Sp})
	}
	c.setType(idx, t)
	c.declareValue(s.Name, idx)
}

// rejectUntypeable flags a Void/Partial-typed binding (spec.md §9 "Partial
// is not assignable to a typed binding"); Never is only illegal as a
// written declared type, not as an inferred one, so it is not checked here.
func (c *Checker) rejectUntypeable(sp token.Span, t typeeval.EvaluatedType) {
	switch t.(type) {
	case typeeval.Void:
		c.errorf(errors.TYP015, sp, "cannot bind a variable to a Void value")
	case typeeval.Partial:
		c.errorf(errors.TYP016, sp, "cannot bind a variable to the Partial result of an if without an else")
	}
}

// patternLeaves flattens a destructuring pattern into its bound names,
// mirroring the binder's own (unexported, package-local) helper of the
// same name.
func patternLeaves(p ast.Pattern) map[string]token.Span {
	out := map[string]token.Span{}
	var walk func(p ast.Pattern)
	walk = func(p ast.Pattern) {
		switch pt := p.(type) {
		case *ast.IdentifierPattern:
			out[pt.Name] = pt.Sp
		case *ast.ObjectPattern:
			for _, f := range pt.Fields {
				out[f.Alias] = f.Sp
			}
		case *ast.ArrayPattern:
			for _, e := range pt.Elements {
				walk(e)
			}
		}
	}
	walk(p)
	return out
}
