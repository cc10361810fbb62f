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

// callable is the (is_async, params, return) triple a CallExpr's callee
// must extract to (spec.md §4.6 "Call").
type callable struct {
	params  []typeeval.EvaluatedType
	ret     typeeval.EvaluatedType
	isAsync bool
}

func asCallable(t typeeval.EvaluatedType) (callable, bool) {
	switch f := t.(type) {
	case typeeval.FunctionInstance:
		return callable{params: f.Params, ret: f.Return, isAsync: f.IsAsync}, true
	case typeeval.MethodInstance:
		return callable{params: f.Params, ret: f.Return, isAsync: f.IsAsync}, true
	case typeeval.FunctionExpressionInstance:
		return callable{params: f.Params, ret: f.Return, isAsync: f.IsAsync}, true
	default:
		return callable{}, false
	}
}

// checkCall typechecks a CallExpr: resolve the callee to a callable,
// evaluate the arguments, zip them against the declared parameters in
// HardConform mode, and async-ify/solve-generics the return type (spec.md
// §4.6 "Call").
func (c *Checker) checkCall(x *ast.CallExpr) typeeval.EvaluatedType {
	if m, ok := x.Func.(*ast.Identifier); ok {
		if idx, found := c.resolveValue(m.Name); found {
			if sym, ok := c.Tab.Get(idx); ok && sym.Kind == symboltab.KindModel {
				c.errorf(errors.TYP007, x.Sp, "cannot call model %q directly, use `new`", m.Name)
				return typeeval.Unknown{}
			}
		}
	}
	callee := c.checkExpr(x.Func)
	fn, ok := asCallable(callee)
	if !ok {
		c.errorf(errors.TYP008, x.Sp, "%s is not callable", callee)
		for _, a := range x.Args {
			c.checkExpr(a)
		}
		return typeeval.Unknown{}
	}

	args := make([]typeeval.EvaluatedType, len(x.Args))
	for i, a := range x.Args {
		args[i] = c.checkExpr(a)
	}

	generics := unify.GenericMap{}
	c.zipArguments(x.Sp, x.Func, fn.params, args)
	for i := range fn.params {
		if i >= len(args) {
			break
		}
		unify.Unify(fn.params[i], args[i], c.Tab, unify.HardConform, generics)
	}

	ret := substituteGenerics(fn.ret, generics)
	if fn.isAsync {
		if prospect, ok := c.Intrinsics.get("Prospect"); ok {
			if mi, ok := prospect.(typeeval.ModelInstance); ok {
				return typeeval.ModelInstance{Model: mi.Model, ModelName: mi.ModelName, Args: []typeeval.GenericArg{{Type: ret}}}
			}
		}
	}
	return ret
}

// zipArguments matches positional args against params and reports a
// TYP012 distinguishing "too many" from "missing required" arguments
// (spec.md §4.6 "Call"). Per-parameter optionality is not threaded through
// EvaluatedType, so this simplifies to a plain arity check rather than the
// "first optional parameter" tie-break the full rule describes.
func (c *Checker) zipArguments(sp token.Span, callee ast.Expr, params []typeeval.EvaluatedType, args []typeeval.EvaluatedType) {
	if len(args) == len(params) {
		return
	}
	if len(args) > len(params) {
		c.errorf(errors.TYP012, sp, "too many arguments to %s: expected %d, got %d", callee, len(params), len(args))
		return
	}
	c.errorf(errors.TYP012, sp, "missing required arguments to %s: expected %d, got %d", callee, len(params), len(args))
}

// substituteGenerics replaces every Generic/HardGeneric in t (recursively
// through model/enum instances) with its solution from generics, leaving
// it unchanged when unsolved.
func substituteGenerics(t typeeval.EvaluatedType, generics unify.GenericMap) typeeval.EvaluatedType {
	switch v := t.(type) {
	case typeeval.Generic:
		if sol, ok := generics[v.Base]; ok {
			return sol
		}
		return t
	case typeeval.HardGeneric:
		if sol, ok := generics[v.Base]; ok {
			return sol
		}
		return t
	case typeeval.ModelInstance:
		args := make([]typeeval.GenericArg, len(v.Args))
		for i, a := range v.Args {
			args[i] = typeeval.GenericArg{Param: a.Param, Type: substituteGenerics(a.Type, generics)}
		}
		return typeeval.ModelInstance{Model: v.Model, ModelName: v.ModelName, Args: args}
	case typeeval.EnumInstance:
		args := make([]typeeval.GenericArg, len(v.Args))
		for i, a := range v.Args {
			args[i] = typeeval.GenericArg{Param: a.Param, Type: substituteGenerics(a.Type, generics)}
		}
		return typeeval.EnumInstance{Enum: v.Enum, EnumName: v.EnumName, Args: args}
	default:
		return t
	}
}

// checkNew typechecks `new Model(args...)` (spec.md §4.6 "New").
func (c *Checker) checkNew(x *ast.NewExpr) typeeval.EvaluatedType {
	if x.Invalid || x.Call == nil {
		// the parser already recorded a diagnostic with a fix suggestion for
		// `new Ident` without parens; nothing further to check here.
		return typeeval.Unknown{}
	}
	callee := c.checkExpr(x.Call.Func)
	model, ok := callee.(typeeval.Model)
	if !ok {
		c.errorf(errors.TYP007, x.Sp, "`new` target %s is not a model", callee)
		for _, a := range x.Call.Args {
			c.checkExpr(a)
		}
		return typeeval.Unknown{}
	}
	sym, ok := c.Tab.Get(model.Symbol)
	if !ok {
		return typeeval.Unknown{}
	}
	decl, _ := sym.Decl.(*ast.ModelDecl)
	if decl == nil || decl.New == nil {
		c.errorf(errors.TYP013, x.Sp, "model %s has no constructor", model.Name)
		for _, a := range x.Call.Args {
			c.checkExpr(a)
		}
		return typeeval.ModelInstance{Model: model.Symbol, ModelName: model.Name}
	}
	generics := c.genericSymbols(decl, decl.Generics)
	args := make([]typeeval.EvaluatedType, len(x.Call.Args))
	for i, a := range x.Call.Args {
		args[i] = c.checkExpr(a)
	}
	solved := unify.GenericMap{}
	for i, p := range decl.New.Params {
		pt := c.evalType(p.Type, generics, nil)
		if i < len(args) {
			unify.Unify(pt, args[i], c.Tab, unify.HardConform, solved)
		}
	}
	if len(decl.New.Params) != len(args) {
		c.errorf(errors.TYP012, x.Sp, "%s constructor expects %d argument(s), got %d", model.Name, len(decl.New.Params), len(args))
	}
	genArgs := make([]typeeval.GenericArg, 0, len(decl.Generics))
	for _, gname := range decl.Generics {
		idx := generics[gname]
		t, ok := solved[idx]
		if !ok {
			t = typeeval.Generic{Base: idx, Name: gname}
		}
		genArgs = append(genArgs, typeeval.GenericArg{Param: idx, Type: t})
	}
	return typeeval.ModelInstance{Model: model.Symbol, ModelName: model.Name, Args: genArgs}
}

// checkAccess typechecks `obj.prop` (spec.md §4.6 "Access").
func (c *Checker) checkAccess(x *ast.AccessExpr) typeeval.EvaluatedType {
	obj := c.checkExpr(x.Object)
	switch v := obj.(type) {
	case typeeval.Borrowed:
		peeled := c.accessOn(v.Base, x)
		return peeled
	case typeeval.Module:
		return c.accessModule(v, x)
	default:
		return c.accessOn(obj, x)
	}
}

func (c *Checker) accessModule(mod typeeval.Module, x *ast.AccessExpr) typeeval.EvaluatedType {
	sym, ok := c.Tab.Get(mod.Symbol)
	if !ok {
		return typeeval.Unknown{}
	}
	exports, ok := sym.Decl.(typeeval.ModuleExportsCarrier)
	if !ok {
		return typeeval.Unknown{}
	}
	idx, found := exports.Exports()[x.Property]
	if !found {
		c.errorf(errors.IMP005, x.PropSpan, "%q is not public in module %s (or does not exist)", x.Property, mod.Name)
		return typeeval.Unknown{}
	}
	return c.identifierType(idx)
}

// accessOn resolves a property against a model/enum instance, a bare Model
// or Enum, or each member of an OpaqueTypeInstance in turn: a model's own
// attributes/methods plus whatever its implemented traits contribute. Any
// other type, a Generic included, reports TYP005.
func (c *Checker) accessOn(obj typeeval.EvaluatedType, x *ast.AccessExpr) typeeval.EvaluatedType {
	switch v := obj.(type) {
	case typeeval.ModelInstance:
		return c.accessModel(v.Model, v, x)
	case typeeval.Model:
		return c.accessModelStatic(v.Symbol, v.Name, x)
	case typeeval.EnumInstance:
		return c.accessEnum(v, x)
	case typeeval.Enum:
		return c.accessEnumType(v, x)
	case typeeval.OpaqueTypeInstance:
		for _, m := range v.Members {
			if t := c.accessOn(m, x); !isUnknown(t) {
				return t
			}
		}
		c.errorf(errors.TYP005, x.PropSpan, "no member of the union defines %q", x.Property)
		return typeeval.Unknown{}
	default:
		c.errorf(errors.TYP005, x.PropSpan, "no such property %q on %s", x.Property, obj)
		return typeeval.Unknown{}
	}
}

func isUnknown(t typeeval.EvaluatedType) bool {
	_, ok := t.(typeeval.Unknown)
	return ok
}

func (c *Checker) accessModel(modelSym symboltab.SymbolIndex, inst typeeval.ModelInstance, x *ast.AccessExpr) typeeval.EvaluatedType {
	sym, ok := c.Tab.Get(modelSym)
	if !ok {
		return typeeval.Unknown{}
	}
	decl, _ := sym.Decl.(*ast.ModelDecl)
	if decl == nil {
		return typeeval.Unknown{}
	}
	for _, a := range decl.Attributes {
		if a.Name == x.Property {
			return c.evalType(a.Type, nil, nil)
		}
	}
	for _, m := range decl.Methods {
		if m.Function.Name == x.Property {
			if m.IsStatic {
				c.errorf(errors.TYP014, x.PropSpan, "%q is a static method, not an instance method", x.Property)
			}
			return c.methodType(m.Function, inst)
		}
	}
	if t, ok := c.accessTraitDefault(decl, inst, x.Property); ok {
		return t
	}
	names := make([]string, 0, len(decl.Attributes)+len(decl.Methods))
	for _, a := range decl.Attributes {
		names = append(names, a.Name)
	}
	for _, m := range decl.Methods {
		names = append(names, m.Function.Name)
	}
	for _, impl := range decl.Implements {
		if traitDecl := c.traitDeclOf(impl); traitDecl != nil {
			for _, m := range traitDecl.Methods {
				names = append(names, m.Signature.Name)
			}
		}
	}
	c.suggestOrNoSuchProperty(x, names)
	return typeeval.Unknown{}
}

// traitDeclOf evaluates a model's `Implements` entry and, if it names a
// trait, returns that trait's declaration.
func (c *Checker) traitDeclOf(impl ast.TypeExpr) *ast.TraitDecl {
	t := c.evalType(impl, nil, nil)
	ti, ok := t.(typeeval.TraitInstance)
	if !ok {
		return nil
	}
	sym, ok := c.Tab.Get(ti.Trait)
	if !ok {
		return nil
	}
	decl, _ := sym.Decl.(*ast.TraitDecl)
	return decl
}

// accessTraitDefault searches decl's implemented traits for a default
// method named prop (spec.md §4.6 "Access": "traverse the model's own
// methods and attributes plus methods contributed by implemented traits
// (traits are treated as extra generics; This inside trait methods
// resolves to the implementing model instance)"). Only default-bodied
// trait methods are contributed here: a required method with no default
// body is expected to be satisfied by one of decl.Methods (tied back via
// ModelMethod.TraitPath), which the caller already checked first.
func (c *Checker) accessTraitDefault(decl *ast.ModelDecl, inst typeeval.ModelInstance, prop string) (typeeval.EvaluatedType, bool) {
	for _, impl := range decl.Implements {
		traitDecl := c.traitDeclOf(impl)
		if traitDecl == nil {
			continue
		}
		for _, m := range traitDecl.Methods {
			if m.Signature.Name != prop || m.Body == nil {
				continue
			}
			c.pushThis(inst)
			t := c.methodType(m.Signature, inst)
			c.popThis()
			return t, true
		}
	}
	return nil, false
}

func (c *Checker) accessModelStatic(modelSym symboltab.SymbolIndex, modelName string, x *ast.AccessExpr) typeeval.EvaluatedType {
	sym, ok := c.Tab.Get(modelSym)
	if !ok {
		return typeeval.Unknown{}
	}
	decl, _ := sym.Decl.(*ast.ModelDecl)
	if decl == nil {
		return typeeval.Unknown{}
	}
	for _, m := range decl.Methods {
		if m.Function.Name == x.Property {
			if !m.IsStatic {
				c.errorf(errors.TYP014, x.PropSpan, "%q is an instance method, not static", x.Property)
			}
			return c.methodType(m.Function, typeeval.Model{Symbol: modelSym, Name: modelName})
		}
	}
	c.errorf(errors.TYP005, x.PropSpan, "no static member %q on model %s", x.Property, modelName)
	return typeeval.Unknown{}
}

// accessEnumType resolves `EnumName.Variant` against the enum's own
// declaration (spec.md §4.6 "Call": an enum-variant constructor is a
// resolvable callable). A bare tag (no Fields) evaluates directly to an
// EnumInstance; a variant carrying Fields evaluates to the constructor
// FunctionInstance that produces one.
func (c *Checker) accessEnumType(en typeeval.Enum, x *ast.AccessExpr) typeeval.EvaluatedType {
	sym, ok := c.Tab.Get(en.Symbol)
	if !ok {
		return typeeval.Unknown{}
	}
	decl, _ := sym.Decl.(*ast.EnumDecl)
	if decl == nil {
		return typeeval.Unknown{}
	}
	generics := c.genericSymbols(decl, decl.Generics)
	genArgs := make([]typeeval.GenericArg, 0, len(decl.Generics))
	for _, gname := range decl.Generics {
		idx := generics[gname]
		genArgs = append(genArgs, typeeval.GenericArg{Param: idx, Type: typeeval.Generic{Base: idx, Name: gname}})
	}
	for _, variant := range decl.Variants {
		if variant.Name != x.Property {
			continue
		}
		ret := typeeval.EnumInstance{Enum: en.Symbol, EnumName: en.Name, Args: genArgs}
		if len(variant.Fields) == 0 {
			return ret
		}
		params := make([]typeeval.EvaluatedType, len(variant.Fields))
		for i, f := range variant.Fields {
			params[i] = hardenGenerics(c.evalType(f, generics, nil), generics)
		}
		return typeeval.FunctionInstance{Params: params, Return: ret}
	}
	names := make([]string, len(decl.Variants))
	for i, variant := range decl.Variants {
		names[i] = variant.Name
	}
	c.suggestOrNoSuchProperty(x, names)
	return typeeval.Unknown{}
}

// accessEnum resolves a property on an already-constructed enum instance.
// EnumDecl carries no Methods/Implements of its own, so an instance has
// nothing further to offer beyond the variant it already is.
func (c *Checker) accessEnum(inst typeeval.EnumInstance, x *ast.AccessExpr) typeeval.EvaluatedType {
	sym, ok := c.Tab.Get(inst.Enum)
	if !ok {
		return typeeval.Unknown{}
	}
	c.errorf(errors.TYP005, x.PropSpan, "enum %s has no member %q", sym.Name, x.Property)
	return typeeval.Unknown{}
}

func (c *Checker) methodType(fn *ast.FunctionDecl, receiver typeeval.EvaluatedType) typeeval.EvaluatedType {
	return typeeval.MethodInstance{FunctionInstance: c.functionType(fn), Receiver: receiver}
}

// suggestOrNoSuchProperty emits a case-insensitive "did you mean" fix
// before falling back to a plain NoSuchProperty (spec.md §4.6 "Access").
func (c *Checker) suggestOrNoSuchProperty(x *ast.AccessExpr, candidates []string) {
	want := strings.ToLower(x.Property)
	for _, cand := range candidates {
		if strings.ToLower(cand) == want {
			c.errs = append(c.errs, errors.New(errors.TYP022, x.PropSpan, "no property %q; did you mean %q?", x.Property, cand).WithFix(cand))
			return
		}
	}
	c.errorf(errors.TYP005, x.PropSpan, "no such property %q", x.Property)
}
