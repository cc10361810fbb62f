// Package check implements the Type Checker (spec.md §4.6): it walks a
// bound module expression-by-expression, producing typeeval.EvaluatedType
// for every node it visits and writing the result back onto var/const
// symbols as InferredType. Like the binder, it never aborts on an error;
// every rule degrades to typeeval.Unknown and keeps walking so one bad
// expression doesn't hide diagnostics elsewhere in the same function.
package check

import (
	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/token"
	"github.com/adebola-io/whirl/internal/typeeval"
)

// FunctionContext is pushed on entering a function/function-expression and
// popped on exit (spec.md §4.6 "Function context").
type FunctionContext struct {
	IsNamed    bool
	ReturnType typeeval.EvaluatedType
}

// Intrinsics resolves the corelib names the checker consults for literals
// and built-in traits (spec.md §6 "Intrinsic symbols"). A nil/zero-value
// Intrinsics degrades every lookup to Unknown plus a TYP020 diagnostic,
// matching spec.md §7 "a missing corelib degrades intrinsics to Unknown".
type Intrinsics struct {
	Lookup func(name string) (typeeval.EvaluatedType, bool)
}

func (in Intrinsics) get(name string) (typeeval.EvaluatedType, bool) {
	if in.Lookup == nil {
		return nil, false
	}
	return in.Lookup(name)
}

// Checker is the per-module typechecking pass (spec.md §4.6
// "TypecheckerContext").
type Checker struct {
	Path       string
	Tab        *symboltab.Table
	Intrinsics Intrinsics

	funcStack   []FunctionContext
	thisStack   []typeeval.EvaluatedType
	valueScopes []map[string]symboltab.SymbolIndex
	resolve     Resolver
	genericOf   map[ast.Node]map[string]symboltab.SymbolIndex

	errs []error
}

// Resolver looks up a bare type/value name visible at the point the
// checker is currently walking (own-module declarations plus whatever
// generic parameters the enclosing function/model introduced).
type Resolver func(name string) (symboltab.SymbolIndex, bool)

// New creates a Checker over one module's declarations; resolve should
// cover every name declared anywhere in the module (spec.md §4.2 "global
// declarations are visible throughout the module regardless of order").
func New(path string, tab *symboltab.Table, resolve Resolver, intrinsics Intrinsics) *Checker {
	return &Checker{
		Path: path, Tab: tab, resolve: resolve, Intrinsics: intrinsics,
		genericOf: map[ast.Node]map[string]symboltab.SymbolIndex{},
	}
}

func (c *Checker) pushFunc(fc FunctionContext) { c.funcStack = append(c.funcStack, fc) }
func (c *Checker) popFunc()                    { c.funcStack = c.funcStack[:len(c.funcStack)-1] }
func (c *Checker) currentFunc() (*FunctionContext, bool) {
	if len(c.funcStack) == 0 {
		return nil, false
	}
	return &c.funcStack[len(c.funcStack)-1], true
}

func (c *Checker) pushThis(t typeeval.EvaluatedType) { c.thisStack = append(c.thisStack, t) }
func (c *Checker) popThis()                          { c.thisStack = c.thisStack[:len(c.thisStack)-1] }
func (c *Checker) currentThis() (typeeval.EvaluatedType, bool) {
	if len(c.thisStack) == 0 {
		return nil, false
	}
	return c.thisStack[len(c.thisStack)-1], true
}

func (c *Checker) errorf(code string, span token.Span, format string, args ...interface{}) {
	c.errs = append(c.errs, errors.New(code, span, format, args...))
}

// Errors returns every diagnostic collected so far.
func (c *Checker) Errors() []error { return c.errs }

// genericSymbols returns (allocating on first use) the stable SymbolIndex
// for each of decl's own generic parameter names, so a call site and the
// declaration it calls agree on which SymbolIndex a solved type attaches
// to (spec.md §4.6 "generic_map: SymbolIndex -> EvaluatedType").
func (c *Checker) genericSymbols(decl ast.Node, names []string) map[string]symboltab.SymbolIndex {
	if m, ok := c.genericOf[decl]; ok {
		return m
	}
	m := make(map[string]symboltab.SymbolIndex, len(names))
	for _, n := range names {
		m[n] = c.Tab.Add(&symboltab.SemanticSymbol{Name: n, Kind: symboltab.KindGenericParameter, Decl: decl})
	}
	c.genericOf[decl] = m
	return m
}
