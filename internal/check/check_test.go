package check

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adebola-io/whirl/internal/binder"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/lexer"
	"github.com/adebola-io/whirl/internal/parser"
	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/typeeval"
)

// corelib seeds the handful of intrinsic models the checker's test sources
// exercise, standing in for the real corelib module the standpoint would
// normally load (spec.md §6 "Intrinsic symbols").
func corelib(tab *symboltab.Table) (map[string]symboltab.SymbolIndex, Intrinsics) {
	names := map[string]symboltab.SymbolIndex{}
	for _, n := range []string{"Int", "Bool", "String", "Float", "Array"} {
		names[n] = tab.Add(&symboltab.SemanticSymbol{Name: n, Kind: symboltab.KindModel})
	}
	lookup := func(name string) (typeeval.EvaluatedType, bool) {
		idx, ok := names[name]
		if !ok {
			return nil, false
		}
		return typeeval.ModelInstance{Model: idx, ModelName: name}, true
	}
	return names, Intrinsics{Lookup: lookup}
}

func checkSource(t *testing.T, src, path string) []error {
	t.Helper()
	mod, _, perrs := parser.ParseModuleWithAmbience(lexer.New(src, "M"), 0, path)
	if len(perrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	tab := symboltab.New()
	core, intrinsics := corelib(tab)

	_, berrs := binder.Bind(mod, path, tab)
	if len(berrs) != 0 {
		t.Fatalf("unexpected binder errors: %v", berrs)
	}

	resolve := func(name string) (symboltab.SymbolIndex, bool) {
		if idx, ok := core[name]; ok {
			return idx, true
		}
		for i := 0; i < tab.Len(); i++ {
			sym, ok := tab.Get(symboltab.SymbolIndex(i))
			if ok && sym.Name == name {
				return symboltab.SymbolIndex(i), true
			}
		}
		return symboltab.Invalid, false
	}

	c := New(path, tab, resolve, intrinsics)
	c.CheckModule(mod)
	return c.Errors()
}

func TestCheckFunctionReturnTypeMatches(t *testing.T) {
	src := `module M;
function answer() -> Int {
	return 42;
}
`
	errs := checkSource(t, src, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected check errors: %v", errs)
	}
}

func TestCheckFunctionReturnTypeMismatchYieldsTYP001(t *testing.T) {
	src := `module M;
function answer() -> Bool {
	return 42;
}
`
	errs := checkSource(t, src, "M.wrl")
	if !hasCode(errs, errors.TYP001) {
		t.Fatalf("expected a TYP001 diagnostic, got %v", errs)
	}
}

func TestCheckLogicOperatorRequiresBool(t *testing.T) {
	src := `module M;
function f() -> Bool {
	return 1 and true;
}
`
	errs := checkSource(t, src, "M.wrl")
	if !hasCode(errs, errors.TYP002) {
		t.Fatalf("expected a TYP002 diagnostic, got %v", errs)
	}
}

func TestCheckCallArityMismatchYieldsTYP012(t *testing.T) {
	src := `module M;
function add(x: Int, y: Int) -> Int {
	return x;
}
function use() -> Int {
	return add(1);
}
`
	errs := checkSource(t, src, "M.wrl")
	if !hasCode(errs, errors.TYP012) {
		t.Fatalf("expected a TYP012 diagnostic, got %v", errs)
	}
}

func TestCheckIfWithoutElseRejectsBindingAsPartial(t *testing.T) {
	src := `module M;
function f() -> Int {
	x := if true {
		1;
	};
	return x;
}
`
	errs := checkSource(t, src, "M.wrl")
	if !hasCode(errs, errors.TYP016) {
		t.Fatalf("expected a TYP016 diagnostic for the Partial binding, got %v", errs)
	}
}

func TestCheckNewConstructsModelInstance(t *testing.T) {
	src := `module M;
model Account {
	var balance: Int;

	new(amount: Int) {
		this.balance = amount;
	}
}
function open() -> Int {
	account := new Account(10);
	return account.balance;
}
`
	errs := checkSource(t, src, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected check errors: %v", errs)
	}
}

func TestCheckAccessUnknownPropertySuggestsSimilarName(t *testing.T) {
	src := `module M;
model Account {
	var balance: Int;

	new(amount: Int) {
		this.balance = amount;
	}
}
function open() -> Int {
	account := new Account(10);
	return account.Balance;
}
`
	errs := checkSource(t, src, "M.wrl")
	if !hasCode(errs, errors.TYP022) {
		t.Fatalf("expected a TYP022 (did you mean) diagnostic, got %v", errs)
	}
}

func TestCheckBareEnumTagConstructsEnumInstance(t *testing.T) {
	src := `module M;
enum Color {
	Red, Green, Blue
}
function favorite() -> Color {
	return Color.Red;
}
`
	errs := checkSource(t, src, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected check errors: %v", errs)
	}
}

func TestCheckEnumVariantWithFieldsIsCallableConstructor(t *testing.T) {
	src := `module M;
enum Shape {
	Circle(Int), Square(Int)
}
function unit() -> Shape {
	return Shape.Circle(1);
}
`
	errs := checkSource(t, src, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected check errors: %v", errs)
	}
}

func TestCheckEnumVariantWithFieldsRejectsWrongArity(t *testing.T) {
	src := `module M;
enum Shape {
	Circle(Int)
}
function unit() -> Shape {
	return Shape.Circle();
}
`
	errs := checkSource(t, src, "M.wrl")
	if !hasCode(errs, errors.TYP012) {
		t.Fatalf("expected a TYP012 arity diagnostic, got %v", errs)
	}
}

func TestCheckUnknownEnumVariantYieldsTYP005(t *testing.T) {
	src := `module M;
enum Color {
	Red, Green
}
function favorite() -> Color {
	return Color.Purple;
}
`
	errs := checkSource(t, src, "M.wrl")
	if !hasCode(errs, errors.TYP005) {
		t.Fatalf("expected a TYP005 (no such property) diagnostic, got %v", errs)
	}
}

func TestCheckModelInheritsTraitDefaultMethod(t *testing.T) {
	src := `module M;
trait Greeter {
	function greet() -> Int {
		return 1;
	}
}
model Person implements Greeter {
	var age: Int;

	new(age: Int) {
		this.age = age;
	}
}
function use() -> Int {
	person := new Person(10);
	return person.greet();
}
`
	errs := checkSource(t, src, "M.wrl")
	require.Empty(t, errs, "unexpected check errors")
}

func TestCheckModelOwnMethodOverridesTraitDefault(t *testing.T) {
	src := `module M;
trait Greeter {
	function greet() -> Int {
		return 1;
	}
}
model Person implements Greeter {
	var age: Int;

	new(age: Int) {
		this.age = age;
	}

	function [Greeter] greet() -> Int {
		return this.age;
	}
}
function use() -> Int {
	person := new Person(10);
	return person.greet();
}
`
	errs := checkSource(t, src, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected check errors: %v", errs)
	}
}

func hasCode(errs []error, code string) bool {
	for _, e := range errs {
		if d, ok := e.(*errors.Diagnostic); ok && d.Code == code {
			return true
		}
	}
	return false
}
