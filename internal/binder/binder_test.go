package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/lexer"
	"github.com/adebola-io/whirl/internal/parser"
	"github.com/adebola-io/whirl/internal/symboltab"
)

func bindSource(t *testing.T, src, path string) (*symboltab.Table, []error) {
	t.Helper()
	mod, _, perrs := parser.ParseModuleWithAmbience(lexer.New(src, "M"), 0, path)
	if len(perrs) != 0 {
		t.Fatalf("unexpected parse errors: %v", perrs)
	}
	tab := symboltab.New()
	_, berrs := Bind(mod, path, tab)
	return tab, berrs
}

func TestBindDeclaresTopLevelFunction(t *testing.T) {
	src := `module Account;
function balance() -> Int {
	return 0;
}
`
	tab, errs := bindSource(t, src, "Account.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected binder errors: %v", errs)
	}
	found := false
	for i := 0; i < tab.Len(); i++ {
		sym, ok := tab.Get(symboltab.SymbolIndex(i))
		if ok && sym.Name == "balance" && sym.Kind == symboltab.KindFunction {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a KindFunction symbol named balance")
	}
}

func TestBindResolvesParameterReference(t *testing.T) {
	src := `module M;
function identity(x: Int) -> Int {
	return x;
}
`
	tab, errs := bindSource(t, src, "M.wrl")
	if len(errs) != 0 {
		t.Fatalf("unexpected binder errors: %v", errs)
	}
	var paramIdx symboltab.SymbolIndex = -1
	for i := 0; i < tab.Len(); i++ {
		sym, ok := tab.Get(symboltab.SymbolIndex(i))
		if ok && sym.Name == "x" && sym.Kind == symboltab.KindParameter {
			paramIdx = symboltab.SymbolIndex(i)
		}
	}
	if paramIdx == -1 {
		t.Fatalf("expected a KindParameter symbol named x")
	}
	sym, _ := tab.Get(paramIdx)
	if len(sym.References) == 0 {
		t.Fatalf("expected the return statement to record a reference to x")
	}
}

func TestBindUnresolvedIdentifierYieldsBND001(t *testing.T) {
	src := `module M;
function f() -> Int {
	return ghost;
}
`
	_, errs := bindSource(t, src, "M.wrl")
	found := false
	for _, e := range errs {
		if d, ok := e.(*errors.Diagnostic); ok && d.Code == errors.BND001 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a BND001 diagnostic, got %v", errs)
	}
}

func TestBindMismatchedModuleNameYieldsIMP007(t *testing.T) {
	src := `module Wrong;
function f() -> Int { return 0; }
`
	_, errs := bindSource(t, src, "Account.wrl")
	found := false
	for _, e := range errs {
		if d, ok := e.(*errors.Diagnostic); ok && d.Code == errors.IMP007 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an IMP007 diagnostic, got %v", errs)
	}
}

func TestBindModelDeclaresAttributesAndMethods(t *testing.T) {
	src := `model Account {
	var balance: Int;

	new(amount: Int) {
		this.balance = amount;
	}

	function deposit(amount: Int) -> Int {
		return amount;
	}
}
`
	tab, errs := bindSource(t, src, "Account.wrl")
	require.Len(t, errs, 1, "only the expected IMP006 (no module decl)")
	names := map[string]symboltab.Kind{}
	for i := 0; i < tab.Len(); i++ {
		sym, ok := tab.Get(symboltab.SymbolIndex(i))
		if ok {
			names[sym.Name] = sym.Kind
		}
	}
	assert.Equal(t, symboltab.KindModel, names["Account"])
	assert.Equal(t, symboltab.KindAttribute, names["balance"])
	assert.Equal(t, symboltab.KindMethod, names["deposit"])
}
