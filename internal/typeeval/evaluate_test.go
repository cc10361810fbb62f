package typeeval

import (
	"testing"

	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/symboltab"
)

func TestEvaluateModelInstance(t *testing.T) {
	tab := symboltab.New()
	idx := tab.Add(&symboltab.SemanticSymbol{Name: "Account", Kind: symboltab.KindModel, Decl: &ast.ModelDecl{Name: "Account"}})

	it := SimpleType{Symbol: idx, Name: "Account"}
	got := Evaluate(it, tab, nil, nil, nil, 0)

	mi, ok := got.(ModelInstance)
	if !ok || mi.ModelName != "Account" {
		t.Fatalf("expected ModelInstance{Account}, got %#v", got)
	}
}

func TestEvaluateUnresolvedNameYieldsUnknown(t *testing.T) {
	tab := symboltab.New()
	var gotCode string
	sink := func(code, msg string) { gotCode = code }

	it := SimpleType{Symbol: symboltab.Invalid, Name: "Ghost"}
	got := Evaluate(it, tab, nil, nil, sink, 0)

	if _, ok := got.(Unknown); !ok {
		t.Fatalf("expected Unknown, got %#v", got)
	}
	if gotCode != "BND001" {
		t.Fatalf("expected a BND001 diagnostic, got %q", gotCode)
	}
}

func TestEvaluateThisResolvesToEnclosingModel(t *testing.T) {
	tab := symboltab.New()
	idx := tab.Add(&symboltab.SemanticSymbol{Name: "Unit", Kind: symboltab.KindModel})
	this := &ThisContext{Symbol: idx, Name: "Unit"}

	got := Evaluate(ThisType{}, tab, nil, this, nil, 0)
	mi, ok := got.(ModelInstance)
	if !ok || mi.ModelName != "Unit" {
		t.Fatalf("expected This to resolve to ModelInstance{Unit}, got %#v", got)
	}
}

func TestFromTypeExprResolvesDiscreteName(t *testing.T) {
	tab := symboltab.New()
	idx := tab.Add(&symboltab.SemanticSymbol{Name: "Int", Kind: symboltab.KindModel})
	resolve := func(name string) (symboltab.SymbolIndex, bool) {
		if name == "Int" {
			return idx, true
		}
		return symboltab.Invalid, false
	}
	it := FromTypeExpr(&ast.DiscreteTypeExpr{Name: "Int"}, resolve)
	st, ok := it.(SimpleType)
	if !ok || st.Symbol != idx {
		t.Fatalf("expected a resolved SimpleType, got %#v", it)
	}
}
