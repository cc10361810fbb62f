package unify

import (
	"testing"

	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/typeeval"
)

func TestUnifyIdenticalModelInstances(t *testing.T) {
	tab := symboltab.New()
	idx := tab.Add(&symboltab.SemanticSymbol{Name: "Account", Kind: symboltab.KindModel})
	a := typeeval.ModelInstance{Model: idx, ModelName: "Account"}
	b := typeeval.ModelInstance{Model: idx, ModelName: "Account"}

	got, errs := Unify(a, b, tab, None, nil)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if mi, ok := got.(typeeval.ModelInstance); !ok || mi.ModelName != "Account" {
		t.Fatalf("expected Account, got %#v", got)
	}
}

func TestUnifyMismatchedModelsFail(t *testing.T) {
	tab := symboltab.New()
	a := typeeval.ModelInstance{Model: 0, ModelName: "Account"}
	b := typeeval.ModelInstance{Model: 1, ModelName: "Ledger"}

	_, errs := Unify(a, b, tab, None, nil)
	if len(errs) == 0 {
		t.Fatalf("expected a mismatch error")
	}
	if errs[0].Kind != Incompatible {
		t.Fatalf("expected Incompatible, got %v", errs[0].Kind)
	}
}

func TestUnifyConformSolvesGeneric(t *testing.T) {
	tab := symboltab.New()
	paramIdx := tab.Add(&symboltab.SemanticSymbol{Name: "T", Kind: symboltab.KindGenericParameter})
	accIdx := tab.Add(&symboltab.SemanticSymbol{Name: "Account", Kind: symboltab.KindModel})

	generic := typeeval.Generic{Base: paramIdx, Name: "T"}
	concrete := typeeval.ModelInstance{Model: accIdx, ModelName: "Account"}

	gm := GenericMap{}
	got, errs := Unify(generic, concrete, tab, Conform, gm)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := got.(typeeval.ModelInstance); !ok {
		t.Fatalf("expected solved type to be the concrete instance, got %#v", got)
	}
	if gm[paramIdx] == nil {
		t.Fatalf("expected generic map to record a solution for T")
	}
}

func TestUnifyNeverCollapsesUnderReturnMode(t *testing.T) {
	tab := symboltab.New()
	idx := tab.Add(&symboltab.SemanticSymbol{Name: "Account", Kind: symboltab.KindModel})
	concrete := typeeval.ModelInstance{Model: idx, ModelName: "Account"}

	got, errs := Unify(typeeval.Never{}, concrete, tab, Return, nil)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := got.(typeeval.ModelInstance); !ok {
		t.Fatalf("expected Never to collapse to the other branch, got %#v", got)
	}
}

func TestUnifyOpaqueRequiresEveryMemberAssignable(t *testing.T) {
	tab := symboltab.New()
	intIdx := tab.Add(&symboltab.SemanticSymbol{Name: "Int", Kind: symboltab.KindModel})
	strIdx := tab.Add(&symboltab.SemanticSymbol{Name: "String", Kind: symboltab.KindModel})

	union := typeeval.OpaqueTypeInstance{Members: []typeeval.EvaluatedType{
		typeeval.ModelInstance{Model: intIdx, ModelName: "Int"},
		typeeval.ModelInstance{Model: strIdx, ModelName: "String"},
	}}
	onlyInt := typeeval.ModelInstance{Model: intIdx, ModelName: "Int"}

	if _, errs := Unify(union, onlyInt, tab, None, nil); errs != nil {
		t.Fatalf("Int should be assignable into the union: %v", errs)
	}

	boolIdx := tab.Add(&symboltab.SemanticSymbol{Name: "Bool", Kind: symboltab.KindModel})
	onlyBool := typeeval.ModelInstance{Model: boolIdx, ModelName: "Bool"}
	if _, errs := Unify(union, onlyBool, tab, None, nil); errs == nil {
		t.Fatalf("Bool should not be assignable into an Int|String union")
	}
}

func TestUnifyFunctionTypesRecurseIntoParamsAndReturn(t *testing.T) {
	tab := symboltab.New()
	a := typeeval.FunctionInstance{Params: []typeeval.EvaluatedType{typeeval.Void{}}, Return: typeeval.Never{}}
	b := typeeval.FunctionInstance{Params: []typeeval.EvaluatedType{typeeval.Void{}}, Return: typeeval.Void{}}

	got, errs := Unify(a, b, tab, None, nil)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fi, ok := got.(typeeval.FunctionInstance)
	if !ok {
		t.Fatalf("expected FunctionInstance, got %#v", got)
	}
	if _, ok := fi.Return.(typeeval.Void); !ok {
		t.Fatalf("expected Never to collapse to Void in return position, got %#v", fi.Return)
	}
}

func TestUnifyWrongArityFunctionFails(t *testing.T) {
	tab := symboltab.New()
	a := typeeval.FunctionInstance{Params: []typeeval.EvaluatedType{typeeval.Void{}}}
	b := typeeval.FunctionInstance{Params: []typeeval.EvaluatedType{typeeval.Void{}, typeeval.Void{}}}

	_, errs := Unify(a, b, tab, None, nil)
	if len(errs) == 0 || errs[0].Kind != WrongArity {
		t.Fatalf("expected WrongArity, got %v", errs)
	}
}
