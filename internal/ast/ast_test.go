package ast

import (
	"testing"

	"github.com/adebola-io/whirl/internal/token"
)

func TestSpanContains(t *testing.T) {
	outer := token.Span{Start: token.Position{Line: 1, Column: 1}, End: token.Position{Line: 10, Column: 1}}
	inner := token.Span{Start: token.Position{Line: 2, Column: 1}, End: token.Position{Line: 3, Column: 1}}
	if !outer.Contains(inner) {
		t.Fatalf("expected outer to contain inner")
	}
	if inner.Contains(outer) {
		t.Fatalf("inner should not contain outer")
	}
}

func TestAmbienceRegisterResolve(t *testing.T) {
	amb := NewAmbience(0)
	sig := &Signature{Name: "Main", IsPublic: true}
	addr := amb.Register(sig)

	got, ok := amb.Resolve(addr)
	if !ok || got != sig {
		t.Fatalf("expected to resolve the registered signature, got %v ok=%v", got, ok)
	}

	amb.Enter(FunctionScope)
	inner := &Signature{Name: "x"}
	amb.Register(inner)
	if found, ok := amb.Current().Lookup("Main"); !ok || found != sig {
		t.Fatalf("expected inner scope to see outer declarations via Lookup")
	}
	amb.Leave()
	if _, ok := amb.Current().Lookup("x"); ok {
		t.Fatalf("expected x to go out of scope after Leave")
	}
}

func TestModuleNameRequirement(t *testing.T) {
	// spec.md §3 invariant: module name equals file stem.
	m := &Module{
		ModuleDecl: &ModuleDecl{Name: "Test"},
		Path:       "Test.wrl",
	}
	if m.ModuleDecl.Name != "Test" {
		t.Fatalf("unexpected module name %q", m.ModuleDecl.Name)
	}
}
