package modgraph

import "testing"

func TestAddGetByPath(t *testing.T) {
	g := New()
	mod := &TypedModule{Path: "proj/Test.wrl"}
	idx := g.Add(mod, "Test")
	got, gotIdx, ok := g.GetByPath("proj/Test.wrl")
	if !ok || got != mod || gotIdx != idx {
		t.Fatalf("expected to find the module back by path")
	}
}

func TestDirectoryLookup(t *testing.T) {
	g := New()
	mod := &TypedModule{Path: "proj/Util.wrl"}
	g.Add(mod, "Util")
	idx, ok := g.LookupInDirectory("proj", "Util")
	if !ok {
		t.Fatalf("expected Util to resolve within proj/")
	}
	got, _ := g.Get(idx)
	if got != mod {
		t.Fatalf("expected the directory lookup to return the same module")
	}
}

func TestRemoveFreesHoleForReuse(t *testing.T) {
	g := New()
	a := g.Add(&TypedModule{Path: "A.wrl"}, "A")
	g.Remove(a)
	b := g.Add(&TypedModule{Path: "B.wrl"}, "B")
	if b != a {
		t.Fatalf("expected the new module to reuse freed slot %d, got %d", a, b)
	}
	if _, ok := g.LookupInDirectory(".", "A"); ok {
		t.Fatalf("expected A to no longer resolve after removal")
	}
}

func TestStemName(t *testing.T) {
	if got := StemName("proj/sub/Account.wrl"); got != "Account" {
		t.Fatalf("expected Account, got %q", got)
	}
}
