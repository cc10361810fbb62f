package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultWorkspaceResolvesImportsWithNoCorelib(t *testing.T) {
	w := Default()
	if !w.ShouldResolveImports {
		t.Fatalf("expected the default workspace to resolve imports")
	}
	if w.ResolveCorelibPath("/tmp") != "" {
		t.Fatalf("expected no corelib path by default")
	}
}

func TestValidateRejectsEmptyRoots(t *testing.T) {
	w := &Workspace{Schema: SchemaVersion, ShouldResolveImports: true}
	if err := w.Validate(); err == nil {
		t.Fatalf("expected an error for a workspace with no roots")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whirlwind.yaml")

	w := &Workspace{
		Schema:               SchemaVersion,
		CorelibPath:          "corelib",
		Roots:                []string{"src"},
		ShouldResolveImports: true,
	}
	if err := w.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.CorelibPath != "corelib" || len(loaded.Roots) != 1 || loaded.Roots[0] != "src" {
		t.Fatalf("unexpected round-tripped workspace: %+v", loaded)
	}

	want := filepath.Join(dir, "corelib")
	if got := loaded.ResolveCorelibPath(dir); got != want {
		t.Fatalf("ResolveCorelibPath = %s, want %s", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error loading a missing manifest")
	}
}
