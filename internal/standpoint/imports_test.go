package standpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adebola-io/whirl/internal/errors"
)

func hasCode(diags []error, code string) bool {
	for _, e := range diags {
		if d, ok := e.(*errors.Diagnostic); ok && d.Code == code {
			return true
		}
	}
	return false
}

func TestResolveImportsLoadsSiblingModuleFromDisk(t *testing.T) {
	dir := t.TempDir()
	utilPath := filepath.Join(dir, "Util.wrl")
	mainPath := filepath.Join(dir, "Main.wrl")

	if err := os.WriteFile(utilPath, []byte("module Util;\npublic function Helper() {}\n"), 0644); err != nil {
		t.Fatalf("write Util.wrl: %v", err)
	}

	sp := New(true, "")
	sp.AddModule(mainPath, "module Main;\nuse Util.Helper;\n")

	if hasCode(sp.Diagnostics(mainPath), errors.IMP001) {
		t.Fatalf("expected Util.Helper to resolve without a cannot-find-module error, got %v", sp.Diagnostics(mainPath))
	}
	if _, ok := sp.GetModuleAtPath(utilPath); !ok {
		t.Fatalf("expected resolving Util.Helper to load Util.wrl into the graph")
	}
}

func TestSelfImportRejected(t *testing.T) {
	dir := t.TempDir()
	testPath := filepath.Join(dir, "Test.wrl")

	sp := New(true, "")
	sp.AddModule(testPath, "module Test;\nuse Test.Main;\n")

	if !hasCode(sp.Diagnostics(testPath), errors.IMP002) {
		t.Fatalf("expected a self-import diagnostic, got %v", sp.Diagnostics(testPath))
	}
}

func TestImportOfPrivateSymbolIsFlagged(t *testing.T) {
	dir := t.TempDir()
	utilPath := filepath.Join(dir, "Util.wrl")
	mainPath := filepath.Join(dir, "Main.wrl")

	if err := os.WriteFile(utilPath, []byte("module Util;\nfunction helper() {}\n"), 0644); err != nil {
		t.Fatalf("write Util.wrl: %v", err)
	}

	sp := New(true, "")
	sp.AddModule(mainPath, "module Main;\nuse Util.helper;\n")

	if !hasCode(sp.Diagnostics(mainPath), errors.IMP005) {
		t.Fatalf("expected a private-symbol-leak diagnostic importing a non-public function, got %v", sp.Diagnostics(mainPath))
	}
}

func TestImportOfMissingSiblingReportsCannotFindModule(t *testing.T) {
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "Main.wrl")

	sp := New(true, "")
	sp.AddModule(mainPath, "module Main;\nuse Missing.Thing;\n")

	if !hasCode(sp.Diagnostics(mainPath), errors.IMP001) {
		t.Fatalf("expected a cannot-find-module diagnostic, got %v", sp.Diagnostics(mainPath))
	}
}
