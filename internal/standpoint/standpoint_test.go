package standpoint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adebola-io/whirl/internal/errors"
)

func TestAddModuleRegistersPathAndReturnsStableIndex(t *testing.T) {
	sp := New(true, "")
	src := `module Test;
public function Main() {
	greeting := "Say Hello";
}
`
	idx, ok := sp.AddModule("Test.wrl", src)
	require.True(t, ok, "expected AddModule to succeed on a fresh path")
	require.GreaterOrEqual(t, int(idx), 0, "expected a valid path index")
	_, found := sp.GetModuleAtPath("Test.wrl")
	require.True(t, found, "expected get_module_at_path to find the module just added")
}

func TestAddModuleTwiceAtSamePathFails(t *testing.T) {
	sp := New(true, "")
	src := "module Test;\n"
	if _, ok := sp.AddModule("Test.wrl", src); !ok {
		t.Fatalf("first AddModule should succeed")
	}
	if _, ok := sp.AddModule("Test.wrl", src); ok {
		t.Fatalf("second AddModule at the same path should fail; use RefreshModuleWithText")
	}
}

func TestMissingIntrinsicDegradesToUnknownDiagnostic(t *testing.T) {
	sp := New(true, "")
	src := `module Test;
public function Main() {
	greeting := "Say Hello";
	const CONSTANT: Number = 9090;
}
`
	sp.AddModule("Test.wrl", src)
	diags := sp.Diagnostics("Test.wrl")
	found := false
	for _, e := range diags {
		if d, ok := e.(*errors.Diagnostic); ok && d.Code == errors.TYP020 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a TYP020 (missing intrinsic) diagnostic for the corelib-less standpoint, got %v", diags)
	}
}

func TestRefreshModuleWithTextReplacesDeclaredSymbols(t *testing.T) {
	sp := New(true, "")
	sp.AddModule("Test.wrl", "module Test;\nfunction f() {}\n")
	before, _ := sp.GetModuleAtPath("Test.wrl")
	beforeCount := len(before.Declared)

	sp.RefreshModuleWithText("Test.wrl", "module Test;\nfunction f() {}\nfunction g() {}\n")
	after, ok := sp.GetModuleAtPath("Test.wrl")
	if !ok {
		t.Fatalf("expected the module to still be registered after refresh")
	}
	if len(after.Declared) <= beforeCount {
		t.Fatalf("expected refresh to pick up the newly added declaration g")
	}
}

func TestRefreshWithIdenticalTextYieldsEquivalentDiagnostics(t *testing.T) {
	sp := New(true, "")
	src := `module Test;
public function Main() {
	greeting := "Say Hello";
}
`
	sp.AddModule("Test.wrl", src)
	before := len(sp.Diagnostics("Test.wrl"))

	sp.RefreshModuleWithText("Test.wrl", src)
	after := len(sp.Diagnostics("Test.wrl"))

	if before != after {
		t.Fatalf("refreshing with identical text should yield an equivalent diagnostic set, got %d before and %d after", before, after)
	}
}
