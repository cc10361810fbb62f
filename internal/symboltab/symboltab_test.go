package symboltab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adebola-io/whirl/internal/token"
)

func TestAddGetRemove(t *testing.T) {
	tab := New()
	idx := tab.Add(&SemanticSymbol{Name: "Main", Kind: KindFunction})
	sym, ok := tab.Get(idx)
	require.True(t, ok)
	assert.Equal(t, "Main", sym.Name)

	tab.Remove(idx)
	_, ok = tab.Get(idx)
	assert.False(t, ok, "expected removed index to read as absent")
}

func TestRemoveCreatesReusableHole(t *testing.T) {
	tab := New()
	a := tab.Add(&SemanticSymbol{Name: "A"})
	tab.Remove(a)
	b := tab.Add(&SemanticSymbol{Name: "B"})
	assert.Equal(t, a, b, "expected the new symbol to reuse hole %d", a)
}

// TestAddReusesSmallestHoleUnderOutOfOrderRemoval exercises the exact
// scenario spec.md §8's invariant names: removing two non-adjacent indices
// out of order must not let the most recently freed one jump the queue.
func TestAddReusesSmallestHoleUnderOutOfOrderRemoval(t *testing.T) {
	tab := New()
	var idx [6]SymbolIndex
	for i := range idx {
		idx[i] = tab.Add(&SemanticSymbol{Name: "s"})
	}

	tab.Remove(idx[2])
	tab.Remove(idx[5])

	reused := tab.Add(&SemanticSymbol{Name: "reused-first"})
	require.Equal(t, idx[2], reused, "first Add after removing 2 then 5 must reuse 2, not 5")

	reusedAgain := tab.Add(&SemanticSymbol{Name: "reused-second"})
	assert.Equal(t, idx[5], reusedAgain, "second Add must reuse the remaining hole, 5")
}

func TestPruneReferencesFromModule(t *testing.T) {
	tab := New()
	idx := tab.Add(&SemanticSymbol{Name: "greeting"})
	tab.AddReference(idx, "A.wrl", posAt(1))
	tab.AddReference(idx, "B.wrl", posAt(2))
	tab.PruneReferencesFrom("A.wrl")
	sym, _ := tab.Get(idx)
	if len(sym.References) != 1 || sym.References[0].ModulePath != "B.wrl" {
		t.Fatalf("expected only B.wrl references to survive, got %#v", sym.References)
	}
}

func posAt(line int) token.Position {
	return token.Position{Line: line, Column: 1}
}
