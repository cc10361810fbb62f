// Package symboltab is the arena+index symbol table the binder populates
// and the type evaluator/checker read and mutate (spec.md §3 "Invariants",
// §9 "Cross-symbol back-references"). Every handed-out SymbolIndex stays
// stable across removals: a removed slot becomes a hole the next Add
// reuses, exactly the way the teacher's module loader keeps a cache
// keyed by stable identity rather than by position.
package symboltab

import (
	"sort"
	"sync"

	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/token"
)

// SymbolIndex is a stable handle into a Table's arena.
type SymbolIndex int

// Invalid marks the absence of a symbol (e.g. an unresolved import source).
const Invalid SymbolIndex = -1

// Kind tags what a SemanticSymbol denotes (spec.md §3 "SemanticSymbol").
type Kind int

const (
	KindModule Kind = iota
	KindTrait
	KindModel
	KindEnum
	KindVariant
	KindVariable
	KindConstant
	KindAttribute
	KindMethod
	KindParameter
	KindGenericParameter
	KindFunction
	KindTypeName
	KindImport
	KindProperty
	KindUndeclaredValue
)

// SymbolReferenceList is every source position that names one symbol
// within a single module; the first entry is always the declaration site
// (spec.md §3 invariant).
type SymbolReferenceList struct {
	ModulePath string
	Starts     []token.Position
}

// ImportInfo records an Import symbol's resolution state (spec.md §4.3);
// Source is Invalid until the import resolver runs.
type ImportInfo struct {
	Source SymbolIndex
}

// SemanticSymbol is one declared or referenced name in the standpoint.
type SemanticSymbol struct {
	Name       string
	Kind       Kind
	References []SymbolReferenceList
	DocInfo    string
	OriginSpan token.Span

	// InferredType is written by the checker once an expression or
	// declaration's type is known; nil until then.
	InferredType interface{}

	// Import is populated only for KindImport symbols.
	Import *ImportInfo

	// Decl is the originating AST declaration (FunctionDecl, ModelDecl,
	// TraitDecl, EnumDecl, TypeAliasDecl, Param, ...), used by the type
	// evaluator to recover generics/attributes/members by symbol alone
	// (spec.md §4.4 "look up symbol").
	Decl ast.Node
}

// slot is one arena entry; removed is the sentinel left in a hole so
// indices never dangle (spec.md §9 "SymbolEntry::Removed").
type slot struct {
	sym     *SemanticSymbol
	removed bool
}

// Table is the symbol arena. All mutation is serialized by mu, mirroring
// the teacher's cache-with-mutex discipline in its module loader. holes is
// kept sorted ascending so Add always reuses the lowest free index, not
// merely the most recently freed one.
type Table struct {
	mu    sync.Mutex
	slots []slot
	holes []SymbolIndex
}

// New creates an empty symbol table.
func New() *Table {
	return &Table{}
}

// Add allocates a new symbol, reusing the smallest hole if one exists
// (spec.md §8 "After remove(idx) ... next add reuses the smallest hole").
func (t *Table) Add(sym *SemanticSymbol) SymbolIndex {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n := len(t.holes); n > 0 {
		idx := t.holes[0]
		t.holes = t.holes[1:]
		t.slots[idx] = slot{sym: sym}
		return idx
	}
	idx := SymbolIndex(len(t.slots))
	t.slots = append(t.slots, slot{sym: sym})
	return idx
}

// Get retrieves a live symbol, or (nil, false) for a hole or out-of-range index.
func (t *Table) Get(idx SymbolIndex) (*SemanticSymbol, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || int(idx) >= len(t.slots) || t.slots[idx].removed {
		return nil, false
	}
	return t.slots[idx].sym, true
}

// Remove turns idx into a hole; the symbol pointer is dropped so it can be
// garbage collected, but the index itself is never reassigned to anything
// but a hole until Add reuses it.
func (t *Table) Remove(idx SymbolIndex) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || int(idx) >= len(t.slots) || t.slots[idx].removed {
		return
	}
	t.slots[idx] = slot{removed: true}
	pos := sort.Search(len(t.holes), func(i int) bool { return t.holes[i] >= idx })
	t.holes = append(t.holes, 0)
	copy(t.holes[pos+1:], t.holes[pos:])
	t.holes[pos] = idx
}

// Len reports the arena's high-water mark, including holes.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}

// AddReference appends a use-site span to idx's reference list under
// modulePath, creating the per-module bucket on first use.
func (t *Table) AddReference(idx SymbolIndex, modulePath string, pos token.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || int(idx) >= len(t.slots) || t.slots[idx].removed {
		return
	}
	sym := t.slots[idx].sym
	for i := range sym.References {
		if sym.References[i].ModulePath == modulePath {
			sym.References[i].Starts = append(sym.References[i].Starts, pos)
			return
		}
	}
	sym.References = append(sym.References, SymbolReferenceList{ModulePath: modulePath, Starts: []token.Position{pos}})
}

// PruneReferencesFrom removes every reference recorded under modulePath
// from every live symbol, used by a module refresh before rebinding
// (spec.md §4.3 "Refresh").
func (t *Table) PruneReferencesFrom(modulePath string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		if t.slots[i].removed {
			continue
		}
		sym := t.slots[i].sym
		kept := sym.References[:0]
		for _, rl := range sym.References {
			if rl.ModulePath != modulePath {
				kept = append(kept, rl)
			}
		}
		sym.References = kept
	}
}

// RemoveAllFrom removes every symbol in indices. Callers pass the indices
// to remove since the table does not itself track which module owns a
// symbol (the binder records that in TypedModule.Declared).
func (t *Table) RemoveAllFrom(indices []SymbolIndex) {
	for _, idx := range indices {
		t.Remove(idx)
	}
}
