// Package modgraph is the Module Map & Directories layer (spec.md §2, §4.3):
// path-to-index bookkeeping and directory-keyed name resolution for `use`
// targets. It is grounded on the teacher's internal/module Resolver/Loader
// pair, generalized from AILANG's `.ail`/slash-path imports to Whirlwind's
// `.wrl`/dotted-path ones, and from a global cache to a per-Standpoint one
// so multiple standpoints can be analyzed concurrently (spec.md §5).
package modgraph

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/symboltab"
)

// TypedModule is the binder's output for one source file, indexed by the
// Graph (spec.md §3 "Standpoint.module_map").
type TypedModule struct {
	Path       string
	SymbolIdx  symboltab.SymbolIndex
	Ambience   *ast.Ambience
	AST        *ast.Module
	Statements []ast.Statement
	Imports    []*ImportBinding
	// Declared is every SymbolIndex the binder allocated while binding this
	// module; a refresh removes exactly these (spec.md §4.3 "Refresh").
	Declared []symboltab.SymbolIndex
}

// ImportBinding pairs one scattered UseTarget with its resolution state.
type ImportBinding struct {
	Target      *ast.UseTarget
	SymbolIdx   symboltab.SymbolIndex // the Import symbol itself
	ResolvedTo  symboltab.SymbolIndex // Invalid until resolved
	ResolvedErr error
}

// Graph owns the path<->index map and the directory index spec.md §4.3
// describes; it does not itself parse or bind — callers (the standpoint)
// hand it finished TypedModules.
type Graph struct {
	mu sync.Mutex

	byPath      map[string]int
	modules     []*TypedModule // index-aligned with byPath's values; holes are nil
	directories map[string]map[string]int // dir -> (module name -> module index)
	holes       []int

	corelibIndex int // -1 if unloaded
	entryIndex   int // -1 until the first module is ever added
}

// New creates an empty module graph.
func New() *Graph {
	return &Graph{
		byPath:       make(map[string]int),
		directories:  make(map[string]map[string]int),
		corelibIndex: -1,
		entryIndex:   -1,
	}
}

// PathIndex is the stable handle spec.md §6 calls a PathIndex.
type PathIndex int

// Add inserts a freshly bound module, reusing a hole if one exists, and
// indexes it by directory + declared name for `use` resolution.
func (g *Graph) Add(mod *TypedModule, declaredName string) PathIndex {
	g.mu.Lock()
	defer g.mu.Unlock()

	var idx int
	if n := len(g.holes); n > 0 {
		idx = g.holes[n-1]
		g.holes = g.holes[:n-1]
		g.modules[idx] = mod
	} else {
		idx = len(g.modules)
		g.modules = append(g.modules, mod)
	}
	g.byPath[mod.Path] = idx

	dir := filepath.Dir(mod.Path)
	names, ok := g.directories[dir]
	if !ok {
		names = make(map[string]int)
		g.directories[dir] = names
	}
	names[declaredName] = idx
	if g.entryIndex < 0 {
		g.entryIndex = idx
	}
	return PathIndex(idx)
}

// Remove drops a module, freeing its slot for reuse and removing it from
// its directory's name index.
func (g *Graph) Remove(idx PathIndex) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int(idx) < 0 || int(idx) >= len(g.modules) || g.modules[idx] == nil {
		return
	}
	mod := g.modules[idx]
	delete(g.byPath, mod.Path)
	dir := filepath.Dir(mod.Path)
	if names, ok := g.directories[dir]; ok {
		for name, i := range names {
			if i == int(idx) {
				delete(names, name)
			}
		}
	}
	g.modules[idx] = nil
	g.holes = append(g.holes, int(idx))
}

// Get returns the module stored at idx.
func (g *Graph) Get(idx PathIndex) (*TypedModule, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if int(idx) < 0 || int(idx) >= len(g.modules) || g.modules[idx] == nil {
		return nil, false
	}
	return g.modules[idx], true
}

// GetByPath returns the module registered under a given source path
// (spec.md §6 "get_module_at_path").
func (g *Graph) GetByPath(path string) (*TypedModule, PathIndex, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx, ok := g.byPath[path]
	if !ok || g.modules[idx] == nil {
		return nil, -1, false
	}
	return g.modules[idx], PathIndex(idx), true
}

// LookupInDirectory resolves a single name within dir's namespace, the
// step `use` path-segment walking repeats for every segment (spec.md §4.3
// step 1 "otherwise look up in the current directory").
func (g *Graph) LookupInDirectory(dir, name string) (PathIndex, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	names, ok := g.directories[dir]
	if !ok {
		return -1, false
	}
	idx, ok := names[name]
	return PathIndex(idx), ok
}

// SetCorelib records the corelib module's index, the module Core.*
// segments resolve against; -1 clears it.
func (g *Graph) SetCorelib(idx PathIndex) { g.mu.Lock(); g.corelibIndex = int(idx); g.mu.Unlock() }

// Corelib returns the current corelib module index, if loaded.
func (g *Graph) Corelib() (PathIndex, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.corelibIndex < 0 {
		return -1, false
	}
	return PathIndex(g.corelibIndex), true
}

// Entry returns the index of the first module ever added to this graph,
// the module `Package` resolves to in a `use` path (spec.md §4.3 step 1).
func (g *Graph) Entry() (PathIndex, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.entryIndex < 0 {
		return -1, false
	}
	return PathIndex(g.entryIndex), true
}

// All returns every live module, in index order, for operations that need
// to re-resolve the whole program (spec.md §4.3 "Refresh").
func (g *Graph) All() []*TypedModule {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*TypedModule, 0, len(g.modules))
	for _, m := range g.modules {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// StemName derives the expected module name from a `.wrl` file path
// (spec.md §3 "a module's name equals its file stem").
func StemName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
