// Package standpoint is the consumer API spec.md §6 describes: the single
// entry point a host (CLI, REPL, language server) drives to add/refresh
// module sources and query the result. It owns the symbol table and module
// graph, serializing every mutation behind its own mutex the way spec.md §5
// requires ("within one standpoint all mutation is serialized by virtue of
// exclusive access"); concurrently analyzing several standpoints is the
// caller's business, not this package's.
//
// Grounded on the teacher's internal/pipeline + internal/link: a driver
// that owns the whole-program graph and can re-walk it incrementally after
// one file changes, generalized here from AILANG's module linking to
// Whirlwind's binder/checker pipeline.
package standpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/adebola-io/whirl/internal/binder"
	"github.com/adebola-io/whirl/internal/check"
	"github.com/adebola-io/whirl/internal/lexer"
	"github.com/adebola-io/whirl/internal/modgraph"
	"github.com/adebola-io/whirl/internal/parser"
	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/token"
	"github.com/adebola-io/whirl/internal/typeeval"
)

// Reference is one occurrence of a symbol, returned by FindAllReferences
// (spec.md §6 "find_all_references(SymbolIndex) -> iterator<{path, position}>").
type Reference struct {
	Path     string
	Position token.Position
}

// Declaration is the answer to get_declaration_of: where a symbol was
// introduced.
type Declaration struct {
	Path string
	Span token.Span
}

// Standpoint is one analyzed program: a symbol table, a module graph, and
// the accumulated per-module diagnostics, all addressable by source path.
type Standpoint struct {
	InstanceID uuid.UUID

	mu                   sync.Mutex
	tab                  *symboltab.Table
	graph                *modgraph.Graph
	shouldResolveImports bool
	corelibPath          string

	diagnostics map[string][]error // path -> diagnostics raised the last time it was (re)analyzed
	sources     map[string]string  // path -> last known source text, for diag rendering
}

// New creates an empty Standpoint (spec.md §6 "new(should_resolve_imports,
// corelib_path?)"). corelibPath may be empty; a missing corelib degrades
// every intrinsic lookup to Unknown plus TYP020, per spec.md §7.
func New(shouldResolveImports bool, corelibPath string) *Standpoint {
	return &Standpoint{
		InstanceID:           uuid.New(),
		tab:                  symboltab.New(),
		graph:                modgraph.New(),
		shouldResolveImports: shouldResolveImports,
		corelibPath:          corelibPath,
		diagnostics:          map[string][]error{},
		sources:              map[string]string{},
	}
}

// Table exposes the underlying symbol table for read-only queries (hover,
// hover-adjacent hosts that want symbol metadata beyond this API's surface).
func (s *Standpoint) Table() *symboltab.Table { return s.tab }

// AddModule parses, binds and typechecks the source text at path, adding it
// to the module graph. Returns the assigned PathIndex (spec.md §6
// "add_module(Module) -> PathIndex?"); ok is false only if the path is
// already registered (use RefreshModuleWithText to update it instead).
func (s *Standpoint) AddModule(path, text string) (modgraph.PathIndex, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, exists := s.graph.GetByPath(path); exists {
		return -1, false
	}
	idx := s.analyze(path, text)
	return idx, true
}

// RefreshModuleWithText re-parses, re-binds and re-typechecks path,
// discarding every symbol the previous analysis of that module declared
// before re-adding it (spec.md §6 "refresh_module_with_text(path, text)",
// §4.3 "Refresh"). Every other module's imports are re-resolved afterward
// since any of them may have referenced a symbol this refresh just moved
// or removed (spec.md §5 "refreshing any module triggers re-resolution of
// every module's imports").
func (s *Standpoint) RefreshModuleWithText(path, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, oldIdx, ok := s.graph.GetByPath(path); ok {
		s.tab.RemoveAllFrom(old.Declared)
		s.tab.PruneReferencesFrom(path)
		s.graph.Remove(oldIdx)
	}
	s.analyze(path, text)
	s.reresolveImports()
}

// analyze runs one module through parse -> bind -> check and records it in
// the graph plus this standpoint's diagnostic set. Caller must hold mu.
func (s *Standpoint) analyze(path, text string) modgraph.PathIndex {
	s.sources[path] = text

	lx := lexer.New(text, path)
	mod, _, perrs := parser.ParseModuleWithAmbience(lx, 0, path)

	tm, berrs := binder.Bind(mod, path, s.tab)

	var allErrs []error
	allErrs = append(allErrs, perrs...)
	allErrs = append(allErrs, berrs...)

	idx := s.graph.Add(tm, modgraph.StemName(path))
	if modgraph.StemName(path) == "Core" {
		s.graph.SetCorelib(idx)
	}

	allErrs = append(allErrs, s.resolveModuleImports(tm)...)

	resolve := s.resolverFor(tm)
	c := check.New(path, s.tab, resolve, s.intrinsics())
	c.CheckModule(mod)
	allErrs = append(allErrs, c.Errors()...)

	s.diagnostics[path] = allErrs
	return idx
}

// resolverFor builds the Resolver a module's own checker pass consults:
// its own declarations first (spec.md §4.2 "global declarations are
// visible throughout the module regardless of order"), corelib intrinsics
// are handled separately via Intrinsics, not through this resolver.
func (s *Standpoint) resolverFor(tm *modgraph.TypedModule) check.Resolver {
	return func(name string) (symboltab.SymbolIndex, bool) {
		sym, ok := s.tab.Get(tm.SymbolIdx)
		if !ok {
			return symboltab.Invalid, false
		}
		exports, ok := sym.Decl.(*binder.ModuleExports)
		if !ok {
			return symboltab.Invalid, false
		}
		idx, ok := exports.All[name]
		return idx, ok
	}
}

// intrinsics looks up Bool/String/Array/Int/... in the loaded corelib
// module's public exports (spec.md §6 "Intrinsic symbols looked up by name
// in the corelib module"). With no corelib loaded, every lookup fails and
// the checker degrades to Unknown plus TYP020, per spec.md §7.
func (s *Standpoint) intrinsics() check.Intrinsics {
	return check.Intrinsics{Lookup: func(name string) (typeeval.EvaluatedType, bool) {
		corelibIdx, ok := s.graph.Corelib()
		if !ok {
			return nil, false
		}
		core, ok := s.graph.Get(corelibIdx)
		if !ok {
			return nil, false
		}
		sym, ok := s.tab.Get(core.SymbolIdx)
		if !ok {
			return nil, false
		}
		exports, ok := sym.Decl.(*binder.ModuleExports)
		if !ok {
			return nil, false
		}
		idx, ok := exports.Names[name]
		if !ok {
			return nil, false
		}
		return intrinsicType(s.tab, idx, name)
	}}
}

// intrinsicType lifts one corelib symbol into the EvaluatedType shape an
// intrinsic lookup is expected to hand back: a bare named Model for value
// types (Int, Bool, String, Array) and a bare named Trait for the
// contract-style intrinsics (Guaranteed, Try, Prospect).
func intrinsicType(tab *symboltab.Table, idx symboltab.SymbolIndex, name string) (typeeval.EvaluatedType, bool) {
	sym, ok := tab.Get(idx)
	if !ok {
		return nil, false
	}
	switch sym.Kind {
	case symboltab.KindModel:
		return typeeval.ModelInstance{Model: idx, ModelName: name}, true
	case symboltab.KindTrait:
		return typeeval.TraitInstance{Trait: idx, TraitName: name}, true
	case symboltab.KindEnum:
		return typeeval.EnumInstance{Enum: idx, EnumName: name}, true
	default:
		return nil, false
	}
}

// reresolveImports re-runs the checker over every live module, matching
// spec.md §5's "refreshing any module triggers re-resolution of every
// module's imports in unspecified order"; a single-worker errgroup is used
// so the walk follows the same cancellation idiom a larger, cooperative
// standpoint host would reach for, without actually running modules
// concurrently (pinned to 1 because mutation of the shared symbol table
// is not safe to parallelize, per spec.md §5 "serialized by exclusive
// access").
func (s *Standpoint) reresolveImports() {
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(1)
	for _, tm := range s.graph.All() {
		tm := tm
		g.Go(func() error {
			importErrs := s.resolveModuleImports(tm)
			resolve := s.resolverFor(tm)
			c := check.New(tm.Path, s.tab, resolve, s.intrinsics())
			c.CheckModule(tm.AST)
			var errs []error
			errs = append(errs, importErrs...)
			errs = append(errs, c.Errors()...)
			s.diagnostics[tm.Path] = errs
			return nil
		})
	}
	_ = g.Wait() // no step returns an error; this walk cannot fail
}

// GetDeclarationOf answers spec.md §6's "get_declaration_of(SymbolIndex) ->
// {path, span}?": where a symbol was introduced, derived from its
// OriginSpan plus the module that declared it.
func (s *Standpoint) GetDeclarationOf(idx symboltab.SymbolIndex) (Declaration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sym, ok := s.tab.Get(idx)
	if !ok {
		return Declaration{}, false
	}
	for _, tm := range s.graph.All() {
		for _, declIdx := range tm.Declared {
			if declIdx == idx {
				return Declaration{Path: tm.Path, Span: sym.OriginSpan}, true
			}
		}
	}
	return Declaration{}, false
}

// FindAllReferences answers spec.md §6's "find_all_references(SymbolIndex)
// -> iterator<{path, position}>"; a slice stands in for the iterator since
// Go has no generator syntax and the whole reference list is cheap to
// materialize for a single symbol.
func (s *Standpoint) FindAllReferences(idx symboltab.SymbolIndex) []Reference {
	s.mu.Lock()
	defer s.mu.Unlock()

	sym, ok := s.tab.Get(idx)
	if !ok {
		return nil
	}
	var refs []Reference
	for _, list := range sym.References {
		for _, pos := range list.Starts {
			refs = append(refs, Reference{Path: list.ModulePath, Position: pos})
		}
	}
	return refs
}

// GetModuleAtPath answers spec.md §6's "get_module_at_path(path) ->
// TypedModule?".
func (s *Standpoint) GetModuleAtPath(path string) (*modgraph.TypedModule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tm, _, ok := s.graph.GetByPath(path)
	return tm, ok
}

// Diagnostics returns every diagnostic raised the last time path was
// analyzed (empty slice, not nil, if it analyzed clean).
func (s *Standpoint) Diagnostics(path string) []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.diagnostics[path]; d != nil {
		return d
	}
	return []error{}
}

// Source returns the last text RefreshModuleWithText/AddModule recorded
// for path, for diagnostic rendering.
func (s *Standpoint) Source(path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src, ok := s.sources[path]
	return src, ok
}

// CorelibPath reports the workspace-configured corelib path, mostly for
// hosts that want to show it in status output.
func (s *Standpoint) CorelibPath() string { return s.corelibPath }

func (s *Standpoint) String() string {
	return fmt.Sprintf("standpoint %s (%d modules)", s.InstanceID, len(s.graph.All()))
}
