// Package binder turns one parsed ast.Module into a modgraph.TypedModule:
// it allocates a SemanticSymbol for every declaration and rebuilds a lexical
// scope chain to resolve identifier uses (spec.md §4.2 "Binder"). Signature
// type expressions are not lowered here; the checker lowers them into
// typeeval.IntermediateType when it evaluates them (see check.evalType).
// Binding never aborts on an unresolved name; it records a BND001 and
// keeps walking, the same total-progress discipline the parser uses for
// syntax errors.
package binder

import (
	"fmt"

	"github.com/adebola-io/whirl/internal/ast"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/modgraph"
	"github.com/adebola-io/whirl/internal/symboltab"
	"github.com/adebola-io/whirl/internal/token"
	"github.com/adebola-io/whirl/internal/typeeval"
)

// ModuleExports is the Decl a module's own KindModule symbol carries,
// letting the type evaluator resolve `Namespace.Property` member-type
// expressions without importing this package (spec.md §4.4 "MemberType").
type ModuleExports struct {
	Path string
	// Names holds only the module's public declarations, the set `use`
	// resolution and cross-module member access may reach.
	Names map[string]symboltab.SymbolIndex
	// All holds every top-level declaration regardless of visibility, for
	// the checker's own-module type-name resolution (spec.md §4.2 "global
	// declarations are visible throughout the module regardless of
	// order"); never consulted across a module boundary.
	All map[string]symboltab.SymbolIndex
	Sp  token.Span
}

func (m *ModuleExports) Span() token.Span { return m.Sp }
func (m *ModuleExports) String() string    { return fmt.Sprintf("module %s", m.Path) }
func (m *ModuleExports) Exports() map[string]symboltab.SymbolIndex { return m.Names }

var _ typeeval.ModuleExportsCarrier = (*ModuleExports)(nil)

type scope map[string]symboltab.SymbolIndex

type thisFrame struct {
	symbol symboltab.SymbolIndex
	name   string
	isEnum bool
}

// binder carries the mutable state one Bind call threads through the
// module; it is not exported because callers only ever need the Bind
// entry point.
type binder struct {
	tab        *symboltab.Table
	path       string
	scopes     []scope
	thisStack  []thisFrame
	exports    map[string]symboltab.SymbolIndex
	declared   []symboltab.SymbolIndex
	imports    []*modgraph.ImportBinding
	errs       []error
}

// Bind allocates symbols for every declaration in mod and resolves every
// identifier use it can reach, returning the TypedModule the Graph will
// index (spec.md §4.2).
func Bind(mod *ast.Module, path string, tab *symboltab.Table) (*modgraph.TypedModule, []error) {
	b := &binder{tab: tab, path: path, exports: make(map[string]symboltab.SymbolIndex)}
	b.pushScope()
	defer b.popScope()

	b.checkModuleName(mod, path)

	for _, stmt := range mod.Statements {
		b.declareTopLevel(stmt)
	}
	for _, stmt := range mod.Statements {
		b.walkStatement(stmt)
	}

	modSym := &symboltab.SemanticSymbol{
		Name: modgraph.StemName(path),
		Kind: symboltab.KindModule,
		Decl: &ModuleExports{Path: path, Names: b.exports, All: b.scopes[0], Sp: mod.Sp},
	}
	modIdx := tab.Add(modSym)
	b.declared = append(b.declared, modIdx)

	tm := &modgraph.TypedModule{
		Path:       path,
		SymbolIdx:  modIdx,
		AST:        mod,
		Statements: mod.Statements,
		Imports:    b.imports,
		Declared:   b.declared,
	}
	return tm, b.errs
}

func (b *binder) checkModuleName(mod *ast.Module, path string) {
	stem := modgraph.StemName(path)
	if mod.ModuleDecl == nil {
		b.errorf(errors.IMP006, mod.Sp, "module %q has no `module` declaration; using its file stem as a synthetic name", stem)
		return
	}
	if mod.ModuleDecl.Name != stem {
		b.errorf(errors.IMP007, mod.ModuleDecl.Sp, "module declared as %q but file is named %q", mod.ModuleDecl.Name, stem)
	}
}

func (b *binder) errorf(code string, span token.Span, format string, args ...interface{}) {
	b.errs = append(b.errs, errors.New(code, span, format, args...))
}

func (b *binder) pushScope()      { b.scopes = append(b.scopes, scope{}) }
func (b *binder) popScope()       { b.scopes = b.scopes[:len(b.scopes)-1] }
func (b *binder) top() scope      { return b.scopes[len(b.scopes)-1] }

func (b *binder) declare(name string, idx symboltab.SymbolIndex) {
	if name == "" {
		return
	}
	b.top()[name] = idx
}

// resolve walks the scope stack innermost-first, then the module's own
// top-level export table (covers forward references to declarations that
// appear later in the file, since declareTopLevel already ran).
func (b *binder) resolve(name string) (symboltab.SymbolIndex, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if idx, ok := b.scopes[i][name]; ok {
			return idx, true
		}
	}
	if idx, ok := b.exports[name]; ok {
		return idx, true
	}
	return symboltab.Invalid, false
}

func (b *binder) add(sym *symboltab.SemanticSymbol) symboltab.SymbolIndex {
	idx := b.tab.Add(sym)
	b.declared = append(b.declared, idx)
	return idx
}

// declareTopLevel allocates one symbol per global declaration and records
// it in the binder's current (global) scope and, for public declarations,
// in the module's export table, so `use` resolution and forward references
// both work without a second pass (spec.md §4.2 "global declarations are visible throughout
// the module regardless of order").
func (b *binder) declareTopLevel(stmt ast.Statement) {
	switch d := stmt.(type) {
	case *ast.FunctionDecl:
		idx := b.add(&symboltab.SemanticSymbol{Name: d.Name, Kind: symboltab.KindFunction, DocInfo: d.DocInfo, OriginSpan: d.Sp, Decl: d})
		b.declare(d.Name, idx)
		if d.IsPublic {
			b.exports[d.Name] = idx
		}
	case *ast.ModelDecl:
		idx := b.add(&symboltab.SemanticSymbol{Name: d.Name, Kind: symboltab.KindModel, OriginSpan: d.Sp, Decl: d})
		b.declare(d.Name, idx)
		if d.IsPublic {
			b.exports[d.Name] = idx
		}
		b.declareModelMembers(d)
	case *ast.TraitDecl:
		idx := b.add(&symboltab.SemanticSymbol{Name: d.Name, Kind: symboltab.KindTrait, OriginSpan: d.Sp, Decl: d})
		b.declare(d.Name, idx)
		if d.IsPublic {
			b.exports[d.Name] = idx
		}
		for _, m := range d.Methods {
			b.add(&symboltab.SemanticSymbol{Name: m.Signature.Name, Kind: symboltab.KindMethod, OriginSpan: m.Signature.Sp, Decl: m.Signature})
		}
	case *ast.EnumDecl:
		idx := b.add(&symboltab.SemanticSymbol{Name: d.Name, Kind: symboltab.KindEnum, OriginSpan: d.Sp, Decl: d})
		b.declare(d.Name, idx)
		if d.IsPublic {
			b.exports[d.Name] = idx
		}
		for _, v := range d.Variants {
			b.add(&symboltab.SemanticSymbol{Name: v.Name, Kind: symboltab.KindVariant, OriginSpan: v.Sp, Decl: d})
		}
	case *ast.TypeAliasDecl:
		idx := b.add(&symboltab.SemanticSymbol{Name: d.Name, Kind: symboltab.KindTypeName, OriginSpan: d.Sp, Decl: d})
		b.declare(d.Name, idx)
		if d.IsPublic {
			b.exports[d.Name] = idx
		}
	case *ast.VarDecl:
		for _, vp := range d.Patterns {
			for name, span := range patternLeaves(vp.Pattern) {
				kind := symboltab.KindVariable
				if d.IsConst {
					kind = symboltab.KindConstant
				}
				idx := b.add(&symboltab.SemanticSymbol{Name: name, Kind: kind, OriginSpan: span, Decl: d})
				b.declare(name, idx)
				if d.IsPublic {
					b.exports[name] = idx
				}
			}
		}
	case *ast.UseDecl:
		for _, t := range d.Targets {
			idx := b.add(&symboltab.SemanticSymbol{
				Name: t.Alias, Kind: symboltab.KindImport, OriginSpan: t.Sp,
				Import: &symboltab.ImportInfo{Source: symboltab.Invalid},
			})
			b.declare(t.Alias, idx)
			b.imports = append(b.imports, &modgraph.ImportBinding{
				Target: t, SymbolIdx: idx, ResolvedTo: symboltab.Invalid,
			})
		}
	}
}

func (b *binder) declareModelMembers(d *ast.ModelDecl) {
	for _, a := range d.Attributes {
		b.add(&symboltab.SemanticSymbol{Name: a.Name, Kind: symboltab.KindAttribute, OriginSpan: a.Sp, Decl: d})
	}
	for _, m := range d.Methods {
		b.add(&symboltab.SemanticSymbol{Name: m.Function.Name, Kind: symboltab.KindMethod, OriginSpan: m.Function.Sp, Decl: m.Function})
	}
	if d.New != nil {
		b.add(&symboltab.SemanticSymbol{Name: "new", Kind: symboltab.KindMethod, OriginSpan: d.New.Sp, Decl: d.New})
	}
}

// patternLeaves flattens a destructuring pattern into its bound names,
// paired with the span to attribute the declaration to.
func patternLeaves(p ast.Pattern) map[string]token.Span {
	out := map[string]token.Span{}
	var walk func(p ast.Pattern)
	walk = func(p ast.Pattern) {
		switch pt := p.(type) {
		case *ast.IdentifierPattern:
			out[pt.Name] = pt.Sp
		case *ast.ObjectPattern:
			for _, f := range pt.Fields {
				out[f.Alias] = f.Sp
			}
		case *ast.ArrayPattern:
			for _, e := range pt.Elements {
				walk(e)
			}
		}
	}
	walk(p)
	return out
}
