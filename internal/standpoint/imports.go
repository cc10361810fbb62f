package standpoint

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adebola-io/whirl/internal/binder"
	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/internal/modgraph"
	"github.com/adebola-io/whirl/internal/symboltab"
)

// resolveModuleImports walks every UseTarget bound in tm and fills in its
// ImportBinding (spec.md §4.3 "Resolve imports"). Segments are walked
// left to right against reserved heads (Package/Super/Core) or sibling
// files in the current directory, loading a sibling off disk the first
// time it's named (step 1 "loading the file if not yet added"); the final
// Leaf is then looked up in the resolved module's declarations. Caller
// must hold mu; this may recursively call analyze for a not-yet-loaded
// sibling, which is safe since analyze itself never touches mu.
func (s *Standpoint) resolveModuleImports(tm *modgraph.TypedModule) []error {
	ownDir := filepath.Dir(tm.Path)
	var errs []error
	seen := map[string]bool{}

	report := func(d *errors.Diagnostic) {
		key := d.Code + "|" + d.Message
		if seen[key] {
			return
		}
		seen[key] = true
		errs = append(errs, d)
	}

	for _, ib := range tm.Imports {
		t := ib.Target

		curDir := ownDir
		var curModule *modgraph.TypedModule
		failed := false

		for _, seg := range t.Segments {
			switch seg {
			case "Package":
				idx, ok := s.graph.Entry()
				if !ok {
					report(errors.New(errors.IMP001, t.Sp, "no entry module loaded to resolve `Package`"))
					failed = true
				} else {
					curModule, _ = s.graph.Get(idx)
					curDir = filepath.Dir(curModule.Path)
				}
			case "Super":
				curModule = nil
				// curDir stays put: Super anchors to this directory's own
				// module rather than a parent, so a following segment or
				// the leaf resolves a sibling here.
			case "Core":
				idx, ok := s.graph.Corelib()
				if !ok {
					report(errors.New(errors.IMP001, t.Sp, "no corelib loaded to resolve `Core`"))
					failed = true
				} else {
					curModule, _ = s.graph.Get(idx)
					curDir = filepath.Dir(curModule.Path)
				}
			default:
				idx, ok := s.resolveOrLoadModule(curDir, seg)
				if !ok {
					report(errors.New(errors.IMP001, t.Sp, "cannot find module %q", seg))
					failed = true
				} else {
					curModule, _ = s.graph.Get(idx)
					if curModule.Path == tm.Path {
						report(errors.New(errors.IMP002, t.Sp, "module imports itself"))
						failed = true
					} else {
						curDir = filepath.Dir(curModule.Path)
					}
				}
			}
			if failed {
				break
			}
		}
		if failed {
			continue
		}

		var sourceIdx symboltab.SymbolIndex
		if curModule == nil {
			idx, ok := s.resolveOrLoadModule(curDir, t.Leaf)
			if !ok {
				report(errors.New(errors.IMP001, t.Sp, "cannot find module %q", t.Leaf))
				continue
			}
			leafModule, _ := s.graph.Get(idx)
			if leafModule.Path == tm.Path {
				report(errors.New(errors.IMP002, t.Sp, "module imports itself"))
				continue
			}
			sourceIdx = leafModule.SymbolIdx
		} else {
			exports, ok := moduleExportsOf(s.tab, curModule)
			if !ok {
				report(errors.New(errors.IMP003, t.Sp, "%q is not a module", strings.Join(t.Segments, ".")))
				continue
			}
			idx, ok := exports.All[t.Leaf]
			if !ok {
				report(errors.New(errors.IMP004, t.Sp, "no such symbol %q in module %q", t.Leaf, exports.Path))
				continue
			}
			if _, public := exports.Names[t.Leaf]; !public {
				report(errors.New(errors.IMP005, t.Sp, "%q is private in module %q", t.Leaf, exports.Path))
			}
			sourceIdx = idx
		}

		if sourceIdx == tm.SymbolIdx {
			report(errors.New(errors.IMP002, t.Sp, "module imports itself"))
			continue
		}

		ib.ResolvedTo = sourceIdx
		if sym, ok := s.tab.Get(ib.SymbolIdx); ok {
			sym.Import.Source = sourceIdx
		}
		s.tab.AddReference(sourceIdx, tm.Path, t.Sp.Start)
	}

	return errs
}

// resolveOrLoadModule finds a sibling module named name inside dir,
// reading and analyzing it off disk the first time it's referenced
// (spec.md §4.3 step 1 "loading the file if not yet added").
func (s *Standpoint) resolveOrLoadModule(dir, name string) (modgraph.PathIndex, bool) {
	if idx, ok := s.graph.LookupInDirectory(dir, name); ok {
		return idx, true
	}
	path := filepath.Join(dir, name+".wrl")
	data, err := os.ReadFile(path)
	if err != nil {
		return -1, false
	}
	idx := s.analyze(path, string(data))
	return idx, true
}

// moduleExportsOf recovers the ModuleExports a module's own KindModule
// symbol carries, the view import resolution walks (spec.md §4.4
// "MemberType"); ok is false when the symbol a segment resolved to turns
// out not to denote a module at all (spec.md's "symbol is not a module").
func moduleExportsOf(tab *symboltab.Table, tm *modgraph.TypedModule) (*binder.ModuleExports, bool) {
	sym, ok := tab.Get(tm.SymbolIdx)
	if !ok {
		return nil, false
	}
	exports, ok := sym.Decl.(*binder.ModuleExports)
	return exports, ok
}
