// Package config loads the workspace manifest (whirlwind.yaml) that tells
// a Standpoint where the corelib lives and which directories to treat as
// module search roots (spec.md §6 "new(should_resolve_imports, corelib_path?)").
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the current whirlwind.yaml schema tag.
const SchemaVersion = "whirl.workspace/v1"

// Workspace is the parsed form of whirlwind.yaml.
type Workspace struct {
	Schema               string   `yaml:"schema"`
	CorelibPath          string   `yaml:"corelib_path,omitempty"`
	Roots                []string `yaml:"roots"`
	ShouldResolveImports bool     `yaml:"should_resolve_imports"`
}

// Default returns the workspace Whirlwind assumes when no whirlwind.yaml
// is present: imports resolve, no corelib, search rooted at ".".
func Default() *Workspace {
	return &Workspace{
		Schema:               SchemaVersion,
		Roots:                []string{"."},
		ShouldResolveImports: true,
	}
}

// Load reads and validates a workspace manifest from path.
func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workspace manifest: %w", err)
	}
	var w Workspace
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse workspace manifest: %w", err)
	}
	if w.Schema == "" {
		w.Schema = SchemaVersion
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workspace manifest %s: %w", path, err)
	}
	return &w, nil
}

// Validate checks internal consistency; a manifest with no roots can never
// resolve an import (spec.md §4.3 "look up in the current directory").
func (w *Workspace) Validate() error {
	if len(w.Roots) == 0 {
		return fmt.Errorf("workspace must declare at least one root")
	}
	for _, r := range w.Roots {
		if r == "" {
			return fmt.Errorf("empty root entry")
		}
	}
	return nil
}

// Save writes the manifest back out as YAML.
func (w *Workspace) Save(path string) error {
	if err := w.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal workspace manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ResolveCorelibPath returns the corelib path made absolute against the
// directory the manifest was loaded from, or "" if no corelib is configured.
func (w *Workspace) ResolveCorelibPath(manifestDir string) string {
	if w.CorelibPath == "" {
		return ""
	}
	if filepath.IsAbs(w.CorelibPath) {
		return w.CorelibPath
	}
	return filepath.Join(manifestDir, w.CorelibPath)
}
