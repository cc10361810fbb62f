// Package testutil provides golden-file comparison helpers for diagnostic
// dumps produced by the standpoint/check test suites.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adebola-io/whirl/internal/schema"
)

// UpdateGoldens controls whether to update golden files.
// Set via environment variable: UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenMeta captures platform information for reproducibility.
type GoldenMeta struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GoldenFile is the on-disk shape of a golden fixture: a schema tag plus
// whatever data the caller is diffing (a standpoint diagnostic dump, most
// commonly).
type GoldenFile struct {
	Schema string      `json:"schema"`
	Meta   GoldenMeta  `json:"meta"`
	Data   interface{} `json:"data"`
}

// GetGoldenPath returns the path to a golden file.
func GetGoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden.json")
}

// CompareWithGolden compares actual output with a golden file, tagging it
// with schema.StandpointV1 so a future schema bump shows up as a deliberate
// golden-file regeneration rather than a silent format drift.
func CompareWithGolden(t *testing.T, feature, name string, actual interface{}) {
	t.Helper()

	goldenPath := GetGoldenPath(feature, name)

	if UpdateGoldens {
		goldenData := GoldenFile{
			Schema: schema.StandpointV1,
			Meta: GoldenMeta{
				GoVersion: runtime.Version(),
				OS:        runtime.GOOS,
				Arch:      runtime.GOARCH,
			},
			Data: actual,
		}
		out, err := schema.MarshalDeterministic(goldenData)
		if err != nil {
			t.Fatalf("failed to marshal actual data: %v", err)
		}
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, out, 0644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", goldenPath)
		return
	}

	expectedRaw, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create", goldenPath)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	var expected GoldenFile
	if err := json.Unmarshal(expectedRaw, &expected); err != nil {
		t.Fatalf("failed to unmarshal golden file %s: %v", goldenPath, err)
	}
	if !schema.Accepts(expected.Schema, schema.StandpointV1) {
		t.Fatalf("golden file %s was written under an incompatible schema (%s); regenerate with UPDATE_GOLDENS=true", goldenPath, expected.Schema)
	}

	// Only the Data payload is compared -- Meta (go version/OS/arch) is
	// recorded for provenance but varies across machines, so comparing it
	// would make the golden fixture fail outside the machine that wrote it.
	expectedData, err := schema.MarshalDeterministic(expected.Data)
	if err != nil {
		t.Fatalf("failed to re-marshal expected data: %v", err)
	}
	actualData, err := schema.MarshalDeterministic(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual data: %v", err)
	}
	if diff := diffJSON(expectedData, actualData); diff != "" {
		t.Errorf("golden file mismatch for %s/%s (-expected +actual):\n%s", feature, name, diff)
	}
}

// AssertGoldenJSON compares raw JSON bytes (e.g. a diagnostics dump encoded
// elsewhere) against a golden file.
func AssertGoldenJSON(t *testing.T, feature, name string, actualJSON []byte) {
	t.Helper()
	var actual interface{}
	if err := json.Unmarshal(actualJSON, &actual); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}
	CompareWithGolden(t, feature, name, actual)
}

// diffJSON compares two JSON documents structurally (ignoring key order and
// whitespace) via go-cmp, returning a human-readable diff or "" if equal.
func diffJSON(expected, actual []byte) string {
	var expData, actData interface{}
	if err := json.Unmarshal(expected, &expData); err != nil {
		return cmp.Diff(string(expected), string(actual))
	}
	if err := json.Unmarshal(actual, &actData); err != nil {
		return cmp.Diff(string(expected), string(actual))
	}
	return cmp.Diff(expData, actData)
}

// LoadGoldenFile loads and returns a golden file's data.
func LoadGoldenFile(t *testing.T, feature, name string) interface{} {
	t.Helper()
	goldenPath := GetGoldenPath(feature, name)
	data, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("failed to load golden file %s: %v", goldenPath, err)
	}
	var golden GoldenFile
	if err := json.Unmarshal(data, &golden); err != nil {
		t.Fatalf("failed to unmarshal golden file: %v", err)
	}
	return golden.Data
}
