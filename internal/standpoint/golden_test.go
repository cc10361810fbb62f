package standpoint

import (
	"sort"
	"testing"

	"github.com/adebola-io/whirl/internal/errors"
	"github.com/adebola-io/whirl/testutil"
)

// diagnosticCodes reduces a diagnostic set to its sorted codes, the part of
// a standpoint's output stable enough to golden-test across runs (spans and
// wording are free to evolve without invalidating the fixture).
func diagnosticCodes(diags []error) []string {
	codes := make([]string, 0, len(diags))
	for _, e := range diags {
		if d, ok := e.(*errors.Diagnostic); ok {
			codes = append(codes, d.Code)
		}
	}
	sort.Strings(codes)
	return codes
}

func TestSelfImportingModuleDiagnosticCodesGolden(t *testing.T) {
	sp := New(true, "")
	src := `module Bad;
use Bad.Thing;
function f() {}
`
	sp.AddModule("Bad.wrl", src)
	testutil.CompareWithGolden(t, "standpoint", "self_import_diagnostic_codes", diagnosticCodes(sp.Diagnostics("Bad.wrl")))
}
