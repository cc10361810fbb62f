package schema

import "testing"

func TestAccepts(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		want     string
		expected bool
	}{
		{"exact match", "whirl.diagnostic/v1", "whirl.diagnostic/v1", true},
		{"minor version", "whirl.diagnostic/v1.1", "whirl.diagnostic/v1", true},
		{"patch version", "whirl.diagnostic/v1.0.1", "whirl.diagnostic/v1", true},
		{"major mismatch", "whirl.diagnostic/v2", "whirl.diagnostic/v1", false},
		{"different schema", "whirl.standpoint/v1", "whirl.diagnostic/v1", false},
		{"missing version", "whirl.diagnostic", "whirl.diagnostic/v1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accepts(tt.got, tt.want); got != tt.expected {
				t.Errorf("Accepts(%q, %q) = %v, want %v", tt.got, tt.want, got, tt.expected)
			}
		})
	}
}

func TestMarshalDeterministicSortsKeys(t *testing.T) {
	data := map[string]interface{}{
		"zebra":  "last",
		"alpha":  "first",
		"middle": "middle",
	}
	result, err := MarshalDeterministic(data)
	if err != nil {
		t.Fatalf("MarshalDeterministic failed: %v", err)
	}
	expected := `{"alpha":"first","middle":"middle","zebra":"last"}`
	if string(result) != expected {
		t.Errorf("got %s, want %s", string(result), expected)
	}
}

func TestMarshalDeterministicNestedKeysSorted(t *testing.T) {
	data := map[string]interface{}{
		"outer2": map[string]interface{}{"inner2": 2, "inner1": 1},
		"outer1": "value",
	}
	result, err := MarshalDeterministic(data)
	if err != nil {
		t.Fatalf("MarshalDeterministic failed: %v", err)
	}
	expected := `{"outer1":"value","outer2":{"inner1":1,"inner2":2}}`
	if string(result) != expected {
		t.Errorf("got %s, want %s", string(result), expected)
	}
}

func TestMustValidateRejectsSchemaMismatch(t *testing.T) {
	v := map[string]any{"schema": "whirl.diagnostic/v2", "code": "TYP001"}
	if err := MustValidate(ErrorV1, v); err == nil {
		t.Fatalf("expected MustValidate to reject a v2 payload against %s", ErrorV1)
	}
}

func TestMustValidateAcceptsMatchingSchema(t *testing.T) {
	v := map[string]any{"schema": ErrorV1, "code": "TYP001"}
	if err := MustValidate(ErrorV1, v); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}
