package transform

import (
	"testing"

	"go.uber.org/zap"
)

func TestApplyBuiltins(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	tests := []struct {
		name  string
		value any
		specs []Spec
		want  any
	}{
		{
			name:  "Empty pipeline is identity",
			value: "Hello",
			specs: nil,
			want:  "Hello",
		},
		{
			name:  "Uppercase",
			value: "acme corp",
			specs: []Spec{{Type: TypeUppercase}},
			want:  "ACME CORP",
		},
		{
			name:  "Lowercase",
			value: "ACME",
			specs: []Spec{{Type: TypeLowercase}},
			want:  "acme",
		},
		{
			name:  "Trim",
			value: "  padded  ",
			specs: []Spec{{Type: TypeTrim}},
			want:  "padded",
		},
		{
			name:  "Pipeline applies in order",
			value: "  Padded  ",
			specs: []Spec{{Type: TypeTrim}, {Type: TypeUppercase}},
			want:  "PADDED",
		},
		{
			name:  "Date normalized to UTC instant",
			value: "2024-03-01",
			specs: []Spec{{Type: TypeDateFormat}},
			want:  "2024-03-01T00:00:00Z",
		},
		{
			name:  "Unparseable date passes through",
			value: "not a date",
			specs: []Spec{{Type: TypeDateFormat}},
			want:  "not a date",
		},
		{
			name:  "Number from string",
			value: "42.5",
			specs: []Spec{{Type: TypeNumberFormat}},
			want:  42.5,
		},
		{
			name:  "Number from bool",
			value: true,
			specs: []Spec{{Type: TypeNumberFormat}},
			want:  float64(1),
		},
		{
			name:  "Unparseable number passes through",
			value: "abc",
			specs: []Spec{{Type: TypeNumberFormat}},
			want:  "abc",
		},
		{
			name:  "Boolean from non-empty string",
			value: "yes",
			specs: []Spec{{Type: TypeBoolean}},
			want:  true,
		},
		{
			name:  "Boolean from empty string",
			value: "",
			specs: []Spec{{Type: TypeBoolean}},
			want:  false,
		},
		{
			name:  "Boolean from zero",
			value: float64(0),
			specs: []Spec{{Type: TypeBoolean}},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registry.Apply(tt.value, tt.specs)
			if got != tt.want {
				t.Errorf("Apply() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestRegistryCustom(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register("shout", `out := value + "!"`); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got := registry.Apply("hello", []Spec{{Type: TypeCustom, Name: "shout"}})
	if got != "hello!" {
		t.Errorf(`Apply(custom shout) = %v, want "hello!"`, got)
	}
}

func TestRegistrySlugifiesNames(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register("Shout Loud", `out := value + "!!"`); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	names := registry.Names()
	if len(names) != 1 || names[0] != "shout-loud" {
		t.Errorf("Names() = %v, want [shout-loud]", names)
	}

	got := registry.Apply("hey", []Spec{{Type: TypeCustom, Name: "Shout Loud"}})
	if got != "hey!!" {
		t.Errorf(`Apply(custom "Shout Loud") = %v, want "hey!!"`, got)
	}
}

func TestRegistryRejectsBrokenScript(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Register("broken", `out := (`); err == nil {
		t.Error("expected compile error for broken script")
	}
	if err := registry.Register("", `out := value`); err == nil {
		t.Error("expected error for missing name")
	}
	if err := registry.Register("empty", ""); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestUnknownCustomPassesThrough(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	got := registry.Apply("value", []Spec{{Type: TypeCustom, Name: "missing"}})
	if got != "value" {
		t.Errorf("unknown custom transform should pass value through, got %v", got)
	}
}

func TestCustomRuntimeFailurePassesThrough(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	// Compiles, but fails at runtime for non-numeric input.
	if err := registry.Register("double", `out := value * 2`); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got := registry.Apply(map[string]any{"k": "v"}, []Spec{{Type: TypeCustom, Name: "double"}})
	if m, ok := got.(map[string]any); !ok || m["k"] != "v" {
		t.Errorf("failing custom transform should pass value through, got %v", got)
	}
}
