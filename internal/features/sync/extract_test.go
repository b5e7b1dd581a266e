package sync

import (
	"testing"

	"go-syncbridge/internal/gateways"
)

func TestExtractAttioValue(t *testing.T) {
	tests := []struct {
		name string
		rec  gateways.AttioRecord
		slug string
		want any
	}{
		{
			name: "Plain value entry",
			rec: gateways.AttioRecord{Values: map[string]any{
				"name": []any{map[string]any{"value": "Acme Corp"}},
			}},
			slug: "name",
			want: "Acme Corp",
		},
		{
			name: "Email address entry",
			rec: gateways.AttioRecord{Values: map[string]any{
				"email_addresses": []any{map[string]any{"email_address": "jane@acme.com"}},
			}},
			slug: "email_addresses",
			want: "jane@acme.com",
		},
		{
			name: "Domain entry",
			rec: gateways.AttioRecord{Values: map[string]any{
				"domains": []any{map[string]any{"domain": "acme.com"}},
			}},
			slug: "domains",
			want: "acme.com",
		},
		{
			name: "URL entry",
			rec: gateways.AttioRecord{Values: map[string]any{
				"website": []any{map[string]any{"original_url": "https://acme.com"}},
			}},
			slug: "website",
			want: "https://acme.com",
		},
		{
			name: "Select option entry returns the title",
			rec: gateways.AttioRecord{Values: map[string]any{
				"stage": []any{map[string]any{"option": map[string]any{"title": "Qualified"}}},
			}},
			slug: "stage",
			want: "Qualified",
		},
		{
			name: "Reference entry prefers the actor name",
			rec: gateways.AttioRecord{Values: map[string]any{
				"owner": []any{map[string]any{
					"target_object":         "workspace_members",
					"target_record_id":      "rec_123",
					"referenced_actor_name": "Jane Doe",
				}},
			}},
			slug: "owner",
			want: "Jane Doe",
		},
		{
			name: "Reference entry falls back to the record id",
			rec: gateways.AttioRecord{Values: map[string]any{
				"owner": []any{map[string]any{
					"target_object":    "companies",
					"target_record_id": "rec_456",
				}},
			}},
			slug: "owner",
			want: "rec_456",
		},
		{
			name: "Location entry joins locality and region",
			rec: gateways.AttioRecord{Values: map[string]any{
				"hq": []any{map[string]any{"locality": "Austin", "region": "TX"}},
			}},
			slug: "hq",
			want: "Austin, TX",
		},
		{
			name: "Location entry with region only",
			rec: gateways.AttioRecord{Values: map[string]any{
				"hq": []any{map[string]any{"region": "TX"}},
			}},
			slug: "hq",
			want: "TX",
		},
		{
			name: "Bare string entry",
			rec: gateways.AttioRecord{Values: map[string]any{
				"note": []any{"plain text"},
			}},
			slug: "note",
			want: "plain text",
		},
		{
			name: "Bare scalar outside a list",
			rec: gateways.AttioRecord{Values: map[string]any{
				"count": float64(3),
			}},
			slug: "count",
			want: float64(3),
		},
		{
			name: "Empty list yields nil",
			rec: gateways.AttioRecord{Values: map[string]any{
				"name": []any{},
			}},
			slug: "name",
			want: nil,
		},
		{
			name: "Missing slug yields nil",
			rec:  gateways.AttioRecord{Values: map[string]any{}},
			slug: "name",
			want: nil,
		},
		{
			name: "Unrecognized shape yields nil",
			rec: gateways.AttioRecord{Values: map[string]any{
				"weird": []any{map[string]any{"something_else": true}},
			}},
			slug: "weird",
			want: nil,
		},
		{
			name: "Nil values map yields nil",
			rec:  gateways.AttioRecord{},
			slug: "name",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAttioValue(tt.rec, tt.slug)
			if got != tt.want {
				t.Errorf("ExtractAttioValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractAirtableValue(t *testing.T) {
	rec := gateways.AirtableRecord{
		ID: "recA",
		Fields: map[string]any{
			"Email Address": "jane@acme.com",
		},
	}

	if got := extractAirtableValue(rec, "Email Address"); got != "jane@acme.com" {
		t.Errorf("extractAirtableValue() = %v, want jane@acme.com", got)
	}
	if got := extractAirtableValue(rec, "Missing"); got != nil {
		t.Errorf("extractAirtableValue() for missing field = %v, want nil", got)
	}
	if got := extractAirtableValue(gateways.AirtableRecord{}, "Email Address"); got != nil {
		t.Errorf("extractAirtableValue() with nil fields = %v, want nil", got)
	}
}

func TestEmptyValue(t *testing.T) {
	if !emptyValue(nil) || !emptyValue("") {
		t.Error("nil and empty string should count as empty")
	}
	if emptyValue("x") || emptyValue(float64(0)) || emptyValue(false) {
		t.Error("non-nil scalars should not count as empty")
	}
}
