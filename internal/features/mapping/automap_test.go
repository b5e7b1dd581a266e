package mapping

import (
	"testing"

	common_models "go-syncbridge/internal/common/models"
)

func field(id, name, fieldType string) common_models.FieldDescriptor {
	return common_models.FieldDescriptor{ID: id, Name: name, Type: fieldType}
}

func TestAutoMap(t *testing.T) {
	tests := []struct {
		name           string
		source         []common_models.FieldDescriptor
		dest           []common_models.FieldDescriptor
		wantPairs      map[string]string
		wantConfidence map[string]float64
		wantUnmapped   []string
	}{
		{
			name:           "Exact name and type",
			source:         []common_models.FieldDescriptor{field("email", "Email", "email")},
			dest:           []common_models.FieldDescriptor{field("fldE", "Email", "email")},
			wantPairs:      map[string]string{"email": "fldE"},
			wantConfidence: map[string]float64{"email": 1.0},
		},
		{
			name:           "Exact name different type",
			source:         []common_models.FieldDescriptor{field("name", "Name", "text")},
			dest:           []common_models.FieldDescriptor{field("fldN", "Name", "singleLineText")},
			wantPairs:      map[string]string{"name": "fldN"},
			wantConfidence: map[string]float64{"name": 0.8},
		},
		{
			name:           "Substring match scores type bonus only",
			source:         []common_models.FieldDescriptor{field("company", "Company", "text")},
			dest:           []common_models.FieldDescriptor{field("fldC", "Company Name", "text")},
			wantPairs:      map[string]string{"company": "fldC"},
			wantConfidence: map[string]float64{"company": 0.2},
		},
		{
			name:   "First destination candidate wins",
			source: []common_models.FieldDescriptor{field("name", "Name", "text")},
			dest: []common_models.FieldDescriptor{
				field("fld1", "Full Name", "text"),
				field("fld2", "Name", "text"),
			},
			wantPairs:      map[string]string{"name": "fld1"},
			wantConfidence: map[string]float64{"name": 0.2},
		},
		{
			name:         "No candidate goes to unmapped",
			source:       []common_models.FieldDescriptor{field("twitter", "Twitter", "text")},
			dest:         []common_models.FieldDescriptor{field("fldP", "Phone", "phoneNumber")},
			wantUnmapped: []string{"twitter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AutoMap(tt.source, tt.dest)

			if len(got.Mappings) != len(tt.wantPairs) {
				t.Fatalf("got %d mappings, want %d", len(got.Mappings), len(tt.wantPairs))
			}
			for _, m := range got.Mappings {
				if !m.Enabled {
					t.Errorf("auto-mapped pair should be enabled")
				}
				if m.ID == "" {
					t.Errorf("mapping should get an id")
				}
				wantDest, ok := tt.wantPairs[m.SourceField.ID]
				if !ok {
					t.Errorf("unexpected mapping for source %s", m.SourceField.ID)
					continue
				}
				if m.DestField.ID != wantDest {
					t.Errorf("source %s mapped to %s, want %s", m.SourceField.ID, m.DestField.ID, wantDest)
				}
				if want := tt.wantConfidence[m.SourceField.ID]; m.Confidence != want {
					t.Errorf("source %s confidence = %v, want %v", m.SourceField.ID, m.Confidence, want)
				}
			}

			if len(got.Unmapped) != len(tt.wantUnmapped) {
				t.Fatalf("got %d unmapped, want %d", len(got.Unmapped), len(tt.wantUnmapped))
			}
			for i, id := range tt.wantUnmapped {
				if got.Unmapped[i].ID != id {
					t.Errorf("unmapped[%d] = %s, want %s", i, got.Unmapped[i].ID, id)
				}
			}
		})
	}
}

func TestStrictMatch(t *testing.T) {
	tests := []struct {
		name      string
		source    common_models.FieldDescriptor
		dest      common_models.FieldDescriptor
		wantMatch bool
	}{
		{
			name:      "Punctuation is ignored",
			source:    field("email", "E-mail!", "text"),
			dest:      field("fldE", "Email", "text"),
			wantMatch: true,
		},
		{
			name:      "Alphabetic substring",
			source:    field("company", "Company", "text"),
			dest:      field("fldC", "Company Name", "text"),
			wantMatch: true,
		},
		{
			name:      "Email types pair regardless of name",
			source:    field("work_email", "Work Contact", "email"),
			dest:      field("fldE", "Primary Inbox", "email"),
			wantMatch: true,
		},
		{
			name:      "Unrelated names do not pair",
			source:    field("phone", "Phone", "phone-number"),
			dest:      field("fldW", "Website", "url"),
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StrictMatch(
				[]common_models.FieldDescriptor{tt.source},
				[]common_models.FieldDescriptor{tt.dest},
			)

			if tt.wantMatch {
				if len(got.Mappings) != 1 {
					t.Fatalf("expected a match, got %d mappings", len(got.Mappings))
				}
				if got.Mappings[0].Confidence != 0.9 {
					t.Errorf("strict match confidence = %v, want 0.9", got.Mappings[0].Confidence)
				}
			} else {
				if len(got.Mappings) != 0 {
					t.Fatalf("expected no match, got %d mappings", len(got.Mappings))
				}
				if len(got.Unmapped) != 1 {
					t.Errorf("expected source field in unmapped")
				}
			}
		})
	}
}
