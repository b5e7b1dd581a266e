package schema

import (
	"testing"
)

func TestSuggestAirtableFieldType(t *testing.T) {
	s := &SchemaServiceImpl{}

	tests := []struct {
		attioType string
		want      string
	}{
		{"email-address", "email"},
		{"phone-number", "phoneNumber"},
		{"url", "url"},
		{"text", "singleLineText"},
		{"multi-line-text", "multilineText"},
		{"number", "number"},
		{"currency", "currency"},
		{"date", "date"},
		{"datetime", "dateTime"},
		{"checkbox", "checkbox"},
		{"select", "singleSelect"},
		{"status", "singleSelect"},
		{"rating", "rating"},
		{"something-exotic", "singleLineText"},
		{"", "singleLineText"},
	}

	for _, tt := range tests {
		t.Run(tt.attioType, func(t *testing.T) {
			if got := s.SuggestAirtableFieldType(tt.attioType); got != tt.want {
				t.Errorf("SuggestAirtableFieldType(%q) = %q, want %q", tt.attioType, got, tt.want)
			}
		})
	}
}
