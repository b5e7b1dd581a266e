package sync

import (
	"context"
	"testing"

	"go-syncbridge/internal/gateways"
)

func TestMatcherQuotesFormulaValues(t *testing.T) {
	airtable := &fakeAirtable{matchResult: []gateways.AirtableRecord{
		{ID: "rec_existing", Fields: map[string]any{"Name": "O'Brien"}},
	}}
	matcher := NewRecordMatcher(&fakeAttio{}, airtable)

	found, err := matcher.FindAirtable(context.Background(), gateways.Credentials{}, "tbl",
		map[string]any{"Name": "O'Brien"}, "Name")
	if err != nil {
		t.Fatalf("FindAirtable() error = %v", err)
	}
	if found == nil || found.ID != "rec_existing" {
		t.Fatalf("found = %v, want rec_existing", found)
	}
	want := `{Name} = "O'Brien"`
	if airtable.lastOpts.FilterByFormula != want {
		t.Errorf("formula = %q, want %q", airtable.lastOpts.FilterByFormula, want)
	}
}

func TestMatcherReportsNotFoundForUnquotableValues(t *testing.T) {
	airtable := &fakeAirtable{matchResult: []gateways.AirtableRecord{
		{ID: "rec_existing"},
	}}
	matcher := NewRecordMatcher(&fakeAttio{}, airtable)

	// No escape exists for a double quote inside a formula string literal.
	found, err := matcher.FindAirtable(context.Background(), gateways.Credentials{}, "tbl",
		map[string]any{"Name": `Acme "HQ"`}, "Name")
	if err != nil {
		t.Fatalf("FindAirtable() error = %v", err)
	}
	if found != nil {
		t.Errorf("found = %v, want not-found", found)
	}
	if airtable.listCalls != 0 {
		t.Errorf("listCalls = %d, want no remote query", airtable.listCalls)
	}
}

func TestMatcherPassesNumbersBare(t *testing.T) {
	literal, ok := formulaLiteral(42)
	if !ok || literal != "42" {
		t.Errorf("formulaLiteral(42) = %q, %v", literal, ok)
	}
	literal, ok = formulaLiteral(3.5)
	if !ok || literal != "3.5" {
		t.Errorf("formulaLiteral(3.5) = %q, %v", literal, ok)
	}
}
