package sync

import (
	"context"
	"fmt"
	"strings"

	"go-syncbridge/internal/gateways"
)

// RecordMatcher locates the existing destination record an outbound payload
// should update. Implementations may match on any strategy; the default
// matches on the configured match field and reports not-found when no field
// is configured, so updateExisting degrades to create-or-skip.
type RecordMatcher interface {
	FindAirtable(ctx context.Context, creds gateways.Credentials, tableID string, fields map[string]any, matchField string) (*gateways.AirtableRecord, error)
	FindAttio(ctx context.Context, creds gateways.Credentials, objectID string, values map[string]any, matchField string) (*gateways.AttioRecord, error)
}

type matchFieldMatcher struct {
	attio    gateways.AttioGateway
	airtable gateways.AirtableGateway
}

func NewRecordMatcher(attio gateways.AttioGateway, airtable gateways.AirtableGateway) RecordMatcher {
	return &matchFieldMatcher{
		attio:    attio,
		airtable: airtable,
	}
}

func (m *matchFieldMatcher) FindAirtable(ctx context.Context, creds gateways.Credentials, tableID string, fields map[string]any, matchField string) (*gateways.AirtableRecord, error) {
	if matchField == "" {
		return nil, nil
	}
	value, ok := fields[matchField]
	if !ok || emptyValue(value) {
		return nil, nil
	}

	literal, ok := formulaLiteral(value)
	if !ok {
		return nil, nil
	}
	formula := fmt.Sprintf("{%s} = %s", matchField, literal)
	records, err := m.airtable.ListRecords(ctx, creds, tableID, gateways.ListOptions{
		MaxRecords:      1,
		FilterByFormula: formula,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (m *matchFieldMatcher) FindAttio(ctx context.Context, creds gateways.Credentials, objectID string, values map[string]any, matchField string) (*gateways.AttioRecord, error) {
	if matchField == "" {
		return nil, nil
	}
	value, ok := values[matchField]
	if !ok || emptyValue(value) {
		return nil, nil
	}

	records, err := m.attio.QueryRecords(ctx, creds, objectID, gateways.RecordQuery{
		Filter: map[string]any{matchField: value},
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// formulaLiteral renders a filterByFormula operand. Numbers pass through
// bare, everything else is double-quoted. The formula language has no
// escape for a quote character inside a string literal, so values holding a
// double quote cannot be expressed and report ok false.
func formulaLiteral(v any) (string, bool) {
	switch t := v.(type) {
	case float64, int, int64:
		return fmt.Sprint(t), true
	default:
		s := fmt.Sprint(t)
		if strings.Contains(s, `"`) {
			return "", false
		}
		return `"` + s + `"`, true
	}
}
