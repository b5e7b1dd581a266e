package gateways

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	common_models "go-syncbridge/internal/common/models"
)

// AirtableTable is one table from the base meta endpoint, fields included.
type AirtableTable struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Fields      []AirtableField `json:"fields"`
}

type AirtableField struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Options     any    `json:"options,omitempty"`
}

// AirtableRecord has a flat field map keyed by field name.
type AirtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// ListOptions narrows a record listing.
type ListOptions struct {
	MaxRecords      int
	FilterByFormula string
}

// AirtableGateway is the orchestrator's only way to reach the tabular
// service. All endpoints are scoped under the credential's base.
type AirtableGateway interface {
	ListTables(ctx context.Context, creds Credentials) ([]AirtableTable, error)
	ListRecords(ctx context.Context, creds Credentials, tableID string, opts ListOptions) ([]AirtableRecord, error)
	CreateRecord(ctx context.Context, creds Credentials, tableID string, fields map[string]any) (*AirtableRecord, error)
	UpdateRecord(ctx context.Context, creds Credentials, tableID, recordID string, fields map[string]any) (*AirtableRecord, error)
	CreateField(ctx context.Context, creds Credentials, tableID string, field AirtableField) (*AirtableField, error)
}

type airtableGateway struct {
	baseURL string
}

// NewAirtableGateway creates the tabular-service request builder rooted at
// baseURL (the /v0 root, meta endpoints included).
func NewAirtableGateway(baseURL string) AirtableGateway {
	return &airtableGateway{baseURL: baseURL}
}

func (g *airtableGateway) ListTables(ctx context.Context, creds Credentials) ([]AirtableTable, error) {
	var out struct {
		Tables []AirtableTable `json:"tables"`
	}
	u := fmt.Sprintf("%s/meta/bases/%s/tables", g.baseURL, creds.BaseID)
	if err := doJSON(ctx, common_models.ServiceAirtable, http.MethodGet, u, creds.Token, nil, &out); err != nil {
		return nil, err
	}
	return out.Tables, nil
}

func (g *airtableGateway) ListRecords(ctx context.Context, creds Credentials, tableID string, opts ListOptions) ([]AirtableRecord, error) {
	var out struct {
		Records []AirtableRecord `json:"records"`
	}

	q := url.Values{}
	if opts.MaxRecords > 0 {
		q.Set("maxRecords", fmt.Sprintf("%d", opts.MaxRecords))
	}
	if opts.FilterByFormula != "" {
		q.Set("filterByFormula", opts.FilterByFormula)
	}
	u := fmt.Sprintf("%s/%s/%s", g.baseURL, creds.BaseID, tableID)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	if err := doJSON(ctx, common_models.ServiceAirtable, http.MethodGet, u, creds.Token, nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

func (g *airtableGateway) CreateRecord(ctx context.Context, creds Credentials, tableID string, fields map[string]any) (*AirtableRecord, error) {
	var out AirtableRecord
	u := fmt.Sprintf("%s/%s/%s", g.baseURL, creds.BaseID, tableID)
	body := map[string]any{"fields": fields}
	if err := doJSON(ctx, common_models.ServiceAirtable, http.MethodPost, u, creds.Token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *airtableGateway) UpdateRecord(ctx context.Context, creds Credentials, tableID, recordID string, fields map[string]any) (*AirtableRecord, error) {
	var out AirtableRecord
	u := fmt.Sprintf("%s/%s/%s/%s", g.baseURL, creds.BaseID, tableID, recordID)
	body := map[string]any{"fields": fields}
	if err := doJSON(ctx, common_models.ServiceAirtable, http.MethodPatch, u, creds.Token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *airtableGateway) CreateField(ctx context.Context, creds Credentials, tableID string, field AirtableField) (*AirtableField, error) {
	var out AirtableField
	u := fmt.Sprintf("%s/meta/bases/%s/tables/%s/fields", g.baseURL, creds.BaseID, tableID)
	if err := doJSON(ctx, common_models.ServiceAirtable, http.MethodPost, u, creds.Token, field, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
