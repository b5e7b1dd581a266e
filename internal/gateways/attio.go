package gateways

import (
	"context"
	"fmt"
	"net/http"

	common_models "go-syncbridge/internal/common/models"
)

// AttioObject is one CRM object type as returned by GET /objects.
type AttioObject struct {
	ID           AttioCompositeID `json:"id"`
	APISlug      string           `json:"api_slug"`
	SingularNoun string           `json:"singular_noun"`
	PluralNoun   string           `json:"plural_noun"`
	Description  string           `json:"description"`
}

// AttioCompositeID is Attio's nested identifier envelope. Only the component
// relevant to the enclosing type is populated.
type AttioCompositeID struct {
	WorkspaceID string `json:"workspace_id"`
	ObjectID    string `json:"object_id"`
	ListID      string `json:"list_id"`
	AttributeID string `json:"attribute_id"`
	RecordID    string `json:"record_id"`
	EntryID     string `json:"entry_id"`
}

// AttioList is list metadata from GET /lists or GET /lists/{id}. The parent
// reference fields arrive in several shapes depending on workspace age
// (string array, object with api_slug, bare string), so they stay untyped
// and are interpreted by the schema resolver.
type AttioList struct {
	ID               AttioCompositeID `json:"id"`
	APISlug          string           `json:"api_slug"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ParentObject     any              `json:"parent_object"`
	WorkspaceObject  any              `json:"workspace_object"`
	Object           any              `json:"object"`
	ParentObjectType string           `json:"parent_object_type"`
}

// AttioAttribute is one field definition from an object or list schema.
type AttioAttribute struct {
	ID          AttioCompositeID `json:"id"`
	APISlug     string           `json:"api_slug"`
	Title       string           `json:"title"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
}

// AttioRecord is one record; Values is the per-attribute map of typed value
// lists that the extractor decodes shape by shape.
type AttioRecord struct {
	ID     AttioCompositeID `json:"id"`
	Values map[string]any   `json:"values"`
}

// AttioListEntry references its parent record; entries never carry the full
// record payload, hence the two-step list fetch.
type AttioListEntry struct {
	ID             AttioCompositeID `json:"id"`
	ParentRecordID string           `json:"parent_record_id"`
	ParentObject   string           `json:"parent_object"`
}

// RecordQuery is the body of a records/query call.
type RecordQuery struct {
	Filter map[string]any `json:"filter,omitempty"`
	Limit  int            `json:"limit,omitempty"`
	Offset int            `json:"offset,omitempty"`
}

// AttioGateway is the orchestrator's only way to reach the CRM.
type AttioGateway interface {
	ListObjects(ctx context.Context, creds Credentials) ([]AttioObject, error)
	ListObjectAttributes(ctx context.Context, creds Credentials, objectID string) ([]AttioAttribute, error)
	ListLists(ctx context.Context, creds Credentials) ([]AttioList, error)
	GetList(ctx context.Context, creds Credentials, listID string) (*AttioList, error)
	ListListAttributes(ctx context.Context, creds Credentials, listID string) ([]AttioAttribute, error)
	QueryListEntries(ctx context.Context, creds Credentials, listID string, query RecordQuery) ([]AttioListEntry, error)
	QueryRecords(ctx context.Context, creds Credentials, objectID string, query RecordQuery) ([]AttioRecord, error)
	CreateRecord(ctx context.Context, creds Credentials, objectID string, values map[string]any) (*AttioRecord, error)
	UpdateRecord(ctx context.Context, creds Credentials, objectID, recordID string, values map[string]any) (*AttioRecord, error)
}

type attioGateway struct {
	baseURL string
}

// NewAttioGateway creates the CRM request builder rooted at baseURL.
func NewAttioGateway(baseURL string) AttioGateway {
	return &attioGateway{baseURL: baseURL}
}

type attioListEnvelope[T any] struct {
	Data []T `json:"data"`
}

type attioItemEnvelope[T any] struct {
	Data T `json:"data"`
}

func (g *attioGateway) ListObjects(ctx context.Context, creds Credentials) ([]AttioObject, error) {
	var env attioListEnvelope[AttioObject]
	url := g.baseURL + "/objects"
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodGet, url, creds.Token, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (g *attioGateway) ListObjectAttributes(ctx context.Context, creds Credentials, objectID string) ([]AttioAttribute, error) {
	var env attioListEnvelope[AttioAttribute]
	url := fmt.Sprintf("%s/objects/%s/attributes", g.baseURL, objectID)
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodGet, url, creds.Token, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (g *attioGateway) ListLists(ctx context.Context, creds Credentials) ([]AttioList, error) {
	var env attioListEnvelope[AttioList]
	url := g.baseURL + "/lists"
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodGet, url, creds.Token, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (g *attioGateway) GetList(ctx context.Context, creds Credentials, listID string) (*AttioList, error) {
	var env attioItemEnvelope[AttioList]
	url := fmt.Sprintf("%s/lists/%s", g.baseURL, listID)
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodGet, url, creds.Token, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (g *attioGateway) ListListAttributes(ctx context.Context, creds Credentials, listID string) ([]AttioAttribute, error) {
	var env attioListEnvelope[AttioAttribute]
	url := fmt.Sprintf("%s/lists/%s/attributes", g.baseURL, listID)
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodGet, url, creds.Token, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (g *attioGateway) QueryListEntries(ctx context.Context, creds Credentials, listID string, query RecordQuery) ([]AttioListEntry, error) {
	var env attioListEnvelope[AttioListEntry]
	url := fmt.Sprintf("%s/lists/%s/entries/query", g.baseURL, listID)
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodPost, url, creds.Token, query, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (g *attioGateway) QueryRecords(ctx context.Context, creds Credentials, objectID string, query RecordQuery) ([]AttioRecord, error) {
	var env attioListEnvelope[AttioRecord]
	url := fmt.Sprintf("%s/objects/%s/records/query", g.baseURL, objectID)
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodPost, url, creds.Token, query, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (g *attioGateway) CreateRecord(ctx context.Context, creds Credentials, objectID string, values map[string]any) (*AttioRecord, error) {
	var env attioItemEnvelope[AttioRecord]
	url := fmt.Sprintf("%s/objects/%s/records", g.baseURL, objectID)
	body := map[string]any{"data": map[string]any{"values": values}}
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodPost, url, creds.Token, body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (g *attioGateway) UpdateRecord(ctx context.Context, creds Credentials, objectID, recordID string, values map[string]any) (*AttioRecord, error) {
	var env attioItemEnvelope[AttioRecord]
	url := fmt.Sprintf("%s/objects/%s/records/%s", g.baseURL, objectID, recordID)
	body := map[string]any{"data": map[string]any{"values": values}}
	if err := doJSON(ctx, common_models.ServiceAttio, http.MethodPatch, url, creds.Token, body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
