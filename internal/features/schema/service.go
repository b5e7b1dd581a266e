package schema

import (
	"context"
	"fmt"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/features/connection"
	"go-syncbridge/internal/gateways"

	"go.uber.org/zap"
)

// SchemaService exposes the syncable collections and field schemas of both
// remote services. Remote failures never cross this boundary: callers get a
// small built-in stand-in set plus a warning log, so the UI stays usable
// when a service is unreachable.
type SchemaService interface {
	ListCollections(ctx context.Context, service common_models.Service) ([]common_models.Collection, error)
	ListFields(ctx context.Context, service common_models.Service, collectionID string) ([]common_models.FieldDescriptor, error)
	CreateAirtableField(ctx context.Context, tableID string, field gateways.AirtableField) (*gateways.AirtableField, error)
	SuggestAirtableFieldType(attioType string) string
}

type SchemaServiceImpl struct {
	connections connection.ConnectionService
	attio       gateways.AttioGateway
	airtable    gateways.AirtableGateway
	logger      *zap.Logger
}

func NewSchemaService(connections connection.ConnectionService, attio gateways.AttioGateway, airtable gateways.AirtableGateway, logger *zap.Logger) SchemaService {
	return &SchemaServiceImpl{
		connections: connections,
		attio:       attio,
		airtable:    airtable,
		logger:      logger,
	}
}

func (s *SchemaServiceImpl) creds(ctx context.Context, service common_models.Service) (gateways.Credentials, bool) {
	conn, err := s.connections.GetConnection(ctx, service)
	if err != nil || conn == nil || !conn.Connected {
		return gateways.Credentials{}, false
	}
	return conn.Credentials, true
}

func (s *SchemaServiceImpl) ListCollections(ctx context.Context, service common_models.Service) ([]common_models.Collection, error) {
	switch service {
	case common_models.ServiceAttio:
		return s.listAttioCollections(ctx), nil
	case common_models.ServiceAirtable:
		return s.listAirtableCollections(ctx), nil
	default:
		return nil, fmt.Errorf("unknown service: %s", service)
	}
}

func (s *SchemaServiceImpl) listAttioCollections(ctx context.Context) []common_models.Collection {
	creds, ok := s.creds(ctx, common_models.ServiceAttio)
	if !ok {
		s.logger.Warn("attio not connected, using stand-in collections")
		return fallbackAttioCollections()
	}

	objects, err := s.attio.ListObjects(ctx, creds)
	if err != nil {
		s.logger.Warn("failed to list attio objects, using stand-ins", zap.Error(err))
		return fallbackAttioCollections()
	}

	collections := make([]common_models.Collection, 0, len(objects))
	for _, obj := range objects {
		collections = append(collections, common_models.Collection{
			ID:          firstNonEmpty(obj.APISlug, obj.ID.ObjectID),
			Name:        firstNonEmpty(obj.SingularNoun, obj.PluralNoun, obj.APISlug),
			Kind:        common_models.CollectionObject,
			APISlug:     obj.APISlug,
			Description: obj.Description,
		})
	}

	lists, err := s.attio.ListLists(ctx, creds)
	if err != nil {
		// Lists are additive; objects alone are still useful.
		s.logger.Warn("failed to list attio lists", zap.Error(err))
		return collections
	}
	for _, list := range lists {
		collections = append(collections, common_models.Collection{
			ID:          firstNonEmpty(list.APISlug, list.ID.ListID),
			Name:        firstNonEmpty(list.Name, list.APISlug),
			Kind:        common_models.CollectionList,
			APISlug:     list.APISlug,
			Description: list.Description,
		})
	}
	return collections
}

func (s *SchemaServiceImpl) listAirtableCollections(ctx context.Context) []common_models.Collection {
	creds, ok := s.creds(ctx, common_models.ServiceAirtable)
	if !ok {
		s.logger.Warn("airtable not connected, using stand-in collections")
		return fallbackAirtableCollections()
	}

	tables, err := s.airtable.ListTables(ctx, creds)
	if err != nil {
		s.logger.Warn("failed to list airtable tables, using stand-ins", zap.Error(err))
		return fallbackAirtableCollections()
	}

	collections := make([]common_models.Collection, 0, len(tables))
	for _, table := range tables {
		collections = append(collections, common_models.Collection{
			ID:          table.ID,
			Name:        table.Name,
			Kind:        common_models.CollectionTable,
			Description: table.Description,
		})
	}
	return collections
}

func (s *SchemaServiceImpl) ListFields(ctx context.Context, service common_models.Service, collectionID string) ([]common_models.FieldDescriptor, error) {
	switch service {
	case common_models.ServiceAttio:
		return s.listAttioFields(ctx, collectionID), nil
	case common_models.ServiceAirtable:
		return s.listAirtableFields(ctx, collectionID), nil
	default:
		return nil, fmt.Errorf("unknown service: %s", service)
	}
}

func (s *SchemaServiceImpl) listAttioFields(ctx context.Context, collectionID string) []common_models.FieldDescriptor {
	creds, ok := s.creds(ctx, common_models.ServiceAttio)
	if !ok {
		s.logger.Warn("attio not connected, using stand-in fields")
		return fallbackAttioFields()
	}

	// A list and an object can share a slug-shaped id, so check lists first;
	// the list path degrades to the object path when the id is not a list.
	list, err := s.attio.GetList(ctx, creds, collectionID)
	if err == nil && list != nil && (list.ID.ListID != "" || list.APISlug == collectionID) {
		return s.listFieldsForList(ctx, creds, list)
	}

	attrs, err := s.attio.ListObjectAttributes(ctx, creds, collectionID)
	if err != nil {
		s.logger.Warn("failed to list attio attributes, using stand-ins",
			zap.String("collection", collectionID), zap.Error(err))
		return fallbackAttioFields()
	}
	return attributesToFields(attrs, true)
}

// listFieldsForList unions list-level fields with the core schema of the
// list's underlying object. Resolving that object is the hard part: an
// explicit parent reference wins, then the name heuristic, and the winner is
// matched against the workspace's object collections to find an addressable
// slug.
func (s *SchemaServiceImpl) listFieldsForList(ctx context.Context, creds gateways.Credentials, list *gateways.AttioList) []common_models.FieldDescriptor {
	listID := firstNonEmpty(list.APISlug, list.ID.ListID)

	listAttrs, err := s.attio.ListListAttributes(ctx, creds, listID)
	if err != nil {
		s.logger.Warn("failed to list list attributes, using stand-ins",
			zap.String("list", listID), zap.Error(err))
		return fallbackAttioFields()
	}
	fields := attributesToFields(listAttrs, false)

	kind := parentKindFromList(list)
	if kind == "" {
		kind = guessParentKind(list.Name)
		s.logger.Info("guessed parent object kind from list name",
			zap.String("list", listID), zap.String("kind", kind))
	}

	objects := s.listAttioCollections(ctx)
	slug := resolveObjectSlug(kind, objects)

	coreAttrs, err := s.attio.ListObjectAttributes(ctx, creds, slug)
	if err != nil {
		// Core schema is enrichment; list fields alone still work.
		s.logger.Warn("failed to load core object fields for list",
			zap.String("list", listID), zap.String("object", slug), zap.Error(err))
		return fields
	}

	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f.ID] = true
	}
	for _, f := range attributesToFields(coreAttrs, true) {
		if !seen[f.ID] {
			fields = append(fields, f)
			seen[f.ID] = true
		}
	}
	return fields
}

func (s *SchemaServiceImpl) listAirtableFields(ctx context.Context, tableID string) []common_models.FieldDescriptor {
	creds, ok := s.creds(ctx, common_models.ServiceAirtable)
	if !ok {
		s.logger.Warn("airtable not connected, using stand-in fields")
		return fallbackAirtableFields()
	}

	tables, err := s.airtable.ListTables(ctx, creds)
	if err != nil {
		s.logger.Warn("failed to load airtable schema, using stand-ins", zap.Error(err))
		return fallbackAirtableFields()
	}

	for _, table := range tables {
		if table.ID != tableID && table.Name != tableID {
			continue
		}
		fields := make([]common_models.FieldDescriptor, 0, len(table.Fields))
		for _, f := range table.Fields {
			fields = append(fields, common_models.FieldDescriptor{
				ID:          f.ID,
				Name:        f.Name,
				Type:        f.Type,
				Description: f.Description,
				IsCore:      true,
			})
		}
		return fields
	}

	s.logger.Warn("airtable table not found, using stand-in fields", zap.String("table", tableID))
	return fallbackAirtableFields()
}

func (s *SchemaServiceImpl) CreateAirtableField(ctx context.Context, tableID string, field gateways.AirtableField) (*gateways.AirtableField, error) {
	creds, ok := s.creds(ctx, common_models.ServiceAirtable)
	if !ok {
		return nil, fmt.Errorf("airtable connection not available")
	}

	if field.Type == "singleSelect" || field.Type == "multipleSelects" {
		if field.Options == nil {
			field.Options = map[string]any{
				"choices": []map[string]any{
					{"name": "Option 1"},
					{"name": "Option 2"},
					{"name": "Option 3"},
				},
			}
		}
	}

	created, err := s.airtable.CreateField(ctx, creds, tableID, field)
	if err != nil {
		return nil, fmt.Errorf("failed to create airtable field: %w", err)
	}
	s.logger.Info("created airtable field",
		zap.String("table", tableID), zap.String("field", field.Name))
	return created, nil
}

// SuggestAirtableFieldType maps an Attio attribute type to the closest
// Airtable field type, for ad-hoc destination field creation.
func (s *SchemaServiceImpl) SuggestAirtableFieldType(attioType string) string {
	typeMapping := map[string]string{
		"email-address":    "email",
		"phone-number":     "phoneNumber",
		"url":              "url",
		"text":             "singleLineText",
		"single-line-text": "singleLineText",
		"multi-line-text":  "multilineText",
		"number":           "number",
		"currency":         "currency",
		"date":             "date",
		"datetime":         "dateTime",
		"checkbox":         "checkbox",
		"select":           "singleSelect",
		"status":           "singleSelect",
		"rating":           "rating",
	}
	if t, ok := typeMapping[attioType]; ok {
		return t
	}
	return "singleLineText"
}

func attributesToFields(attrs []gateways.AttioAttribute, isCore bool) []common_models.FieldDescriptor {
	fields := make([]common_models.FieldDescriptor, 0, len(attrs))
	for _, attr := range attrs {
		fields = append(fields, common_models.FieldDescriptor{
			ID:          firstNonEmpty(attr.APISlug, attr.ID.AttributeID),
			Name:        firstNonEmpty(attr.Title, attr.APISlug),
			Type:        firstNonEmpty(attr.Type, "text"),
			Description: attr.Description,
			IsCore:      isCore,
		})
	}
	return fields
}

func fallbackAttioCollections() []common_models.Collection {
	return []common_models.Collection{
		{ID: "people", Name: "People", Kind: common_models.CollectionObject, APISlug: "people"},
		{ID: "companies", Name: "Companies", Kind: common_models.CollectionObject, APISlug: "companies"},
		{ID: "deals", Name: "Deals", Kind: common_models.CollectionObject, APISlug: "deals"},
	}
}

func fallbackAirtableCollections() []common_models.Collection {
	return []common_models.Collection{
		{ID: "tblContacts", Name: "Contacts", Kind: common_models.CollectionTable},
	}
}

func fallbackAttioFields() []common_models.FieldDescriptor {
	return []common_models.FieldDescriptor{
		{ID: "name", Name: "Name", Type: "text", IsCore: true},
		{ID: "email_addresses", Name: "Email", Type: "email-address", IsCore: true},
		{ID: "phone_numbers", Name: "Phone", Type: "phone-number", IsCore: true},
		{ID: "company", Name: "Company", Type: "record-reference", IsCore: true},
	}
}

func fallbackAirtableFields() []common_models.FieldDescriptor {
	return []common_models.FieldDescriptor{
		{ID: "fldEmail", Name: "Email Address", Type: "email", IsCore: true},
		{ID: "fldFirstName", Name: "First Name", Type: "singleLineText", IsCore: true},
		{ID: "fldLastName", Name: "Last Name", Type: "singleLineText", IsCore: true},
		{ID: "fldCompany", Name: "Company Name", Type: "singleLineText", IsCore: true},
		{ID: "fldPhone", Name: "Phone Number", Type: "phoneNumber", IsCore: true},
	}
}
