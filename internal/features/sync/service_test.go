package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/features/connection"
	"go-syncbridge/internal/features/mapping"
	"go-syncbridge/internal/features/transform"
	"go-syncbridge/internal/gateways"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeConnections struct {
	attio    *connection.Connection
	airtable *connection.Connection
}

func (f *fakeConnections) TestConnection(ctx context.Context, service common_models.Service, creds gateways.Credentials) (*connection.TestResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeConnections) StoreConnection(ctx context.Context, service common_models.Service, creds gateways.Credentials) (*connection.Connection, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeConnections) GetConnection(ctx context.Context, service common_models.Service) (*connection.Connection, error) {
	if service == common_models.ServiceAttio {
		return f.attio, nil
	}
	return f.airtable, nil
}

func (f *fakeConnections) ListConnections(ctx context.Context) ([]connection.Connection, error) {
	return nil, nil
}

func (f *fakeConnections) Disconnect(ctx context.Context, service common_models.Service) error {
	return nil
}

type fakeMappings struct {
	set *mapping.MappingSet
}

func (f *fakeMappings) AutoMap(ctx context.Context, req mapping.AutoMapRequest) (*mapping.MappingSet, error) {
	return nil, fmt.Errorf("not implemented")
}
func (f *fakeMappings) CreateSet(ctx context.Context, set *mapping.MappingSet) error { return nil }
func (f *fakeMappings) GetSet(ctx context.Context, id primitive.ObjectID) (*mapping.MappingSet, error) {
	if f.set != nil && f.set.ID == id {
		return f.set, nil
	}
	return nil, nil
}
func (f *fakeMappings) ListSets(ctx context.Context) ([]mapping.MappingSet, error) { return nil, nil }
func (f *fakeMappings) UpdateSet(ctx context.Context, set *mapping.MappingSet) error {
	return nil
}
func (f *fakeMappings) DeleteSet(ctx context.Context, id primitive.ObjectID) error { return nil }
func (f *fakeMappings) AddMapping(ctx context.Context, setID primitive.ObjectID) (*mapping.MappingSet, error) {
	return nil, fmt.Errorf("not implemented")
}
func (f *fakeMappings) RemoveMapping(ctx context.Context, setID primitive.ObjectID, mappingID string) (*mapping.MappingSet, error) {
	return nil, fmt.Errorf("not implemented")
}
func (f *fakeMappings) UpdateMapping(ctx context.Context, setID primitive.ObjectID, mappingID string, updated mapping.FieldMapping) (*mapping.MappingSet, error) {
	return nil, fmt.Errorf("not implemented")
}

type fakeAttio struct {
	records     []gateways.AttioRecord
	entries     []gateways.AttioListEntry
	matchResult []gateways.AttioRecord

	queriedObjects []string
	lastFilter     map[string]any
	created        []map[string]any
	updated        []string
	createCalls    int
	failCreateOn   int
}

func (f *fakeAttio) ListObjects(ctx context.Context, creds gateways.Credentials) ([]gateways.AttioObject, error) {
	return nil, nil
}
func (f *fakeAttio) ListObjectAttributes(ctx context.Context, creds gateways.Credentials, objectID string) ([]gateways.AttioAttribute, error) {
	return nil, nil
}
func (f *fakeAttio) ListLists(ctx context.Context, creds gateways.Credentials) ([]gateways.AttioList, error) {
	return nil, nil
}
func (f *fakeAttio) GetList(ctx context.Context, creds gateways.Credentials, listID string) (*gateways.AttioList, error) {
	return nil, nil
}
func (f *fakeAttio) ListListAttributes(ctx context.Context, creds gateways.Credentials, listID string) ([]gateways.AttioAttribute, error) {
	return nil, nil
}

func (f *fakeAttio) QueryListEntries(ctx context.Context, creds gateways.Credentials, listID string, query gateways.RecordQuery) ([]gateways.AttioListEntry, error) {
	return f.entries, nil
}

func (f *fakeAttio) QueryRecords(ctx context.Context, creds gateways.Credentials, objectID string, query gateways.RecordQuery) ([]gateways.AttioRecord, error) {
	f.queriedObjects = append(f.queriedObjects, objectID)
	f.lastFilter = query.Filter

	if query.Filter != nil {
		if cond, ok := query.Filter["record_id"].(map[string]any); ok {
			ids, _ := cond["$in"].([]string)
			allowed := make(map[string]bool, len(ids))
			for _, id := range ids {
				allowed[id] = true
			}
			var out []gateways.AttioRecord
			for _, rec := range f.records {
				if allowed[rec.ID.RecordID] {
					out = append(out, rec)
				}
			}
			return out, nil
		}
		return f.matchResult, nil
	}

	out := f.records
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (f *fakeAttio) CreateRecord(ctx context.Context, creds gateways.Credentials, objectID string, values map[string]any) (*gateways.AttioRecord, error) {
	f.createCalls++
	if f.failCreateOn > 0 && f.createCalls == f.failCreateOn {
		return nil, &gateways.APIError{Service: common_models.ServiceAttio, Status: 422, Body: "validation failed"}
	}
	f.created = append(f.created, values)
	return &gateways.AttioRecord{ID: gateways.AttioCompositeID{RecordID: fmt.Sprintf("rec_new_%d", f.createCalls)}}, nil
}

func (f *fakeAttio) UpdateRecord(ctx context.Context, creds gateways.Credentials, objectID, recordID string, values map[string]any) (*gateways.AttioRecord, error) {
	f.updated = append(f.updated, recordID)
	return &gateways.AttioRecord{ID: gateways.AttioCompositeID{RecordID: recordID}}, nil
}

type fakeAirtable struct {
	records     []gateways.AirtableRecord
	matchResult []gateways.AirtableRecord

	lastOpts     gateways.ListOptions
	listCalls    int
	created      []map[string]any
	updated      []string
	createCalls  int
	failCreateOn int
}

func (f *fakeAirtable) ListTables(ctx context.Context, creds gateways.Credentials) ([]gateways.AirtableTable, error) {
	return nil, nil
}

func (f *fakeAirtable) ListRecords(ctx context.Context, creds gateways.Credentials, tableID string, opts gateways.ListOptions) ([]gateways.AirtableRecord, error) {
	f.listCalls++
	f.lastOpts = opts
	if opts.FilterByFormula != "" {
		return f.matchResult, nil
	}
	out := f.records
	if opts.MaxRecords > 0 && len(out) > opts.MaxRecords {
		out = out[:opts.MaxRecords]
	}
	return out, nil
}

func (f *fakeAirtable) CreateRecord(ctx context.Context, creds gateways.Credentials, tableID string, fields map[string]any) (*gateways.AirtableRecord, error) {
	f.createCalls++
	if f.failCreateOn > 0 && f.createCalls == f.failCreateOn {
		return nil, &gateways.APIError{Service: common_models.ServiceAirtable, Status: 422, Body: "INVALID_VALUE_FOR_COLUMN"}
	}
	f.created = append(f.created, fields)
	return &gateways.AirtableRecord{ID: fmt.Sprintf("rec_new_%d", f.createCalls), Fields: fields}, nil
}

func (f *fakeAirtable) UpdateRecord(ctx context.Context, creds gateways.Credentials, tableID, recordID string, fields map[string]any) (*gateways.AirtableRecord, error) {
	f.updated = append(f.updated, recordID)
	return &gateways.AirtableRecord{ID: recordID, Fields: fields}, nil
}

func (f *fakeAirtable) CreateField(ctx context.Context, creds gateways.Credentials, tableID string, field gateways.AirtableField) (*gateways.AirtableField, error) {
	return &field, nil
}

type fakeBackup struct {
	calls int
	err   error
}

func (f *fakeBackup) Snapshot(ctx context.Context, runID, service, collectionID string, records []backupRecord) error {
	f.calls++
	return f.err
}

type fakeRunRepo struct {
	runs map[string]*SyncRun
}

func newFakeRunRepo() *fakeRunRepo {
	return &fakeRunRepo{runs: make(map[string]*SyncRun)}
}

func (f *fakeRunRepo) Create(ctx context.Context, run *SyncRun) error {
	stored := *run
	f.runs[run.ID] = &stored
	return nil
}

func (f *fakeRunRepo) Update(ctx context.Context, run *SyncRun) error {
	stored := *run
	f.runs[run.ID] = &stored
	return nil
}

func (f *fakeRunRepo) Get(ctx context.Context, id string) (*SyncRun, error) {
	return f.runs[id], nil
}

func (f *fakeRunRepo) List(ctx context.Context, limit int64) ([]SyncRun, error) {
	var out []SyncRun
	for _, run := range f.runs {
		out = append(out, *run)
	}
	return out, nil
}

type harness struct {
	service  SyncService
	attio    *fakeAttio
	airtable *fakeAirtable
	backup   *fakeBackup
	repo     *fakeRunRepo
	set      *mapping.MappingSet
}

func attioRecord(id, name, email string) gateways.AttioRecord {
	return gateways.AttioRecord{
		ID: gateways.AttioCompositeID{RecordID: id},
		Values: map[string]any{
			"name":            []any{map[string]any{"value": name}},
			"email_addresses": []any{map[string]any{"email_address": email}},
		},
	}
}

func testMappingSet() *mapping.MappingSet {
	return &mapping.MappingSet{
		ID:            primitive.NewObjectID(),
		Name:          "companies → Companies",
		SourceService: common_models.ServiceAttio,
		DestService:   common_models.ServiceAirtable,
		Mappings: []mapping.FieldMapping{
			{
				ID:          "m1",
				SourceField: &common_models.FieldDescriptor{ID: "name", Name: "Name", Type: "text"},
				DestField:   &common_models.FieldDescriptor{ID: "fldName", Name: "Name", Type: "singleLineText"},
				Enabled:     true,
			},
			{
				ID:          "m2",
				SourceField: &common_models.FieldDescriptor{ID: "email_addresses", Name: "Email", Type: "email"},
				DestField:   &common_models.FieldDescriptor{ID: "fldEmail", Name: "Email", Type: "email"},
				Enabled:     true,
			},
		},
	}
}

func newHarness(attio *fakeAttio, airtable *fakeAirtable) *harness {
	set := testMappingSet()
	backup := &fakeBackup{}
	repo := newFakeRunRepo()
	logger := zap.NewNop()

	conns := &fakeConnections{
		attio: &connection.Connection{
			Service:     common_models.ServiceAttio,
			Connected:   true,
			Credentials: gateways.Credentials{Token: "attio-token"},
		},
		airtable: &connection.Connection{
			Service:     common_models.ServiceAirtable,
			Connected:   true,
			Credentials: gateways.Credentials{Token: "airtable-token", BaseID: "appBase"},
		},
	}

	service := NewSyncService(
		conns,
		&fakeMappings{set: set},
		attio,
		airtable,
		transform.NewRegistry(logger),
		NewRecordMatcher(attio, airtable),
		backup,
		repo,
		NewBroadcaster(),
		logger,
	)

	return &harness{
		service:  service,
		attio:    attio,
		airtable: airtable,
		backup:   backup,
		repo:     repo,
		set:      set,
	}
}

func (h *harness) config(direction Direction) SyncConfig {
	return SyncConfig{
		Direction:       direction,
		MappingSetID:    h.set.ID.Hex(),
		AttioSourceKind: "object",
		AttioObjectID:   "companies",
		AirtableTableID: "tblCompanies",
		CreateNew:       true,
		RateLimitMs:     1,
	}
}

func TestPerformSyncCreatesRecords(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "Acme", "a@acme.com"),
		attioRecord("rec_2", "Globex", "b@globex.com"),
		attioRecord("rec_3", "Initech", "c@initech.com"),
	}}
	h := newHarness(attio, &fakeAirtable{})

	run, err := h.service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable))
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Status != StateCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.Stats.Created != 3 || run.Stats.Errors != 0 {
		t.Errorf("stats = %+v, want 3 created, 0 errors", run.Stats)
	}

	if len(h.airtable.created) != 3 {
		t.Fatalf("got %d created records, want 3", len(h.airtable.created))
	}
	// Source order is preserved.
	if h.airtable.created[0]["Name"] != "Acme" || h.airtable.created[2]["Name"] != "Initech" {
		t.Errorf("created records out of order: %v", h.airtable.created)
	}
	if h.airtable.created[0]["Email"] != "a@acme.com" {
		t.Errorf("email not extracted: %v", h.airtable.created[0])
	}

	if h.service.Status().State != StateCompleted {
		t.Errorf("engine state = %s, want completed", h.service.Status().State)
	}
}

func TestRecordLimitCapsRun(t *testing.T) {
	var records []gateways.AttioRecord
	for i := 0; i < 25; i++ {
		records = append(records, attioRecord(fmt.Sprintf("rec_%d", i), fmt.Sprintf("Company %d", i), ""))
	}
	h := newHarness(&fakeAttio{records: records}, &fakeAirtable{})

	cfg := h.config(DirectionAttioToAirtable)
	// RecordLimit left at zero takes the default cap.
	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Stats.Created != 10 {
		t.Errorf("created = %d, want the default cap of 10", run.Stats.Created)
	}
}

func TestWriteFailureContinuesByDefault(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "A", ""),
		attioRecord("rec_2", "B", ""),
		attioRecord("rec_3", "C", ""),
		attioRecord("rec_4", "D", ""),
		attioRecord("rec_5", "E", ""),
	}}
	airtable := &fakeAirtable{failCreateOn: 3}
	h := newHarness(attio, airtable)

	run, err := h.service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable))
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Status != StateCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.Stats.Created != 4 || run.Stats.Errors != 1 {
		t.Errorf("stats = %+v, want 4 created, 1 error", run.Stats)
	}
}

func TestStopOnErrorHaltsRun(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "A", ""),
		attioRecord("rec_2", "B", ""),
		attioRecord("rec_3", "C", ""),
	}}
	airtable := &fakeAirtable{failCreateOn: 2}
	h := newHarness(attio, airtable)

	cfg := h.config(DirectionAttioToAirtable)
	cfg.StopOnError = true
	run, err := h.service.PerformSync(context.Background(), cfg)
	if err == nil {
		t.Fatal("PerformSync() expected error with stopOnError")
	}
	if run.Status != StateError {
		t.Errorf("run status = %s, want error", run.Status)
	}
	if run.Stats.Created != 1 || run.Stats.Errors != 1 {
		t.Errorf("stats = %+v, want 1 created, 1 error before the halt", run.Stats)
	}
}

func TestIncompleteAndDisabledMappingsAreSkipped(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "Acme", "a@acme.com"),
	}}
	h := newHarness(attio, &fakeAirtable{})
	h.set.Mappings[0].DestField = nil // incomplete
	h.set.Mappings[1].Enabled = false // disabled

	run, err := h.service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable))
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Stats.Skipped != 1 || run.Stats.Created != 0 {
		t.Errorf("stats = %+v, want the record skipped with nothing created", run.Stats)
	}
	if len(h.airtable.created) != 0 {
		t.Errorf("no writes expected, got %v", h.airtable.created)
	}
}

func TestUpdateExistingWithMatchField(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "Acme", "a@acme.com"),
	}}
	airtable := &fakeAirtable{
		matchResult: []gateways.AirtableRecord{
			{ID: "rec_existing", Fields: map[string]any{"Email": "a@acme.com"}},
		},
	}
	h := newHarness(attio, airtable)

	cfg := h.config(DirectionAttioToAirtable)
	cfg.UpdateExisting = true
	cfg.MatchField = "Email"

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Stats.Updated != 1 || run.Stats.Created != 0 {
		t.Errorf("stats = %+v, want 1 updated, 0 created", run.Stats)
	}
	if len(airtable.updated) != 1 || airtable.updated[0] != "rec_existing" {
		t.Errorf("updated = %v, want [rec_existing]", airtable.updated)
	}
}

func TestUpdateExistingWithoutMatchFieldCreates(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "Acme", "a@acme.com"),
	}}
	h := newHarness(attio, &fakeAirtable{})

	cfg := h.config(DirectionAttioToAirtable)
	cfg.UpdateExisting = true
	// No MatchField: the matcher reports not-found and the record is created.
	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Stats.Created != 1 || run.Stats.Updated != 0 {
		t.Errorf("stats = %+v, want 1 created, 0 updated", run.Stats)
	}
}

func TestListSourceFetchesParentRecords(t *testing.T) {
	attio := &fakeAttio{
		records: []gateways.AttioRecord{
			attioRecord("rec_1", "In List", ""),
			attioRecord("rec_2", "Not In List", ""),
		},
		entries: []gateways.AttioListEntry{
			{ParentRecordID: "rec_1"},
		},
	}
	h := newHarness(attio, &fakeAirtable{})

	cfg := h.config(DirectionAttioToAirtable)
	cfg.AttioSourceKind = "list"
	cfg.AttioListID = "list_abc"
	cfg.ParentObjectKind = "companies"

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Stats.Created != 1 {
		t.Errorf("created = %d, want only the list member", run.Stats.Created)
	}
	if h.airtable.created[0]["Name"] != "In List" {
		t.Errorf("wrong record synced: %v", h.airtable.created)
	}
	if len(attio.queriedObjects) == 0 || attio.queriedObjects[0] != "companies" {
		t.Errorf("parent records should come from companies, queried %v", attio.queriedObjects)
	}
}

func TestListSourceWithNoEntriesShortCircuits(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{attioRecord("rec_1", "A", "")}}
	h := newHarness(attio, &fakeAirtable{})

	cfg := h.config(DirectionAttioToAirtable)
	cfg.AttioSourceKind = "list"
	cfg.AttioListID = "list_abc"

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Stats.Created != 0 || run.Stats.Errors != 0 {
		t.Errorf("stats = %+v, want a clean empty run", run.Stats)
	}
}

func TestAttioFilterAppliedToSourceQuery(t *testing.T) {
	attio := &fakeAttio{matchResult: []gateways.AttioRecord{
		attioRecord("rec_1", "Acme", "a@acme.com"),
	}}
	h := newHarness(attio, &fakeAirtable{})

	cfg := h.config(DirectionAttioToAirtable)
	cfg.AttioFilter = `{"stage": "won"}`

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if attio.lastFilter == nil || attio.lastFilter["stage"] != "won" {
		t.Errorf("query filter = %v, want stage=won passed through", attio.lastFilter)
	}
	if run.Stats.Created != 1 {
		t.Errorf("created = %d, want the filtered record", run.Stats.Created)
	}
}

func TestAirtableFilterAppliedToSourceListing(t *testing.T) {
	airtable := &fakeAirtable{matchResult: []gateways.AirtableRecord{
		{ID: "rec_a", Fields: map[string]any{"Name": "Globex", "Email": "b@globex.com"}},
	}}
	h := newHarness(&fakeAttio{}, airtable)

	cfg := h.config(DirectionAirtableToAttio)
	cfg.AirtableFilter = `{Status} = "Active"`

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if airtable.lastOpts.FilterByFormula != cfg.AirtableFilter {
		t.Errorf("filterByFormula = %q, want %q", airtable.lastOpts.FilterByFormula, cfg.AirtableFilter)
	}
	if run.Stats.Created != 1 || len(h.attio.created) != 1 {
		t.Errorf("stats = %+v, want the filtered record created in Attio", run.Stats)
	}
}

func TestInvalidAttioFilterRejected(t *testing.T) {
	h := newHarness(&fakeAttio{}, &fakeAirtable{})

	cfg := h.config(DirectionAttioToAirtable)
	cfg.AttioFilter = `{not json`

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error for malformed filter")
	}
	if run != nil {
		t.Errorf("no run should start for a malformed filter, got %+v", run)
	}
	if h.service.Status().State == StateRunning {
		t.Error("rejected config must not leave the engine running")
	}
}

func TestSyncConfigRoundTripsFilterFields(t *testing.T) {
	body := []byte(`{"direction":"attio-to-airtable","attioFilter":"{\"stage\":\"won\"}","destFilter":"{Status} = \"Active\"","preventDeletes":true}`)

	var cfg SyncConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.AttioFilter != `{"stage":"won"}` {
		t.Errorf("AttioFilter = %q", cfg.AttioFilter)
	}
	if cfg.AirtableFilter != `{Status} = "Active"` {
		t.Errorf("AirtableFilter = %q", cfg.AirtableFilter)
	}
	if !cfg.PreventDeletes {
		t.Error("PreventDeletes not decoded")
	}
}

func TestBidirectionalRunsBothPasses(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "Acme", "a@acme.com"),
	}}
	airtable := &fakeAirtable{records: []gateways.AirtableRecord{
		{ID: "rec_a", Fields: map[string]any{"Name": "Globex", "Email": "b@globex.com"}},
	}}
	h := newHarness(attio, airtable)

	run, err := h.service.PerformSync(context.Background(), h.config(DirectionBidirectional))
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if run.Stats.Created != 2 {
		t.Errorf("created = %d, want one per direction", run.Stats.Created)
	}
	if len(airtable.created) != 1 || len(attio.created) != 1 {
		t.Errorf("both sides should receive one record, got airtable=%d attio=%d",
			len(airtable.created), len(attio.created))
	}
	if attio.created[0]["name"] != "Globex" {
		t.Errorf("reverse pass should key by attribute slug, got %v", attio.created[0])
	}
}

func TestBackupFailureAbortsBeforeWrites(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{attioRecord("rec_1", "A", "")}}
	h := newHarness(attio, &fakeAirtable{})
	h.backup.err = fmt.Errorf("backup database unreachable")

	cfg := h.config(DirectionAttioToAirtable)
	cfg.CreateBackups = true

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err == nil {
		t.Fatal("PerformSync() expected backup error")
	}
	if run.Status != StateError {
		t.Errorf("run status = %s, want error", run.Status)
	}
	if len(h.airtable.created) != 0 {
		t.Errorf("no writes should happen after a failed backup, got %v", h.airtable.created)
	}
}

func TestDryRunFirstWritesOnce(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{
		attioRecord("rec_1", "A", ""),
		attioRecord("rec_2", "B", ""),
	}}
	h := newHarness(attio, &fakeAirtable{})

	cfg := h.config(DirectionAttioToAirtable)
	cfg.DryRunFirst = true

	run, err := h.service.PerformSync(context.Background(), cfg)
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}
	if len(h.airtable.created) != 2 {
		t.Errorf("live pass should write each record once, got %d", len(h.airtable.created))
	}
	if run.Stats.Created != 2 {
		t.Errorf("stats should only count the live pass, got %+v", run.Stats)
	}
}

func TestSecondRunRejectedUntilReset(t *testing.T) {
	h := newHarness(&fakeAttio{}, &fakeAirtable{})

	if _, err := h.service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable)); err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if h.service.Status().State != StateCompleted {
		t.Fatalf("engine state = %s, want completed", h.service.Status().State)
	}

	if _, err := h.service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable)); err == nil {
		t.Fatal("second run should be rejected until the engine is reset")
	}

	if err := h.service.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	status := h.service.Status()
	if status.State != StateIdle || status.Stats != (SyncStats{}) {
		t.Errorf("after reset status = %+v, want idle with zero stats", status)
	}

	if _, err := h.service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable)); err != nil {
		t.Errorf("run after reset error = %v", err)
	}
}

func TestUnconnectedServiceFailsFast(t *testing.T) {
	h := newHarness(&fakeAttio{}, &fakeAirtable{})
	conns := &fakeConnections{
		attio: &connection.Connection{Service: common_models.ServiceAttio, Connected: true},
		// airtable missing entirely
	}
	service := NewSyncService(
		conns,
		&fakeMappings{set: h.set},
		h.attio,
		h.airtable,
		transform.NewRegistry(zap.NewNop()),
		NewRecordMatcher(h.attio, h.airtable),
		h.backup,
		h.repo,
		NewBroadcaster(),
		zap.NewNop(),
	)

	run, err := service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable))
	if err == nil {
		t.Fatal("expected connection validation error")
	}
	if run.Status != StateError {
		t.Errorf("run status = %s, want error", run.Status)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	h := newHarness(&fakeAttio{}, &fakeAirtable{})

	cfg := h.config(Direction("sideways"))
	if _, err := h.service.PerformSync(context.Background(), cfg); err == nil {
		t.Error("expected error for unknown direction")
	}

	cfg = h.config(DirectionAttioToAirtable)
	cfg.AirtableTableID = ""
	if _, err := h.service.PerformSync(context.Background(), cfg); err == nil {
		t.Error("expected error for missing table")
	}
	if h.service.Status().State == StateRunning {
		t.Error("rejected config must not leave the engine running")
	}
}

func TestRunAndLogArePersisted(t *testing.T) {
	attio := &fakeAttio{records: []gateways.AttioRecord{attioRecord("rec_1", "Acme", "")}}
	h := newHarness(attio, &fakeAirtable{})

	run, err := h.service.PerformSync(context.Background(), h.config(DirectionAttioToAirtable))
	if err != nil {
		t.Fatalf("PerformSync() error = %v", err)
	}

	stored := h.repo.runs[run.ID]
	if stored == nil {
		t.Fatal("run not persisted")
	}
	if stored.Status != StateCompleted {
		t.Errorf("persisted status = %s, want completed", stored.Status)
	}
	if len(stored.Log) == 0 {
		t.Error("persisted run should carry its log")
	}

	entries, err := h.service.GetRunLog(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("GetRunLog() error = %v", err)
	}
	if len(entries) == 0 {
		t.Error("GetRunLog() should return the run log")
	}
}
