package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	common_models "go-syncbridge/internal/common/models"
	"go-syncbridge/internal/features/connection"
	"go-syncbridge/internal/features/mapping"
	"go-syncbridge/internal/features/transform"
	"go-syncbridge/internal/gateways"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EngineStatus is the live view exposed over GET /api/sync/status.
type EngineStatus struct {
	State State     `json:"state"`
	RunID string    `json:"runId,omitempty"`
	Stats SyncStats `json:"stats"`
}

// SyncService runs record synchronization between the connected services.
// One run executes at a time; a completed or failed engine must be Reset
// before the next run starts.
type SyncService interface {
	PerformSync(ctx context.Context, cfg SyncConfig) (*SyncRun, error)
	Status() EngineStatus
	Reset() error
	ListRuns(ctx context.Context, limit int64) ([]SyncRun, error)
	GetRunLog(ctx context.Context, runID string) ([]LogEntry, error)
	Events() *Broadcaster
}

type SyncServiceImpl struct {
	connections connection.ConnectionService
	mappings    mapping.MappingService
	attio       gateways.AttioGateway
	airtable    gateways.AirtableGateway
	transforms  *transform.Registry
	matcher     RecordMatcher
	backup      BackupWriter
	repo        SyncRunRepository
	bus         *Broadcaster
	logger      *zap.Logger

	mu    gosync.Mutex
	state State
	runID string
	stats SyncStats
}

func NewSyncService(
	connections connection.ConnectionService,
	mappings mapping.MappingService,
	attio gateways.AttioGateway,
	airtable gateways.AirtableGateway,
	transforms *transform.Registry,
	matcher RecordMatcher,
	backup BackupWriter,
	repo SyncRunRepository,
	bus *Broadcaster,
	logger *zap.Logger,
) SyncService {
	return &SyncServiceImpl{
		connections: connections,
		mappings:    mappings,
		attio:       attio,
		airtable:    airtable,
		transforms:  transforms,
		matcher:     matcher,
		backup:      backup,
		repo:        repo,
		bus:         bus,
		logger:      logger,
		state:       StateIdle,
	}
}

// runCtx bundles everything one run needs. Dry passes count into their own
// stats and never reach a write endpoint.
type runCtx struct {
	run           *SyncRun
	cfg           SyncConfig
	set           *mapping.MappingSet
	attioCreds    gateways.Credentials
	airtableCreds gateways.Credentials
	stats         *SyncStats
	dry           bool
}

func (s *SyncServiceImpl) Events() *Broadcaster {
	return s.bus
}

func (s *SyncServiceImpl) Status() EngineStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return EngineStatus{
		State: s.state,
		RunID: s.runID,
		Stats: s.stats,
	}
}

func (s *SyncServiceImpl) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return fmt.Errorf("cannot reset while a sync run is in progress")
	}
	s.state = StateIdle
	s.runID = ""
	s.stats = SyncStats{}
	return nil
}

func (s *SyncServiceImpl) ListRuns(ctx context.Context, limit int64) ([]SyncRun, error) {
	return s.repo.List(ctx, limit)
}

func (s *SyncServiceImpl) GetRunLog(ctx context.Context, runID string) ([]LogEntry, error) {
	run, err := s.repo.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("sync run %s not found", runID)
	}
	return run.Log, nil
}

func (s *SyncServiceImpl) PerformSync(ctx context.Context, cfg SyncConfig) (*SyncRun, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return nil, fmt.Errorf("a sync run is already in progress")
	}
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, fmt.Errorf("engine is %s; reset it before starting another run", s.state)
	}
	run := &SyncRun{
		ID:        uuid.NewString(),
		Config:    cfg,
		Status:    StateRunning,
		StartTime: time.Now(),
	}
	s.state = StateRunning
	s.runID = run.ID
	s.stats = SyncStats{}
	s.mu.Unlock()

	err := s.execute(ctx, run, cfg)
	return run, err
}

func (s *SyncServiceImpl) execute(ctx context.Context, run *SyncRun, cfg SyncConfig) (err error) {
	_ = s.repo.Create(ctx, run)

	defer func() {
		run.EndTime = time.Now()
		s.mu.Lock()
		run.Stats = s.stats
		if err != nil {
			run.Status = StateError
			run.Error = err.Error()
		} else {
			run.Status = StateCompleted
		}
		s.state = run.Status
		s.mu.Unlock()
		_ = s.repo.Update(context.Background(), run)
	}()

	s.log(run, LevelInfo, "Starting sync process...")

	rc, err := s.prepare(ctx, run, cfg)
	if err != nil {
		s.log(run, LevelError, fmt.Sprintf("Sync failed: %s", err.Error()))
		return err
	}

	if cfg.CreateBackups {
		if err = s.createBackups(ctx, rc); err != nil {
			s.log(run, LevelError, fmt.Sprintf("Backup failed, aborting sync: %s", err.Error()))
			return err
		}
	}

	if cfg.DryRunFirst {
		if err = s.runPass(ctx, rc, true); err != nil {
			s.log(run, LevelError, fmt.Sprintf("Dry run failed: %s", err.Error()))
			return err
		}
	}

	if err = s.runPass(ctx, rc, false); err != nil {
		s.log(run, LevelError, fmt.Sprintf("Sync failed: %s", err.Error()))
		return err
	}

	final := s.Status().Stats
	s.log(run, LevelSuccess, fmt.Sprintf("Sync completed: created=%d updated=%d skipped=%d errors=%d",
		final.Created, final.Updated, final.Skipped, final.Errors))
	s.publishStats(&final)
	return nil
}

// prepare validates connections and loads the mapping set; any failure here
// fails the run before records are touched.
func (s *SyncServiceImpl) prepare(ctx context.Context, run *SyncRun, cfg SyncConfig) (*runCtx, error) {
	attioConn, err := s.connections.GetConnection(ctx, common_models.ServiceAttio)
	if err != nil {
		return nil, err
	}
	airtableConn, err := s.connections.GetConnection(ctx, common_models.ServiceAirtable)
	if err != nil {
		return nil, err
	}
	if attioConn == nil || !attioConn.Connected || airtableConn == nil || !airtableConn.Connected {
		return nil, fmt.Errorf("both Attio and Airtable must be connected before syncing")
	}

	setID, err := primitive.ObjectIDFromHex(cfg.MappingSetID)
	if err != nil {
		return nil, fmt.Errorf("invalid mapping set id: %w", err)
	}
	set, err := s.mappings.GetSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("mapping set %s not found", cfg.MappingSetID)
	}

	return &runCtx{
		run:           run,
		cfg:           cfg,
		set:           set,
		attioCreds:    attioConn.Credentials,
		airtableCreds: airtableConn.Credentials,
	}, nil
}

// runPass executes one full pass of the configured direction. Dry passes
// share the fetch and decision logic but never write; their counts go to a
// throwaway stats block.
func (s *SyncServiceImpl) runPass(ctx context.Context, rc *runCtx, dry bool) error {
	pass := *rc
	pass.dry = dry
	if dry {
		pass.stats = &SyncStats{}
		s.log(rc.run, LevelInfo, "Performing dry run before live sync...")
	}

	var err error
	switch rc.cfg.Direction {
	case DirectionBidirectional:
		s.log(rc.run, LevelWarning, "Bidirectional sync runs two fixed passes; conflicting edits resolve in favor of the later pass")
		if err = s.syncAttioToAirtable(ctx, &pass); err == nil {
			err = s.syncAirtableToAttio(ctx, &pass)
		}
	case DirectionAttioToAirtable:
		err = s.syncAttioToAirtable(ctx, &pass)
	case DirectionAirtableToAttio:
		err = s.syncAirtableToAttio(ctx, &pass)
	}
	if err != nil {
		return err
	}

	if dry {
		s.log(rc.run, LevelInfo, fmt.Sprintf("Dry run finished: would create=%d update=%d skip=%d errors=%d",
			pass.stats.Created, pass.stats.Updated, pass.stats.Skipped, pass.stats.Errors))
	}
	return nil
}

func (s *SyncServiceImpl) syncAttioToAirtable(ctx context.Context, rc *runCtx) error {
	s.log(rc.run, LevelInfo, "Syncing from Attio to Airtable...")

	records, err := s.fetchAttioRecords(ctx, rc)
	if err != nil {
		return fmt.Errorf("failed to sync from Attio to Airtable: %w", err)
	}
	s.log(rc.run, LevelInfo, fmt.Sprintf("Fetched %d records from Attio", len(records)))
	if len(records) == 0 {
		return nil
	}

	for i, rec := range records {
		s.progress(rc.run, i+1, len(records), "Processing records")
		if err := s.syncRecordToAirtable(ctx, rc, rec); err != nil {
			return err
		}
		if err := s.throttle(ctx, rc); err != nil {
			return err
		}
	}

	s.log(rc.run, LevelSuccess, "Attio to Airtable sync completed")
	return nil
}

func (s *SyncServiceImpl) syncAirtableToAttio(ctx context.Context, rc *runCtx) error {
	s.log(rc.run, LevelInfo, "Syncing from Airtable to Attio...")

	records, err := s.airtable.ListRecords(ctx, rc.airtableCreds, rc.cfg.AirtableTableID, gateways.ListOptions{
		MaxRecords:      rc.cfg.RecordLimit,
		FilterByFormula: rc.cfg.AirtableFilter,
	})
	if err != nil {
		return fmt.Errorf("failed to sync from Airtable to Attio: %w", err)
	}
	s.log(rc.run, LevelInfo, fmt.Sprintf("Fetched %d records from Airtable", len(records)))
	if len(records) == 0 {
		return nil
	}

	for i, rec := range records {
		s.progress(rc.run, i+1, len(records), "Processing records")
		if err := s.syncRecordToAttio(ctx, rc, rec); err != nil {
			return err
		}
		if err := s.throttle(ctx, rc); err != nil {
			return err
		}
	}

	s.log(rc.run, LevelSuccess, "Airtable to Attio sync completed")
	return nil
}

// fetchAttioRecords reads the source records, honoring the record limit as
// a hard cap. List sources take two steps: entries first, then the parent
// records behind them.
func (s *SyncServiceImpl) fetchAttioRecords(ctx context.Context, rc *runCtx) ([]gateways.AttioRecord, error) {
	var records []gateways.AttioRecord

	filter, err := rc.cfg.attioFilterQuery()
	if err != nil {
		return nil, err
	}

	if rc.cfg.AttioSourceKind == attioSourceKindList {
		s.log(rc.run, LevelInfo, fmt.Sprintf("Fetching entries for list %s", rc.cfg.AttioListID))
		entries, entriesErr := s.attio.QueryListEntries(ctx, rc.attioCreds, rc.cfg.AttioListID, gateways.RecordQuery{Filter: filter})
		if entriesErr != nil {
			return nil, fmt.Errorf("failed to fetch list entries: %w", entriesErr)
		}
		s.log(rc.run, LevelInfo, fmt.Sprintf("Found %d entries in the list", len(entries)))
		if len(entries) == 0 {
			return nil, nil
		}

		ids := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.ParentRecordID != "" {
				ids = append(ids, entry.ParentRecordID)
			}
		}

		parentKind := rc.cfg.parentKind()
		s.log(rc.run, LevelInfo, fmt.Sprintf("Fetching %d parent records from %s", len(ids), parentKind))
		records, err = s.attio.QueryRecords(ctx, rc.attioCreds, parentKind, gateways.RecordQuery{
			Filter: map[string]any{
				"record_id": map[string]any{"$in": ids},
			},
		})
	} else {
		records, err = s.attio.QueryRecords(ctx, rc.attioCreds, rc.cfg.AttioObjectID, gateways.RecordQuery{
			Filter: filter,
			Limit:  rc.cfg.RecordLimit,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Attio records: %w", err)
	}

	if len(records) > rc.cfg.RecordLimit {
		s.log(rc.run, LevelInfo, fmt.Sprintf("Limiting run to the first %d of %d records", rc.cfg.RecordLimit, len(records)))
		records = records[:rc.cfg.RecordLimit]
	}
	return records, nil
}

func (s *SyncServiceImpl) syncRecordToAirtable(ctx context.Context, rc *runCtx, record gateways.AttioRecord) error {
	err := func() error {
		mapped := s.mapAttioToAirtable(rc, record)
		if len(mapped) == 0 {
			s.bump(rc, func(st *SyncStats) { st.Skipped++ })
			s.log(rc.run, LevelWarning, "No mapped values for record, skipping")
			return nil
		}

		if rc.cfg.UpdateExisting {
			existing, err := s.matcher.FindAirtable(ctx, rc.airtableCreds, rc.cfg.AirtableTableID, mapped, rc.cfg.MatchField)
			if err != nil {
				return err
			}
			if existing != nil {
				if !rc.dry {
					if _, err := s.airtable.UpdateRecord(ctx, rc.airtableCreds, rc.cfg.AirtableTableID, existing.ID, mapped); err != nil {
						return err
					}
				}
				s.bump(rc, func(st *SyncStats) { st.Updated++ })
				s.log(rc.run, LevelInfo, fmt.Sprintf("Updated record: %s", existing.ID))
				return nil
			}
		}

		if rc.cfg.CreateNew {
			if !rc.dry {
				created, err := s.airtable.CreateRecord(ctx, rc.airtableCreds, rc.cfg.AirtableTableID, mapped)
				if err != nil {
					return err
				}
				s.log(rc.run, LevelSuccess, fmt.Sprintf("Created Airtable record: %s", created.ID))
			}
			s.bump(rc, func(st *SyncStats) { st.Created++ })
		} else {
			s.bump(rc, func(st *SyncStats) { st.Skipped++ })
		}
		return nil
	}()

	if err != nil {
		s.bump(rc, func(st *SyncStats) { st.Errors++ })
		s.log(rc.run, LevelError, fmt.Sprintf("Failed to sync record: %s", err.Error()))
		if rc.cfg.StopOnError {
			return err
		}
	}
	return nil
}

func (s *SyncServiceImpl) syncRecordToAttio(ctx context.Context, rc *runCtx, record gateways.AirtableRecord) error {
	err := func() error {
		mapped := s.mapAirtableToAttio(rc, record)
		if len(mapped) == 0 {
			s.bump(rc, func(st *SyncStats) { st.Skipped++ })
			s.log(rc.run, LevelWarning, "No mapped values for record, skipping")
			return nil
		}

		objectID := s.attioWriteObject(rc.cfg)

		if rc.cfg.UpdateExisting {
			existing, err := s.matcher.FindAttio(ctx, rc.attioCreds, objectID, mapped, rc.cfg.MatchField)
			if err != nil {
				return err
			}
			if existing != nil {
				if !rc.dry {
					if _, err := s.attio.UpdateRecord(ctx, rc.attioCreds, objectID, existing.ID.RecordID, mapped); err != nil {
						return err
					}
				}
				s.bump(rc, func(st *SyncStats) { st.Updated++ })
				s.log(rc.run, LevelInfo, fmt.Sprintf("Updated record: %s", existing.ID.RecordID))
				return nil
			}
		}

		if rc.cfg.CreateNew {
			if !rc.dry {
				created, err := s.attio.CreateRecord(ctx, rc.attioCreds, objectID, mapped)
				if err != nil {
					return err
				}
				s.log(rc.run, LevelSuccess, fmt.Sprintf("Created Attio record: %s", created.ID.RecordID))
			}
			s.bump(rc, func(st *SyncStats) { st.Created++ })
		} else {
			s.bump(rc, func(st *SyncStats) { st.Skipped++ })
		}
		return nil
	}()

	if err != nil {
		s.bump(rc, func(st *SyncStats) { st.Errors++ })
		s.log(rc.run, LevelError, fmt.Sprintf("Failed to sync record: %s", err.Error()))
		if rc.cfg.StopOnError {
			return err
		}
	}
	return nil
}

// attioWriteObject is where Attio-bound records land. List selections write
// to the list's parent object.
func (s *SyncServiceImpl) attioWriteObject(cfg SyncConfig) string {
	if cfg.AttioSourceKind == attioSourceKindList {
		return cfg.parentKind()
	}
	return cfg.AttioObjectID
}

// mapAttioToAirtable builds the outbound field map. Disabled and incomplete
// mappings are skipped; empty extracted values are omitted.
func (s *SyncServiceImpl) mapAttioToAirtable(rc *runCtx, record gateways.AttioRecord) map[string]any {
	mapped := make(map[string]any)
	for _, m := range rc.set.Mappings {
		if !m.Enabled || !m.Complete() {
			continue
		}
		attioField := attioSide(rc.set, m)
		airtableField := airtableSide(rc.set, m)
		if attioField == nil || airtableField == nil {
			continue
		}

		value := ExtractAttioValue(record, fieldKey(attioField))
		if emptyValue(value) {
			continue
		}
		mapped[fieldLabel(airtableField)] = s.transforms.Apply(value, m.Transformations)
	}
	return mapped
}

func (s *SyncServiceImpl) mapAirtableToAttio(rc *runCtx, record gateways.AirtableRecord) map[string]any {
	mapped := make(map[string]any)
	for _, m := range rc.set.Mappings {
		if !m.Enabled || !m.Complete() {
			continue
		}
		attioField := attioSide(rc.set, m)
		airtableField := airtableSide(rc.set, m)
		if attioField == nil || airtableField == nil {
			continue
		}

		value := extractAirtableValue(record, fieldLabel(airtableField))
		if emptyValue(value) {
			continue
		}
		mapped[fieldKey(attioField)] = s.transforms.Apply(value, m.Transformations)
	}
	return mapped
}

// createBackups snapshots every destination collection the run will write
// to. Bidirectional runs back up both sides.
func (s *SyncServiceImpl) createBackups(ctx context.Context, rc *runCtx) error {
	s.log(rc.run, LevelInfo, "Creating backups before sync...")

	if rc.cfg.Direction == DirectionAttioToAirtable || rc.cfg.Direction == DirectionBidirectional {
		records, err := s.airtable.ListRecords(ctx, rc.airtableCreds, rc.cfg.AirtableTableID, gateways.ListOptions{})
		if err != nil {
			return fmt.Errorf("fetch Airtable records for backup: %w", err)
		}
		snapshot := make([]backupRecord, 0, len(records))
		for _, rec := range records {
			snapshot = append(snapshot, backupRecord{ID: rec.ID, Payload: rec.Fields})
		}
		if err := s.backup.Snapshot(ctx, rc.run.ID, string(common_models.ServiceAirtable), rc.cfg.AirtableTableID, snapshot); err != nil {
			return err
		}
	}

	if rc.cfg.Direction == DirectionAirtableToAttio || rc.cfg.Direction == DirectionBidirectional {
		objectID := s.attioWriteObject(rc.cfg)
		records, err := s.attio.QueryRecords(ctx, rc.attioCreds, objectID, gateways.RecordQuery{})
		if err != nil {
			return fmt.Errorf("fetch Attio records for backup: %w", err)
		}
		snapshot := make([]backupRecord, 0, len(records))
		for _, rec := range records {
			snapshot = append(snapshot, backupRecord{ID: rec.ID.RecordID, Payload: rec.Values})
		}
		if err := s.backup.Snapshot(ctx, rc.run.ID, string(common_models.ServiceAttio), objectID, snapshot); err != nil {
			return err
		}
	}

	s.log(rc.run, LevelSuccess, "Backups created successfully")
	return nil
}

func (s *SyncServiceImpl) throttle(ctx context.Context, rc *runCtx) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rc.cfg.rateLimitDelay()):
		return nil
	}
}

func (s *SyncServiceImpl) bump(rc *runCtx, apply func(*SyncStats)) {
	if rc.dry {
		apply(rc.stats)
		return
	}
	s.mu.Lock()
	apply(&s.stats)
	snapshot := s.stats
	s.mu.Unlock()
	s.publishStats(&snapshot)
}

func (s *SyncServiceImpl) publishStats(stats *SyncStats) {
	copied := *stats
	s.bus.Publish(Event{Kind: EventStats, Stats: &copied})
}

func (s *SyncServiceImpl) progress(run *SyncRun, current, total int, message string) {
	percent := 0
	if total > 0 {
		percent = int(float64(current)/float64(total)*100 + 0.5)
	}
	s.bus.Publish(Event{Kind: EventProgress, Progress: &Progress{
		Current: current,
		Total:   total,
		Percent: percent,
		Message: message,
	}})
}

func (s *SyncServiceImpl) log(run *SyncRun, level LogLevel, message string) {
	entry := LogEntry{Level: level, Message: message, Timestamp: time.Now()}
	run.Log = append(run.Log, entry)
	s.bus.Publish(Event{Kind: EventLog, Log: &entry})

	fields := []zap.Field{
		zap.String("run_id", run.ID),
		zap.String("service", "sync"),
	}
	switch level {
	case LevelError:
		s.logger.Error(message, fields...)
	case LevelWarning:
		s.logger.Warn(message, fields...)
	case LevelDebug:
		s.logger.Debug(message, fields...)
	default:
		s.logger.Info(message, fields...)
	}
}

func attioSide(set *mapping.MappingSet, m mapping.FieldMapping) *common_models.FieldDescriptor {
	if set.SourceService == common_models.ServiceAttio {
		return m.SourceField
	}
	return m.DestField
}

func airtableSide(set *mapping.MappingSet, m mapping.FieldMapping) *common_models.FieldDescriptor {
	if set.SourceService == common_models.ServiceAirtable {
		return m.SourceField
	}
	return m.DestField
}

// fieldKey is the machine identifier (the slug for Attio attributes).
func fieldKey(f *common_models.FieldDescriptor) string {
	if f.ID != "" {
		return f.ID
	}
	return f.Name
}

// fieldLabel prefers the display name, which is how Airtable keys fields.
func fieldLabel(f *common_models.FieldDescriptor) string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}
