package sync

import (
	"encoding/json"
	"fmt"
	"time"
)

// Direction names which way records flow. Bidirectional is two fixed passes,
// source-to-destination first.
type Direction string

const (
	DirectionAttioToAirtable Direction = "attio-to-airtable"
	DirectionAirtableToAttio Direction = "airtable-to-attio"
	DirectionBidirectional   Direction = "bidirectional"
)

func (d Direction) Valid() bool {
	switch d {
	case DirectionAttioToAirtable, DirectionAirtableToAttio, DirectionBidirectional:
		return true
	}
	return false
}

// State is the engine's run state. One run is in flight at a time; a
// finished engine must be Reset before the next run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateError     State = "error"
)

const (
	defaultRecordLimit    = 10
	defaultRateLimitMs    = 100
	fallbackParentObject  = "companies"
	attioSourceKindList   = "list"
	attioSourceKindObject = "object"
)

// SyncConfig selects what to sync and how. Zero values for RecordLimit and
// RateLimitMs take the defaults in Normalize. AttioFilter is a JSON filter
// object passed through to the Attio records/query endpoint; AirtableFilter
// is an Airtable filterByFormula expression. The engine never deletes
// destination records; PreventDeletes records the caller's intent with the
// run.
type SyncConfig struct {
	Direction        Direction `json:"direction" bson:"direction"`
	MappingSetID     string    `json:"mappingSetId" bson:"mapping_set_id"`
	AttioSourceKind  string    `json:"attioSourceKind" bson:"attio_source_kind"`
	AttioObjectID    string    `json:"attioObjectId" bson:"attio_object_id"`
	AttioListID      string    `json:"attioListId" bson:"attio_list_id"`
	ParentObjectKind string    `json:"parentObjectKind" bson:"parent_object_kind"`
	AirtableTableID  string    `json:"airtableTableId" bson:"airtable_table_id"`
	AttioFilter      string    `json:"attioFilter" bson:"attio_filter"`
	AirtableFilter   string    `json:"destFilter" bson:"airtable_filter"`
	CreateNew        bool      `json:"createNew" bson:"create_new"`
	UpdateExisting   bool      `json:"updateExisting" bson:"update_existing"`
	CreateBackups    bool      `json:"createBackups" bson:"create_backups"`
	StopOnError      bool      `json:"stopOnError" bson:"stop_on_error"`
	DryRunFirst      bool      `json:"dryRunFirst" bson:"dry_run_first"`
	PreventDeletes   bool      `json:"preventDeletes" bson:"prevent_deletes"`
	MatchField       string    `json:"matchField" bson:"match_field"`
	RecordLimit      int       `json:"recordLimit" bson:"record_limit"`
	RateLimitMs      int       `json:"rateLimitDelay" bson:"rate_limit_ms"`
}

// Normalize fills defaults in place.
func (c *SyncConfig) Normalize() {
	if c.RecordLimit <= 0 {
		c.RecordLimit = defaultRecordLimit
	}
	if c.RateLimitMs <= 0 {
		c.RateLimitMs = defaultRateLimitMs
	}
	if c.AttioSourceKind == "" {
		c.AttioSourceKind = attioSourceKindObject
	}
}

// Validate checks the selection before any remote call is made.
func (c *SyncConfig) Validate() error {
	if !c.Direction.Valid() {
		return fmt.Errorf("unknown sync direction: %s", c.Direction)
	}
	if c.MappingSetID == "" {
		return fmt.Errorf("mapping set is required")
	}
	if c.AirtableTableID == "" {
		return fmt.Errorf("airtable table is required")
	}
	if c.AttioSourceKind == attioSourceKindList {
		if c.AttioListID == "" {
			return fmt.Errorf("attio list id is required for list sources")
		}
	} else if c.AttioObjectID == "" {
		return fmt.Errorf("attio object is required")
	}
	if _, err := c.attioFilterQuery(); err != nil {
		return err
	}
	return nil
}

// attioFilterQuery parses the optional source filter into the shape the
// records/query endpoint takes.
func (c *SyncConfig) attioFilterQuery() (map[string]any, error) {
	if c.AttioFilter == "" {
		return nil, nil
	}
	var filter map[string]any
	if err := json.Unmarshal([]byte(c.AttioFilter), &filter); err != nil {
		return nil, fmt.Errorf("invalid attio filter: %w", err)
	}
	return filter, nil
}

func (c *SyncConfig) rateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

// parentKind is the object the records behind a list belong to.
func (c *SyncConfig) parentKind() string {
	if c.ParentObjectKind != "" {
		return c.ParentObjectKind
	}
	return fallbackParentObject
}

// SyncStats counts per-record outcomes of one run.
type SyncStats struct {
	Created int `json:"created" bson:"created"`
	Updated int `json:"updated" bson:"updated"`
	Skipped int `json:"skipped" bson:"skipped"`
	Errors  int `json:"errors" bson:"errors"`
}

// Progress reports position inside the record loop.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Percent int    `json:"progress"`
	Message string `json:"message"`
}

type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelSuccess LogLevel = "success"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
	LevelDebug   LogLevel = "debug"
)

// LogEntry is one line of a run's operational log.
type LogEntry struct {
	Level     LogLevel  `json:"level" bson:"level"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// SyncRun is the persisted record of one sync execution, log included.
type SyncRun struct {
	ID        string     `json:"id" bson:"_id"`
	Config    SyncConfig `json:"config" bson:"config"`
	Status    State      `json:"status" bson:"status"`
	Stats     SyncStats  `json:"stats" bson:"stats"`
	Log       []LogEntry `json:"log" bson:"log"`
	Error     string     `json:"error,omitempty" bson:"error,omitempty"`
	StartTime time.Time  `json:"startTime" bson:"start_time"`
	EndTime   time.Time  `json:"endTime" bson:"end_time"`
}
