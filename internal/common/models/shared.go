package models

import "time"

// Service identifies one of the two connected remote services.
type Service string

const (
	ServiceAttio    Service = "attio"
	ServiceAirtable Service = "airtable"
)

func (s Service) Valid() bool {
	return s == ServiceAttio || s == ServiceAirtable
}

// CollectionKind distinguishes schema-level entities across both services.
// An Attio "list" is a filtered view over an underlying object kind.
type CollectionKind string

const (
	CollectionObject CollectionKind = "object"
	CollectionList   CollectionKind = "list"
	CollectionTable  CollectionKind = "table"
)

// Collection is a remote schema-level grouping of records: an Attio object
// type, an Attio list, or an Airtable table.
type Collection struct {
	ID               string         `json:"id" bson:"id"`
	Name             string         `json:"name" bson:"name"`
	Kind             CollectionKind `json:"kind" bson:"kind"`
	APISlug          string         `json:"api_slug,omitempty" bson:"api_slug,omitempty"`
	Description      string         `json:"description,omitempty" bson:"description,omitempty"`
	ParentObjectKind string         `json:"parent_object_kind,omitempty" bson:"parent_object_kind,omitempty"`
}

// FieldDescriptor describes one field of a collection. IsCore=false flags a
// field that belongs to a list-level schema rather than the underlying
// object schema; it is display metadata only, never used for sync logic.
type FieldDescriptor struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	Type        string `json:"type" bson:"type"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	IsCore      bool   `json:"is_core" bson:"is_core"`
}

// Log is the operational log row written by the async zap tee writer.
type Log struct {
	AppId        string    `bson:"app_id" json:"app_id"`
	Message      string    `bson:"message" json:"message"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	RunID        string    `bson:"run_id,omitempty" json:"run_id,omitempty"`
	Service      string    `bson:"service,omitempty" json:"service,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
