package sync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// BackupWriter snapshots destination records before a run touches them.
// A failed snapshot aborts the run before any remote write.
type BackupWriter interface {
	Snapshot(ctx context.Context, runID, service, collectionID string, records []backupRecord) error
}

type backupRecord struct {
	ID      string
	Payload map[string]any
}

const backupTableDDL = `CREATE TABLE IF NOT EXISTS sync_backups (
	run_id        TEXT        NOT NULL,
	service       TEXT        NOT NULL,
	collection_id TEXT        NOT NULL,
	record_id     TEXT        NOT NULL,
	payload       JSONB       NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, service, record_id)
)`

type postgresBackupWriter struct {
	dsn string
}

// NewPostgresBackupWriter writes snapshots into the sync_backups table of
// the configured database. An empty DSN is allowed at construction and
// rejected when a snapshot is attempted.
func NewPostgresBackupWriter(dsn string) BackupWriter {
	return &postgresBackupWriter{dsn: dsn}
}

func (w *postgresBackupWriter) Snapshot(ctx context.Context, runID, service, collectionID string, records []backupRecord) error {
	if w.dsn == "" {
		return fmt.Errorf("backups requested but no backup database is configured")
	}

	db, err := sql.Open("postgres", w.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to backup database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping backup database: %w", err)
	}

	if _, err := db.ExecContext(ctx, backupTableDDL); err != nil {
		return fmt.Errorf("failed to prepare backup table: %w", err)
	}

	const upsert = `INSERT INTO sync_backups (run_id, service, collection_id, record_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, service, record_id) DO UPDATE SET payload = $5, created_at = $6`

	now := time.Now()
	for _, rec := range records {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode record %s for backup: %w", rec.ID, err)
		}
		if _, err := db.ExecContext(ctx, upsert, runID, service, collectionID, rec.ID, payload, now); err != nil {
			return fmt.Errorf("failed to back up record %s: %w", rec.ID, err)
		}
	}
	return nil
}
