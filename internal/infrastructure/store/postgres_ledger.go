package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/infrastructure/kafka"
)

// PostgresLedger stores activity snapshots in PostgreSQL. The seq column
// preserves insertion order, which the same-version cut-off rows depend on.
type PostgresLedger struct {
	db       *sql.DB
	producer *kafka.Producer
}

func NewPostgresLedger(db *sql.DB, producer *kafka.Producer) *PostgresLedger {
	return &PostgresLedger{db: db, producer: producer}
}

// Migrate creates the snapshot table if it does not exist.
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_snapshots (
			seq             BIGSERIAL PRIMARY KEY,
			id              TEXT NOT NULL UNIQUE,
			parent_id       TEXT NOT NULL,
			version         INT NOT NULL,
			type            TEXT NOT NULL,
			status          TEXT NOT NULL,
			title           TEXT NOT NULL,
			notes           TEXT NOT NULL DEFAULT '',
			client_id       TEXT NOT NULL DEFAULT '',
			owner_id        TEXT NOT NULL,
			assignment      TEXT NOT NULL DEFAULT '',
			cut_off_date    TIMESTAMPTZ,
			postpones_count INT NOT NULL DEFAULT 0,
			datetime        TIMESTAMPTZ NOT NULL,
			postponed_by    TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_activity_snapshots_parent ON activity_snapshots (parent_id, seq);
		CREATE INDEX IF NOT EXISTS idx_activity_snapshots_client ON activity_snapshots (client_id);
	`)
	return err
}

func (l *PostgresLedger) Append(ctx context.Context, snap activity.Snapshot, eventType string) error {
	var cutOff sql.NullTime
	if snap.CutOffDate != nil {
		cutOff = sql.NullTime{Time: *snap.CutOffDate, Valid: true}
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO activity_snapshots
			(id, parent_id, version, type, status, title, notes, client_id,
			 owner_id, assignment, cut_off_date, postpones_count, datetime, postponed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		snap.ID, snap.ParentID, snap.Version, string(snap.Type), string(snap.Status),
		snap.Title, snap.Notes, snap.ClientID, snap.OwnerID, snap.Assignment,
		cutOff, snap.PostponesCount, snap.Datetime, snap.PostponedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return publishSnapshot(ctx, l.producer, snap, eventType)
}

func (l *PostgresLedger) Get(id string) (activity.Snapshot, bool) {
	row := l.db.QueryRow(selectSnapshot+" WHERE id = $1", id)
	snap, err := scanSnapshot(row)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[PostgresLedger] Failed to get snapshot %s: %v", id, err)
		}
		return activity.Snapshot{}, false
	}
	return snap, true
}

func (l *PostgresLedger) Group(parentID string) []activity.Snapshot {
	return l.query(selectSnapshot+" WHERE parent_id = $1 ORDER BY seq", parentID)
}

func (l *PostgresLedger) All() []activity.Snapshot {
	return l.query(selectSnapshot + " ORDER BY seq")
}

const selectSnapshot = `
	SELECT id, parent_id, version, type, status, title, notes, client_id,
	       owner_id, assignment, cut_off_date, postpones_count, datetime, postponed_by
	FROM activity_snapshots`

func (l *PostgresLedger) query(q string, args ...any) []activity.Snapshot {
	rows, err := l.db.Query(q, args...)
	if err != nil {
		log.Printf("[PostgresLedger] Query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var out []activity.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			log.Printf("[PostgresLedger] Scan failed: %v", err)
			continue
		}
		out = append(out, snap)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (activity.Snapshot, error) {
	var snap activity.Snapshot
	var typ, status string
	var cutOff sql.NullTime
	var datetime time.Time
	err := row.Scan(&snap.ID, &snap.ParentID, &snap.Version, &typ, &status,
		&snap.Title, &snap.Notes, &snap.ClientID, &snap.OwnerID, &snap.Assignment,
		&cutOff, &snap.PostponesCount, &datetime, &snap.PostponedBy)
	if err != nil {
		return activity.Snapshot{}, err
	}
	snap.Type = activity.Type(typ)
	snap.Status = activity.Status(status)
	snap.Datetime = datetime
	if cutOff.Valid {
		t := cutOff.Time
		snap.CutOffDate = &t
	}
	return snap, nil
}
