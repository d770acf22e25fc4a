package store

import (
	"database/sql"
	"log"
	"sync"

	"github.com/example/crm-ledger/internal/readmodel"
)

// PostgresReadStore implements ReadStoreInterface on PostgreSQL for the
// projector processes. Collections map to read_* tables.
type PostgresReadStore struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

// Migrate creates the read model tables if they do not exist.
func (rs *PostgresReadStore) Migrate() error {
	_, err := rs.db.Exec(`
		CREATE TABLE IF NOT EXISTS read_activities (
			parent_id       TEXT PRIMARY KEY,
			snapshot_id     TEXT NOT NULL,
			version         INT NOT NULL,
			type            TEXT NOT NULL,
			status          TEXT NOT NULL,
			title           TEXT NOT NULL,
			client_id       TEXT NOT NULL DEFAULT '',
			owner_id        TEXT NOT NULL,
			assignment      TEXT NOT NULL DEFAULT '',
			cut_off_date    TIMESTAMPTZ,
			postpones_count INT NOT NULL DEFAULT 0,
			datetime        TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS read_clients (
			id                 TEXT PRIMARY KEY,
			client_name        TEXT NOT NULL,
			owner_id           TEXT NOT NULL,
			status             TEXT NOT NULL,
			pipeline_stage     TEXT NOT NULL DEFAULT '',
			deal_value         INT NOT NULL DEFAULT 0,
			probability        INT NOT NULL DEFAULT 0,
			last_activity_date TIMESTAMPTZ,
			updated_at         TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (rs *PostgresReadStore) Set(collection, id string, data any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch collection {
	case "activities":
		rs.setActivity(data.(*readmodel.ActivityReadModel))
	case "clients":
		rs.setClient(data.(*readmodel.ClientReadModel))
	}
}

func (rs *PostgresReadStore) Get(collection, id string) (any, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case "activities":
		return rs.getActivity(id)
	case "clients":
		return rs.getClient(id)
	}
	return nil, false
}

func (rs *PostgresReadStore) GetAll(collection string) []any {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	switch collection {
	case "activities":
		return rs.getAllActivities()
	case "clients":
		return rs.getAllClients()
	}
	return nil
}

func (rs *PostgresReadStore) Delete(collection, id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var query string
	switch collection {
	case "activities":
		query = "DELETE FROM read_activities WHERE parent_id = $1"
	case "clients":
		query = "DELETE FROM read_clients WHERE id = $1"
	default:
		return
	}
	if _, err := rs.db.Exec(query, id); err != nil {
		log.Printf("[PostgresReadStore] Failed to delete %s/%s: %v", collection, id, err)
	}
}

func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	switch collection {
	case "activities":
		current, ok := rs.getActivity(id)
		if !ok {
			return false
		}
		rs.setActivity(updateFn(current).(*readmodel.ActivityReadModel))
		return true
	case "clients":
		current, ok := rs.getClient(id)
		if !ok {
			return false
		}
		rs.setClient(updateFn(current).(*readmodel.ClientReadModel))
		return true
	}
	return false
}

func (rs *PostgresReadStore) setActivity(a *readmodel.ActivityReadModel) {
	var cutOff sql.NullTime
	if a.CutOffDate != nil {
		cutOff = sql.NullTime{Time: *a.CutOffDate, Valid: true}
	}
	_, err := rs.db.Exec(`
		INSERT INTO read_activities
			(parent_id, snapshot_id, version, type, status, title, client_id,
			 owner_id, assignment, cut_off_date, postpones_count, datetime, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (parent_id) DO UPDATE SET
			snapshot_id = EXCLUDED.snapshot_id,
			version = EXCLUDED.version,
			type = EXCLUDED.type,
			status = EXCLUDED.status,
			title = EXCLUDED.title,
			client_id = EXCLUDED.client_id,
			owner_id = EXCLUDED.owner_id,
			assignment = EXCLUDED.assignment,
			cut_off_date = EXCLUDED.cut_off_date,
			postpones_count = EXCLUDED.postpones_count,
			datetime = EXCLUDED.datetime,
			updated_at = EXCLUDED.updated_at`,
		a.ParentID, a.SnapshotID, a.Version, a.Type, a.Status, a.Title, a.ClientID,
		a.OwnerID, a.Assignment, cutOff, a.PostponesCount, a.Datetime, a.UpdatedAt)
	if err != nil {
		log.Printf("[PostgresReadStore] Failed to set activity %s: %v", a.ParentID, err)
	}
}

func (rs *PostgresReadStore) getActivity(id string) (*readmodel.ActivityReadModel, bool) {
	row := rs.db.QueryRow(`
		SELECT parent_id, snapshot_id, version, type, status, title, client_id,
		       owner_id, assignment, cut_off_date, postpones_count, datetime, updated_at
		FROM read_activities WHERE parent_id = $1`, id)
	a, err := scanActivityReadModel(row)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[PostgresReadStore] Failed to get activity %s: %v", id, err)
		}
		return nil, false
	}
	return a, true
}

func (rs *PostgresReadStore) getAllActivities() []any {
	rows, err := rs.db.Query(`
		SELECT parent_id, snapshot_id, version, type, status, title, client_id,
		       owner_id, assignment, cut_off_date, postpones_count, datetime, updated_at
		FROM read_activities ORDER BY datetime`)
	if err != nil {
		log.Printf("[PostgresReadStore] Failed to list activities: %v", err)
		return nil
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		a, err := scanActivityReadModel(rows)
		if err != nil {
			log.Printf("[PostgresReadStore] Scan failed: %v", err)
			continue
		}
		out = append(out, a)
	}
	return out
}

func scanActivityReadModel(row rowScanner) (*readmodel.ActivityReadModel, error) {
	var a readmodel.ActivityReadModel
	var cutOff sql.NullTime
	err := row.Scan(&a.ParentID, &a.SnapshotID, &a.Version, &a.Type, &a.Status,
		&a.Title, &a.ClientID, &a.OwnerID, &a.Assignment, &cutOff,
		&a.PostponesCount, &a.Datetime, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cutOff.Valid {
		t := cutOff.Time
		a.CutOffDate = &t
	}
	return &a, nil
}

func (rs *PostgresReadStore) setClient(c *readmodel.ClientReadModel) {
	_, err := rs.db.Exec(`
		INSERT INTO read_clients
			(id, client_name, owner_id, status, pipeline_stage, deal_value,
			 probability, last_activity_date, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			pipeline_stage = EXCLUDED.pipeline_stage,
			deal_value = EXCLUDED.deal_value,
			probability = EXCLUDED.probability,
			last_activity_date = EXCLUDED.last_activity_date,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.ClientName, c.OwnerID, c.Status, c.PipelineStage, c.DealValue,
		c.Probability, c.LastActivityDate, c.UpdatedAt)
	if err != nil {
		log.Printf("[PostgresReadStore] Failed to set client %s: %v", c.ID, err)
	}
}

func (rs *PostgresReadStore) getClient(id string) (*readmodel.ClientReadModel, bool) {
	row := rs.db.QueryRow(`
		SELECT id, client_name, owner_id, status, pipeline_stage, deal_value,
		       probability, last_activity_date, updated_at
		FROM read_clients WHERE id = $1`, id)
	var c readmodel.ClientReadModel
	err := row.Scan(&c.ID, &c.ClientName, &c.OwnerID, &c.Status, &c.PipelineStage,
		&c.DealValue, &c.Probability, &c.LastActivityDate, &c.UpdatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[PostgresReadStore] Failed to get client %s: %v", id, err)
		}
		return nil, false
	}
	return &c, true
}

func (rs *PostgresReadStore) getAllClients() []any {
	rows, err := rs.db.Query(`
		SELECT id, client_name, owner_id, status, pipeline_stage, deal_value,
		       probability, last_activity_date, updated_at
		FROM read_clients ORDER BY client_name`)
	if err != nil {
		log.Printf("[PostgresReadStore] Failed to list clients: %v", err)
		return nil
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var c readmodel.ClientReadModel
		if err := rows.Scan(&c.ID, &c.ClientName, &c.OwnerID, &c.Status, &c.PipelineStage,
			&c.DealValue, &c.Probability, &c.LastActivityDate, &c.UpdatedAt); err != nil {
			log.Printf("[PostgresReadStore] Scan failed: %v", err)
			continue
		}
		out = append(out, &c)
	}
	return out
}
