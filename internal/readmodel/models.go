package readmodel

import "time"

// ActivityReadModel is the reporting view of one logical activity record:
// the current snapshot, keyed by parent id.
type ActivityReadModel struct {
	ParentID       string     `json:"parent_id"`
	SnapshotID     string     `json:"snapshot_id"`
	Version        int        `json:"version"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	Title          string     `json:"title"`
	ClientID       string     `json:"client_id,omitempty"`
	OwnerID        string     `json:"owner_id"`
	Assignment     string     `json:"assignment,omitempty"`
	CutOffDate     *time.Time `json:"cut_off_date,omitempty"`
	PostponesCount int        `json:"postpones_count"`
	Datetime       time.Time  `json:"datetime"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ClientReadModel is the reporting view of a client.
type ClientReadModel struct {
	ID               string    `json:"id"`
	ClientName       string    `json:"client_name"`
	OwnerID          string    `json:"owner_id"`
	Status           string    `json:"status"`
	PipelineStage    string    `json:"pipeline_stage,omitempty"`
	DealValue        int       `json:"deal_value,omitempty"`
	Probability      int       `json:"probability,omitempty"`
	LastActivityDate time.Time `json:"last_activity_date,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}
