package client

import "time"

const AggregateType = "Client"

// Status is the client lifecycle status. It shares labels with the activity
// status but is a distinct enum: client status is a projection the ledger
// maintains, not a copy of any single activity's status.
type Status string

const (
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCanceled   Status = "Canceled"
	StatusPostponed  Status = "Postponed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCanceled, StatusPostponed:
		return true
	}
	return false
}

// Client is a mutable record. Unlike activity snapshots it is updated in
// place; deleting a client does not touch activity history.
type Client struct {
	ID               string     `json:"id"`
	ClientName       string     `json:"client_name"`
	LegalName        string     `json:"legal_name,omitempty"`
	Industry         string     `json:"industry,omitempty"`
	CompanySize      string     `json:"company_size,omitempty"`
	Region           string     `json:"region,omitempty"`
	Country          string     `json:"country,omitempty"`
	OwnerID          string     `json:"owner_id"`
	Status           Status     `json:"status"`
	PipelineStage    string     `json:"pipeline_stage,omitempty"`
	DealValue        int        `json:"deal_value,omitempty"`
	Probability      int        `json:"probability,omitempty"`
	ContactName      string     `json:"contact_name,omitempty"`
	ContactEmail     string     `json:"contact_email,omitempty"`
	ContactPhone     string     `json:"contact_phone,omitempty"`
	PreferredChannel string     `json:"preferred_channel,omitempty"`
	LastActivityDate time.Time  `json:"last_activity_date,omitempty"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	HealthScore      string     `json:"health_score,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
