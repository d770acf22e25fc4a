package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrMissingName    = errors.New("client name is required")
	ErrMissingOwner   = errors.New("client owner is required")
	ErrInvalidStatus  = errors.New("invalid client status")
)

// Store persists clients and publishes the corresponding event on each write.
type Store interface {
	Put(ctx context.Context, c Client, eventType string) error
	Get(id string) (Client, bool)
	Delete(ctx context.Context, id string) error
	All() []Client
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput carries the caller-supplied fields for a new client.
type CreateInput struct {
	ClientName       string     `json:"client_name"`
	LegalName        string     `json:"legal_name"`
	Industry         string     `json:"industry"`
	CompanySize      string     `json:"company_size"`
	Region           string     `json:"region"`
	Country          string     `json:"country"`
	OwnerID          string     `json:"owner_id"`
	Status           Status     `json:"status"`
	PipelineStage    string     `json:"pipeline_stage"`
	DealValue        int        `json:"deal_value"`
	Probability      int        `json:"probability"`
	ContactName      string     `json:"contact_name"`
	ContactEmail     string     `json:"contact_email"`
	ContactPhone     string     `json:"contact_phone"`
	PreferredChannel string     `json:"preferred_channel"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date"`
	Notes            string     `json:"notes"`
	HealthScore      string     `json:"health_score"`
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	ClientName       *string    `json:"client_name,omitempty"`
	LegalName        *string    `json:"legal_name,omitempty"`
	Industry         *string    `json:"industry,omitempty"`
	OwnerID          *string    `json:"owner_id,omitempty"`
	Status           *Status    `json:"status,omitempty"`
	PipelineStage    *string    `json:"pipeline_stage,omitempty"`
	DealValue        *int       `json:"deal_value,omitempty"`
	Probability      *int       `json:"probability,omitempty"`
	ContactName      *string    `json:"contact_name,omitempty"`
	ContactEmail     *string    `json:"contact_email,omitempty"`
	ContactPhone     *string    `json:"contact_phone,omitempty"`
	PreferredChannel *string    `json:"preferred_channel,omitempty"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	HealthScore      *string    `json:"health_score,omitempty"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Client, error) {
	if in.ClientName == "" {
		return nil, ErrMissingName
	}
	if in.OwnerID == "" {
		return nil, ErrMissingOwner
	}
	status := in.Status
	if status == "" {
		status = StatusPlanned
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	now := time.Now()
	c := Client{
		ID:               uuid.New().String(),
		ClientName:       in.ClientName,
		LegalName:        in.LegalName,
		Industry:         in.Industry,
		CompanySize:      in.CompanySize,
		Region:           in.Region,
		Country:          in.Country,
		OwnerID:          in.OwnerID,
		Status:           status,
		PipelineStage:    in.PipelineStage,
		DealValue:        in.DealValue,
		Probability:      in.Probability,
		ContactName:      in.ContactName,
		ContactEmail:     in.ContactEmail,
		ContactPhone:     in.ContactPhone,
		PreferredChannel: in.PreferredChannel,
		LastActivityDate: now,
		NextFollowUpDate: in.NextFollowUpDate,
		Notes:            in.Notes,
		HealthScore:      in.HealthScore,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.Put(ctx, c, EventClientCreated); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Client, error) {
	c, ok := s.store.Get(id)
	if !ok {
		return nil, ErrClientNotFound
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&c.ClientName, patch.ClientName)
	applyString(&c.LegalName, patch.LegalName)
	applyString(&c.Industry, patch.Industry)
	applyString(&c.OwnerID, patch.OwnerID)
	applyString(&c.PipelineStage, patch.PipelineStage)
	applyString(&c.ContactName, patch.ContactName)
	applyString(&c.ContactEmail, patch.ContactEmail)
	applyString(&c.ContactPhone, patch.ContactPhone)
	applyString(&c.PreferredChannel, patch.PreferredChannel)
	applyString(&c.Notes, patch.Notes)
	applyString(&c.HealthScore, patch.HealthScore)
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.DealValue != nil {
		c.DealValue = *patch.DealValue
	}
	if patch.Probability != nil {
		c.Probability = *patch.Probability
	}
	if patch.NextFollowUpDate != nil {
		c.NextFollowUpDate = patch.NextFollowUpDate
	}
	c.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, c, EventClientUpdated); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, ok := s.store.Get(id); !ok {
		return ErrClientNotFound
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) Get(id string) (Client, bool) {
	return s.store.Get(id)
}

func (s *Service) List() []Client {
	return s.store.All()
}

// ProjectStatus applies a ledger-driven status change. A missing client is a
// no-op: activities hold only a weak reference to their client.
func (s *Service) ProjectStatus(ctx context.Context, clientID string, status Status) (bool, error) {
	c, ok := s.store.Get(clientID)
	if !ok {
		return false, nil
	}
	c.Status = status
	c.LastActivityDate = time.Now()
	c.UpdatedAt = c.LastActivityDate
	if err := s.store.Put(ctx, c, EventClientStatusProjected); err != nil {
		return false, err
	}
	return true, nil
}
