package activity

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/google/uuid"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidType      = errors.New("invalid activity type")
	ErrInvalidStatus    = errors.New("invalid activity status")
	ErrMissingTitle     = errors.New("activity title is required")
	ErrMissingOwner     = errors.New("activity owner is required")
	ErrPostponesCount   = errors.New("postpones count may not decrease")
)

// LedgerStore is the append-only persistence for activity snapshots.
// Group must return snapshots in insertion order.
type LedgerStore interface {
	Append(ctx context.Context, snap Snapshot, eventType string) error
	Get(id string) (Snapshot, bool)
	Group(parentID string) []Snapshot
	All() []Snapshot
}

// ClientProjection applies ledger-driven status changes to the owning client.
type ClientProjection interface {
	ProjectStatus(ctx context.Context, clientID string, status client.Status) (bool, error)
}

// Service is the activity ledger: it turns logical updates into new immutable
// snapshot rows and projects status changes onto the owning client.
type Service struct {
	ledger  LedgerStore
	clients ClientProjection
}

func NewService(ledger LedgerStore, clients ClientProjection) *Service {
	return &Service{ledger: ledger, clients: clients}
}

// CreateInput carries the fields for the first snapshot of a new logical
// record. ID, ParentID and Version are assigned by the ledger.
type CreateInput struct {
	Type           Type       `json:"type"`
	Status         Status     `json:"status"`
	Title          string     `json:"title"`
	Notes          string     `json:"notes"`
	ClientID       string     `json:"client_id"`
	OwnerID        string     `json:"owner_id"`
	Assignment     string     `json:"assignment"`
	CutOffDate     *time.Time `json:"cut_off_date"`
	PostponesCount int        `json:"postpones_count"`
	Datetime       time.Time  `json:"datetime"`
}

// Patch is a partial override of snapshot fields. A non-nil CutOffDate means
// "assign this cut-off date"; there is no clearing path other than the
// transition into Postponed, which always clears it.
type Patch struct {
	Type           *Type      `json:"type,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	Title          *string    `json:"title,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	ClientID       *string    `json:"client_id,omitempty"`
	OwnerID        *string    `json:"owner_id,omitempty"`
	Assignment     *string    `json:"assignment,omitempty"`
	CutOffDate     *time.Time `json:"cut_off_date,omitempty"`
	PostponesCount *int       `json:"postpones_count,omitempty"`
	PostponedBy    *string    `json:"postponed_by,omitempty"`
}

func (p Patch) validate(base Snapshot) error {
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.Title != nil && *p.Title == "" {
		return ErrMissingTitle
	}
	if p.PostponesCount != nil && *p.PostponesCount < base.PostponesCount {
		return ErrPostponesCount
	}
	return nil
}

// Create appends the unique first snapshot of a new logical record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Snapshot, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidType
	}
	if in.Title == "" {
		return nil, ErrMissingTitle
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
	if in.PostponesCount < 0 {
		return nil, ErrPostponesCount
	}
	datetime := in.Datetime
	if datetime.IsZero() {
		datetime = time.Now()
	}

	id := uuid.New().String()
	snap := Snapshot{
		ID:             id,
		ParentID:       id,
		Version:        1,
		Type:           in.Type,
		Status:         status,
		Title:          in.Title,
		Notes:          in.Notes,
		ClientID:       in.ClientID,
		OwnerID:        in.OwnerID,
		Assignment:     in.Assignment,
		CutOffDate:     in.CutOffDate,
		PostponesCount: in.PostponesCount,
		Datetime:       datetime,
	}

	if err := s.ledger.Append(ctx, snap, EventActivityCreated); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Update applies a logical update to the record that owns the snapshot with
// the given id and appends the resulting snapshot. The addressed snapshot is
// the base for the patch; the next version is always computed over the whole
// parent group.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Snapshot, error) {
	base, ok := s.ledger.Get(id)
	if !ok {
		return nil, ErrActivityNotFound
	}
	if err := patch.validate(base); err != nil {
		return nil, err
	}

	parentID := base.ParentID
	if parentID == "" {
		parentID = base.ID
	}

	group := s.ledger.Group(parentID)
	nextVersion := 1
	for _, snap := range group {
		if snap.Version >= nextVersion {
			nextVersion = snap.Version + 1
		}
	}

	transitionToPostponed := patch.Status != nil &&
		*patch.Status == StatusPostponed && base.Status != StatusPostponed
	postpones := base.PostponesCount
	if transitionToPostponed {
		postpones++
	}
	if patch.PostponesCount != nil {
		postpones = *patch.PostponesCount
	}

	snap := base
	snap.ID = uuid.New().String()
	snap.ParentID = parentID
	snap.Datetime = time.Now()
	applyPatch(&snap, patch)

	var eventType string
	if patch.CutOffDate != nil && base.Status == StatusPostponed {
		// Assigning a cut-off date while Postponed keeps the version of the
		// snapshot it supersedes and the postpones count untouched.
		snap.Version = base.Version
		snap.PostponesCount = base.PostponesCount
		eventType = EventCutOffAssigned
	} else {
		snap.Version = nextVersion
		snap.PostponesCount = postpones
		if patch.Status != nil && *patch.Status == StatusPostponed {
			snap.CutOffDate = nil
		}
		eventType = EventSnapshotAppended
	}

	if err := s.ledger.Append(ctx, snap, eventType); err != nil {
		return nil, err
	}

	s.projectClient(ctx, snap, patch)
	return &snap, nil
}

func applyPatch(snap *Snapshot, patch Patch) {
	if patch.Type != nil {
		snap.Type = *patch.Type
	}
	if patch.Status != nil {
		snap.Status = *patch.Status
	}
	if patch.Title != nil {
		snap.Title = *patch.Title
	}
	if patch.Notes != nil {
		snap.Notes = *patch.Notes
	}
	if patch.ClientID != nil {
		snap.ClientID = *patch.ClientID
	}
	if patch.OwnerID != nil {
		snap.OwnerID = *patch.OwnerID
	}
	if patch.Assignment != nil {
		snap.Assignment = *patch.Assignment
	}
	if patch.CutOffDate != nil {
		snap.CutOffDate = patch.CutOffDate
	}
	if patch.PostponedBy != nil {
		snap.PostponedBy = *patch.PostponedBy
	}
}

// projectClient keeps the owning client's status consistent with the newly
// committed snapshot. The two effects are independent and may both apply.
// Projection failures never roll back the snapshot.
func (s *Service) projectClient(ctx context.Context, snap Snapshot, patch Patch) {
	if snap.ClientID == "" || s.clients == nil {
		return
	}

	if patch.CutOffDate != nil {
		if _, err := s.clients.ProjectStatus(ctx, snap.ClientID, client.StatusInProgress); err != nil {
			log.Printf("[Ledger] Failed to project cut-off for client %s: %v", snap.ClientID, err)
		}
	}
	if patch.Status != nil {
		if mapped, ok := ProjectedClientStatus(*patch.Status); ok {
			if _, err := s.clients.ProjectStatus(ctx, snap.ClientID, mapped); err != nil {
				log.Printf("[Ledger] Failed to project status for client %s: %v", snap.ClientID, err)
			}
		}
	}
}

// ProjectedClientStatus maps an activity status to the client status it
// implies. Planned and Postponed deliberately map to no change.
func ProjectedClientStatus(s Status) (client.Status, bool) {
	switch s {
	case StatusCompleted:
		return client.StatusCompleted, true
	case StatusCanceled:
		return client.StatusCanceled, true
	case StatusInProgress:
		return client.StatusInProgress, true
	case StatusPlanned, StatusPostponed:
		return "", false
	default:
		return "", false
	}
}

// Get returns a single snapshot row by id.
func (s *Service) Get(id string) (Snapshot, bool) {
	return s.ledger.Get(id)
}

// Current returns the current snapshot of a logical record.
func (s *Service) Current(parentID string) (Snapshot, bool) {
	return CurrentOf(s.ledger.Group(parentID))
}

// History returns the full snapshot chain of a logical record, ordered
// ascending by (version, datetime).
func (s *Service) History(parentID string) []Snapshot {
	snaps := s.ledger.Group(parentID)
	SortChronological(snaps)
	return snaps
}

// HistoryForClient returns every snapshot across all logical records that
// references the client, ordered ascending by (version, datetime).
func (s *Service) HistoryForClient(clientID string) []Snapshot {
	var snaps []Snapshot
	for _, snap := range s.ledger.All() {
		if snap.ClientID == clientID {
			snaps = append(snaps, snap)
		}
	}
	SortChronological(snaps)
	return snaps
}
