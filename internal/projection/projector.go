package projection

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/example/crm-ledger/internal/infrastructure/store"
	"github.com/example/crm-ledger/internal/readmodel"
)

// Projector consumes the event feed and maintains reporting read models.
// It is idempotent and tolerant of replays: an activity read model is only
// replaced when the incoming snapshot would be the current one.
type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	log.Printf("[Projector] Received event: %s (aggregate: %s)", event.EventType, event.AggregateType)

	switch event.AggregateType {
	case activity.AggregateType:
		return p.handleActivityEvent(event)
	case client.AggregateType:
		return p.handleClientEvent(event)
	}
	return nil
}

func (p *Projector) handleActivityEvent(event store.Event) error {
	var snap activity.Snapshot
	if err := json.Unmarshal(event.Data, &snap); err != nil {
		return err
	}

	switch event.EventType {
	case activity.EventActivityCreated, activity.EventSnapshotAppended, activity.EventCutOffAssigned:
		model := activityModelFrom(snap, event.Timestamp)
		current, ok := p.readStore.Get("activities", snap.ParentID)
		if !ok {
			p.readStore.Set("activities", snap.ParentID, model)
			return nil
		}
		// Same currentness rule as the ledger: higher version wins, equal
		// versions resolved by later datetime (cut-off reassignments).
		cur := current.(*readmodel.ActivityReadModel)
		if snap.Version > cur.Version ||
			(snap.Version == cur.Version && !snap.Datetime.Before(cur.Datetime)) {
			p.readStore.Set("activities", snap.ParentID, model)
		}
	}
	return nil
}

func activityModelFrom(snap activity.Snapshot, at time.Time) *readmodel.ActivityReadModel {
	return &readmodel.ActivityReadModel{
		ParentID:       snap.ParentID,
		SnapshotID:     snap.ID,
		Version:        snap.Version,
		Type:           string(snap.Type),
		Status:         string(snap.Status),
		Title:          snap.Title,
		ClientID:       snap.ClientID,
		OwnerID:        snap.OwnerID,
		Assignment:     snap.Assignment,
		CutOffDate:     snap.CutOffDate,
		PostponesCount: snap.PostponesCount,
		Datetime:       snap.Datetime,
		UpdatedAt:      at,
	}
}

func (p *Projector) handleClientEvent(event store.Event) error {
	var c client.Client
	if err := json.Unmarshal(event.Data, &c); err != nil {
		return err
	}

	switch event.EventType {
	case client.EventClientCreated, client.EventClientUpdated, client.EventClientStatusProjected:
		p.readStore.Set("clients", c.ID, &readmodel.ClientReadModel{
			ID:               c.ID,
			ClientName:       c.ClientName,
			OwnerID:          c.OwnerID,
			Status:           string(c.Status),
			PipelineStage:    c.PipelineStage,
			DealValue:        c.DealValue,
			Probability:      c.Probability,
			LastActivityDate: c.LastActivityDate,
			UpdatedAt:        event.Timestamp,
		})
	case client.EventClientDeleted:
		p.readStore.Delete("clients", c.ID)
	}
	return nil
}
