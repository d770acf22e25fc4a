package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/infrastructure/kafka"
	"github.com/google/uuid"
)

// Ledger is the in-memory append-only snapshot store, the prototype default.
// Snapshots are grouped by parent id in insertion order and never mutated.
// Each append publishes an Event envelope to the feed when a producer is set.
type Ledger struct {
	mu       sync.RWMutex
	byID     map[string]activity.Snapshot
	groups   map[string][]activity.Snapshot
	order    []string // parent ids in first-seen order, for stable All()
	producer *kafka.Producer
}

func NewLedger(producer *kafka.Producer) *Ledger {
	return &Ledger{
		byID:     make(map[string]activity.Snapshot),
		groups:   make(map[string][]activity.Snapshot),
		producer: producer,
	}
}

func (l *Ledger) Append(ctx context.Context, snap activity.Snapshot, eventType string) error {
	l.mu.Lock()
	if _, seen := l.groups[snap.ParentID]; !seen {
		l.order = append(l.order, snap.ParentID)
	}
	l.byID[snap.ID] = snap
	l.groups[snap.ParentID] = append(l.groups[snap.ParentID], snap)
	l.mu.Unlock()

	return publishSnapshot(ctx, l.producer, snap, eventType)
}

func (l *Ledger) Get(id string) (activity.Snapshot, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap, ok := l.byID[id]
	return snap, ok
}

func (l *Ledger) Group(parentID string) []activity.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	group := l.groups[parentID]
	out := make([]activity.Snapshot, len(group))
	copy(out, group)
	return out
}

func (l *Ledger) All() []activity.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []activity.Snapshot
	for _, parentID := range l.order {
		out = append(out, l.groups[parentID]...)
	}
	return out
}

func publishSnapshot(ctx context.Context, producer *kafka.Producer, snap activity.Snapshot, eventType string) error {
	if producer == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return producer.Publish(ctx, snap.ParentID, Event{
		ID:            uuid.New().String(),
		AggregateID:   snap.ParentID,
		AggregateType: activity.AggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now(),
		Version:       snap.Version,
	})
}
