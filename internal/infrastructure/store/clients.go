package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/example/crm-ledger/internal/infrastructure/kafka"
	"github.com/google/uuid"
)

// Clients is the in-memory client store. Clients are mutated in place;
// every write publishes the corresponding event to the feed.
type Clients struct {
	mu       sync.RWMutex
	byID     map[string]client.Client
	order    []string
	producer *kafka.Producer
}

func NewClients(producer *kafka.Producer) *Clients {
	return &Clients{
		byID:     make(map[string]client.Client),
		producer: producer,
	}
}

func (s *Clients) Put(ctx context.Context, c client.Client, eventType string) error {
	s.mu.Lock()
	if _, seen := s.byID[c.ID]; !seen {
		s.order = append(s.order, c.ID)
	}
	s.byID[c.ID] = c
	s.mu.Unlock()

	return s.publish(ctx, c, eventType)
}

func (s *Clients) Get(id string) (client.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok
}

func (s *Clients) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	c, ok := s.byID[id]
	delete(s.byID, id)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return s.publish(ctx, c, client.EventClientDeleted)
}

func (s *Clients) All() []client.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []client.Client
	for _, id := range s.order {
		if c, ok := s.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (s *Clients) publish(ctx context.Context, c client.Client, eventType string) error {
	if s.producer == nil {
		return nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.producer.Publish(ctx, c.ID, Event{
		ID:            uuid.New().String(),
		AggregateID:   c.ID,
		AggregateType: client.AggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now(),
	})
}
