package mocks

import (
	"context"
	"sync"

	"github.com/example/crm-ledger/internal/domain/activity"
)

// MockLedger is an in-memory activity.LedgerStore for tests that records
// every Append call and can be forced to fail.
type MockLedger struct {
	mu     sync.RWMutex
	byID   map[string]activity.Snapshot
	groups map[string][]activity.Snapshot
	order  []string

	AppendCalls []AppendCall
	AppendErr   error
}

// AppendCall records the parameters passed to Append.
type AppendCall struct {
	Snapshot  activity.Snapshot
	EventType string
}

func NewMockLedger() *MockLedger {
	return &MockLedger{
		byID:        make(map[string]activity.Snapshot),
		groups:      make(map[string][]activity.Snapshot),
		AppendCalls: make([]AppendCall, 0),
	}
}

func (m *MockLedger) Append(ctx context.Context, snap activity.Snapshot, eventType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AppendCalls = append(m.AppendCalls, AppendCall{Snapshot: snap, EventType: eventType})
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.store(snap)
	return nil
}

func (m *MockLedger) Get(id string) (activity.Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.byID[id]
	return snap, ok
}

func (m *MockLedger) Group(parentID string) []activity.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	group := m.groups[parentID]
	out := make([]activity.Snapshot, len(group))
	copy(out, group)
	return out
}

func (m *MockLedger) All() []activity.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []activity.Snapshot
	for _, parentID := range m.order {
		out = append(out, m.groups[parentID]...)
	}
	return out
}

// AddSnapshot seeds a snapshot without recording an Append call.
func (m *MockLedger) AddSnapshot(snap activity.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(snap)
}

// Reset clears stored snapshots and recorded calls.
func (m *MockLedger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[string]activity.Snapshot)
	m.groups = make(map[string][]activity.Snapshot)
	m.order = nil
	m.AppendCalls = make([]AppendCall, 0)
	m.AppendErr = nil
}

func (m *MockLedger) store(snap activity.Snapshot) {
	if _, seen := m.groups[snap.ParentID]; !seen {
		m.order = append(m.order, snap.ParentID)
	}
	m.byID[snap.ID] = snap
	m.groups[snap.ParentID] = append(m.groups[snap.ParentID], snap)
}
