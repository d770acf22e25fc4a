package projection

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/example/crm-ledger/internal/infrastructure/store"
	"github.com/example/crm-ledger/internal/readmodel"
)

func activityEvent(t *testing.T, eventType string, snap activity.Snapshot) []byte {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	event, err := json.Marshal(store.Event{
		ID:            "e-" + snap.ID,
		AggregateID:   snap.ParentID,
		AggregateType: activity.AggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now(),
		Version:       snap.Version,
	})
	require.NoError(t, err)
	return event
}

func clientEvent(t *testing.T, eventType string, c client.Client) []byte {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	event, err := json.Marshal(store.Event{
		ID:            "e-" + c.ID,
		AggregateID:   c.ID,
		AggregateType: client.AggregateType,
		EventType:     eventType,
		Data:          data,
		Timestamp:     time.Now(),
	})
	require.NoError(t, err)
	return event
}

func TestHandleEvent_ActivityUpsert(t *testing.T) {
	readStore := store.NewReadStore()
	p := NewProjector(readStore)
	ctx := context.Background()
	now := time.Now()

	first := activity.Snapshot{ID: "s1", ParentID: "s1", Version: 1, Type: activity.TypeTask,
		Status: activity.StatusPlanned, Title: "Draft", OwnerID: "t-mia", Datetime: now}
	require.NoError(t, p.HandleEvent(ctx, []byte("s1"), activityEvent(t, activity.EventActivityCreated, first)))

	second := first
	second.ID = "s2"
	second.Version = 2
	second.Status = activity.StatusCompleted
	second.Datetime = now.Add(time.Minute)
	require.NoError(t, p.HandleEvent(ctx, []byte("s1"), activityEvent(t, activity.EventSnapshotAppended, second)))

	data, ok := readStore.Get("activities", "s1")
	require.True(t, ok)
	model := data.(*readmodel.ActivityReadModel)
	assert.Equal(t, "s2", model.SnapshotID)
	assert.Equal(t, 2, model.Version)
	assert.Equal(t, string(activity.StatusCompleted), model.Status)
}

func TestHandleEvent_StaleSnapshotIgnored(t *testing.T) {
	readStore := store.NewReadStore()
	p := NewProjector(readStore)
	ctx := context.Background()
	now := time.Now()

	current := activity.Snapshot{ID: "s2", ParentID: "s1", Version: 2, Type: activity.TypeTask,
		Status: activity.StatusCompleted, Title: "Done", OwnerID: "t-mia", Datetime: now}
	require.NoError(t, p.HandleEvent(ctx, []byte("s1"), activityEvent(t, activity.EventSnapshotAppended, current)))

	// Replay of an older snapshot must not win.
	stale := activity.Snapshot{ID: "s1", ParentID: "s1", Version: 1, Type: activity.TypeTask,
		Status: activity.StatusPlanned, Title: "Draft", OwnerID: "t-mia", Datetime: now.Add(-time.Hour)}
	require.NoError(t, p.HandleEvent(ctx, []byte("s1"), activityEvent(t, activity.EventActivityCreated, stale)))

	data, ok := readStore.Get("activities", "s1")
	require.True(t, ok)
	assert.Equal(t, "s2", data.(*readmodel.ActivityReadModel).SnapshotID)
}

func TestHandleEvent_CutOffAssignedSameVersionWins(t *testing.T) {
	readStore := store.NewReadStore()
	p := NewProjector(readStore)
	ctx := context.Background()
	now := time.Now()

	postponed := activity.Snapshot{ID: "s2", ParentID: "s1", Version: 2, Type: activity.TypeMeeting,
		Status: activity.StatusPostponed, Title: "Demo", OwnerID: "t-mia", PostponesCount: 1, Datetime: now}
	require.NoError(t, p.HandleEvent(ctx, []byte("s1"), activityEvent(t, activity.EventSnapshotAppended, postponed)))

	cutOff := now.AddDate(0, 1, 0)
	assigned := postponed
	assigned.ID = "s3"
	assigned.CutOffDate = &cutOff
	assigned.Datetime = now.Add(time.Minute)
	require.NoError(t, p.HandleEvent(ctx, []byte("s1"), activityEvent(t, activity.EventCutOffAssigned, assigned)))

	data, ok := readStore.Get("activities", "s1")
	require.True(t, ok)
	model := data.(*readmodel.ActivityReadModel)
	assert.Equal(t, "s3", model.SnapshotID)
	assert.Equal(t, 2, model.Version)
	require.NotNil(t, model.CutOffDate)
}

func TestHandleEvent_ClientLifecycle(t *testing.T) {
	readStore := store.NewReadStore()
	p := NewProjector(readStore)
	ctx := context.Background()

	c := client.Client{ID: "c1", ClientName: "Acme", OwnerID: "t-mia", Status: client.StatusPlanned}
	require.NoError(t, p.HandleEvent(ctx, []byte("c1"), clientEvent(t, client.EventClientCreated, c)))

	c.Status = client.StatusInProgress
	require.NoError(t, p.HandleEvent(ctx, []byte("c1"), clientEvent(t, client.EventClientStatusProjected, c)))

	data, ok := readStore.Get("clients", "c1")
	require.True(t, ok)
	assert.Equal(t, string(client.StatusInProgress), data.(*readmodel.ClientReadModel).Status)

	require.NoError(t, p.HandleEvent(ctx, []byte("c1"), clientEvent(t, client.EventClientDeleted, c)))
	_, ok = readStore.Get("clients", "c1")
	assert.False(t, ok)
}

func TestHandleEvent_MalformedPayload(t *testing.T) {
	p := NewProjector(store.NewReadStore())

	err := p.HandleEvent(context.Background(), []byte("k"), []byte("{not json"))
	assert.Error(t, err)
}

func TestHandleEvent_UnknownAggregateIgnored(t *testing.T) {
	readStore := store.NewReadStore()
	p := NewProjector(readStore)

	event, err := json.Marshal(store.Event{
		ID: "e1", AggregateID: "x", AggregateType: "Order", EventType: "OrderPlaced",
		Data: json.RawMessage(`{}`), Timestamp: time.Now(),
	})
	require.NoError(t, err)

	assert.NoError(t, p.HandleEvent(context.Background(), []byte("x"), event))
}
