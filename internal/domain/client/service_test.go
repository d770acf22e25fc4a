package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store recording event types per write.
type fakeStore struct {
	clients map[string]Client
	order   []string
	events  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{clients: make(map[string]Client)}
}

func (f *fakeStore) Put(ctx context.Context, c Client, eventType string) error {
	if _, seen := f.clients[c.ID]; !seen {
		f.order = append(f.order, c.ID)
	}
	f.clients[c.ID] = c
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeStore) Get(id string) (Client, bool) {
	c, ok := f.clients[id]
	return c, ok
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	delete(f.clients, id)
	return nil
}

func (f *fakeStore) All() []Client {
	var out []Client
	for _, id := range f.order {
		if c, ok := f.clients[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

func TestCreate_Defaults(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	c, err := svc.Create(context.Background(), CreateInput{
		ClientName: "Acme GmbH",
		OwnerID:    "t-mia",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, StatusPlanned, c.Status)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, []string{EventClientCreated}, store.events)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{OwnerID: "t-mia"})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = svc.Create(ctx, CreateInput{ClientName: "Acme"})
	assert.ErrorIs(t, err, ErrMissingOwner)

	_, err = svc.Create(ctx, CreateInput{ClientName: "Acme", OwnerID: "t-mia", Status: "Nope"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdate_PartialPatch(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{
		ClientName:    "Acme GmbH",
		OwnerID:       "t-mia",
		PipelineStage: "Prospecting",
		DealValue:     10000,
	})
	require.NoError(t, err)

	stage := "Negotiation"
	updated, err := svc.Update(ctx, c.ID, Patch{PipelineStage: &stage})
	require.NoError(t, err)

	assert.Equal(t, "Negotiation", updated.PipelineStage)
	// Untouched fields survive the patch.
	assert.Equal(t, "Acme GmbH", updated.ClientName)
	assert.Equal(t, 10000, updated.DealValue)
	assert.True(t, updated.UpdatedAt.After(c.CreatedAt) || updated.UpdatedAt.Equal(c.CreatedAt))
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewService(newFakeStore())

	name := "x"
	_, err := svc.Update(context.Background(), "missing", Patch{ClientName: &name})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{ClientName: "Acme", OwnerID: "t-mia"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, ok := svc.Get(c.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Delete(ctx, c.ID), ErrClientNotFound)
}

func TestProjectStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{ClientName: "Acme", OwnerID: "t-mia"})
	require.NoError(t, err)

	applied, err := svc.ProjectStatus(ctx, c.ID, StatusInProgress)
	require.NoError(t, err)
	assert.True(t, applied)

	got, ok := svc.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, StatusInProgress, got.Status)
	assert.True(t, got.LastActivityDate.After(c.LastActivityDate) || got.LastActivityDate.Equal(c.LastActivityDate))
	assert.Contains(t, store.events, EventClientStatusProjected)
}

func TestProjectStatus_MissingClientIsNoOp(t *testing.T) {
	svc := NewService(newFakeStore())

	applied, err := svc.ProjectStatus(context.Background(), "missing", StatusCompleted)
	require.NoError(t, err)
	assert.False(t, applied)
}
