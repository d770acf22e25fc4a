package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/example/crm-ledger/internal/infrastructure/store"
	"github.com/example/crm-ledger/internal/infrastructure/store/mocks"
)

func newTestHandler() (*Handler, *mocks.MockLedger, *client.Service) {
	ledger := mocks.NewMockLedger()
	clientSvc := client.NewService(store.NewClients(nil))
	activitySvc := activity.NewService(ledger, clientSvc)
	return NewHandler(activitySvc, clientSvc), ledger, clientSvc
}

func TestCreateClient_SeedsOnboardingTask(t *testing.T) {
	h, ledger, _ := newTestHandler()

	c, err := h.CreateClient(context.Background(), CreateClient{
		CreateInput: client.CreateInput{ClientName: "Acme GmbH", OwnerID: "t-mia"},
	})
	require.NoError(t, err)

	require.Len(t, ledger.AppendCalls, 1)
	task := ledger.AppendCalls[0].Snapshot
	assert.Equal(t, activity.TypeTask, task.Type)
	assert.Equal(t, activity.StatusPlanned, task.Status)
	assert.Equal(t, "Onboard Acme GmbH", task.Title)
	assert.Equal(t, c.ID, task.ClientID)
	assert.Equal(t, "t-mia", task.OwnerID)
	assert.Equal(t, "t-mia", task.Assignment)
}

func TestCreateClient_ValidationError(t *testing.T) {
	h, ledger, _ := newTestHandler()

	_, err := h.CreateClient(context.Background(), CreateClient{
		CreateInput: client.CreateInput{OwnerID: "t-mia"},
	})
	assert.ErrorIs(t, err, client.ErrMissingName)
	assert.Empty(t, ledger.AppendCalls)
}

func TestUpdateActivity_ProjectsClientStatus(t *testing.T) {
	h, _, clientSvc := newTestHandler()
	ctx := context.Background()

	c, err := h.CreateClient(ctx, CreateClient{
		CreateInput: client.CreateInput{ClientName: "Acme", OwnerID: "t-mia"},
	})
	require.NoError(t, err)

	a, err := h.CreateActivity(ctx, CreateActivity{
		CreateInput: activity.CreateInput{
			Type: activity.TypeDeal, Title: "Close deal", ClientID: c.ID, OwnerID: "t-mia",
		},
	})
	require.NoError(t, err)

	completed := activity.StatusCompleted
	snap, err := h.UpdateActivity(ctx, UpdateActivity{
		ID:    a.ID,
		Patch: activity.Patch{Status: &completed},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Version)

	got, ok := clientSvc.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, client.StatusCompleted, got.Status)
}

func TestUpdateActivity_NotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	title := "x"
	_, err := h.UpdateActivity(context.Background(), UpdateActivity{
		ID:    "missing",
		Patch: activity.Patch{Title: &title},
	})
	assert.ErrorIs(t, err, activity.ErrActivityNotFound)
}

func TestDeleteClient_KeepsSnapshots(t *testing.T) {
	h, ledger, clientSvc := newTestHandler()
	ctx := context.Background()

	c, err := h.CreateClient(ctx, CreateClient{
		CreateInput: client.CreateInput{ClientName: "Acme", OwnerID: "t-mia"},
	})
	require.NoError(t, err)
	require.Len(t, ledger.AppendCalls, 1)

	require.NoError(t, h.DeleteClient(ctx, DeleteClient{ID: c.ID}))
	_, ok := clientSvc.Get(c.ID)
	assert.False(t, ok)

	// The onboarding snapshot still references the deleted client.
	snaps := ledger.All()
	require.Len(t, snaps, 1)
	assert.Equal(t, c.ID, snaps[0].ClientID)
}

func TestUpdateClient(t *testing.T) {
	h, _, _ := newTestHandler()
	ctx := context.Background()

	c, err := h.CreateClient(ctx, CreateClient{
		CreateInput: client.CreateInput{ClientName: "Acme", OwnerID: "t-mia"},
	})
	require.NoError(t, err)

	followUp := time.Now().AddDate(0, 0, 7)
	stage := "Negotiation"
	updated, err := h.UpdateClient(ctx, UpdateClient{
		ID:    c.ID,
		Patch: client.Patch{PipelineStage: &stage, NextFollowUpDate: &followUp},
	})
	require.NoError(t, err)
	assert.Equal(t, "Negotiation", updated.PipelineStage)
	require.NotNil(t, updated.NextFollowUpDate)
}
