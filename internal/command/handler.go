package command

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
)

type Handler struct {
	activitySvc *activity.Service
	clientSvc   *client.Service
}

func NewHandler(activitySvc *activity.Service, clientSvc *client.Service) *Handler {
	return &Handler{
		activitySvc: activitySvc,
		clientSvc:   clientSvc,
	}
}

// CreateActivity appends the first snapshot of a new logical record.
func (h *Handler) CreateActivity(ctx context.Context, cmd CreateActivity) (*activity.Snapshot, error) {
	return h.activitySvc.Create(ctx, cmd.CreateInput)
}

// UpdateActivity appends a new snapshot on top of the addressed one and
// projects any status change onto the owning client.
func (h *Handler) UpdateActivity(ctx context.Context, cmd UpdateActivity) (*activity.Snapshot, error) {
	return h.activitySvc.Update(ctx, cmd.ID, cmd.Patch)
}

// CreateClient creates a client and seeds an onboarding task for the owner.
func (h *Handler) CreateClient(ctx context.Context, cmd CreateClient) (*client.Client, error) {
	c, err := h.clientSvc.Create(ctx, cmd.CreateInput)
	if err != nil {
		return nil, err
	}

	followUp := time.Now().AddDate(0, 0, 3)
	_, err = h.activitySvc.Create(ctx, activity.CreateInput{
		Type:       activity.TypeTask,
		Status:     activity.StatusPlanned,
		Title:      fmt.Sprintf("Onboard %s", c.ClientName),
		Notes:      "Auto-created on client creation",
		ClientID:   c.ID,
		OwnerID:    c.OwnerID,
		Assignment: c.OwnerID,
		Datetime:   followUp,
	})
	if err != nil {
		// The client is committed; a missing onboarding task is recoverable.
		log.Printf("[Command] Failed to create onboarding task for client %s: %v", c.ID, err)
	}

	return c, nil
}

// UpdateClient applies a partial update to a client.
func (h *Handler) UpdateClient(ctx context.Context, cmd UpdateClient) (*client.Client, error) {
	return h.clientSvc.Update(ctx, cmd.ID, cmd.Patch)
}

// DeleteClient removes a client. Activity snapshots referencing it are kept;
// the ledger holds only a weak reference.
func (h *Handler) DeleteClient(ctx context.Context, cmd DeleteClient) error {
	return h.clientSvc.Delete(ctx, cmd.ID)
}
