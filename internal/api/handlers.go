package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/example/crm-ledger/internal/api/middleware"
	"github.com/example/crm-ledger/internal/command"
	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/example/crm-ledger/internal/domain/team"
	"github.com/example/crm-ledger/internal/notification"
	"github.com/example/crm-ledger/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	notifier     *notification.Notifier
	team         *team.Directory
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, notifier *notification.Notifier, directory *team.Directory) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		notifier:     notifier,
		team:         directory,
	}
}

// Client Handlers

func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateClient
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if cmd.OwnerID == "" {
		cmd.OwnerID = middleware.GetUserID(r.Context())
	}

	c, err := h.cmdHandler.CreateClient(r.Context(), cmd)
	if err != nil {
		respondJSONError(w, err.Error(), statusForError(err))
		return
	}

	respondJSON(w, http.StatusCreated, c)
}

func (h *Handlers) GetClients(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, h.queryHandler.ListClients(viewerID))
}

func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	id := extractPathParam(r.URL.Path, "/clients/")

	c, ok := h.queryHandler.GetClient(viewerID, id)
	if !ok {
		respondJSONError(w, "Client not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/clients/")

	var patch client.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.cmdHandler.UpdateClient(r.Context(), command.UpdateClient{ID: id, Patch: patch})
	if err != nil {
		respondJSONError(w, err.Error(), statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/clients/")

	if err := h.cmdHandler.DeleteClient(r.Context(), command.DeleteClient{ID: id}); err != nil {
		respondJSONError(w, err.Error(), statusForError(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Client deleted"})
}

func (h *Handlers) GetClientHistory(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	id := extractPathParam(r.URL.Path, "/clients/")
	id = strings.TrimSuffix(id, "/history")

	history := h.queryHandler.HistoryForClient(viewerID, id)
	respondJSON(w, http.StatusOK, history)
}

// Activity Handlers

// UpdateActivityResponse couples the committed snapshot with the outcome of
// the post-commit notification. A failed notification never fails the save.
type UpdateActivityResponse struct {
	Activity     *activity.Snapshot    `json:"activity"`
	Notification *notification.Outcome `json:"notification,omitempty"`
}

func (h *Handlers) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateActivity
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if cmd.OwnerID == "" {
		cmd.OwnerID = middleware.GetUserID(r.Context())
	}

	snap, err := h.cmdHandler.CreateActivity(r.Context(), cmd)
	if err != nil {
		respondJSONError(w, err.Error(), statusForError(err))
		return
	}

	resp := UpdateActivityResponse{Activity: snap}
	if snap.Assignment != "" {
		outcome, _ := h.notifier.NotifyAssignment(r.Context(), *snap, snap.Assignment,
			middleware.GetUserID(r.Context()), snap.Notes)
		resp.Notification = &outcome
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) GetActivities(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	q := r.URL.Query()
	filter := query.ActivityFilter{
		OwnerID:  q.Get("owner"),
		ClientID: q.Get("client"),
		Type:     activity.Type(q.Get("type")),
		Status:   activity.Status(q.Get("status")),
		Month:    q.Get("month"),
	}

	if q.Get("group_by") == "client" {
		respondJSON(w, http.StatusOK, h.queryHandler.ActivitiesByClient(viewerID, filter))
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.ListActivities(viewerID, filter))
}

// GetActivity returns the current snapshot of a logical record. The id may be
// any snapshot id in the chain.
func (h *Handlers) GetActivity(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	id := extractPathParam(r.URL.Path, "/activities/")

	parentID := id
	if snap, ok := h.queryHandler.GetSnapshot(viewerID, id); ok {
		parentID = snap.ParentID
	}
	snap, ok := h.queryHandler.CurrentSnapshot(viewerID, parentID)
	if !ok {
		respondJSONError(w, "Activity not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handlers) GetActivityHistory(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	id := extractPathParam(r.URL.Path, "/activities/")
	id = strings.TrimSuffix(id, "/history")

	parentID := id
	if snap, ok := h.queryHandler.GetSnapshot(viewerID, id); ok {
		parentID = snap.ParentID
	}
	history := h.queryHandler.History(viewerID, parentID)
	if history == nil {
		respondJSONError(w, "Activity not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *Handlers) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/activities/")

	var patch activity.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	viewerID := middleware.GetUserID(r.Context())
	if patch.Status != nil && *patch.Status == activity.StatusPostponed && patch.PostponedBy == nil {
		patch.PostponedBy = &viewerID
	}

	snap, err := h.cmdHandler.UpdateActivity(r.Context(), command.UpdateActivity{ID: id, Patch: patch})
	if err != nil {
		respondJSONError(w, err.Error(), statusForError(err))
		return
	}

	resp := UpdateActivityResponse{Activity: snap}
	note := ""
	if patch.Notes != nil {
		note = *patch.Notes
	}
	if patch.Status != nil {
		outcome, _ := h.notifier.NotifyStatusChange(r.Context(), *snap, viewerID, note)
		resp.Notification = &outcome
	} else if patch.Assignment != nil {
		outcome, _ := h.notifier.NotifyAssignment(r.Context(), *snap, *patch.Assignment, viewerID, note)
		resp.Notification = &outcome
	}
	respondJSON(w, http.StatusOK, resp)
}

// Dashboard Handlers

func (h *Handlers) GetDashboardKPIs(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, h.queryHandler.DashboardKPIs(viewerID, time.Now()))
}

// Notification Handlers

func (h *Handlers) GetNotifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.notifier.Log())
}

// Team Handlers

func (h *Handlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	members := h.team.All()
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse(m))
	}
	respondJSON(w, http.StatusOK, out)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, activity.ErrActivityNotFound), errors.Is(err, client.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, activity.ErrInvalidType),
		errors.Is(err, activity.ErrInvalidStatus),
		errors.Is(err, activity.ErrMissingTitle),
		errors.Is(err, activity.ErrMissingOwner),
		errors.Is(err, activity.ErrPostponesCount),
		errors.Is(err, client.ErrMissingName),
		errors.Is(err, client.ErrMissingOwner),
		errors.Is(err, client.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
