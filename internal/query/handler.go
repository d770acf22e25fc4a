package query

import (
	"sort"
	"time"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/example/crm-ledger/internal/domain/team"
)

// Handler answers reads against the live ledger and client store. Clients are
// visible by owner: admins see every client, managers see their own plus
// their reports', everyone else only their own. An activity is visible when
// the viewer owns it or it references a visible client.
type Handler struct {
	ledger  activity.LedgerStore
	clients client.Store
	team    *team.Directory
}

func NewHandler(ledger activity.LedgerStore, clients client.Store, directory *team.Directory) *Handler {
	return &Handler{ledger: ledger, clients: clients, team: directory}
}

// ActivityFilter narrows activity listings. Month is "2006-01" and matches the
// snapshot datetime; empty fields match everything.
type ActivityFilter struct {
	OwnerID  string
	ClientID string
	Type     activity.Type
	Status   activity.Status
	Month    string
}

func (f ActivityFilter) matches(snap activity.Snapshot) bool {
	if f.OwnerID != "" && snap.OwnerID != f.OwnerID {
		return false
	}
	if f.ClientID != "" && snap.ClientID != f.ClientID {
		return false
	}
	if f.Type != "" && snap.Type != f.Type {
		return false
	}
	if f.Status != "" && snap.Status != f.Status {
		return false
	}
	if f.Month != "" && snap.Datetime.Format("2006-01") != f.Month {
		return false
	}
	return true
}

// visibleTo reports whether the viewer may see a snapshot: they own it, or it
// references a client whose owner they can see. A snapshot with no client
// reference is visible only to its owner.
func (h *Handler) visibleTo(viewerID string, snap activity.Snapshot) bool {
	if snap.OwnerID == viewerID {
		return true
	}
	if snap.ClientID == "" {
		return false
	}
	c, ok := h.clients.Get(snap.ClientID)
	return ok && h.team.CanSee(viewerID, c.OwnerID)
}

// GetSnapshot returns a single snapshot row by id.
func (h *Handler) GetSnapshot(viewerID, id string) (activity.Snapshot, bool) {
	snap, ok := h.ledger.Get(id)
	if !ok || !h.visibleTo(viewerID, snap) {
		return activity.Snapshot{}, false
	}
	return snap, true
}

// CurrentSnapshot returns the current snapshot of a logical record.
func (h *Handler) CurrentSnapshot(viewerID, parentID string) (activity.Snapshot, bool) {
	snap, ok := activity.CurrentOf(h.ledger.Group(parentID))
	if !ok || !h.visibleTo(viewerID, snap) {
		return activity.Snapshot{}, false
	}
	return snap, true
}

// History returns the full snapshot chain of a logical record, ascending by
// (version, datetime).
func (h *Handler) History(viewerID, parentID string) []activity.Snapshot {
	group := h.ledger.Group(parentID)
	current, ok := activity.CurrentOf(group)
	if !ok || !h.visibleTo(viewerID, current) {
		return nil
	}
	activity.SortChronological(group)
	return group
}

// HistoryForClient returns every visible snapshot referencing the client,
// ascending by (version, datetime).
func (h *Handler) HistoryForClient(viewerID, clientID string) []activity.Snapshot {
	var snaps []activity.Snapshot
	for _, snap := range h.ledger.All() {
		if snap.ClientID == clientID && h.visibleTo(viewerID, snap) {
			snaps = append(snaps, snap)
		}
	}
	activity.SortChronological(snaps)
	return snaps
}

// ListActivities returns the current snapshot of every visible logical record
// that matches the filter, in ledger insertion order.
func (h *Handler) ListActivities(viewerID string, f ActivityFilter) []activity.Snapshot {
	var out []activity.Snapshot
	for _, snap := range h.currentSnapshots() {
		if h.visibleTo(viewerID, snap) && f.matches(snap) {
			out = append(out, snap)
		}
	}
	return out
}

// ClientActivities bundles a client with the current snapshots that reference
// it. Records without a client reference land under an empty client id.
type ClientActivities struct {
	ClientID   string              `json:"client_id"`
	ClientName string              `json:"client_name"`
	Activities []activity.Snapshot `json:"activities"`
}

// ActivitiesByClient groups matching current snapshots by client.
func (h *Handler) ActivitiesByClient(viewerID string, f ActivityFilter) []ClientActivities {
	grouped := make(map[string][]activity.Snapshot)
	var order []string
	for _, snap := range h.ListActivities(viewerID, f) {
		if _, seen := grouped[snap.ClientID]; !seen {
			order = append(order, snap.ClientID)
		}
		grouped[snap.ClientID] = append(grouped[snap.ClientID], snap)
	}

	out := make([]ClientActivities, 0, len(order))
	for _, clientID := range order {
		name := ""
		if c, ok := h.clients.Get(clientID); ok {
			name = c.ClientName
		}
		out = append(out, ClientActivities{
			ClientID:   clientID,
			ClientName: name,
			Activities: grouped[clientID],
		})
	}
	return out
}

// GetClient returns a client if the viewer can see its owner.
func (h *Handler) GetClient(viewerID, id string) (client.Client, bool) {
	c, ok := h.clients.Get(id)
	if !ok || !h.team.CanSee(viewerID, c.OwnerID) {
		return client.Client{}, false
	}
	return c, true
}

// ListClients returns the visible clients sorted by name.
func (h *Handler) ListClients(viewerID string) []client.Client {
	var out []client.Client
	for _, c := range h.clients.All() {
		if h.team.CanSee(viewerID, c.OwnerID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientName < out[j].ClientName })
	return out
}

// KPIs are dashboard counters over the viewer's visible records.
type KPIs struct {
	MeetingsBooked int `json:"meetings_booked"`
	DealsWon       int `json:"deals_won"`
	FollowUpsDue   int `json:"follow_ups_due"`
	NewProspects   int `json:"new_prospects"`
}

// DashboardKPIs computes the dashboard counters. Meetings and deals count
// current snapshots from the last 30 days; prospects count clients created in
// the same window; follow-ups count clients whose next follow-up has passed.
func (h *Handler) DashboardKPIs(viewerID string, now time.Time) KPIs {
	since := now.AddDate(0, 0, -30)
	var kpis KPIs

	for _, snap := range h.currentSnapshots() {
		if !h.visibleTo(viewerID, snap) {
			continue
		}
		recent := snap.Datetime.After(since) && !snap.Datetime.After(now)
		if snap.Type == activity.TypeMeeting && recent {
			kpis.MeetingsBooked++
		}
		if snap.Type == activity.TypeDeal && snap.Status == activity.StatusCompleted && recent {
			kpis.DealsWon++
		}
	}

	for _, c := range h.clients.All() {
		if !h.team.CanSee(viewerID, c.OwnerID) {
			continue
		}
		if c.NextFollowUpDate != nil && !c.NextFollowUpDate.After(now) {
			kpis.FollowUpsDue++
		}
		if c.CreatedAt.After(since) {
			kpis.NewProspects++
		}
	}
	return kpis
}

func (h *Handler) currentSnapshots() []activity.Snapshot {
	grouped := make(map[string][]activity.Snapshot)
	var order []string
	for _, snap := range h.ledger.All() {
		if _, seen := grouped[snap.ParentID]; !seen {
			order = append(order, snap.ParentID)
		}
		grouped[snap.ParentID] = append(grouped[snap.ParentID], snap)
	}

	out := make([]activity.Snapshot, 0, len(order))
	for _, parentID := range order {
		if current, ok := activity.CurrentOf(grouped[parentID]); ok {
			out = append(out, current)
		}
	}
	return out
}
