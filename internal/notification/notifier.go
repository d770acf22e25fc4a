package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/crm-ledger/internal/domain/activity"
	"github.com/example/crm-ledger/internal/domain/client"
	"github.com/example/crm-ledger/internal/domain/team"
)

// ErrDeliveryFailed marks a notification that could not be delivered. The
// triggering write is already committed; callers must report "saved, not
// notified" rather than treat the save as failed.
var ErrDeliveryFailed = errors.New("notification delivery failed")

type DeliveryStatus string

const (
	Delivered DeliveryStatus = "delivered"
	Simulated DeliveryStatus = "simulated"
	Failed    DeliveryStatus = "failed"
)

// Outcome is the result of one notification attempt.
type Outcome struct {
	Status DeliveryStatus `json:"status"`
	Reason string         `json:"reason,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Sender delivers a single message to a recipient.
type Sender interface {
	Send(ctx context.Context, to, message string) (map[string]any, error)
}

// ClientLookup resolves client names for message formatting.
type ClientLookup interface {
	Get(id string) (client.Client, bool)
}

// Record is one entry in the notification log.
type Record struct {
	To        string    `json:"to"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Outcome   Outcome   `json:"outcome"`
}

// Notifier formats and delivers status-change and assignment messages.
// With no sender configured every attempt is recorded as simulated.
type Notifier struct {
	sender    Sender
	team      *team.Directory
	clients   ClientLookup
	recipient string

	mu      sync.Mutex
	records []Record
}

// NewNotifier builds a Notifier. recipient is the delivery target for all
// messages (the prototype routes everything to one manager number).
func NewNotifier(sender Sender, directory *team.Directory, clients ClientLookup, recipient string) *Notifier {
	return &Notifier{sender: sender, team: directory, clients: clients, recipient: recipient}
}

// NotifyStatusChange sends the status-change message, plus the follow-up
// requesting a new cut-off date when the new status is Postponed.
func (n *Notifier) NotifyStatusChange(ctx context.Context, snap activity.Snapshot, changerID, note string) (Outcome, error) {
	message := formatStatusChange(n.memberName(changerID), n.clientName(snap.ClientID), snap.Status, note)

	outcome, err := n.send(ctx, n.recipient, message)
	if err != nil {
		return outcome, err
	}
	if snap.Status == activity.StatusPostponed {
		return n.send(ctx, n.recipient, message+postponedFollowUp)
	}
	return outcome, nil
}

// NotifyAssignment sends the assignment message.
func (n *Notifier) NotifyAssignment(ctx context.Context, snap activity.Snapshot, assigneeID, managerID, note string) (Outcome, error) {
	message := formatAssignment(n.memberName(managerID), n.memberName(assigneeID), n.clientName(snap.ClientID), snap.Title, note)
	return n.send(ctx, n.recipient, message)
}

// Log returns a copy of the notification log, newest first.
func (n *Notifier) Log() []Record {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Record, len(n.records))
	for i, r := range n.records {
		out[len(n.records)-1-i] = r
	}
	return out
}

func (n *Notifier) send(ctx context.Context, to, message string) (Outcome, error) {
	if n.sender == nil {
		outcome := Outcome{Status: Simulated}
		n.record(to, message, outcome)
		return outcome, nil
	}

	meta, err := n.sender.Send(ctx, to, message)
	if err != nil {
		outcome := Outcome{Status: Failed, Reason: err.Error()}
		n.record(to, message, outcome)
		return outcome, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	outcome := Outcome{Status: Delivered, Meta: meta}
	n.record(to, message, outcome)
	return outcome, nil
}

func (n *Notifier) record(to, message string, outcome Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, Record{
		To:        to,
		Message:   message,
		Timestamp: time.Now(),
		Outcome:   outcome,
	})
}

func (n *Notifier) memberName(id string) string {
	if n.team != nil {
		if m, ok := n.team.ByID(id); ok {
			return m.Name
		}
	}
	return "Unknown"
}

func (n *Notifier) clientName(id string) string {
	if id != "" && n.clients != nil {
		if c, ok := n.clients.Get(id); ok {
			return c.ClientName
		}
	}
	return "—"
}
