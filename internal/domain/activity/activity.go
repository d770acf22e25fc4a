package activity

import (
	"sort"
	"time"
)

const AggregateType = "Activity"

// Type discriminates the kinds of sales activity.
type Type string

const (
	TypeMeeting  Type = "Meeting"
	TypeTask     Type = "Task"
	TypeDeal     Type = "Deal"
	TypeFollowUp Type = "Follow-up"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMeeting, TypeTask, TypeDeal, TypeFollowUp:
		return true
	}
	return false
}

type Status string

const (
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCanceled   Status = "Canceled"
	StatusPostponed  Status = "Postponed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCanceled, StatusPostponed:
		return true
	}
	return false
}

// Snapshot is one immutable row in a logical activity's edit history.
// All snapshots of the same logical record share ParentID; the first snapshot
// has ParentID == ID and Version 1. Snapshots are never mutated or deleted.
type Snapshot struct {
	ID             string     `json:"id"`
	ParentID       string     `json:"parent_id"`
	Version        int        `json:"version"`
	Type           Type       `json:"type"`
	Status         Status     `json:"status"`
	Title          string     `json:"title"`
	Notes          string     `json:"notes,omitempty"`
	ClientID       string     `json:"client_id,omitempty"`
	OwnerID        string     `json:"owner_id"`
	Assignment     string     `json:"assignment,omitempty"`
	CutOffDate     *time.Time `json:"cut_off_date,omitempty"`
	PostponesCount int        `json:"postpones_count"`
	Datetime       time.Time  `json:"datetime"`
	PostponedBy    string     `json:"postponed_by,omitempty"`
}

// SortChronological orders snapshots ascending by (version, datetime),
// the order history views render.
func SortChronological(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Version != snaps[j].Version {
			return snaps[i].Version < snaps[j].Version
		}
		return snaps[i].Datetime.Before(snaps[j].Datetime)
	})
}

// CurrentOf returns the current snapshot of a group: highest version, ties
// broken by latest datetime, then by insertion order. The input must be in
// insertion order.
func CurrentOf(group []Snapshot) (Snapshot, bool) {
	if len(group) == 0 {
		return Snapshot{}, false
	}
	best := group[0]
	for _, s := range group[1:] {
		if s.Version > best.Version ||
			(s.Version == best.Version && !s.Datetime.Before(best.Datetime)) {
			best = s
		}
	}
	return best, true
}
