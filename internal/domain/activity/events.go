package activity

// Event types published on each ledger append. The event payload is the new
// snapshot itself; consumers rebuild read models from the feed.
const (
	EventActivityCreated  = "ActivityCreated"
	EventSnapshotAppended = "ActivitySnapshotAppended"
	EventCutOffAssigned   = "ActivityCutOffAssigned"
)
