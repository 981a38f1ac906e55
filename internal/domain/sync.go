package domain

import "time"

// SyncStatus snapshot of the reconciler state
type SyncStatus struct {
	Online         bool
	LastPushAt     *time.Time
	LastPullAt     *time.Time
	LastError      *string
	PendingChanges int
	OpenConflicts  int
}

// SyncReport result of one push+pull cycle
type SyncReport struct {
	Pushed        int
	PushFailed    int
	Pulled        int
	Conflicts     int
	SlotsReleased int
	Err           error
}
