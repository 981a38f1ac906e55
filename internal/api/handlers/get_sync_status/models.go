package get_sync_status

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// SyncStatusResponse HTTP response model
type SyncStatusResponse struct {
	Online         bool    `json:"online"`
	LastPushAt     *string `json:"lastPushAt,omitempty"` // ISO 8601 format
	LastPullAt     *string `json:"lastPullAt,omitempty"` // ISO 8601 format
	LastError      *string `json:"lastError,omitempty"`
	PendingChanges int     `json:"pendingChanges"`
	OpenConflicts  int     `json:"openConflicts"`
}

// FromDomainStatus конвертирует domain.SyncStatus в HTTP response
func FromDomainStatus(s domain.SyncStatus) *SyncStatusResponse {
	return &SyncStatusResponse{
		Online:         s.Online,
		LastPushAt:     formatTime(s.LastPushAt),
		LastPullAt:     formatTime(s.LastPullAt),
		LastError:      s.LastError,
		PendingChanges: s.PendingChanges,
		OpenConflicts:  s.OpenConflicts,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
