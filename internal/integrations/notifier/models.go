package notifier

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// WaitlistNotifiedEvent событие "освободился слот" для клиента из очереди ожидания
type WaitlistNotifiedEvent struct {
	EntryID       string    `json:"entry_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerID    *string   `json:"customer_id,omitempty"`
	Date          string    `json:"date"`
	ResourceID    int64     `json:"resource_id"`
	StartTime     string    `json:"start_time"`
	DurationUnits int       `json:"duration_units"`
	NotifiedAt    time.Time `json:"notified_at"`
}

// NewWaitlistNotifiedEvent собирает событие по записи в статусе notified
func NewWaitlistNotifiedEvent(e *domain.WaitlistEntry) WaitlistNotifiedEvent {
	ev := WaitlistNotifiedEvent{
		EntryID:       e.ID,
		CustomerName:  e.Customer.Name,
		CustomerID:    e.Customer.ExternalID,
		Date:          e.Date.Format(domain.DateFormat),
		DurationUnits: e.DurationUnits,
	}
	if e.NotifiedResourceID != nil {
		ev.ResourceID = *e.NotifiedResourceID
	}
	if e.NotifiedStartTime != nil {
		ev.StartTime = e.NotifiedStartTime.String()
	}
	if e.NotifiedAt != nil {
		ev.NotifiedAt = *e.NotifiedAt
	}
	return ev
}
