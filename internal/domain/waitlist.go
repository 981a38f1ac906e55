package domain

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// WaitlistStatus represents the status of a waitlist entry
type WaitlistStatus string

const (
	WaitlistWaiting  WaitlistStatus = "waiting"
	WaitlistNotified WaitlistStatus = "notified"
	WaitlistBooked   WaitlistStatus = "booked"
	WaitlistExpired  WaitlistStatus = "expired"
)

// IsValid reports whether s is a known waitlist status
func (s WaitlistStatus) IsValid() bool {
	switch s {
	case WaitlistWaiting, WaitlistNotified, WaitlistBooked, WaitlistExpired:
		return true
	}
	return false
}

// WaitlistEntry is a pending request for a sold-out slot
type WaitlistEntry struct {
	ID                  string
	Customer            CustomerRef
	Date                time.Time
	PreferredResourceID *int64            // nil = any bay
	PreferredStartTime  *types.TimeString // nil = any time
	DurationUnits       int
	Status              WaitlistStatus

	NotifiedAt         *time.Time
	NotifiedResourceID *int64
	NotifiedStartTime  *types.TimeString
	BookingID          *string

	CreatedAt time.Time
	UpdatedAt time.Time

	RemoteKey   *string
	PendingSync bool
}

// Matches reports whether the entry accepts the freed slot by its preferences
func (e *WaitlistEntry) Matches(resourceID int64, date time.Time, start types.TimeString) bool {
	if e.Status != WaitlistWaiting || !SameDay(e.Date, date) {
		return false
	}
	if e.PreferredResourceID != nil && *e.PreferredResourceID != resourceID {
		return false
	}
	if e.PreferredStartTime != nil && e.PreferredStartTime.Minutes() != start.Minutes() {
		return false
	}
	return true
}

// Clone returns a deep copy
func (e *WaitlistEntry) Clone() *WaitlistEntry {
	c := *e
	c.Customer.ExternalID = cloneString(e.Customer.ExternalID)
	c.PreferredResourceID = cloneInt64(e.PreferredResourceID)
	c.PreferredStartTime = cloneTime(e.PreferredStartTime)
	c.NotifiedResourceID = cloneInt64(e.NotifiedResourceID)
	c.NotifiedStartTime = cloneTime(e.NotifiedStartTime)
	c.BookingID = cloneString(e.BookingID)
	c.RemoteKey = cloneString(e.RemoteKey)
	if e.NotifiedAt != nil {
		t := *e.NotifiedAt
		c.NotifiedAt = &t
	}
	return &c
}

func (e *WaitlistEntry) GetID() string {
	return e.ID
}

func (e *WaitlistEntry) GetRemoteKey() *string {
	return e.RemoteKey
}

func (e *WaitlistEntry) IsPendingSync() bool {
	return e.PendingSync
}

func (e *WaitlistEntry) LastModified() time.Time {
	if e.UpdatedAt.IsZero() {
		return e.CreatedAt
	}
	return e.UpdatedAt
}

func (e *WaitlistEntry) WithRemoteKey(key string) *WaitlistEntry {
	c := e.Clone()
	c.RemoteKey = &key
	return c
}

// WaitlistFilter фильтр для списка очереди ожидания
type WaitlistFilter struct {
	Date   *time.Time
	Status *WaitlistStatus
}

// Slot candidate (resource, date, start, duration) tuple
type Slot struct {
	ResourceID    int64
	Date          time.Time
	StartTime     types.TimeString
	DurationUnits int
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *types.TimeString) *types.TimeString {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
