package domain

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCheckedIn BookingStatus = "checked_in"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
	StatusCancelled BookingStatus = "cancelled"
)

// IsValid reports whether s is a known booking status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusNoShow || s == StatusCancelled
}

// CustomerRef identifies who the booking is for
type CustomerRef struct {
	Name       string
	ExternalID *string
}

// Price is a computed price breakdown in minor currency units
type Price struct {
	Base           int64
	PeakSurcharge  int64
	MemberDiscount int64
	Final          int64
}

// Booking represents a bay reservation
type Booking struct {
	ID            string
	ResourceID    int64
	Date          time.Time // calendar day, UTC midnight
	StartTime     types.TimeString
	DurationUnits int
	Customer      CustomerRef
	Price         Price
	IsPeak        bool
	MemberTier    *string
	Status        BookingStatus

	Prepaid    bool
	PaymentRef *string
	Notes      *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	RemoteKey   *string // assigned by the remote store once accepted
	PendingSync bool
}

// IsActive returns true if the booking still holds its slot
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// IsTerminal returns true if no further transitions are allowed
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// Interval returns the booking's half-open [start, end) interval in minutes from midnight
func (b *Booking) Interval(unitMinutes int) (start, end int) {
	start = b.StartTime.Minutes()
	return start, start + b.DurationUnits*unitMinutes
}

// Overlaps reports whether two bookings hold intersecting intervals of the same bay on the same day
func (b *Booking) Overlaps(other *Booking, unitMinutes int) bool {
	if b.ResourceID != other.ResourceID || !SameDay(b.Date, other.Date) {
		return false
	}
	aStart, aEnd := b.Interval(unitMinutes)
	bStart, bEnd := other.Interval(unitMinutes)
	return aStart < bEnd && aEnd > bStart
}

// Clone returns a deep copy
func (b *Booking) Clone() *Booking {
	c := *b
	c.Customer.ExternalID = cloneString(b.Customer.ExternalID)
	c.MemberTier = cloneString(b.MemberTier)
	c.PaymentRef = cloneString(b.PaymentRef)
	c.Notes = cloneString(b.Notes)
	c.CancellationReason = cloneString(b.CancellationReason)
	c.RemoteKey = cloneString(b.RemoteKey)
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

// GetID, GetRemoteKey, IsPendingSync, LastModified and WithRemoteKey make Booking mergeable

func (b *Booking) GetID() string {
	return b.ID
}

func (b *Booking) GetRemoteKey() *string {
	return b.RemoteKey
}

func (b *Booking) IsPendingSync() bool {
	return b.PendingSync
}

func (b *Booking) LastModified() time.Time {
	if b.UpdatedAt.IsZero() {
		return b.CreatedAt
	}
	return b.UpdatedAt
}

func (b *Booking) WithRemoteKey(key string) *Booking {
	c := b.Clone()
	c.RemoteKey = &key
	return c
}

// BookingFilter фильтр для списка бронирований
type BookingFilter struct {
	Date             *time.Time
	ResourceID       *int64
	Status           *BookingStatus
	IncludeCancelled bool
}

// BookingChanges частичное обновление бронирования, nil означает "не менять"
type BookingChanges struct {
	ResourceID    *int64
	Date          *time.Time
	StartTime     *types.TimeString
	DurationUnits *int
	CustomerName  *string
	CustomerID    *string
	MemberTier    *string
	Notes         *string
	Prepaid       *bool
	PaymentRef    *string
}

// TouchesSlot reports whether the changes move the booking in time or space
func (c BookingChanges) TouchesSlot() bool {
	return c.ResourceID != nil || c.Date != nil || c.StartTime != nil || c.DurationUnits != nil
}

// TouchesPrice reports whether the changes affect pricing inputs
func (c BookingChanges) TouchesPrice() bool {
	return c.Date != nil || c.StartTime != nil || c.DurationUnits != nil || c.MemberTier != nil
}

// SameDay сравнивает только календарные даты
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DateOnly отбрасывает время и приводит дату к UTC полуночи
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// ParseDate разбирает календарную дату "2006-01-02" в UTC полночь
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}
