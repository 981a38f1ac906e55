package domain

import (
	"strings"
	"time"
)

// ConflictStatus represents the state of a reconciliation conflict in the operator queue
type ConflictStatus string

const (
	ConflictOpen     ConflictStatus = "open"
	ConflictResolved ConflictStatus = "resolved"
)

// ReconciliationConflict two non-cancelled bookings holding overlapping intervals
// discovered after merging remote state. Neither booking is cancelled automatically.
type ReconciliationConflict struct {
	ID             int64
	BookingA       string
	BookingB       string
	ResourceID     int64
	Date           time.Time
	Status         ConflictStatus
	DetectedAt     time.Time
	ResolvedAt     *time.Time
	ResolutionNote *string
}

// PairKey is stable regardless of the order the two bookings were seen in
func (c *ReconciliationConflict) PairKey() string {
	return ConflictPairKey(c.BookingA, c.BookingB)
}

// ConflictPairKey builds the dedup key for a pair of booking ids
func ConflictPairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}
