package domain

// Default configuration values
const (
	DefaultTimeUnitMinutes  = 60
	DefaultSlotStepMinutes  = 60
	DefaultMaxDurationUnits = 8
)

// Business validation constants
const (
	MaxCustomerNameLength       = 200
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxResolutionNoteLength     = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Remote collections
const (
	CollectionBookings = "bookings"
	CollectionWaitlist = "waitlist"
)
