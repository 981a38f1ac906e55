package domain

// PeakMode how the peak surcharge is applied
type PeakMode string

const (
	PeakModeMultiplier PeakMode = "multiplier"
	PeakModeFlat       PeakMode = "flat"
)

// HourWindow [StartHour, EndHour) window of hours
type HourWindow struct {
	StartHour int
	EndHour   int
}

// Contains reports whether hour falls into the window
func (w HourWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// MemberTier discount rule of a loyalty tier
type MemberTier struct {
	Name            string
	DiscountPercent int
	Unlimited       bool // "unlimited play": final price is always zero
}

// PricingRules all inputs of the price computation except the booking itself
type PricingRules struct {
	HourlyRate       int64
	DurationPrices   map[int]int64 // duration units -> base price
	PeakMode         PeakMode
	PeakMultiplierPc int   // e.g. 150 = base * 1.5
	PeakFlat         int64 // surcharge per booking in flat mode
	WeekdayPeak      HourWindow
	WeekendPeak      HourWindow
	Tiers            map[string]MemberTier
}
