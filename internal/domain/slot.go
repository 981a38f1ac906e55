package domain

import "github.com/m04kA/SMC-BayLedger/pkg/types"

// SlotCandidate is one grid position of a bay's day with its availability
type SlotCandidate struct {
	StartTime     types.TimeString
	DurationUnits int
	Free          bool
}

// ResourceSlots groups a bay's candidates for a day in start-time order
type ResourceSlots struct {
	ResourceID int64
	Slots      []SlotCandidate
}

// FreeCount returns the number of free candidates
func (r *ResourceSlots) FreeCount() int {
	n := 0
	for _, s := range r.Slots {
		if s.Free {
			n++
		}
	}
	return n
}

// IsSoldOut returns true if no candidate is free
func (r *ResourceSlots) IsSoldOut() bool {
	return r.FreeCount() == 0
}
