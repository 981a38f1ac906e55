package domain

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// ResourceCategory describes the access policy of a bay
type ResourceCategory string

const (
	CategoryGeneral     ResourceCategory = "general"
	CategoryMembersOnly ResourceCategory = "members_only"
)

// IsValid reports whether c is a known category
func (c ResourceCategory) IsValid() bool {
	return c == CategoryGeneral || c == CategoryMembersOnly
}

// Resource is a bookable bay, immutable at runtime
type Resource struct {
	ID       int64
	Label    string
	Category ResourceCategory
	Capacity int
}

// RequiresMembership returns true for members-only bays
func (r *Resource) RequiresMembership() bool {
	return r.Category == CategoryMembersOnly
}

// DayHours operating window of a single weekday
type DayHours struct {
	Open   types.TimeString
	Close  types.TimeString
	Closed bool
}

// Contains reports whether [start, end) minutes fit into the window
func (h DayHours) Contains(start, end int) bool {
	if h.Closed {
		return false
	}
	return start >= h.Open.Minutes() && end <= h.Close.Minutes() && start < end
}

// WeeklyHours operating windows indexed by time.Weekday
type WeeklyHours [7]DayHours

// Catalog static description of the venue's bays and opening hours
type Catalog struct {
	resources map[int64]Resource
	hours     WeeklyHours
}

// NewCatalog builds a catalog; ids are expected to be unique
func NewCatalog(resources []Resource, hours WeeklyHours) *Catalog {
	byID := make(map[int64]Resource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
	}
	return &Catalog{resources: byID, hours: hours}
}

// Get returns the bay by id
func (c *Catalog) Get(id int64) (Resource, bool) {
	r, ok := c.resources[id]
	return r, ok
}

// List returns bays ordered by id
func (c *Catalog) List() []Resource {
	out := make([]Resource, 0, len(c.resources))
	for _, r := range c.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HoursFor returns the operating window for the date's weekday
func (c *Catalog) HoursFor(date time.Time) DayHours {
	return c.hours[date.Weekday()]
}
