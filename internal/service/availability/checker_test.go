package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

var tuesday = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func testCatalog() *domain.Catalog {
	var hours domain.WeeklyHours
	for d := range hours {
		hours[d] = domain.DayHours{Open: "09:00", Close: "22:00"}
	}
	hours[time.Sunday] = domain.DayHours{Closed: true}

	return domain.NewCatalog([]domain.Resource{
		{ID: 1, Label: "Bay 1", Category: domain.CategoryGeneral, Capacity: 4},
		{ID: 3, Label: "Bay 3", Category: domain.CategoryGeneral, Capacity: 4},
	}, hours)
}

func booking(id string, resourceID int64, start types.TimeString, units int, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:            id,
		ResourceID:    resourceID,
		Date:          tuesday,
		StartTime:     start,
		DurationUnits: units,
		Status:        status,
	}
}

func TestIsSlotFree(t *testing.T) {
	c := NewChecker(testCatalog(), 60, 60)
	existing := []*domain.Booking{
		booking("b1", 3, "10:00", 2, domain.StatusConfirmed),
		booking("b2", 3, "15:00", 1, domain.StatusCancelled),
		booking("b3", 1, "10:00", 2, domain.StatusConfirmed),
	}

	tests := []struct {
		name     string
		resource int64
		date     time.Time
		start    types.TimeString
		units    int
		exclude  string
		want     bool
	}{
		{name: "overlap inside", resource: 3, date: tuesday, start: "11:00", units: 1, want: false},
		{name: "overlap covering", resource: 3, date: tuesday, start: "09:00", units: 4, want: false},
		{name: "back to back after", resource: 3, date: tuesday, start: "12:00", units: 1, want: true},
		{name: "back to back before", resource: 3, date: tuesday, start: "09:00", units: 1, want: true},
		{name: "cancelled booking ignored", resource: 3, date: tuesday, start: "15:00", units: 1, want: true},
		{name: "other resource ignored", resource: 3, date: tuesday, start: "13:00", units: 1, want: true},
		{name: "other date ignored", resource: 3, date: tuesday.AddDate(0, 0, 1), start: "10:00", units: 2, want: true},
		{name: "exclude self", resource: 3, date: tuesday, start: "11:00", units: 1, exclude: "b1", want: true},
		{name: "before opening", resource: 3, date: tuesday, start: "08:00", units: 1, want: false},
		{name: "runs past closing", resource: 3, date: tuesday, start: "21:00", units: 2, want: false},
		{name: "ends at closing", resource: 3, date: tuesday, start: "21:00", units: 1, want: true},
		{name: "closed day", resource: 3, date: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), start: "10:00", units: 1, want: false},
		{name: "unknown resource", resource: 99, date: tuesday, start: "13:00", units: 1, want: false},
		{name: "invalid start", resource: 3, date: tuesday, start: "bad", units: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.IsSlotFree(tt.resource, tt.date, tt.start, tt.units, existing, tt.exclude)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindFreeSlotsForDate(t *testing.T) {
	c := NewChecker(testCatalog(), 60, 60)
	existing := []*domain.Booking{
		booking("b1", 3, "10:00", 2, domain.StatusConfirmed),
	}

	slots := c.FindFreeSlotsForDate(tuesday, 2, existing)
	require.Len(t, slots, 2)

	bay3 := slots[3]
	// 09:00 .. 20:00 inclusive: 12 starts for a two hour booking
	require.Len(t, bay3, 12)
	assert.Equal(t, types.TimeString("09:00"), bay3[0].StartTime)
	assert.Equal(t, types.TimeString("20:00"), bay3[len(bay3)-1].StartTime)

	free := make(map[types.TimeString]bool)
	for _, s := range bay3 {
		free[s.StartTime] = s.Free
	}
	assert.False(t, free["09:00"], "09:00-11:00 overlaps 10:00-12:00")
	assert.False(t, free["10:00"])
	assert.False(t, free["11:00"])
	assert.True(t, free["12:00"])

	for _, s := range slots[1] {
		assert.True(t, s.Free)
	}
}

func TestFindFreeSlotsForDate_ClosedDay(t *testing.T) {
	c := NewChecker(testCatalog(), 60, 30)
	sunday := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	slots := c.FindFreeSlotsForDate(sunday, 1, nil)
	assert.Empty(t, slots[1])
	assert.Empty(t, slots[3])
}

func TestFindFreeSlotsForDate_HalfHourStep(t *testing.T) {
	c := NewChecker(testCatalog(), 60, 30)

	slots := c.FindFreeSlotsForDate(tuesday, 1, nil)
	// 09:00 .. 21:00 every 30 minutes
	require.Len(t, slots[1], 25)
	assert.Equal(t, types.TimeString("09:30"), slots[1][1].StartTime)
}
