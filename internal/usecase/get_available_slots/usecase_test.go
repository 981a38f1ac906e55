package get_available_slots

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/service/availability"
	"github.com/m04kA/SMC-BayLedger/pkg/logger"
	"github.com/m04kA/SMC-BayLedger/pkg/ptr"
)

type memBookings []*domain.Booking

func (m memBookings) ListActiveForDate(_ context.Context, date time.Time, resourceID *int64) ([]*domain.Booking, error) {
	out := make([]*domain.Booking, 0)
	for _, b := range m {
		if b.IsActive() && domain.SameDay(b.Date, date) && (resourceID == nil || *resourceID == b.ResourceID) {
			out = append(out, b)
		}
	}
	return out, nil
}

// 2025-06-10 вторник, по воскресеньям закрыто
var tuesday = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func newUseCase(bookings memBookings) *UseCase {
	var hours domain.WeeklyHours
	for i := range hours {
		hours[i] = domain.DayHours{Open: "10:00", Close: "14:00"}
	}
	hours[time.Sunday] = domain.DayHours{Closed: true}
	catalog := domain.NewCatalog([]domain.Resource{
		{ID: 2, Label: "Bay 2", Category: domain.CategoryGeneral},
		{ID: 1, Label: "Bay 1", Category: domain.CategoryMembersOnly},
	}, hours)

	return NewUseCase(bookings, catalog, availability.NewChecker(catalog, 60, 60), 8, logger.NewWithWriter(io.Discard, "error"))
}

func TestExecute_Grid(t *testing.T) {
	uc := newUseCase(memBookings{
		{ID: "b-1", ResourceID: 1, Date: tuesday, StartTime: "10:00", DurationUnits: 2, Status: domain.StatusConfirmed},
		{ID: "b-2", ResourceID: 1, Date: tuesday, StartTime: "12:00", DurationUnits: 2, Status: domain.StatusCancelled},
	})

	resp, err := uc.Execute(context.Background(), &Request{Date: tuesday, DurationUnits: 1})
	require.NoError(t, err)
	require.Len(t, resp.Resources, 2)
	assert.False(t, resp.Closed)

	bay1 := resp.Resources[0]
	assert.Equal(t, int64(1), bay1.ResourceID)
	assert.Equal(t, "members_only", bay1.Category)
	require.Len(t, bay1.Slots, 4)
	assert.Equal(t, []bool{false, false, true, true},
		[]bool{bay1.Slots[0].Free, bay1.Slots[1].Free, bay1.Slots[2].Free, bay1.Slots[3].Free})
	assert.Equal(t, 2, bay1.FreeCount)
	assert.False(t, bay1.SoldOut)

	assert.Equal(t, 4, resp.Resources[1].FreeCount)
}

func TestExecute_SingleResourceAndSoldOut(t *testing.T) {
	uc := newUseCase(memBookings{
		{ID: "b-1", ResourceID: 2, Date: tuesday, StartTime: "10:00", DurationUnits: 4, Status: domain.StatusConfirmed},
	})

	resp, err := uc.Execute(context.Background(), &Request{Date: tuesday, DurationUnits: 2, ResourceID: ptr.Ptr(int64(2))})
	require.NoError(t, err)
	require.Len(t, resp.Resources, 1)
	assert.Len(t, resp.Resources[0].Slots, 3)
	assert.True(t, resp.Resources[0].SoldOut)
}

func TestExecute_ClosedDayAndErrors(t *testing.T) {
	uc := newUseCase(nil)
	sunday := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	resp, err := uc.Execute(context.Background(), &Request{Date: sunday})
	require.NoError(t, err)
	assert.True(t, resp.Closed)
	assert.Equal(t, 1, resp.DurationUnits)
	for _, grid := range resp.Resources {
		assert.Empty(t, grid.Slots)
		assert.True(t, grid.SoldOut)
	}

	_, err = uc.Execute(context.Background(), &Request{Date: tuesday, ResourceID: ptr.Ptr(int64(9))})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Execute(context.Background(), &Request{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
