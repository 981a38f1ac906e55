package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/remote/remotetest"
	bookingModels "github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
	createBookingUC "github.com/m04kA/SMC-BayLedger/internal/usecase/create_booking"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// activeBookings читает все неотмененные бронирования за день
func activeBookings(t *testing.T, a *App, date string) []*domain.Booking {
	t.Helper()

	list, err := a.Bookings.List(context.Background(), &bookingModels.ListBookingsRequest{Date: &date})
	require.NoError(t, err)

	result := make([]*domain.Booking, 0, len(list.Bookings))
	for _, b := range list.Bookings {
		if b.Status == string(domain.StatusCancelled) {
			continue
		}
		day, err := domain.ParseDate(b.Date)
		require.NoError(t, err)
		result = append(result, &domain.Booking{
			ID:            b.ID,
			ResourceID:    b.ResourceID,
			Date:          day,
			StartTime:     types.TimeString(b.StartTime),
			DurationUnits: b.DurationUnits,
		})
	}
	return result
}

func requireDisjoint(t *testing.T, bookings []*domain.Booking, step int) {
	t.Helper()
	for i := 0; i < len(bookings); i++ {
		for j := i + 1; j < len(bookings); j++ {
			require.False(t, bookings[i].Overlaps(bookings[j], 60),
				"step %d: %s %s+%d overlaps %s %s+%d on bay %d", step,
				bookings[i].ID, bookings[i].StartTime, bookings[i].DurationUnits,
				bookings[j].ID, bookings[j].StartTime, bookings[j].DurationUnits,
				bookings[i].ResourceID)
		}
	}
}

func TestLedger_RandomCreateUpdateCancelKeepsBaysDisjoint(t *testing.T) {
	const (
		date  = "2025-06-10"
		steps = 200
	)

	for _, seed := range []int64{1, 7, 42} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			ctx := context.Background()
			a := newTerminal(t, remotetest.NewStore()).app
			rnd := rand.New(rand.NewSource(seed))
			day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
			resources := []int64{3, 4}

			// часы 08..22 выходят за границы 09:00-22:00, такие запросы должны отклоняться
			randomStart := func() types.TimeString {
				ts, err := types.NewTimeStringFromMinutes((8 + rnd.Intn(15)) * 60)
				require.NoError(t, err)
				return ts
			}

			var created, updated int
			for step := 0; step < steps; step++ {
				active := activeBookings(t, a, date)

				switch op := rnd.Intn(4); {
				case op <= 1 || len(active) == 0:
					_, err := a.CreateBooking.Execute(ctx, &createBookingUC.Request{
						ResourceID:    resources[rnd.Intn(len(resources))],
						Date:          day,
						StartTime:     randomStart().String(),
						DurationUnits: 1 + rnd.Intn(4),
						CustomerName:  "Dana",
					})
					if err == nil {
						created++
					} else {
						require.ErrorIs(t, err, domain.ErrSlotUnavailable, "step %d", step)
					}

				case op == 2:
					target := active[rnd.Intn(len(active))]
					var changes domain.BookingChanges
					if rnd.Intn(2) == 0 {
						start := randomStart()
						changes.StartTime = &start
					}
					if rnd.Intn(2) == 0 {
						units := 1 + rnd.Intn(4)
						changes.DurationUnits = &units
					}
					if rnd.Intn(3) == 0 {
						resourceID := resources[rnd.Intn(len(resources))]
						changes.ResourceID = &resourceID
					}
					_, err := a.Bookings.Update(ctx, target.ID, changes)
					if err == nil {
						updated++
					} else {
						require.True(t, errors.Is(err, domain.ErrSlotUnavailable),
							"step %d: unexpected update error: %v", step, err)
					}

				default:
					target := active[rnd.Intn(len(active))]
					_, err := a.Bookings.Cancel(ctx, target.ID, &bookingModels.CancelBookingRequest{Reason: "random"})
					require.NoError(t, err, "step %d", step)
				}

				requireDisjoint(t, activeBookings(t, a, date), step)
			}

			assert.Positive(t, created)
			assert.Positive(t, updated)
		})
	}
}
