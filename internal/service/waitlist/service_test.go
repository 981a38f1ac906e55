package waitlist

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/booking"
	outboxRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/outbox"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	waitlistRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-BayLedger/internal/service/availability"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist/models"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
	"github.com/m04kA/SMC-BayLedger/pkg/logger"
	"github.com/m04kA/SMC-BayLedger/pkg/ptr"
	"github.com/m04kA/SMC-BayLedger/pkg/txmanager"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

var tuesday = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

// tickingTime каждое обращение сдвигает время на секунду, чтобы порядок постановки был строгим
type tickingTime struct{ t time.Time }

func (f *tickingTime) Now() time.Time {
	f.t = f.t.Add(time.Second)
	return f.t
}

type countingTrigger struct{ kicks int }

func (c *countingTrigger) Kick() { c.kicks++ }

type recordingNotifier struct {
	sent []string
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, entry *domain.WaitlistEntry) error {
	r.sent = append(r.sent, entry.ID)
	return r.err
}

type env struct {
	svc      *Service
	entries  *waitlistRepo.Repository
	bookings *bookingRepo.Repository
	outbox   *outboxRepo.Repository
	notifier *recordingNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()

	raw, err := sqlite.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	db := dbmetrics.Wrap(raw, nil, "test")

	var hours domain.WeeklyHours
	for i := range hours {
		hours[i] = domain.DayHours{Open: "08:00", Close: "22:00"}
	}
	catalog := domain.NewCatalog([]domain.Resource{
		{ID: 1, Label: "Bay 1", Category: domain.CategoryGeneral, Capacity: 4},
		{ID: 2, Label: "Bay 2", Category: domain.CategoryGeneral, Capacity: 4},
	}, hours)

	e := &env{
		entries:  waitlistRepo.NewRepository(db),
		bookings: bookingRepo.NewRepository(db),
		outbox:   outboxRepo.NewRepository(db),
		notifier: &recordingNotifier{},
	}
	e.svc = NewService(
		e.entries,
		e.bookings,
		e.outbox,
		catalog,
		availability.NewChecker(catalog, 60, 60),
		e.notifier,
		txmanager.NewTransactionManager(db),
		&countingTrigger{},
		nil,
		8,
		logger.NewWithWriter(io.Discard, "error"),
	).WithTimeProvider(&tickingTime{t: time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)})
	return e
}

func (e *env) add(t *testing.T, name string, resourceID *int64, start *string, units int) string {
	t.Helper()
	resp, err := e.svc.AddEntry(context.Background(), &models.AddEntryRequest{
		CustomerName:        name,
		Date:                "2025-06-10",
		PreferredResourceID: resourceID,
		PreferredStartTime:  start,
		DurationUnits:       units,
	})
	require.NoError(t, err)
	return resp.ID
}

func (e *env) book(t *testing.T, id string, resourceID int64, start types.TimeString, units int) {
	t.Helper()
	require.NoError(t, e.bookings.Create(context.Background(), &domain.Booking{
		ID:            id,
		ResourceID:    resourceID,
		Date:          tuesday,
		StartTime:     start,
		DurationUnits: units,
		Customer:      domain.CustomerRef{Name: "Someone"},
		Status:        domain.StatusConfirmed,
		CreatedAt:     tuesday,
		UpdatedAt:     tuesday,
	}))
}

func slot(resourceID int64, start types.TimeString) domain.Slot {
	return domain.Slot{ResourceID: resourceID, Date: tuesday, StartTime: start, DurationUnits: 1}
}

func status(t *testing.T, e *env, id string) domain.WaitlistStatus {
	t.Helper()
	entry, err := e.entries.GetByID(context.Background(), id)
	require.NoError(t, err)
	return entry.Status
}

func TestAddEntry(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	resp, err := e.svc.AddEntry(ctx, &models.AddEntryRequest{
		CustomerName:       "Ana",
		Date:               "2025-06-10",
		PreferredStartTime: ptr.Ptr("10:00 AM"),
		DurationUnits:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, "waiting", resp.Status)
	assert.Equal(t, "10:00", *resp.PreferredStartTime)
	assert.True(t, resp.PendingSync)

	has, err := e.outbox.HasEntries(ctx, domain.CollectionWaitlist, resp.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAddEntry_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		name string
		req  models.AddEntryRequest
	}{
		{name: "no customer", req: models.AddEntryRequest{Date: "2025-06-10", DurationUnits: 1}},
		{name: "bad date", req: models.AddEntryRequest{CustomerName: "Ana", Date: "10/06/2025", DurationUnits: 1}},
		{name: "zero duration", req: models.AddEntryRequest{CustomerName: "Ana", Date: "2025-06-10"}},
		{name: "bad time", req: models.AddEntryRequest{CustomerName: "Ana", Date: "2025-06-10", DurationUnits: 1, PreferredStartTime: ptr.Ptr("25:00")}},
		{name: "unknown resource", req: models.AddEntryRequest{CustomerName: "Ana", Date: "2025-06-10", DurationUnits: 1, PreferredResourceID: ptr.Ptr(int64(42))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.AddEntry(ctx, &tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestOnSlotFreed_FIFO(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e1 := e.add(t, "E1", nil, nil, 1)
	e2 := e.add(t, "E2", nil, nil, 1)
	e3 := e.add(t, "E3", nil, nil, 1)

	notified, err := e.svc.OnSlotFreed(ctx, slot(1, "10:00"))
	require.NoError(t, err)
	require.NotNil(t, notified)
	assert.Equal(t, e1, notified.ID)
	assert.Equal(t, int64(1), *notified.NotifiedResourceID)
	assert.Equal(t, "10:00", notified.NotifiedStartTime.String())

	assert.Equal(t, domain.WaitlistNotified, status(t, e, e1))
	assert.Equal(t, domain.WaitlistWaiting, status(t, e, e2))
	assert.Equal(t, domain.WaitlistWaiting, status(t, e, e3))
	assert.Equal(t, []string{e1}, e.notifier.sent)
}

func TestOnSlotFreed_Preferences(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	wrongBay := e.add(t, "wrong bay", ptr.Ptr(int64(2)), nil, 1)
	wrongTime := e.add(t, "wrong time", nil, ptr.Ptr("15:00"), 1)
	tooLong := e.add(t, "too long", nil, nil, 2)
	exact := e.add(t, "exact", ptr.Ptr(int64(1)), ptr.Ptr("10:00"), 1)

	// 11:00 занято, двухчасовая запись не помещается
	e.book(t, "b-next", 1, "11:00", 1)

	notified, err := e.svc.OnSlotFreed(ctx, slot(1, "10:00"))
	require.NoError(t, err)
	require.NotNil(t, notified)
	assert.Equal(t, exact, notified.ID)

	for _, id := range []string{wrongBay, wrongTime, tooLong} {
		assert.Equal(t, domain.WaitlistWaiting, status(t, e, id))
	}
}

func TestOnSlotFreed_NoMatch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.add(t, "E1", ptr.Ptr(int64(2)), nil, 1)

	notified, err := e.svc.OnSlotFreed(ctx, slot(1, "10:00"))
	require.NoError(t, err)
	assert.Nil(t, notified)
	assert.Empty(t, e.notifier.sent)
}

func TestOnSlotFreed_NotifyFailureIsNotPropagated(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	id := e.add(t, "E1", nil, nil, 1)
	e.notifier.err = errors.New("broker down")

	notified, err := e.svc.OnSlotFreed(ctx, slot(1, "10:00"))
	require.NoError(t, err)
	require.NotNil(t, notified)
	assert.Equal(t, domain.WaitlistNotified, status(t, e, id))
}

func TestExpire_ReoffersNotifiedSlot(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e1 := e.add(t, "E1", nil, nil, 1)
	e2 := e.add(t, "E2", nil, nil, 1)

	_, err := e.svc.OnSlotFreed(ctx, slot(1, "10:00"))
	require.NoError(t, err)

	resp, err := e.svc.Expire(ctx, e1)
	require.NoError(t, err)
	assert.Equal(t, "expired", resp.Status)

	assert.Equal(t, domain.WaitlistNotified, status(t, e, e2))
	assert.Equal(t, []string{e1, e2}, e.notifier.sent)

	_, err = e.svc.Expire(ctx, e1)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestMarkBooked(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	id := e.add(t, "E1", nil, nil, 1)

	_, err := e.svc.MarkBooked(ctx, id, &models.MarkBookedRequest{BookingID: "b1"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = e.svc.OnSlotFreed(ctx, slot(1, "10:00"))
	require.NoError(t, err)

	_, err = e.svc.MarkBooked(ctx, id, &models.MarkBookedRequest{BookingID: "b1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// бронирование на другом боксе или в другое время не закрывает предложение
	e.book(t, "other-bay", 2, "10:00", 1)
	_, err = e.svc.MarkBooked(ctx, id, &models.MarkBookedRequest{BookingID: "other-bay"})
	assert.ErrorIs(t, err, ErrBookingMismatch)

	e.book(t, "other-time", 1, "14:00", 1)
	_, err = e.svc.MarkBooked(ctx, id, &models.MarkBookedRequest{BookingID: "other-time"})
	assert.ErrorIs(t, err, ErrBookingMismatch)
	assert.Equal(t, domain.WaitlistNotified, status(t, e, id))

	e.book(t, "b1", 1, "10:00", 1)
	resp, err := e.svc.MarkBooked(ctx, id, &models.MarkBookedRequest{BookingID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "booked", resp.Status)
	assert.Equal(t, "b1", *resp.BookingID)

	_, err = e.svc.MarkBooked(ctx, "missing", &models.MarkBookedRequest{BookingID: "b1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first := e.add(t, "E1", nil, nil, 1)
	second := e.add(t, "E2", nil, nil, 1)

	list, err := e.svc.List(ctx, &models.ListEntriesRequest{Date: ptr.Ptr("2025-06-10")})
	require.NoError(t, err)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, first, list.Entries[0].ID)
	assert.Equal(t, second, list.Entries[1].ID)

	_, err = e.svc.List(ctx, &models.ListEntriesRequest{Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
