package create_booking

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/booking"
	outboxRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/outbox"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	"github.com/m04kA/SMC-BayLedger/internal/service/availability"
	"github.com/m04kA/SMC-BayLedger/internal/service/pricing"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
	"github.com/m04kA/SMC-BayLedger/pkg/logger"
	"github.com/m04kA/SMC-BayLedger/pkg/ptr"
	"github.com/m04kA/SMC-BayLedger/pkg/txmanager"
)

// 2025-06-10 вторник
var tuesday = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type countingTrigger struct {
	mu    sync.Mutex
	kicks int
}

func (c *countingTrigger) Kick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kicks++
}

type stubMembership struct {
	mu   sync.Mutex
	tier *string
	err  error
	seen []string
}

func (s *stubMembership) GetTierWithGracefulDegradation(_ context.Context, customerID string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, customerID)
	return s.tier, s.err
}

type env struct {
	uc         *UseCase
	bookings   *bookingRepo.Repository
	outbox     *outboxRepo.Repository
	trigger    *countingTrigger
	membership *stubMembership
}

func newEnv(t *testing.T) *env {
	t.Helper()

	raw, err := sqlite.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	db := dbmetrics.Wrap(raw, nil, "test")

	day := domain.DayHours{Open: "08:00", Close: "22:00"}
	var hours domain.WeeklyHours
	for i := range hours {
		hours[i] = day
	}
	catalog := domain.NewCatalog([]domain.Resource{
		{ID: 1, Label: "Bay 1", Category: domain.CategoryGeneral, Capacity: 4},
		{ID: 3, Label: "Bay 3", Category: domain.CategoryGeneral, Capacity: 4},
		{ID: 4, Label: "Members Bay", Category: domain.CategoryMembersOnly, Capacity: 2},
	}, hours)

	calc := pricing.NewCalculator(domain.PricingRules{
		HourlyRate:       4000,
		DurationPrices:   map[int]int64{1: 4000, 2: 7500},
		PeakMode:         domain.PeakModeMultiplier,
		PeakMultiplierPc: 125,
		WeekdayPeak:      domain.HourWindow{StartHour: 17, EndHour: 21},
		WeekendPeak:      domain.HourWindow{StartHour: 10, EndHour: 18},
		Tiers: map[string]domain.MemberTier{
			"gold":      {Name: "gold", DiscountPercent: 20},
			"unlimited": {Name: "unlimited", Unlimited: true},
		},
	})

	e := &env{
		bookings:   bookingRepo.NewRepository(db),
		outbox:     outboxRepo.NewRepository(db),
		trigger:    &countingTrigger{},
		membership: &stubMembership{},
	}
	e.uc = NewUseCase(
		e.bookings,
		e.outbox,
		catalog,
		availability.NewChecker(catalog, 60, 60),
		calc,
		e.membership,
		txmanager.NewTransactionManager(db),
		e.trigger,
		nil,
		8,
		logger.NewWithWriter(io.Discard, "error"),
	).WithTimeProvider(fixedTime{t: time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)})
	return e
}

func request(resourceID int64, start string, units int) *Request {
	return &Request{
		ResourceID:    resourceID,
		Date:          tuesday,
		StartTime:     start,
		DurationUnits: units,
		CustomerName:  "Dana",
	}
}

func TestExecute_BackToBackScenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := e.uc.Execute(ctx, request(3, "10:00 AM", 2))
	require.NoError(t, err)
	assert.Equal(t, "confirmed", first.Status)
	assert.Equal(t, "10:00", first.StartTime)
	assert.False(t, first.IsPeak)
	assert.Equal(t, int64(7500), first.Price.Final)
	assert.True(t, first.PendingSync)
	assert.NotEmpty(t, first.ID)

	_, err = e.uc.Execute(ctx, request(3, "11:00 AM", 1))
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	third, err := e.uc.Execute(ctx, request(3, "12:00 PM", 1))
	require.NoError(t, err)
	assert.Equal(t, "12:00", third.StartTime)

	active, err := e.bookings.ListActiveForDate(ctx, tuesday, ptr.Ptr(int64(3)))
	require.NoError(t, err)
	assert.Len(t, active, 2)

	pending, err := e.outbox.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	assert.Equal(t, 2, e.trigger.kicks)
}

func TestExecute_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	cases := map[string]*Request{
		"empty customer":    {ResourceID: 3, Date: tuesday, StartTime: "10:00", DurationUnits: 1},
		"unparsable time":   {ResourceID: 3, Date: tuesday, StartTime: "ten", DurationUnits: 1, CustomerName: "Dana"},
		"empty time":        {ResourceID: 3, Date: tuesday, StartTime: "", DurationUnits: 1, CustomerName: "Dana"},
		"zero duration":     {ResourceID: 3, Date: tuesday, StartTime: "10:00", DurationUnits: 0, CustomerName: "Dana"},
		"negative duration": {ResourceID: 3, Date: tuesday, StartTime: "10:00", DurationUnits: -1, CustomerName: "Dana"},
		"too long":          {ResourceID: 3, Date: tuesday, StartTime: "10:00", DurationUnits: 9, CustomerName: "Dana"},
		"unknown resource":  {ResourceID: 99, Date: tuesday, StartTime: "10:00", DurationUnits: 1, CustomerName: "Dana"},
		"missing date":      {ResourceID: 3, StartTime: "10:00", DurationUnits: 1, CustomerName: "Dana"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.uc.Execute(ctx, req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	pending, err := e.outbox.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Zero(t, e.trigger.kicks)
}

func TestExecute_OutsideOperatingHours(t *testing.T) {
	e := newEnv(t)

	_, err := e.uc.Execute(context.Background(), request(3, "9:00 PM", 2))
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestExecute_MembershipLookup(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.membership.tier = ptr.Ptr("gold")
	req := request(1, "18:00", 1)
	req.CustomerID = ptr.Ptr("cust-7")
	resp, err := e.uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"cust-7"}, e.membership.seen)
	assert.Equal(t, "gold", *resp.MemberTier)
	assert.True(t, resp.IsPeak)
	// 4000 * 1.25 = 5000, скидка 20% = 1000
	assert.Equal(t, int64(5000), resp.Price.Base+resp.Price.PeakSurcharge)
	assert.Equal(t, int64(4000), resp.Price.Final)

	// явный уровень не требует обращения к сервису
	req = request(1, "08:00", 1)
	req.MemberTier = ptr.Ptr("unlimited")
	resp, err = e.uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Price.Final)
	assert.Len(t, e.membership.seen, 1)
}

func TestExecute_MembershipDegraded(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.membership.err = errors.New("membership service unavailable")

	resp, err := e.uc.Execute(ctx, request(1, "10:00", 1))
	require.NoError(t, err)
	assert.Nil(t, resp.MemberTier)
	assert.Equal(t, int64(4000), resp.Price.Final)

	_, err = e.uc.Execute(ctx, request(4, "10:00", 1))
	assert.ErrorIs(t, err, ErrMembershipRequired)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExecute_ConcurrentCreatesOnOneSlot(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	const workers = 16
	starts := []string{"10:00", "10:00 AM", "11:00", "9:00"}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	ready := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-ready

			// все запросы пересекаются с интервалом 10:00-12:00
			units := 2
			if starts[i%len(starts)] == "9:00" {
				units = 3
			}
			_, err := e.uc.Execute(ctx, request(3, starts[i%len(starts)], units))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrSlotUnavailable):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(ready)
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(workers-1), rejected.Load())

	active, err := e.bookings.ListActiveForDate(ctx, tuesday, ptr.Ptr(int64(3)))
	require.NoError(t, err)
	require.Len(t, active, 1)

	pending, err := e.outbox.ListPending(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
