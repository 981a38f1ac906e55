package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/ptr"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// 2025-06-10 is a Tuesday, 2025-06-14 a Saturday
var (
	tuesday  = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
)

func testRules() domain.PricingRules {
	return domain.PricingRules{
		HourlyRate:       4000,
		DurationPrices:   map[int]int64{1: 4000, 2: 7500},
		PeakMode:         domain.PeakModeMultiplier,
		PeakMultiplierPc: 125,
		PeakFlat:         1000,
		WeekdayPeak:      domain.HourWindow{StartHour: 17, EndHour: 21},
		WeekendPeak:      domain.HourWindow{StartHour: 10, EndHour: 18},
		Tiers: map[string]domain.MemberTier{
			"silver":    {Name: "silver", DiscountPercent: 15},
			"unlimited": {Name: "unlimited", Unlimited: true},
			"comped":    {Name: "comped", DiscountPercent: 100},
		},
	}
}

func TestIsPeakHour(t *testing.T) {
	c := NewCalculator(testRules())

	assert.False(t, c.IsPeakHour(tuesday, 16))
	assert.True(t, c.IsPeakHour(tuesday, 17), "start is inclusive")
	assert.True(t, c.IsPeakHour(tuesday, 20))
	assert.False(t, c.IsPeakHour(tuesday, 21), "end is exclusive")

	assert.True(t, c.IsPeakHour(saturday, 10))
	assert.False(t, c.IsPeakHour(saturday, 18))
	assert.False(t, c.IsPeakHour(saturday, 9))
}

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name     string
		rules    func(r *domain.PricingRules)
		units    int
		date     time.Time
		start    types.TimeString
		tier     *string
		want     domain.Price
		wantPeak bool
	}{
		{
			name:  "weekday off-peak uses duration table",
			units: 2, date: tuesday, start: "10:00",
			want: domain.Price{Base: 7500, Final: 7500},
		},
		{
			name:  "untabulated duration falls back to hourly rate",
			units: 3, date: tuesday, start: "10:00",
			want: domain.Price{Base: 12000, Final: 12000},
		},
		{
			name:  "peak multiplier before discount",
			units: 2, date: tuesday, start: "18:00", tier: ptr.Ptr("silver"),
			// 7500 * 1.25 = 9375, 85% of 9375 = 7968.75 -> 7969
			want:     domain.Price{Base: 7500, PeakSurcharge: 1875, MemberDiscount: 1406, Final: 7969},
			wantPeak: true,
		},
		{
			name:  "flat surcharge",
			rules: func(r *domain.PricingRules) { r.PeakMode = domain.PeakModeFlat },
			units: 1, date: saturday, start: "11:30",
			want:     domain.Price{Base: 4000, PeakSurcharge: 1000, Final: 5000},
			wantPeak: true,
		},
		{
			name:  "rounding half up",
			rules: func(r *domain.PricingRules) { r.DurationPrices = nil; r.HourlyRate = 1001 },
			units: 1, date: tuesday, start: "10:00", tier: ptr.Ptr("silver"),
			// 1001 * 85% = 850.85 -> 851
			want: domain.Price{Base: 1001, MemberDiscount: 150, Final: 851},
		},
		{
			name:  "exact half rounds up",
			rules: func(r *domain.PricingRules) { r.DurationPrices = nil; r.HourlyRate = 10 },
			units: 1, date: tuesday, start: "10:00", tier: ptr.Ptr("silver"),
			// 10 * 85% = 8.5 -> 9
			want: domain.Price{Base: 10, MemberDiscount: 1, Final: 9},
		},
		{
			name:  "unlimited tier is always free",
			units: 2, date: saturday, start: "12:00", tier: ptr.Ptr("unlimited"),
			want:     domain.Price{Base: 7500, PeakSurcharge: 1875, MemberDiscount: 9375, Final: 0},
			wantPeak: true,
		},
		{
			name:  "hundred percent tier is treated as unlimited",
			units: 1, date: tuesday, start: "10:00", tier: ptr.Ptr("comped"),
			want: domain.Price{Base: 4000, MemberDiscount: 4000, Final: 0},
		},
		{
			name:  "unknown tier prices as non-member",
			units: 1, date: tuesday, start: "10:00", tier: ptr.Ptr("platinum"),
			want: domain.Price{Base: 4000, Final: 4000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := testRules()
			if tt.rules != nil {
				tt.rules(&rules)
			}
			c := NewCalculator(rules)

			got, isPeak := c.ComputePrice(tt.units, tt.date, tt.start, tt.tier)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPeak, isPeak)
		})
	}
}

func TestComputePrice_Deterministic(t *testing.T) {
	c := NewCalculator(testRules())
	tier := ptr.Ptr("silver")

	first, _ := c.ComputePrice(2, tuesday, "19:00", tier)
	for i := 0; i < 10; i++ {
		again, _ := c.ComputePrice(2, tuesday, "19:00", tier)
		assert.Equal(t, first, again)
	}
}

func TestHasTier(t *testing.T) {
	c := NewCalculator(testRules())
	assert.True(t, c.HasTier("silver"))
	assert.False(t, c.HasTier("platinum"))
}

func TestComputePrice_FinalRoundsHalfUp(t *testing.T) {
	rules := testRules()
	rules.DurationPrices = nil

	for rate := int64(1); rate <= 200; rate++ {
		rules.HourlyRate = rate
		c := NewCalculator(rules)

		got, _ := c.ComputePrice(1, tuesday, "10:00", ptr.Ptr("silver"))

		// точный итог в сотых долях минимальной единицы
		exact := rate * 85
		diff := got.Final*100 - exact
		assert.True(t, diff > -50 && diff <= 50, "rate=%d final=%d exact=%d/100", rate, got.Final, exact)
		assert.Equal(t, got.Base, got.Final+got.MemberDiscount, "rate=%d", rate)
	}
}
