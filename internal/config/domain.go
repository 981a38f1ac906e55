package config

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// Catalog строит каталог ресурсов из конфигурации
func (c *Config) Catalog() (*domain.Catalog, error) {
	hours, err := c.WeeklyHours()
	if err != nil {
		return nil, err
	}

	resources := make([]domain.Resource, 0, len(c.Resources))
	for _, r := range c.Resources {
		resources = append(resources, domain.Resource{
			ID:       r.ID,
			Label:    r.Label,
			Category: domain.ResourceCategory(r.Category),
			Capacity: r.Capacity,
		})
	}
	return domain.NewCatalog(resources, hours), nil
}

// WeeklyHours разбирает часы работы по дням недели
// День без open/close считается закрытым
func (c *Config) WeeklyHours() (domain.WeeklyHours, error) {
	var hours domain.WeeklyHours

	days := map[time.Weekday]DayHoursConfig{
		time.Monday:    c.Hours.Monday,
		time.Tuesday:   c.Hours.Tuesday,
		time.Wednesday: c.Hours.Wednesday,
		time.Thursday:  c.Hours.Thursday,
		time.Friday:    c.Hours.Friday,
		time.Saturday:  c.Hours.Saturday,
		time.Sunday:    c.Hours.Sunday,
	}

	for weekday, day := range days {
		if day.Closed || (day.Open == "" && day.Close == "") {
			hours[weekday] = domain.DayHours{Closed: true}
			continue
		}

		open, err := types.NewTimeStringFromString(day.Open)
		if err != nil {
			return hours, fmt.Errorf("hours.%s: invalid open time: %v", weekday, err)
		}
		closeAt, err := types.NewTimeStringFromString(day.Close)
		if err != nil {
			return hours, fmt.Errorf("hours.%s: invalid close time: %v", weekday, err)
		}
		if !open.IsBefore(closeAt) {
			return hours, fmt.Errorf("hours.%s: open %s must be before close %s", weekday, open, closeAt)
		}
		hours[weekday] = domain.DayHours{Open: open, Close: closeAt}
	}

	return hours, nil
}

// PricingRules строит правила ценообразования из конфигурации
func (c *Config) PricingRules() domain.PricingRules {
	durations := make(map[int]int64, len(c.Pricing.Durations))
	for _, d := range c.Pricing.Durations {
		durations[d.Units] = d.Price
	}

	tiers := make(map[string]domain.MemberTier, len(c.Pricing.Tiers))
	for _, t := range c.Pricing.Tiers {
		tiers[t.Name] = domain.MemberTier{
			Name:            t.Name,
			DiscountPercent: t.DiscountPercent,
			Unlimited:       t.Unlimited,
		}
	}

	return domain.PricingRules{
		HourlyRate:       c.Pricing.HourlyRate,
		DurationPrices:   durations,
		PeakMode:         domain.PeakMode(c.Pricing.Peak.Mode),
		PeakMultiplierPc: c.Pricing.Peak.MultiplierPercent,
		PeakFlat:         c.Pricing.Peak.FlatSurcharge,
		WeekdayPeak:      domain.HourWindow{StartHour: c.Pricing.Peak.Weekday.StartHour, EndHour: c.Pricing.Peak.Weekday.EndHour},
		WeekendPeak:      domain.HourWindow{StartHour: c.Pricing.Peak.Weekend.StartHour, EndHour: c.Pricing.Peak.Weekend.EndHour},
		Tiers:            tiers,
	}
}
