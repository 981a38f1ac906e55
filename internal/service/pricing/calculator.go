package pricing

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// Calculator чистые функции ценообразования поверх неизменяемых правил
type Calculator struct {
	rules domain.PricingRules
}

// NewCalculator создает калькулятор
func NewCalculator(rules domain.PricingRules) *Calculator {
	return &Calculator{rules: rules}
}

// IsPeakHour выходные определяются по календарному дню недели, окно [start, end)
func (c *Calculator) IsPeakHour(date time.Time, hour int) bool {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return c.rules.WeekendPeak.Contains(hour)
	default:
		return c.rules.WeekdayPeak.Contains(hour)
	}
}

// HasTier проверяет, известен ли уровень членства
func (c *Calculator) HasTier(name string) bool {
	_, ok := c.rules.Tiers[name]
	return ok
}

// ComputePrice считает цену бронирования
// Пиковость определяется по часу начала. Неизвестный уровень членства тарифицируется как без членства
func (c *Calculator) ComputePrice(durationUnits int, date time.Time, startTime types.TimeString, memberTier *string) (domain.Price, bool) {
	var price domain.Price

	// 1. Базовая цена из таблицы или по почасовой ставке
	if tabulated, ok := c.rules.DurationPrices[durationUnits]; ok {
		price.Base = tabulated
	} else {
		price.Base = int64(durationUnits) * c.rules.HourlyRate
	}

	// 2. Пиковая надбавка применяется до скидки
	isPeak := c.IsPeakHour(date, startTime.Hour())
	if isPeak {
		switch c.rules.PeakMode {
		case domain.PeakModeFlat:
			price.PeakSurcharge = c.rules.PeakFlat
		default:
			price.PeakSurcharge = percentOf(price.Base, int64(c.rules.PeakMultiplierPc-100))
		}
	}

	subtotal := price.Base + price.PeakSurcharge

	// 3. Скидка уровня членства: округляется итог, скидка это разница
	price.Final = subtotal
	if memberTier != nil {
		if tier, ok := c.rules.Tiers[*memberTier]; ok {
			switch {
			case tier.Unlimited || tier.DiscountPercent >= 100:
				// "безлимит": итог всегда ноль, скидка равна всей сумме
				price.Final = 0
			case tier.DiscountPercent > 0:
				price.Final = percentOf(subtotal, int64(100-tier.DiscountPercent))
			}
		}
	}

	if price.Final < 0 {
		price.Final = 0
	}
	price.MemberDiscount = subtotal - price.Final

	return price, isPeak
}

// percentOf amount*pct/100 с округлением половины вверх
func percentOf(amount, pct int64) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return (amount*pct + 50) / 100
}
