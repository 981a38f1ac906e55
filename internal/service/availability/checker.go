package availability

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// Checker проверяет свободность интервалов относительно набора бронирований
// Не хранит состояние: набор бронирований всегда передается вызывающим
type Checker struct {
	catalog         *domain.Catalog
	unitMinutes     int
	slotStepMinutes int
}

// NewChecker создает проверяющий компонент
func NewChecker(catalog *domain.Catalog, unitMinutes, slotStepMinutes int) *Checker {
	if unitMinutes <= 0 {
		unitMinutes = domain.DefaultTimeUnitMinutes
	}
	if slotStepMinutes <= 0 {
		slotStepMinutes = unitMinutes
	}
	return &Checker{
		catalog:         catalog,
		unitMinutes:     unitMinutes,
		slotStepMinutes: slotStepMinutes,
	}
}

// UnitMinutes длительность базовой единицы времени
func (c *Checker) UnitMinutes() int {
	return c.unitMinutes
}

// IsSlotFree проверяет, что интервал укладывается в часы работы и не пересекается
// ни с одним активным бронированием того же ресурса на ту же дату.
// excludeBookingID исключает само бронирование при его изменении.
// Длительность должна быть положительной (проверяется выше по стеку)
func (c *Checker) IsSlotFree(
	resourceID int64,
	date time.Time,
	startTime types.TimeString,
	durationUnits int,
	bookings []*domain.Booking,
	excludeBookingID string,
) bool {
	if _, ok := c.catalog.Get(resourceID); !ok {
		return false
	}

	reqStart := startTime.Minutes()
	if reqStart < 0 {
		return false
	}
	reqEnd := reqStart + durationUnits*c.unitMinutes

	// 1. Интервал должен целиком лежать внутри часов работы этого дня недели
	if !c.catalog.HoursFor(date).Contains(reqStart, reqEnd) {
		return false
	}

	// 2. Полуоткрытые интервалы: бронирования "встык" не пересекаются
	for _, b := range bookings {
		if b.ResourceID != resourceID || !domain.SameDay(b.Date, date) {
			continue
		}
		if !b.IsActive() || (excludeBookingID != "" && b.ID == excludeBookingID) {
			continue
		}

		bStart, bEnd := b.Interval(c.unitMinutes)
		if reqStart < bEnd && reqEnd > bStart {
			return false
		}
	}

	return true
}
