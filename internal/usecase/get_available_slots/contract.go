package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListActiveForDate(ctx context.Context, date time.Time, resourceID *int64) ([]*domain.Booking, error)
}

// ResourceCatalog каталог ресурсов
type ResourceCatalog interface {
	Get(id int64) (domain.Resource, bool)
	List() []domain.Resource
	HoursFor(date time.Time) domain.DayHours
}

// SlotFinder перечисление слотов дня
type SlotFinder interface {
	FindFreeSlotsForDate(date time.Time, durationUnits int, bookings []*domain.Booking) map[int64][]domain.SlotCandidate
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
