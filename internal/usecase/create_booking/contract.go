package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	ListActiveForDate(ctx context.Context, date time.Time, resourceID *int64) ([]*domain.Booking, error)
}

// OutboxRepository журнал изменений для отправки в удаленное хранилище
type OutboxRepository interface {
	Append(ctx context.Context, entry *domain.OutboxEntry) (int64, error)
}

// ResourceCatalog каталог ресурсов
type ResourceCatalog interface {
	Get(id int64) (domain.Resource, bool)
}

// AvailabilityChecker проверка свободности слота
type AvailabilityChecker interface {
	IsSlotFree(resourceID int64, date time.Time, startTime types.TimeString, durationUnits int, bookings []*domain.Booking, excludeBookingID string) bool
}

// PriceCalculator расчет цены
type PriceCalculator interface {
	ComputePrice(durationUnits int, date time.Time, startTime types.TimeString, memberTier *string) (domain.Price, bool)
	HasTier(name string) bool
}

// MembershipClient интерфейс клиента сервиса членства
type MembershipClient interface {
	GetTierWithGracefulDegradation(ctx context.Context, customerID string) (*string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SyncTrigger сигнал циклу синхронизации
type SyncTrigger interface {
	Kick()
}

// Metrics счетчик операций с бронированиями (может быть nil)
type Metrics interface {
	IncBookingOperation(operation string, err error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время в UTC с точностью PostgreSQL timestamptz
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
