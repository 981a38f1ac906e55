package waitlist

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// EntryRepository интерфейс репозитория очереди ожидания
type EntryRepository interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) error
	Update(ctx context.Context, entry *domain.WaitlistEntry) error
	GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error)
	List(ctx context.Context, filter domain.WaitlistFilter) ([]*domain.WaitlistEntry, error)
}

// BookingRepository чтение бронирований для проверки слота
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
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

// Notifier доставка уведомления клиенту из очереди
type Notifier interface {
	Notify(ctx context.Context, entry *domain.WaitlistEntry) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// SyncTrigger сигнал циклу синхронизации
type SyncTrigger interface {
	Kick()
}

// Metrics счетчик уведомлений (может быть nil)
type Metrics interface {
	IncWaitlistNotification(err error)
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

// Now возвращает текущее время в UTC
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
