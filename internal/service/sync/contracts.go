package sync

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/remote/postgres"
)

// RemoteStore авторитетное удаленное хранилище
type RemoteStore interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, collection, businessID string, payload []byte, updatedAt time.Time) (string, error)
	Update(ctx context.Context, collection, remoteKey string, payload []byte, updatedAt time.Time) error
	List(ctx context.Context, collection string) ([]postgres.Record, error)
}

// BookingRepository локальный кэш бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListAll(ctx context.Context) ([]*domain.Booking, error)
	Upsert(ctx context.Context, booking *domain.Booking) error
	MarkSynced(ctx context.Context, id, remoteKey string, clearPending bool) error
}

// WaitlistRepository локальный кэш очереди ожидания
type WaitlistRepository interface {
	GetByID(ctx context.Context, id string) (*domain.WaitlistEntry, error)
	ListAll(ctx context.Context) ([]*domain.WaitlistEntry, error)
	Upsert(ctx context.Context, entry *domain.WaitlistEntry) error
	MarkSynced(ctx context.Context, id, remoteKey string, clearPending bool) error
}

// OutboxRepository журнал неотправленных изменений
type OutboxRepository interface {
	ListPending(ctx context.Context, limit int) ([]*domain.OutboxEntry, error)
	DeleteUpTo(ctx context.Context, collection, recordID string, maxSeq int64) error
	HasEntries(ctx context.Context, collection, recordID string) (bool, error)
	MarkFailed(ctx context.Context, collection, recordID string, maxSeq int64, cause string) error
	Count(ctx context.Context) (int, error)
}

// ConflictRepository очередь конфликтов сверки
type ConflictRepository interface {
	Create(ctx context.Context, conflict *domain.ReconciliationConflict) (bool, error)
	CountOpen(ctx context.Context) (int, error)
}

// WaitlistMatcher предлагает освободившийся слот очереди ожидания
type WaitlistMatcher interface {
	OnSlotFreed(ctx context.Context, slot domain.Slot) (*domain.WaitlistEntry, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики синхронизации (может быть nil)
type Metrics interface {
	IncSyncRun(phase string, err error)
	AddSyncRecords(phase, collection, decision string, n int)
	SetPendingRecords(n int)
	SetRemoteOnline(online bool)
	AddConflicts(n int)
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
