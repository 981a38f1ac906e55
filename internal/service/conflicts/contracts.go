package conflicts

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// ConflictRepository интерфейс репозитория конфликтов
type ConflictRepository interface {
	List(ctx context.Context, onlyOpen bool) ([]*domain.ReconciliationConflict, error)
	GetByID(ctx context.Context, id int64) (*domain.ReconciliationConflict, error)
	Resolve(ctx context.Context, id int64, resolvedAt time.Time, note *string) error
	CountOpen(ctx context.Context) (int, error)
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
