package get_sync_status

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

type SyncService interface {
	Status(ctx context.Context) (domain.SyncStatus, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
