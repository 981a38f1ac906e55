package postgres

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
)

// DB соединение с удаленным хранилищем
type DB interface {
	dbmetrics.DBExecutor
	PingContext(ctx context.Context) error
}
