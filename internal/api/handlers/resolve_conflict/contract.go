package resolve_conflict

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/internal/service/conflicts/models"
)

type ConflictService interface {
	Resolve(ctx context.Context, id int64, req *models.ResolveConflictRequest) (*models.ConflictResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
