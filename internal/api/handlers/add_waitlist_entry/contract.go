package add_waitlist_entry

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist/models"
)

type WaitlistService interface {
	AddEntry(ctx context.Context, req *models.AddEntryRequest) (*models.EntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
