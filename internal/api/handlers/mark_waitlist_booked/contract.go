package mark_waitlist_booked

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist/models"
)

type WaitlistService interface {
	MarkBooked(ctx context.Context, id string, req *models.MarkBookedRequest) (*models.EntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
