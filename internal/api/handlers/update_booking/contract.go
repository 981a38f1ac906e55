package update_booking

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
)

type BookingService interface {
	Update(ctx context.Context, id string, changes domain.BookingChanges) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
