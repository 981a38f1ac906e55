package change_booking_status

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
)

type BookingService interface {
	Confirm(ctx context.Context, id string) (*models.BookingResponse, error)
	CheckIn(ctx context.Context, id string) (*models.BookingResponse, error)
	CheckOut(ctx context.Context, id string) (*models.BookingResponse, error)
	MarkNoShow(ctx context.Context, id string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
