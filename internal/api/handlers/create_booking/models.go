package create_booking

import (
	"github.com/m04kA/SMC-BayLedger/internal/domain"
	createBooking "github.com/m04kA/SMC-BayLedger/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ResourceID    int64   `json:"resourceId"`
	Date          string  `json:"date"`      // "2025-06-10"
	StartTime     string  `json:"startTime"` // "10:00 AM" или "10:00"
	DurationUnits int     `json:"durationUnits"`
	CustomerName  string  `json:"customerName"`
	CustomerID    *string `json:"customerId,omitempty"`
	MemberTier    *string `json:"memberTier,omitempty"`
	Prepaid       bool    `json:"prepaid"`
	PaymentRef    *string `json:"paymentRef,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Время начала разбирает use case, здесь проверяется только дата
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		ResourceID:    r.ResourceID,
		Date:          date,
		StartTime:     r.StartTime,
		DurationUnits: r.DurationUnits,
		CustomerName:  r.CustomerName,
		CustomerID:    r.CustomerID,
		MemberTier:    r.MemberTier,
		Prepaid:       r.Prepaid,
		PaymentRef:    r.PaymentRef,
		Notes:         r.Notes,
	}, nil
}
