package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// Request модели

// UpdateBookingRequest частичное изменение бронирования, отсутствующие поля не меняются
type UpdateBookingRequest struct {
	ResourceID    *int64  `json:"resourceId,omitempty"`
	Date          *string `json:"date,omitempty"`      // "2025-06-10"
	StartTime     *string `json:"startTime,omitempty"` // "10:00 AM" или "10:00"
	DurationUnits *int    `json:"durationUnits,omitempty"`
	CustomerName  *string `json:"customerName,omitempty"`
	CustomerID    *string `json:"customerId,omitempty"`
	MemberTier    *string `json:"memberTier,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Prepaid       *bool   `json:"prepaid,omitempty"`
	PaymentRef    *string `json:"paymentRef,omitempty"`
}

// ToDomainChanges разбирает дату и время и конвертирует запрос в domain изменения
func (r *UpdateBookingRequest) ToDomainChanges() (domain.BookingChanges, error) {
	changes := domain.BookingChanges{
		ResourceID:    r.ResourceID,
		DurationUnits: r.DurationUnits,
		CustomerName:  r.CustomerName,
		CustomerID:    r.CustomerID,
		MemberTier:    r.MemberTier,
		Notes:         r.Notes,
		Prepaid:       r.Prepaid,
		PaymentRef:    r.PaymentRef,
	}

	if r.Date != nil {
		date, err := domain.ParseDate(*r.Date)
		if err != nil {
			return changes, fmt.Errorf("%w: %q", ErrInvalidDate, *r.Date)
		}
		changes.Date = &date
	}

	if r.StartTime != nil {
		start, err := types.ParseTimeOfDay(*r.StartTime)
		if err != nil {
			return changes, err
		}
		changes.StartTime = &start
	}

	return changes, nil
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// ListBookingsRequest фильтр списка бронирований
type ListBookingsRequest struct {
	Date             *string `json:"date,omitempty"`
	ResourceID       *int64  `json:"resourceId,omitempty"`
	Status           *string `json:"status,omitempty"`
	IncludeCancelled bool    `json:"includeCancelled,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListBookingsRequest) ToDomainFilter() (domain.BookingFilter, error) {
	filter := domain.BookingFilter{
		ResourceID:       r.ResourceID,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Date != nil {
		date, err := domain.ParseDate(*r.Date)
		if err != nil {
			return filter, fmt.Errorf("%w: %q", ErrInvalidDate, *r.Date)
		}
		filter.Date = &date
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// PriceResponse разбивка цены в минимальных денежных единицах
type PriceResponse struct {
	Base           int64 `json:"base"`
	PeakSurcharge  int64 `json:"peakSurcharge"`
	MemberDiscount int64 `json:"memberDiscount"`
	Final          int64 `json:"final"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            string        `json:"id"`
	ResourceID    int64         `json:"resourceId"`
	Date          string        `json:"date"`      // "2025-06-10"
	StartTime     string        `json:"startTime"` // "10:00"
	DurationUnits int           `json:"durationUnits"`
	CustomerName  string        `json:"customerName"`
	CustomerID    *string       `json:"customerId,omitempty"`
	Price         PriceResponse `json:"price"`
	IsPeak        bool          `json:"isPeak"`
	MemberTier    *string       `json:"memberTier,omitempty"`
	Status        string        `json:"status"`

	Prepaid    bool    `json:"prepaid"`
	PaymentRef *string `json:"paymentRef,omitempty"`
	Notes      *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	RemoteKey   *string `json:"remoteKey,omitempty"`
	PendingSync bool    `json:"pendingSync"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:            b.ID,
		ResourceID:    b.ResourceID,
		Date:          b.Date.Format(domain.DateFormat),
		StartTime:     b.StartTime.String(),
		DurationUnits: b.DurationUnits,
		CustomerName:  b.Customer.Name,
		CustomerID:    b.Customer.ExternalID,
		Price: PriceResponse{
			Base:           b.Price.Base,
			PeakSurcharge:  b.Price.PeakSurcharge,
			MemberDiscount: b.Price.MemberDiscount,
			Final:          b.Price.Final,
		},
		IsPeak:             b.IsPeak,
		MemberTier:         b.MemberTier,
		Status:             string(b.Status),
		Prepaid:            b.Prepaid,
		PaymentRef:         b.PaymentRef,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		RemoteKey:          b.RemoteKey,
		PendingSync:        b.PendingSync,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s, nil
}
