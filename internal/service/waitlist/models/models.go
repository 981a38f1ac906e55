package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе записи
	ErrInvalidStatus = errors.New("invalid waitlist status")

	// ErrInvalidDate возвращается при некорректной дате
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)

// Request модели

// AddEntryRequest запрос на постановку в очередь ожидания
type AddEntryRequest struct {
	CustomerName        string  `json:"customerName"`
	CustomerID          *string `json:"customerId,omitempty"`
	Date                string  `json:"date"`                         // "2025-06-10"
	PreferredResourceID *int64  `json:"preferredResourceId,omitempty"` // nil = любой ресурс
	PreferredStartTime  *string `json:"preferredStartTime,omitempty"`  // nil = любое время
	DurationUnits       int     `json:"durationUnits"`
}

// Parse разбирает дату и предпочтительное время
func (r *AddEntryRequest) Parse() (time.Time, *types.TimeString, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)
	}

	if r.PreferredStartTime == nil {
		return date, nil, nil
	}
	start, err := types.ParseTimeOfDay(*r.PreferredStartTime)
	if err != nil {
		return time.Time{}, nil, err
	}
	return date, &start, nil
}

// ListEntriesRequest фильтр списка очереди
type ListEntriesRequest struct {
	Date   *string `json:"date,omitempty"`
	Status *string `json:"status,omitempty"`
}

// ToDomainFilter конвертирует запрос в domain фильтр
func (r *ListEntriesRequest) ToDomainFilter() (domain.WaitlistFilter, error) {
	var filter domain.WaitlistFilter

	if r.Date != nil {
		date, err := domain.ParseDate(*r.Date)
		if err != nil {
			return filter, fmt.Errorf("%w: %q", ErrInvalidDate, *r.Date)
		}
		filter.Date = &date
	}

	if r.Status != nil {
		status := domain.WaitlistStatus(*r.Status)
		if !status.IsValid() {
			return filter, fmt.Errorf("%w: %q", ErrInvalidStatus, *r.Status)
		}
		filter.Status = &status
	}

	return filter, nil
}

// MarkBookedRequest связывает уведомленную запись с созданным бронированием
type MarkBookedRequest struct {
	BookingID string `json:"bookingId"`
}

// Response модели

// EntryResponse запись очереди ожидания
type EntryResponse struct {
	ID                  string  `json:"id"`
	CustomerName        string  `json:"customerName"`
	CustomerID          *string `json:"customerId,omitempty"`
	Date                string  `json:"date"`
	PreferredResourceID *int64  `json:"preferredResourceId,omitempty"`
	PreferredStartTime  *string `json:"preferredStartTime,omitempty"`
	DurationUnits       int     `json:"durationUnits"`
	Status              string  `json:"status"`

	NotifiedAt         *string `json:"notifiedAt,omitempty"` // ISO 8601 format
	NotifiedResourceID *int64  `json:"notifiedResourceId,omitempty"`
	NotifiedStartTime  *string `json:"notifiedStartTime,omitempty"`
	BookingID          *string `json:"bookingId,omitempty"`

	RemoteKey   *string   `json:"remoteKey,omitempty"`
	PendingSync bool      `json:"pendingSync"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EntryListResponse список записей очереди
type EntryListResponse struct {
	Entries []*EntryResponse `json:"entries"`
}

// FromDomainEntry конвертирует domain.WaitlistEntry в EntryResponse
func FromDomainEntry(e *domain.WaitlistEntry) *EntryResponse {
	if e == nil {
		return nil
	}

	resp := &EntryResponse{
		ID:                  e.ID,
		CustomerName:        e.Customer.Name,
		CustomerID:          e.Customer.ExternalID,
		Date:                e.Date.Format(domain.DateFormat),
		PreferredResourceID: e.PreferredResourceID,
		PreferredStartTime:  timeString(e.PreferredStartTime),
		DurationUnits:       e.DurationUnits,
		Status:              string(e.Status),
		NotifiedResourceID:  e.NotifiedResourceID,
		NotifiedStartTime:   timeString(e.NotifiedStartTime),
		BookingID:           e.BookingID,
		RemoteKey:           e.RemoteKey,
		PendingSync:         e.PendingSync,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}

	if e.NotifiedAt != nil {
		notifiedStr := e.NotifiedAt.Format(time.RFC3339)
		resp.NotifiedAt = &notifiedStr
	}

	return resp
}

// FromDomainEntryList конвертирует список записей
func FromDomainEntryList(entries []*domain.WaitlistEntry) *EntryListResponse {
	result := make([]*EntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, FromDomainEntry(e))
	}
	return &EntryListResponse{Entries: result}
}

func timeString(t *types.TimeString) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}
