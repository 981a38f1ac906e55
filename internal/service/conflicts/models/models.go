package models

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// ResolveConflictRequest запрос на разрешение конфликта оператором
type ResolveConflictRequest struct {
	Note *string `json:"note,omitempty"`
}

// ListConflictsRequest фильтр очереди конфликтов
type ListConflictsRequest struct {
	OnlyOpen bool `json:"onlyOpen"`
}

// ConflictResponse конфликт сверки
type ConflictResponse struct {
	ID             int64     `json:"id"`
	BookingA       string    `json:"bookingA"`
	BookingB       string    `json:"bookingB"`
	ResourceID     int64     `json:"resourceId"`
	Date           string    `json:"date"`
	Status         string    `json:"status"`
	DetectedAt     time.Time `json:"detectedAt"`
	ResolvedAt     *string   `json:"resolvedAt,omitempty"` // ISO 8601 format
	ResolutionNote *string   `json:"resolutionNote,omitempty"`
}

// ConflictListResponse очередь конфликтов
type ConflictListResponse struct {
	Conflicts []*ConflictResponse `json:"conflicts"`
	Open      int                 `json:"open"`
}

// FromDomainConflict конвертирует domain.ReconciliationConflict в ConflictResponse
func FromDomainConflict(c *domain.ReconciliationConflict) *ConflictResponse {
	if c == nil {
		return nil
	}

	resp := &ConflictResponse{
		ID:             c.ID,
		BookingA:       c.BookingA,
		BookingB:       c.BookingB,
		ResourceID:     c.ResourceID,
		Date:           c.Date.Format(domain.DateFormat),
		Status:         string(c.Status),
		DetectedAt:     c.DetectedAt,
		ResolutionNote: c.ResolutionNote,
	}

	if c.ResolvedAt != nil {
		resolvedStr := c.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &resolvedStr
	}

	return resp
}

// FromDomainConflictList конвертирует список конфликтов
func FromDomainConflictList(conflicts []*domain.ReconciliationConflict, open int) *ConflictListResponse {
	result := make([]*ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		result = append(result, FromDomainConflict(c))
	}
	return &ConflictListResponse{Conflicts: result, Open: open}
}
