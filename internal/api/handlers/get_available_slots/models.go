package get_available_slots

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-BayLedger/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date          string         `json:"date"`
	DurationUnits int            `json:"durationUnits"`
	Closed        bool           `json:"closed"`
	Resources     []ResourceGrid `json:"resources"`
}

// ResourceGrid сетка слотов одного ресурса
type ResourceGrid struct {
	ResourceID int64           `json:"resourceId"`
	Label      string          `json:"label"`
	Category   string          `json:"category"`
	FreeCount  int             `json:"freeCount"`
	SoldOut    bool            `json:"soldOut"`
	Slots      []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime string `json:"startTime"`
	Free      bool   `json:"free"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	resources := make([]ResourceGrid, len(resp.Resources))
	for i, grid := range resp.Resources {
		slots := make([]AvailableSlot, len(grid.Slots))
		for j, slot := range grid.Slots {
			slots[j] = AvailableSlot{
				StartTime: slot.StartTime.String(),
				Free:      slot.Free,
			}
		}
		resources[i] = ResourceGrid{
			ResourceID: grid.ResourceID,
			Label:      grid.Label,
			Category:   grid.Category,
			FreeCount:  grid.FreeCount,
			SoldOut:    grid.SoldOut,
			Slots:      slots,
		}
	}

	return &AvailableSlotsResponse{
		Date:          resp.Date.Format(domain.DateFormat),
		DurationUnits: resp.DurationUnits,
		Closed:        resp.Closed,
		Resources:     resources,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(dateStr, durationStr, resourceIDStr string) (*getAvailableSlots.Request, error) {
	date, err := domain.ParseDate(dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	req := &getAvailableSlots.Request{Date: date}

	if durationStr != "" {
		units, err := strconv.Atoi(durationStr)
		if err != nil {
			return nil, fmt.Errorf("invalid durationUnits value: %w", err)
		}
		req.DurationUnits = units
	}

	if resourceIDStr != "" {
		resourceID, err := strconv.ParseInt(resourceIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid resourceId value: %w", err)
		}
		req.ResourceID = &resourceID
	}

	return req, nil
}
