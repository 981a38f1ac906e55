package list_bookings

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(dateStr, resourceIDStr, statusStr, includeCancelledStr string) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{
		IncludeCancelled: false, // По умолчанию отмененные скрыты
	}

	if dateStr != "" {
		req.Date = &dateStr
	}

	// Парсим resourceId если указан
	if resourceIDStr != "" {
		resourceID, err := strconv.ParseInt(resourceIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid resourceId value: %w", err)
		}
		req.ResourceID = &resourceID
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	// Парсим includeCancelled если указан
	if includeCancelledStr != "" {
		includeCancelled, err := strconv.ParseBool(includeCancelledStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeCancelled value: %w", err)
		}
		req.IncludeCancelled = includeCancelled
	}

	return req, nil
}
