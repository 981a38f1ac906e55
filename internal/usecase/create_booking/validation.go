package create_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// validateRequest валидирует входные данные запроса и возвращает разобранное время начала
func validateRequest(req *Request, maxDurationUnits int) (types.TimeString, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return "", fmt.Errorf("%w: customerName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.CustomerName) > domain.MaxCustomerNameLength {
		return "", fmt.Errorf("%w: customerName is longer than %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}

	if req.ResourceID <= 0 {
		return "", fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return "", fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Неразобранное время никогда не превращается в полночь
	start, err := types.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return "", fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}

	if req.DurationUnits <= 0 {
		return "", fmt.Errorf("%w: durationUnits must be positive", ErrInvalidInput)
	}
	if req.DurationUnits > maxDurationUnits {
		return "", fmt.Errorf("%w: durationUnits must not exceed %d", ErrInvalidInput, maxDurationUnits)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return "", fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return start, nil
}
