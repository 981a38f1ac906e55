package get_available_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, maxDurationUnits int) error {
	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if req.DurationUnits < 0 {
		return fmt.Errorf("%w: durationUnits must be positive", ErrInvalidInput)
	}
	if req.DurationUnits > maxDurationUnits {
		return fmt.Errorf("%w: durationUnits must not exceed %d", ErrInvalidInput, maxDurationUnits)
	}

	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	return nil
}
