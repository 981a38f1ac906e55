package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("get_available_slots: %w", domain.ErrValidation)

	// ErrResourceNotFound возвращается, когда ресурса нет в каталоге
	ErrResourceNotFound = fmt.Errorf("get_available_slots: resource not found: %w", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
