package create_booking

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_booking: %w", domain.ErrValidation)

	// ErrResourceNotFound возвращается, когда ресурса нет в каталоге
	ErrResourceNotFound = fmt.Errorf("create_booking: resource not found: %w", domain.ErrValidation)

	// ErrMembershipRequired возвращается при бронировании members-only ресурса без членства
	ErrMembershipRequired = fmt.Errorf("create_booking: resource requires an active membership: %w", domain.ErrValidation)

	// ErrSlotNotAvailable возвращается, когда слот занят или вне часов работы
	ErrSlotNotAvailable = fmt.Errorf("create_booking: %w", domain.ErrSlotUnavailable)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
