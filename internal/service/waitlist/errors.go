package waitlist

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

var (
	// ErrEntryNotFound возвращается, когда запись очереди не найдена
	ErrEntryNotFound = fmt.Errorf("waitlist entry not found: %w", domain.ErrNotFound)

	// ErrBookingNotFound возвращается, когда связываемое бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("linked booking not found: %w", domain.ErrNotFound)

	// ErrInvalidTransition возвращается, когда операция недопустима в текущем статусе записи
	ErrInvalidTransition = fmt.Errorf("waitlist status does not allow this operation: %w", domain.ErrInvalidState)

	// ErrBookingMismatch возвращается, когда бронирование не совпадает с предложенным слотом
	ErrBookingMismatch = fmt.Errorf("booking does not match the notified slot: %w", domain.ErrInvalidState)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("waitlist input: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("waitlist service: internal error")
)
