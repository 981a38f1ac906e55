package bookings

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = fmt.Errorf("booking not found: %w", domain.ErrNotFound)

	// ErrInvalidTransition возвращается, когда операция недопустима в текущем статусе
	ErrInvalidTransition = fmt.Errorf("booking status does not allow this operation: %w", domain.ErrInvalidState)

	// ErrSlotNotAvailable возвращается, когда новый слот занят или вне часов работы
	ErrSlotNotAvailable = fmt.Errorf("booking slot: %w", domain.ErrSlotUnavailable)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("booking input: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
