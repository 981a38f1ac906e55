package conflicts

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

var (
	// ErrConflictNotFound возвращается, когда конфликт не найден
	ErrConflictNotFound = fmt.Errorf("reconciliation conflict not found: %w", domain.ErrNotFound)

	// ErrAlreadyResolved возвращается при повторном разрешении
	ErrAlreadyResolved = fmt.Errorf("reconciliation conflict already resolved: %w", domain.ErrInvalidState)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("conflict input: %w", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("conflicts service: internal error")
)
