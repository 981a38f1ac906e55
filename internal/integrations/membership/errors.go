package membership

import "errors"

var (
	// ErrMembershipNotFound возвращается, когда у клиента нет активного членства
	ErrMembershipNotFound = errors.New("customer has no active membership")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("membership client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("membership client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Сервис членства недоступен, бронирование оценивается без скидки
	ErrServiceDegraded = errors.New("membership service unavailable: graceful degradation applied")
)
