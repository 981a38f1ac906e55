package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	ResourceID    int64     // ID ресурса (бокса)
	Date          time.Time // Дата бронирования (без времени)
	StartTime     string    // Время начала в 12- или 24-часовом формате ("10:00 AM", "14:00")
	DurationUnits int       // Длительность в базовых единицах времени
	CustomerName  string    // Имя клиента
	CustomerID    *string   // Внешний ID клиента (опционально)
	MemberTier    *string   // Уровень членства; если не указан, запрашивается у сервиса членства
	Prepaid       bool      // Оплачено заранее
	PaymentRef    *string   // Ссылка на платеж (опционально)
	Notes         *string   // Дополнительные заметки (опционально)
}
