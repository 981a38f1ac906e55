package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	Date          time.Time // Дата (без времени)
	DurationUnits int       // Длительность в базовых единицах, по умолчанию 1
	ResourceID    *int64    // Только один ресурс (опционально)
}

// Response модель ответа с сеткой слотов по ресурсам
type Response struct {
	Date          time.Time      // Дата, на которую запрашивались слоты
	DurationUnits int            // Длительность, для которой проверялась свободность
	Closed        bool           // Заведение закрыто в этот день
	Resources     []ResourceGrid // Ресурсы в порядке ID
}

// ResourceGrid сетка слотов одного ресурса
type ResourceGrid struct {
	ResourceID int64
	Label      string
	Category   string
	Slots      []Slot
	FreeCount  int
	SoldOut    bool
}

// Slot модель временного слота
type Slot struct {
	StartTime types.TimeString // Время начала слота (например, "10:00")
	Free      bool             // Слот свободен для запрошенной длительности
}
