package postgres

import (
	"encoding/json"
	"time"
)

// Record запись коллекции в удаленном хранилище
// BusinessID совпадает с локальным id записи, Payload содержит JSON представление
type Record struct {
	RemoteKey  string
	Collection string
	BusinessID string
	Payload    json.RawMessage
	UpdatedAt  time.Time
}
