package domain

import "time"

// OutboxOperation вид изменения, которое нужно отправить в удаленное хранилище
type OutboxOperation string

const (
	OutboxCreate OutboxOperation = "create"
	OutboxUpdate OutboxOperation = "update"
)

// OutboxEntry durable record of a local mutation awaiting push
type OutboxEntry struct {
	Seq        int64
	Collection string
	RecordID   string
	Operation  OutboxOperation
	CreatedAt  time.Time
	Attempts   int
	LastError  *string
}
