package notifier

import (
	"context"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// LogNotifier пишет уведомления в лог (брокер не настроен)
type LogNotifier struct {
	log Logger
}

func NewLogNotifier(log Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, entry *domain.WaitlistEntry) error {
	ev := NewWaitlistNotifiedEvent(entry)
	n.log.Info("Waitlist notification: entry=%s customer=%q resource=%d date=%s start=%s units=%d",
		ev.EntryID, ev.CustomerName, ev.ResourceID, ev.Date, ev.StartTime, ev.DurationUnits)
	return nil
}

func (n *LogNotifier) Close() error {
	return nil
}
