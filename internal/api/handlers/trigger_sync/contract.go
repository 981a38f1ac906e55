package trigger_sync

// SyncTrigger запрос внеочередного цикла синхронизации
type SyncTrigger interface {
	Trigger()
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
