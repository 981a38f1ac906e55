package list_resources

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// ResourceCatalog каталог ресурсов и часов работы
type ResourceCatalog interface {
	List() []domain.Resource
	HoursFor(date time.Time) domain.DayHours
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
