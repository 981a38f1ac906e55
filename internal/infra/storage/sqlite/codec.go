package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// Даты хранятся как TEXT "2006-01-02", метки времени как RFC3339 с фиксированными наносекундами в UTC.
// Фиксированная ширина сохраняет лексикографический порядок для ORDER BY.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func FormatDate(t time.Time) string {
	return t.Format(domain.DateFormat)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// NullTimestamp nil -> NULL
func NullTimestamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return FormatTimestamp(*t)
}

// ParseNullTimestamp NULL -> nil
func ParseNullTimestamp(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := ParseTimestamp(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
