package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnparsableTime возвращается, когда время суток не удалось распознать
// Вызывающий код обязан отклонить операцию, а не подставлять полночь
var ErrUnparsableTime = errors.New("unparsable time of day")

// ParseTimeOfDay разбирает время в 12-часовом ("2:00 PM", "2:00pm", "12:30 AM")
// или 24-часовом ("14:00", "9:05") формате
func ParseTimeOfDay(text string) (TimeString, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return "", fmt.Errorf("%w: empty input", ErrUnparsableTime)
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm", "a.m.", "p.m."} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix[:1]
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}

	hourPart, minutePart, found := strings.Cut(s, ":")
	if !found {
		return "", fmt.Errorf("%w: missing colon in %q", ErrUnparsableTime, text)
	}
	if len(hourPart) == 0 || len(hourPart) > 2 || len(minutePart) != 2 {
		return "", fmt.Errorf("%w: %q", ErrUnparsableTime, text)
	}

	hour, err := parseDigits(hourPart)
	if err != nil {
		return "", fmt.Errorf("%w: non-numeric hour in %q", ErrUnparsableTime, text)
	}
	minute, err := parseDigits(minutePart)
	if err != nil {
		return "", fmt.Errorf("%w: non-numeric minute in %q", ErrUnparsableTime, text)
	}
	if minute > 59 {
		return "", fmt.Errorf("%w: minute out of range in %q", ErrUnparsableTime, text)
	}

	switch meridiem {
	case "a", "p":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: hour out of range in %q", ErrUnparsableTime, text)
		}
		hour %= 12
		if meridiem == "p" {
			hour += 12
		}
	default:
		if hour > 23 {
			return "", fmt.Errorf("%w: hour out of range in %q", ErrUnparsableTime, text)
		}
	}

	return NewTimeStringFromMinutes(hour*minutesPerHour + minute)
}

// FormatTimeOfDay форматирует время в 12-часовом виде ("2:00 PM")
func FormatTimeOfDay(t TimeString) string {
	m := t.Minutes()
	if m < 0 {
		return ""
	}
	hour, minute := (m/minutesPerHour)%24, m%minutesPerHour

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, suffix)
}
