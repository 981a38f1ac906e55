package bookings

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// validateChanges проверяет поля частичного обновления
func (s *Service) validateChanges(changes domain.BookingChanges) error {
	if changes.ResourceID != nil {
		if _, ok := s.catalog.Get(*changes.ResourceID); !ok {
			return fmt.Errorf("%w: resource id=%d not found", ErrInvalidInput, *changes.ResourceID)
		}
	}

	if changes.DurationUnits != nil {
		if *changes.DurationUnits <= 0 {
			return fmt.Errorf("%w: durationUnits must be positive", ErrInvalidInput)
		}
		if *changes.DurationUnits > s.maxDuration {
			return fmt.Errorf("%w: durationUnits must not exceed %d", ErrInvalidInput, s.maxDuration)
		}
	}

	if changes.StartTime != nil {
		if err := changes.StartTime.Validate(); err != nil {
			return fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
		}
		// 24:00 допустимо только как время закрытия
		if changes.StartTime.Minutes() >= 24*60 {
			return fmt.Errorf("%w: startTime must be before 24:00", ErrInvalidInput)
		}
	}

	if changes.CustomerName != nil {
		if strings.TrimSpace(*changes.CustomerName) == "" {
			return fmt.Errorf("%w: customerName must not be empty", ErrInvalidInput)
		}
		if utf8.RuneCountInString(*changes.CustomerName) > domain.MaxCustomerNameLength {
			return fmt.Errorf("%w: customerName is longer than %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
		}
	}

	// пустая строка снимает уровень членства
	if changes.MemberTier != nil && *changes.MemberTier != "" && !s.pricing.HasTier(*changes.MemberTier) {
		return fmt.Errorf("%w: unknown member tier %q", ErrInvalidInput, *changes.MemberTier)
	}

	if changes.Notes != nil && utf8.RuneCountInString(*changes.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes are longer than %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// applyChanges переносит изменения на копию бронирования
func applyChanges(b *domain.Booking, changes domain.BookingChanges) {
	if changes.ResourceID != nil {
		b.ResourceID = *changes.ResourceID
	}
	if changes.Date != nil {
		b.Date = domain.DateOnly(*changes.Date)
	}
	if changes.StartTime != nil {
		b.StartTime = *changes.StartTime
	}
	if changes.DurationUnits != nil {
		b.DurationUnits = *changes.DurationUnits
	}
	if changes.CustomerName != nil {
		b.Customer.Name = *changes.CustomerName
	}
	if changes.CustomerID != nil {
		b.Customer.ExternalID = nonEmpty(*changes.CustomerID)
	}
	if changes.MemberTier != nil {
		b.MemberTier = nonEmpty(*changes.MemberTier)
	}
	if changes.Notes != nil {
		b.Notes = nonEmpty(*changes.Notes)
	}
	if changes.Prepaid != nil {
		b.Prepaid = *changes.Prepaid
	}
	if changes.PaymentRef != nil {
		b.PaymentRef = nonEmpty(*changes.PaymentRef)
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// slotOf кортеж слота, который занимает бронирование
func slotOf(b *domain.Booking) domain.Slot {
	return domain.Slot{
		ResourceID:    b.ResourceID,
		Date:          b.Date,
		StartTime:     b.StartTime,
		DurationUnits: b.DurationUnits,
	}
}

func sameSlot(a, b domain.Slot) bool {
	return a.ResourceID == b.ResourceID &&
		domain.SameDay(a.Date, b.Date) &&
		a.StartTime.Minutes() == b.StartTime.Minutes() &&
		a.DurationUnits == b.DurationUnits
}
