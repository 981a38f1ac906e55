package sync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/remote/postgres"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// bookingDocument форма бронирования в удаленном хранилище
// remoteKey и pendingSync локальные поля и в документ не входят
type bookingDocument struct {
	ID                 string     `json:"id"`
	ResourceID         int64      `json:"resource_id"`
	Date               string     `json:"date"`
	StartTime          string     `json:"start_time"`
	DurationUnits      int        `json:"duration_units"`
	CustomerName       string     `json:"customer_name"`
	CustomerID         *string    `json:"customer_id,omitempty"`
	PriceBase          int64      `json:"price_base"`
	PricePeak          int64      `json:"price_peak_surcharge"`
	PriceDiscount      int64      `json:"price_member_discount"`
	PriceFinal         int64      `json:"price_final"`
	IsPeak             bool       `json:"is_peak"`
	MemberTier         *string    `json:"member_tier,omitempty"`
	Status             string     `json:"status"`
	Prepaid            bool       `json:"prepaid"`
	PaymentRef         *string    `json:"payment_ref,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// waitlistDocument форма записи очереди в удаленном хранилище
type waitlistDocument struct {
	ID                  string     `json:"id"`
	CustomerName        string     `json:"customer_name"`
	CustomerID          *string    `json:"customer_id,omitempty"`
	Date                string     `json:"date"`
	PreferredResourceID *int64     `json:"preferred_resource_id,omitempty"`
	PreferredStartTime  *string    `json:"preferred_start_time,omitempty"`
	DurationUnits       int        `json:"duration_units"`
	Status              string     `json:"status"`
	NotifiedAt          *time.Time `json:"notified_at,omitempty"`
	NotifiedResourceID  *int64     `json:"notified_resource_id,omitempty"`
	NotifiedStartTime   *string    `json:"notified_start_time,omitempty"`
	BookingID           *string    `json:"booking_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func encodeBooking(b *domain.Booking) ([]byte, error) {
	return json.Marshal(bookingDocument{
		ID:                 b.ID,
		ResourceID:         b.ResourceID,
		Date:               b.Date.Format(domain.DateFormat),
		StartTime:          b.StartTime.String(),
		DurationUnits:      b.DurationUnits,
		CustomerName:       b.Customer.Name,
		CustomerID:         b.Customer.ExternalID,
		PriceBase:          b.Price.Base,
		PricePeak:          b.Price.PeakSurcharge,
		PriceDiscount:      b.Price.MemberDiscount,
		PriceFinal:         b.Price.Final,
		IsPeak:             b.IsPeak,
		MemberTier:         b.MemberTier,
		Status:             string(b.Status),
		Prepaid:            b.Prepaid,
		PaymentRef:         b.PaymentRef,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CancelledAt:        b.CancelledAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	})
}

// decodeBooking восстанавливает бронирование из удаленной записи
// Принятая удаленным хранилищем запись не ожидает отправки
func decodeBooking(rec postgres.Record) (*domain.Booking, error) {
	var doc bookingDocument
	if err := json.Unmarshal(rec.Payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: booking key=%s: %v", ErrDecodeRecord, rec.RemoteKey, err)
	}

	date, err := domain.ParseDate(doc.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: booking key=%s: %v", ErrDecodeRecord, rec.RemoteKey, err)
	}
	start, err := types.NewTimeStringFromString(doc.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: booking key=%s: %v", ErrDecodeRecord, rec.RemoteKey, err)
	}
	status := domain.BookingStatus(doc.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: booking key=%s: unknown status %q", ErrDecodeRecord, rec.RemoteKey, doc.Status)
	}
	if doc.ID == "" {
		doc.ID = rec.BusinessID
	}

	remoteKey := rec.RemoteKey
	return &domain.Booking{
		ID:            doc.ID,
		ResourceID:    doc.ResourceID,
		Date:          date,
		StartTime:     start,
		DurationUnits: doc.DurationUnits,
		Customer:      domain.CustomerRef{Name: doc.CustomerName, ExternalID: doc.CustomerID},
		Price: domain.Price{
			Base:           doc.PriceBase,
			PeakSurcharge:  doc.PricePeak,
			MemberDiscount: doc.PriceDiscount,
			Final:          doc.PriceFinal,
		},
		IsPeak:             doc.IsPeak,
		MemberTier:         doc.MemberTier,
		Status:             status,
		Prepaid:            doc.Prepaid,
		PaymentRef:         doc.PaymentRef,
		Notes:              doc.Notes,
		CancellationReason: doc.CancellationReason,
		CancelledAt:        utc(doc.CancelledAt),
		CreatedAt:          doc.CreatedAt.UTC(),
		UpdatedAt:          doc.UpdatedAt.UTC(),
		RemoteKey:          &remoteKey,
		PendingSync:        false,
	}, nil
}

func encodeWaitlistEntry(e *domain.WaitlistEntry) ([]byte, error) {
	return json.Marshal(waitlistDocument{
		ID:                  e.ID,
		CustomerName:        e.Customer.Name,
		CustomerID:          e.Customer.ExternalID,
		Date:                e.Date.Format(domain.DateFormat),
		PreferredResourceID: e.PreferredResourceID,
		PreferredStartTime:  timeOfDay(e.PreferredStartTime),
		DurationUnits:       e.DurationUnits,
		Status:              string(e.Status),
		NotifiedAt:          e.NotifiedAt,
		NotifiedResourceID:  e.NotifiedResourceID,
		NotifiedStartTime:   timeOfDay(e.NotifiedStartTime),
		BookingID:           e.BookingID,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	})
}

func decodeWaitlistEntry(rec postgres.Record) (*domain.WaitlistEntry, error) {
	var doc waitlistDocument
	if err := json.Unmarshal(rec.Payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: waitlist key=%s: %v", ErrDecodeRecord, rec.RemoteKey, err)
	}

	date, err := domain.ParseDate(doc.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: waitlist key=%s: %v", ErrDecodeRecord, rec.RemoteKey, err)
	}
	preferred, err := parseTimeOfDay(doc.PreferredStartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: waitlist key=%s: %v", ErrDecodeRecord, rec.RemoteKey, err)
	}
	notified, err := parseTimeOfDay(doc.NotifiedStartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: waitlist key=%s: %v", ErrDecodeRecord, rec.RemoteKey, err)
	}
	status := domain.WaitlistStatus(doc.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: waitlist key=%s: unknown status %q", ErrDecodeRecord, rec.RemoteKey, doc.Status)
	}
	if doc.ID == "" {
		doc.ID = rec.BusinessID
	}

	remoteKey := rec.RemoteKey
	return &domain.WaitlistEntry{
		ID:                  doc.ID,
		Customer:            domain.CustomerRef{Name: doc.CustomerName, ExternalID: doc.CustomerID},
		Date:                date,
		PreferredResourceID: doc.PreferredResourceID,
		PreferredStartTime:  preferred,
		DurationUnits:       doc.DurationUnits,
		Status:              status,
		NotifiedAt:          utc(doc.NotifiedAt),
		NotifiedResourceID:  doc.NotifiedResourceID,
		NotifiedStartTime:   notified,
		BookingID:           doc.BookingID,
		CreatedAt:           doc.CreatedAt.UTC(),
		UpdatedAt:           doc.UpdatedAt.UTC(),
		RemoteKey:           &remoteKey,
		PendingSync:         false,
	}, nil
}

func timeOfDay(t *types.TimeString) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func parseTimeOfDay(s *string) (*types.TimeString, error) {
	if s == nil {
		return nil, nil
	}
	t, err := types.NewTimeStringFromString(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
