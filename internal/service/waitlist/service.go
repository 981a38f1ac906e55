package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/booking"
	waitlistRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/waitlist"
	"github.com/m04kA/SMC-BayLedger/internal/service/waitlist/models"
)

// Service очередь ожидания на проданные слоты
// Освободившийся слот получает самая ранняя подходящая запись (FIFO)
type Service struct {
	entryRepo    EntryRepository
	bookingRepo  BookingRepository
	outboxRepo   OutboxRepository
	catalog      ResourceCatalog
	checker      AvailabilityChecker
	notifier     Notifier
	txManager    TransactionManager
	trigger      SyncTrigger
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	maxDuration  int
}

// NewService создает новый экземпляр сервиса очереди ожидания
func NewService(
	entryRepo EntryRepository,
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	catalog ResourceCatalog,
	checker AvailabilityChecker,
	notifier Notifier,
	txManager TransactionManager,
	trigger SyncTrigger,
	metrics Metrics,
	maxDurationUnits int,
	logger Logger,
) *Service {
	if maxDurationUnits <= 0 {
		maxDurationUnits = domain.DefaultMaxDurationUnits
	}
	return &Service{
		entryRepo:    entryRepo,
		bookingRepo:  bookingRepo,
		outboxRepo:   outboxRepo,
		catalog:      catalog,
		checker:      checker,
		notifier:     notifier,
		txManager:    txManager,
		trigger:      trigger,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		maxDuration:  maxDurationUnits,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// AddEntry ставит клиента в очередь
// Доступность слота не проверяется: в очередь встают именно на занятое время
func (s *Service) AddEntry(ctx context.Context, req *models.AddEntryRequest) (*models.EntryResponse, error) {
	s.logger.Info("AddEntry: customer=%q date=%s units=%d", req.CustomerName, req.Date, req.DurationUnits)

	// 1. Валидация
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, fmt.Errorf("%w: customerName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > domain.MaxCustomerNameLength {
		return nil, fmt.Errorf("%w: customerName is longer than %d characters", ErrInvalidInput, domain.MaxCustomerNameLength)
	}
	if req.DurationUnits <= 0 || req.DurationUnits > s.maxDuration {
		return nil, fmt.Errorf("%w: durationUnits must be between 1 and %d", ErrInvalidInput, s.maxDuration)
	}
	if req.PreferredResourceID != nil {
		if _, ok := s.catalog.Get(*req.PreferredResourceID); !ok {
			return nil, fmt.Errorf("%w: resource id=%d not found", ErrInvalidInput, *req.PreferredResourceID)
		}
	}

	date, preferredStart, err := req.Parse()
	if err != nil {
		s.logger.Warn("AddEntry: invalid request: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Создание записи
	now := s.timeProvider.Now()
	entry := &domain.WaitlistEntry{
		ID:                  uuid.NewString(),
		Customer:            domain.CustomerRef{Name: name, ExternalID: req.CustomerID},
		Date:                date,
		PreferredResourceID: req.PreferredResourceID,
		PreferredStartTime:  preferredStart,
		DurationUnits:       req.DurationUnits,
		Status:              domain.WaitlistWaiting,
		CreatedAt:           now,
		UpdatedAt:           now,
		PendingSync:         true,
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.entryRepo.Create(txCtx, entry); err != nil {
			s.logger.Error("AddEntry: failed to create entry: %v", err)
			return fmt.Errorf("%w: AddEntry - repository error: %v", ErrInternal, err)
		}
		return s.appendOutbox(txCtx, entry, domain.OutboxCreate, "AddEntry")
	})
	if err != nil {
		return nil, err
	}

	s.trigger.Kick()

	s.logger.Info("AddEntry: successfully added entry id=%s", entry.ID)
	return models.FromDomainEntry(entry), nil
}

// OnSlotFreed предлагает освободившийся слот первой подходящей записи
// Возвращает уведомленную запись или nil, если подходящих нет
func (s *Service) OnSlotFreed(ctx context.Context, slot domain.Slot) (*domain.WaitlistEntry, error) {
	s.logger.Info("OnSlotFreed: resource=%d date=%s start=%s",
		slot.ResourceID, slot.Date.Format(domain.DateFormat), slot.StartTime)

	var notified *domain.WaitlistEntry

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Ожидающие записи на дату в порядке постановки
		waiting := domain.WaitlistWaiting
		entries, err := s.entryRepo.List(txCtx, domain.WaitlistFilter{Date: &slot.Date, Status: &waiting})
		if err != nil {
			s.logger.Error("OnSlotFreed: failed to list entries: %v", err)
			return fmt.Errorf("%w: OnSlotFreed - list entries: %v", ErrInternal, err)
		}
		if len(entries) == 0 {
			return nil
		}

		// 2. Текущая занятость ресурса
		bookings, err := s.bookingRepo.ListActiveForDate(txCtx, slot.Date, &slot.ResourceID)
		if err != nil {
			s.logger.Error("OnSlotFreed: failed to get bookings: %v", err)
			return fmt.Errorf("%w: OnSlotFreed - get bookings: %v", ErrInternal, err)
		}

		// 3. Первая запись, чьи предпочтения и длительность подходят
		for _, entry := range entries {
			if !entry.Matches(slot.ResourceID, slot.Date, slot.StartTime) {
				continue
			}
			if !s.checker.IsSlotFree(slot.ResourceID, slot.Date, slot.StartTime, entry.DurationUnits, bookings, "") {
				continue
			}

			now := s.timeProvider.Now()
			updated := entry.Clone()
			updated.Status = domain.WaitlistNotified
			updated.NotifiedAt = &now
			resourceID := slot.ResourceID
			start := slot.StartTime
			updated.NotifiedResourceID = &resourceID
			updated.NotifiedStartTime = &start

			if err := s.persist(txCtx, updated, "OnSlotFreed"); err != nil {
				return err
			}
			notified = updated
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notified == nil {
		s.logger.Info("OnSlotFreed: no matching entries")
		return nil, nil
	}

	// 4. Уведомление вне транзакции
	notifyErr := s.notifier.Notify(ctx, notified)
	if s.metrics != nil {
		s.metrics.IncWaitlistNotification(notifyErr)
	}
	if notifyErr != nil {
		s.logger.Error("OnSlotFreed: failed to notify entry id=%s: %v", notified.ID, notifyErr)
	}

	s.trigger.Kick()

	s.logger.Info("OnSlotFreed: notified entry id=%s", notified.ID)
	return notified, nil
}

// MarkBooked Notified -> Booked, запись связывается с бронированием
func (s *Service) MarkBooked(ctx context.Context, id string, req *models.MarkBookedRequest) (*models.EntryResponse, error) {
	s.logger.Info("MarkBooked: entry id=%s booking id=%s", id, req.BookingID)

	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		return nil, fmt.Errorf("%w: bookingId is required", ErrInvalidInput)
	}

	var result *domain.WaitlistEntry

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		entry, err := s.getEntry(txCtx, id, "MarkBooked")
		if err != nil {
			return err
		}

		if entry.Status != domain.WaitlistNotified {
			s.logger.Warn("MarkBooked: entry id=%s is in status=%s", id, entry.Status)
			return fmt.Errorf("%w: status=%s", ErrInvalidTransition, entry.Status)
		}

		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return fmt.Errorf("%w: id=%s", ErrBookingNotFound, bookingID)
			}
			s.logger.Error("MarkBooked: failed to get booking id=%s: %v", bookingID, err)
			return fmt.Errorf("%w: MarkBooked - get booking: %v", ErrInternal, err)
		}

		if !matchesOffer(entry, booking) {
			s.logger.Warn("MarkBooked: booking id=%s (resource=%d, date=%s, start=%s) does not match offer of entry id=%s",
				bookingID, booking.ResourceID, booking.Date.Format(domain.DateFormat), booking.StartTime, id)
			return fmt.Errorf("%w: entry id=%s booking id=%s", ErrBookingMismatch, id, bookingID)
		}

		updated := entry.Clone()
		updated.Status = domain.WaitlistBooked
		updated.BookingID = &bookingID

		if err := s.persist(txCtx, updated, "MarkBooked"); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trigger.Kick()

	s.logger.Info("MarkBooked: entry id=%s booked", id)
	return models.FromDomainEntry(result), nil
}

// Expire Waiting/Notified -> Expired
// Просроченное уведомление возвращает слот следующей записи в очереди
func (s *Service) Expire(ctx context.Context, id string) (*models.EntryResponse, error) {
	s.logger.Info("Expire: entry id=%s", id)

	var (
		result  *domain.WaitlistEntry
		offered *domain.Slot
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		entry, err := s.getEntry(txCtx, id, "Expire")
		if err != nil {
			return err
		}

		if entry.Status != domain.WaitlistWaiting && entry.Status != domain.WaitlistNotified {
			s.logger.Warn("Expire: entry id=%s is in status=%s", id, entry.Status)
			return fmt.Errorf("%w: status=%s", ErrInvalidTransition, entry.Status)
		}

		if entry.Status == domain.WaitlistNotified && entry.NotifiedResourceID != nil && entry.NotifiedStartTime != nil {
			offered = &domain.Slot{
				ResourceID:    *entry.NotifiedResourceID,
				Date:          entry.Date,
				StartTime:     *entry.NotifiedStartTime,
				DurationUnits: entry.DurationUnits,
			}
		}

		updated := entry.Clone()
		updated.Status = domain.WaitlistExpired

		if err := s.persist(txCtx, updated, "Expire"); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if offered != nil {
		if _, err := s.OnSlotFreed(ctx, *offered); err != nil {
			s.logger.Error("Expire: failed to re-offer slot of entry id=%s: %v", id, err)
		}
	}
	s.trigger.Kick()

	s.logger.Info("Expire: entry id=%s expired", id)
	return models.FromDomainEntry(result), nil
}

// GetByID получает запись очереди по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.EntryResponse, error) {
	entry, err := s.getEntry(ctx, id, "GetByID")
	if err != nil {
		return nil, err
	}
	return models.FromDomainEntry(entry), nil
}

// List получает записи очереди в порядке постановки
func (s *Service) List(ctx context.Context, req *models.ListEntriesRequest) (*models.EntryListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	entries, err := s.entryRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d entries", len(entries))
	return models.FromDomainEntryList(entries), nil
}

func (s *Service) getEntry(ctx context.Context, id, operation string) (*domain.WaitlistEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			s.logger.Warn("%s: entry id=%s not found", operation, id)
			return nil, fmt.Errorf("%w: id=%s", ErrEntryNotFound, id)
		}
		s.logger.Error("%s: repository error for entry id=%s: %v", operation, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, operation, err)
	}
	return entry, nil
}

// persist сохраняет запись и фиксирует изменение в outbox в текущей транзакции
func (s *Service) persist(txCtx context.Context, entry *domain.WaitlistEntry, operation string) error {
	entry.UpdatedAt = s.timeProvider.Now()
	entry.PendingSync = true

	if err := s.entryRepo.Update(txCtx, entry); err != nil {
		s.logger.Error("%s: failed to update entry id=%s: %v", operation, entry.ID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, operation, err)
	}
	return s.appendOutbox(txCtx, entry, domain.OutboxUpdate, operation)
}

func (s *Service) appendOutbox(txCtx context.Context, entry *domain.WaitlistEntry, op domain.OutboxOperation, operation string) error {
	if _, err := s.outboxRepo.Append(txCtx, &domain.OutboxEntry{
		Collection: domain.CollectionWaitlist,
		RecordID:   entry.ID,
		Operation:  op,
		CreatedAt:  entry.UpdatedAt,
	}); err != nil {
		s.logger.Error("%s: failed to append outbox entry for entry id=%s: %v", operation, entry.ID, err)
		return fmt.Errorf("%w: %s - outbox error: %v", ErrInternal, operation, err)
	}
	return nil
}

// matchesOffer бронирование активно и занимает слот, предложенный записи
func matchesOffer(entry *domain.WaitlistEntry, booking *domain.Booking) bool {
	if !booking.IsActive() || !domain.SameDay(entry.Date, booking.Date) {
		return false
	}
	if entry.NotifiedResourceID != nil && *entry.NotifiedResourceID != booking.ResourceID {
		return false
	}
	if entry.NotifiedStartTime != nil && entry.NotifiedStartTime.Minutes() != booking.StartTime.Minutes() {
		return false
	}
	return true
}
