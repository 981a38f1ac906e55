package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BayLedger/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований
// Все изменения проходят через эксклюзивную транзакцию и фиксируются в outbox
type Service struct {
	bookingRepo  BookingRepository
	outboxRepo   OutboxRepository
	catalog      ResourceCatalog
	checker      AvailabilityChecker
	pricing      PriceCalculator
	waitlist     WaitlistMatcher
	txManager    TransactionManager
	trigger      SyncTrigger
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	maxDuration  int
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	catalog ResourceCatalog,
	checker AvailabilityChecker,
	pricing PriceCalculator,
	waitlist WaitlistMatcher,
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
		bookingRepo:  bookingRepo,
		outboxRepo:   outboxRepo,
		catalog:      catalog,
		checker:      checker,
		pricing:      pricing,
		waitlist:     waitlist,
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

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError("GetByID", id, err)
	}

	return models.FromDomainBooking(booking), nil
}

// List получает бронирования по фильтру
// По умолчанию отмененные не возвращаются
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: successfully fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// Update частично изменяет бронирование
// Смена ресурса/даты/времени/длительности повторно проверяет слот, исключая само бронирование.
// Цена пересчитывается только при изменении ценовых полей и если бронирование не оплачено заранее
func (s *Service) Update(ctx context.Context, id string, changes domain.BookingChanges) (*models.BookingResponse, error) {
	s.logger.Info("Update: updating booking id=%s (slot=%t, price=%t)", id, changes.TouchesSlot(), changes.TouchesPrice())

	// 1. Валидация изменений
	if err := s.validateChanges(changes); err != nil {
		s.logger.Warn("Update: validation failed for booking id=%s: %v", id, err)
		s.observe("update", err)
		return nil, err
	}

	var (
		result  *domain.Booking
		oldSlot domain.Slot
	)

	// 2. Эксклюзивная секция
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError("Update", id, err)
		}

		// 2.1. Терминальные бронирования не изменяются
		if current.IsTerminal() {
			s.logger.Warn("Update: booking id=%s is in terminal status=%s", id, current.Status)
			return fmt.Errorf("%w: status=%s", ErrInvalidTransition, current.Status)
		}

		oldSlot = slotOf(current)
		updated := current.Clone()
		applyChanges(updated, changes)

		resource, _ := s.catalog.Get(updated.ResourceID)
		if resource.RequiresMembership() && updated.MemberTier == nil {
			return fmt.Errorf("%w: resource id=%d requires an active membership", ErrInvalidInput, updated.ResourceID)
		}

		// 2.2. Повторная проверка слота без сравнения бронирования с самим собой
		if changes.TouchesSlot() {
			bookings, err := s.bookingRepo.ListActiveForDate(txCtx, updated.Date, &updated.ResourceID)
			if err != nil {
				s.logger.Error("Update: failed to get bookings: %v", err)
				return fmt.Errorf("%w: Update - failed to get bookings: %v", ErrInternal, err)
			}
			if !s.checker.IsSlotFree(updated.ResourceID, updated.Date, updated.StartTime, updated.DurationUnits, bookings, id) {
				s.logger.Warn("Update: slot resource=%d date=%s start=%s units=%d is not available for booking id=%s",
					updated.ResourceID, updated.Date.Format(domain.DateFormat), updated.StartTime, updated.DurationUnits, id)
				return ErrSlotNotAvailable
			}
		}

		// 2.3. Оплаченная цена неизменна
		if changes.TouchesPrice() && !current.Prepaid {
			updated.Price, updated.IsPeak = s.pricing.ComputePrice(updated.DurationUnits, updated.Date, updated.StartTime, updated.MemberTier)
		}

		if err := s.persist(txCtx, updated, "Update"); err != nil {
			return err
		}

		result = updated
		return nil
	})
	s.observe("update", err)
	if err != nil {
		return nil, err
	}

	// 3. Освободившийся слот предлагаем очереди ожидания
	if !sameSlot(oldSlot, slotOf(result)) {
		s.offerToWaitlist(ctx, oldSlot)
	}
	s.trigger.Kick()

	s.logger.Info("Update: successfully updated booking id=%s", id)
	return models.FromDomainBooking(result), nil
}

// Cancel отменяет бронирование с указанием причины
// Запись не удаляется; после фиксации слот предлагается очереди ожидания
func (s *Service) Cancel(ctx context.Context, id string, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s", id)

	reason := strings.TrimSpace(req.Reason)
	if utf8.RuneCountInString(reason) > domain.MaxCancellationReasonLength {
		err := fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
		s.observe("cancel", err)
		return nil, err
	}

	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError("Cancel", id, err)
		}

		if current.IsTerminal() {
			s.logger.Warn("Cancel: booking id=%s cannot be cancelled, status=%s", id, current.Status)
			return fmt.Errorf("%w: status=%s", ErrInvalidTransition, current.Status)
		}

		now := s.timeProvider.Now()
		updated := current.Clone()
		updated.Status = domain.StatusCancelled
		updated.CancellationReason = nonEmpty(reason)
		updated.CancelledAt = &now

		if err := s.persist(txCtx, updated, "Cancel"); err != nil {
			return err
		}

		result = updated
		return nil
	})
	s.observe("cancel", err)
	if err != nil {
		return nil, err
	}

	s.offerToWaitlist(ctx, slotOf(result))
	s.trigger.Kick()

	s.logger.Info("Cancel: successfully cancelled booking id=%s", id)
	return models.FromDomainBooking(result), nil
}

// Confirm переводит Pending -> Confirmed
func (s *Service) Confirm(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, "confirm", id, domain.StatusConfirmed, domain.StatusPending)
}

// CheckIn переводит Pending/Confirmed -> CheckedIn
func (s *Service) CheckIn(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, "check_in", id, domain.StatusCheckedIn, domain.StatusPending, domain.StatusConfirmed)
}

// CheckOut переводит CheckedIn -> Completed
func (s *Service) CheckOut(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, "check_out", id, domain.StatusCompleted, domain.StatusCheckedIn)
}

// MarkNoShow переводит Pending/Confirmed -> NoShow
func (s *Service) MarkNoShow(ctx context.Context, id string) (*models.BookingResponse, error) {
	return s.transition(ctx, "no_show", id, domain.StatusNoShow, domain.StatusPending, domain.StatusConfirmed)
}

// Purge физически удаляет отмененное бронирование вместе с его записями в outbox
// Административная операция: копия в удаленном хранилище не удаляется
func (s *Service) Purge(ctx context.Context, id string) error {
	s.logger.Info("Purge: purging booking id=%s", id)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError("Purge", id, err)
		}

		if current.Status != domain.StatusCancelled {
			s.logger.Warn("Purge: booking id=%s is not cancelled, status=%s", id, current.Status)
			return fmt.Errorf("%w: only cancelled bookings can be purged, status=%s", ErrInvalidTransition, current.Status)
		}

		if err := s.outboxRepo.DeleteByRecord(txCtx, domain.CollectionBookings, id); err != nil {
			s.logger.Error("Purge: failed to delete outbox entries for booking id=%s: %v", id, err)
			return fmt.Errorf("%w: Purge - outbox error: %v", ErrInternal, err)
		}

		if err := s.bookingRepo.Delete(txCtx, id); err != nil {
			return s.mapRepoError("Purge", id, err)
		}
		return nil
	})
	s.observe("purge", err)
	if err != nil {
		return err
	}

	s.logger.Info("Purge: successfully purged booking id=%s", id)
	return nil
}

// Вспомогательные методы

// transition общий путь смены статуса с проверкой допустимых предшественников
func (s *Service) transition(
	ctx context.Context,
	operation string,
	id string,
	target domain.BookingStatus,
	allowedFrom ...domain.BookingStatus,
) (*models.BookingResponse, error) {
	s.logger.Info("Transition: %s booking id=%s -> %s", operation, id, target)

	var result *domain.Booking

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		current, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(operation, id, err)
		}

		if !statusIn(current.Status, allowedFrom) {
			s.logger.Warn("Transition: %s not allowed for booking id=%s in status=%s", operation, id, current.Status)
			return fmt.Errorf("%w: %s from status=%s", ErrInvalidTransition, operation, current.Status)
		}

		updated := current.Clone()
		updated.Status = target

		if err := s.persist(txCtx, updated, operation); err != nil {
			return err
		}

		result = updated
		return nil
	})
	s.observe(operation, err)
	if err != nil {
		return nil, err
	}

	s.trigger.Kick()

	s.logger.Info("Transition: booking id=%s is now %s", id, result.Status)
	return models.FromDomainBooking(result), nil
}

// persist сохраняет запись и фиксирует изменение в outbox в текущей транзакции
func (s *Service) persist(txCtx context.Context, b *domain.Booking, operation string) error {
	now := s.timeProvider.Now()
	b.UpdatedAt = now
	b.PendingSync = true

	if err := s.bookingRepo.Update(txCtx, b); err != nil {
		return s.mapRepoError(operation, b.ID, err)
	}

	if _, err := s.outboxRepo.Append(txCtx, &domain.OutboxEntry{
		Collection: domain.CollectionBookings,
		RecordID:   b.ID,
		Operation:  domain.OutboxUpdate,
		CreatedAt:  now,
	}); err != nil {
		s.logger.Error("%s: failed to append outbox entry for booking id=%s: %v", operation, b.ID, err)
		return fmt.Errorf("%w: %s - outbox error: %v", ErrInternal, operation, err)
	}
	return nil
}

// offerToWaitlist ошибки очереди ожидания не влияют на результат операции
func (s *Service) offerToWaitlist(ctx context.Context, slot domain.Slot) {
	if s.waitlist == nil {
		return
	}
	entry, err := s.waitlist.OnSlotFreed(ctx, slot)
	if err != nil {
		s.logger.Error("Waitlist: failed to offer slot resource=%d date=%s start=%s: %v",
			slot.ResourceID, slot.Date.Format(domain.DateFormat), slot.StartTime, err)
		return
	}
	if entry != nil {
		s.logger.Info("Waitlist: slot resource=%d date=%s start=%s offered to entry id=%s",
			slot.ResourceID, slot.Date.Format(domain.DateFormat), slot.StartTime, entry.ID)
	}
}

func (s *Service) mapRepoError(operation, id string, err error) error {
	if errors.Is(err, bookingRepo.ErrBookingNotFound) {
		s.logger.Warn("%s: booking id=%s not found", operation, id)
		return fmt.Errorf("%w: id=%s", ErrBookingNotFound, id)
	}
	s.logger.Error("%s: repository error for booking id=%s: %v", operation, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, operation, err)
}

func (s *Service) observe(operation string, err error) {
	if s.metrics != nil {
		s.metrics.IncBookingOperation(operation, err)
	}
}

func statusIn(status domain.BookingStatus, allowed []domain.BookingStatus) bool {
	for _, a := range allowed {
		if status == a {
			return true
		}
	}
	return false
}
