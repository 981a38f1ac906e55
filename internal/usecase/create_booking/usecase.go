package create_booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/service/bookings/models"
	"github.com/m04kA/SMC-BayLedger/pkg/ptr"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	outboxRepo       OutboxRepository
	catalog          ResourceCatalog
	checker          AvailabilityChecker
	pricing          PriceCalculator
	membershipClient MembershipClient
	txManager        TransactionManager
	trigger          SyncTrigger
	metrics          Metrics
	timeProvider     TimeProvider
	logger           Logger
	maxDuration      int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	outboxRepo OutboxRepository,
	catalog ResourceCatalog,
	checker AvailabilityChecker,
	pricing PriceCalculator,
	membershipClient MembershipClient,
	txManager TransactionManager,
	trigger SyncTrigger,
	metrics Metrics,
	maxDurationUnits int,
	logger Logger,
) *UseCase {
	if maxDurationUnits <= 0 {
		maxDurationUnits = domain.DefaultMaxDurationUnits
	}
	return &UseCase{
		bookingRepo:      bookingRepo,
		outboxRepo:       outboxRepo,
		catalog:          catalog,
		checker:          checker,
		pricing:          pricing,
		membershipClient: membershipClient,
		txManager:        txManager,
		trigger:          trigger,
		metrics:          metrics,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
		maxDuration:      maxDurationUnits,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
// Проверка слота и запись выполняются в одной эксклюзивной транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.BookingResponse, error) {
	booking, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.IncBookingOperation("create", err)
	}
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(booking), nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Booking, error) {
	uc.logger.Info("CreateBooking: resource=%d, date=%s, time=%q, units=%d, customer=%q",
		req.ResourceID, req.Date.Format(domain.DateFormat), req.StartTime, req.DurationUnits, req.CustomerName)

	// 1. Валидация входных данных
	startTime, err := validateRequest(req, uc.maxDuration)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	date := domain.DateOnly(req.Date)

	// 2. Проверяем ресурс в каталоге
	resource, ok := uc.catalog.Get(req.ResourceID)
	if !ok {
		uc.logger.Warn("CreateBooking: resource id=%d not found", req.ResourceID)
		return nil, fmt.Errorf("%w: id=%d", ErrResourceNotFound, req.ResourceID)
	}

	// 3. Определяем уровень членства (до транзакции: сетевой вызов)
	tier := uc.resolveTier(ctx, req)
	if resource.RequiresMembership() && tier == nil {
		uc.logger.Warn("CreateBooking: resource id=%d is members-only, customer=%q has no membership",
			req.ResourceID, req.CustomerName)
		return nil, ErrMembershipRequired
	}

	var result *domain.Booking

	// 4. Эксклюзивная секция: проверка слота и запись бронирования вместе с outbox
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 4.1. Активные бронирования ресурса на эту дату
		bookings, err := uc.bookingRepo.ListActiveForDate(txCtx, date, &req.ResourceID)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 4.2. Проверяем доступность слота
		if !uc.checker.IsSlotFree(req.ResourceID, date, startTime, req.DurationUnits, bookings, "") {
			uc.logger.Warn("CreateBooking: slot resource=%d date=%s start=%s units=%d is not available",
				req.ResourceID, date.Format(domain.DateFormat), startTime, req.DurationUnits)
			return ErrSlotNotAvailable
		}

		// 4.3. Считаем цену, признак пикового времени фиксируется в записи
		price, isPeak := uc.pricing.ComputePrice(req.DurationUnits, date, startTime, tier)
		now := uc.timeProvider.Now()

		booking := &domain.Booking{
			ID:            uuid.NewString(),
			ResourceID:    req.ResourceID,
			Date:          date,
			StartTime:     startTime,
			DurationUnits: req.DurationUnits,
			Customer: domain.CustomerRef{
				Name:       req.CustomerName,
				ExternalID: req.CustomerID,
			},
			Price:       price,
			IsPeak:      isPeak,
			MemberTier:  tier,
			Status:      domain.StatusConfirmed,
			Prepaid:     req.Prepaid,
			PaymentRef:  req.PaymentRef,
			Notes:       req.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
			PendingSync: true,
		}

		// 4.4. Сохраняем бронирование
		if err := uc.bookingRepo.Create(txCtx, booking); err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// 4.5. Фиксируем изменение в outbox в той же транзакции
		if _, err := uc.outboxRepo.Append(txCtx, &domain.OutboxEntry{
			Collection: domain.CollectionBookings,
			RecordID:   booking.ID,
			Operation:  domain.OutboxCreate,
			CreatedAt:  now,
		}); err != nil {
			uc.logger.Error("CreateBooking: failed to append outbox entry: %v", err)
			return fmt.Errorf("%w: failed to append outbox entry: %v", ErrInternal, err)
		}

		result = booking
		return nil
	})

	if err != nil {
		return nil, err
	}

	// 5. Асинхронная отправка: ошибка сети не влияет на результат
	uc.trigger.Kick()

	uc.logger.Info("CreateBooking: successfully created booking id=%s, final=%d, peak=%t",
		result.ID, result.Price.Final, result.IsPeak)
	return result, nil
}

// resolveTier возвращает явно указанный уровень или ищет активное членство
// Ошибка сервиса членства не блокирует бронирование: цена считается без скидки
func (uc *UseCase) resolveTier(ctx context.Context, req *Request) *string {
	if req.MemberTier != nil && *req.MemberTier != "" {
		if !uc.pricing.HasTier(*req.MemberTier) {
			uc.logger.Warn("CreateBooking: unknown member tier %q, pricing as non-member", *req.MemberTier)
			return nil
		}
		return ptr.Ptr(*req.MemberTier)
	}

	if uc.membershipClient == nil {
		return nil
	}

	lookupKey := req.CustomerName
	if req.CustomerID != nil && *req.CustomerID != "" {
		lookupKey = *req.CustomerID
	}

	tier, err := uc.membershipClient.GetTierWithGracefulDegradation(ctx, lookupKey)
	if err != nil {
		uc.logger.Warn("CreateBooking: membership lookup degraded for customer=%q: %v", lookupKey, err)
		return nil
	}
	if tier != nil && !uc.pricing.HasTier(*tier) {
		uc.logger.Warn("CreateBooking: membership tier %q is not configured, pricing as non-member", *tier)
		return nil
	}
	return tier
}
