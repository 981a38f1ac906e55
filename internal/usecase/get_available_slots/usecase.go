package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// UseCase use case для получения сетки доступных слотов
type UseCase struct {
	bookingRepo BookingRepository
	catalog     ResourceCatalog
	finder      SlotFinder
	logger      Logger
	maxDuration int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalog ResourceCatalog,
	finder SlotFinder,
	maxDurationUnits int,
	logger Logger,
) *UseCase {
	if maxDurationUnits <= 0 {
		maxDurationUnits = domain.DefaultMaxDurationUnits
	}
	return &UseCase{
		bookingRepo: bookingRepo,
		catalog:     catalog,
		finder:      finder,
		logger:      logger,
		maxDuration: maxDurationUnits,
	}
}

// Execute выполняет use case получения доступных слотов
// Используется и для показа сетки, и для повторного предложения слотов после ErrSlotUnavailable
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: date=%s, units=%d", req.Date.Format(domain.DateFormat), req.DurationUnits)

	// 1. Валидация входных данных
	if err := validateRequest(req, uc.maxDuration); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}
	units := req.DurationUnits
	if units == 0 {
		units = 1
	}
	date := domain.DateOnly(req.Date)

	// 2. Определяем набор ресурсов
	resources := uc.catalog.List()
	if req.ResourceID != nil {
		resource, ok := uc.catalog.Get(*req.ResourceID)
		if !ok {
			uc.logger.Warn("GetAvailableSlots: resource id=%d not found", *req.ResourceID)
			return nil, fmt.Errorf("%w: id=%d", ErrResourceNotFound, *req.ResourceID)
		}
		resources = []domain.Resource{resource}
	}

	resp := &Response{
		Date:          date,
		DurationUnits: units,
		Closed:        uc.catalog.HoursFor(date).Closed,
		Resources:     make([]ResourceGrid, 0, len(resources)),
	}

	// 3. Получаем активные бронирования на дату
	bookings, err := uc.bookingRepo.ListActiveForDate(ctx, date, req.ResourceID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 4. Строим сетку по каждому ресурсу
	candidates := uc.finder.FindFreeSlotsForDate(date, units, bookings)
	for _, resource := range resources {
		grid := ResourceGrid{
			ResourceID: resource.ID,
			Label:      resource.Label,
			Category:   string(resource.Category),
			Slots:      make([]Slot, 0, len(candidates[resource.ID])),
		}
		for _, c := range candidates[resource.ID] {
			grid.Slots = append(grid.Slots, Slot{StartTime: c.StartTime, Free: c.Free})
			if c.Free {
				grid.FreeCount++
			}
		}
		grid.SoldOut = grid.FreeCount == 0
		resp.Resources = append(resp.Resources, grid)
	}

	uc.logger.Info("GetAvailableSlots: built grid for %d resources on %s", len(resp.Resources), date.Format(domain.DateFormat))
	return resp, nil
}
