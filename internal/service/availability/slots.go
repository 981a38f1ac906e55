package availability

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

// FindFreeSlotsForDate перебирает сетку дня с шагом slotStep для каждого ресурса
// и отмечает, свободен ли интервал заданной длительности с этого начала
func (c *Checker) FindFreeSlotsForDate(date time.Time, durationUnits int, bookings []*domain.Booking) map[int64][]domain.SlotCandidate {
	result := make(map[int64][]domain.SlotCandidate)

	for _, resource := range c.catalog.List() {
		grid := c.generateGrid(date, durationUnits)

		candidates := make([]domain.SlotCandidate, 0, len(grid))
		for _, start := range grid {
			candidates = append(candidates, domain.SlotCandidate{
				StartTime:     start,
				DurationUnits: durationUnits,
				Free:          c.IsSlotFree(resource.ID, date, start, durationUnits, bookings, ""),
			})
		}
		result[resource.ID] = candidates
	}

	return result
}

// generateGrid генерирует все начала слотов от открытия, пока интервал помещается до закрытия
func (c *Checker) generateGrid(date time.Time, durationUnits int) []types.TimeString {
	hours := c.catalog.HoursFor(date)
	if hours.Closed || durationUnits <= 0 {
		return []types.TimeString{}
	}

	open, closeAt := hours.Open.Minutes(), hours.Close.Minutes()
	length := durationUnits * c.unitMinutes

	grid := make([]types.TimeString, 0)
	for start := open; start+length <= closeAt; start += c.slotStepMinutes {
		ts, err := types.NewTimeStringFromMinutes(start)
		if err != nil {
			break
		}
		grid = append(grid, ts)
	}

	return grid
}
