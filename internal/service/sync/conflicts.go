package sync

import (
	"sort"
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// detectConflicts ищет пересекающиеся активные бронирования на одном ресурсе и дате
// Каждая пара возвращается один раз, с упорядоченными id
func detectConflicts(bookings []*domain.Booking, unitMinutes int, detectedAt time.Time) []*domain.ReconciliationConflict {
	type dayKey struct {
		resourceID int64
		date       string
	}

	groups := make(map[dayKey][]*domain.Booking)
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		key := dayKey{resourceID: b.ResourceID, date: b.Date.Format(domain.DateFormat)}
		groups[key] = append(groups[key], b)
	}

	conflicts := make([]*domain.ReconciliationConflict, 0)
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })

		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.ID == b.ID || !a.Overlaps(b, unitMinutes) {
					continue
				}
				conflicts = append(conflicts, &domain.ReconciliationConflict{
					BookingA:   a.ID,
					BookingB:   b.ID,
					ResourceID: a.ResourceID,
					Date:       domain.DateOnly(a.Date),
					Status:     domain.ConflictOpen,
					DetectedAt: detectedAt,
				})
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].PairKey() < conflicts[j].PairKey()
	})
	return conflicts
}

// freedSlots слоты, освобожденные удаленной отменой локально активного бронирования
func freedSlots(items []MergeItem[*domain.Booking]) []domain.Slot {
	slots := make([]domain.Slot, 0)
	for _, item := range items {
		if item.Decision != DecisionRemoteNewer {
			continue
		}
		if item.Local.IsActive() && !item.Remote.IsActive() {
			slots = append(slots, domain.Slot{
				ResourceID:    item.Local.ResourceID,
				Date:          item.Local.Date,
				StartTime:     item.Local.StartTime,
				DurationUnits: item.Local.DurationUnits,
			})
		}
	}
	return slots
}
