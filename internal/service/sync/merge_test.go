package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/ptr"
)

var base = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func rec(id string, updated time.Duration, pending bool, remoteKey *string) *domain.Booking {
	return &domain.Booking{
		ID:            id,
		ResourceID:    1,
		Date:          time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		DurationUnits: 1,
		Status:        domain.StatusConfirmed,
		CreatedAt:     base,
		UpdatedAt:     base.Add(updated),
		RemoteKey:     remoteKey,
		PendingSync:   pending,
	}
}

func decisions(r MergeResult[*domain.Booking]) map[string]Decision {
	out := make(map[string]Decision, len(r.Items))
	for _, item := range r.Items {
		out[item.ID] = item.Decision
	}
	return out
}

func TestMergeRecords_Decisions(t *testing.T) {
	local := []*domain.Booking{
		rec("pending", time.Minute, true, nil),
		rec("stale", time.Minute, false, ptr.Ptr("k-stale")),
		rec("same", time.Minute, false, ptr.Ptr("k-same")),
		rec("newer-local", 2*time.Minute, false, ptr.Ptr("k-newer")),
		rec("local-only", time.Minute, true, nil),
	}
	remote := []*domain.Booking{
		rec("pending", time.Hour, false, ptr.Ptr("k-pending")),
		rec("stale", time.Hour, false, ptr.Ptr("k-stale")),
		rec("same", time.Minute, false, ptr.Ptr("k-same")),
		rec("newer-local", time.Minute, false, ptr.Ptr("k-newer")),
		rec("remote-only", time.Minute, false, ptr.Ptr("k-remote")),
	}

	result := MergeRecords(local, remote)

	assert.Equal(t, map[string]Decision{
		"pending":     DecisionLocalPending,
		"stale":       DecisionRemoteNewer,
		"same":        DecisionNoop,
		"newer-local": DecisionNoop,
		"local-only":  DecisionLocalOnly,
		"remote-only": DecisionRemoteOnly,
	}, decisions(result))

	writes := map[string]*domain.Booking{}
	for _, item := range result.Writes() {
		writes[item.ID] = item.Result
	}
	require.Len(t, writes, 3)

	// локальная неотправленная версия побеждает, заполняется только ключ
	pending := writes["pending"]
	require.NotNil(t, pending)
	assert.True(t, pending.PendingSync)
	assert.Equal(t, base.Add(time.Minute), pending.UpdatedAt)
	assert.Equal(t, "k-pending", *pending.RemoteKey)

	assert.Equal(t, base.Add(time.Hour), writes["stale"].UpdatedAt)
	assert.False(t, writes["remote-only"].PendingSync)
}

func TestMergeRecords_PendingWinsEvenWhenRemoteNewer(t *testing.T) {
	local := []*domain.Booking{rec("b1", 0, true, ptr.Ptr("k1"))}
	remote := []*domain.Booking{rec("b1", time.Hour, false, ptr.Ptr("k1"))}

	result := MergeRecords(local, remote)
	require.Len(t, result.Items, 1)
	assert.Equal(t, DecisionLocalPending, result.Items[0].Decision)
	assert.False(t, result.Items[0].Write)
	assert.Same(t, local[0], result.Items[0].Result)
}

func TestMergeRecords_Idempotent(t *testing.T) {
	local := []*domain.Booking{
		rec("a", time.Minute, false, ptr.Ptr("ka")),
		rec("b", time.Minute, true, nil),
	}
	remote := []*domain.Booking{
		rec("a", time.Hour, false, ptr.Ptr("ka")),
		rec("b", 0, false, ptr.Ptr("kb")),
		rec("c", 0, false, ptr.Ptr("kc")),
	}

	first := MergeRecords(local, remote)
	applied := make([]*domain.Booking, 0, len(first.Items))
	for _, item := range first.Items {
		applied = append(applied, item.Result)
	}

	second := MergeRecords(applied, remote)
	assert.Empty(t, second.Writes())
	for _, item := range second.Items {
		assert.Contains(t, []Decision{DecisionNoop, DecisionLocalPending}, item.Decision, item.ID)
	}
}

func TestMergeRecords_DuplicateRemoteKeepsNewest(t *testing.T) {
	remote := []*domain.Booking{
		rec("a", time.Hour, false, ptr.Ptr("k2")),
		rec("a", time.Minute, false, ptr.Ptr("k1")),
	}

	result := MergeRecords(nil, remote)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "k2", *result.Items[0].Result.RemoteKey)
}

func TestMergeRecords_OrderIndependent(t *testing.T) {
	local := []*domain.Booking{rec("b", 0, false, ptr.Ptr("kb")), rec("a", 0, true, nil)}
	remote := []*domain.Booking{rec("c", 0, false, ptr.Ptr("kc")), rec("b", time.Hour, false, ptr.Ptr("kb"))}

	forward := MergeRecords(local, remote)
	reversed := MergeRecords(
		[]*domain.Booking{local[1], local[0]},
		[]*domain.Booking{remote[1], remote[0]},
	)
	assert.Equal(t, decisions(forward), decisions(reversed))
	assert.Equal(t, 1, forward.Count(DecisionRemoteNewer))
}

func TestDetectConflicts(t *testing.T) {
	a := rec("a", 0, false, nil)
	b := rec("b", 0, false, nil)
	b.StartTime = "10:30"
	c := rec("c", 0, false, nil)
	c.StartTime = "11:00" // вплотную к a, не пересекается
	cancelled := rec("d", 0, false, nil)
	cancelled.Status = domain.StatusCancelled
	otherBay := rec("e", 0, false, nil)
	otherBay.ResourceID = 2

	conflicts := detectConflicts([]*domain.Booking{c, b, a, cancelled, otherBay}, 60, base)
	require.Len(t, conflicts, 2)
	assert.Equal(t, "a|b", conflicts[0].PairKey())
	assert.Equal(t, "b|c", conflicts[1].PairKey())
	assert.Equal(t, domain.ConflictOpen, conflicts[0].Status)
}

func TestFreedSlots(t *testing.T) {
	local := rec("a", 0, false, ptr.Ptr("ka"))
	remote := rec("a", time.Hour, false, ptr.Ptr("ka"))
	remote.Status = domain.StatusCancelled

	result := MergeRecords([]*domain.Booking{local}, []*domain.Booking{remote})
	slots := freedSlots(result.Items)
	require.Len(t, slots, 1)
	assert.Equal(t, "10:00", slots[0].StartTime.String())
}
