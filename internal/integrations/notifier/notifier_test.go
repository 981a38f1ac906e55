package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/pkg/logger"
	"github.com/m04kA/SMC-BayLedger/pkg/ptr"
	"github.com/m04kA/SMC-BayLedger/pkg/types"
)

func notifiedEntry() *domain.WaitlistEntry {
	notifiedAt := time.Date(2026, 3, 2, 17, 5, 0, 0, time.UTC)
	return &domain.WaitlistEntry{
		ID:                 "w-1",
		Customer:           domain.CustomerRef{Name: "Carol", ExternalID: ptr.Ptr("c-9")},
		Date:               time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		DurationUnits:      2,
		Status:             domain.WaitlistNotified,
		NotifiedAt:         &notifiedAt,
		NotifiedResourceID: ptr.Ptr(int64(2)),
		NotifiedStartTime:  ptr.Ptr(types.TimeString("18:00")),
	}
}

func TestWaitlistNotifiedEvent_JSON(t *testing.T) {
	body, err := json.Marshal(NewWaitlistNotifiedEvent(notifiedEntry()))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"entry_id": "w-1",
		"customer_name": "Carol",
		"customer_id": "c-9",
		"date": "2026-03-02",
		"resource_id": 2,
		"start_time": "18:00",
		"duration_units": 2,
		"notified_at": "2026-03-02T17:05:00Z"
	}`, string(body))
}

func TestLogNotifier_Notify(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logger.NewWithWriter(&buf, "info"))

	require.NoError(t, n.Notify(context.Background(), notifiedEntry()))
	assert.Contains(t, buf.String(), "entry=w-1")
	assert.Contains(t, buf.String(), "start=18:00")
	assert.NoError(t, n.Close())
}
