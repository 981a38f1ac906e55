package membership

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, time.Second, logger.NewWithWriter(io.Discard, "error"))
}

func TestClient_GetActive(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/memberships/active", r.URL.Path)
		switch r.URL.Query().Get("customer") {
		case "gold member":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"customer_id":"gold member","tier":"gold","active":true}`))
		case "lapsed":
			_, _ = w.Write([]byte(`{"customer_id":"lapsed","tier":"silver","active":false}`))
		case "broken":
			_, _ = w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	m, err := client.GetActive(ctx, "gold member")
	require.NoError(t, err)
	assert.Equal(t, "gold", m.Tier)

	_, err = client.GetActive(ctx, "lapsed")
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	_, err = client.GetActive(ctx, "nobody")
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	_, err = client.GetActive(ctx, "broken")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_GracefulDegradation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("customer") == "nobody" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx := context.Background()

	tier, err := client.GetTierWithGracefulDegradation(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, tier)

	tier, err = client.GetTierWithGracefulDegradation(ctx, "anyone")
	assert.ErrorIs(t, err, ErrServiceDegraded)
	assert.Nil(t, tier)
}
