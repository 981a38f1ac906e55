package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

const minimalConfig = `
[pricing]
hourly_rate = 4000

[[pricing.durations]]
units = 2
price = 7500

[pricing.peak]
mode = "flat"
flat_surcharge = 500

[pricing.peak.weekday]
start_hour = 17
end_hour = 21

[[pricing.tiers]]
name = "unlimited"
unlimited = true

[[resources]]
id = 3
label = "Bay 3"

[[resources]]
id = 4
label = "Members Bay"
category = "members_only"

[hours.tuesday]
open = "09:00"
close = "22:00"
`

func TestParse_DefaultsAndDomain(t *testing.T) {
	cfg, err := Parse(minimalConfig)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30, cfg.Sync.IntervalSeconds)
	assert.Equal(t, 60, cfg.Booking.TimeUnitMinutes)
	assert.Equal(t, 60, cfg.Booking.SlotStepMinutes)
	assert.Equal(t, "log", cfg.Notifier.Kind)

	catalog, err := cfg.Catalog()
	require.NoError(t, err)

	bay, ok := catalog.Get(3)
	require.True(t, ok)
	assert.Equal(t, domain.CategoryGeneral, bay.Category)
	assert.Equal(t, 1, bay.Capacity)

	members, ok := catalog.Get(4)
	require.True(t, ok)
	assert.True(t, members.RequiresMembership())

	tuesday := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	hours := catalog.HoursFor(tuesday)
	assert.False(t, hours.Closed)
	assert.Equal(t, "09:00", hours.Open.String())

	monday := tuesday.AddDate(0, 0, -1)
	assert.True(t, catalog.HoursFor(monday).Closed)

	rules := cfg.PricingRules()
	assert.Equal(t, domain.PeakModeFlat, rules.PeakMode)
	assert.Equal(t, int64(7500), rules.DurationPrices[2])
	assert.True(t, rules.Tiers["unlimited"].Unlimited)
}

func TestParse_ValidationErrors(t *testing.T) {
	_, err := Parse(`
[pricing.peak]
mode = "exponential"

[[resources]]
id = 1
category = "vip"

[[resources]]
id = 1

[hours.monday]
open = "22:00"
close = "09:00"
`)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "unknown category")
	assert.Contains(t, err.Error(), "duplicate resource id 1")
	assert.Contains(t, err.Error(), "must be before close")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0o600))

	t.Setenv("BAYLEDGER_REMOTE_PASSWORD", "s3cret")
	t.Setenv("BAYLEDGER_CACHE_PATH", "/tmp/ledger.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Remote.Password)
	assert.Equal(t, "/tmp/ledger.db", cfg.Cache.Path)
	assert.Contains(t, cfg.Remote.DSN(), "sslmode=disable")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
