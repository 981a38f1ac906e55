package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)

	for _, table := range []string{"bookings", "waitlist_entries", "outbox", "reconciliation_conflicts"} {
		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count), table)
	}

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	for i := 0; i < 3; i++ {
		db, err := Open(path)
		require.NoError(t, err, "iteration %d", i)

		var version int
		require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
		assert.Equal(t, currentSchemaVersion, version)
		require.NoError(t, db.Close())
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	date, err := ParseDate("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", FormatDate(date))
	assert.Equal(t, time.UTC, date.Location())

	ts := time.Date(2025, 6, 10, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	parsed, err := ParseTimestamp(FormatTimestamp(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	whole := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	assert.Less(t, FormatTimestamp(whole), FormatTimestamp(whole.Add(500*time.Millisecond)))

	_, err = ParseDate("10/06/2025")
	assert.Error(t, err)
}
