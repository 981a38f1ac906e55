package outbox

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
	"github.com/m04kA/SMC-BayLedger/internal/infra/storage/sqlite"
	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	raw, err := sqlite.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return NewRepository(dbmetrics.Wrap(raw, nil, "test"))
}

func appendEntry(t *testing.T, repo *Repository, recordID string, op domain.OutboxOperation) int64 {
	t.Helper()
	seq, err := repo.Append(context.Background(), &domain.OutboxEntry{
		Collection: domain.CollectionBookings,
		RecordID:   recordID,
		Operation:  op,
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return seq
}

func TestRepository_AppendListDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	s1 := appendEntry(t, repo, "b-1", domain.OutboxCreate)
	s2 := appendEntry(t, repo, "b-2", domain.OutboxCreate)
	s3 := appendEntry(t, repo, "b-1", domain.OutboxUpdate)
	assert.Less(t, s1, s2)
	assert.Less(t, s2, s3)

	pending, err := repo.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, s1, pending[0].Seq)
	assert.Equal(t, domain.OutboxUpdate, pending[2].Operation)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// запись, добавленная после отправки, остается
	require.NoError(t, repo.DeleteUpTo(ctx, domain.CollectionBookings, "b-1", s1))
	has, err := repo.HasEntries(ctx, domain.CollectionBookings, "b-1")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, repo.DeleteByRecord(ctx, domain.CollectionBookings, "b-1"))
	has, err = repo.HasEntries(ctx, domain.CollectionBookings, "b-1")
	require.NoError(t, err)
	assert.False(t, has)

	limited, err := repo.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b-2", limited[0].RecordID)
}

func TestRepository_MarkFailed(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	seq := appendEntry(t, repo, "b-1", domain.OutboxCreate)
	require.NoError(t, repo.MarkFailed(ctx, domain.CollectionBookings, "b-1", seq, "connection refused"))
	require.NoError(t, repo.MarkFailed(ctx, domain.CollectionBookings, "b-1", seq, "timeout"))

	pending, err := repo.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "timeout", *pending[0].LastError)
}
