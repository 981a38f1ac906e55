package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BayLedger/pkg/dbmetrics"
)

func openDB(t *testing.T) *dbmetrics.DB {
	t.Helper()

	raw, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tx.db"))
	require.NoError(t, err)
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = raw.Close() })

	_, err = raw.Exec(`CREATE TABLE items (name TEXT NOT NULL)`)
	require.NoError(t, err)

	return dbmetrics.Wrap(raw, nil, "test")
}

func countItems(t *testing.T, db dbmetrics.DBExecutor) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestManager_CommitsOnSuccess(t *testing.T) {
	db := openDB(t)
	m := NewTransactionManager(db)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		_, err := dbmetrics.GetExecutor(ctx, db).ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countItems(t, db))
}

func TestManager_RollsBackOnError(t *testing.T) {
	db := openDB(t)
	m := NewTransactionManager(db)
	boom := errors.New("boom")

	err := m.Do(context.Background(), func(ctx context.Context) error {
		if _, err := dbmetrics.GetExecutor(ctx, db).ExecContext(ctx, `INSERT INTO items (name) VALUES (?)`, "a"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countItems(t, db))
}

func TestManager_NestedReusesTransaction(t *testing.T) {
	db := openDB(t)
	m := NewTransactionManager(db)

	err := m.Do(context.Background(), func(outer context.Context) error {
		return m.Do(outer, func(inner context.Context) error {
			outerTx, _ := dbmetrics.TxFromContext(outer)
			innerTx, _ := dbmetrics.TxFromContext(inner)
			assert.Same(t, outerTx, innerTx)
			_, err := dbmetrics.GetExecutor(inner, db).ExecContext(inner, `INSERT INTO items (name) VALUES (?)`, "nested")
			return err
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countItems(t, db))
}
