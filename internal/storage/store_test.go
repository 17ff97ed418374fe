package storage

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapceipt/snapceipt/internal/common"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: time.Second,
	}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestOpen(t *testing.T) {
	t.Run("unwritable path fails with init error", func(t *testing.T) {
		_, err := Open(Config{Path: filepath.Join(t.TempDir(), "missing", "nested", "test.db")}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrStorageInit))
	})

	t.Run("init is idempotent", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Init(context.Background()))
		require.NoError(t, store.Init(context.Background()))
	})

	t.Run("health check passes on fresh store", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.HealthCheck(context.Background(), time.Second))
	})
}

func TestRowPrimitives(t *testing.T) {
	ctx := context.Background()

	t.Run("insert assigns increasing ids", func(t *testing.T) {
		store := newTestStore(t)
		first, err := Insert(ctx, store.DB(),
			`INSERT INTO receipts (store_name, created_at) VALUES (?, ?)`, "a", time.Now())
		require.NoError(t, err)
		second, err := Insert(ctx, store.DB(),
			`INSERT INTO receipts (store_name, created_at) VALUES (?, ?)`, "b", time.Now())
		require.NoError(t, err)
		assert.Positive(t, first)
		assert.Equal(t, first+1, second)
	})

	t.Run("update of missing row is a zero-row no-op", func(t *testing.T) {
		store := newTestStore(t)
		n, err := Exec(ctx, store.DB(),
			`UPDATE receipts SET store_name = ? WHERE id = ?`, "nobody", 12345)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("write failure maps to write error", func(t *testing.T) {
		store := newTestStore(t)
		_, err := Insert(ctx, store.DB(),
			`INSERT INTO receipt_items (receipt_id) VALUES (NULL)`)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrStorageWrite))
	})
}

func TestInTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits all writes on success", func(t *testing.T) {
		store := newTestStore(t)
		err := store.InTransaction(ctx, func(q Queryer) error {
			for _, name := range []string{"one", "two"} {
				if _, err := Insert(ctx, q,
					`INSERT INTO receipts (store_name, created_at) VALUES (?, ?)`, name, time.Now()); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		var count int
		require.NoError(t, store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("rolls back every write on failure", func(t *testing.T) {
		store := newTestStore(t)
		boom := errors.New("boom")
		err := store.InTransaction(ctx, func(q Queryer) error {
			if _, err := Insert(ctx, q,
				`INSERT INTO receipts (store_name, created_at) VALUES (?, ?)`, "doomed", time.Now()); err != nil {
				return err
			}
			return boom
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrStorageTx))
		assert.True(t, errors.Is(err, boom), "original cause must stay reachable")

		var count int
		require.NoError(t, store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&count))
		assert.Zero(t, count)
	})
}
