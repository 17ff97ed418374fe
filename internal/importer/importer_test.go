package importer

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapceipt/snapceipt/internal/repository"
	"github.com/snapceipt/snapceipt/internal/storage"
)

func newTestService(t *testing.T) (*Service, repository.ReceiptRepository) {
	t.Helper()
	store, err := storage.Open(storage.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: time.Second,
	}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Init(context.Background()))

	receipts := repository.NewReceiptRepository(store, slog.Default())
	return NewService(receipts, slog.Default()), receipts
}

func TestImportJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("valid document saves every aggregate", func(t *testing.T) {
		svc, receipts := newTestService(t)
		doc := []byte(`{
			"receipts": [
				{
					"store_name": "SuperMart",
					"purchase_date": "2026-03-14",
					"items": [
						{"product_name": "Milk", "price": "3.99", "quantity": 2},
						{"product_name": "Eggs", "price": "4.25"}
					]
				},
				{"purchase_date": "2026-03-15", "store_name": "Corner Shop"}
			]
		}`)

		ids, err := svc.ImportJSON(ctx, doc)
		require.NoError(t, err)
		require.Len(t, ids, 2)

		first, err := receipts.GetWithItems(ctx, ids[0])
		require.NoError(t, err)
		assert.Equal(t, "SuperMart", first.StoreName)
		require.Len(t, first.Items, 2)
		assert.Equal(t, 2, first.Items[0].Quantity)
		assert.Equal(t, 1, first.Items[1].Quantity, "missing quantity defaults to one")

		second, err := receipts.GetWithItems(ctx, ids[1])
		require.NoError(t, err)
		assert.Empty(t, second.Items)
	})

	t.Run("schema violation rejects the document before any write", func(t *testing.T) {
		svc, receipts := newTestService(t)
		doc := []byte(`{
			"receipts": [
				{"purchase_date": "not-a-date", "items": [{"price": "upcharge"}]}
			]
		}`)

		ids, err := svc.ImportJSON(ctx, doc)
		require.Error(t, err)
		assert.Empty(t, ids)

		recs, err := receipts.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, recs, "a rejected document must not leave rows behind")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.ImportJSON(ctx, []byte(`{"receipts": [], "totals": {}}`))
		require.Error(t, err)
	})
}
