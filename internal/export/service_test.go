package export

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/snapceipt/snapceipt/internal/entity"
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

func TestExportReceiptsXLSX(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store produces a header-only sheet", func(t *testing.T) {
		svc, _ := newTestService(t)
		data, err := svc.ExportReceiptsXLSX(ctx)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		rows, err := f.GetRows("Receipts")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Receipt ID", rows[0][0])
	})

	t.Run("one row per item, itemless receipts still listed", func(t *testing.T) {
		svc, receipts := newTestService(t)

		withItems := entity.NewReceipt("SuperMart", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), "/img/a.jpg")
		_, err := receipts.SaveWithItems(ctx, withItems, []*entity.ReceiptItem{
			{ProductName: "Milk", Price: decimal.RequireFromString("3.99"), Quantity: 2},
			{ProductName: "Eggs", Price: decimal.RequireFromString("4.25")},
		})
		require.NoError(t, err)

		bare := entity.NewReceipt("Corner Shop", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), "")
		_, err = receipts.Save(ctx, bare)
		require.NoError(t, err)

		data, err := svc.ExportReceiptsXLSX(ctx)
		require.NoError(t, err)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		rows, err := f.GetRows("Receipts")
		require.NoError(t, err)
		require.Len(t, rows, 4, "header + 2 item rows + 1 bare receipt row")

		stores := map[string]bool{}
		for _, row := range rows[1:] {
			stores[row[1]] = true
		}
		assert.True(t, stores["SuperMart"])
		assert.True(t, stores["Corner Shop"])
	})
}
