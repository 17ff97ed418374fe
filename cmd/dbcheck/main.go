package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"log/slog"

	"github.com/snapceipt/snapceipt/internal/common"
	"github.com/snapceipt/snapceipt/internal/repository"
	"github.com/snapceipt/snapceipt/internal/storage"
)

// dbcheck opens the configured database file, makes sure the schema exists
// and prints what is in it. Handy for checking a device-synced file.
func main() {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Printf("ERROR: %v", err)
		log.Println("  set SNAPCEIPT_DB_PATH to the database file, e.g. ./snapceipt.db")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := storage.Open(storage.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("ERROR: closing store: %v", err)
		}
	}()

	if err := store.Init(ctx); err != nil {
		log.Fatalf("DB schema: FAIL (%v)", err)
	}
	if err := store.HealthCheck(ctx, 1*time.Second); err != nil {
		log.Fatalf("DB health: FAIL (%v)", err)
	}
	log.Println("DB health: OK")

	receipts := repository.NewReceiptRepository(store, logger)
	recs, err := receipts.GetAll(ctx)
	if err != nil {
		log.Fatalf("listing receipts: %v", err)
	}

	log.Printf("receipts count: %d", len(recs))
	for _, r := range recs {
		items, err := receipts.GetItemsFor(ctx, r.ID)
		if err != nil {
			log.Fatalf("listing items for %d: %v", r.ID, err)
		}
		log.Printf("- [%d] %s (%d items)", r.ID, r.StoreName, len(items))
	}
}
