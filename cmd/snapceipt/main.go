package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"

	"github.com/snapceipt/snapceipt/internal/common"
	"github.com/snapceipt/snapceipt/internal/export"
	"github.com/snapceipt/snapceipt/internal/importer"
	"github.com/snapceipt/snapceipt/internal/repository"
	"github.com/snapceipt/snapceipt/internal/storage"
)

func main() {
	exportPath := flag.String("export", "", "write an XLSX export of all receipts to this path (empty name picks one)")
	importPath := flag.String("import", "", "import receipts from a JSON document at this path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := storage.Open(storage.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
	}, logger)
	if err != nil {
		logger.Error("opening store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing store", "error", err)
		}
	}()

	if err := store.Init(ctx); err != nil {
		logger.Error("initializing store", "error", err)
		os.Exit(1)
	}
	if err := store.HealthCheck(ctx, 3*time.Second); err != nil {
		logger.Error("store health failed", "error", err)
		os.Exit(1)
	}

	receipts := repository.NewReceiptRepository(store, logger)

	if *importPath != "" {
		data, err := os.ReadFile(*importPath)
		if err != nil {
			logger.Error("reading import document", "path", *importPath, "error", err)
			os.Exit(1)
		}
		ids, err := importer.NewService(receipts, logger).ImportJSON(ctx, data)
		if err != nil {
			logger.Error("import failed", "imported", len(ids), "error", err)
			os.Exit(1)
		}
		logger.Info("import complete", "receipts", len(ids))
	}

	recs, err := receipts.GetAll(ctx)
	if err != nil {
		logger.Error("listing receipts", "error", err)
		os.Exit(1)
	}
	logger.Info("receipts", "count", len(recs))
	for _, rec := range recs {
		logger.Info("receipt",
			"id", rec.ID,
			"store", rec.StoreName,
			"purchase_date", rec.PurchaseDate.Format("2006-01-02"),
		)
	}

	if *exportPath != "" {
		out := *exportPath
		if out == "auto" {
			out = export.Filename(uuid.New())
		}
		data, err := export.NewService(receipts, logger).ExportReceiptsXLSX(ctx)
		if err != nil {
			logger.Error("export failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			logger.Error("writing export", "path", out, "error", err)
			os.Exit(1)
		}
		logger.Info("export written", "path", out)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("SNAPCEIPT_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
