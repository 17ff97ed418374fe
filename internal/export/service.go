package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/snapceipt/snapceipt/internal/repository"
)

// Service is a tiny façade over the receipt repository that produces XLSX
// bytes for exports.
type Service struct {
	receipts repository.ReceiptRepository
	logger   *slog.Logger
}

func NewService(receipts repository.ReceiptRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{receipts: receipts, logger: logger}
}

// Filename returns a fresh export file name tagged with the job id.
func Filename(jobID uuid.UUID) string {
	return fmt.Sprintf("receipts-%s-%s.xlsx", time.Now().Format("20060102"), jobID)
}

// ExportReceiptsXLSX returns an XLSX workbook (as bytes) containing every
// receipt with its line items, one row per item. Receipts without items
// still get a row so the export is a complete inventory.
func (s *Service) ExportReceiptsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	jobID := uuid.New()

	recs, err := s.receipts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Receipt ID",
		"Store",
		"Purchase Date",
		"Product",
		"Category",
		"Quantity",
		"Price",
		"Image Path",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	rows := 0
	for _, rec := range recs {
		full, err := s.receipts.GetWithItems(ctx, rec.ID)
		if err != nil {
			return nil, fmt.Errorf("query items for receipt %d: %w", rec.ID, err)
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		writeReceipt := func() {
			write(1, rec.ID)
			write(2, rec.StoreName)
			if !rec.PurchaseDate.IsZero() {
				write(3, rec.PurchaseDate.Format("2006-01-02"))
			} else {
				write(3, "")
			}
			write(8, rec.ImagePath)
		}

		if len(full.Items) == 0 {
			writeReceipt()
			row++
			rows++
			continue
		}
		for _, item := range full.Items {
			writeReceipt()
			write(4, item.ProductName)
			write(5, item.Category)
			write(6, item.Quantity)
			write(7, item.Price.String())
			row++
			rows++
		}
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "B", "B", 24) // store
	_ = f.SetColWidth(sheet, "C", "C", 14) // date
	_ = f.SetColWidth(sheet, "D", "D", 28) // product
	_ = f.SetColWidth(sheet, "E", "E", 18) // category
	_ = f.SetColWidth(sheet, "H", "H", 48) // path

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"job_id", jobID.String(),
		"receipts", len(recs),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
