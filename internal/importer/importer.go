// Package importer loads receipts in bulk from a JSON document. The document
// is validated against a schema before any write, then each receipt and its
// items go through the repository's composite save so every aggregate lands
// atomically.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/snapceipt/snapceipt/internal/common"
	"github.com/snapceipt/snapceipt/internal/entity"
	"github.com/snapceipt/snapceipt/internal/repository"
)

type importItem struct {
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
}

type importReceipt struct {
	StoreName    string       `json:"store_name"`
	PurchaseDate string       `json:"purchase_date"`
	ImagePath    string       `json:"image_path"`
	Items        []importItem `json:"items"`
}

type importDocument struct {
	Receipts []importReceipt `json:"receipts"`
}

// Service validates and persists import documents.
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

// ImportJSON validates data against the import schema and saves every
// receipt with its items. It returns the ids assigned to the imported
// receipts in document order. A schema violation rejects the whole document
// before anything is written; a failed composite save stops the import at
// that receipt, leaving earlier receipts persisted.
func (s *Service) ImportJSON(ctx context.Context, data []byte) ([]int64, error) {
	start := time.Now()
	jobID := uuid.New()

	if err := validateAgainstSchema(BuildImportJSONSchema(), data); err != nil {
		s.logger.Error("import rejected", "job_id", jobID.String(), "error", err)
		return nil, common.NewAppError("IMPORT_INVALID", "document does not match import schema", err)
	}

	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	ids := make([]int64, 0, len(doc.Receipts))
	for i, in := range doc.Receipts {
		purchaseDate, err := time.Parse("2006-01-02", in.PurchaseDate)
		if err != nil {
			return ids, fmt.Errorf("receipt %d: parse purchase_date: %w", i, err)
		}

		rec := entity.NewReceipt(in.StoreName, purchaseDate, in.ImagePath)
		items := make([]*entity.ReceiptItem, 0, len(in.Items))
		for j, it := range in.Items {
			price, err := decimal.NewFromString(it.Price)
			if err != nil {
				return ids, fmt.Errorf("receipt %d item %d: parse price: %w", i, j, err)
			}
			items = append(items, &entity.ReceiptItem{
				ProductName: it.ProductName,
				Price:       price,
				Category:    it.Category,
				Quantity:    it.Quantity,
			})
		}

		id, err := s.receipts.SaveWithItems(ctx, rec, items)
		if err != nil {
			s.logger.Error("import stopped",
				"job_id", jobID.String(), "receipt", i, "imported", len(ids), "error", err)
			return ids, err
		}
		ids = append(ids, id)
	}

	s.logger.Info("import.ok",
		"job_id", jobID.String(),
		"receipts", len(ids),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ids, nil
}

// validateAgainstSchema validates data against schemaMap.
func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
