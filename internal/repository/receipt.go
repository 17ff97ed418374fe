package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/snapceipt/snapceipt/internal/common"
	"github.com/snapceipt/snapceipt/internal/entity"
	"github.com/snapceipt/snapceipt/internal/storage"
)

const (
	insertReceiptSQL = `INSERT INTO receipts (store_name, purchase_date, image_path, created_at)
        VALUES (?, ?, ?, ?)`
	updateReceiptSQL = `UPDATE receipts
        SET store_name = ?, purchase_date = ?, image_path = ?, created_at = ?
        WHERE id = ?`
	deleteReceiptSQL = `DELETE FROM receipts WHERE id = ?`
	selectReceiptSQL = `SELECT id, store_name, purchase_date, image_path, created_at
        FROM receipts`

	insertItemSQL = `INSERT INTO receipt_items (receipt_id, product_name, price, category, quantity)
        VALUES (?, ?, ?, ?, ?)`
	updateItemSQL = `UPDATE receipt_items
        SET receipt_id = ?, product_name = ?, price = ?, category = ?, quantity = ?
        WHERE id = ?`
	deleteItemSQL = `DELETE FROM receipt_items WHERE id = ?`
	selectItemSQL = `SELECT id, receipt_id, product_name, price, category, quantity
        FROM receipt_items`
)

// ReceiptRepository implements receipt CRUD and the one composite save that
// must be atomic. Lookups never populate Items; callers needing the full
// aggregate use GetWithItems.
type ReceiptRepository interface {
	GetAll(ctx context.Context) ([]*entity.Receipt, error)
	GetByID(ctx context.Context, id int64) (*entity.Receipt, error)
	GetWithItems(ctx context.Context, id int64) (*entity.Receipt, error)
	Save(ctx context.Context, rec *entity.Receipt) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	GetItemsFor(ctx context.Context, receiptID int64) ([]*entity.ReceiptItem, error)
	SaveItem(ctx context.Context, item *entity.ReceiptItem) (int64, error)
	DeleteItemByID(ctx context.Context, id int64) (int64, error)
	SaveWithItems(ctx context.Context, rec *entity.Receipt, items []*entity.ReceiptItem) (int64, error)
}

type receiptRepository struct {
	store  *storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewReceiptRepository creates a repository over an initialized store.
func NewReceiptRepository(store *storage.Store, logger *slog.Logger) ReceiptRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &receiptRepository{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// GetAll returns every receipt, newest first. Items are not populated.
func (r *receiptRepository) GetAll(ctx context.Context) ([]*entity.Receipt, error) {
	rows, err := r.store.DB().QueryContext(ctx, selectReceiptSQL+` ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("failed to list receipts", "error", err)
		return nil, common.WrapError(err, "list receipts")
	}
	defer rows.Close()

	var recs []*entity.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan receipt")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "list receipts")
	}
	return recs, nil
}

// GetByID returns the receipt with that id, or common.ErrNotFound.
func (r *receiptRepository) GetByID(ctx context.Context, id int64) (*entity.Receipt, error) {
	row := r.store.DB().QueryRowContext(ctx, selectReceiptSQL+` WHERE id = ?`, id)
	rec, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get receipt", "id", id, "error", err)
		return nil, common.WrapError(err, "get receipt")
	}
	return rec, nil
}

// GetWithItems returns the receipt with its line items attached, or
// common.ErrNotFound when the parent does not exist. There is no partial
// result: a missing parent never yields an items-only receipt.
func (r *receiptRepository) GetWithItems(ctx context.Context, id int64) (*entity.Receipt, error) {
	rec, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := r.GetItemsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Items = items
	for _, item := range items {
		item.Receipt = rec
	}
	return rec, nil
}

// Save inserts when the receipt has no id yet, otherwise updates in place.
// The assigned id is written back onto the receipt and returned.
func (r *receiptRepository) Save(ctx context.Context, rec *entity.Receipt) (int64, error) {
	id, err := r.save(ctx, r.store.DB(), rec)
	if err != nil {
		r.logger.Error("failed to save receipt", "id", rec.ID, "error", err)
		return 0, err
	}
	return id, nil
}

// DeleteByID removes the receipt row only and reports how many rows went
// away (0 or 1). Line items are deliberately left behind; cleaning them up
// is the caller's concern.
func (r *receiptRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	n, err := storage.Exec(ctx, r.store.DB(), deleteReceiptSQL, id)
	if err != nil {
		r.logger.Error("failed to delete receipt", "id", id, "error", err)
		return 0, err
	}
	r.logger.Info("deleted receipt", "id", id, "rows", n)
	return n, nil
}

// GetItemsFor returns the line items of a receipt in insertion order. A
// receipt with no items yields an empty slice, not an error.
func (r *receiptRepository) GetItemsFor(ctx context.Context, receiptID int64) ([]*entity.ReceiptItem, error) {
	rows, err := r.store.DB().QueryContext(ctx, selectItemSQL+` WHERE receipt_id = ? ORDER BY id`, receiptID)
	if err != nil {
		r.logger.Error("failed to list items", "receipt_id", receiptID, "error", err)
		return nil, common.WrapError(err, "list items")
	}
	defer rows.Close()

	items := make([]*entity.ReceiptItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "list items")
	}
	return items, nil
}

// SaveItem inserts or updates a single line item, keyed on item.ID == 0.
func (r *receiptRepository) SaveItem(ctx context.Context, item *entity.ReceiptItem) (int64, error) {
	id, err := r.saveItem(ctx, r.store.DB(), item)
	if err != nil {
		r.logger.Error("failed to save item", "id", item.ID, "error", err)
		return 0, err
	}
	return id, nil
}

// DeleteItemByID removes one line item and reports the rows-affected count.
func (r *receiptRepository) DeleteItemByID(ctx context.Context, id int64) (int64, error) {
	n, err := storage.Exec(ctx, r.store.DB(), deleteItemSQL, id)
	if err != nil {
		r.logger.Error("failed to delete item", "id", id, "error", err)
		return 0, err
	}
	return n, nil
}

// SaveWithItems writes the receipt and every supplied item in one
// transaction: save the parent to obtain its id, stamp that id onto each
// item (overwriting any prior ReceiptID), then save the items in order. On
// any failure the whole write rolls back and the receipt keeps the id it
// had before the call; ReceiptID fields already stamped onto items are not
// reverted, so a failed call must be retried from scratch.
func (r *receiptRepository) SaveWithItems(ctx context.Context, rec *entity.Receipt, items []*entity.ReceiptItem) (int64, error) {
	priorID := rec.ID
	err := r.store.InTransaction(ctx, func(q storage.Queryer) error {
		id, err := r.save(ctx, q, rec)
		if err != nil {
			return err
		}
		for _, item := range items {
			item.ReceiptID = id
			if _, err := r.saveItem(ctx, q, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		rec.ID = priorID
		r.logger.Error("failed to save receipt with items",
			"id", priorID, "items", len(items), "error", err)
		return 0, err
	}
	r.logger.Info("saved receipt with items", "id", rec.ID, "items", len(items))
	return rec.ID, nil
}

func (r *receiptRepository) save(ctx context.Context, q storage.Queryer, rec *entity.Receipt) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}
	if rec.ID == 0 {
		id, err := storage.Insert(ctx, q, insertReceiptSQL,
			rec.StoreName, rec.PurchaseDate, rec.ImagePath, rec.CreatedAt)
		if err != nil {
			return 0, err
		}
		rec.ID = id
		return id, nil
	}
	// Updating a row that no longer exists affects zero rows and is not an
	// error; the id is returned unchanged either way.
	if _, err := storage.Exec(ctx, q, updateReceiptSQL,
		rec.StoreName, rec.PurchaseDate, rec.ImagePath, rec.CreatedAt, rec.ID); err != nil {
		return 0, err
	}
	return rec.ID, nil
}

func (r *receiptRepository) saveItem(ctx context.Context, q storage.Queryer, item *entity.ReceiptItem) (int64, error) {
	if item.Quantity == 0 {
		item.Quantity = entity.DefaultQuantity
	}
	if item.ID == 0 {
		id, err := storage.Insert(ctx, q, insertItemSQL,
			item.ReceiptID, item.ProductName, item.Price, item.Category, item.Quantity)
		if err != nil {
			return 0, err
		}
		item.ID = id
		return id, nil
	}
	if _, err := storage.Exec(ctx, q, updateItemSQL,
		item.ReceiptID, item.ProductName, item.Price, item.Category, item.Quantity, item.ID); err != nil {
		return 0, err
	}
	return item.ID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (*entity.Receipt, error) {
	var (
		rec       entity.Receipt
		storeName sql.NullString
		imagePath sql.NullString
	)
	if err := row.Scan(&rec.ID, &storeName, &rec.PurchaseDate, &imagePath, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.StoreName = storeName.String
	rec.ImagePath = imagePath.String
	return &rec, nil
}

func scanItem(row rowScanner) (*entity.ReceiptItem, error) {
	var (
		item        entity.ReceiptItem
		productName sql.NullString
		category    sql.NullString
	)
	if err := row.Scan(&item.ID, &item.ReceiptID, &productName, &item.Price, &category, &item.Quantity); err != nil {
		return nil, err
	}
	item.ProductName = productName.String
	item.Category = category.String
	return &item, nil
}
