package storage

// Schema DDL. Every statement is idempotent so Init can run on an
// already-populated database file.
const (
	createReceipts = `CREATE TABLE IF NOT EXISTS receipts (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    store_name    TEXT,
    purchase_date TIMESTAMP,
    image_path    TEXT,
    created_at    TIMESTAMP
);`

	createReceiptItems = `CREATE TABLE IF NOT EXISTS receipt_items (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    receipt_id   INTEGER NOT NULL,
    product_name TEXT,
    price        TEXT,
    category     TEXT,
    quantity     INTEGER NOT NULL DEFAULT 1
);`

	// Secondary index for lookup-by-parent. Referential integrity between
	// receipt_items.receipt_id and receipts.id is a write-path contract,
	// not a schema-level constraint.
	createReceiptItemsIndex = `CREATE INDEX IF NOT EXISTS idx_receipt_items_receipt_id
    ON receipt_items (receipt_id);`
)

var schemaStatements = []string{
	createReceipts,
	createReceiptItems,
	createReceiptItemsIndex,
}
