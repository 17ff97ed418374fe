package entity

import (
	"github.com/shopspring/decimal"
)

// DefaultQuantity is applied when a line item is saved without a quantity.
const DefaultQuantity = 1

// ReceiptItem represents a single line item on a receipt. The same id
// convention as Receipt applies: 0 means not yet persisted.
type ReceiptItem struct {
	ID          int64           `json:"id"`
	ReceiptID   int64           `json:"receipt_id"`
	ProductName string          `json:"product_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	Quantity    int             `json:"quantity"`

	// Receipt is an in-memory back-reference to the owning receipt.
	// It is never persisted.
	Receipt *Receipt `json:"-"`
}
