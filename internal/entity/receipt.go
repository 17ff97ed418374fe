package entity

import (
	"time"
)

// Receipt represents a stored receipt for data transfer between layers.
// ID 0 means the receipt has not been persisted yet; the storage engine
// assigns the id on insert and it is immutable afterwards.
type Receipt struct {
	ID           int64     `json:"id"`
	StoreName    string    `json:"store_name,omitempty"`
	PurchaseDate time.Time `json:"purchase_date"`
	ImagePath    string    `json:"image_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	// Items is an in-memory view of the receipt's line items. It is only
	// populated by an explicit aggregate read; plain lookups leave it nil.
	Items []*ReceiptItem `json:"items,omitempty"`
}

// NewReceipt constructs an unpersisted receipt stamped with the current time.
func NewReceipt(storeName string, purchaseDate time.Time, imagePath string) *Receipt {
	return &Receipt{
		StoreName:    storeName,
		PurchaseDate: purchaseDate,
		ImagePath:    imagePath,
		CreatedAt:    time.Now(),
	}
}
