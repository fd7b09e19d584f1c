// Package stockentry maintains the append-style log of stock receipts:
// initial stock, restocks, and purchase order applications. The log is the
// basis for supplier balance reconciliation.
package stockentry

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
)

// EntryType classifies how stock arrived.
type EntryType string

const (
	TypeInitialStock  EntryType = "initial_stock"
	TypeRestock       EntryType = "restock"
	TypePurchaseOrder EntryType = "purchase_order"
)

// Entry is a single stock receipt record.
type Entry struct {
	entity.BaseEntity

	ProductID  id.ID  `db:"product_id" json:"productId"`
	StoreID    string `db:"store_id" json:"storeId"`
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	Unit        string         `db:"unit" json:"unit"`
	BuyingPrice types.Money    `db:"buying_price" json:"buyingPrice"`
	TotalCost   types.Money    `db:"total_cost" json:"totalCost"`

	EntryType EntryType `db:"entry_type" json:"entryType"`

	// IsInitial marks the entry that seeded the product's stock. Exactly one
	// per product under normal operation; when history contains duplicates
	// the oldest wins.
	IsInitial bool `db:"is_initial" json:"isInitial"`

	// ReferenceID links purchase-order entries back to their document.
	ReferenceID *id.ID `db:"reference_id" json:"referenceId,omitempty"`

	InvoiceNumber string     `db:"invoice_number" json:"invoiceNumber,omitempty"`
	InvoiceDate   *time.Time `db:"invoice_date" json:"invoiceDate,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewEntry creates an Entry with generated ID and computed total cost.
func NewEntry(productID id.ID, storeID string, entryType EntryType, qty types.Quantity, price types.Money) *Entry {
	return &Entry{
		BaseEntity:  entity.NewBaseEntity(),
		ProductID:   productID,
		StoreID:     storeID,
		EntryType:   entryType,
		Quantity:    qty,
		Unit:        "pcs",
		BuyingPrice: price,
		TotalCost:   TotalCost(qty, price),
		IsInitial:   entryType == TypeInitialStock,
		CreatedAt:   time.Now().UTC(),
	}
}

// TotalCost computes quantity * unit price as Money.
func TotalCost(qty types.Quantity, price types.Money) types.Money {
	return price.Mul(types.NewMoney(qty.Float64()))
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "productId")
	}
	if e.StoreID == "" {
		return apperror.NewValidation("store is required").WithDetail("field", "storeId")
	}
	if !e.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if e.BuyingPrice.IsNegative() {
		return apperror.NewValidation("buying price cannot be negative").WithDetail("field", "buyingPrice")
	}

	switch e.EntryType {
	case TypeInitialStock, TypeRestock, TypePurchaseOrder:
	default:
		return apperror.NewValidation("unknown entry type").
			WithDetail("field", "entryType").
			WithDetail("value", string(e.EntryType))
	}

	return nil
}
