// Package purchaseorder implements purchase order documents. Applying an
// order moves stock and prices immediately; orders are treated as received
// the moment they are recorded.
package purchaseorder

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
)

// Line is one ordered item.
type Line struct {
	ProductID    id.ID          `json:"productId"`
	ProductName  string         `json:"productName,omitempty"`
	Quantity     types.Quantity `json:"quantity"`
	Unit         string         `json:"unit,omitempty"`
	UnitCost     types.Money    `json:"unitCost"`
	SellingPrice *types.Money   `json:"sellingPrice,omitempty"`
	TotalCost    types.Money    `json:"totalCost"`
}

// PurchaseOrder is a receipt of goods from a supplier.
type PurchaseOrder struct {
	entity.Document

	SupplierID id.ID  `db:"supplier_id" json:"supplierId"`
	Lines      []Line `db:"lines" json:"lines"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	InvoiceNumber string     `db:"invoice_number" json:"invoiceNumber,omitempty"`
	InvoiceDate   *time.Time `db:"invoice_date" json:"invoiceDate,omitempty"`
}

// New creates a PurchaseOrder document.
func New(storeID string, supplierID id.ID) *PurchaseOrder {
	return &PurchaseOrder{
		Document:   entity.NewDocument(storeID),
		SupplierID: supplierID,
	}
}

// ComputeTotals fills per-line and document totals from quantity and cost.
func (po *PurchaseOrder) ComputeTotals() {
	total := types.Zero()
	for i := range po.Lines {
		line := &po.Lines[i]
		line.TotalCost = line.UnitCost.Mul(types.NewMoney(line.Quantity.Float64()))
		total = total.Add(line.TotalCost)
	}
	po.TotalAmount = total
}

// Validate implements entity.Validatable.
func (po *PurchaseOrder) Validate(ctx context.Context) error {
	if err := po.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(po.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	if len(po.Lines) == 0 {
		return apperror.NewValidation("purchase order must have at least one line").
			WithDetail("field", "lines")
	}
	for i, line := range po.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("line product is required").WithDetail("line", i)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").WithDetail("line", i)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("line unit cost cannot be negative").WithDetail("line", i)
		}
	}
	return nil
}
