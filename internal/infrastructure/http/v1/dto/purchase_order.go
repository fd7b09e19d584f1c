package dto

import (
	"time"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/documents/purchaseorder"
)

// PurchaseOrderLineRequest is one ordered item.
type PurchaseOrderLineRequest struct {
	ProductID    string         `json:"productId" binding:"required"`
	Quantity     types.Quantity `json:"quantity" binding:"required"`
	UnitCost     types.Money    `json:"unitCost"`
	SellingPrice *types.Money   `json:"sellingPrice"`
	Unit         string         `json:"unit"`
}

// CreatePurchaseOrderRequest records a receipt of goods from a supplier.
type CreatePurchaseOrderRequest struct {
	SupplierID    string                     `json:"supplierId" binding:"required"`
	Date          *time.Time                 `json:"date"`
	Lines         []PurchaseOrderLineRequest `json:"lines" binding:"required,min=1"`
	InvoiceNumber string                     `json:"invoiceNumber"`
	InvoiceDate   *time.Time                 `json:"invoiceDate"`
	Comment       string                     `json:"comment"`
}

// ToPurchaseOrder builds the domain purchase order from the request.
func (r *CreatePurchaseOrderRequest) ToPurchaseOrder(storeID string) (*purchaseorder.PurchaseOrder, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, err
	}

	po := purchaseorder.New(storeID, supplierID)
	if r.Date != nil {
		po.Date = *r.Date
	}
	po.InvoiceNumber = r.InvoiceNumber
	po.InvoiceDate = r.InvoiceDate
	po.Comment = r.Comment

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, err
		}
		po.Lines = append(po.Lines, purchaseorder.Line{
			ProductID:    productID,
			Quantity:     line.Quantity,
			UnitCost:     line.UnitCost,
			SellingPrice: line.SellingPrice,
			Unit:         line.Unit,
		})
	}
	return po, nil
}

// UpdatePurchaseOrderRequest replaces an order's lines wholesale.
type UpdatePurchaseOrderRequest struct {
	CreatePurchaseOrderRequest
	Version int `json:"version" binding:"required,min=1"`
}
