package dto

import (
	"time"

	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/documents/sale"
)

// SaleLineRequest is one item rung up at the till. Price overrides are
// optional; omitted prices are snapshotted from the catalog.
type SaleLineRequest struct {
	ProductID    string         `json:"productId" binding:"required"`
	Quantity     types.Quantity `json:"quantity" binding:"required"`
	SellingPrice types.Money    `json:"sellingPrice"`
	Unit         string         `json:"unit"`
}

// CreateSaleRequest for ringing up a sale.
type CreateSaleRequest struct {
	Date          *time.Time        `json:"date"`
	Lines         []SaleLineRequest `json:"lines" binding:"required,min=1"`
	PaymentMethod string            `json:"paymentMethod" binding:"required,oneof=cash bank_transfer credit"`
	PaidAmount    types.Money       `json:"paidAmount"`

	DiscountAmount types.Money `json:"discountAmount"`
	TaxAmount      types.Money `json:"taxAmount"`

	CustomerID    *string `json:"customerId"`
	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`

	Comment string `json:"comment"`
}

// ToSale builds the domain sale from the request.
func (r *CreateSaleRequest) ToSale(storeID string) (*sale.Sale, error) {
	sl := sale.New(storeID, sale.PaymentMethod(r.PaymentMethod))
	if r.Date != nil {
		sl.Date = *r.Date
	}
	sl.PaidAmount = r.PaidAmount
	sl.DiscountAmount = r.DiscountAmount
	sl.TaxAmount = r.TaxAmount
	sl.CustomerName = r.CustomerName
	sl.CustomerPhone = r.CustomerPhone
	sl.Comment = r.Comment

	if r.CustomerID != nil && *r.CustomerID != "" {
		customerID, err := id.Parse(*r.CustomerID)
		if err != nil {
			return nil, err
		}
		sl.CustomerID = &customerID
	}

	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, err
		}
		sl.Lines = append(sl.Lines, sale.Line{
			ProductID:    productID,
			Quantity:     line.Quantity,
			SellingPrice: line.SellingPrice,
			Unit:         line.Unit,
		})
	}
	return sl, nil
}

// RecordPaymentRequest applies an additional payment to a sale.
type RecordPaymentRequest struct {
	Amount types.Money `json:"amount" binding:"required"`
	Method string      `json:"method" binding:"required,oneof=cash bank_transfer credit"`
	Notes  string      `json:"notes"`
}

// PaymentAppliedResponse reports how much of a payment was applied.
type PaymentAppliedResponse struct {
	Requested types.Money `json:"requested"`
	Applied   types.Money `json:"applied"`
}

// RefundItemRequest names one refunded product and quantity.
type RefundItemRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
}

// RefundSaleRequest processes a refund against a sale.
type RefundSaleRequest struct {
	Items  []RefundItemRequest `json:"items" binding:"required,min=1"`
	Method string              `json:"method" binding:"required,oneof=cash bank_transfer credit"`
	Reason string              `json:"reason"`
}

// ToRefundRequest builds the domain refund request.
func (r *RefundSaleRequest) ToRefundRequest() (sale.RefundRequest, error) {
	req := sale.RefundRequest{
		Method: sale.PaymentMethod(r.Method),
		Reason: r.Reason,
	}
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return req, err
		}
		req.Items = append(req.Items, sale.RefundItem{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	return req, nil
}

// CustomerPaymentRequest applies one payment across a customer's outstanding
// sales, oldest first.
type CustomerPaymentRequest struct {
	Amount types.Money `json:"amount" binding:"required"`
	Method string      `json:"method" binding:"required,oneof=cash bank_transfer credit"`
	Notes  string      `json:"notes"`
}
