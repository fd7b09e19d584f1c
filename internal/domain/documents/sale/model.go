// Package sale implements the sale lifecycle: creation, deletion, payments,
// refunds, and the stock and balance side effects each of those carries.
package sale

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
)

// PaymentMethod is how the buyer pays.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCredit       PaymentMethod = "credit"
)

// PaymentStatus is the sale's payment state.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusPaid    PaymentStatus = "PAID"
)

// StatusFor is the payment state transition rule. It is a pure function of
// paid vs total; no other state is reachable.
func StatusFor(paid, total types.Money) PaymentStatus {
	switch {
	case !paid.IsPositive():
		return StatusPending
	case paid.LessThan(total):
		return StatusPartial
	default:
		return StatusPaid
	}
}

// Line is one sold item with price and cost snapshotted at sale time.
type Line struct {
	ProductID    id.ID          `json:"productId"`
	ProductName  string         `json:"productName"`
	SKU          string         `json:"sku,omitempty"`
	Quantity     types.Quantity `json:"quantity"`
	Unit         string         `json:"unit,omitempty"`
	SellingPrice types.Money    `json:"sellingPrice"`
	CostPrice    types.Money    `json:"costPrice"`
	TotalAmount  types.Money    `json:"totalAmount"`
	ProfitAmount types.Money    `json:"profitAmount"`
}

// Payment is one entry in the payment history.
type Payment struct {
	Date       time.Time     `json:"date"`
	Amount     types.Money   `json:"amount"`
	Method     PaymentMethod `json:"method"`
	Notes      string        `json:"notes,omitempty"`
	RecordedBy string        `json:"recordedBy,omitempty"`
}

// RefundItem is a per-product refunded quantity inside one refund.
type RefundItem struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// Refund is one entry in the refund history.
type Refund struct {
	Date        time.Time     `json:"date"`
	Amount      types.Money   `json:"amount"`
	Method      PaymentMethod `json:"method"`
	Reason      string        `json:"reason,omitempty"`
	ProcessedBy string        `json:"processedBy,omitempty"`
	Items       []RefundItem  `json:"items,omitempty"`
}

// Sale is the sale document. Once created it is only appended to (payments,
// refunds) or re-derived (payment status); lines never change.
type Sale struct {
	entity.Document

	CustomerID    *id.ID `db:"customer_id" json:"customerId,omitempty"`
	CustomerName  string `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone,omitempty"`

	Lines []Line `db:"lines" json:"lines"`

	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money `db:"discount_amount" json:"discountAmount"`
	TaxAmount      types.Money `db:"tax_amount" json:"taxAmount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
	PaidAmount     types.Money `db:"paid_amount" json:"paidAmount"`
	ProfitAmount   types.Money `db:"profit_amount" json:"profitAmount"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	Payments      []Payment     `db:"payments" json:"payments,omitempty"`

	RefundedAmount types.Money `db:"refunded_amount" json:"refundedAmount"`
	Refunds        []Refund    `db:"refunds" json:"refunds,omitempty"`
}

// New creates a Sale document.
func New(storeID string, method PaymentMethod) *Sale {
	return &Sale{
		Document:      entity.NewDocument(storeID),
		PaymentMethod: method,
		PaymentStatus: StatusPending,
	}
}

// Remaining is the unpaid part of the total.
func (s *Sale) Remaining() types.Money {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// MaxRefundable is the refund ceiling: what was paid minus what was already
// refunded.
func (s *Sale) MaxRefundable() types.Money {
	return s.PaidAmount.Sub(s.RefundedAmount)
}

// NetPaid is paid minus refunded. Refunds never rewrite PaidAmount or the
// payment status, so reporting reads this instead.
func (s *Sale) NetPaid() types.Money {
	return s.PaidAmount.Sub(s.RefundedAmount)
}

// RefundedQty sums the refunded quantity for a product across all prior
// refunds.
func (s *Sale) RefundedQty(productID id.ID) types.Quantity {
	var total types.Quantity
	for _, r := range s.Refunds {
		for _, item := range r.Items {
			if item.ProductID == productID {
				total = total.Add(item.Quantity)
			}
		}
	}
	return total
}

// LineFor returns the sold line for a product, or nil.
func (s *Sale) LineFor(productID id.ID) *Line {
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			return &s.Lines[i]
		}
	}
	return nil
}

// RecalcStatus re-derives the payment status from paid vs total.
func (s *Sale) RecalcStatus() {
	s.PaymentStatus = StatusFor(s.PaidAmount, s.TotalAmount)
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if len(s.Lines) == 0 {
		return apperror.NewValidation("sale must have at least one line").
			WithDetail("field", "lines")
	}
	for i, line := range s.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("line product is required").
				WithDetail("line", i)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i).
				WithDetail("quantity", line.Quantity.String())
		}
		if line.SellingPrice.IsNegative() {
			return apperror.NewValidation("line selling price cannot be negative").
				WithDetail("line", i)
		}
	}
	if s.DiscountAmount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discountAmount").
			WithDetail("value", s.DiscountAmount.String())
	}
	if s.TaxAmount.IsNegative() {
		return apperror.NewValidation("tax cannot be negative").
			WithDetail("field", "taxAmount").
			WithDetail("value", s.TaxAmount.String())
	}
	switch s.PaymentMethod {
	case MethodCash, MethodBankTransfer, MethodCredit:
	default:
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(s.PaymentMethod))
	}
	return nil
}
