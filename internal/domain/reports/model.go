// Package reports builds sales reports: date-bucketed totals and a summary
// of counts and amounts by payment status. Reporting reads net paid (paid
// minus refunded) since refunds never rewrite a sale's payment status.
package reports

import (
	"time"

	"tillpoint/internal/core/types"
)

// Granularity is the reporting bucket size.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
)

// Valid reports whether the granularity is supported.
func (g Granularity) Valid() bool {
	return g == ByDay || g == ByMonth
}

// Bucket is one reporting period.
type Bucket struct {
	Period         string      `db:"period" json:"period"`
	SalesCount     int64       `db:"sales_count" json:"salesCount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
	PaidAmount     types.Money `db:"paid_amount" json:"paidAmount"`
	RefundedAmount types.Money `db:"refunded_amount" json:"refundedAmount"`
	NetPaid        types.Money `db:"net_paid" json:"netPaid"`
	ProfitAmount   types.Money `db:"profit_amount" json:"profitAmount"`
}

// StatusRow summarizes sales sharing one payment status.
type StatusRow struct {
	Status         string      `db:"payment_status" json:"status"`
	SalesCount     int64       `db:"sales_count" json:"salesCount"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
	PaidAmount     types.Money `db:"paid_amount" json:"paidAmount"`
	RefundedAmount types.Money `db:"refunded_amount" json:"refundedAmount"`
	NetPaid        types.Money `db:"net_paid" json:"netPaid"`
}

// SalesReport is the full report payload.
type SalesReport struct {
	StoreID     string      `json:"storeId"`
	From        time.Time   `json:"from"`
	To          time.Time   `json:"to"`
	Granularity Granularity `json:"granularity"`
	Buckets     []Bucket    `json:"buckets"`
	Summary     []StatusRow `json:"summary"`
	GeneratedAt time.Time   `json:"generatedAt"`
}
