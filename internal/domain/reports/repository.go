package reports

import (
	"context"
	"time"
)

// Repository aggregates sales for reporting.
type Repository interface {
	// SalesByPeriod buckets sales by day or month within [from, to].
	SalesByPeriod(ctx context.Context, storeID string, from, to time.Time, granularity Granularity) ([]Bucket, error)

	// SummaryByStatus groups sales in [from, to] by payment status.
	SummaryByStatus(ctx context.Context, storeID string, from, to time.Time) ([]StatusRow, error)
}
