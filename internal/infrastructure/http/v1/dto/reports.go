package dto

// SalesReportQuery bounds the sales report.
type SalesReportQuery struct {
	DateRangeQuery
	Granularity string `form:"granularity" binding:"omitempty,oneof=day month"`
}
