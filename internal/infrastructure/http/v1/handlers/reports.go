package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/domain/reports"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles reporting endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *ReportsHandler) parseQuery(c *gin.Context) (from, to time.Time, granularity reports.Granularity, ok bool) {
	var query dto.SalesReportQuery
	if !h.BindQuery(c, &query) {
		return from, to, granularity, false
	}

	from = query.From
	to = query.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	if from.After(to) {
		h.Error(c, apperror.NewValidation("from must not be after to"))
		return from, to, granularity, false
	}

	granularity = reports.Granularity(query.Granularity)
	if granularity == "" {
		granularity = reports.ByDay
	}
	return from, to, granularity, true
}

// Sales handles GET /reports/sales
func (h *ReportsHandler) Sales(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, granularity, ok := h.parseQuery(c)
	if !ok {
		return
	}

	report, err := h.service.SalesReport(ctx, h.StoreID(c), from, to, granularity)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// Export handles GET /reports/sales/export, streaming the report as gzipped
// JSON for download.
func (h *ReportsHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	from, to, granularity, ok := h.parseQuery(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Encoding", "gzip")
	c.Header("Content-Disposition", `attachment; filename="sales-report.json.gz"`)

	if err := h.service.Export(ctx, c.Writer, h.StoreID(c), from, to, granularity); err != nil {
		h.Error(c, err)
		return
	}
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rep := rg.Group("/reports")
	{
		rep.GET("/sales", h.Sales)
		rep.GET("/sales/export", h.Export)
	}
}
