package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/documents/sale"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles sale document endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := h.ListFilter(c, query)
	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// Create handles POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sl, err := req.ToSale(h.StoreID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, sl); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sl)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sl, err := h.service.GetByID(ctx, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sl)
}

// Delete handles DELETE /sales/:id. Reverting a sale restores stock and
// rolls back the customer balance.
func (h *SaleHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, saleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RecordPayment handles POST /sales/:id/payments. The applied amount may be
// less than requested when the payment overshoots the remainder.
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	applied, err := h.service.RecordPayment(ctx, saleID, req.Amount, sale.PaymentMethod(req.Method), req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PaymentAppliedResponse{
		Requested: req.Amount,
		Applied:   applied,
	})
}

// Refund handles POST /sales/:id/refunds
func (h *SaleHandler) Refund(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RefundSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	refundReq, err := req.ToRefundRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	refund, err := h.service.Refund(ctx, saleID, refundReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, refund)
}

// PendingStats handles GET /sales/pending-stats
func (h *SaleHandler) PendingStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.service.GetPendingStats(ctx, h.StoreID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}

// RegisterRoutes registers sale routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.GET("", h.List)
		sales.POST("", h.Create)
		sales.GET("/pending-stats", h.PendingStats)
		sales.GET("/:id", h.Get)
		sales.DELETE("/:id", h.Delete)
		sales.POST("/:id/payments", h.RecordPayment)
		sales.POST("/:id/refunds", h.Refund)
	}
}
