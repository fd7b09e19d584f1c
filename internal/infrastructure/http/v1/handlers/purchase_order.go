package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/documents/purchaseorder"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles purchase order endpoints.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchaseorder.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchaseorder.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
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

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	po, err := req.ToPurchaseOrder(h.StoreID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, po); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	poID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	po, err := h.service.GetByID(ctx, poID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// Update handles PUT /purchase-orders/:id. The new lines replace the old
// ones; stock and supplier balances are adjusted by the difference.
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	poID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	po, err := req.ToPurchaseOrder(h.StoreID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	po.ID = poID
	po.Version = req.Version

	if err := h.service.Update(ctx, po); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// Delete handles DELETE /purchase-orders/:id. Received stock stays on hand;
// only the supplier debt is rolled back.
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	poID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, poID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers purchase order routes.
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	{
		orders.GET("", h.List)
		orders.POST("", h.Create)
		orders.GET("/:id", h.Get)
		orders.PUT("/:id", h.Update)
		orders.DELETE("/:id", h.Delete)
	}
}
