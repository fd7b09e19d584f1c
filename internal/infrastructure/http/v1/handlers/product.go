package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.List(ctx, h.ListFilter(c, query))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToProduct(h.StoreID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p.ID)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ToProduct(h.StoreID(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	p.ID = productID
	p.Version = req.Version
	p.IsActive = req.IsActive

	updated, err := h.service.Update(ctx, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /products/:id. Products with sales history are
// archived rather than removed; the response says which happened.
func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	archived, err := h.service.Delete(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"archived": archived})
}

// Restock handles POST /products/:id/restock
func (h *ProductHandler) Restock(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.RestockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	spec, err := req.ToSpec()
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.Restock(ctx, productID, spec)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entry)
}

// CheckSales handles GET /products/:id/sales-check
func (h *ProductHandler) CheckSales(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	count, locked, err := h.service.CheckSales(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ProductLockResponse{
		ProductID:  productID.String(),
		SalesCount: count,
		Locked:     locked,
	})
}

// StockHistory handles GET /products/:id/stock-entries
func (h *ProductHandler) StockHistory(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.StockHistory(ctx, productID, h.ListFilter(c, query))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// InitialStockEntry handles GET /products/:id/stock-entries/initial
func (h *ProductHandler) InitialStockEntry(c *gin.Context) {
	ctx := c.Request.Context()

	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entry, err := h.service.GetInitialStockEntry(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Products created with zero stock have no initial entry.
	h.OK(c, gin.H{"entry": entry})
}

// RegisterRoutes registers product routes.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.POST("", h.Create)
		products.GET("/:id", h.Get)
		products.PUT("/:id", h.Update)
		products.DELETE("/:id", h.Delete)
		products.POST("/:id/restock", h.Restock)
		products.GET("/:id/sales-check", h.CheckSales)
		products.GET("/:id/stock-entries", h.StockHistory)
		products.GET("/:id/stock-entries/initial", h.InitialStockEntry)
	}
}
