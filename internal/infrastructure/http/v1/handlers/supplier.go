package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/catalogs/supplier"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// SupplierHandler handles supplier catalog endpoints.
type SupplierHandler struct {
	*BaseHandler
	service *supplier.Service
}

// NewSupplierHandler creates a new supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return &SupplierHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
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

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sup := supplier.New(h.StoreID(c), req.Code, req.Name)
	sup.ContactPerson = req.ContactPerson
	sup.Phone = req.Phone
	sup.Email = req.Email
	sup.Address = req.Address

	if err := h.service.Create(ctx, sup); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sup.ID)
}

// Get handles GET /suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	sup, err := h.service.GetByID(ctx, supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sup)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sup := supplier.New(h.StoreID(c), req.Code, req.Name)
	sup.ID = supplierID
	sup.Version = req.Version
	sup.ContactPerson = req.ContactPerson
	sup.Phone = req.Phone
	sup.Email = req.Email
	sup.Address = req.Address

	if err := h.service.Update(ctx, sup); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sup)
}

// Delete handles DELETE /suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, supplierID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RecordPayment handles POST /suppliers/:id/payments
func (h *SupplierHandler) RecordPayment(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SupplierPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	accountID, err := id.Parse(req.AccountID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid account id").WithDetail("field", "accountId"))
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid date, expected YYYY-MM-DD").WithDetail("field", "date"))
			return
		}
		date = parsed
	}

	expense, err := h.service.RecordPayment(ctx, supplierID, req.Amount, accountID, req.Notes, date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, expense)
}

// Payments handles GET /suppliers/:id/payments
func (h *SupplierHandler) Payments(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	payments, err := h.service.Payments(ctx, supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": payments})
}

// Products handles GET /suppliers/:id/products
func (h *SupplierHandler) Products(c *gin.Context) {
	ctx := c.Request.Context()

	supplierID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	productIDs, err := h.service.ProductIDs(ctx, supplierID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"productIds": productIDs})
}

// RegisterRoutes registers supplier routes.
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.GET("", h.List)
		suppliers.POST("", h.Create)
		suppliers.GET("/:id", h.Get)
		suppliers.PUT("/:id", h.Update)
		suppliers.DELETE("/:id", h.Delete)
		suppliers.POST("/:id/payments", h.RecordPayment)
		suppliers.GET("/:id/payments", h.Payments)
		suppliers.GET("/:id/products", h.Products)
	}
}
