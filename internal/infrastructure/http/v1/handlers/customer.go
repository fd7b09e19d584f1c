package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/catalogs/customer"
	"tillpoint/internal/domain/documents/sale"
	"tillpoint/internal/domain/filter"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles customer catalog endpoints.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
	sales   *sale.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service, sales *sale.Service) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: base,
		service:     service,
		sales:       sales,
	}
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
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

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := customer.New(h.StoreID(c), req.Code, req.Name)
	cust.Phone = customer.NormalizePhone(req.Phone)
	cust.Email = req.Email
	cust.Address = req.Address

	if err := h.service.Create(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cust.ID)
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	cust, err := h.service.GetByID(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// GetByPhone handles GET /customers/by-phone/:phone
func (h *CustomerHandler) GetByPhone(c *gin.Context) {
	ctx := c.Request.Context()

	cust, err := h.service.GetByPhone(ctx, h.StoreID(c), c.Param("phone"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cust := customer.New(h.StoreID(c), req.Code, req.Name)
	cust.ID = customerID
	cust.Version = req.Version
	cust.Phone = customer.NormalizePhone(req.Phone)
	cust.Email = req.Email
	cust.Address = req.Address

	if err := h.service.Update(ctx, cust); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cust)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, customerID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RecordPayment handles POST /customers/:id/payments. The payment is spread
// across the customer's unpaid sales, oldest first; any remainder past the
// outstanding debt stays unapplied.
func (h *CustomerHandler) RecordPayment(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CustomerPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	applied, err := h.sales.AllocateCustomerPayment(ctx, customerID, req.Amount, sale.PaymentMethod(req.Method), req.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.PaymentAppliedResponse{
		Requested: req.Amount,
		Applied:   applied,
	})
}

// Sales handles GET /customers/:id/sales
func (h *CustomerHandler) Sales(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	listFilter := h.ListFilter(c, query)
	listFilter.AdvancedFilters = append(listFilter.AdvancedFilters, filter.Item{
		Field:    "customer_id",
		Operator: filter.Equal,
		Value:    customerID,
	})

	result, err := h.sales.List(ctx, listFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// RegisterRoutes registers customer routes.
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.GET("", h.List)
		customers.POST("", h.Create)
		customers.GET("/by-phone/:phone", h.GetByPhone)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
		customers.POST("/:id/payments", h.RecordPayment)
		customers.GET("/:id/sales", h.Sales)
	}
}
