package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/catalogs/account"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// AccountHandler handles money account endpoints.
type AccountHandler struct {
	*BaseHandler
	service *account.Service
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(base *BaseHandler, service *account.Service) *AccountHandler {
	return &AccountHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /accounts. Every store gets its default cash and bank
// accounts on first read.
func (h *AccountHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	if err := h.service.EnsureDefaults(ctx, h.StoreID(c)); err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(ctx, h.ListFilter(c, query))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// Create handles POST /accounts
func (h *AccountHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	acc := account.New(h.StoreID(c), req.Code, req.Name, account.Type(req.AccountType), req.OpeningBalance)

	if err := h.service.Create(ctx, acc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, acc.ID)
}

// Get handles GET /accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	acc, err := h.service.GetByID(ctx, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, acc)
}

// Update handles PUT /accounts/:id. Balances move only through postings, so
// the edit covers the code and name.
func (h *AccountHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	acc, err := h.service.GetByID(ctx, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	acc.Code = req.Code
	acc.Name = req.Name
	acc.Version = req.Version

	if err := h.service.Update(ctx, acc); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, acc)
}

// Delete handles DELETE /accounts/:id
func (h *AccountHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, accountID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers account routes.
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.List)
		accounts.POST("", h.Create)
		accounts.GET("/:id", h.Get)
		accounts.PUT("/:id", h.Update)
		accounts.DELETE("/:id", h.Delete)
	}
}
