package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/ledger"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles the transaction journal and the expense register.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ListTransactions handles GET /transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := h.ListFilter(c, query)
	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}

	result, err := h.service.ListTransactions(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// ListByReference handles GET /transactions/by-reference/:type/:id
func (h *LedgerHandler) ListByReference(c *gin.Context) {
	ctx := c.Request.Context()

	refID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListByReference(ctx, ledger.ReferenceType(c.Param("type")), refID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

// CreateExpense handles POST /expenses
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	accountID, err := id.Parse(req.AccountID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid account id").WithDetail("field", "accountId"))
		return
	}

	expense := ledger.NewExpense(h.StoreID(c), req.Category, req.Amount, accountID)
	expense.Notes = req.Notes
	if req.Date != nil {
		expense.Date = *req.Date
	}

	if err := h.service.RecordExpense(ctx, expense); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, expense.ID)
}

// GetExpense handles GET /expenses/:id
func (h *LedgerHandler) GetExpense(c *gin.Context) {
	ctx := c.Request.Context()

	expenseID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	expense, err := h.service.GetExpense(ctx, expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, expense)
}

// ListExpenses handles GET /expenses
func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := h.ListFilter(c, query)
	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}

	result, err := h.service.ListExpenses(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// RegisterRoutes registers ledger routes.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.ListTransactions)
		transactions.GET("/by-reference/:type/:id", h.ListByReference)
	}

	expenses := rg.Group("/expenses")
	{
		expenses.GET("", h.ListExpenses)
		expenses.POST("", h.CreateExpense)
		expenses.GET("/:id", h.GetExpense)
	}
}
