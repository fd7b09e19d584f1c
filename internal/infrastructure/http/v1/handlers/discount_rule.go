package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/pricing"
	"tillpoint/internal/infrastructure/http/v1/dto"
)

// DiscountRuleHandler handles discount rule endpoints.
type DiscountRuleHandler struct {
	*BaseHandler
	service *pricing.Service
}

// NewDiscountRuleHandler creates a new discount rule handler.
func NewDiscountRuleHandler(base *BaseHandler, service *pricing.Service) *DiscountRuleHandler {
	return &DiscountRuleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /discount-rules
func (h *DiscountRuleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := h.ListFilter(c, query)
	if filter.OrderBy == "" {
		filter.OrderBy = "-priority"
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListOK(c, result.Items, result.TotalCount, result.Limit, result.Offset)
}

// Create handles POST /discount-rules
func (h *DiscountRuleHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateDiscountRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule := pricing.New(h.StoreID(c), req.Code, req.Name, req.Expression)
	rule.Priority = req.Priority
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := h.service.Create(ctx, rule); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, rule.ID)
}

// Get handles GET /discount-rules/:id
func (h *DiscountRuleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rule, err := h.service.GetByID(ctx, ruleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rule)
}

// Update handles PUT /discount-rules/:id
func (h *DiscountRuleHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDiscountRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rule := pricing.New(h.StoreID(c), req.Code, req.Name, req.Expression)
	rule.ID = ruleID
	rule.Version = req.Version
	rule.Priority = req.Priority
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := h.service.Update(ctx, rule); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rule)
}

// Validate handles POST /discount-rules/validate
func (h *DiscountRuleHandler) Validate(c *gin.Context) {
	var req dto.ValidateDiscountRuleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.CheckExpression(req.Expression); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"valid": true})
}

// Delete handles DELETE /discount-rules/:id
func (h *DiscountRuleHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	ruleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, ruleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers discount rule routes.
func (h *DiscountRuleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/discount-rules")
	{
		rules.GET("", h.List)
		rules.POST("", h.Create)
		rules.POST("/validate", h.Validate)
		rules.GET("/:id", h.Get)
		rules.PUT("/:id", h.Update)
		rules.DELETE("/:id", h.Delete)
	}
}
