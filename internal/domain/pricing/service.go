package pricing

import (
	"context"

	"tillpoint/internal/core/tx"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/filter"
	"tillpoint/pkg/logger"
)

const entityType = "discount_rule"

// Repository persists discount rules.
type Repository interface {
	domain.CatalogRepository[*DiscountRule]
}

// Service manages discount rules and picks the discount for a sale.
type Service struct {
	*domain.CatalogService[*DiscountRule]

	repo   Repository
	engine *Engine
}

// NewService creates a pricing service.
func NewService(repo Repository, engine *Engine, txManager tx.Manager) *Service {
	svc := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*DiscountRule]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: entityType,
		}),
		repo:   repo,
		engine: engine,
	}

	// Reject rules that do not compile before they are stored.
	checkExpr := func(ctx context.Context, rule *DiscountRule) error {
		return engine.Check(rule.Expression)
	}
	svc.Hooks().On(domain.BeforeCreate, checkExpr)
	svc.Hooks().On(domain.BeforeUpdate, checkExpr)

	return svc
}

// CheckExpression compiles an expression without storing anything. Used by
// the rule editor to validate drafts.
func (s *Service) CheckExpression(expression string) error {
	return s.engine.Check(expression)
}

// BestDiscount evaluates the store's active rules against the sale facts and
// returns the largest applicable discount. A rule that fails to evaluate is
// logged and skipped rather than blocking the sale.
func (s *Service) BestDiscount(ctx context.Context, storeID string, in Input) (types.Money, error) {
	rules, err := s.activeRules(ctx, storeID)
	if err != nil {
		return types.Zero(), err
	}

	best := types.Zero()
	for _, rule := range rules {
		discount, err := s.engine.Evaluate(rule, in)
		if err != nil {
			logger.Warn(ctx, "discount rule evaluation failed",
				"rule", rule.Code,
				"error", err,
			)
			continue
		}
		if discount.GreaterThan(best) {
			best = discount
		}
	}

	// A discount can never exceed what is being bought.
	return types.ClampMoney(best, types.Zero(), in.Subtotal), nil
}

func (s *Service) activeRules(ctx context.Context, storeID string) ([]*DiscountRule, error) {
	result, err := s.repo.List(ctx, domain.ListFilter{
		StoreID: storeID,
		AdvancedFilters: []filter.Item{
			{Field: "active", Operator: filter.Equal, Value: true},
		},
		OrderBy: "-priority",
		Limit:   200,
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}
