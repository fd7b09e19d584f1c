package catalog_repo

import (
	"tillpoint/internal/domain/pricing"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var discountRuleColumns = []string{
	"id", "deletion_mark", "version",
	"code", "name",
	"store_id", "expression", "priority", "active",
}

// DiscountRuleRepo implements pricing.Repository.
type DiscountRuleRepo struct {
	*BaseCatalogRepo[*pricing.DiscountRule]
}

// NewDiscountRuleRepo creates a discount rule repository.
func NewDiscountRuleRepo(txManager *postgres.TxManager) *DiscountRuleRepo {
	return &DiscountRuleRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_discount_rules",
			discountRuleColumns,
			func() *pricing.DiscountRule { return &pricing.DiscountRule{} },
		),
	}
}
