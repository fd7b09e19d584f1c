// Package product implements the product catalog: piece goods, raw
// materials measured in meters, and combo sets assembled from components.
package product

import (
	"context"
	"strings"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
)

// Kind discriminates product stock behavior.
type Kind string

const (
	// KindSimple is a piece-good tracked by StockLevel.
	KindSimple Kind = "simple"

	// KindRawMaterial is tracked in meters; StockLevel mirrors TotalMeters.
	KindRawMaterial Kind = "raw_material"

	// KindComboSet is assembled from component products.
	KindComboSet Kind = "combo_set"
)

// ComboComponent is one constituent of a combo set.
type ComboComponent struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// Product is the central catalog entity. Code holds the SKU
// (upper-cased, unique per store).
type Product struct {
	entity.Catalog

	StoreID string  `db:"store_id" json:"storeId"`
	Barcode *string `db:"barcode" json:"barcode,omitempty"`
	Kind    Kind    `db:"kind" json:"kind"`

	BaseUnit   string `db:"base_unit" json:"baseUnit"`
	SellByUnit string `db:"sell_by_unit" json:"sellByUnit"`

	// StockLevel is the on-hand quantity in sell units. For raw materials
	// it mirrors TotalMeters.
	StockLevel types.Quantity `db:"stock_level" json:"stockLevel"`

	// TotalMeters is the source of truth for raw-material stock.
	TotalMeters   types.Quantity `db:"total_meters" json:"totalMeters"`
	MetersPerUnit types.Quantity `db:"meters_per_unit" json:"metersPerUnit"`

	ComboComponents   []ComboComponent `db:"combo_components" json:"comboComponents,omitempty"`
	CanSellSeparate   bool             `db:"can_sell_separate" json:"canSellSeparate"`
	CanSellPartialSet bool             `db:"can_sell_partial_set" json:"canSellPartialSet"`

	BuyingPrice  types.Money `db:"buying_price" json:"buyingPrice"`
	SellingPrice types.Money `db:"selling_price" json:"sellingPrice"`

	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	Category string `db:"category" json:"category,omitempty"`
	ImageURL string `db:"image_url" json:"imageUrl,omitempty"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

// New creates a Product with generated ID and normalized SKU.
func New(storeID, sku, name string, kind Kind) *Product {
	return &Product{
		Catalog:    entity.NewCatalog(NormalizeSKU(sku), name),
		StoreID:    storeID,
		Kind:       kind,
		BaseUnit:   "pcs",
		SellByUnit: "pcs",
		IsActive:   true,
	}
}

// NormalizeSKU upper-cases and trims the SKU.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// SKU returns the normalized product code.
func (p *Product) SKU() string {
	return p.Code
}

// CalculatedUnits returns the derived whole-unit count for raw materials:
// floor(TotalMeters / MetersPerUnit). Never stored.
func (p *Product) CalculatedUnits() int64 {
	if p.Kind != KindRawMaterial || p.MetersPerUnit.IsZero() {
		return 0
	}
	return p.TotalMeters.Div(p.MetersPerUnit)
}

// Available returns the sellable quantity for the product.
func (p *Product) Available() types.Quantity {
	if p.Kind == KindRawMaterial {
		return p.TotalMeters
	}
	return p.StockLevel
}

// SyncRawMaterialStock mirrors TotalMeters into StockLevel.
// Raw-material stock has a single source of truth.
func (p *Product) SyncRawMaterialStock() {
	if p.Kind == KindRawMaterial {
		p.StockLevel = p.TotalMeters
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.StoreID == "" {
		return apperror.NewValidation("store is required").WithDetail("field", "storeId")
	}

	if strings.TrimSpace(p.Code) == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}

	switch p.Kind {
	case KindSimple:
	case KindRawMaterial:
		if p.MetersPerUnit.IsNegative() {
			return apperror.NewValidation("metersPerUnit cannot be negative").
				WithDetail("field", "metersPerUnit")
		}
	case KindComboSet:
		if len(p.ComboComponents) == 0 {
			return apperror.NewValidation("combo set requires at least one component").
				WithDetail("field", "comboComponents")
		}
		for _, c := range p.ComboComponents {
			if id.IsNil(c.ProductID) {
				return apperror.NewValidation("combo component product is required").
					WithDetail("field", "comboComponents")
			}
			if !c.Quantity.IsPositive() {
				return apperror.NewValidation("combo component quantity must be positive").
					WithDetail("field", "comboComponents")
			}
		}
	default:
		return apperror.NewValidation("unknown product kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	if p.SellingPrice.IsNegative() || p.BuyingPrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative")
	}

	return nil
}
