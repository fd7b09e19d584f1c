package dto

import (
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/domain/stockentry"
)

// ComboComponentRequest is one constituent of a combo set.
type ComboComponentRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
}

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	SKU      string  `json:"sku" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Barcode  *string `json:"barcode"`
	Kind     string  `json:"kind" binding:"required,oneof=simple raw_material combo_set"`
	Category string  `json:"category"`
	ImageURL string  `json:"imageUrl"`

	BaseUnit   string `json:"baseUnit"`
	SellByUnit string `json:"sellByUnit"`

	StockLevel    types.Quantity `json:"stockLevel"`
	TotalMeters   types.Quantity `json:"totalMeters"`
	MetersPerUnit types.Quantity `json:"metersPerUnit"`

	ComboComponents   []ComboComponentRequest `json:"comboComponents"`
	CanSellSeparate   bool                    `json:"canSellSeparate"`
	CanSellPartialSet bool                    `json:"canSellPartialSet"`

	BuyingPrice  types.Money `json:"buyingPrice"`
	SellingPrice types.Money `json:"sellingPrice"`

	SupplierID *string `json:"supplierId"`
}

// ToProduct builds the domain product from the request.
func (r *CreateProductRequest) ToProduct(storeID string) (*product.Product, error) {
	p := product.New(storeID, r.SKU, r.Name, product.Kind(r.Kind))
	p.Barcode = r.Barcode
	p.Category = r.Category
	p.ImageURL = r.ImageURL
	if r.BaseUnit != "" {
		p.BaseUnit = r.BaseUnit
	}
	if r.SellByUnit != "" {
		p.SellByUnit = r.SellByUnit
	}
	p.StockLevel = r.StockLevel
	p.TotalMeters = r.TotalMeters
	p.MetersPerUnit = r.MetersPerUnit
	p.CanSellSeparate = r.CanSellSeparate
	p.CanSellPartialSet = r.CanSellPartialSet
	p.BuyingPrice = r.BuyingPrice
	p.SellingPrice = r.SellingPrice

	for _, c := range r.ComboComponents {
		componentID, err := id.Parse(c.ProductID)
		if err != nil {
			return nil, err
		}
		p.ComboComponents = append(p.ComboComponents, product.ComboComponent{
			ProductID: componentID,
			Quantity:  c.Quantity,
		})
	}

	if r.SupplierID != nil && *r.SupplierID != "" {
		supplierID, err := id.Parse(*r.SupplierID)
		if err != nil {
			return nil, err
		}
		p.SupplierID = &supplierID
	}
	return p, nil
}

// UpdateProductRequest for editing products. The full row is sent back;
// locked fields are preserved server-side.
type UpdateProductRequest struct {
	CreateProductRequest
	IsActive bool `json:"isActive"`
	Version  int  `json:"version" binding:"required,min=1"`
}

// RestockRequest records an additional stock receipt.
type RestockRequest struct {
	Quantity    types.Quantity `json:"quantity" binding:"required"`
	BuyingPrice types.Money    `json:"buyingPrice"`
	SupplierID  *string        `json:"supplierId"`
	Unit        string         `json:"unit"`
}

// ToSpec builds the receipt spec from the request.
func (r *RestockRequest) ToSpec() (stockentry.InitialSpec, error) {
	spec := stockentry.InitialSpec{
		Quantity:    r.Quantity,
		BuyingPrice: r.BuyingPrice,
		Unit:        r.Unit,
	}
	if r.SupplierID != nil && *r.SupplierID != "" {
		supplierID, err := id.Parse(*r.SupplierID)
		if err != nil {
			return spec, err
		}
		spec.SupplierID = &supplierID
	}
	return spec, nil
}

// ProductLockResponse reports the sales-lock state of a product.
type ProductLockResponse struct {
	ProductID  string `json:"productId"`
	SalesCount int64  `json:"salesCount"`
	Locked     bool   `json:"locked"`
}
