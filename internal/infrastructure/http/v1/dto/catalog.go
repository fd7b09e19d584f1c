package dto

import (
	"tillpoint/internal/core/types"
)

// --- Suppliers ---

// CreateSupplierRequest for creating suppliers.
type CreateSupplierRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// UpdateSupplierRequest for editing suppliers.
type UpdateSupplierRequest struct {
	CreateSupplierRequest
	Version int `json:"version" binding:"required,min=1"`
}

// SupplierPaymentRequest pays down a supplier balance from an account.
type SupplierPaymentRequest struct {
	Amount    types.Money `json:"amount" binding:"required"`
	AccountID string      `json:"accountId" binding:"required"`
	Notes     string      `json:"notes"`
	Date      string      `json:"date"`
}

// --- Customers ---

// CreateCustomerRequest for creating customers.
type CreateCustomerRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// UpdateCustomerRequest for editing customers.
type UpdateCustomerRequest struct {
	CreateCustomerRequest
	Version int `json:"version" binding:"required,min=1"`
}

// --- Accounts ---

// CreateAccountRequest for creating accounts.
type CreateAccountRequest struct {
	Code           string      `json:"code"`
	Name           string      `json:"name" binding:"required"`
	AccountType    string      `json:"accountType" binding:"required,oneof=asset revenue expense liability"`
	OpeningBalance types.Money `json:"openingBalance"`
}

// UpdateAccountRequest for editing accounts.
type UpdateAccountRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name" binding:"required"`
	Version int    `json:"version" binding:"required,min=1"`
}

// --- Discount rules ---

// CreateDiscountRuleRequest for creating discount rules.
type CreateDiscountRuleRequest struct {
	Code       string `json:"code"`
	Name       string `json:"name" binding:"required"`
	Expression string `json:"expression" binding:"required"`
	Priority   int    `json:"priority"`
	Active     *bool  `json:"active"`
}

// UpdateDiscountRuleRequest for editing discount rules.
type UpdateDiscountRuleRequest struct {
	CreateDiscountRuleRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ValidateDiscountRuleRequest checks an expression draft without saving it.
type ValidateDiscountRuleRequest struct {
	Expression string `json:"expression" binding:"required"`
}
