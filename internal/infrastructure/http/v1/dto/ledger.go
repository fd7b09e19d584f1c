package dto

import (
	"time"

	"tillpoint/internal/core/types"
)

// CreateExpenseRequest records a business expense paid from an account.
type CreateExpenseRequest struct {
	Category  string      `json:"category" binding:"required"`
	Amount    types.Money `json:"amount" binding:"required"`
	AccountID string      `json:"accountId" binding:"required"`
	Date      *time.Time  `json:"date"`
	Notes     string      `json:"notes"`
}
