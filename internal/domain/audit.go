// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"tillpoint/internal/core/id"
)

// Audit action names shared across services.
const (
	AuditCreate = "create"
	AuditUpdate = "update"
	AuditDelete = "delete"
	AuditRefund = "refund"
	AuditRevert = "revert"
)

// Auditor records entity change history. The storage implementation lives in
// infrastructure; domain services depend only on this interface.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// NopAuditor discards audit records. Useful in tests.
type NopAuditor struct{}

func (NopAuditor) LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	return nil
}
