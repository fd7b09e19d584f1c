package document_repo

import (
	"context"

	"tillpoint/internal/core/id"
	"tillpoint/internal/domain/documents/purchaseorder"
	"tillpoint/internal/infrastructure/storage/postgres"
)

var purchaseOrderColumns = []string{
	"id", "deletion_mark", "version",
	"created_at", "updated_at", "created_by", "updated_by",
	"number", "date", "store_id", "comment",
	"supplier_id", "lines", "total_amount",
	"invoice_number", "invoice_date",
}

// PurchaseOrderRepo implements purchaseorder.Repository.
type PurchaseOrderRepo struct {
	*BaseDocumentRepo[*purchaseorder.PurchaseOrder]
}

// NewPurchaseOrderRepo creates a purchase order repository.
func NewPurchaseOrderRepo(txManager *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			"doc_purchase_orders",
			purchaseOrderColumns,
			func() *purchaseorder.PurchaseOrder { return &purchaseorder.PurchaseOrder{} },
		),
	}
}

// Delete physically removes the order record. The stock it applied stays.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, poID id.ID) error {
	return r.HardDelete(ctx, poID)
}
