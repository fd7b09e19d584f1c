package sale

import (
	"context"
	"time"

	"tillpoint/internal/core/apperror"
	appctx "tillpoint/internal/core/context"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/tx"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
	"tillpoint/internal/domain/catalogs/customer"
	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/domain/ledger"
	"tillpoint/pkg/logger"
	"tillpoint/pkg/numerator"
)

const entityType = "sale"

// ProductStore is the product behavior the sale lifecycle needs.
// Satisfied by product.Repository.
type ProductStore interface {
	GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error)
	AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) error
}

// CustomerDirectory is the customer behavior the sale lifecycle needs.
// Satisfied by customer.Service.
type CustomerDirectory interface {
	UpsertByPhone(ctx context.Context, storeID, phone, name string) (*customer.Customer, error)
	GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error)
	AdjustBalance(ctx context.Context, customerID id.ID, delta types.Money) error
}

// AccountDirectory resolves the posting account for a payment method.
// Satisfied by account.Service through a thin adapter.
type AccountDirectory interface {
	EnsureDefaults(ctx context.Context, storeID string) error
	ResolveForMethod(ctx context.Context, storeID string, method string) (id.ID, error)
}

// Poster posts account transactions. Satisfied by ledger.Service.
type Poster interface {
	Post(ctx context.Context, storeID string, entries []ledger.Entry, refType ledger.ReferenceType, refID id.ID, date time.Time, notes string) (*ledger.Transaction, error)
}

// DiscountInput carries the facts discount rules evaluate against.
type DiscountInput struct {
	Subtotal       types.Money
	ItemCount      int64
	CustomerLinked bool
	PaymentMethod  string
}

// DiscountEngine computes an automatic discount for a sale. May return zero.
type DiscountEngine interface {
	BestDiscount(ctx context.Context, storeID string, in DiscountInput) (types.Money, error)
}

// CacheInvalidator drops cached report data after a sale mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, storeID string) error
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, string) error { return nil }

// Service owns the sale lifecycle and every side effect it carries: stock
// decrements, customer balances, and account postings. The account posting is
// always the last write of a transaction.
type Service struct {
	repo      Repository
	products  ProductStore
	customers CustomerDirectory
	accounts  AccountDirectory
	poster    Poster
	discounts DiscountEngine
	cache     CacheInvalidator
	txManager tx.Manager
	numerator *numerator.Service
	audit     domain.Auditor
}

// ServiceConfig wires the sale service dependencies.
type ServiceConfig struct {
	Repo      Repository
	Products  ProductStore
	Customers CustomerDirectory
	Accounts  AccountDirectory
	Poster    Poster
	Discounts DiscountEngine
	Cache     CacheInvalidator
	TxManager tx.Manager
	Numerator *numerator.Service
	Audit     domain.Auditor
}

// NewService creates a sale service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Audit == nil {
		cfg.Audit = domain.NopAuditor{}
	}
	if cfg.Cache == nil {
		cfg.Cache = nopInvalidator{}
	}
	return &Service{
		repo:      cfg.Repo,
		products:  cfg.Products,
		customers: cfg.Customers,
		accounts:  cfg.Accounts,
		poster:    cfg.Poster,
		discounts: cfg.Discounts,
		cache:     cfg.Cache,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		audit:     cfg.Audit,
	}
}

// Create registers a sale: locks and decrements stock per line, links or
// upserts the credit customer, raises the customer balance by any unpaid
// remainder, and finally posts the received money. All inside one
// transaction, posting last.
func (s *Service) Create(ctx context.Context, sl *Sale) error {
	if err := sl.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if sl.Number == "" {
			number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SALE"), nil, sl.Date)
			if err != nil {
				return err
			}
			sl.Number = number
		}
		sl.CreatedBy = appctx.GetUserID(ctx)

		if err := s.applyLines(ctx, sl); err != nil {
			return err
		}
		s.computeTotals(ctx, sl)

		if sl.PaymentMethod == MethodCredit && sl.CustomerID == nil && sl.CustomerPhone != "" {
			cust, err := s.customers.UpsertByPhone(ctx, sl.StoreID, sl.CustomerPhone, sl.CustomerName)
			if err != nil {
				return err
			}
			sl.CustomerID = &cust.ID
			sl.CustomerName = cust.Name
			sl.CustomerPhone = cust.Phone
		}

		if sl.PaidAmount.IsPositive() {
			sl.Payments = append(sl.Payments, Payment{
				Date:       sl.Date,
				Amount:     sl.PaidAmount,
				Method:     sl.PaymentMethod,
				RecordedBy: sl.CreatedBy,
			})
		}

		remainder := sl.Remaining()
		if remainder.IsPositive() && sl.CustomerID != nil {
			if err := s.customers.AdjustBalance(ctx, *sl.CustomerID, remainder); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, sl); err != nil {
			return err
		}

		if err := s.audit.LogChange(ctx, entityType, sl.ID, domain.AuditCreate, map[string]any{
			"number":       sl.Number,
			"total_amount": sl.TotalAmount,
			"paid_amount":  sl.PaidAmount,
			"lines":        len(sl.Lines),
		}); err != nil {
			return err
		}

		// Cash posting goes last so a failure rolls back everything above.
		if sl.PaidAmount.IsPositive() {
			return s.postReceived(ctx, sl, sl.PaidAmount, sl.PaymentMethod, ledger.RefSale, sl.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, sl.StoreID)
	return nil
}

// applyLines snapshots prices from the catalog, checks availability and
// decrements stock per line, under row locks.
func (s *Service) applyLines(ctx context.Context, sl *Sale) error {
	for i := range sl.Lines {
		line := &sl.Lines[i]

		p, err := s.products.GetForUpdate(ctx, line.ProductID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", line.ProductID.String())
			}
			return err
		}

		available := p.Available()
		if available.Sub(line.Quantity).IsNegative() {
			return apperror.NewInsufficientStock(p.ID.String(), line.Quantity.Float64(), available.Float64())
		}

		line.ProductName = p.Name
		line.SKU = p.SKU()
		if line.Unit == "" {
			line.Unit = p.SellByUnit
		}
		if line.SellingPrice.IsZero() {
			line.SellingPrice = p.SellingPrice
		}
		if line.CostPrice.IsZero() {
			line.CostPrice = p.BuyingPrice
		}

		qty := types.NewMoney(line.Quantity.Float64())
		line.TotalAmount = line.SellingPrice.Mul(qty)
		line.ProfitAmount = line.SellingPrice.Sub(line.CostPrice).Mul(qty)

		if err := s.products.AdjustStock(ctx, line.ProductID, line.Quantity.Neg()); err != nil {
			return err
		}
	}
	return nil
}

// computeTotals derives subtotal, discount, total, profit, clamps the paid
// amount into [0, total] and sets the payment status.
func (s *Service) computeTotals(ctx context.Context, sl *Sale) {
	subtotal := types.Zero()
	profit := types.Zero()
	var itemCount int64
	for _, line := range sl.Lines {
		subtotal = subtotal.Add(line.TotalAmount)
		profit = profit.Add(line.ProfitAmount)
		itemCount++
	}
	sl.Subtotal = subtotal

	// Request-supplied discounts are held to the same ceiling as engine
	// discounts; the total never goes below zero.
	sl.DiscountAmount = types.ClampMoney(sl.DiscountAmount, types.Zero(), subtotal)

	if sl.DiscountAmount.IsZero() && s.discounts != nil {
		discount, err := s.discounts.BestDiscount(ctx, sl.StoreID, DiscountInput{
			Subtotal:       subtotal,
			ItemCount:      itemCount,
			CustomerLinked: sl.CustomerID != nil,
			PaymentMethod:  string(sl.PaymentMethod),
		})
		if err != nil {
			logger.Warn(ctx, "discount evaluation failed, selling without discount",
				"store_id", sl.StoreID, "error", err)
		} else {
			sl.DiscountAmount = types.ClampMoney(discount, types.Zero(), subtotal)
		}
	}

	sl.TotalAmount = subtotal.Sub(sl.DiscountAmount).Add(sl.TaxAmount)
	sl.ProfitAmount = profit.Sub(sl.DiscountAmount)
	sl.PaidAmount = types.ClampMoney(sl.PaidAmount, types.Zero(), sl.TotalAmount)
	sl.RecalcStatus()
}

// Delete removes a sale and undoes its side effects: stock is restored per
// line and a credit remainder is taken back off the customer balance. No
// compensating account posting is made; received money stays on the books.
func (s *Service) Delete(ctx context.Context, saleID id.ID) error {
	var storeID string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(entityType, saleID.String())
			}
			return err
		}
		storeID = sl.StoreID

		for _, line := range sl.Lines {
			if err := s.products.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		remainder := sl.Remaining()
		if remainder.IsPositive() && sl.CustomerID != nil {
			if err := s.customers.AdjustBalance(ctx, *sl.CustomerID, remainder.Neg()); err != nil {
				return err
			}
		}

		if err := s.repo.Delete(ctx, saleID); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, entityType, saleID, domain.AuditDelete, map[string]any{
			"number":       sl.Number,
			"total_amount": sl.TotalAmount,
		})
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, storeID)
	return nil
}

// RecordPayment applies an additional payment to a sale. The applied amount
// is capped at the outstanding remainder; sales without one are rejected.
// Returns the amount actually applied.
func (s *Service) RecordPayment(ctx context.Context, saleID id.ID, amount types.Money, method PaymentMethod, notes string) (types.Money, error) {
	if !amount.IsPositive() {
		return types.Zero(), apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}

	applied := types.Zero()
	var storeID string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(entityType, saleID.String())
			}
			return err
		}
		storeID = sl.StoreID

		remaining := sl.Remaining()
		if !remaining.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "sale has no outstanding balance").
				WithDetail("sale_id", saleID.String())
		}

		applied = amount
		if applied.GreaterThan(remaining) {
			applied = remaining
		}

		sl.Payments = append(sl.Payments, Payment{
			Date:       time.Now().UTC(),
			Amount:     applied,
			Method:     method,
			Notes:      notes,
			RecordedBy: appctx.GetUserID(ctx),
		})
		sl.PaidAmount = sl.PaidAmount.Add(applied)
		sl.RecalcStatus()

		if sl.CustomerID != nil {
			if err := s.customers.AdjustBalance(ctx, *sl.CustomerID, applied.Neg()); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, sl); err != nil {
			return err
		}

		if err := s.audit.LogChange(ctx, entityType, saleID, domain.AuditUpdate, map[string]any{
			"payment":        applied,
			"method":         string(method),
			"payment_status": string(sl.PaymentStatus),
		}); err != nil {
			return err
		}

		return s.postReceived(ctx, sl, applied, method, ledger.RefPayment, sl.ID)
	})
	if err != nil {
		return types.Zero(), err
	}

	s.invalidate(ctx, storeID)
	return applied, nil
}

// RefundRequest describes one refund against a sale.
type RefundRequest struct {
	Items  []RefundItem
	Method PaymentMethod
	Reason string
}

// Refund processes a refund. The total is derived from sale-time selling
// prices and must fit within paid minus already refunded; per line, the
// refunded quantity must fit within sold minus already refunded. Stock is
// restored per refunded item. PaidAmount and the payment status are left
// untouched; NetPaid is the derived view.
func (s *Service) Refund(ctx context.Context, saleID id.ID, req RefundRequest) (*Refund, error) {
	if len(req.Items) == 0 {
		return nil, apperror.NewValidation("refund must name at least one item").
			WithDetail("field", "items")
	}

	var refund *Refund
	var storeID string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(entityType, saleID.String())
			}
			return err
		}
		storeID = sl.StoreID

		maxRefundable := sl.MaxRefundable()
		if !maxRefundable.IsPositive() {
			return apperror.NewRefundLimit(saleID.String(), 0, maxRefundable.InexactFloat64())
		}

		// A request may name the same product in several rows; the ceiling
		// applies to the combined quantity per product.
		requested := make(map[id.ID]types.Quantity, len(req.Items))
		productOrder := make([]id.ID, 0, len(req.Items))
		for _, item := range req.Items {
			if !item.Quantity.IsPositive() {
				return apperror.NewValidation("refund quantity must be positive").
					WithDetail("product_id", item.ProductID.String())
			}
			if _, seen := requested[item.ProductID]; !seen {
				productOrder = append(productOrder, item.ProductID)
			}
			requested[item.ProductID] = requested[item.ProductID].Add(item.Quantity)
		}

		total := types.Zero()
		for _, productID := range productOrder {
			qty := requested[productID]

			line := sl.LineFor(productID)
			if line == nil {
				return apperror.NewValidation("product was not sold on this sale").
					WithDetail("product_id", productID.String())
			}

			refundable := line.Quantity.Sub(sl.RefundedQty(productID))
			if qty.Sub(refundable).IsPositive() {
				return apperror.NewBusinessRule(apperror.CodeRefundLimit, "refund quantity exceeds sold quantity").
					WithDetail("product_id", productID.String()).
					WithDetail("requested", qty.String()).
					WithDetail("refundable", refundable.String())
			}

			total = total.Add(line.SellingPrice.Mul(types.NewMoney(qty.Float64())))
		}

		if !total.IsPositive() {
			return apperror.NewValidation("refund total must be positive")
		}
		if total.GreaterThan(maxRefundable) {
			return apperror.NewRefundLimit(saleID.String(), total.InexactFloat64(), maxRefundable.InexactFloat64())
		}

		for _, productID := range productOrder {
			if err := s.products.AdjustStock(ctx, productID, requested[productID]); err != nil {
				return err
			}
		}

		entry := Refund{
			Date:        time.Now().UTC(),
			Amount:      total,
			Method:      req.Method,
			Reason:      req.Reason,
			ProcessedBy: appctx.GetUserID(ctx),
			Items:       req.Items,
		}
		sl.Refunds = append(sl.Refunds, entry)
		sl.RefundedAmount = sl.RefundedAmount.Add(total)
		refund = &entry

		if err := s.repo.Update(ctx, sl); err != nil {
			return err
		}

		if err := s.audit.LogChange(ctx, entityType, saleID, domain.AuditRefund, map[string]any{
			"amount": total,
			"items":  len(req.Items),
			"reason": req.Reason,
		}); err != nil {
			return err
		}

		return s.postPaid(ctx, sl, total, req.Method, ledger.RefRefund, sl.ID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, storeID)
	return refund, nil
}

// AllocateCustomerPayment applies one customer payment across that customer's
// outstanding sales, oldest first, until the pool runs out. Returns the total
// amount actually applied, which may be less than requested.
func (s *Service) AllocateCustomerPayment(ctx context.Context, customerID id.ID, amount types.Money, method PaymentMethod, notes string) (types.Money, error) {
	if !amount.IsPositive() {
		return types.Zero(), apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}

	totalApplied := types.Zero()
	var storeID string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cust, err := s.customers.GetForUpdate(ctx, customerID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("customer", customerID.String())
			}
			return err
		}
		storeID = cust.StoreID

		outstanding, err := s.repo.ListOutstandingByCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if len(outstanding) == 0 {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "customer has no outstanding sales").
				WithDetail("customer_id", customerID.String())
		}

		pool := amount
		recordedBy := appctx.GetUserID(ctx)
		now := time.Now().UTC()

		for _, sl := range outstanding {
			if !pool.IsPositive() {
				break
			}

			remaining := sl.Remaining()
			if !remaining.IsPositive() {
				continue
			}

			applied := pool
			if applied.GreaterThan(remaining) {
				applied = remaining
			}

			sl.Payments = append(sl.Payments, Payment{
				Date:       now,
				Amount:     applied,
				Method:     method,
				Notes:      notes,
				RecordedBy: recordedBy,
			})
			sl.PaidAmount = sl.PaidAmount.Add(applied)
			sl.RecalcStatus()

			if err := s.repo.Update(ctx, sl); err != nil {
				return err
			}

			pool = pool.Sub(applied)
			totalApplied = totalApplied.Add(applied)
		}

		if err := s.customers.AdjustBalance(ctx, customerID, totalApplied.Neg()); err != nil {
			return err
		}

		if err := s.audit.LogChange(ctx, "customer", customerID, domain.AuditUpdate, map[string]any{
			"payment_requested": amount,
			"payment_applied":   totalApplied,
			"sales_touched":     len(outstanding),
		}); err != nil {
			return err
		}

		accountID, err := s.resolveAccount(ctx, storeID, method)
		if err != nil {
			return err
		}
		_, err = s.poster.Post(ctx, storeID, []ledger.Entry{{
			AccountID: accountID,
			EntryType: ledger.Debit,
			Amount:    totalApplied,
		}}, ledger.RefPayment, customerID, now, notes)
		return err
	})
	if err != nil {
		return types.Zero(), err
	}

	s.invalidate(ctx, storeID)
	return totalApplied, nil
}

// GetByID retrieves a sale.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sl, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound(entityType, saleID.String())
		}
		return nil, err
	}
	return sl, nil
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}

// GetPendingStats aggregates sales that still carry an unpaid remainder.
func (s *Service) GetPendingStats(ctx context.Context, storeID string) (PendingStats, error) {
	return s.repo.PendingStats(ctx, storeID)
}

// CountByProduct counts sales referencing a product. The product catalog uses
// this as its lock predicate.
func (s *Service) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	return s.repo.CountByProduct(ctx, productID)
}

// postReceived posts money coming into the store: DEBIT on the receiving
// account.
func (s *Service) postReceived(ctx context.Context, sl *Sale, amount types.Money, method PaymentMethod, refType ledger.ReferenceType, refID id.ID) error {
	accountID, err := s.resolveAccount(ctx, sl.StoreID, method)
	if err != nil {
		return err
	}
	_, err = s.poster.Post(ctx, sl.StoreID, []ledger.Entry{{
		AccountID: accountID,
		EntryType: ledger.Debit,
		Amount:    amount,
	}}, refType, refID, sl.Date, sl.Number)
	return err
}

// postPaid posts money leaving the store: CREDIT on the paying account.
func (s *Service) postPaid(ctx context.Context, sl *Sale, amount types.Money, method PaymentMethod, refType ledger.ReferenceType, refID id.ID) error {
	accountID, err := s.resolveAccount(ctx, sl.StoreID, method)
	if err != nil {
		return err
	}
	_, err = s.poster.Post(ctx, sl.StoreID, []ledger.Entry{{
		AccountID: accountID,
		EntryType: ledger.Credit,
		Amount:    amount,
	}}, refType, refID, time.Now().UTC(), sl.Number)
	return err
}

func (s *Service) resolveAccount(ctx context.Context, storeID string, method PaymentMethod) (id.ID, error) {
	if err := s.accounts.EnsureDefaults(ctx, storeID); err != nil {
		return id.Nil(), err
	}
	return s.accounts.ResolveForMethod(ctx, storeID, string(method))
}

func (s *Service) invalidate(ctx context.Context, storeID string) {
	if storeID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, storeID); err != nil {
		logger.Warn(ctx, "report cache invalidation failed", "store_id", storeID, "error", err)
	}
}
