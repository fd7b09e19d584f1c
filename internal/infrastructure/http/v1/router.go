package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/core/types"
	"tillpoint/internal/domain/auth"
	"tillpoint/internal/domain/catalogs/account"
	"tillpoint/internal/domain/catalogs/customer"
	"tillpoint/internal/domain/catalogs/product"
	"tillpoint/internal/domain/catalogs/supplier"
	"tillpoint/internal/domain/documents/purchaseorder"
	"tillpoint/internal/domain/documents/sale"
	"tillpoint/internal/domain/ledger"
	"tillpoint/internal/domain/pricing"
	"tillpoint/internal/domain/reports"
	"tillpoint/internal/domain/stockentry"
	"tillpoint/internal/infrastructure/http/v1/handlers"
	"tillpoint/internal/infrastructure/http/v1/middleware"
	"tillpoint/internal/infrastructure/storage/postgres"
	"tillpoint/internal/infrastructure/storage/postgres/auth_repo"
	"tillpoint/internal/infrastructure/storage/postgres/catalog_repo"
	"tillpoint/internal/infrastructure/storage/postgres/document_repo"
	"tillpoint/internal/infrastructure/storage/postgres/entry_repo"
	"tillpoint/internal/infrastructure/storage/postgres/ledger_repo"
	"tillpoint/internal/infrastructure/storage/postgres/report_repo"
	"tillpoint/pkg/logger"
	"tillpoint/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks and numbering)
	Pool *postgres.Pool

	// TxManager provides transactional access to the pool
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTSecret signs access tokens
	JWTSecret string

	// ReportCache caches built reports; nil disables caching
	ReportCache reports.Cache
}

// NewRouter creates and configures the Gin router with all services wired.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	services, err := buildServices(cfg)
	if err != nil {
		return nil, err
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, services.Auth)

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		publicAuth := apiV1.Group("/auth")
		protectedAuth := apiV1.Group("/auth")
		protectedAuth.Use(middleware.Auth(services.Auth.JWT()))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(services.Auth.JWT()))

		registerAll(protected,
			handlers.NewProductHandler(baseHandler, services.Products),
			handlers.NewSupplierHandler(baseHandler, services.Suppliers),
			handlers.NewCustomerHandler(baseHandler, services.Customers, services.Sales),
			handlers.NewAccountHandler(baseHandler, services.Accounts),
			handlers.NewDiscountRuleHandler(baseHandler, services.Pricing),
			handlers.NewSaleHandler(baseHandler, services.Sales),
			handlers.NewPurchaseOrderHandler(baseHandler, services.PurchaseOrders),
			handlers.NewLedgerHandler(baseHandler, services.Ledger),
			handlers.NewReportsHandler(baseHandler, services.Reports),
		)
	}

	return router, nil
}

// Services bundles the wired domain services.
type Services struct {
	Auth           *auth.Service
	Products       *product.Service
	Suppliers      *supplier.Service
	Customers      *customer.Service
	Accounts       *account.Service
	Pricing        *pricing.Service
	Sales          *sale.Service
	PurchaseOrders *purchaseorder.Service
	Ledger         *ledger.Service
	Reports        *reports.Service
}

// buildServices constructs the repository and service graph on one pool.
func buildServices(cfg RouterConfig) (*Services, error) {
	txManager := cfg.TxManager
	num := numerator.New(cfg.Pool)

	auditSvc, err := postgres.NewAuditService(txManager)
	if err != nil {
		return nil, err
	}
	auditor := postgres.NewDomainAuditor(auditSvc)

	// Repositories.
	productRepo := catalog_repo.NewProductRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	accountRepo := catalog_repo.NewAccountRepo(txManager)
	discountRepo := catalog_repo.NewDiscountRuleRepo(txManager)
	saleRepo := document_repo.NewSaleRepo(txManager)
	poRepo := document_repo.NewPurchaseOrderRepo(txManager)
	entryRepo := entry_repo.NewStockEntryRepo(txManager)
	transactionRepo := ledger_repo.NewTransactionRepo(txManager)
	expenseRepo := ledger_repo.NewExpenseRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// Services, dependency order: accounts and the ledger first, then the
	// stock layer, then the documents that drive both.
	accountSvc := account.NewService(accountRepo, txManager)
	ledgerSvc := ledger.NewService(transactionRepo, expenseRepo, accountRepo, txManager, num)
	supplierSvc := supplier.NewService(supplierRepo, ledgerSvc, txManager, auditor)
	customerSvc := customer.NewService(customerRepo, txManager)

	entrySvc := stockentry.NewService(entryRepo)
	reconciler := stockentry.NewReconciler(entryRepo, supplierSvc)

	engine, err := pricing.NewEngine()
	if err != nil {
		return nil, err
	}
	pricingSvc := pricing.NewService(discountRepo, engine, txManager)

	reportsSvc := reports.NewService(reportRepo, cfg.ReportCache)

	saleSvc := sale.NewService(sale.ServiceConfig{
		Repo:      saleRepo,
		Products:  productRepo,
		Customers: customerSvc,
		Accounts:  accountSvc,
		Poster:    ledgerSvc,
		Discounts: discountAdapter{pricingSvc},
		Cache:     reportsSvc,
		TxManager: txManager,
		Numerator: num,
		Audit:     auditor,
	})

	productSvc := product.NewService(productRepo, entrySvc, reconciler, saleSvc, txManager, auditor)

	poSvc := purchaseorder.NewService(purchaseorder.ServiceConfig{
		Repo:      poRepo,
		Products:  productRepo,
		Entries:   entrySvc,
		Suppliers: supplierSvc,
		TxManager: txManager,
		Numerator: num,
		Audit:     auditor,
	})

	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	authSvc := auth.NewService(userRepo, jwtSvc)

	return &Services{
		Auth:           authSvc,
		Products:       productSvc,
		Suppliers:      supplierSvc,
		Customers:      customerSvc,
		Accounts:       accountSvc,
		Pricing:        pricingSvc,
		Sales:          saleSvc,
		PurchaseOrders: poSvc,
		Ledger:         ledgerSvc,
		Reports:        reportsSvc,
	}, nil
}

// discountAdapter bridges the pricing service into the sale lifecycle.
type discountAdapter struct {
	pricing *pricing.Service
}

func (a discountAdapter) BestDiscount(ctx context.Context, storeID string, in sale.DiscountInput) (types.Money, error) {
	return a.pricing.BestDiscount(ctx, storeID, pricing.Input{
		Subtotal:       in.Subtotal,
		ItemCount:      in.ItemCount,
		CustomerLinked: in.CustomerLinked,
		PaymentMethod:  in.PaymentMethod,
	})
}
