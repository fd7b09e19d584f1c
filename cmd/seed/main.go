// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"tillpoint/internal/core/id"
	"tillpoint/internal/infrastructure/storage/postgres"
	"tillpoint/pkg/logger"
)

// qty converts whole units to the fixed-point quantity representation.
func qty(units int64) int64 {
	return units * 10_000
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	storeID := os.Getenv("STORE_ID")
	if storeID == "" {
		storeID = "store-001"
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log, storeID); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedDefaultAccounts(ctx, pool, log, storeID); err != nil {
		log.Fatalw("failed to seed default accounts", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, storeID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger, storeID string) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@tillpoint.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM sys_users WHERE LOWER(email) = LOWER($1)`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO sys_users (
			id, email, password_hash, name, store_id,
			is_active, is_admin, version
		)
		VALUES ($1, LOWER($2), $3, 'Store Admin', $4, true, true, 1)
	`, userID, adminEmail, string(passwordHash), storeID)
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID, "store_id", storeID)
	return nil
}

func seedDefaultAccounts(ctx context.Context, pool *postgres.Pool, log *logger.Logger, storeID string) error {
	accounts := []struct {
		code string
		name string
	}{
		{"CASH", "Cash in Hand"},
		{"BANK", "Bank"},
	}

	for _, a := range accounts {
		_, err := pool.Exec(ctx, `
			INSERT INTO cat_accounts (id, code, name, store_id, account_type, opening_balance, current_balance, version, deletion_mark)
			VALUES ($1, $2, $3, $4, 'asset', 0, 0, 1, false)
			ON CONFLICT (store_id, name) WHERE deletion_mark = FALSE DO NOTHING
		`, id.New(), a.code, a.name, storeID)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.name, err)
		}
	}

	log.Infow("default accounts ensured", "store_id", storeID)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, storeID string) error {
	log.Info("seeding demo data...")

	// 1. Supplier the demo products come from.
	supplierID := id.New()
	supplierCode := "SUP-001"
	tag, err := pool.Exec(ctx, `
		INSERT INTO cat_suppliers (id, code, name, store_id, contact_person, phone, current_balance, version, deletion_mark)
		VALUES ($1, $2, 'Harborview Wholesale', $3, 'M. Okafor', '+15550100', 0, 1, false)
		ON CONFLICT DO NOTHING
	`, supplierID, supplierCode, storeID)
	if err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = pool.QueryRow(ctx,
			`SELECT id FROM cat_suppliers WHERE store_id = $1 AND code = $2 AND deletion_mark = FALSE`,
			storeID, supplierCode,
		).Scan(&supplierID)
		if err != nil {
			return fmt.Errorf("fetch existing supplier: %w", err)
		}
	}

	// 2. Demo customers.
	customers := []struct {
		code  string
		name  string
		phone string
	}{
		{"CUST-001", "Ama Mensah", "+15550201"},
		{"CUST-002", "Kofi Boateng", "+15550202"},
	}
	for _, c := range customers {
		_, err := pool.Exec(ctx, `
			INSERT INTO cat_customers (id, code, name, store_id, phone, current_balance, version, deletion_mark)
			VALUES ($1, $2, $3, $4, $5, 0, 1, false)
			ON CONFLICT DO NOTHING
		`, id.New(), c.code, c.name, storeID, c.phone)
		if err != nil {
			return fmt.Errorf("seed customer %s: %w", c.name, err)
		}
	}

	// 3. Demo products with initial stock entries. The entry mirrors the
	// stock so reconciliation finds a consistent starting state.
	products := []struct {
		sku     string
		name    string
		kind    string
		stock   int64
		buying  string
		selling string
	}{
		{"FAB-COT-BLU", "Blue Cotton Fabric", "raw_material", 50, "12.00", "18.50"},
		{"SHIRT-M-WHT", "White Shirt (M)", "simple", 25, "8.00", "15.00"},
		{"SHIRT-L-WHT", "White Shirt (L)", "simple", 25, "8.50", "16.00"},
		{"BTN-PACK-100", "Buttons 100-pack", "simple", 40, "2.00", "4.50"},
	}

	for _, p := range products {
		productID := id.New()
		tag, err := pool.Exec(ctx, `
			INSERT INTO cat_products (
				id, code, name, store_id, kind,
				base_unit, sell_by_unit, stock_level,
				buying_price, selling_price, supplier_id,
				is_active, version, deletion_mark
			)
			VALUES ($1, $2, $3, $4, $5, 'piece', 'piece', $6, $7, $8, $9, true, 1, false)
			ON CONFLICT (store_id, code) WHERE deletion_mark = FALSE DO NOTHING
		`, productID, p.sku, p.name, storeID, p.kind, qty(p.stock), p.buying, p.selling, supplierID)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.sku, err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO reg_stock_entries (
				id, product_id, store_id, supplier_id,
				quantity, unit, buying_price, total_cost,
				entry_type, is_initial, version, deletion_mark
			)
			VALUES ($1, $2, $3, $4, $5, 'piece', $6, $7::numeric * $8, 'initial_stock', true, 1, false)
		`, id.New(), productID, storeID, supplierID, qty(p.stock), p.buying, p.buying, p.stock)
		if err != nil {
			return fmt.Errorf("seed initial entry %s: %w", p.sku, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO cat_supplier_products (supplier_id, product_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, supplierID, productID)
		if err != nil {
			return fmt.Errorf("link supplier product %s: %w", p.sku, err)
		}
	}

	// 4. A starter discount rule: 5% off cash purchases over 100.
	_, err = pool.Exec(ctx, `
		INSERT INTO cat_discount_rules (id, code, name, store_id, expression, priority, active, version, deletion_mark)
		VALUES ($1, 'CASH5', '5% off cash purchases over 100', $2,
			'payment_method == "cash" && subtotal > 100.0 ? subtotal * 0.05 : 0.0',
			10, true, 1, false)
		ON CONFLICT DO NOTHING
	`, id.New(), storeID)
	if err != nil {
		return fmt.Errorf("seed discount rule: %w", err)
	}

	log.Info("demo data seeded successfully")
	return nil
}
