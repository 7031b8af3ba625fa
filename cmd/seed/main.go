// Package main provides a CLI tool for creating the schema and seeding
// the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"tokopos/internal/core/types"
	"tokopos/internal/domain/catalog"
	"tokopos/internal/infrastructure/cache"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		price       NUMERIC(18,2) NOT NULL DEFAULT 0,
		cost_price  NUMERIC(18,2) NOT NULL DEFAULT 0,
		stock       INTEGER NOT NULL DEFAULT 0,
		description TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id             UUID PRIMARY KEY,
		transaction_id TEXT NOT NULL UNIQUE,
		items          JSONB NOT NULL DEFAULT '[]',
		subtotal       NUMERIC(18,2) NOT NULL DEFAULT 0,
		discount       NUMERIC(18,2) NOT NULL DEFAULT 0,
		total          NUMERIC(18,2) NOT NULL DEFAULT 0,
		total_cost     NUMERIC(18,2) NOT NULL DEFAULT 0,
		profit         NUMERIC(18,2) NOT NULL DEFAULT 0,
		date           TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_date ON sales (date DESC)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id          UUID PRIMARY KEY,
		category    TEXT NOT NULL,
		amount      NUMERIC(18,2) NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		date        TIMESTAMPTZ NOT NULL,
		recorded_by TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses (date DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id                 UUID PRIMARY KEY,
		entity_type        TEXT NOT NULL,
		entity_id          UUID NOT NULL,
		action             TEXT NOT NULL,
		user_id            TEXT NOT NULL DEFAULT '',
		username           TEXT NOT NULL DEFAULT '',
		details            JSONB,
		details_compressed BYTEA,
		compression_algo   TEXT NOT NULL DEFAULT 'none',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log (entity_type, entity_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS sequences (
		key         TEXT PRIMARY KEY,
		current_val BIGINT NOT NULL DEFAULT 0
	)`,
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

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}
	log.Info("schema applied")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoProducts(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seed complete")
}

func seedDemoProducts(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		log.Infow("products already present, skipping demo seed", "count", count)
		return nil
	}

	txm := postgres.NewTxManager(pool)
	catalogService := catalog.NewService(postgres.NewProductRepo(txm), cache.NoopViews{})

	demo := []*catalog.Product{
		newDemoProduct("Kopi Susu", "25000", "17000", 120),
		newDemoProduct("Es Teh Manis", "8000", "3000", 200),
		newDemoProduct("Nasi Goreng", "30000", "18000", 50),
		newDemoProduct("Roti Bakar", "15000", "7000", 80),
		newDemoProduct("Air Mineral", "5000", "2500", 300),
	}

	created, err := catalogService.CreateMany(ctx, demo)
	if err != nil {
		return fmt.Errorf("create demo products: %w", err)
	}
	log.Infow("demo products seeded", "count", created)
	return nil
}

func newDemoProduct(name, price, cost string, stock int) *catalog.Product {
	return catalog.NewProduct(name, types.MustMoney(price), types.MustMoney(cost), stock)
}
