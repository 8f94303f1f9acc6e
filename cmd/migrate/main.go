// Package main provides a CLI tool for applying the database schema.
package main

import (
	"context"
	"fmt"
	"os"

	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/pkg/logger"
)

// Statements run in order inside one transaction. The schema is small enough
// that a full migration tool would be overkill; every statement is idempotent.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS cat_products (
		tenant_id UUID NOT NULL,
		id UUID NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT '',
		unit_price NUMERIC(15,2) NOT NULL DEFAULT 0,
		current_stock BIGINT NOT NULL DEFAULT 0,
		min_stock BIGINT NOT NULL DEFAULT 0,
		is_service BOOLEAN NOT NULL DEFAULT false,
		PRIMARY KEY (tenant_id, id),
		UNIQUE (tenant_id, code),
		CHECK (is_service OR current_stock >= 0)
	)`,

	`CREATE TABLE IF NOT EXISTS cat_counterparties (
		tenant_id UUID NOT NULL,
		id UUID NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		tax_id TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (tenant_id, id),
		UNIQUE (tenant_id, code)
	)`,

	`CREATE TABLE IF NOT EXISTS cat_warehouses (
		tenant_id UUID NOT NULL,
		id UUID NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id),
		UNIQUE (tenant_id, code)
	)`,

	`CREATE TABLE IF NOT EXISTS doc_trade_documents (
		tenant_id UUID NOT NULL,
		id UUID NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		kind TEXT NOT NULL,
		number TEXT NOT NULL,
		date TIMESTAMPTZ NOT NULL,
		counterparty_id UUID NOT NULL,
		warehouse_id UUID,
		currency TEXT NOT NULL DEFAULT 'USD',
		status TEXT NOT NULL DEFAULT 'DRAFT',
		discount_percent NUMERIC(5,2) NOT NULL DEFAULT 0,
		subtotal NUMERIC(15,2) NOT NULL DEFAULT 0,
		tax_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		discount_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		grand_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_by TEXT NOT NULL DEFAULT '',
		updated_by TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (tenant_id, id),
		UNIQUE (tenant_id, number),
		FOREIGN KEY (tenant_id, counterparty_id) REFERENCES cat_counterparties (tenant_id, id),
		FOREIGN KEY (tenant_id, warehouse_id) REFERENCES cat_warehouses (tenant_id, id)
	)`,

	`CREATE TABLE IF NOT EXISTS doc_trade_document_items (
		tenant_id UUID NOT NULL,
		document_id UUID NOT NULL,
		line_id UUID NOT NULL,
		line_no INTEGER NOT NULL,
		product_id UUID NOT NULL,
		quantity BIGINT NOT NULL,
		unit_price NUMERIC(15,2) NOT NULL DEFAULT 0,
		tax_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		line_total NUMERIC(15,2) NOT NULL DEFAULT 0,
		PRIMARY KEY (tenant_id, line_id),
		UNIQUE (tenant_id, document_id, line_no),
		FOREIGN KEY (tenant_id, document_id) REFERENCES doc_trade_documents (tenant_id, id) ON DELETE CASCADE,
		FOREIGN KEY (tenant_id, product_id) REFERENCES cat_products (tenant_id, id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_documents_counterparty
		ON doc_trade_documents (tenant_id, counterparty_id)`,

	`CREATE INDEX IF NOT EXISTS idx_documents_kind_date
		ON doc_trade_documents (tenant_id, kind, date DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_document_items_document
		ON doc_trade_document_items (tenant_id, document_id)`,

	`CREATE INDEX IF NOT EXISTS idx_document_items_product
		ON doc_trade_document_items (tenant_id, product_id)`,
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

	txm := postgres.NewTxManager(pool)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := txm.GetQuerier(ctx)
		for i, stmt := range statements {
			if _, err := querier.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalw("migration failed", "error", err)
	}

	log.Infow("migration completed", "statements", len(statements))
}
