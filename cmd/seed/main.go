// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"tradebook/internal/core/tenant"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalog"
	"tradebook/internal/domain/document"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/pkg/logger"
)

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

	tenantID := os.Getenv("SEED_TENANT_ID")
	if tenantID == "" {
		tenantID = uuid.New().String()
	}

	tid, err := tenant.Resolve(tenantID)
	if err != nil {
		log.Fatalw("invalid SEED_TENANT_ID", "value", tenantID, "error", err)
	}

	if err := seed(ctx, pool, tid); err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Infow("seeding completed", "tenant_id", tid.String())
}

func seed(ctx context.Context, pool *postgres.Pool, tid tenant.ID) error {
	_, err := pool.Exec(ctx,
		`INSERT INTO tenants (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		tid.UUID(), "Demo Trading Co",
	)
	if err != nil {
		return fmt.Errorf("insert tenant: %w", err)
	}

	txm := postgres.NewTxManager(pool)
	catalogRepo := postgres.NewCatalogRepo(txm)
	documentRepo := postgres.NewDocumentRepo(txm)
	stockRepo := postgres.NewStockRepo(txm)

	catalogSvc := catalog.NewService(catalogRepo)
	processor := document.NewProcessor(documentRepo, stockRepo, catalogRepo, txm)

	// Catalogs
	widget := catalog.NewProduct("WIDGET-1", "Standard Widget", "pcs")
	widget.UnitPrice = types.MustMoney("25.00")
	widget.MinStock = types.NewQuantityFromFloat64(5)
	if err := catalogSvc.CreateProduct(ctx, tid, widget); err != nil {
		return err
	}

	gadget := catalog.NewProduct("GADGET-1", "Premium Gadget", "pcs")
	gadget.UnitPrice = types.MustMoney("120.00")
	gadget.MinStock = types.NewQuantityFromFloat64(2)
	if err := catalogSvc.CreateProduct(ctx, tid, gadget); err != nil {
		return err
	}

	install := catalog.NewProduct("SVC-INSTALL", "Installation Service", "h")
	install.UnitPrice = types.MustMoney("80.00")
	install.IsService = true
	if err := catalogSvc.CreateProduct(ctx, tid, install); err != nil {
		return err
	}

	supplier := catalog.NewCounterparty("SUP-1", "Acme Supplies", catalog.CounterpartySupplier)
	if err := catalogSvc.CreateCounterparty(ctx, tid, supplier); err != nil {
		return err
	}

	client := catalog.NewCounterparty("CLI-1", "Globex Retail", catalog.CounterpartyClient)
	if err := catalogSvc.CreateCounterparty(ctx, tid, client); err != nil {
		return err
	}

	warehouse := catalog.NewWarehouse("WH-MAIN", "Main Warehouse")
	if err := catalogSvc.CreateWarehouse(ctx, tid, warehouse); err != nil {
		return err
	}

	// Stock in via a confirmed purchase
	whID := warehouse.ID
	_, err = processor.Create(ctx, tid, document.CreateInput{
		Kind:           document.KindPurchase,
		Number:         "PUR-0001",
		CounterpartyID: supplier.ID,
		WarehouseID:    &whID,
		Confirm:        true,
		Items: []document.ItemInput{
			{ProductID: widget.ID, Quantity: types.NewQuantityFromFloat64(50), UnitPrice: types.MustMoney("18.00"), TaxRate: types.MustMoney("20")},
			{ProductID: gadget.ID, Quantity: types.NewQuantityFromFloat64(10), UnitPrice: types.MustMoney("95.00"), TaxRate: types.MustMoney("20")},
		},
	})
	if err != nil {
		return fmt.Errorf("seed purchase: %w", err)
	}

	// A confirmed sale with a service line
	_, err = processor.Create(ctx, tid, document.CreateInput{
		Kind:           document.KindSale,
		Number:         "SAL-0001",
		CounterpartyID: client.ID,
		WarehouseID:    &whID,
		Confirm:        true,
		Items: []document.ItemInput{
			{ProductID: widget.ID, Quantity: types.NewQuantityFromFloat64(4), UnitPrice: types.MustMoney("25.00"), TaxRate: types.MustMoney("20")},
			{ProductID: install.ID, Quantity: types.NewQuantityFromFloat64(2), UnitPrice: types.MustMoney("80.00"), TaxRate: types.MustMoney("20")},
		},
	})
	if err != nil {
		return fmt.Errorf("seed sale: %w", err)
	}

	return nil
}
