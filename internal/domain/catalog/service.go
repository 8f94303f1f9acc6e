package catalog

import (
	"context"
	"fmt"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tenant"
	"tradebook/pkg/logger"
)

// Service provides catalog management on top of the repository.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateProduct validates and persists a product.
func (s *Service) CreateProduct(ctx context.Context, tid tenant.ID, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.CreateProduct(ctx, tid, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	logger.Info(ctx, "product created", "id", p.ID, "code", p.Code)
	return nil
}

// GetProduct returns a product by id.
func (s *Service) GetProduct(ctx context.Context, tid tenant.ID, productID id.ID) (*Product, error) {
	return s.repo.ProductByID(ctx, tid, productID)
}

// ListProducts lists products for the tenant.
func (s *Service) ListProducts(ctx context.Context, tid tenant.ID, filter ListFilter) ([]Product, error) {
	return s.repo.ListProducts(ctx, tid, filter)
}

// CreateCounterparty validates and persists a counterparty.
func (s *Service) CreateCounterparty(ctx context.Context, tid tenant.ID, c *Counterparty) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.CreateCounterparty(ctx, tid, c); err != nil {
		return fmt.Errorf("create counterparty: %w", err)
	}
	logger.Info(ctx, "counterparty created", "id", c.ID, "code", c.Code)
	return nil
}

// ListCounterparties lists counterparties for the tenant.
func (s *Service) ListCounterparties(ctx context.Context, tid tenant.ID, filter ListFilter) ([]Counterparty, error) {
	return s.repo.ListCounterparties(ctx, tid, filter)
}

// CreateWarehouse validates and persists a warehouse.
func (s *Service) CreateWarehouse(ctx context.Context, tid tenant.ID, w *Warehouse) error {
	if err := w.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.CreateWarehouse(ctx, tid, w); err != nil {
		return fmt.Errorf("create warehouse: %w", err)
	}
	logger.Info(ctx, "warehouse created", "id", w.ID, "code", w.Code)
	return nil
}

// ListWarehouses lists warehouses for the tenant.
func (s *Service) ListWarehouses(ctx context.Context, tid tenant.ID, filter ListFilter) ([]Warehouse, error) {
	return s.repo.ListWarehouses(ctx, tid, filter)
}
