package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

func (s *InventoryService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.ListProducts(ctx)
}

func (s *InventoryService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *InventoryService) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p = normalizeProduct(p)
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}

	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		if err := ensureUniqueSKU(ctx, repo, p.SKU, 0); err != nil {
			return err
		}
		return repo.CreateProduct(ctx, &p)
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("product created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

// UpdateProduct replaces the product's name, SKU and description.
func (s *InventoryService) UpdateProduct(ctx context.Context, id int64, p domain.Product) (domain.Product, error) {
	p = normalizeProduct(p)
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}

	var updated domain.Product
	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		existing, err := repo.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureUniqueSKU(ctx, repo, p.SKU, id); err != nil {
			return err
		}

		existing.Name = p.Name
		existing.SKU = p.SKU
		existing.Description = p.Description
		existing.UpdatedAt = s.now()
		if err := repo.UpdateProduct(ctx, *existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

// DeleteProduct removes the product together with all of its inventory records.
func (s *InventoryService) DeleteProduct(ctx context.Context, id int64) error {
	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		if _, err := repo.GetProduct(ctx, id); err != nil {
			return err
		}
		return repo.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("product deleted", "product_id", id)
	return nil
}

func normalizeProduct(p domain.Product) domain.Product {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
	return p
}

func ensureUniqueSKU(ctx context.Context, repo port.DatabaseRepository, sku string, selfID int64) error {
	other, err := repo.FindProductBySKU(ctx, sku)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if other.ID != selfID {
		return domain.Validationf("sku %q is already used by product %d", sku, other.ID)
	}
	return nil
}
