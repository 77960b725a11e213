package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

func (s *InventoryService) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.ListWarehouses(ctx)
}

func (s *InventoryService) GetWarehouse(ctx context.Context, id int64) (domain.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, err := s.repo.GetWarehouse(ctx, id)
	if err != nil {
		return domain.Warehouse{}, err
	}
	return *w, nil
}

// WarehouseLoad returns the current load, utilization and band of one warehouse.
func (s *InventoryService) WarehouseLoad(ctx context.Context, id int64) (domain.WarehouseLoad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return warehouseLoad(ctx, s.repo, id)
}

func (s *InventoryService) CreateWarehouse(ctx context.Context, w domain.Warehouse) (domain.Warehouse, error) {
	w = normalizeWarehouse(w)
	if err := w.Validate(); err != nil {
		return domain.Warehouse{}, err
	}

	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		return repo.CreateWarehouse(ctx, &w)
	})
	if err != nil {
		return domain.Warehouse{}, err
	}

	s.logger.Info("warehouse created", "warehouse_id", w.ID, "max_capacity", w.MaxCapacity)
	return w, nil
}

// UpdateWarehouse replaces name, location and capacity. Shrinking the
// capacity below what the warehouse already holds is rejected.
func (s *InventoryService) UpdateWarehouse(ctx context.Context, id int64, w domain.Warehouse) (domain.Warehouse, error) {
	w = normalizeWarehouse(w)
	if err := w.Validate(); err != nil {
		return domain.Warehouse{}, err
	}

	var updated domain.Warehouse
	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		existing, err := repo.GetWarehouse(ctx, id)
		if err != nil {
			return err
		}
		records, err := repo.ListInventoryByWarehouse(ctx, id)
		if err != nil {
			return err
		}
		if load := domain.CurrentLoad(id, records); load > w.MaxCapacity {
			return fmt.Errorf("%w: warehouse %d holds %d, more than the requested max capacity %d",
				domain.ErrCapacityExceeded, id, load, w.MaxCapacity)
		}

		existing.Name = w.Name
		existing.Location = w.Location
		existing.MaxCapacity = w.MaxCapacity
		existing.UpdatedAt = s.now()
		if err := repo.UpdateWarehouse(ctx, *existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return domain.Warehouse{}, err
	}
	return updated, nil
}

// DeleteWarehouse removes the warehouse and its inventory. Under the
// restrict policy a warehouse that still holds records is only removed
// when force is set.
func (s *InventoryService) DeleteWarehouse(ctx context.Context, id int64, force bool) error {
	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		if _, err := repo.GetWarehouse(ctx, id); err != nil {
			return err
		}
		if s.deletePolicy == domain.DeletePolicyRestrict && !force {
			records, err := repo.ListInventoryByWarehouse(ctx, id)
			if err != nil {
				return err
			}
			if len(records) > 0 {
				return domain.Validationf("warehouse %d still holds %d inventory records", id, len(records))
			}
		}
		return repo.DeleteWarehouse(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("warehouse deleted", "warehouse_id", id, "force", force)
	return nil
}

func normalizeWarehouse(w domain.Warehouse) domain.Warehouse {
	w.Name = strings.TrimSpace(w.Name)
	w.Location = strings.TrimSpace(w.Location)
	return w
}

func warehouseLoad(ctx context.Context, repo port.DatabaseRepository, id int64) (domain.WarehouseLoad, error) {
	w, err := repo.GetWarehouse(ctx, id)
	if err != nil {
		return domain.WarehouseLoad{}, err
	}
	records, err := repo.ListInventoryByWarehouse(ctx, id)
	if err != nil {
		return domain.WarehouseLoad{}, err
	}
	return domain.LoadOf(*w, records)
}
