package service

import (
	"context"
	"fmt"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

func (s *InventoryService) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.ListInventory(ctx)
}

func (s *InventoryService) GetInventory(ctx context.Context, id int64) (domain.InventoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.repo.GetInventory(ctx, id)
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	return *r, nil
}

// CreateInventory stores a new record, or adds the quantity to an existing
// record for the same product, warehouse and storage location.
func (s *InventoryService) CreateInventory(ctx context.Context, r domain.InventoryRecord) (domain.InventoryRecord, error) {
	if err := r.Validate(); err != nil {
		return domain.InventoryRecord{}, err
	}

	var saved domain.InventoryRecord
	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		if _, err := repo.GetProduct(ctx, r.ProductID); err != nil {
			return err
		}
		w, err := repo.GetWarehouse(ctx, r.WarehouseID)
		if err != nil {
			return err
		}
		records, err := repo.ListInventoryByWarehouse(ctx, w.ID)
		if err != nil {
			return err
		}
		load := domain.CurrentLoad(w.ID, records)
		if !domain.Fits(*w, load, r.Quantity) {
			return capacityExceeded(w.ID, load, r.Quantity, w.MaxCapacity)
		}

		for _, existing := range records {
			if existing.ProductID == r.ProductID && existing.StorageLocation == r.StorageLocation {
				existing.Quantity += r.Quantity
				existing.UpdatedAt = s.now()
				if err := repo.UpdateInventory(ctx, existing); err != nil {
					return err
				}
				saved = existing
				return nil
			}
		}

		if err := repo.CreateInventory(ctx, &r); err != nil {
			return err
		}
		saved = r
		return nil
	})
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	return saved, nil
}

// UpdateInventory applies a partial update. The record may move to another
// warehouse; the capacity check counts the target's load without this record.
func (s *InventoryService) UpdateInventory(ctx context.Context, id int64, patch domain.InventoryPatch) (domain.InventoryRecord, error) {
	var updated domain.InventoryRecord
	err := s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		existing, err := repo.GetInventory(ctx, id)
		if err != nil {
			return err
		}
		next := patch.Apply(*existing)
		if err := next.Validate(); err != nil {
			return err
		}
		if _, err := repo.GetProduct(ctx, next.ProductID); err != nil {
			return err
		}
		w, err := repo.GetWarehouse(ctx, next.WarehouseID)
		if err != nil {
			return err
		}
		records, err := repo.ListInventoryByWarehouse(ctx, w.ID)
		if err != nil {
			return err
		}
		load := domain.CurrentLoad(w.ID, withoutRecord(records, id))
		if !domain.Fits(*w, load, next.Quantity) {
			return capacityExceeded(w.ID, load, next.Quantity, w.MaxCapacity)
		}

		next.UpdatedAt = s.now()
		if err := repo.UpdateInventory(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	return updated, nil
}

func (s *InventoryService) DeleteInventory(ctx context.Context, id int64) error {
	return s.mutate(ctx, func(repo port.DatabaseRepository, _ *undoLog) error {
		if _, err := repo.GetInventory(ctx, id); err != nil {
			return err
		}
		return repo.DeleteInventory(ctx, id)
	})
}

func withoutRecord(records []domain.InventoryRecord, id int64) []domain.InventoryRecord {
	out := make([]domain.InventoryRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

func capacityExceeded(warehouseID int64, load, amount, maxCapacity int) error {
	return fmt.Errorf("%w: warehouse %d holds %d, adding %d exceeds max capacity %d",
		domain.ErrCapacityExceeded, warehouseID, load, amount, maxCapacity)
}
