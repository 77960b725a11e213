package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

const transferKeyPrefix = "transfer:"

// Transfer moves amount units of a product from one warehouse to another.
// Debit, credit and the journal entry commit together or not at all.
func (s *InventoryService) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	if req.SourceWarehouseID == req.DestWarehouseID {
		return domain.TransferResult{}, fmt.Errorf("%w: same warehouse", domain.ErrInvalidTransfer)
	}
	if req.Amount <= 0 {
		return domain.TransferResult{}, domain.Validationf("transfer amount must be positive")
	}

	idempotencyKey := ""
	if s.cache != nil && req.RequestID != "" {
		idempotencyKey = transferKeyPrefix + req.RequestID
		ok, err := s.cache.SetIdempotency(ctx, idempotencyKey)
		if err != nil {
			return domain.TransferResult{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return domain.TransferResult{}, ErrDuplicateRequest
		}
	}

	var result domain.TransferResult
	err := s.mutate(ctx, func(repo port.DatabaseRepository, undo *undoLog) error {
		var err error
		result, err = s.applyTransfer(ctx, repo, undo, req)
		return err
	})
	if err != nil {
		s.releaseIdempotency(ctx, idempotencyKey)
		s.logger.Warn("transfer rejected",
			"source_warehouse_id", req.SourceWarehouseID,
			"dest_warehouse_id", req.DestWarehouseID,
			"product_id", req.ProductID,
			"amount", req.Amount,
			"error", err,
		)
		return domain.TransferResult{}, err
	}

	s.logger.Info("transfer applied",
		"transfer_id", result.Transfer.ID,
		"source_warehouse_id", req.SourceWarehouseID,
		"dest_warehouse_id", req.DestWarehouseID,
		"product_id", req.ProductID,
		"amount", req.Amount,
	)
	return result, nil
}

func (s *InventoryService) applyTransfer(ctx context.Context, repo port.DatabaseRepository, undo *undoLog, req domain.TransferRequest) (domain.TransferResult, error) {
	// product before warehouses, the same lock order CreateInventory uses
	product, productErr := repo.GetProduct(ctx, req.ProductID)
	src, dest, err := lockWarehousePair(ctx, repo, req.SourceWarehouseID, req.DestWarehouseID)
	if err != nil {
		return domain.TransferResult{}, err
	}
	if productErr != nil {
		return domain.TransferResult{}, productErr
	}

	srcRecords, err := repo.FindInventory(ctx, req.ProductID, src.ID)
	if err != nil {
		return domain.TransferResult{}, err
	}
	source, available := pickSource(srcRecords, req.Amount)
	if source == nil {
		return domain.TransferResult{}, fmt.Errorf("%w: product %d in warehouse %d: available %d, requested %d",
			domain.ErrInsufficientStock, req.ProductID, src.ID, available, req.Amount)
	}

	destRecords, err := repo.ListInventoryByWarehouse(ctx, dest.ID)
	if err != nil {
		return domain.TransferResult{}, err
	}
	destLoad := domain.CurrentLoad(dest.ID, destRecords)
	if !domain.Fits(*dest, destLoad, req.Amount) {
		return domain.TransferResult{}, capacityExceeded(dest.ID, destLoad, req.Amount, dest.MaxCapacity)
	}

	now := s.now()

	before := *source
	debited := *source
	debited.Quantity -= req.Amount
	debited.UpdatedAt = now
	if err := repo.UpdateInventory(ctx, debited); err != nil {
		return domain.TransferResult{}, fmt.Errorf("debit source: %w", err)
	}
	undo.push(func(ctx context.Context) error {
		return repo.UpdateInventory(ctx, before)
	})

	var credited domain.InventoryRecord
	if target := pickDestination(destRecords, req.ProductID, req.StorageLocation); target != nil {
		prev := *target
		credited = *target
		credited.Quantity += req.Amount
		credited.UpdatedAt = now
		if err := repo.UpdateInventory(ctx, credited); err != nil {
			return domain.TransferResult{}, fmt.Errorf("credit destination: %w", err)
		}
		undo.push(func(ctx context.Context) error {
			return repo.UpdateInventory(ctx, prev)
		})
	} else {
		location := req.StorageLocation
		if location == "" {
			location = domain.DefaultTransferLocation
		}
		credited = domain.InventoryRecord{
			ProductID:       req.ProductID,
			WarehouseID:     dest.ID,
			Quantity:        req.Amount,
			StorageLocation: location,
		}
		if err := repo.CreateInventory(ctx, &credited); err != nil {
			return domain.TransferResult{}, fmt.Errorf("credit destination: %w", err)
		}
		createdID := credited.ID
		undo.push(func(ctx context.Context) error {
			return repo.DeleteInventory(ctx, createdID)
		})
	}

	transfer := domain.Transfer{
		ID:                s.newID(),
		SourceWarehouseID: src.ID,
		DestWarehouseID:   dest.ID,
		ProductID:         req.ProductID,
		Amount:            req.Amount,
		SourceRecordID:    debited.ID,
		DestRecordID:      credited.ID,
		CreatedAt:         now,
	}
	if err := repo.CreateTransfer(ctx, transfer); err != nil {
		return domain.TransferResult{}, fmt.Errorf("record transfer: %w", err)
	}

	srcLoad, err := warehouseLoad(ctx, repo, src.ID)
	if err != nil {
		return domain.TransferResult{}, err
	}
	dstLoad, err := warehouseLoad(ctx, repo, dest.ID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	return domain.TransferResult{
		Transfer:        transfer,
		Source:          debited,
		Destination:     credited,
		SourceLoad:      srcLoad,
		DestLoad:        dstLoad,
		Product:         *product,
		SourceWarehouse: *src,
		DestWarehouse:   *dest,
	}, nil
}

// lockWarehousePair reads both warehouses in ascending id order, so
// transactional stores take their row locks in the same order for A->B and
// B->A. A missing destination is reported before a missing source.
func lockWarehousePair(ctx context.Context, repo port.DatabaseRepository, sourceID, destID int64) (*domain.Warehouse, *domain.Warehouse, error) {
	firstID, secondID := sourceID, destID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}
	first, firstErr := repo.GetWarehouse(ctx, firstID)
	second, secondErr := repo.GetWarehouse(ctx, secondID)

	src, srcErr := first, firstErr
	dest, destErr := second, secondErr
	if firstID != sourceID {
		src, srcErr = second, secondErr
		dest, destErr = first, firstErr
	}
	if destErr != nil {
		return nil, nil, fmt.Errorf("destination: %w", destErr)
	}
	if srcErr != nil {
		return nil, nil, fmt.Errorf("source: %w", srcErr)
	}
	return src, dest, nil
}

// ListTransfers returns the most recent transfers, newest first.
func (s *InventoryService) ListTransfers(ctx context.Context, limit int) ([]domain.Transfer, error) {
	if limit <= 0 {
		return nil, domain.Validationf("limit must be positive")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo.ListTransfers(ctx, limit)
}

// pickSource returns the lowest-id record holding at least amount units, and
// the largest single quantity on offer for the error message.
func pickSource(records []domain.InventoryRecord, amount int) (*domain.InventoryRecord, int) {
	available := 0
	for i := range records {
		if records[i].Quantity >= amount {
			return &records[i], records[i].Quantity
		}
		available = max(available, records[i].Quantity)
	}
	return nil, available
}

// pickDestination finds the record to credit: the one at the requested
// storage location, or the lowest-id record for the product when none is named.
func pickDestination(records []domain.InventoryRecord, productID int64, location string) *domain.InventoryRecord {
	for i := range records {
		if records[i].ProductID != productID {
			continue
		}
		if location == "" || records[i].StorageLocation == location {
			return &records[i]
		}
	}
	return nil
}

func (s *InventoryService) releaseIdempotency(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.cache.ReleaseIdempotency(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("failed to release idempotency key", "key", key, "error", err)
	}
}
