package domain

import "time"

// DefaultTransferLocation is the storage location given to destination
// records created by a transfer when the caller names none.
const DefaultTransferLocation = "Transferred"

type InventoryRecord struct {
	ID              int64
	ProductID       int64
	WarehouseID     int64
	Quantity        int
	StorageLocation string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r InventoryRecord) Validate() error {
	if r.ProductID <= 0 {
		return Validationf("product is required")
	}
	if r.WarehouseID <= 0 {
		return Validationf("warehouse is required")
	}
	if r.Quantity < 0 {
		return Validationf("quantity cannot be negative")
	}
	return nil
}

// InventoryPatch carries a partial update; nil fields are left unchanged.
type InventoryPatch struct {
	ProductID       *int64
	WarehouseID     *int64
	Quantity        *int
	StorageLocation *string
}

func (p InventoryPatch) Apply(r InventoryRecord) InventoryRecord {
	if p.ProductID != nil {
		r.ProductID = *p.ProductID
	}
	if p.WarehouseID != nil {
		r.WarehouseID = *p.WarehouseID
	}
	if p.Quantity != nil {
		r.Quantity = *p.Quantity
	}
	if p.StorageLocation != nil {
		r.StorageLocation = *p.StorageLocation
	}
	return r
}

// Snapshot is the full entity set at one point in time.
type Snapshot struct {
	Products   []Product
	Warehouses []Warehouse
	Inventory  []InventoryRecord
}
