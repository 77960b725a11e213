package storage

import (
	"time"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

type productRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null"`
	SKU         string `gorm:"column:sku;size:128;not null;uniqueIndex"`
	Description string `gorm:"size:256;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRow) TableName() string { return "products" }

type warehouseRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:255;not null"`
	Location    string `gorm:"size:255;not null"`
	MaxCapacity int    `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (warehouseRow) TableName() string { return "warehouses" }

type inventoryRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	ProductID       int64  `gorm:"not null;index:idx_inventory_pair,priority:1"`
	WarehouseID     int64  `gorm:"not null;index:idx_inventory_pair,priority:2;index"`
	Quantity        int    `gorm:"not null"`
	StorageLocation string `gorm:"size:255;not null;default:''"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (inventoryRow) TableName() string { return "inventory" }

// transferRow orders the journal by an auto-increment sequence; the public
// transfer id is a UUID.
type transferRow struct {
	Seq               int64  `gorm:"primaryKey;autoIncrement"`
	TransferID        string `gorm:"size:36;not null;uniqueIndex"`
	SourceWarehouseID int64  `gorm:"not null"`
	DestWarehouseID   int64  `gorm:"not null"`
	ProductID         int64  `gorm:"not null"`
	Amount            int    `gorm:"not null"`
	SourceRecordID    int64  `gorm:"not null"`
	DestRecordID      int64  `gorm:"not null"`
	CreatedAt         time.Time
}

func (transferRow) TableName() string { return "transfers" }

func productFromRow(r productRow) domain.Product {
	return domain.Product{ID: r.ID, Name: r.Name, SKU: r.SKU, Description: r.Description, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func warehouseFromRow(r warehouseRow) domain.Warehouse {
	return domain.Warehouse{ID: r.ID, Name: r.Name, Location: r.Location, MaxCapacity: r.MaxCapacity, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func inventoryFromRow(r inventoryRow) domain.InventoryRecord {
	return domain.InventoryRecord{
		ID:              r.ID,
		ProductID:       r.ProductID,
		WarehouseID:     r.WarehouseID,
		Quantity:        r.Quantity,
		StorageLocation: r.StorageLocation,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func transferFromRow(r transferRow) domain.Transfer {
	return domain.Transfer{
		ID:                r.TransferID,
		SourceWarehouseID: r.SourceWarehouseID,
		DestWarehouseID:   r.DestWarehouseID,
		ProductID:         r.ProductID,
		Amount:            r.Amount,
		SourceRecordID:    r.SourceRecordID,
		DestRecordID:      r.DestRecordID,
		CreatedAt:         r.CreatedAt,
	}
}

func mapRows[R, T any](rows []R, fn func(R) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}
