package domain

import "time"

type TransferRequest struct {
	RequestID         string
	SourceWarehouseID int64
	DestWarehouseID   int64
	ProductID         int64
	Amount            int
	StorageLocation   string
}

// Transfer is a journal entry for a completed stock move.
type Transfer struct {
	ID                string
	SourceWarehouseID int64
	DestWarehouseID   int64
	ProductID         int64
	Amount            int
	SourceRecordID    int64
	DestRecordID      int64
	CreatedAt         time.Time
}

type TransferResult struct {
	Transfer    Transfer
	Source      InventoryRecord
	Destination InventoryRecord
	SourceLoad  WarehouseLoad
	DestLoad    WarehouseLoad

	Product         Product
	SourceWarehouse Warehouse
	DestWarehouse   Warehouse
}
