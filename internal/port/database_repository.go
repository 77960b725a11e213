package port

import (
	"context"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

// DatabaseRepository is the persistence contract for the entity store.
// Lookups of unknown ids return an error wrapping domain.ErrNotFound.
type DatabaseRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product domain.Product) error
	// DeleteProduct removes the product and every inventory record referencing it
	DeleteProduct(ctx context.Context, id int64) error

	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (*domain.Warehouse, error)
	CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) error
	UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) error
	// DeleteWarehouse removes the warehouse and every inventory record it holds
	DeleteWarehouse(ctx context.Context, id int64) error

	ListInventory(ctx context.Context) ([]domain.InventoryRecord, error)
	GetInventory(ctx context.Context, id int64) (*domain.InventoryRecord, error)
	// ListInventoryByWarehouse returns the warehouse's records ordered by id
	ListInventoryByWarehouse(ctx context.Context, warehouseID int64) ([]domain.InventoryRecord, error)
	// FindInventory returns the records for a (product, warehouse) pair ordered by id
	FindInventory(ctx context.Context, productID, warehouseID int64) ([]domain.InventoryRecord, error)
	CreateInventory(ctx context.Context, record *domain.InventoryRecord) error
	UpdateInventory(ctx context.Context, record domain.InventoryRecord) error
	DeleteInventory(ctx context.Context, id int64) error

	CreateTransfer(ctx context.Context, transfer domain.Transfer) error
	// ListTransfers returns the newest transfers first
	ListTransfers(ctx context.Context, limit int) ([]domain.Transfer, error)

	// Snapshot reads all three entity collections consistently
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Transactor is implemented by stores that can apply several writes as one
// atomic unit. fn receives a repository bound to the transaction; returning
// an error rolls everything back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(repo DatabaseRepository) error) error
}
